package service

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/servicemarket/admin-console/internal/core/domain"
)

// permissionsClaim is the access token claim carrying extra permission tags.
const permissionsClaim = "permissions"

// derivePermissions builds the permission view of a user: the role defaults
// plus any tags the backend put in the access token. The token signature is
// not checked here; the backend verifies it on every API call.
func derivePermissions(role domain.Role, accessToken string) []domain.Permission {
	return domain.MergePermissions(domain.PermissionsForRole(role), tokenPermissions(accessToken))
}

func tokenPermissions(accessToken string) []domain.Permission {
	if accessToken == "" {
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil
	}

	raw, ok := claims[permissionsClaim].([]any)
	if !ok {
		return nil
	}
	out := make([]domain.Permission, 0, len(raw))
	for _, v := range raw {
		if p, ok := v.(string); ok {
			out = append(out, domain.Permission(p))
		}
	}
	return out
}
