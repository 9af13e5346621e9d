package service

import (
	"github.com/servicemarket/admin-console/internal/core/domain"
)

// AccessGate decides whether a protected screen renders or redirects away.
// It only reads the session it is given.
type AccessGate struct {
	// EnforcePermissions also checks RequiredPermissions. When false only
	// AllowedRoles gates rendering.
	EnforcePermissions bool
}

// NewAccessGate returns a gate with the given permission policy.
func NewAccessGate(enforcePermissions bool) AccessGate {
	return AccessGate{EnforcePermissions: enforcePermissions}
}

// Decide evaluates the rules in order, first match wins:
//  1. session loading: show a placeholder, never redirect mid-rehydration
//  2. not authenticated: redirect to login
//  3. role not allowed: redirect to unauthorized
//  4. missing a required permission (when enforced): redirect to unauthorized
//  5. render
func (g AccessGate) Decide(s domain.Session, req domain.AccessRequirement) domain.Decision {
	if s.IsLoading {
		return domain.DecisionLoading
	}
	if !s.IsAuthenticated || s.User == nil {
		return domain.DecisionRedirectLogin
	}
	if !req.AllowsRole(s.User.Role) {
		return domain.DecisionRedirectUnauthorized
	}
	if g.EnforcePermissions {
		for _, p := range req.RequiredPermissions {
			if !s.HasPermission(p) {
				return domain.DecisionRedirectUnauthorized
			}
		}
	}
	return domain.DecisionRender
}
