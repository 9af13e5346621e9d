package domain

// Decision is the Access Gate outcome for a protected screen.
type Decision string

const (
	DecisionLoading              Decision = "loading"
	DecisionRender               Decision = "render"
	DecisionRedirectLogin        Decision = "redirect_login"
	DecisionRedirectUnauthorized Decision = "redirect_unauthorized"
)

// AccessRequirement is declared statically by a screen's integrator.
// An empty AllowedRoles means any authenticated user; an empty
// RequiredPermissions means no fine-grained check.
type AccessRequirement struct {
	AllowedRoles        []Role       `json:"allowedRoles,omitempty"`
	RequiredPermissions []Permission `json:"requiredPermissions,omitempty"`
}

// AllowsRole reports whether role passes the role requirement.
func (r AccessRequirement) AllowsRole(role Role) bool {
	if len(r.AllowedRoles) == 0 {
		return true
	}
	for _, allowed := range r.AllowedRoles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Screen is a navigable region registered with the gate.
type Screen struct {
	Name        string            `json:"name"`
	Path        string            `json:"path"`
	Title       string            `json:"title"`
	Requirement AccessRequirement `json:"requirement"`
	Public      bool              `json:"public,omitempty"`
}
