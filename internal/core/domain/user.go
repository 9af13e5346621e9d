package domain

// Role is the coarse-grained identity category used for gating.
type Role string

const (
	RoleCompany    Role = "company"
	RoleSuperadmin Role = "superadmin"
	RoleSalon      Role = "salon"
	RoleWorker     Role = "worker"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCompany, RoleSuperadmin, RoleSalon, RoleWorker:
		return true
	}
	return false
}

// User models the identity record issued by the backend. A new login yields a
// new User value; fields are never mutated in place.
type User struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          Role   `json:"role"`
	ContactHandle string `json:"contactHandle,omitempty"`
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
