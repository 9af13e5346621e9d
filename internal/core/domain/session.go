package domain

// SessionStatus names the state of the session state machine.
type SessionStatus string

const (
	StatusIdle                SessionStatus = "idle"
	StatusAuthenticating      SessionStatus = "authenticating"
	StatusAuthenticated       SessionStatus = "authenticated"
	StatusUnauthenticated     SessionStatus = "unauthenticated"
	StatusPendingVerification SessionStatus = "pending_verification"
	StatusFailed              SessionStatus = "failed"
)

// PendingRegistration is the in-progress registration awaiting OTP confirmation.
type PendingRegistration struct {
	Email         string `json:"email"`
	ContactHandle string `json:"contactHandle"`
}

// Session is the in-memory record of the current identity and its tokens.
// An empty token string means the token is absent.
//
// Invariants:
//   - IsAuthenticated == (User != nil && AccessToken != "")
//   - IsLoading and a non-empty Error are never set together
type Session struct {
	Status          SessionStatus        `json:"status"`
	User            *User                `json:"user"`
	AccessToken     string               `json:"-"`
	RefreshToken    string               `json:"-"`
	Permissions     []Permission         `json:"permissions"`
	Pending         *PendingRegistration `json:"pending,omitempty"`
	IsAuthenticated bool                 `json:"isAuthenticated"`
	IsLoading       bool                 `json:"isLoading"`
	Error           string               `json:"error,omitempty"`
}

// NewSession returns the process-start session: empty and loading until
// rehydration settles it.
func NewSession() Session {
	return Session{Status: StatusIdle, IsLoading: true}
}

// Role returns the current user's role, or "" when there is no user.
func (s Session) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// HasPermission reports whether the derived permission view contains p.
func (s Session) HasPermission(p Permission) bool {
	for _, have := range s.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand to other goroutines.
func (s Session) Clone() Session {
	c := s
	c.User = cloneUser(s.User)
	if s.Permissions != nil {
		c.Permissions = make([]Permission, len(s.Permissions))
		copy(c.Permissions, s.Permissions)
	}
	if s.Pending != nil {
		p := *s.Pending
		c.Pending = &p
	}
	return c
}

// Consistent reports whether the session satisfies its invariants.
func (s Session) Consistent() bool {
	if s.IsAuthenticated != (s.User != nil && s.AccessToken != "") {
		return false
	}
	return !(s.IsLoading && s.Error != "")
}
