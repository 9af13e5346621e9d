package ports

import (
	"context"

	"github.com/servicemarket/admin-console/internal/core/domain"
)

// Credentials is the login input.
type Credentials struct {
	Email       string
	Password    string
	DeviceToken string // optional
}

// Registration is the account sign-up input.
type Registration struct {
	Name          string
	Email         string
	Password      string
	Role          domain.Role
	ContactHandle string // optional
}

// PasswordReset confirms a reset requested earlier.
type PasswordReset struct {
	Email    string
	Code     string
	Password string
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         domain.User
}

// VerifyResult is the backend's answer to a confirmed OTP. Tokens are
// optional: some deployments authenticate right away, others require a login.
type VerifyResult struct {
	User         domain.User
	AccessToken  string
	RefreshToken string
}

// TokenPair is the backend's answer to a refresh. An empty RefreshToken means
// the refresh token was not rotated.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthClient is the REST backend the session core consumes. Every error it
// returns is a *domain.AuthError.
type AuthClient interface {
	Login(ctx context.Context, in Credentials) (*LoginResult, error)
	Register(ctx context.Context, in Registration) error
	VerifyOtp(ctx context.Context, contactHandle, code string) (*VerifyResult, error)
	ResendOtp(ctx context.Context, contactHandle string) error
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, in PasswordReset) error
}
