package ports

import (
	"context"

	"github.com/servicemarket/admin-console/internal/core/domain"
)

// SessionReader is the read side of the session store.
type SessionReader interface {
	Session() domain.Session
}

// SessionStore is the single writer of the console session.
type SessionStore interface {
	SessionReader
	Subscribe() (<-chan domain.Session, func())

	Rehydrate(ctx context.Context)
	Login(ctx context.Context, in Credentials) error
	Register(ctx context.Context, in Registration) error
	VerifyOtp(ctx context.Context, contactHandle, code string) error
	ResendOtp(ctx context.Context) error
	RefreshAccessToken(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, in PasswordReset) error
	Logout(ctx context.Context)
}
