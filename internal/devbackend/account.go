// Package devbackend is an in-process implementation of the marketplace auth
// API. It backs local console runs and the auth client's integration tests.
package devbackend

import (
	"context"
	"errors"
	"time"

	"github.com/servicemarket/admin-console/internal/core/domain"
)

var (
	ErrAccountExists       = errors.New("account already exists")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrNotVerified         = errors.New("account not verified")
	ErrInvalidCode         = errors.New("invalid or expired code")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrInvalidInput        = errors.New("invalid input")
)

// Account is a backend user record.
type Account struct {
	ID            string
	Name          string
	Email         string
	Role          domain.Role
	ContactHandle string
	PasswordHash  string
	Verified      bool
	// Grants are permission tags issued on top of the role defaults.
	Grants    []domain.Permission
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User returns the public identity record of a.
func (a *Account) User() domain.User {
	return domain.User{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		Role:          a.Role,
		ContactHandle: a.ContactHandle,
	}
}

// AccountRepository persists accounts. Lookups return ErrAccountNotFound when
// nothing matches; Create returns ErrAccountExists for a taken email.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByContactHandle(ctx context.Context, handle string) (*Account, error)
	Update(ctx context.Context, account *Account) error
}
