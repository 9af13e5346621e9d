package devbackend

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/servicemarket/admin-console/internal/core/domain"
)

// Code purposes passed to ServiceConfig.OnCode.
const (
	PurposeVerify = "verify"
	PurposeReset  = "reset"
)

const codeDigits = 6

// ServiceConfig tunes token lifetimes and code delivery.
type ServiceConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	RefreshTTL time.Duration
	CodeTTL    time.Duration
	// OnCode delivers one-time codes. Defaults to logging them.
	OnCode func(purpose, recipient, code string)
}

// Tokens is an issued access/refresh pair.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

type expiring struct {
	value   string
	expires time.Time
}

// Service implements registration, OTP verification, login, token refresh and
// password reset.
type Service struct {
	repo AccountRepository
	cfg  ServiceConfig
	log  zerolog.Logger

	now     func() time.Time
	newCode func() (string, error)

	mu      sync.Mutex
	otps    map[string]expiring // account ID -> verification code
	resets  map[string]expiring // account ID -> reset code
	refresh map[string]expiring // refresh token -> account ID
}

func NewService(repo AccountRepository, cfg ServiceConfig, log zerolog.Logger) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 10 * time.Minute
	}
	s := &Service{
		repo:    repo,
		cfg:     cfg,
		log:     log.With().Str("component", "dev_auth").Logger(),
		now:     time.Now,
		newCode: randomCode,
		otps:    make(map[string]expiring),
		resets:  make(map[string]expiring),
		refresh: make(map[string]expiring),
	}
	if s.cfg.OnCode == nil {
		s.cfg.OnCode = func(purpose, recipient, code string) {
			s.log.Info().Str("purpose", purpose).Str("recipient", recipient).Str("code", code).Msg("one-time code issued")
		}
	}
	return s
}

// RegisterInput is a new account submission.
type RegisterInput struct {
	Name          string
	Email         string
	Password      string
	Role          domain.Role
	ContactHandle string
}

// Register creates an unverified account and issues a verification code.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Account, error) {
	if in.Email == "" || in.Password == "" || !in.Role.Valid() {
		return nil, ErrInvalidInput
	}

	account, err := s.create(ctx, in, false, nil)
	if err != nil {
		return nil, err
	}
	if err := s.issueCode(PurposeVerify, account, s.otps); err != nil {
		return nil, err
	}
	return account, nil
}

// Seed creates a verified account, for local demo users.
func (s *Service) Seed(ctx context.Context, in RegisterInput, grants ...domain.Permission) (*Account, error) {
	if in.Email == "" || in.Password == "" || !in.Role.Valid() {
		return nil, ErrInvalidInput
	}
	return s.create(ctx, in, true, grants)
}

func (s *Service) create(ctx context.Context, in RegisterInput, verified bool, grants []domain.Permission) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	handle := in.ContactHandle
	if handle == "" {
		handle = in.Email
	}
	now := s.now().UTC()
	return s.repo.Create(ctx, &Account{
		Name:          in.Name,
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		Role:          in.Role,
		ContactHandle: handle,
		PasswordHash:  string(hash),
		Verified:      verified,
		Grants:        grants,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

// Login checks credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (Tokens, *Account, error) {
	if email == "" || password == "" {
		return Tokens{}, nil, ErrInvalidCredentials
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		return Tokens{}, nil, ErrInvalidCredentials
	}
	if err != nil {
		return Tokens{}, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return Tokens{}, nil, ErrInvalidCredentials
	}
	if !account.Verified {
		return Tokens{}, nil, ErrNotVerified
	}

	tokens, err := s.issueTokens(account)
	if err != nil {
		return Tokens{}, nil, err
	}
	return tokens, account, nil
}

// VerifyOtp confirms the account registered under handle and signs it in.
func (s *Service) VerifyOtp(ctx context.Context, handle, code string) (Tokens, *Account, error) {
	account, err := s.repo.FindByContactHandle(ctx, handle)
	if errors.Is(err, ErrAccountNotFound) {
		return Tokens{}, nil, ErrInvalidCode
	}
	if err != nil {
		return Tokens{}, nil, err
	}

	if !s.consumeCode(s.otps, account.ID, code) {
		return Tokens{}, nil, ErrInvalidCode
	}

	account.Verified = true
	account.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, account); err != nil {
		return Tokens{}, nil, err
	}

	tokens, err := s.issueTokens(account)
	if err != nil {
		return Tokens{}, nil, err
	}
	return tokens, account, nil
}

// ResendOtp replaces the pending verification code of handle.
func (s *Service) ResendOtp(ctx context.Context, handle string) error {
	account, err := s.repo.FindByContactHandle(ctx, handle)
	if err != nil {
		return err
	}
	if account.Verified {
		return ErrInvalidInput
	}
	return s.issueCode(PurposeVerify, account, s.otps)
}

// Refresh exchanges a refresh token for a new pair. The old refresh token is
// revoked.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	s.mu.Lock()
	entry, ok := s.refresh[refreshToken]
	delete(s.refresh, refreshToken)
	s.mu.Unlock()

	if !ok || s.now().After(entry.expires) {
		return Tokens{}, ErrInvalidRefreshToken
	}

	account, err := s.repo.FindByID(ctx, entry.value)
	if errors.Is(err, ErrAccountNotFound) {
		return Tokens{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return Tokens{}, err
	}
	return s.issueTokens(account)
}

// RequestPasswordReset issues a reset code for email.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.issueCode(PurposeReset, account, s.resets)
}

// ResetPassword sets a new password when code matches the issued reset code.
// Every refresh token of the account is revoked.
func (s *Service) ResetPassword(ctx context.Context, email, code, password string) error {
	if password == "" {
		return ErrInvalidInput
	}
	account, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		return ErrInvalidCode
	}
	if err != nil {
		return err
	}
	if !s.consumeCode(s.resets, account.ID, code) {
		return ErrInvalidCode
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	account.PasswordHash = string(hash)
	account.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, account); err != nil {
		return err
	}

	s.mu.Lock()
	for token, entry := range s.refresh {
		if entry.value == account.ID {
			delete(s.refresh, token)
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *Service) issueTokens(account *Account) (Tokens, error) {
	access, err := s.generateToken(account)
	if err != nil {
		return Tokens{}, err
	}

	refresh := uuid.NewString()
	s.mu.Lock()
	s.refresh[refresh] = expiring{value: account.ID, expires: s.now().Add(s.cfg.RefreshTTL)}
	s.mu.Unlock()

	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) generateToken(account *Account) (string, error) {
	perms := domain.MergePermissions(domain.PermissionsForRole(account.Role), account.Grants)
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub":         account.ID,
		"email":       account.Email,
		"role":        string(account.Role),
		"permissions": names,
		"iat":         now.Unix(),
		"exp":         now.Add(s.cfg.TokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Service) issueCode(purpose string, account *Account, into map[string]expiring) error {
	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	s.mu.Lock()
	into[account.ID] = expiring{value: code, expires: s.now().Add(s.cfg.CodeTTL)}
	s.mu.Unlock()

	s.cfg.OnCode(purpose, account.ContactHandle, code)
	return nil
}

func (s *Service) consumeCode(from map[string]expiring, accountID, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := from[accountID]
	if !ok || code == "" || entry.value != code || s.now().After(entry.expires) {
		return false
	}
	delete(from, accountID)
	return true
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}
