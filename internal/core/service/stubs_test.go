package service

import (
	"context"
	"sync"

	"github.com/servicemarket/admin-console/internal/core/domain"
	"github.com/servicemarket/admin-console/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAuthClient struct {
	loginFn    func(ctx context.Context, in ports.Credentials) (*ports.LoginResult, error)
	registerFn func(ctx context.Context, in ports.Registration) error
	verifyFn   func(ctx context.Context, handle, code string) (*ports.VerifyResult, error)
	resendFn   func(ctx context.Context, handle string) error
	refreshFn  func(ctx context.Context, refreshToken string) (*ports.TokenPair, error)
	requestFn  func(ctx context.Context, email string) error
	resetFn    func(ctx context.Context, in ports.PasswordReset) error
}

func (c *stubAuthClient) Login(ctx context.Context, in ports.Credentials) (*ports.LoginResult, error) {
	return c.loginFn(ctx, in)
}

func (c *stubAuthClient) Register(ctx context.Context, in ports.Registration) error {
	return c.registerFn(ctx, in)
}

func (c *stubAuthClient) VerifyOtp(ctx context.Context, handle, code string) (*ports.VerifyResult, error) {
	return c.verifyFn(ctx, handle, code)
}

func (c *stubAuthClient) ResendOtp(ctx context.Context, handle string) error {
	return c.resendFn(ctx, handle)
}

func (c *stubAuthClient) RefreshToken(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	return c.refreshFn(ctx, refreshToken)
}

func (c *stubAuthClient) RequestPasswordReset(ctx context.Context, email string) error {
	return c.requestFn(ctx, email)
}

func (c *stubAuthClient) ResetPassword(ctx context.Context, in ports.PasswordReset) error {
	return c.resetFn(ctx, in)
}

type stubStorage struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
	delErr error
}

func newStubStorage() *stubStorage {
	return &stubStorage{data: make(map[string]string)}
}

func (s *stubStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *stubStorage) SetMany(_ context.Context, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	for k, v := range entries {
		s.data[k] = v
	}
	return nil
}

func (s *stubStorage) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return s.delErr
	}
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *stubStorage) Ping(context.Context) error { return nil }

func (s *stubStorage) snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func companyUser() domain.User {
	return domain.User{ID: "1", Name: "Acme", Email: "a@x.com", Role: domain.RoleCompany}
}

func loginOK(user domain.User, access, refresh string) func(context.Context, ports.Credentials) (*ports.LoginResult, error) {
	return func(context.Context, ports.Credentials) (*ports.LoginResult, error) {
		return &ports.LoginResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
	}
}

func credentialErr(msg string) error {
	return domain.NewAuthError(domain.KindCredential, msg, 401, nil)
}
