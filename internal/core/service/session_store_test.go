package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/servicemarket/admin-console/internal/core/domain"
	"github.com/servicemarket/admin-console/internal/core/ports"
)

func newTestStore(client *stubAuthClient, storage *stubStorage) *SessionStore {
	return NewSessionStore(client, storage, SessionOptions{}, zerolog.Nop())
}

func assertConsistent(t *testing.T, s domain.Session) {
	t.Helper()
	if !s.Consistent() {
		t.Fatalf("inconsistent session: %+v", s)
	}
}

func loggedIn(t *testing.T, client *stubAuthClient, storage *stubStorage) *SessionStore {
	t.Helper()
	if client.loginFn == nil {
		client.loginFn = loginOK(companyUser(), "t1", "r1")
	}
	store := newTestStore(client, storage)
	store.Rehydrate(context.Background())
	if err := store.Login(context.Background(), ports.Credentials{Email: "a@x.com", Password: "p"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	return store
}

func TestSessionStore_StartsIdleAndLoading(t *testing.T) {
	store := newTestStore(&stubAuthClient{}, newStubStorage())

	s := store.Session()
	if s.Status != domain.StatusIdle || !s.IsLoading {
		t.Fatalf("expected idle loading session, got %+v", s)
	}
	if s.IsAuthenticated || s.User != nil {
		t.Fatalf("fresh session must be empty")
	}
	assertConsistent(t, s)
}

func TestSessionStore_Login_HappyPath(t *testing.T) {
	storage := newStubStorage()
	var gotEmail, gotDevice string
	client := &stubAuthClient{
		loginFn: func(_ context.Context, in ports.Credentials) (*ports.LoginResult, error) {
			gotEmail, gotDevice = in.Email, in.DeviceToken
			return &ports.LoginResult{AccessToken: "t1", RefreshToken: "r1", User: companyUser()}, nil
		},
	}
	store := NewSessionStore(client, storage, SessionOptions{DeviceToken: "device-1"}, zerolog.Nop())
	store.Rehydrate(context.Background())

	if err := store.Login(context.Background(), ports.Credentials{Email: "a@x.com", Password: "p"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if gotEmail != "a@x.com" || gotDevice != "device-1" {
		t.Fatalf("unexpected credentials forwarded: %q %q", gotEmail, gotDevice)
	}

	s := store.Session()
	assertConsistent(t, s)
	if s.Status != domain.StatusAuthenticated || !s.IsAuthenticated {
		t.Fatalf("expected authenticated, got %s", s.Status)
	}
	if s.AccessToken != "t1" || s.RefreshToken != "r1" || s.User.ID != "1" {
		t.Fatalf("unexpected session: %+v", s)
	}

	data := storage.snapshot()
	for _, key := range []string{KeyToken, KeyRefreshToken, KeyUser} {
		if data[key] == "" {
			t.Fatalf("expected %q persisted", key)
		}
	}
	if data[KeyToken] != "t1" || data[KeyRefreshToken] != "r1" {
		t.Fatalf("unexpected persisted tokens: %+v", data)
	}

	gate := NewAccessGate(true)
	if d := gate.Decide(s, domain.AccessRequirement{AllowedRoles: []domain.Role{domain.RoleCompany}}); d != domain.DecisionRender {
		t.Fatalf("expected render, got %s", d)
	}
}

func TestSessionStore_Login_InvalidCredentials(t *testing.T) {
	storage := newStubStorage()
	storage.data["unrelated"] = "keep"
	client := &stubAuthClient{
		loginFn: func(context.Context, ports.Credentials) (*ports.LoginResult, error) {
			return nil, credentialErr("Invalid credentials")
		},
	}
	store := newTestStore(client, storage)
	store.Rehydrate(context.Background())

	err := store.Login(context.Background(), ports.Credentials{Email: "a@x.com", Password: "bad"})
	if !errors.Is(err, domain.ErrCredential) {
		t.Fatalf("expected credential error, got %v", err)
	}

	s := store.Session()
	assertConsistent(t, s)
	if s.Status != domain.StatusFailed || s.Error != "Invalid credentials" {
		t.Fatalf("expected failed(Invalid credentials), got %s %q", s.Status, s.Error)
	}
	if s.IsAuthenticated || s.User != nil || s.AccessToken != "" {
		t.Fatalf("session fields must stay empty: %+v", s)
	}
	if data := storage.snapshot(); len(data) != 1 || data["unrelated"] != "keep" {
		t.Fatalf("durable storage must be unchanged, got %+v", data)
	}
}

func TestSessionStore_Login_NetworkErrorUsesGenericMessage(t *testing.T) {
	client := &stubAuthClient{
		loginFn: func(context.Context, ports.Credentials) (*ports.LoginResult, error) {
			return nil, domain.NewAuthError(domain.KindNetwork, "", 0, errors.New("dial tcp: connection refused"))
		},
	}
	store := newTestStore(client, newStubStorage())
	store.Rehydrate(context.Background())

	err := store.Login(context.Background(), ports.Credentials{Email: "a@x.com", Password: "p"})
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if got := store.Session().Error; got != domain.GenericErrorMessage {
		t.Fatalf("expected generic message, got %q", got)
	}
}

func TestSessionStore_Login_RejectsSecondWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	client := &stubAuthClient{
		loginFn: func(context.Context, ports.Credentials) (*ports.LoginResult, error) {
			close(started)
			<-release
			return &ports.LoginResult{AccessToken: "t1", RefreshToken: "r1", User: companyUser()}, nil
		},
	}
	store := newTestStore(client, newStubStorage())
	store.Rehydrate(context.Background())

	done := make(chan error, 1)
	go func() { done <- store.Login(context.Background(), ports.Credentials{Email: "a@x.com", Password: "p"}) }()
	<-started

	s := store.Session()
	if !s.IsLoading || s.Status != domain.StatusAuthenticating {
		t.Fatalf("expected authenticating while in flight, got %+v", s)
	}
	assertConsistent(t, s)

	if err := store.Login(context.Background(), ports.Credentials{Email: "a@x.com", Password: "p"}); !errors.Is(err, domain.ErrOperationInFlight) {
		t.Fatalf("expected ErrOperationInFlight, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first login: %v", err)
	}
	if !store.Session().IsAuthenticated {
		t.Fatalf("expected first login to win")
	}
}

func TestSessionStore_Logout_Idempotent(t *testing.T) {
	storage := newStubStorage()
	store := loggedIn(t, &stubAuthClient{}, storage)

	store.Logout(context.Background())
	first := store.Session()
	store.Logout(context.Background())
	second := store.Session()

	for _, s := range []domain.Session{first, second} {
		assertConsistent(t, s)
		if s.Status != domain.StatusUnauthenticated || s.IsAuthenticated || s.User != nil || s.AccessToken != "" || s.RefreshToken != "" {
			t.Fatalf("expected empty unauthenticated session, got %+v", s)
		}
	}
	if len(storage.snapshot()) != 0 {
		t.Fatalf("expected durable storage cleared, got %+v", storage.snapshot())
	}
}

func TestSessionStore_Logout_FromFreshStoreAndStorageFailure(t *testing.T) {
	storage := newStubStorage()
	storage.delErr = errors.New("storage down")
	store := newTestStore(&stubAuthClient{}, storage)

	store.Logout(context.Background())
	store.Logout(context.Background())

	s := store.Session()
	if s.Status != domain.StatusUnauthenticated || s.IsLoading {
		t.Fatalf("logout must always settle unauthenticated, got %+v", s)
	}
}

func TestSessionStore_Logout_DiscardsInFlightLogin(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	storage := newStubStorage()
	client := &stubAuthClient{
		loginFn: func(context.Context, ports.Credentials) (*ports.LoginResult, error) {
			close(started)
			<-release
			return &ports.LoginResult{AccessToken: "t1", RefreshToken: "r1", User: companyUser()}, nil
		},
	}
	store := newTestStore(client, storage)
	store.Rehydrate(context.Background())

	done := make(chan error, 1)
	go func() { done <- store.Login(context.Background(), ports.Credentials{Email: "a@x.com", Password: "p"}) }()
	<-started

	store.Logout(context.Background())
	close(release)

	if err := <-done; !errors.Is(err, domain.ErrSessionReset) {
		t.Fatalf("expected ErrSessionReset, got %v", err)
	}
	s := store.Session()
	if s.IsAuthenticated || s.Status != domain.StatusUnauthenticated {
		t.Fatalf("stale login must not apply, got %+v", s)
	}
	if len(storage.snapshot()) != 0 {
		t.Fatalf("stale login must not persist, got %+v", storage.snapshot())
	}
}

func TestSessionStore_RehydrateRoundTrip(t *testing.T) {
	storage := newStubStorage()
	store := loggedIn(t, &stubAuthClient{}, storage)
	before := store.Session()

	reloaded := newTestStore(&stubAuthClient{}, storage)
	reloaded.Rehydrate(context.Background())
	after := reloaded.Session()

	assertConsistent(t, after)
	if after.Status != domain.StatusAuthenticated {
		t.Fatalf("expected authenticated after reload, got %s", after.Status)
	}
	if *after.User != *before.User || after.AccessToken != before.AccessToken || after.RefreshToken != before.RefreshToken {
		t.Fatalf("reload mismatch: before %+v after %+v", before, after)
	}
}

func TestSessionStore_Rehydrate_PartialStorage(t *testing.T) {
	storage := newStubStorage()
	storage.data[KeyToken] = "t1"
	storage.data[KeyRefreshToken] = "r1"

	store := newTestStore(&stubAuthClient{}, storage)
	store.Rehydrate(context.Background())

	s := store.Session()
	assertConsistent(t, s)
	if s.Status != domain.StatusUnauthenticated || s.IsAuthenticated || s.IsLoading {
		t.Fatalf("expected unauthenticated, got %+v", s)
	}
}

func TestSessionStore_Rehydrate_CorruptUserAndReadFailure(t *testing.T) {
	storage := newStubStorage()
	storage.data[KeyToken] = "t1"
	storage.data[KeyRefreshToken] = "r1"
	storage.data[KeyUser] = "{not json"

	store := newTestStore(&stubAuthClient{}, storage)
	store.Rehydrate(context.Background())
	if s := store.Session(); s.Status != domain.StatusUnauthenticated {
		t.Fatalf("expected unauthenticated for corrupt user, got %s", s.Status)
	}

	for _, raw := range []string{"null", `{}`, `{"id":"1","role":"admin"}`, `{"role":"company"}`} {
		storage := newStubStorage()
		storage.data[KeyToken] = "t1"
		storage.data[KeyRefreshToken] = "r1"
		storage.data[KeyUser] = raw

		store := newTestStore(&stubAuthClient{}, storage)
		store.Rehydrate(context.Background())
		s := store.Session()
		assertConsistent(t, s)
		if s.IsAuthenticated || s.User != nil || s.Status != domain.StatusUnauthenticated {
			t.Fatalf("user %s must not authenticate, got %+v", raw, s)
		}
	}

	broken := newStubStorage()
	broken.getErr = errors.New("storage down")
	store = newTestStore(&stubAuthClient{}, broken)
	store.Rehydrate(context.Background())
	if s := store.Session(); s.Status != domain.StatusUnauthenticated || s.IsLoading {
		t.Fatalf("expected unauthenticated for unreadable storage, got %+v", s)
	}
}

func TestSessionStore_Login_PersistFailureLeavesNothingHalfApplied(t *testing.T) {
	storage := newStubStorage()
	storage.setErr = errors.New("disk full")
	store := newTestStore(&stubAuthClient{loginFn: loginOK(companyUser(), "t1", "r1")}, storage)
	store.Rehydrate(context.Background())

	err := store.Login(context.Background(), ports.Credentials{Email: "a@x.com", Password: "p"})
	if !errors.Is(err, domain.ErrPersistSession) {
		t.Fatalf("expected ErrPersistSession, got %v", err)
	}
	s := store.Session()
	assertConsistent(t, s)
	if s.IsAuthenticated || s.User != nil || s.Status != domain.StatusFailed {
		t.Fatalf("expected failed empty session, got %+v", s)
	}
	if len(storage.snapshot()) != 0 {
		t.Fatalf("expected nothing persisted, got %+v", storage.snapshot())
	}
}

func TestSessionStore_RegisterThenVerifyOtp(t *testing.T) {
	storage := newStubStorage()
	var verifiedHandle string
	client := &stubAuthClient{
		registerFn: func(_ context.Context, in ports.Registration) error {
			if in.Role != domain.RoleSalon {
				t.Fatalf("unexpected role %s", in.Role)
			}
			return nil
		},
		verifyFn: func(_ context.Context, handle, code string) (*ports.VerifyResult, error) {
			verifiedHandle = handle
			if code != "123456" {
				return nil, domain.NewAuthError(domain.KindOtp, "Invalid code", 400, nil)
			}
			return &ports.VerifyResult{
				User:         domain.User{ID: "7", Name: "Salon", Email: "s@x.com", Role: domain.RoleSalon, ContactHandle: "+100"},
				AccessToken:  "t7",
				RefreshToken: "r7",
			}, nil
		},
	}
	store := newTestStore(client, storage)
	store.Rehydrate(context.Background())

	err := store.Register(context.Background(), ports.Registration{
		Name: "Salon", Email: "s@x.com", Password: "p", Role: domain.RoleSalon, ContactHandle: "+100",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	s := store.Session()
	if s.Status != domain.StatusPendingVerification || s.IsAuthenticated || s.Pending == nil {
		t.Fatalf("expected pending verification, got %+v", s)
	}

	err = store.VerifyOtp(context.Background(), "", "000000")
	if !errors.Is(err, domain.ErrOtp) {
		t.Fatalf("expected otp error, got %v", err)
	}
	s = store.Session()
	assertConsistent(t, s)
	if s.Pending == nil || s.Error != "Invalid code" {
		t.Fatalf("failed verification must keep pending registration, got %+v", s)
	}

	if err := store.VerifyOtp(context.Background(), "", "123456"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verifiedHandle != "+100" {
		t.Fatalf("expected recorded handle, got %q", verifiedHandle)
	}
	s = store.Session()
	assertConsistent(t, s)
	if s.Status != domain.StatusAuthenticated || s.User.ID != "7" || s.Pending != nil {
		t.Fatalf("expected authenticated salon, got %+v", s)
	}
	if storage.snapshot()[KeyToken] != "t7" {
		t.Fatalf("expected verified session persisted")
	}
}

func TestSessionStore_VerifyOtp_WithoutTokensRecordsUser(t *testing.T) {
	client := &stubAuthClient{
		registerFn: func(context.Context, ports.Registration) error { return nil },
		verifyFn: func(context.Context, string, string) (*ports.VerifyResult, error) {
			return &ports.VerifyResult{User: domain.User{ID: "8", Role: domain.RoleWorker}}, nil
		},
	}
	store := newTestStore(client, newStubStorage())
	store.Rehydrate(context.Background())

	_ = store.Register(context.Background(), ports.Registration{Email: "w@x.com", Role: domain.RoleWorker})
	if err := store.VerifyOtp(context.Background(), "", "1"); err != nil {
		t.Fatalf("verify: %v", err)
	}

	s := store.Session()
	assertConsistent(t, s)
	if s.User == nil || s.User.ID != "8" || s.IsAuthenticated || s.Pending != nil {
		t.Fatalf("expected confirmed but unauthenticated user, got %+v", s)
	}
}

func TestSessionStore_RegisterDropsPersistedIdentity(t *testing.T) {
	storage := newStubStorage()
	client := &stubAuthClient{
		registerFn: func(context.Context, ports.Registration) error { return nil },
		verifyFn: func(context.Context, string, string) (*ports.VerifyResult, error) {
			return &ports.VerifyResult{User: domain.User{ID: "8", Role: domain.RoleWorker}}, nil
		},
	}
	store := loggedIn(t, client, storage)

	if err := store.Register(context.Background(), ports.Registration{Email: "w@x.com", Role: domain.RoleWorker}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(storage.snapshot()) != 0 {
		t.Fatalf("expected previous session cleared from storage, got %+v", storage.snapshot())
	}
	reloaded := newTestStore(client, storage)
	reloaded.Rehydrate(context.Background())
	if reloaded.Session().IsAuthenticated {
		t.Fatalf("reload must not restore the previous identity")
	}

	// A triple written by another process meanwhile is dropped too once the
	// confirmed user replaces the session without tokens.
	storage.data[KeyToken] = "t1"
	storage.data[KeyRefreshToken] = "r1"
	storage.data[KeyUser] = `{"id":"1","role":"company"}`
	if err := store.VerifyOtp(context.Background(), "", "1"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if len(storage.snapshot()) != 0 {
		t.Fatalf("expected storage cleared after token-less verification, got %+v", storage.snapshot())
	}
}

func TestSessionStore_VerifyOtp_RequiresPendingRegistration(t *testing.T) {
	store := newTestStore(&stubAuthClient{}, newStubStorage())
	store.Rehydrate(context.Background())

	if err := store.VerifyOtp(context.Background(), "+1", "1"); !errors.Is(err, domain.ErrNoPendingRegistration) {
		t.Fatalf("expected ErrNoPendingRegistration, got %v", err)
	}
	if err := store.ResendOtp(context.Background()); !errors.Is(err, domain.ErrNoPendingRegistration) {
		t.Fatalf("expected ErrNoPendingRegistration, got %v", err)
	}
	assertConsistent(t, store.Session())
}

func TestSessionStore_Refresh_RotatesTokensKeepsUser(t *testing.T) {
	storage := newStubStorage()
	client := &stubAuthClient{
		refreshFn: func(_ context.Context, refreshToken string) (*ports.TokenPair, error) {
			if refreshToken != "r1" {
				t.Fatalf("unexpected refresh token %q", refreshToken)
			}
			return &ports.TokenPair{AccessToken: "t2", RefreshToken: "r2"}, nil
		},
	}
	store := loggedIn(t, client, storage)
	before := store.Session()

	if err := store.RefreshAccessToken(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	s := store.Session()
	assertConsistent(t, s)
	if s.AccessToken != "t2" || s.RefreshToken != "r2" || *s.User != *before.User {
		t.Fatalf("unexpected refreshed session: %+v", s)
	}
	if data := storage.snapshot(); data[KeyToken] != "t2" || data[KeyRefreshToken] != "r2" {
		t.Fatalf("expected rotated tokens persisted, got %+v", data)
	}
}

func TestSessionStore_Refresh_KeepsRefreshTokenWhenNotRotated(t *testing.T) {
	client := &stubAuthClient{
		refreshFn: func(context.Context, string) (*ports.TokenPair, error) {
			return &ports.TokenPair{AccessToken: "t2"}, nil
		},
	}
	store := loggedIn(t, client, newStubStorage())

	if err := store.RefreshAccessToken(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if s := store.Session(); s.RefreshToken != "r1" || s.AccessToken != "t2" {
		t.Fatalf("expected r1 kept, got %+v", s)
	}
}

func TestSessionStore_Refresh_FailureDoesNotLogout(t *testing.T) {
	storage := newStubStorage()
	client := &stubAuthClient{
		refreshFn: func(context.Context, string) (*ports.TokenPair, error) {
			return nil, domain.NewAuthError(domain.KindCredential, "Token expired", 401, nil)
		},
	}
	store := loggedIn(t, client, storage)

	err := store.RefreshAccessToken(context.Background())
	if !errors.Is(err, domain.ErrRefresh) {
		t.Fatalf("expected refresh error, got %v", err)
	}
	s := store.Session()
	assertConsistent(t, s)
	if !s.IsAuthenticated || s.AccessToken != "t1" || s.Error != "Token expired" {
		t.Fatalf("expected authenticated session carrying the error, got %+v", s)
	}
	if storage.snapshot()[KeyToken] != "t1" {
		t.Fatalf("persisted session must be kept")
	}
}

func TestSessionStore_Refresh_FailureLogsOutWhenConfigured(t *testing.T) {
	storage := newStubStorage()
	client := &stubAuthClient{
		loginFn: loginOK(companyUser(), "t1", "r1"),
		refreshFn: func(context.Context, string) (*ports.TokenPair, error) {
			return nil, domain.NewAuthError(domain.KindRefresh, "Token expired", 401, nil)
		},
	}
	store := NewSessionStore(client, storage, SessionOptions{LogoutOnRefreshFailure: true}, zerolog.Nop())
	store.Rehydrate(context.Background())
	_ = store.Login(context.Background(), ports.Credentials{Email: "a@x.com", Password: "p"})

	if err := store.RefreshAccessToken(context.Background()); !errors.Is(err, domain.ErrRefresh) {
		t.Fatalf("expected refresh error, got %v", err)
	}
	s := store.Session()
	assertConsistent(t, s)
	if s.IsAuthenticated || s.User != nil || s.Error != "Token expired" {
		t.Fatalf("expected forced logout with error, got %+v", s)
	}
	if len(storage.snapshot()) != 0 {
		t.Fatalf("expected storage cleared")
	}
}

func TestSessionStore_Refresh_RequiresRefreshToken(t *testing.T) {
	store := newTestStore(&stubAuthClient{}, newStubStorage())
	store.Rehydrate(context.Background())

	err := store.RefreshAccessToken(context.Background())
	if !errors.Is(err, domain.ErrRefresh) || !errors.Is(err, domain.ErrNoRefreshToken) {
		t.Fatalf("expected refresh error for missing token, got %v", err)
	}
	assertConsistent(t, store.Session())
}

func TestSessionStore_PasswordResetKeepsIdentity(t *testing.T) {
	client := &stubAuthClient{
		requestFn: func(context.Context, string) error { return nil },
		resetFn: func(context.Context, ports.PasswordReset) error {
			return credentialErr("Code expired")
		},
	}
	store := loggedIn(t, client, newStubStorage())

	if err := store.RequestPasswordReset(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if s := store.Session(); !s.IsAuthenticated || s.Error != "" {
		t.Fatalf("expected untouched session, got %+v", s)
	}

	err := store.ResetPassword(context.Background(), ports.PasswordReset{Email: "a@x.com", Code: "1", Password: "n"})
	if !errors.Is(err, domain.ErrCredential) {
		t.Fatalf("expected credential error, got %v", err)
	}
	s := store.Session()
	assertConsistent(t, s)
	if !s.IsAuthenticated || s.Error != "Code expired" {
		t.Fatalf("expected error recorded on kept session, got %+v", s)
	}
}

func TestSessionStore_PermissionsFromTokenClaim(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":         "1",
		"permissions": []string{string(domain.PermissionViewReports)},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	store := loggedIn(t, &stubAuthClient{loginFn: loginOK(companyUser(), token, "r1")}, newStubStorage())
	s := store.Session()

	if !s.HasPermission(domain.PermissionManageProducts) {
		t.Fatalf("expected role default permission")
	}
	if !s.HasPermission(domain.PermissionViewReports) {
		t.Fatalf("expected token claim permission, got %v", s.Permissions)
	}
}

func TestSessionStore_SubscribeReceivesTransitions(t *testing.T) {
	store := newTestStore(&stubAuthClient{loginFn: loginOK(companyUser(), "t1", "r1")}, newStubStorage())
	updates, unsubscribe := store.Subscribe()
	defer unsubscribe()

	store.Rehydrate(context.Background())
	_ = store.Login(context.Background(), ports.Credentials{Email: "a@x.com", Password: "p"})

	want := []domain.SessionStatus{domain.StatusUnauthenticated, domain.StatusAuthenticating, domain.StatusAuthenticated}
	for _, status := range want {
		select {
		case s := <-updates:
			if s.Status != status {
				t.Fatalf("expected %s, got %s", status, s.Status)
			}
			assertConsistent(t, s)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", status)
		}
	}
}

func TestSessionStore_UnsubscribeClosesChannel(t *testing.T) {
	store := newTestStore(&stubAuthClient{}, newStubStorage())
	updates, unsubscribe := store.Subscribe()
	unsubscribe()
	unsubscribe()

	if _, ok := <-updates; ok {
		t.Fatalf("expected closed channel")
	}
	store.Logout(context.Background())
}
