package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/servicemarket/admin-console/internal/core/domain"
	"github.com/servicemarket/admin-console/internal/core/ports"
)

// Durable storage keys of the persisted session record.
const (
	KeyToken        = "token"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

const subscriberBuffer = 16

var sessionKeys = []string{KeyToken, KeyRefreshToken, KeyUser}

// SessionOptions tunes the store's policy choices.
type SessionOptions struct {
	// LogoutOnRefreshFailure forces a logout when a refresh is rejected.
	// Off by default: a failed refresh only records the error.
	LogoutOnRefreshFailure bool
	// DeviceToken is sent with logins that carry none of their own.
	DeviceToken string
}

// SessionStore is the single writer of the console session. Reads go through
// Session or Subscribe; writes only through its operations.
type SessionStore struct {
	client  ports.AuthClient
	storage ports.KeyValueStore
	opts    SessionOptions
	log     zerolog.Logger

	mu       sync.Mutex
	state    domain.Session
	inFlight bool
	gen      uint64
	subs     map[int]chan domain.Session
	nextSub  int
}

// NewSessionStore returns a store in the initial idle/loading state. Call
// Rehydrate once at startup to settle it.
func NewSessionStore(client ports.AuthClient, storage ports.KeyValueStore, opts SessionOptions, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		client:  client,
		storage: storage,
		opts:    opts,
		log:     log.With().Str("component", "session_store").Logger(),
		state:   domain.NewSession(),
		subs:    make(map[int]chan domain.Session),
	}
}

// Session returns a snapshot of the current session.
func (s *SessionStore) Session() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe returns a channel receiving a snapshot after every transition and
// a function that unsubscribes and closes it. Slow subscribers miss updates
// rather than block the store.
func (s *SessionStore) Subscribe() (<-chan domain.Session, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan domain.Session, subscriberBuffer)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if ch, ok := s.subs[id]; ok {
			close(ch)
			delete(s.subs, id)
		}
	}
}

// Rehydrate restores the session from durable storage without a network
// round trip. Only a complete record authenticates; anything less leaves the
// session unauthenticated.
func (s *SessionStore) Rehydrate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.loadLocked(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("session rehydration skipped")
		s.setLocked(settle(domain.Session{}))
		return
	}
	s.setLocked(next)
}

func (s *SessionStore) loadLocked(ctx context.Context) (domain.Session, error) {
	values := make(map[string]string, len(sessionKeys))
	for _, key := range sessionKeys {
		v, ok, err := s.storage.Get(ctx, key)
		if err != nil {
			return domain.Session{}, fmt.Errorf("read %s: %w", key, err)
		}
		if !ok || v == "" {
			return domain.Session{}, fmt.Errorf("incomplete session record: %s missing", key)
		}
		values[key] = v
	}

	var user domain.User
	if err := json.Unmarshal([]byte(values[KeyUser]), &user); err != nil {
		return domain.Session{}, fmt.Errorf("decode user: %w", err)
	}
	if user.ID == "" || !user.Role.Valid() {
		return domain.Session{}, fmt.Errorf("incomplete session record: unusable %s", KeyUser)
	}
	return authenticated(user, values[KeyToken], values[KeyRefreshToken]), nil
}

// Login exchanges credentials for tokens and persists them.
func (s *SessionStore) Login(ctx context.Context, in ports.Credentials) error {
	if in.DeviceToken == "" {
		in.DeviceToken = s.opts.DeviceToken
	}

	gen, err := s.begin(nil)
	if err != nil {
		return err
	}

	res, err := s.client.Login(ctx, in)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.finishLocked(gen); err != nil {
		return err
	}

	if err != nil {
		err = domain.WithKind(err, domain.KindCredential)
		s.setLocked(failed(domain.Session{}, err))
		return err
	}

	return s.authenticateLocked(ctx, authenticated(res.User, res.AccessToken, res.RefreshToken))
}

// Register submits a new account. Success leaves the session awaiting OTP
// verification, not authenticated.
func (s *SessionStore) Register(ctx context.Context, in ports.Registration) error {
	gen, err := s.begin(nil)
	if err != nil {
		return err
	}

	err = s.client.Register(ctx, in)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.finishLocked(gen); err != nil {
		return err
	}

	if err != nil {
		err = domain.WithKind(err, domain.KindCredential)
		s.setLocked(failed(domain.Session{}, err))
		return err
	}

	handle := in.ContactHandle
	if handle == "" {
		handle = in.Email
	}
	s.clearStorageLocked(ctx)
	s.setLocked(settle(domain.Session{
		Pending: &domain.PendingRegistration{Email: in.Email, ContactHandle: handle},
	}))
	return nil
}

// VerifyOtp confirms the pending registration. An empty contactHandle uses
// the one recorded at registration.
func (s *SessionStore) VerifyOtp(ctx context.Context, contactHandle, code string) error {
	var handle string
	gen, err := s.begin(func(cur domain.Session) error {
		if cur.Pending == nil {
			return domain.ErrNoPendingRegistration
		}
		handle = contactHandle
		if handle == "" {
			handle = cur.Pending.ContactHandle
		}
		return nil
	})
	if err != nil {
		return err
	}

	res, err := s.client.VerifyOtp(ctx, handle, code)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.finishLocked(gen); err != nil {
		return err
	}

	if err != nil {
		err = domain.WithKind(err, domain.KindOtp)
		s.setLocked(failed(s.state, err))
		return err
	}

	if res.AccessToken != "" {
		return s.authenticateLocked(ctx, authenticated(res.User, res.AccessToken, res.RefreshToken))
	}

	// Confirmed but not signed in: keep the user, drop the pending step and
	// any identity still persisted from before.
	user := res.User
	s.clearStorageLocked(ctx)
	s.setLocked(settle(domain.Session{User: &user, Permissions: domain.PermissionsForRole(user.Role)}))
	return nil
}

// ResendOtp asks the backend for a new code for the pending registration.
func (s *SessionStore) ResendOtp(ctx context.Context) error {
	var handle string
	gen, err := s.begin(func(cur domain.Session) error {
		if cur.Pending == nil {
			return domain.ErrNoPendingRegistration
		}
		handle = cur.Pending.ContactHandle
		return nil
	})
	if err != nil {
		return err
	}

	err = s.client.ResendOtp(ctx, handle)
	return s.completeSecondary(gen, err, domain.KindOtp)
}

// RequestPasswordReset starts the password reset flow for email.
func (s *SessionStore) RequestPasswordReset(ctx context.Context, email string) error {
	gen, err := s.begin(nil)
	if err != nil {
		return err
	}

	err = s.client.RequestPasswordReset(ctx, email)
	return s.completeSecondary(gen, err, domain.KindCredential)
}

// ResetPassword completes the password reset flow.
func (s *SessionStore) ResetPassword(ctx context.Context, in ports.PasswordReset) error {
	gen, err := s.begin(nil)
	if err != nil {
		return err
	}

	err = s.client.ResetPassword(ctx, in)
	return s.completeSecondary(gen, err, domain.KindCredential)
}

// completeSecondary settles a flow that never changes the session identity.
func (s *SessionStore) completeSecondary(gen uint64, opErr error, kind domain.ErrorKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.finishLocked(gen); err != nil {
		return err
	}

	if opErr != nil {
		opErr = domain.WithKind(opErr, kind)
		s.setLocked(failed(s.state, opErr))
		return opErr
	}

	next := s.state.Clone()
	next.Error = ""
	s.setLocked(settle(next))
	return nil
}

// RefreshAccessToken swaps the access token, rotating the refresh token when
// the backend returns a new one. The user is left untouched.
func (s *SessionStore) RefreshAccessToken(ctx context.Context) error {
	var refreshToken string
	gen, err := s.begin(func(cur domain.Session) error {
		if cur.RefreshToken == "" {
			return domain.NewAuthError(domain.KindRefresh, "Your session has expired. Please sign in again.", 0, domain.ErrNoRefreshToken)
		}
		refreshToken = cur.RefreshToken
		return nil
	})
	if err != nil {
		return err
	}

	pair, err := s.client.RefreshToken(ctx, refreshToken)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.finishLocked(gen); err != nil {
		return err
	}

	if err != nil {
		err = domain.WithKind(err, domain.KindRefresh)
		if s.opts.LogoutOnRefreshFailure {
			s.clearStorageLocked(ctx)
			s.setLocked(failed(domain.Session{}, err))
			return err
		}
		s.setLocked(failed(s.state, err))
		return err
	}

	next := s.state.Clone()
	next.AccessToken = pair.AccessToken
	if pair.RefreshToken != "" {
		next.RefreshToken = pair.RefreshToken
	}
	if next.User != nil {
		next.Permissions = derivePermissions(next.User.Role, next.AccessToken)
	}
	next.Error = ""
	return s.authenticateLocked(ctx, settle(next))
}

// Logout tears the session down unconditionally. It never fails, is safe to
// call repeatedly and discards the outcome of any request still in flight.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.inFlight = false
	s.clearStorageLocked(ctx)
	s.setLocked(settle(domain.Session{}))
}

// begin marks an operation in flight. check runs against the current session
// under the lock; its error is recorded in the session unless it is the
// in-flight guard.
func (s *SessionStore) begin(check func(domain.Session) error) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return 0, domain.ErrOperationInFlight
	}
	if check != nil {
		if err := check(s.state); err != nil {
			s.setLocked(failed(s.state, err))
			return 0, err
		}
	}

	s.inFlight = true
	next := s.state.Clone()
	next.IsLoading = true
	next.Error = ""
	next.Status = domain.StatusAuthenticating
	s.setLocked(next)
	return s.gen, nil
}

// finishLocked ends the in-flight operation started at gen. A logout in the
// meantime makes the result stale.
func (s *SessionStore) finishLocked(gen uint64) error {
	if gen != s.gen {
		return domain.ErrSessionReset
	}
	s.inFlight = false
	return nil
}

// authenticateLocked persists next and makes it current, or records a
// failure leaving nothing half-written.
func (s *SessionStore) authenticateLocked(ctx context.Context, next domain.Session) error {
	if err := s.persistLocked(ctx, next); err != nil {
		s.log.Error().Err(err).Msg("persist session")
		s.clearStorageLocked(ctx)
		err = fmt.Errorf("%w: %v", domain.ErrPersistSession, err)
		s.setLocked(failed(domain.Session{}, err))
		return err
	}
	s.setLocked(next)
	return nil
}

func (s *SessionStore) persistLocked(ctx context.Context, sess domain.Session) error {
	raw, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.storage.SetMany(context.WithoutCancel(ctx), map[string]string{
		KeyToken:        sess.AccessToken,
		KeyRefreshToken: sess.RefreshToken,
		KeyUser:         string(raw),
	})
}

func (s *SessionStore) clearStorageLocked(ctx context.Context) {
	if err := s.storage.Delete(context.WithoutCancel(ctx), sessionKeys...); err != nil {
		s.log.Warn().Err(err).Msg("clear persisted session")
	}
}

// setLocked commits next and notifies subscribers.
func (s *SessionStore) setLocked(next domain.Session) {
	prev := s.state.Status
	s.state = next

	if prev != next.Status {
		ev := s.log.Info().Str("from", string(prev)).Str("to", string(next.Status))
		if next.User != nil {
			ev = ev.Str("user_id", next.User.ID).Str("role", string(next.User.Role))
		}
		ev.Msg("session transition")
	}

	for _, ch := range s.subs {
		select {
		case ch <- next.Clone():
		default:
		}
	}
}

func authenticated(user domain.User, accessToken, refreshToken string) domain.Session {
	return settle(domain.Session{
		User:         &user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Permissions:  derivePermissions(user.Role, accessToken),
	})
}

// failed records err on base, keeping whatever identity base carries.
func failed(base domain.Session, err error) domain.Session {
	next := base.Clone()
	next.Error = domain.UserMessage(err)
	return settle(next)
}

// settle clears the loading flag and recomputes the derived fields so every
// committed session satisfies its invariants.
func settle(s domain.Session) domain.Session {
	s.IsLoading = false
	s.IsAuthenticated = s.User != nil && s.AccessToken != ""
	switch {
	case s.IsAuthenticated:
		s.Status = domain.StatusAuthenticated
		s.Pending = nil
	case s.Error != "":
		s.Status = domain.StatusFailed
	case s.Pending != nil:
		s.Status = domain.StatusPendingVerification
	default:
		s.Status = domain.StatusUnauthenticated
	}
	return s
}
