package domain

import "errors"

// GenericErrorMessage is shown when the backend gives no usable message.
const GenericErrorMessage = "Something went wrong. Please try again."

// ErrorKind classifies session operation failures.
type ErrorKind string

const (
	KindCredential ErrorKind = "credential"
	KindNetwork    ErrorKind = "network"
	KindOtp        ErrorKind = "otp"
	KindRefresh    ErrorKind = "refresh"
)

var (
	ErrCredential = errors.New("credentials rejected")
	ErrNetwork    = errors.New("backend unreachable")
	ErrOtp        = errors.New("verification code rejected")
	ErrRefresh    = errors.New("refresh token rejected")
)

var (
	ErrOperationInFlight     = errors.New("session operation already in flight")
	ErrNoPendingRegistration = errors.New("no registration awaiting verification")
	ErrPersistSession        = errors.New("session could not be persisted")
	ErrSessionReset          = errors.New("session was reset while the request was in flight")
	ErrNoRefreshToken        = errors.New("no refresh token")
	ErrUnknownNavigationPath = errors.New("path is not part of the navigation tree")
)

// AuthError is returned by every failing session operation. Message is the
// user-facing text recorded in Session.Error.
type AuthError struct {
	Kind    ErrorKind
	Message string
	Status  int
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// Is matches the kind sentinels so callers can use errors.Is(err, ErrOtp).
func (e *AuthError) Is(target error) bool {
	switch target {
	case ErrCredential:
		return e.Kind == KindCredential
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrOtp:
		return e.Kind == KindOtp
	case ErrRefresh:
		return e.Kind == KindRefresh
	}
	return false
}

// NewAuthError builds an AuthError, falling back to the generic message.
func NewAuthError(kind ErrorKind, message string, status int, cause error) *AuthError {
	if message == "" {
		message = GenericErrorMessage
	}
	return &AuthError{Kind: kind, Message: message, Status: status, Err: cause}
}

// WithKind returns a copy of err reclassified as kind. Network failures keep
// their kind: the user-facing level does not tell transport apart from the
// operation that was attempted.
func WithKind(err error, kind ErrorKind) error {
	var ae *AuthError
	if !errors.As(err, &ae) {
		return NewAuthError(kind, "", 0, err)
	}
	if ae.Kind == KindNetwork {
		return ae
	}
	c := *ae
	c.Kind = kind
	return &c
}

// UserMessage extracts the text to record in Session.Error.
func UserMessage(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Message
	}
	switch {
	case errors.Is(err, ErrOperationInFlight):
		return "Another request is still in progress."
	case errors.Is(err, ErrNoPendingRegistration):
		return "There is no registration awaiting verification."
	case errors.Is(err, ErrPersistSession):
		return "Could not save the session. Please try again."
	}
	return GenericErrorMessage
}
