package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/servicemarket/admin-console/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps session errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ae *domain.AuthError
	if errors.As(err, &ae) {
		return authStatus(ae), errorResponse{Error: ae.Message, Kind: string(ae.Kind)}
	}

	switch {
	case errors.Is(err, domain.ErrOperationInFlight),
		errors.Is(err, domain.ErrNoPendingRegistration),
		errors.Is(err, domain.ErrSessionReset):
		return http.StatusConflict, errorResponse{Error: domain.UserMessage(err)}
	case errors.Is(err, domain.ErrUnknownNavigationPath):
		return http.StatusNotFound, errorResponse{Error: "unknown navigation path"}
	case errors.Is(err, domain.ErrPersistSession):
		log.Error().Err(err).Str("path", c.Path()).Msg("session not persisted")
		return http.StatusServiceUnavailable, errorResponse{Error: domain.UserMessage(err)}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

// authStatus keeps the backend's 4xx status when there is one and otherwise
// derives the status from the error kind.
func authStatus(ae *domain.AuthError) int {
	if ae.Kind == domain.KindNetwork {
		return http.StatusBadGateway
	}
	if ae.Status >= 400 && ae.Status < 500 {
		return ae.Status
	}
	switch ae.Kind {
	case domain.KindOtp:
		return http.StatusBadRequest
	case domain.KindCredential, domain.KindRefresh:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
