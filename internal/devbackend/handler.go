package devbackend

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/servicemarket/admin-console/internal/core/domain"
)

type Handler struct {
	svc *Service
	log zerolog.Logger
}

func NewHandler(svc *Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type loginRequest struct {
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required"`
	DeviceToken string `json:"deviceToken"`
}

type registerRequest struct {
	Name          string `json:"name"          validate:"required"`
	Email         string `json:"email"         validate:"required,email"`
	Password      string `json:"password"      validate:"required,min=6"`
	Role          string `json:"role"          validate:"required,role"`
	ContactHandle string `json:"contactHandle"`
}

type verifyRequest struct {
	ContactHandle string `json:"contactHandle" validate:"required"`
	Code          string `json:"code"          validate:"required"`
}

type contactRequest struct {
	ContactHandle string `json:"contactHandle" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Code     string `json:"code"     validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type sessionResponse struct {
	AccessToken  string      `json:"accessToken,omitempty"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	User         domain.User `json:"user"`
}

type refreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	tokens, account, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sessionResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         account.User(),
	})
}

// Register handles POST /auth/register.
func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	_, err := h.svc.Register(c.Request().Context(), RegisterInput{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		Role:          domain.Role(req.Role),
		ContactHandle: req.ContactHandle,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, messageResponse{Message: "Verification code sent."})
}

// VerifyOtp handles POST /auth/verify-otp.
func (h *Handler) VerifyOtp(c echo.Context) error {
	var req verifyRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	tokens, account, err := h.svc.VerifyOtp(c.Request().Context(), req.ContactHandle, req.Code)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sessionResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         account.User(),
	})
}

// ResendOtp handles POST /auth/resend-otp.
func (h *Handler) ResendOtp(c echo.Context) error {
	var req contactRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.ResendOtp(c.Request().Context(), req.ContactHandle); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Verification code sent."})
}

// RefreshToken handles POST /auth/refresh-token.
func (h *Handler) RefreshToken(c echo.Context) error {
	var req refreshRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	tokens, err := h.svc.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, refreshResponse{Token: tokens.AccessToken, RefreshToken: tokens.RefreshToken})
}

// RequestPasswordReset handles POST /auth/request-password-reset.
func (h *Handler) RequestPasswordReset(c echo.Context) error {
	var req emailRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Reset code sent."})
}

// ResetPassword handles POST /auth/reset-password.
func (h *Handler) ResetPassword(c echo.Context) error {
	var req resetRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.ResetPassword(c.Request().Context(), req.Email, req.Code, req.Password); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Password updated."})
}

// bind decodes and validates req. Failures are returned as 400 HTTPErrors
// for ErrorHandler to render.
func (h *Handler) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload.")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// ErrorHandler renders echo errors with the {"message": ...} body of the
// auth API.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
			_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		_ = c.JSON(he.Code, messageResponse{Message: fmt.Sprint(he.Message)})
	}
}

// fail renders err as the auth API error body. Unexpected errors use the
// {"error": ...} envelope without details.
func (h *Handler) fail(c echo.Context, err error) error {
	status, msg := http.StatusInternalServerError, ""
	switch {
	case errors.Is(err, ErrAccountExists):
		status, msg = http.StatusConflict, "An account with this email already exists."
	case errors.Is(err, ErrAccountNotFound):
		status, msg = http.StatusNotFound, "Account not found."
	case errors.Is(err, ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, ErrNotVerified):
		status, msg = http.StatusForbidden, "Please verify your account before signing in."
	case errors.Is(err, ErrInvalidCode):
		status, msg = http.StatusBadRequest, "Invalid or expired code."
	case errors.Is(err, ErrInvalidRefreshToken):
		status, msg = http.StatusUnauthorized, "Your session has expired. Please sign in again."
	case errors.Is(err, ErrInvalidInput):
		status, msg = http.StatusBadRequest, "Please fill in all required fields."
	}

	if msg == "" {
		h.log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		return c.JSON(status, map[string]string{"error": "internal server error"})
	}
	return c.JSON(status, messageResponse{Message: msg})
}
