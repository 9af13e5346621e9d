package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/servicemarket/admin-console/internal/core/domain"
	"github.com/servicemarket/admin-console/internal/core/ports"
)

type SessionHandler struct {
	store ports.SessionStore
}

func NewSessionHandler(store ports.SessionStore) *SessionHandler {
	return &SessionHandler{store: store}
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

type verifyOtpRequest struct {
	ContactHandle string `json:"contactHandle"`
	Code          string `json:"code" validate:"required"`
}

type resetRequestRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetConfirmRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Code     string `json:"code"     validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// Get handles GET /session.
func (h *SessionHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Session())
}

// Login handles POST /session/login.
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	err := h.store.Login(c.Request().Context(), ports.Credentials{
		Email:       req.Email,
		Password:    req.Password,
		DeviceToken: req.DeviceToken,
	})
	return h.respond(c, http.StatusOK, err)
}

// Register handles POST /session/register.
func (h *SessionHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	err := h.store.Register(c.Request().Context(), ports.Registration{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		Role:          domain.Role(req.Role),
		ContactHandle: req.ContactHandle,
	})
	return h.respond(c, http.StatusAccepted, err)
}

// VerifyOtp handles POST /session/verify-otp.
func (h *SessionHandler) VerifyOtp(c echo.Context) error {
	var req verifyOtpRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	err := h.store.VerifyOtp(c.Request().Context(), req.ContactHandle, req.Code)
	return h.respond(c, http.StatusOK, err)
}

// ResendOtp handles POST /session/resend-otp.
func (h *SessionHandler) ResendOtp(c echo.Context) error {
	return h.respond(c, http.StatusOK, h.store.ResendOtp(c.Request().Context()))
}

// Refresh handles POST /session/refresh.
func (h *SessionHandler) Refresh(c echo.Context) error {
	return h.respond(c, http.StatusOK, h.store.RefreshAccessToken(c.Request().Context()))
}

// Logout handles POST /session/logout. It always succeeds.
func (h *SessionHandler) Logout(c echo.Context) error {
	h.store.Logout(c.Request().Context())
	return c.JSON(http.StatusOK, h.store.Session())
}

// RequestPasswordReset handles POST /session/password-reset/request.
func (h *SessionHandler) RequestPasswordReset(c echo.Context) error {
	var req resetRequestRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return h.respond(c, http.StatusAccepted, h.store.RequestPasswordReset(c.Request().Context(), req.Email))
}

// ConfirmPasswordReset handles POST /session/password-reset/confirm.
func (h *SessionHandler) ConfirmPasswordReset(c echo.Context) error {
	var req resetConfirmRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	err := h.store.ResetPassword(c.Request().Context(), ports.PasswordReset{
		Email:    req.Email,
		Code:     req.Code,
		Password: req.Password,
	})
	return h.respond(c, http.StatusOK, err)
}

// respond renders the session on success and hands failures to the central
// error handler.
func (h *SessionHandler) respond(c echo.Context, status int, err error) error {
	if err != nil {
		return err
	}
	return c.JSON(status, h.store.Session())
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
