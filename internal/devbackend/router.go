package devbackend

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/servicemarket/admin-console/internal/api/handler"
	"github.com/servicemarket/admin-console/internal/api/middleware"
	"github.com/servicemarket/admin-console/internal/infrastructure/http/handlers"
)

// NewRouter builds the Echo instance serving the /auth/* contract.
func NewRouter(svc *Service, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = ErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))

	h := NewHandler(svc, log)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/register", h.Register)
	auth.POST("/verify-otp", h.VerifyOtp)
	auth.POST("/resend-otp", h.ResendOtp)
	auth.POST("/refresh-token", h.RefreshToken)
	auth.POST("/request-password-reset", h.RequestPasswordReset)
	auth.POST("/reset-password", h.ResetPassword)

	// --- Health probe ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)

	return e
}
