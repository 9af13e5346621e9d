package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/servicemarket/admin-console/internal/api/handler"
	"github.com/servicemarket/admin-console/internal/api/middleware"
	"github.com/servicemarket/admin-console/internal/core/domain"
	"github.com/servicemarket/admin-console/internal/core/ports"
	"github.com/servicemarket/admin-console/internal/core/service"
	"github.com/servicemarket/admin-console/internal/infrastructure/http/handlers"
)

// Dependencies are the services the console HTTP surface is built on.
type Dependencies struct {
	Store      ports.SessionStore
	Navigation ports.NavigationService
	Gate       service.AccessGate
	Screens    []domain.Screen
	Storage    ports.KeyValueStore
	Log        zerolog.Logger
	// Registry receives the HTTP request metrics and backs /metrics.
	// Defaults to the global Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "console_http",
		Registerer: registerer,
	}))

	// --- Session routes ---
	sessionHandler := handler.NewSessionHandler(deps.Store)
	s := e.Group("/session")
	s.GET("", sessionHandler.Get)
	s.POST("/login", sessionHandler.Login)
	s.POST("/register", sessionHandler.Register)
	s.POST("/verify-otp", sessionHandler.VerifyOtp)
	s.POST("/resend-otp", sessionHandler.ResendOtp)
	s.POST("/refresh", sessionHandler.Refresh)
	s.POST("/logout", sessionHandler.Logout)
	s.POST("/password-reset/request", sessionHandler.RequestPasswordReset)
	s.POST("/password-reset/confirm", sessionHandler.ConfirmPasswordReset)

	// --- Navigation routes ---
	navHandler := handler.NewNavigationHandler(deps.Navigation, deps.Store)
	n := e.Group("/navigation", middleware.Session(deps.Store))
	n.GET("", navHandler.Get)
	// Presentation state only changes for a signed-in operator.
	signedIn := middleware.Gate(deps.Store, deps.Gate, "navigation", domain.AccessRequirement{})
	n.POST("/toggle", navHandler.Toggle, signedIn)
	n.PUT("/sidebar", navHandler.SetSidebar, signedIn)
	n.PUT("/badge", navHandler.SetBadge, signedIn)

	// --- Screens (gated) ---
	screenHandler := handler.NewScreenHandler(deps.Store)
	screens := e.Group("/screens", middleware.Session(deps.Store))
	for _, screen := range deps.Screens {
		if screen.Public {
			e.GET(screen.Path, screenHandler.Render(screen))
			continue
		}
		screens.GET("/"+screen.Name, screenHandler.Render(screen),
			middleware.Gate(deps.Store, deps.Gate, screen.Name, screen.Requirement))
	}

	// --- Health probes & metrics (no gate) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(deps.Storage)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – is session storage reachable?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))

	return e
}
