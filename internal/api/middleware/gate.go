package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/servicemarket/admin-console/internal/api/metrics"
	"github.com/servicemarket/admin-console/internal/core/domain"
	"github.com/servicemarket/admin-console/internal/core/ports"
	"github.com/servicemarket/admin-console/internal/core/service"
)

// Redirect targets of the gate.
const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

type loadingResponse struct {
	Status string `json:"status"`
}

// Gate protects a screen with req. A loading session gets a 202 placeholder,
// an anonymous one a redirect to login carrying the requested path, and a
// user lacking the role or a permission a redirect to the unauthorized screen.
func Gate(reader ports.SessionReader, gate service.AccessGate, screen string, req domain.AccessRequirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, ok := c.Get(ContextSession).(domain.Session)
			if !ok {
				s = reader.Session()
				c.Set(ContextSession, s)
			}

			decision := gate.Decide(s, req)
			metrics.GateDecisionsTotal.WithLabelValues(screen, string(decision)).Inc()

			switch decision {
			case domain.DecisionLoading:
				return c.JSON(http.StatusAccepted, loadingResponse{Status: string(decision)})
			case domain.DecisionRedirectLogin:
				return c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request().URL.RequestURI()))
			case domain.DecisionRedirectUnauthorized:
				return c.Redirect(http.StatusFound, UnauthorizedPath)
			}
			return next(c)
		}
	}
}
