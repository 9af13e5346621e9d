package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/servicemarket/admin-console/internal/api/middleware"
	"github.com/servicemarket/admin-console/internal/core/domain"
	"github.com/servicemarket/admin-console/internal/core/ports"
)

// ctxSession returns the snapshot injected by the Session middleware, falling
// back to a fresh read when the route was mounted without it.
func ctxSession(c echo.Context, reader ports.SessionReader) domain.Session {
	if s, ok := c.Get(middleware.ContextSession).(domain.Session); ok {
		return s
	}
	return reader.Session()
}
