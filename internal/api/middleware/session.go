package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/servicemarket/admin-console/internal/core/ports"
)

// ContextSession is the context key of the snapshot set by Session.
const ContextSession = "session"

// Session injects a snapshot of the current session into the context so every
// handler of one request sees the same session.
func Session(reader ports.SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := reader.Session()
			c.Set(ContextSession, s)
			return next(c)
		}
	}
}
