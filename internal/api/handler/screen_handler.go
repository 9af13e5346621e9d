package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/servicemarket/admin-console/internal/core/domain"
	"github.com/servicemarket/admin-console/internal/core/ports"
)

// ScreenHandler renders registered screens. Access control happens in the
// Gate middleware mounted in front of each route.
type ScreenHandler struct {
	reader ports.SessionReader
}

func NewScreenHandler(reader ports.SessionReader) *ScreenHandler {
	return &ScreenHandler{reader: reader}
}

type screenResponse struct {
	Screen string       `json:"screen"`
	Title  string       `json:"title"`
	Path   string       `json:"path"`
	User   *domain.User `json:"user,omitempty"`
}

// Render returns the handler for one screen.
func (h *ScreenHandler) Render(screen domain.Screen) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := ctxSession(c, h.reader)
		return c.JSON(http.StatusOK, screenResponse{
			Screen: screen.Name,
			Title:  screen.Title,
			Path:   screen.Path,
			User:   s.User,
		})
	}
}
