package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/servicemarket/admin-console/internal/core/ports"
)

type NavigationHandler struct {
	nav    ports.NavigationService
	reader ports.SessionReader
}

func NewNavigationHandler(nav ports.NavigationService, reader ports.SessionReader) *NavigationHandler {
	return &NavigationHandler{nav: nav, reader: reader}
}

type toggleRequest struct {
	Path string `json:"path" validate:"required"`
}

type toggleResponse struct {
	Path     string `json:"path"`
	Expanded bool   `json:"expanded"`
}

type sidebarRequest struct {
	Collapsed *bool `json:"collapsed" validate:"required"`
}

type badgeRequest struct {
	Path  string `json:"path"  validate:"required"`
	Count *int   `json:"count" validate:"required,gte=0"`
}

// Get handles GET /navigation?location=. The location defaults to "/".
func (h *NavigationHandler) Get(c echo.Context) error {
	location := c.QueryParam("location")
	if location == "" {
		location = "/"
	}
	return c.JSON(http.StatusOK, h.nav.Build(ctxSession(c, h.reader), location))
}

// Toggle handles POST /navigation/toggle.
func (h *NavigationHandler) Toggle(c echo.Context) error {
	var req toggleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	expanded, err := h.nav.Toggle(req.Path)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toggleResponse{Path: req.Path, Expanded: expanded})
}

// SetSidebar handles PUT /navigation/sidebar.
func (h *NavigationHandler) SetSidebar(c echo.Context) error {
	var req sidebarRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.nav.SetCollapsed(c.Request().Context(), *req.Collapsed); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"collapsed": h.nav.Collapsed()})
}

// SetBadge handles PUT /navigation/badge.
func (h *NavigationHandler) SetBadge(c echo.Context) error {
	var req badgeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.nav.SetBadge(req.Path, *req.Count); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
