package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/newsreel/models"
)

// RenderLister reads the render ledger; *store.Store satisfies it.
type RenderLister interface {
	ListRenders(ctx context.Context, limit int) ([]models.RenderRecord, error)
}

type RendersHandler struct {
	Ledger RenderLister
}

func (h *RendersHandler) Register(g *echo.Group) {
	g.GET("", h.list)
}

func (h *RendersHandler) list(c echo.Context) error {
	if h.Ledger == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "render ledger is not configured")
	}
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}
	items, err := h.Ledger.ListRenders(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []models.RenderRecord{}
	}
	return c.JSON(http.StatusOK, items)
}
