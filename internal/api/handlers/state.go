package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	domain "github.com/avoronov/pricedrop/pkg/types"
)

// StateProvider queries aggregate system counts.
type StateProvider interface {
	GetSystemState(ctx context.Context) (*domain.SystemState, error)
}

// StateHandler handles GET /api/v1/state.
type StateHandler struct {
	store StateProvider
}

// NewStateHandler creates a StateHandler.
func NewStateHandler(s StateProvider) *StateHandler {
	return &StateHandler{store: s}
}

// GetState returns current aggregate system counts.
func (h *StateHandler) GetState(c echo.Context) error {
	state, err := h.store.GetSystemState(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to get system state",
		})
	}
	return c.JSON(http.StatusOK, state)
}
