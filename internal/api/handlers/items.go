package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avoronov/pricedrop/internal/store"
	domain "github.com/avoronov/pricedrop/pkg/types"
)

// ItemsProvider is the slice of the store the item endpoints need.
type ItemsProvider interface {
	ListItems(ctx context.Context) ([]domain.Item, error)
	GetItem(ctx context.Context, id int64) (*domain.Item, error)
	ListSubscribers(ctx context.Context, itemID int64) ([]domain.User, error)
	DeleteItem(ctx context.Context, id int64) error
}

// ItemsHandler handles the tracked-item admin endpoints.
type ItemsHandler struct {
	store ItemsProvider
}

// NewItemsHandler creates an ItemsHandler.
func NewItemsHandler(s ItemsProvider) *ItemsHandler {
	return &ItemsHandler{store: s}
}

// ItemsResponse is the body of GET /api/v1/items.
type ItemsResponse struct {
	Items []domain.Item `json:"items"`
	Total int           `json:"total"`
}

// SubscribersResponse is the body of GET /api/v1/items/:id/subscribers.
type SubscribersResponse struct {
	Subscribers []domain.User `json:"subscribers"`
	Total       int           `json:"total"`
}

// ListItems returns every tracked item.
func (h *ItemsHandler) ListItems(c echo.Context) error {
	items, err := h.store.ListItems(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "listing items failed",
		})
	}
	return c.JSON(http.StatusOK, ItemsResponse{Items: items, Total: len(items)})
}

// GetItem returns a single tracked item by its catalog ID.
func (h *ItemsHandler) GetItem(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	item, err := h.store.GetItem(c.Request().Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "item not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "loading item failed",
		})
	}
	return c.JSON(http.StatusOK, item)
}

// ListSubscribers returns the users subscribed to an item.
func (h *ItemsHandler) ListSubscribers(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.store.GetItem(ctx, id); errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "item not found"})
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "loading item failed",
		})
	}

	subs, err := h.store.ListSubscribers(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "listing subscribers failed",
		})
	}
	return c.JSON(http.StatusOK, SubscribersResponse{Subscribers: subs, Total: len(subs)})
}

// DeleteItem removes an item and, via cascade, its subscriptions. Operators
// use it to prune items nobody subscribes to anymore.
func (h *ItemsHandler) DeleteItem(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	err = h.store.DeleteItem(c.Request().Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "item not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "deleting item failed",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

// itemID parses the :id path parameter. On failure it writes the 400
// response itself and returns the already-handled error.
func itemID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid item ID",
		})
	}
	return id, nil
}
