package client

import (
	"context"
	"fmt"

	domain "github.com/avoronov/pricedrop/pkg/types"
)

// ItemsResponse wraps the tracked-items listing.
type ItemsResponse struct {
	Items []domain.Item `json:"items"`
	Total int           `json:"total"`
}

// SubscribersResponse wraps an item's subscriber listing.
type SubscribersResponse struct {
	Subscribers []domain.User `json:"subscribers"`
	Total       int           `json:"total"`
}

// ListItems returns every tracked item.
func (c *Client) ListItems(ctx context.Context) (*ItemsResponse, error) {
	var resp ItemsResponse
	if err := c.get(ctx, "/api/v1/items", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetItem returns a single tracked item by its catalog ID.
func (c *Client) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	var item domain.Item
	if err := c.get(ctx, fmt.Sprintf("/api/v1/items/%d", id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListSubscribers returns the users subscribed to an item.
func (c *Client) ListSubscribers(ctx context.Context, id int64) (*SubscribersResponse, error) {
	var resp SubscribersResponse
	if err := c.get(ctx, fmt.Sprintf("/api/v1/items/%d/subscribers", id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteItem removes a tracked item and its subscriptions.
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/api/v1/items/%d", id), nil)
}
