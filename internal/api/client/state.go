package client

import (
	"context"

	domain "github.com/avoronov/pricedrop/pkg/types"
)

// GetState returns the aggregate system counts.
func (c *Client) GetState(ctx context.Context) (*domain.SystemState, error) {
	var state domain.SystemState
	if err := c.get(ctx, "/api/v1/state", &state); err != nil {
		return nil, err
	}
	return &state, nil
}
