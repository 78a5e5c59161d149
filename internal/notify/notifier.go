// Package notify defines the notification interface and implementations
// for price-drop delivery.
package notify

import (
	"context"
	"fmt"
)

// Notifier delivers a text message to a chat-platform user. Delivery is
// best-effort: callers treat failures as non-fatal.
type Notifier interface {
	Send(ctx context.Context, userID int64, text string) error
}

// DeliverError is a per-recipient delivery failure. It never blocks
// notifying the remaining subscribers of an item.
type DeliverError struct {
	UserID int64
	Err    error
}

func (e *DeliverError) Error() string {
	return fmt.Sprintf("delivering to user %d: %v", e.UserID, e.Err)
}

func (e *DeliverError) Unwrap() error {
	return e.Err
}
