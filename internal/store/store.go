// Package store defines the datastore abstraction for pricedrop.
// All business logic depends on the Store interface, never on concrete
// implementations. This enables fake-based testing without a running database.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	domain "github.com/avoronov/pricedrop/pkg/types"
)

// ErrNotFound is returned when a requested item or user does not exist.
var ErrNotFound = errors.New("not found")

// Store defines all data access operations for pricedrop.
type Store interface {
	// Items
	//
	// UpsertItem creates the item on first track, keyed by the catalog's
	// product ID. If the item already exists it is returned unchanged and
	// created is false — tracking is idempotent.
	UpsertItem(ctx context.Context, info *domain.ProductInfo) (item *domain.Item, created bool, err error)
	GetItem(ctx context.Context, id int64) (*domain.Item, error)
	ListItems(ctx context.Context) ([]domain.Item, error)
	// UpdateItemPrice sets the price only if the stored price still equals
	// oldPrice, making the watcher's read-compare-write sequence atomic at
	// item granularity. Returns false when the row was changed concurrently.
	UpdateItemPrice(ctx context.Context, id int64, oldPrice, newPrice decimal.Decimal) (bool, error)
	DeleteItem(ctx context.Context, id int64) error

	// Users
	GetOrCreateUser(ctx context.Context, id int64) (user *domain.User, created bool, err error)

	// Subscriptions
	AddSubscriber(ctx context.Context, itemID, userID int64) error
	RemoveSubscriber(ctx context.Context, itemID, userID int64) error
	ListSubscribers(ctx context.Context, itemID int64) ([]domain.User, error)
	// ListItemsForUser returns the user's tracked items in subscription
	// order (oldest first), which keeps page windows stable across renders.
	ListItemsForUser(ctx context.Context, userID int64, offset, limit int) ([]domain.Item, error)
	CountItemsForUser(ctx context.Context, userID int64) (int, error)

	// Admin
	GetSystemState(ctx context.Context) (*domain.SystemState, error)

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}
