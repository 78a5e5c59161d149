// Package domain defines the core business types for pricedrop.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a tracked product. The primary key is the catalog's own product
// ID, not a generated one, so re-tracking the same URL always lands on the
// same row.
type Item struct {
	ID        int64           `json:"id"         db:"id"`
	Name      string          `json:"name"       db:"name"`
	ImageURL  string          `json:"image_url"  db:"image_url"`
	Price     decimal.Decimal `json:"price"      db:"price"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// User is a chat-platform user, keyed by the platform's user ID. Users are
// created lazily on first interaction and never deleted.
type User struct {
	ID        int64     `json:"id"         db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ProductInfo is the current catalog data for a single product, as returned
// by the price fetcher.
type ProductInfo struct {
	ID       int64
	Name     string
	ImageURL string
	Price    decimal.Decimal
}

// SystemState holds a snapshot of aggregate counts for the admin API.
type SystemState struct {
	ItemsTotal         int `json:"items_total"         db:"items_total"`
	ItemsOrphaned      int `json:"items_orphaned"      db:"items_orphaned"`
	UsersTotal         int `json:"users_total"         db:"users_total"`
	SubscriptionsTotal int `json:"subscriptions_total" db:"subscriptions_total"`
}
