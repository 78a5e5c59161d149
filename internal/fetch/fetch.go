// Package fetch retrieves current product data from the external catalog.
package fetch

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	domain "github.com/avoronov/pricedrop/pkg/types"
)

// Fetcher returns the current catalog data for a product ID.
type Fetcher interface {
	Fetch(ctx context.Context, itemID int64) (*domain.ProductInfo, error)
}

// Error is a per-item fetch failure. The watcher treats it as non-fatal:
// the item is skipped this cycle and its previous price is retained.
type Error struct {
	ItemID int64
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetching item %d: %v", e.ItemID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var productURLRe = regexp.MustCompile(`^https://www\.wildberries\.ru/catalog/(\d+)/detail\.aspx`)

// ParseItemID extracts the catalog product ID from a product page URL.
func ParseItemID(rawURL string) (int64, error) {
	m := productURLRe.FindStringSubmatch(rawURL)
	if m == nil {
		return 0, fmt.Errorf("not a product URL: %q", rawURL)
	}

	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing product ID from %q: %w", rawURL, err)
	}
	return id, nil
}

// IsProductURL reports whether the text looks like a trackable product link.
func IsProductURL(text string) bool {
	return productURLRe.MatchString(text)
}
