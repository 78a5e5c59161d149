package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/avoronov/pricedrop/internal/metrics"
	domain "github.com/avoronov/pricedrop/pkg/types"
)

// maxImageBytes caps image downloads for the detail view.
const maxImageBytes = 10 << 20

// Client fetches product data from the catalog's detail API.
type Client struct {
	catalogURL string
	productURL string
	httpClient *http.Client
	limiter    *RateLimiter
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimiter attaches a rate limiter to every catalog call.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) {
		c.limiter = r
	}
}

// NewClient creates a catalog client. catalogURL is the detail API base,
// productURL the base of user-facing product pages.
func NewClient(catalogURL, productURL string, opts ...Option) *Client {
	c := &Client{
		catalogURL: strings.TrimRight(catalogURL, "/"),
		productURL: strings.TrimRight(productURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// detailResponse mirrors the subset of the catalog detail document we read.
type detailResponse struct {
	Data struct {
		ProductInfo struct {
			BrandName string `json:"brandName"`
			Name      string `json:"name"`
		} `json:"productInfo"`
		Colors []struct {
			PreviewURL    string `json:"previewUrl"`
			Nomenclatures []struct {
				RawMinPriceWithSale float64 `json:"rawMinPriceWithSale"`
			} `json:"nomenclatures"`
		} `json:"colors"`
	} `json:"data"`
}

// Fetch returns the current price and display metadata for a product.
// All failures come back as *Error so callers can contain them per item.
func (c *Client) Fetch(ctx context.Context, itemID int64) (*domain.ProductInfo, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{ItemID: itemID, Err: err}
		}
		metrics.CatalogDailyUsage.Set(float64(c.limiter.DailyCount()))
	}
	metrics.CatalogCallsTotal.Inc()

	url := fmt.Sprintf("%s/%d/detail.aspx", c.catalogURL, itemID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{ItemID: itemID, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{ItemID: itemID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			ItemID: itemID,
			Err:    fmt.Errorf("catalog returned %d", resp.StatusCode),
		}
	}

	var doc detailResponse
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, &Error{ItemID: itemID, Err: fmt.Errorf("decoding detail document: %w", err)}
	}

	info, err := reduceDetail(itemID, &doc)
	if err != nil {
		return nil, &Error{ItemID: itemID, Err: err}
	}
	return info, nil
}

// reduceDetail collapses the catalog document to {id, price, name, image}.
func reduceDetail(itemID int64, doc *detailResponse) (*domain.ProductInfo, error) {
	d := &doc.Data

	if len(d.Colors) == 0 || len(d.Colors[0].Nomenclatures) == 0 {
		return nil, fmt.Errorf("detail document has no price data")
	}

	name := d.ProductInfo.Name
	if d.ProductInfo.BrandName != "" {
		name = fmt.Sprintf("[%s] %s", d.ProductInfo.BrandName, d.ProductInfo.Name)
	}

	// Preview URLs arrive scheme-relative ("//images...").
	image := d.Colors[0].PreviewURL
	if strings.HasPrefix(image, "//") {
		image = "http:" + image
	}

	price := decimal.NewFromFloat(d.Colors[0].Nomenclatures[0].RawMinPriceWithSale).Round(2)
	if price.IsNegative() {
		return nil, fmt.Errorf("detail document has negative price %s", price)
	}

	return &domain.ProductInfo{
		ID:       itemID,
		Name:     name,
		ImageURL: image,
		Price:    price,
	}, nil
}

// DownloadImage fetches the raw bytes of a product image for the detail view.
func (c *Client) DownloadImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating image request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image host returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("reading image body: %w", err)
	}
	return data, nil
}

// ProductURL returns the user-facing page URL for a product ID.
func (c *Client) ProductURL(itemID int64) string {
	return fmt.Sprintf("%s/%d/detail.aspx", c.productURL, itemID)
}
