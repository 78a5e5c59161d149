package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDetail = `{
	"data": {
		"productInfo": {"brandName": "Acme", "name": "Mechanical Keyboard"},
		"colors": [{
			"previewUrl": "//images.example/c/42/preview.jpg",
			"nomenclatures": [{"rawMinPriceWithSale": 1999.90}]
		}]
	}
}`

func TestClient_Fetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/42/detail.aspx", r.URL.Path)
		_, _ = w.Write([]byte(sampleDetail))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "https://www.wildberries.ru/catalog")

	info, err := c.Fetch(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, int64(42), info.ID)
	assert.Equal(t, "[Acme] Mechanical Keyboard", info.Name)
	assert.Equal(t, "http://images.example/c/42/preview.jpg", info.ImageURL)
	assert.Equal(t, "1999.9", info.Price.String())
}

func TestClient_Fetch_NoBrand(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"data": {
				"productInfo": {"name": "Plain Thing"},
				"colors": [{
					"previewUrl": "http://images.example/p.jpg",
					"nomenclatures": [{"rawMinPriceWithSale": 10}]
				}]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")

	info, err := c.Fetch(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Plain Thing", info.Name)
	assert.Equal(t, "http://images.example/p.jpg", info.ImageURL)
}

func TestClient_Fetch_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantErr: "catalog returned 502",
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"data": [`))
			},
			wantErr: "decoding detail document",
		},
		{
			name: "no price data",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"data": {"productInfo": {"name": "x"}, "colors": []}}`))
			},
			wantErr: "no price data",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL, "")

			_, err := c.Fetch(context.Background(), 99)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var fe *Error
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, int64(99), fe.ItemID)
		})
	}
}

func TestClient_DownloadImage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	c := NewClient("http://unused", "")

	data, err := c.DownloadImage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
}

func TestClient_DownloadImage_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("http://unused", "")

	_, err := c.DownloadImage(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image host returned 404")
}

func TestClient_ProductURL(t *testing.T) {
	t.Parallel()

	c := NewClient("http://unused", "https://www.wildberries.ru/catalog/")
	assert.Equal(t, "https://www.wildberries.ru/catalog/42/detail.aspx", c.ProductURL(42))
}

func TestParseItemID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		want    int64
		wantErr bool
	}{
		{
			name: "plain product url",
			url:  "https://www.wildberries.ru/catalog/12345/detail.aspx",
			want: 12345,
		},
		{
			name: "with query string",
			url:  "https://www.wildberries.ru/catalog/98765/detail.aspx?targetUrl=GP",
			want: 98765,
		},
		{
			name:    "not a product url",
			url:     "https://example.com/catalog/1/detail.aspx",
			wantErr: true,
		},
		{
			name:    "missing id",
			url:     "https://www.wildberries.ru/catalog//detail.aspx",
			wantErr: true,
		},
		{
			name:    "plain text",
			url:     "hello",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, err := ParseItemID(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestIsProductURL(t *testing.T) {
	t.Parallel()

	assert.True(t, IsProductURL("https://www.wildberries.ru/catalog/1/detail.aspx"))
	assert.False(t, IsProductURL("list"))
}
