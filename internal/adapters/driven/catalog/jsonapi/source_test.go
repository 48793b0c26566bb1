package jsonapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/arrivals/internal/core/domain"
)

const productList = `{
  "moreProducts": {
    "productWindow": [
      {"id": "30449908", "name": "FEJKA", "pipUrl": "https://example.com/p/fejka-30449908/", "price": 9.99},
      {"id": "", "name": "BROKEN", "pipUrl": ""},
      {"id": "00359816", "name": "MONSTERA", "pipUrl": "https://example.com/p/monstera-00359816/"}
    ]
  },
  "filters": []
}`

func serve(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestNew(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	src, err := New("https://example.com/list.json")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/list.json", src.URL())
}

func TestFetchCatalog(t *testing.T) {
	t.Run("maps products in order", func(t *testing.T) {
		srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			_, _ = w.Write([]byte(productList))
		})
		src, err := New(srv.URL, WithRate(0))
		require.NoError(t, err)

		items, err := src.FetchCatalog(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []domain.CatalogItem{
			{ID: "30449908", Name: "FEJKA", DetailURL: "https://example.com/p/fejka-30449908/"},
			{ID: "00359816", Name: "MONSTERA", DetailURL: "https://example.com/p/monstera-00359816/"},
		}, items)
	})

	t.Run("missing product window is an empty catalog", func(t *testing.T) {
		srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})
		src, err := New(srv.URL, WithRate(0))
		require.NoError(t, err)

		items, err := src.FetchCatalog(context.Background())

		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("non-2xx status", func(t *testing.T) {
		srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		})
		src, err := New(srv.URL, WithRate(0))
		require.NoError(t, err)

		_, err = src.FetchCatalog(context.Background())

		var statusErr *HTTPStatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("invalid json", func(t *testing.T) {
		srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})
		src, err := New(srv.URL, WithRate(0))
		require.NoError(t, err)

		_, err = src.FetchCatalog(context.Background())

		assert.ErrorContains(t, err, "decode catalog")
	})

	t.Run("cancelled context", func(t *testing.T) {
		srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(productList))
		})
		src, err := New(srv.URL, WithRate(0))
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = src.FetchCatalog(ctx)

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("custom client", func(t *testing.T) {
		srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(productList))
		})
		src, err := New(srv.URL, WithRate(0), WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
		require.NoError(t, err)

		_, err = src.FetchCatalog(context.Background())

		assert.Error(t, err)
	})
}
