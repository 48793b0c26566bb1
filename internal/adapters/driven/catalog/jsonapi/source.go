// Package jsonapi reads the catalog from a JSON product-list endpoint.
package jsonapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driven"
	"github.com/custodia-labs/arrivals/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.CatalogSource = (*Source)(nil)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxBodySize caps how much of a response is read (8MB).
	MaxBodySize = 8 * 1024 * 1024

	userAgent = "arrivals/1.0"
)

// HTTPStatusError is returned when the endpoint answers with a non-2xx status.
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("catalog: unexpected status %d from %s", e.StatusCode, e.URL)
}

// payload is the product-list document served by the endpoint.
// Only the fields the catalog needs are decoded.
type payload struct {
	MoreProducts struct {
		ProductWindow []product `json:"productWindow"`
	} `json:"moreProducts"`
}

type product struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	PipURL string `json:"pipUrl"`
}

// Source fetches the catalog with one GET per cycle.
type Source struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

// Option configures a Source.
type Option func(*Source)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Source) {
		s.client = client
	}
}

// WithRate limits requests to perSecond. A non-positive value disables
// throttling.
func WithRate(perSecond float64) Option {
	return func(s *Source) {
		if perSecond <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// New creates a source for url.
func New(url string, opts ...Option) (*Source, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: catalog url is required", domain.ErrInvalidInput)
	}
	s := &Source{
		url:     url,
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// URL returns the endpoint the source reads.
func (s *Source) URL() string {
	return s.url
}

// FetchCatalog downloads and decodes the product list.
// Products without an id are dropped.
func (s *Source) FetchCatalog(ctx context.Context) ([]domain.CatalogItem, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxBodySize))
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, URL: s.url}
	}

	var body payload
	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxBodySize)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	products := body.MoreProducts.ProductWindow
	items := make([]domain.CatalogItem, 0, len(products))
	for _, p := range products {
		if p.ID == "" {
			logger.Debug("catalog: skipping product without id (%q)", p.Name)
			continue
		}
		items = append(items, domain.CatalogItem{
			ID:        p.ID,
			Name:      p.Name,
			DetailURL: p.PipURL,
		})
	}
	logger.Debug("catalog: %d products from %s", len(items), s.url)
	return items, nil
}
