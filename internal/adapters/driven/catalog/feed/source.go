// Package feed reads the catalog from an RSS or Atom feed.
// Each feed entry is one catalog item.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driven"
	"github.com/custodia-labs/arrivals/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.CatalogSource = (*Source)(nil)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Source fetches and parses a feed once per cycle.
type Source struct {
	url     string
	parser  *gofeed.Parser
	limiter *rate.Limiter
}

// New creates a source for the feed at url.
// A non-positive perSecond disables throttling.
func New(url string, perSecond float64) (*Source, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: feed url is required", domain.ErrInvalidInput)
	}

	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: DefaultTimeout}
	parser.UserAgent = "arrivals/1.0"

	return &Source{
		url:     url,
		parser:  parser,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// URL returns the feed address.
func (s *Source) URL() string {
	return s.url
}

// FetchCatalog parses the feed and maps entries to catalog items in feed
// order. An entry is identified by its GUID, or by its link when the feed
// has no GUIDs. Entries with neither are dropped.
func (s *Source) FetchCatalog(ctx context.Context) ([]domain.CatalogItem, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	feed, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", s.url, err)
	}

	items := make([]domain.CatalogItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}
		id := entry.GUID
		if id == "" {
			id = entry.Link
		}
		if id == "" {
			logger.Debug("feed: skipping entry without guid or link (%q)", entry.Title)
			continue
		}
		items = append(items, domain.CatalogItem{
			ID:        id,
			Name:      entry.Title,
			DetailURL: entry.Link,
		})
	}
	logger.Debug("feed: %d entries from %s", len(items), s.url)
	return items, nil
}
