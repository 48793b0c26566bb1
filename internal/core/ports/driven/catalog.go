package driven

import (
	"context"

	"github.com/custodia-labs/arrivals/internal/core/domain"
)

// CatalogSource supplies the full current item list.
type CatalogSource interface {
	// FetchCatalog returns every item the catalog currently lists,
	// in catalog order.
	FetchCatalog(ctx context.Context) ([]domain.CatalogItem, error)
}
