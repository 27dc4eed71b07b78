package service

import (
	"context"

	"github.com/alexanderramin/polipredict/internal/catalog"
)

type catalogService struct {
	catalog *catalog.Catalog
}

// NewCatalogService serves c, which is never modified after startup. A nil
// catalog serves the fallback lists.
func NewCatalogService(c *catalog.Catalog) CatalogService {
	if c == nil {
		c = catalog.Fallback()
	}
	return &catalogService{catalog: c}
}

func (s *catalogService) Catalog(context.Context) *catalog.Catalog {
	return s.catalog
}
