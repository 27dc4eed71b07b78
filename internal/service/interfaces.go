package service

import (
	"context"

	"github.com/alexanderramin/polipredict/internal/catalog"
	"github.com/alexanderramin/polipredict/internal/contract"
	"github.com/alexanderramin/polipredict/internal/domain"
)

type PredictionService interface {
	Predict(ctx context.Context, in domain.PredictionInput) (*contract.PredictionResponse, error)
	Estimate(ctx context.Context, theses int) *contract.EstimateResponse
}

type CatalogService interface {
	Catalog(ctx context.Context) *catalog.Catalog
}

type HistoryService interface {
	ImportCSV(ctx context.Context, path string) (*contract.ImportResult, error)
	List(ctx context.Context) ([]domain.HistoricalRecord, error)
	Summary(ctx context.Context) (*contract.HistorySummary, error)
}
