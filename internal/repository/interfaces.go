package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/polipredict/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type HistoryRepo interface {
	CreateImport(ctx context.Context, imp *domain.HistoryImport) error
	InsertRecords(ctx context.Context, importID string, records []domain.HistoricalRecord) error
	DeleteAll(ctx context.Context) error
	List(ctx context.Context) ([]domain.HistoricalRecord, error)
	Count(ctx context.Context) (int, error)
	LastImport(ctx context.Context) (*domain.HistoryImport, error)
}
