package catalog

import (
	"context"
	"fmt"

	"github.com/alexanderramin/polipredict/internal/domain"
)

// HistoryLister is the read side of the imported history store.
type HistoryLister interface {
	List(ctx context.Context) ([]domain.HistoricalRecord, error)
}

// HistorySource reads categories from records previously imported into the
// history database.
type HistorySource struct {
	repo HistoryLister
}

// NewHistorySource creates a Source backed by repo.
func NewHistorySource(repo HistoryLister) *HistorySource {
	return &HistorySource{repo: repo}
}

func (s *HistorySource) Records(ctx context.Context) ([]domain.HistoricalRecord, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: history is empty", ErrSourceMissing)
	}
	return records, nil
}
