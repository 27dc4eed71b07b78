package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/alexanderramin/polipredict/internal/catalog"
	"github.com/alexanderramin/polipredict/internal/contract"
	"github.com/alexanderramin/polipredict/internal/db"
	"github.com/alexanderramin/polipredict/internal/domain"
	"github.com/alexanderramin/polipredict/internal/repository"
)

type historyService struct {
	history  repository.HistoryRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
	now      func() time.Time
}

// NewHistoryService creates the history use cases. Reads go through history;
// imports run inside uow with a transaction-scoped repository.
func NewHistoryService(history repository.HistoryRepo, uow db.UnitOfWork, observers ...UseCaseObserver) HistoryService {
	return &historyService{
		history:  history,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ImportCSV replaces the stored history with the rows of the CSV at path.
func (s *historyService) ImportCSV(ctx context.Context, path string) (result *contract.ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"source": path}
	defer func() { observe(ctx, s.observer, "history-import", startedAt, fields, &err) }()

	var records []domain.HistoricalRecord
	records, err = catalog.NewCSVSource(path).Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading history source: %w", err)
	}
	if len(records) == 0 {
		err = fmt.Errorf("loading history source: %w: %s has no rows", catalog.ErrSourceMissing, path)
		return nil, err
	}
	fields["records"] = len(records)

	importedAt := s.now()
	for i := range records {
		records[i].ImportedAt = importedAt
	}
	imp := &domain.HistoryImport{
		Source:     filepath.Base(path),
		RowCount:   len(records),
		ImportedAt: importedAt,
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteHistoryRepo(tx)
		if err := repo.DeleteAll(ctx); err != nil {
			return err
		}
		if err := repo.CreateImport(ctx, imp); err != nil {
			return err
		}
		return repo.InsertRecords(ctx, imp.ID, records)
	})
	if err != nil {
		return nil, fmt.Errorf("importing history: %w", err)
	}

	c := catalog.FromRecords(records)
	return &contract.ImportResult{
		ImportID: imp.ID,
		Source:   imp.Source,
		Records:  len(records),
		Programs: len(c.Programs),
		Years:    len(c.Years),
	}, nil
}

func (s *historyService) List(ctx context.Context) ([]domain.HistoricalRecord, error) {
	records, err := s.history.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	return records, nil
}

func (s *historyService) Summary(ctx context.Context) (*contract.HistorySummary, error) {
	count, err := s.history.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting history: %w", err)
	}

	summary := &contract.HistorySummary{Records: count}
	last, err := s.history.LastImport(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("reading last import: %w", err)
	default:
		summary.LastImport = last
	}
	return summary, nil
}
