package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/polipredict/internal/db"
	"github.com/alexanderramin/polipredict/internal/domain"
	"github.com/google/uuid"
)

// SQLiteHistoryRepo implements HistoryRepo on SQLite. It accepts either a
// *sql.DB or a *sql.Tx.
type SQLiteHistoryRepo struct {
	db db.DBTX
}

// NewSQLiteHistoryRepo creates a new SQLiteHistoryRepo.
func NewSQLiteHistoryRepo(db db.DBTX) *SQLiteHistoryRepo {
	return &SQLiteHistoryRepo{db: db}
}

func (r *SQLiteHistoryRepo) CreateImport(ctx context.Context, imp *domain.HistoryImport) error {
	if imp.ID == "" {
		imp.ID = uuid.New().String()
	}
	query := `INSERT INTO history_imports (id, source, row_count, imported_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		imp.ID,
		imp.Source,
		imp.RowCount,
		imp.ImportedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting history import: %w", err)
	}
	return nil
}

func (r *SQLiteHistoryRepo) InsertRecords(ctx context.Context, importID string, records []domain.HistoricalRecord) error {
	query := `INSERT INTO historical_records (id, import_id, grupo_titulacion, curso, imported_at)
		VALUES (?, ?, ?, ?, ?)`
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		if rec.ImportedAt.IsZero() {
			rec.ImportedAt = time.Now().UTC()
		}
		_, err := r.db.ExecContext(ctx, query,
			rec.ID,
			importID,
			rec.Program,
			rec.AcademicYear,
			rec.ImportedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting historical record %d: %w", i, err)
		}
	}
	return nil
}

func (r *SQLiteHistoryRepo) DeleteAll(ctx context.Context) error {
	for _, table := range []string{"historical_records", "history_imports"} {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

func (r *SQLiteHistoryRepo) List(ctx context.Context) ([]domain.HistoricalRecord, error) {
	query := `SELECT id, grupo_titulacion, curso, imported_at
		FROM historical_records ORDER BY grupo_titulacion, curso, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing historical records: %w", err)
	}
	defer rows.Close()

	var out []domain.HistoricalRecord
	for rows.Next() {
		var rec domain.HistoricalRecord
		var importedAt string
		if err := rows.Scan(&rec.ID, &rec.Program, &rec.AcademicYear, &importedAt); err != nil {
			return nil, fmt.Errorf("scanning historical record: %w", err)
		}
		rec.ImportedAt, _ = time.Parse(time.RFC3339, importedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteHistoryRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM historical_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting historical records: %w", err)
	}
	return n, nil
}

func (r *SQLiteHistoryRepo) LastImport(ctx context.Context) (*domain.HistoryImport, error) {
	query := `SELECT id, source, row_count, imported_at
		FROM history_imports ORDER BY imported_at DESC LIMIT 1`
	var imp domain.HistoryImport
	var importedAt string
	err := r.db.QueryRowContext(ctx, query).Scan(&imp.ID, &imp.Source, &imp.RowCount, &importedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading last history import: %w", err)
	}
	imp.ImportedAt, _ = time.Parse(time.RFC3339, importedAt)
	return &imp, nil
}
