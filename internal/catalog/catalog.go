// Package catalog holds the program and academic-year choices offered to the
// operator, extracted from historical records.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/alexanderramin/polipredict/internal/domain"
)

var (
	// ErrSourceMissing indicates the category source has nothing to read.
	ErrSourceMissing = errors.New("category source missing")

	// ErrMissingColumn indicates a required column is absent from the source.
	ErrMissingColumn = errors.New("category source missing required column")
)

var (
	fallbackPrograms = []string{"Grupo 1", "Grupo 2"}
	fallbackYears    = []string{"2020-21", "2021-22"}
)

// Catalog is the read-only set of known programs and academic years.
type Catalog struct {
	Programs   []string `json:"programs"`
	Years      []string `json:"years"`
	IsFallback bool     `json:"fallback"`
}

// Source yields the historical records a Catalog is built from.
type Source interface {
	Records(ctx context.Context) ([]domain.HistoricalRecord, error)
}

// Build returns a catalog with blanks dropped, duplicates removed and values
// sorted.
func Build(programs, years []string) *Catalog {
	return &Catalog{
		Programs: uniqueSorted(programs),
		Years:    uniqueSorted(years),
	}
}

// FromRecords builds a catalog from historical records.
func FromRecords(records []domain.HistoricalRecord) *Catalog {
	programs := make([]string, 0, len(records))
	years := make([]string, 0, len(records))
	for _, r := range records {
		programs = append(programs, r.Program)
		years = append(years, r.AcademicYear)
	}
	return Build(programs, years)
}

// Fallback returns the static catalog used when no source is available.
func Fallback() *Catalog {
	return &Catalog{
		Programs:   slices.Clone(fallbackPrograms),
		Years:      slices.Clone(fallbackYears),
		IsFallback: true,
	}
}

// Load reads src and builds the catalog. Any failure degrades to Fallback;
// a missing source is expected and only logged at debug level.
func Load(ctx context.Context, src Source, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if src == nil {
		logger.DebugContext(ctx, "no category source configured, using fallback")
		return Fallback()
	}

	records, err := src.Records(ctx)
	switch {
	case errors.Is(err, ErrSourceMissing):
		logger.DebugContext(ctx, "category source missing, using fallback", "error", err)
		return Fallback()
	case err != nil:
		logger.WarnContext(ctx, "category source unreadable, using fallback", "error", err)
		return Fallback()
	}

	c := FromRecords(records)
	if len(c.Programs) == 0 || len(c.Years) == 0 {
		logger.WarnContext(ctx, "category source has no usable values, using fallback", "records", len(records))
		return Fallback()
	}
	logger.DebugContext(ctx, "category catalog loaded",
		"programs", len(c.Programs), "years", len(c.Years), "records", len(records))
	return c
}

// HasProgram reports whether p is a known program.
func (c *Catalog) HasProgram(p string) bool {
	_, found := slices.BinarySearch(c.Programs, p)
	return found
}

// HasYear reports whether y is a known academic year.
func (c *Catalog) HasYear(y string) bool {
	_, found := slices.BinarySearch(c.Years, y)
	return found
}

func uniqueSorted(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
