package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/alexanderramin/polipredict/internal/domain"
)

// CSVSource reads historical records from a CSV file with at least the
// GRUPO_TITULACION and CURSO columns.
type CSVSource struct {
	Path string
}

// NewCSVSource creates a CSVSource for path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

func (s *CSVSource) Records(ctx context.Context) ([]domain.HistoricalRecord, error) {
	if s.Path == "" {
		return nil, ErrSourceMissing
	}
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, s.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("opening category source: %w", err)
	}
	defer f.Close()

	records, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}
	return records, nil
}

// ReadCSV parses historical records from r. Header names are matched
// case-insensitively; extra columns are ignored. Rows with both category
// cells blank are skipped.
func ReadCSV(r io.Reader) ([]domain.HistoricalRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	hdr, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrSourceMissing
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	idx := map[string]int{}
	for i, h := range hdr {
		h = strings.TrimPrefix(h, "\ufeff")
		idx[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	for _, k := range domain.CategoricalColumns {
		if _, ok := idx[k]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, k)
		}
	}
	progIdx, yearIdx := idx[domain.ColProgram], idx[domain.ColAcademicYear]

	var records []domain.HistoricalRecord
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		hr := domain.HistoricalRecord{
			Program:      cell(rec, progIdx),
			AcademicYear: cell(rec, yearIdx),
		}
		if hr.Program == "" && hr.AcademicYear == "" {
			continue
		}
		records = append(records, hr)
	}
	return records, nil
}

func cell(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
