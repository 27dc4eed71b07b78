package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Feature column names consumed by the trained model.
const (
	ColPriorTheses         = "TESIS_LAG"
	ColStaffSatisfaction   = "SATIS_PDI_LAG"
	ColStudentSatisfaction = "SATIS_ALUM_LAG"
	ColDropoutRate         = "ABANDONO_LAG"
	ColProgram             = "GRUPO_TITULACION"
	ColAcademicYear        = "CURSO"
)

// NumericColumns lists the numeric feature columns in model order.
var NumericColumns = []string{ColPriorTheses, ColStaffSatisfaction, ColStudentSatisfaction, ColDropoutRate}

// CategoricalColumns lists the categorical feature columns in model order.
var CategoricalColumns = []string{ColProgram, ColAcademicYear}

// Input bounds.
const (
	MaxSatisfaction = 10.0
	MaxDropoutPct   = 100.0
)

// ErrInvalidInput is wrapped by every PredictionInput validation failure.
var ErrInvalidInput = errors.New("invalid prediction input")

// PredictionInput holds the prior-year indicators an operator submits for
// one program and academic year.
type PredictionInput struct {
	PriorYearTheses          float64 `json:"prior_year_thesis_count"`
	PriorStaffSatisfaction   float64 `json:"prior_staff_satisfaction"`
	PriorStudentSatisfaction float64 `json:"prior_student_satisfaction"`
	PriorDropoutRatePct      float64 `json:"prior_dropout_rate_pct"`
	Program                  string  `json:"program"`
	AcademicYear             string  `json:"academic_year"`
}

// YearLabel renders an integer academic year the way the model expects it.
func YearLabel(year int) string {
	return strconv.Itoa(year)
}

// Validate checks every field and reports all violations at once.
func (in PredictionInput) Validate() error {
	var errs []error

	errs = append(errs, checkRange("prior_year_thesis_count", in.PriorYearTheses, 0, math.Inf(1))...)
	errs = append(errs, checkRange("prior_staff_satisfaction", in.PriorStaffSatisfaction, 0, MaxSatisfaction)...)
	errs = append(errs, checkRange("prior_student_satisfaction", in.PriorStudentSatisfaction, 0, MaxSatisfaction)...)
	errs = append(errs, checkRange("prior_dropout_rate_pct", in.PriorDropoutRatePct, 0, MaxDropoutPct)...)

	if strings.TrimSpace(in.Program) == "" {
		errs = append(errs, fmt.Errorf("%w: program is required", ErrInvalidInput))
	}
	if strings.TrimSpace(in.AcademicYear) == "" {
		errs = append(errs, fmt.Errorf("%w: academic_year is required", ErrInvalidInput))
	}

	return errors.Join(errs...)
}

func checkRange(field string, v, lo, hi float64) []error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []error{fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, field)}
	}
	if v < lo {
		return []error{fmt.Errorf("%w: %s must be >= %g, got %g", ErrInvalidInput, field, lo, v)}
	}
	if !math.IsInf(hi, 1) && v > hi {
		return []error{fmt.Errorf("%w: %s must be <= %g, got %g", ErrInvalidInput, field, hi, v)}
	}
	return nil
}

// Features builds the single model row for this input.
func (in PredictionInput) Features() FeatureRow {
	return FeatureRow{
		Numeric: map[string]float64{
			ColPriorTheses:         in.PriorYearTheses,
			ColStaffSatisfaction:   in.PriorStaffSatisfaction,
			ColStudentSatisfaction: in.PriorStudentSatisfaction,
			ColDropoutRate:         in.PriorDropoutRatePct,
		},
		Categorical: map[string]string{
			ColProgram:      in.Program,
			ColAcademicYear: in.AcademicYear,
		},
	}
}

// FeatureRow is one model input row keyed by column name.
type FeatureRow struct {
	Numeric     map[string]float64
	Categorical map[string]string
}

// Columns flattens the row into a column->value map, the shape sent to
// remote model servers.
func (r FeatureRow) Columns() map[string]any {
	out := make(map[string]any, len(r.Numeric)+len(r.Categorical))
	for k, v := range r.Numeric {
		out[k] = v
	}
	for k, v := range r.Categorical {
		out[k] = v
	}
	return out
}
