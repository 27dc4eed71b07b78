package cli

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alexanderramin/polipredict/internal/domain"
)

// Default indicator values offered to the operator.
const (
	defaultPriorTheses         = 10.0
	defaultStaffSatisfaction   = 7.0
	defaultStudentSatisfaction = 7.5
	defaultDropoutPct          = 10.0
)

// parseNumber accepts both "7.5" and "7,5".
func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, errors.New("enter a number")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return v, nil
}

// validateNumberRange returns a huh validator for numbers in [lo, hi]. An
// infinite hi leaves the range open above.
func validateNumberRange(lo, hi float64) func(string) error {
	return func(s string) error {
		v, err := parseNumber(s)
		if err != nil {
			return err
		}
		if v < lo {
			return fmt.Errorf("must be at least %g", lo)
		}
		if !math.IsInf(hi, 1) && v > hi {
			return fmt.Errorf("must be at most %g", hi)
		}
		return nil
	}
}

// formatNumber renders a default value for a text input.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// predictionFields holds the form-bound values for one prediction.
type predictionFields struct {
	program string
	year    string
	theses  string
	staff   string
	student string
	dropout string
	submit  bool
}

func newPredictionFields(programs, years []string) *predictionFields {
	f := &predictionFields{
		theses:  formatNumber(defaultPriorTheses),
		staff:   formatNumber(defaultStaffSatisfaction),
		student: formatNumber(defaultStudentSatisfaction),
		dropout: formatNumber(defaultDropoutPct),
	}
	if len(programs) > 0 {
		f.program = programs[0]
	}
	if len(years) > 0 {
		f.year = years[0]
	}
	return f
}

// input converts the form values into a PredictionInput.
func (f *predictionFields) input() (domain.PredictionInput, error) {
	var errs []error
	num := func(name, s string) float64 {
		v, err := parseNumber(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		return v
	}

	in := domain.PredictionInput{
		PriorYearTheses:          num("prior theses", f.theses),
		PriorStaffSatisfaction:   num("staff satisfaction", f.staff),
		PriorStudentSatisfaction: num("student satisfaction", f.student),
		PriorDropoutRatePct:      num("dropout rate", f.dropout),
		Program:                  f.program,
		AcademicYear:             f.year,
	}
	return in, errors.Join(errs...)
}
