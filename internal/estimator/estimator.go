// Package estimator converts a predicted thesis count into resource
// requirements using fixed per-thesis ratios.
package estimator

import (
	"math"

	"github.com/alexanderramin/polipredict/internal/domain"
	"github.com/shopspring/decimal"
)

// Ratios holds the per-thesis constants used by Estimate.
type Ratios struct {
	ThesesPerSupervisor    float64
	TutoringHoursPerThesis float64
	CommitteesPerThesis    float64
	AvgDurationYears       float64
	WorkstationShare       float64
	CostPerThesis          decimal.Decimal
	AdminFileFactor        float64
	LabShare               float64
}

// DefaultRatios is the canonical ratio set.
var DefaultRatios = Ratios{
	ThesesPerSupervisor:    3,
	TutoringHoursPerThesis: 20,
	CommitteesPerThesis:    1,
	AvgDurationYears:       4,
	WorkstationShare:       0.6,
	CostPerThesis:          decimal.NewFromInt(1500),
	AdminFileFactor:        1.5,
	LabShare:               0.7,
}

// Estimate applies DefaultRatios to n predicted theses.
func Estimate(n int) domain.ResourceEstimate {
	return DefaultRatios.Estimate(n)
}

// Estimate applies r to n predicted theses. Negative counts are treated as 0.
func (r Ratios) Estimate(n int) domain.ResourceEstimate {
	if n < 0 {
		n = 0
	}
	f := float64(n)

	return domain.ResourceEstimate{
		EquivalentSupervisors: f / r.ThesesPerSupervisor,
		TutoringHours:         f * r.TutoringHoursPerThesis,
		OversightCommittees:   f * r.CommitteesPerThesis,
		EstimatedDefenses:     f / r.AvgDurationYears,
		Workstations:          f * r.WorkstationShare,
		AnnualCost:            r.CostPerThesis.Mul(decimal.NewFromInt(int64(n))),
		AdministrativeFiles:   f * r.AdminFileFactor,
		LabUsers:              f * r.LabShare,
	}
}

// ClampPrediction turns a raw model output into a displayable thesis count:
// rounded half to even, never negative. NaN maps to 0.
func ClampPrediction(raw float64) int {
	if math.IsNaN(raw) {
		return 0
	}
	rounded := math.RoundToEven(raw)
	if rounded <= 0 {
		return 0
	}
	if rounded > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(rounded)
}
