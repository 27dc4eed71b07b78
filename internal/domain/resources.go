package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResourceEstimate is the set of resources derived from a predicted thesis
// count. Every field is a linear function of that count.
type ResourceEstimate struct {
	EquivalentSupervisors float64         `json:"equivalent_supervisors"`
	TutoringHours         float64         `json:"tutoring_hours"`
	OversightCommittees   float64         `json:"oversight_committees"`
	EstimatedDefenses     float64         `json:"estimated_defenses"`
	Workstations          float64         `json:"workstations"`
	AnnualCost            decimal.Decimal `json:"annual_cost"`
	AdministrativeFiles   float64         `json:"administrative_files"`
	LabUsers              float64         `json:"lab_users"`
}

// HistoricalRecord is one imported row of the category source.
type HistoricalRecord struct {
	ID           string
	Program      string
	AcademicYear string
	ImportedAt   time.Time
}

// HistoryImport records one load of the category source into the history
// database.
type HistoryImport struct {
	ID         string
	Source     string
	RowCount   int
	ImportedAt time.Time
}
