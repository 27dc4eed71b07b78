package contract

import "github.com/alexanderramin/polipredict/internal/domain"

// PredictionResponse is the outcome of one prediction request.
type PredictionResponse struct {
	RequestID       string                  `json:"request_id"`
	Input           domain.PredictionInput  `json:"input"`
	RawPrediction   float64                 `json:"raw_prediction"`
	PredictedTheses int                     `json:"predicted_theses"`
	Resources       domain.ResourceEstimate `json:"resources"`
}

// EstimateResponse is a resource estimate for an explicit thesis count.
type EstimateResponse struct {
	Theses    int                     `json:"theses"`
	Resources domain.ResourceEstimate `json:"resources"`
}

// ImportResult summarizes a history import.
type ImportResult struct {
	ImportID string `json:"import_id"`
	Source   string `json:"source"`
	Records  int    `json:"records"`
	Programs int    `json:"programs"`
	Years    int    `json:"years"`
}

// HistorySummary describes the current contents of the history database.
type HistorySummary struct {
	Records    int                   `json:"records"`
	LastImport *domain.HistoryImport `json:"last_import,omitempty"`
}
