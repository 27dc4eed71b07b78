package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/alexanderramin/polipredict/internal/domain"
	"github.com/alexanderramin/polipredict/internal/model"
)

const maxBodyBytes = 64 << 10

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Column  string `json:"column,omitempty"`
	Value   string `json:"value,omitempty"`
}

// academicYear accepts a JSON string or integer.
type academicYear string

func (y *academicYear) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*y = academicYear(s)
		return nil
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("academic_year must be a string or integer, got %s", b)
	}
	*y = academicYear(domain.YearLabel(n))
	return nil
}

type predictRequest struct {
	PriorYearTheses          float64      `json:"prior_year_thesis_count"`
	PriorStaffSatisfaction   float64      `json:"prior_staff_satisfaction"`
	PriorStudentSatisfaction float64      `json:"prior_student_satisfaction"`
	PriorDropoutRatePct      float64      `json:"prior_dropout_rate_pct"`
	Program                  string       `json:"program"`
	AcademicYear             academicYear `json:"academic_year"`
}

func (r predictRequest) input() domain.PredictionInput {
	return domain.PredictionInput{
		PriorYearTheses:          r.PriorYearTheses,
		PriorStaffSatisfaction:   r.PriorStaffSatisfaction,
		PriorStudentSatisfaction: r.PriorStudentSatisfaction,
		PriorDropoutRatePct:      r.PriorDropoutRatePct,
		Program:                  r.Program,
		AcademicYear:             string(r.AcademicYear),
	}
}

type estimateRequest struct {
	Theses *int `json:"theses"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) getCatalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.Catalog(r.Context()))
}

func (h *handlers) predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	resp, err := h.predictions.Predict(r.Context(), req.input())
	if err != nil {
		h.respondPredictError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *handlers) respondPredictError(w http.ResponseWriter, r *http.Request, err error) {
	var uce *model.UnknownCategoryError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_input", Message: err.Error()})
	case errors.As(err, &uce):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "unknown_category",
			Message: err.Error(),
			Column:  uce.Column,
			Value:   uce.Value,
		})
	default:
		h.logger.ErrorContext(r.Context(), "prediction failed", "error", err)
		respondJSON(w, http.StatusBadGateway, errorResponse{Error: "model_error", Message: err.Error()})
	}
}

func (h *handlers) estimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if req.Theses == nil || *req.Theses < 0 {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "invalid_input",
			Message: "theses must be a non-negative integer",
		})
		return
	}
	respondJSON(w, http.StatusOK, h.predictions.Estimate(r.Context(), *req.Theses))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("decoding request: %w", err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
