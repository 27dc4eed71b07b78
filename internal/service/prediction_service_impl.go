package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/polipredict/internal/contract"
	"github.com/alexanderramin/polipredict/internal/domain"
	"github.com/alexanderramin/polipredict/internal/estimator"
	"github.com/alexanderramin/polipredict/internal/model"
	"github.com/google/uuid"
)

type predictionService struct {
	predictor model.Predictor
	ratios    estimator.Ratios
	observer  UseCaseObserver
}

func NewPredictionService(predictor model.Predictor, observers ...UseCaseObserver) PredictionService {
	return &predictionService{
		predictor: predictor,
		ratios:    estimator.DefaultRatios,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *predictionService) Predict(ctx context.Context, in domain.PredictionInput) (resp *contract.PredictionResponse, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"program":       in.Program,
		"academic_year": in.AcademicYear,
	}
	defer func() { observe(ctx, s.observer, "predict", startedAt, fields, &err) }()

	if err = in.Validate(); err != nil {
		return nil, err
	}

	var raw float64
	raw, err = s.predictor.Predict(ctx, in.Features())
	if err != nil {
		if model.IsUnknownCategory(err) {
			return nil, fmt.Errorf("encoding categories: %w", err)
		}
		return nil, fmt.Errorf("predicting theses: %w", err)
	}

	theses := estimator.ClampPrediction(raw)
	fields["predicted_theses"] = theses

	return &contract.PredictionResponse{
		RequestID:       uuid.New().String(),
		Input:           in,
		RawPrediction:   raw,
		PredictedTheses: theses,
		Resources:       s.ratios.Estimate(theses),
	}, nil
}

func (s *predictionService) Estimate(_ context.Context, theses int) *contract.EstimateResponse {
	if theses < 0 {
		theses = 0
	}
	return &contract.EstimateResponse{
		Theses:    theses,
		Resources: s.ratios.Estimate(theses),
	}
}
