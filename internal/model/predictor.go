// Package model loads and invokes the regression model that predicts
// enrolled theses for a cohort.
package model

import (
	"context"

	"github.com/alexanderramin/polipredict/internal/domain"
)

// Predictor returns the raw model output for one feature row.
type Predictor interface {
	Predict(ctx context.Context, row domain.FeatureRow) (float64, error)
}

// PredictorFunc adapts a function to the Predictor interface.
type PredictorFunc func(ctx context.Context, row domain.FeatureRow) (float64, error)

func (f PredictorFunc) Predict(ctx context.Context, row domain.FeatureRow) (float64, error) {
	return f(ctx, row)
}
