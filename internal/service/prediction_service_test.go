package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/alexanderramin/polipredict/internal/catalog"
	"github.com/alexanderramin/polipredict/internal/domain"
	"github.com/alexanderramin/polipredict/internal/model"
	"github.com/alexanderramin/polipredict/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingUseCaseObserver struct {
	events []UseCaseEvent
}

func (o *recordingUseCaseObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.events = append(o.events, e)
}

func TestPredict_EndToEnd(t *testing.T) {
	obs := &recordingUseCaseObserver{}
	svc := NewPredictionService(testutil.StubPredictor(12.4, "P1"), obs)

	resp, err := svc.Predict(context.Background(), testutil.NewTestInput())
	require.NoError(t, err)

	_, err = uuid.Parse(resp.RequestID)
	assert.NoError(t, err)
	assert.Equal(t, 12.4, resp.RawPrediction)
	assert.Equal(t, 12, resp.PredictedTheses)
	assert.Equal(t, "P1", resp.Input.Program)

	r := resp.Resources
	assert.InDelta(t, 4.0, r.EquivalentSupervisors, 1e-9)
	assert.Equal(t, 240.0, r.TutoringHours)
	assert.Equal(t, 12.0, r.OversightCommittees)
	assert.Equal(t, 3.0, r.EstimatedDefenses)
	assert.InDelta(t, 7.2, r.Workstations, 1e-9)
	assert.True(t, r.AnnualCost.Equal(decimal.NewFromInt(18000)))
	assert.Equal(t, 18.0, r.AdministrativeFiles)
	assert.InDelta(t, 8.4, r.LabUsers, 1e-9)

	require.Len(t, obs.events, 1)
	assert.Equal(t, "predict", obs.events[0].Name)
	assert.True(t, obs.events[0].Success)
	assert.Equal(t, 12, obs.events[0].Fields["predicted_theses"])
}

func TestPredict_WithArtifactPredictor(t *testing.T) {
	svc := NewPredictionService(testutil.NewTestPredictor(t))

	resp, err := svc.Predict(context.Background(), testutil.NewTestInput(
		testutil.WithPriorTheses(3),
		testutil.WithProgram("P2"),
		testutil.WithYear("2021"),
	))
	require.NoError(t, err)
	assert.InDelta(t, 6.9, resp.RawPrediction, 1e-9)
	assert.Equal(t, 7, resp.PredictedTheses)
}

func TestPredict_NegativeModelOutputClampsToZero(t *testing.T) {
	svc := NewPredictionService(testutil.StubPredictor(-3.2))

	resp, err := svc.Predict(context.Background(), testutil.NewTestInput())
	require.NoError(t, err)
	assert.Equal(t, 0, resp.PredictedTheses)
	assert.True(t, resp.Resources.AnnualCost.IsZero())
	assert.Zero(t, resp.Resources.TutoringHours)
}

func TestPredict_UnknownCategoryProducesNoEstimate(t *testing.T) {
	obs := &recordingUseCaseObserver{}
	svc := NewPredictionService(testutil.StubPredictor(12.4, "P1"), obs)

	resp, err := svc.Predict(context.Background(), testutil.NewTestInput(testutil.WithProgram("GRUPO_X")))
	require.Error(t, err)
	assert.Nil(t, resp)

	var uce *model.UnknownCategoryError
	require.ErrorAs(t, err, &uce)
	assert.Equal(t, "GRUPO_X", uce.Value)

	// The service stays usable after a rejected request.
	resp, err = svc.Predict(context.Background(), testutil.NewTestInput())
	require.NoError(t, err)
	assert.Equal(t, 12, resp.PredictedTheses)

	require.Len(t, obs.events, 2)
	assert.False(t, obs.events[0].Success)
}

func TestPredict_InvalidInputSkipsModel(t *testing.T) {
	called := false
	svc := NewPredictionService(model.PredictorFunc(func(context.Context, domain.FeatureRow) (float64, error) {
		called = true
		return 1, nil
	}))

	in := testutil.NewTestInput(testutil.WithDropout(140), testutil.WithProgram(""))
	_, err := svc.Predict(context.Background(), in)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "prior_dropout_rate_pct")
	assert.Contains(t, err.Error(), "program is required")
	assert.False(t, called)
}

func TestPredict_BackendErrorWrapped(t *testing.T) {
	svc := NewPredictionService(model.PredictorFunc(func(context.Context, domain.FeatureRow) (float64, error) {
		return 0, model.ErrModelUnavailable
	}))

	_, err := svc.Predict(context.Background(), testutil.NewTestInput())
	assert.ErrorIs(t, err, model.ErrModelUnavailable)
	assert.Contains(t, err.Error(), "predicting theses")
	assert.False(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestEstimate(t *testing.T) {
	svc := NewPredictionService(nil)

	got := svc.Estimate(context.Background(), 6)
	assert.Equal(t, 6, got.Theses)
	assert.Equal(t, 120.0, got.Resources.TutoringHours)
	assert.True(t, got.Resources.AnnualCost.Equal(decimal.NewFromInt(9000)))

	got = svc.Estimate(context.Background(), -2)
	assert.Equal(t, 0, got.Theses)
	assert.Zero(t, got.Resources.LabUsers)
}

func TestCatalogService(t *testing.T) {
	c := catalog.Build([]string{"P2", "P1"}, []string{"2022"})
	assert.Equal(t, []string{"P1", "P2"}, NewCatalogService(c).Catalog(context.Background()).Programs)
	assert.True(t, NewCatalogService(nil).Catalog(context.Background()).IsFallback)
}

func TestLogUseCaseObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(slog.New(slog.NewTextHandler(&buf, nil)))

	obs.ObserveUseCase(context.Background(), UseCaseEvent{Name: "predict", Success: true, Fields: map[string]any{"program": "P1"}})
	obs.ObserveUseCase(context.Background(), UseCaseEvent{Name: "history-import", Err: errors.New("boom")})

	out := buf.String()
	assert.Contains(t, out, "msg=service_use_case")
	assert.Contains(t, out, "use_case=predict")
	assert.Contains(t, out, "program=P1")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "error=boom")

	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
}
