package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/polipredict/internal/domain"
	"github.com/alexanderramin/polipredict/internal/model"
)

// InputOption customizes a test PredictionInput.
type InputOption func(*domain.PredictionInput)

func WithProgram(p string) InputOption {
	return func(in *domain.PredictionInput) { in.Program = p }
}

func WithYear(y string) InputOption {
	return func(in *domain.PredictionInput) { in.AcademicYear = y }
}

func WithPriorTheses(n float64) InputOption {
	return func(in *domain.PredictionInput) { in.PriorYearTheses = n }
}

func WithDropout(pct float64) InputOption {
	return func(in *domain.PredictionInput) { in.PriorDropoutRatePct = pct }
}

// NewTestInput returns the reference input (10 theses, 7 / 7.5 satisfaction,
// 10% dropout, program P1, year 2022) with opts applied.
func NewTestInput(opts ...InputOption) domain.PredictionInput {
	in := domain.PredictionInput{
		PriorYearTheses:          10,
		PriorStaffSatisfaction:   7,
		PriorStudentSatisfaction: 7.5,
		PriorDropoutRatePct:      10,
		Program:                  "P1",
		AcademicYear:             "2022",
	}
	for _, o := range opts {
		o(&in)
	}
	return in
}

// StubPredictor returns a fixed value for every known program and an
// UnknownCategoryError for anything outside known.
func StubPredictor(value float64, known ...string) model.Predictor {
	allowed := map[string]bool{}
	for _, k := range known {
		allowed[k] = true
	}
	return model.PredictorFunc(func(_ context.Context, row domain.FeatureRow) (float64, error) {
		p := row.Categorical[domain.ColProgram]
		if len(allowed) > 0 && !allowed[p] {
			return 0, &model.UnknownCategoryError{Column: domain.ColProgram, Value: p}
		}
		return value, nil
	})
}

// TestArtifact returns a small gradient boosting artifact trained on
// programs P1/P2 and years 2021/2022. TESIS_LAG=10 with P1 predicts 12.4.
func TestArtifact() *model.Artifact {
	return &model.Artifact{
		Name:            "polipredict_gb_test",
		Kind:            model.KindGradientBoosting,
		NumericFeatures: domain.NumericColumns,
		CategoricalFeatures: []model.CategoricalFeature{
			{Name: domain.ColProgram, Categories: []string{"P1", "P2"}},
			{Name: domain.ColAcademicYear, Categories: []string{"2021", "2022"}},
		},
		InitPrediction: 9.9,
		LearningRate:   0.5,
		Trees: []model.Tree{
			{Nodes: []model.TreeNode{
				{Feature: 0, Threshold: 5, Left: 1, Right: 2},
				{Leaf: true, Value: -4},
				{Leaf: true, Value: 4},
			}},
			{Nodes: []model.TreeNode{
				{Feature: 5, Threshold: 0.5, Left: 1, Right: 2},
				{Leaf: true, Value: 1},
				{Leaf: true, Value: -2},
			}},
		},
	}
}

// NewTestPredictor wraps TestArtifact in a Predictor.
func NewTestPredictor(t *testing.T) *model.ArtifactPredictor {
	t.Helper()
	p, err := model.NewArtifactPredictor(TestArtifact(), nil)
	if err != nil {
		t.Fatalf("building test predictor: %v", err)
	}
	return p
}

// WriteFile writes content to name inside a temp dir and returns its path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}
