package model

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alexanderramin/polipredict/internal/domain"
)

// Artifact kinds.
const (
	KindGradientBoosting = "gradient_boosting"
	KindLinear           = "linear"
)

// Artifact is the JSON export of a trained pipeline: a one-hot encoder that
// rejects unseen categories followed by a regressor. The encoded vector is
// the numeric features in order, then one block per categorical feature.
type Artifact struct {
	Name                string               `json:"name"`
	Kind                string               `json:"kind"`
	NumericFeatures     []string             `json:"numeric_features"`
	CategoricalFeatures []CategoricalFeature `json:"categorical_features"`

	// Gradient boosting.
	InitPrediction float64 `json:"init_prediction,omitempty"`
	LearningRate   float64 `json:"learning_rate,omitempty"`
	Trees          []Tree  `json:"trees,omitempty"`

	// Linear.
	Intercept    float64   `json:"intercept,omitempty"`
	Coefficients []float64 `json:"coefficients,omitempty"`
}

// CategoricalFeature lists the categories seen for one column during training.
type CategoricalFeature struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

// Tree is a regression tree stored in pre-order: children always have a
// higher index than their parent.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// TreeNode is either a leaf carrying Value or a split sending x[Feature] <=
// Threshold to Left and everything else to Right.
type TreeNode struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Value     float64 `json:"value,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
}

// LoadArtifact reads and validates a model artifact from path.
func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model artifact: %w", err)
	}
	defer f.Close()

	art, err := ParseArtifact(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return art, nil
}

// ParseArtifact decodes and validates a model artifact.
func ParseArtifact(r io.Reader) (*Artifact, error) {
	var art Artifact
	if err := json.NewDecoder(r).Decode(&art); err != nil {
		return nil, fmt.Errorf("%w: decoding: %v", ErrInvalidArtifact, err)
	}
	if err := art.Validate(); err != nil {
		return nil, err
	}
	return &art, nil
}

// Width is the length of the encoded feature vector.
func (a *Artifact) Width() int {
	w := len(a.NumericFeatures)
	for _, c := range a.CategoricalFeatures {
		w += len(c.Categories)
	}
	return w
}

// Validate checks the artifact is structurally sound.
func (a *Artifact) Validate() error {
	if len(a.NumericFeatures)+len(a.CategoricalFeatures) == 0 {
		return fmt.Errorf("%w: no features declared", ErrInvalidArtifact)
	}
	seen := map[string]bool{}
	for _, n := range a.NumericFeatures {
		if n == "" || seen[n] {
			return fmt.Errorf("%w: empty or duplicate feature %q", ErrInvalidArtifact, n)
		}
		seen[n] = true
	}
	for _, c := range a.CategoricalFeatures {
		if c.Name == "" || seen[c.Name] {
			return fmt.Errorf("%w: empty or duplicate feature %q", ErrInvalidArtifact, c.Name)
		}
		seen[c.Name] = true
		if len(c.Categories) == 0 {
			return fmt.Errorf("%w: feature %s has no categories", ErrInvalidArtifact, c.Name)
		}
		cats := map[string]bool{}
		for _, v := range c.Categories {
			if cats[v] {
				return fmt.Errorf("%w: feature %s repeats category %q", ErrInvalidArtifact, c.Name, v)
			}
			cats[v] = true
		}
	}

	width := a.Width()
	switch a.Kind {
	case KindGradientBoosting:
		if a.LearningRate <= 0 {
			return fmt.Errorf("%w: learning_rate must be > 0", ErrInvalidArtifact)
		}
		if len(a.Trees) == 0 {
			return fmt.Errorf("%w: no trees", ErrInvalidArtifact)
		}
		for i, t := range a.Trees {
			if err := t.validate(width); err != nil {
				return fmt.Errorf("%w: tree %d: %v", ErrInvalidArtifact, i, err)
			}
		}
	case KindLinear:
		if len(a.Coefficients) != width {
			return fmt.Errorf("%w: %d coefficients for %d encoded features", ErrInvalidArtifact, len(a.Coefficients), width)
		}
	default:
		return fmt.Errorf("%w: unsupported kind %q", ErrInvalidArtifact, a.Kind)
	}
	return nil
}

func (t Tree) validate(width int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range t.Nodes {
		if n.Leaf {
			continue
		}
		if n.Feature < 0 || n.Feature >= width {
			return fmt.Errorf("node %d: feature %d out of range", i, n.Feature)
		}
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d: children must follow the node", i)
		}
	}
	return nil
}

func (t Tree) eval(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// ArtifactPredictor evaluates an Artifact in process.
type ArtifactPredictor struct {
	art      *Artifact
	catIndex []map[string]int
	observer Observer
}

// NewArtifactPredictor builds a Predictor over a validated artifact.
func NewArtifactPredictor(art *Artifact, observer Observer) (*ArtifactPredictor, error) {
	if err := art.Validate(); err != nil {
		return nil, err
	}
	idx := make([]map[string]int, len(art.CategoricalFeatures))
	for i, c := range art.CategoricalFeatures {
		idx[i] = make(map[string]int, len(c.Categories))
		for j, v := range c.Categories {
			idx[i][v] = j
		}
	}
	return &ArtifactPredictor{art: art, catIndex: idx, observer: observerOrNoop(observer)}, nil
}

// LoadPredictor loads the artifact at path and wraps it in a Predictor.
func LoadPredictor(path string, observer Observer) (*ArtifactPredictor, error) {
	art, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}
	return NewArtifactPredictor(art, observer)
}

// Name returns the artifact name.
func (p *ArtifactPredictor) Name() string { return p.art.Name }

// Categories returns the training categories for column, or nil.
func (p *ArtifactPredictor) Categories(column string) []string {
	for _, c := range p.art.CategoricalFeatures {
		if c.Name == column {
			return c.Categories
		}
	}
	return nil
}

func (p *ArtifactPredictor) Predict(ctx context.Context, row domain.FeatureRow) (float64, error) {
	start := time.Now()
	y, err := p.predict(ctx, row)
	p.observer.OnPredict(ctx, CallEvent{
		Backend:   "artifact",
		Model:     p.art.Name,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
	return y, err
}

func (p *ArtifactPredictor) predict(ctx context.Context, row domain.FeatureRow) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	x, err := p.encode(row)
	if err != nil {
		return 0, err
	}

	switch p.art.Kind {
	case KindLinear:
		y := p.art.Intercept
		for i, c := range p.art.Coefficients {
			y += c * x[i]
		}
		return y, nil
	default:
		sum := 0.0
		for _, t := range p.art.Trees {
			sum += t.eval(x)
		}
		return p.art.InitPrediction + p.art.LearningRate*sum, nil
	}
}

func (p *ArtifactPredictor) encode(row domain.FeatureRow) ([]float64, error) {
	x := make([]float64, p.art.Width())
	off := 0
	for _, name := range p.art.NumericFeatures {
		v, ok := row.Numeric[name]
		if !ok {
			return nil, fmt.Errorf("missing numeric feature %s", name)
		}
		x[off] = v
		off++
	}
	for i, c := range p.art.CategoricalFeatures {
		v, ok := row.Categorical[c.Name]
		if !ok {
			return nil, fmt.Errorf("missing categorical feature %s", c.Name)
		}
		j, known := p.catIndex[i][v]
		if !known {
			return nil, &UnknownCategoryError{Column: c.Name, Value: v}
		}
		x[off+j] = 1
		off += len(c.Categories)
	}
	return x, nil
}
