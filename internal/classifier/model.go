// Package classifier loads the pre-trained heart disease model and runs it
// against normalized feature vectors.
package classifier

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"

	"github.com/Skufu/heartcheck/internal/heart"
)

const defaultThreshold = 0.5

// Artifact is the persisted form of a logistic regression model.
type Artifact struct {
	Name         string    `yaml:"name" json:"name"`
	Version      int       `yaml:"version" json:"version"`
	Features     []string  `yaml:"features" json:"features"`
	Intercept    float64   `yaml:"intercept" json:"intercept"`
	Coefficients []float64 `yaml:"coefficients" json:"coefficients"`
	Means        []float64 `yaml:"means,omitempty" json:"means,omitempty"`
	Scales       []float64 `yaml:"scales,omitempty" json:"scales,omitempty"`
	Threshold    float64   `yaml:"threshold,omitempty" json:"threshold,omitempty"`
}

// Model is a read-only, loaded classifier. Safe for concurrent use.
type Model struct {
	name      string
	version   int
	intercept float64
	weights   []float64
	means     []float64
	scales    []float64
	threshold float64
}

// Decode parses a YAML or JSON artifact and builds a model from it.
func Decode(data []byte) (*Model, error) {
	var a Artifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	return New(a)
}

// New validates an artifact against the form's feature order.
func New(a Artifact) (*Model, error) {
	if !slices.Equal(a.Features, heart.FeatureKeys()) {
		return nil, fmt.Errorf("model %q feature order %v does not match %v", a.Name, a.Features, heart.FeatureKeys())
	}
	if len(a.Coefficients) != heart.NumFeatures {
		return nil, fmt.Errorf("model %q has %d coefficients, want %d", a.Name, len(a.Coefficients), heart.NumFeatures)
	}

	means := a.Means
	if len(means) == 0 {
		means = make([]float64, heart.NumFeatures)
	}
	scales := a.Scales
	if len(scales) == 0 {
		scales = make([]float64, heart.NumFeatures)
		for i := range scales {
			scales[i] = 1
		}
	}
	if len(means) != heart.NumFeatures || len(scales) != heart.NumFeatures {
		return nil, fmt.Errorf("model %q standardization vectors must have %d entries", a.Name, heart.NumFeatures)
	}
	for i, s := range scales {
		if s == 0 {
			return nil, fmt.Errorf("model %q scale for %s is zero", a.Name, a.Features[i])
		}
	}

	threshold := a.Threshold
	if threshold == 0 {
		threshold = defaultThreshold
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("model %q threshold %v outside (0,1)", a.Name, threshold)
	}

	all := append(append(append([]float64{a.Intercept}, a.Coefficients...), means...), scales...)
	if !allFinite(all) {
		return nil, fmt.Errorf("model %q contains non-finite parameters", a.Name)
	}

	return &Model{
		name:      a.Name,
		version:   a.Version,
		intercept: a.Intercept,
		weights:   slices.Clone(a.Coefficients),
		means:     slices.Clone(means),
		scales:    slices.Clone(scales),
		threshold: threshold,
	}, nil
}

// Name identifies the loaded artifact.
func (m *Model) Name() string {
	return fmt.Sprintf("%s@v%d", m.name, m.version)
}

// Predict scores a feature vector.
func (m *Model) Predict(v heart.FeatureVector) (heart.Prediction, error) {
	x := v.Slice()
	floats.Sub(x, m.means)
	floats.Div(x, m.scales)

	z := m.intercept + floats.Dot(m.weights, x)
	p1 := 1 / (1 + math.Exp(-z))
	if math.IsNaN(p1) {
		return heart.Prediction{}, fmt.Errorf("model %s produced NaN probability", m.Name())
	}

	class := heart.NoDisease
	if p1 > m.threshold {
		class = heart.HasDisease
	}
	return heart.Prediction{
		Class:         class,
		Probabilities: [2]float64{1 - p1, p1},
	}, nil
}

func allFinite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
