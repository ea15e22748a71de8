package classifier

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/heartcheck/internal/heart"
)

func zeroArtifact() Artifact {
	return Artifact{
		Name:         "test",
		Version:      1,
		Features:     heart.FeatureKeys(),
		Coefficients: make([]float64, heart.NumFeatures),
	}
}

func TestPredictUsesIntercept(t *testing.T) {
	a := zeroArtifact()
	a.Intercept = math.Log(0.88 / 0.12)

	m, err := New(a)
	require.NoError(t, err)

	p, err := m.Predict(heart.FeatureVector{})
	require.NoError(t, err)
	assert.Equal(t, heart.HasDisease, p.Class)
	assert.InDelta(t, 0.12, p.Probabilities[0], 1e-9)
	assert.InDelta(t, 0.88, p.Probabilities[1], 1e-9)
	assert.InDelta(t, 0.88, p.Confidence(), 1e-9)
}

func TestPredictNegativeClass(t *testing.T) {
	a := zeroArtifact()
	a.Coefficients[0] = -1
	a.Means = make([]float64, heart.NumFeatures)
	a.Means[0] = 50
	a.Scales = []float64{10, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}

	m, err := New(a)
	require.NoError(t, err)

	// (70-50)/10 = 2, z = -2
	p, err := m.Predict(heart.FeatureVector{70})
	require.NoError(t, err)
	assert.Equal(t, heart.NoDisease, p.Class)
	assert.InDelta(t, 1/(1+math.Exp(2)), p.Probabilities[1], 1e-12)
	assert.InDelta(t, 1.0, p.Probabilities[0]+p.Probabilities[1], 1e-12)
}

func TestNewRejectsFeatureOrderMismatch(t *testing.T) {
	a := zeroArtifact()
	a.Features[0], a.Features[1] = a.Features[1], a.Features[0]

	_, err := New(a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feature order")
}

func TestNewRejectsBadParameters(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Artifact)
	}{
		{"short coefficients", func(a *Artifact) { a.Coefficients = a.Coefficients[:5] }},
		{"zero scale", func(a *Artifact) {
			a.Scales = make([]float64, heart.NumFeatures)
		}},
		{"short means", func(a *Artifact) { a.Means = []float64{1, 2} }},
		{"nan intercept", func(a *Artifact) { a.Intercept = math.NaN() }},
		{"inf coefficient", func(a *Artifact) { a.Coefficients[3] = math.Inf(1) }},
		{"threshold out of range", func(a *Artifact) { a.Threshold = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := zeroArtifact()
			tt.mutate(&a)
			_, err := New(a)
			assert.Error(t, err)
		})
	}
}

func TestDecodeJSONArtifact(t *testing.T) {
	data := []byte(`{"name":"json","version":2,
		"features":["age","sex","cp","trestbps","chol","fbs","restecg","thalach","exang","oldpeak","slope","ca","thal"],
		"intercept":0.1,"coefficients":[0,0,0,0,0,0,0,0,0,0,0,0,0]}`)

	m, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "json@v2", m.Name())
}

func TestLoadFileShippedModel(t *testing.T) {
	m, err := LoadFile("../../models/heart_disease_model.yaml")
	require.NoError(t, err)
	assert.Equal(t, "heart-disease-logreg@v3", m.Name())

	p, err := m.Predict(heart.FeatureVector{63, 1, 0, 145, 233, 1, 0, 150, 0, 2.3, 2, 0, 2})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p.Probabilities[0]+p.Probabilities[1], 1e-12)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("does-not-exist.yaml")
	assert.Error(t, err)
}

type fakeRow struct {
	data []byte
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.data
	return nil
}

type fakeDB struct {
	row  fakeRow
	args []any
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.args = args
	return f.row
}

func TestLoadPostgres(t *testing.T) {
	db := &fakeDB{row: fakeRow{data: []byte(`
name: pg
version: 7
features: [age, sex, cp, trestbps, chol, fbs, restecg, thalach, exang, oldpeak, slope, ca, thal]
intercept: 0
coefficients: [0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0]
`)}}

	m, err := LoadPostgres(context.Background(), db, "pg")
	require.NoError(t, err)
	assert.Equal(t, "pg@v7", m.Name())
	assert.Equal(t, []any{"pg"}, db.args)
}

func TestLoadPostgresNotFound(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}

	_, err := LoadPostgres(context.Background(), db, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadPostgresQueryError(t *testing.T) {
	boom := errors.New("connection reset")
	db := &fakeDB{row: fakeRow{err: boom}}

	_, err := LoadPostgres(context.Background(), db, "x")
	assert.ErrorIs(t, err, boom)
}
