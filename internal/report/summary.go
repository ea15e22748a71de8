// Package report assembles the prediction summary table and writes it out as
// a downloadable document.
package report

import (
	"fmt"

	"github.com/Skufu/heartcheck/internal/heart"
)

const (
	Title = "Heart Disease Prediction Report"

	LabelHasDisease = "Has Heart Disease"
	LabelNoDisease  = "No Heart Disease"
)

// Row is one line of the input summary table.
type Row struct {
	Feature string `json:"feature"`
	Value   string `json:"value"`
}

// Summary is everything shown for one prediction, on screen and in the
// document.
type Summary struct {
	Table      []Row  `json:"table"`
	Prediction string `json:"prediction"`
	Confidence string `json:"confidence"`
}

// Table lists the raw inputs under their display labels in feature order.
func Table(raw heart.RawInput) []Row {
	rows := make([]Row, 0, heart.NumFeatures)
	for _, f := range heart.Fields {
		rows = append(rows, Row{Feature: f.DisplayLabel, Value: raw.DisplayValue(f)})
	}
	return rows
}

// ResultLabel picks the result text from the predicted class alone.
func ResultLabel(c heart.Class) string {
	if c == heart.HasDisease {
		return LabelHasDisease
	}
	return LabelNoDisease
}

// FormatConfidence renders a probability as a percentage with two decimals.
func FormatConfidence(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}

// Summarize builds the summary for a raw input and its prediction.
func Summarize(raw heart.RawInput, p heart.Prediction) Summary {
	return Summary{
		Table:      Table(raw),
		Prediction: ResultLabel(p.Class),
		Confidence: FormatConfidence(p.Confidence()),
	}
}
