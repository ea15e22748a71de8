package heart

import (
	"fmt"
	"strconv"
)

// RawInput is one form submission as the user entered it.
type RawInput struct {
	Age                  float64 `json:"age"`
	Sex                  string  `json:"sex"`
	ChestPainType        string  `json:"cp"`
	RestingBloodPressure float64 `json:"trestbps"`
	Cholesterol          float64 `json:"chol"`
	FastingBloodSugar    string  `json:"fbs"`
	RestingECG           string  `json:"restecg"`
	MaxHeartRate         float64 `json:"thalach"`
	ExerciseAngina       string  `json:"exang"`
	Oldpeak              float64 `json:"oldpeak"`
	Slope                string  `json:"slope"`
	MajorVessels         float64 `json:"ca"`
	Thal                 string  `json:"thal"`
}

// FeatureVector is the classifier input in Fields order.
type FeatureVector [NumFeatures]float64

// Slice returns the vector as a slice.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, NumFeatures)
	copy(out, v[:])
	return out
}

// value returns the raw entry for a field key: either a number or a label.
func (r RawInput) value(key string) (num float64, label string) {
	switch key {
	case "age":
		return r.Age, ""
	case "sex":
		return 0, r.Sex
	case "cp":
		return 0, r.ChestPainType
	case "trestbps":
		return r.RestingBloodPressure, ""
	case "chol":
		return r.Cholesterol, ""
	case "fbs":
		return 0, r.FastingBloodSugar
	case "restecg":
		return 0, r.RestingECG
	case "thalach":
		return r.MaxHeartRate, ""
	case "exang":
		return 0, r.ExerciseAngina
	case "oldpeak":
		return r.Oldpeak, ""
	case "slope":
		return 0, r.Slope
	case "ca":
		return r.MajorVessels, ""
	case "thal":
		return 0, r.Thal
	}
	panic(fmt.Sprintf("heart: no raw value for field %q", key))
}

// DisplayValue renders the raw entry for f the way the user supplied it.
func (r RawInput) DisplayValue(f Field) string {
	num, label := r.value(f.Key)
	if f.Categorical() {
		return label
	}
	return strconv.FormatFloat(num, 'f', -1, 64)
}

// Normalize maps a form submission to the classifier's feature vector.
// Numeric values pass through unchanged; no range checks are applied.
func Normalize(raw RawInput) (FeatureVector, error) {
	var v FeatureVector
	for i, f := range Fields {
		num, label := raw.value(f.Key)
		if !f.Categorical() {
			v[i] = num
			continue
		}
		code, err := f.Mapping.Code(label)
		if err != nil {
			return FeatureVector{}, err
		}
		v[i] = float64(code)
	}
	return v, nil
}
