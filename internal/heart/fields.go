// Package heart holds the clinical form fields, their label mappings and the
// normalization of raw form values into the classifier's feature vector.
package heart

// NumFeatures is the length of the classifier input.
const NumFeatures = 13

// Field describes one input of the prediction form.
type Field struct {
	Key          string   `json:"key"`
	DisplayLabel string   `json:"displayLabel"`
	FormLabel    string   `json:"formLabel"`
	Mapping      *Mapping `json:"-"`
}

// Categorical reports whether the field is resolved through a label mapping.
func (f Field) Categorical() bool {
	return f.Mapping != nil
}

// Choice is one selectable label of a categorical field and its trained code.
type Choice struct {
	Label string `json:"label"`
	Code  int    `json:"code"`
}

// Mapping is a closed label set for one categorical field. It is never
// mutated after package initialization.
type Mapping struct {
	field   string
	choices []Choice
}

func newMapping(field string, choices ...Choice) *Mapping {
	return &Mapping{field: field, choices: choices}
}

// Code resolves label to its trained code.
func (m *Mapping) Code(label string) (int, error) {
	for _, c := range m.choices {
		if c.Label == label {
			return c.Code, nil
		}
	}
	return 0, &UnknownCategoryError{Field: m.field, Value: label}
}

// Choices returns a copy of the mapping in form order.
func (m *Mapping) Choices() []Choice {
	out := make([]Choice, len(m.choices))
	copy(out, m.choices)
	return out
}

// Labels returns the selectable labels in form order.
func (m *Mapping) Labels() []string {
	out := make([]string, 0, len(m.choices))
	for _, c := range m.choices {
		out = append(out, c.Label)
	}
	return out
}

var (
	SexMapping = newMapping("sex",
		Choice{"Male", 1},
		Choice{"Female", 0},
	)
	ChestPainMapping = newMapping("cp",
		Choice{"Typical Angina", 0},
		Choice{"Atypical Angina", 1},
		Choice{"Non-anginal Pain", 2},
		Choice{"Asymptomatic", 3},
	)
	FastingBloodSugarMapping = newMapping("fbs",
		Choice{"Yes", 1},
		Choice{"No", 0},
	)
	RestingECGMapping = newMapping("restecg",
		Choice{"Normal", 0},
		Choice{"ST-T wave abnormality", 1},
		Choice{"Left ventricular hypertrophy", 2},
	)
	ExerciseAnginaMapping = newMapping("exang",
		Choice{"Yes", 1},
		Choice{"No", 0},
	)
	SlopeMapping = newMapping("slope",
		Choice{"Upsloping", 0},
		Choice{"Flat", 1},
		Choice{"Downsloping", 2},
	)
	ThalMapping = newMapping("thal",
		Choice{"Normal", 1},
		Choice{"Fixed Defect", 2},
		Choice{"Reversible Defect", 3},
	)
)

// Fields is the feature order the classifier was trained with. The display
// table uses the same order.
var Fields = [NumFeatures]Field{
	{Key: "age", DisplayLabel: "Age", FormLabel: "Age"},
	{Key: "sex", DisplayLabel: "Sex", FormLabel: "Sex", Mapping: SexMapping},
	{Key: "cp", DisplayLabel: "Chest Pain Type", FormLabel: "Chest Pain Type", Mapping: ChestPainMapping},
	{Key: "trestbps", DisplayLabel: "Resting BP", FormLabel: "Resting Blood Pressure (trestbps)"},
	{Key: "chol", DisplayLabel: "Cholesterol", FormLabel: "Cholesterol"},
	{Key: "fbs", DisplayLabel: "Fasting BS", FormLabel: "Fasting Blood Sugar > 120 mg/dl", Mapping: FastingBloodSugarMapping},
	{Key: "restecg", DisplayLabel: "Resting ECG", FormLabel: "Resting ECG", Mapping: RestingECGMapping},
	{Key: "thalach", DisplayLabel: "Max HR", FormLabel: "Maximum Heart Rate (thalach)"},
	{Key: "exang", DisplayLabel: "Exercise Angina", FormLabel: "Exercise Induced Angina", Mapping: ExerciseAnginaMapping},
	{Key: "oldpeak", DisplayLabel: "Oldpeak", FormLabel: "Oldpeak (ST depression)"},
	{Key: "slope", DisplayLabel: "Slope", FormLabel: "Slope", Mapping: SlopeMapping},
	{Key: "ca", DisplayLabel: "Major Vessels", FormLabel: "Number of Major Vessels (ca)"},
	{Key: "thal", DisplayLabel: "Thal", FormLabel: "Thal", Mapping: ThalMapping},
}

// FeatureKeys returns the field keys in classifier order.
func FeatureKeys() []string {
	keys := make([]string, 0, NumFeatures)
	for _, f := range Fields {
		keys = append(keys, f.Key)
	}
	return keys
}
