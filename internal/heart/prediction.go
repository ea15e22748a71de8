package heart

// Class is the binary classifier outcome.
type Class int

const (
	NoDisease  Class = 0
	HasDisease Class = 1
)

// Prediction is the classifier output for one feature vector.
type Prediction struct {
	Class         Class      `json:"class"`
	Probabilities [2]float64 `json:"probabilities"`
}

// Confidence is the probability the classifier assigned to the predicted
// class, not to the positive class.
func (p Prediction) Confidence() float64 {
	if p.Class != NoDisease && p.Class != HasDisease {
		return 0
	}
	return p.Probabilities[p.Class]
}
