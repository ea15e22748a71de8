// Package predict runs one form submission through normalization, the
// classifier and report assembly.
package predict

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Skufu/heartcheck/internal/heart"
	"github.com/Skufu/heartcheck/internal/report"
)

// Classifier scores a normalized feature vector.
type Classifier interface {
	Predict(v heart.FeatureVector) (heart.Prediction, error)
}

// ClassifierError wraps any classifier failure, including malformed output.
type ClassifierError struct {
	Err error
}

func (e *ClassifierError) Error() string {
	return "prediction failed"
}

func (e *ClassifierError) Unwrap() error {
	return e.Err
}

const probabilityTolerance = 1e-6

// Service is safe for concurrent use; it only holds read-only collaborators.
type Service struct {
	model     Classifier
	assembler *report.Assembler
	log       *zap.Logger
}

func NewService(model Classifier, assembler *report.Assembler, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{model: model, assembler: assembler, log: log}
}

// Formats lists the report formats Run accepts.
func (s *Service) Formats() []string {
	return s.assembler.Formats()
}

// Artifact resolves a download name produced by Run to its path.
func (s *Service) Artifact(name string) (string, bool) {
	return s.assembler.Lookup(name)
}

// Run produces the summary and a new report artifact, or fails as a whole.
func (s *Service) Run(raw heart.RawInput, format string) (*report.Result, error) {
	start := time.Now()
	if !s.assembler.Supports(format) {
		return nil, fmt.Errorf("%w: %q", report.ErrUnsupportedFormat, format)
	}

	features, err := heart.Normalize(raw)
	if err != nil {
		return nil, err
	}

	prediction, err := s.model.Predict(features)
	if err != nil {
		return nil, &ClassifierError{Err: err}
	}
	if err := checkPrediction(prediction); err != nil {
		return nil, &ClassifierError{Err: err}
	}

	res, err := s.assembler.Assemble(raw, prediction, format)
	if err != nil {
		return nil, err
	}

	s.log.Debug("prediction complete",
		zap.Int("class", int(prediction.Class)),
		zap.String("confidence", res.Confidence),
		zap.String("format", format),
		zap.String("artifact", res.Path),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func checkPrediction(p heart.Prediction) error {
	if p.Class != heart.NoDisease && p.Class != heart.HasDisease {
		return fmt.Errorf("class %d is not binary", p.Class)
	}
	sum := 0.0
	for i, prob := range p.Probabilities {
		if math.IsNaN(prob) || math.IsInf(prob, 0) {
			return fmt.Errorf("probability %d is not finite", i)
		}
		if prob < 0 || prob > 1 {
			return fmt.Errorf("probability %d = %v outside [0,1]", i, prob)
		}
		sum += prob
	}
	if math.Abs(sum-1) > probabilityTolerance {
		return errors.New("probabilities do not sum to 1")
	}
	return nil
}
