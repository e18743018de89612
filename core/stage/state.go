package stage

import (
	"github.com/YuminosukeSato/pipekit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// State records what a stage saw at fit time. The zero value is unfit.
//
// Stages embed State by value. Because Fit returns a fresh stage carrying a
// fitted State instead of mutating the receiver, no locking is needed; a
// fitted stage can be shared across goroutines for Transform and Predict.
type State struct {
	fitted    bool
	nSamples  int
	nFeatures int
}

// NewFittedState returns the State a stage embeds after a successful Fit.
func NewFittedState(nSamples, nFeatures int) State {
	return State{fitted: true, nSamples: nSamples, nFeatures: nFeatures}
}

// IsFitted reports whether the owning stage has been fitted.
func (s State) IsFitted() bool {
	return s.fitted
}

// Dims returns the number of samples and features seen during fitting.
func (s State) Dims() (nSamples, nFeatures int) {
	return s.nSamples, s.nFeatures
}

// RequireFitted returns a NotFittedError naming the stage and the method
// that was called too early.
func (s State) RequireFitted(stageName, method string) error {
	if !s.fitted {
		return errors.NewNotFittedError(stageName, method)
	}
	return nil
}

// CheckFeatures verifies that X carries the feature count seen at fit time.
func (s State) CheckFeatures(op string, X mat.Matrix) error {
	_, c := X.Dims()
	if c != s.nFeatures {
		return errors.NewDimensionError(op, s.nFeatures, c, 1)
	}
	return nil
}
