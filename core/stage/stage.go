// Package stage defines the contract every pipeline element satisfies.
//
// A Stage is an immutable value: Fit never mutates the receiver or its
// inputs, it returns a new fitted stage instead. This keeps fan-out and
// ensemble training free of aliasing, since every branch owns the fitted
// value it produced.
package stage

import "gonum.org/v1/gonum/mat"

// Stage is the minimal interface of a pipeline element.
type Stage interface {
	// Name returns the stage's type name, used in pipeline signatures
	// and diagnostics.
	Name() string

	// Fit learns parameters from X (n_samples × n_features) and labels y
	// (n_samples × 1, nil for unsupervised stages) and returns a new
	// fitted stage. The receiver, X and y are never mutated.
	Fit(X, y mat.Matrix) (Stage, error)

	// Transform re-expresses X in the representation the next pipeline
	// position expects. Pure function of the fitted state and X.
	Transform(X mat.Matrix) (mat.Matrix, error)
}

// Predictor is the capability of terminal stages: turning the stage's
// native output into hard class assignments.
type Predictor interface {
	Stage

	// Predict returns an n_samples × 1 column of class labels.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Joint marks a stage that consumes an entire dataset collection at once
// instead of being fanned out per dataset, e.g. a scaler pooling statistics
// across recording sessions.
type Joint interface {
	Stage

	// FitCollection learns shared parameters from all datasets jointly.
	// ys is pairwise with Xs; entries may be nil for unsupervised stages.
	FitCollection(Xs, ys []mat.Matrix) (Stage, error)

	// TransformCollection transforms every member of the collection with
	// the shared fitted parameters, preserving order.
	TransformCollection(Xs []mat.Matrix) ([]mat.Matrix, error)
}
