// Package discriminant provides kernel-based classification stages.
//
// KernelClassifier is a binary discriminant fit by solving a regularized
// least-squares system on the kernel matrix of the training examples, with
// symmetric reweighting to correct class-size imbalance. It keeps the full
// training set as support data, so it stays exact on small datasets at the
// cost of memory proportional to the training size.
package discriminant

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pipekit/core/parallel"
)

// gramParallelThreshold is the row count above which kernel matrices are
// filled in parallel. Each row costs O(m*d), so the threshold sits well
// below the elementwise ones used elsewhere.
const gramParallelThreshold = 256

// Kernel computes pairwise similarities between feature vectors.
type Kernel interface {
	// Name identifies the kernel kind, as used in configuration files.
	Name() string
	// Compute returns k(a, b) for two vectors of equal length.
	Compute(a, b []float64) float64
}

// LinearKernel is the plain inner product.
type LinearKernel struct{}

// Name returns "linear".
func (LinearKernel) Name() string { return "linear" }

// Compute returns the dot product of a and b.
func (LinearKernel) Compute(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// RBFKernel is the radial basis function exp(-gamma * ||a-b||^2). A Gamma
// of zero or below is resolved to 1/nFeatures when the classifier is fit.
type RBFKernel struct {
	Gamma float64
}

// Name returns "rbf".
func (RBFKernel) Name() string { return "rbf" }

// Compute returns the RBF similarity of a and b.
func (k RBFKernel) Compute(a, b []float64) float64 {
	d := 0.0
	for i := range a {
		diff := a[i] - b[i]
		d += diff * diff
	}
	return math.Exp(-k.Gamma * d)
}

// gramMatrix fills K with k(A_i, B_j) for every row pair. Row blocks are
// independent, so large inputs are filled concurrently.
func gramMatrix(k Kernel, A, B *mat.Dense) *mat.Dense {
	n, _ := A.Dims()
	m, _ := B.Dims()
	K := mat.NewDense(n, m, nil)
	parallel.ParallelizeWithThreshold(n, gramParallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			ai := A.RawRowView(i)
			for j := 0; j < m; j++ {
				K.Set(i, j, k.Compute(ai, B.RawRowView(j)))
			}
		}
	})
	return K
}

// asDense returns X as a *mat.Dense without copying when possible. Callers
// must treat the result as read-only.
func asDense(X mat.Matrix) *mat.Dense {
	if d, ok := X.(*mat.Dense); ok {
		return d
	}
	return mat.DenseCopyOf(X)
}
