package pipeline

import "gonum.org/v1/gonum/mat"

// Result is the output union of a pipeline operation: a single matrix,
// or an ordered collection of matrices when ensembles or multi-dataset
// fan-out are in play. The zero value is an empty single result.
type Result struct {
	matrix     mat.Matrix
	collection []mat.Matrix
	isColl     bool
}

func singleResult(m mat.Matrix) Result {
	return Result{matrix: m}
}

func collectionResult(ms []mat.Matrix) Result {
	return Result{collection: ms, isColl: true}
}

// IsCollection reports whether the result holds an ordered collection
// rather than a single matrix.
func (r Result) IsCollection() bool { return r.isColl }

// Matrix returns the single matrix. It is nil when the result is a
// collection; use Matrices or At instead.
func (r Result) Matrix() mat.Matrix {
	if r.isColl {
		return nil
	}
	return r.matrix
}

// Matrices returns the ordered collection. For a single result it
// returns a one-element slice, so callers can treat both shapes
// uniformly.
func (r Result) Matrices() []mat.Matrix {
	if r.isColl {
		return r.collection
	}
	if r.matrix == nil {
		return nil
	}
	return []mat.Matrix{r.matrix}
}

// Len returns the number of matrices in the result: 1 for a single
// matrix, the collection length otherwise.
func (r Result) Len() int {
	if r.isColl {
		return len(r.collection)
	}
	if r.matrix == nil {
		return 0
	}
	return 1
}

// At returns the i-th matrix of the result. For a single result only
// index 0 is valid.
func (r Result) At(i int) mat.Matrix {
	if r.isColl {
		return r.collection[i]
	}
	if i != 0 {
		return nil
	}
	return r.matrix
}
