package pipeline

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pipekit/core/stage"
	"github.com/YuminosukeSato/pipekit/pkg/errors"
)

// Scripted stages used across the orchestration tests. They record what
// they saw at fit time so tests can assert on the dispatch decisions.

type shiftStage struct {
	shift  float64
	fitted bool
	rows   int
	cols   int
	sawY   mat.Matrix
}

var _ stage.Stage = (*shiftStage)(nil)

func newShift(shift float64) *shiftStage { return &shiftStage{shift: shift} }

func (s *shiftStage) Name() string { return "Shift" }

func (s *shiftStage) Fit(X, y mat.Matrix) (stage.Stage, error) {
	r, c := X.Dims()
	fitted := *s
	fitted.fitted = true
	fitted.rows = r
	fitted.cols = c
	fitted.sawY = y
	return &fitted, nil
}

func (s *shiftStage) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.fitted {
		return nil, errors.NewNotFittedError("Shift", "Transform")
	}
	r, c := X.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(i, j)+s.shift)
		}
	}
	return out, nil
}

// cutPredictor assigns class 2 to rows whose feature sum exceeds the
// cut, class 1 otherwise. Different cuts make ensemble members disagree
// deterministically.
type cutPredictor struct {
	cut    float64
	fitted bool
}

var _ stage.Predictor = (*cutPredictor)(nil)

func newCut(cut float64) *cutPredictor { return &cutPredictor{cut: cut} }

func (p *cutPredictor) Name() string { return "CutPredictor" }

func (p *cutPredictor) Fit(X, y mat.Matrix) (stage.Stage, error) {
	fitted := *p
	fitted.fitted = true
	return &fitted, nil
}

func (p *cutPredictor) rowSum(X mat.Matrix, i int) float64 {
	_, c := X.Dims()
	var sum float64
	for j := 0; j < c; j++ {
		sum += X.At(i, j)
	}
	return sum
}

func (p *cutPredictor) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !p.fitted {
		return nil, errors.NewNotFittedError("CutPredictor", "Transform")
	}
	r, _ := X.Dims()
	out := mat.NewDense(r, 2, nil)
	for i := 0; i < r; i++ {
		if p.rowSum(X, i) > p.cut {
			out.Set(i, 1, 1)
		} else {
			out.Set(i, 0, 1)
		}
	}
	return out, nil
}

func (p *cutPredictor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !p.fitted {
		return nil, errors.NewNotFittedError("CutPredictor", "Predict")
	}
	r, _ := X.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		if p.rowSum(X, i) > p.cut {
			out.Set(i, 0, 2)
		} else {
			out.Set(i, 0, 1)
		}
	}
	return out, nil
}

// failingStage fails on demand so tests can observe error propagation
// and the pipeline's state after a failed fit.
type failingStage struct {
	failFit       bool
	failTransform bool
	fitted        bool
}

var _ stage.Stage = (*failingStage)(nil)

func (f *failingStage) Name() string { return "Failing" }

func (f *failingStage) Fit(X, y mat.Matrix) (stage.Stage, error) {
	if f.failFit {
		return nil, errors.Newf("scripted fit failure")
	}
	fitted := *f
	fitted.fitted = true
	return &fitted, nil
}

func (f *failingStage) Transform(X mat.Matrix) (mat.Matrix, error) {
	if f.failTransform {
		return nil, errors.Newf("scripted transform failure")
	}
	if !f.fitted {
		return nil, errors.NewNotFittedError("Failing", "Transform")
	}
	return X, nil
}
