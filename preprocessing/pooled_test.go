package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pipekit/pkg/errors"
)

func TestPooledScalerFitCollection(t *testing.T) {
	// プールされた統計量: 平均3, 分散((9+1+1+9)/4)=5
	A := mat.NewDense(2, 1, []float64{0.0, 2.0})
	B := mat.NewDense(2, 1, []float64{4.0, 6.0})

	fitted, err := NewPooledScaler().FitCollection([]mat.Matrix{A, B}, nil)
	if err != nil {
		t.Fatalf("FitCollection() error = %v", err)
	}

	pooled, ok := fitted.(*PooledScaler)
	if !ok {
		t.Fatalf("FitCollection() returned %T, want *PooledScaler", fitted)
	}

	if got := pooled.Mean()[0]; math.Abs(got-3.0) > 1e-10 {
		t.Errorf("Mean()[0] = %v, want 3.0", got)
	}
	wantStd := math.Sqrt(5.0)
	if got := pooled.Scale()[0]; math.Abs(got-wantStd) > 1e-10 {
		t.Errorf("Scale()[0] = %v, want %v", got, wantStd)
	}
	if pooled.NDatasets() != 2 {
		t.Errorf("NDatasets() = %d, want 2", pooled.NDatasets())
	}

	outs, err := pooled.TransformCollection([]mat.Matrix{A, B})
	if err != nil {
		t.Fatalf("TransformCollection() error = %v", err)
	}
	if len(outs) != 2 {
		t.Fatalf("TransformCollection() returned %d datasets, want 2", len(outs))
	}

	wantA := mat.NewDense(2, 1, []float64{-3.0 / wantStd, -1.0 / wantStd})
	wantB := mat.NewDense(2, 1, []float64{1.0 / wantStd, 3.0 / wantStd})
	if !matsAlmostEqual(outs[0], wantA, 1e-10) {
		t.Errorf("dataset 0 = %v, want %v", mat.Formatted(outs[0]), mat.Formatted(wantA))
	}
	if !matsAlmostEqual(outs[1], wantB, 1e-10) {
		t.Errorf("dataset 1 = %v, want %v", mat.Formatted(outs[1]), mat.Formatted(wantB))
	}
}

func TestPooledScalerMatchesConcatenated(t *testing.T) {
	A := mat.NewDense(2, 2, []float64{
		1.0, 10.0,
		2.0, 20.0,
	})
	B := mat.NewDense(3, 2, []float64{
		3.0, 30.0,
		4.0, 40.0,
		5.0, 50.0,
	})
	stacked := mat.NewDense(5, 2, []float64{
		1.0, 10.0,
		2.0, 20.0,
		3.0, 30.0,
		4.0, 40.0,
		5.0, 50.0,
	})

	pooledStage, err := NewPooledScaler().FitCollection([]mat.Matrix{A, B}, nil)
	if err != nil {
		t.Fatalf("FitCollection() error = %v", err)
	}
	plainStage, err := NewStandardScaler().Fit(stacked, nil)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pooled := pooledStage.(*PooledScaler)
	plain := plainStage.(*StandardScaler)

	for j := 0; j < 2; j++ {
		if math.Abs(pooled.Mean()[j]-plain.Mean()[j]) > 1e-10 {
			t.Errorf("Mean()[%d]: pooled %v, stacked %v", j, pooled.Mean()[j], plain.Mean()[j])
		}
		if math.Abs(pooled.Scale()[j]-plain.Scale()[j]) > 1e-10 {
			t.Errorf("Scale()[%d]: pooled %v, stacked %v", j, pooled.Scale()[j], plain.Scale()[j])
		}
	}
}

func TestPooledScalerSingleFit(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1.0, 2.0, 3.0})

	viaFit, err := NewPooledScaler().Fit(X, nil)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	viaCollection, err := NewPooledScaler().FitCollection([]mat.Matrix{X}, nil)
	if err != nil {
		t.Fatalf("FitCollection() error = %v", err)
	}

	a := viaFit.(*PooledScaler)
	b := viaCollection.(*PooledScaler)
	if math.Abs(a.Mean()[0]-b.Mean()[0]) > 1e-10 || math.Abs(a.Scale()[0]-b.Scale()[0]) > 1e-10 {
		t.Errorf("Fit() and FitCollection() disagree: (%v, %v) vs (%v, %v)",
			a.Mean()[0], a.Scale()[0], b.Mean()[0], b.Scale()[0])
	}
}

func TestPooledScalerFeatureMismatch(t *testing.T) {
	A := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	B := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})

	_, err := NewPooledScaler().FitCollection([]mat.Matrix{A, B}, nil)
	if err == nil {
		t.Fatal("FitCollection() with mismatched features should fail")
	}

	var dimErr *errors.DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("Error should be *DimensionError, got %T", err)
	}
	if dimErr.Expected != 2 || dimErr.Got != 3 {
		t.Errorf("DimensionError = expected %d got %d, want expected 2 got 3", dimErr.Expected, dimErr.Got)
	}
}

func TestPooledScalerEmptyCollection(t *testing.T) {
	_, err := NewPooledScaler().FitCollection(nil, nil)
	if err == nil {
		t.Fatal("FitCollection() on empty collection should fail")
	}
	if !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("Error should wrap ErrEmptyData, got %v", err)
	}
}

func TestPooledScalerNotFitted(t *testing.T) {
	scaler := NewPooledScaler()
	X := mat.NewDense(2, 1, []float64{1.0, 2.0})

	if _, err := scaler.Transform(X); err == nil {
		t.Error("Transform() before fitting should fail")
	}

	_, err := scaler.TransformCollection([]mat.Matrix{X})
	if err == nil {
		t.Fatal("TransformCollection() before fitting should fail")
	}
	var notFitted *errors.NotFittedError
	if !errors.As(err, &notFitted) {
		t.Errorf("Error should be *NotFittedError, got %T", err)
	}
}
