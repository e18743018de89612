// Package regression はパイプラインの終端で使える回帰ステージを提供する。
package regression

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pipekit/core/parallel"
	"github.com/YuminosukeSato/pipekit/core/stage"
	"github.com/YuminosukeSato/pipekit/pkg/errors"
)

// 並列処理の閾値（この値以下の行数では逐次処理を使用）
const parallelThreshold = 1000

var (
	_ stage.Stage     = (*Ridge)(nil)
	_ stage.Predictor = (*Ridge)(nil)
)

// Ridge はL2正則化付き線形回帰モデル
//
// 正規方程式 w = (X^T*X + αI)^(-1) * X^T*y を解く。
// 切片は正則化の対象外。
type Ridge struct {
	state stage.State

	alpha        float64
	fitIntercept bool

	weights   *mat.VecDense
	intercept float64
}

// RidgeOption はRidgeの設定を変更する関数
type RidgeOption func(*Ridge)

// WithAlpha は正則化の強さを設定する
func WithAlpha(alpha float64) RidgeOption {
	return func(r *Ridge) {
		r.alpha = alpha
	}
}

// WithFitIntercept は切片を学習するかどうかを設定する
func WithFitIntercept(fit bool) RidgeOption {
	return func(r *Ridge) {
		r.fitIntercept = fit
	}
}

// NewRidge は新しいリッジ回帰モデルを作成する
func NewRidge(opts ...RidgeOption) *Ridge {
	r := &Ridge{
		alpha:        1.0,
		fitIntercept: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name はステージ名を返す
func (r *Ridge) Name() string { return "Ridge" }

// Fit はモデルを訓練データで学習させ、学習済みの新しいステージを返す
func (r *Ridge) Fit(X, y mat.Matrix) (stage.Stage, error) {
	if r.alpha < 0 {
		return nil, errors.NewValidationError("alpha", "must be >= 0", r.alpha)
	}
	if y == nil {
		return nil, errors.NewInvalidInputError("Ridge", "Fit", "labels are required for regression")
	}

	rows, c := X.Dims()
	ry, cy := y.Dims()

	if rows == 0 || c == 0 {
		return nil, errors.NewModelError("Ridge.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != rows {
		return nil, errors.NewDimensionError("Ridge.Fit", rows, ry, 0)
	}
	if cy != 1 {
		return nil, errors.NewValueError("Ridge.Fit", "y must be a column vector")
	}

	// 切片項のために X に 1 の列を追加
	nCoef := c
	offset := 0
	if r.fitIntercept {
		nCoef = c + 1
		offset = 1
	}
	design := mat.NewDense(rows, nCoef, nil)
	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if r.fitIntercept {
				design.Set(i, 0, 1.0)
			}
			for j := 0; j < c; j++ {
				design.Set(i, j+offset, X.At(i, j))
			}
		}
	})

	var xt mat.Dense
	xt.CloneFrom(design.T())

	var gram mat.Dense
	gram.Mul(&xt, design)

	// 正則化項を対角に加える（切片の位置は除く）
	for j := offset; j < nCoef; j++ {
		gram.Set(j, j, gram.At(j, j)+r.alpha)
	}

	yVec := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}
	var xty mat.VecDense
	xty.MulVec(&xt, yVec)

	coef := mat.NewVecDense(nCoef, nil)
	solveErr := errors.SafeExecute("Ridge.Fit", func() error {
		return coef.SolveVec(&gram, &xty)
	})
	if solveErr != nil {
		return nil, errors.NewModelError("Ridge.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	fitted := *r
	if r.fitIntercept {
		fitted.intercept = coef.AtVec(0)
	} else {
		fitted.intercept = 0
	}
	fitted.weights = mat.NewVecDense(c, nil)
	for j := 0; j < c; j++ {
		fitted.weights.SetVec(j, coef.AtVec(j+offset))
	}
	fitted.state = stage.NewFittedState(rows, c)
	return &fitted, nil
}

// Transform は予測値を n×1 行列として返す
//
// 回帰ステージをパイプライン中間に置いた場合、後続ステージは
// 予測値そのものを特徴量として受け取る。
func (r *Ridge) Transform(X mat.Matrix) (mat.Matrix, error) {
	return r.predict("Transform", X)
}

// Predict は入力データに対する予測を行う
func (r *Ridge) Predict(X mat.Matrix) (mat.Matrix, error) {
	return r.predict("Predict", X)
}

func (r *Ridge) predict(method string, X mat.Matrix) (mat.Matrix, error) {
	if err := r.state.RequireFitted("Ridge", method); err != nil {
		return nil, err
	}
	if err := r.state.CheckFeatures("Ridge."+method, X); err != nil {
		return nil, err
	}

	rows, c := X.Dims()
	predictions := mat.NewDense(rows, 1, nil)
	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			pred := r.intercept
			for j := 0; j < c; j++ {
				pred += X.At(i, j) * r.weights.AtVec(j)
			}
			predictions.Set(i, 0, pred)
		}
	})
	return predictions, nil
}

// Score はモデルの決定係数（R²）を計算する
func (r *Ridge) Score(X, y mat.Matrix) (float64, error) {
	yPred, err := r.predict("Score", X)
	if err != nil {
		return 0, err
	}

	rows, _ := y.Dims()
	var yMean float64
	for i := 0; i < rows; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(rows)

	var tss, rss float64
	for i := 0; i < rows; i++ {
		yTrue := y.At(i, 0)
		diff := yTrue - yPred.At(i, 0)
		tss += (yTrue - yMean) * (yTrue - yMean)
		rss += diff * diff
	}
	if tss == 0 {
		return 0, errors.Newf("total sum of squares is zero")
	}
	return 1 - rss/tss, nil
}

// Weights は学習された重み（係数）のコピーを返す
func (r *Ridge) Weights() []float64 {
	if r.weights == nil {
		return nil
	}
	w := make([]float64, r.weights.Len())
	for i := range w {
		w[i] = r.weights.AtVec(i)
	}
	return w
}

// Intercept は学習された切片を返す
func (r *Ridge) Intercept() float64 {
	if !r.state.IsFitted() {
		return 0
	}
	return r.intercept
}

// Alpha は正則化の強さを返す
func (r *Ridge) Alpha() float64 { return r.alpha }

// String はモデルの文字列表現を返す
func (r *Ridge) String() string {
	return fmt.Sprintf("Ridge(alpha=%g, fit_intercept=%t)", r.alpha, r.fitIntercept)
}
