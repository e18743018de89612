package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pipekit/core/parallel"
	"github.com/YuminosukeSato/pipekit/core/stage"
	"github.com/YuminosukeSato/pipekit/pkg/errors"
)

var _ stage.Joint = (*PooledScaler)(nil)

// PooledScaler はコレクション全体の統計量をプールして学習するスケーラー。
// 全データセットを連結したものとして共通の平均・標準偏差を計算し、
// 各データセットを同一の基準で標準化する。セッション間でスケールの異なる
// 計測データを比較可能にする用途を想定。
//
// stage.Jointを実装するため、パイプラインはコレクションに対して
// ファンアウトせず、FitCollectionを一度だけ呼ぶ。
type PooledScaler struct {
	state stage.State

	// mean は全データセットをプールした各特徴量の平均値
	mean []float64

	// scale は全データセットをプールした各特徴量の標準偏差
	scale []float64

	// nDatasets は学習に使われたデータセット数
	nDatasets int
}

// NewPooledScaler は新しいPooledScalerを作成する
func NewPooledScaler() *PooledScaler {
	return &PooledScaler{}
}

// Name はステージ名を返す
func (p *PooledScaler) Name() string { return "PooledScaler" }

// Fit は単一データセットで学習する。FitCollectionの特殊形。
func (p *PooledScaler) Fit(X, y mat.Matrix) (stage.Stage, error) {
	var ys []mat.Matrix
	if y != nil {
		ys = []mat.Matrix{y}
	}
	return p.FitCollection([]mat.Matrix{X}, ys)
}

// FitCollection はコレクション全体から統計量をプールして計算し、
// 学習済みのスケーラーを新しい値として返す。ysは無視される。
// 全データセットは同じ特徴量数を持つ必要がある。
func (p *PooledScaler) FitCollection(Xs, _ []mat.Matrix) (stage.Stage, error) {
	if len(Xs) == 0 {
		return nil, errors.NewModelError("PooledScaler.FitCollection", "empty collection", errors.ErrEmptyData)
	}

	_, c := Xs[0].Dims()
	totalRows := 0
	for k, X := range Xs {
		r, cc := X.Dims()
		if r == 0 || cc == 0 {
			return nil, errors.NewModelError(
				fmt.Sprintf("PooledScaler.FitCollection(dataset %d)", k),
				"empty data", errors.ErrEmptyData)
		}
		if cc != c {
			return nil, errors.NewDimensionError(
				fmt.Sprintf("PooledScaler.FitCollection(dataset %d)", k), c, cc, 1)
		}
		totalRows += r
	}

	// プールされた平均
	mean := make([]float64, c)
	for _, X := range Xs {
		r, _ := X.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				mean[j] += X.At(i, j)
			}
		}
	}
	for j := 0; j < c; j++ {
		mean[j] /= float64(totalRows)
	}

	// プールされた標準偏差
	scale := make([]float64, c)
	for _, X := range Xs {
		r, _ := X.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				diff := X.At(i, j) - mean[j]
				scale[j] += diff * diff
			}
		}
	}
	for j := 0; j < c; j++ {
		scale[j] = math.Sqrt(scale[j] / float64(totalRows))

		// 標準偏差が0に近い場合は1に設定（ゼロ除算を避ける）
		if math.Abs(scale[j]) < 1e-8 {
			scale[j] = 1.0
		}
	}

	fitted := *p
	fitted.mean = mean
	fitted.scale = scale
	fitted.nDatasets = len(Xs)
	fitted.state = stage.NewFittedState(totalRows, c)
	return &fitted, nil
}

// Transform はプールされた統計量で単一データセットを標準化する
func (p *PooledScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := p.state.RequireFitted("PooledScaler", "Transform"); err != nil {
		return nil, err
	}
	if err := p.state.CheckFeatures("PooledScaler.Transform", X); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	result := mat.NewDense(r, c, nil)

	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < c; j++ {
				result.Set(i, j, (X.At(i, j)-p.mean[j])/p.scale[j])
			}
		}
	})

	return result, nil
}

// TransformCollection は各データセットをプールされた統計量で標準化する
func (p *PooledScaler) TransformCollection(Xs []mat.Matrix) ([]mat.Matrix, error) {
	out := make([]mat.Matrix, len(Xs))
	for k, X := range Xs {
		Xt, err := p.Transform(X)
		if err != nil {
			return nil, errors.Wrapf(err, "dataset %d", k)
		}
		out[k] = Xt
	}
	return out, nil
}

// Mean はプールされた平均値のコピーを返す
func (p *PooledScaler) Mean() []float64 {
	return append([]float64(nil), p.mean...)
}

// Scale はプールされた標準偏差のコピーを返す
func (p *PooledScaler) Scale() []float64 {
	return append([]float64(nil), p.scale...)
}

// NDatasets は学習に使われたデータセット数を返す
func (p *PooledScaler) NDatasets() int { return p.nDatasets }

// String はスケーラーの文字列表現を返す
func (p *PooledScaler) String() string {
	if !p.state.IsFitted() {
		return "PooledScaler()"
	}
	_, nFeatures := p.state.Dims()
	return fmt.Sprintf("PooledScaler(n_datasets=%d, n_features=%d)", p.nDatasets, nFeatures)
}
