package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pipekit/core/parallel"
	"github.com/YuminosukeSato/pipekit/core/stage"
	"github.com/YuminosukeSato/pipekit/pkg/errors"
)

// parallelThreshold は変換ループを並列化する行数のしきい値
const parallelThreshold = 1000

var (
	_ stage.Stage = (*StandardScaler)(nil)
	_ stage.Stage = (*MinMaxScaler)(nil)
)

// StandardScaler はデータを平均0、標準偏差1に変換するスケーラー。
// Fitはレシーバを変更せず、学習済みの新しい値を返す。
type StandardScaler struct {
	state stage.State

	// mean は各特徴量の平均値
	mean []float64

	// scale は各特徴量の標準偏差
	scale []float64

	withMean bool
	withStd  bool
}

// StandardScalerOption はStandardScalerの設定オプション
type StandardScalerOption func(*StandardScaler)

// WithMean は平均を引くかどうかを設定する (デフォルト: true)
func WithMean(withMean bool) StandardScalerOption {
	return func(s *StandardScaler) {
		s.withMean = withMean
	}
}

// WithStd は標準偏差で割るかどうかを設定する (デフォルト: true)
func WithStd(withStd bool) StandardScalerOption {
	return func(s *StandardScaler) {
		s.withStd = withStd
	}
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler()
//	fitted, err := scaler.Fit(X, nil)
//	XScaled, err := fitted.Transform(X)
func NewStandardScaler(opts ...StandardScalerOption) *StandardScaler {
	s := &StandardScaler{
		withMean: true,
		withStd:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name はステージ名を返す
func (s *StandardScaler) Name() string { return "StandardScaler" }

// Fit は訓練データから統計情報（平均、標準偏差）を計算し、
// 学習済みのスケーラーを新しい値として返す。yは無視される。
func (s *StandardScaler) Fit(X, _ mat.Matrix) (stage.Stage, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	mean := make([]float64, c)
	scale := make([]float64, c)

	if s.withMean {
		for j := 0; j < c; j++ {
			sum := 0.0
			for i := 0; i < r; i++ {
				sum += X.At(i, j)
			}
			mean[j] = sum / float64(r)
		}
	}

	if s.withStd {
		for j := 0; j < c; j++ {
			sumSquares := 0.0
			for i := 0; i < r; i++ {
				diff := X.At(i, j) - mean[j]
				sumSquares += diff * diff
			}
			scale[j] = math.Sqrt(sumSquares / float64(r))

			// 標準偏差が0に近い場合は1に設定（ゼロ除算を避ける）
			if math.Abs(scale[j]) < 1e-8 {
				scale[j] = 1.0
			}
		}
	} else {
		for j := 0; j < c; j++ {
			scale[j] = 1.0
		}
	}

	fitted := *s
	fitted.mean = mean
	fitted.scale = scale
	fitted.state = stage.NewFittedState(r, c)
	return &fitted, nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("StandardScaler", "Transform"); err != nil {
		return nil, err
	}
	if err := s.state.CheckFeatures("StandardScaler.Transform", X); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	result := mat.NewDense(r, c, nil)

	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < c; j++ {
				result.Set(i, j, (X.At(i, j)-s.mean[j])/s.scale[j])
			}
		}
	})

	return result, nil
}

// FitTransform は訓練データで学習し、同じデータを変換する。
// 学習済みのスケーラーと変換結果を返す。
func (s *StandardScaler) FitTransform(X, y mat.Matrix) (stage.Stage, mat.Matrix, error) {
	fitted, err := s.Fit(X, y)
	if err != nil {
		return nil, nil, err
	}
	Xt, err := fitted.Transform(X)
	if err != nil {
		return nil, nil, err
	}
	return fitted, Xt, nil
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("StandardScaler", "InverseTransform"); err != nil {
		return nil, err
	}
	if err := s.state.CheckFeatures("StandardScaler.InverseTransform", X); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	result := mat.NewDense(r, c, nil)

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*s.scale[j]+s.mean[j])
		}
	}

	return result, nil
}

// Mean は学習済みの平均値のコピーを返す
func (s *StandardScaler) Mean() []float64 {
	return append([]float64(nil), s.mean...)
}

// Scale は学習済みの標準偏差のコピーを返す
func (s *StandardScaler) Scale() []float64 {
	return append([]float64(nil), s.scale...)
}

// GetParams はスケーラーのパラメータを取得する
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.withMean,
		"with_std":  s.withStd,
	}
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.state.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.withMean, s.withStd)
	}
	_, nFeatures := s.state.Dims()
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.withMean, s.withStd, nFeatures)
}

// MinMaxScaler はデータを指定した範囲（デフォルト[0,1]）にスケーリングするスケーラー。
// Fitはレシーバを変更せず、学習済みの新しい値を返す。
type MinMaxScaler struct {
	state stage.State

	// dataMin は学習データの各特徴量の最小値
	dataMin []float64

	// dataMax は学習データの各特徴量の最大値
	dataMax []float64

	// scale は各特徴量のスケール (max - min)
	scale []float64

	featureRange [2]float64
}

// MinMaxScalerOption はMinMaxScalerの設定オプション
type MinMaxScalerOption func(*MinMaxScaler)

// WithFeatureRange はスケーリング後の範囲 [min, max] を設定する (デフォルト: [0, 1])
func WithFeatureRange(lo, hi float64) MinMaxScalerOption {
	return func(m *MinMaxScaler) {
		m.featureRange = [2]float64{lo, hi}
	}
}

// NewMinMaxScaler は新しいMinMaxScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewMinMaxScaler(preprocessing.WithFeatureRange(-1, 1))
//	fitted, err := scaler.Fit(X, nil)
//	XScaled, err := fitted.Transform(X)
func NewMinMaxScaler(opts ...MinMaxScalerOption) *MinMaxScaler {
	m := &MinMaxScaler{
		featureRange: [2]float64{0.0, 1.0},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name はステージ名を返す
func (m *MinMaxScaler) Name() string { return "MinMaxScaler" }

// Fit は訓練データから最小値・最大値を計算し、
// 学習済みのスケーラーを新しい値として返す。yは無視される。
func (m *MinMaxScaler) Fit(X, _ mat.Matrix) (stage.Stage, error) {
	if m.featureRange[1] <= m.featureRange[0] {
		return nil, errors.NewValidationError("feature_range",
			"max must be greater than min", m.featureRange)
	}

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError("MinMaxScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	dataMin := make([]float64, c)
	dataMax := make([]float64, c)
	scale := make([]float64, c)

	for j := 0; j < c; j++ {
		minVal := X.At(0, j)
		maxVal := X.At(0, j)
		for i := 1; i < r; i++ {
			val := X.At(i, j)
			if val < minVal {
				minVal = val
			}
			if val > maxVal {
				maxVal = val
			}
		}

		dataMin[j] = minVal
		dataMax[j] = maxVal

		// 定数特徴量の場合、スケールを1に設定（ゼロ除算を避ける）
		dataRange := maxVal - minVal
		if math.Abs(dataRange) < 1e-8 {
			scale[j] = 1.0
		} else {
			scale[j] = dataRange
		}
	}

	fitted := *m
	fitted.dataMin = dataMin
	fitted.dataMax = dataMax
	fitted.scale = scale
	fitted.state = stage.NewFittedState(r, c)
	return &fitted, nil
}

// Transform は学習済みの統計情報を使ってデータをスケーリングする
func (m *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.state.RequireFitted("MinMaxScaler", "Transform"); err != nil {
		return nil, err
	}
	if err := m.state.CheckFeatures("MinMaxScaler.Transform", X); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	result := mat.NewDense(r, c, nil)

	// X_scaled = (X - data_min) / (data_max - data_min) * (max - min) + min
	span := m.featureRange[1] - m.featureRange[0]
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < c; j++ {
				scaled := (X.At(i, j)-m.dataMin[j])/m.scale[j]*span + m.featureRange[0]
				result.Set(i, j, scaled)
			}
		}
	})

	return result, nil
}

// FitTransform は訓練データで学習し、同じデータを変換する。
// 学習済みのスケーラーと変換結果を返す。
func (m *MinMaxScaler) FitTransform(X, y mat.Matrix) (stage.Stage, mat.Matrix, error) {
	fitted, err := m.Fit(X, y)
	if err != nil {
		return nil, nil, err
	}
	Xt, err := fitted.Transform(X)
	if err != nil {
		return nil, nil, err
	}
	return fitted, Xt, nil
}

// InverseTransform はスケーリングされたデータを元の範囲に戻す
func (m *MinMaxScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.state.RequireFitted("MinMaxScaler", "InverseTransform"); err != nil {
		return nil, err
	}
	if err := m.state.CheckFeatures("MinMaxScaler.InverseTransform", X); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	result := mat.NewDense(r, c, nil)

	span := m.featureRange[1] - m.featureRange[0]
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			original := (X.At(i, j)-m.featureRange[0])/span*m.scale[j] + m.dataMin[j]
			result.Set(i, j, original)
		}
	}

	return result, nil
}

// DataMin は学習データの最小値のコピーを返す
func (m *MinMaxScaler) DataMin() []float64 {
	return append([]float64(nil), m.dataMin...)
}

// DataMax は学習データの最大値のコピーを返す
func (m *MinMaxScaler) DataMax() []float64 {
	return append([]float64(nil), m.dataMax...)
}

// GetParams はスケーラーのパラメータを取得する
func (m *MinMaxScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"feature_range": m.featureRange,
	}
}

// String はスケーラーの文字列表現を返す
func (m *MinMaxScaler) String() string {
	if !m.state.IsFitted() {
		return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f])",
			m.featureRange[0], m.featureRange[1])
	}
	_, nFeatures := m.state.Dims()
	return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f], n_features=%d)",
		m.featureRange[0], m.featureRange[1], nFeatures)
}
