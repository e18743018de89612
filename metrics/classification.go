package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pipekit/pkg/errors"
)

// log(0)を避けるためのクリッピング幅
const logLossEpsilon = 1e-15

// checkPair は対になるベクトルの共通検証を行い、要素数を返す
func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError(op, "empty vector")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// AUC はROC曲線下面積を計算する
//
// Mann-WhitneyのU統計量を使い、同点の予測値には平均順位を与える。
// ラベルは0/1の二値。片方のクラスしか存在しない場合は未定義なので0.5を返す。
func AUC(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("AUC", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	nPos := 0
	for i := 0; i < n; i++ {
		switch yTrue.AtVec(i) {
		case 0:
		case 1:
			nPos++
		default:
			return 0, errors.NewValueError("AUC", "labels must be binary (0 or 1)")
		}
	}
	nNeg := n - nPos
	if nPos == 0 || nNeg == 0 {
		return 0.5, nil
	}

	// 予測値の昇順に並べ、同点ブロックには平均順位を割り当てる
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return yPred.AtVec(idx[a]) < yPred.AtVec(idx[b])
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && yPred.AtVec(idx[j]) == yPred.AtVec(idx[i]) {
			j++
		}
		avg := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		i = j
	}

	var sumPos float64
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			sumPos += ranks[i]
		}
	}
	u := sumPos - float64(nPos*(nPos+1))/2.0
	return u / float64(nPos*nNeg), nil
}

// AUCMatrix は行列形式の入力に対してAUCを計算する
//
// 複数列の行列が渡された場合は先頭列のみを使用する。
func AUCMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("AUCMatrix", "nil matrix")
	}
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()
	if rTrue == 0 || cTrue == 0 || rPred == 0 || cPred == 0 {
		return 0, errors.NewValueError("AUCMatrix", "empty matrix")
	}
	if rTrue != rPred {
		return 0, errors.NewDimensionError("AUCMatrix", rTrue, rPred, 0)
	}

	t := mat.NewVecDense(rTrue, nil)
	p := mat.NewVecDense(rTrue, nil)
	for i := 0; i < rTrue; i++ {
		t.SetVec(i, yTrue.At(i, 0))
		p.SetVec(i, yPred.At(i, 0))
	}
	return AUC(t, p)
}

// BinaryLogLoss は二値分類の交差エントロピー損失を計算する
//
// 予測確率は [ε, 1-ε] にクリップしてから対数を取る。
func BinaryLogLoss(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("BinaryLogLoss", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		yt := yTrue.AtVec(i)
		if yt != 0 && yt != 1 {
			return 0, errors.NewValueError("BinaryLogLoss", "labels must be binary (0 or 1)")
		}
		p := math.Min(math.Max(yPred.AtVec(i), logLossEpsilon), 1-logLossEpsilon)
		if yt == 1 {
			sum -= math.Log(p)
		} else {
			sum -= math.Log(1 - p)
		}
	}
	return sum / float64(n), nil
}

// ClassificationError は誤分類率を計算する
//
// ラベルは任意の離散値でよく、完全一致のみを正解とみなす。
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("ClassificationError", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	wrong := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) != yPred.AtVec(i) {
			wrong++
		}
	}
	return float64(wrong) / float64(n), nil
}

// Accuracy は正解率を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// AccuracyMatrix は行列形式の入力に対して正解率を計算する
//
// パイプラインのPredictが返す n×1 行列をそのまま渡せる。
// 複数列の行列が渡された場合は先頭列のみを使用する。
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("AccuracyMatrix", "nil matrix")
	}
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()
	if rTrue == 0 || cTrue == 0 || rPred == 0 || cPred == 0 {
		return 0, errors.NewValueError("AccuracyMatrix", "empty matrix")
	}
	if rTrue != rPred {
		return 0, errors.NewDimensionError("AccuracyMatrix", rTrue, rPred, 0)
	}

	t := mat.NewVecDense(rTrue, nil)
	p := mat.NewVecDense(rTrue, nil)
	for i := 0; i < rTrue; i++ {
		t.SetVec(i, yTrue.At(i, 0))
		p.SetVec(i, yPred.At(i, 0))
	}
	return Accuracy(t, p)
}

// ConfusionMatrix は混同行列とクラス一覧を計算する
//
// 返り値の行列は行が真のクラス、列が予測クラスに対応する。
// クラスは真値と予測値の和集合を昇順に並べたもの。
func ConfusionMatrix(yTrue, yPred *mat.VecDense) (*mat.Dense, []float64, error) {
	n, err := checkPair("ConfusionMatrix", yTrue, yPred)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[float64]struct{})
	for i := 0; i < n; i++ {
		seen[yTrue.AtVec(i)] = struct{}{}
		seen[yPred.AtVec(i)] = struct{}{}
	}
	classes := make([]float64, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Float64s(classes)

	index := make(map[float64]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}

	cm := mat.NewDense(len(classes), len(classes), nil)
	for i := 0; i < n; i++ {
		r := index[yTrue.AtVec(i)]
		c := index[yPred.AtVec(i)]
		cm.Set(r, c, cm.At(r, c)+1)
	}
	return cm, classes, nil
}
