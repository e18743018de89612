// Package decomposition provides dimensionality-reduction stages.
//
// PCA re-expresses examples in an orthogonal basis ordered by decreasing
// explained variance. It follows the pure-fit stage contract: Fit returns a
// new fitted value and never mutates the receiver, so one configured PCA can
// be fanned out across dataset collections safely.
package decomposition

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pipekit/core/stage"
	"github.com/YuminosukeSato/pipekit/pkg/errors"
	"github.com/YuminosukeSato/pipekit/pkg/log"
)

var _ stage.Stage = (*PCA)(nil)

// PCA centers data on the training-time feature means and projects it onto
// the top principal components. Missing values (NaN) are excluded from the
// mean estimate and treated as sitting at the mean afterwards.
type PCA struct {
	state stage.State

	// retention configuration
	retainTarget    float64
	hasRetainTarget bool
	nComponents     int
	hasNComponents  bool
	verbose         int

	// fitted parameters
	mean              []float64
	components        *mat.Dense // nFeatures x k, one principal axis per column
	explainedVariance []float64
	varianceRatio     []float64
}

// PCAOption configures a PCA stage at construction.
type PCAOption func(*PCA)

// WithRetainedVariance keeps the smallest prefix of ranked components whose
// cumulative explained-variance proportion exceeds f. f must lie in (0, 1).
func WithRetainedVariance(f float64) PCAOption {
	return func(p *PCA) {
		p.retainTarget = f
		p.hasRetainTarget = true
	}
}

// WithComponents keeps exactly n top components regardless of variance. If n
// exceeds the number of available components, the count is clamped and a
// ComponentTruncationWarning is emitted.
func WithComponents(n int) PCAOption {
	return func(p *PCA) {
		p.nComponents = n
		p.hasNComponents = true
	}
}

// WithVerbose sets the diagnostic verbosity (0 is silent).
func WithVerbose(verbosity int) PCAOption {
	return func(p *PCA) {
		p.verbose = verbosity
	}
}

// NewPCA creates a PCA stage. With no retention option every component is
// kept, which still orders features by variance.
func NewPCA(opts ...PCAOption) *PCA {
	p := &PCA{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the stage name.
func (p *PCA) Name() string { return "PCA" }

func (p *PCA) validateConfig() error {
	if p.hasRetainTarget && p.hasNComponents {
		return errors.NewValidationError("retained_variance",
			"cannot be combined with n_components", p.retainTarget)
	}
	if p.hasRetainTarget && (p.retainTarget <= 0 || p.retainTarget >= 1) {
		return errors.NewValidationError("retained_variance",
			"must be in (0, 1)", p.retainTarget)
	}
	if p.hasNComponents && p.nComponents < 1 {
		return errors.NewValidationError("n_components",
			"must be >= 1", p.nComponents)
	}
	return nil
}

// Fit estimates the per-feature means, centers the data, computes the
// variance-maximizing basis by singular value decomposition and truncates it
// per the retention configuration. The labels argument is ignored. The
// receiver is left untouched; the fitted stage is returned as a new value.
func (p *PCA) Fit(X, _ mat.Matrix) (stage.Stage, error) {
	if err := p.validateConfig(); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError("PCA.Fit", "empty data", errors.ErrEmptyData)
	}
	if r < 2 {
		return nil, errors.NewInvalidInputError("PCA", "Fit",
			fmt.Sprintf("requires at least 2 samples to estimate variance, got %d", r))
	}

	// Per-feature mean ignoring NaN entries. A feature that is entirely
	// missing keeps mean 0 and contributes nothing to the basis.
	mean := make([]float64, c)
	counts := make([]int, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if !math.IsNaN(v) {
				mean[j] += v
				counts[j]++
			}
		}
	}
	for j := 0; j < c; j++ {
		if counts[j] > 0 {
			mean[j] /= float64(counts[j])
		}
	}

	centered := centerWithMean(X, mean)

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, errors.NewModelError("PCA.Fit", "SVD factorization failed", nil)
	}

	singular := svd.Values(nil)
	var basis mat.Dense
	svd.VTo(&basis)

	available := len(singular)
	variances := make([]float64, available)
	total := 0.0
	for i, s := range singular {
		variances[i] = s * s / float64(r-1)
		total += variances[i]
	}
	ratios := make([]float64, available)
	if total > 0 {
		for i := range variances {
			ratios[i] = variances[i] / total
		}
	}

	k := available
	switch {
	case p.hasNComponents:
		k = p.nComponents
		if k > available {
			errors.Warn(errors.NewComponentTruncationWarning("PCA", k, available))
			k = available
		}
	case p.hasRetainTarget:
		cumulative := 0.0
		for i := range ratios {
			cumulative += ratios[i]
			if cumulative > p.retainTarget {
				k = i + 1
				break
			}
		}
	}

	fitted := *p
	fitted.mean = mean
	fitted.components = mat.DenseCopyOf(basis.Slice(0, c, 0, k))
	fitted.explainedVariance = append([]float64(nil), variances[:k]...)
	fitted.varianceRatio = append([]float64(nil), ratios[:k]...)
	fitted.state = stage.NewFittedState(r, c)

	if p.verbose > 0 {
		retained := 0.0
		for _, ratio := range fitted.varianceRatio {
			retained += ratio
		}
		logger := log.GetLoggerWithName("decomposition.pca")
		logger.Info("Components retained",
			log.OperationKey, log.OperationFit,
			log.ComponentsKey, k,
			log.ExplainedVarianceKey, retained,
			log.SamplesKey, r,
			log.FeaturesKey, c,
		)
	}

	return &fitted, nil
}

// Transform centers new data on the training-time means and projects it onto
// the retained components. Output has one column per retained component.
func (p *PCA) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := p.state.RequireFitted("PCA", "Transform"); err != nil {
		return nil, err
	}
	if err := p.state.CheckFeatures("PCA.Transform", X); err != nil {
		return nil, err
	}

	centered := centerWithMean(X, p.mean)

	var projected mat.Dense
	projected.Mul(centered, p.components)
	return &projected, nil
}

// InverseTransform maps projected data back into the original feature space.
// The reconstruction is lossy when components were truncated.
func (p *PCA) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := p.state.RequireFitted("PCA", "InverseTransform"); err != nil {
		return nil, err
	}

	k := p.NComponents()
	r, got := X.Dims()
	if got != k {
		return nil, errors.NewDimensionError("PCA.InverseTransform", k, got, 1)
	}

	var reconstructed mat.Dense
	reconstructed.Mul(X, p.components.T())
	for i := 0; i < r; i++ {
		for j := range p.mean {
			reconstructed.Set(i, j, reconstructed.At(i, j)+p.mean[j])
		}
	}
	return &reconstructed, nil
}

// centerWithMean subtracts the stored means; NaN entries land exactly on the
// mean, i.e. at centered zero, so they do not pull the projection.
func centerWithMean(X mat.Matrix, mean []float64) *mat.Dense {
	r, c := X.Dims()
	centered := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				centered.Set(i, j, 0)
			} else {
				centered.Set(i, j, v-mean[j])
			}
		}
	}
	return centered
}

// NComponents returns the number of retained components.
func (p *PCA) NComponents() int {
	if p.components == nil {
		return 0
	}
	_, k := p.components.Dims()
	return k
}

// Mean returns a copy of the training-time feature means.
func (p *PCA) Mean() []float64 {
	return append([]float64(nil), p.mean...)
}

// Components returns a copy of the projection basis (nFeatures x k).
func (p *PCA) Components() *mat.Dense {
	if p.components == nil {
		return nil
	}
	return mat.DenseCopyOf(p.components)
}

// ExplainedVariance returns a copy of the per-component variances.
func (p *PCA) ExplainedVariance() []float64 {
	return append([]float64(nil), p.explainedVariance...)
}

// ExplainedVarianceRatio returns a copy of the per-component variance
// proportions relative to the total variance of the training data.
func (p *PCA) ExplainedVarianceRatio() []float64 {
	return append([]float64(nil), p.varianceRatio...)
}

// String returns a human-readable description of the stage.
func (p *PCA) String() string {
	switch {
	case p.state.IsFitted():
		return fmt.Sprintf("PCA(n_components=%d)", p.NComponents())
	case p.hasRetainTarget:
		return fmt.Sprintf("PCA(retained_variance=%g)", p.retainTarget)
	case p.hasNComponents:
		return fmt.Sprintf("PCA(n_components=%d)", p.nComponents)
	default:
		return "PCA()"
	}
}
