package discriminant

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pipekit/core/stage"
	"github.com/YuminosukeSato/pipekit/pkg/errors"
	"github.com/YuminosukeSato/pipekit/pkg/log"
)

var _ stage.Predictor = (*KernelClassifier)(nil)

// KernelClassifier is a binary classifier solving the regularized
// least-squares system
//
//	[ K + lambda*D   1 ] [alpha]   [t]
//	[ 1^T            0 ] [bias ] = [0]
//
// where K is the training kernel matrix, t maps the two classes onto -1/+1
// and D rescales the ridge per example by class size, so the minority class
// is not washed out. Fit returns a new fitted value; the receiver is reusable
// and never mutated.
type KernelClassifier struct {
	state stage.State

	kernel  Kernel
	lambda  float64
	verbose int

	// fitted parameters
	support *mat.Dense
	alphas  []float64
	bias    float64
	classes [2]int
}

// KernelClassifierOption configures a KernelClassifier at construction.
type KernelClassifierOption func(*KernelClassifier)

// WithKernel sets the similarity kernel (default: LinearKernel).
func WithKernel(k Kernel) KernelClassifierOption {
	return func(c *KernelClassifier) {
		c.kernel = k
	}
}

// WithRegularization sets the ridge strength lambda (default: 1e-3).
func WithRegularization(lambda float64) KernelClassifierOption {
	return func(c *KernelClassifier) {
		c.lambda = lambda
	}
}

// WithVerbose sets the diagnostic verbosity (0 is silent).
func WithVerbose(verbosity int) KernelClassifierOption {
	return func(c *KernelClassifier) {
		c.verbose = verbosity
	}
}

// NewKernelClassifier creates a classifier with the given options.
func NewKernelClassifier(opts ...KernelClassifierOption) *KernelClassifier {
	c := &KernelClassifier{
		kernel: LinearKernel{},
		lambda: 1e-3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the stage name.
func (c *KernelClassifier) Name() string { return "KernelClassifier" }

// Fit solves the dual system on the training kernel matrix and returns the
// fitted classifier as a new value. Exactly two distinct labels are
// required. Labels are read from the single column of y; the smaller label
// is mapped to -1 and the larger to +1.
func (c *KernelClassifier) Fit(X, y mat.Matrix) (stage.Stage, error) {
	if c.lambda < 0 {
		return nil, errors.NewValidationError("regularization", "must be >= 0", c.lambda)
	}
	if y == nil {
		return nil, errors.NewInvalidInputError("KernelClassifier", "Fit", "labels are required")
	}

	n, d := X.Dims()
	if n == 0 || d == 0 {
		return nil, errors.NewModelError("KernelClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return nil, errors.NewInvalidInputError("KernelClassifier", "Fit",
			fmt.Sprintf("labels must be a single column, got %d columns", yCols))
	}
	if yRows != n {
		return nil, errors.NewDimensionError("KernelClassifier.Fit", n, yRows, 0)
	}

	classes, counts := extractClasses(y)
	if len(classes) != 2 {
		return nil, errors.NewInvalidInputError("KernelClassifier", "Fit",
			fmt.Sprintf("requires exactly 2 classes, got %d", len(classes)))
	}

	// -1/+1 targets in sorted class order.
	targets := make([]float64, n)
	for i := 0; i < n; i++ {
		if int(y.At(i, 0)) == classes[1] {
			targets[i] = 1.0
		} else {
			targets[i] = -1.0
		}
	}

	kernel := resolveKernel(c.kernel, d)
	support := mat.DenseCopyOf(X)
	K := gramMatrix(kernel, support, support)

	// Bordered system: ridge scaled by 2*n_class/n per example keeps the
	// minority class from being washed out.
	A := mat.NewDense(n+1, n+1, nil)
	rhs := mat.NewVecDense(n+1, nil)
	for i := 0; i < n; i++ {
		classSize := counts[classes[0]]
		if targets[i] > 0 {
			classSize = counts[classes[1]]
		}
		for j := 0; j < n; j++ {
			A.Set(i, j, K.At(i, j))
		}
		A.Set(i, i, A.At(i, i)+c.lambda*2.0*float64(classSize)/float64(n))
		A.Set(i, n, 1.0)
		A.Set(n, i, 1.0)
		rhs.SetVec(i, targets[i])
	}

	var sol mat.VecDense
	err := errors.SafeExecute("KernelClassifier.Fit", func() error {
		return sol.SolveVec(A, rhs)
	})
	if err != nil {
		return nil, errors.NewModelError("KernelClassifier.Fit",
			"solving the regularized dual system", errors.ErrSingularMatrix)
	}

	alphas := make([]float64, n)
	for i := 0; i < n; i++ {
		alphas[i] = sol.AtVec(i)
	}

	fitted := *c
	fitted.kernel = kernel
	fitted.support = support
	fitted.alphas = alphas
	fitted.bias = sol.AtVec(n)
	fitted.classes = [2]int{classes[0], classes[1]}
	fitted.state = stage.NewFittedState(n, d)

	if c.verbose > 0 {
		logger := log.GetLoggerWithName("discriminant.classifier")
		logger.Info("Classifier trained",
			log.OperationKey, log.OperationFit,
			log.SamplesKey, n,
			log.FeaturesKey, d,
			log.ClassesKey, 2,
			log.KernelKey, kernel.Name(),
			log.RegularizationKey, c.lambda,
		)
	}

	return &fitted, nil
}

// Transform scores new examples against the support data and returns a
// two-column one-hot indicator matrix: column 0 marks the smaller class,
// column 1 the larger. Every row has exactly one entry set to 1, which lets
// the output compose with stages expecting posterior-shaped input.
func (c *KernelClassifier) Transform(X mat.Matrix) (mat.Matrix, error) {
	scores, err := c.decisionScores(X, "Transform")
	if err != nil {
		return nil, err
	}

	m := len(scores)
	out := mat.NewDense(m, 2, nil)
	for i, score := range scores {
		if score >= 0 {
			out.Set(i, 1, 1.0)
		} else {
			out.Set(i, 0, 1.0)
		}
	}
	return out, nil
}

// Predict returns hard class assignments as an m x 1 matrix, using the
// original label values seen at training time.
func (c *KernelClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	scores, err := c.decisionScores(X, "Predict")
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(len(scores), 1, nil)
	for i, score := range scores {
		if score >= 0 {
			out.Set(i, 0, float64(c.classes[1]))
		} else {
			out.Set(i, 0, float64(c.classes[0]))
		}
	}
	return out, nil
}

// DecisionFunction returns the raw decision scores sum_j alpha_j*k(x, s_j)
// + bias for each example, positive for the larger class.
func (c *KernelClassifier) DecisionFunction(X mat.Matrix) ([]float64, error) {
	return c.decisionScores(X, "DecisionFunction")
}

func (c *KernelClassifier) decisionScores(X mat.Matrix, method string) ([]float64, error) {
	if err := c.state.RequireFitted("KernelClassifier", method); err != nil {
		return nil, err
	}
	if err := c.state.CheckFeatures("KernelClassifier."+method, X); err != nil {
		return nil, err
	}

	K := gramMatrix(c.kernel, asDense(X), c.support)
	m, n := K.Dims()
	scores := make([]float64, m)
	for i := 0; i < m; i++ {
		s := c.bias
		for j := 0; j < n; j++ {
			s += K.At(i, j) * c.alphas[j]
		}
		scores[i] = s
	}
	return scores, nil
}

// Classes returns the two training-time class labels in ascending order.
func (c *KernelClassifier) Classes() [2]int { return c.classes }

// Alphas returns a copy of the fitted dual coefficients.
func (c *KernelClassifier) Alphas() []float64 {
	return append([]float64(nil), c.alphas...)
}

// Bias returns the fitted bias term.
func (c *KernelClassifier) Bias() float64 { return c.bias }

// Kernel returns the kernel in effect. After Fit this is the resolved
// kernel, with any defaulted RBF scale filled in.
func (c *KernelClassifier) Kernel() Kernel { return c.kernel }

// String returns a human-readable description of the stage.
func (c *KernelClassifier) String() string {
	return fmt.Sprintf("KernelClassifier(kernel=%s, regularization=%g)", c.kernel.Name(), c.lambda)
}

// resolveKernel fills in data-dependent kernel defaults at training time.
func resolveKernel(k Kernel, nFeatures int) Kernel {
	if k == nil {
		return LinearKernel{}
	}
	if rbf, ok := k.(RBFKernel); ok && rbf.Gamma <= 0 {
		return RBFKernel{Gamma: 1.0 / float64(nFeatures)}
	}
	return k
}

// extractClasses collects the distinct integer labels of y in ascending
// order together with their occurrence counts.
func extractClasses(y mat.Matrix) ([]int, map[int]int) {
	rows, _ := y.Dims()
	counts := make(map[int]int)
	for i := 0; i < rows; i++ {
		counts[int(y.At(i, 0))]++
	}

	classes := make([]int, 0, len(counts))
	for class := range counts {
		classes = append(classes, class)
	}
	sort.Ints(classes)
	return classes, counts
}
