// Package compose assembles pipelines from YAML declarations, binding
// the built-in stage types to a pipeline.Registry.
//
// A declaration names each position by stage type:
//
//	pipeline:
//	  name: session-classifier
//	  stages:
//	    - type: pca
//	      config: {components: 2}
//	    - type: kernel_discriminant
//	      config: {kernel: rbf, gamma: 0.5, regularization: 1.0}
//
// Registered types are pca, standard_scaler, minmax_scaler,
// pooled_scaler, kernel_discriminant and ridge. Custom stages can be
// added by registering further builders on the returned registry.
package compose

import (
	"fmt"

	"github.com/YuminosukeSato/pipekit/core/stage"
	"github.com/YuminosukeSato/pipekit/decomposition"
	"github.com/YuminosukeSato/pipekit/discriminant"
	"github.com/YuminosukeSato/pipekit/pipeline"
	"github.com/YuminosukeSato/pipekit/pkg/errors"
	"github.com/YuminosukeSato/pipekit/preprocessing"
	"github.com/YuminosukeSato/pipekit/regression"
)

// DefaultRegistry returns a registry holding every built-in stage type.
func DefaultRegistry() *pipeline.Registry {
	reg := pipeline.NewRegistry()
	reg.Register("pca", buildPCA)
	reg.Register("standard_scaler", buildStandardScaler)
	reg.Register("minmax_scaler", buildMinMaxScaler)
	reg.Register("pooled_scaler", buildPooledScaler)
	reg.Register("kernel_discriminant", buildKernelClassifier)
	reg.Register("ridge", buildRidge)
	return reg
}

// Load reads a YAML pipeline declaration and builds it against the
// default registry.
func Load(path string) (*pipeline.Pipeline, error) {
	cfg, err := pipeline.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return cfg.Build(DefaultRegistry())
}

// Build parses an in-memory YAML declaration and builds it against the
// default registry.
func Build(data []byte) (*pipeline.Pipeline, error) {
	cfg, err := pipeline.ParseConfig(data)
	if err != nil {
		return nil, err
	}
	return cfg.Build(DefaultRegistry())
}

func buildPCA(params map[string]any) (stage.Stage, error) {
	opts := make([]decomposition.PCAOption, 0, 2)
	n, ok, err := intParam(params, "components")
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, decomposition.WithComponents(n))
	}
	f, ok, err := floatParam(params, "retained_variance")
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, decomposition.WithRetainedVariance(f))
	}
	return decomposition.NewPCA(opts...), nil
}

func buildStandardScaler(params map[string]any) (stage.Stage, error) {
	opts := make([]preprocessing.StandardScalerOption, 0, 2)
	withMean, ok, err := boolParam(params, "with_mean")
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, preprocessing.WithMean(withMean))
	}
	withStd, ok, err := boolParam(params, "with_std")
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, preprocessing.WithStd(withStd))
	}
	return preprocessing.NewStandardScaler(opts...), nil
}

func buildMinMaxScaler(params map[string]any) (stage.Stage, error) {
	lo, okLo, err := floatParam(params, "min")
	if err != nil {
		return nil, err
	}
	hi, okHi, err := floatParam(params, "max")
	if err != nil {
		return nil, err
	}
	if okLo || okHi {
		if !okLo {
			lo = 0
		}
		if !okHi {
			hi = 1
		}
		return preprocessing.NewMinMaxScaler(preprocessing.WithFeatureRange(lo, hi)), nil
	}
	return preprocessing.NewMinMaxScaler(), nil
}

func buildPooledScaler(_ map[string]any) (stage.Stage, error) {
	return preprocessing.NewPooledScaler(), nil
}

func buildKernelClassifier(params map[string]any) (stage.Stage, error) {
	opts := make([]discriminant.KernelClassifierOption, 0, 2)

	kind, ok, err := stringParam(params, "kernel")
	if err != nil {
		return nil, err
	}
	if ok {
		switch kind {
		case "linear":
			opts = append(opts, discriminant.WithKernel(discriminant.LinearKernel{}))
		case "rbf":
			gamma, hasGamma, err := floatParam(params, "gamma")
			if err != nil {
				return nil, err
			}
			if !hasGamma {
				gamma = 1.0
			}
			opts = append(opts, discriminant.WithKernel(discriminant.RBFKernel{Gamma: gamma}))
		default:
			return nil, errors.NewInvalidInputError("KernelClassifier", "Build",
				fmt.Sprintf("unknown kernel %q (want linear or rbf)", kind))
		}
	}

	lambda, ok, err := floatParam(params, "regularization")
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, discriminant.WithRegularization(lambda))
	}
	return discriminant.NewKernelClassifier(opts...), nil
}

func buildRidge(params map[string]any) (stage.Stage, error) {
	opts := make([]regression.RidgeOption, 0, 2)
	alpha, ok, err := floatParam(params, "alpha")
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, regression.WithAlpha(alpha))
	}
	fitIntercept, ok, err := boolParam(params, "fit_intercept")
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, regression.WithFitIntercept(fitIntercept))
	}
	return regression.NewRidge(opts...), nil
}

// floatParam reads a float parameter, accepting the int form YAML
// produces for unsuffixed literals.
func floatParam(params map[string]any, key string) (float64, bool, error) {
	v, ok := params[key]
	if !ok {
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		return n, true, nil
	case int:
		return float64(n), true, nil
	}
	return 0, false, errors.NewValidationError(key, "must be a number", v)
}

func intParam(params map[string]any, key string) (int, bool, error) {
	v, ok := params[key]
	if !ok {
		return 0, false, nil
	}
	switch n := v.(type) {
	case int:
		return n, true, nil
	case float64:
		if n == float64(int(n)) {
			return int(n), true, nil
		}
	}
	return 0, false, errors.NewValidationError(key, "must be an integer", v)
}

func boolParam(params map[string]any, key string) (bool, bool, error) {
	v, ok := params[key]
	if !ok {
		return false, false, nil
	}
	b, isBool := v.(bool)
	if !isBool {
		return false, false, errors.NewValidationError(key, "must be a boolean", v)
	}
	return b, true, nil
}

func stringParam(params map[string]any, key string) (string, bool, error) {
	v, ok := params[key]
	if !ok {
		return "", false, nil
	}
	s, isString := v.(string)
	if !isString {
		return "", false, errors.NewValidationError(key, "must be a string", v)
	}
	return s, true, nil
}
