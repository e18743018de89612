// Package log defines the standard attribute keys used across pipeline
// diagnostics. Keys follow a hierarchical dotted convention
// ("stage.name", "data.samples") so downstream log tooling can filter on
// them without message parsing.

package log

// Stage and pipeline context.
const (
	// StageNameKey identifies the stage type emitting the record.
	// Examples: "PCA", "KernelDiscriminant", "StandardScaler".
	StageNameKey = "stage.name"

	// PipelineNameKey carries the pipeline's configured name, when set.
	PipelineNameKey = "pipeline.name"

	// PositionKey is the zero-based position in the stage list the
	// record refers to.
	PositionKey = "pipeline.position"

	// SignatureKey carries the rendered pipeline signature, e.g.
	// "PCA -> KernelDiscriminant".
	SignatureKey = "pipeline.signature"

	// OperationKey names the operation being performed.
	// Standard values: "fit", "transform", "predict", "fit_collection".
	OperationKey = "ml.operation"

	// ComponentKey identifies the package or component logging the
	// record. Providers stamp it via GetLoggerWithName.
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of examples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// DatasetsKey is the length of a dataset collection when a position
	// processes several related datasets at once.
	DatasetsKey = "data.datasets"

	// ClassesKey is the number of distinct class labels seen at fit time.
	ClassesKey = "data.classes"

	// BranchesKey is the number of fan-out branches (ensemble members or
	// per-dataset copies) a position trained.
	BranchesKey = "fanout.branches"
)

// Fitted-parameter facts reported by verbose stages.
const (
	// ComponentsKey is the number of components a decomposition retained.
	ComponentsKey = "pca.components"

	// ExplainedVarianceKey is the cumulative explained variance ratio of
	// the retained components.
	ExplainedVarianceKey = "pca.explained_variance"

	// KernelKey names the kernel a discriminant stage was fitted with.
	KernelKey = "hyperparams.kernel"

	// RegularizationKey is the regularization strength of a fitted stage.
	RegularizationKey = "hyperparams.regularization"
)

// Performance.
const (
	// DurationMsKey records an operation's wall time in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records classification accuracy from an evaluation.
	AccuracyKey = "metrics.accuracy"
)

// Error context.
const (
	// ErrorCodeKey is a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey is the Go type name of the error, e.g.
	// "StructuralError".
	ErrorTypeKey = "error.type"

	// SuggestionKey carries a hint for resolving the failure.
	SuggestionKey = "error.suggestion"
)

// Standard operation values.
const (
	OperationFit           = "fit"
	OperationTransform     = "transform"
	OperationPredict       = "predict"
	OperationFitCollection = "fit_collection"
)

// Standard error codes.
const (
	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorStructural        = "STRUCTURAL"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
)
