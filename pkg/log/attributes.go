// Package log defines standard attribute keys for preprocessing and model
// fitting operations.
//
// Keys follow a hierarchical naming convention (e.g. "ml.operation",
// "data.samples") so that log records from the pipeline, the trainers and
// the CLI can be filtered uniformly.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "Pipeline", "StandardScaler", "Ridge"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "fit_transform", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the modeling session.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// TableKey names the table being processed ("train" or "test").
	TableKey = "data.table"

	// ColumnKey names a single column.
	ColumnKey = "data.column"

	// ColumnsKey lists several column names.
	ColumnsKey = "data.columns"

	// TargetKey names the target column.
	TargetKey = "data.target"

	// LevelsKey lists categorical levels.
	LevelsKey = "data.levels"

	// MissingRatioKey records the fraction of missing values in a column.
	MissingRatioKey = "data.missing_ratio"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// R2ScoreKey records R² coefficient of determination for regression.
	R2ScoreKey = "metrics.r2_score"

	// MSEKey records the mean squared error.
	MSEKey = "metrics.mse"

	// MAEKey records the mean absolute error.
	MAEKey = "metrics.mae"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"
)

// Hyperparameters and Configuration
const (
	// RegularizationKey records regularization strength.
	RegularizationKey = "hyperparams.regularization"
)

// Standard attribute values.
const (
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationScore        = "score"

	PhaseTraining      = "training"
	PhaseTesting       = "testing"
	PhasePreprocessing = "preprocessing"

	ErrorNotFitted    = "NOT_FITTED"
	ErrorEmptyData    = "EMPTY_DATA"
	ErrorSchema       = "SCHEMA"
	ErrorInvalidInput = "INVALID_INPUT"
)
