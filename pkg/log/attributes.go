// Package log defines standard attribute keys for machine learning operations.
//
// Using these standard keys enables consistent log analysis and filtering
// across the preprocessing, search and evaluation stages of the workflow.
// The keys follow a hierarchical naming convention (e.g., "model.name",
// "data.samples").
package log

// Model and Operation Context
// These attributes identify the model type, instance, and operation being performed.
const (
	// ModelNameKey identifies the type of machine learning model.
	// Examples: "SVR", "StandardScaler", "Pipeline"
	ModelNameKey = "model.name"

	// OperationKey specifies the machine learning operation being performed.
	// Standard values: "fit", "predict", "transform", "fit_transform", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is performing the operation.
	// Examples: "svm", "preprocessing", "modelselection"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	// Examples: "training", "inference", "validation", "preprocessing"
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	// Important for dimensionality tracking and debugging shape mismatches.
	FeaturesKey = "data.features"

	// TargetKey names the target column for supervised learning.
	TargetKey = "data.target"
)

// Search and Evaluation Metrics
const (
	// ScoreKey records a cross-validation or test score.
	ScoreKey = "metric.score"

	// RMSEKey records a root-mean-squared error value.
	RMSEKey = "metric.rmse"

	// CandidateKey indexes a hyperparameter search candidate.
	CandidateKey = "search.candidate"

	// ParamsKey carries a candidate's hyperparameter assignment.
	ParamsKey = "search.params"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)
