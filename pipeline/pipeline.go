// Package pipeline implements scikit-learn compatible Pipeline for chaining transformers and estimators.
// This provides the same API as sklearn.pipeline.Pipeline.
package pipeline

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/concretego/core/model"
	"github.com/YuminosukeSato/concretego/pkg/errors"
	"github.com/YuminosukeSato/concretego/pkg/log"
)

var (
	providerMu     sync.Mutex
	globalProvider log.LoggerProvider
)

// SetLoggerProvider replaces the provider used by newly created pipelines.
// Tests use this with log.TestLoggerProvider to assert on fit logs.
func SetLoggerProvider(p log.LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	globalProvider = p
}

// loggerProvider returns the configured provider, lazily installing the
// zerolog default. Safe for concurrent pipeline construction, which happens
// when cross-validation clones pipelines in parallel.
func loggerProvider() log.LoggerProvider {
	providerMu.Lock()
	defer providerMu.Unlock()
	if globalProvider == nil {
		globalProvider = log.NewZerologProvider(log.ToLogLevel("info"))
	}
	return globalProvider
}

// Step represents a single step in the pipeline.
// Each step is a tuple of (name, transformer/estimator).
type Step struct {
	Name      string      // Name of this step (for identification)
	Estimator interface{} // Can be Transformer or Estimator
}

// Pipeline chains multiple transforms and optionally a final estimator.
// Intermediate steps must be transformers (i.e., have a transform method).
// The final step can be a transformer or an estimator.
//
// Scikit-learn compatible implementation.
type Pipeline struct {
	// State management using composition
	state  *model.StateManager
	logger log.Logger

	// Pipeline configuration
	steps   []Step // List of (name, transform/estimator) tuples
	verbose bool   // If true, time elapsed while fitting each step is logged

	// Fitted state
	namedSteps_ map[string]interface{} // Access steps by name
}

// New creates a new Pipeline with the given steps.
// This is equivalent to sklearn.pipeline.Pipeline(steps)
func New(steps ...Step) *Pipeline {
	namedSteps := make(map[string]interface{})
	for _, step := range steps {
		namedSteps[step.Name] = step.Estimator
	}

	pipeline := &Pipeline{
		steps:       steps,
		namedSteps_: namedSteps,
		verbose:     false,
	}

	// Initialize state manager and logger
	pipeline.state = model.NewStateManager()
	pipeline.logger = loggerProvider().GetLoggerWithName("Pipeline")

	return pipeline
}

// NewPipeline is an alias for New to match sklearn naming conventions
func NewPipeline(steps ...Step) *Pipeline {
	return New(steps...)
}

// Make is a convenience function similar to sklearn.pipeline.make_pipeline
// It automatically generates names for the steps.
func Make(estimators ...interface{}) *Pipeline {
	steps := make([]Step, len(estimators))
	for i, estimator := range estimators {
		name := fmt.Sprintf("step%d", i+1)
		steps[i] = Step{Name: name, Estimator: estimator}
	}
	return New(steps...)
}

// Fit trains the pipeline.
// Fit all the transformers one after the other and transform the
// data, then fit the final estimator.
func (p *Pipeline) Fit(X, y mat.Matrix) error {
	Xt := X
	var err error

	// Fit and transform all steps except the last
	for i := 0; i < len(p.steps)-1; i++ {
		step := p.steps[i]

		transformer, ok := step.Estimator.(model.Transformer)
		if !ok {
			return errors.NewValidationError(
				"pipeline step",
				"all intermediate steps must be transformers",
				step.Name,
			)
		}

		start := time.Now()
		if Xt, err = transformer.FitTransform(Xt); err != nil {
			return errors.Wrap(err, fmt.Sprintf("failed to fit step '%s'", step.Name))
		}
		p.logStepFitted(step.Name, start)
	}

	// Fit the final estimator
	if len(p.steps) > 0 {
		finalStep := p.steps[len(p.steps)-1]

		fitter, ok := finalStep.Estimator.(model.Fitter)
		if !ok {
			return errors.NewValidationError(
				"pipeline final step",
				"final step must have Fit method",
				finalStep.Name,
			)
		}

		start := time.Now()
		if err = fitter.Fit(Xt, y); err != nil {
			return errors.Wrap(err, fmt.Sprintf("failed to fit final step '%s'", finalStep.Name))
		}
		p.logStepFitted(finalStep.Name, start)
	}

	p.state.SetFitted()
	return nil
}

func (p *Pipeline) logStepFitted(name string, start time.Time) {
	if !p.verbose {
		return
	}
	p.logger.Info("fitted pipeline step",
		"step", name,
		log.DurationMsKey, time.Since(start).Milliseconds())
}

// Predict applies transforms to the data, and predict with the final estimator.
func (p *Pipeline) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !p.state.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "Predict")
	}

	Xt, err := p.transform(X)
	if err != nil {
		return nil, err
	}

	if len(p.steps) > 0 {
		finalStep := p.steps[len(p.steps)-1]

		if predictor, ok := finalStep.Estimator.(model.Predictor); ok {
			return predictor.Predict(Xt)
		}

		return nil, errors.NewValidationError(
			"pipeline final step",
			"final step must have Predict method for prediction",
			finalStep.Name,
		)
	}

	return Xt, nil
}

// Transform applies transforms to the data.
// Only valid if every step, final included, is a transformer.
func (p *Pipeline) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !p.state.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "Transform")
	}

	Xt := X
	var err error

	for _, step := range p.steps {
		transformer, ok := step.Estimator.(model.Transformer)
		if !ok {
			return nil, errors.NewValidationError(
				"pipeline step",
				"all steps must be transformers for Transform",
				step.Name,
			)
		}

		Xt, err = transformer.Transform(Xt)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to transform at step '%s'", step.Name))
		}
	}

	return Xt, nil
}

// FitPredict is a convenience method that fits the pipeline and predicts.
// Equivalent to calling Fit followed by Predict.
func (p *Pipeline) FitPredict(X, y mat.Matrix) (mat.Matrix, error) {
	if err := p.Fit(X, y); err != nil {
		return nil, err
	}
	return p.Predict(X)
}

// FitTransform fits every step as a transformer and returns the transformed
// data. Only valid for all-transformer pipelines; y is accepted for API
// symmetry and ignored.
func (p *Pipeline) FitTransform(X, _ mat.Matrix) (mat.Matrix, error) {
	Xt := X
	var err error

	for _, step := range p.steps {
		transformer, ok := step.Estimator.(model.Transformer)
		if !ok {
			return nil, errors.NewValidationError(
				"pipeline step",
				"all steps must be transformers for FitTransform",
				step.Name,
			)
		}

		Xt, err = transformer.FitTransform(Xt)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to fit step '%s'", step.Name))
		}
	}

	p.state.SetFitted()
	return Xt, nil
}

// Score transforms the data and scores it with the final estimator.
func (p *Pipeline) Score(X, y mat.Matrix) (float64, error) {
	if !p.state.IsFitted() {
		return 0, errors.NewNotFittedError("Pipeline", "Score")
	}

	Xt, err := p.transform(X)
	if err != nil {
		return 0, err
	}

	if len(p.steps) > 0 {
		finalStep := p.steps[len(p.steps)-1]

		if scorer, ok := finalStep.Estimator.(model.Scorer); ok {
			return scorer.Score(Xt, y)
		}

		return 0, errors.NewValidationError(
			"pipeline final step",
			"final step must have Score method",
			finalStep.Name,
		)
	}

	return 0, errors.New("pipeline has no steps")
}

// GetParams returns the parameters of the pipeline.
// Step parameters are exposed with a "<step>__<param>" prefix.
func (p *Pipeline) GetParams() map[string]interface{} {
	params := make(map[string]interface{})
	params["steps"] = p.Steps()
	params["verbose"] = p.verbose

	for _, step := range p.steps {
		if paramsGetter, ok := step.Estimator.(model.ParameterGetter); ok {
			for key, value := range paramsGetter.GetParams() {
				params[fmt.Sprintf("%s__%s", step.Name, key)] = value
			}
		}
	}

	return params
}

// SetParams sets the parameters of the pipeline. Keys of the form
// "<step>__<param>" are routed to the named step's SetParams; the step must
// exist and must accept parameters. Remaining keys configure the pipeline
// itself.
func (p *Pipeline) SetParams(params map[string]interface{}) error {
	// Group nested keys per step so each step gets a single SetParams call
	nested := make(map[string]map[string]interface{})

	for key, value := range params {
		if idx := strings.Index(key, "__"); idx > 0 {
			stepName, paramName := key[:idx], key[idx+2:]
			if _, ok := p.namedSteps_[stepName]; !ok {
				return errors.NewValidationError("pipeline parameter",
					"no step with this name", stepName)
			}
			if nested[stepName] == nil {
				nested[stepName] = make(map[string]interface{})
			}
			nested[stepName][paramName] = value
			continue
		}

		switch key {
		case "verbose":
			verbose, ok := value.(bool)
			if !ok {
				return errors.NewValidationError("verbose", "must be a bool", value)
			}
			p.verbose = verbose
		default:
			return errors.NewValidationError("pipeline parameter", "unknown parameter", key)
		}
	}

	for stepName, stepParams := range nested {
		setter, ok := p.namedSteps_[stepName].(model.ParameterSetter)
		if !ok {
			return errors.NewValidationError("pipeline parameter",
				"step does not accept parameters", stepName)
		}
		if err := setter.SetParams(stepParams); err != nil {
			return errors.Wrap(err, fmt.Sprintf("failed to set params on step '%s'", stepName))
		}
	}

	return nil
}

// NamedSteps returns the steps as a map for easy access by name.
func (p *Pipeline) NamedSteps() map[string]interface{} {
	return p.namedSteps_
}

// Steps returns the list of steps.
func (p *Pipeline) Steps() []Step {
	steps := make([]Step, len(p.steps))
	copy(steps, p.steps)
	return steps
}

// Clone returns an unfitted pipeline whose steps are clones of this one's.
// Every step estimator must implement model.Cloner.
func (p *Pipeline) Clone() interface{} {
	steps := make([]Step, len(p.steps))
	for i, step := range p.steps {
		cloner, ok := step.Estimator.(model.Cloner)
		if !ok {
			panic(fmt.Sprintf("pipeline: step '%s' does not implement Clone", step.Name))
		}
		steps[i] = Step{Name: step.Name, Estimator: cloner.Clone()}
	}
	clone := New(steps...)
	clone.verbose = p.verbose
	return clone
}

// IsFitted returns whether Fit has completed successfully.
func (p *Pipeline) IsFitted() bool {
	return p.state.IsFitted()
}

// transform applies all transforms except the final estimator.
func (p *Pipeline) transform(X mat.Matrix) (mat.Matrix, error) {
	Xt := X
	var err error

	for i := 0; i < len(p.steps)-1; i++ {
		step := p.steps[i]
		transformer, ok := step.Estimator.(model.Transformer)
		if !ok {
			return nil, errors.NewValidationError(
				"pipeline step",
				"intermediate steps must be transformers",
				step.Name,
			)
		}

		Xt, err = transformer.Transform(Xt)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to transform at step '%s'", step.Name))
		}
	}

	return Xt, nil
}

// InverseTransform applies inverse transformations in reverse order.
// Only works if all steps are transformers with InverseTransform method.
func (p *Pipeline) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !p.state.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "InverseTransform")
	}

	Xt := X
	var err error

	for i := len(p.steps) - 1; i >= 0; i-- {
		step := p.steps[i]

		inverseTransformer, ok := step.Estimator.(interface {
			InverseTransform(mat.Matrix) (mat.Matrix, error)
		})
		if !ok {
			return nil, errors.NewValidationError(
				"pipeline step",
				"all steps must have InverseTransform method",
				step.Name,
			)
		}

		Xt, err = inverseTransformer.InverseTransform(Xt)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to inverse transform at step '%s'", step.Name))
		}
	}

	return Xt, nil
}
