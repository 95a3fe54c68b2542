package preprocessing

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/concretego/core/model"
	"github.com/YuminosukeSato/concretego/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// LogTransformer applies the elementwise natural logarithm to its input and
// the elementwise exponential on the inverse path, so that a column pipeline
// containing it stays invertible.
//
// Fitting records only bookkeeping state: the column count and, when
// provided, the column names seen during fit. Transform validates the column
// count against that state; InverseTransform intentionally performs no
// fitted-state validation, mirroring the original analysis workflow. See the
// package tests for the round-trip law exp(log(X)) == X on positive input.
//
// The caller is responsible for feeding strictly positive values. Non-positive
// input is not rejected: log produces -Inf/NaN, a DataConversionWarning is
// emitted through pkg/errors, and the values propagate downstream unchanged.
type LogTransformer struct {
	model.BaseEstimator

	// NFeatures is the column count recorded at fit time.
	NFeatures int

	// FeatureNames holds the column names recorded at fit time, when known.
	FeatureNames []string
}

// NewLogTransformer creates an unfitted LogTransformer.
func NewLogTransformer() *LogTransformer {
	return &LogTransformer{}
}

// SetFeatureNames attaches input column names so that FeatureNamesOut can
// report them after fitting. Optional; callers with anonymous matrices skip it.
func (t *LogTransformer) SetFeatureNames(names []string) {
	t.FeatureNames = append([]string(nil), names...)
}

// Fit records the fit-time column identity and count. It has no numeric
// side effect.
func (t *LogTransformer) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("LogTransformer.Fit", "empty data", errors.ErrEmptyData)
	}

	t.NFeatures = c
	if len(t.FeatureNames) != 0 && len(t.FeatureNames) != c {
		return errors.NewDimensionError("LogTransformer.Fit", len(t.FeatureNames), c, 1)
	}

	t.SetFitted()
	return nil
}

// Transform returns the elementwise natural logarithm of X. It requires a
// prior Fit and validates the column count against the fit-time state.
func (t *LogTransformer) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("LogTransformer", "Transform")
	}

	r, c := X.Dims()
	if c != t.NFeatures {
		return nil, errors.NewDimensionError("LogTransformer.Transform", t.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, math.Log(X.At(i, j)))
		}
	}

	// Non-positive input yields non-finite output. Per the workflow contract
	// this is not an error: warn and let the values propagate.
	if err := errors.CheckMatrix("LogTransformer.Transform", result, r, c, 0); err != nil {
		errors.Warn(errors.NewDataConversionWarning(
			"strictly positive input", "non-finite log output",
			"log transform received non-positive values"))
	}

	return result, nil
}

// FitTransform fits the bookkeeping state and transforms the same data.
func (t *LogTransformer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := t.Fit(X); err != nil {
		return nil, err
	}
	return t.Transform(X)
}

// InverseTransform returns the elementwise exponential of X.
//
// Unlike Transform, it performs no fitted-state or shape validation. The
// asymmetry is kept on purpose: the inverse path exists so the column
// composition is invertible in principle, and tightening it would change
// behavior for callers relying on a standalone exp.
func (t *LogTransformer) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	r, c := X.Dims()
	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, math.Exp(X.At(i, j)))
		}
	}
	return result, nil
}

// FeatureNamesOut returns the column names recorded at fit time. Any input
// argument is ignored, matching the scikit-learn get_feature_names_out
// convention for stateless name passthrough.
func (t *LogTransformer) FeatureNamesOut(_ ...string) []string {
	return append([]string(nil), t.FeatureNames...)
}

// GetParams returns the transformer's hyperparameters. LogTransformer has
// none; the map is empty but non-nil for pipeline introspection.
func (t *LogTransformer) GetParams() map[string]interface{} {
	return map[string]interface{}{}
}

// Clone returns an unfitted copy.
func (t *LogTransformer) Clone() interface{} {
	clone := NewLogTransformer()
	clone.FeatureNames = append([]string(nil), t.FeatureNames...)
	return clone
}

// String returns a printable representation.
func (t *LogTransformer) String() string {
	if !t.IsFitted() {
		return "LogTransformer()"
	}
	return fmt.Sprintf("LogTransformer(n_features=%d)", t.NFeatures)
}
