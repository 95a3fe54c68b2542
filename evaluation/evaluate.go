// Package evaluation computes held-out error estimates with confidence
// intervals for fitted regressors.
package evaluation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/concretego/core/model"
	"github.com/YuminosukeSato/concretego/metrics"
	"github.com/YuminosukeSato/concretego/pkg/errors"
)

// Result is a test-set error report.
type Result struct {
	// RMSE is the root mean squared error on the evaluation set.
	RMSE float64

	// Lower and Upper bound the RMSE at the requested confidence level.
	Lower float64
	Upper float64

	// Confidence is the two-sided interval level, e.g. 0.95.
	Confidence float64

	// NSamples is the evaluation set size.
	NSamples int
}

// Evaluate predicts on X and reports RMSE with a confidence interval.
//
// The interval is a Student's t interval on the per-sample squared errors
// (df = n-1, centered on their mean, scaled by their standard error), with
// the bounds mapped back to the RMSE scale by a square root. This treats the
// squared errors as approximately normal; the approximation is part of the
// report's contract and deliberately kept. A negative lower bound on the
// squared-error scale clamps to zero.
func Evaluate(p model.Predictor, X mat.Matrix, y *mat.VecDense, confidence float64) (*Result, error) {
	if p == nil {
		return nil, errors.NewValueError("evaluation.Evaluate", "predictor must not be nil")
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, errors.NewValidationError("confidence", "must be in (0, 1)", confidence)
	}

	n := y.Len()
	if n < 2 {
		return nil, errors.NewValueError("evaluation.Evaluate",
			"need at least two samples for a confidence interval")
	}

	pred, err := p.Predict(X)
	if err != nil {
		return nil, errors.Wrap(err, "evaluation: prediction failed")
	}

	yPred := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		yPred.SetVec(i, pred.At(i, 0))
	}

	rmse, err := metrics.RMSE(y, yPred)
	if err != nil {
		return nil, err
	}
	sqErrs, err := metrics.SquaredErrors(y, yPred)
	if err != nil {
		return nil, err
	}

	mean := 0.0
	for _, e := range sqErrs {
		mean += e
	}
	mean /= float64(n)

	// Standard error of the mean with the sample (n-1) variance
	variance := 0.0
	for _, e := range sqErrs {
		d := e - mean
		variance += d * d
	}
	variance /= float64(n - 1)
	sem := math.Sqrt(variance / float64(n))

	// Identical squared errors leave no spread to put an interval on
	if sem == 0 {
		return &Result{
			RMSE:       rmse,
			Lower:      rmse,
			Upper:      rmse,
			Confidence: confidence,
			NSamples:   n,
		}, nil
	}

	alpha := 1 - confidence
	dist := distuv.StudentsT{Mu: mean, Sigma: sem, Nu: float64(n - 1)}
	lowerSq := dist.Quantile(alpha / 2)
	upperSq := dist.Quantile(1 - alpha/2)

	if lowerSq < 0 {
		lowerSq = 0
	}

	return &Result{
		RMSE:       rmse,
		Lower:      math.Sqrt(lowerSq),
		Upper:      math.Sqrt(upperSq),
		Confidence: confidence,
		NSamples:   n,
	}, nil
}

// String formats the result the way the workflow reports it.
func (r *Result) String() string {
	return fmt.Sprintf("Test RMSE: %.2f, %g%% CI: [%.2g, %.2g]",
		r.RMSE, r.Confidence*100, r.Lower, r.Upper)
}
