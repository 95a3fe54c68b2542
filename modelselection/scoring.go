package modelselection

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/concretego/core/model"
	"github.com/YuminosukeSato/concretego/metrics"
	"github.com/YuminosukeSato/concretego/pkg/errors"
)

// Estimator is the model surface cross-validation and search require: it can
// fit, predict, and produce unfitted copies of itself.
type Estimator interface {
	model.Fitter
	model.Predictor
	model.Cloner
}

// Scorer maps true and predicted targets to a score where greater is better.
type Scorer func(yTrue, yPred *mat.VecDense) (float64, error)

// NegRMSE scores predictions by negated root mean squared error, so that the
// best score is the greatest (closest to zero).
func NegRMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	rmse, err := metrics.RMSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return -rmse, nil
}

// CrossValScore evaluates est with k-fold cross-validation: for every fold a
// fresh clone is fitted on the train indices and scored on the test indices.
// It returns one score per fold.
func CrossValScore(est Estimator, X mat.Matrix, y *mat.VecDense, kf *KFold, scorer Scorer) ([]float64, error) {
	if est == nil {
		return nil, errors.NewValueError("CrossValScore", "estimator must not be nil")
	}
	if scorer == nil {
		scorer = NegRMSE
	}
	if kf == nil {
		kf = NewKFold(5, false, 0)
	}

	n, c := X.Dims()
	if y.Len() != n {
		return nil, errors.NewDimensionError("CrossValScore", n, y.Len(), 0)
	}

	folds := kf.Split(n)
	scores := make([]float64, len(folds))

	for k, fold := range folds {
		clone, ok := est.Clone().(Estimator)
		if !ok {
			return nil, errors.NewValueError("CrossValScore", "Clone must return an Estimator")
		}

		XTrain := subsetRows(X, c, fold.TrainIndices)
		yTrain := subsetVec(y, fold.TrainIndices)
		XTest := subsetRows(X, c, fold.TestIndices)
		yTest := subsetVec(y, fold.TestIndices)

		if err := clone.Fit(XTrain, yTrain); err != nil {
			return nil, errors.Wrapf(err, "fold %d: fit failed", k)
		}
		pred, err := clone.Predict(XTest)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d: predict failed", k)
		}

		yPred := mat.NewVecDense(len(fold.TestIndices), nil)
		for i := range fold.TestIndices {
			yPred.SetVec(i, pred.At(i, 0))
		}

		score, err := scorer(yTest, yPred)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d: scoring failed", k)
		}
		scores[k] = score
	}

	return scores, nil
}
