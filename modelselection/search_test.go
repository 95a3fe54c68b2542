package modelselection

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/concretego/svm"
)

func TestUniformSamplesHalfOpenInterval(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	u := Uniform{Min: 0.01, Max: 15.0}

	for i := 0; i < 1000; i++ {
		v, ok := u.Sample(rng).(float64)
		require.True(t, ok)
		assert.GreaterOrEqual(t, v, 0.01)
		assert.Less(t, v, 15.0)
	}
}

func TestChoiceSamplesGivenValues(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	c := Choice("rbf", "linear")

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		v, ok := c.Sample(rng).(string)
		require.True(t, ok)
		seen[v] = true
	}
	assert.Len(t, seen, 2)
}

func searchTrainingData() (*mat.Dense, *mat.VecDense) {
	// Noiseless line over a wide range. Unshuffled folds test contiguous
	// blocks, so a candidate must extrapolate to score well. An RBF model
	// decays to a constant outside its support, while the linear kernel
	// extrapolates exactly.
	n := 40
	X := mat.NewDense(n, 1, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1) * 10.0
		X.Set(i, 0, x)
		y.SetVec(i, 3.0*x+2.0)
	}
	return X, y
}

func concreteSearch(nJobs int) *RandomizedSearchCV {
	return &RandomizedSearchCV{
		Estimator: svm.NewSVR(),
		Params: ParamDistributions{
			"kernel": Choice("rbf", "linear"),
			"gamma":  Choice("auto", "scale"),
			"C":      Uniform{Min: 0.01, Max: 15.0},
		},
		NIter:  15,
		CV:     NewKFold(5, false, 0),
		Seed:   42,
		NJobs:  nJobs,
		Scorer: NegRMSE,
	}
}

func TestRandomizedSearchSelectsLinearKernelOnLinearData(t *testing.T) {
	X, y := searchTrainingData()

	result, err := concreteSearch(1).Fit(X, y)
	require.NoError(t, err)

	assert.Equal(t, "linear", result.BestParams["kernel"])
	assert.Len(t, result.CVResults, 15)

	// The best score is a negated RMSE of a near-perfect fit
	assert.Greater(t, result.BestScore, -1.0)

	// The refitted winner predicts the training line closely
	pred, err := result.BestEstimator.Predict(X)
	require.NoError(t, err)
	for i := 0; i < 40; i++ {
		assert.InDelta(t, y.AtVec(i), pred.At(i, 0), 1.0, "row %d", i)
	}
}

func TestRandomizedSearchDeterministicAcrossParallelism(t *testing.T) {
	X, y := searchTrainingData()

	sequential, err := concreteSearch(1).Fit(X, y)
	require.NoError(t, err)

	parallel, err := concreteSearch(0).Fit(X, y)
	require.NoError(t, err)

	assert.Equal(t, sequential.BestParams, parallel.BestParams)
	assert.Equal(t, sequential.BestScore, parallel.BestScore)
	require.Len(t, parallel.CVResults, len(sequential.CVResults))
	for i := range sequential.CVResults {
		assert.Equal(t, sequential.CVResults[i].Params, parallel.CVResults[i].Params)
		assert.Equal(t, sequential.CVResults[i].MeanScore, parallel.CVResults[i].MeanScore)
	}
}

func TestRandomizedSearchValidation(t *testing.T) {
	X, y := searchTrainingData()

	_, err := (&RandomizedSearchCV{}).Fit(X, y)
	require.Error(t, err, "nil estimator")

	rs := concreteSearch(1)
	rs.NIter = 0
	_, err = rs.Fit(X, y)
	require.Error(t, err, "non-positive NIter")

	rs = concreteSearch(1)
	rs.Params = ParamDistributions{}
	_, err = rs.Fit(X, y)
	require.Error(t, err, "empty parameter space")
}

func TestCrossValScoreReturnsOneScorePerFold(t *testing.T) {
	X, y := searchTrainingData()

	est := svm.NewSVR(svm.WithKernel(svm.KernelLinear), svm.WithC(10.0))
	scores, err := CrossValScore(est, X, y, NewKFold(4, true, 42), NegRMSE)
	require.NoError(t, err)
	require.Len(t, scores, 4)

	// Shuffled folds of a noiseless line: every fold fits well
	for i, score := range scores {
		assert.Greater(t, score, -1.0, "fold %d", i)
	}
}
