package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// fixedPredictor returns pre-baked predictions, ignoring its input.
type fixedPredictor struct {
	values []float64
}

func (f *fixedPredictor) Predict(X mat.Matrix) (mat.Matrix, error) {
	out := mat.NewDense(len(f.values), 1, nil)
	for i, v := range f.values {
		out.Set(i, 0, v)
	}
	return out, nil
}

func TestEvaluateBoundsBracketTheError(t *testing.T) {
	y := mat.NewVecDense(6, []float64{10, 12, 14, 16, 18, 20})
	p := &fixedPredictor{values: []float64{11, 11.5, 13, 17, 18.5, 19}}

	X := mat.NewDense(6, 1, nil)
	result, err := Evaluate(p, X, y, 0.95)
	require.NoError(t, err)

	assert.Equal(t, 6, result.NSamples)
	assert.Equal(t, 0.95, result.Confidence)
	assert.Greater(t, result.RMSE, 0.0)
	assert.GreaterOrEqual(t, result.Lower, 0.0)
	assert.LessOrEqual(t, result.Lower, result.Upper)

	// The point estimate sits inside the interval
	assert.LessOrEqual(t, result.Lower, result.RMSE)
	assert.GreaterOrEqual(t, result.Upper, result.RMSE)
}

func TestEvaluateWiderConfidenceWidensInterval(t *testing.T) {
	y := mat.NewVecDense(8, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	p := &fixedPredictor{values: []float64{1.2, 1.9, 3.4, 3.8, 5.5, 5.7, 7.1, 8.6}}
	X := mat.NewDense(8, 1, nil)

	narrow, err := Evaluate(p, X, y, 0.90)
	require.NoError(t, err)
	wide, err := Evaluate(p, X, y, 0.99)
	require.NoError(t, err)

	assert.Less(t, wide.Lower, narrow.Lower+1e-12)
	assert.Greater(t, wide.Upper, narrow.Upper)
}

func TestEvaluateClampsNegativeLowerBound(t *testing.T) {
	// One large squared error among near-zero ones gives the squared-error
	// mean a huge spread; the raw t lower bound goes negative and must clamp
	y := mat.NewVecDense(4, []float64{1, 1, 1, 1})
	p := &fixedPredictor{values: []float64{1, 1, 1, 5}}
	X := mat.NewDense(4, 1, nil)

	result, err := Evaluate(p, X, y, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Lower)
}

func TestEvaluatePerfectPredictions(t *testing.T) {
	y := mat.NewVecDense(4, []float64{2, 4, 6, 8})
	p := &fixedPredictor{values: []float64{2, 4, 6, 8}}
	X := mat.NewDense(4, 1, nil)

	result, err := Evaluate(p, X, y, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.RMSE)
	assert.Equal(t, 0.0, result.Lower)
	assert.Equal(t, 0.0, result.Upper)
}

func TestEvaluateValidation(t *testing.T) {
	y := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	p := &fixedPredictor{values: []float64{1, 2, 3, 4}}
	X := mat.NewDense(4, 1, nil)

	_, err := Evaluate(nil, X, y, 0.95)
	require.Error(t, err)

	_, err = Evaluate(p, X, y, 0.0)
	require.Error(t, err)
	_, err = Evaluate(p, X, y, 1.0)
	require.Error(t, err)

	_, err = Evaluate(p, mat.NewDense(1, 1, nil), mat.NewVecDense(1, []float64{1}), 0.95)
	require.Error(t, err, "single sample has no interval")
}
