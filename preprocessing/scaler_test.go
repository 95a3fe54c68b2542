package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/concretego/pkg/errors"
)

func TestStandardScalerFitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1.0, 10.0,
		2.0, 20.0,
		3.0, 30.0,
		4.0, 40.0,
	})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	r, c := scaled.Dims()
	require.Equal(t, 4, r)
	require.Equal(t, 2, c)

	// Each column should have (approximately) zero mean and unit variance
	for j := 0; j < c; j++ {
		var mean float64
		for i := 0; i < r; i++ {
			mean += scaled.At(i, j)
		}
		mean /= float64(r)
		assert.InDelta(t, 0.0, mean, 1e-10, "column %d mean", j)

		var variance float64
		for i := 0; i < r; i++ {
			diff := scaled.At(i, j) - mean
			variance += diff * diff
		}
		variance /= float64(r)
		assert.InDelta(t, 1.0, variance, 1e-10, "column %d variance", j)
	}
}

func TestStandardScalerNotFitted(t *testing.T) {
	scaler := NewStandardScalerDefault()
	_, err := scaler.Transform(mat.NewDense(2, 2, nil))
	require.Error(t, err)

	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))
}

func TestStandardScalerDimensionMismatch(t *testing.T) {
	scaler := NewStandardScalerDefault()
	require.NoError(t, scaler.Fit(mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})))

	_, err := scaler.Transform(mat.NewDense(3, 3, nil))
	require.Error(t, err)

	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestStandardScalerInverseRoundTrip(t *testing.T) {
	X := mat.NewDense(5, 2, []float64{
		2.5, 100.0,
		3.5, 150.0,
		1.0, 90.0,
		4.2, 130.0,
		2.8, 110.0,
	})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	restored, err := scaler.InverseTransform(scaled)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, X.At(i, j), restored.At(i, j), 1e-9)
		}
	}
}

func TestStandardScalerConstantColumn(t *testing.T) {
	// Zero-variance columns must not produce division by zero
	X := mat.NewDense(3, 1, []float64{7.0, 7.0, 7.0})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.False(t, math.IsNaN(scaled.At(i, 0)))
		assert.False(t, math.IsInf(scaled.At(i, 0), 0))
	}
}

func TestStandardScalerClone(t *testing.T) {
	scaler := NewStandardScaler(true, false)
	require.NoError(t, scaler.Fit(mat.NewDense(2, 1, []float64{1, 2})))

	clone, ok := scaler.Clone().(*StandardScaler)
	require.True(t, ok)
	assert.False(t, clone.IsFitted())
	assert.True(t, clone.WithMean)
	assert.False(t, clone.WithStd)
}
