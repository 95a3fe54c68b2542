package svm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/concretego/pkg/errors"
)

func linearData(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1) * 10.0
		X.Set(i, 0, x)
		y.Set(i, 0, 2.0*x+1.0)
	}
	return X, y
}

func TestSVRLinearKernelFitsLinearData(t *testing.T) {
	X, y := linearData(30)

	s := NewSVR(
		WithKernel(KernelLinear),
		WithC(10.0),
		WithEpsilon(0.01),
	)
	require.NoError(t, s.Fit(X, y))
	require.True(t, s.IsFitted())
	assert.Greater(t, s.NSupportVectors(), 0)

	pred, err := s.Predict(X)
	require.NoError(t, err)

	// With a tube of width 0.01, every prediction is within epsilon-ish of
	// the line
	for i := 0; i < 30; i++ {
		assert.InDelta(t, y.At(i, 0), pred.At(i, 0), 0.1, "row %d", i)
	}

	score, err := s.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.99)
}

func TestSVRRBFKernelFitsSmoothData(t *testing.T) {
	n := 40
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1) * 2 * math.Pi
		X.Set(i, 0, x)
		y.Set(i, 0, math.Sin(x))
	}

	s := NewSVR(WithC(100.0), WithEpsilon(0.01), WithGammaValue(1.0))
	require.NoError(t, s.Fit(X, y))

	score, err := s.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.99)
}

func TestSVRNotFitted(t *testing.T) {
	s := NewSVR()
	_, err := s.Predict(mat.NewDense(1, 1, nil))
	require.Error(t, err)

	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))
}

func TestSVRDimensionMismatch(t *testing.T) {
	X, y := linearData(10)
	s := NewSVR(WithKernel(KernelLinear))
	require.NoError(t, s.Fit(X, y))

	_, err := s.Predict(mat.NewDense(2, 3, nil))
	require.Error(t, err)

	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestSVRValidatesConfig(t *testing.T) {
	X, y := linearData(10)

	tests := []struct {
		name string
		svr  *SVR
	}{
		{"negative C", NewSVR(WithC(-1))},
		{"negative epsilon", NewSVR(WithEpsilon(-0.1))},
		{"bad kernel", NewSVR(WithKernel(Kernel("poly")))},
		{"bad gamma policy", NewSVR(WithGamma("sometimes"))},
		{"non-positive gamma", NewSVR(WithGammaValue(0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.svr.Fit(X, y))
		})
	}
}

func TestSVRGetSetParams(t *testing.T) {
	s := NewSVR()
	require.NoError(t, s.SetParams(map[string]interface{}{
		"kernel":  "linear",
		"gamma":   "auto",
		"C":       3.5,
		"epsilon": 0.2,
	}))

	params := s.GetParams()
	assert.Equal(t, "linear", params["kernel"])
	assert.Equal(t, "auto", params["gamma"])
	assert.Equal(t, 3.5, params["C"])
	assert.Equal(t, 0.2, params["epsilon"])

	// Gamma under the linear kernel is accepted and simply unused
	require.NoError(t, s.SetParams(map[string]interface{}{"gamma": "scale"}))

	require.Error(t, s.SetParams(map[string]interface{}{"degree": 3}))
}

func TestSVRClone(t *testing.T) {
	X, y := linearData(10)

	s := NewSVR(WithKernel(KernelLinear), WithC(5.0), WithEpsilon(0.05))
	require.NoError(t, s.Fit(X, y))

	clone, ok := s.Clone().(*SVR)
	require.True(t, ok)
	assert.False(t, clone.IsFitted())
	assert.Equal(t, KernelLinear, clone.kernel)
	assert.Equal(t, 5.0, clone.c)
	assert.Equal(t, 0.05, clone.epsilon)
}

func TestSVRConstantTarget(t *testing.T) {
	// A constant target lies entirely inside the epsilon tube of its own
	// mean: the dual solver finds no support vectors and the model reduces
	// to the bare intercept. Must fit and predict, not crash.
	X := mat.NewDense(5, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
		5, 50,
	})
	y := mat.NewDense(5, 1, []float64{5, 5, 5, 5, 5})

	for _, kernel := range []Kernel{KernelLinear, KernelRBF} {
		t.Run(string(kernel), func(t *testing.T) {
			s := NewSVR(WithKernel(kernel))
			require.NoError(t, s.Fit(X, y))
			require.True(t, s.IsFitted())
			assert.Equal(t, 0, s.NSupportVectors())

			pred, err := s.Predict(X)
			require.NoError(t, err)
			for i := 0; i < 5; i++ {
				assert.InDelta(t, 5.0, pred.At(i, 0), 1e-9, "row %d", i)
			}
		})
	}
}

func TestSVRConvergenceWarning(t *testing.T) {
	var warned error
	errors.SetWarningHandler(func(w error) { warned = w })
	defer errors.SetWarningHandler(func(w error) {})

	X, y := linearData(20)
	s := NewSVR(WithKernel(KernelLinear), WithMaxIter(1))
	require.NoError(t, s.Fit(X, y))

	require.Error(t, warned)
	var conv *errors.ConvergenceWarning
	assert.True(t, errors.As(warned, &conv))
}

func TestResolveGamma(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		0, 0,
		1, 1,
		2, 2,
	})

	// auto: 1/d
	assert.InDelta(t, 0.5, resolveGamma(GammaAuto, 0, X), 1e-12)

	// scale: 1/(d * Var(X)); entries are {0,0,1,1,2,2}, variance 2/3
	assert.InDelta(t, 1.0/(2.0*(2.0/3.0)), resolveGamma(GammaScale, 0, X), 1e-12)

	// explicit value passes through
	assert.InDelta(t, 0.25, resolveGamma(gammaExplicit, 0.25, X), 1e-12)

	// constant matrix falls back to auto
	C := mat.NewDense(2, 2, []float64{5, 5, 5, 5})
	assert.InDelta(t, 0.5, resolveGamma(GammaScale, 0, C), 1e-12)
}

func TestSolveEpsilonSVRTinyProblem(t *testing.T) {
	// Two points on y = x, linear kernel. The solver should recover a
	// function close to the identity on the training points.
	K := [][]float64{
		{1, 2},
		{2, 4},
	}
	y := []float64{1, 2}

	beta, b, _, converged := solveEpsilonSVR(K, y, 10.0, 0.001, 1e-4, 10000)
	require.True(t, converged)

	// f(x_i) = sum_j beta_j K_ji + b
	for i := 0; i < 2; i++ {
		f := b
		for j := 0; j < 2; j++ {
			f += beta[j] * K[j][i]
		}
		assert.InDelta(t, y[i], f, 0.05, "training point %d", i)
	}
}
