package svm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/concretego/core/model"
	"github.com/YuminosukeSato/concretego/metrics"
	"github.com/YuminosukeSato/concretego/pkg/errors"
)

// SVR is an epsilon support vector regressor.
//
// Training solves the dual of the epsilon-insensitive loss problem with a
// sequential minimal optimization loop over maximal violating pairs. The
// fitted model keeps only the support vectors and their dual coefficients,
// so prediction cost scales with the number of support vectors rather than
// the training set size.
type SVR struct {
	model.BaseEstimator

	kernel     Kernel
	c          float64
	epsilon    float64
	gamma      string
	gammaValue float64
	tol        float64
	maxIter    int

	// Fitted state
	supportVectors *mat.Dense
	dualCoef       []float64
	intercept      float64
	fittedGamma    float64
	nFeatures      int
	iterations     int
}

// NewSVR creates an SVR with RBF kernel, C=1, epsilon=0.1 and scale gamma,
// optionally adjusted through options.
func NewSVR(opts ...Option) *SVR {
	s := &SVR{
		kernel:  KernelRBF,
		c:       1.0,
		epsilon: 0.1,
		gamma:   GammaScale,
		tol:     1e-3,
		maxIter: 200000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SVR) validateConfig() error {
	if s.kernel != KernelRBF && s.kernel != KernelLinear {
		return errors.NewValidationError("kernel", "must be rbf or linear", string(s.kernel))
	}
	if s.c <= 0 {
		return errors.NewValidationError("C", "must be positive", s.c)
	}
	if s.epsilon < 0 {
		return errors.NewValidationError("epsilon", "must be non-negative", s.epsilon)
	}
	switch s.gamma {
	case GammaScale, GammaAuto:
	case gammaExplicit:
		if s.gammaValue <= 0 {
			return errors.NewValidationError("gamma", "must be positive", s.gammaValue)
		}
	default:
		return errors.NewValidationError("gamma", "must be scale, auto or a positive value", s.gamma)
	}
	if s.tol <= 0 {
		return errors.NewValidationError("tol", "must be positive", s.tol)
	}
	return nil
}

// Fit trains the regressor on X and the column vector y.
func (s *SVR) Fit(X, y mat.Matrix) error {
	if err := s.validateConfig(); err != nil {
		return err
	}

	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("SVR.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("SVR.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("SVR.Fit", "y must be a column vector")
	}

	targets := make([]float64, r)
	for i := 0; i < r; i++ {
		targets[i] = y.At(i, 0)
	}

	gamma := resolveGamma(s.gamma, s.gammaValue, X)

	// Precompute the training kernel once; the solver touches it heavily.
	K := make([][]float64, r)
	for i := 0; i < r; i++ {
		K[i] = make([]float64, r)
		for j := 0; j <= i; j++ {
			v := kernelValue(s.kernel, gamma, X, i, X, j)
			K[i][j] = v
			K[j][i] = v
		}
	}

	beta, b, iters, converged := solveEpsilonSVR(K, targets, s.c, s.epsilon, s.tol, s.maxIter)
	if !converged {
		errors.Warn(errors.NewConvergenceWarning("SVR", s.maxIter,
			"dual solver hit the iteration cap; the model may be suboptimal"))
	}

	// Keep only the support vectors. A target that fits entirely inside the
	// epsilon tube of a constant leaves none; the model is then the bare
	// intercept.
	var svRows []int
	for i, coef := range beta {
		if coef != 0 {
			svRows = append(svRows, i)
		}
	}
	var sv *mat.Dense
	coefs := make([]float64, len(svRows))
	if len(svRows) > 0 {
		sv = mat.NewDense(len(svRows), c, nil)
		for k, i := range svRows {
			for j := 0; j < c; j++ {
				sv.Set(k, j, X.At(i, j))
			}
			coefs[k] = beta[i]
		}
	}

	s.supportVectors = sv
	s.dualCoef = coefs
	s.intercept = b
	s.fittedGamma = gamma
	s.nFeatures = c
	s.iterations = iters
	s.SetFitted()
	return nil
}

// Predict returns the regression values for X as an r-by-1 matrix.
func (s *SVR) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("SVR", "Predict")
	}

	r, c := X.Dims()
	if c != s.nFeatures {
		return nil, errors.NewDimensionError("SVR.Predict", s.nFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		sum := s.intercept
		for k, coef := range s.dualCoef {
			sum += coef * kernelValue(s.kernel, s.fittedGamma, s.supportVectors, k, X, i)
		}
		predictions.Set(i, 0, sum)
	}
	return predictions, nil
}

// Score returns the coefficient of determination R^2 on X, y.
func (s *SVR) Score(X, y mat.Matrix) (float64, error) {
	pred, err := s.Predict(X)
	if err != nil {
		return 0, err
	}

	r, _ := y.Dims()
	yTrue := mat.NewVecDense(r, nil)
	yPred := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yTrue.SetVec(i, y.At(i, 0))
		yPred.SetVec(i, pred.At(i, 0))
	}
	return metrics.R2Score(yTrue, yPred)
}

// NSupportVectors returns the number of support vectors of the fitted model.
func (s *SVR) NSupportVectors() int {
	return len(s.dualCoef)
}

// Iterations returns the solver iteration count of the last fit.
func (s *SVR) Iterations() int {
	return s.iterations
}

// GetParams returns the hyperparameters under their scikit-learn names.
func (s *SVR) GetParams() map[string]interface{} {
	var gamma interface{}
	if s.gamma == gammaExplicit {
		gamma = s.gammaValue
	} else {
		gamma = s.gamma
	}
	return map[string]interface{}{
		"kernel":  string(s.kernel),
		"gamma":   gamma,
		"C":       s.c,
		"epsilon": s.epsilon,
	}
}

// SetParams sets hyperparameters by name. Unknown names are rejected; the
// values are validated on the next Fit. A gamma setting is accepted even for
// the linear kernel, which simply never reads it.
func (s *SVR) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "kernel":
			switch v := value.(type) {
			case Kernel:
				s.kernel = v
			case string:
				s.kernel = Kernel(v)
			default:
				return errors.NewValidationError("kernel", "must be a kernel name", value)
			}
		case "gamma":
			switch v := value.(type) {
			case string:
				s.gamma = v
			case float64:
				s.gamma = gammaExplicit
				s.gammaValue = v
			default:
				return errors.NewValidationError("gamma", "must be a policy name or a float64", value)
			}
		case "C":
			v, ok := value.(float64)
			if !ok {
				return errors.NewValidationError("C", "must be a float64", value)
			}
			s.c = v
		case "epsilon":
			v, ok := value.(float64)
			if !ok {
				return errors.NewValidationError("epsilon", "must be a float64", value)
			}
			s.epsilon = v
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

// Clone returns an unfitted copy with the same hyperparameters.
func (s *SVR) Clone() interface{} {
	return &SVR{
		kernel:     s.kernel,
		c:          s.c,
		epsilon:    s.epsilon,
		gamma:      s.gamma,
		gammaValue: s.gammaValue,
		tol:        s.tol,
		maxIter:    s.maxIter,
	}
}

// String returns a printable representation.
func (s *SVR) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("SVR(kernel=%s, C=%g, epsilon=%g)", s.kernel, s.c, s.epsilon)
	}
	return fmt.Sprintf("SVR(kernel=%s, C=%g, epsilon=%g, n_sv=%d)",
		s.kernel, s.c, s.epsilon, len(s.dualCoef))
}

// solveEpsilonSVR minimizes the dual objective
//
//	0.5 a'Qa + p'a   s.t.  sum(sign_s * a_s) = 0,  0 <= a_s <= C
//
// over 2n variables, where the first n carry sign +1 and linear term
// epsilon - y_i, and the second n carry sign -1 and epsilon + y_i. The
// returned beta_i = a_i - a_{i+n} are the support vector coefficients and b
// the intercept of f(x) = sum_i beta_i K(x_i, x) + b.
func solveEpsilonSVR(K [][]float64, y []float64, c, epsilon, tol float64, maxIter int) (beta []float64, b float64, iters int, converged bool) {
	n := len(y)
	m := 2 * n

	sign := func(s int) float64 {
		if s < n {
			return 1
		}
		return -1
	}
	row := func(s int) int {
		if s < n {
			return s
		}
		return s - n
	}

	alpha := make([]float64, m)
	grad := make([]float64, m)
	for s := 0; s < n; s++ {
		grad[s] = epsilon - y[s]
		grad[s+n] = epsilon + y[s]
	}

	for iters = 0; iters < maxIter; iters++ {
		// Maximal violating pair: the steepest feasible ascent and descent
		// directions of -sign*grad.
		i, j := -1, -1
		up := math.Inf(-1)
		low := math.Inf(1)
		for s := 0; s < m; s++ {
			v := -sign(s) * grad[s]
			if (sign(s) > 0 && alpha[s] < c) || (sign(s) < 0 && alpha[s] > 0) {
				if v > up {
					up = v
					i = s
				}
			}
			if (sign(s) > 0 && alpha[s] > 0) || (sign(s) < 0 && alpha[s] < c) {
				if v < low {
					low = v
					j = s
				}
			}
		}
		if i < 0 || j < 0 || up-low < tol {
			converged = true
			break
		}

		yi, yj := sign(i), sign(j)
		ri, rj := row(i), row(j)

		quad := K[ri][ri] + K[rj][rj] - 2*K[ri][rj]
		if quad < 1e-12 {
			quad = 1e-12
		}
		// Step along (d_i, d_j) = (yi, -yj), which preserves the equality
		// constraint.
		t := (up - low) / quad

		if yi > 0 {
			if limit := c - alpha[i]; t > limit {
				t = limit
			}
		} else {
			if t > alpha[i] {
				t = alpha[i]
			}
		}
		if yj > 0 {
			if t > alpha[j] {
				t = alpha[j]
			}
		} else {
			if limit := c - alpha[j]; t > limit {
				t = limit
			}
		}

		alpha[i] += yi * t
		alpha[j] -= yj * t

		for s := 0; s < m; s++ {
			grad[s] += sign(s) * t * (K[row(s)][ri] - K[row(s)][rj])
		}
	}

	// Intercept from the KKT conditions: free variables pin it exactly,
	// otherwise take the midpoint of the feasible interval.
	ub := math.Inf(1)
	lb := math.Inf(-1)
	sumFree := 0.0
	nFree := 0
	for s := 0; s < m; s++ {
		yG := sign(s) * grad[s]
		switch {
		case alpha[s] >= c:
			if sign(s) < 0 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		case alpha[s] <= 0:
			if sign(s) > 0 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		default:
			nFree++
			sumFree += yG
		}
	}
	var rho float64
	if nFree > 0 {
		rho = sumFree / float64(nFree)
	} else {
		rho = (ub + lb) / 2
	}

	beta = make([]float64, n)
	for s := 0; s < n; s++ {
		beta[s] = alpha[s] - alpha[s+n]
	}
	return beta, -rho, iters, converged
}
