package svm

// Option is a function that configures an SVR.
type Option func(*SVR)

// WithKernel sets the kernel function.
func WithKernel(kernel Kernel) Option {
	return func(s *SVR) {
		s.kernel = kernel
	}
}

// WithC sets the regularization strength. Larger C fits the training data
// more closely.
func WithC(c float64) Option {
	return func(s *SVR) {
		s.c = c
	}
}

// WithEpsilon sets the width of the insensitive tube around the regression
// function. Errors smaller than epsilon carry no loss.
func WithEpsilon(epsilon float64) Option {
	return func(s *SVR) {
		s.epsilon = epsilon
	}
}

// WithGamma sets the RBF width policy, GammaScale or GammaAuto. Ignored by
// the linear kernel.
func WithGamma(policy string) Option {
	return func(s *SVR) {
		s.gamma = policy
	}
}

// WithGammaValue sets an explicit RBF width instead of a policy.
func WithGammaValue(gamma float64) Option {
	return func(s *SVR) {
		s.gamma = gammaExplicit
		s.gammaValue = gamma
	}
}

// WithTol sets the stopping tolerance of the dual solver.
func WithTol(tol float64) Option {
	return func(s *SVR) {
		s.tol = tol
	}
}

// WithMaxIter caps the number of solver iterations. Hitting the cap emits a
// ConvergenceWarning instead of failing.
func WithMaxIter(n int) Option {
	return func(s *SVR) {
		s.maxIter = n
	}
}
