// Package svm implements epsilon support vector regression with a sequential
// minimal optimization solver over the dual problem.
package svm

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Kernel selects the similarity function used by the SVR.
type Kernel string

const (
	// KernelRBF is the Gaussian radial basis function kernel.
	KernelRBF Kernel = "rbf"

	// KernelLinear is the plain dot-product kernel.
	KernelLinear Kernel = "linear"
)

// Gamma policies for the RBF kernel width. An explicit positive value can be
// set instead through WithGammaValue.
const (
	// GammaScale resolves to 1 / (n_features * Var(X)) at fit time.
	GammaScale = "scale"

	// GammaAuto resolves to 1 / n_features at fit time.
	GammaAuto = "auto"

	// gammaExplicit marks that a numeric gamma was supplied directly.
	gammaExplicit = "value"
)

// kernelValue evaluates the kernel between row a of A and row b of B.
func kernelValue(kernel Kernel, gamma float64, A mat.Matrix, a int, B mat.Matrix, b int) float64 {
	_, c := A.Dims()
	switch kernel {
	case KernelLinear:
		dot := 0.0
		for j := 0; j < c; j++ {
			dot += A.At(a, j) * B.At(b, j)
		}
		return dot
	default: // KernelRBF
		sq := 0.0
		for j := 0; j < c; j++ {
			d := A.At(a, j) - B.At(b, j)
			sq += d * d
		}
		return math.Exp(-gamma * sq)
	}
}

// resolveGamma turns the configured gamma policy into a concrete width for
// the given training matrix.
func resolveGamma(policy string, explicit float64, X mat.Matrix) float64 {
	r, c := X.Dims()
	switch policy {
	case gammaExplicit:
		return explicit
	case GammaAuto:
		return 1.0 / float64(c)
	default: // GammaScale
		n := float64(r * c)
		mean := 0.0
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				mean += X.At(i, j)
			}
		}
		mean /= n
		variance := 0.0
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				d := X.At(i, j) - mean
				variance += d * d
			}
		}
		variance /= n
		if variance <= 0 {
			// Degenerate constant input: fall back to the auto policy
			return 1.0 / float64(c)
		}
		return 1.0 / (float64(c) * variance)
	}
}
