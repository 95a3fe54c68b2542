// Package modelselection provides data splitting, cross-validation and
// randomized hyperparameter search.
package modelselection

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/concretego/pkg/errors"
)

// Fold holds the row indices of one cross-validation split.
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold splits n samples into k consecutive folds. With Shuffle enabled the
// sample order is permuted once with a seeded generator, so a fixed seed
// yields identical folds across runs.
type KFold struct {
	NSplits int
	Shuffle bool
	Seed    int64
}

// NewKFold creates a k-fold splitter.
func NewKFold(nSplits int, shuffle bool, seed int64) *KFold {
	if nSplits < 2 {
		nSplits = 5 // Default to 5-fold
	}
	return &KFold{
		NSplits: nSplits,
		Shuffle: shuffle,
		Seed:    seed,
	}
}

// Split generates train/test indices for n samples. The first n % k folds
// receive one extra sample so every sample lands in exactly one test fold.
func (kf *KFold) Split(n int) []Fold {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	if kf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(kf.Seed), uint64(kf.Seed)))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.NSplits)
	foldSize := n / kf.NSplits
	remainder := n % kf.NSplits

	current := 0
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}

		testIndices := make([]int, testSize)
		copy(testIndices, indices[current:current+testSize])

		trainIndices := make([]int, 0, n-testSize)
		trainIndices = append(trainIndices, indices[:current]...)
		trainIndices = append(trainIndices, indices[current+testSize:]...)

		folds[i] = Fold{
			TrainIndices: trainIndices,
			TestIndices:  testIndices,
		}
		current += testSize
	}

	return folds
}

// TrainTestSplit partitions X and y into disjoint train and test sets whose
// union is the input. The split shuffles rows with a generator seeded by
// seed, so the same seed always produces the same partition. testSize is the
// test fraction in (0, 1); the test set gets ceil(n * testSize) rows.
func TrainTestSplit(X mat.Matrix, y *mat.VecDense, testSize float64, seed int64) (XTrain, XTest *mat.Dense, yTrain, yTest *mat.VecDense, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, nil, nil, errors.NewValidationError("testSize", "must be in (0, 1)", testSize)
	}

	n, c := X.Dims()
	if y.Len() != n {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", n, y.Len(), 0)
	}

	nTest := int(math.Ceil(float64(n) * testSize))
	if nTest == 0 || nTest == n {
		return nil, nil, nil, nil, errors.NewValidationError("testSize",
			"split would leave an empty partition", testSize)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	XTest = subsetRows(X, c, indices[:nTest])
	XTrain = subsetRows(X, c, indices[nTest:])
	yTest = subsetVec(y, indices[:nTest])
	yTrain = subsetVec(y, indices[nTest:])
	return XTrain, XTest, yTrain, yTest, nil
}

func subsetRows(X mat.Matrix, c int, rows []int) *mat.Dense {
	out := mat.NewDense(len(rows), c, nil)
	for k, i := range rows {
		for j := 0; j < c; j++ {
			out.Set(k, j, X.At(i, j))
		}
	}
	return out
}

func subsetVec(y *mat.VecDense, rows []int) *mat.VecDense {
	out := mat.NewVecDense(len(rows), nil)
	for k, i := range rows {
		out.SetVec(k, y.AtVec(i))
	}
	return out
}
