package modelselection

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func indexedData(n int) (*mat.Dense, *mat.VecDense) {
	// Row i carries the value i so rows can be traced through a split
	X := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(i)*10)
		y.SetVec(i, float64(i))
	}
	return X, y
}

func TestTrainTestSplitPartition(t *testing.T) {
	X, y := indexedData(20)

	XTrain, XTest, yTrain, yTest, err := TrainTestSplit(X, y, 0.2, 42)
	require.NoError(t, err)

	rTrain, _ := XTrain.Dims()
	rTest, _ := XTest.Dims()
	assert.Equal(t, 16, rTrain)
	assert.Equal(t, 4, rTest)
	assert.Equal(t, 16, yTrain.Len())
	assert.Equal(t, 4, yTest.Len())

	// Disjoint and jointly exhaustive: the traced row ids must be a
	// permutation of 0..n-1
	seen := map[int]bool{}
	collect := func(v *mat.VecDense) {
		for i := 0; i < v.Len(); i++ {
			id := int(v.AtVec(i))
			assert.False(t, seen[id], "row %d appears twice", id)
			seen[id] = true
		}
	}
	collect(yTrain)
	collect(yTest)
	assert.Len(t, seen, 20)

	// X rows travel with their y values
	for i := 0; i < yTest.Len(); i++ {
		assert.Equal(t, yTest.AtVec(i), XTest.At(i, 0))
	}
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	X, y := indexedData(20)

	_, _, _, yTest1, err := TrainTestSplit(X, y, 0.2, 42)
	require.NoError(t, err)
	_, _, _, yTest2, err := TrainTestSplit(X, y, 0.2, 42)
	require.NoError(t, err)

	for i := 0; i < yTest1.Len(); i++ {
		assert.Equal(t, yTest1.AtVec(i), yTest2.AtVec(i))
	}
}

func TestTrainTestSplitValidation(t *testing.T) {
	X, y := indexedData(10)

	_, _, _, _, err := TrainTestSplit(X, y, 0.0, 42)
	require.Error(t, err)

	_, _, _, _, err = TrainTestSplit(X, y, 1.0, 42)
	require.Error(t, err)

	_, _, _, _, err = TrainTestSplit(X, mat.NewVecDense(5, nil), 0.2, 42)
	require.Error(t, err)
}

func TestKFoldSplitSizes(t *testing.T) {
	kf := NewKFold(5, false, 0)
	folds := kf.Split(23)
	require.Len(t, folds, 5)

	// 23 = 5+5+5+4+4: the first 23 % 5 folds get the extra sample
	wantTest := []int{5, 5, 5, 4, 4}
	var all []int
	for i, fold := range folds {
		assert.Len(t, fold.TestIndices, wantTest[i], "fold %d", i)
		assert.Len(t, fold.TrainIndices, 23-wantTest[i], "fold %d", i)
		all = append(all, fold.TestIndices...)
	}

	// Every sample is tested exactly once
	sort.Ints(all)
	for i := 0; i < 23; i++ {
		assert.Equal(t, i, all[i])
	}
}

func TestKFoldShuffleDeterministic(t *testing.T) {
	a := NewKFold(4, true, 7).Split(16)
	b := NewKFold(4, true, 7).Split(16)

	for i := range a {
		assert.Equal(t, a[i].TestIndices, b[i].TestIndices, "fold %d", i)
		assert.Equal(t, a[i].TrainIndices, b[i].TrainIndices, "fold %d", i)
	}
}

func TestKFoldDefaultsToFiveSplits(t *testing.T) {
	kf := NewKFold(1, false, 0)
	assert.Equal(t, 5, kf.NSplits)
}
