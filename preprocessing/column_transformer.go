package preprocessing

import (
	"fmt"

	"github.com/YuminosukeSato/concretego/core/model"
	"github.com/YuminosukeSato/concretego/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ColumnTransformer applies per-column transforms: standardization for one
// set of columns and a natural-log transform for another, disjoint set. The
// two sets together must cover every input column.
//
// The transformed output concatenates the standardized block followed by the
// log block, so the column order generally differs from the input order. Row
// count is preserved. InverseTransform reassembles columns into the original
// input order, making the composition invertible for positive-valued log
// columns.
type ColumnTransformer struct {
	model.BaseEstimator

	// StandardizeCols are input column indices routed to the StandardScaler.
	StandardizeCols []int

	// LogCols are input column indices routed to the LogTransformer.
	LogCols []int

	// NFeatures is the input column count recorded at fit time.
	NFeatures int

	scaler *StandardScaler
	logT   *LogTransformer

	featureNames []string
}

// NewColumnTransformer creates a transformer routing standardizeCols through
// a StandardScaler and logCols through a LogTransformer. The index lists must
// be disjoint; coverage of all input columns is validated at fit time when
// the input width is known.
func NewColumnTransformer(standardizeCols, logCols []int) (*ColumnTransformer, error) {
	seen := make(map[int]bool, len(standardizeCols)+len(logCols))
	for _, j := range standardizeCols {
		if j < 0 {
			return nil, errors.NewValidationError("standardizeCols", "column index must be non-negative", j)
		}
		if seen[j] {
			return nil, errors.NewValidationError("standardizeCols", "duplicate column index", j)
		}
		seen[j] = true
	}
	for _, j := range logCols {
		if j < 0 {
			return nil, errors.NewValidationError("logCols", "column index must be non-negative", j)
		}
		if seen[j] {
			return nil, errors.NewValidationError("logCols", "column index overlaps standardizeCols or repeats", j)
		}
		seen[j] = true
	}

	return &ColumnTransformer{
		StandardizeCols: append([]int(nil), standardizeCols...),
		LogCols:         append([]int(nil), logCols...),
		scaler:          NewStandardScalerDefault(),
		logT:            NewLogTransformer(),
	}, nil
}

// SetFeatureNames attaches input column names for FeatureNamesOut reporting.
func (ct *ColumnTransformer) SetFeatureNames(names []string) {
	ct.featureNames = append([]string(nil), names...)
}

// Fit computes the scaler statistics on the standardize block and fits the
// log adapter's bookkeeping state on the log block.
func (ct *ColumnTransformer) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("ColumnTransformer.Fit", "empty data", errors.ErrEmptyData)
	}

	if len(ct.StandardizeCols)+len(ct.LogCols) != c {
		return errors.NewDimensionError("ColumnTransformer.Fit",
			len(ct.StandardizeCols)+len(ct.LogCols), c, 1)
	}
	for _, j := range ct.StandardizeCols {
		if j >= c {
			return errors.NewValidationError("standardizeCols", "column index out of range", j)
		}
	}
	for _, j := range ct.LogCols {
		if j >= c {
			return errors.NewValidationError("logCols", "column index out of range", j)
		}
	}

	ct.NFeatures = c

	if len(ct.StandardizeCols) > 0 {
		if err := ct.scaler.Fit(extractColumns(X, ct.StandardizeCols)); err != nil {
			return errors.Wrap(err, "ColumnTransformer: fitting standardize block")
		}
	}
	if len(ct.LogCols) > 0 {
		if len(ct.featureNames) == c {
			names := make([]string, len(ct.LogCols))
			for i, j := range ct.LogCols {
				names[i] = ct.featureNames[j]
			}
			ct.logT.SetFeatureNames(names)
		}
		if err := ct.logT.Fit(extractColumns(X, ct.LogCols)); err != nil {
			return errors.Wrap(err, "ColumnTransformer: fitting log block")
		}
	}

	ct.SetFitted()
	return nil
}

// Transform produces the concatenation [standardized block | log block].
// The output has the same row count and the same total column count as the
// input, with columns reordered to standardize-then-log.
func (ct *ColumnTransformer) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !ct.IsFitted() {
		return nil, errors.NewNotFittedError("ColumnTransformer", "Transform")
	}

	r, c := X.Dims()
	if c != ct.NFeatures {
		return nil, errors.NewDimensionError("ColumnTransformer.Transform", ct.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)

	if len(ct.StandardizeCols) > 0 {
		scaled, err := ct.scaler.Transform(extractColumns(X, ct.StandardizeCols))
		if err != nil {
			return nil, errors.Wrap(err, "ColumnTransformer: transforming standardize block")
		}
		setColumns(result, 0, scaled)
	}
	if len(ct.LogCols) > 0 {
		logged, err := ct.logT.Transform(extractColumns(X, ct.LogCols))
		if err != nil {
			return nil, errors.Wrap(err, "ColumnTransformer: transforming log block")
		}
		setColumns(result, len(ct.StandardizeCols), logged)
	}

	return result, nil
}

// FitTransform fits on X and transforms the same data.
func (ct *ColumnTransformer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := ct.Fit(X); err != nil {
		return nil, err
	}
	return ct.Transform(X)
}

// InverseTransform maps a transformed matrix back to the original units and
// the original input column order.
func (ct *ColumnTransformer) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !ct.IsFitted() {
		return nil, errors.NewNotFittedError("ColumnTransformer", "InverseTransform")
	}

	r, c := X.Dims()
	if c != ct.NFeatures {
		return nil, errors.NewDimensionError("ColumnTransformer.InverseTransform", ct.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)

	if len(ct.StandardizeCols) > 0 {
		block := sliceColumns(X, 0, len(ct.StandardizeCols))
		orig, err := ct.scaler.InverseTransform(block)
		if err != nil {
			return nil, errors.Wrap(err, "ColumnTransformer: inverting standardize block")
		}
		scatterColumns(result, ct.StandardizeCols, orig)
	}
	if len(ct.LogCols) > 0 {
		block := sliceColumns(X, len(ct.StandardizeCols), len(ct.LogCols))
		orig, err := ct.logT.InverseTransform(block)
		if err != nil {
			return nil, errors.Wrap(err, "ColumnTransformer: inverting log block")
		}
		scatterColumns(result, ct.LogCols, orig)
	}

	return result, nil
}

// FeatureNamesOut returns the output column names in transformed order
// (standardize block first, then log block). Without recorded input names it
// falls back to positional "x<i>" names.
func (ct *ColumnTransformer) FeatureNamesOut(_ ...string) []string {
	name := func(j int) string {
		if len(ct.featureNames) == ct.NFeatures && ct.NFeatures > 0 {
			return ct.featureNames[j]
		}
		return fmt.Sprintf("x%d", j)
	}

	out := make([]string, 0, len(ct.StandardizeCols)+len(ct.LogCols))
	for _, j := range ct.StandardizeCols {
		out = append(out, name(j))
	}
	for _, j := range ct.LogCols {
		out = append(out, name(j))
	}
	return out
}

// GetParams returns the transformer's configuration.
func (ct *ColumnTransformer) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"standardize_cols": append([]int(nil), ct.StandardizeCols...),
		"log_cols":         append([]int(nil), ct.LogCols...),
	}
}

// Clone returns an unfitted copy with the same column routing.
func (ct *ColumnTransformer) Clone() interface{} {
	clone, err := NewColumnTransformer(ct.StandardizeCols, ct.LogCols)
	if err != nil {
		// Routing was validated at construction; cloning cannot fail.
		panic(err)
	}
	clone.featureNames = append([]string(nil), ct.featureNames...)
	return clone
}

// String returns a printable representation.
func (ct *ColumnTransformer) String() string {
	return fmt.Sprintf("ColumnTransformer(standardize=%d cols, log=%d cols)",
		len(ct.StandardizeCols), len(ct.LogCols))
}

// extractColumns copies the given columns of X, in order, into a new matrix.
func extractColumns(X mat.Matrix, cols []int) *mat.Dense {
	r, _ := X.Dims()
	out := mat.NewDense(r, len(cols), nil)
	for i := 0; i < r; i++ {
		for k, j := range cols {
			out.Set(i, k, X.At(i, j))
		}
	}
	return out
}

// sliceColumns copies width contiguous columns of X starting at offset.
func sliceColumns(X mat.Matrix, offset, width int) *mat.Dense {
	r, _ := X.Dims()
	out := mat.NewDense(r, width, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < width; j++ {
			out.Set(i, j, X.At(i, offset+j))
		}
	}
	return out
}

// setColumns writes src into dst starting at column offset.
func setColumns(dst *mat.Dense, offset int, src mat.Matrix) {
	r, c := src.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			dst.Set(i, offset+j, src.At(i, j))
		}
	}
}

// scatterColumns writes the k-th column of src into dst column cols[k].
func scatterColumns(dst *mat.Dense, cols []int, src mat.Matrix) {
	r, _ := src.Dims()
	for i := 0; i < r; i++ {
		for k, j := range cols {
			dst.Set(i, j, src.At(i, k))
		}
	}
}
