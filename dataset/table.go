// Package dataset loads delimited numeric tables and projects them into the
// matrix and vector types the estimators consume.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/concretego/pkg/errors"
)

// Table is an in-memory numeric table: a header row of column names and a
// dense float64 matrix where each row is one sample.
type Table struct {
	// Columns holds the header names in file order.
	Columns []string

	// Data holds the cell values, one table row per matrix row.
	Data *mat.Dense
}

// Load reads a comma-delimited table with a header row from path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: opening %s", path)
	}
	defer f.Close()

	t, err := LoadReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: loading %s", path)
	}
	return t, nil
}

// LoadReader reads a comma-delimited table with a header row. Every data cell
// must parse as a float64; a row with the wrong column count or a non-numeric
// cell aborts the load with an error rather than being skipped.
func LoadReader(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewModelError("dataset.LoadReader", "empty input", errors.ErrEmptyData)
	}
	if err != nil {
		return nil, errors.Wrap(err, "dataset: reading header")
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	var values []float64
	rows := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// csv.Reader reports rows whose field count differs from the
			// header as ErrFieldCount; both that and framing errors are fatal.
			return nil, errors.NewValidationError("row", "malformed record", err.Error())
		}

		for j, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errors.NewValueError("dataset.LoadReader",
					fmt.Sprintf("row %d column %q: cannot parse %q as float64", rows+1, columns[j], cell))
			}
			values = append(values, v)
		}
		rows++
	}

	if rows == 0 {
		return nil, errors.NewModelError("dataset.LoadReader", "no data rows", errors.ErrEmptyData)
	}

	return &Table{
		Columns: columns,
		Data:    mat.NewDense(rows, len(columns), values),
	}, nil
}

// NRows returns the number of samples.
func (t *Table) NRows() int {
	r, _ := t.Data.Dims()
	return r
}

// NCols returns the number of columns, target included.
func (t *Table) NCols() int {
	_, c := t.Data.Dims()
	return c
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// FeaturesTarget splits the table into a feature matrix and a target vector.
// Every column except target becomes a feature, in table order; the returned
// names describe the feature columns. The data is copied, so mutating the
// results leaves the table untouched.
func (t *Table) FeaturesTarget(target string) (X *mat.Dense, y *mat.VecDense, names []string, err error) {
	ti := t.ColumnIndex(target)
	if ti < 0 {
		return nil, nil, nil, errors.NewValueError("Table.FeaturesTarget",
			fmt.Sprintf("target column %q not found", target))
	}

	r, c := t.Data.Dims()
	if c < 2 {
		return nil, nil, nil, errors.NewValueError("Table.FeaturesTarget",
			"table needs at least one feature column besides the target")
	}

	X = mat.NewDense(r, c-1, nil)
	y = mat.NewVecDense(r, nil)
	names = make([]string, 0, c-1)

	for j, name := range t.Columns {
		if j != ti {
			names = append(names, name)
		}
	}
	for i := 0; i < r; i++ {
		k := 0
		for j := 0; j < c; j++ {
			if j == ti {
				y.SetVec(i, t.Data.At(i, j))
				continue
			}
			X.Set(i, k, t.Data.At(i, j))
			k++
		}
	}
	return X, y, names, nil
}

// ColumnSummary holds per-column descriptive statistics.
type ColumnSummary struct {
	Name  string
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Max   float64
}

// Describe computes count, mean, population standard deviation, min and max
// for every column. Useful for logging the shape of a freshly loaded table.
func (t *Table) Describe() []ColumnSummary {
	r, c := t.Data.Dims()
	out := make([]ColumnSummary, c)

	for j := 0; j < c; j++ {
		s := ColumnSummary{
			Name:  t.Columns[j],
			Count: r,
			Min:   math.Inf(1),
			Max:   math.Inf(-1),
		}
		for i := 0; i < r; i++ {
			v := t.Data.At(i, j)
			s.Mean += v
			if v < s.Min {
				s.Min = v
			}
			if v > s.Max {
				s.Max = v
			}
		}
		s.Mean /= float64(r)
		for i := 0; i < r; i++ {
			d := t.Data.At(i, j) - s.Mean
			s.Std += d * d
		}
		s.Std = math.Sqrt(s.Std / float64(r))
		out[j] = s
	}
	return out
}
