package dataset

import (
	"fmt"

	"github.com/YuminosukeSato/concretego/pkg/errors"
)

// Column names of the UCI concrete compressive-strength table, in file order.
// The last column is the regression target; "age" is measured in days and is
// strictly positive, which makes it safe for a log transform.
var ConcreteColumns = []string{
	"cement",
	"slag",
	"flyash",
	"water",
	"superplasticizer",
	"coarseaggregate",
	"fineaggregate",
	"age",
	"csMPa",
}

const (
	// ConcreteTarget is the compressive strength column, in MPa.
	ConcreteTarget = "csMPa"

	// ConcreteLogColumn is the feature transformed to log scale.
	ConcreteLogColumn = "age"
)

// LoadConcrete loads the concrete table from path and checks that its header
// matches the expected columns.
func LoadConcrete(path string) (*Table, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := t.validateConcreteHeader(); err != nil {
		return nil, err
	}
	return t, nil
}

func newHeaderError(got []string) error {
	return errors.NewValueError("dataset.LoadConcrete",
		fmt.Sprintf("unexpected header %v, want %v", got, ConcreteColumns))
}

func (t *Table) validateConcreteHeader() error {
	if len(t.Columns) != len(ConcreteColumns) {
		return newHeaderError(t.Columns)
	}
	for i, name := range ConcreteColumns {
		if t.Columns[i] != name {
			return newHeaderError(t.Columns)
		}
	}
	return nil
}
