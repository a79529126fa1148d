// Package intsurv provides shared infrastructure for survival regression
// models fit to imperfectly linked data: a column-major numeric dataset,
// a results value holding parameter estimates with their sampling
// uncertainty, and a plain-text summary table.
package intsurv

import (
	"fmt"
)

// Dtype is the numeric type of the data columns.
type Dtype = float64

// Dataset holds numeric data columns and their names.  The columns are
// shared, not copied; callers must not modify them after construction.
type Dataset struct {
	data  [][]Dtype
	names []string
}

// NewDataset returns a Dataset for the given columns.  Every column must
// have the same length and the names must be distinct.
func NewDataset(data [][]Dtype, names []string) (Dataset, error) {

	if len(data) != len(names) {
		return Dataset{}, fmt.Errorf("intsurv: %d data columns but %d names", len(data), len(names))
	}
	if len(data) == 0 {
		return Dataset{}, fmt.Errorf("intsurv: dataset has no columns")
	}

	n := len(data[0])
	seen := make(map[string]bool)
	for j, col := range data {
		if len(col) != n {
			return Dataset{}, fmt.Errorf("intsurv: column '%s' has length %d, expected %d",
				names[j], len(col), n)
		}
		if seen[names[j]] {
			return Dataset{}, fmt.Errorf("intsurv: duplicate column name '%s'", names[j])
		}
		seen[names[j]] = true
	}

	return Dataset{data: data, names: names}, nil
}

// NumObs returns the number of rows in the dataset.
func (ds Dataset) NumObs() int {
	return len(ds.data[0])
}

// Names returns the column names.
func (ds Dataset) Names() []string {
	return ds.names
}

// Data returns the data columns, in the same order as Names.
func (ds Dataset) Data() [][]Dtype {
	return ds.data
}

// Pos returns the position of the named column, or an error if the
// column is not present.
func (ds Dataset) Pos(name string) (int, error) {
	for j, na := range ds.names {
		if na == name {
			return j, nil
		}
	}
	return -1, fmt.Errorf("intsurv: variable '%s' not found in dataset", name)
}

// Column returns the named data column.
func (ds Dataset) Column(name string) ([]Dtype, error) {
	j, err := ds.Pos(name)
	if err != nil {
		return nil, err
	}
	return ds.data[j], nil
}
