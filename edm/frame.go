package edm

import (
	"gonum.org/v1/gonum/mat"
)

// Frame is the tabular container consumed and produced by the core: an
// ordered sequence of named numeric columns of equal length. Row 0 is
// conventionally a time column in I/O contexts, but the numeric core
// (Embedding, NeighborSearch, SMap) treats all selected columns
// uniformly (spec.md §3).
//
// The numeric payload is backed by a gonum mat.Dense, the same library
// the teacher uses for its TimeSeries.Y matrix.
type Frame struct {
	data    *mat.Dense
	names   []string
	nameIdx map[string]int
}

// NewFrame constructs a zero-valued Frame of shape nRows x nCols.
func NewFrame(nRows, nCols int) *Frame {
	return &Frame{
		data:  mat.NewDense(nRows, nCols, nil),
		names: make([]string, nCols),
	}
}

// NewFrameWithNames constructs a Frame of shape nRows x len(names).
func NewFrameWithNames(nRows int, names []string) *Frame {
	f := &Frame{
		data:  mat.NewDense(nRows, len(names), nil),
		names: append([]string(nil), names...),
	}
	f.reindex()
	return f
}

// NewFrameFromData wraps flat row-major data of length nRows*len(names)
// into a Frame, matching gonum's mat.NewDense convention.
func NewFrameFromData(nRows int, names []string, data []float64) *Frame {
	f := &Frame{
		data:  mat.NewDense(nRows, len(names), data),
		names: append([]string(nil), names...),
	}
	f.reindex()
	return f
}

func (f *Frame) reindex() {
	f.nameIdx = make(map[string]int, len(f.names))
	for i, n := range f.names {
		f.nameIdx[n] = i
	}
}

// NRows returns the number of rows.
func (f *Frame) NRows() int { r, _ := f.data.Dims(); return r }

// NColumns returns the number of columns.
func (f *Frame) NColumns() int { _, c := f.data.Dims(); return c }

// ColumnNames returns the column-name slice. The returned slice must
// not be mutated element-wise except through SetColumnNames.
func (f *Frame) ColumnNames() []string { return f.names }

// SetColumnNames replaces the column names and rebuilds the
// name-to-index map. len(names) must equal NColumns().
func (f *Frame) SetColumnNames(names []string) {
	f.names = append([]string(nil), names...)
	f.reindex()
}

// ColumnNameToIndex returns the name -> column-index mapping.
func (f *Frame) ColumnNameToIndex() map[string]int { return f.nameIdx }

// At returns the value at (row, col).
func (f *Frame) At(row, col int) float64 { return f.data.At(row, col) }

// Set writes the value at (row, col).
func (f *Frame) Set(row, col int, v float64) { f.data.Set(row, col, v) }

// Row returns a copy of row i as a vector of length NColumns().
func (f *Frame) Row(i int) []float64 {
	nc := f.NColumns()
	out := make([]float64, nc)
	for c := 0; c < nc; c++ {
		out[c] = f.data.At(i, c)
	}
	return out
}

// Column returns a copy of column j as a vector of length NRows().
func (f *Frame) Column(j int) []float64 {
	nr := f.NRows()
	out := make([]float64, nr)
	for r := 0; r < nr; r++ {
		out[r] = f.data.At(r, j)
	}
	return out
}

// ColumnByName returns a copy of the named column.
func (f *Frame) ColumnByName(name string) ([]float64, bool) {
	idx, ok := f.nameIdx[name]
	if !ok {
		return nil, false
	}
	return f.Column(idx), true
}

// WriteColumn overwrites column j with v. len(v) must equal NRows().
func (f *Frame) WriteColumn(j int, v []float64) {
	for r, val := range v {
		f.data.Set(r, j, val)
	}
}

// WriteRow overwrites row i with v. len(v) must equal NColumns().
func (f *Frame) WriteRow(i int, v []float64) {
	for c, val := range v {
		f.data.Set(i, c, val)
	}
}

// Matrix exposes the underlying mat.Dense for callers (e.g. benchmark)
// that want direct gonum linear-algebra access. The returned matrix
// aliases the Frame's storage.
func (f *Frame) Matrix() *mat.Dense { return f.data }

// DataFrameFromColumnNames returns a sub-frame preserving column order,
// selecting columns by name.
func (f *Frame) DataFrameFromColumnNames(names []string) (*Frame, error) {
	if len(names) == 0 {
		return nil, newError(EmptySelector, "DataFrameFromColumnNames: no names given")
	}
	idx := make([]int, len(names))
	for i, n := range names {
		ci, ok := f.nameIdx[n]
		if !ok {
			return nil, newError(ConfigInvalid, "DataFrameFromColumnNames: unknown column %q", n)
		}
		idx[i] = ci
	}
	return f.DataFrameFromColumnIndex(idx)
}

// DataFrameFromColumnIndex returns a sub-frame preserving column order,
// selecting columns by index.
func (f *Frame) DataFrameFromColumnIndex(idx []int) (*Frame, error) {
	if len(idx) == 0 {
		return nil, newError(EmptySelector, "DataFrameFromColumnIndex: no indices given")
	}
	nr := f.NRows()
	names := make([]string, len(idx))
	out := NewFrame(nr, len(idx))
	for newC, oldC := range idx {
		if oldC < 0 || oldC >= f.NColumns() {
			return nil, newError(ConfigInvalid, "DataFrameFromColumnIndex: column %d out of bounds", oldC)
		}
		names[newC] = f.names[oldC]
		out.WriteColumn(newC, f.Column(oldC))
	}
	out.SetColumnNames(names)
	return out, nil
}

// SubRows returns a sub-frame containing only rows in idx, preserving
// column names and order.
func (f *Frame) SubRows(idx []int) *Frame {
	out := NewFrameWithNames(len(idx), f.names)
	for newR, oldR := range idx {
		out.WriteRow(newR, f.Row(oldR))
	}
	return out
}
