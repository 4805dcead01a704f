package edm

import "fmt"

// MakeBlock builds the delayed-coordinate embedding of dataFrame
// (spec.md §4.2). For output row j and input column c:
//
//	out[j, c*E+e] = in[j + tau*(E-1) - e*tau, c]   for e = 0..E-1
//
// Rows whose source index would be negative are trimmed: the output
// has NRows - tau*(E-1) rows. Column c*E+e is named
// "{columnNames[c]}(t-{e})"; lags are grouped per input column in
// input order.
//
// MakeBlock has no side effect on dataFrame.
func MakeBlock(dataFrame *Frame, E, tau int, columnNames []string) (*Frame, error) {
	if len(columnNames) != dataFrame.NColumns() {
		return nil, wrapError(DimensionMismatch, nil,
			"MakeBlock: number of dataFrame columns (%d) does not match number of names given (%d)",
			dataFrame.NColumns(), len(columnNames))
	}
	if E < 1 {
		return nil, newError(ConfigInvalid, "MakeBlock: E must be >= 1, got %d", E)
	}
	if tau < 1 {
		return nil, newError(ConfigInvalid, "MakeBlock: tau must be >= 1, got %d", tau)
	}

	nRows := dataFrame.NRows()
	nColOut := dataFrame.NColumns() * E
	nPartial := tau * (E - 1)

	if nRows-nPartial <= 0 {
		return nil, newError(ConfigInvalid,
			"MakeBlock: tau*(E-1) = %d leaves no rows out of %d", nPartial, nRows)
	}

	newNames := make([]string, nColOut)
	newCol := 0
	for col := 0; col < len(columnNames); col++ {
		for e := 0; e < E; e++ {
			newNames[newCol] = fmt.Sprintf("%s(t-%d)", columnNames[col], e)
			newCol++
		}
	}

	embedding := NewFrameWithNames(nRows-nPartial, newNames)

	for col := 0; col < dataFrame.NColumns(); col++ {
		srcCol := dataFrame.Column(col)
		for e := 0; e < E; e++ {
			outCol := col*E + e
			shift := e * tau
			for j := 0; j < embedding.NRows(); j++ {
				srcRow := j + nPartial - shift
				embedding.Set(j, outCol, srcCol[srcRow])
			}
		}
	}

	return embedding, nil
}

// Embed selects columnNames (or, when columnIndex is given, the
// columns at those indices) from dataFrameIn and embeds them with
// MakeBlock. This is the DataFrame-in-memory entry point of spec.md
// §4.2; reading a CSV file into a Frame is left to the dataio package.
func Embed(dataFrameIn *Frame, E, tau int, columnNames []string, columnIndex []int) (*Frame, error) {
	var dataFrame *Frame
	var names []string
	var err error

	switch {
	case len(columnNames) > 0:
		names = columnNames
		dataFrame, err = dataFrameIn.DataFrameFromColumnNames(columnNames)
	case len(columnIndex) > 0:
		names = make([]string, len(columnIndex))
		for i, ci := range columnIndex {
			names[i] = fmt.Sprintf("V%d", ci)
		}
		dataFrame, err = dataFrameIn.DataFrameFromColumnIndex(columnIndex)
	default:
		return nil, newError(EmptySelector, "Embed: columnNames and columnIndex are both empty")
	}
	if err != nil {
		return nil, err
	}

	return MakeBlock(dataFrame, E, tau, names)
}
