// Package dataio reads and writes edm.Frame values as CSV.
package dataio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"edm/edm"
)

// ReadCSV reads path as a header row of column names followed by rows
// of numeric values, and wraps the result in an edm.Frame. There is no
// explicit time column on the way in; callers that need one should use
// LoadSeries with its timeColumn argument instead.
func ReadCSV(path string) (*edm.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataio: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("dataio: read header: %w", err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("dataio: empty header in %s", path)
	}
	nCols := len(header)

	var data []float64
	nRows := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataio: read row %d: %w", nRows+2, err)
		}
		if len(record) == 1 && record[0] == "" {
			continue
		}
		if len(record) != nCols {
			return nil, fmt.Errorf("dataio: row %d: expected %d columns, got %d", nRows+2, nCols, len(record))
		}
		for j, s := range record {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("dataio: parse float at row %d col %d (%q): %w", nRows+2, j+1, s, err)
			}
			data = append(data, v)
		}
		nRows++
	}
	if nRows == 0 {
		return nil, fmt.Errorf("dataio: no data rows in %s", path)
	}

	return edm.NewFrameFromData(nRows, header, data), nil
}

// LoadSeries reads path like ReadCSV, and additionally returns a time
// vector: either the named timeColumn (removed from the returned
// Frame) or, if timeColumn is "", the implicit 0,1,2,... index used by
// the teacher's LoadCSVToTimeSeries.
func LoadSeries(path, timeColumn string) (frame *edm.Frame, timeCol []float64, err error) {
	raw, err := ReadCSV(path)
	if err != nil {
		return nil, nil, err
	}
	if timeColumn == "" {
		timeCol = make([]float64, raw.NRows())
		for i := range timeCol {
			timeCol[i] = float64(i)
		}
		return raw, timeCol, nil
	}

	idx, ok := raw.ColumnNameToIndex()[timeColumn]
	if !ok {
		return nil, nil, fmt.Errorf("dataio: unknown time column %q", timeColumn)
	}
	timeCol = raw.Column(idx)

	keep := make([]int, 0, raw.NColumns()-1)
	for i, n := range raw.ColumnNames() {
		if n != timeColumn {
			keep = append(keep, i)
		}
	}
	frame, err = raw.DataFrameFromColumnIndex(keep)
	if err != nil {
		return nil, nil, err
	}
	return frame, timeCol, nil
}

// WriteCSV writes frame to path as a header row of column names
// followed by its numeric rows, mirroring the teacher's CSV output
// helpers (OutputForecastsToCSV, OutputGrangerMatrixToCSV).
func WriteCSV(path string, frame *edm.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataio: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(frame.ColumnNames()); err != nil {
		return fmt.Errorf("dataio: write header: %w", err)
	}

	nCols := frame.NColumns()
	record := make([]string, nCols)
	for r := 0; r < frame.NRows(); r++ {
		for c := 0; c < nCols; c++ {
			record[c] = strconv.FormatFloat(frame.At(r, c), 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("dataio: write row %d: %w", r, err)
		}
	}
	return nil
}
