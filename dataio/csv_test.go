package dataio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edm/edm"
)

func writeTempCSV(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestReadCSV_ParsesHeaderAndRows(t *testing.T) {
	path := writeTempCSV(t, "x,y\n1,10\n2,20\n3,30\n")

	frame, err := ReadCSV(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y"}, frame.ColumnNames())
	assert.Equal(t, 3, frame.NRows())

	x, ok := frame.ColumnByName("x")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, x)
}

func TestReadCSV_RejectsRaggedRow(t *testing.T) {
	path := writeTempCSV(t, "x,y\n1,10\n2\n")
	_, err := ReadCSV(path)
	require.Error(t, err)
}

func TestReadCSV_RejectsNoDataRows(t *testing.T) {
	path := writeTempCSV(t, "x,y\n")
	_, err := ReadCSV(path)
	require.Error(t, err)
}

func TestLoadSeries_ImplicitTimeIndex(t *testing.T) {
	path := writeTempCSV(t, "x\n5\n6\n7\n")
	frame, timeCol, err := LoadSeries(path, "")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, timeCol)
	assert.Equal(t, 1, frame.NColumns())
}

func TestLoadSeries_NamedTimeColumnExtracted(t *testing.T) {
	path := writeTempCSV(t, "t,x,y\n100,1,10\n200,2,20\n")
	frame, timeCol, err := LoadSeries(path, "t")
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 200}, timeCol)
	assert.Equal(t, []string{"x", "y"}, frame.ColumnNames())
}

func TestWriteCSV_RoundTripsThroughReadCSV(t *testing.T) {
	frame := edm.NewFrameFromData(2, []string{"a", "b"}, []float64{1, 2, 3, 4})

	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, WriteCSV(path, frame))

	back, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, frame.ColumnNames(), back.ColumnNames())
	for r := 0; r < frame.NRows(); r++ {
		assert.Equal(t, frame.Row(r), back.Row(r))
	}
}
