package edm

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func buildSMapParams(t *testing.T, n, tp, knn int, theta float64) *Parameters {
	t.Helper()
	raw := RawParams{
		Method:   MethodSMap,
		Lib:      "1 " + strconv.Itoa(n),
		Pred:     "1 " + strconv.Itoa(n),
		E:        2,
		Tau:      1,
		Tp:       tp,
		Knn:      knn,
		Embedded: true,
	}
	p, err := raw.Validate(nil)
	require.NoError(t, err)
	return p
}

// S5 — SMap with theta=0, full-library knn (spec.md §8, §4.4 step 3 /
// §9 Open Question 1). Because the design matrix A is built from the
// CURRENT PREDICTION ROW's coordinates rather than each neighbor's
// (preserved deliberately, see SMap's doc comment), every A row for a
// given prediction is a scalar multiple of the same bias-extended
// coordinate vector: the weighted least-squares solve degenerates to
// a single scalar equation, and with uniform weights (theta=0) the
// prediction reduces exactly to the unweighted mean of the knn target
// values. This test pins that exact, analytically-derived behavior
// rather than asserting recovery of the generating AR coefficients,
// which this design cannot produce from a rank-1 system.
func TestSMap_S5_ThetaZeroReducesToNeighborMean(t *testing.T) {
	n := 20
	y := make([]float64, n)
	y[0], y[1] = 1, 1
	for tIdx := 2; tIdx < n; tIdx++ {
		y[tIdx] = 2*y[tIdx-1] - 0.5*y[tIdx-2] + 0.1
	}

	raw := NewFrameFromData(n, []string{"y"}, y)
	block, err := MakeBlock(raw, 2, 1, []string{"y"})
	require.NoError(t, err)

	nRows := block.NRows() // n - 1
	target := block.Column(0) // y(t-0) == y_t, aligned with block rows

	params := buildSMapParams(t, nRows, 0, nRows-1, 0)

	neighbors, err := FindNeighbors(block, params, nil, false)
	require.NoError(t, err)

	timeCol := make([]float64, nRows)
	for i := range timeCol {
		timeCol[i] = float64(i)
	}

	values, err := SMap(block, target, neighbors, params, target, timeCol, nil, false)
	require.NoError(t, err)

	sum := 0.0
	for _, v := range target {
		sum += v
	}

	for i := 0; i < values.Predictions.NRows(); i++ {
		expected := (sum - target[i]) / float64(nRows-1)
		got := values.Predictions.At(i, 2)
		assert.InDelta(t, expected, got, 1e-6)
	}
}

// S6 — SMap theta>0 localization on a nonlinear (logistic) map.
func TestSMap_S6_ThetaLocalizationCorrelation(t *testing.T) {
	n := 200
	y := make([]float64, n)
	y[0] = 0.4
	for i := 1; i < n; i++ {
		y[i] = 3.8 * y[i-1] * (1 - y[i-1])
	}

	raw := NewFrameFromData(n, []string{"y"}, y)
	block, err := MakeBlock(raw, 2, 1, []string{"y"})
	require.NoError(t, err)

	nRows := block.NRows()
	target := block.Column(0)

	params := buildSMapParams(t, nRows, 0, 20, 3.0)

	neighbors, err := FindNeighbors(block, params, nil, false)
	require.NoError(t, err)

	timeCol := make([]float64, nRows)
	for i := range timeCol {
		timeCol[i] = float64(i)
	}

	values, err := SMap(block, target, neighbors, params, target, timeCol, nil, false)
	require.NoError(t, err)

	observed := make([]float64, values.Predictions.NRows())
	predicted := make([]float64, values.Predictions.NRows())
	for i := 0; i < values.Predictions.NRows(); i++ {
		observed[i] = values.Predictions.At(i, 1)
		predicted[i] = values.Predictions.At(i, 2)
	}

	rho := stat.Correlation(observed, predicted, nil)
	assert.GreaterOrEqual(t, rho, 0.95)
}

func TestSMap_ThetaZeroDeterministic(t *testing.T) {
	n := 40
	y := make([]float64, n)
	y[0], y[1] = 1, 0.9
	for i := 2; i < n; i++ {
		y[i] = 0.6*y[i-1] + 0.3*y[i-2]
	}
	raw := NewFrameFromData(n, []string{"y"}, y)
	block, err := MakeBlock(raw, 2, 1, []string{"y"})
	require.NoError(t, err)
	nRows := block.NRows()
	target := block.Column(0)
	params := buildSMapParams(t, nRows, 0, nRows-1, 0)

	neighbors, err := FindNeighbors(block, params, nil, false)
	require.NoError(t, err)
	timeCol := make([]float64, nRows)

	v1, err := SMap(block, target, neighbors, params, target, timeCol, nil, false)
	require.NoError(t, err)
	v2, err := SMap(block, target, neighbors, params, target, timeCol, nil, false)
	require.NoError(t, err)

	for i := 0; i < v1.Predictions.NRows(); i++ {
		assert.Equal(t, v1.Predictions.At(i, 2), v2.Predictions.At(i, 2))
	}
}

func TestSMap_DimensionMismatch(t *testing.T) {
	n := 20
	y := make([]float64, n)
	for i := range y {
		y[i] = math.Sin(float64(i))
	}
	raw := NewFrameFromData(n, []string{"y"}, y)
	block, err := MakeBlock(raw, 2, 1, []string{"y"})
	require.NoError(t, err)
	nRows := block.NRows()
	target := block.Column(0)
	params := buildSMapParams(t, nRows, 0, nRows-1, 0)

	neighbors, err := FindNeighbors(block, params, nil, false)
	require.NoError(t, err)

	// Corrupt alignment: drop a prediction row's neighbor entry.
	neighbors.Indices = neighbors.Indices[:len(neighbors.Indices)-1]
	neighbors.Distances = neighbors.Distances[:len(neighbors.Distances)-1]

	timeCol := make([]float64, nRows)
	_, err = SMap(block, target, neighbors, params, target, timeCol, nil, false)
	require.Error(t, err)
	var coreErr *Error
	require.ErrorAs(t, err, &coreErr)
	assert.Equal(t, DimensionMismatch, coreErr.Kind)
}
