package edm

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// SMapValues is the result of a locally-weighted linear projection
// (spec.md §3): a predictions Frame (Time, Observed, Predicted) and a
// coefficients Frame (Time, C0..CE), returned by value.
type SMapValues struct {
	Predictions  *Frame
	Coefficients *Frame
}

// SMap performs the locally-weighted linear projection of spec.md
// §4.4. block is the embedded data block (rows x E, no leading time
// column — the same time-less MakeBlock output FindNeighbors consumes,
// spec.md §4.3's "matrix M"); target is the target vector aligned with
// block's rows; neighbors is the result of FindNeighbors over the same
// row indexing; observed/timeCol are the pre-embedding Observed and
// Time columns sliced by params.Prediction for output assembly.
//
// The design matrix A has E+1 columns: a bias column plus one column
// per embedding coordinate, A[k,j] = w[k]*B[i,j-1] for j = 1..E against
// block column j-1. Per spec.md §4.4 step 3 / §9 Open Question 1, the
// design matrix A uses the CURRENT PREDICTION ROW's embedded
// coordinates (not the neighbor's) as the predictor row — this is
// deliberately preserved.
func SMap(block *Frame, target []float64, neighbors *Neighbors, params *Parameters, observed, timeCol []float64, log *Logger, parallel bool) (*SMapValues, error) {
	nPred := len(params.Prediction)
	nRow := len(neighbors.Indices)

	if nPred != nRow {
		return nil, wrapError(DimensionMismatch, nil,
			"SMap: number of prediction rows (%d) does not match number of neighbor rows (%d)", nPred, nRow)
	}
	if len(neighbors.Distances) == 0 || len(neighbors.Distances[0]) != params.Knn {
		return nil, newError(DimensionMismatch, "SMap: neighbor distances columns does not match knn (%d)", params.Knn)
	}

	libStart := 0
	if len(params.Library) > 0 {
		libStart = params.Library[0]
	}
	nLib := len(params.Library)

	// targetLib is the target vector restricted to the library range,
	// matching the reference implementation's targetLibVector slice
	// (original_source/src/SMap.cc): neighbor indices are looked up
	// directly against this library-relative slice.
	targetLib := make([]float64, nLib)
	copy(targetLib, target[libStart:libStart+nLib])

	predictions := make([]float64, nRow)
	coefCols := params.E + 1
	coefficients := make([][]float64, nRow)

	rowFn := func(row int) error {
		distRow := neighbors.Distances[row]
		idxRow := neighbors.Indices[row]

		dAvg := 0.0
		for _, d := range distRow {
			dAvg += d
		}
		dAvg /= float64(params.Knn)

		w := make([]float64, params.Knn)
		if params.Theta > 0 {
			for k, d := range distRow {
				w[k] = math.Exp(-params.Theta / dAvg * d)
			}
		} else {
			for k := range w {
				w[k] = 1
			}
		}

		predRow := params.Prediction[row]
		predCoords := block.Row(predRow)

		aData := make([]float64, params.Knn*coefCols)
		b := make([]float64, params.Knn)

		for k := 0; k < params.Knn; k++ {
			libRow := idxRow[k] + params.Tp

			var targetK float64
			if libRow > nLib {
				log.debugf("SMap: row %d libRow %d exceeds library domain", row, libRow)
				targetK = targetLib[clampIndex(idxRow[k], nLib)]
			} else {
				targetK = targetLib[clampIndex(libRow, nLib)]
			}
			b[k] = w[k] * targetK

			aData[k*coefCols+0] = w[k]
			for j := 1; j < coefCols; j++ {
				aData[k*coefCols+j] = w[k] * predCoords[j-1]
			}
		}

		A := mat.NewDense(params.Knn, coefCols, aData)
		c, err := SolveSVD(A, b)
		if err != nil {
			return err
		}

		prediction := c[0]
		for e := 1; e < coefCols; e++ {
			prediction += c[e] * predCoords[e-1]
		}

		predictions[row] = prediction
		coefficients[row] = c
		return nil
	}

	var err error
	if parallel {
		err = parallelRows(nRow, rowFn)
	} else {
		for i := 0; i < nRow; i++ {
			if e := rowFn(i); e != nil {
				err = e
				break
			}
		}
	}
	if err != nil {
		return nil, err
	}

	predFrame := NewFrameWithNames(nRow, []string{"Time", "Observed", "Predicted"})
	for i := 0; i < nRow; i++ {
		predFrame.Set(i, 0, timeCol[i])
		predFrame.Set(i, 1, observed[i])
		predFrame.Set(i, 2, predictions[i])
	}

	coefNames := make([]string, coefCols+1)
	coefNames[0] = "Time"
	for c := 0; c < coefCols; c++ {
		coefNames[c+1] = "C" + strconv.Itoa(c)
	}
	coefFrame := NewFrameWithNames(nRow, coefNames)
	for i := 0; i < nRow; i++ {
		coefFrame.Set(i, 0, timeCol[i])
		for c := 0; c < coefCols; c++ {
			coefFrame.Set(i, c+1, coefficients[i][c])
		}
	}

	return &SMapValues{Predictions: predFrame, Coefficients: coefFrame}, nil
}

// clampIndex guards the reference implementation's library-relative
// indexing (which assumes the library range starts at row 0) against
// out-of-bounds access when a caller's library starts elsewhere.
func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
