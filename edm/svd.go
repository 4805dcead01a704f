package edm

import "gonum.org/v1/gonum/mat"

// SolveSVD returns C minimizing ||A*C - b||_2 via thin-SVD
// least-squares (spec.md §4.5). A is m x n, b has length m, and the
// result has length n.
//
// This is the same gonum.org/v1/gonum/mat.SVD entry point the teacher
// reaches for as its pseudoinverse fallback in OLSEstimator.Estimate
// (functions.go); here it is the primary solve path SMap always uses,
// mirroring the cppEDM reference's Eigen::jacobiSvd(...).solve(B).
func SolveSVD(A *mat.Dense, b []float64) ([]float64, error) {
	var svd mat.SVD
	ok := svd.Factorize(A, mat.SVDThin)
	if !ok {
		return nil, newError(DimensionMismatch, "SolveSVD: SVD factorization failed")
	}

	_, n := A.Dims()
	bVec := mat.NewVecDense(len(b), b)

	var c mat.Dense
	if err := svd.SolveTo(&c, bVec, minInt(A.RawMatrix().Rows, n)); err != nil {
		return nil, wrapError(DimensionMismatch, err, "SolveSVD: solve failed")
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = c.At(i, 0)
	}
	return out, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
