// Package benchmark is the linear-VAR / Granger-causality companion to
// package edm's nonlinear S-Map core, adapted from the teacher's
// ReducedFormVAR/OLSEstimator (legacy/datatypes.go, legacy/functions.go)
// to operate on edm.Frame and to score itself against edm.SMap output
// instead of deleted.
package benchmark

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"edm/edm"
)

// Deterministic selects the deterministic-term structure of a VAR.
type Deterministic int

const (
	DetNone Deterministic = iota
	DetConst
	DetTrend
	DetConstTrend
)

// ModelSpec is the VAR specification: lag order and deterministic
// structure. HasExogenous is carried from the teacher but unsupported,
// matching the teacher's own "not supported yet" behavior.
type ModelSpec struct {
	Lags          int
	Deterministic Deterministic
	HasExogenous  bool
}

// ReducedFormVAR is a fitted VAR(p): per-lag coefficient matrices A,
// deterministic coefficients C, and residual covariance SigmaU.
type ReducedFormVAR struct {
	Model ModelSpec

	A      []*mat.Dense
	C      *mat.Dense
	SigmaU *mat.SymDense
}

func (rf *ReducedFormVAR) Spec() ModelSpec     { return rf.Model }
func (rf *ReducedFormVAR) Phi() []*mat.Dense   { return rf.A }
func (rf *ReducedFormVAR) CovU() *mat.SymDense { return rf.SigmaU }

// OLSEstimator fits a VAR by ordinary least squares, falling back to an
// SVD pseudoinverse when X'X is singular, exactly as the teacher's
// OLSEstimator.Estimate does.
type OLSEstimator struct{}

// EstimationOptions mirrors the teacher's options struct; only the
// zero value (plain OLS) is currently exercised.
type EstimationOptions struct {
	UseGeneralizedLeastSquares bool
}

// Estimate fits spec against frame's numeric columns (one variable per
// column, one observation per row), the same shape the teacher's
// TimeSeries.Y carried.
func (e *OLSEstimator) Estimate(frame *edm.Frame, spec ModelSpec, opts EstimationOptions) (*ReducedFormVAR, error) {
	if frame == nil {
		return nil, fmt.Errorf("benchmark: frame not provided")
	}
	Y := frame.Matrix()

	T, K := Y.Dims()
	p := spec.Lags
	if p <= 0 {
		return nil, fmt.Errorf("benchmark: lags must be > 0")
	}
	if T <= p {
		return nil, fmt.Errorf("benchmark: need at least p+1 observations: p = %d, T = %d", p, T)
	}
	if spec.HasExogenous {
		return nil, fmt.Errorf("benchmark: exogenous variables not supported")
	}

	Treg := T - p

	Yreg := mat.NewDense(Treg, K, nil)
	for t := 0; t < Treg; t++ {
		for k := 0; k < K; k++ {
			Yreg.Set(t, k, Y.At(t+p, k))
		}
	}

	hasConst := spec.Deterministic == DetConst || spec.Deterministic == DetConstTrend
	hasTrend := spec.Deterministic == DetTrend || spec.Deterministic == DetConstTrend

	detCols := 0
	if hasConst {
		detCols++
	}
	if hasTrend {
		detCols++
	}

	lagCols := p * K
	m := detCols + lagCols

	X := mat.NewDense(Treg, m, nil)
	for t := 0; t < Treg; t++ {
		col := 0
		timeIndex := float64(t + p + 1)

		if hasConst {
			X.Set(t, col, 1.0)
			col++
		}
		if hasTrend {
			X.Set(t, col, timeIndex)
			col++
		}
		for j := 1; j <= p; j++ {
			srcRow := t + p - j
			for k := 0; k < K; k++ {
				X.Set(t, col, Y.At(srcRow, k))
				col++
			}
		}
	}

	var B mat.Dense
	var xtx mat.Dense
	xtx.Mul(X.T(), X)

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err == nil {
		var xty mat.Dense
		xty.Mul(X.T(), Yreg)
		B.Mul(&xtxInv, &xty)
	} else {
		var svd mat.SVD
		if !svd.Factorize(X, mat.SVDFullU|mat.SVDFullV) {
			return nil, fmt.Errorf("benchmark: X'X singular and SVD factorization failed: %w", err)
		}
		rank := svd.Rank(1e-12)
		if rank == 0 {
			B = *mat.NewDense(m, K, nil)
		} else {
			if err := svd.SolveTo(&B, Yreg, rank); err != nil {
				return nil, fmt.Errorf("benchmark: SVD solve failed: %w", err)
			}
		}
	}

	var C *mat.Dense
	if detCols > 0 {
		C = mat.NewDense(K, detCols, nil)
		for k := 0; k < K; k++ {
			for d := 0; d < detCols; d++ {
				C.Set(k, d, B.At(d, k))
			}
		}
	}

	A := make([]*mat.Dense, p)
	for j := 0; j < p; j++ {
		Aj := mat.NewDense(K, K, nil)
		rowOffset := detCols + j*K
		for eq := 0; eq < K; eq++ {
			for colVar := 0; colVar < K; colVar++ {
				Aj.Set(eq, colVar, B.At(rowOffset+colVar, eq))
			}
		}
		A[j] = Aj
	}

	var Yhat mat.Dense
	Yhat.Mul(X, &B)
	var U mat.Dense
	U.Sub(Yreg, &Yhat)
	var utu mat.Dense
	utu.Mul(U.T(), &U)

	df := float64(Treg - m)
	if df <= 0 {
		df = float64(Treg)
	}
	sigmaData := make([]float64, K*K)
	for i := 0; i < K; i++ {
		for j := 0; j < K; j++ {
			sigmaData[i*K+j] = utu.At(i, j) / df
		}
	}

	return &ReducedFormVAR{
		Model:  spec,
		A:      A,
		C:      C,
		SigmaU: mat.NewSymDense(K, sigmaData),
	}, nil
}

// Forecast produces a steps x K matrix of multi-step-ahead forecasts
// from yHist (T x K, only the last Lags rows are used).
func (rf *ReducedFormVAR) Forecast(yHist *mat.Dense, steps int) (*mat.Dense, error) {
	if rf == nil || len(rf.A) == 0 {
		return nil, fmt.Errorf("benchmark: VAR model not estimated")
	}
	if steps <= 0 {
		return nil, fmt.Errorf("benchmark: steps must be > 0")
	}

	p := rf.Model.Lags
	if p <= 0 {
		return nil, fmt.Errorf("benchmark: lags must be > 0 to forecast")
	}

	T, K := yHist.Dims()
	if T < p {
		return nil, fmt.Errorf("benchmark: need at least %d rows in yHist, got %d", p, T)
	}

	totalRows := p + steps
	data := make([]float64, totalRows*K)
	for i := 0; i < p; i++ {
		for k := 0; k < K; k++ {
			data[i*K+k] = yHist.At(T-p+i, k)
		}
	}
	out := mat.NewDense(totalRows, K, data)

	hasConst := rf.Model.Deterministic == DetConst || rf.Model.Deterministic == DetConstTrend
	hasTrend := rf.Model.Deterministic == DetTrend || rf.Model.Deterministic == DetConstTrend

	detConstIdx := 0
	detTrendIdx := 0
	detCols := 0
	if hasConst {
		detCols++
	}
	if hasTrend {
		detTrendIdx = detCols
		detCols++
	}

	for step := 0; step < steps; step++ {
		row := p + step
		tIdx := float64(T + step + 1)

		for eq := 0; eq < K; eq++ {
			val := 0.0
			if rf.C != nil && detCols > 0 {
				if hasConst {
					val += rf.C.At(eq, detConstIdx)
				}
				if hasTrend {
					val += rf.C.At(eq, detTrendIdx) * tIdx
				}
			}
			for lag := 1; lag <= p; lag++ {
				A := rf.A[lag-1]
				prevRow := row - lag
				for j := 0; j < K; j++ {
					val += A.At(eq, j) * out.At(prevRow, j)
				}
			}
			out.Set(row, eq, val)
		}
	}

	return mat.DenseCopyOf(out.Slice(p, totalRows, 0, K)), nil
}

// IRF computes the response of all variables to a one-time structural
// shock in shockIndex, over horizon periods.
func (rf *ReducedFormVAR) IRF(horizon int, shockIndex int) (*mat.Dense, error) {
	if rf == nil || len(rf.A) == 0 {
		return nil, fmt.Errorf("benchmark: VAR model not estimated")
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("benchmark: horizon must be > 0")
	}

	p := rf.Model.Lags
	if p <= 0 {
		return nil, fmt.Errorf("benchmark: lags must be > 0 to IRF")
	}

	K, _ := rf.A[0].Dims()
	if shockIndex < 0 || shockIndex >= K {
		return nil, fmt.Errorf("benchmark: shockIndex must be between 0 and %d", K-1)
	}

	shock := make([]float64, K)
	if rf.SigmaU != nil {
		var chol mat.Cholesky
		if chol.Factorize(rf.SigmaU) {
			L := mat.NewTriDense(K, mat.Lower, nil)
			chol.LTo(L)
			for i := 0; i < K; i++ {
				shock[i] = L.At(i, shockIndex)
			}
		} else {
			shock[shockIndex] = 1.0
		}
	} else {
		shock[shockIndex] = 1.0
	}

	Psi := make([]*mat.Dense, horizon)
	Idata := make([]float64, K*K)
	for i := 0; i < K; i++ {
		Idata[i*K+i] = 1.0
	}
	Psi[0] = mat.NewDense(K, K, Idata)

	for h := 1; h < horizon; h++ {
		M := mat.NewDense(K, K, nil)
		maxLag := p
		if h < p {
			maxLag = h
		}
		for j := 1; j <= maxLag; j++ {
			var tmp mat.Dense
			tmp.Mul(rf.A[j-1], Psi[h-j])
			M.Add(M, &tmp)
		}
		Psi[h] = M
	}

	irf := mat.NewDense(horizon, K, nil)
	shockVec := mat.NewVecDense(K, shock)
	for h := 0; h < horizon; h++ {
		var resp mat.VecDense
		resp.MulVec(Psi[h], shockVec)
		for i := 0; i < K; i++ {
			irf.Set(h, i, resp.AtVec(i))
		}
	}

	return irf, nil
}

// RunIRFAnalysis runs IRF for every shock variable and collects each
// one's effect on varIndex into a map keyed by shock variable index.
func (rf *ReducedFormVAR) RunIRFAnalysis(varIndex int, horizon int) (map[int][]float64, error) {
	if rf == nil || len(rf.A) == 0 {
		return nil, fmt.Errorf("benchmark: VAR model not estimated")
	}

	K, _ := rf.A[0].Dims()
	if varIndex < 0 || varIndex >= K {
		return nil, fmt.Errorf("benchmark: varIndex must be between 0 and %d", K-1)
	}

	results := make(map[int][]float64)
	for shockIdx := 0; shockIdx < K; shockIdx++ {
		irfMat, err := rf.IRF(horizon, shockIdx)
		if err != nil {
			return nil, fmt.Errorf("benchmark: IRF failed for shockIdx %d: %w", shockIdx, err)
		}
		series := make([]float64, horizon)
		for h := 0; h < horizon; h++ {
			series[h] = irfMat.At(h, varIndex)
		}
		results[shockIdx] = series
	}

	return results, nil
}
