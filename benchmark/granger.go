package benchmark

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"edm/edm"
)

// GrangerCausalityResult holds the outcome of one pairwise Granger
// F-test: does causeVar's lagged history help predict effectVar beyond
// effectVar's own lags and the rest of the system?
type GrangerCausalityResult struct {
	CauseVar    string
	EffectVar   string
	FStatistic  float64
	PValue      float64
	Lags        int
	Significant bool
}

// GrangerCausality tests whether causeIdx Granger-causes effectIdx
// within frame's columns, using rf's lag order and deterministic
// structure.
func (rf *ReducedFormVAR) GrangerCausality(frame *edm.Frame, causeIdx, effectIdx int) (*GrangerCausalityResult, error) {
	if frame == nil {
		return nil, fmt.Errorf("benchmark: frame not provided")
	}
	Y := frame.Matrix()
	T, K := Y.Dims()
	p := rf.Model.Lags

	if causeIdx < 0 || causeIdx >= K {
		return nil, fmt.Errorf("benchmark: causeIdx out of range: %d", causeIdx)
	}
	if effectIdx < 0 || effectIdx >= K {
		return nil, fmt.Errorf("benchmark: effectIdx out of range: %d", effectIdx)
	}
	if causeIdx == effectIdx {
		return nil, fmt.Errorf("benchmark: causeIdx and effectIdx cannot be the same")
	}

	Treg := T - p
	yEffect := mat.NewVecDense(Treg, nil)
	for t := 0; t < Treg; t++ {
		yEffect.SetVec(t, Y.At(t+p, effectIdx))
	}

	hasConst := rf.Model.Deterministic == DetConst || rf.Model.Deterministic == DetConstTrend
	hasTrend := rf.Model.Deterministic == DetTrend || rf.Model.Deterministic == DetConstTrend

	detCols := 0
	if hasConst {
		detCols++
	}
	if hasTrend {
		detCols++
	}

	lagCols := p * K
	mUnrestricted := detCols + lagCols
	XUnrestricted := mat.NewDense(Treg, mUnrestricted, nil)

	for t := 0; t < Treg; t++ {
		col := 0
		timeIndex := float64(t + p + 1)
		if hasConst {
			XUnrestricted.Set(t, col, 1.0)
			col++
		}
		if hasTrend {
			XUnrestricted.Set(t, col, timeIndex)
			col++
		}
		for j := 1; j <= p; j++ {
			srcRow := t + p - j
			for k := 0; k < K; k++ {
				XUnrestricted.Set(t, col, Y.At(srcRow, k))
				col++
			}
		}
	}

	var betaUnrestricted mat.VecDense
	if err := betaUnrestricted.SolveVec(XUnrestricted, yEffect); err != nil {
		return nil, fmt.Errorf("benchmark: failed to solve unrestricted model: %w", err)
	}
	var yHatUnrestricted mat.VecDense
	yHatUnrestricted.MulVec(XUnrestricted, &betaUnrestricted)
	var residUnrestricted mat.VecDense
	residUnrestricted.SubVec(yEffect, &yHatUnrestricted)
	rssUnrestricted := mat.Dot(&residUnrestricted, &residUnrestricted)

	mRestricted := detCols + p*(K-1)
	XRestricted := mat.NewDense(Treg, mRestricted, nil)
	for t := 0; t < Treg; t++ {
		col := 0
		timeIndex := float64(t + p + 1)
		if hasConst {
			XRestricted.Set(t, col, 1.0)
			col++
		}
		if hasTrend {
			XRestricted.Set(t, col, timeIndex)
			col++
		}
		for j := 1; j <= p; j++ {
			srcRow := t + p - j
			for k := 0; k < K; k++ {
				if k != causeIdx {
					XRestricted.Set(t, col, Y.At(srcRow, k))
					col++
				}
			}
		}
	}

	var betaRestricted mat.VecDense
	if err := betaRestricted.SolveVec(XRestricted, yEffect); err != nil {
		return nil, fmt.Errorf("benchmark: failed to solve restricted model: %w", err)
	}
	var yHatRestricted mat.VecDense
	yHatRestricted.MulVec(XRestricted, &betaRestricted)
	var residRestricted mat.VecDense
	residRestricted.SubVec(yEffect, &yHatRestricted)
	rssRestricted := mat.Dot(&residRestricted, &residRestricted)

	q := float64(p)
	k := float64(mUnrestricted)
	dof := float64(Treg) - k
	if dof <= 0 {
		return nil, fmt.Errorf("benchmark: insufficient degrees of freedom: %f", dof)
	}

	fStatistic := ((rssRestricted - rssUnrestricted) / q) / (rssUnrestricted / dof)

	fDist := distuv.F{D1: q, D2: dof}
	pValue := 1.0 - fDist.CDF(fStatistic)

	if math.IsNaN(fStatistic) || math.IsInf(fStatistic, 0) {
		fStatistic = 0
		pValue = 1.0
	}
	if pValue < 0 {
		pValue = 0
	}
	if pValue > 1 {
		pValue = 1.0
	}

	names := frame.ColumnNames()
	return &GrangerCausalityResult{
		CauseVar:    names[causeIdx],
		EffectVar:   names[effectIdx],
		FStatistic:  fStatistic,
		PValue:      pValue,
		Lags:        p,
		Significant: pValue < 0.05,
	}, nil
}

// GrangerCausalityMatrix runs pairwise Granger tests across every
// ordered pair of distinct columns in frame.
func (rf *ReducedFormVAR) GrangerCausalityMatrix(frame *edm.Frame) ([][]*GrangerCausalityResult, error) {
	if frame == nil {
		return nil, fmt.Errorf("benchmark: frame not provided")
	}
	K := frame.NColumns()
	names := frame.ColumnNames()

	results := make([][]*GrangerCausalityResult, K)
	for i := range results {
		results[i] = make([]*GrangerCausalityResult, K)
	}

	for i := 0; i < K; i++ {
		for j := 0; j < K; j++ {
			if i == j {
				continue
			}
			result, err := rf.GrangerCausality(frame, i, j)
			if err != nil {
				return nil, fmt.Errorf("benchmark: error testing %s -> %s: %w", names[i], names[j], err)
			}
			results[i][j] = result
		}
	}

	return results, nil
}
