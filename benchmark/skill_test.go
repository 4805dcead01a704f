package benchmark

import "testing"

func TestCompareSkill_PerfectSMapBeatsNoisyVAR(t *testing.T) {
	observed := []float64{1, 2, 3, 4, 5}
	smapPred := []float64{1, 2, 3, 4, 5}
	varPred := []float64{1.2, 1.7, 3.4, 3.6, 5.3}

	report, err := CompareSkill(observed, smapPred, varPred)
	if err != nil {
		t.Fatalf("CompareSkill returned error: %v", err)
	}

	if !almostEqual(report.RhoSMap, 1.0, 1e-9) {
		t.Errorf("RhoSMap = %v, want 1.0", report.RhoSMap)
	}
	if !almostEqual(report.RMSESMap, 0.0, 1e-9) {
		t.Errorf("RMSESMap = %v, want 0.0", report.RMSESMap)
	}
	if report.RMSEVAR <= report.RMSESMap {
		t.Errorf("RMSEVAR (%v) should exceed RMSESMap (%v)", report.RMSEVAR, report.RMSESMap)
	}
	if report.RhoVAR >= report.RhoSMap {
		t.Errorf("RhoVAR (%v) should be below RhoSMap (%v)", report.RhoVAR, report.RhoSMap)
	}
}

func TestCompareSkill_RejectsLengthMismatch(t *testing.T) {
	_, err := CompareSkill([]float64{1, 2}, []float64{1}, []float64{1, 2})
	if err == nil {
		t.Fatalf("expected error for length mismatch")
	}
}

func TestCompareSkill_RejectsEmpty(t *testing.T) {
	_, err := CompareSkill(nil, nil, nil)
	if err == nil {
		t.Fatalf("expected error for empty series")
	}
}
