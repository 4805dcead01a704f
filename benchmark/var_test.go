package benchmark

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"edm/edm"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// VAR(1) scalar without deterministics: y_t = 0.5 y_{t-1}
func TestForecast_SimpleVAR1_NoDeterministic(t *testing.T) {
	spec := ModelSpec{Lags: 1, Deterministic: DetNone}

	A1 := mat.NewDense(1, 1, []float64{0.5})
	rf := &ReducedFormVAR{Model: spec, A: []*mat.Dense{A1}}

	histData := []float64{1.0, 0.5, 0.25, 0.125, 0.0625}
	yHist := mat.NewDense(len(histData), 1, histData)

	steps := 3
	fcst, err := rf.Forecast(yHist, steps)
	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}
	if r, c := fcst.Dims(); r != steps || c != 1 {
		t.Fatalf("Forecast dims = %dx%d, want %dx1", r, c, steps)
	}

	expected := []float64{0.03125, 0.015625, 0.0078125}
	for i := 0; i < steps; i++ {
		got := fcst.At(i, 0)
		if !almostEqual(got, expected[i], 1e-6) {
			t.Errorf("Forecast[%d] = %v, want %v", i, got, expected[i])
		}
	}
}

func TestForecast_Var1_ConstantOnly(t *testing.T) {
	spec := ModelSpec{Lags: 1, Deterministic: DetConst}

	A1 := mat.NewDense(1, 1, []float64{0.0})
	C := mat.NewDense(1, 1, []float64{1.0})
	rf := &ReducedFormVAR{Model: spec, A: []*mat.Dense{A1}, C: C}

	histData := []float64{0, 0, 0}
	yHist := mat.NewDense(len(histData), 1, histData)

	steps := 4
	fcst, err := rf.Forecast(yHist, steps)
	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}
	for i := 0; i < steps; i++ {
		got := fcst.At(i, 0)
		if !almostEqual(got, 1.0, 1e-6) {
			t.Errorf("Forecast[%d] = %v, want 1.0", i, got)
		}
	}
}

func TestIRF_ScalarVAR1(t *testing.T) {
	spec := ModelSpec{Lags: 1, Deterministic: DetNone}

	a := 0.5
	A1 := mat.NewDense(1, 1, []float64{a})
	SigmaU := mat.NewSymDense(1, []float64{1.0})
	rf := &ReducedFormVAR{Model: spec, A: []*mat.Dense{A1}, SigmaU: SigmaU}

	horizon := 5
	irf, err := rf.IRF(horizon, 0)
	if err != nil {
		t.Fatalf("IRF returned error: %v", err)
	}
	if r, c := irf.Dims(); r != horizon || c != 1 {
		t.Fatalf("IRF dims = %dx%d, want %dx1", r, c, horizon)
	}

	val := 1.0
	for h := 0; h < horizon; h++ {
		got := irf.At(h, 0)
		if !almostEqual(got, val, 1e-6) {
			t.Errorf("IRF[%d] = %v, want %v", h, got, val)
		}
		val *= a
	}
}

// Check that Estimate recovers roughly the correct coefficient for
// y_t = 0.5 y_{t-1} with no deterministic terms.
func TestEstimate_SimpleVAR1_NoDeterministic(t *testing.T) {
	data := []float64{1.0, 0.5, 0.25, 0.125, 0.0625, 0.03125, 0.015625}
	frame := edm.NewFrameFromData(len(data), []string{"y"}, data)

	spec := ModelSpec{Lags: 1, Deterministic: DetNone}
	est := &OLSEstimator{}
	rf, err := est.Estimate(frame, spec, EstimationOptions{})
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}
	if len(rf.A) != 1 {
		t.Fatalf("len(rf.A) = %d, want 1", len(rf.A))
	}

	phiHat := rf.A[0].At(0, 0)
	if !almostEqual(phiHat, 0.5, 1e-2) {
		t.Errorf("Estimated phi = %v, want approx 0.5", phiHat)
	}
	if rf.C != nil {
		t.Errorf("Expected no deterministic coefficients (C == nil), got C != nil")
	}
}

// Force X'X to be singular to exercise the SVD / pseudoinverse path.
func TestEstimate_PseudoinverseFallback(t *testing.T) {
	data := []float64{0, 0, 0, 0}
	frame := edm.NewFrameFromData(len(data), []string{"y"}, data)

	spec := ModelSpec{Lags: 1, Deterministic: DetNone}
	est := &OLSEstimator{}
	rf, err := est.Estimate(frame, spec, EstimationOptions{})
	if err != nil {
		t.Fatalf("Estimate returned error (pseudoinverse path): %v", err)
	}
	if len(rf.A) != 1 {
		t.Fatalf("len(rf.A) = %d, want 1", len(rf.A))
	}

	phiHat := rf.A[0].At(0, 0)
	if !almostEqual(phiHat, 0.0, 1e-6) {
		t.Errorf("Estimated phi (pseudoinverse) = %v, want 0.0", phiHat)
	}
}

func TestRunIRFAnalysis_CoversEveryShockVariable(t *testing.T) {
	spec := ModelSpec{Lags: 1, Deterministic: DetNone}
	A1 := mat.NewDense(2, 2, []float64{0.5, 0.1, 0.0, 0.3})
	SigmaU := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	rf := &ReducedFormVAR{Model: spec, A: []*mat.Dense{A1}, SigmaU: SigmaU}

	results, err := rf.RunIRFAnalysis(0, 4)
	if err != nil {
		t.Fatalf("RunIRFAnalysis returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	for shockIdx, series := range results {
		if len(series) != 4 {
			t.Errorf("series for shock %d has length %d, want 4", shockIdx, len(series))
		}
	}
}
