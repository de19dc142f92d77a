package qsim

import (
	"math"
	"testing"
)

const tol = 1e-5

func totalProb(e *Engine) float64 {
	sum := 0.0
	for i := 0; i < States; i++ {
		sum += e.ProbabilityOf(i)
	}
	return sum
}

func snapshot(e *Engine) (re, im [States]float64) {
	for i := 0; i < States; i++ {
		re[i], im[i] = e.Amplitude(i)
	}
	return re, im
}

// scrambled returns a state with superposition, entanglement and
// complex phase on every qubit.
func scrambled() *Engine {
	e := New()
	e.ApplyH(0)
	e.ApplyT(0)
	e.ApplyControlledX(0, 2)
	e.ApplyH(1)
	e.ApplyY(3)
	e.ApplyZ(2)
	return e
}

func TestNormPreservation(t *testing.T) {
	gates := []struct {
		name  string
		apply func(*Engine)
	}{
		{"X", func(e *Engine) { e.ApplyX(1) }},
		{"Y", func(e *Engine) { e.ApplyY(2) }},
		{"Z", func(e *Engine) { e.ApplyZ(0) }},
		{"H", func(e *Engine) { e.ApplyH(3) }},
		{"T", func(e *Engine) { e.ApplyT(1) }},
		{"CX", func(e *Engine) { e.ApplyControlledX(1, 3) }},
	}
	for _, g := range gates {
		e := scrambled()
		g.apply(e)
		if d := math.Abs(totalProb(e) - 1); d > tol {
			t.Fatalf("%s: norm drift %g", g.name, d)
		}
	}
}

func TestInvolutions(t *testing.T) {
	gates := []struct {
		name  string
		apply func(*Engine)
	}{
		{"X", func(e *Engine) { e.ApplyX(2) }},
		{"Y", func(e *Engine) { e.ApplyY(1) }},
		{"Z", func(e *Engine) { e.ApplyZ(3) }},
		{"H", func(e *Engine) { e.ApplyH(0) }},
	}
	for _, g := range gates {
		e := scrambled()
		wantRe, wantIm := snapshot(e)
		g.apply(e)
		g.apply(e)
		gotRe, gotIm := snapshot(e)
		for i := 0; i < States; i++ {
			if math.Abs(gotRe[i]-wantRe[i]) > tol || math.Abs(gotIm[i]-wantIm[i]) > tol {
				t.Fatalf("%s twice: amplitude %d changed: got (%g,%g) want (%g,%g)",
					g.name, i, gotRe[i], gotIm[i], wantRe[i], wantIm[i])
			}
		}
	}
}

func TestHadamardHalfProbability(t *testing.T) {
	e := New()
	e.ApplyH(0)
	if p := e.ProbabilityQubitIsOne(0); math.Abs(p-0.5) > tol {
		t.Fatalf("P(q0=1)=%g, want 0.5", p)
	}
}

func TestBellPair(t *testing.T) {
	e := New()
	e.ApplyH(0)
	e.ApplyControlledX(0, 1)

	for i := 0; i < States; i++ {
		p := e.ProbabilityOf(i)
		switch i {
		case 0, 3:
			if math.Abs(p-0.5) > tol {
				t.Fatalf("P(%d)=%g, want 0.5", i, p)
			}
		default:
			if p > tol {
				t.Fatalf("P(%d)=%g, want 0", i, p)
			}
		}
	}
	if d := math.Abs(e.MaxBasisStateProbability() - 0.5); d > tol {
		t.Fatalf("max prob off by %g", d)
	}
}

func TestTGatePhaseOnly(t *testing.T) {
	e := scrambled()
	var before [States]float64
	e.Probabilities(&before)

	for q := uint8(0); q < Qubits; q++ {
		e.ApplyT(q)
	}

	var after [States]float64
	e.Probabilities(&after)
	for i := 0; i < States; i++ {
		if math.Abs(after[i]-before[i]) > tol {
			t.Fatalf("P(%d) changed by T: %g -> %g", i, before[i], after[i])
		}
	}
}

func TestMeasureCollapsesToMajorityBranch(t *testing.T) {
	// Bias qubit 0 toward 0: H then T then H leaves P(0) = cos^2(pi/8) ~ 0.85.
	e := New()
	e.ApplyH(0)
	e.ApplyT(0)
	e.ApplyH(0)
	if p0 := 1 - e.ProbabilityQubitIsOne(0); p0 <= 0.5 {
		t.Fatalf("setup: P(q0=0)=%g, want > 0.5", p0)
	}

	outcome, ok := e.Measure(0)
	if !ok || outcome != 0 {
		t.Fatalf("outcome=%d ok=%v, want 0 true", outcome, ok)
	}
	if p := e.ProbabilityQubitIsOne(0); p != 0 {
		t.Fatalf("P(q0=1)=%g after collapse to 0, want exactly 0", p)
	}
	if d := math.Abs(totalProb(e) - 1); d > tol {
		t.Fatalf("norm drift after measurement: %g", d)
	}

	q, o, has := e.LastMeasurement()
	if !has || q != 0 || o != 0 {
		t.Fatalf("last measurement = (%d,%d,%v), want (0,0,true)", q, o, has)
	}
}

func TestMeasureEntangledPair(t *testing.T) {
	// Collapsing one half of a Bell pair pins the other half.
	e := New()
	e.ApplyH(0)
	e.ApplyControlledX(0, 1)
	outcome, ok := e.Measure(0)
	if !ok {
		t.Fatal("measure failed")
	}
	if p := e.ProbabilityQubitIsOne(1); math.Abs(p-float64(outcome)) > tol {
		t.Fatalf("P(q1=1)=%g after measuring q0=%d", p, outcome)
	}
}

func TestResetIdempotence(t *testing.T) {
	e := scrambled()
	if _, ok := e.Measure(2); !ok {
		t.Fatal("measure failed")
	}
	e.Reset()

	if p := e.ProbabilityOf(0); p != 1 {
		t.Fatalf("P(0)=%g after reset, want 1", p)
	}
	for i := 1; i < States; i++ {
		if p := e.ProbabilityOf(i); p != 0 {
			t.Fatalf("P(%d)=%g after reset, want 0", i, p)
		}
	}
	if _, _, has := e.LastMeasurement(); has {
		t.Fatal("last measurement survived reset")
	}
}

func TestOutOfRangeIsNoOp(t *testing.T) {
	e := scrambled()
	wantRe, wantIm := snapshot(e)

	e.ApplyX(Qubits)
	e.ApplyY(Qubits + 1)
	e.ApplyZ(200)
	e.ApplyH(Qubits)
	e.ApplyT(Qubits)
	e.ApplyControlledX(Qubits, 0)
	e.ApplyControlledX(0, Qubits)
	e.ApplyControlledX(2, 2)
	if _, ok := e.Measure(Qubits); ok {
		t.Fatal("out-of-range measure reported ok")
	}

	gotRe, gotIm := snapshot(e)
	if gotRe != wantRe || gotIm != wantIm {
		t.Fatal("out-of-range call mutated the state")
	}
}

func TestNormalizeDegenerateState(t *testing.T) {
	var e Engine // all-zero, never Reset
	e.Normalize()
	for i := 0; i < States; i++ {
		re, im := e.Amplitude(i)
		if re != 0 || im != 0 {
			t.Fatalf("amplitude %d = (%g,%g), want zero", i, re, im)
		}
	}
}

func TestProbabilityOfMasksIndex(t *testing.T) {
	e := New()
	if p := e.ProbabilityOf(States); p != 1 {
		t.Fatalf("P(States)=%g, want masked P(0)=1", p)
	}
	if p := e.ProbabilityOf(States + 5); p != 0 {
		t.Fatalf("P(States+5)=%g, want masked P(5)=0", p)
	}
}

func TestGroundStateY(t *testing.T) {
	e := New()
	e.ApplyY(0)
	re, im := e.Amplitude(1)
	if math.Abs(re) > tol || math.Abs(im-1) > tol {
		t.Fatalf("Y|0> amplitude at 1 = (%g,%g), want (0,1)", re, im)
	}
	if p := e.ProbabilityQubitIsOne(0); math.Abs(p-1) > tol {
		t.Fatalf("P(q0=1)=%g after Y, want 1", p)
	}
}
