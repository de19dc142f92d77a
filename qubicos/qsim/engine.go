// Package qsim implements a fixed-size quantum statevector engine.
//
// The engine owns the complex amplitude vector of a Qubits-qubit
// register and applies single- and two-qubit unitary gates, projective
// measurement with collapse, and probability queries, all as bounded
// in-place passes over a compile-time-sized array. Nothing allocates on
// the gate or measurement paths, so the same code runs on the baremetal
// build.
package qsim

import "math"

const (
	// Qubits is the register size. Basis-state index bit k encodes the
	// value of qubit k.
	Qubits = 4

	// States is the number of basis states.
	States = 1 << Qubits
)

// normEpsilon guards Normalize against dividing by a near-zero total
// probability mass. A degenerate all-zero state is left untouched.
const normEpsilon = 1e-9

const invSqrt2 = 1 / math.Sqrt2

// Engine holds the statevector of a Qubits-qubit register.
//
// Amplitudes are stored as separate real and imaginary arrays indexed
// by basis state. Between operations the state is unit-norm; gates
// preserve the norm by construction and Measure renormalizes before
// returning.
//
// The engine has no internal locking. At most one caller may drive it
// at a time; the qpu service serializes callers behind its mailbox.
type Engine struct {
	re [States]float64
	im [States]float64

	lastQubit   uint8
	lastOutcome uint8
	hasLast     bool
}

// New returns an engine in the ground state |0...0>.
func New() *Engine {
	e := &Engine{}
	e.Reset()
	return e
}

// Reset overwrites the state with the ground state: amplitude 1 at
// basis index 0, zero everywhere else. The last-measurement record is
// cleared. Callable at any time.
func (e *Engine) Reset() {
	for i := 0; i < States; i++ {
		e.re[i] = 0
		e.im[i] = 0
	}
	e.re[0] = 1
	e.hasLast = false
}

// RegisterSize returns the number of qubits.
func (e *Engine) RegisterSize() int { return Qubits }

// ApplyX applies the bit-flip gate to qubit q: the amplitudes of every
// pair of basis states differing only in bit q are exchanged.
//
// A qubit index >= Qubits is a silent no-op. That policy is shared by
// every gate and is the engine's only bounds defense; callers needing
// strict validation must wrap these calls.
func (e *Engine) ApplyX(q uint8) {
	if q >= Qubits {
		return
	}
	mask := 1 << q
	for i := 0; i < States; i++ {
		if i&mask != 0 {
			continue
		}
		j := i | mask
		e.re[i], e.re[j] = e.re[j], e.re[i]
		e.im[i], e.im[j] = e.im[j], e.im[i]
	}
}

// ApplyY applies the Pauli-Y gate to qubit q. For a pair (i0, i1)
// differing in bit q, the new amplitude at i0 is -i times the old
// amplitude at i1, and the new amplitude at i1 is i times the old
// amplitude at i0.
func (e *Engine) ApplyY(q uint8) {
	if q >= Qubits {
		return
	}
	mask := 1 << q
	for i := 0; i < States; i++ {
		if i&mask != 0 {
			continue
		}
		j := i | mask
		r0, m0 := e.re[i], e.im[i]
		r1, m1 := e.re[j], e.im[j]
		// -i*(r+mi) = m - ri, i*(r+mi) = -m + ri.
		e.re[i], e.im[i] = m1, -r1
		e.re[j], e.im[j] = -m0, r0
	}
}

// ApplyZ applies the phase-flip gate to qubit q: amplitudes at indices
// with bit q set are negated.
func (e *Engine) ApplyZ(q uint8) {
	if q >= Qubits {
		return
	}
	mask := 1 << q
	for i := 0; i < States; i++ {
		if i&mask == 0 {
			continue
		}
		e.re[i] = -e.re[i]
		e.im[i] = -e.im[i]
	}
}

// ApplyH applies the Hadamard gate to qubit q: for each pair (i0, i1)
// differing in bit q, the new amplitudes are (a0+a1)/sqrt2 at i0 and
// (a0-a1)/sqrt2 at i1, componentwise over real and imaginary parts.
func (e *Engine) ApplyH(q uint8) {
	if q >= Qubits {
		return
	}
	mask := 1 << q
	for i := 0; i < States; i++ {
		if i&mask != 0 {
			continue
		}
		j := i | mask
		r0, m0 := e.re[i], e.im[i]
		r1, m1 := e.re[j], e.im[j]
		e.re[i] = (r0 + r1) * invSqrt2
		e.im[i] = (m0 + m1) * invSqrt2
		e.re[j] = (r0 - r1) * invSqrt2
		e.im[j] = (m0 - m1) * invSqrt2
	}
}

// ApplyT applies the pi/4 phase gate to qubit q: amplitudes at indices
// with bit q set are rotated by pi/4 in the complex plane. Probabilities
// are unchanged.
func (e *Engine) ApplyT(q uint8) {
	if q >= Qubits {
		return
	}
	mask := 1 << q
	for i := 0; i < States; i++ {
		if i&mask == 0 {
			continue
		}
		r, m := e.re[i], e.im[i]
		// cos(pi/4) = sin(pi/4) = 1/sqrt2.
		e.re[i] = (r - m) * invSqrt2
		e.im[i] = (r + m) * invSqrt2
	}
}

// ApplyControlledX applies the controlled-X (CNOT) gate: for every
// basis index with the control bit set, the target bit is flipped by
// exchanging amplitudes across the target-bit pair. Indices with the
// control bit clear are untouched.
//
// No-op when control or target is out of range, or control == target.
func (e *Engine) ApplyControlledX(control, target uint8) {
	if control >= Qubits || target >= Qubits || control == target {
		return
	}
	cmask := 1 << control
	tmask := 1 << target
	for i := 0; i < States; i++ {
		if i&cmask == 0 || i&tmask != 0 {
			continue
		}
		j := i | tmask
		e.re[i], e.re[j] = e.re[j], e.re[i]
		e.im[i], e.im[j] = e.im[j], e.im[i]
	}
}

// Measure performs a projective measurement of qubit q.
//
// Collapse is deterministic: the outcome is 0 when P(qubit=0) > 0.5 and
// 1 otherwise, always taking the majority-probability branch rather
// than sampling. Amplitudes disagreeing with the outcome are zeroed and
// the state is renormalized before returning. The outcome and qubit are
// recorded for LastMeasurement.
//
// Measuring an out-of-range qubit is a no-op and returns ok=false; the
// previous last-measurement record is kept.
func (e *Engine) Measure(q uint8) (outcome uint8, ok bool) {
	if q >= Qubits {
		return 0, false
	}
	mask := 1 << q

	prob0 := 0.0
	for i := 0; i < States; i++ {
		if i&mask == 0 {
			prob0 += e.re[i]*e.re[i] + e.im[i]*e.im[i]
		}
	}

	outcome = 1
	if prob0 > 0.5 {
		outcome = 0
	}

	for i := 0; i < States; i++ {
		bit := uint8(0)
		if i&mask != 0 {
			bit = 1
		}
		if bit != outcome {
			e.re[i] = 0
			e.im[i] = 0
		}
	}

	e.Normalize()

	e.lastQubit = q
	e.lastOutcome = outcome
	e.hasLast = true
	return outcome, true
}

// Normalize rescales the state to unit total probability mass.
//
// Called by Measure after collapse. It is also exported for defensive
// renormalization after long gate sequences; the qpu service invokes it
// every 64 gates. If the total mass is at or below a small epsilon the
// state is left untouched instead of blowing up to NaN/Inf.
func (e *Engine) Normalize() {
	sum := 0.0
	for i := 0; i < States; i++ {
		sum += e.re[i]*e.re[i] + e.im[i]*e.im[i]
	}
	if sum <= normEpsilon {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := 0; i < States; i++ {
		e.re[i] *= inv
		e.im[i] *= inv
	}
}

// ProbabilityOf returns the measurement probability of basis state
// index: re^2 + im^2. The index is masked into [0, States); that clamp
// mirrors the silent no-op policy for out-of-range qubit indices.
func (e *Engine) ProbabilityOf(index int) float64 {
	index &= States - 1
	return e.re[index]*e.re[index] + e.im[index]*e.im[index]
}

// ProbabilityQubitIsOne returns the total probability mass of basis
// states with bit q set. Returns 0 for an out-of-range qubit.
func (e *Engine) ProbabilityQubitIsOne(q uint8) float64 {
	if q >= Qubits {
		return 0
	}
	mask := 1 << q
	sum := 0.0
	for i := 0; i < States; i++ {
		if i&mask != 0 {
			sum += e.re[i]*e.re[i] + e.im[i]*e.im[i]
		}
	}
	return sum
}

// MaxBasisStateProbability returns the largest single basis-state
// probability. Renderers use it to scale bar charts.
func (e *Engine) MaxBasisStateProbability() float64 {
	max := 0.0
	for i := 0; i < States; i++ {
		p := e.re[i]*e.re[i] + e.im[i]*e.im[i]
		if p > max {
			max = p
		}
	}
	return max
}

// Probabilities fills dst with all basis-state probabilities in index
// order.
func (e *Engine) Probabilities(dst *[States]float64) {
	for i := 0; i < States; i++ {
		dst[i] = e.re[i]*e.re[i] + e.im[i]*e.im[i]
	}
}

// Amplitude returns the complex amplitude of a basis state, index
// masked into range. Read-only; used by host tools to print states.
func (e *Engine) Amplitude(index int) (re, im float64) {
	index &= States - 1
	return e.re[index], e.im[index]
}

// LastMeasurement reports the most recent measurement, if any.
func (e *Engine) LastMeasurement() (qubit, outcome uint8, ok bool) {
	return e.lastQubit, e.lastOutcome, e.hasLast
}
