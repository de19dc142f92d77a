package main

import (
	"math"
	"strings"
	"testing"

	"qubic/qubicos/qsim"
)

const tol = 1e-5

func TestLoadAndRunBell(t *testing.T) {
	src := `
name: bell
gates:
  - {g: h, q: 0}
  - {g: cx, c: 0, q: 1}
`
	c, err := loadCircuit([]byte(src))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Name != "bell" || len(c.Gates) != 2 {
		t.Fatalf("unexpected circuit: %+v", c)
	}

	eng := qsim.New()
	lines, err := c.run(eng)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("no measurements expected, got %v", lines)
	}

	if p := eng.ProbabilityOf(0); math.Abs(p-0.5) > tol {
		t.Fatalf("P(00) = %v, want 0.5", p)
	}
	if p := eng.ProbabilityOf(3); math.Abs(p-0.5) > tol {
		t.Fatalf("P(11) = %v, want 0.5", p)
	}
}

func TestRunMeasurement(t *testing.T) {
	src := `
gates:
  - {g: x, q: 2}
  - {g: measure, q: 2}
`
	c, err := loadCircuit([]byte(src))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	eng := qsim.New()
	lines, err := c.run(eng)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(lines) != 1 || lines[0] != "M q2 -> 1" {
		t.Fatalf("unexpected measurement lines: %v", lines)
	}
}

func TestLoadRejectsBadCircuits(t *testing.T) {
	for _, src := range []string{
		``,
		`gates: []`,
		`gates: [{g: warp, q: 0}]`,
		`gates: [{g: h}]`,
		`gates: [{g: cx, q: 1}]`,
		`gates: [{g: h, q: 12}]`,
		"gates: [\n  {g: h, q: 0",
	} {
		if _, err := loadCircuit([]byte(src)); err == nil {
			t.Fatalf("expected error for %q", src)
		}
	}
}

func TestRegisterLinesSkipEmptyStates(t *testing.T) {
	eng := qsim.New()
	eng.ApplyX(0)

	lines := registerLines(eng, false)
	if len(lines) != 1 {
		t.Fatalf("expected single populated state, got %v", lines)
	}
	if !strings.HasPrefix(lines[0], "|0001>") {
		t.Fatalf("unexpected state line: %q", lines[0])
	}

	if got := len(registerLines(eng, true)); got != qsim.States {
		t.Fatalf("all-states listing has %d lines, want %d", got, qsim.States)
	}
}
