package main

import (
	"fmt"

	"qubic/qubicos/qsim"

	"gopkg.in/yaml.v3"
)

type circuit struct {
	Name  string `yaml:"name"`
	Gates []step `yaml:"gates"`
}

type step struct {
	G string `yaml:"g"`
	Q *int   `yaml:"q"`
	C *int   `yaml:"c"`
}

func loadCircuit(data []byte) (circuit, error) {
	var c circuit
	if err := yaml.Unmarshal(data, &c); err != nil {
		return circuit{}, err
	}
	if len(c.Gates) == 0 {
		return circuit{}, fmt.Errorf("no gates")
	}
	for i, s := range c.Gates {
		if err := s.validate(); err != nil {
			return circuit{}, fmt.Errorf("gate %d: %w", i+1, err)
		}
	}
	return c, nil
}

func (s step) validate() error {
	switch s.G {
	case "x", "y", "z", "h", "t", "measure":
		if s.Q == nil {
			return fmt.Errorf("%s: missing q", s.G)
		}
	case "cx":
		if s.Q == nil || s.C == nil {
			return fmt.Errorf("cx: needs both c and q")
		}
	case "":
		return fmt.Errorf("missing g")
	default:
		return fmt.Errorf("unknown gate %q", s.G)
	}
	if s.Q != nil && (*s.Q < 0 || *s.Q >= qsim.Qubits) {
		return fmt.Errorf("%s: q=%d out of range (0..%d)", s.G, *s.Q, qsim.Qubits-1)
	}
	if s.C != nil && (*s.C < 0 || *s.C >= qsim.Qubits) {
		return fmt.Errorf("%s: c=%d out of range (0..%d)", s.G, *s.C, qsim.Qubits-1)
	}
	return nil
}

// run replays the circuit on eng and returns one line per measurement.
func (c circuit) run(eng *qsim.Engine) ([]string, error) {
	var lines []string
	for _, s := range c.Gates {
		switch s.G {
		case "x":
			eng.ApplyX(uint8(*s.Q))
		case "y":
			eng.ApplyY(uint8(*s.Q))
		case "z":
			eng.ApplyZ(uint8(*s.Q))
		case "h":
			eng.ApplyH(uint8(*s.Q))
		case "t":
			eng.ApplyT(uint8(*s.Q))
		case "cx":
			eng.ApplyControlledX(uint8(*s.C), uint8(*s.Q))
		case "measure":
			outcome, ok := eng.Measure(uint8(*s.Q))
			if !ok {
				return nil, fmt.Errorf("measure q%d failed", *s.Q)
			}
			lines = append(lines, fmt.Sprintf("M q%d -> %d", *s.Q, outcome))
		}
	}
	return lines, nil
}

func registerLines(eng *qsim.Engine, all bool) []string {
	const probFloor = 1e-9

	var lines []string
	for i := 0; i < qsim.States; i++ {
		p := eng.ProbabilityOf(i)
		if !all && p < probFloor {
			continue
		}
		re, im := eng.Amplitude(i)
		lines = append(lines, fmt.Sprintf("|%0*b>  amp=(%+.4f%+.4fi)  p=%.4f",
			qsim.Qubits, i, re, im, p))
	}
	return lines
}
