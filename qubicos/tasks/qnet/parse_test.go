package qnet

import (
	"testing"

	"qubic/qubicos/proto"
)

func TestParseGate(t *testing.T) {
	req, err := parseRequest("op=gate&g=h&q=2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if req.op != opGate || req.gate != proto.GateH || req.qubit != 2 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.control != proto.NoControl {
		t.Fatalf("control should stay unset, got %d", req.control)
	}
}

func TestParseControlledGate(t *testing.T) {
	req, err := parseRequest("op=gate&g=cx&c=0&q=1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if req.gate != proto.GateCX || req.control != 0 || req.qubit != 1 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestParseControlledGateNeedsControl(t *testing.T) {
	if _, err := parseRequest("op=gate&g=cx&q=1"); err == nil {
		t.Fatal("expected error for cx without control")
	}
}

func TestParseMeasure(t *testing.T) {
	req, err := parseRequest("op=measure&q=3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if req.op != opMeasure || req.qubit != 3 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestParseProbes(t *testing.T) {
	cases := []struct {
		line  string
		probe proto.ProbeCode
		arg   uint8
	}{
		{"op=probe&k=basis&i=5", proto.ProbeBasis, 5},
		{"op=probe&k=qubit&q=1", proto.ProbeQubitOne, 1},
		{"op=probe&k=max", proto.ProbeMax, 0},
		{"op=probe&k=last", proto.ProbeLast, 0},
		{"op=probe&k=register", proto.ProbeRegister, 0},
	}
	for _, tc := range cases {
		req, err := parseRequest(tc.line)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.line, err)
		}
		if req.op != opProbe || req.probe != tc.probe || req.arg != tc.arg {
			t.Fatalf("parse %q: unexpected request %+v", tc.line, req)
		}
	}
}

func TestParseReset(t *testing.T) {
	req, err := parseRequest("op=reset")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if req.op != opReset {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, line := range []string{
		"",
		"   ",
		"op=warp&q=0",
		"op=gate&g=q&q=0",
		"op=gate&g=h",
		"op=gate&g=h&q=banana",
		"op=probe&k=flux",
		"no-equals-sign",
	} {
		if _, err := parseRequest(line); err == nil {
			t.Fatalf("expected error for %q", line)
		}
	}
}
