package qpu

import (
	"math"
	"testing"
	"time"

	qpuclient "qubic/qubicos/client/qpu"
	"qubic/qubicos/kernel"
	"qubic/qubicos/proto"
	"qubic/qubicos/qsim"
)

type taskFunc func(*kernel.Context)

func (f taskFunc) Run(ctx *kernel.Context) { f(ctx) }

const tol = 1e-5

func runClient(t *testing.T, body func(ctx *kernel.Context, c *qpuclient.Client, render kernel.Capability)) {
	t.Helper()

	k := kernel.New()
	qpuEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	renderEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)

	k.AddTask(New(nil, qpuEP.Restrict(kernel.RightRecv), renderEP.Restrict(kernel.RightSend),
		kernel.Capability{}, kernel.Capability{}))

	done := make(chan struct{})
	k.AddTask(taskFunc(func(ctx *kernel.Context) {
		defer close(done)
		body(ctx, qpuclient.NewClient(ctx, qpuEP.Restrict(kernel.RightSend)), renderEP.Restrict(kernel.RightRecv))
	}))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("client task timed out")
	}
}

func TestBellPairOverIPC(t *testing.T) {
	var fail string
	runClient(t, func(ctx *kernel.Context, c *qpuclient.Client, render kernel.Capability) {
		check := func(err error) {
			if err != nil && fail == "" {
				fail = err.Error()
			}
		}
		check(c.Gate(proto.GateH, 0))
		check(c.ControlledX(0, 1))

		probe := func(code proto.ProbeCode, arg uint8) float64 {
			_, _, v, err := c.Probe(code, arg)
			check(err)
			return float64(v)
		}
		if p := probe(proto.ProbeBasis, 0); math.Abs(p-0.5) > tol && fail == "" {
			fail = "P(0) not 0.5"
		}
		if p := probe(proto.ProbeBasis, 3); math.Abs(p-0.5) > tol && fail == "" {
			fail = "P(3) not 0.5"
		}
		if p := probe(proto.ProbeBasis, 1); p > tol && fail == "" {
			fail = "P(1) not 0"
		}
		if p := probe(proto.ProbeMax, 0); math.Abs(p-0.5) > tol && fail == "" {
			fail = "max prob not 0.5"
		}
		if n := probe(proto.ProbeRegister, 0); n != qsim.Qubits && fail == "" {
			fail = "register size mismatch"
		}
	})
	if fail != "" {
		t.Fatal(fail)
	}
}

func TestMeasureAndLastOverIPC(t *testing.T) {
	var fail string
	runClient(t, func(ctx *kernel.Context, c *qpuclient.Client, render kernel.Capability) {
		if err := c.Gate(proto.GateH, 2); err != nil {
			fail = err.Error()
			return
		}
		outcome, measured, p1, err := c.Measure(2)
		if err != nil {
			fail = err.Error()
			return
		}
		if !measured {
			fail = "in-range measure reported not measured"
			return
		}
		if math.Abs(float64(p1)-float64(outcome)) > tol {
			fail = "collapse did not pin P(q2=1) to the outcome"
			return
		}

		q, has, v, err := c.Probe(proto.ProbeLast, 0)
		if err != nil {
			fail = err.Error()
			return
		}
		if !has || q != 2 || uint8(v) != outcome {
			fail = "last-measurement probe mismatch"
			return
		}

		// Out-of-range qubit: silent no-op, flagged in the response.
		if _, measured, _, err := c.Measure(qsim.Qubits + 1); err != nil || measured {
			fail = "out-of-range measure not a no-op"
		}
	})
	if fail != "" {
		t.Fatal(fail)
	}
}

func TestResetAndSnapshotsOverIPC(t *testing.T) {
	var fail string
	runClient(t, func(ctx *kernel.Context, c *qpuclient.Client, render kernel.Capability) {
		if err := c.Gate(proto.GateH, 0); err != nil {
			fail = err.Error()
			return
		}
		if err := c.Reset(); err != nil {
			fail = err.Error()
			return
		}
		_, _, v, err := c.Probe(proto.ProbeBasis, 0)
		if err != nil {
			fail = err.Error()
			return
		}
		if v != 1 {
			fail = "reset did not restore ground state"
			return
		}

		// The service published a snapshot per mutation; the latest one
		// must decode and agree with the ground state.
		var probs [qsim.States]float32
		var got bool
		for {
			msg, ok := ctx.TryRecv(render)
			if !ok {
				break
			}
			if proto.Kind(msg.Kind) != proto.MsgState {
				continue
			}
			if _, _, _, ok := proto.DecodeStatePayload(msg.Data[:msg.Len], &probs); ok {
				got = true
			}
		}
		if !got {
			fail = "no state snapshot published"
			return
		}
		if probs[0] != 1 {
			fail = "snapshot does not show ground state"
		}
	})
	if fail != "" {
		t.Fatal(fail)
	}
}

func TestUnknownGateCodeOverIPC(t *testing.T) {
	var fail string
	runClient(t, func(ctx *kernel.Context, c *qpuclient.Client, render kernel.Capability) {
		err := c.Gate(proto.GateCode(0xEE), 0)
		if err == nil {
			fail = "unknown gate code did not error"
		}
	})
	if fail != "" {
		t.Fatal(fail)
	}
}
