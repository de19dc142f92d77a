package qnet

import (
	"strings"
	"testing"
	"time"

	qpusvc "qubic/qubicos/services/qpu"

	"qubic/qubicos/kernel"
)

// chanNetwork is an in-memory hal.Network for tests: requests go in on
// reqs, replies come back on resps. Closing reqs ends the listener.
type chanNetwork struct {
	reqs  chan string
	resps chan string
}

func newChanNetwork() *chanNetwork {
	return &chanNetwork{
		reqs:  make(chan string),
		resps: make(chan string, 16),
	}
}

func (n *chanNetwork) Recv(pkt []byte) (int, error) {
	line, ok := <-n.reqs
	if !ok {
		return 0, errClosed
	}
	return copy(pkt, line), nil
}

func (n *chanNetwork) Send(pkt []byte) error {
	n.resps <- string(pkt)
	return nil
}

var errClosed = errString("closed")

type errString string

func (e errString) Error() string { return string(e) }

func startListener(t *testing.T) *chanNetwork {
	t.Helper()

	k := kernel.New()
	qpuEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	logEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)

	k.AddTask(qpusvc.New(nil, qpuEP.Restrict(kernel.RightRecv),
		kernel.Capability{}, kernel.Capability{}, logEP.Restrict(kernel.RightSend)))

	n := newChanNetwork()
	k.AddTask(New(n, qpuEP.Restrict(kernel.RightSend), logEP.Restrict(kernel.RightSend)))
	t.Cleanup(func() { close(n.reqs) })
	return n
}

func roundTrip(t *testing.T, n *chanNetwork, line string) string {
	t.Helper()
	select {
	case n.reqs <- line:
	case <-time.After(5 * time.Second):
		t.Fatalf("listener did not accept %q", line)
	}
	select {
	case resp := <-n.resps:
		return resp
	case <-time.After(5 * time.Second):
		t.Fatalf("no reply for %q", line)
		return ""
	}
}

func TestListenerBellPair(t *testing.T) {
	n := startListener(t)

	if got := roundTrip(t, n, "op=gate&g=h&q=0"); got != "ok" {
		t.Fatalf("H reply = %q", got)
	}
	if got := roundTrip(t, n, "op=gate&g=cx&c=0&q=1"); got != "ok" {
		t.Fatalf("CX reply = %q", got)
	}
	if got := roundTrip(t, n, "op=probe&k=basis&i=0"); got != "p=0.5000" {
		t.Fatalf("P(0) reply = %q", got)
	}
	if got := roundTrip(t, n, "op=probe&k=basis&i=3"); got != "p=0.5000" {
		t.Fatalf("P(3) reply = %q", got)
	}
	if got := roundTrip(t, n, "op=probe&k=register"); got != "n=4" {
		t.Fatalf("register reply = %q", got)
	}
}

func TestListenerMeasureAndReset(t *testing.T) {
	n := startListener(t)

	if got := roundTrip(t, n, "op=probe&k=last"); got != "last=none" {
		t.Fatalf("last reply = %q", got)
	}

	if got := roundTrip(t, n, "op=gate&g=x&q=2"); got != "ok" {
		t.Fatalf("X reply = %q", got)
	}
	if got := roundTrip(t, n, "op=measure&q=2"); got != "outcome=1 p1=1.0000" {
		t.Fatalf("measure reply = %q", got)
	}
	if got := roundTrip(t, n, "op=probe&k=last"); got != "last=q2:1" {
		t.Fatalf("last reply = %q", got)
	}

	// Out-of-range qubits do not measure.
	if got := roundTrip(t, n, "op=measure&q=9"); got != "outcome=none" {
		t.Fatalf("out-of-range measure reply = %q", got)
	}

	if got := roundTrip(t, n, "op=reset"); got != "ok" {
		t.Fatalf("reset reply = %q", got)
	}
	if got := roundTrip(t, n, "op=probe&k=basis&i=0"); got != "p=1.0000" {
		t.Fatalf("P(0) after reset = %q", got)
	}
}

func TestListenerRejectsBadLines(t *testing.T) {
	n := startListener(t)

	for _, line := range []string{"op=warp", "op=gate&g=h", "nonsense"} {
		got := roundTrip(t, n, line)
		if !strings.HasPrefix(got, "err=") {
			t.Fatalf("reply for %q = %q, want err=", line, got)
		}
	}
}
