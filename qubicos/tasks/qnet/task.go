// Package qnet serves the line transport: each inbound request line is
// parsed, forwarded to the engine service, and answered with one reply
// line on the same connection.
package qnet

import (
	"errors"
	"fmt"

	"qubic/hal"
	qpuclient "qubic/qubicos/client/qpu"
	"qubic/qubicos/kernel"
	"qubic/qubicos/proto"
)

type Task struct {
	net hal.Network
	qpu kernel.Capability
	log kernel.Capability
}

// New creates the listener task. qpu must carry send rights for the
// engine service endpoint.
func New(net hal.Network, qpu, log kernel.Capability) *Task {
	return &Task{net: net, qpu: qpu, log: log}
}

func (t *Task) Run(ctx *kernel.Context) {
	if t.net == nil {
		return
	}
	client := qpuclient.NewClient(ctx, t.qpu)

	var buf [256]byte
	for {
		n, err := t.net.Recv(buf[:])
		if err != nil {
			// No transport on this platform, or it shut down.
			if !errors.Is(err, hal.ErrNotImplemented) {
				t.logf(ctx, "recv: %v", err)
			}
			return
		}

		reply := t.serve(client, string(buf[:n]))
		if err := t.net.Send([]byte(reply)); err != nil {
			t.logf(ctx, "send: %v", err)
		}
	}
}

func (t *Task) serve(client *qpuclient.Client, line string) string {
	req, err := parseRequest(line)
	if err != nil {
		return "err=" + err.Error()
	}

	switch req.op {
	case opGate:
		if req.gate == proto.GateCX {
			err = client.ControlledX(req.control, req.qubit)
		} else {
			err = client.Gate(req.gate, req.qubit)
		}
		if err != nil {
			return "err=" + err.Error()
		}
		return "ok"

	case opMeasure:
		outcome, measured, p1, err := client.Measure(req.qubit)
		if err != nil {
			return "err=" + err.Error()
		}
		if !measured {
			return "outcome=none"
		}
		return fmt.Sprintf("outcome=%d p1=%.4f", outcome, p1)

	case opProbe:
		respArg, flag, value, err := client.Probe(req.probe, req.arg)
		if err != nil {
			return "err=" + err.Error()
		}
		switch req.probe {
		case proto.ProbeRegister:
			return fmt.Sprintf("n=%d", int(value))
		case proto.ProbeLast:
			if !flag {
				return "last=none"
			}
			return fmt.Sprintf("last=q%d:%d", respArg, int(value))
		default:
			return fmt.Sprintf("p=%.4f", value)
		}

	case opReset:
		if err := client.Reset(); err != nil {
			return "err=" + err.Error()
		}
		return "ok"
	}

	return "err=" + errBadRequest.Error()
}

func (t *Task) logf(ctx *kernel.Context, format string, args ...any) {
	if !t.log.Valid() {
		return
	}
	line := "qnet: " + fmt.Sprintf(format, args...)
	ctx.SendTo(t.log, uint16(proto.MsgLogLine), proto.LogLinePayload([]byte(line)))
}
