// Package qpanel is the on-device front panel: a bar chart of all
// basis-state probabilities plus keyboard-driven gate entry.
//
// Keys: up/down select the target qubit, left/right the control qubit;
// x y z h t apply the matching gate to the target, c applies
// controlled-X (control -> target), m measures the target, r resets.
package qpanel

import (
	"fmt"

	"qubic/hal"
	qpuclient "qubic/qubicos/client/qpu"
	"qubic/qubicos/kernel"
	"qubic/qubicos/proto"
	"qubic/qubicos/qsim"
)

type Task struct {
	disp   hal.Display
	in     hal.Input
	qpu    kernel.Capability
	render kernel.Capability
	log    kernel.Capability

	fb     hal.Framebuffer
	events <-chan hal.KeyEvent
	client *qpuclient.Client

	probs       [qsim.States]float32
	lastQubit   uint8
	lastOutcome uint8
	hasLast     bool

	target  uint8
	control uint8
	status  string
}

// New creates the panel task. qpu must carry send rights for the engine
// service endpoint, render recv rights for the snapshot feed.
func New(disp hal.Display, in hal.Input, qpu, render, log kernel.Capability) *Task {
	return &Task{disp: disp, in: in, qpu: qpu, render: render, log: log, control: 1}
}

func (t *Task) Run(ctx *kernel.Context) {
	if t.disp != nil {
		t.fb = t.disp.Framebuffer()
	}
	if t.in != nil {
		if kbd := t.in.Keyboard(); kbd != nil {
			t.events = kbd.Events()
		}
	}
	renderCh, ok := ctx.RecvChan(t.render)
	if !ok || t.fb == nil {
		return
	}

	t.client = qpuclient.NewClient(ctx, t.qpu)
	t.probs[0] = 1
	t.status = "ready"
	t.draw()

	for {
		select {
		case msg, open := <-renderCh:
			if !open {
				return
			}
			if proto.Kind(msg.Kind) != proto.MsgState {
				continue
			}
			if q, o, has, ok := proto.DecodeStatePayload(msg.Data[:msg.Len], &t.probs); ok {
				t.lastQubit, t.lastOutcome, t.hasLast = q, o, has
				t.draw()
			}

		case ev, open := <-t.events:
			if !open {
				return
			}
			if !ev.Press {
				continue
			}
			if t.handleKey(ctx, ev) {
				t.draw()
			}
		}
	}
}

// handleKey reacts to one key event and reports whether the panel needs
// a redraw. Gate results arrive asynchronously via the snapshot feed,
// so only selection/status changes redraw here.
func (t *Task) handleKey(ctx *kernel.Context, ev hal.KeyEvent) bool {
	switch ev.Code {
	case hal.KeyUp:
		t.target = (t.target + 1) % qsim.Qubits
		t.status = fmt.Sprintf("target q%d", t.target)
		return true
	case hal.KeyDown:
		t.target = (t.target + qsim.Qubits - 1) % qsim.Qubits
		t.status = fmt.Sprintf("target q%d", t.target)
		return true
	case hal.KeyRight:
		t.control = (t.control + 1) % qsim.Qubits
		t.status = fmt.Sprintf("control q%d", t.control)
		return true
	case hal.KeyLeft:
		t.control = (t.control + qsim.Qubits - 1) % qsim.Qubits
		t.status = fmt.Sprintf("control q%d", t.control)
		return true
	}

	var err error
	switch ev.Rune {
	case 'x':
		err = t.client.Gate(proto.GateX, t.target)
		t.status = fmt.Sprintf("X q%d", t.target)
	case 'y':
		err = t.client.Gate(proto.GateY, t.target)
		t.status = fmt.Sprintf("Y q%d", t.target)
	case 'z':
		err = t.client.Gate(proto.GateZ, t.target)
		t.status = fmt.Sprintf("Z q%d", t.target)
	case 'h':
		err = t.client.Gate(proto.GateH, t.target)
		t.status = fmt.Sprintf("H q%d", t.target)
	case 't':
		err = t.client.Gate(proto.GateT, t.target)
		t.status = fmt.Sprintf("T q%d", t.target)
	case 'c':
		if t.control == t.target {
			t.status = "control == target"
			return true
		}
		err = t.client.ControlledX(t.control, t.target)
		t.status = fmt.Sprintf("CX q%d>q%d", t.control, t.target)
	case 'm':
		var outcome uint8
		outcome, _, _, err = t.client.Measure(t.target)
		if err == nil {
			t.status = fmt.Sprintf("M q%d -> %d", t.target, outcome)
		}
	case 'r':
		err = t.client.Reset()
		t.status = "reset"
	default:
		return false
	}

	if err != nil {
		t.status = "error"
		if t.log.Valid() {
			ctx.SendTo(t.log, uint16(proto.MsgLogLine), proto.LogLinePayload([]byte("qpanel: "+err.Error())))
		}
	}
	return true
}

// probQubitOne sums the snapshot probabilities of states with bit q set.
func (t *Task) probQubitOne(q uint8) float32 {
	mask := 1 << q
	var sum float32
	for i := 0; i < qsim.States; i++ {
		if i&mask != 0 {
			sum += t.probs[i]
		}
	}
	return sum
}

func (t *Task) maxProb() float32 {
	var max float32
	for i := 0; i < qsim.States; i++ {
		if t.probs[i] > max {
			max = t.probs[i]
		}
	}
	return max
}
