// Package qpu provides client helpers for talking to the qpu service.
//
// A Client owns one private reply endpoint and tags every request with
// an id, so stale or foreign replies on the endpoint are skipped rather
// than misattributed.
package qpu

import (
	"fmt"

	"qubic/qubicos/kernel"
	"qubic/qubicos/proto"
)

type Client struct {
	ctx *kernel.Context
	svc kernel.Capability

	reply  kernel.Capability
	nextID uint32
}

// NewClient wraps a send capability for the qpu service endpoint.
func NewClient(ctx *kernel.Context, svc kernel.Capability) *Client {
	return &Client{ctx: ctx, svc: svc}
}

func (c *Client) ensureReply() error {
	if c.reply.Valid() {
		return nil
	}
	c.reply = c.ctx.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	if !c.reply.Valid() {
		return fmt.Errorf("qpu client: allocate reply endpoint")
	}
	return nil
}

func (c *Client) send(kind proto.Kind, payload []byte) error {
	res := c.ctx.SendToCapResult(c.svc, uint16(kind), payload, c.reply.Restrict(kernel.RightSend))
	if res != kernel.SendOK {
		return fmt.Errorf("qpu send %s: %s", kind, res)
	}
	return nil
}

// recvMatch blocks until a reply of the wanted kind carrying id
// arrives, surfacing matching MsgError replies as errors.
func (c *Client) recvMatch(want proto.Kind, id uint32, match func(kernel.Message) (uint32, bool)) (kernel.Message, error) {
	recv := c.reply.Restrict(kernel.RightRecv)
	for {
		msg, ok := c.ctx.Recv(recv)
		if !ok {
			return kernel.Message{}, fmt.Errorf("qpu reply endpoint closed")
		}
		switch proto.Kind(msg.Kind) {
		case want:
			got, ok := match(msg)
			if ok && got == id {
				return msg, nil
			}
		case proto.MsgError:
			code, ref, reqID, ok := proto.DecodeErrorPayload(msg.Data[:msg.Len])
			if !ok {
				return kernel.Message{}, fmt.Errorf("qpu error: bad payload")
			}
			if reqID == 0 || reqID == id {
				return kernel.Message{}, fmt.Errorf("qpu error: code=%s ref=%s", code, ref)
			}
		}
	}
}

func (c *Client) id() uint32 {
	c.nextID++
	if c.nextID == 0 {
		c.nextID++
	}
	return c.nextID
}

// Gate applies a single-qubit gate to qubit q. Use ControlledX for the
// two-qubit gate.
func (c *Client) Gate(gate proto.GateCode, q uint8) error {
	return c.gate(gate, q, proto.NoControl)
}

// ControlledX applies the controlled-X gate.
func (c *Client) ControlledX(control, target uint8) error {
	return c.gate(proto.GateCX, target, control)
}

func (c *Client) gate(gate proto.GateCode, qubit, control uint8) error {
	if err := c.ensureReply(); err != nil {
		return err
	}
	id := c.id()
	if err := c.send(proto.MsgGate, proto.GatePayload(id, gate, qubit, control)); err != nil {
		return err
	}
	_, err := c.recvMatch(proto.MsgGateResp, id, func(m kernel.Message) (uint32, bool) {
		got, _, _, _, ok := proto.DecodeGateRespPayload(m.Data[:m.Len])
		return got, ok
	})
	return err
}

// Measure collapses qubit q. measured is false when the qubit was out
// of range (the engine's silent no-op policy).
func (c *Client) Measure(q uint8) (outcome uint8, measured bool, p1 float32, err error) {
	if err := c.ensureReply(); err != nil {
		return 0, false, 0, err
	}
	id := c.id()
	if err := c.send(proto.MsgMeasure, proto.MeasurePayload(id, q)); err != nil {
		return 0, false, 0, err
	}
	msg, err := c.recvMatch(proto.MsgMeasureResp, id, func(m kernel.Message) (uint32, bool) {
		got, _, _, _, _, ok := proto.DecodeMeasureRespPayload(m.Data[:m.Len])
		return got, ok
	})
	if err != nil {
		return 0, false, 0, err
	}
	_, _, outcome, measured, p1, _ = proto.DecodeMeasureRespPayload(msg.Data[:msg.Len])
	return outcome, measured, p1, nil
}

// Probe runs a read-only engine query.
func (c *Client) Probe(code proto.ProbeCode, arg uint8) (respArg uint8, flag bool, value float32, err error) {
	if err := c.ensureReply(); err != nil {
		return 0, false, 0, err
	}
	id := c.id()
	if err := c.send(proto.MsgProbe, proto.ProbePayload(id, code, arg)); err != nil {
		return 0, false, 0, err
	}
	msg, err := c.recvMatch(proto.MsgProbeResp, id, func(m kernel.Message) (uint32, bool) {
		got, _, _, _, _, ok := proto.DecodeProbeRespPayload(m.Data[:m.Len])
		return got, ok
	})
	if err != nil {
		return 0, false, 0, err
	}
	_, _, respArg, flag, value, _ = proto.DecodeProbeRespPayload(msg.Data[:msg.Len])
	return respArg, flag, value, nil
}

// Reset returns the register to the ground state.
func (c *Client) Reset() error {
	if err := c.ensureReply(); err != nil {
		return err
	}
	id := c.id()
	if err := c.send(proto.MsgReset, proto.ResetPayload(id)); err != nil {
		return err
	}
	_, err := c.recvMatch(proto.MsgResetResp, id, func(m kernel.Message) (uint32, bool) {
		got, ok := proto.DecodeResetRespPayload(m.Data[:m.Len])
		return got, ok
	})
	return err
}
