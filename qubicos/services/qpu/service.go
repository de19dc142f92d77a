// Package qpu hosts the statevector engine behind a kernel mailbox.
//
// Every mutation of the register goes through this service's endpoint,
// which is the system's single serialization boundary: clients
// (the panel, the network listener, host tools) never touch the engine
// directly and only ever see probabilities.
package qpu

import (
	"fmt"

	"qubic/hal"
	"qubic/qubicos/kernel"
	"qubic/qubicos/proto"
	"qubic/qubicos/qsim"
)

// normalizeEvery bounds float drift over long gate sequences; a
// defensive Normalize pass runs after this many gates.
const normalizeEvery = 64

type Service struct {
	led    hal.LED
	ep     kernel.Capability
	render kernel.Capability
	feed   kernel.Capability
	log    kernel.Capability

	eng   *qsim.Engine
	gates uint32
}

// New creates the engine service. render, feed and log capabilities are
// optional; invalid ones are skipped.
func New(led hal.LED, ep, render, feed, log kernel.Capability) *Service {
	return &Service{
		led:    led,
		ep:     ep,
		render: render,
		feed:   feed,
		log:    log,
		eng:    qsim.New(),
	}
}

func (s *Service) Run(ctx *kernel.Context) {
	ch, ok := ctx.RecvChan(s.ep)
	if !ok {
		return
	}

	s.publish(ctx)

	for msg := range ch {
		switch proto.Kind(msg.Kind) {
		case proto.MsgGate:
			s.handleGate(ctx, msg)
		case proto.MsgMeasure:
			s.handleMeasure(ctx, msg)
		case proto.MsgProbe:
			s.handleProbe(ctx, msg)
		case proto.MsgReset:
			s.handleReset(ctx, msg)
		default:
			s.reply(ctx, msg, proto.MsgError, proto.ErrorPayload(proto.ErrBadMessage, proto.Kind(msg.Kind), 0))
		}
	}
}

func (s *Service) handleGate(ctx *kernel.Context, msg kernel.Message) {
	id, gate, qubit, control, ok := proto.DecodeGatePayload(msg.Data[:msg.Len])
	if !ok {
		s.reply(ctx, msg, proto.MsgError, proto.ErrorPayload(proto.ErrBadMessage, proto.MsgGate, 0))
		return
	}

	switch gate {
	case proto.GateX:
		s.eng.ApplyX(qubit)
	case proto.GateY:
		s.eng.ApplyY(qubit)
	case proto.GateZ:
		s.eng.ApplyZ(qubit)
	case proto.GateH:
		s.eng.ApplyH(qubit)
	case proto.GateT:
		s.eng.ApplyT(qubit)
	case proto.GateCX:
		s.eng.ApplyControlledX(control, qubit)
	default:
		s.reply(ctx, msg, proto.MsgError, proto.ErrorPayload(proto.ErrBadMessage, proto.MsgGate, id))
		return
	}

	s.gates++
	if s.gates%normalizeEvery == 0 {
		s.eng.Normalize()
	}

	if gate == proto.GateCX {
		s.event(ctx, fmt.Sprintf("%s q%d>q%d", gate, control, qubit))
	} else {
		s.event(ctx, fmt.Sprintf("%s q%d", gate, qubit))
	}
	s.publish(ctx)
	s.reply(ctx, msg, proto.MsgGateResp, proto.GateRespPayload(id, gate, qubit, control))
}

func (s *Service) handleMeasure(ctx *kernel.Context, msg kernel.Message) {
	id, qubit, ok := proto.DecodeMeasurePayload(msg.Data[:msg.Len])
	if !ok {
		s.reply(ctx, msg, proto.MsgError, proto.ErrorPayload(proto.ErrBadMessage, proto.MsgMeasure, 0))
		return
	}

	outcome, measured := s.eng.Measure(qubit)
	p1 := float32(s.eng.ProbabilityQubitIsOne(qubit))

	if measured && s.led != nil {
		if outcome == 1 {
			s.led.High()
		} else {
			s.led.Low()
		}
	}

	if measured {
		s.event(ctx, fmt.Sprintf("M q%d -> %d", qubit, outcome))
		s.publish(ctx)
	}
	s.reply(ctx, msg, proto.MsgMeasureResp, proto.MeasureRespPayload(id, qubit, outcome, measured, p1))
}

func (s *Service) handleProbe(ctx *kernel.Context, msg kernel.Message) {
	id, code, arg, ok := proto.DecodeProbePayload(msg.Data[:msg.Len])
	if !ok {
		s.reply(ctx, msg, proto.MsgError, proto.ErrorPayload(proto.ErrBadMessage, proto.MsgProbe, 0))
		return
	}

	var value float32
	flag := false
	respArg := arg
	switch code {
	case proto.ProbeBasis:
		value = float32(s.eng.ProbabilityOf(int(arg)))
	case proto.ProbeQubitOne:
		value = float32(s.eng.ProbabilityQubitIsOne(arg))
	case proto.ProbeMax:
		value = float32(s.eng.MaxBasisStateProbability())
	case proto.ProbeRegister:
		value = float32(s.eng.RegisterSize())
	case proto.ProbeLast:
		q, o, has := s.eng.LastMeasurement()
		respArg = q
		value = float32(o)
		flag = has
	default:
		s.reply(ctx, msg, proto.MsgError, proto.ErrorPayload(proto.ErrBadMessage, proto.MsgProbe, id))
		return
	}

	s.reply(ctx, msg, proto.MsgProbeResp, proto.ProbeRespPayload(id, code, respArg, flag, value))
}

func (s *Service) handleReset(ctx *kernel.Context, msg kernel.Message) {
	id, ok := proto.DecodeResetPayload(msg.Data[:msg.Len])
	if !ok {
		s.reply(ctx, msg, proto.MsgError, proto.ErrorPayload(proto.ErrBadMessage, proto.MsgReset, 0))
		return
	}

	s.eng.Reset()
	s.gates = 0
	if s.led != nil {
		s.led.Low()
	}

	if s.feed.Valid() {
		ctx.SendTo(s.feed, uint16(proto.MsgTermClear), nil)
	}
	s.event(ctx, "reset")
	s.publish(ctx)
	s.reply(ctx, msg, proto.MsgResetResp, proto.ResetRespPayload(id))
}

func (s *Service) reply(ctx *kernel.Context, req kernel.Message, kind proto.Kind, payload []byte) {
	if !req.Cap.Valid() {
		return
	}
	ctx.SendToCapResult(req.Cap, uint16(kind), payload, kernel.Capability{})
}

// publish pushes a probability snapshot to the render endpoint. Drops on
// a full mailbox; the next mutation publishes a fresh snapshot.
func (s *Service) publish(ctx *kernel.Context) {
	if !s.render.Valid() {
		return
	}
	var probs64 [qsim.States]float64
	s.eng.Probabilities(&probs64)
	var probs [qsim.States]float32
	for i := range probs64 {
		probs[i] = float32(probs64[i])
	}
	q, o, has := s.eng.LastMeasurement()
	ctx.SendTo(s.render, uint16(proto.MsgState), proto.StatePayload(&probs, q, o, has))
}

// event mirrors one human-readable line to the console feed and the
// log sink. Best-effort on both.
func (s *Service) event(ctx *kernel.Context, line string) {
	if s.feed.Valid() {
		ctx.SendTo(s.feed, uint16(proto.MsgTermWrite), []byte(line+"\n"))
	}
	if s.log.Valid() {
		ctx.SendTo(s.log, uint16(proto.MsgLogLine), proto.LogLinePayload([]byte("qpu: "+line)))
	}
}
