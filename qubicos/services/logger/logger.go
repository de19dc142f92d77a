// Package logger drains log-line messages into the platform log sink.
package logger

import (
	"qubic/hal"
	"qubic/qubicos/kernel"
	"qubic/qubicos/proto"
)

type Service struct {
	log hal.Logger
	ep  kernel.Capability
}

func New(log hal.Logger, ep kernel.Capability) *Service {
	return &Service{log: log, ep: ep}
}

func (s *Service) Run(ctx *kernel.Context) {
	ch, ok := ctx.RecvChan(s.ep)
	if !ok || s.log == nil {
		return
	}
	for msg := range ch {
		if proto.Kind(msg.Kind) != proto.MsgLogLine {
			continue
		}
		s.log.WriteLineBytes(msg.Data[:msg.Len])
	}
}
