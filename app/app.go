// Package app boots the OS: it wires the kernel, the engine service and
// the front-end tasks on top of a HAL.
package app

import (
	"qubic/hal"
	"qubic/qubicos/kernel"
	"qubic/qubicos/services/logger"
	"qubic/qubicos/services/qpu"
	"qubic/qubicos/services/term"
	"qubic/qubicos/tasks/qnet"
	"qubic/qubicos/tasks/qpanel"
)

type system struct {
	k *kernel.Kernel
}

type Config struct {
	// Console swaps the interactive panel for the scrolling gate/event
	// console.
	Console bool
}

// New initializes and starts the OS with default config.
func New(h hal.HAL) func() error {
	return NewWithConfig(h, Config{})
}

// Run starts the OS and blocks forever (TinyGo/native entrypoint).
func Run(h hal.HAL) {
	_ = New(h)
	select {}
}

func NewWithConfig(h hal.HAL, cfg Config) func() error {
	_ = newSystem(h, cfg)
	return func() error { return nil }
}

func RunWithConfig(h hal.HAL, cfg Config) {
	_ = NewWithConfig(h, cfg)
	select {}
}

func newSystem(h hal.HAL, cfg Config) *system {
	installPanicHandler(h)

	k := kernel.New()

	logEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	qpuEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)

	k.AddTask(logger.New(h.Logger(), logEP.Restrict(kernel.RightRecv)))

	if cfg.Console {
		termEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
		k.AddTask(qpu.New(h.LED(), qpuEP.Restrict(kernel.RightRecv),
			kernel.Capability{}, termEP.Restrict(kernel.RightSend), logEP.Restrict(kernel.RightSend)))
		k.AddTask(term.New(h.Display(), termEP.Restrict(kernel.RightRecv)))
	} else {
		renderEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
		k.AddTask(qpu.New(h.LED(), qpuEP.Restrict(kernel.RightRecv),
			renderEP.Restrict(kernel.RightSend), kernel.Capability{}, logEP.Restrict(kernel.RightSend)))
		k.AddTask(qpanel.New(h.Display(), h.Input(),
			qpuEP.Restrict(kernel.RightSend), renderEP.Restrict(kernel.RightRecv), logEP.Restrict(kernel.RightSend)))
	}

	k.AddTask(qnet.New(h.Network(), qpuEP.Restrict(kernel.RightSend), logEP.Restrict(kernel.RightSend)))

	if ht := h.Time(); ht != nil {
		if ch := ht.Ticks(); ch != nil {
			go func() {
				for seq := range ch {
					k.TickTo(seq)
				}
			}()
		}
	}

	return &system{k: k}
}
