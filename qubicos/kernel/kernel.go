// Package kernel provides a small cooperative kernel: goroutine-backed
// tasks plus capability-guarded message endpoints.
package kernel

import (
	"runtime/debug"
	"sync"
)

const (
	maxTasks     = 32
	maxEndpoints = 32
	mailboxSlots = 8
)

type TaskID uint8

// Rights define which operations are allowed for a capability.
type Rights uint8

const (
	RightSend Rights = 1 << iota
	RightRecv
)

// Endpoint identifies an IPC destination.
type Endpoint uint8

// Capability grants access to an IPC endpoint.
//
// It is opaque by construction (no exported fields) and may be
// transferred via IPC, typically as a reply destination.
type Capability struct {
	ep     Endpoint
	rights Rights
}

func (c Capability) valid() bool { return c.rights != 0 }

func (c Capability) Valid() bool { return c.valid() }

func (c Capability) canSend() bool { return c.rights&RightSend != 0 }
func (c Capability) canRecv() bool { return c.rights&RightRecv != 0 }

// Restrict returns a capability with a reduced set of rights.
func (c Capability) Restrict(rights Rights) Capability {
	if !c.valid() {
		return Capability{}
	}
	r := c.rights & rights
	if r == 0 {
		return Capability{}
	}
	return Capability{ep: c.ep, rights: r}
}

// MaxMessageBytes is the maximum payload size for IPC messages.
//
// Larger transfers should use shared buffers + notify protocols, not
// mailbox copies.
const MaxMessageBytes = 128

// Message is a fixed-size IPC envelope.
type Message struct {
	From Endpoint
	To   Endpoint
	Kind uint16
	Len  uint16
	Data [MaxMessageBytes]byte
	Cap  Capability
}

// SendResult describes the outcome of a send attempt.
type SendResult uint8

const (
	SendOK SendResult = iota
	SendErrInvalidFromCap
	SendErrInvalidToCap
	SendErrFromNoSendRight
	SendErrToNoSendRight
	SendErrNoEndpoint
	SendErrPayloadTooLarge
	SendErrQueueFull
)

func (r SendResult) String() string {
	switch r {
	case SendOK:
		return "ok"
	case SendErrInvalidFromCap:
		return "invalid from capability"
	case SendErrInvalidToCap:
		return "invalid to capability"
	case SendErrFromNoSendRight:
		return "from capability has no send right"
	case SendErrToNoSendRight:
		return "to capability has no send right"
	case SendErrNoEndpoint:
		return "no such endpoint"
	case SendErrPayloadTooLarge:
		return "payload too large"
	case SendErrQueueFull:
		return "queue full"
	default:
		return "unknown"
	}
}

// Task is a unit of execution. Run is called once on its own goroutine
// and should block on Context receives or ticks rather than spinning.
type Task interface {
	Run(*Context)
}

// PanicInfo describes a task panic.
type PanicInfo struct {
	TaskID TaskID
	Value  any
	Stack  []byte
}

var panicHandler func(PanicInfo)

// SetPanicHandler installs a handler for task panics. Call it once at
// boot, before any tasks are added.
func SetPanicHandler(fn func(PanicInfo)) { panicHandler = fn }

type endpointState struct {
	ch chan Message
}

// Kernel routes messages between endpoint mailboxes and fans out the
// platform tick to waiting tasks. Sends never block: a full mailbox
// drops with SendErrQueueFull and the sender decides whether to retry.
type Kernel struct {
	mu            sync.Mutex
	endpoints     [maxEndpoints]endpointState
	endpointCount Endpoint
	taskCount     TaskID

	tickMu   sync.Mutex
	tickCond *sync.Cond
	tick     uint64
}

// New creates a kernel instance.
func New() *Kernel {
	k := &Kernel{}
	k.tickCond = sync.NewCond(&k.tickMu)
	return k
}

// NewEndpoint allocates a new endpoint and returns a capability for it.
func (k *Kernel) NewEndpoint(rights Rights) Capability {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.endpointCount >= maxEndpoints {
		return Capability{}
	}
	ep := k.endpointCount
	k.endpointCount++
	k.endpoints[ep] = endpointState{ch: make(chan Message, mailboxSlots)}
	return Capability{ep: ep, rights: rights}
}

// AddTask registers a task and starts it on its own goroutine.
func (k *Kernel) AddTask(t Task) TaskID {
	k.mu.Lock()
	if k.taskCount >= maxTasks || t == nil {
		k.mu.Unlock()
		return 0
	}
	id := k.taskCount
	k.taskCount++
	k.mu.Unlock()

	go func() {
		defer func() {
			if v := recover(); v != nil && panicHandler != nil {
				panicHandler(PanicInfo{TaskID: id, Value: v, Stack: debug.Stack()})
			}
		}()
		t.Run(&Context{k: k, taskID: id})
	}()
	return id
}

// TickTo advances the kernel tick to seq and wakes tasks blocked in
// WaitTick. Ticks only move forward.
func (k *Kernel) TickTo(seq uint64) {
	k.tickMu.Lock()
	if seq > k.tick {
		k.tick = seq
		k.tickCond.Broadcast()
	}
	k.tickMu.Unlock()
}

func (k *Kernel) nowTick() uint64 {
	k.tickMu.Lock()
	defer k.tickMu.Unlock()
	return k.tick
}

func (k *Kernel) waitTick(after uint64) uint64 {
	k.tickMu.Lock()
	defer k.tickMu.Unlock()
	for k.tick <= after {
		k.tickCond.Wait()
	}
	return k.tick
}

func (k *Kernel) send(from Endpoint, to Endpoint, kind uint16, payload []byte, xfer Capability) (res SendResult) {
	if len(payload) > MaxMessageBytes {
		return SendErrPayloadTooLarge
	}

	k.mu.Lock()
	if to >= k.endpointCount {
		k.mu.Unlock()
		return SendErrNoEndpoint
	}
	ch := k.endpoints[to].ch
	k.mu.Unlock()
	if ch == nil {
		return SendErrNoEndpoint
	}

	var msg Message
	msg.From = from
	msg.To = to
	msg.Kind = kind
	msg.Len = uint16(len(payload))
	copy(msg.Data[:], payload)
	msg.Cap = xfer

	// A closed mailbox means the endpoint is gone; report it the same
	// way as a missing one.
	defer func() {
		if recover() != nil {
			res = SendErrNoEndpoint
		}
	}()
	select {
	case ch <- msg:
		return SendOK
	default:
		return SendErrQueueFull
	}
}
