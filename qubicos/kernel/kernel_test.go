package kernel

import (
	"testing"
	"time"
)

func TestSendRecvRoundTrip(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	if !ep.Valid() {
		t.Fatal("expected valid capability")
	}

	ctx := &Context{k: k, taskID: 1}
	res := ctx.SendToCapResult(ep.Restrict(RightSend), 7, []byte("hi"), Capability{})
	if res != SendOK {
		t.Fatalf("send: %s", res)
	}

	msg, ok := ctx.Recv(ep.Restrict(RightRecv))
	if !ok {
		t.Fatal("recv failed")
	}
	if msg.Kind != 7 || string(msg.Data[:msg.Len]) != "hi" {
		t.Fatalf("kind=%d payload=%q", msg.Kind, msg.Data[:msg.Len])
	}
}

func TestRestrictStripsRights(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	ctx := &Context{k: k, taskID: 1}

	sendOnly := ep.Restrict(RightSend)
	if _, ok := ctx.TryRecv(sendOnly); ok {
		t.Fatal("recv allowed through send-only capability")
	}

	recvOnly := ep.Restrict(RightRecv)
	if res := ctx.SendToCapResult(recvOnly, 1, nil, Capability{}); res != SendErrToNoSendRight {
		t.Fatalf("expected SendErrToNoSendRight, got %s", res)
	}

	if c := ep.Restrict(0); c.Valid() {
		t.Fatal("restrict to zero rights produced a valid capability")
	}
}

func TestSendQueueFull(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	ctx := &Context{k: k, taskID: 1}

	send := ep.Restrict(RightSend)
	for i := 0; i < mailboxSlots; i++ {
		if res := ctx.SendToCapResult(send, 1, nil, Capability{}); res != SendOK {
			t.Fatalf("send %d: %s", i, res)
		}
	}
	if res := ctx.SendToCapResult(send, 1, nil, Capability{}); res != SendErrQueueFull {
		t.Fatalf("expected SendErrQueueFull, got %s", res)
	}
}

func TestSendPayloadTooLarge(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	ctx := &Context{k: k, taskID: 1}

	big := make([]byte, MaxMessageBytes+1)
	if res := ctx.SendToCapResult(ep.Restrict(RightSend), 1, big, Capability{}); res != SendErrPayloadTooLarge {
		t.Fatalf("expected SendErrPayloadTooLarge, got %s", res)
	}
}

func TestCapabilityTransfer(t *testing.T) {
	k := New()
	svc := k.NewEndpoint(RightSend | RightRecv)
	reply := k.NewEndpoint(RightSend | RightRecv)
	ctx := &Context{k: k, taskID: 1}

	res := ctx.SendToCapResult(svc.Restrict(RightSend), 2, nil, reply.Restrict(RightSend))
	if res != SendOK {
		t.Fatalf("send: %s", res)
	}

	msg, ok := ctx.Recv(svc.Restrict(RightRecv))
	if !ok {
		t.Fatal("recv failed")
	}
	if !msg.Cap.Valid() {
		t.Fatal("transferred capability invalid")
	}
	if res := ctx.SendToCapResult(msg.Cap, 3, []byte("pong"), Capability{}); res != SendOK {
		t.Fatalf("reply: %s", res)
	}
	back, ok := ctx.Recv(reply.Restrict(RightRecv))
	if !ok || back.Kind != 3 {
		t.Fatalf("reply not delivered: ok=%v kind=%d", ok, back.Kind)
	}
}

func TestRecvClosedEndpoint(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	ctx := &Context{k: k, taskID: 1}

	close(k.endpoints[ep.ep].ch)

	if _, ok := ctx.Recv(ep.Restrict(RightRecv)); ok {
		t.Fatal("expected Recv to fail after channel close")
	}
	if res := ctx.SendToCapResult(ep.Restrict(RightSend), 1, nil, Capability{}); res != SendErrNoEndpoint {
		t.Fatalf("expected SendErrNoEndpoint, got %s", res)
	}
}

type panicTask struct{}

func (panicTask) Run(*Context) { panic("boom") }

func TestPanicHandlerSeesTaskPanics(t *testing.T) {
	got := make(chan PanicInfo, 1)
	SetPanicHandler(func(info PanicInfo) { got <- info })
	defer SetPanicHandler(nil)

	k := New()
	k.AddTask(panicTask{})

	select {
	case info := <-got:
		if info.Value != "boom" {
			t.Fatalf("panic value = %v, want boom", info.Value)
		}
		if len(info.Stack) == 0 {
			t.Fatal("panic stack missing")
		}
	case <-time.After(time.Second):
		t.Fatal("panic handler never ran")
	}
}

func TestTickWakesWaiters(t *testing.T) {
	k := New()
	ctx := &Context{k: k, taskID: 1}

	got := make(chan uint64, 1)
	go func() {
		got <- ctx.WaitTick(0)
	}()

	time.Sleep(10 * time.Millisecond)
	k.TickTo(5)

	select {
	case v := <-got:
		if v != 5 {
			t.Fatalf("WaitTick returned %d, want 5", v)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitTick never woke")
	}

	// Ticks never move backward.
	k.TickTo(3)
	if n := ctx.NowTick(); n != 5 {
		t.Fatalf("NowTick=%d after stale TickTo, want 5", n)
	}
}
