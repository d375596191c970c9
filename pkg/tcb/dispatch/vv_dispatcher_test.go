package dispatch

import (
	"testing"
	"time"

	"github.com/jabolina/tcb/pkg/tcb/config"
	"github.com/jabolina/tcb/pkg/tcb/transport"
	"github.com/jabolina/tcb/pkg/tcb/types"
	"github.com/jabolina/tcb/pkg/tcb/vvengine"
)

func TestVVDispatcher_ClientSendThenEnd(t *testing.T) {
	cfg := config.Default()
	clientCh := make(chan types.ClientMessage, 8)
	engine := vvengine.New(0, 1, clientCh, cfg, nil, nil)

	trans, err := transport.New(0, "127.0.0.1:0", nil, cfg, nil, nil)
	if err != nil {
		t.Fatalf("transport.New: %v", err)
	}

	d := NewVVDispatcher(engine, trans, clientCh, nil)
	go d.Run()

	d.Events <- VVEvent{Kind: EventClient, ClientMessage: types.VVMessage{
		ID:      1,
		Payload: []byte("solo broadcast"),
		VV:      types.VersionVector{1},
	}}

	// A single-peer group never self-delivers, but with stability tracking
	// on its own dot is stable as soon as it is sent: the only message
	// before End is that Stable notification.
	select {
	case m := <-clientCh:
		if m.Kind != types.Stable || m.Dot != types.NewDot(0, 1) {
			t.Fatalf("got %+v before End, want only a Stable notification for (0,1)", m)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the Stable notification of the solo broadcast")
	}

	// EventStableAck is a documented no-op for the vv engine; it shouldn't
	// panic or produce a client notification.
	d.Events <- VVEvent{Kind: EventStableAck}

	d.Events <- VVEvent{Kind: EventEnd}

	select {
	case m := <-clientCh:
		if m.Kind != types.Empty {
			t.Fatalf("Kind = %v, want Empty", m.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the Empty teardown message")
	}

	d.Wait()
	trans.Close()
}
