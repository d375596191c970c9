package dispatch

import (
	"testing"
	"time"

	"github.com/jabolina/tcb/pkg/tcb/config"
	"github.com/jabolina/tcb/pkg/tcb/graphengine"
	"github.com/jabolina/tcb/pkg/tcb/transport"
	"github.com/jabolina/tcb/pkg/tcb/types"
)

func TestGraphDispatcher_ClientSendThenEnd(t *testing.T) {
	cfg := config.Default()
	clientCh := make(chan types.ClientMessage, 8)
	engine := graphengine.New(0, 1, clientCh, cfg, nil, nil)

	trans, err := transport.New(0, "127.0.0.1:0", nil, cfg, nil, nil)
	if err != nil {
		t.Fatalf("transport.New: %v", err)
	}

	d := NewGraphDispatcher(engine, trans, clientCh, nil)
	go d.Run()

	d.Events <- GraphEvent{Kind: EventClient, ClientMessage: types.GraphMessage{
		Dot:     types.NewDot(0, 1),
		Payload: []byte("solo broadcast"),
	}}

	// A single-peer group never self-delivers; the client channel should
	// stay empty until End.
	select {
	case m := <-clientCh:
		t.Fatalf("unexpected message before End: %+v", m)
	case <-time.After(50 * time.Millisecond):
	}

	d.Events <- GraphEvent{Kind: EventEnd}

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
