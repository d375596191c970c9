package dispatch

import (
	"github.com/jabolina/tcb/pkg/tcb/definition"
	"github.com/jabolina/tcb/pkg/tcb/transport"
	"github.com/jabolina/tcb/pkg/tcb/types"
	"github.com/jabolina/tcb/pkg/tcb/vvengine"
)

// VVDispatcher is the single-threaded owner of a vector-clock engine.
type VVDispatcher struct {
	engine *vvengine.Engine
	trans  *transport.Transport
	client chan<- types.ClientMessage
	log    definition.Logger

	Events chan VVEvent
	done   chan struct{}
}

// NewVVDispatcher wires an engine to a transport and returns the
// dispatcher; call Run on its own goroutine.
func NewVVDispatcher(engine *vvengine.Engine, trans *transport.Transport, client chan<- types.ClientMessage, log definition.Logger) *VVDispatcher {
	return &VVDispatcher{
		engine: engine,
		trans:  trans,
		client: client,
		log:    log,
		Events: make(chan VVEvent, 64),
		done:   make(chan struct{}),
	}
}

// Run is the dispatcher's event loop.
func (d *VVDispatcher) Run() {
	defer close(d.done)

	for {
		select {
		case in := <-d.trans.Incoming():
			msg, err := types.DecodeVVMessage(in.Body)
			if err != nil {
				if d.log != nil {
					d.log.Errorf("vv dispatcher: failed to decode peer message: %v", err)
				}
				continue
			}
			d.engine.Receive(in.PeerID, msg)

		case ev := <-d.Events:
			switch ev.Kind {
			case EventClient:
				d.engine.Dequeue(ev.ClientMessage)
				encoded, err := types.EncodeVVMessage(ev.ClientMessage)
				if err != nil {
					if d.log != nil {
						d.log.Errorf("vv dispatcher: failed to encode outgoing message: %v", err)
					}
					continue
				}
				d.trans.Broadcast(encoded)

			case EventStableAck:
				// The vv engine reclaims stability bookkeeping on its own as
				// soon as a dot stabilizes; nothing for the client to ack.

			case EventEnd:
				d.client <- types.NewEmpty()
				return
			}
		}
	}
}

// Wait blocks until the dispatcher loop has returned.
func (d *VVDispatcher) Wait() {
	<-d.done
}
