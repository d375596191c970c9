package dispatch

import (
	"github.com/jabolina/tcb/pkg/tcb/definition"
	"github.com/jabolina/tcb/pkg/tcb/graphengine"
	"github.com/jabolina/tcb/pkg/tcb/transport"
	"github.com/jabolina/tcb/pkg/tcb/types"
)

// GraphDispatcher is the single-threaded owner of a graph engine. It reads
// client requests and stable acks off Events and peer-delivered bytes off
// the transport's Incoming channel, and is the only goroutine ever allowed
// to touch its Engine.
type GraphDispatcher struct {
	engine *graphengine.Engine
	trans  *transport.Transport
	client chan<- types.ClientMessage
	log    definition.Logger

	Events chan GraphEvent
	done   chan struct{}
}

// NewGraphDispatcher wires an engine to a transport and returns the
// dispatcher; call Run on its own goroutine.
func NewGraphDispatcher(engine *graphengine.Engine, trans *transport.Transport, client chan<- types.ClientMessage, log definition.Logger) *GraphDispatcher {
	return &GraphDispatcher{
		engine: engine,
		trans:  trans,
		client: client,
		log:    log,
		Events: make(chan GraphEvent, 64),
		done:   make(chan struct{}),
	}
}

// Run is the dispatcher's event loop.
func (d *GraphDispatcher) Run() {
	defer close(d.done)

	for {
		select {
		case in := <-d.trans.Incoming():
			msg, err := types.DecodeGraphMessage(in.Body)
			if err != nil {
				if d.log != nil {
					d.log.Errorf("graph dispatcher: failed to decode peer message: %v", err)
				}
				continue
			}
			d.engine.Receive(msg)

		case ev := <-d.Events:
			switch ev.Kind {
			case EventClient:
				d.engine.Dequeue(ev.ClientMessage)
				encoded, err := types.EncodeGraphMessage(ev.ClientMessage)
				if err != nil {
					if d.log != nil {
						d.log.Errorf("graph dispatcher: failed to encode outgoing message: %v", err)
					}
					continue
				}
				d.trans.Broadcast(encoded)

			case EventStableAck:
				d.engine.DeleteStable(ev.StableDot)

			case EventEnd:
				d.client <- types.NewEmpty()
				return
			}
		}
	}
}

// Wait blocks until the dispatcher loop has returned.
func (d *GraphDispatcher) Wait() {
	<-d.done
}
