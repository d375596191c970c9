// Package dispatch hosts the single-threaded event loops that own an
// engine exclusively, gluing the client facade and the transport layer to
// the graph and vector-clock engines. Grounded on the Rust source's
// middleware_thread.rs for both variants, which are near-duplicates of each
// other by design: each engine type needs its own wire message, so keeping
// two small loops reads clearer than one generic loop threading interface{}
// through the hot path.
package dispatch

import "github.com/jabolina/tcb/pkg/tcb/types"

// EventKind discriminates what a dispatcher loop iteration is reacting to.
type EventKind uint8

const (
	// EventClient is a broadcast request from the local client.
	EventClient EventKind = iota
	// EventPeer is a message that arrived from another peer.
	EventPeer
	// EventStableAck is the client acknowledging a stable dot (graph engine
	// only; harmless no-op for the vv engine).
	EventStableAck
	// EventEnd asks the dispatcher to tear down.
	EventEnd
)

// GraphEvent is the event union the graph dispatcher loop consumes.
type GraphEvent struct {
	Kind EventKind

	// Set for EventClient: the message built by the client facade, with
	// Dot and Context already populated.
	ClientMessage types.GraphMessage

	// Set for EventPeer: the raw bytes read off a peer's stream.
	PeerBody []byte

	// Set for EventStableAck.
	StableDot types.Dot
}

// VVEvent is the event union the vector-clock dispatcher loop consumes.
type VVEvent struct {
	Kind EventKind

	// Set for EventClient: the message built by the client facade, with VV
	// already populated.
	ClientMessage types.VVMessage

	// Set for EventPeer.
	PeerID   int
	PeerBody []byte
}
