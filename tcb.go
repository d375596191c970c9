// Package tcb is a tagged causal broadcast middleware: every peer in a
// group broadcasts byte payloads to every other peer, and every peer
// delivers causally-related messages in the same relative order. Two
// interchangeable engines implement the ordering guarantee — a dependency
// graph (pkg/tcb/graphengine) and a version-vector scheme
// (pkg/tcb/vvengine) — selected by which constructor the caller uses.
package tcb

import (
	"errors"
	"time"

	"github.com/jabolina/tcb/pkg/tcb/types"
)

// ErrClosed is returned from Recv/TryRecv/RecvTimeout once End has been
// called and the middleware has finished tearing down.
var ErrClosed = errors.New("tcb: middleware closed")

// ErrEmpty is returned from TryRecv when no message is immediately
// available.
var ErrEmpty = errors.New("tcb: no message available")

// ErrTimeout is returned from RecvTimeout when no message arrives before
// the deadline.
var ErrTimeout = errors.New("tcb: recv timeout")

// ReturnKind discriminates a GenericReturn.
type ReturnKind uint8

const (
	// ReturnDelivery is a causally-delivered message.
	ReturnDelivery ReturnKind = iota
	// ReturnStable is a stability notification for a previously delivered
	// message.
	ReturnStable
)

// GenericReturn is what Recv/TryRecv/RecvTimeout hand back, collapsing the
// Rust source's GenericReturn enum into one struct with a discriminant.
type GenericReturn struct {
	Kind ReturnKind

	// Set when Kind == ReturnDelivery.
	Payload []byte

	SenderID  int
	MessageID uint64
}

// Client is the common broadcast API both engines implement. StableAck is a
// no-op on the vv-backed client; the graph-backed client needs it to
// reclaim arena slots once the caller no longer needs a delivered message's
// bookkeeping.
type Client interface {
	// Send broadcasts payload to every other peer in the group.
	Send(payload []byte) error

	// Recv blocks until a message is delivered or becomes stable.
	Recv() (GenericReturn, error)

	// TryRecv returns ErrEmpty immediately if nothing is pending.
	TryRecv() (GenericReturn, error)

	// RecvTimeout blocks up to timeout for a delivery or stability
	// notification.
	RecvTimeout(timeout time.Duration) (GenericReturn, error)

	// StableAck acknowledges a stable dot, only meaningful for the graph
	// engine (see pkg/tcb/graphengine's arena reclamation).
	StableAck(dot types.Dot)

	// End signals and waits for the middleware to terminate.
	End()
}

var (
	_ Client = (*GraphClient)(nil)
	_ Client = (*VVClient)(nil)
)

func toGenericReturn(msg types.ClientMessage) GenericReturn {
	switch msg.Kind {
	case types.Delivery:
		return GenericReturn{Kind: ReturnDelivery, Payload: msg.Payload, SenderID: msg.Dot.ID, MessageID: msg.Dot.Counter}
	case types.Stable:
		return GenericReturn{Kind: ReturnStable, SenderID: msg.Dot.ID, MessageID: msg.Dot.Counter}
	default:
		return GenericReturn{}
	}
}
