package transport

import (
	"net"

	"github.com/jabolina/tcb/pkg/tcb/definition"
	"github.com/jabolina/tcb/pkg/tcb/types"
)

// Inbound is a message the transport handed up from a peer's stream.
type Inbound struct {
	PeerID int
	Body   []byte
}

// reader owns one inbound directed stream from a single peer, forwarding
// decoded message bodies to the dispatcher's inbound channel until the
// stream sends Close or errors.
type reader struct {
	conn    net.Conn
	codec   *wireCodec
	localID int
	peerID  int
	out     chan<- Inbound
	barrier *startBarrier
	log     definition.Logger
}

func newReader(conn net.Conn, localID, peerID int, out chan<- Inbound, barrier *startBarrier, log definition.Logger) *reader {
	return &reader{
		conn:    conn,
		codec:   newWireCodec(conn, conn),
		localID: localID,
		peerID:  peerID,
		out:     out,
		barrier: barrier,
		log:     log,
	}
}

func (r *reader) run() {
	r.barrier.Arrive()

	for {
		env, err := r.codec.Read()
		if err != nil {
			if r.log != nil {
				r.log.Warnf("%d is closing a connection with %d: %v", r.localID, r.peerID, err)
			}
			return
		}

		switch env.Kind {
		case types.EnvelopeMessage:
			r.out <- Inbound{PeerID: r.peerID, Body: env.Body}
		case types.EnvelopeClose:
			return
		default:
			if r.log != nil {
				r.log.Errorf("reader received unexpected envelope kind %s", env.Kind)
			}
			return
		}
	}
}
