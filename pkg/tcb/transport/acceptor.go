package transport

import (
	"net"
	"sync"

	"github.com/jabolina/tcb/pkg/tcb/definition"
)

// acceptor listens for inbound connections from every other peer and spawns
// a reader goroutine for each, mirroring the Rust source's acceptor thread.
type acceptor struct {
	listener   net.Listener
	localID    int
	peerCount  int
	out        chan<- Inbound
	barrier    *startBarrier
	log        definition.Logger
	readersMu  sync.Mutex
	readerConn []net.Conn
}

func newAcceptor(localAddr string, localID, peerCount int, out chan<- Inbound, barrier *startBarrier, log definition.Logger) (*acceptor, error) {
	ln, err := net.Listen("tcp", localAddr)
	if err != nil {
		return nil, err
	}
	return &acceptor{listener: ln, localID: localID, peerCount: peerCount, out: out, barrier: barrier, log: log}, nil
}

// run accepts peerCount connections then stops accepting; call on its own
// goroutine.
func (a *acceptor) run() {
	for connected := 0; connected < a.peerCount; {
		conn, err := a.listener.Accept()
		if err != nil {
			if a.log != nil {
				a.log.Errorf("acceptor: %v", err)
			}
			return
		}

		peerID, err := finishHandshake(conn)
		if err != nil {
			if a.log != nil {
				a.log.Errorf("acceptor: handshake failed: %v", err)
			}
			conn.Close()
			continue
		}
		if err := sendHandshake(conn, a.localID); err != nil {
			if a.log != nil {
				a.log.Errorf("acceptor: handshake reply failed: %v", err)
			}
			conn.Close()
			continue
		}

		r := newReader(conn, a.localID, peerID, a.out, a.barrier, a.log)
		a.readersMu.Lock()
		a.readerConn = append(a.readerConn, conn)
		a.readersMu.Unlock()
		go r.run()

		connected++
	}
}

func (a *acceptor) Close() {
	a.listener.Close()
	a.readersMu.Lock()
	defer a.readersMu.Unlock()
	for _, c := range a.readerConn {
		c.Close()
	}
}
