package transport

import (
	"net"
	"sync"
	"time"

	"github.com/jabolina/tcb/pkg/tcb/config"
	"github.com/jabolina/tcb/pkg/tcb/definition"
	"github.com/jabolina/tcb/pkg/tcb/metrics"
)

// link is the handle a dispatcher uses to push outgoing payloads to one
// peer's sender goroutine.
type link struct {
	peerID int
	in     chan []byte
}

// connect dials every address in peerAddresses concurrently, retrying each
// until it succeeds, and starts a sender goroutine per connection. It
// mirrors the Rust source's connector::start, which only returns once every
// peer has been reached.
func connect(localID int, peerAddresses []string, cfg config.Configuration, log definition.Logger, mtx *metrics.Collectors) []*link {
	links := make([]*link, len(peerAddresses))
	var wg sync.WaitGroup
	wg.Add(len(peerAddresses))

	for i, addr := range peerAddresses {
		peerID := i
		if i >= localID {
			peerID = i + 1
		}

		go func(i int, addr string, peerID int) {
			defer wg.Done()
			conn := dialUntilConnected(addr)

			in := make(chan []byte, cfg.Batching.MessageNumber*4)
			s, err := newSender(conn, in, localID, cfg, log, mtx)
			if err != nil {
				if log != nil {
					log.Errorf("connector: handshake with %s failed: %v", addr, err)
				}
				conn.Close()
				return
			}
			go s.run()

			links[i] = &link{peerID: peerID, in: in}
		}(i, addr, peerID)
	}

	wg.Wait()
	return links
}

// dialUntilConnected retries a TCP dial until it succeeds, the same
// unbounded retry loop the Rust connector uses while peers start up in
// whatever order the deployment brings them up.
func dialUntilConnected(addr string) net.Conn {
	for {
		conn, err := net.Dial("tcp", addr)
		if err == nil {
			return conn
		}
		time.Sleep(50 * time.Millisecond)
	}
}
