package transport

import (
	"net"
	"time"

	"github.com/jabolina/tcb/pkg/tcb/config"
	"github.com/jabolina/tcb/pkg/tcb/definition"
	"github.com/jabolina/tcb/pkg/tcb/metrics"
	"github.com/jabolina/tcb/pkg/tcb/types"
)

// sender owns one outbound directed stream to a single peer. It batches
// outgoing payloads, flushing on a message-count threshold, a byte
// threshold, or an adaptively-doubling idle timeout, mirroring the Rust
// source's sender thread.
type sender struct {
	conn    net.Conn
	out     *bufferedWriter
	in      <-chan []byte
	cfg     config.Configuration
	localID int
	peerID  int
	log     definition.Logger
	mtx     *metrics.Collectors
}

func newSender(conn net.Conn, in <-chan []byte, localID int, cfg config.Configuration, log definition.Logger, mtx *metrics.Collectors) (*sender, error) {
	if err := sendHandshake(conn, localID); err != nil {
		return nil, err
	}
	peerID, err := finishHandshake(conn)
	if err != nil {
		return nil, err
	}
	return &sender{
		conn:    conn,
		out:     newBufferedWriter(conn),
		in:      in,
		cfg:     cfg,
		localID: localID,
		peerID:  peerID,
		log:     log,
		mtx:     mtx,
	}, nil
}

// run is the sender's event loop; call it on its own goroutine.
func (s *sender) run() {
	defer s.conn.Close()

	bufferedMessages := 0
	var bufferedBytes uint64
	senderTimeoutFlag := true
	timeout := s.cfg.StreamSenderTimeout

	for {
		timer := time.NewTimer(timeout)
		select {
		case payload, ok := <-s.in:
			timer.Stop()
			if !ok {
				_ = s.out.Write(types.CloseEnvelope())
				_ = s.out.Flush()
				return
			}

			if !senderTimeoutFlag {
				senderTimeoutFlag = true
				timeout = s.cfg.StreamSenderTimeout
			}

			if err := s.out.Write(types.MessageEnvelope(payload)); err != nil {
				if s.log != nil {
					s.log.Warnf("stream closed between %d and %d: %v", s.localID, s.peerID, err)
				}
				return
			}
			bufferedMessages++
			bufferedBytes += uint64(len(payload))

			senderTimeoutFlag, timeout = s.checkBufferFlush(senderTimeoutFlag, &bufferedMessages, &bufferedBytes, timeout, false)

		case <-timer.C:
			senderTimeoutFlag, timeout = s.checkBufferFlush(senderTimeoutFlag, &bufferedMessages, &bufferedBytes, timeout, true)
		}
	}
}

func (s *sender) checkBufferFlush(flag bool, bufferedMessages *int, bufferedBytes *uint64, timeout time.Duration, errorOccurred bool) (bool, time.Duration) {
	b := s.cfg.Batching
	shouldFlush := *bufferedMessages >= b.MessageNumber || *bufferedBytes > b.Size || (errorOccurred && *bufferedMessages > 0)

	if errorOccurred && flag {
		flag = false
	}

	if shouldFlush {
		if err := s.out.Flush(); err != nil && s.log != nil {
			s.log.Warnf("could not flush stream to %d: %v", s.peerID, err)
		}
		if s.mtx != nil && *bufferedMessages > 0 {
			s.mtx.BatchCount.Observe(float64(*bufferedMessages))
			s.mtx.BatchBytes.Observe(float64(*bufferedBytes))
		}
		*bufferedMessages = 0
		*bufferedBytes = 0
	}

	if errorOccurred {
		timeout = b.NextTimeout(timeout)
	}
	return flag, timeout
}
