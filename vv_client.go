package tcb

import (
	"fmt"
	"sync"
	"time"

	"github.com/jabolina/tcb/pkg/tcb/config"
	"github.com/jabolina/tcb/pkg/tcb/definition"
	"github.com/jabolina/tcb/pkg/tcb/dispatch"
	"github.com/jabolina/tcb/pkg/tcb/metrics"
	"github.com/jabolina/tcb/pkg/tcb/transport"
	"github.com/jabolina/tcb/pkg/tcb/types"
	"github.com/jabolina/tcb/pkg/tcb/vvengine"
)

// VVClient is the version-vector-backed Client. StableAck is a no-op: the
// vv engine reclaims its own stability bookkeeping as soon as a dot
// stabilizes, unlike the graph engine's arena.
type VVClient struct {
	mu        sync.Mutex
	localID   int
	messageID uint64
	v         types.VersionVector

	dispatcher *dispatch.VVDispatcher
	trans      *transport.Transport
	receive    <-chan types.ClientMessage
}

// NewVVClient builds a vector-clock middleware instance for localID among
// peerAddresses. It blocks until the local peer has a connection to, and
// from, every other peer.
func NewVVClient(localID int, localAddr string, peerAddresses []string, cfg config.Configuration, log definition.Logger) (*VVClient, error) {
	if log == nil {
		log = definition.NewDefaultLogger(fmt.Sprintf("vv-%d", localID))
	}
	mtx := metrics.NewUnregistered(localID)
	peerNumber := len(peerAddresses) + 1

	clientCh := make(chan types.ClientMessage, 64)
	engine := vvengine.New(localID, peerNumber, clientCh, cfg, log, mtx)

	trans, err := transport.New(localID, localAddr, peerAddresses, cfg, log, mtx)
	if err != nil {
		return nil, err
	}

	d := dispatch.NewVVDispatcher(engine, trans, clientCh, log)
	go d.Run()

	return &VVClient{
		localID:    localID,
		v:          types.NewVersionVector(peerNumber),
		dispatcher: d,
		trans:      trans,
		receive:    clientCh,
	}, nil
}

// Send broadcasts payload, tagging it with the client's own view of the
// version vector after bumping its own entry.
func (c *VVClient) Send(payload []byte) error {
	c.mu.Lock()
	c.messageID++
	c.v[c.localID] = c.messageID
	msg := types.VVMessage{ID: int(c.messageID), Payload: payload, VV: c.v.Clone()}
	c.mu.Unlock()

	c.dispatcher.Events <- dispatch.VVEvent{Kind: dispatch.EventClient, ClientMessage: msg}
	return nil
}

// Recv blocks until a message is delivered or becomes stable.
func (c *VVClient) Recv() (GenericReturn, error) {
	msg, ok := <-c.receive
	if !ok || msg.Kind == types.Empty {
		return GenericReturn{}, ErrClosed
	}
	return c.handleDelivery(msg), nil
}

// TryRecv returns ErrEmpty immediately if nothing is pending.
func (c *VVClient) TryRecv() (GenericReturn, error) {
	select {
	case msg, ok := <-c.receive:
		if !ok || msg.Kind == types.Empty {
			return GenericReturn{}, ErrClosed
		}
		return c.handleDelivery(msg), nil
	default:
		return GenericReturn{}, ErrEmpty
	}
}

// RecvTimeout blocks up to timeout for a delivery or stability notification.
func (c *VVClient) RecvTimeout(timeout time.Duration) (GenericReturn, error) {
	select {
	case msg, ok := <-c.receive:
		if !ok || msg.Kind == types.Empty {
			return GenericReturn{}, ErrClosed
		}
		return c.handleDelivery(msg), nil
	case <-time.After(timeout):
		return GenericReturn{}, ErrTimeout
	}
}

// StableAck is a no-op for the vv engine.
func (c *VVClient) StableAck(types.Dot) {}

// End signals and waits for the middleware to terminate.
func (c *VVClient) End() {
	c.dispatcher.Events <- dispatch.VVEvent{Kind: dispatch.EventEnd}
	for msg := range c.receive {
		if msg.Kind == types.Empty {
			break
		}
	}
	c.trans.Close()
}

func (c *VVClient) handleDelivery(msg types.ClientMessage) GenericReturn {
	if msg.Kind == types.Delivery {
		c.mu.Lock()
		c.v[msg.Dot.ID] = msg.VV[msg.Dot.ID]
		c.mu.Unlock()
	}
	return toGenericReturn(msg)
}
