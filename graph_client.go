package tcb

import (
	"fmt"
	"sync"
	"time"

	"github.com/jabolina/tcb/pkg/tcb/config"
	"github.com/jabolina/tcb/pkg/tcb/definition"
	"github.com/jabolina/tcb/pkg/tcb/dispatch"
	"github.com/jabolina/tcb/pkg/tcb/graphengine"
	"github.com/jabolina/tcb/pkg/tcb/metrics"
	"github.com/jabolina/tcb/pkg/tcb/transport"
	"github.com/jabolina/tcb/pkg/tcb/types"
)

// GraphClient is the dependency-graph-backed Client. Unlike the
// vector-clock client, it must be told once a delivered message is no
// longer needed (StableAck) so the engine can reclaim its arena slot.
type GraphClient struct {
	mu      sync.Mutex
	dot     types.Dot
	context []types.Dot

	dispatcher *dispatch.GraphDispatcher
	trans      *transport.Transport
	receive    <-chan types.ClientMessage
}

// NewGraphClient builds a graph-engine middleware instance for localID
// among peerAddresses (the addresses of every OTHER peer, ordered by
// ascending peer id with localID's slot omitted). It blocks until the local
// peer has a connection to, and from, every other peer.
func NewGraphClient(localID int, localAddr string, peerAddresses []string, cfg config.Configuration, log definition.Logger) (*GraphClient, error) {
	if log == nil {
		log = definition.NewDefaultLogger(fmt.Sprintf("graph-%d", localID))
	}
	mtx := metrics.NewUnregistered(localID)
	peerNumber := len(peerAddresses) + 1

	clientCh := make(chan types.ClientMessage, 64)
	engine := graphengine.New(localID, peerNumber, clientCh, cfg, log, mtx)

	trans, err := transport.New(localID, localAddr, peerAddresses, cfg, log, mtx)
	if err != nil {
		return nil, err
	}

	d := dispatch.NewGraphDispatcher(engine, trans, clientCh, log)
	go d.Run()

	return &GraphClient{
		dot:        types.NewDot(localID, 0),
		dispatcher: d,
		trans:      trans,
		receive:    clientCh,
	}, nil
}

// Send broadcasts payload, tagged with the client's next dot and its
// current causal context.
func (c *GraphClient) Send(payload []byte) error {
	c.mu.Lock()
	c.dot.Counter++
	msg := types.GraphMessage{
		Dot:     c.dot,
		Payload: payload,
		Context: types.CloneDots(c.context),
	}
	c.mu.Unlock()

	c.dispatcher.Events <- dispatch.GraphEvent{Kind: dispatch.EventClient, ClientMessage: msg}

	c.mu.Lock()
	c.context = []types.Dot{c.dot}
	c.mu.Unlock()

	return nil
}

// Recv blocks until a message is delivered or becomes stable.
func (c *GraphClient) Recv() (GenericReturn, error) {
	msg, ok := <-c.receive
	if !ok || msg.Kind == types.Empty {
		return GenericReturn{}, ErrClosed
	}
	return c.handleDelivery(msg), nil
}

// TryRecv returns ErrEmpty immediately if nothing is pending.
func (c *GraphClient) TryRecv() (GenericReturn, error) {
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
func (c *GraphClient) RecvTimeout(timeout time.Duration) (GenericReturn, error) {
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

// StableAck acknowledges dot as no longer needed by the caller, letting the
// graph engine reclaim its arena slot.
func (c *GraphClient) StableAck(dot types.Dot) {
	c.dispatcher.Events <- dispatch.GraphEvent{Kind: dispatch.EventStableAck, StableDot: dot}
}

// End signals and waits for the middleware to terminate.
func (c *GraphClient) End() {
	c.dispatcher.Events <- dispatch.GraphEvent{Kind: dispatch.EventEnd}
	for msg := range c.receive {
		if msg.Kind == types.Empty {
			break
		}
	}
	c.trans.Close()
}

func (c *GraphClient) handleDelivery(msg types.ClientMessage) GenericReturn {
	if msg.Kind == types.Delivery {
		c.mu.Lock()
		c.updateContext(msg.Dot, msg.Context)
		c.mu.Unlock()
	}
	return toGenericReturn(msg)
}

// updateContext drops from the client's pending context any dot the
// delivered message already accounts for, then adds the delivered dot
// itself, matching the Rust source's update_context.
func (c *GraphClient) updateContext(dot types.Dot, messageContext []types.Dot) {
	filtered := c.context[:0]
	for _, d := range c.context {
		if !containsDot(messageContext, d) {
			filtered = append(filtered, d)
		}
	}
	c.context = append(filtered, dot)
}

func containsDot(dots []types.Dot, target types.Dot) bool {
	for _, d := range dots {
		if d == target {
			return true
		}
	}
	return false
}
