// Package graphengine implements the dependency-DAG causal delivery
// algorithm (the "graph engine" variant), grounded on the Rust source's
// GRAPH struct in src/graph/middleware/graph.rs.
package graphengine

import (
	"fmt"

	"github.com/jabolina/tcb/pkg/tcb/arena"
	"github.com/jabolina/tcb/pkg/tcb/config"
	"github.com/jabolina/tcb/pkg/tcb/definition"
	"github.com/jabolina/tcb/pkg/tcb/metrics"
	"github.com/jabolina/tcb/pkg/tcb/types"
)

// Engine implements the causal-delivery and causal-stability algorithm over
// a dependency DAG of Nodes. It is not safe for concurrent use; the
// dispatcher that owns an Engine must serialize access to it.
type Engine struct {
	g          *arena.ArrayMap[Node]
	v          []uint64
	dotToIndex map[types.Dot]int
	peerNumber int
	peerIndex  int
	client     chan<- types.ClientMessage
	cfg        config.Configuration
	log        definition.Logger
	metrics    *metrics.Collectors
}

// New builds a graph Engine for peerIndex among peerNumber peers. client is
// the channel the owning dispatcher reads delivery/stability notifications
// from.
func New(peerIndex, peerNumber int, client chan<- types.ClientMessage, cfg config.Configuration, log definition.Logger, mtx *metrics.Collectors) *Engine {
	return &Engine{
		g:          arena.New[Node](),
		v:          make([]uint64, peerNumber),
		dotToIndex: make(map[types.Dot]int),
		peerNumber: peerNumber,
		peerIndex:  peerIndex,
		client:     client,
		cfg:        cfg,
		log:        log,
		metrics:    mtx,
	}
}

// VersionVector returns a snapshot of the engine's locally-delivered vector.
func (e *Engine) VersionVector() types.VersionVector {
	vv := make(types.VersionVector, len(e.v))
	copy(vv, e.v)
	return vv
}

// Dequeue handles a message the local client wants to broadcast: it is
// always immediately deliverable to the local peer (the sender's own
// message never waits on itself). With stability tracking off only the
// local vector is bumped and no node is created; with it on, the message
// enters the graph already in stage DLV and its causal predecessors are
// notified.
func (e *Engine) Dequeue(msg types.GraphMessage) {
	e.v[msg.Dot.ID] = msg.Dot.Counter

	if !e.cfg.TrackCausalStability {
		return
	}

	predecessors := e.unstablePredecessors(msg.Context)

	node := newNode(msg.Dot)
	node.Bits = newBitset(e.peerNumber, true)
	node.Bits.set(msg.Dot.ID, false)
	node.Stage = DLV
	node.Payload = msg.Payload
	node.Context = msg.Context

	idx := e.g.Push(node)
	e.dotToIndex[msg.Dot] = idx

	predIdxs := make([]int, 0, len(predecessors))
	for _, p := range predecessors {
		pIdx := e.indexFor(p)
		predIdxs = append(predIdxs, pIdx)
		pred := e.g.Get(pIdx)
		pred.Successors = append(pred.Successors, idx)
		e.g.Set(pIdx, pred)
	}

	node = e.g.Get(idx)
	node.Predecessors = predIdxs
	e.g.Set(idx, node)

	e.updatestability(e.peerIndex, idx)
	if e.metrics != nil {
		e.metrics.ArenaLive.Set(float64(e.g.Len()))
	}
}

// Receive handles a message arriving from a peer over the transport layer.
func (e *Engine) Receive(msg types.GraphMessage) {
	if e.metrics != nil {
		e.metrics.Received.Inc()
	}

	if e.v[msg.Dot.ID] >= msg.Dot.Counter {
		return
	}

	idx := e.indexFor(msg.Dot)

	if e.g.Get(idx).Stage == RCV {
		return
	}

	predecessors := e.unstablePredecessors(msg.Context)
	predIdxs := make([]int, 0, len(predecessors))
	b := newBitset(e.peerNumber, false)

	for _, p := range predecessors {
		pIdx := e.indexFor(p)
		pred := e.g.Get(pIdx)
		pred.Successors = append(pred.Successors, idx)
		if pred.Stage != DLV {
			b.set(pred.Dot.ID, true)
		}
		e.g.Set(pIdx, pred)
		predIdxs = append(predIdxs, pIdx)
	}

	node := e.g.Get(idx)
	node.Bits = b
	node.Stage = RCV
	node.Payload = msg.Payload
	node.Context = msg.Context
	node.Predecessors = predIdxs
	e.g.Set(idx, node)

	if b.none() {
		e.deliver(idx)
	}
	if e.metrics != nil {
		e.metrics.ArenaLive.Set(float64(e.g.Len()))
	}
}

// DeleteStable discards the bookkeeping for a dot the client has
// acknowledged as stable, freeing its arena slot.
func (e *Engine) DeleteStable(dot types.Dot) {
	idx, ok := e.dotToIndex[dot]
	if !ok {
		panic(fmt.Sprintf("graphengine: deletestable on unknown dot %s", dot))
	}

	node := e.g.Get(idx)
	for _, s := range node.Successors {
		if !e.g.Contains(s) {
			// The successor was already delivered and removed.
			continue
		}
		succ := e.g.Get(s)
		succ.Predecessors = removeValue(succ.Predecessors, idx)
		e.g.Set(s, succ)
	}

	e.g.Remove(idx)
	delete(e.dotToIndex, dot)
	if e.metrics != nil {
		e.metrics.ArenaLive.Set(float64(e.g.Len()))
	}
}

func removeValue(xs []int, v int) []int {
	out := xs[:0]
	for _, x := range xs {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// stable reports whether dot has already been delivered-and-acked-stable or
// is older than anything the local peer still tracks.
func (e *Engine) stable(dot types.Dot) bool {
	if idx, ok := e.dotToIndex[dot]; ok {
		return dot.Counter <= e.v[dot.ID] && e.g.Get(idx).Stage == STB
	}
	return dot.Counter <= e.v[dot.ID]
}

func (e *Engine) unstablePredecessors(context []types.Dot) []types.Dot {
	out := make([]types.Dot, 0, len(context))
	for _, p := range context {
		if !e.stable(p) {
			out = append(out, p)
		}
	}
	return out
}

// indexFor returns the arena slot for dot, creating a placeholder SLT node
// if this is the first time it's mentioned (e.g. as a predecessor of
// something else that arrived first).
func (e *Engine) indexFor(dot types.Dot) int {
	if idx, ok := e.dotToIndex[dot]; ok {
		return idx
	}
	idx := e.g.Push(newNode(dot))
	e.dotToIndex[dot] = idx
	return idx
}

func (e *Engine) deliver(idx int) {
	node := e.g.Get(idx)

	e.client <- types.NewDelivery(node.Payload, node.Dot, node.Context, nil)
	if e.metrics != nil {
		e.metrics.Delivered.Inc()
	}

	j, n := node.Dot.ID, node.Dot.Counter
	e.v[j] = n

	if e.cfg.TrackCausalStability {
		node.Stage = DLV
		b := newBitset(e.peerNumber, true)
		b.set(e.peerIndex, false)
		b.set(j, false)
		node.Bits = b
	}
	e.g.Set(idx, node)

	if e.cfg.TrackCausalStability {
		e.updatestability(j, idx)
	}

	for _, s := range e.g.Get(idx).Successors {
		succ := e.g.Get(s)
		succ.Bits.set(j, false)
		e.g.Set(s, succ)
		if succ.Bits.none() {
			e.deliver(s)
		}
	}

	if !e.cfg.TrackCausalStability {
		e.DeleteStable(e.g.Get(idx).Dot)
	}
}

func (e *Engine) updatestability(j, msgIdx int) {
	for _, p := range e.g.Get(msgIdx).Predecessors {
		pred := e.g.Get(p)
		if pred.Stage != STB && pred.Bits.get(j) {
			pred.Bits.set(j, false)
			none := pred.Bits.none()
			e.g.Set(p, pred)
			if none {
				e.stabilize(p)
			} else {
				e.updatestability(j, p)
			}
		}
	}
}

func (e *Engine) stabilize(msgIdx int) {
	for _, p := range e.g.Get(msgIdx).Predecessors {
		if e.g.Get(p).Stage != STB {
			e.stabilize(p)
		}
	}

	node := e.g.Get(msgIdx)
	node.Stage = STB
	e.g.Set(msgIdx, node)

	e.client <- types.NewStable(node.Dot, nil)
	if e.metrics != nil {
		e.metrics.Stabilized.Inc()
	}
}
