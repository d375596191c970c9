// Package vvengine implements the version-vector causal delivery algorithm
// (the "vector-clock engine" variant), grounded on the Rust source's VV
// struct in src/vv/middleware/version_vector.rs.
package vvengine

import (
	"fmt"
	"sort"

	"github.com/jabolina/tcb/pkg/tcb/config"
	"github.com/jabolina/tcb/pkg/tcb/definition"
	"github.com/jabolina/tcb/pkg/tcb/metrics"
	"github.com/jabolina/tcb/pkg/tcb/types"
)

// QueueNode wraps a received message that isn't deliverable yet.
type QueueNode struct {
	J       int
	Message types.VVMessage
}

// StableDot wraps a delivered message waiting to become causally stable,
// plus the arrival-order counter used to replay stabilizations in order.
type StableDot struct {
	Ctr     uint64
	J       int
	Message types.VVMessage
}

// Engine implements causal delivery and stability tracking over version
// vectors and an N x N peer matrix. Not safe for concurrent use.
type Engine struct {
	v    types.VersionVector
	r    types.VersionVector
	dq   []QueueNode
	m    []types.VersionVector
	mcol types.VersionVector // column -> row index currently providing that column's minimum
	sv   types.VersionVector
	smap map[types.Dot]StableDot
	ctr  uint64

	peerIndex  int
	peerNumber int
	client     chan<- types.ClientMessage
	cfg        config.Configuration
	log        definition.Logger
	metrics    *metrics.Collectors
}

// New builds a vector-clock Engine for peerIndex among peerNumber peers.
func New(peerIndex, peerNumber int, client chan<- types.ClientMessage, cfg config.Configuration, log definition.Logger, mtx *metrics.Collectors) *Engine {
	m := make([]types.VersionVector, peerNumber)
	for i := range m {
		m[i] = types.NewVersionVector(peerNumber)
	}

	return &Engine{
		v:          types.NewVersionVector(peerNumber),
		r:          types.NewVersionVector(peerNumber),
		dq:         make([]QueueNode, 0, peerNumber*2),
		m:          m,
		mcol:       types.NewVersionVector(peerNumber),
		sv:         types.NewVersionVector(peerNumber),
		smap:       make(map[types.Dot]StableDot),
		peerIndex:  peerIndex,
		peerNumber: peerNumber,
		client:     client,
		cfg:        cfg,
		log:        log,
		metrics:    mtx,
	}
}

// VersionVector returns a snapshot of the engine's locally-delivered vector.
func (e *Engine) VersionVector() types.VersionVector {
	return e.v.Clone()
}

// Dequeue handles a message the local client is broadcasting. msg.VV already
// carries the client's own incremented counter at peerIndex; the engine
// keeps an independent counter that converges with it by construction,
// matching the Rust source's double-incrementing V.
func (e *Engine) Dequeue(msg types.VVMessage) {
	e.v[e.peerIndex]++

	if e.cfg.TrackCausalStability {
		e.updatestability(e.peerIndex, msg)
	}
}

// Receive handles a message arriving from peer j.
func (e *Engine) Receive(j int, msg types.VVMessage) {
	if e.metrics != nil {
		e.metrics.Received.Inc()
	}

	if e.r[j] >= msg.VV[j] {
		return
	}
	e.r[j]++

	if e.v.DeliverableFrom(j, msg.VV) {
		e.deliverAndLog(msg, j)
		if len(e.dq) > 0 {
			e.deliver()
		}
	} else {
		e.dq = append(e.dq, QueueNode{J: j, Message: msg})
	}

	if e.metrics != nil {
		e.metrics.QueueDepth.Set(float64(len(e.dq)))
	}
}

// deliver drains the delivery queue, repeatedly scanning for entries that
// have become deliverable and compacting in place, exactly as the Rust
// source's delivered_index/received_index two-pointer loop does.
func (e *Engine) deliver() {
	deliveredIdx := 0
	receivedIdx := 0

	for {
		if deliveredIdx >= len(e.dq) {
			if receivedIdx < deliveredIdx {
				e.dq = e.dq[:receivedIdx]
				if len(e.dq) > 0 {
					deliveredIdx, receivedIdx = 0, 0
					continue
				}
			}
			break
		}

		node := e.dq[deliveredIdx]
		if e.v.DeliverableFrom(node.J, node.Message.VV) {
			e.deliverAndLog(node.Message, node.J)
			deliveredIdx++
		} else {
			e.dq[receivedIdx] = node
			receivedIdx++
			deliveredIdx++
		}
	}
}

func (e *Engine) deliverAndLog(msg types.VVMessage, j int) {
	e.v[j]++

	e.client <- types.NewDelivery(msg.Payload, types.NewDot(j, msg.VV[j]), nil, msg.VV.Clone())
	if e.metrics != nil {
		e.metrics.Delivered.Inc()
	}

	if e.cfg.TrackCausalStability {
		e.updatestability(j, msg)
	}
}

func (e *Engine) updatestability(j int, msg types.VVMessage) {
	e.m[e.peerIndex] = e.v.Clone()
	if j != e.peerIndex {
		e.m[j] = msg.VV.Clone()
	}

	dot := types.NewDot(j, msg.VV[j])
	e.ctr++

	if _, exists := e.smap[dot]; exists {
		panic(fmt.Sprintf("vvengine: repeated dot %s in stability map", dot))
	}
	e.smap[dot] = StableDot{Ctr: e.ctr, J: j, Message: msg}

	if containsValue(e.mcol, j) {
		newSV := e.calculateSV(j)
		if !e.sv.Equal(newSV) {
			stableDots := types.Diff(newSV, e.sv)
			e.sv = newSV
			e.stabilize(stableDots)
		}
	}
}

func (e *Engine) stabilize(dots []types.Dot) {
	sort.Slice(dots, func(i, k int) bool {
		return e.smap[dots[i]].Ctr < e.smap[dots[k]].Ctr
	})

	for _, d := range dots {
		stable, ok := e.smap[d]
		if !ok {
			panic(fmt.Sprintf("vvengine: dot %s missing from stability map", d))
		}
		delete(e.smap, d)

		e.client <- types.NewStable(types.NewDot(stable.J, uint64(stable.Message.ID)), stable.Message.VV)
		if e.metrics != nil {
			e.metrics.Stabilized.Inc()
		}
	}
}

func (e *Engine) calculateSV(senderID int) types.VersionVector {
	newSV := e.sv.Clone()

	for column := 0; column < e.peerNumber; column++ {
		if int(e.mcol[column]) != senderID {
			continue
		}

		min := e.m[0][column]
		minRow := 0
		for row := 1; row < e.peerNumber; row++ {
			if e.m[row][column] < min {
				min = e.m[row][column]
				minRow = row
			}
		}

		newSV[column] = min
		e.mcol[column] = uint64(minRow)
	}

	return newSV
}

func containsValue(vv types.VersionVector, v int) bool {
	for _, entry := range vv {
		if int(entry) == v {
			return true
		}
	}
	return false
}
