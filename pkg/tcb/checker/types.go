// Package checker is an offline verifier: given every peer's recorded
// sequence of send/delivery/stability events, it reconstructs the global
// causal dependency graph and confirms causal delivery and causal
// stability actually held, the same role the Rust source's
// causality_checker module plays in its test harness.
package checker

import "github.com/jabolina/tcb/pkg/tcb/types"

// CausalCheckKind discriminates a CausalCheck entry.
type CausalCheckKind uint8

const (
	// CheckSend records a peer's own broadcast: the dot it assigned and
	// the causal context (graph engine) attached to it. Context is unused
	// by the vv engine's trace and left nil.
	CheckSend CausalCheckKind = iota
	// CheckDelivery records a remote peer's dot the peer observed
	// delivered. A peer's own dots are accounted for by their CheckSend
	// entry; a CheckDelivery of one of them fails the check.
	CheckDelivery
	// CheckStable records a dot the peer observed stabilize.
	CheckStable
)

// CausalCheck is one entry in a peer's recorded trace.
type CausalCheck struct {
	Kind    CausalCheckKind
	Dot     types.Dot
	Context []types.Dot // only meaningful when Kind == CheckSend
}

// NewCheckSend builds a CheckSend entry.
func NewCheckSend(dot types.Dot, context []types.Dot) CausalCheck {
	return CausalCheck{Kind: CheckSend, Dot: dot, Context: context}
}

// NewCheckDelivery builds a CheckDelivery entry.
func NewCheckDelivery(dot types.Dot) CausalCheck {
	return CausalCheck{Kind: CheckDelivery, Dot: dot}
}

// NewCheckStable builds a CheckStable entry.
func NewCheckStable(dot types.Dot) CausalCheck {
	return CausalCheck{Kind: CheckStable, Dot: dot}
}

// CheckNode is a node of the causal graph rebuilt while replaying the
// traces: its predecessors/successors are indexes into the same arena, not
// dots, so a node can be found in O(1) regardless of how large the trace
// grows.
type CheckNode struct {
	Dot          types.Dot
	Predecessors []int
	Successors   []int
}

func newCheckNode(dot types.Dot) CheckNode {
	return CheckNode{Dot: dot}
}

// VersionMatrix is an NxN table (N = group size) where row i is peer i's
// last-known version vector for every other peer's progress; once every
// row dominates a dot's version vector, that dot is causally stable from
// every peer's point of view.
type VersionMatrix struct {
	matrix []types.VersionVector
}

// NewVersionMatrix builds a zeroed peerNumber x peerNumber matrix.
func NewVersionMatrix(peerNumber int) VersionMatrix {
	m := VersionMatrix{matrix: make([]types.VersionVector, peerNumber)}
	for i := range m.matrix {
		m.matrix[i] = types.NewVersionVector(peerNumber)
	}
	return m
}

// CheckStability reports whether every row of the matrix dominates dotVV.
func (m VersionMatrix) CheckStability(dotVV types.VersionVector) bool {
	for i := range m.matrix {
		if !m.matrix[i].Dominates(dotVV) {
			return false
		}
	}
	return true
}

// UpdatePeerEntry overwrites row peerID with vv.
func (m VersionMatrix) UpdatePeerEntry(peerID int, vv types.VersionVector) {
	m.matrix[peerID] = vv
}
