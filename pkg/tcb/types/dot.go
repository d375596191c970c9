// Package types holds the wire-level data model shared by both causal
// delivery engines: dots, version vectors, messages and envelopes.
package types

import "fmt"

// Dot identifies exactly one send event: the peer that produced it and a
// per-peer monotonically increasing counter. Dots are globally unique and
// totally ordered within a single peer.
type Dot struct {
	ID      int
	Counter uint64
}

// NewDot builds a Dot for peer id at the given counter.
func NewDot(id int, counter uint64) Dot {
	return Dot{ID: id, Counter: counter}
}

func (d Dot) String() string {
	return fmt.Sprintf("(%d, %d)", d.ID, d.Counter)
}

// Less orders dots first by peer id, then by counter. Only meaningful for
// deterministic iteration/sorting, not for causal comparisons.
func (d Dot) Less(other Dot) bool {
	if d.ID != other.ID {
		return d.ID < other.ID
	}
	return d.Counter < other.Counter
}

// CloneDots returns a shallow copy of a dot slice, safe to mutate
// independently of the original.
func CloneDots(dots []Dot) []Dot {
	if len(dots) == 0 {
		return nil
	}
	out := make([]Dot, len(dots))
	copy(out, dots)
	return out
}
