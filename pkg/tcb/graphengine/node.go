package graphengine

import "github.com/jabolina/tcb/pkg/tcb/types"

// Stage mirrors the Rust source's Node stage enum: a message moves
// SLT -> RCV -> DLV -> STB as it arrives, gets delivered and becomes
// causally stable.
type Stage uint8

const (
	// SLT is a placeholder node created only because something else
	// already named this dot as a predecessor.
	SLT Stage = iota
	// RCV means the message arrived but is still waiting on predecessors.
	RCV
	// DLV means the message was handed to the client.
	DLV
	// STB means every peer has delivered the message.
	STB
)

func (s Stage) String() string {
	switch s {
	case SLT:
		return "SLT"
	case RCV:
		return "RCV"
	case DLV:
		return "DLV"
	case STB:
		return "STB"
	default:
		return "UNKNOWN"
	}
}

// bitset is a small fixed-size per-peer bit string, tracking which peers'
// causal predecessors are still outstanding for a node. Peer counts in this
// system are small (tens, not millions) so a []bool is plenty; no bitset
// library appears anywhere in the retrieval pack's dependency surface.
type bitset []bool

func newBitset(n int, value bool) bitset {
	b := make(bitset, n)
	if value {
		for i := range b {
			b[i] = true
		}
	}
	return b
}

func (b bitset) set(i int, value bool) {
	b[i] = value
}

func (b bitset) get(i int) bool {
	return b[i]
}

func (b bitset) none() bool {
	for _, v := range b {
		if v {
			return false
		}
	}
	return true
}

// Node is a single vertex in the causal dependency graph.
type Node struct {
	Dot     types.Dot
	Stage   Stage
	Bits    bitset
	Payload []byte
	Context []types.Dot

	Predecessors []int
	Successors   []int
}

func newNode(dot types.Dot) Node {
	return Node{Dot: dot, Stage: SLT}
}
