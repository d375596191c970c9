package checker

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jabolina/tcb/pkg/tcb/arena"
	"github.com/jabolina/tcb/pkg/tcb/types"
)

// ErrorKind discriminates why CheckCausalDelivery failed.
type ErrorKind uint8

const (
	// ErrKindSend means a recorded Send entry's dot didn't belong to the
	// peer that supposedly sent it.
	ErrKindSend ErrorKind = iota
	// ErrKindDelivery means a message was delivered out of causal order,
	// or the same dot was sent/delivered twice.
	ErrKindDelivery
	// ErrKindStability means a dot was reported stable before every peer
	// had actually delivered it.
	ErrKindStability
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindSend:
		return "Send"
	case ErrKindDelivery:
		return "Delivery"
	case ErrKindStability:
		return "Stability"
	default:
		return "Unknown"
	}
}

// CheckError carries the full replay state at the point a trace violated
// causal delivery or causal stability, enough to dump a multi-file
// diagnostic for offline inspection.
type CheckError struct {
	Kind    ErrorKind
	Message string

	GlobalCausalDAG   *arena.ArrayMap[CheckNode]
	PeerDotSequences  [][]CausalCheck
	DotToIndex        map[types.Dot]int
	PeerVersionVectors []types.VersionVector
	DotVersionVectors  map[types.Dot]types.VersionVector

	PeerSequenceIndexes     []int
	PeerSequencePrevIndexes []int

	CurrentDot       types.Dot
	CurrentPeer      int
	CurrentSeqIndex  int
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("causal check failed (%s) at peer %d seq %d dot %s: %s",
		e.Kind, e.CurrentPeer, e.CurrentSeqIndex, e.CurrentDot, e.Message)
}

// Dump writes a human-readable summary to baseFilePath, plus one
// "causal_error_peer_sequenceN.txt" file per peer under outDir, mirroring
// the Rust source's log_causal_check_error.
func (e *CheckError) Dump(outDir, baseFilePath string) error {
	fmt.Printf("Message %s\n\n", e.Message)
	fmt.Printf("Error type %s\n\n", e.Kind)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	f, err := os.Create(baseFilePath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%s | Peer %d | Seq Index %d | Error Type %s\n", e.CurrentDot, e.CurrentPeer, e.CurrentSeqIndex, e.Kind)
	fmt.Fprintln(w, "--------------------------")
	fmt.Fprintf(w, "Sequence Indexes\n\t%v\n", e.PeerSequenceIndexes)
	fmt.Fprintln(w, "--------------------------")
	fmt.Fprintf(w, "Sequence Prev Indexes\n\t%v\n", e.PeerSequencePrevIndexes)
	fmt.Fprintln(w, "--------------------------")

	for i, vv := range e.PeerVersionVectors {
		fmt.Fprintf(w, "Peer %d VV:\n\t%v\n", i, vv)
	}
	fmt.Fprintln(w, "--------------------------")

	for i, seq := range e.PeerDotSequences {
		seqPath := filepath.Join(outDir, fmt.Sprintf("causal_error_peer_sequence%d.txt", i))
		sf, err := os.Create(seqPath)
		if err != nil {
			return err
		}
		sw := bufio.NewWriter(sf)
		fmt.Fprintf(sw, "Peer Dot Seq %d\n", i)
		for j, entry := range seq {
			fmt.Fprintf(sw, "\n\t%d - %+v\n", j, entry)
		}
		sw.Flush()
		sf.Close()
	}

	fmt.Fprintln(w, "--------------------------")
	fmt.Fprintln(w, "\t Dot Version Vector")
	for dot, vv := range e.DotVersionVectors {
		fmt.Fprintf(w, "\t%s - %v\n", dot, vv)
	}
	fmt.Fprintln(w, "--------------------------")

	fmt.Fprintln(w, "\t Dot to Index Map")
	for dot, idx := range e.DotToIndex {
		fmt.Fprintf(w, "\t%s - %d\n", dot, idx)
	}
	fmt.Fprintln(w, "--------------------------")

	fmt.Fprintln(w, "\t Causal Graph")
	for i := 0; i < e.GlobalCausalDAG.Cap(); i++ {
		if !e.GlobalCausalDAG.Contains(i) {
			continue
		}
		node := e.GlobalCausalDAG.Get(i)
		fmt.Fprintf(w, "%d - Dot(%d, %d)\n\tPred - %v\n\tSucc - %v\n", i, node.Dot.ID, node.Dot.Counter, node.Predecessors, node.Successors)
	}

	return w.Flush()
}

// recursionError is the internal propagation type for handlePeerDot, kept
// separate from CheckError since the recursive helpers don't carry the
// full replay state needed for a Dump — only the top-level
// CheckCausalDelivery call assembles that.
type recursionError struct {
	kind     ErrorKind
	message  string
	dot      types.Dot
	peer     int
	seqIndex int
}

func (e *recursionError) Error() string { return e.message }
