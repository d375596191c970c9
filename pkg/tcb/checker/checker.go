package checker

import (
	"fmt"

	"github.com/jabolina/tcb/pkg/tcb/arena"
	"github.com/jabolina/tcb/pkg/tcb/types"
)

// CheckCausalDelivery replays every peer's recorded trace and rebuilds the
// causal dependency graph, failing as soon as a trace shows a message
// delivered before a causal predecessor, or reported stable before every
// peer actually delivered it. graphImplementation selects which of the two
// middleware variants produced the traces: the graph engine attaches an
// explicit causal context to every Send entry that must fully resolve
// against predecessors found via version-vector diffing, while the vv
// engine carries no such context.
func CheckCausalDelivery(peerNumber int, peerDotSequences [][]CausalCheck, graphImplementation bool) (*arena.ArrayMap[CheckNode], *CheckError) {
	dag := arena.New[CheckNode]()
	dotToIndex := make(map[types.Dot]int)
	peerVVs := make([]types.VersionVector, peerNumber)
	dotVVMap := make(map[types.Dot]types.VersionVector)
	seqIdx := make([]int, peerNumber)
	seqPrevIdx := make([]int, peerNumber)
	versionMatrices := make([]VersionMatrix, peerNumber)

	for i := 0; i < peerNumber; i++ {
		peerVVs[i] = types.NewVersionVector(peerNumber)
		versionMatrices[i] = NewVersionMatrix(peerNumber)
	}

	snapshot := func(kind ErrorKind, message string, dot types.Dot, peer, seq int) *CheckError {
		return &CheckError{
			Kind:                    kind,
			Message:                 message,
			GlobalCausalDAG:         dag,
			PeerDotSequences:        peerDotSequences,
			DotToIndex:              dotToIndex,
			PeerVersionVectors:      peerVVs,
			DotVersionVectors:       dotVVMap,
			PeerSequenceIndexes:     append([]int(nil), seqIdx...),
			PeerSequencePrevIndexes: append([]int(nil), seqPrevIdx...),
			CurrentDot:              dot,
			CurrentPeer:             peer,
			CurrentSeqIndex:         seq,
		}
	}

	for i := 0; i < peerNumber; i++ {
		seq := peerDotSequences[i]

		for j := seqIdx[i]; j < len(seq); j++ {
			entry := seq[j]

			switch entry.Kind {
			case CheckSend:
				dot := entry.Dot
				if dot.ID != i {
					return nil, snapshot(ErrKindSend, "A Dot's id and a peer's id don't match!", dot, i, j)
				}

				if !handleSenderDeliveredMessage(dot, dag, dotToIndex, peerVVs, dotVVMap, seqIdx, seqPrevIdx, seq, versionMatrices, entry.Context, graphImplementation) {
					return nil, snapshot(ErrKindDelivery, "The Sender's Dot was already in the graph!", dot, i, j)
				}

			case CheckDelivery:
				dot := entry.Dot

				if _, exists := dotToIndex[dot]; !exists {
					senderBits := make([]bool, peerNumber)
					senderBits[i] = true

					if err := handlePeerDot(dot, peerDotSequences, dag, dotToIndex, peerVVs, dotVVMap, seqIdx, seqPrevIdx, versionMatrices, senderBits, graphImplementation); err != nil {
						return nil, snapshot(err.kind, err.message, err.dot, err.peer, err.seqIndex)
					}
				}

				if !handlePeerDeliveredMessage(i, dot, dotVVMap, peerVVs, versionMatrices) {
					return nil, snapshot(ErrKindStability, fmt.Sprintf("When comparing VVs of peer %d and dot %s", i, dot), dot, i, j)
				}

			case CheckStable:
				dot := entry.Dot
				if !handleStableMessage(dot, versionMatrices[i], dotVVMap) {
					return nil, snapshot(ErrKindStability, "", dot, i, j)
				}
			}

			seqIdx[i]++
		}
	}

	return dag, nil
}

func handlePeerDot(
	dot types.Dot,
	peerDotSequences [][]CausalCheck,
	dag *arena.ArrayMap[CheckNode],
	dotToIndex map[types.Dot]int,
	peerVVs []types.VersionVector,
	dotVVMap map[types.Dot]types.VersionVector,
	seqIdx, seqPrevIdx []int,
	versionMatrices []VersionMatrix,
	senderBits []bool,
	graphImplementation bool,
) *recursionError {
	seq := peerDotSequences[dot.ID]

	for j := seqIdx[dot.ID]; j < len(seq); j++ {
		entry := seq[j]

		switch entry.Kind {
		case CheckSend:
			cur := entry.Dot
			if cur.ID != dot.ID {
				return &recursionError{kind: ErrKindSend, message: "handle_peer_dot() - A Dot's id and a peer's id don't match!", dot: cur, peer: dot.ID, seqIndex: j}
			}

			if !handleSenderDeliveredMessage(cur, dag, dotToIndex, peerVVs, dotVVMap, seqIdx, seqPrevIdx, seq, versionMatrices, entry.Context, graphImplementation) {
				return &recursionError{kind: ErrKindDelivery, message: "handle_peer_dot() - The Sender's Dot was already in the graph!", dot: cur, peer: dot.ID, seqIndex: j}
			}

			if cur == dot {
				seqIdx[dot.ID]++
				return nil
			}

		case CheckDelivery:
			cur := entry.Dot

			if _, exists := dotToIndex[cur]; !exists {
				if senderBits[cur.ID] {
					return &recursionError{kind: ErrKindDelivery, message: fmt.Sprintf("Repeated calling of sender %d", cur.ID), dot: cur, peer: dot.ID, seqIndex: j}
				}
				senderBits[cur.ID] = true

				if err := handlePeerDot(cur, peerDotSequences, dag, dotToIndex, peerVVs, dotVVMap, seqIdx, seqPrevIdx, versionMatrices, senderBits, graphImplementation); err != nil {
					return err
				}
			}

			if !handlePeerDeliveredMessage(dot.ID, cur, dotVVMap, peerVVs, versionMatrices) {
				return &recursionError{kind: ErrKindDelivery, message: fmt.Sprintf("handle_peer_dot - When comparing VVs of peer %d and dot %s", dot.ID, cur), dot: cur, peer: dot.ID, seqIndex: j}
			}

		case CheckStable:
			if !handleStableMessage(entry.Dot, versionMatrices[dot.ID], dotVVMap) {
				return &recursionError{kind: ErrKindStability, message: "", dot: entry.Dot, peer: dot.ID, seqIndex: j}
			}
		}

		seqIdx[dot.ID]++
	}

	return nil
}

func handleSenderDeliveredMessage(
	dot types.Dot,
	dag *arena.ArrayMap[CheckNode],
	dotToIndex map[types.Dot]int,
	peerVVs []types.VersionVector,
	dotVVMap map[types.Dot]types.VersionVector,
	seqIdx, seqPrevIdx []int,
	seq []CausalCheck,
	versionMatrices []VersionMatrix,
	context []types.Dot,
	graphImplementation bool,
) bool {
	if _, exists := dotToIndex[dot]; exists {
		return false
	}

	peerVV := peerVVs[dot.ID]
	idx := dag.Push(newCheckNode(dot))
	dotToIndex[dot] = idx

	peerVV[dot.ID]++

	dotVV := peerVV.Clone()
	dotVVMap[dot] = dotVV

	updateGraphDependencies(dag, dotToIndex, dotVVMap, seq, dot, seqIdx[dot.ID], seqPrevIdx[dot.ID], context, graphImplementation)

	seqPrevIdx[dot.ID] = seqIdx[dot.ID]

	versionMatrices[dot.ID].UpdatePeerEntry(dot.ID, dotVV.Clone())

	return true
}

func handlePeerDeliveredMessage(
	i int,
	dot types.Dot,
	dotVVMap map[types.Dot]types.VersionVector,
	peerVVs []types.VersionVector,
	versionMatrices []VersionMatrix,
) bool {
	dotVV, ok := dotVVMap[dot]
	if !ok {
		return false
	}

	peerVV := peerVVs[i]
	if !peerVV.DeliverableFrom(dot.ID, dotVV) {
		return false
	}

	peerVV[dot.ID]++

	versionMatrices[i].UpdatePeerEntry(dot.ID, dotVV.Clone())
	versionMatrices[i].UpdatePeerEntry(i, peerVV.Clone())

	return true
}

func handleStableMessage(dot types.Dot, versionMatrix VersionMatrix, dotVVMap map[types.Dot]types.VersionVector) bool {
	dotVV, ok := dotVVMap[dot]
	if !ok {
		panic(fmt.Sprintf("checker: no recorded version vector for stable dot %s", dot))
	}
	return versionMatrix.CheckStability(dotVV)
}

func updateGraphDependencies(
	dag *arena.ArrayMap[CheckNode],
	dotToIndex map[types.Dot]int,
	dotVVMap map[types.Dot]types.VersionVector,
	seq []CausalCheck,
	dot types.Dot,
	currentSeqIndex, previousSeqIndex int,
	context []types.Dot,
	graphImplementation bool,
) {
	if previousSeqIndex >= currentSeqIndex {
		if previousSeqIndex != currentSeqIndex {
			panic("checker: previous sequence index is not less than the current sequence index")
		}
		return
	}

	var predecessorIndexes []int

	if currentSeqIndex > 0 && dot.Counter == 1 {
		dotVV := dotVVMap[dot]
		previousVV := types.NewVersionVector(len(dotVV))
		previousDot := types.NewDot(dot.ID, 0)
		predecessorIndexes = compareDotVersionVectors(previousDot, dot, previousVV, dotVV, dotToIndex, dag)
	} else {
		previousDot := seq[previousSeqIndex].Dot
		previousVV := dotVVMap[previousDot]
		dotVV := dotVVMap[dot]
		predecessorIndexes = compareDotVersionVectors(previousDot, dot, previousVV, dotVV, dotToIndex, dag)
	}

	dotIndex := dotToIndex[dot]

	counter := 0
	if graphImplementation {
		counter = len(context)
	}

	for _, predIndex := range predecessorIndexes {
		pred := dag.Get(predIndex)
		pred.Successors = append(pred.Successors, dotIndex)
		if graphImplementation && containsDot(context, pred.Dot) {
			counter--
		}
		dag.Set(predIndex, pred)

		node := dag.Get(dotIndex)
		node.Predecessors = append(node.Predecessors, predIndex)
		dag.Set(dotIndex, node)
	}

	if counter != 0 {
		panic("checker: error calculating dot's context")
	}
}

func compareDotVersionVectors(
	lowerDot, upperDot types.Dot,
	lowerVV, upperVV types.VersionVector,
	dotToIndex map[types.Dot]int,
	dag *arena.ArrayMap[CheckNode],
) []int {
	var predecessorDots []types.Dot

	for i := 0; i < len(lowerVV); i++ {
		if lowerVV[i] < upperVV[i] {
			switch {
			case i == lowerDot.ID && i == upperDot.ID && lowerDot.Counter != 0:
				predecessorDots = append(predecessorDots, types.NewDot(i, lowerVV[i]))
			case i != upperDot.ID:
				predecessorDots = append(predecessorDots, types.NewDot(i, upperVV[i]))
			}
		}
	}

	var predecessorIndexes []int

	for _, predecessorDot := range predecessorDots {
		dependency := false
		predecessorIndex := dotToIndex[predecessorDot]

		for _, other := range predecessorDots {
			if predecessorDot == other {
				continue
			}
			otherIndex := dotToIndex[other]
			otherNode := dag.Get(otherIndex)
			if containsInt(otherNode.Predecessors, predecessorIndex) {
				dependency = true
				break
			}
		}

		if !dependency {
			predecessorIndexes = append(predecessorIndexes, predecessorIndex)
		}
	}

	return predecessorIndexes
}

func containsDot(dots []types.Dot, target types.Dot) bool {
	for _, d := range dots {
		if d == target {
			return true
		}
	}
	return false
}

func containsInt(xs []int, target int) bool {
	for _, x := range xs {
		if x == target {
			return true
		}
	}
	return false
}
