package checker

import (
	"testing"

	"github.com/jabolina/tcb/pkg/tcb/types"
)

func dot(id, counter int) types.Dot {
	return types.NewDot(id, uint64(counter))
}

func TestCheckCausalDelivery_ChainedSendsReconstructsEdges(t *testing.T) {
	sequences := [][]CausalCheck{
		{ // peer 0
			NewCheckSend(dot(0, 1), nil),
			NewCheckSend(dot(0, 2), []types.Dot{dot(0, 1)}),
			NewCheckSend(dot(0, 3), []types.Dot{dot(0, 2)}),
			NewCheckDelivery(dot(1, 1)),
			NewCheckDelivery(dot(1, 2)),
		},
		{ // peer 1
			NewCheckSend(dot(1, 1), nil),
			NewCheckSend(dot(1, 2), []types.Dot{dot(1, 1)}),
			NewCheckDelivery(dot(0, 1)),
			NewCheckDelivery(dot(0, 2)),
			NewCheckDelivery(dot(0, 3)),
		},
	}

	dag, err := CheckCausalDelivery(2, sequences, true)
	if err != nil {
		t.Fatalf("CheckCausalDelivery returned an error: %v", err)
	}
	if dag.Len() != 5 {
		t.Fatalf("dag.Len() = %d, want 5", dag.Len())
	}

	idxOf := func(d types.Dot) int {
		for i := 0; i < dag.Cap(); i++ {
			if dag.Contains(i) && dag.Get(i).Dot == d {
				return i
			}
		}
		t.Fatalf("dot %s not found in reconstructed graph", d)
		return -1
	}

	n01 := dag.Get(idxOf(dot(0, 1)))
	if !containsInt(n01.Successors, idxOf(dot(0, 2))) {
		t.Error("expected an edge (0,1) -> (0,2)")
	}
	n02 := dag.Get(idxOf(dot(0, 2)))
	if !containsInt(n02.Successors, idxOf(dot(0, 3))) {
		t.Error("expected an edge (0,2) -> (0,3)")
	}
	n11 := dag.Get(idxOf(dot(1, 1)))
	if !containsInt(n11.Successors, idxOf(dot(1, 2))) {
		t.Error("expected an edge (1,1) -> (1,2)")
	}
}

func TestCheckCausalDelivery_ConcurrentSendsHaveNoCausalEdge(t *testing.T) {
	sequences := [][]CausalCheck{
		{NewCheckSend(dot(0, 1), nil)},
		{NewCheckSend(dot(1, 1), nil)},
	}

	dag, err := CheckCausalDelivery(2, sequences, false)
	if err != nil {
		t.Fatalf("CheckCausalDelivery returned an error: %v", err)
	}
	if dag.Len() != 2 {
		t.Fatalf("dag.Len() = %d, want 2", dag.Len())
	}
	for i := 0; i < dag.Cap(); i++ {
		if !dag.Contains(i) {
			continue
		}
		n := dag.Get(i)
		if len(n.Predecessors) != 0 || len(n.Successors) != 0 {
			t.Errorf("dot %s should have no causal edges for two independent sends, got %+v", n.Dot, n)
		}
	}
}

func TestCheckCausalDelivery_StabilityConfirmedAfterAckRoundTrip(t *testing.T) {
	sequences := [][]CausalCheck{
		{ // peer 0
			NewCheckSend(dot(0, 1), nil),
			NewCheckDelivery(dot(1, 1)),
			NewCheckDelivery(dot(1, 2)),
			NewCheckStable(dot(0, 1)),
		},
		{ // peer 1
			NewCheckSend(dot(1, 1), nil),
			NewCheckDelivery(dot(0, 1)),
			NewCheckSend(dot(1, 2), nil),
		},
	}

	_, err := CheckCausalDelivery(2, sequences, false)
	if err != nil {
		t.Fatalf("CheckCausalDelivery returned an error: %v", err)
	}
}

func TestCheckCausalDelivery_StableReportedBeforeEveryPeerAcked(t *testing.T) {
	sequences := [][]CausalCheck{
		{ // peer 0: claims stability right after its own delivery, with no
			// round trip carrying peer 1's acknowledgement back.
			NewCheckSend(dot(0, 1), nil),
			NewCheckDelivery(dot(1, 1)),
			NewCheckStable(dot(0, 1)),
		},
		{ // peer 1
			NewCheckSend(dot(1, 1), nil),
			NewCheckDelivery(dot(0, 1)),
		},
	}

	_, err := CheckCausalDelivery(2, sequences, false)
	if err == nil {
		t.Fatal("expected a premature-stability error")
	}
	if err.Kind != ErrKindStability {
		t.Errorf("Kind = %v, want Stability", err.Kind)
	}
	if err.CurrentDot != dot(0, 1) {
		t.Errorf("CurrentDot = %v, want (0,1)", err.CurrentDot)
	}
}

func TestCheckCausalDelivery_DeliveryOfUnsentDotFails(t *testing.T) {
	sequences := [][]CausalCheck{
		{NewCheckDelivery(dot(1, 5))}, // peer 0 claims a delivery peer 1 never sent
		{},
	}

	_, err := CheckCausalDelivery(2, sequences, false)
	if err == nil {
		t.Fatal("expected an error for delivering a dot that was never sent")
	}
	if err.Kind != ErrKindStability {
		t.Errorf("Kind = %v, want Stability", err.Kind)
	}
}

func TestCheckCausalDelivery_SendWithMismatchedOwnerFails(t *testing.T) {
	sequences := [][]CausalCheck{
		{NewCheckSend(dot(1, 1), nil)}, // peer 0's sequence claims to have sent peer 1's dot
		{},
	}

	_, err := CheckCausalDelivery(2, sequences, false)
	if err == nil {
		t.Fatal("expected an error for a Send entry whose dot id doesn't match its peer")
	}
	if err.Kind != ErrKindSend {
		t.Errorf("Kind = %v, want Send", err.Kind)
	}
}

func TestCheckCausalDelivery_DuplicateSendOfSameDotFails(t *testing.T) {
	sequences := [][]CausalCheck{
		{NewCheckSend(dot(0, 1), nil), NewCheckSend(dot(0, 1), nil)},
	}

	_, err := CheckCausalDelivery(1, sequences, false)
	if err == nil {
		t.Fatal("expected an error for sending the same dot twice")
	}
	if err.Kind != ErrKindDelivery {
		t.Errorf("Kind = %v, want Delivery", err.Kind)
	}
}

func TestVersionMatrix_CheckStability(t *testing.T) {
	m := NewVersionMatrix(2)
	m.UpdatePeerEntry(0, types.VersionVector{1, 0})
	m.UpdatePeerEntry(1, types.VersionVector{0, 0})

	if m.CheckStability(types.VersionVector{1, 0}) {
		t.Error("should not be stable while peer 1's row doesn't dominate yet")
	}

	m.UpdatePeerEntry(1, types.VersionVector{1, 0})
	if !m.CheckStability(types.VersionVector{1, 0}) {
		t.Error("should be stable once every row dominates")
	}
}
