package checker

import (
	"strings"
	"testing"

	"github.com/jabolina/tcb/pkg/tcb/types"
)

func TestWriteDOT_RendersNodesAndEdges(t *testing.T) {
	sequences := [][]CausalCheck{
		{NewCheckSend(dot(0, 1), nil), NewCheckSend(dot(0, 2), []types.Dot{dot(0, 1)})},
	}
	dag, err := CheckCausalDelivery(1, sequences, true)
	if err != nil {
		t.Fatalf("CheckCausalDelivery: %v", err)
	}

	var buf strings.Builder
	if err := WriteDOT(dag, &buf); err != nil {
		t.Fatalf("WriteDOT: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "digraph {\n") || !strings.HasSuffix(out, "}\n") {
		t.Fatalf("not a well-formed digraph block: %q", out)
	}
	if !strings.Contains(out, `label="(0, 1)"`) {
		t.Errorf("missing node label for (0,1): %q", out)
	}
	if !strings.Contains(out, `label="(0, 2)"`) {
		t.Errorf("missing node label for (0,2): %q", out)
	}
	if !strings.Contains(out, " -> ") {
		t.Errorf("missing an edge line for (0,1) -> (0,2): %q", out)
	}
}

func TestWriteDOT_EmptyGraph(t *testing.T) {
	dag, err := CheckCausalDelivery(0, nil, false)
	if err != nil {
		t.Fatalf("CheckCausalDelivery: %v", err)
	}

	var buf strings.Builder
	if err := WriteDOT(dag, &buf); err != nil {
		t.Fatalf("WriteDOT: %v", err)
	}
	if buf.String() != "digraph {\n}\n" {
		t.Errorf("got %q, want an empty digraph block", buf.String())
	}
}
