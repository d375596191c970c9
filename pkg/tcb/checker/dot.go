package checker

import (
	"fmt"
	"io"

	"github.com/jabolina/tcb/pkg/tcb/arena"
)

// WriteDOT renders the DAG reconstructed by CheckCausalDelivery as a
// Graphviz DOT document: one node per surviving arena slot, labelled with
// its dot, and one directed edge per successor link, mirroring the
// original source's petgraph-based plot_graph (Config::EdgeNoLabel — no
// edge labels, directed graph). No DOT/graph-rendering library appears
// anywhere in the retrieval pack, so this writes the format directly
// rather than reaching for one.
func WriteDOT(dag *arena.ArrayMap[CheckNode], w io.Writer) error {
	if _, err := io.WriteString(w, "digraph {\n"); err != nil {
		return err
	}
	for i := 0; i < dag.Cap(); i++ {
		if !dag.Contains(i) {
			continue
		}
		node := dag.Get(i)
		if _, err := fmt.Fprintf(w, "    %d [label=\"(%d, %d)\"]\n", i, node.Dot.ID, node.Dot.Counter); err != nil {
			return err
		}
	}
	for i := 0; i < dag.Cap(); i++ {
		if !dag.Contains(i) {
			continue
		}
		node := dag.Get(i)
		for _, succ := range node.Successors {
			if _, err := fmt.Fprintf(w, "    %d -> %d\n", i, succ); err != nil {
				return err
			}
		}
	}
	_, err := io.WriteString(w, "}\n")
	return err
}
