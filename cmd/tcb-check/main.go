// Command tcb-check is the offline causality-checker CLI: it reads a
// recorded per-peer trace, replays it through pkg/tcb/checker, and reports
// whether causal delivery and causal stability held. The runtime client is
// a separate concern entirely; this CLI only drives the offline checker.
package main

import (
	"fmt"
	"os"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/jabolina/tcb/pkg/tcb/checker"
)

var (
	app = kingpin.New("tcb-check", "Offline causal-delivery and causal-stability checker for TCB traces.")

	traceFile = app.Flag("trace", "Path to a JSON trace file (see checker.Trace).").Required().String()
	dotOut    = app.Flag("dot", "Path to write the reconstructed causal DAG as a Graphviz DOT document.").String()
	dumpDir   = app.Flag("dump-dir", "Directory to dump full checker state into on failure.").Default("tcb-check-dump").String()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	f, err := os.Open(*traceFile)
	if err != nil {
		kingpin.Fatalf("opening trace file: %v", err)
	}
	defer f.Close()

	trace, err := checker.ReadTrace(f)
	if err != nil {
		kingpin.Fatalf("decoding trace: %v", err)
	}

	sequences, err := trace.ToCausalChecks()
	if err != nil {
		kingpin.Fatalf("converting trace: %v", err)
	}

	dag, checkErr := checker.CheckCausalDelivery(trace.PeerNumber, sequences, trace.Graph)
	if checkErr != nil {
		dumpPath := *dumpDir + "/causal_error.txt"
		if dumpErr := checkErr.Dump(*dumpDir, dumpPath); dumpErr != nil {
			fmt.Fprintf(os.Stderr, "additionally failed to dump checker state: %v\n", dumpErr)
		}
		kingpin.Fatalf("%v", checkErr)
	}

	fmt.Println("causal delivery and stability OK")

	if *dotOut != "" {
		out, err := os.Create(*dotOut)
		if err != nil {
			kingpin.Fatalf("creating DOT output: %v", err)
		}
		defer out.Close()
		if err := checker.WriteDOT(dag, out); err != nil {
			kingpin.Fatalf("writing DOT output: %v", err)
		}
	}
}
