package checker

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jabolina/tcb/pkg/tcb/types"
)

// TraceEntry is the JSON-friendly mirror of a CausalCheck, the shape a
// recorded peer trace is serialized as on disk for the offline checker
// CLI. Kind is one of "send", "delivery", "stable".
type TraceEntry struct {
	Kind    string      `json:"kind"`
	ID      int         `json:"id"`
	Counter uint64      `json:"counter"`
	Context [][2]uint64 `json:"context,omitempty"`
}

// Trace is the on-disk shape consumed by the tcb-check CLI: one ordered
// event sequence per peer, plus the engine kind the traces were recorded
// against.
type Trace struct {
	PeerNumber int            `json:"peer_number"`
	Graph      bool           `json:"graph"`
	Sequences  [][]TraceEntry `json:"sequences"`
}

// ReadTrace decodes a Trace from JSON.
func ReadTrace(r io.Reader) (Trace, error) {
	var t Trace
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return Trace{}, err
	}
	return t, nil
}

// ToCausalChecks converts the on-disk trace into the in-memory
// [][]CausalCheck shape CheckCausalDelivery expects.
func (t Trace) ToCausalChecks() ([][]CausalCheck, error) {
	out := make([][]CausalCheck, len(t.Sequences))
	for i, seq := range t.Sequences {
		checks := make([]CausalCheck, len(seq))
		for j, entry := range seq {
			dot := types.NewDot(entry.ID, entry.Counter)
			switch entry.Kind {
			case "send":
				ctx := make([]types.Dot, len(entry.Context))
				for k, pair := range entry.Context {
					ctx[k] = types.NewDot(int(pair[0]), pair[1])
				}
				checks[j] = NewCheckSend(dot, ctx)
			case "delivery":
				checks[j] = NewCheckDelivery(dot)
			case "stable":
				checks[j] = NewCheckStable(dot)
			default:
				return nil, fmt.Errorf("trace: peer %d entry %d: unknown kind %q", i, j, entry.Kind)
			}
		}
		out[i] = checks
	}
	return out, nil
}
