package transport

import "sync"

// startBarrier is a one-shot rendezvous point: every party calls Arrive and
// none of them proceeds until all n have. It stands in for the Rust
// source's std::sync::Barrier, gating reader goroutines and the
// dispatcher's own startup on the full mesh being connected both ways.
type startBarrier struct {
	mu   sync.Mutex
	n    int
	done chan struct{}
}

func newStartBarrier(n int) *startBarrier {
	return &startBarrier{n: n, done: make(chan struct{})}
}

// Arrive blocks until n parties (including this call) have arrived.
func (b *startBarrier) Arrive() {
	b.mu.Lock()
	b.n--
	last := b.n <= 0
	b.mu.Unlock()

	if last {
		close(b.done)
		return
	}
	<-b.done
}
