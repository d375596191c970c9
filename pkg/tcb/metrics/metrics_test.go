package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
)

func TestNewUnregistered_CollectorsAreUsable(t *testing.T) {
	c := NewUnregistered(1)

	c.Delivered.Inc()
	c.Delivered.Inc()
	c.Stabilized.Inc()
	c.Received.Inc()
	c.ArenaLive.Set(3)
	c.QueueDepth.Set(2)
	c.BatchBytes.Observe(128)
	c.BatchCount.Observe(4)

	var m dto.Metric
	if err := c.Delivered.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := m.GetCounter().GetValue(); got != 2 {
		t.Errorf("Delivered = %v, want 2", got)
	}

	var gauge dto.Metric
	if err := c.ArenaLive.Write(&gauge); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := gauge.GetGauge().GetValue(); got != 3 {
		t.Errorf("ArenaLive = %v, want 3", got)
	}
}

func TestNewUnregistered_DistinctPeersDontCollide(t *testing.T) {
	a := NewUnregistered(0)
	b := NewUnregistered(1)

	a.Delivered.Inc()
	b.Delivered.Inc()
	b.Delivered.Inc()
}
