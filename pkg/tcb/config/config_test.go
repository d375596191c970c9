package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if !cfg.TrackCausalStability {
		t.Error("Default() should track causal stability")
	}
	if cfg.Batching.UpperTimeout <= cfg.Batching.LowerTimeout {
		t.Error("UpperTimeout must exceed LowerTimeout")
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	in := strings.NewReader(`
# a comment
track_causal_stability = false
batching.size = 128KiB
batching.message_number = 10
stream_sender_timeout = 1000
`)
	cfg, err := Load(in)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TrackCausalStability {
		t.Error("track_causal_stability should be false after Load")
	}
	if cfg.Batching.Size != 128*1024 {
		t.Errorf("Batching.Size = %d, want %d", cfg.Batching.Size, 128*1024)
	}
	if cfg.Batching.MessageNumber != 10 {
		t.Errorf("Batching.MessageNumber = %d, want 10", cfg.Batching.MessageNumber)
	}
	if cfg.StreamSenderTimeout != time.Millisecond {
		t.Errorf("StreamSenderTimeout = %v, want 1ms", cfg.StreamSenderTimeout)
	}
	// Untouched knob should keep its Default() value.
	if cfg.ThreadStackSize != Default().ThreadStackSize {
		t.Error("untouched keys should keep their Default() value")
	}
}

func TestLoad_UnknownKeyErrors(t *testing.T) {
	_, err := Load(strings.NewReader("not_a_real_key = 1"))
	if err == nil {
		t.Fatal("expected an error for an unknown config key")
	}
}

func TestLoad_MissingEqualsErrors(t *testing.T) {
	_, err := Load(strings.NewReader("garbage line with no equals"))
	if err == nil {
		t.Fatal("expected an error for a line missing '='")
	}
}

func TestBatching_NextTimeout(t *testing.T) {
	b := Batching{LowerTimeout: 10 * time.Microsecond, UpperTimeout: 35 * time.Microsecond}

	got := b.NextTimeout(10 * time.Microsecond)
	if got != 20*time.Microsecond {
		t.Errorf("NextTimeout(10us) = %v, want 20us", got)
	}

	got = b.NextTimeout(20 * time.Microsecond)
	if got != b.UpperTimeout {
		t.Errorf("NextTimeout should cap at UpperTimeout, got %v", got)
	}
}
