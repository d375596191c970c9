// Package config holds the knobs injected into the core: batching
// thresholds, thread stack sizes and the causal-stability flag. The core
// never parses a config file itself — Load is an optional convenience for
// callers, kept separate so "configuration-file parsing" stays an external
// collaborator rather than a core concern.
package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/units"
)

// Batching holds the adaptive batching-sender thresholds.
type Batching struct {
	// Size is the buffered-byte threshold that forces a flush.
	Size uint64
	// MessageNumber is the buffered-message-count threshold that forces a
	// flush.
	MessageNumber int
	// LowerTimeout is the adaptive timeout's baseline.
	LowerTimeout time.Duration
	// UpperTimeout is the adaptive timeout's cap.
	UpperTimeout time.Duration
}

// Configuration is the full knob bag the core is constructed with.
type Configuration struct {
	ThreadStackSize           int
	MiddlewareThreadStackSize int
	StreamSenderTimeout       time.Duration
	TrackCausalStability      bool
	Batching                  Batching
}

// Default returns sane defaults matching a production configuration
// shape: small thread stacks, stability tracking on, and a batching policy
// that favors latency at low send rates.
func Default() Configuration {
	return Configuration{
		ThreadStackSize:           1 << 20,
		MiddlewareThreadStackSize: 1 << 20,
		StreamSenderTimeout:       500 * time.Microsecond,
		TrackCausalStability:      true,
		Batching: Batching{
			Size:          64 * 1024,
			MessageNumber: 64,
			LowerTimeout:  500 * time.Microsecond,
			UpperTimeout:  50 * time.Millisecond,
		},
	}
}

// Load reads a simple `key = value` configuration stream (one assignment
// per line, '#' comments, blank lines ignored) and overlays it onto
// Default(). Byte-size values (batching.size) accept human units like
// "64KiB" via github.com/alecthomas/units, the same library kingpin-style
// CLIs in this corpus use for `--size` flags.
func Load(r io.Reader) (Configuration, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, value, ok := strings.Cut(text, "=")
		if !ok {
			return cfg, fmt.Errorf("config: line %d: missing '='", line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if err := apply(&cfg, key, value); err != nil {
			return cfg, fmt.Errorf("config: line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func apply(cfg *Configuration, key, value string) error {
	switch key {
	case "thread_stack_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.ThreadStackSize = n
	case "middleware_thread_stack_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.MiddlewareThreadStackSize = n
	case "stream_sender_timeout":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		cfg.StreamSenderTimeout = time.Duration(n) * time.Microsecond
	case "track_causal_stability":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		cfg.TrackCausalStability = b
	case "batching.size":
		b, err := units.ParseBase2Bytes(value)
		if err != nil {
			return err
		}
		cfg.Batching.Size = uint64(b)
	case "batching.message_number":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Batching.MessageNumber = n
	case "batching.lower_timeout":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		cfg.Batching.LowerTimeout = time.Duration(n) * time.Microsecond
	case "batching.upper_timeout":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		cfg.Batching.UpperTimeout = time.Duration(n) * time.Microsecond
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// NextTimeout implements the adaptive doubling/capped scheme: when the
// sender's timeout fires with buffered data, the next
// timeout doubles up to Batching.UpperTimeout; once the channel is
// productive again the caller resets to Batching.LowerTimeout directly
// (that reset doesn't go through this helper).
func (b Batching) NextTimeout(current time.Duration) time.Duration {
	doubled := current * 2
	if doubled > b.UpperTimeout {
		return b.UpperTimeout
	}
	return doubled
}
