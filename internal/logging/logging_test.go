package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/goccy/go-json"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Output: &buf})
	log.Debug().Int64("movie_id", 7).Msg("recomputed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["message"] != "recomputed" {
		t.Fatalf("message = %v, want recomputed", entry["message"])
	}
	if entry["service"] != "cinema-pulse" {
		t.Fatalf("service = %v, want cinema-pulse", entry["service"])
	}
}

func TestNewDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "bogus", Output: &buf})
	log.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at default level: %q", buf.String())
	}
	log.Info().Msg("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("info line missing: %q", buf.String())
	}
}

func TestAdapters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	NewBadgerLogger(log).Warningf("value log %d\n", 3)
	if !strings.Contains(buf.String(), "value log 3") || strings.Contains(buf.String(), "\\n") {
		t.Fatalf("badger warning not logged cleanly: %q", buf.String())
	}

	buf.Reset()
	wm := NewWatermillLogger(log).With(watermill.LogFields{"topic": "reviews"})
	wm.Error("publish failed", errors.New("boom"), nil)
	if !strings.Contains(buf.String(), `"topic":"reviews"`) || !strings.Contains(buf.String(), "boom") {
		t.Fatalf("watermill error missing fields: %q", buf.String())
	}
}
