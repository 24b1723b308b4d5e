package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/posts/internal/config"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("JSON format carries build fields", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewWithWriter(&buf, config.LoggingConfig{Level: "debug", Format: "json"})

		l.Debug().Str("post_id", "abc").Msg("hello")

		var event map[string]any
		if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
			t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
		}
		for _, key := range []string{"pid", "go_version", "git_revision", "time", "caller"} {
			if _, ok := event[key]; !ok {
				t.Errorf("Expected field %q in %v", key, event)
			}
		}
		if event["post_id"] != "abc" {
			t.Errorf("Expected post_id 'abc', got %v", event["post_id"])
		}
	})

	t.Run("Level filters events", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewWithWriter(&buf, config.LoggingConfig{Level: "WARN", Format: "json"})

		l.Info().Msg("dropped")
		if buf.Len() != 0 {
			t.Errorf("Expected info event to be filtered, got %q", buf.String())
		}
		if l.GetLevel() != zerolog.WarnLevel {
			t.Errorf("Expected warn level, got %v", l.GetLevel())
		}
	})

	t.Run("Invalid level defaults to info", func(t *testing.T) {
		l := NewWithWriter(&bytes.Buffer{}, config.LoggingConfig{Level: "loud"})
		if l.GetLevel() != zerolog.InfoLevel {
			t.Errorf("Expected info level, got %v", l.GetLevel())
		}
	})

	t.Run("Console format", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewWithWriter(&buf, config.LoggingConfig{Level: "info", Format: "console"})
		l.Info().Msg("console line")
		if !strings.Contains(buf.String(), "console line") {
			t.Errorf("Expected message in console output, got %q", buf.String())
		}
	})
}
