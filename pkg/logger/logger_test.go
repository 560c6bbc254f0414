package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf, Format: FormatJSON})

	ctx := context.Background()
	ctx = log.WithRequestID(ctx, "req-123")
	ctx = log.WithUserID(ctx, 42)

	log.Error(ctx, "boom", errors.New("boom"))

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-123"`) {
		t.Fatalf("expected request_id to be preserved; entry=%s", out)
	}
	if !strings.Contains(out, `"user_id":42`) {
		t.Fatalf("expected user_id field; entry=%s", out)
	}
	if !strings.Contains(out, `"stack"`) {
		t.Fatalf("expected stack trace on error; entry=%s", out)
	}
}

func TestLoggerWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf, WarnStack: true, Format: FormatJSON})
	log.Warn(context.Background(), "warny", errors.New("cause"))

	out := buf.String()
	if !strings.Contains(out, `"stack"`) {
		t.Fatalf("expected stack when warn stack enabled; entry=%s", out)
	}
	if !strings.Contains(out, `"error":"cause"`) {
		t.Fatalf("expected error field on warn; entry=%s", out)
	}

	buf.Reset()
	quiet := New(Options{ServiceName: "test", Output: buf, Format: FormatJSON})
	quiet.Warn(context.Background(), "warny")
	if strings.Contains(buf.String(), `"stack"`) {
		t.Fatalf("stack should be omitted when warn stack disabled")
	}
}

func TestLoggerLevelFilters(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: zerolog.WarnLevel, Output: buf, Format: FormatJSON})
	log.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %s", buf.String())
	}
}

func TestParseLevelDefaults(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.InfoLevel {
		t.Fatalf("expected default info level, got %v", lvl)
	}
	if lvl := ParseLevel("invalid"); lvl != zerolog.InfoLevel {
		t.Fatalf("invalid level should fallback to info, got %v", lvl)
	}
	if lvl := ParseLevel(" DEBUG "); lvl != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %v", lvl)
	}
}
