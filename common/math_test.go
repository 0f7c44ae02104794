package common

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestRepeat(t *testing.T) {
	tests := []struct {
		name   string
		t      float32
		length float32
		want   float32
	}{
		{"inside", 0.5, 2, 0.5},
		{"past_end", 2.5, 2, 0.5},
		{"negative", -0.5, 2, 1.5},
		{"zero_length", 3, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Repeat(tt.t, tt.length); !Approximately(got, tt.want) {
				t.Fatalf("Repeat(%v, %v) = %v, want %v", tt.t, tt.length, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 2); got != 2 {
		t.Fatalf("got %v, want 2", got)
	}
	if got := Clamp(-1, 0, 2); got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
	if got := Clamp01(0.25); got != 0.25 {
		t.Fatalf("got %v, want 0.25", got)
	}
}

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("default logger should be disabled")
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	Logger().Info("rebuilt", "clips", 3)
	if !strings.Contains(buf.String(), "rebuilt") {
		t.Fatalf("expected output to contain message, got %q", buf.String())
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("SetLogger(nil) should restore the silent logger")
	}
}
