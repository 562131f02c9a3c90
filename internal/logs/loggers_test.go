package logs

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWithWriter(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		wantDebug bool
	}{
		{name: "debug enabled", debug: true, wantDebug: true},
		{name: "debug disabled", debug: false, wantDebug: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buffer bytes.Buffer
			logger := NewWithWriter(&buffer, tt.debug)
			logger.Debug("Settings")
			logger.Warn("Tunnel error")
			logger.Error("Exception")
			out := buffer.String()
			if got := strings.Contains(out, `"msg":"Settings"`); got != tt.wantDebug {
				t.Errorf("debug record written = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, `"msg":"Tunnel error"`); got != tt.wantDebug {
				t.Errorf("warn record written = %v, want %v", got, tt.wantDebug)
			}
			if !strings.Contains(out, `"msg":"Exception"`) {
				t.Errorf("error record missing from %q", out)
			}
		})
	}
}

func TestNew(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "dpc.log")
	logger := New(filename, false)
	logger.Error("Exception", "err", "boom")
	content, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), `"err":"boom"`) {
		t.Errorf("log file = %q, want err attr", content)
	}
}

func TestRedacted(t *testing.T) {
	var buffer bytes.Buffer
	logger := NewWithWriter(&buffer, true)
	logger.Info("creds", "password", Redacted("hunter2"), "empty", Redacted(""))
	out := buffer.String()
	if strings.Contains(out, "hunter2") {
		t.Errorf("secret leaked into %q", out)
	}
	if !strings.Contains(out, `"password":"******"`) || !strings.Contains(out, `"empty":""`) {
		t.Errorf("unexpected redaction output %q", out)
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Errorf("Discard().Enabled() = true, want false")
	}
}
