package errs

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestErrorsAs(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{
			name: "validation",
			err:  NewValidationError("baudRate", "fast", cause),
			check: func(err error) bool {
				var target *ValidationError
				return errors.As(err, &target) && target.Field == "baudRate" && target.Value == "fast"
			},
		},
		{
			name: "parse",
			err:  NewParseError("settings.ini", cause),
			check: func(err error) bool {
				var target *ParseError
				return errors.As(err, &target) && target.Path == "settings.ini"
			},
		},
		{
			name: "tunnel",
			err:  NewTunnelError("forward", cause),
			check: func(err error) bool {
				var target *TunnelError
				return errors.As(err, &target) && target.Op == "forward"
			},
		},
		{
			name: "stream",
			err:  NewStreamError("read", cause),
			check: func(err error) bool {
				var target *StreamError
				return errors.As(err, &target) && target.Op == "read"
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("errors.As(%v) failed", tt.err)
			}
			if !errors.Is(tt.err, cause) {
				t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, cause)
			}
		})
	}
}

func TestNilCause(t *testing.T) {
	if err := NewTunnelError("connect", nil); err != nil {
		t.Errorf("NewTunnelError(nil) = %v, want nil", err)
	}
	if err := NewStreamError("write", nil); err != nil {
		t.Errorf("NewStreamError(nil) = %v, want nil", err)
	}
	err := NewValidationError("userTime", "-1", nil)
	if want := `invalid dropfile parameter userTime, "-1"`; err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestLogValue(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buffer, nil))
	logger.Error("Exception", "err", NewValidationError("nodeNumber", "x", nil))
	out := buffer.String()
	for _, want := range []string{"err.kind=validation", "err.field=nodeNumber", "err.value=x"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q does not contain %q", out, want)
		}
	}
}
