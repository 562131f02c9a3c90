// Package errs holds the failure taxonomy of the door.
//
// Configuration, validation and parse errors are fatal and travel up to main.
// Tunnel and stream errors are logged where they happen and end the tunnel.
// Every type implements slog.LogValuer so the diagnostic log carries the
// structured fields rather than a flattened string.
package errs

import (
	"fmt"
	"log/slog"
)

type wrapper struct {
	err error
}

func (w *wrapper) Unwrap() error {
	return w.err
}

func (w *wrapper) reason() string {
	if w.err == nil {
		return ""
	}
	return w.err.Error()
}

// ConfigurationError - a required startup argument is absent
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

func (e *ConfigurationError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", "configuration"),
		slog.String("reason", e.Reason))
}

// ValidationError - a dropfile field failed its type or range check
type ValidationError struct {
	wrapper
	Field string
	Value string
}

// NewValidationError - err may be nil when the value parsed but is out of range
func NewValidationError(field, value string, err error) error {
	return &ValidationError{wrapper{err}, field, value}
}

func (e *ValidationError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("invalid dropfile parameter %s, %q", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid dropfile parameter %s, %q: %s", e.Field, e.Value, e.err)
}

func (e *ValidationError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", "validation"),
		slog.String("field", e.Field),
		slog.String("value", e.Value),
		slog.String("reason", e.reason()))
}

// ParseError - a settings or dropfile source is unreadable or malformed
type ParseError struct {
	wrapper
	Path string
}

func NewParseError(path string, err error) error {
	return &ParseError{wrapper{err}, path}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Path, e.reason())
}

func (e *ParseError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", "parse"),
		slog.String("path", e.Path),
		slog.String("reason", e.reason()))
}

// TunnelError - connect, authenticate or forward failure on the transport
type TunnelError struct {
	wrapper
	Op string
}

func NewTunnelError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TunnelError{wrapper{err}, op}
}

func (e *TunnelError) Error() string {
	return fmt.Sprintf("tunnel %s: %s", e.Op, e.reason())
}

func (e *TunnelError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", "tunnel"),
		slog.String("op", e.Op),
		slog.String("reason", e.reason()))
}

// StreamError - failure on the forwarded stream while relaying
type StreamError struct {
	wrapper
	Op string
}

func NewStreamError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StreamError{wrapper{err}, op}
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream %s: %s", e.Op, e.reason())
}

func (e *StreamError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", "stream"),
		slog.String("op", e.Op),
		slog.String("reason", e.reason()))
}
