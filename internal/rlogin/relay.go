package rlogin

import (
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/rectcircle/doorparty/internal/errs"
	"github.com/rectcircle/doorparty/internal/session"
	"github.com/rectcircle/doorparty/internal/tunnel"
)

// NewHandoff - the tunnel.Handoff that greets the rlogin server and starts the relay
func NewHandoff(logger *slog.Logger) tunnel.Handoff {
	return func(t tunnel.Tunnel, d session.Descriptor, local io.ReadWriteCloser, err error, stream io.ReadWriteCloser) {
		if err != nil {
			logger.Warn("Tunnel setup error", "err", err)
			t.End()
			return
		}
		if _, err := stream.Write(Handshake(d)); err != nil {
			logger.Warn("Stream error", "err", errs.NewStreamError("handshake", err))
			t.End()
			return
		}
		Relay(local, stream, t.End, logger)
	}
}

// Relay - copy bytes both ways between local and stream without touching them.
// Each direction runs on its own goroutine so neither can stall the other.
// When the stream ends, `end` is called; when local ends, the stream is closed,
// which in turn ends the stream side.
func Relay(local io.ReadWriteCloser, stream io.ReadWriteCloser, end func() error, logger *slog.Logger) {
	go func() {
		_, err := io.Copy(local, stream)
		if err != nil && !isClosed(err) {
			logger.Warn("Stream error", "err", errs.NewStreamError("read", err))
		}
		end()
	}()
	go func() {
		_, err := io.Copy(stream, local)
		if err != nil && !isClosed(err) {
			logger.Warn("Stream error", "err", errs.NewStreamError("write", err))
		}
		local.Close()
		stream.Close()
	}()
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed)
}
