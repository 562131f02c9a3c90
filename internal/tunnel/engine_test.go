package tunnel

import (
	"context"
	"errors"
	"io"
	"net"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rectcircle/doorparty/internal/dropfile"
	"github.com/rectcircle/doorparty/internal/errs"
	"github.com/rectcircle/doorparty/internal/logs"
	"github.com/rectcircle/doorparty/internal/session"
	"github.com/rectcircle/doorparty/internal/settings"
)

type forwardRequest struct {
	srcHost string
	srcPort int
	dstHost string
	dstPort int
}

// fakeTunnel - reports Ready as soon as it is dialed
type fakeTunnel struct {
	forwardErr error
	stream     io.ReadWriteCloser

	mu       sync.Mutex
	requests []forwardRequest
	ended    chan struct{}
	once     sync.Once
}

func newFakeTunnel(stream io.ReadWriteCloser, forwardErr error) *fakeTunnel {
	return &fakeTunnel{forwardErr: forwardErr, stream: stream, ended: make(chan struct{})}
}

func (f *fakeTunnel) Forward(srcHost string, srcPort int, dstHost string, dstPort int) (io.ReadWriteCloser, error) {
	f.mu.Lock()
	f.requests = append(f.requests, forwardRequest{srcHost, srcPort, dstHost, dstPort})
	f.mu.Unlock()
	if f.forwardErr != nil {
		return nil, f.forwardErr
	}
	return f.stream, nil
}

func (f *fakeTunnel) Wait() error {
	<-f.ended
	return nil
}

func (f *fakeTunnel) End() error {
	f.once.Do(func() { close(f.ended) })
	return nil
}

type fakeDialer struct {
	tunnel *fakeTunnel
	err    error
	cfg    settings.SSH
}

func (d *fakeDialer) Dial(ctx context.Context, cfg settings.SSH) (Tunnel, error) {
	d.cfg = cfg
	if d.err != nil {
		return nil, d.err
	}
	return d.tunnel, nil
}

type handoffCall struct {
	err    error
	stream io.ReadWriteCloser
	local  io.ReadWriteCloser
}

func testDescriptor() session.Descriptor {
	s := settings.Default()
	s.SSH.Username = "door"
	s.RLogin.Server = "games.example.org"
	return session.Assemble(dropfile.Origin{UserAlias: "Neo"}, s, session.Overrides{})
}

func newTestEngine(dialer Dialer, local io.ReadWriteCloser, handoff Handoff) (*Engine, *[]State) {
	var (
		mu     sync.Mutex
		states []State
	)
	e := &Engine{
		Descriptor: testDescriptor(),
		Local:      local,
		Dialer:     dialer,
		Handoff:    handoff,
		Logger:     logs.Discard(),
		OnTransition: func(from, to State) {
			mu.Lock()
			states = append(states, to)
			mu.Unlock()
		},
	}
	return e, &states
}

func TestEngineRun(t *testing.T) {
	t.Run("forward success", func(t *testing.T) {
		streamSide, _ := net.Pipe()
		localSide, _ := net.Pipe()
		tunnel := newFakeTunnel(streamSide, nil)
		dialer := &fakeDialer{tunnel: tunnel}
		calls := make(chan handoffCall, 1)
		e, states := newTestEngine(dialer, localSide, func(t Tunnel, d session.Descriptor, local io.ReadWriteCloser, err error, stream io.ReadWriteCloser) {
			calls <- handoffCall{err, stream, local}
			t.End()
		})
		if err := e.Run(context.Background()); err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
		call := <-calls
		if call.err != nil || call.stream != streamSide || call.local != localSide {
			t.Errorf("Handoff() got (%v, %v, %v)", call.err, call.stream, call.local)
		}
		want := []State{Connecting, Ready, Forwarding, Closed}
		if !reflect.DeepEqual(*states, want) {
			t.Errorf("transitions = %v, want %v", *states, want)
		}
		wantRequest := []forwardRequest{{"localhost", 2022, "games.example.org", 513}}
		if !reflect.DeepEqual(tunnel.requests, wantRequest) {
			t.Errorf("forward requests = %v, want %v", tunnel.requests, wantRequest)
		}
		if dialer.cfg.Username != "door" || dialer.cfg.Port != 2022 {
			t.Errorf("Dial() cfg = %+v", dialer.cfg)
		}
		if e.State() != Closed {
			t.Errorf("State() = %v, want closed", e.State())
		}
	})

	t.Run("connect error", func(t *testing.T) {
		called := false
		e, states := newTestEngine(&fakeDialer{err: errors.New("auth failed")}, nil, func(Tunnel, session.Descriptor, io.ReadWriteCloser, error, io.ReadWriteCloser) {
			called = true
		})
		err := e.Run(context.Background())
		var target *errs.TunnelError
		if !errors.As(err, &target) || target.Op != "connect" {
			t.Errorf("Run() error = %v, want connect TunnelError", err)
		}
		if called {
			t.Errorf("Handoff() called after connect error")
		}
		want := []State{Connecting, Closed}
		if !reflect.DeepEqual(*states, want) {
			t.Errorf("transitions = %v, want %v", *states, want)
		}
	})

	t.Run("forward error", func(t *testing.T) {
		tunnel := newFakeTunnel(nil, errors.New("connection refused"))
		calls := make(chan handoffCall, 1)
		e, states := newTestEngine(&fakeDialer{tunnel: tunnel}, nil, func(t Tunnel, d session.Descriptor, local io.ReadWriteCloser, err error, stream io.ReadWriteCloser) {
			calls <- handoffCall{err: err, stream: stream}
		})
		err := e.Run(context.Background())
		var target *errs.TunnelError
		if !errors.As(err, &target) || target.Op != "forward" {
			t.Errorf("Run() error = %v, want forward TunnelError", err)
		}
		call := <-calls
		if call.err == nil || call.stream != nil {
			t.Errorf("Handoff() got (%v, %v), want error and nil stream", call.err, call.stream)
		}
		select {
		case <-tunnel.ended:
		default:
			t.Errorf("tunnel not ended after forward error")
		}
		want := []State{Connecting, Ready, Closed}
		if !reflect.DeepEqual(*states, want) {
			t.Errorf("transitions = %v, want %v", *states, want)
		}
	})

	t.Run("context cancel ends tunnel", func(t *testing.T) {
		streamSide, _ := net.Pipe()
		tunnel := newFakeTunnel(streamSide, nil)
		e, _ := newTestEngine(&fakeDialer{tunnel: tunnel}, nil, func(Tunnel, session.Descriptor, io.ReadWriteCloser, error, io.ReadWriteCloser) {})
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- e.Run(ctx) }()
		time.Sleep(10 * time.Millisecond)
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run() error = %v, want nil", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("Run() did not return after cancel")
		}
	})
}

func TestEngineHandoffGetsCopy(t *testing.T) {
	streamSide, _ := net.Pipe()
	tunnel := newFakeTunnel(streamSide, nil)
	e, _ := newTestEngine(&fakeDialer{tunnel: tunnel}, nil, func(t Tunnel, d session.Descriptor, local io.ReadWriteCloser, err error, stream io.ReadWriteCloser) {
		d.RLogin.Server = "evil.example.org"
		d.Origin.UserAlias = "Smith"
		t.End()
	})
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if e.Descriptor.RLogin.Server != "games.example.org" || e.Descriptor.Origin.UserAlias != "Neo" {
		t.Errorf("Descriptor changed by Handoff: %+v", e.Descriptor)
	}
}

func TestEngineRunTwicePanics(t *testing.T) {
	e, _ := newTestEngine(&fakeDialer{err: errors.New("down")}, nil, nil)
	e.Run(context.Background())
	defer func() {
		if recover() == nil {
			t.Errorf("second Run() did not panic")
		}
	}()
	e.Run(context.Background())
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Idle, "idle"},
		{Connecting, "connecting"},
		{Ready, "ready"},
		{Forwarding, "forwarding"},
		{Closed, "closed"},
		{State(42), "state(42)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}
