package tunnel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/rectcircle/doorparty/internal/errs"
	"github.com/rectcircle/doorparty/internal/session"
	"github.com/rectcircle/doorparty/internal/settings"
	"github.com/rectcircle/doorparty/internal/variable"
)

// Tunnel - an established, authenticated gateway connection
type Tunnel interface {
	// Forward asks the gateway to connect `dstHost:dstPort` on our behalf,
	// announcing `srcHost:srcPort` as originator
	Forward(srcHost string, srcPort int, dstHost string, dstPort int) (io.ReadWriteCloser, error)
	// Wait blocks until the tunnel is closed, by the peer or by End
	Wait() error
	// End closes the tunnel, safe to call more than once
	End() error
}

// Dialer - open a Tunnel to the gateway described by cfg
type Dialer interface {
	Dial(ctx context.Context, cfg settings.SSH) (Tunnel, error)
}

// Handoff - called once the forward request completes; on error `stream` is nil
// and `local` must not be used
type Handoff func(t Tunnel, d session.Descriptor, local io.ReadWriteCloser, err error, stream io.ReadWriteCloser)

// State - Engine lifecycle state
type State int32

const (
	// Idle - not started
	Idle = State(iota)
	// Connecting - dialing and authenticating the gateway
	Connecting
	// Ready - authenticated, forward not yet open
	Ready
	// Forwarding - forwarded stream handed over
	Forwarding
	// Closed - terminal
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Ready:
		return "ready"
	case Forwarding:
		return "forwarding"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

var transitions = map[State][]State{
	Idle:       {Connecting},
	Connecting: {Ready, Closed},
	Ready:      {Forwarding, Closed},
	Forwarding: {Closed},
}

// Engine - run one tunnel for one session
type Engine struct {
	Descriptor session.Descriptor
	Local      io.ReadWriteCloser
	Dialer     Dialer
	Handoff    Handoff
	Logger     *slog.Logger
	// OnTransition, if set, observes every state change
	OnTransition func(from, to State)

	mu    sync.Mutex
	state State
}

// State - current state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) transition(to State) {
	e.mu.Lock()
	from := e.state
	allowed := false
	for _, s := range transitions[from] {
		if s == to {
			allowed = true
			break
		}
	}
	if !allowed {
		e.mu.Unlock()
		panic(fmt.Sprintf("tunnel: illegal transition %s -> %s", from, to))
	}
	e.state = to
	e.mu.Unlock()
	e.Logger.Debug("Tunnel state", "from", from.String(), "to", to.String())
	if e.OnTransition != nil {
		e.OnTransition(from, to)
	}
}

// Run - connect, forward, hand over and block until the tunnel closes.
// The returned error is the one that ended the tunnel, already logged;
// nil means the tunnel closed normally. Run may be called once.
func (e *Engine) Run(ctx context.Context) error {
	e.transition(Connecting)
	t, err := e.Dialer.Dial(ctx, e.Descriptor.SSH)
	if err != nil {
		err = errs.NewTunnelError("connect", err)
		e.Logger.Warn("Tunnel error", "err", err)
		e.transition(Closed)
		return err
	}
	e.transition(Ready)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			t.End()
		case <-stop:
		}
	}()

	stream, err := t.Forward(
		variable.ForwardOriginHost, e.Descriptor.SSH.Port,
		e.Descriptor.RLogin.Server, e.Descriptor.RLogin.Port,
	)
	if err != nil {
		err = errs.NewTunnelError("forward", err)
		e.Handoff(t, e.Descriptor, e.Local, err, nil)
		t.End()
		t.Wait()
		e.transition(Closed)
		return err
	}
	e.transition(Forwarding)
	e.Handoff(t, e.Descriptor, e.Local, nil, stream)

	if err = errs.NewTunnelError("wait", t.Wait()); err != nil {
		e.Logger.Warn("Tunnel error", "err", err)
	}
	e.transition(Closed)
	return err
}
