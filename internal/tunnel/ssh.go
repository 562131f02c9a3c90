package tunnel

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/rectcircle/doorparty/internal/settings"
	"github.com/rectcircle/doorparty/tools"
	"golang.org/x/crypto/ssh"
)

// direct-tcpip data struct as specified in RFC4254, Section 7.2
type localForwardChannelData struct {
	DestAddr string
	DestPort uint32

	OriginAddr string
	OriginPort uint32
}

// SSHDialer - Dialer over golang.org/x/crypto/ssh with password authentication
type SSHDialer struct {
	// HostKeyCallback defaults to accepting any host key
	HostKeyCallback ssh.HostKeyCallback
	// Timeout bounds the TCP connect and the ssh handshake, zero means none
	Timeout time.Duration
}

// Dial - connect and authenticate to the gateway
func (d SSHDialer) Dial(ctx context.Context, cfg settings.SSH) (Tunnel, error) {
	addr := tools.ToAddressString(cfg.Server, cfg.Port)
	hostKeyCallback := d.HostKeyCallback
	if hostKeyCallback == nil {
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	}
	password := cfg.Password
	config := &ssh.ClientConfig{
		User: cfg.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			// some gateways only offer keyboard-interactive, answer every prompt with the password
			ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: hostKeyCallback,
		Timeout:         d.Timeout,
	}

	dialer := net.Dialer{Timeout: d.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "dial %s", addr)
	}
	// the ssh handshake does not take a context, closing conn unblocks it
	stop := make(chan struct{})
	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()
	sshConn, channels, requests, err := ssh.NewClientConn(conn, addr, config)
	close(stop)
	<-watcherDone
	if err == nil && ctx.Err() != nil {
		sshConn.Close()
		err = ctx.Err()
	}
	if err != nil {
		conn.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, pkgerrors.Wrapf(ctxErr, "handshake %s", addr)
		}
		return nil, pkgerrors.Wrapf(err, "handshake %s", addr)
	}
	return &sshTunnel{client: ssh.NewClient(sshConn, channels, requests)}, nil
}

type sshTunnel struct {
	client *ssh.Client
	once   sync.Once
	ended  bool
	mu     sync.Mutex
}

// Forward - open a direct-tcpip channel, as `ssh -L` does
func (t *sshTunnel) Forward(srcHost string, srcPort int, dstHost string, dstPort int) (io.ReadWriteCloser, error) {
	payload := ssh.Marshal(&localForwardChannelData{
		DestAddr:   dstHost,
		DestPort:   uint32(dstPort),
		OriginAddr: srcHost,
		OriginPort: uint32(srcPort),
	})
	channel, requests, err := t.client.OpenChannel("direct-tcpip", payload)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "forward to %s", tools.ToAddressString(dstHost, dstPort))
	}
	go ssh.DiscardRequests(requests)
	return channel, nil
}

// Wait - nil when the tunnel was ended locally or the gateway hung up cleanly
func (t *sshTunnel) Wait() error {
	err := t.client.Wait()
	t.mu.Lock()
	ended := t.ended
	t.mu.Unlock()
	if ended || err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (t *sshTunnel) End() error {
	var err error
	t.once.Do(func() {
		t.mu.Lock()
		t.ended = true
		t.mu.Unlock()
		err = t.client.Close()
	})
	return err
}
