package simplesshd

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/subtle"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"log"
	"net"
	"sync"

	"github.com/rectcircle/doorparty/tools"
	"golang.org/x/crypto/ssh"
)

// Server - a minimal ssh gateway, password auth, `direct-tcpip` channels only.
// It stands in for the door party gateway in tests and local runs.
// reference https://gist.github.com/jpillora/b480fde82bff51a06238
type Server struct {
	Username string
	Password string
	Signer   ssh.Signer
	// Dial connects forward targets, defaults to net.Dial
	Dial func(network, addr string) (net.Conn, error)

	mu       sync.Mutex
	forwards []Forward
}

// Forward - a direct-tcpip request received by the Server
type Forward struct {
	DestAddr   string
	DestPort   uint32
	OriginAddr string
	OriginPort uint32
}

// GeneratePrivateKey - pem encoded rsa host key
func GeneratePrivateKey() []byte {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	tools.LogAndExitIfErr(err)
	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})
}

// Forwards - direct-tcpip requests seen so far
func (s *Server) Forwards() []Forward {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Forward{}, s.forwards...)
}

func (s *Server) config() *ssh.ServerConfig {
	config := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
			userOK := subtle.ConstantTimeCompare([]byte(c.User()), []byte(s.Username)) == 1
			passOK := subtle.ConstantTimeCompare(password, []byte(s.Password)) == 1
			if userOK && passOK {
				return nil, nil
			}
			return nil, fmt.Errorf("password rejected for %q", c.User())
		},
	}
	config.AddHostKey(s.Signer)
	return config
}

// Serve - accept ssh connections on listener until it is closed
func (s *Server) Serve(listener net.Listener) error {
	config := s.config()
	for {
		// Wait accept connection
		conn, err := listener.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn, config)
	}
}

// ListenAndServe - bind to `host:port` of TCP and Serve
func (s *Server) ListenAndServe(host string, port int) error {
	addr := tools.ToAddressString(host, port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Printf("Start a ssh gateway Success! on %s\n", addr)
	return s.Serve(listener)
}

func (s *Server) handleConn(conn net.Conn, config *ssh.ServerConfig) {
	// Before use, a handshake must be performed on the incoming net.Conn.
	sshConn, channels, requests, err := ssh.NewServerConn(conn, config)
	if err != nil {
		log.Printf("Client %s failed to handshake: %s\n", conn.RemoteAddr().String(), err)
		conn.Close()
		return
	}
	log.Printf("New SSH connection from %s (%s)\n", sshConn.RemoteAddr().String(), sshConn.ClientVersion())
	go ssh.DiscardRequests(requests)
	for newChannel := range channels {
		go s.handleChannel(newChannel, sshConn.RemoteAddr())
	}
}

func (s *Server) handleChannel(newChannel ssh.NewChannel, remoteAddr net.Addr) {
	// https://tools.ietf.org/html/rfc4254
	if t := newChannel.ChannelType(); t != "direct-tcpip" {
		// "session", "x11" and "forwarded-tcpip" not support
		newChannel.Reject(ssh.UnknownChannelType, fmt.Sprintf("unknown channel type: %s", t))
		log.Printf("Client %s connection error: not support channel type %s", remoteAddr.String(), t)
		return
	}
	s.handleDirectTCPIP(newChannel)
}

// https://tools.ietf.org/html/rfc4254#page-17
func (s *Server) handleDirectTCPIP(newChannel ssh.NewChannel) {
	d := Forward{}
	if err := ssh.Unmarshal(newChannel.ExtraData(), &d); err != nil {
		newChannel.Reject(ssh.ConnectionFailed, "error parsing forward data: "+err.Error())
		return
	}
	s.mu.Lock()
	s.forwards = append(s.forwards, d)
	s.mu.Unlock()

	sourceAddress := tools.ToAddressString(d.OriginAddr, int(d.OriginPort))
	destAddress := tools.ToAddressString(d.DestAddr, int(d.DestPort))

	dial := s.Dial
	if dial == nil {
		dial = net.Dial
	}
	destConnection, err := dial("tcp", destAddress)
	if err != nil {
		newChannel.Reject(ssh.ConnectionFailed, err.Error())
		return
	}

	connection, requests, err2 := newChannel.Accept()
	if err2 != nil {
		destConnection.Close()
		return
	}

	log.Printf("A direct-tcpip connection success, to %s from %s", destAddress, sourceAddress)

	go ssh.DiscardRequests(requests)
	var once sync.Once
	closeBoth := func() {
		connection.Close()
		destConnection.Close()
	}
	go func() {
		io.Copy(connection, destConnection)
		once.Do(closeBoth)
	}()
	go func() {
		io.Copy(destConnection, connection)
		once.Do(closeBoth)
	}()
}
