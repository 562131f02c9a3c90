// Package endpoint binds the BBS session handed to the door as a byte stream.
package endpoint

import (
	"io"
	"net"
	"os"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/rectcircle/doorparty/internal/dropfile"
	"golang.org/x/term"
)

// Conn - the local side of the relay. Both directions share one lifetime:
// once either direction ends the whole stream is closed (no half-open state).
type Conn struct {
	reader io.Reader
	writer io.Writer
	closer func() error
	once   sync.Once
	err    error
}

func newConn(reader io.Reader, writer io.Writer, closer func() error) *Conn {
	return &Conn{reader: reader, writer: writer, closer: closer}
}

func (c *Conn) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	if err != nil {
		c.Close()
	}
	return n, err
}

func (c *Conn) Write(p []byte) (int, error) {
	n, err := c.writer.Write(p)
	if err != nil {
		c.Close()
	}
	return n, err
}

// Close - release the stream, safe to call more than once
func (c *Conn) Close() error {
	c.once.Do(func() {
		if c.closer != nil {
			c.err = c.closer()
		}
	})
	return c.err
}

// FromHandle - bind the OS handle inherited from the BBS host.
// Sockets are wrapped as net.Conn, anything else (serial line, pipe) as a file.
func FromHandle(handle int) (*Conn, error) {
	if handle < 0 {
		return nil, errors.Errorf("invalid connection handle %d", handle)
	}
	file := os.NewFile(uintptr(handle), "door32-"+strconv.Itoa(handle))
	if file == nil {
		return nil, errors.Errorf("invalid connection handle %d", handle)
	}
	conn, err := net.FileConn(file)
	if err != nil {
		return newConn(file, file, file.Close), nil
	}
	// net.FileConn holds a dup of the descriptor
	file.Close()
	return newConn(conn, conn, conn.Close), nil
}

// Console - bind the terminal the door was launched on.
// A terminal input is put into raw mode and restored on Close.
func Console(in *os.File, out *os.File) (*Conn, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return newConn(in, out, nil), nil
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, errors.Wrap(err, "set console raw mode")
	}
	return newConn(in, out, func() error {
		return term.Restore(fd, oldState)
	}), nil
}

// Open - pick the endpoint described by the dropfile
func Open(origin dropfile.Origin) (*Conn, error) {
	if origin.IsLocal() {
		return Console(os.Stdin, os.Stdout)
	}
	return FromHandle(origin.ConnectionHandle)
}
