package simpleecho

import (
	"io"
	"log"
	"net"

	"github.com/rectcircle/doorparty/tools"
)

// ListenAndServe - start a echo server
// and bind to `host:port` of TCP
func ListenAndServe(host string, port int) error {
	addr := tools.ToAddressString(host, port)
	// Listen to tcp addr
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Printf("Start a Echo Server Success! on %s\n", addr)
	return Serve(listener)
}

// Serve - echo every connection accepted on listener until it is closed
func Serve(listener net.Listener) error {
	for {
		// Wait accept connection
		conn, err := listener.Accept()
		if err != nil {
			return err
		}
		log.Printf("Client %s connection success\n", conn.RemoteAddr().String())
		// Serve a client connection
		go serve(conn)
	}
}

func serve(conn net.Conn) {
	// copy to conn.Write from conn.Read
	n, err := io.Copy(conn, conn)
	reason := "client close"
	if err != nil {
		reason = err.Error()
	}
	log.Printf(
		"client %s connection close, write %d byte, reason: %s\n",
		conn.RemoteAddr().String(),
		n,
		reason,
	)
	conn.Close()
}
