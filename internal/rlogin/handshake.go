// Package rlogin - the client side of an rlogin session carried over the tunnel:
// the client hello, then a transparent relay.
package rlogin

import (
	"bytes"

	"github.com/rectcircle/doorparty/internal/session"
	"github.com/rectcircle/doorparty/internal/variable"
)

// ClientHello - `\0<password>\0<tag><alias>\0<game>/115200\0`
func ClientHello(password, tag, alias, game string) []byte {
	var buffer bytes.Buffer
	buffer.Grow(len(password) + len(tag) + len(alias) + len(game) + len(variable.TerminalSpeedSuffix) + 4)
	buffer.WriteByte(0)
	buffer.WriteString(password)
	buffer.WriteByte(0)
	buffer.WriteString(tag)
	buffer.WriteString(alias)
	buffer.WriteByte(0)
	buffer.WriteString(game)
	buffer.WriteString(variable.TerminalSpeedSuffix)
	buffer.WriteByte(0)
	return buffer.Bytes()
}

// Handshake - the client hello for a session
func Handshake(d session.Descriptor) []byte {
	return ClientHello(d.SessionPassword(), d.RLogin.BBSTag, d.Origin.UserAlias, d.Game)
}
