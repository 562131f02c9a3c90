// Package dropfile decodes door32.sys, the fixed-order dropfile a BBS host
// writes before launching a door.
package dropfile

import (
	"bytes"
	"io/ioutil"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rectcircle/doorparty/internal/errs"
)

// ConnectionLocal - connection type of a session run on the BBS console
const ConnectionLocal = 0

// Origin - the caller's session as described by door32.sys
type Origin struct {
	ConnectionType   int
	ConnectionHandle int
	BaudRate         int
	HostSoftware     string
	UserNumber       int
	UserName         string
	UserAlias        string
	UserSecurity     int
	UserTime         int
	Terminal         int
	NodeNumber       int
}

type fieldKind int

const (
	kindInteger fieldKind = iota
	kindText
)

type field struct {
	name    string
	kind    fieldKind
	integer func(*Origin) *int
	text    func(*Origin) *string
}

// schema is consumed strictly by line position.
var schema = []field{
	{name: "connectionType", kind: kindInteger, integer: func(o *Origin) *int { return &o.ConnectionType }},
	{name: "connectionHandle", kind: kindInteger, integer: func(o *Origin) *int { return &o.ConnectionHandle }},
	{name: "baudRate", kind: kindInteger, integer: func(o *Origin) *int { return &o.BaudRate }},
	{name: "hostSoftware", kind: kindText, text: func(o *Origin) *string { return &o.HostSoftware }},
	{name: "userNumber", kind: kindInteger, integer: func(o *Origin) *int { return &o.UserNumber }},
	{name: "userName", kind: kindText, text: func(o *Origin) *string { return &o.UserName }},
	{name: "userAlias", kind: kindText, text: func(o *Origin) *string { return &o.UserAlias }},
	{name: "userSecurity", kind: kindInteger, integer: func(o *Origin) *int { return &o.UserSecurity }},
	{name: "userTime", kind: kindInteger, integer: func(o *Origin) *int { return &o.UserTime }},
	{name: "terminal", kind: kindInteger, integer: func(o *Origin) *int { return &o.Terminal }},
	{name: "nodeNumber", kind: kindInteger, integer: func(o *Origin) *int { return &o.NodeNumber }},
}

// FieldCount - number of lines door32.sys defines
var FieldCount = len(schema)

// empty - the value of an Origin before any line is applied
func empty() Origin {
	var o Origin
	for _, f := range schema {
		if f.kind == kindInteger {
			*f.integer(&o) = -1
		}
	}
	return o
}

// Parse - decode dropfile content, line i feeds schema field i.
// Lines past the schema are ignored, missing lines keep the empty value.
func Parse(content []byte) (Origin, error) {
	o := empty()
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if i >= len(schema) {
			break
		}
		line = strings.TrimSuffix(line, "\r")
		f := schema[i]
		switch f.kind {
		case kindInteger:
			n, err := strconv.Atoi(line)
			if err != nil {
				return Origin{}, errs.NewValidationError(f.name, line, err)
			}
			if n < 0 {
				return Origin{}, errs.NewValidationError(f.name, line, nil)
			}
			*f.integer(&o) = n
		case kindText:
			*f.text(&o) = line
		}
	}
	return o, nil
}

// Load - read and Parse the dropfile at path
func Load(path string, logger *slog.Logger) (Origin, error) {
	content, err := ioutil.ReadFile(path)
	if err != nil {
		return Origin{}, errs.NewParseError(path, errors.Wrap(err, "read dropfile"))
	}
	o, err := Parse(content)
	if err != nil {
		return Origin{}, err
	}
	logger.Debug("DOOR32", "data", o)
	return o, nil
}

// MarshalText - write the Origin back in door32.sys form, one field per line
func (o Origin) MarshalText() ([]byte, error) {
	var buffer bytes.Buffer
	for _, f := range schema {
		switch f.kind {
		case kindInteger:
			buffer.WriteString(strconv.Itoa(*f.integer(&o)))
		case kindText:
			if strings.ContainsAny(*f.text(&o), "\r\n") {
				return nil, errors.Errorf("field %s contains a line break", f.name)
			}
			buffer.WriteString(*f.text(&o))
		}
		buffer.WriteString("\r\n")
	}
	return buffer.Bytes(), nil
}

// IsLocal - whether the session runs on the BBS console instead of a remote connection
func (o Origin) IsLocal() bool {
	return o.ConnectionType == ConnectionLocal
}

func (o Origin) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(schema))
	for _, f := range schema {
		switch f.kind {
		case kindInteger:
			attrs = append(attrs, slog.Int(f.name, *f.integer(&o)))
		case kindText:
			attrs = append(attrs, slog.String(f.name, *f.text(&o)))
		}
	}
	return slog.GroupValue(attrs...)
}
