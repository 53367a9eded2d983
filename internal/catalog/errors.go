package catalog

import (
	"errors"
	"fmt"

	"github.com/asmb/a64browse/internal/uci"
)

// ErrNoInfo means the server answered an INFO request with no usable fields.
var ErrNoInfo = errors.New("catalog: no details for entry")

// ErrNotConnected means a command was issued without an open session.
var ErrNotConnected = errors.New("catalog: not connected")

// ProtocolError means the server's response did not match the protocol
// grammar: a malformed header, or a stream that ended mid-response.
type ProtocolError struct {
	Line   string
	Reason string
}

func (e *ProtocolError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("catalog: protocol error: %s", e.Reason)
	}
	return fmt.Sprintf("catalog: protocol error: %s (%q)", e.Reason, e.Line)
}

// ServerError is an explicit error line from the server.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("catalog: server error: %s", e.Message)
}

// ConnectError means the controller could not open the socket; the session
// never starts.
type ConnectError struct {
	Host   string
	Status uci.Status
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("catalog: connect to %s failed: %s", e.Host, e.Status)
}
