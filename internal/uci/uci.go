// Package uci drives the Ultimate 64/II+ command interface: a synchronous
// command/response channel exposed as a small register file. Commands are a
// target byte, an opcode and a payload; responses come back as a data queue
// and a status queue that must be drained and acknowledged before the next
// command.
package uci

import (
	"errors"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Register file
// ---------------------------------------------------------------------------

// Register offsets from the interface base address (0xDF1C on the machine bus).
const (
	RegControl    = 0 // write: control strobes; read: status flags
	RegCommand    = 1 // write: command bytes
	RegResponse   = 2 // read: response data queue
	RegStatusData = 3 // read: status data queue
)

// Control register strobes.
const (
	ctrlPushCmd  = 0x01
	ctrlDataAcc  = 0x02
	ctrlAbort    = 0x04
	ctrlClearErr = 0x08
)

// Status register flags.
const (
	statCmdBusy   = 0x01
	statDataAcc   = 0x02
	statAbortPend = 0x04
	statError     = 0x08
	statStateMask = 0x30
	statStatAvail = 0x40
	statDataAvail = 0x80
)

// Controller states, encoded in the two statStateMask bits.
const (
	stateIdle     = 0x00
	stateCmdBusy  = 0x10
	stateDataLast = 0x20
	stateDataMore = 0x30
)

// Queue capacities of the controller.
const (
	DataQueueSize   = 896
	StatusQueueSize = 256
)

// MaxPayload is the largest payload Submit accepts: the command queue holds
// DataQueueSize bytes including the target and opcode, and connect frames
// need room for a trailing NUL and a two-byte port.
const MaxPayload = DataQueueSize - 4

// Command targets.
const (
	TargetDOS     = 0x01
	TargetNetwork = 0x03
	TargetControl = 0x04
)

// DOS opcodes.
const (
	dosIdentify = 0x01
)

// Network opcodes.
const (
	netGetIPAddress = 0x05
	netTCPConnect   = 0x07
	netUDPConnect   = 0x08
	netSocketClose  = 0x09
	netSocketRead   = 0x10
	netSocketWrite  = 0x11
)

// ---------------------------------------------------------------------------
// Port
// ---------------------------------------------------------------------------

// Port is register-level access to the command interface. Implementations
// are a hardware bridge in production and a scripted fake in tests. Reads
// and writes are single bytes; the controller does its own queueing.
type Port interface {
	// ReadStatus reads the status register.
	ReadStatus() byte
	// WriteControl writes a strobe to the control register.
	WriteControl(b byte)
	// WriteCommand appends one byte to the command queue.
	WriteCommand(b byte)
	// ReadResponse pops one byte from the response data queue.
	ReadResponse() byte
	// ReadStatusData pops one byte from the status data queue.
	ReadStatusData() byte
}

// ---------------------------------------------------------------------------
// Frames and status replies
// ---------------------------------------------------------------------------

// Frame is one command for the controller.
type Frame struct {
	Target  byte
	Op      byte
	Payload []byte
}

// Status is the controller's textual reply for a command, a two-character
// code optionally followed by a comma and a message ("00,OK").
type Status struct {
	Code    string
	Message string
}

// OK reports whether the status code signals success.
func (s Status) OK() bool { return s.Code == "00" }

func (s Status) String() string {
	if s.Message == "" {
		return s.Code
	}
	return s.Code + "," + s.Message
}

// ParseStatus splits a raw status queue payload into code and message.
// Anything shorter than two characters keeps the raw text as the code.
func ParseStatus(raw []byte) Status {
	text := strings.TrimRight(string(raw), "\r\n\x00")
	if len(text) < 2 {
		return Status{Code: text}
	}
	code, rest := text[:2], text[2:]
	rest = strings.TrimPrefix(rest, ",")
	return Status{Code: code, Message: rest}
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	// ErrTimeout means the controller did not reach the expected state
	// within the driver's polling budget.
	ErrTimeout = errors.New("uci: controller timeout")

	// ErrChannel means the controller kept flagging command errors after
	// every retry.
	ErrChannel = errors.New("uci: command channel error")

	// ErrPayloadSize means a frame's payload exceeds MaxPayload.
	ErrPayloadSize = errors.New("uci: payload too large")
)

// StatusError wraps a non-success controller status into an error.
type StatusError struct {
	Op     string
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("uci: %s failed: %s", e.Op, e.Status)
}
