// Package ucitest provides a scripted command interface controller and an
// in-memory catalog server for driver, protocol and navigation tests.
package ucitest

import (
	"strconv"
	"strings"
)

// Status/control register bits, mirroring the hardware encoding.
const (
	bitPushCmd  = 0x01
	bitDataAcc  = 0x02
	bitAbort    = 0x04
	bitClearErr = 0x08

	bitError     = 0x08
	bitStateLast = 0x20
	bitStatAvail = 0x40
	bitDataAvail = 0x80
)

// FakePort emulates the controller behind the register-level port: command
// bytes accumulate until the push strobe, frames execute synchronously, and
// the response/status queues drain through the data registers. After a
// command the port sits in the data-pending state until the accept strobe,
// so a client that skips the handshake stalls instead of silently working.
type FakePort struct {
	// Handler answers protocol lines written to a connected socket.
	// Defaults to a server that rejects everything.
	Handler func(line string) string
	// Greeting is queued on every fresh socket before any command.
	Greeting string
	// ConnectStatus is the status reply for connect commands ("00,OK").
	ConnectStatus string
	// FailPushes injects the command error flag on the next N pushes.
	FailPushes int
	// RetryReads makes the next N socket reads answer the retry sentinel.
	RetryReads int
	// ChunkLimit caps the bytes returned per socket read; 0 means no cap.
	ChunkLimit int

	// Lines records every complete protocol line received, in order.
	Lines []string
	// LastConnect records the host:port of the most recent connect.
	LastConnect string
	// Closed records socket ids in close order.
	Closed []byte

	ipAddr  string
	cmd     []byte
	resp    []byte
	stat    []byte
	errFlag bool
	ackPend bool
	sockets map[byte]*fakeSocket
	nextID  byte
}

type fakeSocket struct {
	inbound []byte
	partial []byte
	open    bool
}

// NewFakePort returns a controller with the standard greeting and a handler
// that answers every line with a protocol error.
func NewFakePort() *FakePort {
	return &FakePort{
		Handler:       func(string) string { return "ERR unhandled\n" },
		Greeting:      "OK Assembly64 Browser\n",
		ConnectStatus: "00,OK",
		ipAddr:        "192.168.1.64",
		sockets:       map[byte]*fakeSocket{},
	}
}

// ---------------------------------------------------------------------------
// Port interface
// ---------------------------------------------------------------------------

func (p *FakePort) ReadStatus() byte {
	var b byte
	if len(p.resp) > 0 {
		b |= bitDataAvail
	}
	if len(p.stat) > 0 {
		b |= bitStatAvail
	}
	if p.errFlag {
		b |= bitError
	}
	if p.ackPend {
		b |= bitDataAcc | bitStateLast
	}
	return b
}

func (p *FakePort) WriteCommand(b byte) { p.cmd = append(p.cmd, b) }

func (p *FakePort) WriteControl(b byte) {
	if b&bitClearErr != 0 {
		p.errFlag = false
	}
	if b&bitAbort != 0 {
		p.cmd = p.cmd[:0]
		p.resp = nil
		p.stat = nil
		p.ackPend = false
	}
	if b&bitDataAcc != 0 {
		p.resp = nil
		p.stat = nil
		p.ackPend = false
	}
	if b&bitPushCmd != 0 {
		if p.FailPushes > 0 {
			p.FailPushes--
			p.errFlag = true
			p.cmd = p.cmd[:0]
			return
		}
		p.exec()
		p.cmd = p.cmd[:0]
	}
}

func (p *FakePort) ReadResponse() byte {
	if len(p.resp) == 0 {
		return 0
	}
	b := p.resp[0]
	p.resp = p.resp[1:]
	return b
}

func (p *FakePort) ReadStatusData() byte {
	if len(p.stat) == 0 {
		return 0
	}
	b := p.stat[0]
	p.stat = p.stat[1:]
	return b
}

// ---------------------------------------------------------------------------
// Command execution
// ---------------------------------------------------------------------------

func (p *FakePort) finish(resp []byte, status string) {
	p.resp = resp
	p.stat = []byte(status)
	p.ackPend = true
}

func (p *FakePort) exec() {
	if len(p.cmd) < 2 {
		p.finish(nil, "88,SHORT COMMAND")
		return
	}
	target, op, payload := p.cmd[0], p.cmd[1], p.cmd[2:]

	switch {
	case target == 0x01 && op == 0x01: // identify
		p.finish([]byte("ULTIMATE 64/II+ TESTBED"), "00,OK")
	case target == 0x03 && op == 0x05: // ip address
		p.finish([]byte(p.ipAddr), "00,OK")
	case target == 0x03 && (op == 0x07 || op == 0x08): // tcp/udp connect
		p.execConnect(payload)
	case target == 0x03 && op == 0x09: // close
		p.execClose(payload)
	case target == 0x03 && op == 0x10: // read
		p.execRead(payload)
	case target == 0x03 && op == 0x11: // write
		p.execWrite(payload)
	default:
		p.finish(nil, "99,UNKNOWN COMMAND")
	}
}

func (p *FakePort) execConnect(payload []byte) {
	if len(payload) < 3 {
		p.finish(nil, "88,SHORT COMMAND")
		return
	}
	port := int(payload[0]) | int(payload[1])<<8
	host := strings.TrimRight(string(payload[2:]), "\x00")
	p.LastConnect = hostPort(host, port)

	id := p.nextID
	p.nextID++
	p.sockets[id] = &fakeSocket{inbound: []byte(p.Greeting), open: true}
	p.finish([]byte{id}, p.ConnectStatus)
}

func (p *FakePort) execClose(payload []byte) {
	if len(payload) < 1 {
		p.finish(nil, "88,SHORT COMMAND")
		return
	}
	id := payload[0]
	if s, ok := p.sockets[id]; ok && s.open {
		s.open = false
		p.Closed = append(p.Closed, id)
		p.finish(nil, "00,OK")
		return
	}
	p.finish(nil, "85,NO SUCH SOCKET")
}

func (p *FakePort) execRead(payload []byte) {
	if len(payload) < 3 {
		p.finish(nil, "88,SHORT COMMAND")
		return
	}
	s, ok := p.sockets[payload[0]]
	if !ok {
		p.finish(nil, "85,NO SUCH SOCKET")
		return
	}
	if p.RetryReads > 0 {
		p.RetryReads--
		p.finish([]byte{0xFF, 0xFF}, "00,OK")
		return
	}
	want := int(payload[1]) | int(payload[2])<<8
	if p.ChunkLimit > 0 && want > p.ChunkLimit {
		want = p.ChunkLimit
	}
	if want > len(s.inbound) {
		want = len(s.inbound)
	}
	chunk := s.inbound[:want]
	s.inbound = s.inbound[want:]
	out := append([]byte{byte(want & 0xFF), byte(want >> 8)}, chunk...)
	p.finish(out, "00,OK")
}

func (p *FakePort) execWrite(payload []byte) {
	if len(payload) < 1 {
		p.finish(nil, "88,SHORT COMMAND")
		return
	}
	s, ok := p.sockets[payload[0]]
	if !ok || !s.open {
		p.finish(nil, "85,NO SUCH SOCKET")
		return
	}
	s.partial = append(s.partial, payload[1:]...)
	for {
		nl := strings.IndexByte(string(s.partial), '\n')
		if nl < 0 {
			break
		}
		line := strings.TrimRight(string(s.partial[:nl]), "\r")
		s.partial = s.partial[nl+1:]
		p.Lines = append(p.Lines, line)
		s.inbound = append(s.inbound, p.Handler(line)...)
	}
	p.finish(nil, "00,OK")
}

func hostPort(host string, port int) string {
	return host + ":" + strconv.Itoa(port)
}
