package uci

import "fmt"

// ---------------------------------------------------------------------------
// Network service on top of the command channel
// ---------------------------------------------------------------------------

// Channel is the command surface Network needs; *Driver implements it.
type Channel interface {
	Submit(Frame) error
	ReadData() []byte
	ReadStatus() Status
	Accept() error
	Abort()
}

// Socket is a controller-assigned socket id. Id 0 is valid; failure is
// signalled by the status reply, never by the id itself. A closed id must
// not be reused.
type Socket byte

// Transport selects the connect opcode.
type Transport byte

const (
	TCP Transport = netTCPConnect
	UDP Transport = netUDPConnect
)

// ReadAgain is returned by Read when the controller had no data yet and the
// read should simply be reissued.
const ReadAgain = -1

// MaxRead is the largest usable chunk per Read: the data queue minus the
// two-byte length prefix and slack the controller keeps for itself.
const MaxRead = DataQueueSize - 4

// Network exposes the controller's socket and interface commands. Every
// call is one full command round trip (submit, drain data, drain status,
// accept), so responses never leak into the next command.
type Network struct {
	ch Channel
}

// NewNetwork builds a Network on a command channel.
func NewNetwork(ch Channel) *Network {
	return &Network{ch: ch}
}

// transact runs one command round trip and returns a copy of the response
// data alongside the parsed status.
func (n *Network) transact(op string, f Frame) ([]byte, Status, error) {
	if err := n.ch.Submit(f); err != nil {
		return nil, Status{}, fmt.Errorf("%s: %w", op, err)
	}
	data := append([]byte(nil), n.ch.ReadData()...)
	st := n.ch.ReadStatus()
	if err := n.ch.Accept(); err != nil {
		return nil, Status{}, fmt.Errorf("%s: %w", op, err)
	}
	return data, st, nil
}

// Identify probes the controller and returns its identification string.
func (n *Network) Identify() (string, error) {
	data, st, err := n.transact("identify", Frame{Target: TargetDOS, Op: dosIdentify})
	if err != nil {
		return "", err
	}
	if !st.OK() {
		return "", &StatusError{Op: "identify", Status: st}
	}
	return string(data), nil
}

// IPAddress returns the controller's network address.
func (n *Network) IPAddress() (string, error) {
	f := Frame{Target: TargetNetwork, Op: netGetIPAddress, Payload: []byte{0x00}}
	data, st, err := n.transact("ip address", f)
	if err != nil {
		return "", err
	}
	if !st.OK() {
		return "", &StatusError{Op: "ip address", Status: st}
	}
	return string(data), nil
}

// Connect opens a socket to host:port. The payload is the port little-endian
// followed by the NUL-terminated host. The socket id comes from the response
// data and is meaningless unless the status is success, which the caller
// checks.
func (n *Network) Connect(host string, port uint16, tr Transport) (Socket, Status, error) {
	payload := make([]byte, 0, len(host)+3)
	payload = append(payload, byte(port&0xFF), byte(port>>8))
	payload = append(payload, host...)
	payload = append(payload, 0x00)

	data, st, err := n.transact("connect", Frame{Target: TargetNetwork, Op: byte(tr), Payload: payload})
	if err != nil {
		return 0, Status{}, err
	}
	var id Socket
	if len(data) > 0 {
		id = Socket(data[0])
	}
	return id, st, nil
}

// Read asks for up to maxLen bytes from the socket. The response carries a
// two-byte little-endian length prefix: 0 means EOF or no data on a closed
// stream, 0xFFFF means nothing yet, reported as ReadAgain with no payload.
func (n *Network) Read(s Socket, maxLen int) (int, []byte, error) {
	if maxLen > MaxRead {
		maxLen = MaxRead
	}
	f := Frame{
		Target:  TargetNetwork,
		Op:      netSocketRead,
		Payload: []byte{byte(s), byte(maxLen & 0xFF), byte(maxLen >> 8)},
	}
	data, _, err := n.transact("read", f)
	if err != nil {
		return 0, nil, err
	}
	if len(data) < 2 {
		return 0, nil, nil
	}
	raw := int(data[0]) | int(data[1])<<8
	if raw == 0xFFFF {
		return ReadAgain, nil, nil
	}
	if raw > len(data)-2 {
		raw = len(data) - 2
	}
	return raw, data[2 : 2+raw], nil
}

// Write sends raw bytes on the socket.
func (n *Network) Write(s Socket, p []byte) error {
	payload := make([]byte, 0, len(p)+1)
	payload = append(payload, byte(s))
	payload = append(payload, p...)
	_, st, err := n.transact("write", Frame{Target: TargetNetwork, Op: netSocketWrite, Payload: payload})
	if err != nil {
		return err
	}
	if !st.OK() {
		return &StatusError{Op: "write", Status: st}
	}
	return nil
}

// Close releases the socket id.
func (n *Network) Close(s Socket) error {
	f := Frame{Target: TargetNetwork, Op: netSocketClose, Payload: []byte{byte(s)}}
	_, st, err := n.transact("close", f)
	if err != nil {
		return err
	}
	if !st.OK() {
		return &StatusError{Op: "close", Status: st}
	}
	return nil
}
