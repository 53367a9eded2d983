package uci

import (
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// Driver: framing, handshake, retry
// ---------------------------------------------------------------------------

// Driver runs the command handshake against a Port. It owns the shared
// response and status buffers: every Submit overwrites them, so callers
// drain both before issuing the next command. Not safe for concurrent use.
type Driver struct {
	port Port

	pollInterval time.Duration
	pollTimeout  time.Duration
	maxRetries   int
	retryBackoff time.Duration

	data   [DataQueueSize]byte
	status [StatusQueueSize]byte
}

// DriverOption tweaks driver timing.
type DriverOption func(*Driver)

// WithPollTimeout bounds how long the driver waits for the controller to go
// idle or to finish a command.
func WithPollTimeout(d time.Duration) DriverOption {
	return func(dr *Driver) { dr.pollTimeout = d }
}

// WithRetries sets how many times a flagged command error is cleared and
// the submission retried before giving up.
func WithRetries(n int, backoff time.Duration) DriverOption {
	return func(dr *Driver) {
		dr.maxRetries = n
		dr.retryBackoff = backoff
	}
}

// NewDriver wraps a Port with default timing: 2s poll budget, 5 retries
// with 10ms backoff.
func NewDriver(p Port, opts ...DriverOption) *Driver {
	d := &Driver{
		port:         p,
		pollInterval: 50 * time.Microsecond,
		pollTimeout:  2 * time.Second,
		maxRetries:   5,
		retryBackoff: 10 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit writes a frame to the command queue and strobes it in. If the
// controller flags an error the flag is cleared and the whole frame is
// rewritten, up to the retry budget; exhausting it returns ErrChannel.
// Waiting for idle or for completion past the poll budget returns
// ErrTimeout.
func (d *Driver) Submit(f Frame) error {
	if len(f.Payload) > MaxPayload {
		return fmt.Errorf("%w: %d bytes", ErrPayloadSize, len(f.Payload))
	}

	for attempt := 0; ; attempt++ {
		if err := d.waitState(stateIdle, "idle"); err != nil {
			return err
		}

		d.port.WriteCommand(f.Target)
		d.port.WriteCommand(f.Op)
		for _, b := range f.Payload {
			d.port.WriteCommand(b)
		}
		d.port.WriteControl(ctrlPushCmd)

		if d.port.ReadStatus()&statError == 0 {
			// Command accepted; wait until it leaves the busy state.
			return d.waitNotState(stateCmdBusy, "completion")
		}

		d.port.WriteControl(ctrlClearErr)
		if attempt >= d.maxRetries {
			return fmt.Errorf("%w: gave up after %d attempts", ErrChannel, attempt+1)
		}
		time.Sleep(d.retryBackoff)
	}
}

// ReadData drains the response data queue into the driver's buffer and
// returns it. The slice is valid until the next command.
func (d *Driver) ReadData() []byte {
	n := 0
	for n < len(d.data) && d.port.ReadStatus()&statDataAvail != 0 {
		d.data[n] = d.port.ReadResponse()
		n++
	}
	return d.data[:n]
}

// ReadStatus drains the status data queue and parses it.
func (d *Driver) ReadStatus() Status {
	n := 0
	for n < len(d.status) && d.port.ReadStatus()&statStatAvail != 0 {
		d.status[n] = d.port.ReadStatusData()
		n++
	}
	return ParseStatus(d.status[:n])
}

// Accept acknowledges the drained response so the controller can accept the
// next command.
func (d *Driver) Accept() error {
	d.port.WriteControl(ctrlDataAcc)
	deadline := time.Now().Add(d.pollTimeout)
	for d.port.ReadStatus()&statDataAcc != 0 {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: waiting for accept", ErrTimeout)
		}
		time.Sleep(d.pollInterval)
	}
	return nil
}

// Abort asks the controller to cancel the command in flight.
func (d *Driver) Abort() {
	d.port.WriteControl(ctrlAbort)
}

func (d *Driver) waitState(want byte, what string) error {
	deadline := time.Now().Add(d.pollTimeout)
	for d.port.ReadStatus()&statStateMask != want {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: waiting for %s", ErrTimeout, what)
		}
		time.Sleep(d.pollInterval)
	}
	return nil
}

func (d *Driver) waitNotState(not byte, what string) error {
	deadline := time.Now().Add(d.pollTimeout)
	for d.port.ReadStatus()&statStateMask == not {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: waiting for %s", ErrTimeout, what)
		}
		time.Sleep(d.pollInterval)
	}
	return nil
}
