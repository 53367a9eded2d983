package uci

// ---------------------------------------------------------------------------
// Line assembly over bounded socket reads
// ---------------------------------------------------------------------------

// LineReader turns the channel's bounded physical reads into a byte and
// line stream. A partial line survives across refills; the buffer never
// exceeds one physical read.
type LineReader struct {
	net  *Network
	sock Socket

	buf []byte
	pos int
}

// NewLineReader reads from one socket of the given network service.
func NewLineReader(n *Network, s Socket) *LineReader {
	return &LineReader{net: n, sock: s}
}

// NextChar returns the next byte, refilling from the socket when the buffer
// is exhausted and reissuing reads that report ReadAgain. It returns 0 at
// end of stream.
func (r *LineReader) NextChar() (byte, error) {
	for r.pos >= len(r.buf) {
		n, data, err := r.net.Read(r.sock, MaxRead)
		if err != nil {
			return 0, err
		}
		if n == ReadAgain {
			continue
		}
		if n == 0 {
			return 0, nil
		}
		r.buf = append(r.buf[:0], data...)
		r.pos = 0
	}
	c := r.buf[r.pos]
	r.pos++
	return c, nil
}

// NextLine accumulates bytes until LF or end of stream, dropping CR. The ok
// flag is false only when the stream ended and nothing was read, so empty
// lines mid-stream still report true.
func (r *LineReader) NextLine() (string, bool, error) {
	var line []byte
	for {
		c, err := r.NextChar()
		if err != nil {
			return "", false, err
		}
		if c == 0 {
			return string(line), len(line) > 0, nil
		}
		if c == '\r' {
			continue
		}
		if c == '\n' {
			return string(line), true, nil
		}
		line = append(line, c)
	}
}
