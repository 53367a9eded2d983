package uci

import (
	"fmt"
	"os"
)

// ---------------------------------------------------------------------------
// Device-file port
// ---------------------------------------------------------------------------

// FilePort reaches the register file through a byte-addressable device node
// (a /dev/mem style mapping of the cartridge IO page) at a fixed base
// offset. Read failures report 0xFF, which never looks idle, so the driver
// surfaces them as timeouts instead of acting on garbage.
type FilePort struct {
	f    *os.File
	base int64
}

// DefaultRegisterBase is where the command interface sits on the machine bus.
const DefaultRegisterBase = 0xDF1C

// OpenFilePort opens the device node backing the register file.
func OpenFilePort(path string, base int64) (*FilePort, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("open register device: %w", err)
	}
	return &FilePort{f: f, base: base}, nil
}

// Close releases the device node.
func (p *FilePort) Close() error { return p.f.Close() }

func (p *FilePort) peek(reg int64) byte {
	var b [1]byte
	if _, err := p.f.ReadAt(b[:], p.base+reg); err != nil {
		return 0xFF
	}
	return b[0]
}

func (p *FilePort) poke(reg int64, v byte) {
	_, _ = p.f.WriteAt([]byte{v}, p.base+reg)
}

func (p *FilePort) ReadStatus() byte     { return p.peek(RegControl) }
func (p *FilePort) WriteControl(b byte)  { p.poke(RegControl, b) }
func (p *FilePort) WriteCommand(b byte)  { p.poke(RegCommand, b) }
func (p *FilePort) ReadResponse() byte   { return p.peek(RegResponse) }
func (p *FilePort) ReadStatusData() byte { return p.peek(RegStatusData) }
