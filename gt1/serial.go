package gt1

import (
	"github.com/gigatron-rom/gigacore/core"
)

// Serial loader protocol constants (spec §6): 65-byte frames clocked
// in sync with video. A real serial link samples these at specific
// videoY values; we expose the same frame shape as a host-side
// streaming decoder a frontend can feed from a TTY or a file.
const (
	serialFrameSize    = 65
	serialProtocolByte = 'L'
)

// SerialLoader incrementally decodes the 65-byte-frame wire protocol
// into segments, the way a real serial link would drip bytes in over
// many frames rather than handing over a complete file at once.
type SerialLoader struct {
	program Program
	done    bool
}

// NewSerialLoader returns a loader ready to accept frames.
func NewSerialLoader() *SerialLoader {
	return &SerialLoader{}
}

// Feed appends one complete 65-byte frame. It returns true once a
// length-0 terminator frame has completed the transfer, at which
// point Program returns the assembled result.
func (s *SerialLoader) Feed(frame []byte) (bool, error) {
	if s.done {
		return true, nil
	}
	if len(frame) != serialFrameSize {
		return false, ErrTruncated
	}
	if frame[0] != serialProtocolByte {
		return false, ErrUnsupportedFormat
	}

	length := frame[1]
	addr := uint16(frame[2])<<8 | uint16(frame[3])

	if length == 0 {
		s.program.Entry = addr
		s.done = true
		return true, nil
	}

	n := int(length)
	if n == 0 {
		n = 256
	}
	payload := frame[4 : 4+min(n, len(frame)-4)]
	s.program.Segments = append(s.program.Segments, Segment{
		Addr: addr,
		Data: append([]byte(nil), payload...),
	})
	return false, nil
}

// Program returns the assembled program once Feed has reported
// completion.
func (s *SerialLoader) Program() *Program { return &s.program }

// RegisterHandlers installs the loader/directory-backed SYS handlers
// (SYS_ReadRomDir, SYS_Exec) that package core leaves to an external
// collaborator (spec §1, "Out of scope": the loader utilities are
// produced outside the core; the core only consumes their interface).
func RegisterHandlers(m *core.Machine, dir *Directory) {
	m.RegisterSysHandler(core.SysReadRomDir, func(mm *core.Machine, _ uint8) bool {
		index := int(mm.PeekWord(core.SysArgsAddr))
		entry, ok := dir.At(index)
		nameAddr := mm.PeekWord(core.SysArgsAddr + 2)
		if !ok {
			mm.Poke(nameAddr, 0)
			return true
		}
		name := entry.Name
		if len(name) > 31 {
			name = name[:31]
		}
		for i := 0; i < len(name); i++ {
			mm.Poke(nameAddr+uint16(i), name[i])
		}
		mm.Poke(nameAddr+uint16(len(name)), 0)
		return true
	})

	m.RegisterSysHandler(core.SysExec, func(mm *core.Machine, _ uint8) bool {
		pathAddr := mm.PeekWord(core.SysArgsAddr)
		path := readCString(mm, pathAddr)
		prog, _, crc, err := LoadFile(path)
		if err != nil {
			return true // leave sysArgs as-is; guest polls for a zero entry as failure
		}
		LoadIntoMachine(mm, prog)
		mm.SetProgramCRC(crc)
		return true
	})
}

// RegisterReload arranges for softReset to redeposit the program at
// path (typically Reset.gt1, the standard loader's own entry point)
// every time the guest triggers a soft reset, matching spec §4.5's
// "re-enters the standard GT1 loader with Reset.gt1". A failed reload
// leaves the machine's RAM and vPC exactly as softReset already set
// them, the same way a real serial loader sits idle until a program
// actually arrives.
func RegisterReload(m *core.Machine, path string) {
	m.RegisterResetHandler(func(mm *core.Machine) {
		prog, _, crc, err := LoadFile(path)
		if err != nil {
			return
		}
		LoadIntoMachine(mm, prog)
		mm.SetProgramCRC(crc)
	})
}

func readCString(m *core.Machine, addr uint16) string {
	var b []byte
	for i := 0; i < 256; i++ {
		c := m.Peek(addr + uint16(i))
		if c == 0 {
			break
		}
		b = append(b, c)
	}
	return string(b)
}

// LoadIntoMachine deposits every segment of a decoded program into
// machine RAM and sets vPC to its entry address, the common effect of
// both a cold boot's Reset.gt1 load and SYS_Exec.
func LoadIntoMachine(m *core.Machine, p *Program) {
	for _, seg := range p.Segments {
		for i, b := range seg.Data {
			m.Poke(seg.Addr+uint16(i), b)
		}
	}
	m.SetVPC(p.Entry)
}
