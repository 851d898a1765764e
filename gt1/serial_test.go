package gt1

import (
	"testing"

	"github.com/gigatron-rom/gigacore/core"
	"github.com/spf13/afero"
)

func buildFrame(length, addrHi, addrLo byte, payload []byte) []byte {
	frame := make([]byte, serialFrameSize)
	frame[0] = serialProtocolByte
	frame[1] = length
	frame[2] = addrHi
	frame[3] = addrLo
	copy(frame[4:], payload)
	return frame
}

func TestSerialLoader_SingleSegmentThenTerminator(t *testing.T) {
	loader := NewSerialLoader()

	done, err := loader.Feed(buildFrame(4, 0x02, 0x00, []byte{1, 2, 3, 4}))
	if err != nil {
		t.Fatalf("Feed segment: %v", err)
	}
	if done {
		t.Fatal("transfer should not be done after one data frame")
	}

	done, err = loader.Feed(buildFrame(0, 0x02, 0x00, nil))
	if err != nil {
		t.Fatalf("Feed terminator: %v", err)
	}
	if !done {
		t.Fatal("transfer should be done after the length-0 terminator")
	}

	prog := loader.Program()
	if len(prog.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(prog.Segments))
	}
	if prog.Entry != 0x0200 {
		t.Fatalf("entry = 0x%04X, want 0x0200", prog.Entry)
	}
}

func TestSerialLoader_RejectsWrongProtocolByte(t *testing.T) {
	loader := NewSerialLoader()
	frame := buildFrame(4, 0, 0, []byte{1, 2, 3, 4})
	frame[0] = 'X'
	if _, err := loader.Feed(frame); err != ErrUnsupportedFormat {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSerialLoader_RejectsWrongFrameSize(t *testing.T) {
	loader := NewSerialLoader()
	if _, err := loader.Feed([]byte{serialProtocolByte, 1, 2, 3}); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestLoadIntoMachine_DepositsSegmentsAndSetsEntry(t *testing.T) {
	m := core.NewMachine(core.Board64K)
	m.Boot()

	p := &Program{
		Segments: []Segment{{Addr: 0x0500, Data: []byte{0xaa, 0xbb}}},
		Entry:    0x0500,
	}
	LoadIntoMachine(m, p)

	if m.Peek(0x0500) != 0xaa || m.Peek(0x0501) != 0xbb {
		t.Fatalf("segment not deposited: %02X %02X", m.Peek(0x0500), m.Peek(0x0501))
	}
	if m.VPC() != 0x0500 {
		t.Fatalf("vPC = 0x%04X, want 0x0500", m.VPC())
	}
}

func TestRegisterHandlers_SysReadRomDirWritesCatalogName(t *testing.T) {
	m := core.NewMachine(core.Board64K)
	m.Boot()

	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/roms/a.gt1", []byte{0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x00}, 0o644)
	dir := NewDirectoryFS(fs, "/roms")
	RegisterHandlers(m, dir)

	m.PokeWord(core.SysArgsAddr, 0)        // requested index
	m.PokeWord(core.SysArgsAddr+2, 0x4000) // destination for the name string

	m.InvokeSysHandler(core.SysReadRomDir, 0)

	got := readCString(m, 0x4000)
	if got != "a" {
		t.Fatalf("directory entry name = %q, want %q", got, "a")
	}
}
