// Package core implements the cycle-synchronous Gigatron ROM core: the
// native-CPU scanline driver, the vCPU bytecode interpreter, the extension
// FSM framework, and the v6502 guest emulator. Everything in this package
// is platform-independent — no video, audio, or input device code lives
// here, only the state machine that the Gigatron's native CPU would run.
package core

// Zero-page byte offsets. Page 0 is the hot-variable page: the contract
// every component agrees on (spec §3). Offsets are chosen to pack
// related fields contiguously; they are an implementation choice, not
// hardware-mandated, since this core does not emit native opcodes that
// hardcode these addresses the way the real ROM's assembler does.
const (
	zpMemSize = 0x00 // detected RAM size class

	zpEntropy0 = 0x02
	zpEntropy1 = 0x03
	zpEntropy2 = 0x04

	zpVideoY      = 0x06
	zpVideoModeB  = 0x07 // pointer (2 bytes)
	zpVideoModeC  = 0x09
	zpVideoModeD  = 0x0b
	zpNextVideo   = 0x0d // pointer (2 bytes)
	zpFrameCount  = 0x0f

	zpSerialRaw   = 0x10
	zpSerialLast  = 0x11
	zpButtonState = 0x12
	zpResetTimer  = 0x13

	zpXout     = 0x15
	zpXoutMask = 0x16

	// vCPU context
	zpVTicks     = 0x18 // signed, 1 byte (ticks remaining this slice)
	zpVPC        = 0x1a // 2 bytes
	zpVAC        = 0x1c // 2 bytes
	zpVLR        = 0x1e // 2 bytes
	zpVSP        = 0x20 // 2 bytes
	zpVReturn    = 0x22 // 2 bytes
	zpVCpuSelect = 0x24 // 1 byte: interpreterID of the active interpreter

	zpSysFn   = 0x26 // 2 bytes
	zpSysArgs = 0x28 // 8 bytes, 0x28..0x2f

	zpFsmState = 0x30 // 1 byte

	zpSoundTimer   = 0x31
	zpLedState     = 0x32
	zpChannelMask  = 0x33
	zpRomType      = 0x34
	zpChannel      = 0x35 // current audio channel 0..3

	zpCarry = 0x36 // carry/borrow out of the last ADDV/SUBV, consumed by ADDSV

	// Extended accumulator blocks used by long-integer / floating helpers
	zpVLAC = 0x40 // 4 bytes: vLAC[0..3]
	zpVLAX = 0x44 // 5 bytes: vLAX[0..4]
	zpVFAS = 0x49
	zpVFAE = 0x4a
	zpVT2  = 0x4b // 2 bytes
	zpVT3  = 0x4d // 2 bytes
)

// Page 1 byte offsets (video table lives at 0x0100..0x01ef, the
// per-frame/reset control block at 0x01f0..0x01ff).
const (
	page1Base = 0x0100

	videoTableEntries = 120 // (Yi, dXi) pairs, 2 bytes each = 240 bytes

	p1VReset       = 0x01f0 // 2 bytes
	p1FrameTimerA  = 0x01f2
	p1FrameTimerB  = 0x01f3
	p1VIrq         = 0x01f6 // 2 bytes: vIRQ vector pointer
	p1ExpCtrl      = 0x01f8 // expansion control bits
	p1VideoTop     = 0x01f9 // top-skipped-rows count

	// Four audio channels, 3 bytes each starting at 0x01fa would overrun
	// the page; audio channel state instead lives in its own block.
	audioChannelBase  = 0x0200 // one page dedicated to 4 channels x 8 bytes
	audioChannelBytes = 8      // waveform/mod, key freq (2), phase accumulator (2), reserved
)

// Machine is the entire Gigatron address space plus the runtime fields
// that do not live in addressable RAM (the "vector" the spec's design
// notes describe, with named accessors layered over it — see
// DESIGN.md's entry on the zero-page model).
type Machine struct {
	RAM [65536]byte

	// Native CPU scanline state — not guest-visible, but part of the
	// cycle-accounting contract of §4.1.
	cycleInScanline int
	scanlineInFrame int
	out             uint8 // the 8-bit VGA OUT register (bit layout in §6)

	// xout refresh accounting: audio samples accumulate here across up
	// to 4 scanlines before RefreshXout folds them into the latch.
	xoutAccum       uint16
	linesSinceXout  int

	// Active interpreter. vCpuSelect stores only the page's high byte in
	// real hardware; we also keep a typed tag for dispatch clarity.
	activeInterp interpreterID

	rng entropyPool

	board BoardVariant

	extraSys map[SysHandlerID]SysHandler

	// resetHandler, when set, is invoked at the end of softReset so a
	// loader package can redeposit a program (spec §4.5, "re-enters the
	// standard GT1 loader with Reset.gt1") without package core
	// depending on gt1.
	resetHandler func(m *Machine)

	lupCache lupCache

	v6 *v6502State

	loadedCRC uint32
}

type interpreterID uint8

const (
	interpVCPU interpreterID = iota
	interpV6502
	interpFSM14 // multiply/divide
	interpFSM18 // copy/move
	interpFSM1A // long integer/float helpers
	interpFSM21 // vIRQ save/restore
	interpFSM22 // fill
	interpFSM23 // blit
)

// BoardVariant names the board the machine models (§9, "Bank switching
// (open question)"). The variant is recorded at construction only: RAM
// is a flat 64KB array for every variant and no bank switching or
// bank reconciliation is modeled; 512KB has no variant (see DESIGN.md).
type BoardVariant int

const (
	Board64K BoardVariant = iota
	Board128K
)

// NewMachine returns a freshly constructed, not-yet-booted machine.
// Call Boot to run the power-on sequence before driving scanlines.
func NewMachine(board BoardVariant) *Machine {
	return &Machine{board: board}
}

// --- zero-page byte/word accessors -----------------------------------

func (m *Machine) zp(off uint8) uint8        { return m.RAM[off] }
func (m *Machine) setZp(off uint8, v uint8)  { m.RAM[off] = v }

func (m *Machine) zpWord(off uint8) uint16 {
	return uint16(m.RAM[off]) | uint16(m.RAM[off+1])<<8
}

func (m *Machine) setZpWord(off uint8, v uint16) {
	m.RAM[off] = uint8(v)
	m.RAM[off+1] = uint8(v >> 8)
}

func (m *Machine) peek(addr uint16) uint8     { return m.RAM[addr] }
func (m *Machine) poke(addr uint16, v uint8)  { m.RAM[addr] = v }

func (m *Machine) peekWord(addr uint16) uint16 {
	return uint16(m.RAM[addr]) | uint16(m.RAM[addr+1])<<8
}

func (m *Machine) pokeWord(addr uint16, v uint16) {
	m.RAM[addr] = uint8(v)
	m.RAM[addr+1] = uint8(v >> 8)
}

// vTicks is stored as a signed byte budget in units of 2 native cycles
// (spec invariant in §3). It lives only in zpVTicks, so guest code and
// host code read the same byte; the accessors widen it to int16 and
// setVTicks clamps to the signed-byte range.
func (m *Machine) vTicks() int16      { return int16(int8(m.zp(zpVTicks))) }
func (m *Machine) setVTicks(t int16) {
	if t > 127 {
		t = 127
	}
	if t < -128 {
		t = -128
	}
	m.setZp(zpVTicks, uint8(int8(t)))
}

func (m *Machine) vPC() uint16       { return m.zpWord(zpVPC) }
func (m *Machine) setVPC(v uint16)   { m.setZpWord(zpVPC, v) }
func (m *Machine) vAC() uint16       { return m.zpWord(zpVAC) }
func (m *Machine) setVAC(v uint16)   { m.setZpWord(zpVAC, v) }
func (m *Machine) vLR() uint16       { return m.zpWord(zpVLR) }
func (m *Machine) setVLR(v uint16)   { m.setZpWord(zpVLR, v) }
func (m *Machine) vSP() uint16       { return m.zpWord(zpVSP) }
func (m *Machine) setVSP(v uint16)   { m.setZpWord(zpVSP, v) }
