package core

// SetControllerRaw latches the raw sampled controller byte ahead of
// the vblank capture window (spec §4.1, "serial-input capture exactly
// when the controller shift register has all 8 bits"). A frontend
// calls this once per frame before RunFrame.
func (m *Machine) SetControllerRaw(raw uint8) {
	m.setZp(zpSerialRaw, raw)
}

// ButtonState returns the most recently decoded controller byte.
func (m *Machine) ButtonState() uint8 {
	return m.zp(zpButtonState)
}

// Reset re-runs the soft-reset sequence without re-detecting RAM size
// or re-seeding entropy, mirroring what holding Start actually
// triggers on real hardware (spec §4.5) as opposed to power-on Boot.
func (m *Machine) Reset() {
	m.softReset()
}

// FrameCount returns the free-running frame counter.
func (m *Machine) FrameCount() uint8 { return m.zp(zpFrameCount) }

// ScanlineInFrame and CycleInScanline expose the core's position within
// the current frame, for a monitor frontend to display timing state
// without reaching into package-private scheduling fields.
func (m *Machine) ScanlineInFrame() int { return m.scanlineInFrame }
func (m *Machine) CycleInScanline() int { return m.cycleInScanline }

// FsmState returns the raw zero-page byte driving whichever extension
// FSM is currently active (spec §4.3); meaningless when ActiveInterpreter
// reports "vCPU" or "v6502".
func (m *Machine) FsmState() uint8 { return m.zp(zpFsmState) }

// Board reports the configured RAM/bank-switching variant.
func (m *Machine) Board() BoardVariant { return m.board }

// ActiveInterpreter exposes vCpuSelect for diagnostics (the monitor
// frontend surfaces it directly).
func (m *Machine) ActiveInterpreter() string {
	switch m.activeInterp {
	case interpVCPU:
		return "vCPU"
	case interpV6502:
		return "v6502"
	case interpFSM14:
		return "FSM14 (mul/div)"
	case interpFSM18:
		return "FSM18 (copy)"
	case interpFSM1A:
		return "FSM1A (long/float)"
	case interpFSM21:
		return "FSM21 (vIRQ)"
	case interpFSM22:
		return "FSM22 (fill)"
	case interpFSM23:
		return "FSM23 (blit)"
	default:
		return "unknown"
	}
}

// VPC, VAC, VLR, VSP expose the vCPU register file read-only, for the
// monitor frontend and for tests that assert on guest-visible state
// without reaching into package-private fields.
func (m *Machine) VPC() uint16 { return m.vPC() }
func (m *Machine) VAC() uint16 { return m.vAC() }
func (m *Machine) VLR() uint16 { return m.vLR() }
func (m *Machine) VSP() uint16 { return m.vSP() }

// Peek/Poke expose raw memory access for loaders and tests.
func (m *Machine) Peek(addr uint16) uint8         { return m.peek(addr) }
func (m *Machine) Poke(addr uint16, v uint8)      { m.poke(addr, v) }
func (m *Machine) PeekWord(addr uint16) uint16    { return m.peekWord(addr) }
func (m *Machine) PokeWord(addr uint16, v uint16) { m.pokeWord(addr, v) }

// SetVPC lets a loader deposit an execution entry point directly
// (used by GT1's start address and by SYS_Exec).
func (m *Machine) SetVPC(addr uint16) { m.setVPC(addr) }

// SelectV6502 switches the active interpreter to the v6502 emulator at
// the given entry address (SYS_Run6502's effect, spec §4.6).
func (m *Machine) SelectV6502(entry uint16) {
	m.v6502Enter(entry)
}

// SysArgsAddr is the zero-page address of the SYS call's scratch
// argument block (sysArgs[0..7]), exported so packages that register
// SYS handlers via RegisterSysHandler can read/write arguments without
// package core exposing its whole zero-page layout.
const SysArgsAddr = zpSysArgs
