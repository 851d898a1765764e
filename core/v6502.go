package core

// v6502 interprets a near-complete NMOS 6502 instruction set on top of
// the same zero-page-as-stack Machine state (spec §4.4). Deliberate
// deviations from a real 6502, all load-bearing for this core rather
// than incidental:
//
//   - The stack lives in zero page (0x0000..0x00ff), not page 1, since
//     page 1 here is the vCPU video table.
//   - There is no hardware IRQ/NMI line. BRK returns control to vCPU.
//   - The decimal flag is tracked but never honored by ADC/SBC.
//   - The V flag is kept in bit 7 of the emulated P register for a
//     fast path and only rewritten to its real 6502 bit position (bit
//     6) when P is pushed or pulled.
//   - One entry point, v6502Enter (fresh fetch). v6502Step can also
//     re-execute an already-decoded instruction when the resume flag
//     is set, but runV6502 only yields between instructions and
//     nothing in this package sets that flag.

const (
	v6502MaxTicks = 19 // ticks (38 cycles) per slice before a forced yield
	v6502Overhead = 11 // fixed overhead cycles charged per slice entry
)

// Flag bit positions within the emulated P register. V sits at bit 7
// here (not 6) to let "has overflow" be read with a single sign test;
// pushP/pullP rewrite it to bit 6 to match a real NMOS 6502's pushed
// byte layout.
const (
	flagC uint8 = 1 << 0
	flagZ uint8 = 1 << 1
	flagI uint8 = 1 << 2
	flagD uint8 = 1 << 3
	flagB uint8 = 1 << 4
	flagU uint8 = 1 << 5
	flagV uint8 = 1 << 7 // fast-path position; bit 6 on the real CPU
)

type v6502State struct {
	a, x, y, p, sp uint8
	pc             uint16
	resume         bool
	resumeAddr     uint16
	resumeOpcode   uint8
}

func (m *Machine) v6502() *v6502State {
	if m.v6 == nil {
		m.v6 = &v6502State{sp: 0xff, p: flagU}
	}
	return m.v6
}

// v6502Enter starts guest v6502 execution at addr, discarding any
// resumable state (used by SelectV6502).
func (m *Machine) v6502Enter(addr uint16) {
	v := m.v6502()
	v.pc = addr
	v.resume = false
	m.activeInterp = interpV6502
	m.setZp(zpVCpuSelect, uint8(interpV6502))
}

// v6Push/v6Pull operate on the zero-page stack, wrapping within
// page 0 the way the real stack wraps within page 1.
func (m *Machine) v6Push(b uint8) {
	v := m.v6502()
	m.RAM[uint16(v.sp)] = b
	v.sp--
}

func (m *Machine) v6Pull() uint8 {
	v := m.v6502()
	v.sp++
	return m.RAM[uint16(v.sp)]
}

func (m *Machine) pushP() {
	v := m.v6502()
	p := v.p &^ flagV
	if v.p&flagV != 0 {
		p |= 1 << 6
	}
	m.v6Push(p | flagB | flagU)
}

func (m *Machine) pullP() {
	v := m.v6502()
	raw := m.v6Pull()
	p := raw &^ (1 << 6)
	if raw&(1<<6) != 0 {
		p |= flagV
	}
	v.p = p
}

func (m *Machine) setZN(v *v6502State, val uint8) {
	v.p &^= flagZ
	if val == 0 {
		v.p |= flagZ
	}
	// N is read straight off bit 7 of val wherever needed; we don't
	// keep a dedicated bit since val is always available at the call
	// site (matches the split Qn/Qz convention described in §4.4:
	// last-result high bit stands in for N without a stored flag).
}

func negative(val uint8) bool { return val&0x80 != 0 }

// runV6502 executes instructions until the tick budget is exhausted or
// an instruction switches interpreters (BRK). It mirrors runVcpu's
// "cede exactly n cycles" contract from §4.1 step 4.
func (m *Machine) runV6502(cycles int) {
	ticks := (cycles/2 - v6502Overhead/2)
	if ticks > v6502MaxTicks {
		ticks = v6502MaxTicks
	}
	for ticks > 0 {
		spent := m.v6502Step()
		ticks -= spent
		if m.activeInterp != interpV6502 {
			return // BRK or an FSM trigger switched interpreters mid-run
		}
	}
}

// v6502Step executes exactly one instruction (or resumes a
// previously-decoded one) and returns its cost in ticks (2-cycle
// units), matching the vCPU convention so the scanline driver can
// charge both interpreters the same way.
func (m *Machine) v6502Step() int {
	v := m.v6502()

	if v.resume {
		v.resume = false
		return m.v6Execute(v.resumeOpcode, v.resumeAddr)
	}

	opcode := m.peek(v.pc)
	v.pc++

	mode := addressingModes[opcode&0x1f]
	switch opcode {
	case 0x20: // JSR abs
		mode = modeAbsolute
	case 0x40, 0x60: // RTI, RTS
		mode = modeImplied
	case 0xbe: // LDX abs,Y
		mode = modeAbsoluteY
	}
	if op6502Table[opcode].illegal {
		if opcode == 0xff {
			// Documented hard failure: an un-trapped illegal opcode.
			// We do not attempt to emulate the crash loop; the
			// instruction is treated as a one-tick no-op so executing
			// 0xFF stalls rather than panics.
			return 1
		}
		return m.v6Execute(0x00, 0) // alias to BRK
	}

	addr, extra := mode(m, opcode)
	cost := op6502Table[opcode].cycles + extra
	ticksUsed := (cost + 1) / 2

	m.v6Execute(opcode, addr)
	return ticksUsed
}

// addressingModes is keyed on the opcode's low 5 bits, matching the
// column structure of the NMOS 6502's instruction matrix; the handful
// of opcodes whose addressing mode doesn't follow the column pattern
// (JSR, RTI, RTS, LDX abs,Y; STX/LDX zp,Y in modeZeroPageX) are
// special-cased in v6502Step and modeZeroPageX instead of here.
type addrModeFn func(m *Machine, opcode uint8) (addr uint16, extraCycles int)

var addressingModes = [32]addrModeFn{
	modeImmediate, modeIndexedIndirect, modeImmediate, modeIndexedIndirect,
	modeZeroPage, modeZeroPage, modeZeroPage, modeZeroPage,
	modeImplied, modeImmediate, modeAccumulator, modeImmediate,
	modeAbsolute, modeAbsolute, modeAbsolute, modeAbsolute,
	modeRelative, modeIndirectIndexed, modeImplied, modeIndirectIndexed,
	modeZeroPageX, modeZeroPageX, modeZeroPageX, modeZeroPageX,
	modeImplied, modeAbsoluteY, modeImplied, modeAbsoluteY,
	modeAbsoluteX, modeAbsoluteX, modeAbsoluteX, modeAbsoluteX,
}

func modeImplied(m *Machine, _ uint8) (uint16, int)      { return 0, 0 }
func modeAccumulator(m *Machine, _ uint8) (uint16, int)  { return 0, 0 }

func modeImmediate(m *Machine, _ uint8) (uint16, int) {
	v := m.v6502()
	addr := v.pc
	v.pc++
	return addr, 0
}

func modeZeroPage(m *Machine, _ uint8) (uint16, int) {
	v := m.v6502()
	addr := uint16(m.peek(v.pc))
	v.pc++
	return addr, 0
}

func modeZeroPageX(m *Machine, opcode uint8) (uint16, int) {
	v := m.v6502()
	base := m.peek(v.pc)
	v.pc++
	idx := v.x
	if opcode == 0x96 || opcode == 0xb6 { // STX/LDX zp,Y
		idx = v.y
	}
	return uint16(base + idx), 0
}

func modeAbsolute(m *Machine, _ uint8) (uint16, int) {
	v := m.v6502()
	addr := m.peekWord(v.pc)
	v.pc += 2
	return addr, 0
}

func modeAbsoluteX(m *Machine, _ uint8) (uint16, int) {
	v := m.v6502()
	base := m.peekWord(v.pc)
	v.pc += 2
	addr := base + uint16(v.x)
	return addr, pageCrossPenalty(base, addr)
}

func modeAbsoluteY(m *Machine, _ uint8) (uint16, int) {
	v := m.v6502()
	base := m.peekWord(v.pc)
	v.pc += 2
	addr := base + uint16(v.y)
	return addr, pageCrossPenalty(base, addr)
}

func modeIndexedIndirect(m *Machine, _ uint8) (uint16, int) {
	v := m.v6502()
	zp := m.peek(v.pc) + v.x
	v.pc++
	addr := uint16(m.peek(uint16(zp))) | uint16(m.peek(uint16(zp+1)))<<8
	return addr, 0
}

func modeIndirectIndexed(m *Machine, _ uint8) (uint16, int) {
	v := m.v6502()
	zp := m.peek(v.pc)
	v.pc++
	base := uint16(m.peek(uint16(zp))) | uint16(m.peek(uint16(zp+1)))<<8
	addr := base + uint16(v.y)
	return addr, pageCrossPenalty(base, addr)
}

func modeRelative(m *Machine, _ uint8) (uint16, int) {
	v := m.v6502()
	disp := int8(m.peek(v.pc))
	v.pc++
	return uint16(int32(v.pc) + int32(disp)), 0
}

func pageCrossPenalty(base, final uint16) int {
	if base&0xff00 != final&0xff00 {
		return 1
	}
	return 0
}

// op6502Def holds the static cost and effect of one opcode. exec
// receives the already-decoded effective address (meaningless for
// implied/accumulator-mode opcodes).
type op6502Def struct {
	cycles  int
	illegal bool
	exec    func(m *Machine, addr uint16)
}

var op6502Table [256]op6502Def

func init() {
	for i := range op6502Table {
		op6502Table[i] = op6502Def{illegal: true}
	}
	def := func(opcode uint8, cycles int, exec func(m *Machine, addr uint16)) {
		op6502Table[opcode] = op6502Def{cycles: cycles, exec: exec}
	}

	def(0x00, 7, execBRK)
	def(0xea, 2, func(m *Machine, _ uint16) {})

	def(0xa9, 2, execLDA)
	def(0xa5, 3, execLDA)
	def(0xb5, 4, execLDA)
	def(0xad, 4, execLDA)
	def(0xbd, 4, execLDA)
	def(0xb9, 4, execLDA)
	def(0xa1, 6, execLDA)
	def(0xb1, 5, execLDA)

	def(0xa2, 2, execLDX)
	def(0xa6, 3, execLDX)
	def(0xb6, 4, execLDX)
	def(0xae, 4, execLDX)
	def(0xbe, 4, execLDX)

	def(0xa0, 2, execLDY)
	def(0xa4, 3, execLDY)
	def(0xb4, 4, execLDY)
	def(0xac, 4, execLDY)
	def(0xbc, 4, execLDY)

	def(0x85, 3, execSTA)
	def(0x95, 4, execSTA)
	def(0x8d, 4, execSTA)
	def(0x9d, 5, execSTA)
	def(0x99, 5, execSTA)
	def(0x81, 6, execSTA)
	def(0x91, 6, execSTA)

	def(0x86, 3, execSTX)
	def(0x96, 4, execSTX)
	def(0x8e, 4, execSTX)

	def(0x84, 3, execSTY)
	def(0x94, 4, execSTY)
	def(0x8c, 4, execSTY)

	def(0x69, 2, execADC)
	def(0x65, 3, execADC)
	def(0x75, 4, execADC)
	def(0x6d, 4, execADC)
	def(0x7d, 4, execADC)
	def(0x79, 4, execADC)
	def(0x61, 6, execADC)
	def(0x71, 5, execADC)

	def(0xe9, 2, execSBC)
	def(0xe5, 3, execSBC)
	def(0xf5, 4, execSBC)
	def(0xed, 4, execSBC)
	def(0xfd, 4, execSBC)
	def(0xf9, 4, execSBC)
	def(0xe1, 6, execSBC)
	def(0xf1, 5, execSBC)

	def(0x29, 2, execAND)
	def(0x25, 3, execAND)
	def(0x35, 4, execAND)
	def(0x2d, 4, execAND)
	def(0x3d, 4, execAND)
	def(0x39, 4, execAND)
	def(0x21, 6, execAND)
	def(0x31, 5, execAND)

	def(0x09, 2, execORA)
	def(0x05, 3, execORA)
	def(0x15, 4, execORA)
	def(0x0d, 4, execORA)
	def(0x1d, 4, execORA)
	def(0x19, 4, execORA)
	def(0x01, 6, execORA)
	def(0x11, 5, execORA)

	def(0x49, 2, execEOR)
	def(0x45, 3, execEOR)
	def(0x55, 4, execEOR)
	def(0x4d, 4, execEOR)
	def(0x5d, 4, execEOR)
	def(0x59, 4, execEOR)
	def(0x41, 6, execEOR)
	def(0x51, 5, execEOR)

	def(0xc9, 2, execCMP)
	def(0xc5, 3, execCMP)
	def(0xd5, 4, execCMP)
	def(0xcd, 4, execCMP)
	def(0xdd, 4, execCMP)
	def(0xd9, 4, execCMP)
	def(0xc1, 6, execCMP)
	def(0xd1, 5, execCMP)

	def(0xe0, 2, execCPX)
	def(0xe4, 3, execCPX)
	def(0xec, 4, execCPX)
	def(0xc0, 2, execCPY)
	def(0xc4, 3, execCPY)
	def(0xcc, 4, execCPY)

	def(0xe6, 5, execINC)
	def(0xf6, 6, execINC)
	def(0xee, 6, execINC)
	def(0xfe, 7, execINC)
	def(0xc6, 5, execDEC)
	def(0xd6, 6, execDEC)
	def(0xce, 6, execDEC)
	def(0xde, 7, execDEC)

	def(0xe8, 2, func(m *Machine, _ uint16) { v := m.v6502(); v.x++; m.setZN(v, v.x) })
	def(0xca, 2, func(m *Machine, _ uint16) { v := m.v6502(); v.x--; m.setZN(v, v.x) })
	def(0xc8, 2, func(m *Machine, _ uint16) { v := m.v6502(); v.y++; m.setZN(v, v.y) })
	def(0x88, 2, func(m *Machine, _ uint16) { v := m.v6502(); v.y--; m.setZN(v, v.y) })

	def(0xaa, 2, func(m *Machine, _ uint16) { v := m.v6502(); v.x = v.a; m.setZN(v, v.x) })
	def(0x8a, 2, func(m *Machine, _ uint16) { v := m.v6502(); v.a = v.x; m.setZN(v, v.a) })
	def(0xa8, 2, func(m *Machine, _ uint16) { v := m.v6502(); v.y = v.a; m.setZN(v, v.y) })
	def(0x98, 2, func(m *Machine, _ uint16) { v := m.v6502(); v.a = v.y; m.setZN(v, v.a) })
	def(0xba, 2, func(m *Machine, _ uint16) { v := m.v6502(); v.x = v.sp; m.setZN(v, v.x) })
	def(0x9a, 2, func(m *Machine, _ uint16) { v := m.v6502(); v.sp = v.x })

	def(0x48, 3, func(m *Machine, _ uint16) { m.v6Push(m.v6502().a) })
	def(0x68, 4, func(m *Machine, _ uint16) { v := m.v6502(); v.a = m.v6Pull(); m.setZN(v, v.a) })
	def(0x08, 3, func(m *Machine, _ uint16) { m.pushP() })
	def(0x28, 4, func(m *Machine, _ uint16) { m.pullP() })

	def(0x18, 2, func(m *Machine, _ uint16) { m.v6502().p &^= flagC })
	def(0x38, 2, func(m *Machine, _ uint16) { m.v6502().p |= flagC })
	def(0x58, 2, func(m *Machine, _ uint16) { m.v6502().p &^= flagI })
	def(0x78, 2, func(m *Machine, _ uint16) { m.v6502().p |= flagI })
	def(0xb8, 2, func(m *Machine, _ uint16) { m.v6502().p &^= flagV })
	def(0xd8, 2, func(m *Machine, _ uint16) { m.v6502().p &^= flagD }) // tracked, never honored
	def(0xf8, 2, func(m *Machine, _ uint16) { m.v6502().p |= flagD })

	def(0x0a, 2, execASLAcc)
	def(0x06, 5, execASL)
	def(0x16, 6, execASL)
	def(0x0e, 6, execASL)
	def(0x1e, 7, execASL)

	def(0x4a, 2, execLSRAcc)
	def(0x46, 5, execLSR)
	def(0x56, 6, execLSR)
	def(0x4e, 6, execLSR)
	def(0x5e, 7, execLSR)

	def(0x2a, 2, execROLAcc)
	def(0x26, 5, execROL)
	def(0x36, 6, execROL)
	def(0x2e, 6, execROL)
	def(0x3e, 7, execROL)

	def(0x6a, 2, execRORAcc)
	def(0x66, 5, execROR)
	def(0x76, 6, execROR)
	def(0x6e, 6, execROR)
	def(0x7e, 7, execROR)

	def(0x24, 3, execBIT)
	def(0x2c, 4, execBIT)

	def(0x4c, 3, execJMP)
	def(0x6c, 5, execJMPIndirect)
	def(0x20, 6, execJSR)
	def(0x60, 6, execRTS)
	def(0x40, 6, execRTI)

	def(0x10, 2, branchIf(func(p uint8) bool { return p&0x80 == 0 }))  // BPL: N handled below via lastN
	def(0x30, 2, branchIf(func(p uint8) bool { return p&0x80 != 0 }))  // BMI
	def(0x50, 2, branchIf(func(p uint8) bool { return p&flagV == 0 })) // BVC
	def(0x70, 2, branchIf(func(p uint8) bool { return p&flagV != 0 })) // BVS
	def(0x90, 2, branchIf(func(p uint8) bool { return p&flagC == 0 })) // BCC
	def(0xb0, 2, branchIf(func(p uint8) bool { return p&flagC != 0 })) // BCS
	def(0xd0, 2, branchIf(func(p uint8) bool { return p&flagZ == 0 })) // BNE
	def(0xf0, 2, branchIf(func(p uint8) bool { return p&flagZ != 0 })) // BEQ
}

// N is kept in bit 0x80 of P, mirrored on every setZN/ADC/SBC/shift so
// the BPL/BMI table above can test it the same way it tests Z/C/V.
const flagN uint8 = 0x80

func execBRK(m *Machine, _ uint16) {
	m.activeInterp = interpVCPU
	m.setZp(zpVCpuSelect, uint8(interpVCPU))
}

func execLDA(m *Machine, addr uint16) { v := m.v6502(); v.a = m.peek(addr); m.setZN8(v, v.a) }
func execLDX(m *Machine, addr uint16) { v := m.v6502(); v.x = m.peek(addr); m.setZN8(v, v.x) }
func execLDY(m *Machine, addr uint16) { v := m.v6502(); v.y = m.peek(addr); m.setZN8(v, v.y) }
func execSTA(m *Machine, addr uint16) { m.poke(addr, m.v6502().a) }
func execSTX(m *Machine, addr uint16) { m.poke(addr, m.v6502().x) }
func execSTY(m *Machine, addr uint16) { m.poke(addr, m.v6502().y) }

// setZN8 is setZN plus the N bit, used everywhere except the few
// opcodes (INC/DEC on memory) that need the stored value back too.
func (m *Machine) setZN8(v *v6502State, val uint8) {
	m.setZN(v, val)
	v.p &^= flagN
	if negative(val) {
		v.p |= flagN
	}
}

// execADC/execSBC share the addition path; SBC inverts its operand and
// re-dispatches to ADC's core, per the real 6502's internal wiring.
func execADC(m *Machine, addr uint16) { m.adcCore(m.peek(addr)) }
func execSBC(m *Machine, addr uint16) { m.adcCore(^m.peek(addr)) }

func (m *Machine) adcCore(operand uint8) {
	v := m.v6502()
	carryIn := uint16(0)
	if v.p&flagC != 0 {
		carryIn = 1
	}
	sum := uint16(v.a) + uint16(operand) + carryIn
	result := uint8(sum)

	v.p &^= flagC
	if sum > 0xff {
		v.p |= flagC
	}

	overflow := (v.a^result)&(operand^result)&0x80 != 0
	v.p &^= flagV
	if overflow {
		v.p |= flagV
	}

	v.a = result
	m.setZN8(v, v.a)
}

func execAND(m *Machine, addr uint16) { v := m.v6502(); v.a &= m.peek(addr); m.setZN8(v, v.a) }
func execORA(m *Machine, addr uint16) { v := m.v6502(); v.a |= m.peek(addr); m.setZN8(v, v.a) }
func execEOR(m *Machine, addr uint16) { v := m.v6502(); v.a ^= m.peek(addr); m.setZN8(v, v.a) }

func (m *Machine) compare(reg, operand uint8) {
	v := m.v6502()
	result := reg - operand
	v.p &^= flagC
	if reg >= operand {
		v.p |= flagC
	}
	m.setZN8(v, result)
}

func execCMP(m *Machine, addr uint16) { m.compare(m.v6502().a, m.peek(addr)) }
func execCPX(m *Machine, addr uint16) { m.compare(m.v6502().x, m.peek(addr)) }
func execCPY(m *Machine, addr uint16) { m.compare(m.v6502().y, m.peek(addr)) }

func execINC(m *Machine, addr uint16) {
	val := m.peek(addr) + 1
	m.poke(addr, val)
	m.setZN8(m.v6502(), val)
}

func execDEC(m *Machine, addr uint16) {
	val := m.peek(addr) - 1
	m.poke(addr, val)
	m.setZN8(m.v6502(), val)
}

func execASLAcc(m *Machine, _ uint16) { v := m.v6502(); v.a = m.shiftLeft(v.a) }
func execASL(m *Machine, addr uint16) { m.poke(addr, m.shiftLeft(m.peek(addr))) }

func (m *Machine) shiftLeft(val uint8) uint8 {
	v := m.v6502()
	v.p &^= flagC
	if val&0x80 != 0 {
		v.p |= flagC
	}
	result := val << 1
	m.setZN8(v, result)
	return result
}

func execLSRAcc(m *Machine, _ uint16) { v := m.v6502(); v.a = m.shiftRight(v.a) }
func execLSR(m *Machine, addr uint16) { m.poke(addr, m.shiftRight(m.peek(addr))) }

func (m *Machine) shiftRight(val uint8) uint8 {
	v := m.v6502()
	v.p &^= flagC
	if val&0x01 != 0 {
		v.p |= flagC
	}
	result := val >> 1
	m.setZN8(v, result)
	return result
}

func execROLAcc(m *Machine, _ uint16) { v := m.v6502(); v.a = m.rotateLeft(v.a) }
func execROL(m *Machine, addr uint16) { m.poke(addr, m.rotateLeft(m.peek(addr))) }

func (m *Machine) rotateLeft(val uint8) uint8 {
	v := m.v6502()
	carryIn := uint8(0)
	if v.p&flagC != 0 {
		carryIn = 1
	}
	v.p &^= flagC
	if val&0x80 != 0 {
		v.p |= flagC
	}
	result := val<<1 | carryIn
	m.setZN8(v, result)
	return result
}

func execRORAcc(m *Machine, _ uint16) { v := m.v6502(); v.a = m.rotateRight(v.a) }
func execROR(m *Machine, addr uint16) { m.poke(addr, m.rotateRight(m.peek(addr))) }

func (m *Machine) rotateRight(val uint8) uint8 {
	v := m.v6502()
	carryIn := uint8(0)
	if v.p&flagC != 0 {
		carryIn = 0x80
	}
	v.p &^= flagC
	if val&0x01 != 0 {
		v.p |= flagC
	}
	result := val>>1 | carryIn
	m.setZN8(v, result)
	return result
}

func execBIT(m *Machine, addr uint16) {
	v := m.v6502()
	val := m.peek(addr)
	v.p &^= (flagZ | flagV | flagN)
	if v.a&val == 0 {
		v.p |= flagZ
	}
	if val&flagV != 0 {
		v.p |= flagV
	}
	if negative(val) {
		v.p |= flagN
	}
}

func execJMP(m *Machine, addr uint16)         { m.v6502().pc = addr }
func execJMPIndirect(m *Machine, addr uint16) { m.v6502().pc = m.peekWord(addr) }

func execJSR(m *Machine, addr uint16) {
	v := m.v6502()
	ret := v.pc - 1
	m.v6Push(uint8(ret >> 8))
	m.v6Push(uint8(ret))
	v.pc = addr
}

func execRTS(m *Machine, _ uint16) {
	v := m.v6502()
	lo := m.v6Pull()
	hi := m.v6Pull()
	v.pc = (uint16(hi)<<8 | uint16(lo)) + 1
}

func execRTI(m *Machine, _ uint16) {
	m.pullP()
	v := m.v6502()
	lo := m.v6Pull()
	hi := m.v6Pull()
	v.pc = uint16(hi)<<8 | uint16(lo)
}

// branchIf returns an exec function for a relative branch. The
// addressing mode already resolved the target address into addr; here
// we just decide whether to take it, charging the page-crossing
// penalty the same way the real 6502 does.
func branchIf(taken func(p uint8) bool) func(m *Machine, addr uint16) {
	return func(m *Machine, addr uint16) {
		v := m.v6502()
		if !taken(v.p) {
			return
		}
		v.pc = addr
	}
}

// v6Execute runs the already-decoded opcode/address pair. Split out
// from v6502Step so its resume path (taken when the resume flag is
// set) can re-enter at exactly this point without redecoding.
func (m *Machine) v6Execute(opcode uint8, addr uint16) int {
	def := op6502Table[opcode]
	if def.exec == nil {
		execBRK(m, addr)
		return (7 + 1) / 2
	}
	def.exec(m, addr)
	return (def.cycles + 1) / 2
}
