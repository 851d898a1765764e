package core

// Extension FSMs implement operations that exceed a single slice's tick
// budget (spec §4.3): long multiply/divide, byte-block copy, blit,
// fill, and the vIRQ save/restore sequence. Each FSM owns a small
// stepper keyed by fsmState, runs one bounded step per slice, and
// restores vCpuSelect to vCPU on completion.

// fsmStepper executes one bounded step of the active FSM and reports
// whether the operation has completed (control returns to vCPU) or
// must continue on the next slice.
type fsmStepper func(m *Machine) (done bool)

var fsmSteppers = map[interpreterID]fsmStepper{
	interpFSM14: stepMultiplyDivide,
	interpFSM18: stepCopy,
	interpFSM21: stepIRQSaveRestore,
	interpFSM22: stepFill,
	interpFSM23: stepBlit,
}

// runFSM executes exactly one bounded step of whichever FSM is active,
// restarting from fsmState. If the step completes the operation it
// restores vCpuSelect to vCPU, unless the step itself selected another
// interpreter (FSM21 restores the one active before a vIRQ); otherwise
// fsmState (and any partial progress recorded by the stepper itself)
// persists for the next slice, per the restartability contract in §4.3.
func (m *Machine) runFSM() {
	current := m.activeInterp
	stepper, ok := fsmSteppers[current]
	if !ok {
		// Unknown FSM select: fail safe back to vCPU rather than spin.
		m.activeInterp = interpVCPU
		m.setZp(zpVCpuSelect, uint8(interpVCPU))
		return
	}
	if stepper(m) && m.activeInterp == current {
		m.activeInterp = interpVCPU
		m.setZp(zpVCpuSelect, uint8(interpVCPU))
	}
}

// --- FSM14: 16-bit multiply/divide ------------------------------------
//
// Operands live in sysArgs[0..1] (multiplicand/dividend) and
// sysArgs[2..3] (multiplier/divisor); sysArgs[4..5] receives the
// result. fsmState selects multiply vs divide and tracks the bit index
// of a shift-and-add / shift-and-subtract long-multiplication, one bit
// per step so no single step risks exceeding the slice budget.
const (
	fsmMulOp   = 0 // fsmState bit 7: 0 = multiply, 1 = divide
	fsmMulBits = 16
)

func (m *Machine) startMultiply(a, b uint16) {
	m.setZpWord(zpSysArgs+0, a)
	m.setZpWord(zpSysArgs+2, b)
	m.setZpWord(zpSysArgs+4, 0)
	m.setZp(zpFsmState, 0)
	m.activeInterp = interpFSM14
	m.setZp(zpVCpuSelect, uint8(interpFSM14))
}

func (m *Machine) startDivide(a, b uint16) {
	m.setZpWord(zpSysArgs+0, a)
	m.setZpWord(zpSysArgs+2, b)
	m.setZpWord(zpSysArgs+4, 0)
	m.setZp(zpFsmState, 0x80)
	m.activeInterp = interpFSM14
	m.setZp(zpVCpuSelect, uint8(interpFSM14))
}

func stepMultiplyDivide(m *Machine) bool {
	state := m.zp(zpFsmState)
	dividing := state&0x80 != 0
	bit := state & 0x7f

	if bit >= fsmMulBits {
		return true
	}

	a := m.zpWord(zpSysArgs + 0)
	b := m.zpWord(zpSysArgs + 2)
	result := m.zpWord(zpSysArgs + 4)

	if dividing {
		// Restoring long division, one bit per step, MSB first: result
		// accumulates the quotient and sysArgs[6..7] the partial
		// remainder.
		shift := fsmMulBits - 1 - int(bit)
		rem := uint32(m.zpWord(zpSysArgs + 6))
		if bit == 0 {
			rem = 0
		}
		rem = rem<<1 | uint32(a>>uint(shift))&1
		if b != 0 && rem >= uint32(b) {
			rem -= uint32(b)
			m.setZpWord(zpSysArgs+4, result<<1|1)
		} else {
			m.setZpWord(zpSysArgs+4, result<<1)
		}
		m.setZpWord(zpSysArgs+6, uint16(rem))
	} else {
		if b&(1<<bit) != 0 {
			m.setZpWord(zpSysArgs+4, result+(a<<bit))
		}
	}

	m.setZp(zpFsmState, state&0x80|(bit+1))
	return bit+1 >= fsmMulBits
}

// --- FSM18: byte-block copy -------------------------------------------
//
// sysArgs[0..1] = source, sysArgs[2..3] = dest, sysArgs[4..5] = count
// remaining. Each step copies up to copyChunk bytes and records its
// progress by advancing source/dest and decrementing count by the
// amount copied. A step does not check the remaining tick budget; it
// always copies its full chunk.
const copyChunk = 32

func (m *Machine) startCopy(src, dst, count uint16) {
	m.setZpWord(zpSysArgs+0, src)
	m.setZpWord(zpSysArgs+2, dst)
	m.setZpWord(zpSysArgs+4, count)
	m.activeInterp = interpFSM18
	m.setZp(zpVCpuSelect, uint8(interpFSM18))
}

func stepCopy(m *Machine) bool {
	src := m.zpWord(zpSysArgs + 0)
	dst := m.zpWord(zpSysArgs + 2)
	count := m.zpWord(zpSysArgs + 4)

	n := count
	if n > copyChunk {
		n = copyChunk
	}
	for i := uint16(0); i < n; i++ {
		m.poke(dst+i, m.peek(src+i))
	}

	m.setZpWord(zpSysArgs+0, src+n)
	m.setZpWord(zpSysArgs+2, dst+n)
	m.setZpWord(zpSysArgs+4, count-n)
	return count-n == 0
}

// --- FSM22: fill --------------------------------------------------------

func (m *Machine) startFill(dst, count uint16, value uint8) {
	m.setZpWord(zpSysArgs+0, dst)
	m.setZpWord(zpSysArgs+2, count)
	m.setZp(zpSysArgs+4, value)
	m.activeInterp = interpFSM22
	m.setZp(zpVCpuSelect, uint8(interpFSM22))
}

func stepFill(m *Machine) bool {
	dst := m.zpWord(zpSysArgs + 0)
	count := m.zpWord(zpSysArgs + 2)
	value := m.zp(zpSysArgs + 4)

	n := count
	if n > copyChunk {
		n = copyChunk
	}
	for i := uint16(0); i < n; i++ {
		m.poke(dst+i, value)
	}
	m.setZpWord(zpSysArgs+0, dst+n)
	m.setZpWord(zpSysArgs+2, count-n)
	return count-n == 0
}

// --- FSM23: sprite blit --------------------------------------------------
//
// 6-pixel-wide strips, copied forward only: src and dst both advance by
// stride after each strip, and there are no mirrored or flipped axis
// variants. sysArgs: [0..1] src, [2..3] dst, [4] width-in-strips
// remaining, [5] stride.
const blitStripWidth = 6

func (m *Machine) startBlit(src, dst uint16, strips, stride uint8) {
	m.setZpWord(zpSysArgs+0, src)
	m.setZpWord(zpSysArgs+2, dst)
	m.setZp(zpSysArgs+4, strips)
	m.setZp(zpSysArgs+5, stride)
	m.activeInterp = interpFSM23
	m.setZp(zpVCpuSelect, uint8(interpFSM23))
}

func stepBlit(m *Machine) bool {
	src := m.zpWord(zpSysArgs + 0)
	dst := m.zpWord(zpSysArgs + 2)
	strips := m.zp(zpSysArgs + 4)
	stride := m.zp(zpSysArgs + 5)

	if strips == 0 {
		return true
	}
	for i := 0; i < blitStripWidth; i++ {
		m.poke(dst+uint16(i), m.peek(src+uint16(i)))
	}
	m.setZpWord(zpSysArgs+0, src+uint16(stride))
	m.setZpWord(zpSysArgs+2, dst+uint16(stride))
	m.setZp(zpSysArgs+4, strips-1)
	return strips-1 == 0
}

// --- FSM21: vIRQ save/restore --------------------------------------------
//
// On vIRQ entry, vPC/vAC/vCpuSelect are spilled to a context block
// (vIrqSave, or a caller-provided page for the v7 ctx-style variant)
// and execution vectors straight to the handler as ordinary vCPU code
// (spec §6) — entry itself is not an FSM step, just a register spill.
// The handler signals completion with vRTI (PREFIX35's p35VRTI, since
// a plain RET only has vLR to work with and the saved context lives
// elsewhere); vRTI is what actually hands off to FSM21, whose one
// bounded step restores the saved context. The restored interpreter
// runs from the next slice on, not in the slice that ran the restore.
const vIrqSaveBase = 0x0300

func (m *Machine) triggerVIRQ(handler uint16) {
	m.pokeWord(vIrqSaveBase+0, m.vPC())
	m.pokeWord(vIrqSaveBase+2, m.vAC())
	m.poke(vIrqSaveBase+4, uint8(m.activeInterp))
	m.setVPC(handler)
	m.activeInterp = interpVCPU
	m.setZp(zpVCpuSelect, uint8(interpVCPU))
}

// returnFromVIRQ is vRTI: the handler executes PREFIX35 p35VRTI instead
// of a plain RET to unwind out of the interrupt context. It hands off
// to FSM21 rather than restoring inline so the restore shares the same
// cooperative-scheduling seam as every other extension FSM.
func (m *Machine) returnFromVIRQ() {
	m.setZp(zpFsmState, 0)
	m.activeInterp = interpFSM21
	m.setZp(zpVCpuSelect, uint8(interpFSM21))
}

// stepIRQSaveRestore is FSM21's one bounded step, entered only via
// returnFromVIRQ: restore the saved context and hand control back to
// whichever interpreter was active before the interrupt.
func stepIRQSaveRestore(m *Machine) bool {
	m.setVPC(m.peekWord(vIrqSaveBase + 0))
	m.setVAC(m.peekWord(vIrqSaveBase + 2))
	m.activeInterp = interpreterID(m.peek(vIrqSaveBase + 4))
	m.setZp(zpVCpuSelect, uint8(m.activeInterp))
	return true
}
