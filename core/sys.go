package core

// The SYS opcode transfers to native code at [sysFn] with a caller-
// declared maximum tick budget (spec §4.6). Native code in this
// implementation is a registered Go function keyed by a small integer
// ID stored in sysFn instead of a real jump address — the fixed
// jump-table region at page-0 offsets 0x80..0xef that the real ROM
// reserves (stable SYS entry addresses across ROM revisions) is
// modeled by SysHandlerID's contiguous, stable numbering.
type SysHandlerID uint16

const (
	SysNone SysHandlerID = iota
	SysFill
	SysCopyBank
	SysCopyCrossBank
	SysSPIExchange
	SysExpansionCtrl
	SysBlit
	SysSerialSend
	SysSerialRecv
	SysReadRomDir
	SysDecimal
	SysMultiply
	SysDivide
	SysWaveformSetup
	SysExec
)

// SysHandler returns whether the call completed inline. False means the
// handler handed control to an FSM; vPC is already past the SYS
// instruction by then. A SYS is re-issued on the next slice only when
// the slice's remaining ticks are fewer than its declared maximum, in
// which case execSYS leaves vPC on the SYS and never calls the handler.
type SysHandler func(m *Machine, maxTicks uint8) (done bool)

var sysHandlers = map[SysHandlerID]SysHandler{
	SysMultiply: func(m *Machine, _ uint8) bool {
		a := m.zpWord(zpSysArgs + 0)
		b := m.zpWord(zpSysArgs + 2)
		m.startMultiply(a, b)
		return false // control now belongs to FSM14
	},
	SysDivide: func(m *Machine, _ uint8) bool {
		a := m.zpWord(zpSysArgs + 0)
		b := m.zpWord(zpSysArgs + 2)
		m.startDivide(a, b)
		return false
	},
	SysCopyBank: func(m *Machine, _ uint8) bool {
		src := m.zpWord(zpSysArgs + 0)
		dst := m.zpWord(zpSysArgs + 2)
		count := m.zpWord(zpSysArgs + 4)
		m.startCopy(src, dst, count)
		return false
	},
	SysFill: func(m *Machine, _ uint8) bool {
		dst := m.zpWord(zpSysArgs + 0)
		count := m.zpWord(zpSysArgs + 2)
		value := m.zp(zpSysArgs + 4)
		m.startFill(dst, count, value)
		return false
	},
	SysBlit: func(m *Machine, _ uint8) bool {
		src := m.zpWord(zpSysArgs + 0)
		dst := m.zpWord(zpSysArgs + 2)
		strips := m.zp(zpSysArgs + 4)
		stride := m.zp(zpSysArgs + 5)
		m.startBlit(src, dst, strips, stride)
		return false
	},
	SysDecimal: func(m *Machine, _ uint8) bool {
		v := m.zpWord(zpSysArgs + 0)
		doubleDabble(m, v)
		return true
	},
}

// RegisterSysHandler lets a frontend (e.g. package gt1's loader, or a
// test) install additional SYS handlers such as ROM directory
// enumeration or serial exchange without package core depending on
// those concerns directly.
func (m *Machine) RegisterSysHandler(id SysHandlerID, h SysHandler) {
	if m.extraSys == nil {
		m.extraSys = make(map[SysHandlerID]SysHandler)
	}
	m.extraSys[id] = h
}

// InvokeSysHandler calls a registered SYS handler directly, bypassing
// the vCPU's budget accounting. Frontends use this to drive a
// SYS_Exec-style handler synchronously (e.g. loading a program from a
// command-line flag before the first frame runs) rather than staging
// zero page and waiting for the guest to issue the SYS opcode itself.
func (m *Machine) InvokeSysHandler(id SysHandlerID, maxTicks uint8) bool {
	handler, ok := sysHandlers[id]
	if !ok && m.extraSys != nil {
		handler, ok = m.extraSys[id]
	}
	if !ok || handler == nil {
		return true
	}
	return handler(m, maxTicks)
}

// execSYS implements the SYS opcode's variable-cost, possibly
// self-re-issuing dispatch (spec §4.2/§5).
func (m *Machine) execSYS(pc uint16) bool {
	maxExtra := m.peek(pc + 1)
	id := SysHandlerID(m.zpWord(zpSysFn))

	handler, ok := sysHandlers[id]
	if !ok && m.extraSys != nil {
		handler, ok = m.extraSys[id]
	}

	budgetTicks := m.vTicks()
	neededTicks := int16(maxExtra)
	if budgetTicks < neededTicks {
		// Not enough budget this slice: exit without advancing vPC so
		// the same SYS instruction re-executes next slice.
		m.setVTicks(0)
		return true
	}

	m.setVPC(pc + 2)
	if !ok || handler == nil {
		m.setVTicks(m.vTicks() - 8)
		return true
	}

	done := handler(m, maxExtra)
	m.setVTicks(m.vTicks() - neededTicks)
	if !done {
		return false // an FSM took over vCpuSelect
	}
	return true
}

// doubleDabble converts a 16-bit binary value to a 4-digit BCD value
// using the shift-and-add-3 algorithm (spec §4.6, "decimal
// conversion"), writing the packed BCD digits to sysArgs[2..3].
func doubleDabble(m *Machine, value uint16) {
	var bcd uint32
	for i := 0; i < 16; i++ {
		for nibble := 0; nibble < 16; nibble += 4 {
			d := (bcd >> nibble) & 0xf
			if d >= 5 {
				bcd += 3 << nibble
			}
		}
		bcd = bcd<<1 | uint32((value>>15)&1)
		value <<= 1
	}
	m.setZpWord(zpSysArgs+2, uint16(bcd))
}
