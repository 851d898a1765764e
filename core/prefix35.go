package core

// PREFIX35 dispatches a 256-entry secondary table: long arithmetic,
// floating-point moves, copy/fill/blit, and FSM-dispatch (spec §4.2).
// Handlers either complete inline (long-word moves on the vLAC/vLAX/
// vFAS/vFAE/vT2/vT3 blocks) or hand off to an extension FSM for
// multi-slice operations.
type prefix35Handler func(m *Machine)

const (
	p35LDLAC  = 0x00 // load vLAC (32-bit long accumulator) from a zero-page pointer
	p35STLAC  = 0x01 // store vLAC
	p35ADDLAC = 0x02 // vLAC += word[d] (sign-extended)
	p35FCOPY  = 0x10 // trigger FSM18 byte-block copy: operand is a 6-byte arg block pointer
	p35FFILL  = 0x11 // trigger FSM22 fill
	p35FBLIT  = 0x12 // trigger FSM23 sprite blit
	p35FMUL   = 0x13 // trigger FSM14 multiply
	p35FDIV   = 0x14 // trigger FSM14 divide
	p35VRTI   = 0x15 // vIRQ return: hand off to FSM21's context restore
)

var prefix35Table = map[uint8]prefix35Handler{
	p35LDLAC: func(m *Machine) {
		d := m.fetchPrefixOperand()
		for i := 0; i < 4; i++ {
			m.RAM[zpVLAC+i] = m.peek(d + uint16(i))
		}
	},
	p35STLAC: func(m *Machine) {
		d := m.fetchPrefixOperand()
		for i := 0; i < 4; i++ {
			m.poke(d+uint16(i), m.RAM[zpVLAC+i])
		}
	},
	p35ADDLAC: func(m *Machine) {
		d := m.fetchPrefixOperand()
		lo := uint32(m.RAM[zpVLAC]) | uint32(m.RAM[zpVLAC+1])<<8 |
			uint32(m.RAM[zpVLAC+2])<<16 | uint32(m.RAM[zpVLAC+3])<<24
		lo += uint32(int32(int16(m.peekWord(d))))
		m.RAM[zpVLAC] = uint8(lo)
		m.RAM[zpVLAC+1] = uint8(lo >> 8)
		m.RAM[zpVLAC+2] = uint8(lo >> 16)
		m.RAM[zpVLAC+3] = uint8(lo >> 24)
	},
	p35FCOPY: func(m *Machine) {
		d := m.fetchPrefixOperand()
		m.startCopy(m.peekWord(d), m.peekWord(d+2), m.peekWord(d+4))
	},
	p35FFILL: func(m *Machine) {
		d := m.fetchPrefixOperand()
		m.startFill(m.peekWord(d), m.peekWord(d+2), m.peek(d+4))
	},
	p35FBLIT: func(m *Machine) {
		d := m.fetchPrefixOperand()
		m.startBlit(m.peekWord(d), m.peekWord(d+2), m.peek(d+4), m.peek(d+5))
	},
	p35FMUL: func(m *Machine) {
		d := m.fetchPrefixOperand()
		m.startMultiply(m.peekWord(d), m.peekWord(d+2))
	},
	p35FDIV: func(m *Machine) {
		d := m.fetchPrefixOperand()
		m.startDivide(m.peekWord(d), m.peekWord(d+2))
	},
	p35VRTI: func(m *Machine) {
		m.returnFromVIRQ()
	},
}

// fetchPrefixOperand reads the single zero-page-pointer byte that
// follows a PREFIX35 secondary opcode.
func (m *Machine) fetchPrefixOperand() uint16 {
	pc := m.vPC()
	arg := m.peek(pc)
	m.setVPC(pc + 1)
	return uint16(arg)
}

// execPrefix35 dispatches op2 to its secondary handler. Handlers that
// trigger an FSM leave activeInterp/vCpuSelect pointed at the FSM page;
// vcpuStep then reports the hand-off and runVcpu returns, and the video
// driver's runGuestSlice runs the FSM from the next slice on. The rest
// of the current slice goes unused.
func (m *Machine) execPrefix35(op2 uint8) {
	if h, ok := prefix35Table[op2]; ok {
		h(m)
	}
}
