package core

// vCPU is the 16-bit bytecode virtual processor (spec §4.2). The
// opcode byte dispatches through opcodeTable; each handler performs its
// semantic effect and reports the cycle cost actually consumed (most
// opcodes are fixed-cost, SYS is variable). NEXT then subtracts
// cost/2 ticks, checks the budget, and either re-dispatches or exits
// back to the video driver.

// maxTicks is the largest number of ticks any ordinary (non-SYS)
// instruction can cost; runVcpu must leave at least this many before
// dispatching another opcode (spec §4.2, "Cycle cost contract").
const maxTicks = 15

// vCPUOverhead is the fixed cycle cost the video driver reserves for
// re-entry into the vCPU interpreter after a cycle-accurate exit
// (spec §4.2, "Re-entry").
const vCPUOverhead = 9

type opcodeHandler func(m *Machine, operand uint16)

type opcodeDef struct {
	name     string
	length   uint8 // bytes including the opcode byte itself
	cycles   int   // fixed native-cycle cost
	exec     opcodeHandler
}

// Opcode byte assignments. The real ROM packs these into a dispatch
// page where the opcode IS the jump target (spec §4.2); here the byte
// values only need to be stable within this implementation, since we
// do not emit native opcodes (the assembler frontend is out of scope,
// §1).
const (
	opNOP  = 0x00
	opLD   = 0x01 // LD d       : vAC.lo = [d], vAC.hi = 0
	opST   = 0x02 // ST d       : [d] = vAC.lo
	opLDW  = 0x03 // LDW d      : vAC = word[d]
	opSTW  = 0x04 // STW d      : word[d] = vAC
	opLDLW = 0x05 // LDLW d     : vAC = word[vSP+d]
	opSTLW = 0x06 // STLW d     : word[vSP+d] = vAC
	opLDI  = 0x07 // LDI n      : vAC.lo = n, vAC.hi = 0
	opLDWI = 0x08 // LDWI nn    : vAC = nn (16-bit immediate)
	opPEEK = 0x09 // PEEK       : vAC = byte[vAC]
	opPOKE = 0x0a // POKE d     : byte[word[d]] = vAC.lo
	opDEEK = 0x0b // DEEK       : vAC = word[vAC]
	opDOKE = 0x0c // DOKE d     : word[word[d]] = vAC
	opADDW = 0x0d // ADDW d     : vAC += word[d]
	opSUBW = 0x0e // SUBW d     : vAC -= word[d]
	opADDI = 0x0f // ADDI n     : vAC += n (zero-extended)
	opSUBI = 0x10 // SUBI n     : vAC -= n (zero-extended)
	opANDW = 0x11
	opORW  = 0x12
	opXORW = 0x13
	opANDI = 0x14
	opORI  = 0x15
	opXORI = 0x16
	opLSLW = 0x17 // vAC <<= 1
	opBRA  = 0x18 // unconditional branch within the current page, operand is the target's low byte
	opBEQ  = 0x19
	opBNE  = 0x1a
	opBGT  = 0x1b
	opBGE  = 0x1c
	opBLT  = 0x1d
	opBLE  = 0x1e
	opCMPHS = 0x1f
	opCMPHU = 0x20
	opCMPWS = 0x21
	opCMPWU = 0x22
	opCMPIS = 0x23
	opCMPIU = 0x24
	opCALL  = 0x25 // CALL d     : vLR = vPC+length, vPC = word[d]
	opRET   = 0x26 // RET        : vPC = vLR
	opCALLI = 0x27 // CALLI nn   : vLR = vPC+length, vPC = nn
	opPUSH  = 0x28 // PUSH       : vSP -= 2, word[vSP] = vLR
	opPOP   = 0x29 // POP        : vLR = word[vSP], vSP += 2
	opALLOC = 0x2a // ALLOC n    : vSP -= sign-extend(n)
	opSYS   = 0x2b // SYS n      : invoke [sysFn], n = max extra ticks
	opPREFIX35 = 0x2c

	// Indirect-via-accumulator and vector-indexed variants of PEEK/POKE/
	// DEEK/DOKE (spec §4.2). The "A" suffix auto-increments the pointer
	// word stored at d after the access, the common idiom for streaming
	// through a buffer without a separate ADDW each iteration; the "V"
	// suffix indexes the pointer stored at d by vAC instead, the common
	// idiom for array element access.
	opPOKEA = 0x2d // POKEA d : byte[word[d]] = vAC.lo, then word[d] += 1
	opDOKEA = 0x2e // DOKEA d : word[word[d]] = vAC, then word[d] += 2
	opPEEKA = 0x2f // PEEKA d : vAC = byte[word[d]], then word[d] += 1
	opDEEKA = 0x30 // DEEKA d : vAC = word[word[d]], then word[d] += 2
	opPEEKV = 0x31 // PEEKV d : vAC = byte[word[d] + vAC]
	opDEEKV = 0x32 // DEEKV d : vAC = word[word[d] + vAC]

	// Carry-aware 16-bit arithmetic (spec §9, "The carry bit"): ADDV
	// starts a multi-word add chain and leaves the synthesized carry-out
	// in zpCarry; ADDSV continues the chain by folding that carry back
	// in. SUBV is the subtract/borrow counterpart.
	opADDV  = 0x33 // ADDV d  : vAC += word[d], zpCarry = carry-out
	opSUBV  = 0x34 // SUBV d  : vAC -= word[d], zpCarry = borrow-out
	opADDSV = 0x35 // ADDSV d : vAC += word[d] + zpCarry, zpCarry = new carry-out
)

var opcodeTable [256]opcodeDef

func init() {
	set := func(op byte, d opcodeDef) { opcodeTable[op] = d }

	set(opNOP, opcodeDef{"NOP", 2, 4, func(m *Machine, o uint16) {}})

	set(opLD, opcodeDef{"LD", 2, 18, func(m *Machine, d uint16) {
		m.setVAC(uint16(m.peek(d)))
	}})
	set(opST, opcodeDef{"ST", 2, 18, func(m *Machine, d uint16) {
		m.poke(d, uint8(m.vAC()))
	}})
	set(opLDW, opcodeDef{"LDW", 2, 20, func(m *Machine, d uint16) {
		m.setVAC(m.peekWord(d))
	}})
	set(opSTW, opcodeDef{"STW", 2, 20, func(m *Machine, d uint16) {
		m.pokeWord(d, m.vAC())
	}})
	set(opLDLW, opcodeDef{"LDLW", 2, 24, func(m *Machine, d uint16) {
		m.setVAC(m.peekWord(m.vSP() + d))
	}})
	set(opSTLW, opcodeDef{"STLW", 2, 24, func(m *Machine, d uint16) {
		m.pokeWord(m.vSP()+d, m.vAC())
	}})
	set(opLDI, opcodeDef{"LDI", 2, 16, func(m *Machine, n uint16) {
		m.setVAC(n & 0xff)
	}})
	set(opLDWI, opcodeDef{"LDWI", 3, 20, func(m *Machine, nn uint16) {
		m.setVAC(nn)
	}})
	set(opPEEK, opcodeDef{"PEEK", 1, 26, func(m *Machine, _ uint16) {
		m.setVAC(uint16(m.peek(m.vAC())))
	}})
	set(opPOKE, opcodeDef{"POKE", 2, 28, func(m *Machine, d uint16) {
		m.poke(m.peekWord(d), uint8(m.vAC()))
	}})
	set(opDEEK, opcodeDef{"DEEK", 1, 28, func(m *Machine, _ uint16) {
		m.setVAC(m.peekWord(m.vAC()))
	}})
	set(opDOKE, opcodeDef{"DOKE", 2, 28, func(m *Machine, d uint16) {
		m.pokeWord(m.peekWord(d), m.vAC())
	}})
	set(opADDW, opcodeDef{"ADDW", 2, 28, func(m *Machine, d uint16) {
		m.setVAC(m.vAC() + m.peekWord(d))
	}})
	set(opSUBW, opcodeDef{"SUBW", 2, 28, func(m *Machine, d uint16) {
		m.setVAC(m.vAC() - m.peekWord(d))
	}})
	set(opADDI, opcodeDef{"ADDI", 2, 20, func(m *Machine, n uint16) {
		m.setVAC(m.vAC() + (n & 0xff))
	}})
	set(opSUBI, opcodeDef{"SUBI", 2, 20, func(m *Machine, n uint16) {
		m.setVAC(m.vAC() - (n & 0xff))
	}})
	set(opANDW, opcodeDef{"ANDW", 2, 28, func(m *Machine, d uint16) {
		m.setVAC(m.vAC() & m.peekWord(d))
	}})
	set(opORW, opcodeDef{"ORW", 2, 28, func(m *Machine, d uint16) {
		m.setVAC(m.vAC() | m.peekWord(d))
	}})
	set(opXORW, opcodeDef{"XORW", 2, 28, func(m *Machine, d uint16) {
		m.setVAC(m.vAC() ^ m.peekWord(d))
	}})
	set(opANDI, opcodeDef{"ANDI", 2, 20, func(m *Machine, n uint16) {
		m.setVAC(m.vAC() & (n & 0xff))
	}})
	set(opORI, opcodeDef{"ORI", 2, 20, func(m *Machine, n uint16) {
		m.setVAC(m.vAC() | (n & 0xff))
	}})
	set(opXORI, opcodeDef{"XORI", 2, 20, func(m *Machine, n uint16) {
		m.setVAC(m.vAC() ^ (n & 0xff))
	}})
	set(opLSLW, opcodeDef{"LSLW", 1, 28, func(m *Machine, _ uint16) {
		m.setVAC(m.vAC() << 1)
	}})

	// Branches patch only vPCL, keeping vPCH unchanged: the operand is
	// the target's low byte within the current page, not a full
	// address, matching the real ROM's page-local jump tables.
	branch := func(name string, cond func(m *Machine) bool) opcodeDef {
		return opcodeDef{name, 2, 24, func(m *Machine, target uint16) {
			if cond(m) {
				m.setVPC(branchTarget(m, target))
			}
		}}
	}
	set(opBRA, opcodeDef{"BRA", 2, 20, func(m *Machine, target uint16) {
		m.setVPC(branchTarget(m, target))
	}})
	set(opBEQ, branch("BEQ", func(m *Machine) bool { return m.vAC() == 0 }))
	set(opBNE, branch("BNE", func(m *Machine) bool { return m.vAC() != 0 }))
	set(opBGT, branch("BGT", func(m *Machine) bool { return int16(m.vAC()) > 0 }))
	set(opBGE, branch("BGE", func(m *Machine) bool { return int16(m.vAC()) >= 0 }))
	set(opBLT, branch("BLT", func(m *Machine) bool { return int16(m.vAC()) < 0 }))
	set(opBLE, branch("BLE", func(m *Machine) bool { return int16(m.vAC()) <= 0 }))

	set(opCMPHS, opcodeDef{"CMPHS", 2, 24, func(m *Machine, d uint16) {
		m.setVAC(boolWord(int16(m.vAC()) > int16(m.peekWord(d))))
	}})
	set(opCMPHU, opcodeDef{"CMPHU", 2, 24, func(m *Machine, d uint16) {
		m.setVAC(boolWord(m.vAC() > m.peekWord(d)))
	}})
	set(opCMPWS, opcodeDef{"CMPWS", 2, 26, func(m *Machine, d uint16) {
		m.setVAC(boolWord(int16(m.vAC()) == int16(m.peekWord(d))))
	}})
	set(opCMPWU, opcodeDef{"CMPWU", 2, 26, func(m *Machine, d uint16) {
		m.setVAC(boolWord(m.vAC() == m.peekWord(d)))
	}})
	set(opCMPIS, opcodeDef{"CMPIS", 2, 20, func(m *Machine, n uint16) {
		m.setVAC(boolWord(int16(m.vAC()) == int16(int8(n))))
	}})
	set(opCMPIU, opcodeDef{"CMPIU", 2, 20, func(m *Machine, n uint16) {
		m.setVAC(boolWord(m.vAC() == n&0xff))
	}})

	set(opCALL, opcodeDef{"CALL", 2, 26, func(m *Machine, d uint16) {
		m.setVLR(m.vPC())
		m.setVPC(m.peekWord(d))
	}})
	set(opCALLI, opcodeDef{"CALLI", 3, 28, func(m *Machine, nn uint16) {
		m.setVLR(m.vPC())
		m.setVPC(nn)
	}})
	set(opRET, opcodeDef{"RET", 1, 16, func(m *Machine, _ uint16) {
		m.setVPC(m.vLR())
	}})
	set(opPUSH, opcodeDef{"PUSH", 1, 26, func(m *Machine, _ uint16) {
		sp := m.vSP() - 2
		m.setVSP(sp)
		m.pokeWord(sp, m.vLR())
	}})
	set(opPOP, opcodeDef{"POP", 1, 26, func(m *Machine, _ uint16) {
		m.setVLR(m.peekWord(m.vSP()))
		m.setVSP(m.vSP() + 2)
	}})
	set(opALLOC, opcodeDef{"ALLOC", 2, 16, func(m *Machine, n uint16) {
		m.setVSP(m.vSP() - uint16(int16(int8(n))))
	}})

	set(opSYS, opcodeDef{"SYS", 2, 0, nil}) // handled specially by runVcpu
	set(opPREFIX35, opcodeDef{"PREFIX35", 2, 24, nil}) // handled specially by runVcpu

	set(opPOKEA, opcodeDef{"POKEA", 2, 30, func(m *Machine, d uint16) {
		addr := m.peekWord(d)
		m.poke(addr, uint8(m.vAC()))
		m.pokeWord(d, addr+1)
	}})
	set(opDOKEA, opcodeDef{"DOKEA", 2, 32, func(m *Machine, d uint16) {
		addr := m.peekWord(d)
		m.pokeWord(addr, m.vAC())
		m.pokeWord(d, addr+2)
	}})
	set(opPEEKA, opcodeDef{"PEEKA", 2, 28, func(m *Machine, d uint16) {
		addr := m.peekWord(d)
		m.setVAC(uint16(m.peek(addr)))
		m.pokeWord(d, addr+1)
	}})
	set(opDEEKA, opcodeDef{"DEEKA", 2, 30, func(m *Machine, d uint16) {
		addr := m.peekWord(d)
		m.setVAC(m.peekWord(addr))
		m.pokeWord(d, addr+2)
	}})
	set(opPEEKV, opcodeDef{"PEEKV", 2, 28, func(m *Machine, d uint16) {
		m.setVAC(uint16(m.peek(m.peekWord(d) + m.vAC())))
	}})
	set(opDEEKV, opcodeDef{"DEEKV", 2, 30, func(m *Machine, d uint16) {
		m.setVAC(m.peekWord(m.peekWord(d) + m.vAC()))
	}})

	set(opADDV, opcodeDef{"ADDV", 2, 28, func(m *Machine, d uint16) {
		operand := m.peekWord(d)
		m.setZp(zpCarry, boolByte(addCarry(m.vAC(), operand)))
		m.setVAC(m.vAC() + operand)
	}})
	set(opSUBV, opcodeDef{"SUBV", 2, 28, func(m *Machine, d uint16) {
		operand := m.peekWord(d)
		m.setZp(zpCarry, boolByte(subBorrow(m.vAC(), operand)))
		m.setVAC(m.vAC() - operand)
	}})
	set(opADDSV, opcodeDef{"ADDSV", 2, 28, func(m *Machine, d uint16) {
		operand := m.peekWord(d)
		carryIn := uint32(m.zp(zpCarry) & 1)
		sum := uint32(m.vAC()) + uint32(operand) + carryIn
		m.setZp(zpCarry, boolByte(sum > 0xffff))
		m.setVAC(uint16(sum))
	}})
}

// branchTarget resolves a branch's page-local operand byte against the
// page vPC already sits in (branches never cross pages).
func branchTarget(m *Machine, low uint16) uint16 {
	return (m.vPC() & 0xff00) | (low & 0xff)
}

func boolWord(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// fetchOperand reads the operand bytes following the opcode, in the
// opcode's own page (the real ROM advances X after each fetch; we
// model the net effect directly since X is not separately observable
// from guest code).
func (m *Machine) fetchOperand(pc uint16, length uint8) uint16 {
	switch length {
	case 1:
		return 0
	case 2:
		return uint16(m.peek(pc + 1))
	case 3:
		return uint16(m.peek(pc+1)) | uint16(m.peek(pc+2))<<8
	default:
		return 0
	}
}

// runVcpu cedes exactly n native cycles to the guest and guarantees
// control returns after n cycles have elapsed (spec §4.1, "Critical
// contract"). ticks are n/2 minus overhead; an odd n costs one extra
// nop cycle to stay tick-aligned.
func (m *Machine) runVcpu(n int) {
	if n%2 != 0 {
		n--
	}
	budget := int16(n/2) - vCPUOverhead/2
	m.setVTicks(budget)

	for m.vTicks() >= maxTicks {
		if !m.vcpuStep() {
			return // handed off to v6502 or an FSM page
		}
	}
}

// vcpuStep executes exactly one vCPU instruction (the NEXT sequence of
// §4.2) and returns false if control was handed to a different
// interpreter (v6502, or an FSM via PREFIX35/SYS) mid-slice.
func (m *Machine) vcpuStep() bool {
	pc := m.vPC()
	opcode := m.peek(pc)
	def := opcodeTable[opcode]

	switch opcode {
	case opSYS:
		return m.execSYS(pc)
	case opPREFIX35:
		op2 := m.peek(pc + 1)
		m.setVPC(pc + 2)
		m.execPrefix35(op2)
		m.setVTicks(m.vTicks() - int16(def.cycles/2))
		return m.activeInterp == interpVCPU
	}

	if def.exec == nil {
		// Unassigned opcode: skipped as a one-byte, 2-tick no-op rather
		// than crashing the interpreter loop.
		m.setVPC(pc + 1)
		m.setVTicks(m.vTicks() - 2)
		return true
	}

	operand := m.fetchOperand(pc, def.length)
	nextPC := pc + uint16(def.length)
	m.setVPC(nextPC)
	def.exec(m, operand)

	cost := int16(def.cycles / 2)
	if cost > maxTicks {
		cost = maxTicks
	}
	m.setVTicks(m.vTicks() - cost)
	return true
}
