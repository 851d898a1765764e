package core

import "testing"

func newTestMachine() *Machine {
	m := NewMachine(Board64K)
	m.Boot()
	return m
}

func TestVcpuStep_ADDWSUBWRoundTrip(t *testing.T) {
	m := newTestMachine()
	m.setVAC(0x1234)
	m.setZpWord(0x40, 0x0100)

	m.poke(0x0200, opADDW)
	m.poke(0x0201, 0x40)
	m.setVPC(0x0200)
	m.vcpuStep()
	if got, want := m.vAC(), uint16(0x1334); got != want {
		t.Fatalf("ADDW: vAC = 0x%04X, want 0x%04X", got, want)
	}

	m.poke(0x0202, opSUBW)
	m.poke(0x0203, 0x40)
	m.vcpuStep()
	if got, want := m.vAC(), uint16(0x1234); got != want {
		t.Fatalf("SUBW did not invert ADDW: vAC = 0x%04X, want 0x%04X", got, want)
	}
}

func TestVcpuStep_LSLWEqualsSelfAdd(t *testing.T) {
	m1 := newTestMachine()
	m1.setVAC(0x4321)
	m1.poke(0x0200, opLSLW)
	m1.setVPC(0x0200)
	m1.vcpuStep()

	m2 := newTestMachine()
	m2.setVAC(0x4321)
	m2.setZpWord(0x40, 0x4321)
	m2.poke(0x0200, opADDW)
	m2.poke(0x0201, 0x40)
	m2.setVPC(0x0200)
	m2.vcpuStep()

	if m1.vAC() != m2.vAC() {
		t.Fatalf("LSLW (0x%04X) != ADDW-self (0x%04X)", m1.vAC(), m2.vAC())
	}
}

func TestVcpuStep_DEEKDOKERoundTrip(t *testing.T) {
	m := newTestMachine()
	m.pokeWord(0x0500, 0xbeef)
	m.setVAC(0x0500)

	m.poke(0x0200, opDEEK)
	m.setVPC(0x0200)
	m.vcpuStep()
	if got, want := m.vAC(), uint16(0xbeef); got != want {
		t.Fatalf("DEEK: vAC = 0x%04X, want 0x%04X", got, want)
	}

	// d points at a zero-page slot holding the destination address, so
	// DOKE writes through two levels of indirection: word[word[d]] = vAC.
	m.setZpWord(0x40, 0x0502)
	m.poke(0x0201, opDOKE)
	m.poke(0x0202, 0x40)
	m.vcpuStep()
	if got, want := m.peekWord(0x0502), uint16(0xbeef); got != want {
		t.Fatalf("DOKE did not write DEEK's value through: 0x%04X, want 0x%04X", got, want)
	}
}

func TestVcpuStep_CALLIRET(t *testing.T) {
	m := newTestMachine()
	m.setVPC(0x0200)
	m.poke(0x0200, opCALLI)
	m.poke(0x0201, 0x00)
	m.poke(0x0202, 0x03)
	m.vcpuStep()
	if got, want := m.vPC(), uint16(0x0300); got != want {
		t.Fatalf("CALLI target: vPC = 0x%04X, want 0x%04X", got, want)
	}
	if got, want := m.vLR(), uint16(0x0203); got != want {
		t.Fatalf("CALLI return address: vLR = 0x%04X, want 0x%04X", got, want)
	}

	m.poke(0x0300, opRET)
	m.vcpuStep()
	if got, want := m.vPC(), uint16(0x0203); got != want {
		t.Fatalf("RET: vPC = 0x%04X, want 0x%04X (the CALLI return address)", got, want)
	}
}

func TestVcpuStep_PUSHPOPMutualInverse(t *testing.T) {
	m := newTestMachine()
	startSP := m.vSP()
	m.setVLR(0xcafe)

	m.setVPC(0x0200)
	m.poke(0x0200, opPUSH)
	m.vcpuStep()
	if got, want := m.vSP(), startSP-2; got != want {
		t.Fatalf("PUSH: vSP = 0x%04X, want 0x%04X", got, want)
	}

	m.setVLR(0)
	m.poke(0x0201, opPOP)
	m.vcpuStep()
	if got, want := m.vLR(), uint16(0xcafe); got != want {
		t.Fatalf("POP did not recover the pushed value: vLR = 0x%04X, want 0x%04X", got, want)
	}
	if got, want := m.vSP(), startSP; got != want {
		t.Fatalf("POP did not restore vSP: 0x%04X, want 0x%04X", got, want)
	}
}

func TestVcpuStep_PUSHPOPAcrossPageBoundary(t *testing.T) {
	m := newTestMachine()
	m.setVSP(0x0101) // one push crosses from page 1 into page 0
	m.setVLR(0x5555)

	m.setVPC(0x0200)
	m.poke(0x0200, opPUSH)
	m.vcpuStep()
	if got, want := m.vSP(), uint16(0x00ff); got != want {
		t.Fatalf("PUSH across page boundary: vSP = 0x%04X, want 0x%04X", got, want)
	}

	m.setVLR(0)
	m.poke(0x0201, opPOP)
	m.vcpuStep()
	if got, want := m.vLR(), uint16(0x5555); got != want {
		t.Fatalf("POP across page boundary lost the value: vLR = 0x%04X, want 0x%04X", got, want)
	}
	if got, want := m.vSP(), uint16(0x0101); got != want {
		t.Fatalf("POP across page boundary: vSP = 0x%04X, want 0x%04X", got, want)
	}
}

func TestRunVcpu_AdvancesVPC(t *testing.T) {
	m := newTestMachine()
	m.setVPC(0x0200)
	for i := uint16(0); i < 64; i++ {
		m.poke(0x0200+i, opNOP)
	}
	before := m.vPC()
	m.runVcpu(100)
	after := m.vPC()
	if after == before {
		t.Fatal("runVcpu did not advance vPC at all")
	}
}

func TestSYS_MultiplyFSM(t *testing.T) {
	m := newTestMachine()
	m.setZpWord(0x28, 1000)
	m.setZpWord(0x2a, 1000)

	m.startMultiply(1000, 1000)
	if m.ActiveInterpreter() != "FSM14 (mul/div)" {
		t.Fatalf("startMultiply did not select FSM14: %s", m.ActiveInterpreter())
	}

	for i := 0; i < fsmMulBits+1 && m.ActiveInterpreter() == "FSM14 (mul/div)"; i++ {
		m.runFSM()
	}

	if m.ActiveInterpreter() != "vCPU" {
		t.Fatalf("multiply FSM never completed: still in %s", m.ActiveInterpreter())
	}
	if got, want := m.zpWord(SysArgsAddr+4), uint16(0x4240); got != want {
		t.Fatalf("1000*1000 mod 65536: got 0x%04X, want 0x%04X", got, want)
	}
}

func TestVcpuStep_BranchPreservesPage(t *testing.T) {
	m := newTestMachine()
	m.setVPC(0x0300)
	m.poke(0x0300, opBRA)
	m.poke(0x0301, 0x42)
	m.vcpuStep()
	if got, want := m.vPC(), uint16(0x0342); got != want {
		t.Fatalf("BRA: vPC = 0x%04X, want 0x%04X (page preserved)", got, want)
	}
}

func TestVcpuStep_ConditionalBranchTakenKeepsPage(t *testing.T) {
	m := newTestMachine()
	m.setVAC(0)
	m.setVPC(0x0500)
	m.poke(0x0500, opBEQ)
	m.poke(0x0501, 0x10)
	m.vcpuStep()
	if got, want := m.vPC(), uint16(0x0510); got != want {
		t.Fatalf("BEQ taken: vPC = 0x%04X, want 0x%04X (page preserved)", got, want)
	}
}

func TestVcpuStep_ConditionalBranchNotTakenFallsThrough(t *testing.T) {
	m := newTestMachine()
	m.setVAC(1)
	m.setVPC(0x0500)
	m.poke(0x0500, opBEQ)
	m.poke(0x0501, 0x10)
	m.vcpuStep()
	if got, want := m.vPC(), uint16(0x0502); got != want {
		t.Fatalf("BEQ not taken: vPC = 0x%04X, want 0x%04X", got, want)
	}
}

func TestVcpuStep_Prefix35FCopyYieldsToFSM(t *testing.T) {
	m := newTestMachine()
	m.setZpWord(0x40, 0x0600)
	m.setZpWord(0x42, 0x0700)
	m.setZpWord(0x44, 4)
	m.poke(0x0600, 0xde)
	m.poke(0x0601, 0xad)
	m.poke(0x0602, 0xbe)
	m.poke(0x0603, 0xef)

	m.setVPC(0x0200)
	m.poke(0x0200, opPREFIX35)
	m.poke(0x0201, p35FCOPY)
	m.poke(0x0202, 0x40)

	if m.vcpuStep() {
		t.Fatal("PREFIX35 FCOPY should yield (return false) once it hands off to FSM18")
	}
	if m.ActiveInterpreter() != "FSM18 (copy)" {
		t.Fatalf("PREFIX35 FCOPY did not select FSM18: %s", m.ActiveInterpreter())
	}
}

func TestVcpuStep_PeekAAutoIncrements(t *testing.T) {
	m := newTestMachine()
	m.setZpWord(0x40, 0x0600)
	m.poke(0x0600, 0xaa)
	m.poke(0x0601, 0xbb)

	m.setVPC(0x0200)
	m.poke(0x0200, opPEEKA)
	m.poke(0x0201, 0x40)
	m.vcpuStep()
	if got, want := m.vAC(), uint16(0xaa); got != want {
		t.Fatalf("PEEKA: vAC = 0x%02X, want 0x%02X", got, want)
	}
	if got, want := m.zpWord(0x40), uint16(0x0601); got != want {
		t.Fatalf("PEEKA did not auto-increment pointer: 0x%04X, want 0x%04X", got, want)
	}

	m.poke(0x0202, opPEEKA)
	m.poke(0x0203, 0x40)
	m.vcpuStep()
	if got, want := m.vAC(), uint16(0xbb); got != want {
		t.Fatalf("second PEEKA: vAC = 0x%02X, want 0x%02X", got, want)
	}
}

func TestVcpuStep_PokeAAutoIncrements(t *testing.T) {
	m := newTestMachine()
	m.setZpWord(0x40, 0x0600)
	m.setVAC(0x12)
	m.setVPC(0x0200)
	m.poke(0x0200, opPOKEA)
	m.poke(0x0201, 0x40)
	m.vcpuStep()

	m.setVAC(0x34)
	m.poke(0x0202, opPOKEA)
	m.poke(0x0203, 0x40)
	m.vcpuStep()

	if got, want := m.zpWord(0x40), uint16(0x0602); got != want {
		t.Fatalf("POKEA x2 did not advance pointer by 2: 0x%04X, want 0x%04X", got, want)
	}
	if got, want := m.peek(0x0600), uint8(0x12); got != want {
		t.Fatalf("first POKEA byte: 0x%02X, want 0x%02X", got, want)
	}
	if got, want := m.peek(0x0601), uint8(0x34); got != want {
		t.Fatalf("second POKEA byte: 0x%02X, want 0x%02X", got, want)
	}
}

func TestVcpuStep_PeekVIndexesByAccumulator(t *testing.T) {
	m := newTestMachine()
	m.setZpWord(0x40, 0x0600)
	m.poke(0x0600, 0x11)
	m.poke(0x0603, 0x22)

	m.setVAC(3)
	m.setVPC(0x0200)
	m.poke(0x0200, opPEEKV)
	m.poke(0x0201, 0x40)
	m.vcpuStep()
	if got, want := m.vAC(), uint16(0x22); got != want {
		t.Fatalf("PEEKV indexed by vAC=3: got 0x%02X, want 0x%02X", got, want)
	}
	if got, want := m.zpWord(0x40), uint16(0x0600); got != want {
		t.Fatalf("PEEKV must not mutate the base pointer: 0x%04X, want 0x%04X", got, want)
	}
}

func TestVcpuStep_ADDVSUBVCarry(t *testing.T) {
	m := newTestMachine()
	m.setZpWord(0x40, 0xffff)
	m.setVAC(1)

	m.setVPC(0x0200)
	m.poke(0x0200, opADDV)
	m.poke(0x0201, 0x40)
	m.vcpuStep()
	if got, want := m.vAC(), uint16(0); got != want {
		t.Fatalf("ADDV 1+0xffff: vAC = 0x%04X, want 0x%04X", got, want)
	}
	if got := m.zp(zpCarry); got != 1 {
		t.Fatalf("ADDV 1+0xffff should carry out: zpCarry = %d, want 1", got)
	}

	m.setZpWord(0x42, 1)
	m.setVAC(0)
	m.poke(0x0202, opSUBV)
	m.poke(0x0203, 0x42)
	m.vcpuStep()
	if got, want := m.vAC(), uint16(0xffff); got != want {
		t.Fatalf("SUBV 0-1: vAC = 0x%04X, want 0x%04X", got, want)
	}
	if got := m.zp(zpCarry); got != 1 {
		t.Fatalf("SUBV 0-1 should borrow: zpCarry = %d, want 1", got)
	}
}

func TestVcpuStep_ADDSVChainsCarry(t *testing.T) {
	m := newTestMachine()
	// Build a 32-bit add: low words 0xffff+0x0001 carries into the high
	// words, ADDSV folds that carry into the second ADDW-style limb.
	m.setZpWord(0x40, 1)
	m.setVAC(0xffff)
	m.setVPC(0x0200)
	m.poke(0x0200, opADDV)
	m.poke(0x0201, 0x40)
	m.vcpuStep()
	if got, want := m.vAC(), uint16(0); got != want {
		t.Fatalf("ADDV low limb: vAC = 0x%04X, want 0x%04X", got, want)
	}

	m.setVAC(0x0010) // high limb of the multi-word accumulator
	m.setZpWord(0x42, 0x0020)
	m.poke(0x0202, opADDSV)
	m.poke(0x0203, 0x42)
	m.vcpuStep()
	if got, want := m.vAC(), uint16(0x0031); got != want {
		t.Fatalf("ADDSV high limb did not fold in the carry: vAC = 0x%04X, want 0x%04X", got, want)
	}
}
