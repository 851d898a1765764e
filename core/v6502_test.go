package core

import "testing"

func TestV6502_SelectV6502EntersInterpreter(t *testing.T) {
	m := newTestMachine()
	m.SelectV6502(0x0400)
	if m.ActiveInterpreter() != "v6502" {
		t.Fatalf("SelectV6502 did not switch interpreters: %s", m.ActiveInterpreter())
	}
	if m.v6502().pc != 0x0400 {
		t.Fatalf("v6502 pc = 0x%04X, want 0x0400", m.v6502().pc)
	}
}

func TestV6502_ADCOverflowFormula(t *testing.T) {
	cases := []struct {
		a, operand uint8
		carryIn    bool
		wantResult uint8
		wantV      bool
		wantC      bool
	}{
		{0x50, 0x50, false, 0xa0, true, false},  // 80+80 overflows into negative
		{0xd0, 0x90, false, 0x60, true, true},   // -48 + -112 overflows into positive
		{0x50, 0x10, false, 0x60, false, false}, // no overflow
		{0xff, 0x01, false, 0x00, false, true},  // carry out, no overflow
	}
	for _, c := range cases {
		m := newTestMachine()
		v := m.v6502()
		v.a = c.a
		v.p = 0
		if c.carryIn {
			v.p |= flagC
		}
		m.poke(0x0500, c.operand)
		execADC(m, 0x0500)

		if v.a != c.wantResult {
			t.Errorf("ADC %02X+%02X: a = 0x%02X, want 0x%02X", c.a, c.operand, v.a, c.wantResult)
		}
		if (v.p&flagV != 0) != c.wantV {
			t.Errorf("ADC %02X+%02X: V flag = %v, want %v", c.a, c.operand, v.p&flagV != 0, c.wantV)
		}
		if (v.p&flagC != 0) != c.wantC {
			t.Errorf("ADC %02X+%02X: C flag = %v, want %v", c.a, c.operand, v.p&flagC != 0, c.wantC)
		}
	}
}

func TestV6502_SBCIsADCWithInvertedOperand(t *testing.T) {
	m := newTestMachine()
	v := m.v6502()
	v.a = 0x50
	v.p = flagC // SBC needs carry set to mean "no borrow"
	m.poke(0x0500, 0x10)
	execSBC(m, 0x0500)
	if got, want := v.a, uint8(0x40); got != want {
		t.Fatalf("SBC: a = 0x%02X, want 0x%02X", got, want)
	}
}

func TestV6502_PushPOnlyRepositionsVFlag(t *testing.T) {
	m := newTestMachine()
	v := m.v6502()
	v.p = flagV | flagC
	m.pushP()
	m.pullP()
	if v.p&flagV == 0 {
		t.Fatal("pullP lost the V flag across a push/pull round trip")
	}
	if v.p&flagC == 0 {
		t.Fatal("pullP lost the C flag across a push/pull round trip")
	}
}

func TestV6502_BranchRelativeDisplacement(t *testing.T) {
	m := newTestMachine()
	v := m.v6502()
	v.pc = 0x0210
	m.poke(0x0210, 0x7f) // +127
	addr, extra := modeRelative(m, 0x10)
	if got, want := addr, uint16(0x0290); got != want {
		t.Fatalf("forward branch target = 0x%04X, want 0x%04X", got, want)
	}
	_ = extra

	v.pc = 0x0210
	m.poke(0x0210, 0x80) // -128
	addr, _ = modeRelative(m, 0x10)
	if got, want := addr, uint16(0x0191); got != want {
		t.Fatalf("backward branch target = 0x%04X, want 0x%04X", got, want)
	}
}

func TestV6502_AbsoluteIndexedPageCrossPenalty(t *testing.T) {
	m := newTestMachine()
	v := m.v6502()
	v.pc = 0x0300
	v.x = 0x10
	m.pokeWord(0x0300, 0x01f8) // +0x10 crosses into page 2
	_, extra := modeAbsoluteX(m, 0xbd)
	if extra != 1 {
		t.Fatalf("page-crossing ABS,X should cost 1 extra cycle, got %d", extra)
	}

	v.pc = 0x0300
	m.pokeWord(0x0300, 0x0100)
	_, extra = modeAbsoluteX(m, 0xbd)
	if extra != 0 {
		t.Fatalf("non-crossing ABS,X should cost 0 extra cycles, got %d", extra)
	}
}

func TestV6502_LDASetsZeroAndNegativeFlags(t *testing.T) {
	m := newTestMachine()
	v := m.v6502()
	m.poke(0x0500, 0x00)
	execLDA(m, 0x0500)
	if v.p&flagZ == 0 {
		t.Fatal("LDA #0 should set Z")
	}
	m.poke(0x0500, 0x80)
	execLDA(m, 0x0500)
	if v.p&flagN == 0 {
		t.Fatal("LDA #0x80 should set N")
	}
}

func TestV6502_JSRRTSRoundTrip(t *testing.T) {
	m := newTestMachine()
	v := m.v6502()
	v.sp = 0xff
	v.pc = 0x0203 // pc already past the 2-byte operand, as modeAbsolute leaves it
	execJSR(m, 0x0400)
	if v.pc != 0x0400 {
		t.Fatalf("JSR: pc = 0x%04X, want 0x0400", v.pc)
	}
	execRTS(m, 0)
	if v.pc != 0x0203 {
		t.Fatalf("RTS did not return to the instruction after JSR: pc = 0x%04X, want 0x0203", v.pc)
	}
}
