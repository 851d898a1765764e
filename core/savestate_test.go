package core

import "testing"

func TestSerializeDeserialize_RoundTrip(t *testing.T) {
	m := newTestMachine()
	m.SetProgramCRC(0xdeadbeef)
	m.poke(0x1000, 0x42)
	m.setVAC(0x1234)
	m.SelectV6502(0x0600)
	m.v6502().a = 0x55

	data := m.Serialize()

	m2 := NewMachine(Board64K)
	m2.SetProgramCRC(0xdeadbeef)
	if err := m2.Deserialize(data); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if got := m2.Peek(0x1000); got != 0x42 {
		t.Fatalf("restored RAM byte = 0x%02X, want 0x42", got)
	}
	if got := m2.VAC(); got != 0x1234 {
		t.Fatalf("restored vAC = 0x%04X, want 0x1234", got)
	}
	if m2.v6502().a != 0x55 {
		t.Fatalf("restored v6502 accumulator = 0x%02X, want 0x55", m2.v6502().a)
	}
}

func TestVerifyState_RejectsTruncated(t *testing.T) {
	m := newTestMachine()
	data := m.Serialize()
	if err := m.VerifyState(data[:10]); err != ErrSaveStateTooShort {
		t.Fatalf("expected ErrSaveStateTooShort, got %v", err)
	}
}

func TestVerifyState_RejectsROMMismatch(t *testing.T) {
	m := newTestMachine()
	m.SetProgramCRC(0x1111)
	data := m.Serialize()

	m2 := newTestMachine()
	m2.SetProgramCRC(0x2222)
	if err := m2.VerifyState(data); err != ErrSaveStateROMMismatch {
		t.Fatalf("expected ErrSaveStateROMMismatch, got %v", err)
	}
}

func TestVerifyState_RejectsCorruptedData(t *testing.T) {
	m := newTestMachine()
	data := m.Serialize()
	data[stateHeaderSize] ^= 0xff // flip a byte inside the RAM image
	if err := m.VerifyState(data); err != ErrBadCRC {
		t.Fatalf("expected ErrBadCRC, got %v", err)
	}
}
