package core

// entropyPool holds four entropy bytes, mixed at boot and once per
// frame on vertical blank line 0 (spec §3/§4.5). Bytes 0..2 are
// published to zero page; byte 3 is mixed on every board variant and
// never published.
type entropyPool struct {
	bytes [4]uint8
}

func (e *entropyPool) mix(sample uint8) {
	// Cheap LFSR-ish mix: each byte feeds the next, matching the "walk
	// the memory and XOR" technique the original ROM uses at boot.
	e.bytes[0] ^= sample
	e.bytes[1] ^= e.bytes[0]<<1 | e.bytes[0]>>7
	e.bytes[2] ^= e.bytes[1]<<3 | e.bytes[1]>>5
	e.bytes[3] ^= e.bytes[2]<<5 | e.bytes[2]>>3
}

// detectRAMSize walks the address lines the way the real boot ROM does:
// write a marker byte at address 1<<n and its complement at address 0,
// then see whether address 0 aliases it.
// Returns the number of valid low address bits (typically 15 or 16).
func detectRAMSize(m *Machine) uint8 {
	const maxBit = 16
	for n := uint(0); n < maxBit; n++ {
		addr := uint16(1) << n
		if addr == 0 {
			continue
		}
		marker := uint8(1) << (n % 8)
		m.RAM[addr] = marker
		m.RAM[0] = ^marker
		if m.RAM[addr] == m.RAM[0] {
			return uint8(n)
		}
	}
	return maxBit
}

// Boot runs the power-on sequence: RAM-size detection, entropy seeding
// across the whole address space, and a soft reset. It does no reset
// debounce and writes no reset stub at vReset.
func (m *Machine) Boot() {
	m.setZp(zpMemSize, detectRAMSize(m))

	for addr := 0; addr < len(m.RAM); addr++ {
		m.rng.mix(m.RAM[addr])
	}
	m.setZp(zpEntropy0, m.rng.bytes[0])
	m.setZp(zpEntropy1, m.rng.bytes[1])
	m.setZp(zpEntropy2, m.rng.bytes[2])

	m.softReset()
}

// RegisterResetHandler installs the callback softReset invokes after
// clearing machine state, the same registration seam RegisterSysHandler
// gives SYS calls: package gt1 uses this to redeposit Reset.gt1 (or
// whichever program is configured as the reset target) rather than
// package core depending on gt1 directly.
func (m *Machine) RegisterResetHandler(h func(m *Machine)) {
	m.resetHandler = h
}

// softReset re-initializes the vCPU stack, disables vIRQ, clears timers,
// resets the expansion-bus control latch, and re-enters the GT1 loader
// with Reset.gt1 (spec §4.5) via resetHandler, if one has been
// registered. Here we reset machine state and leave vPC/vCpuSelect
// pointed at the vCPU page before handing off to the loader.
func (m *Machine) softReset() {
	m.setVSP(0x0100)
	m.pokeWord(p1VIrq, 0)
	m.setZp(zpSoundTimer, 0)
	m.poke(p1ExpCtrl, 0)
	m.setZp(zpResetTimer, 128)
	m.setZp(zpChannelMask, 0x03)
	m.setZp(zpChannel, 0)
	m.activeInterp = interpVCPU
	m.setZp(zpVCpuSelect, uint8(interpVCPU))
	m.setVPC(0x0200)
	m.setVAC(0)
	m.setVLR(0)
	m.setZp(zpFsmState, 0)

	if m.resetHandler != nil {
		m.resetHandler(m)
	}
}

// CheckSoftReset implements the Start-held-for-~2s detection of §6/§4.5.
// Called once per frame (vertical blank line 0) with whether Start is
// currently held. Returns (triggerReset, extendedReset).
func (m *Machine) CheckSoftReset(startHeld bool) (reset, extended bool) {
	timer := m.zp(zpResetTimer)
	if !startHeld {
		m.setZp(zpResetTimer, 128)
		return false, false
	}
	// The timer counts down once per call. A reset fires each time its
	// low 7 bits reach zero while Start stays held: at 0 after 128 calls
	// (~2s, plain reset), then at 0x80 once the count has wrapped past
	// zero (~4s, extended reset).
	next := timer - 1
	m.setZp(zpResetTimer, next)
	if next&0x7f != 0 {
		return false, false
	}
	return next == 0, next == 0x80
}
