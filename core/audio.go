package core

// Four sound channels, one phase accumulator each (spec §3/§6). Channel
// state lives in its own page so it does not compete with the video
// table for page-1 space; see audioChannelBase in zeropage.go.
const numChannels = 4

type channelState struct {
	wave uint8  // waveform/modulation selector: soundTable index high bits
	key  uint16 // phase increment per audio tick
	osc  uint16 // running phase accumulator
}

func (m *Machine) channelOffset(ch uint8) uint16 {
	return audioChannelBase + uint16(ch)*audioChannelBytes
}

func (m *Machine) loadChannel(ch uint8) channelState {
	off := m.channelOffset(ch)
	return channelState{
		wave: m.peek(off),
		key:  m.peekWord(off + 1),
		osc:  m.peekWord(off + 3),
	}
}

func (m *Machine) storeChannelOsc(ch uint8, osc uint16) {
	m.pokeWord(m.channelOffset(ch)+3, osc)
}

// soundTable folds a phase accumulator's high byte through one of the
// four classic Gigatron waveforms (sawtooth/pulse/triangle/noise),
// selected by the low two bits of wave. Each is computed from phaseHigh
// by a short formula; a real ROM ships four 256-byte tables instead,
// whose contents are out of spec scope (§1).
func soundTable(wave uint8, phaseHigh uint8) uint8 {
	switch wave & 0x03 {
	case 0: // sawtooth
		return phaseHigh
	case 1: // pulse: square wave, 50% duty from the sign of phaseHigh
		if phaseHigh&0x80 != 0 {
			return 0xff
		}
		return 0x00
	case 2: // triangle: fold the ramp at the midpoint
		if phaseHigh < 0x80 {
			return phaseHigh * 2
		}
		return (0xff - phaseHigh) * 2
	default: // noise: phaseHigh scrambled by xor-shifts as a cheap PRNG tap
		x := phaseHigh
		x ^= x << 3
		x ^= x >> 5
		return x
	}
}

// AdvanceAudioChannel implements the per-scanline audio update of §4.1
// step 2: advance the phase accumulator for the current channel,
// fold it through the waveform source, and move to the next channel,
// normalized modulo numChannels (§3 invariant: "channel is always
// normalized to 0..3"). The folded value is returned as sample; Step
// accumulates it for RefreshXout.
func (m *Machine) AdvanceAudioChannel() (sample uint8) {
	ch := m.zp(zpChannel) % numChannels
	cs := m.loadChannel(ch)
	cs.osc += cs.key
	m.storeChannelOsc(ch, cs.osc)

	out := soundTable(cs.wave, uint8(cs.osc>>8))

	mask := m.zp(zpChannelMask)
	next := (ch + 1) % numChannels
	for mask&(1<<next) == 0 && next != ch {
		next = (next + 1) % numChannels
	}
	m.setZp(zpChannel, next)

	return out
}

// RefreshXout implements the "sample output refreshed every 4 scanlines"
// invariant (§3): mixes all active channels' current waveform output
// into the extended output latch, applying a discontinuity correction
// so that clicks are suppressed when scanlines-per-frame is not a
// multiple of 4.
func (m *Machine) RefreshXout(sampleAccumulator uint16, linesSinceRefresh int) {
	mixed := sampleAccumulator
	if linesSinceRefresh != 4 {
		// Scale the partial accumulation back up to a nominal 4-line
		// contribution so amplitude doesn't step down on short periods.
		mixed = mixed * 4 / uint16(max(linesSinceRefresh, 1))
	}
	xout := uint8(mixed >> 2)
	prev := m.zp(zpXout)
	mask := m.zp(zpXoutMask)
	blended := (prev & ^mask) | (xout & mask)
	m.setZp(zpXout, blended)
}
