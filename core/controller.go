package core

// ControllerProtocol selects how the raw serial byte sampled at
// videoYInput is decoded (spec §6).
type ControllerProtocol int

const (
	ProtocolTypeB ControllerProtocol = iota // inverted-logic 8-bit shift register (default)
	ProtocolTypeC                           // priority encoder
)

// Button bit codes in the canonical TypeB mapping (active-low byte).
const (
	ButtonRight  uint8 = 0xfe
	ButtonLeft   uint8 = 0xfd
	ButtonDown   uint8 = 0xfb
	ButtonUp     uint8 = 0xf7
	ButtonStart  uint8 = 0xef
	ButtonSelect uint8 = 0xdf
	ButtonB      uint8 = 0xbf
	ButtonA      uint8 = 0x7f
)

// typeCValues lists the 9 valid TypeC priority-encoder values (0, 1, 3,
// ... 255). Each successive value adds one more button to the set, in
// priority order Right,Left,Down,Up,Start,Select,B,A. decodeTypeC
// returns one of these values as is; it does not translate it into the
// TypeB button codes above.
var typeCValues = [...]uint8{0, 1, 3, 7, 15, 31, 63, 127, 255}

// DecodeController samples the raw controller byte, stores the decoded
// state in buttonState and returns it: the raw active-low byte for
// TypeB, the clamped encoder value for TypeC. This is the current level
// of the buttons, not an edge; nothing is compared against the previous
// frame (the previous buttonState is only copied to serialLast).
func (m *Machine) DecodeController(raw uint8, protocol ControllerProtocol) (buttonState uint8) {
	m.setZp(zpSerialRaw, raw)
	m.setZp(zpSerialLast, m.zp(zpButtonState))

	var state uint8
	switch protocol {
	case ProtocolTypeC:
		state = decodeTypeC(raw)
	default:
		// Active-low shift register: buttonState mirrors the sampled
		// byte directly, matching the canonical per-button codes in §6
		// (e.g. ButtonStart == 0xef when Start alone is held).
		state = raw
	}
	m.setZp(zpButtonState, state)
	return state
}

// decodeTypeC maps a priority-encoder sample to the nearest valid code;
// a sample not in typeCValues is treated as the previous valid reading
// would be in hardware (we clamp to the closest lower valid value,
// matching the encoder's monotonic accumulation behavior).
func decodeTypeC(raw uint8) uint8 {
	for i := len(typeCValues) - 1; i >= 0; i-- {
		if raw >= typeCValues[i] {
			return typeCValues[i]
		}
	}
	return 0
}

// StartHeld reports whether the canonical TypeB Start-only combination
// is active (spec §6: "Only Start alone qualifies").
func StartHeld(buttonState uint8) bool {
	return buttonState == ButtonStart
}
