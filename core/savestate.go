package core

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// Save state layout: a fixed header (magic, version, ROM CRC, data
// CRC) followed by the full RAM image and the scheduling fields that
// don't live in addressable memory. This mirrors the teacher's
// header-then-checksum convention rather than inventing a new one.
const (
	stateMagic      = "GIGACOREState"
	stateVersion    = 1
	stateHeaderSize = 24 // 13-byte magic, +2 version, +4 rom crc, +4 data crc = 23, padded to 24
)

var (
	// ErrSaveStateTooShort is returned when a byte slice is smaller than
	// a valid save state could ever be.
	ErrSaveStateTooShort = errors.New("core: save state too short")
	// ErrSaveStateBadMagic is returned when the header magic doesn't match.
	ErrSaveStateBadMagic = errors.New("core: save state has invalid magic")
	// ErrSaveStateVersion is returned for a save state newer than this build understands.
	ErrSaveStateVersion = errors.New("core: save state version unsupported")
	// ErrSaveStateROMMismatch is returned when the state was captured against a different program.
	ErrSaveStateROMMismatch = errors.New("core: save state is for a different program")
	// ErrBadCRC is returned when the save state payload fails its checksum.
	ErrBadCRC = errors.New("core: save state data is corrupted")
)

// SerializeSize returns the exact byte length Serialize will produce.
func (m *Machine) SerializeSize() int {
	return stateHeaderSize +
		len(m.RAM) + // 65536
		1 + // cycleInScanline (low byte; scanline budget never exceeds 200)
		2 + // scanlineInFrame
		1 + // out
		1 + // activeInterp
		4 + // entropy pool
		1 + // board
		vSaveSize // v6502 register file, always present (zero-valued if unused)
}

const vSaveSize = 1 + 1 + 1 + 1 + 1 + 2 // a, x, y, p, sp, pc

// romCRC identifies the loaded program for save-state compatibility
// checking; the gt1 loader computes this over the GT1 payload it
// deposited and passes it through SetProgramCRC.
func (m *Machine) romCRC() uint32 { return m.loadedCRC }

// SetProgramCRC records the CRC32 of the currently loaded program, for
// save states to check against on restore.
func (m *Machine) SetProgramCRC(crc uint32) { m.loadedCRC = crc }

// Serialize captures the complete machine state as a self-describing
// byte slice (VSAVE's host-side equivalent).
func (m *Machine) Serialize() []byte {
	data := make([]byte, m.SerializeSize())

	copy(data[0:13], stateMagic)
	binary.LittleEndian.PutUint16(data[13:15], stateVersion)
	binary.LittleEndian.PutUint32(data[15:19], m.romCRC())

	offset := stateHeaderSize
	offset += copy(data[offset:], m.RAM[:])

	data[offset] = uint8(m.cycleInScanline)
	offset++
	binary.LittleEndian.PutUint16(data[offset:], uint16(m.scanlineInFrame))
	offset += 2
	data[offset] = m.out
	offset++
	data[offset] = uint8(m.activeInterp)
	offset++
	copy(data[offset:offset+4], m.rng.bytes[:])
	offset += 4
	data[offset] = uint8(m.board)
	offset++

	offset = m.serializeV6502(data, offset)

	dataCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	binary.LittleEndian.PutUint32(data[19:23], dataCRC)
	_ = offset

	return data
}

// VerifyState checks a save state's header and checksum without
// applying it, so a frontend can reject an incompatible file before
// disturbing a running machine.
func (m *Machine) VerifyState(data []byte) error {
	if len(data) < m.SerializeSize() {
		return ErrSaveStateTooShort
	}
	if string(data[0:13]) != stateMagic {
		return ErrSaveStateBadMagic
	}
	if binary.LittleEndian.Uint16(data[13:15]) > stateVersion {
		return ErrSaveStateVersion
	}
	if binary.LittleEndian.Uint32(data[15:19]) != m.romCRC() {
		return ErrSaveStateROMMismatch
	}
	expected := binary.LittleEndian.Uint32(data[19:23])
	actual := crc32.ChecksumIEEE(data[stateHeaderSize:])
	if expected != actual {
		return ErrBadCRC
	}
	return nil
}

// Deserialize restores machine state previously produced by Serialize.
func (m *Machine) Deserialize(data []byte) error {
	if err := m.VerifyState(data); err != nil {
		return err
	}

	offset := stateHeaderSize
	offset += copy(m.RAM[:], data[offset:offset+len(m.RAM)])

	m.cycleInScanline = int(data[offset])
	offset++
	m.scanlineInFrame = int(binary.LittleEndian.Uint16(data[offset:]))
	offset += 2
	m.out = data[offset]
	offset++
	m.activeInterp = interpreterID(data[offset])
	offset++
	copy(m.rng.bytes[:], data[offset:offset+4])
	offset += 4
	m.board = BoardVariant(data[offset])
	offset++

	m.deserializeV6502(data, offset)
	return nil
}

func (m *Machine) serializeV6502(data []byte, offset int) int {
	v := m.v6502()
	data[offset] = v.a
	offset++
	data[offset] = v.x
	offset++
	data[offset] = v.y
	offset++
	data[offset] = v.p
	offset++
	data[offset] = v.sp
	offset++
	binary.LittleEndian.PutUint16(data[offset:], v.pc)
	offset += 2
	return offset
}

func (m *Machine) deserializeV6502(data []byte, offset int) int {
	v := m.v6502()
	v.a = data[offset]
	offset++
	v.x = data[offset]
	offset++
	v.y = data[offset]
	offset++
	v.p = data[offset]
	offset++
	v.sp = data[offset]
	offset++
	v.pc = binary.LittleEndian.Uint16(data[offset:])
	offset += 2
	return offset
}
