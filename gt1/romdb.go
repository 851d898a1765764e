package gt1

import "hash/crc32"

// crc32Checksum is the single computation path shared by save-state
// compatibility checks and ROM database lookups (mirrors the
// teacher's mem.GetROMCRC32 pattern of computing one CRC per loaded
// image and reusing it everywhere an identity check is needed).
func crc32Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// Info describes what's known about a catalogued GT1 program.
type Info struct {
	Name string
	Kind ProgramKind
}

// ProgramKind classifies a catalogued program for the directory/monitor UI.
type ProgramKind int

const (
	KindUnknown ProgramKind = iota
	KindGame
	KindDemo
	KindTool
)

// database maps CRC32 hashes of known GT1 payloads to catalogue
// metadata. Entries here are illustrative (Gigatron's community ROM
// pack ships several hundred); a real deployment would load a larger
// table from the ROM directory itself via SYS_ReadRomDir.
var database = map[uint32]Info{
	0x1a2b3c4d: {Name: "Racer", Kind: KindGame},
	0x2b3c4d5e: {Name: "Snake", Kind: KindGame},
	0x3c4d5e6f: {Name: "Mandelbrot", Kind: KindDemo},
	0x4d5e6f70: {Name: "TinyBASIC", Kind: KindTool},
	0x5e6f7081: {Name: "Egg", Kind: KindGame},
}

// Lookup returns catalogue metadata for a CRC32, and whether an entry
// was found.
func Lookup(crc uint32) (Info, bool) {
	info, ok := database[crc]
	return info, ok
}
