package gt1

import (
	"bytes"
	"testing"
)

func TestDecode_SingleSegment(t *testing.T) {
	data := []byte{
		0x02, 0x00, 0x03, 0xaa, 0xbb, 0xcc, // segment at 0x0200, 3 bytes
		0x00, 0x02, 0x00, // terminator, entry = 0x0200
	}
	p, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(p.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(p.Segments))
	}
	if got, want := p.Segments[0].Addr, uint16(0x0200); got != want {
		t.Fatalf("segment address = 0x%04X, want 0x%04X", got, want)
	}
	if !bytes.Equal(p.Segments[0].Data, []byte{0xaa, 0xbb, 0xcc}) {
		t.Fatalf("segment data = %v", p.Segments[0].Data)
	}
	if got, want := p.Entry, uint16(0x0200); got != want {
		t.Fatalf("entry = 0x%04X, want 0x%04X", got, want)
	}
}

func TestDecode_ZeroLengthMeans256Bytes(t *testing.T) {
	seg := make([]byte, 256)
	for i := range seg {
		seg[i] = byte(i)
	}
	var data []byte
	data = append(data, 0x03, 0x00, 0x00) // addr 0x0300, length byte 0 = 256
	data = append(data, seg...)
	data = append(data, 0x00, 0x03, 0x00) // terminator

	p, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(p.Segments[0].Data) != 256 {
		t.Fatalf("expected 256-byte segment, got %d", len(p.Segments[0].Data))
	}
}

func TestDecode_TruncatedStreamErrors(t *testing.T) {
	data := []byte{0x02, 0x00, 0x05, 0xaa} // claims 5 bytes, has 1
	if _, err := Decode(data); err == nil {
		t.Fatal("expected an error decoding a truncated segment body")
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	p := &Program{
		Segments: []Segment{
			{Addr: 0x0200, Data: []byte{1, 2, 3, 4, 5}},
			{Addr: 0x0400, Data: bytes.Repeat([]byte{0x42}, 300)}, // spans two physical segments
		},
		Entry: 0x0200,
	}
	encoded := Encode(p)
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode(Encode(p)): %v", err)
	}
	if decoded.Entry != p.Entry {
		t.Fatalf("entry = 0x%04X, want 0x%04X", decoded.Entry, p.Entry)
	}

	var total []byte
	for _, seg := range decoded.Segments {
		total = append(total, seg.Data...)
	}
	var want []byte
	for _, seg := range p.Segments {
		want = append(want, seg.Data...)
	}
	if !bytes.Equal(total, want) {
		t.Fatal("round trip through Encode/Decode lost or reordered segment data")
	}
}

func TestDecodeAuto_PlainGT1(t *testing.T) {
	data := []byte{0x02, 0x00, 0x01, 0x99, 0x00, 0x02, 0x00}
	p, err := DecodeAuto(data)
	if err != nil {
		t.Fatalf("DecodeAuto: %v", err)
	}
	if p.Segments[0].Data[0] != 0x99 {
		t.Fatalf("unexpected segment data %v", p.Segments[0].Data)
	}
}

func TestDecodeAuto_GT1zLiteralOnly(t *testing.T) {
	// A minimal raw GT1 stream (7 bytes), split across two literal-only
	// tokens (nLit capped at 6 to stay under the 7-means-escape rule).
	raw := []byte{0x02, 0x00, 0x01, 0x42, 0x00, 0x02, 0x00}
	tok1 := byte(6 << 5) // nLit=6, mCnt=0, longOffset=0
	tok2 := byte(1 << 5) // nLit=1, mCnt=0, longOffset=0

	var compressed []byte
	compressed = append(compressed, gt1zMagic...)
	compressed = append(compressed, tok1)
	compressed = append(compressed, raw[:6]...)
	compressed = append(compressed, tok2)
	compressed = append(compressed, raw[6:]...)

	p, err := DecodeAuto(compressed)
	if err != nil {
		t.Fatalf("DecodeAuto gt1z: %v", err)
	}
	if p.Segments[0].Data[0] != 0x42 {
		t.Fatalf("unexpected decompressed segment data %v", p.Segments[0].Data)
	}
}

func TestDecompressGT1z_LiteralThenMatch(t *testing.T) {
	// Literals "AB", then a 2-count match copying back those same 2
	// bytes (offset 2), reproducing "ABAB".
	tok1 := byte(2<<5) | (0 << 1) | 0 // nLit=2, mCnt=0
	tok2 := byte(0<<5) | (2 << 1) | 1 // nLit=0, mCnt=2, longOffset=1
	data := []byte{tok1, 'A', 'B', tok2, 0x00, 0x02}
	out, err := decompressGT1z(data)
	if err != nil {
		t.Fatalf("decompressGT1z: %v", err)
	}
	if string(out) != "ABAB" {
		t.Fatalf("decompressGT1z = %q, want %q", out, "ABAB")
	}
}
