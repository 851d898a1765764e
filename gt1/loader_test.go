package gt1

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile_RawGT1ByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.gt1")
	data := []byte{0x02, 0x00, 0x01, 0x99, 0x00, 0x02, 0x00}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	prog, name, crc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if name != "game.gt1" {
		t.Fatalf("name = %q, want %q", name, "game.gt1")
	}
	if crc != crc32Checksum(data) {
		t.Fatalf("crc = %d, want %d", crc, crc32Checksum(data))
	}
	if prog.Segments[0].Data[0] != 0x99 {
		t.Fatalf("unexpected segment data %v", prog.Segments[0].Data)
	}
}

func TestDetectFormat_MagicBytesWinOverExtension(t *testing.T) {
	// A .gt1-named file that actually starts with the ZIP magic should
	// still be routed to the ZIP extractor.
	got := detectFormat(magicZIP, "misnamed.gt1")
	if got != formatZIP {
		t.Fatalf("detectFormat should prefer magic bytes over extension, got %v", got)
	}
}

func TestDetectFormat_ExtensionFallback(t *testing.T) {
	if got := detectFormat(nil, "program.gt1z"); got != formatRawGT1 {
		t.Fatalf("detectFormat(.gt1z) = %v, want formatRawGT1", got)
	}
	if got := detectFormat(nil, "archive.rar"); got != formatRAR {
		t.Fatalf("detectFormat(.rar) = %v, want formatRAR", got)
	}
}

func TestIsGT1File(t *testing.T) {
	cases := map[string]bool{
		"foo.gt1":  true,
		"FOO.GT1Z": true,
		"foo.txt":  false,
		"foo":      false,
	}
	for name, want := range cases {
		if got := isGT1File(name); got != want {
			t.Errorf("isGT1File(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestLimitedRead_RejectsOversizedPayload(t *testing.T) {
	big := make([]byte, maxGT1Size+2)
	if _, err := limitedRead(bytes.NewReader(big)); err != ErrSegmentTooLarge {
		t.Fatalf("expected ErrSegmentTooLarge, got %v", err)
	}
}
