package gt1

import (
	"testing"

	"github.com/spf13/afero"
)

func TestDirectory_ListSortsAlphabeticallyAndFiltersNonGT1(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/roms/zebra.gt1", []byte("z"), 0o644)
	afero.WriteFile(fs, "/roms/apple.gt1z", []byte("a"), 0o644)
	afero.WriteFile(fs, "/roms/readme.txt", []byte("ignore me"), 0o644)

	dir := NewDirectoryFS(fs, "/roms")
	entries, err := dir.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 GT1 entries, got %d: %v", len(entries), entries)
	}
	if entries[0].Name != "apple" || entries[1].Name != "zebra" {
		t.Fatalf("expected alphabetical order, got %q then %q", entries[0].Name, entries[1].Name)
	}
}

func TestDirectory_AtIndexesLikeSysReadRomDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/roms/a.gt1", []byte("1"), 0o644)
	afero.WriteFile(fs, "/roms/b.gt1", []byte("2"), 0o644)
	dir := NewDirectoryFS(fs, "/roms")

	if _, ok := dir.At(0); !ok {
		t.Fatal("expected entry 0 to exist")
	}
	if _, ok := dir.At(2); ok {
		t.Fatal("expected index past the end to report not-found")
	}
}

func TestDirectory_ReadGT1DecodesThroughAfero(t *testing.T) {
	fs := afero.NewMemMapFs()
	raw := []byte{0x02, 0x00, 0x01, 0x7a, 0x00, 0x02, 0x00}
	afero.WriteFile(fs, "/roms/a.gt1", raw, 0o644)
	dir := NewDirectoryFS(fs, "/roms")

	prog, crc, err := dir.ReadGT1("/roms/a.gt1")
	if err != nil {
		t.Fatalf("ReadGT1: %v", err)
	}
	if prog.Segments[0].Data[0] != 0x7a {
		t.Fatalf("unexpected segment data %v", prog.Segments[0].Data)
	}
	if crc != crc32Checksum(raw) {
		t.Fatalf("crc = %d, want %d", crc, crc32Checksum(raw))
	}
}
