package gt1

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Directory enumerates GT1 programs available on a filesystem,
// backing the SYS_ReadRomDir call (spec §4.6). Using afero instead of
// the os package directly lets tests exercise enumeration against an
// in-memory filesystem rather than real files on disk.
type Directory struct {
	fs   afero.Fs
	root string
}

// NewDirectory returns a Directory rooted at root on the real
// filesystem.
func NewDirectory(root string) *Directory {
	return &Directory{fs: afero.NewOsFs(), root: root}
}

// NewDirectoryFS returns a Directory backed by an arbitrary afero.Fs,
// for tests (afero.NewMemMapFs()) or for embedding a packaged catalog.
func NewDirectoryFS(fs afero.Fs, root string) *Directory {
	return &Directory{fs: fs, root: root}
}

// Entry is one catalogued program file, ordered the way SYS_ReadRomDir
// walks the directory: alphabetically by name.
type Entry struct {
	Name string
	Path string
	Size int64
}

// List returns every .gt1/.gt1z file under the directory root, sorted
// by name, matching the stable enumeration order SYS_ReadRomDir's
// index argument depends on.
func (d *Directory) List() ([]Entry, error) {
	var entries []Entry
	infos, err := afero.ReadDir(d.fs, d.root)
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.IsDir() || !isGT1File(info.Name()) {
			continue
		}
		entries = append(entries, Entry{
			Name: strings.TrimSuffix(info.Name(), filepath.Ext(info.Name())),
			Path: filepath.Join(d.root, info.Name()),
			Size: info.Size(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// At returns the index'th entry (0-based) of List, the access pattern
// SYS_ReadRomDir uses: the guest passes an index in sysArgs and the
// handler returns the Nth name or signals end-of-directory.
func (d *Directory) At(index int) (Entry, bool) {
	entries, err := d.List()
	if err != nil || index < 0 || index >= len(entries) {
		return Entry{}, false
	}
	return entries[index], true
}

// ReadGT1 loads and decodes the program at path with DecodeAuto, which
// accepts plain GT1 and GT1z data. Unlike LoadFile, it does not open
// archives.
func (d *Directory) ReadGT1(path string) (*Program, uint32, error) {
	data, err := afero.ReadFile(d.fs, path)
	if err != nil {
		return nil, 0, err
	}
	prog, err := DecodeAuto(data)
	if err != nil {
		return nil, 0, err
	}
	return prog, crc32Checksum(data), nil
}
