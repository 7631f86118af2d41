//go:build unix

package format

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// MmapBackend serves reads from a read-only memory mapping of the bundle.
// Each backend owns an independent mapping; see the file backend for the
// plain-I/O alternative.
type MmapBackend struct {
	data []byte
}

// OpenMmapBackend maps path read-only. Empty files cannot be mapped and are
// never valid bundles, so they are rejected outright.
func OpenMmapBackend(path string) (*MmapBackend, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("cannot map empty file %s", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	return &MmapBackend{data: data}, nil
}

func (b *MmapBackend) ReadAt(p []byte, off int64) (int, error) {
	if b.data == nil {
		return 0, os.ErrClosed
	}
	if off < 0 || off > int64(len(b.data)) {
		return 0, fmt.Errorf("read at %d: %w", off, io.EOF)
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func (b *MmapBackend) Size() (int64, error) {
	if b.data == nil {
		return 0, os.ErrClosed
	}
	return int64(len(b.data)), nil
}

// Close unmaps the file. Safe to call more than once.
func (b *MmapBackend) Close() error {
	if b.data == nil {
		return nil
	}
	data := b.data
	b.data = nil
	return unix.Munmap(data)
}
