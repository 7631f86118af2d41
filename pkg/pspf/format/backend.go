package format

import (
	"fmt"
	"io"
	"os"
)

// Backend is the byte-source abstraction the reader parses over. A backend
// is not required to be safe for concurrent use; each Reader owns its own.
type Backend interface {
	io.ReaderAt
	io.Closer

	// Size returns the total byte length of the source.
	Size() (int64, error)
}

// ReadRange reads exactly length bytes at offset from b. I/O failures,
// including reads past EOF, propagate from the backend unmasked.
func ReadRange(b Backend, offset int64, length int) ([]byte, error) {
	buf := make([]byte, length)
	if _, err := b.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("backend read at %d (%d bytes): %w", offset, length, err)
	}
	return buf, nil
}

// FileBackend reads from a file on disk.
type FileBackend struct {
	file *os.File
}

// OpenFileBackend opens path for reading.
func OpenFileBackend(path string) (*FileBackend, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &FileBackend{file: f}, nil
}

func (b *FileBackend) ReadAt(p []byte, off int64) (int, error) {
	return b.file.ReadAt(p, off)
}

func (b *FileBackend) Size() (int64, error) {
	info, err := b.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Close closes the underlying file. Safe to call more than once.
func (b *FileBackend) Close() error {
	if b.file == nil {
		return nil
	}
	err := b.file.Close()
	b.file = nil
	return err
}

// BytesBackend serves reads from an in-memory buffer.
type BytesBackend struct {
	data []byte
}

// NewBytesBackend wraps data without copying.
func NewBytesBackend(data []byte) *BytesBackend {
	return &BytesBackend{data: data}
}

func (b *BytesBackend) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(b.data)) {
		return 0, fmt.Errorf("read at %d: %w", off, io.EOF)
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func (b *BytesBackend) Size() (int64, error) {
	return int64(len(b.data)), nil
}

func (b *BytesBackend) Close() error {
	return nil
}
