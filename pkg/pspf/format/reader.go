package format

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	psperrors "github.com/provide-io/pspf/pkg/pspf/errors"
)

// ReaderOptions configures a Reader. The zero value is the strict production
// configuration.
type ReaderOptions struct {
	// Logger for diagnostics. Nil means silent.
	Logger hclog.Logger

	// Permissive downgrades an index-checksum mismatch from a hard failure
	// to a logged warning. Intended for cross-platform test environments
	// where launcher binaries legitimately differ. Never set in production.
	Permissive bool

	// Backend overrides the default file backend. The Reader takes
	// ownership and closes it.
	Backend Backend

	// UseMmap selects a memory-mapped backend when no explicit Backend is
	// given.
	UseMmap bool

	// ChunkSize is the default StreamSlot chunk size. Zero means
	// DefaultChunkSize.
	ChunkSize int
}

// Reader parses a PSPF/2025 bundle. It is single-threaded: parsed structures
// are computed once and cached for the Reader's lifetime, and the backend is
// the only held resource. Use one Reader per goroutine.
type Reader struct {
	bundlePath string
	opts       ReaderOptions
	logger     hclog.Logger
	backend    Backend

	launcherSize  int64
	launcherFound bool
	index         *Index
	metadata      *Metadata
	descriptors   []*SlotDescriptor
}

// NewReader creates a reader for the bundle at bundlePath with strict
// integrity checking and no logging.
func NewReader(bundlePath string) (*Reader, error) {
	return NewReaderWithOptions(bundlePath, ReaderOptions{})
}

// NewReaderWithOptions creates a reader with explicit configuration.
func NewReaderWithOptions(bundlePath string, opts ReaderOptions) (*Reader, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Reader{
		bundlePath:   bundlePath,
		opts:         opts,
		logger:       logger,
		backend:      opts.Backend,
		launcherSize: -1,
	}, nil
}

// Open acquires the backend. Called implicitly by all accessors; calling it
// again is a no-op.
func (r *Reader) Open() error {
	if r.backend != nil {
		return nil
	}

	var (
		backend Backend
		err     error
	)
	if r.opts.UseMmap {
		backend, err = OpenMmapBackend(r.bundlePath)
	} else {
		backend, err = OpenFileBackend(r.bundlePath)
	}
	if err != nil {
		return err
	}

	r.backend = backend
	return nil
}

// Close releases the backend. Safe to call more than once and after a
// partial open; cached parsed structures remain valid.
func (r *Reader) Close() error {
	if r.backend == nil {
		return nil
	}
	backend := r.backend
	r.backend = nil
	return backend.Close()
}

// VerifyMagic checks the trailing emoji marker at the absolute end of the
// bundle. A short file or non-matching bytes mean "not a bundle", never an
// error; only backend failures on a plausible read propagate.
func (r *Reader) VerifyMagic() (bool, error) {
	if err := r.Open(); err != nil {
		return false, err
	}

	size, err := r.backend.Size()
	if err != nil {
		return false, err
	}
	if size < EmojiMagicSize {
		return false, nil
	}

	tail, err := ReadRange(r.backend, size-EmojiMagicSize, EmojiMagicSize)
	if err != nil {
		return false, err
	}

	return bytes.Equal(tail, EmojiMagic), nil
}

// DetectLauncherSize locates the byte offset where the PSPF header begins.
// Bundles may be prefixed by an arbitrary-length launcher stub, so the file
// is scanned forward in ScanChunkSize pieces up to ScanLimit. A candidate
// magic match is confirmed by the version field immediately following it,
// guarding against incidental byte collisions inside launcher binaries.
//
// Not finding the header is a soft failure: the scan falls back to offset 0
// with a warning, since launcher-less bundles start at 0. Memoized.
func (r *Reader) DetectLauncherSize() (int64, error) {
	if r.launcherFound {
		return r.launcherSize, nil
	}

	if err := r.Open(); err != nil {
		return 0, err
	}

	size, err := r.backend.Size()
	if err != nil {
		return 0, err
	}

	limit := int64(ScanLimit)
	if size < limit {
		limit = size
	}

	// Overlap so a magic+version window straddling a chunk boundary is
	// still seen: 8 magic bytes + 4 version bytes - 1.
	const window = HeaderMagicSize + 4
	var tail []byte

	for chunkStart := int64(0); chunkStart < limit; chunkStart += ScanChunkSize {
		chunkLen := int64(ScanChunkSize)
		if chunkStart+chunkLen > size {
			chunkLen = size - chunkStart
		}

		chunk, err := ReadRange(r.backend, chunkStart, int(chunkLen))
		if err != nil {
			return 0, err
		}

		buf := append(tail, chunk...)
		base := chunkStart - int64(len(tail))

		for searchFrom := 0; ; {
			idx := bytes.Index(buf[searchFrom:], HeaderMagic)
			if idx < 0 {
				break
			}
			pos := searchFrom + idx
			if pos+window <= len(buf) {
				version := uint32(buf[pos+8]) | uint32(buf[pos+9])<<8 |
					uint32(buf[pos+10])<<16 | uint32(buf[pos+11])<<24
				if version == Version {
					offset := base + int64(pos)
					r.logger.Debug("found PSPF header", "offset", offset)
					r.launcherSize = offset
					r.launcherFound = true
					return offset, nil
				}
				r.logger.Trace("magic collision without version match", "offset", base+int64(pos))
			}
			searchFrom = pos + 1
		}

		if len(buf) >= window-1 {
			tail = buf[len(buf)-(window-1):]
		} else {
			tail = buf
		}
	}

	r.logger.Warn("⚠️ no PSPF header found in scan range, assuming no launcher",
		"scanned", limit)
	r.launcherSize = 0
	r.launcherFound = true
	return 0, nil
}

// ReadIndex reads and verifies the header record at the launcher offset.
// The self-checksum is Adler-32 over the record with its own field zeroed;
// a stored checksum of zero marks a legacy bundle and skips verification.
// A mismatch is fatal unless the reader is Permissive. Memoized.
func (r *Reader) ReadIndex() (*Index, error) {
	if r.index != nil {
		return r.index, nil
	}

	launcherSize, err := r.DetectLauncherSize()
	if err != nil {
		return nil, err
	}

	raw, err := ReadRange(r.backend, launcherSize, HeaderSize)
	if err != nil {
		return nil, err
	}

	index := &Index{}
	if err := index.Unpack(raw); err != nil {
		return nil, err
	}

	if index.FormatVersion != Version {
		return nil, fmt.Errorf("%w: got 0x%08x, expected 0x%08x",
			psperrors.ErrInvalidVersion, index.FormatVersion, Version)
	}

	if index.IndexChecksum != 0 {
		actual := HeaderChecksum(raw)
		if actual != index.IndexChecksum {
			if !r.opts.Permissive {
				return nil, psperrors.NewIntegrityError("index", index.IndexChecksum, actual)
			}
			r.logger.Warn("⚠️ index checksum mismatch ignored (permissive mode)",
				"expected", fmt.Sprintf("0x%08x", index.IndexChecksum),
				"actual", fmt.Sprintf("0x%08x", actual))
		}
	} else {
		r.logger.Debug("index checksum unset, skipping verification")
	}

	r.index = index
	return index, nil
}

// ReadMetadataArchive reads the compressed metadata blob and verifies its
// Adler-32 against the header's metadata checksum field. A zero stored
// checksum skips verification.
func (r *Reader) ReadMetadataArchive() ([]byte, error) {
	index, err := r.ReadIndex()
	if err != nil {
		return nil, err
	}

	compressed, err := ReadRange(r.backend, int64(index.MetadataOffset), int(index.MetadataSize))
	if err != nil {
		return nil, err
	}

	if stored := index.MetadataAdler32(); stored != 0 {
		actual := Adler32(compressed)
		if actual != stored {
			return nil, psperrors.NewIntegrityError("metadata", stored, actual)
		}
	} else {
		r.logger.Debug("metadata checksum unset, skipping verification")
	}

	return compressed, nil
}

// decompressMetadata gunzips the metadata blob. Blobs that are not gzip are
// returned as-is: some writers store metadata uncompressed.
func decompressMetadata(compressed []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		if errors.Is(err, gzip.ErrHeader) {
			return compressed, nil
		}
		return nil, err
	}
	defer gr.Close()

	return io.ReadAll(gr)
}

// ReadMetadata reads, verifies, decompresses, and parses the metadata JSON.
// JSON decode failure is fatal. Memoized.
func (r *Reader) ReadMetadata() (*Metadata, error) {
	if r.metadata != nil {
		return r.metadata, nil
	}

	compressed, err := r.ReadMetadataArchive()
	if err != nil {
		return nil, err
	}

	jsonData, err := decompressMetadata(compressed)
	if err != nil {
		return nil, fmt.Errorf("decompressing metadata: %w", err)
	}

	var metadata Metadata
	if err := json.Unmarshal(jsonData, &metadata); err != nil {
		return nil, fmt.Errorf("%w: %v", psperrors.ErrMetadataDecode, err)
	}

	r.logger.Debug("parsed metadata", "slots", len(metadata.Slots))

	r.metadata = &metadata
	return &metadata, nil
}

// ReadSlotDescriptors decodes the slot table into an ordered list. Slot
// index i is the slot's identity for all other slot operations. Memoized.
func (r *Reader) ReadSlotDescriptors() ([]*SlotDescriptor, error) {
	if r.descriptors != nil {
		return r.descriptors, nil
	}

	index, err := r.ReadIndex()
	if err != nil {
		return nil, err
	}

	descriptors := make([]*SlotDescriptor, 0, index.SlotCount)
	for i := 0; i < int(index.SlotCount); i++ {
		offset := int64(index.SlotTableOffset) + int64(i*SlotDescriptorSize)
		raw, err := ReadRange(r.backend, offset, SlotDescriptorSize)
		if err != nil {
			return nil, fmt.Errorf("reading slot descriptor %d: %w", i, err)
		}

		desc, err := UnpackSlotDescriptor(raw)
		if err != nil {
			return nil, fmt.Errorf("slot descriptor %d: %w", i, err)
		}
		descriptors = append(descriptors, desc)
	}

	r.descriptors = descriptors
	return descriptors, nil
}

// chunkSize returns the configured streaming chunk size.
func (r *Reader) chunkSize() int {
	if r.opts.ChunkSize > 0 {
		return r.opts.ChunkSize
	}
	return DefaultChunkSize
}
