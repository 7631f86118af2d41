package format

import (
	"archive/tar"
	"bytes"
	"fmt"
	"hash"
	"hash/adler32"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	psperrors "github.com/provide-io/pspf/pkg/pspf/errors"
	"github.com/provide-io/pspf/pkg/pspf/operations"
	"github.com/provide-io/pspf/pkg/utils/permissions"
)

// checkSlotIndex validates i against the descriptor table.
func (r *Reader) checkSlotIndex(i int) (*SlotDescriptor, error) {
	descriptors, err := r.ReadSlotDescriptors()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(descriptors) {
		return nil, &psperrors.RangeError{Index: i, Count: len(descriptors)}
	}
	return descriptors[i], nil
}

// readSlotRaw reads and checksum-verifies a slot's stored bytes.
func (r *Reader) readSlotRaw(i int, desc *SlotDescriptor) ([]byte, error) {
	raw, err := ReadRange(r.backend, int64(desc.Offset), int(desc.Size))
	if err != nil {
		return nil, err
	}

	actual := Adler32(raw)
	if actual != desc.Adler32() {
		r.logger.Debug("slot checksum mismatch",
			"slot", i,
			"expected", fmt.Sprintf("0x%08x", desc.Adler32()),
			"actual", fmt.Sprintf("0x%08x", actual))
		return nil, psperrors.NewSlotIntegrityError(i, desc.Adler32(), actual)
	}

	return raw, nil
}

// slotOperations unpacks and validates a descriptor's operation chain.
func slotOperations(desc *SlotDescriptor) ([]uint8, error) {
	ops := operations.Unpack(desc.Operations)
	for _, op := range ops {
		if !operations.Known(op) {
			return nil, fmt.Errorf("%w: 0x%02x", psperrors.ErrUnknownOperation, op)
		}
	}
	return ops, nil
}

// ReadSlot reads, verifies, and decompresses slot i, returning its
// pre-compression bytes. For tar-bearing encodings the result is still a tar
// blob: archive unpacking is ExtractSlot's job, never ReadSlot's.
func (r *Reader) ReadSlot(i int) ([]byte, error) {
	desc, err := r.checkSlotIndex(i)
	if err != nil {
		return nil, err
	}

	raw, err := r.readSlotRaw(i, desc)
	if err != nil {
		return nil, err
	}

	ops, err := slotOperations(desc)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("📂 reading slot",
		"slot", i,
		"stored_size", desc.Size,
		"operations", operations.String(desc.Operations))

	return operations.ReverseChain(raw, ops)
}

// SlotView is a lazy handle over one slot. Construction touches no slot
// bytes; data is read only when Bytes, Open, or Stream is used.
type SlotView struct {
	reader *Reader
	index  int
	desc   *SlotDescriptor
}

// GetSlotView validates i and returns a lazy view over the slot.
func (r *Reader) GetSlotView(i int) (*SlotView, error) {
	desc, err := r.checkSlotIndex(i)
	if err != nil {
		return nil, err
	}
	return &SlotView{reader: r, index: i, desc: desc}, nil
}

// Index returns the slot's position in the slot table.
func (v *SlotView) Index() int {
	return v.index
}

// Descriptor returns the slot's table entry.
func (v *SlotView) Descriptor() *SlotDescriptor {
	return v.desc
}

// Bytes materializes the slot: verified, decompressed.
func (v *SlotView) Bytes() ([]byte, error) {
	return v.reader.ReadSlot(v.index)
}

// checksumReader verifies the Adler-32 of the raw bytes flowing through it,
// failing the read that observes EOF on a mismatch.
type checksumReader struct {
	src      io.Reader
	hash     hash.Hash32
	slot     int
	expected uint32
}

func newChecksumReader(src io.Reader, slot int, expected uint32) *checksumReader {
	return &checksumReader{src: src, hash: adler32.New(), slot: slot, expected: expected}
}

func (c *checksumReader) Read(p []byte) (int, error) {
	n, err := c.src.Read(p)
	if n > 0 {
		c.hash.Write(p[:n])
	}
	if err == io.EOF {
		if actual := c.hash.Sum32(); actual != c.expected {
			return n, psperrors.NewSlotIntegrityError(c.slot, c.expected, actual)
		}
	}
	return n, err
}

// Open returns a streaming reader over the slot's decompressed bytes. The
// stored bytes are checksummed as they are consumed; a corrupt slot fails
// the read that reaches the end of the stored data. The stream is finite
// and not restartable.
func (v *SlotView) Open() (io.ReadCloser, error) {
	ops, err := slotOperations(v.desc)
	if err != nil {
		return nil, err
	}

	section := io.NewSectionReader(v.reader.backend, int64(v.desc.Offset), int64(v.desc.Size))
	checked := newChecksumReader(section, v.index, v.desc.Adler32())

	return operations.ReverseStream(checked, ops)
}

// SlotStream yields a slot's decompressed bytes in chunks.
type SlotStream struct {
	rc        io.ReadCloser
	chunkSize int
	done      bool
}

// Next returns the next chunk, or io.EOF when the slot is exhausted. The
// returned buffer is owned by the caller.
func (s *SlotStream) Next() ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}

	buf := make([]byte, s.chunkSize)
	n, err := io.ReadFull(s.rc, buf)
	if n > 0 && (err == io.ErrUnexpectedEOF || err == nil) {
		if err == io.ErrUnexpectedEOF {
			s.done = true
		}
		return buf[:n], nil
	}

	s.done = true
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return nil, err
}

// Close releases the underlying stream.
func (s *SlotStream) Close() error {
	s.done = true
	return s.rc.Close()
}

// Stream opens the slot for chunked reading. chunkSize <= 0 selects the
// reader's configured default.
func (v *SlotView) Stream(chunkSize int) (*SlotStream, error) {
	if chunkSize <= 0 {
		chunkSize = v.reader.chunkSize()
	}

	rc, err := v.Open()
	if err != nil {
		return nil, err
	}

	return &SlotStream{rc: rc, chunkSize: chunkSize}, nil
}

// StreamSlot opens slot i for chunked reading. Intended for slots too large
// to hold in memory.
func (r *Reader) StreamSlot(i int, chunkSize int) (*SlotStream, error) {
	view, err := r.GetSlotView(i)
	if err != nil {
		return nil, err
	}
	return view.Stream(chunkSize)
}

// slotName resolves the logical name of slot i from metadata, synthesizing
// "slot_<i>" when metadata is absent, short, or unnamed.
func (r *Reader) slotName(i int) string {
	metadata, err := r.ReadMetadata()
	if err != nil {
		r.logger.Warn("⚠️ metadata unavailable, synthesizing slot name", "slot", i, "error", err)
		return fmt.Sprintf("slot_%d", i)
	}
	if i >= len(metadata.Slots) || metadata.Slots[i].Name == "" {
		return fmt.Sprintf("slot_%d", i)
	}
	return metadata.Slots[i].Name
}

// slotFileMode resolves the output permissions for a non-archive slot:
// descriptor field first, metadata permission string second, secure default
// last.
func (r *Reader) slotFileMode(i int, desc *SlotDescriptor) os.FileMode {
	if perms := desc.GetPermissions(); perms != 0 {
		return os.FileMode(perms)
	}

	if metadata, err := r.ReadMetadata(); err == nil && i < len(metadata.Slots) {
		if s := metadata.Slots[i].Permissions; s != "" {
			if perms, err := permissions.ParseOctalString(s); err == nil {
				return os.FileMode(perms)
			}
		}
	}

	return os.FileMode(FilePerms)
}

// isTarArchive sniffs the ustar marker at byte offset 257. Buffers of 512
// bytes or fewer are never tar.
func isTarArchive(data []byte) bool {
	return len(data) > 512 && string(data[257:262]) == "ustar"
}

// ExtractSlot materializes slot i under destDir, holding the destination's
// extraction lock for the duration. Tar slots are unpacked into destDir with
// a data-only filter; anything else is written to destDir/<name>. Returns
// the resulting path (destDir for the tar case).
func (r *Reader) ExtractSlot(i int, destDir string) (string, error) {
	desc, err := r.checkSlotIndex(i)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(destDir, os.FileMode(DirPerms)); err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", psperrors.ErrSlotExtractionFailed, destDir, err)
	}

	lock := NewExtractionLock(destDir, r.logger)
	if err := lock.Acquire(DefaultLockTimeout * time.Second); err != nil {
		return "", err
	}
	defer lock.Release()

	data, err := r.ReadSlot(i)
	if err != nil {
		return "", err
	}

	if isTarArchive(data) {
		r.logger.Debug("📂 extracting tar slot", "slot", i, "dest", destDir, "size", len(data))
		if err := extractTarArchive(data, destDir, r.logger); err != nil {
			return "", fmt.Errorf("%w: slot %d: %v", psperrors.ErrSlotExtractionFailed, i, err)
		}
		return destDir, nil
	}

	name := r.slotName(i)
	destPath := filepath.Join(destDir, name)
	mode := r.slotFileMode(i, desc)

	if err := os.MkdirAll(filepath.Dir(destPath), os.FileMode(DirPerms)); err != nil {
		return "", fmt.Errorf("%w: slot %d: %v", psperrors.ErrSlotExtractionFailed, i, err)
	}
	if err := os.WriteFile(destPath, data, mode); err != nil {
		return "", fmt.Errorf("%w: writing slot %d: %v", psperrors.ErrSlotExtractionFailed, i, err)
	}

	r.logger.Debug("✅ wrote slot file", "slot", i, "path", destPath, "size", len(data))
	return destPath, nil
}

// extractTarArchive unpacks a tar blob into destDir with a data-only filter:
// entries with absolute or traversing paths fail extraction, device and
// fifo entries are skipped, and symlinks may not escape destDir.
func extractTarArchive(data []byte, destDir string, logger hclog.Logger) error {
	tr := tar.NewReader(bytes.NewReader(data))

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar: %w", err)
		}

		if !filepath.IsLocal(hdr.Name) {
			return fmt.Errorf("unsafe path %q", hdr.Name)
		}
		target := filepath.Join(destDir, hdr.Name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)); err != nil {
				return err
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), os.FileMode(DirPerms)); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}

		case tar.TypeSymlink:
			// A link target must stay inside destDir.
			if filepath.IsAbs(hdr.Linkname) ||
				!filepath.IsLocal(filepath.Join(filepath.Dir(hdr.Name), hdr.Linkname)) {
				return fmt.Errorf("unsafe symlink %q -> %q", hdr.Name, hdr.Linkname)
			}
			if err := os.MkdirAll(filepath.Dir(target), os.FileMode(DirPerms)); err != nil {
				return err
			}
			if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
				return err
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}

		default:
			// Devices, fifos, hard links: not data, not extracted.
			logger.Debug("skipping non-data tar entry", "name", hdr.Name, "type", hdr.Typeflag)
		}
	}

	return nil
}
