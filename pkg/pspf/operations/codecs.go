package operations

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	psperrors "github.com/provide-io/pspf/pkg/pspf/errors"
)

// Apply applies a single operation to data. OpTar is a structural marker and
// passes data through unchanged; archive handling belongs to the caller.
func Apply(op uint8, data []byte) ([]byte, error) {
	switch op {
	case OpNone, OpTar:
		return data, nil

	case OpGzip:
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(data); err != nil {
			gw.Close()
			return nil, fmt.Errorf("writing gzip data: %w", err)
		}
		if err := gw.Close(); err != nil {
			return nil, fmt.Errorf("closing gzip writer: %w", err)
		}
		return buf.Bytes(), nil

	case OpBzip2:
		var buf bytes.Buffer
		bw, err := bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: 9})
		if err != nil {
			return nil, fmt.Errorf("creating bzip2 writer: %w", err)
		}
		if _, err := bw.Write(data); err != nil {
			bw.Close()
			return nil, fmt.Errorf("writing bzip2 data: %w", err)
		}
		if err := bw.Close(); err != nil {
			return nil, fmt.Errorf("closing bzip2 writer: %w", err)
		}
		return buf.Bytes(), nil

	case OpXz:
		var buf bytes.Buffer
		xw, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("creating xz writer: %w", err)
		}
		if _, err := xw.Write(data); err != nil {
			xw.Close()
			return nil, fmt.Errorf("writing xz data: %w", err)
		}
		if err := xw.Close(); err != nil {
			return nil, fmt.Errorf("closing xz writer: %w", err)
		}
		return buf.Bytes(), nil

	case OpZstd:
		zw, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("creating zstd writer: %w", err)
		}
		out := zw.EncodeAll(data, nil)
		zw.Close()
		return out, nil

	default:
		return nil, fmt.Errorf("%w: 0x%02x", psperrors.ErrUnknownOperation, op)
	}
}

// Reverse reverses a single operation (decompresses). OpTar passes through:
// archive unpacking is a separate extraction step, never part of slot decoding.
func Reverse(op uint8, data []byte) ([]byte, error) {
	switch op {
	case OpNone, OpTar:
		return data, nil

	case OpGzip:
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		defer gr.Close()
		out, err := io.ReadAll(gr)
		if err != nil {
			return nil, fmt.Errorf("reading gzip data: %w", err)
		}
		return out, nil

	case OpBzip2:
		br, err := bzip2.NewReader(bytes.NewReader(data), &bzip2.ReaderConfig{})
		if err != nil {
			return nil, fmt.Errorf("creating bzip2 reader: %w", err)
		}
		defer br.Close()
		out, err := io.ReadAll(br)
		if err != nil {
			return nil, fmt.Errorf("reading bzip2 data: %w", err)
		}
		return out, nil

	case OpXz:
		xr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("creating xz reader: %w", err)
		}
		out, err := io.ReadAll(xr)
		if err != nil {
			return nil, fmt.Errorf("reading xz data: %w", err)
		}
		return out, nil

	case OpZstd:
		zr, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		defer zr.Close()
		out, err := zr.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("reading zstd data: %w", err)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: 0x%02x", psperrors.ErrUnknownOperation, op)
	}
}

// ApplyChain applies a chain of operations in execution order.
func ApplyChain(data []byte, ops []uint8) ([]byte, error) {
	current := data
	for _, op := range ops {
		result, err := Apply(op, current)
		if err != nil {
			return nil, fmt.Errorf("applying %s: %w", Name(op), err)
		}
		current = result
	}
	return current, nil
}

// ReverseChain unwraps a chain of operations in reverse order, yielding the
// pre-encoding bytes. For tar-bearing chains the result is still a tar blob.
func ReverseChain(data []byte, ops []uint8) ([]byte, error) {
	current := data
	for i := len(ops) - 1; i >= 0; i-- {
		result, err := Reverse(ops[i], current)
		if err != nil {
			return nil, fmt.Errorf("reversing %s: %w", Name(ops[i]), err)
		}
		current = result
	}
	return current, nil
}

// layeredReader stacks decompression layers over a base reader and closes
// them innermost-first.
type layeredReader struct {
	io.Reader
	closers []io.Closer
}

func (l *layeredReader) Close() error {
	var first error
	for i := len(l.closers) - 1; i >= 0; i-- {
		if err := l.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ReverseStream wraps r so reads yield the chain-reversed (decompressed)
// bytes without materializing the whole slot. OpTar layers pass through.
func ReverseStream(r io.Reader, ops []uint8) (io.ReadCloser, error) {
	lr := &layeredReader{Reader: r}

	for i := len(ops) - 1; i >= 0; i-- {
		switch ops[i] {
		case OpNone, OpTar:
			// structural, nothing to unwrap

		case OpGzip:
			gr, err := gzip.NewReader(lr.Reader)
			if err != nil {
				return nil, fmt.Errorf("creating gzip reader: %w", err)
			}
			lr.Reader = gr
			lr.closers = append(lr.closers, gr)

		case OpBzip2:
			br, err := bzip2.NewReader(lr.Reader, &bzip2.ReaderConfig{})
			if err != nil {
				return nil, fmt.Errorf("creating bzip2 reader: %w", err)
			}
			lr.Reader = br
			lr.closers = append(lr.closers, br)

		case OpXz:
			xr, err := xz.NewReader(lr.Reader)
			if err != nil {
				return nil, fmt.Errorf("creating xz reader: %w", err)
			}
			lr.Reader = xr

		case OpZstd:
			zr, err := zstd.NewReader(lr.Reader)
			if err != nil {
				return nil, fmt.Errorf("creating zstd reader: %w", err)
			}
			rc := zr.IOReadCloser()
			lr.Reader = rc
			lr.closers = append(lr.closers, rc)

		default:
			return nil, fmt.Errorf("%w: 0x%02x", psperrors.ErrUnknownOperation, ops[i])
		}
	}

	return lr, nil
}
