package logging

import (
	"bytes"
	"io"
)

// PrefixWriter prepends a fixed prefix to every line written through it.
// Partial lines are buffered until their newline arrives.
type PrefixWriter struct {
	prefix []byte
	out    io.Writer
	pend   bytes.Buffer
}

// NewPrefixWriter wraps w so each complete line is emitted as prefix+line.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{prefix: []byte(prefix), out: w}
}

// Write implements io.Writer.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.pend.Write(p)

	for {
		buf := pw.pend.Bytes()
		nl := bytes.IndexByte(buf, '\n')
		if nl < 0 {
			break
		}
		if _, err := pw.out.Write(pw.prefix); err != nil {
			return 0, err
		}
		if _, err := pw.out.Write(buf[:nl+1]); err != nil {
			return 0, err
		}
		pw.pend.Next(nl + 1)
	}

	return len(p), nil
}
