package operations

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	psperrors "github.com/provide-io/pspf/pkg/pspf/errors"
)

var codecPayload = bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog\n"), 64)

func TestApplyReverseRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		op   uint8
	}{
		{name: "none", op: OpNone},
		{name: "tar passthrough", op: OpTar},
		{name: "gzip", op: OpGzip},
		{name: "bzip2", op: OpBzip2},
		{name: "xz", op: OpXz},
		{name: "zstd", op: OpZstd},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := Apply(tc.op, codecPayload)
			require.NoError(t, err)

			decoded, err := Reverse(tc.op, encoded)
			require.NoError(t, err)
			assert.Equal(t, codecPayload, decoded)
		})
	}
}

func TestCompressionActuallyShrinks(t *testing.T) {
	for _, op := range []uint8{OpGzip, OpBzip2, OpXz, OpZstd} {
		encoded, err := Apply(op, codecPayload)
		require.NoError(t, err)
		assert.Less(t, len(encoded), len(codecPayload), "operation %s", Name(op))
	}
}

func TestApplyUnknownOperation(t *testing.T) {
	_, err := Apply(0xFF, codecPayload)
	assert.True(t, errors.Is(err, psperrors.ErrUnknownOperation))

	_, err = Reverse(0xFF, codecPayload)
	assert.True(t, errors.Is(err, psperrors.ErrUnknownOperation))
}

func TestReverseCorruptInput(t *testing.T) {
	for _, op := range []uint8{OpGzip, OpXz, OpZstd} {
		_, err := Reverse(op, []byte("definitely not compressed"))
		assert.Error(t, err, "operation %s", Name(op))
	}
}

func TestChainRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		ops  []uint8
	}{
		{name: "empty chain", ops: nil},
		{name: "tar.gz", ops: []uint8{OpTar, OpGzip}},
		{name: "tar.zst", ops: []uint8{OpTar, OpZstd}},
		{name: "double gzip", ops: []uint8{OpGzip, OpGzip}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := ApplyChain(codecPayload, tc.ops)
			require.NoError(t, err)

			decoded, err := ReverseChain(encoded, tc.ops)
			require.NoError(t, err)
			assert.Equal(t, codecPayload, decoded)
		})
	}
}

func TestReverseStream(t *testing.T) {
	testCases := []struct {
		name string
		ops  []uint8
	}{
		{name: "raw", ops: nil},
		{name: "gzip", ops: []uint8{OpGzip}},
		{name: "tar.gz", ops: []uint8{OpTar, OpGzip}},
		{name: "tar.bz2", ops: []uint8{OpTar, OpBzip2}},
		{name: "tar.xz", ops: []uint8{OpTar, OpXz}},
		{name: "tar.zst", ops: []uint8{OpTar, OpZstd}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := ApplyChain(codecPayload, tc.ops)
			require.NoError(t, err)

			rc, err := ReverseStream(bytes.NewReader(encoded), tc.ops)
			require.NoError(t, err)

			decoded, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			assert.Equal(t, codecPayload, decoded)
		})
	}
}

func TestReverseStreamUnknownOperation(t *testing.T) {
	encoded, err := Apply(OpGzip, codecPayload)
	require.NoError(t, err)

	_, err = ReverseStream(bytes.NewReader(encoded), []uint8{0x7F})
	assert.True(t, errors.Is(err, psperrors.ErrUnknownOperation))
}

func TestOperationNames(t *testing.T) {
	assert.Equal(t, "TAR", Name(OpTar))
	assert.Equal(t, "GZIP", Name(OpGzip))
	assert.True(t, Known(OpZstd))
	assert.False(t, Known(0x7F))
}
