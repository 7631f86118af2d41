package operations

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPack(t *testing.T) {
	testCases := []struct {
		name     string
		ops      []uint8
		expected uint64
	}{
		{name: "empty/raw", ops: nil, expected: 0x0},
		{name: "single GZIP", ops: []uint8{OpGzip}, expected: 0x10},
		{name: "single TAR", ops: []uint8{OpTar}, expected: 0x01},
		{name: "TAR + GZIP", ops: []uint8{OpTar, OpGzip}, expected: 0x1001},
		{name: "TAR + BZIP2", ops: []uint8{OpTar, OpBzip2}, expected: 0x1301},
		{name: "TAR + ZSTD", ops: []uint8{OpTar, OpZstd}, expected: 0x1b01},
		{name: "max 8 operations", ops: []uint8{1, 2, 3, 4, 5, 6, 7, 8}, expected: 0x0807060504030201},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			packed, err := Pack(tc.ops)
			require.NoError(t, err)
			if packed != tc.expected {
				t.Errorf("Pack(%v) = 0x%016x, want 0x%016x", tc.ops, packed, tc.expected)
			}
		})
	}

	t.Run("too many operations", func(t *testing.T) {
		_, err := Pack([]uint8{1, 2, 3, 4, 5, 6, 7, 8, 9})
		assert.Error(t, err)
	})
}

func TestUnpack(t *testing.T) {
	testCases := []struct {
		name     string
		packed   uint64
		expected []uint8
	}{
		{name: "empty/raw", packed: 0x0, expected: nil},
		{name: "single GZIP", packed: 0x10, expected: []uint8{OpGzip}},
		{name: "single TAR", packed: 0x01, expected: []uint8{OpTar}},
		{name: "TAR + GZIP", packed: 0x1001, expected: []uint8{OpTar, OpGzip}},
		{name: "zero terminates chain", packed: 0x10_00_01, expected: []uint8{OpTar}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Unpack(tc.packed))
		})
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	chains := [][]uint8{
		{OpGzip},
		{OpTar},
		{OpTar, OpGzip},
		{OpTar, OpBzip2},
		{OpTar, OpXz},
		{OpTar, OpZstd},
	}

	for _, chain := range chains {
		packed, err := Pack(chain)
		require.NoError(t, err)
		assert.Equal(t, chain, Unpack(packed), "chain %v", chain)
	}
}

func TestString(t *testing.T) {
	testCases := []struct {
		packed   uint64
		expected string
	}{
		{0x0, "raw"},
		{0x01, "tar"},
		{0x10, "gzip"},
		{0x1001, "tar.gz"},
		{0x1301, "tar.bz2"},
		{0x1b01, "tar.zst"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, String(tc.packed))
		})
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		input    string
		expected uint64
		wantErr  bool
	}{
		{input: "", expected: 0},
		{input: "raw", expected: 0},
		{input: "gzip", expected: 0x10},
		{input: "tar.gz", expected: 0x1001},
		{input: "tgz", expected: 0x1001},
		{input: "tar|gzip", expected: 0x1001},
		{input: "TAR|GZIP", expected: 0x1001},
		{input: "lzma", wantErr: true},
		{input: "tar|unknown", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%q", tc.input), func(t *testing.T) {
			packed, err := Parse(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, packed)
		})
	}
}

func TestParseStringSymmetry(t *testing.T) {
	for _, s := range []string{"raw", "tar", "gzip", "tar.gz", "tar.bz2", "tar.xz", "tar.zst"} {
		packed, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, s, String(packed))
	}
}
