package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/pspf/pkg/pspf/operations"
)

func TestSlotDescriptorPackUnpack(t *testing.T) {
	gzipOps, err := operations.Pack([]uint8{operations.OpGzip})
	require.NoError(t, err)
	tgzOps, err := operations.Pack([]uint8{operations.OpTar, operations.OpGzip})
	require.NoError(t, err)

	testCases := []struct {
		name string
		desc SlotDescriptor
	}{
		{
			name: "raw_data",
			desc: SlotDescriptor{
				ID:           1,
				NameHash:     HashName("test_raw.txt"),
				Offset:       0,
				Size:         100,
				OriginalSize: 100,
				Operations:   0,
				Checksum:     0x12345678,
			},
		},
		{
			name: "gzip_only",
			desc: SlotDescriptor{
				ID:           2,
				NameHash:     HashName("test_gzip.txt"),
				Offset:       1024,
				Size:         512,
				OriginalSize: 1000,
				Operations:   gzipOps,
				Checksum:     0xABCDEF01,
				Purpose:      1,
				Lifecycle:    2,
			},
		},
		{
			name: "tar_gzip",
			desc: SlotDescriptor{
				ID:           42,
				NameHash:     HashName("archive.tar.gz"),
				Offset:       8192,
				Size:         4096,
				OriginalSize: 16384,
				Operations:   tgzOps,
				Checksum:     0xDEADBEEF,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			packed := tc.desc.Pack()
			require.Len(t, packed, SlotDescriptorSize)

			decoded, err := UnpackSlotDescriptor(packed)
			require.NoError(t, err)
			assert.Equal(t, tc.desc, *decoded)
		})
	}
}

func TestSlotDescriptorBadSize(t *testing.T) {
	_, err := UnpackSlotDescriptor(make([]byte, SlotDescriptorSize-1))
	assert.Error(t, err)
}

func TestSlotDescriptorPermissions(t *testing.T) {
	var desc SlotDescriptor
	assert.Zero(t, desc.GetPermissions())

	desc.SetPermissions(0o755)
	assert.Equal(t, uint16(0o755), desc.GetPermissions())
	assert.Equal(t, uint8(0o755&0xFF), desc.Permissions)
	assert.Equal(t, uint8(0o755>>8), desc.PermissionsHigh)

	decoded, err := UnpackSlotDescriptor(desc.Pack())
	assert.NoError(t, err)
	assert.Equal(t, uint16(0o755), decoded.GetPermissions())
}

func TestSlotDescriptorAdler32(t *testing.T) {
	desc := SlotDescriptor{Checksum: 0xFFFFFFFF12345678}
	assert.Equal(t, uint32(0x12345678), desc.Adler32(),
		"only the low 32 bits hold the checksum value")
}

func TestHashName(t *testing.T) {
	a := HashName("payload")
	b := HashName("payload")
	c := HashName("other")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotZero(t, a)
}
