package format

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	psperrors "github.com/provide-io/pspf/pkg/pspf/errors"
	"github.com/provide-io/pspf/pkg/pspf/operations"
)

func TestIsTarArchive(t *testing.T) {
	withMarker := func(size int) []byte {
		buf := make([]byte, size)
		copy(buf[257:], "ustar")
		return buf
	}

	// The boundary is strictly greater than 512: a 512-byte buffer is
	// never tar even with the marker in place.
	assert.False(t, isTarArchive(withMarker(512)))
	assert.True(t, isTarArchive(withMarker(513)))

	assert.False(t, isTarArchive([]byte("short")))
	assert.False(t, isTarArchive(make([]byte, 1024)))
}

func TestExtractSlotFile(t *testing.T) {
	destDir := t.TempDir()
	slots := []testSlot{{name: "settings.json", data: []byte(`{"a":1}`), ops: nil}}
	reader := newTestReader(t, buildBundle(t, slots, fixtureOpts{}), ReaderOptions{})

	path, err := reader.ExtractSlot(0, destDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(destDir, "settings.json"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), content)
}

func TestExtractSlotSynthesizedName(t *testing.T) {
	destDir := t.TempDir()
	slots := []testSlot{{name: "unnamed", data: []byte("data"), ops: nil}}
	reader := newTestReader(t, buildBundle(t, slots, fixtureOpts{omitMetadataSlot: true}), ReaderOptions{})

	path, err := reader.ExtractSlot(0, destDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(destDir, "slot_0"), path)
}

func TestExtractSlotTar(t *testing.T) {
	destDir := t.TempDir()
	tarBlob := buildTarBlob(t, map[string]string{
		"readme.txt":    "hello",
		"sub/inner.txt": "nested content",
	})
	slots := []testSlot{{name: "tree", data: tarBlob, ops: []uint8{operations.OpTar, operations.OpGzip}}}
	reader := newTestReader(t, buildBundle(t, slots, fixtureOpts{}), ReaderOptions{})

	path, err := reader.ExtractSlot(0, destDir)
	require.NoError(t, err)
	assert.Equal(t, destDir, path, "tar slots extract into the destination directory")

	content, err := os.ReadFile(filepath.Join(destDir, "readme.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	content, err = os.ReadFile(filepath.Join(destDir, "sub", "inner.txt"))
	require.NoError(t, err)
	assert.Equal(t, "nested content", string(content))
}

func TestExtractSlotRejectsTraversal(t *testing.T) {
	destDir := t.TempDir()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "../outside.txt",
		Mode: 0o644,
		Size: 4,
	}))
	_, err := tw.Write([]byte("evil"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	slots := []testSlot{{name: "evil", data: buf.Bytes(), ops: []uint8{operations.OpTar}}}
	reader := newTestReader(t, buildBundle(t, slots, fixtureOpts{}), ReaderOptions{})

	_, err = reader.ExtractSlot(0, destDir)
	require.Error(t, err)
	assert.ErrorIs(t, err, psperrors.ErrSlotExtractionFailed)

	_, statErr := os.Stat(filepath.Join(filepath.Dir(destDir), "outside.txt"))
	assert.True(t, os.IsNotExist(statErr), "traversal target must not exist")
}

func TestExtractSlotPermissions(t *testing.T) {
	destDir := t.TempDir()
	slots := []testSlot{{name: "tool.sh", data: []byte("#!/bin/sh\n"), ops: nil}}
	bundle := buildBundle(t, slots, fixtureOpts{})

	reader := newTestReader(t, bundle, ReaderOptions{})
	descriptors, err := reader.ReadSlotDescriptors()
	require.NoError(t, err)

	// Descriptor permissions take precedence; patch them into the slot
	// table in place and rebuild the reader so nothing is cached.
	descriptors[0].SetPermissions(0o755)
	index, err := reader.ReadIndex()
	require.NoError(t, err)
	copy(bundle[index.SlotTableOffset:], descriptors[0].Pack())

	fresh := newTestReader(t, bundle, ReaderOptions{})
	path, err := fresh.ExtractSlot(0, destDir)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}
