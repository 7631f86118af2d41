package format

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSigningKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return key
}

func TestVerifySignature(t *testing.T) {
	t.Run("valid signature", func(t *testing.T) {
		key := testSigningKey(t)
		reader := newTestReader(t, buildBundle(t, simpleSlots(), fixtureOpts{signKey: key}), ReaderOptions{})
		assert.True(t, reader.VerifySignature())
	})

	t.Run("unsigned bundle", func(t *testing.T) {
		reader := newTestReader(t, buildBundle(t, simpleSlots(), fixtureOpts{}), ReaderOptions{})
		assert.False(t, reader.VerifySignature())
	})

	t.Run("wrong key", func(t *testing.T) {
		key := testSigningKey(t)
		bundle := buildBundle(t, simpleSlots(), fixtureOpts{signKey: key})
		reader := newTestReader(t, bundle, ReaderOptions{})

		// Swap in a different public key; the signature no longer verifies.
		index, err := reader.ReadIndex()
		require.NoError(t, err)
		other := testSigningKey(t)
		copy(index.PublicKey[:], other.Public().(ed25519.PublicKey))

		assert.False(t, reader.VerifySignature())
	})
}

func TestVerifyIntegrity(t *testing.T) {
	t.Run("valid signed bundle", func(t *testing.T) {
		key := testSigningKey(t)
		reader := newTestReader(t, buildBundle(t, simpleSlots(), fixtureOpts{signKey: key}), ReaderOptions{})

		report := reader.VerifyIntegrity()
		assert.True(t, report.Valid)
		assert.True(t, report.MagicValid)
		assert.True(t, report.ChecksumsValid)
		assert.True(t, report.SignatureValid)
		assert.False(t, report.TamperDetected)
		assert.Empty(t, report.Error)
	})

	t.Run("wrong trailing magic", func(t *testing.T) {
		key := testSigningKey(t)
		reader := newTestReader(t, buildBundle(t, simpleSlots(), fixtureOpts{signKey: key, corruptTrailer: true}), ReaderOptions{})

		report := reader.VerifyIntegrity()
		assert.False(t, report.Valid)
		assert.False(t, report.MagicValid)
		assert.True(t, report.ChecksumsValid)
		assert.True(t, report.SignatureValid)
		assert.True(t, report.TamperDetected)
		assert.NotEmpty(t, report.Error)
	})

	t.Run("corrupt slot", func(t *testing.T) {
		key := testSigningKey(t)
		bundle := buildBundle(t, simpleSlots(), fixtureOpts{signKey: key})
		reader := newTestReader(t, bundle, ReaderOptions{})

		descriptors, err := reader.ReadSlotDescriptors()
		require.NoError(t, err)
		bundle[descriptors[0].Offset] ^= 0x01

		report := reader.VerifyIntegrity()
		assert.False(t, report.Valid)
		assert.True(t, report.MagicValid)
		assert.False(t, report.ChecksumsValid)
		assert.True(t, report.TamperDetected)
	})

	t.Run("unsigned bundle is not valid", func(t *testing.T) {
		reader := newTestReader(t, buildBundle(t, simpleSlots(), fixtureOpts{}), ReaderOptions{})

		report := reader.VerifyIntegrity()
		assert.False(t, report.Valid)
		assert.False(t, report.SignatureValid)
		assert.True(t, report.MagicValid)
		assert.True(t, report.ChecksumsValid)
	})

	t.Run("fails closed on unreadable bundle", func(t *testing.T) {
		reader, err := NewReader("/nonexistent/bundle.pspf")
		require.NoError(t, err)
		defer reader.Close()

		report := reader.VerifyIntegrity()
		assert.False(t, report.Valid)
		assert.False(t, report.MagicValid)
		assert.False(t, report.ChecksumsValid)
		assert.False(t, report.SignatureValid)
		assert.True(t, report.TamperDetected)
		assert.NotEmpty(t, report.Error)
	})
}
