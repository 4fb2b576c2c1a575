package cryptox

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_DeterministicAndBound(t *testing.T) {
	secret := []byte("device-secret")

	k1, err := DeriveKey(secret, "a")
	require.NoError(t, err)
	k2, err := DeriveKey(secret, "a")
	require.NoError(t, err)
	k3, err := DeriveKey(secret, "b")
	require.NoError(t, err)

	assert.Len(t, k1, 32)
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}

func TestSealer_RoundTrip(t *testing.T) {
	s, err := NewSealer([]byte("device-secret"))
	require.NoError(t, err)

	plain := []byte("eyJhbGciOi.token.value")
	sealed := s.Seal(plain)
	assert.False(t, bytes.Contains(sealed, plain), "plaintext must not appear in sealed value")

	got, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestSealer_FreshNoncePerSeal(t *testing.T) {
	s, err := NewSealer([]byte("device-secret"))
	require.NoError(t, err)

	assert.NotEqual(t, s.Seal([]byte("x")), s.Seal([]byte("x")))
}

func TestSealer_OpenFailures(t *testing.T) {
	s, err := NewSealer([]byte("device-secret"))
	require.NoError(t, err)
	other, err := NewSealer([]byte("another-secret"))
	require.NoError(t, err)

	sealed := s.Seal([]byte("value"))

	_, err = other.Open(sealed)
	assert.Error(t, err, "different secret")

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xFF
	_, err = s.Open(tampered)
	assert.Error(t, err, "tampered value")

	_, err = s.Open([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestNewSealer_EmptySecret(t *testing.T) {
	_, err := NewSealer(nil)
	assert.Error(t, err)
}

func TestLoadOrCreateSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "device.key")

	first, err := LoadOrCreateSecret(path)
	require.NoError(t, err)
	assert.Len(t, first, SecretSize)

	second, err := LoadOrCreateSecret(path)
	require.NoError(t, err)
	assert.Equal(t, first, second, "existing secret must be reused")
}

func TestLoadOrCreateSecret_WrongSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.key")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0o600))

	_, err := LoadOrCreateSecret(path)
	assert.Error(t, err)
}
