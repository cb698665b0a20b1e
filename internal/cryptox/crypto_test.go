package cryptox

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

func newSealer(t *testing.T, secret string) *GCMSealer {
	t.Helper()
	key, err := DeriveKey([]byte(secret), "test")
	require.NoError(t, err)
	s, err := NewGCMSealer(key)
	require.NoError(t, err)
	return s
}

func TestDeriveKey_DeterministicAndBoundToInfo(t *testing.T) {
	k1, err := DeriveKey([]byte("secret"), "a")
	require.NoError(t, err)
	k2, err := DeriveKey([]byte("secret"), "a")
	require.NoError(t, err)
	k3, err := DeriveKey([]byte("secret"), "b")
	require.NoError(t, err)

	assert.Len(t, k1, 32)
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}

func TestNewGCMSealer_RejectsShortKey(t *testing.T) {
	_, err := NewGCMSealer([]byte("short"))
	require.Error(t, err)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	s := newSealer(t, "device")
	in := record{UserID: "42", Token: "t0k"}

	blob, err := s.Seal(in)
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "t0k")

	var out record
	require.NoError(t, s.Open(blob, &out))
	assert.Equal(t, in, out)
}

func TestSeal_FreshNonceEachTime(t *testing.T) {
	s := newSealer(t, "device")
	b1, err := s.Seal(record{UserID: "1"})
	require.NoError(t, err)
	b2, err := s.Seal(record{UserID: "1"})
	require.NoError(t, err)
	assert.NotEqual(t, b1, b2)
}

func TestOpen_Tampered(t *testing.T) {
	s := newSealer(t, "device")
	blob, err := s.Seal(record{UserID: "1"})
	require.NoError(t, err)

	blob[len(blob)-1] ^= 0xff
	var out record
	require.ErrorIs(t, s.Open(blob, &out), ErrCorrupted)
}

func TestOpen_WrongKey(t *testing.T) {
	blob, err := newSealer(t, "one").Seal(record{UserID: "1"})
	require.NoError(t, err)

	var out record
	require.ErrorIs(t, newSealer(t, "two").Open(blob, &out), ErrCorrupted)
}

func TestOpen_Truncated(t *testing.T) {
	var out record
	require.ErrorIs(t, newSealer(t, "x").Open([]byte{1, 2, 3}, &out), ErrCorrupted)
}

func TestLoadOrCreateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "device.key")

	k1, err := LoadOrCreateKey(path)
	require.NoError(t, err)
	assert.Len(t, k1, 32)

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	}

	k2, err := LoadOrCreateKey(path)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestLoadOrCreateKey_BadLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.key")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0o600))

	_, err := LoadOrCreateKey(path)
	require.Error(t, err)
}

func TestNewDeviceSealer_SameKeyFileOpensBlob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.key")

	s1, err := NewDeviceSealer(path, "session")
	require.NoError(t, err)
	blob, err := s1.Seal(record{UserID: "9"})
	require.NoError(t, err)

	s2, err := NewDeviceSealer(path, "session")
	require.NoError(t, err)
	var out record
	require.NoError(t, s2.Open(blob, &out))
	assert.Equal(t, "9", out.UserID)
}
