// Package cryptox seals small local records (the persisted session) with
// AES-256-GCM under a per-device key.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/tuniguard/internal/common"
	"golang.org/x/crypto/hkdf"
)

const (
	keySize   = 32
	nonceSize = 12
)

// ErrCorrupted is returned by Open when the sealed blob is truncated,
// tampered with, or was sealed under a different key.
var ErrCorrupted = errors.New("sealed data corrupted")

// Sealer encrypts JSON-serialisable values into opaque blobs and back.
type Sealer interface {
	Seal(v any) ([]byte, error)
	Open(blob []byte, v any) error
}

// GCMSealer implements Sealer with AES-256-GCM. Blobs are laid out as
// nonce || ciphertext.
type GCMSealer struct {
	aead cipher.AEAD
}

// DeriveKey stretches device key material into a 32-byte AES key bound to
// info using HKDF-SHA256.
func DeriveKey(secret []byte, info string) ([]byte, error) {
	r := hkdf.New(sha256.New, secret, nil, []byte(info))
	key := make([]byte, keySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return key, nil
}

// NewGCMSealer builds a sealer from a 32-byte key.
func NewGCMSealer(key []byte) (*GCMSealer, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", keySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &GCMSealer{aead: aead}, nil
}

// Seal serializes v to JSON and encrypts it with a fresh random nonce.
//
// The returned blob carries the 12-byte nonce in front of the ciphertext,
// so it can be stored as a single column and later passed to Open as is.
//
// Example:
//
//	key, _ := cryptox.LoadOrCreateKey(".tuniguard/device.key")
//	aesKey, _ := cryptox.DeriveKey(key, "tuniguard session v1")
//	s, _ := cryptox.NewGCMSealer(aesKey)
//
//	blob, err := s.Seal(session)
//	if err != nil {
//	    return err
//	}
func (s *GCMSealer) Seal(v any) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	defer common.WipeByteArray(plaintext)

	nonce := common.GenerateRandByteArray(nonceSize)
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts blob and unmarshals the JSON payload into v.
func (s *GCMSealer) Open(blob []byte, v any) error {
	if len(blob) < nonceSize+s.aead.Overhead() {
		return ErrCorrupted
	}
	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]

	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return ErrCorrupted
	}
	defer common.WipeByteArray(plaintext)

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	return nil
}

// LoadOrCreateKey reads the device key at path, generating 32 random bytes
// with 0600 permissions when the file does not exist yet.
func LoadOrCreateKey(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err == nil {
		if len(b) != keySize {
			return nil, fmt.Errorf("device key %s: unexpected length %d", path, len(b))
		}
		return b, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read device key: %w", err)
	}

	key := common.GenerateRandByteArray(keySize)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("write device key: %w", err)
	}
	return key, nil
}

// NewDeviceSealer loads (or creates) the device key at keyPath and returns
// a sealer whose key is derived for info.
func NewDeviceSealer(keyPath, info string) (*GCMSealer, error) {
	secret, err := LoadOrCreateKey(keyPath)
	if err != nil {
		return nil, err
	}
	key, err := DeriveKey(secret, info)
	if err != nil {
		return nil, err
	}
	return NewGCMSealer(key)
}
