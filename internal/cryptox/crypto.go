// Package cryptox seals values persisted on the local machine. A device secret
// kept next to the data file is stretched with HKDF-SHA256 into an AES-256 key,
// and values are sealed with AES-GCM as nonce||ciphertext.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/quizera/internal/common"
	"github.com/dmitrijs2005/quizera/internal/filex"
	"golang.org/x/crypto/hkdf"
)

// SecretSize is the length of the device secret in bytes.
const SecretSize = 32

const sealInfo = "quizera-session-v1"

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// Sealer encrypts and authenticates small values with a key derived from a
// device secret. It is safe for concurrent use.
type Sealer struct {
	aead cipher.AEAD
}

// DeriveKey stretches secret into a 32-byte key bound to info.
func DeriveKey(secret []byte, info string) ([]byte, error) {
	h := hkdf.New(sha256.New, secret, nil, []byte(info))
	key := make([]byte, 32)
	if _, err := io.ReadFull(h, key); err != nil {
		return nil, err
	}
	return key, nil
}

func NewSealer(secret []byte) (*Sealer, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty secret")
	}

	key, err := DeriveKey(secret, sealInfo)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// Seal returns nonce||ciphertext for plaintext. A fresh random nonce is used
// for every call.
func (s *Sealer) Seal(plaintext []byte) []byte {
	nonce := common.GenerateRandByteArray(s.aead.NonceSize())
	return s.aead.Seal(nonce, nonce, plaintext, nil)
}

// Open reverses Seal. It fails if the value was tampered with or sealed under
// a different secret.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	ns := s.aead.NonceSize()
	if len(sealed) < ns+s.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	return s.aead.Open(nil, sealed[:ns], sealed[ns:], nil)
}

// LoadOrCreateSecret reads the device secret stored at path, creating a new
// random one (mode 0600) when the file does not exist.
func LoadOrCreateSecret(path string) ([]byte, error) {
	secret, err := os.ReadFile(path)
	if err == nil {
		if len(secret) != SecretSize {
			return nil, fmt.Errorf("secret file %s: unexpected size %d", path, len(secret))
		}
		return secret, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read secret file: %w", err)
	}

	secret = common.GenerateRandByteArray(SecretSize)
	if err := filex.WriteFileAtomic(path, secret, 0o600); err != nil {
		return nil, fmt.Errorf("write secret file: %w", err)
	}
	return secret, nil
}
