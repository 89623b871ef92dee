// Package crypt seals small blobs at rest with AES-256-GCM.
//
// The key is derived from APP_KEY with HKDF-SHA256, so any secret length
// works. Output is base64url(nonce || ciphertext || tag):
//
//	s, _ := crypt.NewSealer(config.AppKey(), "cookies")
//	enc, _ := s.Seal(raw)
//	raw, err := s.Open(enc)
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ErrDecrypt is returned when decryption or authentication fails.
var ErrDecrypt = errors.New("crypt: decryption failed")

// Sealer encrypts and decrypts with one derived key.
type Sealer struct {
	gcm cipher.AEAD
}

// NewSealer derives a 32-byte key from secret, bound to purpose so the same
// APP_KEY yields different keys for different uses.
func NewSealer(secret, purpose string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("crypt: APP_KEY not configured")
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("bookstore/"+purpose))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("crypt: derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypt: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypt: new GCM: %w", err)
	}
	return &Sealer{gcm: gcm}, nil
}

// Seal encrypts data and returns a base64url string.
func (s *Sealer) Seal(data []byte) (string, error) {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypt: nonce: %w", err)
	}
	return base64.URLEncoding.EncodeToString(s.gcm.Seal(nonce, nonce, data, nil)), nil
}

// Open reverses Seal. Any tampering or a wrong key yields ErrDecrypt.
func (s *Sealer) Open(encoded string) ([]byte, error) {
	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrDecrypt
	}

	nonceSize := s.gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, ErrDecrypt
	}

	plain, err := s.gcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}
