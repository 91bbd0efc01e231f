// Package crypto implements the AES-256-GCM engine used to seal provider
// secrets at rest.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// KeySize is the required key length in bytes (AES-256).
const KeySize = 32

// ErrDecrypt is returned when a ciphertext is truncated, malformed or fails
// GCM tag verification.
var ErrDecrypt = errors.New("decrypt ciphertext")

// Engine encrypts and decrypts opaque byte slices with one process-wide key.
// It is safe for concurrent use.
type Engine struct {
	aead cipher.AEAD
}

// NewEngine builds an Engine from a 32-byte key.
func NewEngine(key []byte) (*Engine, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}

	return &Engine{aead: gcm}, nil
}

// Encrypt seals plaintext with a fresh random nonce. The result is
// nonce (12 bytes) || ciphertext || tag (16 bytes).
func (e *Engine) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends to nonce, producing: nonce || ciphertext || tag.
	return e.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a blob produced by Encrypt. Any failure wraps ErrDecrypt.
func (e *Engine) Decrypt(blob []byte) ([]byte, error) {
	nonceSize := e.aead.NonceSize()
	if len(blob) < nonceSize+e.aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short (%d bytes)", ErrDecrypt, len(blob))
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]
	plaintext, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	// Open returns nil for an empty plaintext; normalize so callers can
	// compare against []byte{}.
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}
