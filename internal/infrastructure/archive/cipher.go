package archive

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Cipher seals and opens archive bundles with ChaCha20-Poly1305 (AEAD).
// Tampering with a single bit of the stored blob makes Open fail.
type Cipher struct {
	key []byte
}

// NewCipher derives the AEAD key from the configured secret. A secret of
// exactly 32 bytes is used as-is; anything else is normalized through
// SHA-256. The derivation is deterministic so every instance configured with
// the same secret can open existing archives.
func NewCipher(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, fmt.Errorf("archive: encryption secret is required")
	}
	key := []byte(secret)
	if len(key) != chacha20poly1305.KeySize {
		sum := sha256.Sum256(key)
		key = sum[:]
	}
	return &Cipher{key: key}, nil
}

// Seal encrypts the plaintext. The random nonce is prepended to the
// ciphertext so the blob is self-contained.
func (c *Cipher) Seal(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(c.key)
	if err != nil {
		return nil, fmt.Errorf("archive: init cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("archive: generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open authenticates and decrypts a blob produced by Seal.
func (c *Cipher) Open(blob []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(c.key)
	if err != nil {
		return nil, fmt.Errorf("archive: init cipher: %w", err)
	}
	if len(blob) < aead.NonceSize() {
		return nil, fmt.Errorf("archive: blob too short")
	}
	nonce, ciphertext := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("archive: decrypt: %w", err)
	}
	return plaintext, nil
}
