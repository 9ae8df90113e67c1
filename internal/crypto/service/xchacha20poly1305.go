package service

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	cryptoDomain "github.com/allisson/jobcrypt/internal/crypto/domain"
)

// XChaCha20Poly1305Cipher implements AEAD using XChaCha20-Poly1305. Its
// 192-bit nonce makes random generation safe even at very high encryption
// volumes, unlike the 96-bit nonce of plain ChaCha20-Poly1305 or AES-GCM.
type XChaCha20Poly1305Cipher struct {
	aead cipher.AEAD
}

// NewXChaCha20Poly1305 creates a new XChaCha20-Poly1305 cipher instance
// bound to key.
func NewXChaCha20Poly1305(key cryptoDomain.Key) (*XChaCha20Poly1305Cipher, error) {
	aead, err := chacha20poly1305.NewX(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("create xchacha20-poly1305 cipher: %w", err)
	}
	return &XChaCha20Poly1305Cipher{aead: aead}, nil
}

// Encrypt encrypts plaintext using XChaCha20-Poly1305 with the given nonce and aad.
func (c *XChaCha20Poly1305Cipher) Encrypt(plaintext []byte, nonce cryptoDomain.Nonce, aad []byte) ([]byte, error) {
	if nonce.Len() != c.aead.NonceSize() {
		return nil, cryptoDomain.ErrInvalidNonceSize
	}
	return c.aead.Seal(nil, nonce.Bytes(), plaintext, aad), nil
}

// Decrypt decrypts ciphertext using XChaCha20-Poly1305 with the given nonce and aad.
func (c *XChaCha20Poly1305Cipher) Decrypt(ciphertext []byte, nonce cryptoDomain.Nonce, aad []byte) ([]byte, error) {
	if nonce.Len() != c.aead.NonceSize() {
		return nil, cryptoDomain.ErrInvalidNonceSize
	}
	plaintext, err := c.aead.Open(nil, nonce.Bytes(), ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", cryptoDomain.ErrAuthFailed, err)
	}
	return plaintext, nil
}

// NonceSize returns the size of the nonce required by XChaCha20-Poly1305: 24 bytes.
func (c *XChaCha20Poly1305Cipher) NonceSize() int {
	return c.aead.NonceSize()
}
