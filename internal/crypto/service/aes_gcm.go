package service

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	cryptoDomain "github.com/allisson/jobcrypt/internal/crypto/domain"
)

// AESGCMCipher implements AEAD using AES-256-GCM.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance bound to key.
func NewAESGCM(key cryptoDomain.Key) (*AESGCMCipher, error) {
	block, err := aes.NewCipher(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("create aes cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Encrypt encrypts plaintext using AES-256-GCM with the given nonce and aad.
func (a *AESGCMCipher) Encrypt(plaintext []byte, nonce cryptoDomain.Nonce, aad []byte) ([]byte, error) {
	if nonce.Len() != a.aead.NonceSize() {
		return nil, cryptoDomain.ErrInvalidNonceSize
	}
	return a.aead.Seal(nil, nonce.Bytes(), plaintext, aad), nil
}

// Decrypt decrypts ciphertext using AES-256-GCM with the given nonce and aad.
func (a *AESGCMCipher) Decrypt(ciphertext []byte, nonce cryptoDomain.Nonce, aad []byte) ([]byte, error) {
	if nonce.Len() != a.aead.NonceSize() {
		return nil, cryptoDomain.ErrInvalidNonceSize
	}
	plaintext, err := a.aead.Open(nil, nonce.Bytes(), ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", cryptoDomain.ErrAuthFailed, err)
	}
	return plaintext, nil
}

// NonceSize returns the size of the nonce required by AES-GCM: 12 bytes.
func (a *AESGCMCipher) NonceSize() int {
	return a.aead.NonceSize()
}
