package service

import (
	cryptoDomain "github.com/allisson/jobcrypt/internal/crypto/domain"
)

// AEADManagerService is the default AEADManager: a stateless factory that
// instantiates AESGCMCipher or XChaCha20Poly1305Cipher from a domain.Key
// and domain.Algorithm.
type AEADManagerService struct{}

// NewAEADManager creates a new AEADManagerService instance.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher creates an AEAD cipher instance for the specified algorithm.
func (am *AEADManagerService) CreateCipher(key cryptoDomain.Key, alg cryptoDomain.Algorithm) (AEAD, error) {
	switch alg {
	case cryptoDomain.Aes256Gcm:
		return NewAESGCM(key)
	case cryptoDomain.XChaCha20Poly1305:
		return NewXChaCha20Poly1305(key)
	default:
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
}

// Encrypt is a free function equivalent of AEADManagerService.CreateCipher
// followed by AEAD.Encrypt, for callers that just want to seal one value
// under one algorithm without holding onto a cipher instance.
func Encrypt(
	key cryptoDomain.Key,
	nonce cryptoDomain.Nonce,
	alg cryptoDomain.Algorithm,
	plaintext, aad []byte,
) ([]byte, error) {
	manager := NewAEADManager()
	c, err := manager.CreateCipher(key, alg)
	if err != nil {
		return nil, err
	}
	return c.Encrypt(plaintext, nonce, aad)
}

// Decrypt is the inverse of Encrypt.
func Decrypt(
	key cryptoDomain.Key,
	nonce cryptoDomain.Nonce,
	alg cryptoDomain.Algorithm,
	ciphertext, aad []byte,
) ([]byte, error) {
	manager := NewAEADManager()
	c, err := manager.CreateCipher(key, alg)
	if err != nil {
		return nil, err
	}
	return c.Decrypt(ciphertext, nonce, aad)
}
