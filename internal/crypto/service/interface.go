// Package service implements the AEAD primitives used throughout jobcrypt:
// keyslot wrapping, header object sealing, and (indirectly, via the same
// ciphers) any job that needs to encrypt its own checkpointed state.
//
// # Services Overview
//
// AEADManager: factory for creating AEAD cipher instances for a given
// domain.Algorithm. Supports AES-256-GCM and XChaCha20-Poly1305.
//
// AESGCMCipher / XChaCha20Poly1305Cipher: concrete AEAD implementations.
// Both take an explicit caller-supplied nonce on every Encrypt/Decrypt
// call rather than generating one internally, so callers can persist the
// nonce as part of a Keyslot or HeaderObject before encrypting.
//
// # Thread Safety
//
// All service implementations are stateless and thread-safe. Multiple
// goroutines can safely use the same cipher instance for concurrent
// operations.
//
// # Algorithm Selection
//
//   - Use Aes256Gcm on servers and modern CPUs with AES-NI acceleration
//   - Use XChaCha20Poly1305 when nonce reuse risk must be minimized (its
//     192-bit nonce makes random generation safe at much higher volumes)
package service

import (
	cryptoDomain "github.com/allisson/jobcrypt/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated
// Data. Implementations protect both confidentiality and authenticity:
// any modification to the ciphertext, nonce, or aad is detected on Open.
//
// Unlike a typical AEAD wrapper, Encrypt never generates its own nonce.
// The caller supplies one (usually via domain.GenerateNonce) and is
// responsible for never reusing a nonce with the same key.
//
// Implementations: AESGCMCipher, XChaCha20Poly1305Cipher
type AEAD interface {
	// Encrypt seals plaintext under nonce, binding aad without encrypting
	// it. Returns ciphertext with the authentication tag appended.
	Encrypt(plaintext []byte, nonce cryptoDomain.Nonce, aad []byte) (ciphertext []byte, err error)

	// Decrypt opens ciphertext (tag included) using nonce and aad. Returns
	// cryptoDomain.ErrAuthFailed, wrapped with context, if authentication
	// fails for any reason — wrong key, wrong nonce/aad, or tampering.
	Decrypt(ciphertext []byte, nonce cryptoDomain.Nonce, aad []byte) (plaintext []byte, err error)

	// NonceSize reports the nonce length this cipher requires.
	NonceSize() int
}

// AEADManager is a factory for AEAD cipher instances keyed by
// domain.Algorithm. It exists so callers holding only an Algorithm value
// (e.g. read from a decoded Keyslot) can obtain a matching cipher without
// a type switch of their own.
type AEADManager interface {
	// CreateCipher returns an AEAD bound to key for alg.
	//
	//   - cryptoDomain.ErrInvalidKeySize if key is not 32 bytes
	//   - cryptoDomain.ErrUnsupportedAlgorithm if alg is not supported
	CreateCipher(key cryptoDomain.Key, alg cryptoDomain.Algorithm) (AEAD, error)
}
