package domain

import (
	"crypto/rand"
	"fmt"
)

// Nonce is an AEAD nonce sized to the algorithm that will use it: 24 bytes
// for XChaCha20-Poly1305, 12 for AES-256-GCM. Unlike Key, Salt, and Aad it
// has no single fixed width, so it is carried as a length-checked slice
// rather than a fixed array.
type Nonce struct {
	b []byte
}

// GenerateNonce returns a fresh random Nonce sized for alg. Every
// encryption must use a freshly generated nonce; reusing a nonce with the
// same key breaks the AEAD's confidentiality guarantees. This is the
// caller's responsibility to uphold — GenerateNonce only guarantees
// freshness for the calls it itself makes.
func GenerateNonce(alg Algorithm) (Nonce, error) {
	size := alg.NonceSize()
	if size == 0 {
		return Nonce{}, ErrUnsupportedAlgorithm
	}
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return Nonce{}, fmt.Errorf("generate nonce: %w", err)
	}
	return Nonce{b: b}, nil
}

// NonceFromBytes wraps b as a Nonce for alg. b must match alg's required
// nonce size exactly.
func NonceFromBytes(b []byte, alg Algorithm) (Nonce, error) {
	size := alg.NonceSize()
	if size == 0 {
		return Nonce{}, ErrUnsupportedAlgorithm
	}
	if len(b) != size {
		return Nonce{}, ErrInvalidNonceSize
	}
	out := make([]byte, size)
	copy(out, b)
	return Nonce{b: out}, nil
}

// Bytes returns a copy of the nonce bytes.
func (n Nonce) Bytes() []byte {
	out := make([]byte, len(n.b))
	copy(out, n.b)
	return out
}

// Len reports the nonce's length in bytes.
func (n Nonce) Len() int {
	return len(n.b)
}
