package domain

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/jobcrypt/internal/crypto/domain"
	cryptoService "github.com/allisson/jobcrypt/internal/crypto/service"
)

// ObjectType identifies what a HeaderObject's decrypted plaintext holds.
// The set is closed: a FileHeader only ever carries these two kinds of
// object alongside a file.
type ObjectType uint8

const (
	// Metadata is arbitrary caller-defined JSON or binary metadata.
	Metadata ObjectType = iota + 1
	// PreviewMedia is a thumbnail or preview rendition of the file body.
	PreviewMedia
)

// Valid reports whether t is a known object type.
func (t ObjectType) Valid() bool {
	return t == Metadata || t == PreviewMedia
}

// HeaderObject is an encrypted, authenticated blob stored inside a
// FileHeader and sealed under the header's master key. A header holds up
// to ObjectLimit objects.
type HeaderObject struct {
	Type       ObjectType
	Nonce      cryptoDomain.Nonce
	Ciphertext []byte
}

// NewHeaderObject seals plaintext under masterKey with algorithm, binding
// aad (typically the header's own Aad) without encrypting it.
func NewHeaderObject(
	_ context.Context,
	objectType ObjectType,
	algorithm cryptoDomain.Algorithm,
	masterKey cryptoDomain.Key,
	aad cryptoDomain.Aad,
	plaintext []byte,
) (HeaderObject, error) {
	if !objectType.Valid() {
		return HeaderObject{}, fmt.Errorf("invalid object type: %d", objectType)
	}
	if !algorithm.Valid() {
		return HeaderObject{}, cryptoDomain.ErrUnsupportedAlgorithm
	}

	nonce, err := cryptoDomain.GenerateNonce(algorithm)
	if err != nil {
		return HeaderObject{}, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext, err := cryptoService.Encrypt(masterKey, nonce, algorithm, plaintext, aad.Bytes())
	if err != nil {
		return HeaderObject{}, fmt.Errorf("seal object: %w", err)
	}

	return HeaderObject{
		Type:       objectType,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}, nil
}

// Decrypt opens the object's ciphertext using masterKey, algorithm, and the
// header's aad. A wrong master key or tampered ciphertext surfaces as
// cryptoDomain.ErrAuthFailed.
func (o HeaderObject) Decrypt(
	_ context.Context,
	algorithm cryptoDomain.Algorithm,
	aad cryptoDomain.Aad,
	masterKey cryptoDomain.Key,
) ([]byte, error) {
	return cryptoService.Decrypt(masterKey, o.Nonce, algorithm, o.Ciphertext, aad.Bytes())
}
