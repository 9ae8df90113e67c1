// Package header implements the versioned, self-describing encrypted file
// header: a small binary container holding one or more password-protected
// copies of a random master key (Keyslot) and up to two AEAD-sealed
// metadata blobs (HeaderObject) bound to that master key.
package header

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/jobcrypt/internal/crypto/domain"
	cryptoService "github.com/allisson/jobcrypt/internal/crypto/service"
	headerDomain "github.com/allisson/jobcrypt/internal/header/domain"
)

// KeyslotLimit is the maximum number of keyslots a v1 FileHeader can hold.
const KeyslotLimit = 2

// ObjectLimit is the maximum number of objects a v1 FileHeader can hold.
const ObjectLimit = 2

// Version1 is the only header version this module writes.
const Version1 byte = 1

// FileHeader is a versioned, self-describing container for a file's
// encryption metadata: the algorithm protecting it, one or more
// password-wrapped copies of its master key, and any sealed metadata
// objects bound to that key.
//
// Nonce is reserved: v1 encrypts nothing at the header level directly
// (every Keyslot and HeaderObject carries its own nonce), but the field is
// part of the v1 wire format so a future version can add header-level
// encryption without changing the struct shape readers already expect.
type FileHeader struct {
	Version   byte
	Algorithm cryptoDomain.Algorithm
	Aad       cryptoDomain.Aad
	Nonce     cryptoDomain.Nonce
	Keyslots  []headerDomain.Keyslot
	Objects   []headerDomain.HeaderObject
}

// NewFileHeader creates an empty v1 FileHeader protected by algorithm: a
// fresh Aad and a fresh reserved Nonce, no keyslots or objects yet.
func NewFileHeader(algorithm cryptoDomain.Algorithm) (*FileHeader, error) {
	if !algorithm.Valid() {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}

	aad, err := cryptoDomain.GenerateAad()
	if err != nil {
		return nil, fmt.Errorf("generate aad: %w", err)
	}

	nonce, err := cryptoDomain.GenerateNonce(algorithm)
	if err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return &FileHeader{
		Version:   Version1,
		Algorithm: algorithm,
		Aad:       aad,
		Nonce:     nonce,
		Keyslots:  nil,
		Objects:   nil,
	}, nil
}

// AddKeyslot appends a new password-protected keyslot wrapping masterKey.
// Returns headerDomain.ErrTooManyKeyslots once the header already holds
// KeyslotLimit keyslots.
func (h *FileHeader) AddKeyslot(
	ctx context.Context,
	hashingParams cryptoDomain.Argon2idParams,
	password []byte,
	masterKey cryptoDomain.Key,
) error {
	if len(h.Keyslots) >= KeyslotLimit {
		return headerDomain.ErrTooManyKeyslots
	}

	slot, err := headerDomain.NewKeyslot(
		ctx,
		h.Algorithm,
		cryptoDomain.Argon2id,
		hashingParams,
		password,
		masterKey,
	)
	if err != nil {
		return err
	}

	h.Keyslots = append(h.Keyslots, slot)
	return nil
}

// AddObject seals plaintext as a new object of objectType bound to
// masterKey and the header's own Aad. Returns headerDomain.ErrTooManyObjects
// once the header already holds ObjectLimit objects.
func (h *FileHeader) AddObject(
	ctx context.Context,
	objectType headerDomain.ObjectType,
	masterKey cryptoDomain.Key,
	plaintext []byte,
) error {
	if len(h.Objects) >= ObjectLimit {
		return headerDomain.ErrTooManyObjects
	}

	obj, err := headerDomain.NewHeaderObject(ctx, objectType, h.Algorithm, masterKey, h.Aad, plaintext)
	if err != nil {
		return err
	}

	h.Objects = append(h.Objects, obj)
	return nil
}

// DecryptObject opens the object at index using masterKey, returning its plaintext.
func (h *FileHeader) DecryptObject(ctx context.Context, index int, masterKey cryptoDomain.Key) ([]byte, error) {
	if index < 0 || index >= len(h.Objects) {
		return nil, headerDomain.ErrIndexOutOfRange
	}
	return h.Objects[index].Decrypt(ctx, h.Algorithm, h.Aad, masterKey)
}

// DecryptMasterKeyWithPassword tries password against every keyslot in
// order and returns the first master key it successfully unwraps. A
// password that matches none of the keyslots returns
// headerDomain.ErrIncorrectPassword, never a per-keyslot AEAD error.
func (h *FileHeader) DecryptMasterKeyWithPassword(
	ctx context.Context,
	hashingParams cryptoDomain.Argon2idParams,
	password []byte,
) (cryptoDomain.Key, error) {
	if len(h.Keyslots) == 0 {
		return cryptoDomain.Key{}, headerDomain.ErrNoKeyslots
	}

	for _, slot := range h.Keyslots {
		masterKey, err := slot.Decrypt(ctx, hashingParams, password)
		if err == nil {
			return masterKey, nil
		}
	}

	return cryptoDomain.Key{}, headerDomain.ErrIncorrectPassword
}

// DecryptMasterKey tries each candidate key directly against every
// keyslot, bypassing password hashing. This is the non-interactive unlock
// path: a caller holding a raw key (e.g. sourced from a MasterKeyChain or
// an external key store) rather than a human-typed password can still
// recover the header's master key, provided one of the candidates was
// used to create a keyslot via the same derivation.
func (h *FileHeader) DecryptMasterKey(candidates []cryptoDomain.Key) (cryptoDomain.Key, error) {
	if len(h.Keyslots) == 0 {
		return cryptoDomain.Key{}, headerDomain.ErrNoKeyslots
	}

	for _, slot := range h.Keyslots {
		for _, candidate := range candidates {
			wrappingKey, err := cryptoDomain.DeriveKey(candidate, slot.Salt, headerDomain.FileKeyContext)
			if err != nil {
				continue
			}

			masterKey, err := decryptKeyslotWith(slot, wrappingKey)
			wrappingKey.Zero()
			if err == nil {
				return masterKey, nil
			}
		}
	}

	return cryptoDomain.Key{}, headerDomain.ErrIncorrectPassword
}

// decryptKeyslotWith opens slot's EncryptedMasterKey directly under
// wrappingKey, skipping the password-hashing/derivation step a Keyslot
// normally performs itself. Used by DecryptMasterKey once it has already
// derived wrappingKey from a raw candidate key.
func decryptKeyslotWith(slot headerDomain.Keyslot, wrappingKey cryptoDomain.Key) (cryptoDomain.Key, error) {
	plaintext, err := cryptoService.Decrypt(wrappingKey, slot.Nonce, slot.Algorithm, slot.EncryptedMasterKey.Bytes(), nil)
	if err != nil {
		return cryptoDomain.Key{}, err
	}
	defer cryptoDomain.Zero(plaintext)

	return cryptoDomain.KeyFromBytes(plaintext)
}
