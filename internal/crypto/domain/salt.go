package domain

import (
	"crypto/rand"
	"fmt"
)

// SaltSize is the fixed width of a Salt and a ContentSalt.
const SaltSize = 16

// Salt is 16 bytes of random data used, together with a hashed key, to
// derive the key-encryption key that wraps a keyslot's master key.
type Salt struct {
	b [SaltSize]byte
}

// GenerateSalt returns a fresh random Salt.
func GenerateSalt() (Salt, error) {
	var s Salt
	if _, err := rand.Read(s.b[:]); err != nil {
		return Salt{}, fmt.Errorf("generate salt: %w", err)
	}
	return s, nil
}

// SaltFromBytes copies b into a new Salt. b must be exactly SaltSize bytes.
func SaltFromBytes(b []byte) (Salt, error) {
	if len(b) != SaltSize {
		return Salt{}, ErrInvalidSaltSize
	}
	var s Salt
	copy(s.b[:], b)
	return s, nil
}

// Bytes returns a copy of the salt bytes.
func (s Salt) Bytes() []byte {
	out := make([]byte, SaltSize)
	copy(out, s.b[:])
	return out
}

// ContentSalt is 16 bytes of random data mixed into a password hash so the
// same password hashes differently across keyslots. It is a distinct type
// from Salt purely for domain clarity: a Salt seasons HKDF key derivation,
// a ContentSalt seasons Argon2id password hashing.
type ContentSalt struct {
	b [SaltSize]byte
}

// GenerateContentSalt returns a fresh random ContentSalt.
func GenerateContentSalt() (ContentSalt, error) {
	var c ContentSalt
	if _, err := rand.Read(c.b[:]); err != nil {
		return ContentSalt{}, fmt.Errorf("generate content salt: %w", err)
	}
	return c, nil
}

// ContentSaltFromBytes copies b into a new ContentSalt. b must be exactly SaltSize bytes.
func ContentSaltFromBytes(b []byte) (ContentSalt, error) {
	if len(b) != SaltSize {
		return ContentSalt{}, ErrInvalidSaltSize
	}
	var c ContentSalt
	copy(c.b[:], b)
	return c, nil
}

// Bytes returns a copy of the content salt bytes.
func (c ContentSalt) Bytes() []byte {
	out := make([]byte, SaltSize)
	copy(out, c.b[:])
	return out
}

// AadSize is the fixed width of an Aad value.
const AadSize = 32

// Aad is 32 bytes of additional authenticated data bound to every
// encryption performed under one FileHeader. It is authenticated but
// never encrypted.
type Aad struct {
	b [AadSize]byte
}

// GenerateAad returns a fresh random Aad.
func GenerateAad() (Aad, error) {
	var a Aad
	if _, err := rand.Read(a.b[:]); err != nil {
		return Aad{}, fmt.Errorf("generate aad: %w", err)
	}
	return a, nil
}

// AadFromBytes copies b into a new Aad. b must be exactly AadSize bytes.
func AadFromBytes(b []byte) (Aad, error) {
	if len(b) != AadSize {
		return Aad{}, ErrInvalidAadSize
	}
	var a Aad
	copy(a.b[:], b)
	return a, nil
}

// Bytes returns a copy of the aad bytes.
func (a Aad) Bytes() []byte {
	out := make([]byte, AadSize)
	copy(out, a.b[:])
	return out
}
