package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the length in bytes of every Key in this package: master
// keys, derived keys, and the keys a Keyslot unwraps are all 256-bit.
const KeySize = 32

// Key is a 32-byte secret. The zero value is 32 zero bytes and is never
// produced by GenerateKey or DeriveKey; callers that need a sentinel
// "no key" value should use a *Key instead.
//
// Key deliberately has no exported fields. Bytes() returns a copy so
// callers cannot mutate the key in place through an aliased slice, and
// Zero() is the only way to clear it.
type Key struct {
	b [KeySize]byte
}

// GenerateKey returns a fresh, cryptographically random Key.
func GenerateKey() (Key, error) {
	var k Key
	if _, err := rand.Read(k.b[:]); err != nil {
		return Key{}, fmt.Errorf("generate key: %w", err)
	}
	return k, nil
}

// KeyFromBytes copies b into a new Key. b must be exactly KeySize bytes.
func KeyFromBytes(b []byte) (Key, error) {
	if len(b) != KeySize {
		return Key{}, ErrInvalidKeySize
	}
	var k Key
	copy(k.b[:], b)
	return k, nil
}

// DeriveKey runs HKDF-Extract-and-Expand (SHA-256) over input keyed by
// salt, with context as the domain-separation info string, and returns a
// fresh 32-byte Key. context should be a fixed ASCII constant such as
// "FILE_KEY" so keys derived for different purposes from the same input
// never collide.
func DeriveKey(input Key, salt Salt, context string) (Key, error) {
	reader := hkdf.New(sha256.New, input.b[:], salt.b[:], []byte(context))
	var k Key
	if _, err := io.ReadFull(reader, k.b[:]); err != nil {
		return Key{}, fmt.Errorf("derive key: %w", err)
	}
	return k, nil
}

// Bytes returns a copy of the key material. Callers that hold onto the
// result are responsible for zeroing it when done.
func (k Key) Bytes() []byte {
	out := make([]byte, KeySize)
	copy(out, k.b[:])
	return out
}

// Equal reports whether k and other hold the same bytes, compared in
// constant time to avoid leaking timing information about secret key
// material.
func (k Key) Equal(other Key) bool {
	return subtle.ConstantTimeCompare(k.b[:], other.b[:]) == 1
}

// Zero overwrites the key's bytes with zeros in place.
func (k *Key) Zero() {
	for i := range k.b {
		k.b[i] = 0
	}
}

// String never exposes key material; it satisfies fmt.Stringer so logging
// a Key by accident does not leak it.
func (k Key) String() string {
	return "domain.Key{REDACTED}"
}

// GoString satisfies fmt.GoStringer for the same reason as String.
func (k Key) GoString() string {
	return k.String()
}
