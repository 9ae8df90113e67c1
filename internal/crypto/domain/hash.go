package domain

import (
	"golang.org/x/crypto/argon2"
)

// HashPassword runs Argon2id over password, seasoned with contentSalt,
// under params, and returns the result as a Key. This is the step a
// Keyslot runs before ever touching an AEAD cipher: the hashed password
// stands in for a Key everywhere downstream (DeriveKey, Encrypt/Decrypt).
func HashPassword(password []byte, contentSalt ContentSalt, params Argon2idParams) Key {
	digest := argon2.IDKey(password, contentSalt.Bytes(), params.Time, params.MemoryKiB, params.Threads, KeySize)
	var k Key
	copy(k.b[:], digest)
	Zero(digest)
	return k
}
