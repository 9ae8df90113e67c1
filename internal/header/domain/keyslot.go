package domain

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/jobcrypt/internal/crypto/domain"
	cryptoService "github.com/allisson/jobcrypt/internal/crypto/service"
)

// FileKeyContext is the HKDF domain-separation string used whenever a
// Keyslot derives a key-wrapping key from a hashed password. Keeping it as
// a package constant, rather than letting callers pick their own, means
// every keyslot in every header derives key-wrapping keys the same way.
const FileKeyContext = "FILE_KEY"

// Keyslot is a password-protected copy of a FileHeader's master key. A
// header holds up to KeyslotLimit keyslots, so the same master key — and
// therefore the same encrypted objects — can be unlocked by more than one
// password.
type Keyslot struct {
	HashingAlgorithm    cryptoDomain.HashingAlgorithm
	Algorithm           cryptoDomain.Algorithm
	Salt                cryptoDomain.Salt
	ContentSalt         cryptoDomain.ContentSalt
	Nonce               cryptoDomain.Nonce
	EncryptedMasterKey  cryptoDomain.EncryptedKey
}

// NewKeyslot hashes password with hashingAlg (seasoned by a fresh
// ContentSalt), derives a key-wrapping key from the hash via HKDF, and
// seals masterKey under it with algorithm. The returned Keyslot holds
// everything needed to reverse the process given the same password.
func NewKeyslot(
	_ context.Context,
	algorithm cryptoDomain.Algorithm,
	hashingAlgorithm cryptoDomain.HashingAlgorithm,
	hashingParams cryptoDomain.Argon2idParams,
	password []byte,
	masterKey cryptoDomain.Key,
) (Keyslot, error) {
	if !algorithm.Valid() {
		return Keyslot{}, cryptoDomain.ErrUnsupportedAlgorithm
	}
	if !hashingAlgorithm.Valid() {
		return Keyslot{}, cryptoDomain.ErrUnsupportedAlgorithm
	}

	contentSalt, err := cryptoDomain.GenerateContentSalt()
	if err != nil {
		return Keyslot{}, fmt.Errorf("generate content salt: %w", err)
	}

	salt, err := cryptoDomain.GenerateSalt()
	if err != nil {
		return Keyslot{}, fmt.Errorf("generate salt: %w", err)
	}

	nonce, err := cryptoDomain.GenerateNonce(algorithm)
	if err != nil {
		return Keyslot{}, fmt.Errorf("generate nonce: %w", err)
	}

	hashedPassword := cryptoDomain.HashPassword(password, contentSalt, hashingParams)
	defer hashedPassword.Zero()

	wrappingKey, err := cryptoDomain.DeriveKey(hashedPassword, salt, FileKeyContext)
	if err != nil {
		return Keyslot{}, fmt.Errorf("derive wrapping key: %w", err)
	}
	defer wrappingKey.Zero()

	ciphertext, err := cryptoService.Encrypt(wrappingKey, nonce, algorithm, masterKey.Bytes(), nil)
	if err != nil {
		return Keyslot{}, fmt.Errorf("wrap master key: %w", err)
	}

	encryptedMasterKey, err := cryptoDomain.EncryptedKeyFromBytes(ciphertext)
	if err != nil {
		return Keyslot{}, fmt.Errorf("wrap master key: %w", err)
	}

	return Keyslot{
		HashingAlgorithm:   hashingAlgorithm,
		Algorithm:          algorithm,
		Salt:               salt,
		ContentSalt:        contentSalt,
		Nonce:              nonce,
		EncryptedMasterKey: encryptedMasterKey,
	}, nil
}

// Decrypt attempts to recover the wrapped master key using password. This
// is a trial decryption: a wrong password produces cryptoDomain.ErrAuthFailed,
// a completely ordinary outcome when probing multiple keyslots, never
// something a caller should log as an error.
func (k Keyslot) Decrypt(_ context.Context, hashingParams cryptoDomain.Argon2idParams, password []byte) (cryptoDomain.Key, error) {
	hashedPassword := cryptoDomain.HashPassword(password, k.ContentSalt, hashingParams)
	defer hashedPassword.Zero()

	wrappingKey, err := cryptoDomain.DeriveKey(hashedPassword, k.Salt, FileKeyContext)
	if err != nil {
		return cryptoDomain.Key{}, fmt.Errorf("derive wrapping key: %w", err)
	}
	defer wrappingKey.Zero()

	plaintext, err := cryptoService.Decrypt(wrappingKey, k.Nonce, k.Algorithm, k.EncryptedMasterKey.Bytes(), nil)
	if err != nil {
		return cryptoDomain.Key{}, err
	}
	defer cryptoDomain.Zero(plaintext)

	return cryptoDomain.KeyFromBytes(plaintext)
}
