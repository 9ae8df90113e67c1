// Package domain defines the primitive cryptographic types (Key, Nonce,
// Salt, Aad, EncryptedKey, Algorithm, HashingAlgorithm) and the master key
// chain used to bootstrap them, shared by the AEAD service layer and the
// file header package.
package domain

import (
	"github.com/allisson/jobcrypt/internal/errors"
)

// Cryptographic operation errors.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the cryptographic key size is invalid (must be 32 bytes).
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidNonceSize indicates a nonce does not match its algorithm's required size.
	ErrInvalidNonceSize = errors.Wrap(errors.ErrInvalidInput, "invalid nonce size")

	// ErrInvalidSaltSize indicates a salt is not exactly SaltSize bytes.
	ErrInvalidSaltSize = errors.Wrap(errors.ErrInvalidInput, "invalid salt size")

	// ErrInvalidAadSize indicates an aad value is not exactly AadSize bytes.
	ErrInvalidAadSize = errors.Wrap(errors.ErrInvalidInput, "invalid aad size")

	// ErrInvalidEncryptedKeySize indicates an encrypted key is not exactly EncryptedKeySize bytes.
	ErrInvalidEncryptedKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid encrypted key size")

	// ErrAuthFailed indicates AEAD authentication failed: wrong key, wrong
	// nonce/aad, or tampered ciphertext. This is a normal negative result
	// for trial decryption (e.g. a keyslot tried against the wrong
	// password), not necessarily a fatal error — callers decide.
	ErrAuthFailed = errors.Wrap(errors.ErrInvalidInput, "authentication failed")

	// ErrPasswordHash indicates the password hashing step itself failed
	// (as opposed to the subsequent AEAD unwrap failing).
	ErrPasswordHash = errors.Wrap(errors.ErrInvalidInput, "password hashing failed")

	// ErrMasterKeysNotSet indicates the MASTER_KEYS environment variable is not configured.
	ErrMasterKeysNotSet = errors.Wrap(errors.ErrInvalidInput, "MASTER_KEYS not set")

	// ErrActiveMasterKeyIDNotSet indicates the ACTIVE_MASTER_KEY_ID environment variable is not configured.
	ErrActiveMasterKeyIDNotSet = errors.Wrap(errors.ErrInvalidInput, "ACTIVE_MASTER_KEY_ID not set")

	// ErrInvalidMasterKeysFormat indicates the MASTER_KEYS format is invalid.
	ErrInvalidMasterKeysFormat = errors.Wrap(errors.ErrInvalidInput, "invalid MASTER_KEYS format")

	// ErrInvalidMasterKeyBase64 indicates a master key is not valid base64.
	ErrInvalidMasterKeyBase64 = errors.Wrap(errors.ErrInvalidInput, "invalid master key base64")

	// ErrActiveMasterKeyNotFound indicates the active master key ID was not found in the keychain.
	ErrActiveMasterKeyNotFound = errors.Wrap(errors.ErrInvalidInput, "active master key not found")

	// ErrMasterKeyNotFound indicates a master key with the specified ID was not found.
	ErrMasterKeyNotFound = errors.Wrap(errors.ErrNotFound, "master key not found")

	// ErrKMSProviderNotSet indicates the KMS_PROVIDER environment variable is not configured (required).
	ErrKMSProviderNotSet = errors.Wrap(
		errors.ErrInvalidInput,
		"KMS_PROVIDER is required but not configured (use 'localsecrets' for local development)",
	)

	// ErrKMSKeyURINotSet indicates the KMS_KEY_URI environment variable is not configured (required).
	ErrKMSKeyURINotSet = errors.Wrap(
		errors.ErrInvalidInput,
		"KMS_KEY_URI is required but not configured",
	)

	// ErrKMSDecryptionFailed indicates KMS decryption of master keys failed.
	ErrKMSDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "KMS decryption failed")

	// ErrKMSOpenKeeperFailed indicates opening KMS keeper failed.
	ErrKMSOpenKeeperFailed = errors.Wrap(errors.ErrInvalidInput, "failed to open KMS keeper")
)
