// Package domain defines the cryptographic building blocks of a FileHeader:
// Keyslot (a password-wrapped master key) and HeaderObject (an encrypted
// metadata blob), plus the errors both can return.
package domain

import (
	"github.com/allisson/jobcrypt/internal/errors"
)

// Header-level errors shared by Keyslot, HeaderObject, and FileHeader.
var (
	// ErrUnsupportedVersion indicates a FileHeader's on-disk version byte
	// does not match any registered codec.
	ErrUnsupportedVersion = errors.Wrap(errors.ErrInvalidInput, "unsupported header version")

	// ErrTooManyKeyslots indicates a FileHeader already holds the maximum
	// number of keyslots its version allows.
	ErrTooManyKeyslots = errors.Wrap(errors.ErrInvalidInput, "too many keyslots")

	// ErrTooManyObjects indicates a FileHeader already holds the maximum
	// number of objects its version allows.
	ErrTooManyObjects = errors.Wrap(errors.ErrInvalidInput, "too many objects")

	// ErrIndexOutOfRange indicates a keyslot or object index is outside
	// the bounds of the header's current slice.
	ErrIndexOutOfRange = errors.Wrap(errors.ErrInvalidInput, "index out of range")

	// ErrIncorrectPassword indicates no keyslot in a header could be
	// unwrapped with the supplied password. It is the password-flow
	// equivalent of ErrAuthFailed — every keyslot trial failed.
	ErrIncorrectPassword = errors.Wrap(errors.ErrInvalidInput, "incorrect password")

	// ErrNoKeyslots indicates an operation that requires at least one
	// keyslot was attempted on a header with none.
	ErrNoKeyslots = errors.Wrap(errors.ErrInvalidInput, "header has no keyslots")
)
