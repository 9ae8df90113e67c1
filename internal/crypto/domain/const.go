package domain

// Algorithm identifies the AEAD cipher used to encrypt a keyslot, header
// object, or file body. The set is closed and algorithm-agile: a header
// records which algorithm protects it so future versions can add ciphers
// without breaking readers of older ones.
type Algorithm string

const (
	// XChaCha20Poly1305 uses a 24-byte extended nonce, making it safe to
	// generate nonces at random without a meaningful collision risk even
	// across very large numbers of encryptions under one key.
	XChaCha20Poly1305 Algorithm = "xchacha20-poly1305"

	// Aes256Gcm uses AES-256 in Galois/Counter Mode with a 12-byte nonce.
	// Prefer this on hardware with AES-NI acceleration.
	Aes256Gcm Algorithm = "aes-256-gcm"
)

const (
	// NonceSizeXChaCha20Poly1305 is the extended nonce size used by XChaCha20-Poly1305.
	NonceSizeXChaCha20Poly1305 = 24
	// NonceSizeAes256Gcm is the standard GCM nonce size.
	NonceSizeAes256Gcm = 12
)

// NonceSize returns the nonce length in bytes required by alg, or 0 for an
// unrecognized algorithm.
func (a Algorithm) NonceSize() int {
	switch a {
	case XChaCha20Poly1305:
		return NonceSizeXChaCha20Poly1305
	case Aes256Gcm:
		return NonceSizeAes256Gcm
	default:
		return 0
	}
}

// Valid reports whether a is one of the recognized algorithms.
func (a Algorithm) Valid() bool {
	switch a {
	case XChaCha20Poly1305, Aes256Gcm:
		return true
	default:
		return false
	}
}

// Byte values for Algorithm on the wire. These are independent of the
// string constants above, which are used in logs and config; the wire
// format uses a single byte to keep the header codec compact.
const (
	algorithmByteXChaCha20Poly1305 byte = 1
	algorithmByteAes256Gcm         byte = 2
)

// MarshalByte encodes a into its one-byte wire representation.
func (a Algorithm) MarshalByte() (byte, error) {
	switch a {
	case XChaCha20Poly1305:
		return algorithmByteXChaCha20Poly1305, nil
	case Aes256Gcm:
		return algorithmByteAes256Gcm, nil
	default:
		return 0, ErrUnsupportedAlgorithm
	}
}

// AlgorithmFromByte decodes the wire representation written by MarshalByte.
func AlgorithmFromByte(b byte) (Algorithm, error) {
	switch b {
	case algorithmByteXChaCha20Poly1305:
		return XChaCha20Poly1305, nil
	case algorithmByteAes256Gcm:
		return Aes256Gcm, nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}

// HashingAlgorithm identifies the password-hashing function used to turn a
// user-supplied password into key material for a keyslot. The set is
// closed, matching Algorithm's agility model.
type HashingAlgorithm string

// Argon2id is the only supported hashing algorithm: memory-hard, resistant
// to both GPU and side-channel attacks.
const Argon2id HashingAlgorithm = "argon2id"

// Valid reports whether h is a recognized hashing algorithm.
func (h HashingAlgorithm) Valid() bool {
	return h == Argon2id
}

const hashingAlgorithmByteArgon2id byte = 1

// MarshalByte encodes h into its one-byte wire representation.
func (h HashingAlgorithm) MarshalByte() (byte, error) {
	if h != Argon2id {
		return 0, ErrUnsupportedAlgorithm
	}
	return hashingAlgorithmByteArgon2id, nil
}

// HashingAlgorithmFromByte decodes the wire representation written by MarshalByte.
func HashingAlgorithmFromByte(b byte) (HashingAlgorithm, error) {
	if b != hashingAlgorithmByteArgon2id {
		return "", ErrUnsupportedAlgorithm
	}
	return Argon2id, nil
}

// Argon2idParams are the Argon2id tuning parameters used to hash a keyslot
// password. The caller supplies them both when creating a keyslot and when
// unlocking one. They are not stored per-keyslot: a keyslot only records
// which algorithm protects it, not with which parameters, so a keyslot
// unlocks only when given the same parameters it was created with.
type Argon2idParams struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultArgon2idParams is a moderate, server-side policy: 64 MiB of
// memory, one pass, four lanes.
var DefaultArgon2idParams = Argon2idParams{
	Time:      1,
	MemoryKiB: 64 * 1024,
	Threads:   4,
}
