package header

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	cryptoDomain "github.com/allisson/jobcrypt/internal/crypto/domain"
	headerDomain "github.com/allisson/jobcrypt/internal/header/domain"
)

// magic identifies a jobcrypt FileHeader. A reader that sees a different
// 4-byte prefix knows immediately it is not looking at a header this
// module produced, before even checking the version byte.
var magic = [4]byte{'S', 'D', 'F', 'H'}

// codecFunc decodes a version-specific body (everything after magic and
// version) into h. Registered per version so a future version's decoder
// never has to touch v1's.
type codecFunc func(body []byte, h *FileHeader) error

var codecs = map[byte]codecFunc{
	Version1: decodeV1,
}

// Serialize encodes h as magic + version + version-specific body, all
// integers little-endian; byte fields are length-prefixed with a uint32 and
// the keyslot and object lists with a one-byte count.
func (h *FileHeader) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(magic[:])
	buf.WriteByte(h.Version)

	algByte, err := h.Algorithm.MarshalByte()
	if err != nil {
		return nil, err
	}
	buf.WriteByte(algByte)

	buf.Write(h.Aad.Bytes())
	writeLenPrefixed(&buf, h.Nonce.Bytes())

	if len(h.Keyslots) > 0xFF {
		return nil, headerDomain.ErrTooManyKeyslots
	}
	buf.WriteByte(byte(len(h.Keyslots)))
	for _, slot := range h.Keyslots {
		if err := encodeKeyslot(&buf, slot); err != nil {
			return nil, err
		}
	}

	if len(h.Objects) > 0xFF {
		return nil, headerDomain.ErrTooManyObjects
	}
	buf.WriteByte(byte(len(h.Objects)))
	for _, obj := range h.Objects {
		encodeObject(&buf, obj)
	}

	return buf.Bytes(), nil
}

// Deserialize decodes b as a FileHeader. It reads magic and version before
// touching the rest of the buffer, so an unsupported version is rejected
// with headerDomain.ErrUnsupportedVersion without attempting to parse a
// body it doesn't understand.
func Deserialize(b []byte) (*FileHeader, error) {
	if len(b) < 5 {
		return nil, fmt.Errorf("%w: header too short", headerDomain.ErrUnsupportedVersion)
	}
	if !bytes.Equal(b[:4], magic[:]) {
		return nil, fmt.Errorf("%w: bad magic", headerDomain.ErrUnsupportedVersion)
	}

	version := b[4]
	decode, ok := codecs[version]
	if !ok {
		return nil, headerDomain.ErrUnsupportedVersion
	}

	h := &FileHeader{Version: version}
	if err := decode(b[5:], h); err != nil {
		return nil, err
	}
	return h, nil
}

func decodeV1(body []byte, h *FileHeader) error {
	r := bytes.NewReader(body)

	algByte, err := readByte(r)
	if err != nil {
		return err
	}
	algorithm, err := cryptoDomain.AlgorithmFromByte(algByte)
	if err != nil {
		return err
	}
	h.Algorithm = algorithm

	aadBytes := make([]byte, cryptoDomain.AadSize)
	if _, err := readFull(r, aadBytes); err != nil {
		return err
	}
	aad, err := cryptoDomain.AadFromBytes(aadBytes)
	if err != nil {
		return err
	}
	h.Aad = aad

	nonceBytes, err := readLenPrefixed(r)
	if err != nil {
		return err
	}
	nonce, err := cryptoDomain.NonceFromBytes(nonceBytes, algorithm)
	if err != nil {
		return err
	}
	h.Nonce = nonce

	keyslotCount, err := readByte(r)
	if err != nil {
		return err
	}
	if int(keyslotCount) > KeyslotLimit {
		return headerDomain.ErrTooManyKeyslots
	}
	h.Keyslots = make([]headerDomain.Keyslot, 0, keyslotCount)
	for i := byte(0); i < keyslotCount; i++ {
		slot, err := decodeKeyslot(r)
		if err != nil {
			return err
		}
		h.Keyslots = append(h.Keyslots, slot)
	}

	objectCount, err := readByte(r)
	if err != nil {
		return err
	}
	if int(objectCount) > ObjectLimit {
		return headerDomain.ErrTooManyObjects
	}
	h.Objects = make([]headerDomain.HeaderObject, 0, objectCount)
	for i := byte(0); i < objectCount; i++ {
		obj, err := decodeObject(r, algorithm)
		if err != nil {
			return err
		}
		h.Objects = append(h.Objects, obj)
	}

	return nil
}

func encodeKeyslot(buf *bytes.Buffer, slot headerDomain.Keyslot) error {
	hashByte, err := slot.HashingAlgorithm.MarshalByte()
	if err != nil {
		return err
	}
	buf.WriteByte(hashByte)

	algByte, err := slot.Algorithm.MarshalByte()
	if err != nil {
		return err
	}
	buf.WriteByte(algByte)

	buf.Write(slot.Salt.Bytes())
	buf.Write(slot.ContentSalt.Bytes())
	writeLenPrefixed(buf, slot.Nonce.Bytes())
	buf.Write(slot.EncryptedMasterKey.Bytes())

	return nil
}

func decodeKeyslot(r *bytes.Reader) (headerDomain.Keyslot, error) {
	hashByte, err := readByte(r)
	if err != nil {
		return headerDomain.Keyslot{}, err
	}
	hashingAlgorithm, err := cryptoDomain.HashingAlgorithmFromByte(hashByte)
	if err != nil {
		return headerDomain.Keyslot{}, err
	}

	algByte, err := readByte(r)
	if err != nil {
		return headerDomain.Keyslot{}, err
	}
	algorithm, err := cryptoDomain.AlgorithmFromByte(algByte)
	if err != nil {
		return headerDomain.Keyslot{}, err
	}

	saltBytes := make([]byte, cryptoDomain.SaltSize)
	if _, err := readFull(r, saltBytes); err != nil {
		return headerDomain.Keyslot{}, err
	}
	salt, err := cryptoDomain.SaltFromBytes(saltBytes)
	if err != nil {
		return headerDomain.Keyslot{}, err
	}

	contentSaltBytes := make([]byte, cryptoDomain.SaltSize)
	if _, err := readFull(r, contentSaltBytes); err != nil {
		return headerDomain.Keyslot{}, err
	}
	contentSalt, err := cryptoDomain.ContentSaltFromBytes(contentSaltBytes)
	if err != nil {
		return headerDomain.Keyslot{}, err
	}

	nonceBytes, err := readLenPrefixed(r)
	if err != nil {
		return headerDomain.Keyslot{}, err
	}
	nonce, err := cryptoDomain.NonceFromBytes(nonceBytes, algorithm)
	if err != nil {
		return headerDomain.Keyslot{}, err
	}

	encKeyBytes := make([]byte, cryptoDomain.EncryptedKeySize)
	if _, err := readFull(r, encKeyBytes); err != nil {
		return headerDomain.Keyslot{}, err
	}
	encryptedMasterKey, err := cryptoDomain.EncryptedKeyFromBytes(encKeyBytes)
	if err != nil {
		return headerDomain.Keyslot{}, err
	}

	return headerDomain.Keyslot{
		HashingAlgorithm:   hashingAlgorithm,
		Algorithm:          algorithm,
		Salt:               salt,
		ContentSalt:        contentSalt,
		Nonce:              nonce,
		EncryptedMasterKey: encryptedMasterKey,
	}, nil
}

func encodeObject(buf *bytes.Buffer, obj headerDomain.HeaderObject) {
	buf.WriteByte(byte(obj.Type))
	writeLenPrefixed(buf, obj.Nonce.Bytes())
	writeLenPrefixed(buf, obj.Ciphertext)
}

func decodeObject(r *bytes.Reader, algorithm cryptoDomain.Algorithm) (headerDomain.HeaderObject, error) {
	typeByte, err := readByte(r)
	if err != nil {
		return headerDomain.HeaderObject{}, err
	}
	objectType := headerDomain.ObjectType(typeByte)
	if !objectType.Valid() {
		return headerDomain.HeaderObject{}, fmt.Errorf("invalid object type: %d", typeByte)
	}

	nonceBytes, err := readLenPrefixed(r)
	if err != nil {
		return headerDomain.HeaderObject{}, err
	}
	nonce, err := cryptoDomain.NonceFromBytes(nonceBytes, algorithm)
	if err != nil {
		return headerDomain.HeaderObject{}, err
	}

	ciphertext, err := readLenPrefixed(r)
	if err != nil {
		return headerDomain.HeaderObject{}, err
	}

	return headerDomain.HeaderObject{
		Type:       objectType,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}, nil
}

func writeLenPrefixed(buf *bytes.Buffer, b []byte) {
	var lenBytes [4]byte
	binary.LittleEndian.PutUint32(lenBytes[:], uint32(len(b)))
	buf.Write(lenBytes[:])
	buf.Write(b)
}

func readLenPrefixed(r *bytes.Reader) ([]byte, error) {
	var lenBytes [4]byte
	if _, err := readFull(r, lenBytes[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBytes[:])
	b := make([]byte, n)
	if _, err := readFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func readByte(r *bytes.Reader) (byte, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("read header byte: %w", err)
	}
	return b, nil
}

func readFull(r *bytes.Reader, b []byte) (int, error) {
	n, err := io.ReadFull(r, b)
	if err != nil {
		return n, fmt.Errorf("read header field: %w", err)
	}
	return n, nil
}
