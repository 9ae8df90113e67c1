package jobs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// HashGenerator is a stand-in Generator that derives a thumbnail key from
// the SHA-256 digest of the source file's contents rather than performing
// any real image or video decoding. No image/thumbnail processing library
// is available to this module, so ThumbnailJob is wired against this
// content-addressed stub; swap in a real Generator implementation once one
// is available.
type HashGenerator struct{}

// NewHashGenerator constructs a HashGenerator.
func NewHashGenerator() *HashGenerator {
	return &HashGenerator{}
}

// Generate reads path and returns a thumbnail key of the form
// "thumb/<sha256-hex>".
func (g *HashGenerator) Generate(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return "thumb/" + hex.EncodeToString(h.Sum(nil)), nil
}
