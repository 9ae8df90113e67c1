package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	cryptoDomain "github.com/allisson/jobcrypt/internal/crypto/domain"
	"github.com/allisson/jobcrypt/internal/header"
)

// parseHeaderAlgorithm converts algorithm string to cryptoDomain.Algorithm type.
// Returns an error if the algorithm string is invalid.
func parseHeaderAlgorithm(algorithmStr string) (cryptoDomain.Algorithm, error) {
	switch algorithmStr {
	case "xchacha20-poly1305":
		return cryptoDomain.XChaCha20Poly1305, nil
	case "aes-256-gcm":
		return cryptoDomain.Aes256Gcm, nil
	default:
		return "", fmt.Errorf(
			"invalid algorithm: %s (valid options: xchacha20-poly1305, aes-256-gcm)",
			algorithmStr,
		)
	}
}

// RunCreateHeader creates a new FileHeader protected by algorithmStr, adds a first
// keyslot wrapping a fresh master key under password, and writes the serialized
// header to headerPath.
func RunCreateHeader(
	ctx context.Context,
	hashingParams cryptoDomain.Argon2idParams,
	logger *slog.Logger,
	headerPath, algorithmStr string,
	password []byte,
) error {
	algorithm, err := parseHeaderAlgorithm(algorithmStr)
	if err != nil {
		return err
	}

	h, err := header.NewFileHeader(algorithm)
	if err != nil {
		return fmt.Errorf("failed to create header: %w", err)
	}

	masterKey, err := cryptoDomain.GenerateKey()
	if err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}
	defer masterKey.Zero()

	if err := h.AddKeyslot(ctx, hashingParams, password, masterKey); err != nil {
		return fmt.Errorf("failed to add keyslot: %w", err)
	}

	data, err := h.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize header: %w", err)
	}

	if err := os.WriteFile(headerPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write header file: %w", err)
	}

	logger.Info("header created",
		slog.String("path", headerPath),
		slog.String("algorithm", string(algorithm)),
	)
	return nil
}

// RunAddKeyslot unlocks headerPath's master key with existingPassword, adds a new
// keyslot wrapping the same master key under newPassword, and rewrites headerPath.
func RunAddKeyslot(
	ctx context.Context,
	hashingParams cryptoDomain.Argon2idParams,
	logger *slog.Logger,
	headerPath string,
	existingPassword, newPassword []byte,
) error {
	data, err := os.ReadFile(headerPath)
	if err != nil {
		return fmt.Errorf("failed to read header file: %w", err)
	}

	h, err := header.Deserialize(data)
	if err != nil {
		return fmt.Errorf("failed to parse header: %w", err)
	}

	masterKey, err := h.DecryptMasterKeyWithPassword(ctx, hashingParams, existingPassword)
	if err != nil {
		return fmt.Errorf("failed to unlock header: %w", err)
	}
	defer masterKey.Zero()

	if err := h.AddKeyslot(ctx, hashingParams, newPassword, masterKey); err != nil {
		return fmt.Errorf("failed to add keyslot: %w", err)
	}

	out, err := h.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize header: %w", err)
	}

	if err := os.WriteFile(headerPath, out, 0600); err != nil {
		return fmt.Errorf("failed to write header file: %w", err)
	}

	logger.Info("keyslot added", slog.String("path", headerPath), slog.Int("keyslot_count", len(h.Keyslots)))
	return nil
}

// RunUnlockHeader reads headerPath and verifies that password unlocks one of its
// keyslots, logging the outcome without printing the recovered master key.
func RunUnlockHeader(
	ctx context.Context,
	hashingParams cryptoDomain.Argon2idParams,
	logger *slog.Logger,
	headerPath string,
	password []byte,
) error {
	data, err := os.ReadFile(headerPath)
	if err != nil {
		return fmt.Errorf("failed to read header file: %w", err)
	}

	h, err := header.Deserialize(data)
	if err != nil {
		return fmt.Errorf("failed to parse header: %w", err)
	}

	masterKey, err := h.DecryptMasterKeyWithPassword(ctx, hashingParams, password)
	if err != nil {
		return fmt.Errorf("failed to unlock header: %w", err)
	}
	masterKey.Zero()

	logger.Info("header unlocked successfully",
		slog.String("path", headerPath),
		slog.Int("keyslot_count", len(h.Keyslots)),
		slog.Int("object_count", len(h.Objects)),
	)
	return nil
}
