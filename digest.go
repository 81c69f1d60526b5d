package steg

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hasher computes a payload digest recorded in frame metadata.
type Hasher interface {
	// Hash returns the hex-encoded digest of data.
	Hash(data []byte) (string, error)
}

// blake3Hasher implements BLAKE3-256 hashing.
type blake3Hasher struct{}

// BLAKE3Hasher returns a BLAKE3 hasher.
// The result is a hex-encoded 64-character string.
func BLAKE3Hasher() Hasher {
	return &blake3Hasher{}
}

func (h *blake3Hasher) Hash(data []byte) (string, error) {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// sha256Hasher implements SHA-256 hashing.
type sha256Hasher struct{}

// SHA256Hasher returns a SHA-256 hasher.
// The result is a hex-encoded 64-character string.
func SHA256Hasher() Hasher {
	return &sha256Hasher{}
}

func (h *sha256Hasher) Hash(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// builtinHashers returns the default hasher table.
func builtinHashers() map[DigestAlgo]Hasher {
	return map[DigestAlgo]Hasher{
		DigestBLAKE3: BLAKE3Hasher(),
		DigestSHA256: SHA256Hasher(),
	}
}

// verifyDigest recomputes the digest of payload and compares it with want.
func verifyDigest(hashers map[DigestAlgo]Hasher, algo DigestAlgo, want string, payload []byte) error {
	h, ok := hashers[algo]
	if !ok {
		return fmt.Errorf("%w: no hasher for digest %q", ErrCorruptMetadata, algo)
	}
	got, err := h.Hash(payload)
	if err != nil {
		return fmt.Errorf("digest %s: %w", algo, err)
	}
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return ErrChecksumMismatch
	}
	return nil
}
