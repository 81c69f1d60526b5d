package steg

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/hkdf"
)

// maxStep bounds the traversal step; steps fall in [1, maxStep].
const maxStep = 5

// validationTagSize is the number of HKDF output bytes kept for the key
// validation tag. Hex encoded it is 16 characters.
const validationTagSize = 8

var validationInfo = []byte("steg/validation/v1")

// DerivedKey holds the placement parameters derived from a passphrase.
// Identical passphrases always produce identical keys.
type DerivedKey struct {
	PositionSeed    uint32 // digest bytes 0-3, big endian
	PermutationSeed uint32 // digest bytes 4-7, big endian
	BitOffset       uint8  // digest byte 8 mod 8
	StepSeed        uint32 // digest bytes 9-12, big endian
}

// Derive computes the DerivedKey for passphrase from its SHA-256 digest.
// It never fails; empty passphrases are rejected by the Engine before
// derivation.
func Derive(passphrase string) DerivedKey {
	sum := sha256.Sum256([]byte(passphrase))
	return DerivedKey{
		PositionSeed:    binary.BigEndian.Uint32(sum[0:4]),
		PermutationSeed: binary.BigEndian.Uint32(sum[4:8]),
		BitOffset:       sum[8] % 8,
		StepSeed:        binary.BigEndian.Uint32(sum[9:13]),
	}
}

// Step returns the fixed cell increment used by traversal.
func (k DerivedKey) Step() int {
	return int(k.StepSeed%maxStep) + 1
}

// BitPlan returns the ordered bit positions written in every cell for lsb.
func (k DerivedKey) BitPlan(lsb int) []uint8 {
	return PermuteBits(k.PermutationSeed, lsb, k.BitOffset)
}

// ValidationTag binds a passphrase to a payload length. The tag is stored in
// frame metadata and recomputed on decode to tell a wrong passphrase apart
// from a carrier that holds no frame.
func ValidationTag(passphrase string, payloadLength int) string {
	info := make([]byte, len(validationInfo)+8)
	copy(info, validationInfo)
	binary.BigEndian.PutUint64(info[len(validationInfo):], uint64(payloadLength)) // #nosec G115 -- lengths are non-negative

	reader := hkdf.New(sha256.New, []byte(passphrase), nil, info)
	tag := make([]byte, validationTagSize)
	if _, err := io.ReadFull(reader, tag); err != nil {
		// HKDF-SHA256 can emit 255*32 bytes; eight never fail.
		panic("steg: hkdf read failed: " + err.Error())
	}
	return hex.EncodeToString(tag)
}
