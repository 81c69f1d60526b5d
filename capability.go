package steg

import "strconv"

// Bounds on the number of low-order bits taken from each cell.
const (
	minLSB = 1
	maxLSB = 8
)

// Version identifies the frame layout and the metadata encoding it carries.
// Everything but the metadata block is identical across versions.
type Version uint8

const (
	// VersionJSON stores metadata as JSON. This is the default.
	VersionJSON Version = 1

	// VersionMsgpack stores metadata as MessagePack.
	VersionMsgpack Version = 2

	// VersionCBOR stores metadata as core deterministic CBOR.
	VersionCBOR Version = 3
)

func (v Version) String() string {
	switch v {
	case VersionJSON:
		return "json"
	case VersionMsgpack:
		return "msgpack"
	case VersionCBOR:
		return "cbor"
	default:
		return "v" + strconv.Itoa(int(v))
	}
}

// Compression represents a payload compression recorded in frame metadata.
type Compression string

const (
	// CompressNone stores the payload as given.
	CompressNone Compression = "none"

	// CompressLZ4 favours speed.
	CompressLZ4 Compression = "lz4"

	// CompressZstd favours ratio.
	CompressZstd Compression = "zstd"
)

// DigestAlgo represents a payload digest recorded in frame metadata.
type DigestAlgo string

const (
	// DigestNone records no digest.
	DigestNone DigestAlgo = "none"

	// DigestBLAKE3 records a BLAKE3-256 digest.
	DigestBLAKE3 DigestAlgo = "blake3"

	// DigestSHA256 records a SHA-256 digest.
	DigestSHA256 DigestAlgo = "sha256"
)

// PayloadType classifies the embedded payload for the receiver.
type PayloadType string

const (
	// PayloadText is UTF-8 text.
	PayloadText PayloadType = "text"

	// PayloadImage is an encoded image such as PNG, JPEG, GIF or BMP.
	PayloadImage PayloadType = "image"

	// PayloadPDF is a PDF document.
	PayloadPDF PayloadType = "pdf"

	// PayloadExe is a Windows executable.
	PayloadExe PayloadType = "exe"

	// PayloadOther is any payload not classified above.
	PayloadOther PayloadType = "other"
)

var validVersions = map[Version]bool{
	VersionJSON:    true,
	VersionMsgpack: true,
	VersionCBOR:    true,
}

var validCompressions = map[Compression]bool{
	CompressNone: true,
	CompressLZ4:  true,
	CompressZstd: true,
}

var validDigestAlgos = map[DigestAlgo]bool{
	DigestNone:   true,
	DigestBLAKE3: true,
	DigestSHA256: true,
}

var validPayloadTypes = map[PayloadType]bool{
	PayloadText:  true,
	PayloadImage: true,
	PayloadPDF:   true,
	PayloadExe:   true,
	PayloadOther: true,
}

// IsValidVersion returns true if the version is a known frame version.
func IsValidVersion(v Version) bool {
	return validVersions[v]
}

// IsValidCompression returns true if the compression is known.
func IsValidCompression(c Compression) bool {
	return validCompressions[c]
}

// IsValidDigestAlgo returns true if the digest algorithm is known.
func IsValidDigestAlgo(algo DigestAlgo) bool {
	return validDigestAlgos[algo]
}

// IsValidPayloadType returns true if the payload type is known.
func IsValidPayloadType(pt PayloadType) bool {
	return validPayloadTypes[pt]
}

// IsValidLSB returns true if lsb is a usable bit count per cell.
func IsValidLSB(lsb int) bool {
	return lsb >= minLSB && lsb <= maxLSB
}
