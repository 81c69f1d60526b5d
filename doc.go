// Package steg hides payloads in the least-significant bits of a carrier.
//
// A carrier is a generic byte stream, an image pixel grid or an audio sample
// stream, exposed as an ordered sequence of byte cells. A passphrase decides
// where embedding starts, how far apart the touched cells are and which low
// bits of each cell carry data. Without the passphrase the embedded bits
// cannot be located.
//
// The passphrase only controls placement. Payloads are not encrypted.
//
// # Key Derivation
//
// The SHA-256 digest of the passphrase yields four parameters:
//
//	position_seed    digest[0:4]   default start cell
//	permutation_seed digest[4:8]   bit order inside each cell
//	bit_offset       digest[8] % 8 rotation of the bit order
//	step_seed        digest[9:13]  cell step, step_seed%5 + 1
//
// # Start Addresses
//
// The start cell is chosen in priority order: an explicit start argument, a
// coordinate suffix on the passphrase ("secret@10,10"), then
// position_seed mod (cells/2). Start strings depend on the carrier:
//
//	generic  "1024"      byte offset
//	image    "10,10"     pixel x,y
//	image    "1010"      pixel index
//	audio    "2.5"       seconds
//
// Encode reports the start it used. EncodeResult.KeyWithStart folds it into
// the passphrase so Decode needs nothing else.
//
// # Frame Layout
//
//	"LSBS" | version | metadata_length (u32 BE) | metadata | payload | 0xAA 0x55
//
// Version 1 stores JSON metadata, version 2 MessagePack and version 3 core
// deterministic CBOR. Metadata records the payload type and length and a
// key validation tag, plus optional payload name, compression and digest.
//
// # Basic Usage
//
//	cover := steg.NewGeneric(buf)
//	res, err := steg.Encode(ctx, cover, steg.Payload{Data: []byte("hi")}, "key1", 1, "0")
//	if err != nil {
//	    return err
//	}
//	out, err := steg.Decode(ctx, res.Carrier, "key1", 1, "0")
//
// Engines carry settings for new frames:
//
//	eng := steg.New().
//	    SetVersion(steg.VersionCBOR).
//	    SetCompression(steg.CompressZstd).
//	    SetDigest(steg.DigestBLAKE3)
//
// # Errors
//
// Failures wrap sentinel errors for errors.Is. ErrBadKeyOrFormat means the
// frame magic was not found, so either the key, lsb count or start is wrong
// or the carrier holds no frame. ErrInvalidKey means a frame was found but
// its validation tag rejects the passphrase. ErrInsufficientCapacity is
// raised before any cell is written.
//
// # Observability
//
// Encode, Decode and Capacity emit capitan signals (SignalEncodeStart,
// SignalEncodeComplete, ...). Passphrases never appear in signal fields.
package steg
