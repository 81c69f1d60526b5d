package steg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Frame layout, MSB-first within every byte:
//
//	magic "LSBS" (4) | version (1) | metadata_length (4, big endian) | metadata | payload | end marker 0xAA 0x55
const (
	magicSize          = 4
	versionSize        = 1
	metadataLengthSize = 4
	headerSize         = magicSize + versionSize + metadataLengthSize

	// maxMetadataSize bounds metadata_length. Larger values are treated as
	// corruption rather than allocated.
	maxMetadataSize = 64 << 10
)

var (
	frameMagic = []byte("LSBS")
	endMarker  = []byte{0xAA, 0x55}
)

// Overhead returns the frame bytes surrounding a payload for a metadata block
// of metadataLength bytes.
func Overhead(metadataLength int) int {
	return headerSize + metadataLength + len(endMarker)
}

// marshalMetadata encodes meta with codec and enforces the size bound.
func marshalMetadata(codec Codec, meta *Metadata) ([]byte, error) {
	raw, err := codec.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	if len(raw) > maxMetadataSize {
		return nil, fmt.Errorf("%w: metadata is %d bytes, limit %d", ErrInvalidParameter, len(raw), maxMetadataSize)
	}
	return raw, nil
}

// buildFrame serialises a complete frame.
func buildFrame(version Version, codec Codec, meta *Metadata, payload []byte) ([]byte, error) {
	raw, err := marshalMetadata(codec, meta)
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 0, Overhead(len(raw))+len(payload))
	frame = append(frame, frameMagic...)
	frame = append(frame, byte(version))
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(raw))) // #nosec G115 -- bounded by maxMetadataSize
	frame = append(frame, raw...)
	frame = append(frame, payload...)
	frame = append(frame, endMarker...)
	return frame, nil
}

// writeFrame places every frame bit into the carrier, lsb bits per visited
// cell in plan order. The caller has already checked capacity; running out of
// cells here is reported as ErrInsufficientCapacity without further writes.
func writeFrame(c *Carrier, plan []uint8, start, step int, frame []byte) error {
	total := len(frame) * 8
	cur := newCursor(start, step, c.Cells())
	for b := 0; b < total; {
		cell, ok := cur.next()
		if !ok {
			return &CapacityError{NeedBits: total, HaveBits: b}
		}
		v, err := c.Cell(cell)
		if err != nil {
			return err
		}
		for _, pos := range plan {
			if b >= total {
				break
			}
			bit := (frame[b/8] >> (7 - uint(b%8))) & 1
			v = v&^(1<<pos) | bit<<pos
			b++
		}
		if err := c.SetCell(cell, v); err != nil {
			return err
		}
	}
	return nil
}

// errCarrierExhausted signals the traversal ran off the carrier mid-byte.
var errCarrierExhausted = errors.New("carrier exhausted")

// bitReader reassembles frame bytes from the cells of one traversal.
type bitReader struct {
	c    *Carrier
	plan []uint8
	cur  *cursor

	acc uint32 // pending bits, oldest in the high positions
	n   int    // number of pending bits
	pos int    // frame bytes consumed so far
}

func newBitReader(c *Carrier, plan []uint8, start, step int) *bitReader {
	return &bitReader{c: c, plan: plan, cur: newCursor(start, step, c.Cells())}
}

func (r *bitReader) readByte() (byte, error) {
	for r.n < 8 {
		cell, ok := r.cur.next()
		if !ok {
			return 0, errCarrierExhausted
		}
		v, err := r.c.Cell(cell)
		if err != nil {
			return 0, err
		}
		for _, pos := range r.plan {
			r.acc = r.acc<<1 | uint32((v>>pos)&1)
			r.n++
		}
	}
	r.n -= 8
	b := byte(r.acc >> uint(r.n))
	r.acc &= 1<<uint(r.n) - 1
	r.pos++
	return b, nil
}

// readFull reads exactly n bytes. A short read is reported as a FrameError
// for field with ErrTruncatedData.
func (r *bitReader) readFull(n int, field string) ([]byte, error) {
	offset := r.pos
	buf := make([]byte, n)
	for i := range buf {
		b, err := r.readByte()
		if err != nil {
			return nil, newFrameError(ErrTruncatedData, field, offset, err)
		}
		buf[i] = b
	}
	return buf, nil
}

// readHeader parses magic, version and metadata.
func readHeader(r *bitReader, codecs map[Version]Codec) (Version, *Metadata, error) {
	magic, err := r.readFull(magicSize, "magic")
	if err != nil {
		return 0, nil, err
	}
	if !bytes.Equal(magic, frameMagic) {
		return 0, nil, newFrameError(ErrBadKeyOrFormat, "magic", 0, nil)
	}

	vb, err := r.readFull(versionSize, "version")
	if err != nil {
		return 0, nil, err
	}
	version := Version(vb[0])
	codec, ok := codecs[version]
	if !ok {
		return 0, nil, newFrameError(ErrUnsupportedVersion, "version", magicSize, fmt.Errorf("version %d", version))
	}

	lb, err := r.readFull(metadataLengthSize, "metadata_length")
	if err != nil {
		return 0, nil, err
	}
	length := binary.BigEndian.Uint32(lb)
	if length == 0 || length > maxMetadataSize {
		return 0, nil, newFrameError(ErrCorruptMetadata, "metadata_length", magicSize+versionSize,
			fmt.Errorf("length %d outside (0, %d]", length, maxMetadataSize))
	}

	raw, err := r.readFull(int(length), "metadata")
	if err != nil {
		return 0, nil, err
	}
	var meta Metadata
	if err := codec.Unmarshal(raw, &meta); err != nil {
		return 0, nil, newFrameError(ErrCorruptMetadata, "metadata", headerSize, err)
	}
	if err := meta.validate(); err != nil {
		return 0, nil, newFrameError(ErrCorruptMetadata, "metadata", headerSize, err)
	}
	return version, &meta, nil
}

// readPayload scans for the end marker one byte at a time. The marker must
// begin exactly at length bytes; earlier occurrences are payload content.
// Reading length+2 bytes without finding it there is ErrLengthMismatch.
func readPayload(r *bitReader, length int) ([]byte, error) {
	offset := r.pos
	var buf []byte
	for {
		b, err := r.readByte()
		if err != nil {
			return nil, newFrameError(ErrTruncatedData, "payload", offset,
				fmt.Errorf("%w after %d of %d payload bytes", err, min(len(buf), length), length))
		}
		buf = append(buf, b)

		if n := len(buf); n >= len(endMarker) && n-len(endMarker) == length {
			if bytes.Equal(buf[length:], endMarker) {
				return buf[:length], nil
			}
			return nil, newFrameError(ErrLengthMismatch, "end_marker", offset+length,
				fmt.Errorf("no end marker after %d payload bytes", length))
		}
	}
}
