package steg

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// maxOriginalLength bounds the decompression buffer a frame may request.
const maxOriginalLength = 256 << 20

// errIncompressible is returned by the compressors when the output would
// not be smaller than the input. The payload is then stored uncompressed.
var errIncompressible = errors.New("payload is incompressible")

// zstd.Encoder and zstd.Decoder are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("steg: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxOriginalLength))
	if err != nil {
		panic("steg: zstd decoder initialization failed: " + err.Error())
	}
}

// compressPayload applies c to data. When the result would not shrink the
// payload it falls back to CompressNone and returns data unchanged; the
// Compression actually applied is returned alongside the bytes.
func compressPayload(data []byte, c Compression) ([]byte, Compression, error) {
	var (
		out []byte
		err error
	)
	if len(data) > maxOriginalLength {
		return data, CompressNone, nil
	}
	switch c {
	case "", CompressNone:
		return data, CompressNone, nil
	case CompressLZ4:
		out, err = compressLZ4(data)
	case CompressZstd:
		out, err = compressZstd(data)
	default:
		return nil, "", newParamError(ErrInvalidParameter, "compression", string(c))
	}
	if errors.Is(err, errIncompressible) {
		return data, CompressNone, nil
	}
	if err != nil {
		return nil, "", err
	}
	return out, c, nil
}

// decompressPayload reverses compressPayload. originalLength must match the
// decompressed size exactly.
func decompressPayload(data []byte, c Compression, originalLength int) ([]byte, error) {
	switch c {
	case "", CompressNone:
		return data, nil
	case CompressLZ4:
		return decompressLZ4(data, originalLength)
	case CompressZstd:
		return decompressZstd(data, originalLength)
	default:
		return nil, fmt.Errorf("unsupported compression %q", c)
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// CompressBlock returns 0 for incompressible input.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return dst[:written], nil
}

func decompressLZ4(data []byte, originalLength int) ([]byte, error) {
	dst := make([]byte, originalLength)
	read, err := lz4.UncompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != originalLength {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, originalLength)
	}
	return dst, nil
}

func compressZstd(data []byte) ([]byte, error) {
	out := zstdEncoder.EncodeAll(data, nil)
	if len(out) >= len(data) {
		return nil, errIncompressible
	}
	return out, nil
}

func decompressZstd(data []byte, originalLength int) ([]byte, error) {
	out, err := zstdDecoder.DecodeAll(data, make([]byte, 0, originalLength))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(out) != originalLength {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(out), originalLength)
	}
	return out, nil
}
