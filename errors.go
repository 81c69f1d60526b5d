package steg

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrInvalidParameter indicates a bad lsb count, an empty passphrase or payload,
	// or a start address that does not parse for the carrier kind.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrOutOfRange indicates a cell index or coordinate outside the carrier.
	ErrOutOfRange = errors.New("address out of range")

	// ErrInsufficientCapacity indicates the frame does not fit between the start cell
	// and the end of the carrier. Raised before any cell is written.
	ErrInsufficientCapacity = errors.New("insufficient capacity")

	// ErrBadKeyOrFormat indicates the frame magic did not match. Either the passphrase,
	// lsb count or start is wrong, or the carrier holds no frame at all.
	ErrBadKeyOrFormat = errors.New("bad key or not a stego carrier")

	// ErrInvalidKey indicates the frame header parsed but the key validation tag
	// does not match the supplied passphrase.
	ErrInvalidKey = errors.New("invalid key")

	// ErrUnsupportedVersion indicates a frame version this package cannot parse.
	ErrUnsupportedVersion = errors.New("unsupported frame version")

	// ErrCorruptMetadata indicates the metadata block could not be decoded or is
	// missing required fields.
	ErrCorruptMetadata = errors.New("corrupt metadata")

	// ErrLengthMismatch indicates the end marker position disagrees with the
	// payload length recorded in metadata.
	ErrLengthMismatch = errors.New("payload length mismatch")

	// ErrTruncatedData indicates the carrier ended before the frame was fully read.
	ErrTruncatedData = errors.New("truncated data")

	// ErrChecksumMismatch indicates the payload digest recorded in metadata does not
	// match the extracted payload.
	ErrChecksumMismatch = errors.New("payload checksum mismatch")

	// ErrCorruptPayload indicates the extracted payload could not be decompressed.
	ErrCorruptPayload = errors.New("corrupt payload")
)

// ParamError represents a rejected call parameter.
// It wraps a sentinel error with the parameter name and offending value.
type ParamError struct {
	Err   error  // Underlying sentinel error (ErrInvalidParameter, ErrOutOfRange)
	Param string // Parameter name (lsb_count, passphrase, start, ...)
	Value string // Offending value, already masked where sensitive
}

func (e *ParamError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %s %q", e.Err.Error(), e.Param, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Param)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

// CapacityError reports how many bits a frame needed against how many the
// carrier could provide from the start cell.
type CapacityError struct {
	NeedBits int
	HaveBits int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: frame needs %d bits, carrier provides %d", ErrInsufficientCapacity.Error(), e.NeedBits, e.HaveBits)
}

func (e *CapacityError) Unwrap() error {
	return ErrInsufficientCapacity
}

// FrameError represents a structural problem found while reading a frame.
type FrameError struct {
	Err    error  // Underlying sentinel error (ErrBadKeyOrFormat, ErrTruncatedData, ...)
	Field  string // Frame field being read (magic, version, metadata, payload, ...)
	Offset int    // Byte offset of the field within the frame
	Cause  error  // Original error from a metadata codec or decompressor
}

func (e *FrameError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s at %s (frame byte %d): %v", e.Err.Error(), e.Field, e.Offset, e.Cause)
	}
	return fmt.Sprintf("%s at %s (frame byte %d)", e.Err.Error(), e.Field, e.Offset)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// newParamError creates a ParamError for a rejected parameter.
func newParamError(sentinel error, param, value string) error {
	return &ParamError{
		Err:   sentinel,
		Param: param,
		Value: value,
	}
}

// newFrameError creates a FrameError for frame parsing failures.
func newFrameError(sentinel error, field string, offset int, cause error) error {
	return &FrameError{
		Err:    sentinel,
		Field:  field,
		Offset: offset,
		Cause:  cause,
	}
}
