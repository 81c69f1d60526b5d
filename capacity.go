package steg

import (
	"strconv"
	"time"
)

// CapacityReport describes how many bits a carrier can hold from a start cell,
// with context in the carrier's own units.
type CapacityReport struct {
	Kind            Kind `json:"-"`
	LSB             int  `json:"lsb"`
	StartCell       int  `json:"start_cell"`
	StartOffsetBits int  `json:"start_offset_bits"`
	Bits            int  `json:"capacity_bits"`
	Bytes           int  `json:"capacity_bytes"`

	// Image context.
	Width    int `json:"width,omitempty"`
	Height   int `json:"height,omitempty"`
	Channels int `json:"channels,omitempty"`
	StartX   int `json:"start_x,omitempty"`
	StartY   int `json:"start_y,omitempty"`

	// Audio context.
	SampleRate    int           `json:"sample_rate,omitempty"`
	Duration      time.Duration `json:"duration,omitempty"`
	BitsPerSecond int           `json:"bits_per_second,omitempty"`
	StartSeconds  float64       `json:"start_seconds,omitempty"`
}

// CapacityOf computes the raw capacity of c from startCell using lsb bits per
// cell: (cells - startCell) * lsb. It ignores the traversal step and frame
// overhead; see Engine.MaxPayload for the payload size a key can actually
// embed.
func CapacityOf(c *Carrier, lsb, startCell int) (CapacityReport, error) {
	if !IsValidLSB(lsb) {
		return CapacityReport{}, newParamError(ErrInvalidParameter, "lsb_count", strconv.Itoa(lsb))
	}
	cells := c.Cells()
	if startCell < 0 || startCell > cells {
		return CapacityReport{}, newParamError(ErrOutOfRange, "start", strconv.Itoa(startCell))
	}

	bits := (cells - startCell) * lsb
	capacity := CapacityReport{
		Kind:            c.Kind(),
		LSB:             lsb,
		StartCell:       startCell,
		StartOffsetBits: startCell * lsb,
		Bits:            bits,
		Bytes:           bits / 8,
	}

	switch c.Kind() {
	case KindImage:
		capacity.Width = c.Width()
		capacity.Height = c.Height()
		capacity.Channels = c.Channels()
		capacity.StartX, capacity.StartY = c.PixelOf(startCell)
	case KindAudio:
		capacity.Channels = c.Channels()
		capacity.SampleRate = c.SampleRate()
		capacity.Duration = c.Duration()
		capacity.BitsPerSecond = c.SampleRate() * c.Channels() * lsb
		capacity.StartSeconds = c.SecondsOf(startCell)
	}
	return capacity, nil
}

// AvailableBytes returns the payload bytes left once a frame with a metadata
// block of metadataLength bytes is accounted for, ignoring the traversal step.
func (c CapacityReport) AvailableBytes(metadataLength int) int {
	return max(c.Bytes-Overhead(metadataLength), 0)
}
