package steg

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind identifies the medium behind a Carrier.
type Kind uint8

const (
	// KindGeneric addresses a raw byte stream: cell i is byte i.
	KindGeneric Kind = iota

	// KindImage addresses interleaved pixel channels in row-major order.
	KindImage

	// KindAudio addresses interleaved little-endian PCM samples.
	KindAudio
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindImage:
		return "image"
	case KindAudio:
		return "audio"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Carrier exposes a cover medium as an ordered sequence of byte cells.
//
// A Carrier is a tagged variant: the kind is fixed at construction and
// selects how coordinates map to cells. Each cell is one byte; for audio it is
// the least-significant byte of a sample. The Carrier only reads and writes
// whole cells; which bits of a cell are touched is decided by the bit plan.
//
// A Carrier owns its buffer. Callers must not mutate the slice passed to a
// constructor while an Encode or Decode is in flight.
type Carrier struct {
	kind   Kind
	data   []byte
	stride int // bytes per cell

	width    int // image
	height   int // image
	channels int // image channels or audio channels

	sampleRate int // audio frames per second
}

// NewGeneric wraps a raw byte stream. Cell i is data[i].
func NewGeneric(data []byte) *Carrier {
	return &Carrier{kind: KindGeneric, data: data, stride: 1}
}

// NewImage wraps interleaved pixel data of width*height pixels with
// channels bytes per pixel (e.g. 3 for RGB).
func NewImage(pix []byte, width, height, channels int) (*Carrier, error) {
	if width <= 0 || height <= 0 {
		return nil, newParamError(ErrInvalidParameter, "dimensions", fmt.Sprintf("%dx%d", width, height))
	}
	if channels < 1 || channels > 4 {
		return nil, newParamError(ErrInvalidParameter, "channels", strconv.Itoa(channels))
	}
	if len(pix) != width*height*channels {
		return nil, fmt.Errorf("%w: pixel buffer is %d bytes, want %d", ErrInvalidParameter, len(pix), width*height*channels)
	}
	return &Carrier{
		kind:     KindImage,
		data:     pix,
		stride:   1,
		width:    width,
		height:   height,
		channels: channels,
	}, nil
}

// NewAudio wraps interleaved little-endian PCM. sampleWidth is the number of
// bytes per sample (1 to 4); each sample is one cell whose byte is the
// sample's least-significant byte.
func NewAudio(pcm []byte, sampleWidth, channels, sampleRate int) (*Carrier, error) {
	if sampleWidth < 1 || sampleWidth > 4 {
		return nil, newParamError(ErrInvalidParameter, "sample_width", strconv.Itoa(sampleWidth))
	}
	if channels < 1 {
		return nil, newParamError(ErrInvalidParameter, "channels", strconv.Itoa(channels))
	}
	if sampleRate <= 0 {
		return nil, newParamError(ErrInvalidParameter, "sample_rate", strconv.Itoa(sampleRate))
	}
	if len(pcm)%(sampleWidth*channels) != 0 {
		return nil, fmt.Errorf("%w: pcm length %d is not a whole number of %d-byte frames", ErrInvalidParameter, len(pcm), sampleWidth*channels)
	}
	return &Carrier{
		kind:       KindAudio,
		data:       pcm,
		stride:     sampleWidth,
		channels:   channels,
		sampleRate: sampleRate,
	}, nil
}

// Kind returns the carrier variant.
func (c *Carrier) Kind() Kind { return c.kind }

// Cells returns the number of addressable cells.
func (c *Carrier) Cells() int { return len(c.data) / c.stride }

// Bytes returns the underlying buffer.
func (c *Carrier) Bytes() []byte { return c.data }

// Width returns the image width in pixels, or 0 for other kinds.
func (c *Carrier) Width() int { return c.width }

// Height returns the image height in pixels, or 0 for other kinds.
func (c *Carrier) Height() int { return c.height }

// Channels returns the channel count for images and audio, or 0 for generic carriers.
func (c *Carrier) Channels() int { return c.channels }

// SampleRate returns the audio frame rate, or 0 for other kinds.
func (c *Carrier) SampleRate() int { return c.sampleRate }

// SampleWidth returns the bytes per audio sample, or 0 for other kinds.
func (c *Carrier) SampleWidth() int {
	if c.kind != KindAudio {
		return 0
	}
	return c.stride
}

// Cell returns the byte stored in cell i.
func (c *Carrier) Cell(i int) (byte, error) {
	if i < 0 || i >= c.Cells() {
		return 0, newParamError(ErrOutOfRange, "cell", strconv.Itoa(i))
	}
	return c.data[i*c.stride], nil
}

// SetCell replaces the byte stored in cell i.
func (c *Carrier) SetCell(i int, b byte) error {
	if i < 0 || i >= c.Cells() {
		return newParamError(ErrOutOfRange, "cell", strconv.Itoa(i))
	}
	c.data[i*c.stride] = b
	return nil
}

// Clone returns a deep copy of the carrier. Modifying the clone's cells does
// not affect the original.
func (c *Carrier) Clone() *Carrier {
	clone := *c
	clone.data = make([]byte, len(c.data))
	copy(clone.data, c.data)
	return &clone
}

// CellAt returns the first channel cell of pixel (x, y).
func (c *Carrier) CellAt(x, y int) (int, error) {
	if c.kind != KindImage {
		return 0, newParamError(ErrInvalidParameter, "start", "pixel coordinate on "+c.kind.String()+" carrier")
	}
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return 0, newParamError(ErrOutOfRange, "pixel", fmt.Sprintf("%d,%d", x, y))
	}
	return (y*c.width + x) * c.channels, nil
}

// PixelOf returns the pixel coordinate holding cell i.
func (c *Carrier) PixelOf(i int) (x, y int) {
	if c.kind != KindImage || c.width == 0 {
		return 0, 0
	}
	pixel := i / c.channels
	return pixel % c.width, pixel / c.width
}

// CellAtSeconds converts a time offset to the first sample cell of the frame
// at round(seconds*sample_rate), clamped to the first cell of the last frame.
func (c *Carrier) CellAtSeconds(seconds float64) int {
	if c.kind != KindAudio || c.Cells() == 0 {
		return 0
	}
	frame := math.Round(seconds * float64(c.sampleRate))
	cell := frame * float64(c.channels)
	last := float64((c.Cells()/c.channels - 1) * c.channels)
	switch {
	case cell < 0 || math.IsNaN(cell):
		return 0
	case cell > last:
		return int(last)
	default:
		return int(cell)
	}
}

// SecondsOf returns the time offset of the frame containing cell i.
func (c *Carrier) SecondsOf(i int) float64 {
	if c.kind != KindAudio || c.sampleRate == 0 {
		return 0
	}
	return float64(i/c.channels) / float64(c.sampleRate)
}

// Duration returns the playing time of an audio carrier.
func (c *Carrier) Duration() time.Duration {
	if c.kind != KindAudio || c.sampleRate == 0 {
		return 0
	}
	frames := c.Cells() / c.channels
	return time.Duration(frames) * time.Second / time.Duration(c.sampleRate)
}
