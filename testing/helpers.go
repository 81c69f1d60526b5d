// Package testing provides test utilities for steg.
package testing

import (
	"image"
	"image/color"
	"testing"

	"github.com/zoobzio/steg"
)

// TestPassphrase returns a passphrase whose derived step is 1, so frames use
// every cell from the start.
func TestPassphrase(tb testing.TB) string {
	tb.Helper()
	return "key1"
}

// Pattern returns n deterministic bytes that are neither constant nor text.
func Pattern(n int) []byte {
	buf := make([]byte, n)
	var s uint32 = 2463534242
	for i := range buf {
		s ^= s << 13
		s ^= s >> 17
		s ^= s << 5
		buf[i] = byte(s)
	}
	return buf
}

// GenericCarrier returns a generic carrier of n pattern bytes.
func GenericCarrier(tb testing.TB, n int) *steg.Carrier {
	tb.Helper()
	return steg.NewGeneric(Pattern(n))
}

// ImageCarrier returns a w x h RGB carrier filled with pattern bytes.
func ImageCarrier(tb testing.TB, w, h int) *steg.Carrier {
	tb.Helper()
	c, err := steg.NewImage(Pattern(w*h*3), w, h, 3)
	if err != nil {
		tb.Fatalf("NewImage() error: %v", err)
	}
	return c
}

// AudioCarrier returns a 16-bit PCM carrier of the given length.
func AudioCarrier(tb testing.TB, frames, channels, sampleRate int) *steg.Carrier {
	tb.Helper()
	c, err := steg.NewAudio(Pattern(frames*channels*2), 2, channels, sampleRate)
	if err != nil {
		tb.Fatalf("NewAudio() error: %v", err)
	}
	return c
}

// GradientImage returns an opaque w x h image with a smooth gradient.
func GradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: uint8((x + y) % 256),
				A: 0xFF,
			})
		}
	}
	return img
}

// MustEncode encodes payload and fails the test on error.
func MustEncode(tb testing.TB, eng *steg.Engine, cover *steg.Carrier, payload []byte, passphrase string, lsb int, start string) *steg.EncodeResult {
	tb.Helper()
	res, err := eng.Encode(tb.Context(), cover, steg.Payload{Data: payload}, passphrase, lsb, start)
	if err != nil {
		tb.Fatalf("Encode() error: %v", err)
	}
	return res
}

// MustDecode decodes a payload and fails the test on error.
func MustDecode(tb testing.TB, eng *steg.Engine, stego *steg.Carrier, passphrase string, lsb int, start string) *steg.DecodeResult {
	tb.Helper()
	res, err := eng.Decode(tb.Context(), stego, passphrase, lsb, start)
	if err != nil {
		tb.Fatalf("Decode() error: %v", err)
	}
	return res
}

// ChangedCells counts the cells that differ between two carriers of equal size.
func ChangedCells(tb testing.TB, a, b *steg.Carrier) int {
	tb.Helper()
	if a.Cells() != b.Cells() {
		tb.Fatalf("carrier sizes differ: %d vs %d", a.Cells(), b.Cells())
	}
	n := 0
	for i := 0; i < a.Cells(); i++ {
		x, _ := a.Cell(i)
		y, _ := b.Cell(i)
		if x != y {
			n++
		}
	}
	return n
}
