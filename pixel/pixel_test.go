package pixel

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/zoobzio/steg"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 11), B: uint8(x ^ y), A: 0xFF})
		}
	}
	return img
}

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"out.png":   FormatPNG,
		"out.BMP":   FormatBMP,
		"out.bmp":   FormatBMP,
		"out.jpg":   FormatPNG,
		"no-suffix": FormatPNG,
	}
	for name, want := range tests {
		if got := FormatFor(name); got != want {
			t.Errorf("FormatFor(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestFromImage(t *testing.T) {
	img := gradient(5, 4)
	c, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage() error: %v", err)
	}
	if c.Kind() != steg.KindImage || c.Width() != 5 || c.Height() != 4 || c.Channels() != Channels {
		t.Fatalf("carrier = %s %dx%dx%d", c.Kind(), c.Width(), c.Height(), c.Channels())
	}
	// Pixel (2,1) starts at cell (1*5+2)*3.
	want := img.NRGBAAt(2, 1)
	got := c.Bytes()[21:24]
	if got[0] != want.R || got[1] != want.G || got[2] != want.B {
		t.Errorf("pixel (2,1) = %v, want %v", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatPNG, FormatBMP} {
		t.Run(string(format), func(t *testing.T) {
			c, err := FromImage(gradient(16, 9))
			if err != nil {
				t.Fatalf("FromImage() error: %v", err)
			}

			var buf bytes.Buffer
			if err := Encode(&buf, c, format); err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			back, name, err := Decode(&buf)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if name != string(format) {
				t.Errorf("format = %q, want %q", name, format)
			}
			if !bytes.Equal(back.Bytes(), c.Bytes()) {
				t.Error("pixels changed across encode/decode")
			}
		})
	}
}

func TestStegoSurvivesPNG(t *testing.T) {
	ctx := context.Background()
	cover, err := FromImage(gradient(100, 100))
	if err != nil {
		t.Fatalf("FromImage() error: %v", err)
	}
	res, err := steg.Encode(ctx, cover, steg.Payload{Data: []byte("hidden in pixels")}, "key1", 1, "10,10")
	if err != nil {
		t.Fatalf("steg.Encode() error: %v", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, res.Carrier, FormatPNG); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	stego, _, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	out, err := steg.Decode(ctx, stego, "key1@10,10", 1, "")
	if err != nil {
		t.Fatalf("steg.Decode() error: %v", err)
	}
	if string(out.Payload) != "hidden in pixels" {
		t.Errorf("payload = %q", out.Payload)
	}
}

func TestDecode_JPEGInput(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, gradient(8, 8), nil); err != nil {
		t.Fatalf("jpeg.Encode() error: %v", err)
	}
	c, name, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if name != "jpeg" || c.Cells() != 8*8*3 {
		t.Errorf("Decode() = %q with %d cells", name, c.Cells())
	}
}

func TestEncode_Errors(t *testing.T) {
	img, err := FromImage(gradient(2, 2))
	if err != nil {
		t.Fatalf("FromImage() error: %v", err)
	}
	if err := Encode(&bytes.Buffer{}, img, "jpeg"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Encode(jpeg) error = %v, want ErrUnsupportedFormat", err)
	}
	if err := Encode(&bytes.Buffer{}, steg.NewGeneric(make([]byte, 12)), FormatPNG); !errors.Is(err, steg.ErrInvalidParameter) {
		t.Errorf("Encode(generic) error = %v, want ErrInvalidParameter", err)
	}
	if _, _, err := Decode(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("Decode(garbage) should fail")
	}
}
