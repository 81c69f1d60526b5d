// Package pixel converts image files to and from steg carriers.
//
// Images are flattened to 8-bit RGB, three cells per pixel in row-major
// order. Alpha is discarded. Output formats are lossless (PNG, BMP) since a
// lossy re-encode would destroy the embedded bits.
package pixel

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoding
	_ "image/jpeg" // register JPEG decoding
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/zoobzio/steg"
	"golang.org/x/image/bmp"
)

// Channels is the number of cells per pixel.
const Channels = 3

// Format is a lossless output format.
type Format string

const (
	FormatPNG Format = "png"
	FormatBMP Format = "bmp"
)

// ErrUnsupportedFormat is returned when asked to write a lossy or unknown format.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// FormatFor picks the output format from a file name, defaulting to PNG.
func FormatFor(filename string) Format {
	if strings.EqualFold(filepath.Ext(filename), ".bmp") {
		return FormatBMP
	}
	return FormatPNG
}

// Decode reads an image in any registered format (PNG, BMP, GIF, JPEG) and
// returns it as an RGB carrier together with the format name.
func Decode(r io.Reader) (*steg.Carrier, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	c, err := FromImage(img)
	if err != nil {
		return nil, "", err
	}
	return c, format, nil
}

// FromImage copies img into a new RGB carrier.
func FromImage(img image.Image) (*steg.Carrier, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, 0, w*h*Channels)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			pix = append(pix, c.R, c.G, c.B)
		}
	}
	return steg.NewImage(pix, w, h, Channels)
}

// ToImage renders an image carrier as an opaque NRGBA image.
func ToImage(c *steg.Carrier) (*image.NRGBA, error) {
	if c.Kind() != steg.KindImage || c.Channels() != Channels {
		return nil, fmt.Errorf("%w: need a %d-channel image carrier, got %s", steg.ErrInvalidParameter, Channels, c.Kind())
	}
	w, h := c.Width(), c.Height()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	src := c.Bytes()
	for i := 0; i < w*h; i++ {
		img.Pix[i*4+0] = src[i*3+0]
		img.Pix[i*4+1] = src[i*3+1]
		img.Pix[i*4+2] = src[i*3+2]
		img.Pix[i*4+3] = 0xFF
	}
	return img, nil
}

// Encode writes an image carrier in a lossless format.
func Encode(w io.Writer, c *steg.Carrier, format Format) error {
	img, err := ToImage(c)
	if err != nil {
		return err
	}
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
