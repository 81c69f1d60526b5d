package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/pkg/errors"

	"github.com/zoobzio/steg"
	"github.com/zoobzio/steg/pixel"
	"github.com/zoobzio/steg/wav"
)

var imageExts = map[string]bool{
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".jpg":  true,
	".jpeg": true,
}

// loadCarrier reads a cover or stego file. Images and WAV audio are decoded
// by extension; anything else is a generic byte carrier.
func loadCarrier(path string) (*steg.Carrier, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExts[ext]:
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open image")
		}
		defer f.Close()
		c, _, err := pixel.Decode(f)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s", path)
		}
		return c, nil

	case ext == ".wav":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open wav")
		}
		defer f.Close()
		c, err := wav.Decode(f)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s", path)
		}
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read carrier")
	}
	return steg.NewGeneric(data), nil
}

// writeCarrier replaces path with the carrier contents in a single rename.
// Image carriers are always written losslessly.
func writeCarrier(path string, c *steg.Carrier) error {
	switch c.Kind() {
	case steg.KindImage:
		var buf bytes.Buffer
		if err := pixel.Encode(&buf, c, pixel.FormatFor(path)); err != nil {
			return errors.Wrap(err, "failed to encode image")
		}
		return errors.Wrap(atomic.WriteFile(path, &buf), "failed to write image")

	case steg.KindAudio:
		// The WAV encoder seeks back to patch chunk sizes, so it needs a real file.
		tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
		if err != nil {
			return errors.Wrap(err, "failed to create temp file")
		}
		defer os.Remove(tmp.Name())
		if err := wav.Encode(tmp, c); err != nil {
			tmp.Close()
			return errors.Wrap(err, "failed to encode wav")
		}
		if err := tmp.Close(); err != nil {
			return errors.Wrap(err, "failed to close temp file")
		}
		return errors.Wrap(atomic.ReplaceFile(tmp.Name(), path), "failed to write wav")
	}

	return errors.Wrap(atomic.WriteFile(path, bytes.NewReader(c.Bytes())), "failed to write carrier")
}

// writeOutput writes data to path, or to the fallback writer when path is "-"
// or empty.
func writeOutput(path string, data []byte, fallback io.Writer) error {
	if path == "" || path == "-" {
		_, err := fallback.Write(data)
		return err
	}
	return errors.Wrap(atomic.WriteFile(path, bytes.NewReader(data)), "failed to write payload")
}
