package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"gopkg.in/yaml.v3"

	"github.com/zoobzio/steg"
)

type capacityView struct {
	Carrier         string  `json:"carrier" yaml:"carrier"`
	LSB             int     `json:"lsb" yaml:"lsb"`
	StartCell       int     `json:"start_cell" yaml:"start_cell"`
	StartOffsetBits int     `json:"start_offset_bits" yaml:"start_offset_bits"`
	CapacityBits    int     `json:"capacity_bits" yaml:"capacity_bits"`
	CapacityBytes   int     `json:"capacity_bytes" yaml:"capacity_bytes"`
	Width           int     `json:"width,omitempty" yaml:"width,omitempty"`
	Height          int     `json:"height,omitempty" yaml:"height,omitempty"`
	StartX          *int    `json:"start_x,omitempty" yaml:"start_x,omitempty"`
	StartY          *int    `json:"start_y,omitempty" yaml:"start_y,omitempty"`
	SampleRate      int     `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty" yaml:"duration_seconds,omitempty"`
	BitsPerSecond   int     `json:"bits_per_second,omitempty" yaml:"bits_per_second,omitempty"`
	StartSeconds    float64 `json:"start_seconds,omitempty" yaml:"start_seconds,omitempty"`
	MaxPayload      *int    `json:"max_payload_bytes,omitempty" yaml:"max_payload_bytes,omitempty"`
}

func newCapacityView(r steg.CapacityReport, maxPayload *int) capacityView {
	v := capacityView{
		Carrier:         r.Kind.String(),
		LSB:             r.LSB,
		StartCell:       r.StartCell,
		StartOffsetBits: r.StartOffsetBits,
		CapacityBits:    r.Bits,
		CapacityBytes:   r.Bytes,
		MaxPayload:      maxPayload,
	}
	switch r.Kind {
	case steg.KindImage:
		v.Width, v.Height = r.Width, r.Height
		x, y := r.StartX, r.StartY
		v.StartX, v.StartY = &x, &y
	case steg.KindAudio:
		v.SampleRate = r.SampleRate
		v.DurationSeconds = r.Duration.Seconds()
		v.BitsPerSecond = r.BitsPerSecond
		v.StartSeconds = r.StartSeconds
	}
	return v
}

func (v capacityView) text(w io.Writer, r steg.CapacityReport) {
	fmt.Fprintf(w, "Carrier:\t%s\n", v.Carrier)
	switch r.Kind {
	case steg.KindImage:
		fmt.Fprintf(w, "Dimensions:\t%dx%d (%d channels)\n", r.Width, r.Height, r.Channels)
		fmt.Fprintf(w, "Start:\t\t%d,%d (cell %s)\n", r.StartX, r.StartY, humanize.Comma(int64(r.StartCell)))
	case steg.KindAudio:
		fmt.Fprintf(w, "Duration:\t%s at %s Hz, %d channels\n", durafmt.Parse(r.Duration.Round(time.Millisecond)), humanize.Comma(int64(r.SampleRate)), r.Channels)
		fmt.Fprintf(w, "Start:\t\t%gs (cell %s)\n", r.StartSeconds, humanize.Comma(int64(r.StartCell)))
		fmt.Fprintf(w, "Throughput:\t%s bits/s\n", humanize.Comma(int64(r.BitsPerSecond)))
	default:
		fmt.Fprintf(w, "Start:\t\tbyte %s\n", humanize.Comma(int64(r.StartCell)))
	}
	fmt.Fprintf(w, "LSB:\t\t%d\n", r.LSB)
	fmt.Fprintf(w, "Capacity:\t%s bits (%s)\n", humanize.Comma(int64(r.Bits)), humanize.IBytes(uint64(r.Bytes)))
	if v.MaxPayload != nil {
		fmt.Fprintf(w, "Max payload:\t%s for this key\n", humanize.IBytes(uint64(*v.MaxPayload)))
	}
}

type encodeView struct {
	Carrier     string  `json:"carrier" yaml:"carrier"`
	Output      string  `json:"output" yaml:"output"`
	StartCell   int     `json:"start_cell" yaml:"start_cell"`
	Start       string  `json:"start" yaml:"start"`
	KeySuffix   string  `json:"key_suffix" yaml:"key_suffix"`
	Step        int     `json:"step" yaml:"step"`
	FrameBytes  int     `json:"frame_bytes" yaml:"frame_bytes"`
	PayloadType string  `json:"payload_type" yaml:"payload_type"`
	Stored      int     `json:"stored_bytes" yaml:"stored_bytes"`
	Compression string  `json:"compression,omitempty" yaml:"compression,omitempty"`
	Seconds     float64 `json:"start_seconds,omitempty" yaml:"start_seconds,omitempty"`
}

func newEncodeView(out string, res *steg.EncodeResult) encodeView {
	return encodeView{
		Carrier:     res.Carrier.Kind().String(),
		Output:      out,
		StartCell:   res.StartCell,
		Start:       res.StartString(),
		KeySuffix:   "@" + res.StartString(),
		Step:        res.Step,
		FrameBytes:  res.FrameBits / 8,
		PayloadType: string(res.Metadata.PayloadType),
		Stored:      res.Metadata.PayloadLength,
		Compression: string(res.Metadata.Compression),
		Seconds:     res.Seconds,
	}
}

func (v encodeView) text(w io.Writer) {
	fmt.Fprintf(w, "Wrote %s carrier to %s\n", v.Carrier, v.Output)
	fmt.Fprintf(w, "Start:\t\t%s (cell %s)\n", v.Start, humanize.Comma(int64(v.StartCell)))
	fmt.Fprintf(w, "Frame:\t\t%s, %s payload\n", humanize.IBytes(uint64(v.FrameBytes)), v.PayloadType)
	fmt.Fprintf(w, "Decode with:\t<passphrase>%s\n", v.KeySuffix)
}

type decodeView struct {
	Output      string `json:"output" yaml:"output"`
	Version     string `json:"version" yaml:"version"`
	PayloadType string `json:"payload_type" yaml:"payload_type"`
	PayloadName string `json:"payload_name,omitempty" yaml:"payload_name,omitempty"`
	Size        int    `json:"size" yaml:"size"`
	StartCell   int    `json:"start_cell" yaml:"start_cell"`
	Compression string `json:"compression,omitempty" yaml:"compression,omitempty"`
	Digest      string `json:"digest_algo,omitempty" yaml:"digest_algo,omitempty"`
}

func newDecodeView(out string, res *steg.DecodeResult) decodeView {
	return decodeView{
		Output:      out,
		Version:     res.Version.String(),
		PayloadType: string(res.PayloadType),
		PayloadName: res.Metadata.PayloadName,
		Size:        len(res.Payload),
		StartCell:   res.StartCell,
		Compression: string(res.Metadata.Compression),
		Digest:      string(res.Metadata.DigestAlgo),
	}
}

func (v decodeView) text(w io.Writer) {
	fmt.Fprintf(w, "Extracted %s %s payload to %s\n", humanize.IBytes(uint64(v.Size)), v.PayloadType, v.Output)
	if v.PayloadName != "" {
		fmt.Fprintf(w, "Name:\t\t%s\n", v.PayloadName)
	}
	fmt.Fprintf(w, "Frame version:\t%s\n", v.Version)
}

// render writes v as JSON or YAML. Text output is handled by the callers.
func render(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", format)
}
