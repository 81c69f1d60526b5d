// Package wav converts PCM WAV files to and from steg carriers.
//
// Every interleaved sample is one cell. The cell byte is the low byte of the
// little-endian sample, so only the quietest bits of the signal change.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/zoobzio/steg"
)

// pcmFormat is the WAVE_FORMAT_PCM format tag.
const pcmFormat = 1

// ErrNotPCM is returned for WAV files that are not integer PCM.
var ErrNotPCM = errors.New("not a PCM wav file")

// Decode reads a PCM WAV stream into an audio carrier. 8, 16, 24 and 32-bit
// samples are supported.
func Decode(r io.ReadSeeker) (*steg.Carrier, error) {
	d := gowav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid header", ErrNotPCM)
	}
	if d.WavAudioFormat != pcmFormat {
		return nil, fmt.Errorf("%w: format tag %d", ErrNotPCM, d.WavAudioFormat)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read pcm: %w", err)
	}

	width := int(d.BitDepth) / 8
	if width < 1 || width > 4 || int(d.BitDepth)%8 != 0 {
		return nil, fmt.Errorf("%w: %d-bit samples", ErrNotPCM, d.BitDepth)
	}
	pcm := make([]byte, len(buf.Data)*width)
	for i, v := range buf.Data {
		putSample(pcm[i*width:], width, v)
	}
	return steg.NewAudio(pcm, width, int(d.NumChans), int(d.SampleRate))
}

// Encode writes an audio carrier as a PCM WAV stream.
func Encode(w io.WriteSeeker, c *steg.Carrier) error {
	if c.Kind() != steg.KindAudio {
		return fmt.Errorf("%w: need an audio carrier, got %s", steg.ErrInvalidParameter, c.Kind())
	}
	width := c.SampleWidth()
	pcm := c.Bytes()
	data := make([]int, len(pcm)/width)
	for i := range data {
		data[i] = sample(pcm[i*width:], width)
	}

	enc := gowav.NewEncoder(w, c.SampleRate(), width*8, c.Channels(), pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: c.Channels(), SampleRate: c.SampleRate()},
		Data:           data,
		SourceBitDepth: width * 8,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write pcm: %w", err)
	}
	return enc.Close()
}

// putSample stores v little-endian in width bytes. 8-bit PCM is unsigned,
// wider samples are two's complement.
func putSample(dst []byte, width, v int) {
	switch width {
	case 1:
		dst[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(dst, uint16(int16(v))) // #nosec G115 -- 16-bit sample
	case 3:
		u := uint32(int32(v)) // #nosec G115 -- 24-bit sample
		dst[0], dst[1], dst[2] = byte(u), byte(u>>8), byte(u>>16)
	case 4:
		binary.LittleEndian.PutUint32(dst, uint32(int32(v))) // #nosec G115 -- 32-bit sample
	}
}

// sample is the inverse of putSample.
func sample(src []byte, width int) int {
	switch width {
	case 1:
		return int(src[0])
	case 2:
		return int(int16(binary.LittleEndian.Uint16(src)))
	case 3:
		u := uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16
		return int(int32(u<<8) >> 8)
	case 4:
		return int(int32(binary.LittleEndian.Uint32(src)))
	}
	return 0
}
