package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zoobzio/steg"
	"github.com/zoobzio/steg/pixel"
	"github.com/zoobzio/steg/wav"
)

func pattern(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i*73 + i>>5)
	}
	return buf
}

// run executes the CLI and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(append([]string{"steg", "--level", "error"}, args...))
	return stdout.String(), stderr.String(), err
}

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	c, err := steg.NewImage(pattern(w*h*3), w, h, 3)
	require.NoError(t, err)
	path := filepath.Join(dir, "cover.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, pixel.Encode(f, c, pixel.FormatPNG))
	return path
}

func writeWAV(t *testing.T, dir string, frames int) string {
	t.Helper()
	c, err := steg.NewAudio(pattern(frames*2*2), 2, 2, 16000)
	require.NoError(t, err)
	path := filepath.Join(dir, "cover.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, wav.Encode(f, c))
	return path
}

func TestNewConfig_Defaults(t *testing.T) {
	config, err := NewConfig("")
	require.NoError(t, err)
	require.Equal(t, NewDefaultConfig(), config)
	require.Equal(t, 1, config.LSB)
	require.Equal(t, steg.VersionJSON, config.Version)
}

func TestNewConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steg.yaml")
	conf := []byte(`
log:
  level: debug
lsb: 3
frame:
  version: cbor
  compression: zstd
  digest: blake3
output: yaml
`)
	require.NoError(t, os.WriteFile(path, conf, 0o600))

	config, err := NewConfig(path)
	require.NoError(t, err)
	require.Equal(t, uint32(log.DebugLevel), config.LogLevel)
	require.Equal(t, 3, config.LSB)
	require.Equal(t, steg.VersionCBOR, config.Version)
	require.Equal(t, steg.CompressZstd, config.Compression)
	require.Equal(t, steg.DigestBLAKE3, config.Digest)
	require.Equal(t, "yaml", config.Output)
}

func TestNewConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"lsb":         "lsb: 9\n",
		"version":     "frame:\n  version: xml\n",
		"compression": "frame:\n  compression: gzip\n",
		"level":       "log:\n  level: loud\n",
		"output":      "output: toml\n",
	}
	for name, conf := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(conf), 0o600))
			_, err := NewConfig(path)
			require.Error(t, err)
		})
	}

	_, err := NewConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestParseVersion(t *testing.T) {
	for in, want := range map[string]steg.Version{"1": steg.VersionJSON, "JSON": steg.VersionJSON, "msgpack": steg.VersionMsgpack, "3": steg.VersionCBOR} {
		got, err := parseVersion(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := parseVersion("4")
	require.Error(t, err)
}

func TestEncodeDecode_PNG(t *testing.T) {
	dir := t.TempDir()
	cover := writePNG(t, dir, 80, 60)
	stego := filepath.Join(dir, "stego.png")

	stdout, _, err := run(t, "encode", "--in", cover, "--out", stego, "--message", "meet at noon",
		"--key", "key1", "--lsb", "2", "--start", "10,10", "--output", "json")
	require.NoError(t, err)

	var enc encodeView
	require.NoError(t, json.Unmarshal([]byte(stdout), &enc))
	require.Equal(t, "10,10", enc.Start)
	require.Equal(t, "@10,10", enc.KeySuffix)
	require.Equal(t, (10*80+10)*3, enc.StartCell)
	require.Equal(t, "text", enc.PayloadType)

	out := filepath.Join(dir, "message.txt")
	stdout, _, err = run(t, "decode", "--in", stego, "--out", out, "--key", "key1"+enc.KeySuffix, "--lsb", "2")
	require.NoError(t, err)
	require.Contains(t, stdout, "Extracted")

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "meet at noon", string(got))
}

func TestEncodeDecode_WAV(t *testing.T) {
	dir := t.TempDir()
	cover := writeWAV(t, dir, 16000)
	stego := filepath.Join(dir, "stego.wav")
	payloadPath := filepath.Join(dir, "notes.md")
	payload := bytes.Repeat([]byte("# heading\nsome notes\n"), 20)
	require.NoError(t, os.WriteFile(payloadPath, payload, 0o600))

	stdout, _, err := run(t, "encode", "--in", cover, "--out", stego, "--payload", payloadPath,
		"--key", "k2", "--start", "0.25", "--frame-version", "msgpack", "--compression", "zstd", "--digest", "sha256",
		"--output", "yaml")
	require.NoError(t, err)

	var enc encodeView
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &enc))
	require.Equal(t, "0.25", enc.Start)
	require.Equal(t, "zstd", enc.Compression)

	stdout, stderr, err := run(t, "decode", "--in", stego, "--key", "k2@0.25", "--output", "json")
	require.NoError(t, err)
	require.Equal(t, string(payload), stdout)

	var dec decodeView
	require.NoError(t, json.Unmarshal([]byte(stderr), &dec))
	require.Equal(t, "notes.md", dec.PayloadName)
	require.Equal(t, "msgpack", dec.Version)
	require.Equal(t, "sha256", dec.Digest)
}

func TestEncodeDecode_Generic(t *testing.T) {
	dir := t.TempDir()
	cover := filepath.Join(dir, "cover.bin")
	require.NoError(t, os.WriteFile(cover, pattern(20000), 0o600))
	stego := filepath.Join(dir, "stego.bin")

	_, _, err := run(t, "encode", "-i", cover, "-o", stego, "-m", "raw bytes", "-k", "abc", "-b", "4")
	require.NoError(t, err)

	stdout, _, err := run(t, "decode", "-i", stego, "-k", "abc", "-b", "4")
	require.NoError(t, err)
	require.Equal(t, "raw bytes", stdout)

	_, _, err = run(t, "decode", "-i", stego, "-k", "abd", "-b", "4")
	require.Error(t, err)
	require.True(t, errors.Is(err, steg.ErrBadKeyOrFormat) || errors.Is(err, steg.ErrInvalidKey), "unexpected error: %v", err)
}

func TestCapacity(t *testing.T) {
	dir := t.TempDir()
	cover := filepath.Join(dir, "cover.bin")
	require.NoError(t, os.WriteFile(cover, make([]byte, 1000), 0o600))

	stdout, _, err := run(t, "capacity", "-i", cover, "-s", "0", "-f", "json")
	require.NoError(t, err)
	var view capacityView
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	require.Equal(t, 1000, view.CapacityBits)
	require.Equal(t, 125, view.CapacityBytes)
	require.Nil(t, view.MaxPayload)

	stdout, _, err = run(t, "capacity", "-i", cover, "-s", "0", "-k", "key1", "--type", "text", "-f", "json")
	require.NoError(t, err)
	view = capacityView{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	require.NotNil(t, view.MaxPayload)
	require.Equal(t, 31, *view.MaxPayload)

	png := writePNG(t, dir, 100, 100)
	stdout, _, err = run(t, "capacity", "-i", png, "-b", "2", "-s", "10,10")
	require.NoError(t, err)
	require.Contains(t, stdout, "100x100")
	require.Contains(t, stdout, "10,10")
}

func TestEncode_Errors(t *testing.T) {
	dir := t.TempDir()
	cover := writePNG(t, dir, 20, 20)

	_, _, err := run(t, "encode", "-i", cover, "-o", filepath.Join(dir, "out.jpg"), "-m", "x", "-k", "key1")
	require.Error(t, err)

	_, _, err = run(t, "encode", "-i", cover, "-o", filepath.Join(dir, "out.bin"), "-m", "x", "-k", "key1")
	require.Error(t, err)

	_, _, err = run(t, "encode", "-i", cover, "-o", filepath.Join(dir, "out.png"), "-k", "key1")
	require.Error(t, err)

	_, _, err = run(t, "encode", "-i", cover, "-o", filepath.Join(dir, "out.png"), "-m", "x", "-k", "key1", "-b", "9")
	require.Error(t, err)

	_, _, err = run(t, "encode", "-i", cover, "-o", filepath.Join(dir, "out.png"), "-m", string(pattern(2000)), "-k", "key1")
	require.ErrorIs(t, err, steg.ErrInsufficientCapacity)
	_, statErr := os.Stat(filepath.Join(dir, "out.png"))
	require.True(t, os.IsNotExist(statErr))
}
