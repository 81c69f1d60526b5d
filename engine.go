package steg

import (
	"context"
	"crypto/subtle"
	"errors"
	"strconv"
	"sync"
	"time"
)

// Payload is the data to hide.
type Payload struct {
	Data []byte
	Type PayloadType // detected from Data and Name when empty
	Name string      // optional, recorded in metadata
}

// EncodeResult is the outcome of a successful Encode.
type EncodeResult struct {
	// Carrier is a modified copy of the cover. The cover itself is untouched.
	Carrier *Carrier

	StartCell int
	X, Y      int     // start pixel, image carriers only
	Seconds   float64 // start offset, audio carriers only

	Step      int
	FrameBits int
	Metadata  Metadata

	start Address
}

// StartString renders the start actually used, in the syntax the start
// argument and the passphrase suffix accept.
func (r *EncodeResult) StartString() string {
	return r.start.String()
}

// KeyWithStart appends the resolved start to passphrase as "@<address>",
// replacing any suffix already present. Decoding with the returned key needs
// no separate start argument.
func (r *EncodeResult) KeyWithStart(passphrase string) string {
	material, _, _ := SplitPassphrase(passphrase, r.Carrier.Kind())
	return material + "@" + r.StartString()
}

// DecodeResult is the outcome of a successful Decode.
type DecodeResult struct {
	Payload     []byte
	PayloadType PayloadType
	Metadata    Metadata
	Version     Version
	StartCell   int
}

// Engine encodes and decodes frames. Its settings select the frame version,
// payload compression and payload digest for new frames; decoding accepts
// every version with a registered metadata codec.
//
// Engines are safe for concurrent use. Settings are snapshotted at the start
// of each call, so changing them never affects a call in flight.
type Engine struct {
	mu          sync.RWMutex
	version     Version
	compression Compression
	digest      DigestAlgo
	codecs      map[Version]Codec
	hashers     map[DigestAlgo]Hasher
}

// New returns an Engine writing JSON metadata with no compression and no
// payload digest.
func New() *Engine {
	return &Engine{
		version:     VersionJSON,
		compression: CompressNone,
		digest:      DigestNone,
		codecs:      builtinMetadataCodecs(),
		hashers:     builtinHashers(),
	}
}

// SetVersion selects the frame version written by Encode.
// Returns the engine for chaining. Safe for concurrent use.
func (e *Engine) SetVersion(v Version) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.version = v
	return e
}

// SetCompression selects the payload compression written by Encode.
// Returns the engine for chaining. Safe for concurrent use.
func (e *Engine) SetCompression(c Compression) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compression = c
	return e
}

// SetDigest selects the payload digest written by Encode.
// Returns the engine for chaining. Safe for concurrent use.
func (e *Engine) SetDigest(algo DigestAlgo) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.digest = algo
	return e
}

// SetMetadataCodec registers the metadata codec for a frame version.
// Returns the engine for chaining. Safe for concurrent use.
func (e *Engine) SetMetadataCodec(v Version, c Codec) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.codecs[v] = c
	return e
}

// SetHasher registers the hasher for a digest algorithm.
// Returns the engine for chaining. Safe for concurrent use.
func (e *Engine) SetHasher(algo DigestAlgo, h Hasher) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hashers[algo] = h
	return e
}

// settings is a per-call copy of the engine configuration.
type settings struct {
	version     Version
	compression Compression
	digest      DigestAlgo
	codecs      map[Version]Codec
	hashers     map[DigestAlgo]Hasher
}

func (e *Engine) snapshot() settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s := settings{
		version:     e.version,
		compression: e.compression,
		digest:      e.digest,
		codecs:      make(map[Version]Codec, len(e.codecs)),
		hashers:     make(map[DigestAlgo]Hasher, len(e.hashers)),
	}
	for v, c := range e.codecs {
		s.codecs[v] = c
	}
	for a, h := range e.hashers {
		s.hashers[a] = h
	}
	return s
}

func (s settings) codec() (Codec, error) {
	c, ok := s.codecs[s.version]
	if !ok {
		return nil, newParamError(ErrInvalidParameter, "version", s.version.String())
	}
	return c, nil
}

func (s settings) hasher() (Hasher, bool, error) {
	if s.digest == "" || s.digest == DigestNone {
		return nil, false, nil
	}
	h, ok := s.hashers[s.digest]
	if !ok {
		return nil, false, newParamError(ErrInvalidParameter, "digest", string(s.digest))
	}
	return h, true, nil
}

// placement is where and how one call touches the carrier.
type placement struct {
	material string // passphrase without a coordinate suffix
	plan     []uint8
	step     int
	start    int
}

func checkKeyParams(passphrase string, lsb int) error {
	if passphrase == "" {
		return newParamError(ErrInvalidParameter, "passphrase", "")
	}
	if !IsValidLSB(lsb) {
		return newParamError(ErrInvalidParameter, "lsb_count", strconv.Itoa(lsb))
	}
	return nil
}

// place resolves the start with the priority explicit start, then passphrase
// suffix, then key-derived default.
func place(c *Carrier, passphrase string, lsb int, start string) (placement, error) {
	explicit, err := ParseStart(c.Kind(), start)
	if err != nil {
		return placement{}, err
	}
	material, suffix, _ := SplitPassphrase(passphrase, c.Kind())
	addr := explicit
	if addr.IsZero() {
		addr = suffix
	}

	key := Derive(material)
	cell, err := ResolveStart(c, key, addr)
	if err != nil {
		return placement{}, err
	}
	return placement{
		material: material,
		plan:     key.BitPlan(lsb),
		step:     key.Step(),
		start:    cell,
	}, nil
}

// Encode hides payload in a copy of cover.
//
// start may be empty, in which case a coordinate suffix on the passphrase or
// the key-derived default is used. The frame is checked against the carrier
// before any cell is written; a frame that does not fit fails with
// ErrInsufficientCapacity and no carrier is returned.
func (e *Engine) Encode(ctx context.Context, cover *Carrier, payload Payload, passphrase string, lsb int, start string) (result *EncodeResult, err error) {
	begin := time.Now()
	if err := checkKeyParams(passphrase, lsb); err != nil {
		return nil, err
	}
	if len(payload.Data) == 0 {
		return nil, newParamError(ErrInvalidParameter, "payload", "")
	}
	if cover == nil {
		return nil, newParamError(ErrInvalidParameter, "carrier", "")
	}

	cfg := e.snapshot()
	emitEncodeStart(ctx, cover, lsb, len(payload.Data))

	var (
		p         placement
		frameBits int
	)
	defer func() {
		emitEncodeComplete(ctx, cover, lsb, p.start, p.step, frameBits, time.Since(begin), err)
	}()

	p, err = place(cover, passphrase, lsb, start)
	if err != nil {
		return nil, err
	}
	codec, err := cfg.codec()
	if err != nil {
		return nil, err
	}
	meta, stored, err := cfg.buildMetadata(payload, p.material)
	if err != nil {
		return nil, err
	}
	frame, err := buildFrame(cfg.version, codec, meta, stored)
	if err != nil {
		return nil, err
	}

	frameBits = len(frame) * 8
	haveBits := usableCells(cover.Cells(), p.start, p.step) * lsb
	if frameBits > haveBits {
		return nil, &CapacityError{NeedBits: frameBits, HaveBits: haveBits}
	}

	stego := cover.Clone()
	if err := writeFrame(stego, p.plan, p.start, p.step, frame); err != nil {
		return nil, err
	}

	addr := AddressOf(stego, p.start)
	return &EncodeResult{
		Carrier:   stego,
		StartCell: p.start,
		X:         addr.X,
		Y:         addr.Y,
		Seconds:   addr.Seconds,
		Step:      p.step,
		FrameBits: frameBits,
		Metadata:  *meta,
		start:     addr,
	}, nil
}

// buildMetadata compresses and digests the payload as configured and returns
// the metadata together with the bytes to store.
func (s settings) buildMetadata(payload Payload, material string) (*Metadata, []byte, error) {
	pt := payload.Type
	if pt == "" {
		pt = DetectPayloadType(payload.Data, payload.Name)
	}
	if !IsValidPayloadType(pt) {
		return nil, nil, newParamError(ErrInvalidParameter, "payload_type", string(pt))
	}

	stored, used, err := compressPayload(payload.Data, s.compression)
	if err != nil {
		return nil, nil, err
	}
	meta := &Metadata{
		PayloadType:      pt,
		PayloadLength:    len(stored),
		KeyValidationTag: ValidationTag(material, len(stored)),
		PayloadName:      payload.Name,
	}
	if used != CompressNone {
		meta.Compression = used
		meta.OriginalLength = len(payload.Data)
	}

	h, ok, err := s.hasher()
	if err != nil {
		return nil, nil, err
	}
	if ok {
		sum, err := h.Hash(payload.Data)
		if err != nil {
			return nil, nil, err
		}
		meta.DigestAlgo = s.digest
		meta.Digest = sum
	}
	return meta, stored, nil
}

// Decode extracts the payload hidden in stego.
//
// The passphrase, lsb and start must match the values used by Encode; a
// passphrase carrying the "@<address>" suffix returned by KeyWithStart needs
// no start. A magic mismatch is ErrBadKeyOrFormat, a header that parses but
// fails the key validation tag is ErrInvalidKey.
func (e *Engine) Decode(ctx context.Context, stego *Carrier, passphrase string, lsb int, start string) (result *DecodeResult, err error) {
	begin := time.Now()
	if err := checkKeyParams(passphrase, lsb); err != nil {
		return nil, err
	}
	if stego == nil {
		return nil, newParamError(ErrInvalidParameter, "carrier", "")
	}

	cfg := e.snapshot()
	emitDecodeStart(ctx, stego, lsb)

	var (
		p       placement
		version Version
		size    int
	)
	defer func() {
		emitDecodeComplete(ctx, stego, lsb, p.start, version, size, time.Since(begin), err)
	}()

	p, err = place(stego, passphrase, lsb, start)
	if err != nil {
		return nil, err
	}

	r := newBitReader(stego, p.plan, p.start, p.step)
	version, meta, err := readHeader(r, cfg.codecs)
	if err != nil {
		return nil, err
	}

	want := ValidationTag(p.material, meta.PayloadLength)
	if subtle.ConstantTimeCompare([]byte(want), []byte(meta.KeyValidationTag)) != 1 {
		return nil, newFrameError(ErrInvalidKey, "key_validation_tag", headerSize, nil)
	}

	payloadOffset := r.pos
	stored, err := readPayload(r, meta.PayloadLength)
	if err != nil {
		return nil, err
	}

	data, err := decompressPayload(stored, meta.Compression, meta.OriginalLength)
	if err != nil {
		return nil, newFrameError(ErrCorruptPayload, "payload", payloadOffset, err)
	}

	if meta.DigestAlgo != "" && meta.DigestAlgo != DigestNone {
		if err := verifyDigest(cfg.hashers, meta.DigestAlgo, meta.Digest, data); err != nil {
			if errors.Is(err, ErrChecksumMismatch) {
				return nil, newFrameError(ErrChecksumMismatch, "payload", payloadOffset, nil)
			}
			return nil, newFrameError(ErrCorruptMetadata, "digest", headerSize, err)
		}
	}

	size = len(data)
	return &DecodeResult{
		Payload:     data,
		PayloadType: meta.PayloadType,
		Metadata:    *meta,
		Version:     version,
		StartCell:   p.start,
	}, nil
}

// Capacity reports the raw capacity of cover from start. An empty start
// measures from cell 0; no passphrase is involved, so the key-derived default
// start does not apply.
func (e *Engine) Capacity(ctx context.Context, cover *Carrier, lsb int, start string) (report CapacityReport, err error) {
	if cover == nil {
		return CapacityReport{}, newParamError(ErrInvalidParameter, "carrier", "")
	}
	if !IsValidLSB(lsb) {
		return CapacityReport{}, newParamError(ErrInvalidParameter, "lsb_count", strconv.Itoa(lsb))
	}
	addr, err := ParseStart(cover.Kind(), start)
	if err != nil {
		return CapacityReport{}, err
	}

	cell := 0
	defer func() {
		emitCapacityComputed(ctx, cover, lsb, cell, report.Bits, err)
	}()
	if !addr.IsZero() {
		cell, err = ResolveStart(cover, DerivedKey{}, addr)
		if err != nil {
			return CapacityReport{}, err
		}
	}
	return CapacityOf(cover, lsb, cell)
}

// CapacityFor reports the raw capacity of cover from the start Encode would
// use for passphrase: an explicit start, then a coordinate suffix on the
// passphrase, then the key-derived default.
func (e *Engine) CapacityFor(ctx context.Context, cover *Carrier, passphrase string, lsb int, start string) (report CapacityReport, err error) {
	if err := checkKeyParams(passphrase, lsb); err != nil {
		return CapacityReport{}, err
	}
	if cover == nil {
		return CapacityReport{}, newParamError(ErrInvalidParameter, "carrier", "")
	}

	var p placement
	defer func() {
		emitCapacityComputed(ctx, cover, lsb, p.start, report.Bits, err)
	}()
	p, err = place(cover, passphrase, lsb, start)
	if err != nil {
		return CapacityReport{}, err
	}
	return CapacityOf(cover, lsb, p.start)
}

// MaxPayload returns the largest payload, in bytes, that Encode can store in
// cover for this passphrase, lsb and start with the engine's current
// settings. Unlike Capacity it accounts for the key's traversal step and the
// frame overhead. The size assumes the payload is stored uncompressed; zero
// means not even a one-byte payload fits.
func (e *Engine) MaxPayload(ctx context.Context, cover *Carrier, passphrase string, lsb int, start string, pt PayloadType, name string) (int, error) {
	if err := checkKeyParams(passphrase, lsb); err != nil {
		return 0, err
	}
	if cover == nil {
		return 0, newParamError(ErrInvalidParameter, "carrier", "")
	}
	if pt == "" {
		pt = PayloadOther
	}
	if !IsValidPayloadType(pt) {
		return 0, newParamError(ErrInvalidParameter, "payload_type", string(pt))
	}

	cfg := e.snapshot()
	codec, err := cfg.codec()
	if err != nil {
		return 0, err
	}
	h, withDigest, err := cfg.hasher()
	if err != nil {
		return 0, err
	}
	digest := ""
	if withDigest {
		// Digests are fixed width, so any input gives the right length.
		if digest, err = h.Hash(nil); err != nil {
			return 0, err
		}
	}

	p, err := place(cover, passphrase, lsb, start)
	if err != nil {
		return 0, err
	}
	budget := usableCells(cover.Cells(), p.start, p.step) * lsb / 8

	fits := func(n int) (bool, error) {
		meta := Metadata{
			PayloadType:      pt,
			PayloadLength:    n,
			KeyValidationTag: ValidationTag(p.material, n),
			PayloadName:      name,
		}
		if withDigest {
			meta.DigestAlgo = cfg.digest
			meta.Digest = digest
		}
		raw, err := marshalMetadata(codec, &meta)
		if err != nil {
			return false, err
		}
		return Overhead(len(raw))+n <= budget, nil
	}

	ok, err := fits(1)
	if err != nil || !ok {
		return 0, err
	}
	// Metadata only grows with n, so sizing it for the whole budget gives a
	// lower bound to walk up from.
	upper := Metadata{PayloadType: pt, PayloadLength: budget, KeyValidationTag: ValidationTag(p.material, budget), PayloadName: name}
	if withDigest {
		upper.DigestAlgo = cfg.digest
		upper.Digest = digest
	}
	raw, err := marshalMetadata(codec, &upper)
	if err != nil {
		return 0, err
	}
	n := max(budget-Overhead(len(raw)), 1)
	for {
		ok, err := fits(n + 1)
		if err != nil {
			return 0, err
		}
		if !ok {
			return n, nil
		}
		n++
	}
}

// Encode hides payload in a copy of cover using a default Engine.
func Encode(ctx context.Context, cover *Carrier, payload Payload, passphrase string, lsb int, start string) (*EncodeResult, error) {
	return New().Encode(ctx, cover, payload, passphrase, lsb, start)
}

// Decode extracts a payload from stego using a default Engine. Every frame
// version is accepted.
func Decode(ctx context.Context, stego *Carrier, passphrase string, lsb int, start string) (*DecodeResult, error) {
	return New().Decode(ctx, stego, passphrase, lsb, start)
}

// Capacity reports the raw capacity of cover from start.
func Capacity(ctx context.Context, cover *Carrier, lsb int, start string) (CapacityReport, error) {
	return New().Capacity(ctx, cover, lsb, start)
}
