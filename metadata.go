package steg

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/sentinel"
)

func init() {
	sentinel.Tag("frame")
}

// Metadata is the self-describing block stored between the frame header and
// the payload. Fields tagged frame:"required" must be present on decode.
type Metadata struct {
	PayloadType      PayloadType `json:"payload_type" msgpack:"payload_type" cbor:"payload_type" frame:"required"`
	PayloadLength    int         `json:"payload_length" msgpack:"payload_length" cbor:"payload_length" frame:"required"`
	KeyValidationTag string      `json:"key_validation_tag" msgpack:"key_validation_tag" cbor:"key_validation_tag" frame:"required"`

	PayloadName    string      `json:"payload_name,omitempty" msgpack:"payload_name,omitempty" cbor:"payload_name,omitempty"`
	Compression    Compression `json:"compression,omitempty" msgpack:"compression,omitempty" cbor:"compression,omitempty"`
	OriginalLength int         `json:"original_length,omitempty" msgpack:"original_length,omitempty" cbor:"original_length,omitempty"`
	DigestAlgo     DigestAlgo  `json:"digest_algo,omitempty" msgpack:"digest_algo,omitempty" cbor:"digest_algo,omitempty"`
	Digest         string      `json:"digest,omitempty" msgpack:"digest,omitempty" cbor:"digest,omitempty"`
}

// Codec serialises frame metadata.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// jsonCodec implements Codec for JSON.
type jsonCodec struct{}

// JSONCodec returns the JSON metadata codec used by VersionJSON.
func JSONCodec() Codec {
	return &jsonCodec{}
}

func (c *jsonCodec) ContentType() string {
	return "application/json"
}

func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// msgpackCodec implements Codec for MessagePack.
type msgpackCodec struct{}

// MsgpackCodec returns the MessagePack metadata codec used by VersionMsgpack.
func MsgpackCodec() Codec {
	return &msgpackCodec{}
}

func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// cborEncMode uses Core Deterministic Encoding (RFC 8949 §4.2) so the same
// metadata always produces the same bytes.
var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("steg: CBOR encoder initialization failed: " + err.Error())
	}
	cborDecMode, err = cbor.DecOptions{
		MaxNestedLevels: 4,
	}.DecMode()
	if err != nil {
		panic("steg: CBOR decoder initialization failed: " + err.Error())
	}
}

// cborCodec implements Codec for CBOR.
type cborCodec struct{}

// CBORCodec returns the CBOR metadata codec used by VersionCBOR.
func CBORCodec() Codec {
	return &cborCodec{}
}

func (c *cborCodec) ContentType() string {
	return "application/cbor"
}

func (c *cborCodec) Marshal(v any) ([]byte, error) {
	return cborEncMode.Marshal(v)
}

func (c *cborCodec) Unmarshal(data []byte, v any) error {
	return cborDecMode.Unmarshal(data, v)
}

// builtinMetadataCodecs returns the default version table.
func builtinMetadataCodecs() map[Version]Codec {
	return map[Version]Codec{
		VersionJSON:    JSONCodec(),
		VersionMsgpack: MsgpackCodec(),
		VersionCBOR:    CBORCodec(),
	}
}

// requiredField locates a frame:"required" field of Metadata.
type requiredField struct {
	index []int
	name  string
}

var (
	requiredOnce   sync.Once
	requiredFields []requiredField
)

// metadataRequired returns the required field plan, scanned once.
func metadataRequired() []requiredField {
	requiredOnce.Do(func() {
		spec := sentinel.Scan[Metadata]()
		rt := reflect.TypeOf(Metadata{})
		for _, field := range spec.Fields {
			if field.Tags["frame"] != "required" {
				continue
			}
			name := field.Name
			if sf, ok := rt.FieldByName(field.Name); ok {
				if tag := sf.Tag.Get("json"); tag != "" {
					name = tag
				}
			}
			requiredFields = append(requiredFields, requiredField{index: field.Index, name: name})
		}
	})
	return requiredFields
}

// validate checks required fields and the enumerated values the decoder
// must act on. digest_algo is left open: engines may register extra hashers,
// and the decoder reports an algorithm it has no hasher for.
func (m *Metadata) validate() error {
	v := reflect.ValueOf(m).Elem()
	for _, f := range metadataRequired() {
		if v.FieldByIndex(f.index).IsZero() {
			return fmt.Errorf("missing required field %s", f.name)
		}
	}
	if m.PayloadLength < 0 {
		return fmt.Errorf("negative payload_length %d", m.PayloadLength)
	}
	if m.Compression != "" && !IsValidCompression(m.Compression) {
		return fmt.Errorf("unknown compression %q", m.Compression)
	}
	if m.Compression != "" && m.Compression != CompressNone {
		if m.OriginalLength <= 0 || m.OriginalLength > maxOriginalLength {
			return fmt.Errorf("original_length %d out of range", m.OriginalLength)
		}
	}
	if m.DigestAlgo != "" && m.DigestAlgo != DigestNone && m.Digest == "" {
		return fmt.Errorf("digest_algo %s without digest", m.DigestAlgo)
	}
	return nil
}
