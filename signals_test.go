package steg

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEmitEncode(_ *testing.T) {
	c := NewGeneric(make([]byte, 64))
	emitEncodeStart(context.Background(), c, 2, 10)
	emitEncodeComplete(context.Background(), c, 2, 0, 3, 760, 5*time.Millisecond, nil)
	emitEncodeComplete(context.Background(), c, 2, 0, 3, 760, 5*time.Millisecond, &CapacityError{NeedBits: 760, HaveBits: 128})
}

func TestEmitDecode(_ *testing.T) {
	c, _ := NewImage(make([]byte, 4*4*3), 4, 4, 3)
	emitDecodeStart(context.Background(), c, 1)
	emitDecodeComplete(context.Background(), c, 1, 12, VersionCBOR, 2, time.Millisecond, nil)
	emitDecodeComplete(context.Background(), c, 1, 12, 0, 0, time.Millisecond, errors.New("test error"))
}

func TestEmitCapacityComputed(_ *testing.T) {
	c, _ := NewAudio(make([]byte, 16), 2, 2, 8000)
	emitCapacityComputed(context.Background(), c, 1, 0, 8, nil)
	emitCapacityComputed(context.Background(), c, 9, 0, 0, ErrInvalidParameter)
}

func TestSignalVariables(t *testing.T) {
	signals := []struct {
		name   string
		signal interface{}
	}{
		{"SignalEncodeStart", SignalEncodeStart},
		{"SignalEncodeComplete", SignalEncodeComplete},
		{"SignalDecodeStart", SignalDecodeStart},
		{"SignalDecodeComplete", SignalDecodeComplete},
		{"SignalCapacityComputed", SignalCapacityComputed},
	}

	for _, s := range signals {
		if s.signal == nil {
			t.Errorf("%s is nil", s.name)
		}
	}
}

func TestKeyVariables(t *testing.T) {
	keys := []struct {
		name string
		key  interface{}
	}{
		{"KeyCarrierKind", KeyCarrierKind},
		{"KeyCells", KeyCells},
		{"KeyLSB", KeyLSB},
		{"KeyStartCell", KeyStartCell},
		{"KeyStep", KeyStep},
		{"KeyFrameBits", KeyFrameBits},
		{"KeySize", KeySize},
		{"KeyVersion", KeyVersion},
		{"KeyDuration", KeyDuration},
		{"KeyError", KeyError},
	}

	for _, k := range keys {
		if k.key == nil {
			t.Errorf("%s is nil", k.name)
		}
	}
}
