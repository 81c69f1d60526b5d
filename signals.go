package steg

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for codec events.
var (
	SignalEncodeStart      = capitan.NewSignal("steg.encode.start", "Encode operation beginning")
	SignalEncodeComplete   = capitan.NewSignal("steg.encode.complete", "Encode operation finished")
	SignalDecodeStart      = capitan.NewSignal("steg.decode.start", "Decode operation beginning")
	SignalDecodeComplete   = capitan.NewSignal("steg.decode.complete", "Decode operation finished")
	SignalCapacityComputed = capitan.NewSignal("steg.capacity.computed", "Capacity query answered")
)

// Keys for typed event data.
var (
	KeyCarrierKind = capitan.NewStringKey("carrier_kind")
	KeyCells       = capitan.NewIntKey("cells")
	KeyLSB         = capitan.NewIntKey("lsb_count")
	KeyStartCell   = capitan.NewIntKey("start_cell")
	KeyStep        = capitan.NewIntKey("step")
	KeyFrameBits   = capitan.NewIntKey("frame_bits")
	KeySize        = capitan.NewIntKey("size")
	KeyVersion     = capitan.NewIntKey("version")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

// emitEncodeStart emits an event when encode begins.
func emitEncodeStart(ctx context.Context, c *Carrier, lsb, size int) {
	capitan.Emit(ctx, SignalEncodeStart,
		KeyCarrierKind.Field(c.Kind().String()),
		KeyCells.Field(c.Cells()),
		KeyLSB.Field(lsb),
		KeySize.Field(size),
	)
}

// emitEncodeComplete emits an event when encode finishes.
func emitEncodeComplete(ctx context.Context, c *Carrier, lsb, startCell, step, frameBits int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyCarrierKind.Field(c.Kind().String()),
		KeyLSB.Field(lsb),
		KeyStartCell.Field(startCell),
		KeyStep.Field(step),
		KeyFrameBits.Field(frameBits),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalEncodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalEncodeComplete, fields...)
	}
}

// emitDecodeStart emits an event when decode begins.
func emitDecodeStart(ctx context.Context, c *Carrier, lsb int) {
	capitan.Emit(ctx, SignalDecodeStart,
		KeyCarrierKind.Field(c.Kind().String()),
		KeyCells.Field(c.Cells()),
		KeyLSB.Field(lsb),
	)
}

// emitDecodeComplete emits an event when decode finishes.
func emitDecodeComplete(ctx context.Context, c *Carrier, lsb, startCell int, version Version, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyCarrierKind.Field(c.Kind().String()),
		KeyLSB.Field(lsb),
		KeyStartCell.Field(startCell),
		KeyVersion.Field(int(version)),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDecodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalDecodeComplete, fields...)
	}
}

// emitCapacityComputed emits an event when a capacity query is answered.
func emitCapacityComputed(ctx context.Context, c *Carrier, lsb, startCell, bits int, err error) {
	fields := []capitan.Field{
		KeyCarrierKind.Field(c.Kind().String()),
		KeyLSB.Field(lsb),
		KeyStartCell.Field(startCell),
		KeySize.Field(bits),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalCapacityComputed, fields...)
	} else {
		capitan.Emit(ctx, SignalCapacityComputed, fields...)
	}
}
