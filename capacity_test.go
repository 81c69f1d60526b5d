package steg

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCapacityOf_Generic(t *testing.T) {
	c := NewGeneric(make([]byte, 1000))
	got, err := CapacityOf(c, 1, 0)
	if err != nil {
		t.Fatalf("CapacityOf() error: %v", err)
	}
	if got.Bits != 1000 || got.Bytes != 125 || got.StartOffsetBits != 0 {
		t.Errorf("CapacityOf() = %+v, want 1000 bits / 125 bytes", got)
	}
}

func TestCapacityOf_Image(t *testing.T) {
	c, _ := NewImage(make([]byte, 100*100*3), 100, 100, 3)
	got, err := CapacityOf(c, 2, 3030)
	if err != nil {
		t.Fatalf("CapacityOf() error: %v", err)
	}
	if got.Bytes != 6742 {
		t.Errorf("Bytes = %d, want 6742", got.Bytes)
	}
	if got.Bits != (30000-3030)*2 {
		t.Errorf("Bits = %d, want %d", got.Bits, (30000-3030)*2)
	}
	if got.StartOffsetBits != 6060 {
		t.Errorf("StartOffsetBits = %d, want 6060", got.StartOffsetBits)
	}
	if got.Width != 100 || got.Height != 100 || got.Channels != 3 || got.StartX != 10 || got.StartY != 10 {
		t.Errorf("image context = %+v", got)
	}
}

func TestCapacityOf_Audio(t *testing.T) {
	c, _ := NewAudio(make([]byte, 8000*2*2), 2, 2, 8000)
	got, err := CapacityOf(c, 2, 8000)
	if err != nil {
		t.Fatalf("CapacityOf() error: %v", err)
	}
	if got.Duration != time.Second {
		t.Errorf("Duration = %v, want 1s", got.Duration)
	}
	if got.BitsPerSecond != 8000*2*2 {
		t.Errorf("BitsPerSecond = %d, want %d", got.BitsPerSecond, 8000*2*2)
	}
	if got.StartSeconds != 0.5 {
		t.Errorf("StartSeconds = %v, want 0.5", got.StartSeconds)
	}
	if got.Bits != 8000*2 {
		t.Errorf("Bits = %d, want %d", got.Bits, 8000*2)
	}
}

func TestCapacityOf_InvalidLSB(t *testing.T) {
	c := NewGeneric(make([]byte, 10))
	for _, lsb := range []int{0, 9, -3} {
		if _, err := CapacityOf(c, lsb, 0); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("CapacityOf(lsb=%d) error = %v, want ErrInvalidParameter", lsb, err)
		}
	}
	if _, err := CapacityOf(c, 1, 11); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("CapacityOf(start=11) error = %v, want ErrOutOfRange", err)
	}
}

func TestCapacityOf_Monotonic(t *testing.T) {
	c := NewGeneric(make([]byte, 257))
	for lsb := minLSB; lsb <= maxLSB; lsb++ {
		prev := -1
		for start := c.Cells(); start >= 0; start-- {
			got, err := CapacityOf(c, lsb, start)
			if err != nil {
				t.Fatalf("CapacityOf() error: %v", err)
			}
			if got.Bits < prev {
				t.Fatalf("capacity decreased moving start back to %d", start)
			}
			prev = got.Bits
		}
	}
	for start := 0; start <= c.Cells(); start += 16 {
		prev := -1
		for lsb := minLSB; lsb <= maxLSB; lsb++ {
			got, _ := CapacityOf(c, lsb, start)
			if got.Bits < prev {
				t.Fatalf("capacity decreased raising lsb to %d", lsb)
			}
			prev = got.Bits
		}
	}
}

func TestCapacityReport_AvailableBytes(t *testing.T) {
	r := CapacityReport{Bytes: 125}
	if got := r.AvailableBytes(82); got != 125-Overhead(82) {
		t.Errorf("AvailableBytes(82) = %d, want %d", got, 125-Overhead(82))
	}
	if got := r.AvailableBytes(82); got != 32 {
		t.Errorf("AvailableBytes(82) = %d, want 32", got)
	}
	if got := r.AvailableBytes(500); got != 0 {
		t.Errorf("AvailableBytes(500) = %d, want 0", got)
	}
}

func TestEngineCapacity(t *testing.T) {
	ctx := context.Background()
	img, _ := NewImage(make([]byte, 100*100*3), 100, 100, 3)

	got, err := Capacity(ctx, img, 2, "10,10")
	if err != nil {
		t.Fatalf("Capacity() error: %v", err)
	}
	if got.StartCell != 3030 || got.Bytes != 6742 {
		t.Errorf("Capacity() = %+v, want start 3030, 6742 bytes", got)
	}

	whole, err := Capacity(ctx, img, 2, "")
	if err != nil {
		t.Fatalf("Capacity() error: %v", err)
	}
	if whole.StartCell != 0 || whole.Bytes != 7500 {
		t.Errorf("Capacity(empty start) = %+v, want start 0, 7500 bytes", whole)
	}

	if _, err := Capacity(ctx, img, 2, "x"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Capacity(bad start) error = %v, want ErrInvalidParameter", err)
	}
	if _, err := Capacity(ctx, img, 2, "200,0"); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Capacity(outside) error = %v, want ErrOutOfRange", err)
	}
	if _, err := Capacity(ctx, nil, 2, ""); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Capacity(nil) error = %v, want ErrInvalidParameter", err)
	}
}

func TestEngineCapacityFor(t *testing.T) {
	ctx := context.Background()
	img, _ := NewImage(make([]byte, 100*100*3), 100, 100, 3)
	eng := New()

	tests := []struct {
		name       string
		passphrase string
		start      string
		wantCell   int
	}{
		{"key default", "key1", "", 492},
		{"suffix", "key1@10,10", "", 3030},
		{"explicit beats suffix", "key1@10,10", "0,0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eng.CapacityFor(ctx, img, tt.passphrase, 2, tt.start)
			if err != nil {
				t.Fatalf("CapacityFor() error: %v", err)
			}
			if got.StartCell != tt.wantCell || got.Bytes != (30000-tt.wantCell)*2/8 {
				t.Errorf("CapacityFor() = %+v, want start %d", got, tt.wantCell)
			}

			// Encode lands on the same start.
			res, err := eng.Encode(ctx, img, Payload{Data: []byte("hi")}, tt.passphrase, 2, tt.start)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			if res.StartCell != got.StartCell {
				t.Errorf("Encode start %d, CapacityFor start %d", res.StartCell, got.StartCell)
			}
		})
	}

	if _, err := eng.CapacityFor(ctx, img, "", 2, ""); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("CapacityFor(empty passphrase) error = %v, want ErrInvalidParameter", err)
	}
	if _, err := eng.CapacityFor(ctx, nil, "key1", 2, ""); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("CapacityFor(nil) error = %v, want ErrInvalidParameter", err)
	}
}
