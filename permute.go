package steg

// LCG constants for the permutation sequence. The generator is pinned so that
// every implementation reproduces the same bit plan for the same key.
const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgMask       = 0x7fffffff
)

// lcg is a 31-bit linear congruential generator seeded from the key.
type lcg struct {
	state uint32
}

func (g *lcg) next() uint32 {
	// Wrapping uint32 arithmetic followed by the 31-bit mask equals the
	// unbounded computation mod 2^31.
	g.state = (g.state*lcgMultiplier + lcgIncrement) & lcgMask
	return g.state
}

// shuffleBits runs a Fisher-Yates shuffle of the bit indices 0..7 driven by
// the LCG seeded with seed.
func shuffleBits(seed uint32) [8]uint8 {
	table := [8]uint8{0, 1, 2, 3, 4, 5, 6, 7}
	g := lcg{state: seed}
	for i := len(table) - 1; i > 0; i-- {
		j := g.next() % uint32(i+1) // #nosec G115 -- i < 8
		table[i], table[j] = table[j], table[i]
	}
	return table
}

// PermuteBits returns the ordered bit positions used in every cell.
//
// The shuffled table is walked from bitOffset, wrapping around, and only
// positions below lsb are kept, so exactly lsb distinct low-order positions
// come back in a key-dependent order. For lsb == 8 this is the full rotated
// shuffle. For smaller lsb it differs from taking the first lsb entries of the
// rotation, which could select high-order bits; compatible implementations
// must filter the same way. lsb outside [1,8] returns nil.
func PermuteBits(seed uint32, lsb int, bitOffset uint8) []uint8 {
	if lsb < minLSB || lsb > maxLSB {
		return nil
	}
	table := shuffleBits(seed)
	plan := make([]uint8, 0, lsb)
	for k := 0; k < len(table); k++ {
		pos := table[(int(bitOffset)+k)%len(table)]
		if int(pos) < lsb {
			plan = append(plan, pos)
		}
	}
	return plan
}
