package steg

import (
	"strconv"
	"strings"
)

// addressForm records which start grammar an Address was parsed from.
type addressForm uint8

const (
	formNone    addressForm = iota
	formOffset              // "<int>": byte offset (generic) or pixel index (image)
	formPixel               // "<int>,<int>": pixel coordinate (image)
	formSeconds             // "<int>" or "<int>.<int>": time offset (audio)
)

// Address is a user-facing start location, parsed for one carrier kind.
// The zero Address means "not supplied" and resolves to the key-derived
// default start.
type Address struct {
	kind    Kind
	form    addressForm
	Offset  int
	X, Y    int
	Seconds float64
}

// IsZero reports whether no address was supplied.
func (a Address) IsZero() bool { return a.form == formNone }

// String renders the address in the grammar ParseStart accepts.
func (a Address) String() string {
	switch a.form {
	case formOffset:
		return strconv.Itoa(a.Offset)
	case formPixel:
		return strconv.Itoa(a.X) + "," + strconv.Itoa(a.Y)
	case formSeconds:
		return strconv.FormatFloat(a.Seconds, 'f', -1, 64)
	default:
		return ""
	}
}

// ParseStart parses a start string for a carrier kind.
//
// Accepted forms:
//
//	generic: "<int>"                       byte offset
//	image:   "<int>,<int>" or "<int>"      pixel (x,y) or pixel index
//	audio:   "<int>" or "<int>.<int>"      seconds
//
// An empty string yields the zero Address.
func ParseStart(kind Kind, s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Address{}, nil
	}
	invalid := newParamError(ErrInvalidParameter, "start", s)

	switch kind {
	case KindGeneric:
		n, ok := parseInt(s)
		if !ok {
			return Address{}, invalid
		}
		return Address{kind: kind, form: formOffset, Offset: n}, nil

	case KindImage:
		if xs, ys, found := strings.Cut(s, ","); found {
			x, okX := parseInt(strings.TrimSpace(xs))
			y, okY := parseInt(strings.TrimSpace(ys))
			if !okX || !okY {
				return Address{}, invalid
			}
			return Address{kind: kind, form: formPixel, X: x, Y: y}, nil
		}
		n, ok := parseInt(s)
		if !ok {
			return Address{}, invalid
		}
		return Address{kind: kind, form: formOffset, Offset: n}, nil

	case KindAudio:
		if !isDecimal(s) {
			return Address{}, invalid
		}
		seconds, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Address{}, invalid
		}
		return Address{kind: kind, form: formSeconds, Seconds: seconds}, nil
	}
	return Address{}, invalid
}

// SplitPassphrase separates a trailing "@<address>" coordinate from a
// passphrase. The suffix is only recognised when it parses as a start
// address for kind and the prefix is non-empty; otherwise the whole string is
// key material and the zero Address is returned.
func SplitPassphrase(passphrase string, kind Kind) (material string, addr Address, ok bool) {
	at := strings.LastIndexByte(passphrase, '@')
	if at <= 0 {
		return passphrase, Address{}, false
	}
	suffix := passphrase[at+1:]
	if strings.TrimSpace(suffix) == "" {
		return passphrase, Address{}, false
	}
	parsed, err := ParseStart(kind, suffix)
	if err != nil {
		return passphrase, Address{}, false
	}
	return passphrase[:at], parsed, true
}

// ResolveStart returns the traversal origin cell for a carrier.
// A supplied address wins; otherwise the start is PositionSeed mod half the
// carrier, snapped down to a pixel or frame boundary so it can be reported
// back as an address and round-trip.
func ResolveStart(c *Carrier, key DerivedKey, addr Address) (int, error) {
	cells := c.Cells()
	if cells == 0 {
		return 0, newParamError(ErrOutOfRange, "start", "empty carrier")
	}
	if addr.IsZero() {
		return defaultStart(c, key), nil
	}
	if addr.kind != c.kind {
		return 0, newParamError(ErrInvalidParameter, "start", addr.String()+" is not a "+c.kind.String()+" address")
	}

	switch addr.form {
	case formOffset:
		if c.kind == KindImage {
			if addr.Offset < 0 || addr.Offset >= c.width*c.height {
				return 0, newParamError(ErrOutOfRange, "start", addr.String())
			}
			return addr.Offset * c.channels, nil
		}
		if addr.Offset < 0 || addr.Offset >= cells {
			return 0, newParamError(ErrOutOfRange, "start", addr.String())
		}
		return addr.Offset, nil
	case formPixel:
		return c.CellAt(addr.X, addr.Y)
	case formSeconds:
		return c.CellAtSeconds(addr.Seconds), nil
	}
	return 0, newParamError(ErrInvalidParameter, "start", addr.String())
}

// AddressOf renders a resolved cell as the address a caller would pass back:
// an offset for generic carriers, a pixel for images and seconds for audio.
func AddressOf(c *Carrier, cell int) Address {
	switch c.kind {
	case KindImage:
		x, y := c.PixelOf(cell)
		return Address{kind: KindImage, form: formPixel, X: x, Y: y}
	case KindAudio:
		return Address{kind: KindAudio, form: formSeconds, Seconds: c.SecondsOf(cell)}
	default:
		return Address{kind: KindGeneric, form: formOffset, Offset: cell}
	}
}

func defaultStart(c *Carrier, key DerivedKey) int {
	half := c.Cells() / 2
	if half == 0 {
		return 0
	}
	start := int(uint64(key.PositionSeed) % uint64(half)) // #nosec G115 -- half is a positive int
	if c.channels > 1 {
		start -= start % c.channels
	}
	return start
}

// parseInt accepts an optional leading '-' followed by ASCII digits.
func parseInt(s string) (int, bool) {
	digits := strings.TrimPrefix(s, "-")
	if digits == "" {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// isDecimal accepts "<int>" or "<int>.<int>" with an optional leading '-'.
func isDecimal(s string) bool {
	whole, frac, hasFrac := strings.Cut(strings.TrimPrefix(s, "-"), ".")
	if _, ok := parseInt(whole); !ok || strings.HasPrefix(whole, "-") {
		return false
	}
	if hasFrac {
		if _, ok := parseInt(frac); !ok || strings.HasPrefix(frac, "-") {
			return false
		}
	}
	return true
}
