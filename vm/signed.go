package vm

import "github.com/holiman/uint256"

// Sign is the sign component of a two's-complement view of a u256 word.
type Sign int8

const (
	Minus Sign = -1
	Zero  Sign = 0
	Plus  Sign = 1
)

// SignedInt is the (sign, magnitude) decomposition of a 256-bit two's
// complement integer. It exists so that SLT, SGT and SAR can be expressed
// against an explicit sign rather than leaning on Go's native signed
// integer types, which top out at 64 bits.
type SignedInt struct {
	Sign      Sign
	Magnitude uint256.Int
}

// ToSigned interprets u as a two's-complement signed 256-bit integer.
func ToSigned(u *uint256.Int) SignedInt {
	if u.IsZero() {
		return SignedInt{Sign: Zero}
	}
	if !hasSignBit(u) {
		return SignedInt{Sign: Plus, Magnitude: *u}
	}
	var mag uint256.Int
	mag.Not(u)
	mag.AddUint64(&mag, 1)
	return SignedInt{Sign: Minus, Magnitude: mag}
}

// FromSigned reconstructs the two's-complement u256 encoding of s.
func FromSigned(s SignedInt) uint256.Int {
	if s.Sign != Minus {
		return s.Magnitude
	}
	var u uint256.Int
	u.Not(&s.Magnitude)
	u.AddUint64(&u, 1)
	return u
}

// CompareSigned orders two signed views: Minus < Zero < Plus, and within
// Minus the larger magnitude is the smaller (more negative) value.
func CompareSigned(a, b SignedInt) int {
	if a.Sign != b.Sign {
		if a.Sign < b.Sign {
			return -1
		}
		return 1
	}
	switch a.Sign {
	case Zero:
		return 0
	case Plus:
		return a.Magnitude.Cmp(&b.Magnitude)
	default:
		return -a.Magnitude.Cmp(&b.Magnitude)
	}
}

// hasSignBit reports whether bit 255 (the two's-complement sign bit) is set.
func hasSignBit(u *uint256.Int) bool {
	var shifted uint256.Int
	shifted.Rsh(u, 255)
	return !shifted.IsZero()
}
