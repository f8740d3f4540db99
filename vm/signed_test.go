package vm

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func TestSignedRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 42, -42, 1<<62 - 1, -(1 << 62)}
	for _, c := range cases {
		u, _ := uint256.FromBig(new(big.Int).And(big.NewInt(c), new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))))
		s := ToSigned(u)
		back := FromSigned(s)
		if !back.Eq(u) {
			t.Fatalf("round trip failed for %d: got %v, want %v", c, &back, u)
		}
	}
}

func TestSignedZero(t *testing.T) {
	var z uint256.Int
	s := ToSigned(&z)
	if s.Sign != Zero {
		t.Fatalf("sign = %v, want Zero", s.Sign)
	}
	back := FromSigned(s)
	if !back.IsZero() {
		t.Fatalf("FromSigned(Zero) = %v, want 0", &back)
	}
}

func TestSignedMinusOneIsAllOnes(t *testing.T) {
	var allOnes uint256.Int
	allOnes.SetAllOne()
	s := ToSigned(&allOnes)
	if s.Sign != Minus {
		t.Fatalf("sign = %v, want Minus", s.Sign)
	}
	if !s.Magnitude.Eq(uint256.NewInt(1)) {
		t.Fatalf("magnitude of -1 = %v, want 1", &s.Magnitude)
	}
}

func TestCompareSignedOrdering(t *testing.T) {
	minusTwo := FromSigned(SignedInt{Sign: Minus, Magnitude: *uint256.NewInt(2)})
	minusOne := FromSigned(SignedInt{Sign: Minus, Magnitude: *uint256.NewInt(1)})
	one := *uint256.NewInt(1)

	if CompareSigned(ToSigned(&minusTwo), ToSigned(&minusOne)) >= 0 {
		t.Fatalf("-2 should compare less than -1")
	}
	if CompareSigned(ToSigned(&minusOne), ToSigned(&one)) >= 0 {
		t.Fatalf("-1 should compare less than 1")
	}
}
