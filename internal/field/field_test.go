package field

import (
	"math/big"
	"testing"
)

func TestParseCurve(t *testing.T) {
	tests := []struct {
		in      string
		want    Curve
		wantErr bool
	}{
		{"", BN254, false},
		{"BN254", BN254, false},
		{"bn128", BN254, false},
		{"BLS12_381", BLS12_381, false},
		{"bls12-381", BLS12_381, false},
		{"Goldilocks", Goldilocks, false},
		{"secp256k1", BN254, true},
	}
	for _, tt := range tests {
		got, err := ParseCurve(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseCurve(%q) = %v, %v", tt.in, got, err)
		}
	}
	for _, c := range []Curve{BN254, BLS12_381, Goldilocks} {
		back, err := ParseCurve(c.String())
		if err != nil || back != c {
			t.Errorf("round trip of %v failed", c)
		}
		if !c.Prime().ProbablyPrime(20) {
			t.Errorf("%v modulus is not prime", c)
		}
	}
}

func TestSignedComparison(t *testing.T) {
	f := New(BN254)
	minusOne := f.Reduce(big.NewInt(-1))
	zero := big.NewInt(0)

	// p-1 is -1 in the signed interval, so it is less than zero.
	lt, ok := f.Binary("<", minusOne, zero)
	if !ok || lt.Int64() != 1 {
		t.Errorf("p-1 < 0 = %v, want 1", lt)
	}
	half := new(big.Int).Rsh(f.Prime(), 1)
	above := new(big.Int).Add(half, big.NewInt(1))
	gt, _ := f.Binary(">", half, above)
	if gt.Int64() != 1 {
		t.Errorf("p/2 > p/2+1 = %v, want 1", gt)
	}
	eq, _ := f.Binary("==", minusOne, f.FromInt64(-1))
	if eq.Int64() != 1 {
		t.Error("-1 == p-1 should hold")
	}
}

func TestArithmetic(t *testing.T) {
	f := New(Goldilocks)
	n := func(v int64) *big.Int { return f.FromInt64(v) }

	tests := []struct {
		op     string
		a, b   *big.Int
		want   *big.Int
		wantOK bool
	}{
		{"+", n(2), n(3), n(5), true},
		{"-", n(2), n(3), n(-1), true},
		{"*", n(-1), n(-1), n(1), true},
		{"\\", n(7), n(2), n(3), true},
		{"%", n(7), n(4), n(3), true},
		{"**", n(2), n(10), n(1024), true},
		{"<<", n(1), n(4), n(16), true},
		{">>", n(16), n(2), n(4), true},
		{">>", n(16), n(200), n(0), true},
		{"&", n(6), n(3), n(2), true},
		{"|", n(6), n(3), n(7), true},
		{"^", n(6), n(3), n(5), true},
		{"&&", n(6), n(0), n(0), true},
		{"||", n(0), n(3), n(1), true},
		{"/", n(1), n(0), nil, false},
		{"\\", n(1), n(0), nil, false},
		{"%", n(1), n(0), nil, false},
		{"???", n(1), n(1), nil, false},
	}
	for _, tt := range tests {
		got, ok := f.Binary(tt.op, tt.a, tt.b)
		if ok != tt.wantOK {
			t.Errorf("%v %s %v: ok=%v", tt.a, tt.op, tt.b, ok)
			continue
		}
		if ok && got.Cmp(tt.want) != 0 {
			t.Errorf("%v %s %v = %v, want %v", tt.a, tt.op, tt.b, got, tt.want)
		}
	}
}

func TestDivisionIsInverseMultiplication(t *testing.T) {
	f := New(BN254)
	three := f.FromInt64(3)
	q, ok := f.Binary("/", f.FromInt64(1), three)
	if !ok {
		t.Fatal("1/3 not folded")
	}
	back, _ := f.Binary("*", q, three)
	if back.Cmp(big.NewInt(1)) != 0 {
		t.Errorf("(1/3)*3 = %v, want 1", back)
	}
}

func TestUnaryAndParse(t *testing.T) {
	f := New(BN254)
	neg, _ := f.Unary("-", big.NewInt(1))
	if neg.Cmp(new(big.Int).Sub(f.Prime(), big.NewInt(1))) != 0 {
		t.Errorf("-1 = %v", neg)
	}
	not, _ := f.Unary("!", big.NewInt(5))
	if not.Sign() != 0 {
		t.Errorf("!5 = %v", not)
	}
	inv, _ := f.Unary("~", big.NewInt(0))
	if inv.Cmp(f.Prime()) >= 0 {
		t.Error("~0 not reduced")
	}
	if _, ok := f.Unary("?", big.NewInt(0)); ok {
		t.Error("unknown unary operator folded")
	}

	hex, ok := f.Parse("0x10")
	if !ok || hex.Int64() != 16 {
		t.Errorf("Parse(0x10) = %v, %v", hex, ok)
	}
	if _, ok := f.Parse("abc"); ok {
		t.Error("Parse accepted garbage")
	}
	wrapped, _ := f.Parse(f.Prime().String())
	if wrapped.Sign() != 0 {
		t.Error("p should reduce to 0")
	}
}
