package field

import (
	"math/big"
	"strings"
)

// Field folds operators over canonical representatives in [0, p).
// All results are freshly allocated; arguments are never modified.
// A false second result means the value cannot be known statically.
type Field struct {
	curve Curve
	p     *big.Int
	half  *big.Int // p / 2
	mask  *big.Int // 2^bitlen(p) - 1
}

func New(c Curve) *Field {
	p := c.Prime()
	mask := new(big.Int).Lsh(big.NewInt(1), uint(p.BitLen()))
	mask.Sub(mask, big.NewInt(1))
	return &Field{
		curve: c,
		p:     p,
		half:  new(big.Int).Rsh(p, 1),
		mask:  mask,
	}
}

func (f *Field) Curve() Curve { return f.curve }

func (f *Field) Prime() *big.Int { return new(big.Int).Set(f.p) }

// Reduce maps any integer into [0, p).
func (f *Field) Reduce(x *big.Int) *big.Int {
	return new(big.Int).Mod(x, f.p)
}

func (f *Field) FromInt64(v int64) *big.Int {
	return f.Reduce(big.NewInt(v))
}

// Parse reads a decimal or 0x-prefixed hexadecimal literal.
func (f *Field) Parse(lit string) (*big.Int, bool) {
	lit = strings.ReplaceAll(strings.TrimSpace(lit), "_", "")
	base := 10
	if len(lit) > 2 && (lit[:2] == "0x" || lit[:2] == "0X") {
		lit, base = lit[2:], 16
	}
	v, ok := new(big.Int).SetString(lit, base)
	if !ok {
		return nil, false
	}
	return f.Reduce(v), true
}

// Signed returns x if x <= p/2, otherwise x - p.
func (f *Field) Signed(x *big.Int) *big.Int {
	if x.Cmp(f.half) <= 0 {
		return new(big.Int).Set(x)
	}
	return new(big.Int).Sub(x, f.p)
}

// Truthy reports whether x is nonzero.
func Truthy(x *big.Int) bool {
	return x.Sign() != 0
}

func boolean(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}
	return big.NewInt(0)
}

// Unary folds -, +, ! and ~.
func (f *Field) Unary(op string, x *big.Int) (*big.Int, bool) {
	switch op {
	case "-":
		return f.Reduce(new(big.Int).Neg(x)), true
	case "+":
		return new(big.Int).Set(x), true
	case "!":
		return boolean(!Truthy(x)), true
	case "~":
		return f.Reduce(new(big.Int).Xor(x, f.mask)), true
	default:
		return nil, false
	}
}

// Binary folds a binary operator. Division by zero and unknown operators are
// not statically known.
func (f *Field) Binary(op string, a, b *big.Int) (*big.Int, bool) {
	switch op {
	case "+":
		return f.Reduce(new(big.Int).Add(a, b)), true
	case "-":
		return f.Reduce(new(big.Int).Sub(a, b)), true
	case "*":
		return f.Reduce(new(big.Int).Mul(a, b)), true
	case "/":
		if b.Sign() == 0 {
			return nil, false
		}
		inv := new(big.Int).ModInverse(b, f.p)
		if inv == nil {
			return nil, false
		}
		return f.Reduce(inv.Mul(inv, a)), true
	case "\\":
		if b.Sign() == 0 {
			return nil, false
		}
		return new(big.Int).Div(a, b), true
	case "%":
		if b.Sign() == 0 {
			return nil, false
		}
		return new(big.Int).Mod(a, b), true
	case "**":
		return new(big.Int).Exp(a, b, f.p), true
	case "<<":
		return f.shift(a, b, true)
	case ">>":
		return f.shift(a, b, false)
	case "&":
		return f.Reduce(new(big.Int).And(a, b)), true
	case "|":
		return f.Reduce(new(big.Int).Or(a, b)), true
	case "^":
		return f.Reduce(new(big.Int).Xor(a, b)), true
	case "&&":
		return boolean(Truthy(a) && Truthy(b)), true
	case "||":
		return boolean(Truthy(a) || Truthy(b)), true
	case "==":
		return boolean(a.Cmp(b) == 0), true
	case "!=":
		return boolean(a.Cmp(b) != 0), true
	case "<", "<=", ">", ">=":
		c := f.Signed(a).Cmp(f.Signed(b))
		switch op {
		case "<":
			return boolean(c < 0), true
		case "<=":
			return boolean(c <= 0), true
		case ">":
			return boolean(c > 0), true
		default:
			return boolean(c >= 0), true
		}
	default:
		return nil, false
	}
}

// shift treats a shift amount above p/2 as a negative shift in the opposite
// direction.
func (f *Field) shift(x, k *big.Int, left bool) (*big.Int, bool) {
	if k.Cmp(f.half) > 0 {
		k = new(big.Int).Sub(f.p, k)
		left = !left
	}
	if !left {
		if k.BitLen() > 32 || k.Uint64() >= uint64(f.p.BitLen()) {
			return big.NewInt(0), true
		}
		return new(big.Int).Rsh(x, uint(k.Uint64())), true
	}
	pow := new(big.Int).Exp(big.NewInt(2), k, f.p)
	return f.Reduce(pow.Mul(pow, x)), true
}
