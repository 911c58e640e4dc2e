package field

import (
	"fmt"
	"math/big"
	"strings"
)

// Curve selects the scalar field the circuit is compiled for.
type Curve uint8

const (
	BN254 Curve = iota
	BLS12_381
	Goldilocks
)

const DefaultCurve = BN254

var primes = [...]string{
	BN254:      "21888242871839275222246405745257275088548364400416034343698204186575808495617",
	BLS12_381:  "52435875175126190479447740508185965837690552500527637822603658699938581184513",
	Goldilocks: "18446744069414584321", // 2^64 - 2^32 + 1
}

// ParseCurve accepts the usual spellings: bn254 (bn128), bls12-381 (bls12_381), goldilocks.
func ParseCurve(s string) (Curve, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-") {
	case "", "bn254", "bn128":
		return BN254, nil
	case "bls12-381", "bls12381":
		return BLS12_381, nil
	case "goldilocks":
		return Goldilocks, nil
	default:
		return DefaultCurve, fmt.Errorf("unknown curve %q (want bn254, bls12-381 or goldilocks)", s)
	}
}

func (c Curve) String() string {
	switch c {
	case BN254:
		return "bn254"
	case BLS12_381:
		return "bls12-381"
	case Goldilocks:
		return "goldilocks"
	default:
		return fmt.Sprintf("Curve(%d)", uint8(c))
	}
}

// Prime returns a fresh copy of the field modulus.
func (c Curve) Prime() *big.Int {
	if int(c) >= len(primes) {
		c = DefaultCurve
	}
	p, ok := new(big.Int).SetString(primes[c], 10)
	if !ok {
		panic("field: bad prime literal")
	}
	return p
}
