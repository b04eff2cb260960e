package utils

import (
	"math/big"
)

var twoPow64 = new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 64))

// BigIntToFloat64 converts an integer to the nearest float64. Nil is zero.
func BigIntToFloat64(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}

// Q64ToFloat64 converts a Q64.64 fixed point value to float64.
func Q64ToFloat64(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v), twoPow64).Float64()
	return f
}

// Float64ToQ64 is the inverse of Q64ToFloat64, truncated toward zero.
func Float64ToQ64(f float64) *big.Int {
	v, _ := new(big.Float).Mul(big.NewFloat(f), twoPow64).Int(nil)
	return v
}
