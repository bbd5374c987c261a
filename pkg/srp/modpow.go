package srp

import "math/big"

var one = big.NewInt(1)

// ModPow returns base^exponent mod modulus using right-to-left binary
// exponentiation. Operands are not modified. Negative operands and a zero
// modulus are not supported.
func ModPow(base, exponent, modulus *big.Int) *big.Int {
	if modulus.Cmp(one) == 0 {
		return new(big.Int)
	}

	result := big.NewInt(1)
	b := new(big.Int).Mod(base, modulus)
	e := new(big.Int).Set(exponent)

	for e.Sign() > 0 {
		if e.Bit(0) == 1 {
			result.Mul(result, b)
			result.Mod(result, modulus)
		}
		b.Mul(b, b)
		b.Mod(b, modulus)
		e.Rsh(e, 1)
	}
	return result
}
