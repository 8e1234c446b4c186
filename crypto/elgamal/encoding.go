package elgamal

import (
	big "github.com/ncw/gmp"
)

// EncodeMessage maps m into the order-q subgroup: y = m+1 is used when it is
// already a member, otherwise -y mod p. This only works when p is a safe prime,
// where exactly one of y and p-y is a quadratic residue.
func (s *System) EncodeMessage(m *big.Int) *big.Int {
	y := new(big.Int).Add(m, bigOne)
	if new(big.Int).Exp(y, s.Q, s.P).Cmp(bigOne) == 0 {
		return y
	}
	y.Neg(y)
	return y.Mod(y, s.P)
}

// DecodeMessage inverts EncodeMessage. The representative below q is taken as is,
// anything else is negated mod p, and the +1 offset removed.
func (s *System) DecodeMessage(e *big.Int) *big.Int {
	var y *big.Int
	if e.Cmp(s.Q) < 0 {
		y = new(big.Int).Set(e)
	} else {
		y = new(big.Int).Neg(e)
		y.Mod(y, s.P)
	}
	return y.Sub(y, bigOne)
}
