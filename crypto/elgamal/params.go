package elgamal

import (
	"fmt"
	"io"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-helios/crypto/random"
)

// System represents the group parameters for an ElGamal Cryptosystem:
// the order-Q subgroup of Z_P* generated by G.
type System struct {
	P, Q, G *big.Int
}

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
	bigTwo  = big.NewInt(2)
)

// minGenerateBits is the smallest modulus Generate accepts.
const minGenerateBits = 16

// Generate creates a new ElGamal system with a safe prime of n-bits,
// q = (p-1)/2, and a random generator of the order-q subgroup.
// This is very slow for large primes (>1024bits).
func Generate(src io.Reader, bits int) (sys *System, err error) {
	if bits < minGenerateBits {
		return nil, fmt.Errorf("%w: %d bits is too small", ErrGroupGeneration, bits)
	}
	sys = &System{}
	sys.P, sys.Q = random.SafePrimes(src, bits)
	pMinusOne := new(big.Int).Sub(sys.P, bigOne)
	var test big.Int
	for {
		sys.G = random.Int(src, sys.P)
		if sys.G.Cmp(bigOne) <= 0 || sys.G.Cmp(pMinusOne) >= 0 {
			continue
		}
		if test.Exp(sys.G, sys.Q, sys.P).Cmp(bigOne) == 0 {
			break
		}
	}
	return sys, nil
}

// Validate checks the system params are OK. That is that P and Q are
// (probably) prime, that Q divides P-1 and that G generates the order-Q subgroup.
// No minimum size is enforced here, see PublicKey.ValidateParams for that.
func (s *System) Validate() error {
	if s == nil || s.P == nil || s.Q == nil || s.G == nil {
		return fmt.Errorf("ElGamal System Invalid: missing parameters")
	}
	if !s.P.ProbablyPrime(random.PrimeRounds) {
		return fmt.Errorf("ElGamal System Invalid: p is not prime")
	}
	if !s.Q.ProbablyPrime(random.PrimeRounds) {
		return fmt.Errorf("ElGamal System Invalid: q is not prime")
	}
	pMinusOne := new(big.Int).Sub(s.P, bigOne)
	if new(big.Int).Rem(pMinusOne, s.Q).Cmp(bigZero) != 0 {
		return fmt.Errorf("ElGamal System Invalid: q does not divide p-1")
	}
	if s.G.Cmp(bigOne) <= 0 || s.G.Cmp(pMinusOne) >= 0 {
		return fmt.Errorf("ElGamal System Invalid: g out of range")
	}
	if new(big.Int).Exp(s.G, s.Q, s.P).Cmp(bigOne) != 0 {
		return fmt.Errorf("ElGamal System Invalid: g^q != 1 mod p")
	}
	return nil
}

// Equal reports whether both systems describe the same group.
func (s *System) Equal(other *System) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	return s.P.Cmp(other.P) == 0 && s.Q.Cmp(other.Q) == 0 && s.G.Cmp(other.G) == 0
}

// IsMember checks 1 < x < p-1 and x^q = 1 mod p.
func (s *System) IsMember(x *big.Int) bool {
	if x == nil || x.Cmp(bigOne) <= 0 {
		return false
	}
	if x.Cmp(new(big.Int).Sub(s.P, bigOne)) >= 0 {
		return false
	}
	return new(big.Int).Exp(x, s.Q, s.P).Cmp(bigOne) == 0
}

// inSubgroup is the weaker check used for proof commitments, where 1 is legal.
func (s *System) inSubgroup(x *big.Int) bool {
	if x == nil || x.Sign() <= 0 || x.Cmp(s.P) >= 0 {
		return false
	}
	return new(big.Int).Exp(x, s.Q, s.P).Cmp(bigOne) == 0
}

// GExp returns g^m mod p.
func (s *System) GExp(m int64) *big.Int {
	return new(big.Int).Exp(s.G, big.NewInt(m), s.P)
}

// Helios2048 is the standard Helios group: a 2048-bit p with a 256-bit
// prime-order subgroup. p is not a safe prime, q divides p-1.
func Helios2048() *System {
	return &System{
		P: mustDecimal("1632863208493301000238405503380545732960161477118595538973916730" +
			"9086214800406465799038583634953752941675645562182498120750264980" +
			"4923813755793676756487712938003103709647457670142436385184425538" +
			"2397348299526730404432677704766295748026939132278937838461942859" +
			"6446446984694306187644767462460965622580087564339212631775817895" +
			"9584090166763989756712661796378985576873170761772188432331506951" +
			"5788106125705301913307854592898356222139631316962247550981844266" +
			"1047018436264806901023966236718367204710755935899013750306107738" +
			"0023641379174265957374038711141877508043465647312506091968466381" +
			"83903982387884578266136503697493474682071"),
		Q: mustDecimal("6132956624834290129254387276997895087063355960866933713113937550" +
			"8370458778917"),
		G: mustDecimal("1488749222496318763428242153718604080130400801774349230448173738" +
			"2571933937568724473847106029915040150784031882206090286938661464" +
			"4588964942152739895478892011448573526110585722365787343195051280" +
			"4260237286457042655085520144811174657987181124911478167430906269" +
			"3442442368697449970648232621880001709535143047913661432883287150" +
			"0034298023922293615836086866432433497277919762472479486189304238" +
			"6618041055845827260662711127004009120307358023890530399447220293" +
			"0783207472394578498507764703191288249547659899997131166130259700" +
			"6044338912322981823484031759474502844334112659667891310245736295" +
			"46048637848902243503970966798589660808533"),
	}
}

func mustDecimal(s string) *big.Int {
	x, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad constant: " + s)
	}
	return x
}
