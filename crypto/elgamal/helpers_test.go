package elgamal

import (
	"io"
	"testing"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-helios/crypto/random"
)

// EightBit is tiny and only good for algebra, p = 2q + 1.
func EightBit() *System {
	return &System{P: big.NewInt(227), Q: big.NewInt(113), G: big.NewInt(69)}
}

// Safe128 is a 128-bit safe prime group, fast enough to test proofs on.
func Safe128() *System {
	return &System{
		P: mustDecimal("221705653048864131931963548010584689843"),
		Q: mustDecimal("110852826524432065965981774005292344921"),
		G: big.NewInt(4),
	}
}

func testSource(t *testing.T) io.Reader {
	return random.Deterministic([]byte(t.Name()))
}
