package random

import (
	"crypto/rand"
	"io"
	gbig "math/big"
	"sync"

	big "github.com/ncw/gmp"
	"github.com/zeebo/blake3"
)

// PrimeRounds is the number of Miller-Rabin rounds used for every primality test.
const PrimeRounds = 40

// Reader is the production randomness source.
func Reader() io.Reader {
	return rand.Reader
}

// Int returns a uniform random int in [0, max) read from src.
func Int(src io.Reader, max *big.Int) *big.Int {
	r, err := rand.Int(src, new(gbig.Int).SetBytes(max.Bytes()))
	if err != nil {
		// the reader is broken. Nothing we can do.
		panic(err)
	}
	return new(big.Int).SetBytes(r.Bytes())
}

// SafePrimes returns two primes P and Q where P is `bits` bits
// and P = 2Q + 1
func SafePrimes(src io.Reader, bits int) (*big.Int, *big.Int) {
	one := gbig.NewInt(1)
	q := new(gbig.Int)
	for {
		p, err := rand.Prime(src, bits)
		// will only err on bad reader.
		if err != nil {
			panic(err)
		}
		q.Sub(p, one)
		q.Rsh(q, 1)
		if q.ProbablyPrime(PrimeRounds) && p.ProbablyPrime(PrimeRounds) {
			return new(big.Int).SetBytes(p.Bytes()), new(big.Int).SetBytes(q.Bytes())
		}
	}
}

type deterministic struct {
	mu sync.Mutex
	d  *blake3.Digest
}

// Deterministic returns a reproducible stream keyed by seed. It is for tests and
// simulations only, never for real elections. Safe for concurrent use.
func Deterministic(seed []byte) io.Reader {
	h := blake3.New()
	h.Write([]byte("go-helios/deterministic|"))
	h.Write(seed)
	return &deterministic{d: h.Digest()}
}

func (r *deterministic) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.d.Read(p)
}
