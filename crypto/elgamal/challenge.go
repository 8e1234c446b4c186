package elgamal

import (
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"strings"

	big "github.com/ncw/gmp"
	"github.com/zeebo/blake3"
)

// HashScheme selects the Fiat-Shamir hash. It is a property of the election:
// every proof made for an election uses the same scheme.
type HashScheme string

const (
	// HashSHA1 is bit-compatible with proofs already produced by Helios deployments.
	HashSHA1   HashScheme = "sha1"
	HashSHA256 HashScheme = "sha256"
	HashBLAKE3 HashScheme = "blake3"
)

// DefaultHashScheme is used when an election does not name one.
const DefaultHashScheme = HashSHA1

// ParseHashScheme maps a configured name to a scheme, "" meaning the default.
func ParseHashScheme(s string) (HashScheme, error) {
	switch HashScheme(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultHashScheme, nil
	case HashSHA1:
		return HashSHA1, nil
	case HashSHA256:
		return HashSHA256, nil
	case HashBLAKE3:
		return HashBLAKE3, nil
	}
	return "", fmt.Errorf("unknown challenge hash %q", s)
}

// OrDefault resolves the empty scheme.
func (h HashScheme) OrDefault() HashScheme {
	if h == "" {
		return DefaultHashScheme
	}
	return h
}

func (h HashScheme) sum(b []byte) []byte {
	switch h.OrDefault() {
	case HashSHA256:
		d := sha256.Sum256(b)
		return d[:]
	case HashBLAKE3:
		d := blake3.Sum256(b)
		return d[:]
	default:
		d := sha1.Sum(b)
		return d[:]
	}
}

// hashToInt reads the digest of s as a big-endian integer reduced mod q.
// SHA-1 output is shorter than any accepted q, so the reduction never changes it.
func (h HashScheme) hashToInt(s string, q *big.Int) *big.Int {
	c := new(big.Int).SetBytes(h.sum([]byte(s)))
	return c.Mod(c, q)
}

// Commitment is the (A, B) pair of a Chaum-Pedersen proof.
type Commitment struct {
	A, B *big.Int
}

// ChallengeFunc derives the challenge for a single commitment.
type ChallengeFunc func(c Commitment) *big.Int

// Challenge hashes the decimal commitments joined by commas: "A1,B1,A2,B2,...".
func (h HashScheme) Challenge(q *big.Int, commitments ...Commitment) *big.Int {
	parts := make([]string, 0, 2*len(commitments))
	for _, c := range commitments {
		parts = append(parts, c.A.String(), c.B.String())
	}
	return h.hashToInt(strings.Join(parts, ","), q)
}

// FiatShamir is the challenge for a stand-alone proof.
func (h HashScheme) FiatShamir(q *big.Int) ChallengeFunc {
	return func(c Commitment) *big.Int {
		return h.Challenge(q, c)
	}
}

// DLogChallenge is the challenge of a proof of knowledge of a secret key.
func (h HashScheme) DLogChallenge(q, commitment *big.Int) *big.Int {
	return h.hashToInt(commitment.String(), q)
}
