package elgamal

import (
	"fmt"
	"io"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-helios/crypto/random"
)

// DLogProof is a Schnorr proof of knowledge of the secret key x behind y = g^x.
// A trustee publishes one with its public key so nobody can register a key
// they cannot decrypt with (or one derived from other trustees' keys).
type DLogProof struct {
	Commitment *big.Int
	Challenge  *big.Int
	Response   *big.Int
}

// ProveKnowledge creates the proof:
//
//	commitment = g^w, challenge = H(commitment) mod q, response = w + x*challenge mod q
func (sk *SecretKey) ProveKnowledge(src io.Reader, scheme HashScheme) *DLogProof {
	w := random.Int(src, sk.Q)
	commitment := new(big.Int).Exp(sk.G, w, sk.P)
	challenge := scheme.DLogChallenge(sk.Q, commitment)
	response := new(big.Int).Mul(sk.X, challenge)
	response.Add(response, w)
	response.Mod(response, sk.Q)
	return &DLogProof{Commitment: commitment, Challenge: challenge, Response: response}
}

// VerifyKnowledge checks g^response = commitment * y^challenge and that the
// challenge was derived from the commitment.
func (pk *PublicKey) VerifyKnowledge(pok *DLogProof, scheme HashScheme) error {
	if err := pk.Validate(); err != nil {
		return fmt.Errorf("%w: public key not valid: %v", ErrInvalidProof, err)
	}
	if pok == nil || pok.Commitment == nil || pok.Challenge == nil || pok.Response == nil {
		return fmt.Errorf("%w: incomplete proof of knowledge", ErrInvalidProof)
	}
	lhs := new(big.Int).Exp(pk.G, pok.Response, pk.P)
	rhs := new(big.Int).Exp(pk.Y, pok.Challenge, pk.P)
	rhs.Mul(rhs, pok.Commitment)
	rhs.Mod(rhs, pk.P)
	if lhs.Cmp(rhs) != 0 {
		return fmt.Errorf("%w: g^response != commitment * y^challenge", ErrInvalidProof)
	}
	if scheme.DLogChallenge(pk.Q, pok.Commitment).Cmp(pok.Challenge) != 0 {
		return fmt.Errorf("%w: calculated challenge does not match", ErrInvalidProof)
	}
	return nil
}
