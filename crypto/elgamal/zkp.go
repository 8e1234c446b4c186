package elgamal

import (
	"fmt"
	"io"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-helios/crypto/random"
)

// ZKP in general form, a Chaum-Pedersen proof that log_g(G) == log_h(H).
// It doesn't carry the bases, those come from context.
//
// The general form is:
//
//	CreateZKP(g, h, x, challengeFn)
//	  w = random() in [0, q)
//	  A = g^w % p
//	  B = h^w % p
//	  C = challengeFn(A, B)
//	  R = (w + x*C) % q
//
//	Verify(g, h, G, H)
//	  check g^R % p === (A * G^C) % p
//	  check h^R % p === (B * H^C) % p
//
// We have two uses in this package:
//
//	Proof of Correct Encryption to one of a set of plaintexts (the OR proof)
//	  g = g, h = y, G = alpha, H = beta/m, x = r
//	Proof of Correct Decryption of a ciphertext
//	  g = g, h = alpha, G = y, H = alpha^x, x = secret key
type ZKP struct {
	Commitment Commitment
	Challenge  *big.Int
	Response   *big.Int
}

// CreateZKP proves knowledge of x with G = littleG^x and H = littleH^x.
func CreateZKP(src io.Reader, s *System, littleG, littleH, x *big.Int, fn ChallengeFunc) *ZKP {
	w := random.Int(src, s.Q)
	c := Commitment{
		A: new(big.Int).Exp(littleG, w, s.P),
		B: new(big.Int).Exp(littleH, w, s.P),
	}
	C := fn(c)
	R := new(big.Int).Mul(x, C)
	R.Add(R, w)
	R.Mod(R, s.Q)
	return &ZKP{Commitment: c, Challenge: C, Response: R}
}

// Verify checks both equalities, and the challenge when fn is not nil.
func (zkp *ZKP) Verify(s *System, littleG, littleH, bigG, bigH *big.Int, fn ChallengeFunc) error {
	if !zkp.wellFormed(s) {
		return fmt.Errorf("%w: malformed proof", ErrInvalidProof)
	}
	if !s.inSubgroup(zkp.Commitment.A) || !s.inSubgroup(zkp.Commitment.B) {
		return fmt.Errorf("%w: commitment not in the order-q subgroup", ErrInvalidProof)
	}
	lhs, rhs := new(big.Int), new(big.Int)

	// check g^R % p === (A * G^C) % p
	lhs.Exp(littleG, zkp.Response, s.P)
	rhs.Exp(bigG, zkp.Challenge, s.P)
	rhs.Mul(rhs, zkp.Commitment.A)
	rhs.Mod(rhs, s.P)
	if lhs.Cmp(rhs) != 0 {
		return fmt.Errorf("%w: g^R %% p != (A * G^C) %% p", ErrInvalidProof)
	}

	// check h^R % p === (B * H^C) % p
	lhs.Exp(littleH, zkp.Response, s.P)
	rhs.Exp(bigH, zkp.Challenge, s.P)
	rhs.Mul(rhs, zkp.Commitment.B)
	rhs.Mod(rhs, s.P)
	if lhs.Cmp(rhs) != 0 {
		return fmt.Errorf("%w: h^R %% p != (B * H^C) %% p", ErrInvalidProof)
	}

	if fn != nil && fn(zkp.Commitment).Cmp(zkp.Challenge) != 0 {
		return fmt.Errorf("%w: challenge does not match commitment", ErrInvalidProof)
	}
	return nil
}

// challenge and response must be reduced mod q, so a proof has exactly one encoding.
func (zkp *ZKP) wellFormed(s *System) bool {
	if zkp == nil || zkp.Commitment.A == nil || zkp.Commitment.B == nil || zkp.Challenge == nil || zkp.Response == nil {
		return false
	}
	for _, x := range []*big.Int{zkp.Challenge, zkp.Response} {
		if x.Sign() < 0 || x.Cmp(s.Q) >= 0 {
			return false
		}
	}
	return true
}

// DecryptionFactorAndProof returns the decryption factor alpha^x and a proof that
// (g, alpha, y, factor) is a DH tuple, i.e. the factor used the secret behind y.
func (sk *SecretKey) DecryptionFactorAndProof(src io.Reader, ct *CipherText, scheme HashScheme) (*big.Int, *ZKP) {
	factor := sk.DecryptionFactor(ct)
	proof := CreateZKP(src, sk.System, sk.G, ct.Alpha, sk.X, scheme.FiatShamir(sk.Q))
	return factor, proof
}

// ProveDecryption decrypts ct and proves it. The proof is the same DH tuple
// proof as a decryption factor's, since beta/m == alpha^x.
func (sk *SecretKey) ProveDecryption(src io.Reader, ct *CipherText, scheme HashScheme) (*big.Int, *ZKP) {
	factor, proof := sk.DecryptionFactorAndProof(src, ct, scheme)
	return ct.DecryptWithFactors(sk.PublicKey, []*big.Int{factor}), proof
}

// VerifyDecryptionFactor validates a trustee's factor for ct against that
// trustee's public key.
func VerifyDecryptionFactor(zkp *ZKP, pk *PublicKey, ct *CipherText, factor *big.Int, scheme HashScheme) error {
	if factor == nil || !pk.inSubgroup(factor) {
		return fmt.Errorf("%w: decryption factor not in the order-q subgroup", ErrInvalidProof)
	}
	return zkp.Verify(pk.System, pk.G, ct.Alpha, pk.Y, factor, scheme.FiatShamir(pk.Q))
}

// VerifyDecryptionProof validates a claimed plaintext for ct, using beta/m as the factor.
func VerifyDecryptionProof(zkp *ZKP, pk *PublicKey, ct *CipherText, pt *big.Int, scheme HashScheme) error {
	return VerifyDecryptionFactor(zkp, pk, ct, betaOverM(pk.System, ct, pt), scheme)
}

func betaOverM(s *System, ct *CipherText, m *big.Int) *big.Int {
	x := new(big.Int).ModInverse(m, s.P)
	x.Mul(x, ct.Beta)
	return x.Mod(x, s.P)
}

// The OR proof just consists of one proof per candidate plaintext,
// ONE of which is real.
type ZKPOr []*ZKP

// ProveEncryption shows that a ciphertext encrypts one of a set of values, without
// revealing which one it encrypts.
// The way this works (simply) is to create the correct proof for
// the actual plaintext, and simulated proofs for the others.
// The challenges must sum to the hash of all the commitments, and as the
// simulated challenges are fixed before the real commitment is hashed
// only the real proof has a free challenge.
//
// The real proof is a ZKP that we know the randomness r used to create the ciphertext.
func ProveEncryption(
	src io.Reader,
	pk *PublicKey,
	ct *CipherText,
	plaintexts []*big.Int,
	index int,
	r *big.Int,
	scheme HashScheme,
) (zkp ZKPOr) {
	zkp = make(ZKPOr, len(plaintexts))
	csum := big.NewInt(0)
	for i, pt := range plaintexts {
		if i == index {
			// we do the real one last.
			continue
		}
		zkp[i] = simulateEncryptionProof(src, pk, ct, pt, nil)
		csum.Add(csum, zkp[i].Challenge)
	}

	challenge := func(c Commitment) *big.Int {
		commitments := make([]Commitment, len(zkp))
		for i := range zkp {
			if i == index {
				commitments[i] = c
			} else {
				commitments[i] = zkp[i].Commitment
			}
		}
		C := scheme.Challenge(pk.Q, commitments...)
		// subtract the simulated challenges so the sum adds up.
		C.Sub(C, csum)
		return C.Mod(C, pk.Q)
	}
	zkp[index] = CreateZKP(src, pk.System, pk.G, pk.Y, r, challenge)
	return zkp
}

// VerifyEncryptionProof checks every branch and that the challenges sum to the
// hash of the commitments.
func VerifyEncryptionProof(
	zkp ZKPOr,
	pk *PublicKey,
	ct *CipherText,
	plaintexts []*big.Int,
	scheme HashScheme,
) error {
	if len(zkp) != len(plaintexts) {
		return fmt.Errorf("%w: mismatched number of proofs (%d) vs. plaintexts (%d)", ErrInvalidProof, len(zkp), len(plaintexts))
	}
	if ct == nil || ct.Alpha == nil || ct.Beta == nil {
		return fmt.Errorf("%w: missing ciphertext", ErrInvalidProof)
	}

	csum := big.NewInt(0)
	commitments := make([]Commitment, len(zkp))
	for i, z := range zkp {
		if err := verifyEncryptionProof(z, pk, ct, plaintexts[i]); err != nil {
			return fmt.Errorf("proof[%d]: %w", i, err)
		}
		csum.Add(csum, z.Challenge)
		commitments[i] = z.Commitment
	}
	csum.Mod(csum, pk.Q)

	if scheme.Challenge(pk.Q, commitments...).Cmp(csum) != 0 {
		return fmt.Errorf("%w: OR proof challenge sum does not match computed challenge", ErrInvalidProof)
	}
	return nil
}

// checks the DDH tuple g, y, alpha, beta/m.
func verifyEncryptionProof(zkp *ZKP, pk *PublicKey, ct *CipherText, m *big.Int) error {
	return zkp.Verify(pk.System, pk.G, pk.Y, ct.Alpha, betaOverM(pk.System, ct, m), nil)
}

// To simulate a ZKP we work backwards: pick the challenge and response
// and solve for the commitment that satisfies both checks.
//
//	A = g^R / alpha^C
//	B = y^R / (beta/m)^C
//
// A nil challenge is drawn uniformly from [0, q), fresh for every call.
func simulateEncryptionProof(src io.Reader, pk *PublicKey, ct *CipherText, m, challenge *big.Int) *ZKP {
	C := challenge
	if C == nil {
		C = random.Int(src, pk.Q)
	}
	R := random.Int(src, pk.Q)

	A, B, tmp := new(big.Int), new(big.Int), new(big.Int)

	A.Exp(ct.Alpha, C, pk.P)
	A.ModInverse(A, pk.P)
	A.Mul(A, tmp.Exp(pk.G, R, pk.P))
	A.Mod(A, pk.P)

	B.Exp(betaOverM(pk.System, ct, m), C, pk.P)
	B.ModInverse(B, pk.P)
	B.Mul(B, tmp.Exp(pk.Y, R, pk.P))
	B.Mod(B, pk.P)

	return &ZKP{Commitment: Commitment{A: A, B: B}, Challenge: C, Response: R}
}
