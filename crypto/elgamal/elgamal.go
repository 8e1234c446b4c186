package elgamal

import (
	"fmt"
	"io"
	"strings"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-helios/crypto"
	"github.com/thechriswalker/go-helios/crypto/random"
)

// Minimum sizes enforced on any public key taken from untrusted input.
const (
	MinPBits = 2048
	MinQBits = 256
)

// PublicKey is an ElGamal public key for encryption and proof verification
type PublicKey struct {
	*System
	Y *big.Int
}

func (pk *PublicKey) String() string {
	return fmt.Sprintf("pk:Y=%s", crypto.BigIntToJSON(pk.Y))
}

// SecretKey is an ElGamal secret key for decryption and proof creation
type SecretKey struct {
	*PublicKey
	X *big.Int
}

func (sk *SecretKey) String() string {
	return "sk:X=<redacted>"
}

// CipherText is the output of encryption of a plaintext
type CipherText struct {
	Alpha, Beta *big.Int
}

// Identity is the encryption of 1 with zero randomness, the neutral element of Mul.
func Identity() *CipherText {
	return &CipherText{Alpha: big.NewInt(1), Beta: big.NewInt(1)}
}

// IsIdentity reports whether ct is (1,1).
func (ct *CipherText) IsIdentity() bool {
	return ct != nil && ct.Alpha != nil && ct.Beta != nil &&
		ct.Alpha.Cmp(bigOne) == 0 && ct.Beta.Cmp(bigOne) == 0
}

// Mul does a homomorphic multiplication of two cipher texts
// we assume they were created with the same system.
// This function mutates the receiver and is designed to be
// part of an aggregation, so the canonical usage is:
//
//	var agg *CipherText
//	agg = agg.Mul(sys, other1) // first round copies "other1"
//	agg = agg.Mul(sys, other2) // now set to other1 * other2
//
// A nil or identity operand on either side leaves the other unchanged.
// In order to do a homomorphic _addition_ we use exponential ElGamal
// (encoding g^m instead of m) and find the discrete log after decryption,
// see `exponential.go`.
func (ct *CipherText) Mul(sys *System, other *CipherText) *CipherText {
	if other == nil || other.Alpha == nil || other.IsIdentity() {
		if ct == nil {
			return Identity()
		}
		return ct
	}
	if ct == nil {
		ct = &CipherText{}
	}
	if ct.Alpha == nil || ct.IsIdentity() {
		ct.Alpha = new(big.Int).Set(other.Alpha)
		ct.Beta = new(big.Int).Set(other.Beta)
		return ct
	}
	ct.Alpha.Mul(ct.Alpha, other.Alpha)
	ct.Alpha.Mod(ct.Alpha, sys.P)
	ct.Beta.Mul(ct.Beta, other.Beta)
	ct.Beta.Mod(ct.Beta, sys.P)
	return ct
}

// Clone returns a deep copy.
func (ct *CipherText) Clone() *CipherText {
	return &CipherText{Alpha: new(big.Int).Set(ct.Alpha), Beta: new(big.Int).Set(ct.Beta)}
}

func (ct *CipherText) Equals(other *CipherText) bool {
	if ct == nil || other == nil || ct.Alpha == nil || other.Alpha == nil {
		return false
	}
	return ct.Alpha.Cmp(other.Alpha) == 0 && ct.Beta.Cmp(other.Beta) == 0
}

// String is the compact legacy "alpha,beta" form.
func (ct *CipherText) String() string {
	return crypto.BigIntToJSON(ct.Alpha) + "," + crypto.BigIntToJSON(ct.Beta)
}

// ParseCipherText reads the compact "alpha,beta" form.
func ParseCipherText(s string) (*CipherText, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: expecting alpha,beta", ErrInvalidEncoding)
	}
	a, err := crypto.BigIntFromJSON(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, fmt.Errorf("%w: alpha: %v", ErrInvalidEncoding, err)
	}
	b, err := crypto.BigIntFromJSON(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, fmt.Errorf("%w: beta: %v", ErrInvalidEncoding, err)
	}
	return &CipherText{Alpha: a, Beta: b}, nil
}

// CheckGroupMembership verifies both components lie strictly inside (1, p-1)
// and in the order-q subgroup. Run it on every ciphertext from outside.
func (ct *CipherText) CheckGroupMembership(pk *PublicKey) bool {
	if ct == nil || pk == nil || pk.System == nil {
		return false
	}
	return pk.IsMember(ct.Alpha) && pk.IsMember(ct.Beta)
}

// EncryptWithR encrypts m with the given randomness r.
// With encode set the message is first mapped into the order-q subgroup,
// see EncodeMessage. Test code may supply r, production paths use Encrypt.
func (pk *PublicKey) EncryptWithR(m, r *big.Int, encode bool) (ct *CipherText) {
	if encode {
		m = pk.EncodeMessage(m)
	}
	ct = new(CipherText)
	// set alpha to g^r mod p
	ct.Alpha = new(big.Int).Exp(pk.G, r, pk.P)
	// set beta to (m * (y^r mod p)) mod p
	ct.Beta = new(big.Int).Exp(pk.Y, r, pk.P)
	ct.Beta.Mul(ct.Beta, m)
	ct.Beta.Mod(ct.Beta, pk.P)
	return
}

// EncryptReturnR encrypts m with fresh randomness from src, returning it
// for use in a proof of encryption.
func (pk *PublicKey) EncryptReturnR(src io.Reader, m *big.Int) (*CipherText, *big.Int) {
	r := random.Int(src, pk.Q)
	return pk.EncryptWithR(m, r, false), r
}

// Encrypt a plaintext with fresh randomness, keeping the randomness hidden.
func (pk *PublicKey) Encrypt(src io.Reader, m *big.Int) *CipherText {
	ct, _ := pk.EncryptReturnR(src, m)
	return ct
}

// ReencryptWithR multiplies in an encryption of 1 with randomness r.
func (ct *CipherText) ReencryptWithR(pk *PublicKey, r *big.Int) *CipherText {
	out := &CipherText{
		Alpha: new(big.Int).Exp(pk.G, r, pk.P),
		Beta:  new(big.Int).Exp(pk.Y, r, pk.P),
	}
	out.Alpha.Mul(out.Alpha, ct.Alpha)
	out.Alpha.Mod(out.Alpha, pk.P)
	out.Beta.Mul(out.Beta, ct.Beta)
	out.Beta.Mod(out.Beta, pk.P)
	return out
}

// Reencrypt with fresh randomness, returned alongside.
func (ct *CipherText) Reencrypt(src io.Reader, pk *PublicKey) (*CipherText, *big.Int) {
	r := random.Int(src, pk.Q)
	return ct.ReencryptWithR(pk, r), r
}

// DecryptWithFactors combines one decryption factor per trustee:
// beta * (prod factors)^-1 mod p.
func (ct *CipherText) DecryptWithFactors(pk *PublicKey, factors []*big.Int) *big.Int {
	prod := big.NewInt(1)
	for _, f := range factors {
		prod.Mul(prod, f)
		prod.Mod(prod, pk.P)
	}
	m := new(big.Int).ModInverse(prod, pk.P)
	m.Mul(m, ct.Beta)
	m.Mod(m, pk.P)
	return m
}

// Validate that the Y value is within range for the system params.
// This is the cheap check, ValidateParams is the full one.
func (pk *PublicKey) Validate() error {
	if pk == nil || pk.System == nil {
		return fmt.Errorf("PublicKey invalid: No ElGamal System Parameters")
	}
	if pk.Y == nil || pk.Y.Cmp(bigOne) <= 0 {
		return fmt.Errorf("PublicKey invalid: y <= 1")
	}
	if pk.Y.Cmp(new(big.Int).Sub(pk.P, bigOne)) >= 0 {
		return fmt.Errorf("PublicKey invalid: y >= p-1")
	}
	return nil
}

// ValidateParams enforces p prime with at least MinPBits bits, q prime with at least
// MinQBits bits, g of order q in (1, p-1) and y in the same subgroup.
// It must run whenever a key comes from untrusted input.
func (pk *PublicKey) ValidateParams() error {
	if pk == nil || pk.System == nil || pk.P == nil || pk.Q == nil || pk.G == nil || pk.Y == nil {
		return fmt.Errorf("%w: missing parameters", ErrInvalidKeyParams)
	}
	if !pk.P.ProbablyPrime(random.PrimeRounds) {
		return fmt.Errorf("%w: p is not prime", ErrInvalidKeyParams)
	}
	if pk.P.BitLen() < MinPBits {
		return fmt.Errorf("%w: p of insufficient length, should be %d bits or greater", ErrInvalidKeyParams, MinPBits)
	}
	if !pk.Q.ProbablyPrime(random.PrimeRounds) {
		return fmt.Errorf("%w: q is not prime", ErrInvalidKeyParams)
	}
	if pk.Q.BitLen() < MinQBits {
		return fmt.Errorf("%w: q of insufficient length, should be %d bits or greater", ErrInvalidKeyParams, MinQBits)
	}
	if new(big.Int).Exp(pk.G, pk.Q, pk.P).Cmp(bigOne) != 0 {
		return fmt.Errorf("%w: g does not generate subgroup of order q", ErrInvalidKeyParams)
	}
	pMinusOne := new(big.Int).Sub(pk.P, bigOne)
	if pk.G.Cmp(bigOne) <= 0 || pk.G.Cmp(pMinusOne) >= 0 {
		return fmt.Errorf("%w: g out of range", ErrInvalidKeyParams)
	}
	if pk.Y.Cmp(bigOne) <= 0 || pk.Y.Cmp(pMinusOne) >= 0 {
		return fmt.Errorf("%w: y out of range", ErrInvalidKeyParams)
	}
	if new(big.Int).Exp(pk.Y, pk.Q, pk.P).Cmp(bigOne) != 0 {
		return fmt.Errorf("%w: y is not in the subgroup of order q", ErrInvalidKeyParams)
	}
	return nil
}

// Equal compares group and y.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	if pk == nil || other == nil {
		return pk == other
	}
	return pk.System.Equal(other.System) && pk.Y.Cmp(other.Y) == 0
}

// DecryptionFactor is alpha^x mod p, not yet inverted so it can be proven.
func (sk *SecretKey) DecryptionFactor(ct *CipherText) *big.Int {
	return new(big.Int).Exp(ct.Alpha, sk.X, sk.P)
}

// Decrypt a ciphertext with this single key.
func (sk *SecretKey) Decrypt(ct *CipherText) *big.Int {
	return ct.DecryptWithFactors(sk.PublicKey, []*big.Int{sk.DecryptionFactor(ct)})
}

// DecryptEncoded decrypts a ciphertext made with EncryptWithR(m, r, true).
func (sk *SecretKey) DecryptEncoded(ct *CipherText) *big.Int {
	return sk.DecodeMessage(sk.Decrypt(ct))
}

// Validate that the X value is within range for the system params
// and that the PublicKey matches (or generate it!)
func (sk *SecretKey) Validate() error {
	if sk == nil || sk.PublicKey == nil || sk.System == nil {
		return fmt.Errorf("SecretKey invalid: No ElGamal System Parameters")
	}
	if sk.X == nil || sk.X.Sign() < 0 {
		return fmt.Errorf("SecretKey invalid: x < 0")
	}
	if sk.X.Cmp(sk.Q) >= 0 {
		return fmt.Errorf("SecretKey invalid: x > q-1")
	}
	y := new(big.Int).Exp(sk.G, sk.X, sk.P)
	if sk.Y == nil {
		sk.Y = y
		return nil
	}
	if y.Cmp(sk.Y) != 0 {
		return fmt.Errorf("SecretKey invalid: g^x != y")
	}
	return nil
}
