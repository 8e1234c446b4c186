package helios

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/thechriswalker/go-helios/crypto"
	"github.com/thechriswalker/go-helios/crypto/elgamal"
)

// Trustee is the public record of one key holder. The election key is the
// product of every trustee's key, so each must supply decryption factors.
type Trustee struct {
	UUID              string              `json:"uuid"`
	Name              string              `json:"name,omitempty"`
	PublicKey         *elgamal.PublicKey  `json:"public_key"`
	PublicKeyHash     string              `json:"public_key_hash"`
	PoK               *elgamal.DLogProof  `json:"pok"`
	DecryptionFactors crypto.BigIntMatrix `json:"decryption_factors,omitempty"`
	DecryptionProofs  [][]*elgamal.ZKP    `json:"decryption_proofs,omitempty"`
}

// NewTrustee generates a key in sys and the public record for it, with a
// proof of knowledge of the secret.
func NewTrustee(src io.Reader, name string, sys *elgamal.System, scheme elgamal.HashScheme) (*Trustee, *elgamal.KeyPair, error) {
	id, err := uuid.NewRandomFromReader(src)
	if err != nil {
		return nil, nil, err
	}
	kp := elgamal.GenerateKeyPair(src, sys)
	hash, err := CanonicalJSON.Hash(kp.Public())
	if err != nil {
		return nil, nil, err
	}
	return &Trustee{
		UUID:          id.String(),
		Name:          name,
		PublicKey:     kp.Public(),
		PublicKeyHash: hash,
		PoK:           kp.Secret().ProveKnowledge(src, scheme),
	}, kp, nil
}

// VerifyKey checks the key hash and the proof of knowledge.
func (t *Trustee) VerifyKey(scheme elgamal.HashScheme) error {
	if t.PublicKey == nil {
		return fmt.Errorf("%w: %s has no public key", ErrInvalidTrustee, t.UUID)
	}
	if !CanonicalJSON.HashCheck(t.PublicKey, t.PublicKeyHash) {
		return fmt.Errorf("%w: %s public key hash mismatch", ErrInvalidTrustee, t.UUID)
	}
	if err := t.PublicKey.VerifyKnowledge(t.PoK, scheme); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidTrustee, t.UUID, err)
	}
	return nil
}

// CombineTrusteeKeys verifies every trustee key and multiplies them into the
// election public key.
func CombineTrusteeKeys(scheme elgamal.HashScheme, trustees ...*Trustee) (*elgamal.PublicKey, error) {
	keys := make([]*elgamal.PublicKey, len(trustees))
	for i, t := range trustees {
		if err := t.VerifyKey(scheme); err != nil {
			return nil, err
		}
		keys[i] = t.PublicKey
	}
	return elgamal.CombinePublicKeys(keys...)
}

// Decrypt fills in this trustee's factors and proofs for the tally.
func (t *Trustee) Decrypt(ctx context.Context, src io.Reader, sk *elgamal.SecretKey, tally *Tally, opts ...Option) error {
	if !sk.PublicKey.Equal(t.PublicKey) {
		return fmt.Errorf("%w: secret key does not belong to %s", ErrInvalidTrustee, t.UUID)
	}
	factors, proofs, err := tally.DecryptionFactorsAndProofs(ctx, src, sk, opts...)
	if err != nil {
		return err
	}
	t.DecryptionFactors, t.DecryptionProofs = factors, proofs
	return nil
}

// VerifyDecryption checks this trustee's published factors against the tally.
func (t *Trustee) VerifyDecryption(tally *Tally) bool {
	return tally.VerifyDecryptionProofs(t.DecryptionFactors, t.DecryptionProofs, t.PublicKey)
}

// DecryptWithTrustees verifies every trustee's factors, then decrypts.
func DecryptWithTrustees(tally *Tally, trustees ...*Trustee) ([][]uint64, error) {
	if len(trustees) == 0 {
		return nil, fmt.Errorf("%w: no trustees", ErrInvalidTrustee)
	}
	factors := make([]crypto.BigIntMatrix, len(trustees))
	for i, t := range trustees {
		if !t.VerifyDecryption(tally) {
			return nil, fmt.Errorf("%w: %s decryption proofs do not verify", ErrInvalidTrustee, t.UUID)
		}
		factors[i] = t.DecryptionFactors
	}
	return tally.DecryptFromFactors(factors)
}
