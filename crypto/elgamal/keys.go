package elgamal

import (
	"fmt"
	"io"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-helios/crypto/random"
)

type KeyPair struct {
	sk *SecretKey
}

// Secret gets the private part of this keypair
func (kp *KeyPair) Secret() *SecretKey {
	return kp.sk
}

// Public gets the public half of this keypair
func (kp *KeyPair) Public() *PublicKey {
	return kp.sk.PublicKey
}

// GenerateKeyPair creates a new random key pair, x uniform in [0, q).
func GenerateKeyPair(src io.Reader, sys *System) *KeyPair {
	return keypairForSecret(sys, random.Int(src, sys.Q))
}

// KeyPairFromSecret rebuilds the pair around a loaded secret key.
func KeyPairFromSecret(sk *SecretKey) (*KeyPair, error) {
	if err := sk.Validate(); err != nil {
		return nil, err
	}
	return &KeyPair{sk: sk}, nil
}

func keypairForSecret(sys *System, x *big.Int) (kp *KeyPair) {
	kp = new(KeyPair)
	y := new(big.Int).Exp(sys.G, x, sys.P)
	kp.sk = &SecretKey{
		PublicKey: &PublicKey{System: sys, Y: y},
		X:         x,
	}
	return
}

// CombinePublicKeys multiplies the trustee keys into the election key. The
// matching secret is the sum of the trustee secrets, so decryption needs a factor
// from every trustee.
func CombinePublicKeys(keys ...*PublicKey) (*PublicKey, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no keys to combine", ErrIncompatibleKeys)
	}
	sys := keys[0].System
	y := big.NewInt(1)
	for i, k := range keys {
		if k == nil || !sys.Equal(k.System) {
			return nil, fmt.Errorf("%w: key %d is from a different group", ErrIncompatibleKeys, i)
		}
		y.Mul(y, k.Y)
		y.Mod(y, sys.P)
	}
	return &PublicKey{System: sys, Y: y}, nil
}
