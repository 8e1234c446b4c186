package elgamal

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-helios/crypto"
)

// Having this file is a bit of a shame.
//
// Go natively JSON encodes big.Int values as json numbers, which will cause interop
// problems when they get big. Every integer here is a base-10 string instead, which is
// the form other Helios implementations read, hash and sign.
//
// So this file explicitly defines the JSON and CBOR behaviour of these types. Decoding
// a PublicKey always runs ValidateParams: an unchecked key must never get in.
//
// CBOR is the compact form: a fixed-order array of unsigned big-endian byte strings.

/////////////////// Helpers ///////////////////

func bigIntAtKey(k string, m map[string]interface{}) (*big.Int, error) {
	v, ok := m[k]
	if !ok {
		return nil, fmt.Errorf("No field '%s' in JSON object", k)
	}
	s, ok := v.(string)
	if !ok {
		if v == nil {
			return nil, fmt.Errorf("Invalid type at field '%s' (expecting string, got null)", k)
		}
		return nil, fmt.Errorf("Invalid type at field '%s' (expecting string, got %s)", k, reflect.TypeOf(v).Kind())
	}
	n, err := crypto.BigIntFromJSON(s)
	if err != nil {
		return nil, fmt.Errorf("field '%s': %w", k, err)
	}
	return n, nil
}

func bigIntsAtKeys(m map[string]interface{}, keys ...string) ([]*big.Int, error) {
	out := make([]*big.Int, len(keys))
	for i, k := range keys {
		n, err := bigIntAtKey(k, m)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func getMap(b []byte) (map[string]interface{}, error) {
	m := map[string]interface{}{}
	err := json.Unmarshal(b, &m)
	return m, err
}

func marshalInts(xs ...*big.Int) ([]byte, error) {
	raw := make([][]byte, len(xs))
	for i, x := range xs {
		if x == nil {
			return nil, fmt.Errorf("%w: missing integer at position %d", ErrInvalidEncoding, i)
		}
		raw[i] = crypto.BigIntToCBOR(x)
	}
	return cbor.Marshal(raw)
}

func unmarshalInts(b []byte, n int) ([]*big.Int, error) {
	var raw [][]byte
	if err := cbor.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	if len(raw) != n {
		return nil, fmt.Errorf("%w: expecting %d integers, got %d", ErrInvalidEncoding, n, len(raw))
	}
	out := make([]*big.Int, n)
	for i := range raw {
		out[i] = crypto.BigIntFromCBOR(raw[i])
	}
	return out, nil
}

/////////////////// type System ///////////////////

func (s *System) toJSON() map[string]interface{} {
	return map[string]interface{}{
		"p": crypto.BigIntToJSON(s.P),
		"q": crypto.BigIntToJSON(s.Q),
		"g": crypto.BigIntToJSON(s.G),
	}
}

func (s *System) fromJSON(m map[string]interface{}) error {
	v, err := bigIntsAtKeys(m, "p", "q", "g")
	if err != nil {
		return err
	}
	s.P, s.Q, s.G = v[0], v[1], v[2]
	return nil
}

func (s *System) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.toJSON())
}

func (s *System) UnmarshalJSON(b []byte) error {
	m, err := getMap(b)
	if err != nil {
		return err
	}
	if err := s.fromJSON(m); err != nil {
		return err
	}
	// now validate that those params are actually valid
	return s.Validate()
}

func (s *System) MarshalCBOR() ([]byte, error) {
	return marshalInts(s.P, s.Q, s.G)
}

func (s *System) UnmarshalCBOR(b []byte) error {
	v, err := unmarshalInts(b, 3)
	if err != nil {
		return err
	}
	s.P, s.Q, s.G = v[0], v[1], v[2]
	return s.Validate()
}

/////////////////// type Public Key ///////////////////

func (pk *PublicKey) toJSON() map[string]interface{} {
	m := pk.System.toJSON()
	m["y"] = crypto.BigIntToJSON(pk.Y)
	return m
}

func (pk *PublicKey) fromJSON(m map[string]interface{}) (err error) {
	pk.System = &System{}
	if err = pk.System.fromJSON(m); err != nil {
		return err
	}
	pk.Y, err = bigIntAtKey("y", m)
	return err
}

func (pk *PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(pk.toJSON())
}

func (pk *PublicKey) UnmarshalJSON(b []byte) error {
	m, err := getMap(b)
	if err != nil {
		return err
	}
	if err := pk.fromJSON(m); err != nil {
		return err
	}
	return pk.ValidateParams()
}

func (pk *PublicKey) MarshalCBOR() ([]byte, error) {
	return marshalInts(pk.P, pk.Q, pk.G, pk.Y)
}

func (pk *PublicKey) UnmarshalCBOR(b []byte) error {
	v, err := unmarshalInts(b, 4)
	if err != nil {
		return err
	}
	pk.System = &System{P: v[0], Q: v[1], G: v[2]}
	pk.Y = v[3]
	return pk.ValidateParams()
}

/////////////////// type Secret Key ///////////////////

func (sk *SecretKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"x":          crypto.BigIntToJSON(sk.X),
		"public_key": sk.PublicKey.toJSON(),
	})
}

func (sk *SecretKey) UnmarshalJSON(b []byte) error {
	var raw struct {
		X         string          `json:"x"`
		PublicKey json.RawMessage `json:"public_key"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	x, err := crypto.BigIntFromJSON(raw.X)
	if err != nil {
		return fmt.Errorf("field 'x': %w", err)
	}
	if len(raw.PublicKey) == 0 {
		return fmt.Errorf("No field 'public_key' in JSON object")
	}
	sk.PublicKey = &PublicKey{}
	if err := json.Unmarshal(raw.PublicKey, sk.PublicKey); err != nil {
		return err
	}
	sk.X = x
	return sk.Validate()
}

func (sk *SecretKey) MarshalCBOR() ([]byte, error) {
	return marshalInts(sk.P, sk.Q, sk.G, sk.Y, sk.X)
}

func (sk *SecretKey) UnmarshalCBOR(b []byte) error {
	v, err := unmarshalInts(b, 5)
	if err != nil {
		return err
	}
	sk.PublicKey = &PublicKey{System: &System{P: v[0], Q: v[1], G: v[2]}, Y: v[3]}
	if err := sk.PublicKey.ValidateParams(); err != nil {
		return err
	}
	sk.X = v[4]
	return sk.Validate()
}

/////////////////// type CipherText ///////////////////

func (ct *CipherText) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"alpha": crypto.BigIntToJSON(ct.Alpha),
		"beta":  crypto.BigIntToJSON(ct.Beta),
	})
}

func (ct *CipherText) UnmarshalJSON(b []byte) error {
	m, err := getMap(b)
	if err != nil {
		return err
	}
	v, err := bigIntsAtKeys(m, "alpha", "beta")
	if err != nil {
		return err
	}
	ct.Alpha, ct.Beta = v[0], v[1]
	return nil
}

func (ct *CipherText) MarshalCBOR() ([]byte, error) {
	return marshalInts(ct.Alpha, ct.Beta)
}

func (ct *CipherText) UnmarshalCBOR(b []byte) error {
	v, err := unmarshalInts(b, 2)
	if err != nil {
		return err
	}
	ct.Alpha, ct.Beta = v[0], v[1]
	return nil
}

/////////////////// type ZKP ///////////////////

func (zkp *ZKP) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"commitment": map[string]string{
			"A": crypto.BigIntToJSON(zkp.Commitment.A),
			"B": crypto.BigIntToJSON(zkp.Commitment.B),
		},
		"challenge": crypto.BigIntToJSON(zkp.Challenge),
		"response":  crypto.BigIntToJSON(zkp.Response),
	})
}

func (zkp *ZKP) UnmarshalJSON(b []byte) error {
	m, err := getMap(b)
	if err != nil {
		return err
	}
	c, ok := m["commitment"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("No object 'commitment' in JSON proof")
	}
	ab, err := bigIntsAtKeys(c, "A", "B")
	if err != nil {
		return err
	}
	cr, err := bigIntsAtKeys(m, "challenge", "response")
	if err != nil {
		return err
	}
	zkp.Commitment = Commitment{A: ab[0], B: ab[1]}
	zkp.Challenge, zkp.Response = cr[0], cr[1]
	return nil
}

func (zkp *ZKP) MarshalCBOR() ([]byte, error) {
	return marshalInts(zkp.Commitment.A, zkp.Commitment.B, zkp.Challenge, zkp.Response)
}

func (zkp *ZKP) UnmarshalCBOR(b []byte) error {
	v, err := unmarshalInts(b, 4)
	if err != nil {
		return err
	}
	zkp.Commitment = Commitment{A: v[0], B: v[1]}
	zkp.Challenge, zkp.Response = v[2], v[3]
	return nil
}

/////////////////// type DLogProof ///////////////////

func (pok *DLogProof) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"commitment": crypto.BigIntToJSON(pok.Commitment),
		"challenge":  crypto.BigIntToJSON(pok.Challenge),
		"response":   crypto.BigIntToJSON(pok.Response),
	})
}

func (pok *DLogProof) UnmarshalJSON(b []byte) error {
	m, err := getMap(b)
	if err != nil {
		return err
	}
	v, err := bigIntsAtKeys(m, "commitment", "challenge", "response")
	if err != nil {
		return err
	}
	pok.Commitment, pok.Challenge, pok.Response = v[0], v[1], v[2]
	return nil
}

func (pok *DLogProof) MarshalCBOR() ([]byte, error) {
	return marshalInts(pok.Commitment, pok.Challenge, pok.Response)
}

func (pok *DLogProof) UnmarshalCBOR(b []byte) error {
	v, err := unmarshalInts(b, 3)
	if err != nil {
		return err
	}
	pok.Commitment, pok.Challenge, pok.Response = v[0], v[1], v[2]
	return nil
}

////////////////// type KeyPair /////////////////////

func (kp *KeyPair) MarshalJSON() ([]byte, error) {
	return json.Marshal(kp.sk)
}

func (kp *KeyPair) UnmarshalJSON(b []byte) error {
	kp.sk = &SecretKey{}
	return json.Unmarshal(b, kp.sk)
}

func (kp *KeyPair) MarshalCBOR() ([]byte, error) {
	return kp.sk.MarshalCBOR()
}

func (kp *KeyPair) UnmarshalCBOR(b []byte) error {
	kp.sk = &SecretKey{}
	return kp.sk.UnmarshalCBOR(b)
}
