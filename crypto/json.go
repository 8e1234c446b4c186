package crypto

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	big "github.com/ncw/gmp"
)

// All integers cross the wire as base-10 strings. JSON numbers lose precision in most
// runtimes long before 2048 bits, and the decimal form is what existing deployments hash.

// BigIntToJSON renders x as a decimal string.
func BigIntToJSON(x *big.Int) string {
	if x == nil {
		return ""
	}
	return x.String()
}

// BigIntFromJSON parses a non-negative decimal string.
func BigIntFromJSON(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("Expecting a decimal integer, got an empty string")
	}
	x, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("Expecting a decimal integer, got: %q", s)
	}
	if x.Sign() < 0 {
		return nil, fmt.Errorf("Expecting a non-negative integer, got: %s", s)
	}
	return x, nil
}

// BigIntToCBOR and BigIntFromCBOR use unsigned big-endian bytes.
func BigIntToCBOR(x *big.Int) []byte {
	if x == nil {
		return nil
	}
	return x.Bytes()
}

func BigIntFromCBOR(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// slice of *big.Int s
type BigIntSlice []*big.Int

func (s BigIntSlice) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	strs := make([]string, len(s))
	for i, n := range s {
		strs[i] = BigIntToJSON(n)
	}
	return json.Marshal(strs)
}

func (s *BigIntSlice) UnmarshalJSON(b []byte) error {
	var strs []string
	if err := json.Unmarshal(b, &strs); err != nil {
		return err
	}
	if strs == nil {
		*s = nil
		return nil
	}
	bs := make(BigIntSlice, len(strs))
	for i := range strs {
		n, err := BigIntFromJSON(strs[i])
		if err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
		bs[i] = n
	}
	*s = bs
	return nil
}

func (s BigIntSlice) MarshalCBOR() ([]byte, error) {
	raw := make([][]byte, len(s))
	for i, n := range s {
		raw[i] = BigIntToCBOR(n)
	}
	return cbor.Marshal(raw)
}

func (s *BigIntSlice) UnmarshalCBOR(b []byte) error {
	var raw [][]byte
	if err := cbor.Unmarshal(b, &raw); err != nil {
		return err
	}
	bs := make(BigIntSlice, len(raw))
	for i := range raw {
		bs[i] = BigIntFromCBOR(raw[i])
	}
	*s = bs
	return nil
}

// BigIntMatrix is the question/answer shaped grid used for decryption factors.
type BigIntMatrix []BigIntSlice

// Shape reports whether m has exactly the row lengths given.
func (m BigIntMatrix) Shape(rows []int) bool {
	if len(m) != len(rows) {
		return false
	}
	for i, r := range m {
		if len(r) != rows[i] {
			return false
		}
	}
	return true
}
