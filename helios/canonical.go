package helios

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
)

type canonicalJSON struct{}

// Encode the object in its canonical representation to the output stream given
func (c canonicalJSON) Encode(out io.Writer, v interface{}) error {
	b, err := c.Marshal(v)
	if err != nil {
		return err
	}
	_, err = out.Write(b)
	return err
}

// Marshal returns the canonical representation of v.
func (c canonicalJSON) Marshal(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var t interface{}
	if err := dec.Decode(&t); err != nil {
		return nil, err
	}
	// t is map[string]interface instead of struct, so the keys will be sorted.
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(t); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// Hash the object given in its canonical JSON representation: SHA-256,
// base64 with the standard alphabet and no padding.
func (c canonicalJSON) Hash(v interface{}) (string, error) {
	b, err := c.Marshal(v)
	if err != nil {
		return "", err
	}
	return hashB64(b), nil
}

// HashCheck reports whether v hashes to expected.
func (c canonicalJSON) HashCheck(v interface{}, expected string) bool {
	actual, err := c.Hash(v)
	return err == nil && actual == expected
}

func hashB64(b []byte) string {
	d := sha256.Sum256(b)
	return base64.RawStdEncoding.EncodeToString(d[:])
}

// Canonical JSON encoding.
//
// The rules are:
//
//   - all objects have the keys sorted
//
//   - no extraneous whitespace (key spacing or indentation)
//
//   - no HTML escaping, otherwise follow the Go json.Encode rules
//
//   - big integers are decimal strings
//
//   - no trailing newline
//
// Hashes of elections and ballots are taken over this form, so any change
// here invalidates every ballot already cast.
var CanonicalJSON = canonicalJSON{}
