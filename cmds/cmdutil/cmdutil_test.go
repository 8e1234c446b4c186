package cmdutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechriswalker/go-helios/crypto/elgamal"
	"github.com/thechriswalker/go-helios/crypto/random"
	"github.com/thechriswalker/go-helios/helios"
)

func TestParseSelections(t *testing.T) {
	s, err := ParseSelections("0; 1,2 ;")
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0}, {1, 2}, {}}, s)

	_, err = ParseSelections("0;x")
	assert.Error(t, err)
}

func TestReadWriteFile(t *testing.T) {
	src := random.Deterministic([]byte(t.Name()))
	kp := elgamal.GenerateKeyPair(src, elgamal.Helios2048())
	ct := kp.Public().Encrypt(src, kp.Public().GExp(1))

	for _, name := range []string{"ct.json", "ct.cbor"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, WriteFile(path, ct))
		var back elgamal.CipherText
		require.NoError(t, ReadFile(path, &back))
		assert.True(t, back.Equals(ct), name)
	}

	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.json"), filepath.Join(dir, "b.cbor")
	require.NoError(t, WriteFile(a, kp.Public()))
	require.NoError(t, WriteFile(b, kp.Public()))
	keys, err := ReadList(a+", "+b, func() *elgamal.PublicKey { return &elgamal.PublicKey{} })
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.True(t, keys[1].Equal(kp.Public()))

	_, err = ReadList(filepath.Join(dir, "missing.json"), func() *elgamal.PublicKey { return &elgamal.PublicKey{} })
	assert.Error(t, err)
}

func TestRandomSelections(t *testing.T) {
	src := random.Deterministic([]byte(t.Name()))
	one := 1
	two := 2
	e := &helios.Election{Questions: []*helios.Question{
		{Answers: []string{"y", "n"}, Max: &one},
		{Answers: []string{"a", "b", "c", "d"}, Min: 1, Max: &two},
		{Answers: []string{"x", "y", "z"}},
	}}
	for n := 0; n < 200; n++ {
		sel := RandomSelections(src, e, 0.2)
		require.Len(t, sel, 3)
		for i, q := range e.Questions {
			assert.GreaterOrEqual(t, len(sel[i]), q.Min)
			assert.LessOrEqual(t, len(sel[i]), q.MaxSelections())
			seen := map[int]bool{}
			for _, a := range sel[i] {
				assert.False(t, seen[a])
				assert.Less(t, a, len(q.Answers))
				seen[a] = true
			}
		}
	}
}
