package helios

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thechriswalker/go-helios/crypto/elgamal"
	"github.com/thechriswalker/go-helios/crypto/random"
)

func testSource(t *testing.T) io.Reader {
	return random.Deterministic([]byte(t.Name()))
}

func intPtr(i int) *int {
	return &i
}

func yesNo() *Question {
	return &Question{
		Question:   "Should we?",
		ShortName:  "yes-no",
		Answers:    []string{"yes", "no"},
		Min:        0,
		Max:        intPtr(1),
		ResultType: ResultAbsolute,
	}
}

func pickTwo() *Question {
	return &Question{
		Question:   "Pick one or two",
		ShortName:  "board",
		Answers:    []string{"alice", "bob", "carol", "dave"},
		Min:        1,
		Max:        intPtr(2),
		ResultType: ResultRelative,
	}
}

func approval() *Question {
	return &Question{
		Question:   "Approve any",
		ShortName:  "approve",
		Answers:    []string{"red", "green", "blue"},
		ResultType: ResultRelative,
	}
}

// testElection is keyed with a single fresh Helios 2048 key pair.
func testElection(t *testing.T, src io.Reader, questions ...*Question) (*Election, *elgamal.KeyPair) {
	t.Helper()
	kp := elgamal.GenerateKeyPair(src, elgamal.Helios2048())
	e := &Election{
		UUID:        "4d8f7a6e-1c2b-4c3d-9e8f-0a1b2c3d4e5f",
		Name:        "Test Election",
		ShortName:   "test",
		Description: "for tests",
		PublicKey:   kp.Public(),
		Questions:   questions,
	}
	require.NoError(t, e.Validate())
	return e, kp
}

func mustVote(t *testing.T, src io.Reader, e *Election, selections ...[]int) *EncryptedVote {
	t.Helper()
	v, err := NewEncryptedVote(src, e, selections)
	require.NoError(t, err)
	return v.ForCasting()
}
