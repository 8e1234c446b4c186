package helios

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechriswalker/go-helios/crypto/elgamal"
)

func TestElectionValidate(t *testing.T) {
	src := testSource(t)
	e, _ := testElection(t, src, yesNo(), pickTwo(), approval())

	cases := map[string]func(e *Election){
		"no uuid":        func(e *Election) { e.UUID = " " },
		"no key":         func(e *Election) { e.PublicKey = nil },
		"no questions":   func(e *Election) { e.Questions = nil },
		"bad hash":       func(e *Election) { e.ChallengeHash = "md5" },
		"no answers":     func(e *Election) { e.Questions[0].Answers = nil },
		"min > max":      func(e *Election) { e.Questions[1].Min = 3 },
		"max > answers":  func(e *Election) { e.Questions[0].Max = intPtr(3) },
		"max zero":       func(e *Election) { e.Questions[0].Max = intPtr(0) },
		"result type":    func(e *Election) { e.Questions[2].ResultType = "plurality" },
		"nil question":   func(e *Election) { e.Questions[1] = nil },
		"key not member": func(e *Election) { e.PublicKey = &elgamal.PublicKey{System: e.PublicKey.System, Y: e.PublicKey.P} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := *e
			c.Questions = []*Question{yesNo(), pickTwo(), approval()}
			mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidElection))
		})
	}
}

func TestElectionHash(t *testing.T) {
	src := testSource(t)
	e, _ := testElection(t, src, yesNo())

	h1, err := e.Hash()
	require.NoError(t, err)
	h2, err := e.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	// survives a trip through JSON
	b, err := json.Marshal(e)
	require.NoError(t, err)
	var back Election
	require.NoError(t, json.Unmarshal(b, &back))
	h3, err := back.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h3)
	assert.NotNil(t, back.Questions[0].Max)

	// omitted challenge_hash is sha1, naming it changes the hash
	assert.Equal(t, elgamal.HashSHA1, e.Scheme())
	assert.NotContains(t, string(b), "challenge_hash")
	e.ChallengeHash = elgamal.HashSHA256
	h4, err := e.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h4)
}

func TestApprovalQuestionJSON(t *testing.T) {
	b, err := json.Marshal(approval())
	require.NoError(t, err)
	assert.Contains(t, string(b), `"max":null`)
	var q Question
	require.NoError(t, json.Unmarshal(b, &q))
	assert.True(t, q.IsApproval())
	assert.Equal(t, 3, q.MaxSelections())
}
