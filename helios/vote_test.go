package helios

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptedVote(t *testing.T) {
	src := testSource(t)
	e, _ := testElection(t, src, yesNo(), pickTwo(), approval())

	v, err := NewEncryptedVote(src, e, [][]int{{0}, {1, 3}, {}})
	require.NoError(t, err)
	assert.True(t, v.Verify(e))
	assert.True(t, v.VerifyAudit(e))

	cast := v.ForCasting()
	assert.True(t, cast.Verify(e))
	assert.False(t, cast.VerifyAudit(e))

	// the tracker is taken over the cast form either way
	h1, err := v.Hash()
	require.NoError(t, err)
	h2, err := cast.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	_, err = NewEncryptedVote(src, e, [][]int{{0}})
	assert.True(t, errors.Is(err, ErrInvalidSelection))
	_, err = NewEncryptedVote(src, e, [][]int{{0}, {}, {}})
	assert.True(t, errors.Is(err, ErrSelectionCount))
}

func TestCrossElectionReplay(t *testing.T) {
	src := testSource(t)
	a, _ := testElection(t, src, yesNo())
	vote := mustVote(t, src, a, []int{0})
	require.True(t, vote.Verify(a))

	// same key and questions, different uuid
	b := *a
	b.UUID = "00000000-0000-4000-8000-000000000000"
	assert.False(t, vote.Verify(&b))

	// same uuid, different election content
	c := *a
	c.Name = "Another Election"
	assert.False(t, vote.Verify(&c))

	// relabelling the uuid alone still leaves the hash of a
	relabelled := *vote
	relabelled.ElectionUUID = b.UUID
	assert.False(t, relabelled.Verify(&b))
}

func TestVoteShape(t *testing.T) {
	src := testSource(t)
	e, _ := testElection(t, src, yesNo(), yesNo())
	vote := mustVote(t, src, e, []int{0}, []int{1})

	short := *vote
	short.Answers = vote.Answers[:1]
	assert.False(t, short.Verify(e))

	withNil := *vote
	withNil.Answers = []*EncryptedAnswer{vote.Answers[0], nil}
	assert.False(t, withNil.Verify(e))

	var nilVote *EncryptedVote
	assert.False(t, nilVote.Verify(e))
}

func TestVoteSerialization(t *testing.T) {
	src := testSource(t)
	e, _ := testElection(t, src, yesNo(), approval())
	vote := mustVote(t, src, e, []int{1}, []int{0, 2})
	hash, err := vote.Hash()
	require.NoError(t, err)

	b, err := json.Marshal(vote)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"overall_proof":null`)
	var fromJSON EncryptedVote
	require.NoError(t, json.Unmarshal(b, &fromJSON))
	assert.True(t, fromJSON.Verify(e))
	h, err := fromJSON.Hash()
	require.NoError(t, err)
	assert.Equal(t, hash, h)

	c, err := cbor.Marshal(vote)
	require.NoError(t, err)
	assert.Less(t, len(c), len(b))
	var fromCBOR EncryptedVote
	require.NoError(t, cbor.Unmarshal(c, &fromCBOR))
	assert.True(t, fromCBOR.Verify(e))
	h, err = fromCBOR.Hash()
	require.NoError(t, err)
	assert.Equal(t, hash, h)
}

func TestVerifyVotes(t *testing.T) {
	src := testSource(t)
	e, _ := testElection(t, src, yesNo())
	votes := []*EncryptedVote{
		mustVote(t, src, e, []int{0}),
		mustVote(t, src, e, []int{1}),
		mustVote(t, src, e, []int{}),
	}
	bad := *votes[1]
	bad.ElectionUUID = "nope"
	votes = append(votes, &bad)

	var done int64
	ok, err := VerifyVotes(context.Background(), e, votes, WithWorkers(2), WithProgress(func(n int) {
		atomic.AddInt64(&done, int64(n))
	}))
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true, false}, ok)
	assert.EqualValues(t, 4, atomic.LoadInt64(&done))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = VerifyVotes(ctx, e, votes)
	assert.ErrorIs(t, err, context.Canceled)
}
