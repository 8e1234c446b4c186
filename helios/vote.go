package helios

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/thechriswalker/go-helios/crypto/elgamal"
)

// EncryptedVote is a full ballot, bound to one election by uuid and hash.
type EncryptedVote struct {
	Answers      []*EncryptedAnswer `json:"answers"`
	ElectionHash string             `json:"election_hash"`
	ElectionUUID string             `json:"election_uuid"`
}

// NewEncryptedVote encrypts one list of selected answer indexes per question.
// The result still carries the randomness for audit, cast ForCasting().
func NewEncryptedVote(src io.Reader, election *Election, selections [][]int) (*EncryptedVote, error) {
	if len(selections) != len(election.Questions) {
		return nil, fmt.Errorf("%w: %d questions but %d selections", ErrInvalidSelection, len(election.Questions), len(selections))
	}
	hash, err := election.Hash()
	if err != nil {
		return nil, fmt.Errorf("hashing election: %w", err)
	}
	ev := &EncryptedVote{
		Answers:      make([]*EncryptedAnswer, len(selections)),
		ElectionHash: hash,
		ElectionUUID: election.UUID,
	}
	for i, s := range selections {
		if ev.Answers[i], err = NewEncryptedAnswer(src, election, i, s); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
	}
	return ev, nil
}

// Verify checks the vote belongs to this election and every answer is valid.
// The reason for a false result is logged at debug level.
func (ev *EncryptedVote) Verify(election *Election) bool {
	v, err := newVerifier(election)
	if err != nil {
		log.Debug().Err(err).Msg("cannot verify votes for election")
		return false
	}
	if err := v.vote(ev); err != nil {
		log.Debug().Err(err).Str("election", election.UUID).Msg("encrypted vote rejected")
		return false
	}
	return true
}

// Hash is the ballot tracker, taken over the cast form.
func (ev *EncryptedVote) Hash() (string, error) {
	return CanonicalJSON.Hash(ev.ForCasting())
}

// ForCasting strips the audit data from every answer.
func (ev *EncryptedVote) ForCasting() *EncryptedVote {
	out := &EncryptedVote{
		Answers:      make([]*EncryptedAnswer, len(ev.Answers)),
		ElectionHash: ev.ElectionHash,
		ElectionUUID: ev.ElectionUUID,
	}
	for i, a := range ev.Answers {
		if a != nil {
			out.Answers[i] = a.ForCasting()
		}
	}
	return out
}

// VerifyAudit checks an audited (spoiled) ballot: the proofs, and that every
// answer re-encrypts from its revealed plaintext and randomness.
func (ev *EncryptedVote) VerifyAudit(election *Election) bool {
	if !ev.Verify(election) {
		return false
	}
	for _, a := range ev.Answers {
		if !a.VerifyPlaintextsAndRandomness(election.PublicKey) {
			return false
		}
	}
	return true
}

// verifier holds what is shared between the votes of one election.
// It is safe for concurrent use.
type verifier struct {
	election *Election
	hash     string
	options  *elgamal.PlaintextOptionsCache
}

func newVerifier(election *Election) (*verifier, error) {
	if election == nil || election.PublicKey == nil || election.PublicKey.System == nil {
		return nil, fmt.Errorf("%w: no public key", ErrInvalidElection)
	}
	hash, err := election.Hash()
	if err != nil {
		return nil, err
	}
	return &verifier{
		election: election,
		hash:     hash,
		options:  elgamal.NewPlaintextOptionsCache(election.PublicKey.System),
	}, nil
}

// shape only: answer and choice counts.
func (v *verifier) shape(ev *EncryptedVote) error {
	if ev == nil {
		return fmt.Errorf("missing vote")
	}
	if len(ev.Answers) != len(v.election.Questions) {
		return fmt.Errorf("expected %d answers, got %d", len(v.election.Questions), len(ev.Answers))
	}
	for i, a := range ev.Answers {
		if a == nil {
			return fmt.Errorf("answer %d missing", i)
		}
		if len(a.Choices) != len(v.election.Questions[i].Answers) {
			return fmt.Errorf("answer %d: expected %d choices, got %d", i, len(v.election.Questions[i].Answers), len(a.Choices))
		}
	}
	return nil
}

// membership is the minimum check before a vote touches a tally.
func (v *verifier) membership(ev *EncryptedVote) error {
	if err := v.shape(ev); err != nil {
		return err
	}
	for i, a := range ev.Answers {
		for j, c := range a.Choices {
			if !c.CheckGroupMembership(v.election.PublicKey) {
				return fmt.Errorf("answer %d choice %d: %w", i, j, elgamal.ErrInvalidCiphertext)
			}
		}
	}
	return nil
}

func (v *verifier) vote(ev *EncryptedVote) error {
	if err := v.shape(ev); err != nil {
		return err
	}
	if ev.ElectionHash != v.hash {
		return fmt.Errorf("election hash mismatch: %q", ev.ElectionHash)
	}
	if ev.ElectionUUID != v.election.UUID {
		return fmt.Errorf("election uuid mismatch: %q", ev.ElectionUUID)
	}
	scheme := v.election.Scheme()
	for i, a := range ev.Answers {
		q := v.election.Questions[i]
		if err := a.verify(v.election.PublicKey, v.options, q.Min, q.Max, scheme); err != nil {
			return fmt.Errorf("answer %d: %w", i, err)
		}
	}
	return nil
}
