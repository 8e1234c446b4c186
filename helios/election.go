package helios

import (
	"fmt"
	"strings"

	"github.com/thechriswalker/go-helios/crypto/elgamal"
)

// Result types for single winner questions.
const (
	ResultAbsolute = "absolute"
	ResultRelative = "relative"
)

// Question is one question on the ballot. A nil Max makes it an approval
// question: any number of answers, and no overall proof on the count.
type Question struct {
	Question   string   `json:"question"`
	ShortName  string   `json:"short_name"`
	Answers    []string `json:"answers"`
	Min        int      `json:"min"`
	Max        *int     `json:"max"`
	ResultType string   `json:"result_type"`
}

// IsApproval is true when there is no upper bound on the selections.
func (q *Question) IsApproval() bool {
	return q.Max == nil
}

// MaxSelections is the effective upper bound.
func (q *Question) MaxSelections() int {
	if q.Max == nil {
		return len(q.Answers)
	}
	return *q.Max
}

func (q *Question) Validate() error {
	if len(q.Answers) == 0 {
		return fmt.Errorf("%w: question %q has no answers", ErrInvalidElection, q.ShortName)
	}
	if q.Min < 0 || q.Min > len(q.Answers) {
		return fmt.Errorf("%w: question %q min out of range", ErrInvalidElection, q.ShortName)
	}
	if q.Max != nil && (*q.Max < q.Min || *q.Max > len(q.Answers) || *q.Max < 1) {
		return fmt.Errorf("%w: question %q max out of range", ErrInvalidElection, q.ShortName)
	}
	switch q.ResultType {
	case ResultAbsolute, ResultRelative:
	default:
		return fmt.Errorf("%w: question %q has unknown result type %q", ErrInvalidElection, q.ShortName, q.ResultType)
	}
	return nil
}

// Election is the frozen snapshot a ballot is bound to, by uuid and hash.
type Election struct {
	UUID          string             `json:"uuid"`
	Name          string             `json:"name"`
	ShortName     string             `json:"short_name"`
	Description   string             `json:"description"`
	PublicKey     *elgamal.PublicKey `json:"public_key"`
	Questions     []*Question        `json:"questions"`
	ChallengeHash elgamal.HashScheme `json:"challenge_hash,omitempty"`
}

// Hash is the election fingerprint every ballot carries.
func (e *Election) Hash() (string, error) {
	return CanonicalJSON.Hash(e)
}

// Scheme is the Fiat-Shamir hash for every proof in this election.
func (e *Election) Scheme() elgamal.HashScheme {
	return e.ChallengeHash.OrDefault()
}

// Validate checks the election can be voted on. The public key is checked
// for group membership but not for size: that is enforced when keys are decoded.
func (e *Election) Validate() error {
	if strings.TrimSpace(e.UUID) == "" {
		return fmt.Errorf("%w: missing uuid", ErrInvalidElection)
	}
	if _, err := elgamal.ParseHashScheme(string(e.ChallengeHash)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidElection, err)
	}
	if e.PublicKey == nil {
		return fmt.Errorf("%w: missing public key", ErrInvalidElection)
	}
	if err := e.PublicKey.System.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidElection, err)
	}
	if !e.PublicKey.IsMember(e.PublicKey.Y) {
		return fmt.Errorf("%w: public key is not in the order-q subgroup", ErrInvalidElection)
	}
	if len(e.Questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrInvalidElection)
	}
	for i, q := range e.Questions {
		if q == nil {
			return fmt.Errorf("%w: question %d missing", ErrInvalidElection, i)
		}
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// shape is the number of answers per question.
func (e *Election) shape() []int {
	s := make([]int, len(e.Questions))
	for i, q := range e.Questions {
		s[i] = len(q.Answers)
	}
	return s
}
