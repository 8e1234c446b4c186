package helios

import (
	"context"
	"fmt"
	"io"
	"sync"

	big "github.com/ncw/gmp"
	"github.com/rs/zerolog/log"

	"github.com/thechriswalker/go-helios/crypto"
	"github.com/thechriswalker/go-helios/crypto/elgamal"
)

// DefaultMaxBallots is a ballot count bound for decoded tallies when the
// caller has no better one.
const DefaultMaxBallots = 1000000

// Tally is the running homomorphic tally: one ciphertext per answer of each
// question, the product of that choice over every vote added.
//
// AddVote and AddVoteBatch may be called concurrently; folding is serialised.
// The tally does no deduplication, adding a ballot at most once is up to the caller.
type Tally struct {
	Tally      [][]*elgamal.CipherText `json:"tally"`
	NumTallied uint64                  `json:"num_tallied"`

	mu       sync.Mutex
	election *Election
}

// NewTally starts an empty tally, every cell the identity (1,1).
func NewTally(election *Election) *Tally {
	t := &Tally{
		Tally:    make([][]*elgamal.CipherText, len(election.Questions)),
		election: election,
	}
	for i, q := range election.Questions {
		t.Tally[i] = make([]*elgamal.CipherText, len(q.Answers))
		for j := range t.Tally[i] {
			t.Tally[i][j] = elgamal.Identity()
		}
	}
	return t
}

// Bind attaches a decoded tally to its election. Every cell must be the
// identity or a member of the order-q subgroup, so no trustee ever raises
// an attacker's element to its secret. maxBallots bounds NumTallied, which
// sizes the discrete log table at decryption.
func (t *Tally) Bind(election *Election, maxBallots uint64) error {
	if !shapeMatches(len(t.Tally), func(i int) int { return len(t.Tally[i]) }, election.shape()) {
		return fmt.Errorf("%w: tally does not match the election's questions", ErrTallyShape)
	}
	if t.NumTallied > maxBallots {
		return fmt.Errorf("%w: %d ballots tallied, at most %d expected", ErrTallyShape, t.NumTallied, maxBallots)
	}
	for i := range t.Tally {
		for j, c := range t.Tally[i] {
			if c == nil || c.Alpha == nil || c.Beta == nil {
				return fmt.Errorf("%w: cell [%d][%d] is empty", ErrTallyShape, i, j)
			}
			if !validCell(election.PublicKey, c) {
				return fmt.Errorf("cell [%d][%d]: %w", i, j, elgamal.ErrInvalidCiphertext)
			}
		}
	}
	t.election = election
	return nil
}

// validCell allows the untouched identity, anything else must be a group member.
func validCell(pk *elgamal.PublicKey, c *elgamal.CipherText) bool {
	return c.IsIdentity() || c.CheckGroupMembership(pk)
}

func shapeMatches(n int, rowLen func(int) int, want []int) bool {
	if n != len(want) {
		return false
	}
	for i := range want {
		if rowLen(i) != want[i] {
			return false
		}
	}
	return true
}

// Election is the election this tally was created for.
func (t *Tally) Election() *Election {
	return t.election
}

// AddVote folds a vote into the tally. With verify set the vote must pass
// EncryptedVote.Verify, without it only the shape and group membership are
// checked. Any failure is ErrBadVote and leaves the tally unchanged.
func (t *Tally) AddVote(vote *EncryptedVote, verify bool) error {
	v, err := newVerifier(t.election)
	if err != nil {
		return err
	}
	if err := t.check(v, vote, verify); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fold(vote)
	return nil
}

// AddVoteBatch checks every vote on the worker pool, then folds them all in.
// If any vote is bad nothing is added, and the error names the first bad vote.
func (t *Tally) AddVoteBatch(ctx context.Context, votes []*EncryptedVote, verify bool, opts ...Option) error {
	v, err := newVerifier(t.election)
	if err != nil {
		return err
	}
	errs := make([]error, len(votes))
	err = buildOptions(opts).parallel(ctx, len(votes), func(i int) error {
		errs[i] = t.check(v, votes[i], verify)
		return nil
	})
	if err != nil {
		return err
	}
	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("vote %d: %w", i, err)
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, vote := range votes {
		t.fold(vote)
	}
	log.Debug().Int("votes", len(votes)).Uint64("total", t.NumTallied).Msg("added vote batch to tally")
	return nil
}

func (t *Tally) check(v *verifier, vote *EncryptedVote, verify bool) error {
	var err error
	if verify {
		err = v.vote(vote)
	} else {
		err = v.membership(vote)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadVote, err)
	}
	return nil
}

// fold must be called holding the lock, on a checked vote.
func (t *Tally) fold(vote *EncryptedVote) {
	sys := t.election.PublicKey.System
	for i := range t.Tally {
		for j := range t.Tally[i] {
			t.Tally[i][j] = t.Tally[i][j].Mul(sys, vote.Answers[i].Choices[j])
		}
	}
	t.NumTallied++
}

type cell struct{ q, a int }

func (t *Tally) cells() []cell {
	var out []cell
	for i := range t.Tally {
		for j := range t.Tally[i] {
			out = append(out, cell{i, j})
		}
	}
	return out
}

func (t *Tally) emptyMatrix() crypto.BigIntMatrix {
	m := make(crypto.BigIntMatrix, len(t.Tally))
	for i := range t.Tally {
		m[i] = make(crypto.BigIntSlice, len(t.Tally[i]))
	}
	return m
}

func (t *Tally) emptyProofs() [][]*elgamal.ZKP {
	p := make([][]*elgamal.ZKP, len(t.Tally))
	for i := range t.Tally {
		p[i] = make([]*elgamal.ZKP, len(t.Tally[i]))
	}
	return p
}

// DecryptionFactorsAndProofs is one trustee's contribution: for every cell
// alpha^x and a proof that it used the x behind the trustee's public key.
// Cells are independent and computed on the worker pool.
func (t *Tally) DecryptionFactorsAndProofs(ctx context.Context, src io.Reader, sk *elgamal.SecretKey, opts ...Option) (crypto.BigIntMatrix, [][]*elgamal.ZKP, error) {
	if t.election == nil {
		return nil, nil, fmt.Errorf("%w: tally not bound to an election", ErrTallyShape)
	}
	scheme := t.election.Scheme()
	factors, proofs := t.emptyMatrix(), t.emptyProofs()
	cells := t.cells()
	err := buildOptions(opts).parallel(ctx, len(cells), func(n int) error {
		c := cells[n]
		if !validCell(sk.PublicKey, t.Tally[c.q][c.a]) {
			return fmt.Errorf("cell [%d][%d]: %w", c.q, c.a, elgamal.ErrInvalidCiphertext)
		}
		factors[c.q][c.a], proofs[c.q][c.a] = sk.DecryptionFactorAndProof(src, t.Tally[c.q][c.a], scheme)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return factors, proofs, nil
}

// VerifyDecryptionProofs checks a trustee's factors against its public key.
// Any bad cell invalidates the whole contribution.
func (t *Tally) VerifyDecryptionProofs(factors crypto.BigIntMatrix, proofs [][]*elgamal.ZKP, pk *elgamal.PublicKey) bool {
	if t.election == nil || pk == nil {
		return false
	}
	shape := make([]int, len(t.Tally))
	for i := range t.Tally {
		shape[i] = len(t.Tally[i])
	}
	if !factors.Shape(shape) || !shapeMatches(len(proofs), func(i int) int { return len(proofs[i]) }, shape) {
		log.Debug().Msg("decryption factors do not match the tally shape")
		return false
	}
	scheme := t.election.Scheme()
	for _, c := range t.cells() {
		err := elgamal.VerifyDecryptionFactor(proofs[c.q][c.a], pk, t.Tally[c.q][c.a], factors[c.q][c.a], scheme)
		if err != nil {
			log.Debug().Int("question", c.q).Int("answer", c.a).Err(err).Msg("decryption proof rejected")
			return false
		}
	}
	return true
}

// DecryptFromFactors combines the factors of every trustee and recovers the
// counts with a discrete log table up to NumTallied. Verify the proofs first.
func (t *Tally) DecryptFromFactors(factors []crypto.BigIntMatrix) ([][]uint64, error) {
	if t.election == nil {
		return nil, fmt.Errorf("%w: tally not bound to an election", ErrTallyShape)
	}
	pk := t.election.PublicKey
	shape := t.election.shape()
	for n, f := range factors {
		if !f.Shape(shape) {
			return nil, fmt.Errorf("%w: factors of trustee %d", ErrTallyShape, n)
		}
	}
	table := elgamal.NewDLogTable(pk.System)
	table.Precompute(t.NumTallied)

	result := make([][]uint64, len(t.Tally))
	for i := range t.Tally {
		result[i] = make([]uint64, len(t.Tally[i]))
		for j, ct := range t.Tally[i] {
			list := make([]*big.Int, len(factors))
			for n, f := range factors {
				x := f[i][j]
				if x == nil || x.Sign() <= 0 || x.Cmp(pk.P) >= 0 {
					return nil, fmt.Errorf("%w: trustee %d factor [%d][%d] out of range", ErrDecryptionMismatch, n, i, j)
				}
				list[n] = x
			}
			count, ok := table.Lookup(ct.DecryptWithFactors(pk, list))
			if !ok {
				return nil, fmt.Errorf("%w: question %d answer %d", ErrDecryptionMismatch, i, j)
			}
			result[i][j] = count
		}
	}
	return result, nil
}

// DecryptAndProve decrypts with a single key holding the whole secret, proving
// every cell.
func (t *Tally) DecryptAndProve(src io.Reader, sk *elgamal.SecretKey) ([][]uint64, [][]*elgamal.ZKP, error) {
	if t.election == nil {
		return nil, nil, fmt.Errorf("%w: tally not bound to an election", ErrTallyShape)
	}
	table := elgamal.NewDLogTable(sk.System)
	table.Precompute(t.NumTallied)
	scheme := t.election.Scheme()

	result := make([][]uint64, len(t.Tally))
	proofs := t.emptyProofs()
	for i := range t.Tally {
		result[i] = make([]uint64, len(t.Tally[i]))
		for j, ct := range t.Tally[i] {
			pt, proof := sk.ProveDecryption(src, ct, scheme)
			count, ok := table.Lookup(pt)
			if !ok {
				return nil, nil, fmt.Errorf("%w: question %d answer %d", ErrDecryptionMismatch, i, j)
			}
			result[i][j] = count
			proofs[i][j] = proof
		}
	}
	return result, proofs, nil
}
