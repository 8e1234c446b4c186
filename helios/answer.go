package helios

import (
	"fmt"
	"io"

	big "github.com/ncw/gmp"
	"github.com/rs/zerolog/log"

	"github.com/thechriswalker/go-helios/crypto"
	"github.com/thechriswalker/go-helios/crypto/elgamal"
	"github.com/thechriswalker/go-helios/crypto/random"
)

// EncryptedAnswer is the ballot fragment for one question: one ciphertext of
// g^0 or g^1 per answer, a proof for each that it is one of the two, and a
// proof that their product encrypts g^min..g^max.
//
// Randomness and Answer are only present on ballots kept for audit, they
// reveal the vote. ForCasting strips them.
type EncryptedAnswer struct {
	Choices          []*elgamal.CipherText `json:"choices"`
	IndividualProofs []elgamal.ZKPOr       `json:"individual_proofs"`
	OverallProof     elgamal.ZKPOr         `json:"overall_proof"`
	Randomness       crypto.BigIntSlice    `json:"randomness,omitempty"`
	Answer           []int                 `json:"answer,omitempty"`
}

// NewEncryptedAnswer encrypts the selected answer indexes for question qnum.
func NewEncryptedAnswer(src io.Reader, election *Election, qnum int, selected []int) (*EncryptedAnswer, error) {
	if qnum < 0 || qnum >= len(election.Questions) {
		return nil, fmt.Errorf("%w: no question %d", ErrInvalidSelection, qnum)
	}
	question := election.Questions[qnum]
	pk := election.PublicKey
	scheme := election.Scheme()

	isSelected := make([]bool, len(question.Answers))
	for _, s := range selected {
		if s < 0 || s >= len(question.Answers) {
			return nil, fmt.Errorf("%w: question %d has no answer %d", ErrInvalidSelection, qnum, s)
		}
		if isSelected[s] {
			return nil, fmt.Errorf("%w: answer %d selected twice", ErrInvalidSelection, s)
		}
		isSelected[s] = true
	}
	if len(selected) < question.Min {
		return nil, fmt.Errorf("%w: need to select at least %d answer(s)", ErrSelectionCount, question.Min)
	}
	if !question.IsApproval() && len(selected) > *question.Max {
		return nil, fmt.Errorf("%w: cannot select more than %d answer(s)", ErrSelectionCount, *question.Max)
	}

	// possible plaintexts [g^0, g^1]
	plaintexts := pk.Plaintexts(0, 1)
	ea := &EncryptedAnswer{
		Choices:          make([]*elgamal.CipherText, len(question.Answers)),
		IndividualProofs: make([]elgamal.ZKPOr, len(question.Answers)),
		Randomness:       make(crypto.BigIntSlice, len(question.Answers)),
		Answer:           append([]int{}, selected...),
	}

	var sum *elgamal.CipherText
	rsum := big.NewInt(0)
	for i := range question.Answers {
		index := 0
		if isSelected[i] {
			index = 1
		}
		r := random.Int(src, pk.Q)
		ea.Randomness[i] = r
		ea.Choices[i] = pk.EncryptWithR(plaintexts[index], r, false)
		ea.IndividualProofs[i] = elgamal.ProveEncryption(src, pk, ea.Choices[i], plaintexts, index, r, scheme)
		if !question.IsApproval() {
			sum = sum.Mul(pk.System, ea.Choices[i])
			rsum.Add(rsum, r)
			rsum.Mod(rsum, pk.Q)
		}
	}

	if !question.IsApproval() {
		// the index into g^min..g^max is offset by min
		options := pk.Plaintexts(question.Min, *question.Max)
		ea.OverallProof = elgamal.ProveEncryption(src, pk, sum, options, len(selected)-question.Min, rsum, scheme)
	}
	return ea, nil
}

// Verify checks every choice is a group member encrypting 0 or 1, and unless
// max is nil, that the number selected is in [min, max].
// A malformed answer is simply false, the reason is logged at debug level.
func (ea *EncryptedAnswer) Verify(pk *elgamal.PublicKey, min int, max *int, scheme elgamal.HashScheme) bool {
	if pk == nil || pk.System == nil {
		return false
	}
	if err := ea.verify(pk, elgamal.NewPlaintextOptionsCache(pk.System), min, max, scheme); err != nil {
		log.Debug().Err(err).Msg("encrypted answer rejected")
		return false
	}
	return true
}

func (ea *EncryptedAnswer) verify(pk *elgamal.PublicKey, options *elgamal.PlaintextOptionsCache, min int, max *int, scheme elgamal.HashScheme) error {
	if ea == nil {
		return fmt.Errorf("missing answer")
	}
	if len(ea.Choices) == 0 {
		return fmt.Errorf("no choices")
	}
	if len(ea.IndividualProofs) != len(ea.Choices) {
		return fmt.Errorf("%d choices but %d proofs", len(ea.Choices), len(ea.IndividualProofs))
	}
	zeroOrOne := options.GetOptions(0, 1)
	var sum *elgamal.CipherText
	for i, choice := range ea.Choices {
		if !choice.CheckGroupMembership(pk) {
			return fmt.Errorf("choice %d: %w", i, elgamal.ErrInvalidCiphertext)
		}
		if err := elgamal.VerifyEncryptionProof(ea.IndividualProofs[i], pk, choice, zeroOrOne, scheme); err != nil {
			return fmt.Errorf("choice %d: %w", i, err)
		}
		if max != nil {
			sum = sum.Mul(pk.System, choice)
		}
	}
	if max == nil {
		// approval voting, no overall proof
		return nil
	}
	if min < 0 || *max < min {
		return fmt.Errorf("bad selection bounds [%d, %d]", min, *max)
	}
	if err := elgamal.VerifyEncryptionProof(ea.OverallProof, pk, sum, options.GetOptions(min, *max), scheme); err != nil {
		return fmt.Errorf("overall proof: %w", err)
	}
	return nil
}

// VerifyPlaintextsAndRandomness redoes the encryption of an audited answer
// and checks it matches the choices. It says nothing about the proofs.
func (ea *EncryptedAnswer) VerifyPlaintextsAndRandomness(pk *elgamal.PublicKey) bool {
	if len(ea.Randomness) != len(ea.Choices) {
		return false
	}
	isSelected := make([]bool, len(ea.Choices))
	for _, s := range ea.Answer {
		if s < 0 || s >= len(ea.Choices) {
			return false
		}
		isSelected[s] = true
	}
	plaintexts := pk.Plaintexts(0, 1)
	for i, choice := range ea.Choices {
		index := 0
		if isSelected[i] {
			index = 1
		}
		r := ea.Randomness[i]
		if r == nil || !choice.Equals(pk.EncryptWithR(plaintexts[index], r, false)) {
			log.Debug().Int("choice", i).Msg("audited choice does not match its plaintext and randomness")
			return false
		}
	}
	return true
}

// ForCasting is a copy without the randomness and plaintext.
func (ea *EncryptedAnswer) ForCasting() *EncryptedAnswer {
	return &EncryptedAnswer{
		Choices:          ea.Choices,
		IndividualProofs: ea.IndividualProofs,
		OverallProof:     ea.OverallProof,
	}
}
