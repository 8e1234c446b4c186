package helios

import "errors"

var (
	// ErrSelectionCount is returned when a voter selects fewer than min
	// (or more than max) answers.
	ErrSelectionCount = errors.New("invalid number of selections")
	// ErrInvalidSelection is an answer index out of range, or repeated.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrBadVote is returned by the tally for a ballot that fails verification.
	// The tally is unchanged when it is returned.
	ErrBadVote = errors.New("bad vote")
	// ErrDecryptionMismatch means a decrypted cell is not a small power of g,
	// so some decryption factor is wrong.
	ErrDecryptionMismatch = errors.New("decryption mismatch")
	ErrInvalidElection    = errors.New("invalid election")
	ErrTallyShape         = errors.New("tally shape mismatch")
	ErrInvalidTrustee     = errors.New("invalid trustee")
)
