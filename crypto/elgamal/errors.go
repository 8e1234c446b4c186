package elgamal

import "errors"

var (
	// ErrInvalidKeyParams is returned when a public key fails ValidateParams.
	ErrInvalidKeyParams = errors.New("invalid public key parameters")
	// ErrGroupGeneration is returned when group parameters cannot be generated.
	ErrGroupGeneration = errors.New("group generation failed")
	// ErrInvalidCiphertext is returned for ciphertexts outside the order-q subgroup.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	// ErrInvalidProof wraps every proof verification failure.
	ErrInvalidProof = errors.New("invalid proof")
	// ErrIncompatibleKeys is returned when combining keys from different groups.
	ErrIncompatibleKeys = errors.New("incompatible public keys")
	ErrInvalidEncoding  = errors.New("invalid encoding")
)
