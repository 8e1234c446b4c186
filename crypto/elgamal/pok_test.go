package elgamal

import (
	"testing"

	big "github.com/ncw/gmp"
)

func TestProofOfKnowledge(t *testing.T) {
	src := testSource(t)
	eg := Helios2048()
	kp := GenerateKeyPair(src, eg)

	pok := kp.Secret().ProveKnowledge(src, HashSHA1)
	if err := kp.Public().VerifyKnowledge(pok, HashSHA1); err != nil {
		t.Logf("ProofOfKnowledge verify fail: %v", err)
		t.Fail()
	}

	if err := GenerateKeyPair(src, eg).Public().VerifyKnowledge(pok, HashSHA1); err == nil {
		t.Logf("ProofOfKnowledge verified against another key")
		t.Fail()
	}

	// screw it up
	pok.Response.Add(pok.Response, big.NewInt(1))
	if err := kp.Public().VerifyKnowledge(pok, HashSHA1); err == nil {
		t.Logf("ProofOfKnowledge verify passed incorrectly Response tampered")
		t.Fail()
	}
}

func TestProofOfKnowledgeChallengeBinding(t *testing.T) {
	src := testSource(t)
	eg := Safe128()
	kp := GenerateKeyPair(src, eg)

	// a forger picking response and challenge freely can satisfy the equation
	// but not the hash of the commitment.
	c := big.NewInt(7)
	r := big.NewInt(11)
	commitment := new(big.Int).Exp(kp.Public().Y, c, eg.P)
	commitment.ModInverse(commitment, eg.P)
	commitment.Mul(commitment, new(big.Int).Exp(eg.G, r, eg.P))
	commitment.Mod(commitment, eg.P)
	forged := &DLogProof{Commitment: commitment, Challenge: c, Response: r}
	if err := kp.Public().VerifyKnowledge(forged, HashSHA1); err == nil {
		t.Fatal("forged proof accepted")
	}
}
