package elgamal

import (
	"errors"
	"testing"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-helios/crypto/random"
)

func TestChallengeFormat(t *testing.T) {
	q := Helios2048().Q
	c := HashSHA1.Challenge(q, Commitment{A: big.NewInt(123), B: big.NewInt(456)})
	if c.String() != "750219248911135863861399424735404782342537795961" {
		t.Fatalf("sha1(\"123,456\") mismatch: %s", c)
	}
	c = HashSHA1.Challenge(q,
		Commitment{A: big.NewInt(123), B: big.NewInt(456)},
		Commitment{A: big.NewInt(789), B: big.NewInt(1011)},
	)
	if c.String() != "929737528059039276112727774015024755420175385173" {
		t.Fatalf("sha1(\"123,456,789,1011\") mismatch: %s", c)
	}
	if HashSHA1.DLogChallenge(q, big.NewInt(98765)).String() != "145720698710390167170103364907164856919059321010" {
		t.Fatal("sha1(\"98765\") mismatch")
	}
	for _, h := range []HashScheme{HashSHA256, HashBLAKE3} {
		if h.Challenge(q, Commitment{A: big.NewInt(123), B: big.NewInt(456)}).Cmp(q) >= 0 {
			t.Fatalf("%s challenge not reduced mod q", h)
		}
	}
	if s, err := ParseHashScheme(""); err != nil || s != HashSHA1 {
		t.Fatalf("default scheme should be sha1, got %q %v", s, err)
	}
	if _, err := ParseHashScheme("md5"); err == nil {
		t.Fatal("md5 accepted")
	}
}

func TestDisjunctiveProof(t *testing.T) {
	src := testSource(t)
	for _, eg := range []*System{EightBit(), Safe128()} {
		for _, scheme := range []HashScheme{HashSHA1, HashSHA256, HashBLAKE3} {
			kp := GenerateKeyPair(src, eg)
			options := eg.Plaintexts(0, 3)
			for index := range options {
				ct, r := kp.Public().EncryptReturnR(src, options[index])
				proof := ProveEncryption(src, kp.Public(), ct, options, index, r, scheme)
				if err := VerifyEncryptionProof(proof, kp.Public(), ct, options, scheme); err != nil {
					t.Fatalf("%s index %d: %v", scheme, index, err)
				}
			}
		}
	}
}

func TestDisjunctiveProofRejects(t *testing.T) {
	src := testSource(t)
	eg := Safe128()
	kp := GenerateKeyPair(src, eg)
	zeroOrOne := eg.Plaintexts(0, 1)

	// encrypts 2, which is not an option
	ct, r := kp.Public().EncryptReturnR(src, eg.GExp(2))
	proof := ProveEncryption(src, kp.Public(), ct, zeroOrOne, 1, r, HashSHA1)
	if err := VerifyEncryptionProof(proof, kp.Public(), ct, zeroOrOne, HashSHA1); !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("proof for a plaintext outside the options accepted: %v", err)
	}

	ct, r = kp.Public().EncryptReturnR(src, eg.GExp(1))
	proof = ProveEncryption(src, kp.Public(), ct, zeroOrOne, 1, r, HashSHA1)
	if err := VerifyEncryptionProof(proof, kp.Public(), ct, zeroOrOne, HashSHA256); err == nil {
		t.Fatal("proof verified under a different hash scheme")
	}
	if err := VerifyEncryptionProof(proof[:1], kp.Public(), ct, zeroOrOne, HashSHA1); err == nil {
		t.Fatal("truncated proof accepted")
	}
	other := kp.Public().Encrypt(src, eg.GExp(1))
	if err := VerifyEncryptionProof(proof, kp.Public(), other, zeroOrOne, HashSHA1); err == nil {
		t.Fatal("proof accepted for a different ciphertext")
	}
}

// flipping any single bit of any proof value must break verification.
func TestProofBitFlip(t *testing.T) {
	src := testSource(t)
	eg := Helios2048()
	kp := GenerateKeyPair(src, eg)
	options := eg.Plaintexts(0, 1)
	ct, r := kp.Public().EncryptReturnR(src, options[0])
	proof := ProveEncryption(src, kp.Public(), ct, options, 0, r, HashSHA1)
	if err := VerifyEncryptionProof(proof, kp.Public(), ct, options, HashSHA1); err != nil {
		t.Fatal(err)
	}

	flip := func(x *big.Int, bit int) {
		x.SetBit(x, bit, x.Bit(bit)^1)
	}
	for i := range proof {
		fields := map[string]*big.Int{
			"A":         proof[i].Commitment.A,
			"B":         proof[i].Commitment.B,
			"challenge": proof[i].Challenge,
			"response":  proof[i].Response,
		}
		for name, x := range fields {
			for trial := 0; trial < 4; trial++ {
				bit := int(random.Int(src, big.NewInt(int64(x.BitLen()))).Int64())
				flip(x, bit)
				if err := VerifyEncryptionProof(proof, kp.Public(), ct, options, HashSHA1); err == nil {
					t.Fatalf("proof[%d].%s with bit %d flipped still verifies", i, name, bit)
				}
				flip(x, bit)
			}
		}
	}
	if err := VerifyEncryptionProof(proof, kp.Public(), ct, options, HashSHA1); err != nil {
		t.Fatalf("restored proof no longer verifies: %v", err)
	}
}

func TestDecryptionProof(t *testing.T) {
	src := testSource(t)
	eg := Safe128()
	kp := GenerateKeyPair(src, eg)
	ct := kp.Public().Encrypt(src, eg.GExp(1))

	factor, proof := kp.Secret().DecryptionFactorAndProof(src, ct, HashSHA1)
	if err := VerifyDecryptionFactor(proof, kp.Public(), ct, factor, HashSHA1); err != nil {
		t.Fatalf("decryption factor proof failed: %v", err)
	}
	wrong := new(big.Int).Mul(factor, eg.G)
	wrong.Mod(wrong, eg.P)
	if err := VerifyDecryptionFactor(proof, kp.Public(), ct, wrong, HashSHA1); err == nil {
		t.Fatal("wrong factor accepted")
	}
	imposter := GenerateKeyPair(src, eg)
	if err := VerifyDecryptionFactor(proof, imposter.Public(), ct, factor, HashSHA1); err == nil {
		t.Fatal("factor accepted against another trustee's key")
	}

	pt, proof := kp.Secret().ProveDecryption(src, ct, HashSHA1)
	if pt.Cmp(eg.GExp(1)) != 0 {
		t.Fatal("ProveDecryption returned the wrong plaintext")
	}
	if err := VerifyDecryptionProof(proof, kp.Public(), ct, pt, HashSHA1); err != nil {
		t.Fatalf("decryption proof failed: %v", err)
	}
	if err := VerifyDecryptionProof(proof, kp.Public(), ct, eg.GExp(0), HashSHA1); err == nil {
		t.Fatal("decryption proof accepted for the wrong plaintext")
	}
}

func TestSimulatedChallengesAreFresh(t *testing.T) {
	src := testSource(t)
	eg := Safe128()
	kp := GenerateKeyPair(src, eg)
	options := eg.Plaintexts(0, 5)
	ct, r := kp.Public().EncryptReturnR(src, options[2])
	proof := ProveEncryption(src, kp.Public(), ct, options, 2, r, HashSHA1)
	seen := map[string]bool{}
	for i, z := range proof {
		k := z.Challenge.String()
		if seen[k] {
			t.Fatalf("challenge reused at %d", i)
		}
		seen[k] = true
	}
}
