package elgamal

import (
	"errors"
	"testing"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-helios/crypto/random"
)

func TestEncryption(t *testing.T) {
	src := testSource(t)
	for _, eg := range []*System{Safe128(), Helios2048()} {
		kp := GenerateKeyPair(src, eg)
		for _, m := range []int64{0, 1} {
			ct := kp.Public().Encrypt(src, eg.GExp(m))
			if !ct.CheckGroupMembership(kp.Public()) {
				t.Fatal("fresh ciphertext not a group member")
			}
			if kp.Secret().Decrypt(ct).Cmp(eg.GExp(m)) != 0 {
				t.Fatalf("encrypt/decrypt failed for g^%d", m)
			}
		}
		m := random.Int(src, eg.Q)
		if kp.Secret().Decrypt(kp.Public().Encrypt(src, m)).Cmp(m) != 0 {
			t.Fatal("encrypt/decrypt of raw message failed")
		}
	}
}

func TestEncodeMessage(t *testing.T) {
	for _, eg := range []*System{EightBit(), Safe128()} {
		for m := int64(0); m < 100; m++ {
			e := eg.EncodeMessage(big.NewInt(m))
			if new(big.Int).Exp(e, eg.Q, eg.P).Cmp(bigOne) != 0 {
				t.Fatalf("encoding of %d is not in the subgroup", m)
			}
			if d := eg.DecodeMessage(e); d.Int64() != m {
				t.Fatalf("decode(encode(%d)) = %s", m, d)
			}
		}
	}

	src := testSource(t)
	kp := GenerateKeyPair(src, Safe128())
	for _, m := range []int64{0, 1, 17} {
		r := random.Int(src, kp.Public().Q)
		ct := kp.Public().EncryptWithR(big.NewInt(m), r, true)
		if got := kp.Secret().DecryptEncoded(ct); got.Int64() != m {
			t.Fatalf("encoded round trip of %d gave %s", m, got)
		}
	}
}

func TestHomomorphism(t *testing.T) {
	eg := Safe128()
	src := testSource(t)
	kp := GenerateKeyPair(src, eg)
	table := NewDLogTable(eg)
	table.Precompute(20)

	testAdd := func(expected uint64, values ...int64) {
		var agg *CipherText
		for _, v := range values {
			agg = agg.Mul(eg, kp.Public().Encrypt(src, eg.GExp(v)))
		}
		dec := kp.Secret().Decrypt(agg)
		pt, ok := table.Lookup(dec)
		if !ok || expected != pt {
			t.Logf("Addition failed sum(%v), expected:%d, got:%d (found=%v)", values, expected, pt, ok)
			t.Fail()
		}
	}
	testAdd(0, 0, 0)
	testAdd(1, 0, 0, 0, 0, 1, 0, 0, 0)
	testAdd(10, 0, 1, 2, 3, 4, 0)
	testAdd(10, 0, 1, 0, 2, 0, 3, 0, 4, 0)
	testAdd(7, 0, 4, 0, 2, 0, 1)
}

func TestMulNeutralElements(t *testing.T) {
	eg := Safe128()
	src := testSource(t)
	kp := GenerateKeyPair(src, eg)
	ct := kp.Public().Encrypt(src, eg.GExp(1))
	want := ct.Clone()

	var nilCT *CipherText
	if got := nilCT.Mul(eg, ct); !got.Equals(want) {
		t.Fatal("nil * ct != ct")
	}
	if got := ct.Clone().Mul(eg, Identity()); !got.Equals(want) {
		t.Fatal("ct * (1,1) != ct")
	}
	if got := Identity().Mul(eg, ct); !got.Equals(want) {
		t.Fatal("(1,1) * ct != ct")
	}
	if got := ct.Clone().Mul(eg, nil); !got.Equals(want) {
		t.Fatal("ct * nil != ct")
	}
	if !ct.Equals(want) {
		t.Fatal("operand was mutated")
	}
}

func TestReencrypt(t *testing.T) {
	eg := Safe128()
	src := testSource(t)
	kp := GenerateKeyPair(src, eg)
	ct := kp.Public().Encrypt(src, eg.GExp(1))
	re, r := ct.Reencrypt(src, kp.Public())
	if re.Equals(ct) {
		t.Fatal("re-encryption did not change the ciphertext")
	}
	if kp.Secret().Decrypt(re).Cmp(eg.GExp(1)) != 0 {
		t.Fatal("re-encryption changed the plaintext")
	}
	if !ct.ReencryptWithR(kp.Public(), r).Equals(re) {
		t.Fatal("re-encryption with the same r differs")
	}
}

func TestCheckGroupMembership(t *testing.T) {
	eg := Safe128()
	src := testSource(t)
	pk := GenerateKeyPair(src, eg).Public()
	good := pk.Encrypt(src, eg.GExp(1))

	pMinusOne := new(big.Int).Sub(eg.P, bigOne)
	for name, bad := range map[string]*CipherText{
		"alpha zero":       {Alpha: big.NewInt(0), Beta: good.Beta},
		"alpha one":        {Alpha: big.NewInt(1), Beta: good.Beta},
		"beta p-1":         {Alpha: good.Alpha, Beta: pMinusOne},
		"beta p":           {Alpha: good.Alpha, Beta: new(big.Int).Set(eg.P)},
		"alpha non-member": {Alpha: big.NewInt(2), Beta: good.Beta},
		"beta non-member":  {Alpha: good.Alpha, Beta: new(big.Int).Mul(good.Beta, big.NewInt(2))},
		"missing beta":     {Alpha: good.Alpha},
	} {
		if bad.CheckGroupMembership(pk) {
			t.Logf("%s: accepted", name)
			t.Fail()
		}
	}
	if !good.CheckGroupMembership(pk) {
		t.Fatal("valid ciphertext rejected")
	}
}

func TestDecryptWithFactors(t *testing.T) {
	eg := Safe128()
	src := testSource(t)
	trustees := []*KeyPair{GenerateKeyPair(src, eg), GenerateKeyPair(src, eg), GenerateKeyPair(src, eg)}
	pks := make([]*PublicKey, len(trustees))
	for i, kp := range trustees {
		pks[i] = kp.Public()
	}
	joint, err := CombinePublicKeys(pks...)
	if err != nil {
		t.Fatal(err)
	}
	ct := joint.Encrypt(src, eg.GExp(3))
	factors := make([]*big.Int, len(trustees))
	for i, kp := range trustees {
		factors[i] = kp.Secret().DecryptionFactor(ct)
	}
	if ct.DecryptWithFactors(joint, factors).Cmp(eg.GExp(3)) != 0 {
		t.Fatal("joint decryption failed")
	}
	if ct.DecryptWithFactors(joint, factors[:2]).Cmp(eg.GExp(3)) == 0 {
		t.Fatal("decryption succeeded with a missing trustee")
	}
}

func TestCompactCipherText(t *testing.T) {
	ct := &CipherText{Alpha: big.NewInt(12345), Beta: big.NewInt(678)}
	if ct.String() != "12345,678" {
		t.Fatalf("unexpected compact form %q", ct.String())
	}
	back, err := ParseCipherText(ct.String())
	if err != nil || !back.Equals(ct) {
		t.Fatalf("round trip failed: %v", err)
	}
	for _, in := range []string{"1", "1,2,3", "a,b", ",5"} {
		if _, err := ParseCipherText(in); !errors.Is(err, ErrInvalidEncoding) {
			t.Logf("%q: expected ErrInvalidEncoding, got %v", in, err)
			t.Fail()
		}
	}
}
