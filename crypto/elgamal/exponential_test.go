package elgamal

import (
	"testing"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-helios/crypto/random"
)

func TestExponential(t *testing.T) {
	eg := Helios2048()
	src := testSource(t)
	kp := GenerateKeyPair(src, eg)

	// lets keep these numbers fairly low
	m1 := random.Int(src, big.NewInt(17)).Int64()
	m2 := random.Int(src, big.NewInt(17)).Int64()
	t.Logf("m1=%d, m2=%d", m1, m2)

	ct1 := kp.Public().Encrypt(src, eg.GExp(m1))
	ct2 := kp.Public().Encrypt(src, eg.GExp(m2))
	pt := kp.Secret().Decrypt(ct1.Mul(eg, ct2))

	table := NewDLogTable(eg)
	table.Precompute(34)
	recovered, ok := table.Lookup(pt)
	t.Logf("Recovered: %d", recovered)
	if !ok || recovered != uint64(m1+m2) {
		t.Fatal("discrete log lookup fail")
	}
}

func TestDLogTable(t *testing.T) {
	eg := Safe128()
	table := NewDLogTable(eg)
	if n, ok := table.Lookup(big.NewInt(1)); !ok || n != 0 {
		t.Fatal("g^0 missing")
	}
	if _, ok := table.Lookup(eg.GExp(5)); ok {
		t.Fatal("lookup beyond the precomputed range succeeded")
	}
	table.Precompute(10)
	table.Precompute(3) // no-op
	if table.Max() != 10 {
		t.Fatalf("expected max 10, got %d", table.Max())
	}
	for i := int64(0); i <= 10; i++ {
		if n, ok := table.Lookup(eg.GExp(i)); !ok || n != uint64(i) {
			t.Fatalf("lookup g^%d = %d, %v", i, n, ok)
		}
	}
	if _, ok := table.Lookup(big.NewInt(2)); ok {
		t.Fatal("non power of g found")
	}
}

func TestPlaintexts(t *testing.T) {
	eg := Safe128()
	opts := eg.Plaintexts(1, 3)
	if len(opts) != 3 {
		t.Fatalf("expected 3 options, got %d", len(opts))
	}
	for i, o := range opts {
		if o.Cmp(eg.GExp(int64(i+1))) != 0 {
			t.Fatalf("option %d is not g^%d", i, i+1)
		}
	}
	if eg.Plaintexts(2, 1) != nil {
		t.Fatal("inverted range should be empty")
	}
	cache := NewPlaintextOptionsCache(eg)
	a := cache.GetOptions(0, 1)
	b := cache.GetOptions(0, 1)
	if &a[0] != &b[0] {
		t.Fatal("options were not cached")
	}
}
