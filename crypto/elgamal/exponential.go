package elgamal

import (
	"sync"

	big "github.com/ncw/gmp"
)

// DLogTable maps g^i back to i for small i. A tally of n ballots decrypts to
// g^count with count <= n, so after an O(n) precompute every lookup is a map hit.
//
// We cannot key a map on *big.Int, so the key is the big-endian bytes as a string.
// Note that in a national sized election the table will be large: one entry per
// ballot, each the size of p.
type DLogTable struct {
	mu      sync.RWMutex
	sys     *System
	dlogs   map[string]uint64
	last    *big.Int
	counter uint64
}

// NewDLogTable starts a table holding g^0 = 1.
func NewDLogTable(sys *System) *DLogTable {
	t := &DLogTable{
		sys:   sys,
		dlogs: map[string]uint64{},
		last:  big.NewInt(1),
	}
	t.dlogs[string(t.last.Bytes())] = 0
	return t
}

func (t *DLogTable) increment() {
	t.counter++
	next := new(big.Int).Mul(t.last, t.sys.G)
	next.Mod(next, t.sys.P)
	t.dlogs[string(next.Bytes())] = t.counter
	t.last = next
}

// Precompute extends the table to cover exponents 0..upTo.
func (t *DLogTable) Precompute(upTo uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.counter < upTo {
		t.increment()
	}
}

// Lookup returns the discrete log of v, if it was precomputed.
func (t *DLogTable) Lookup(v *big.Int) (uint64, bool) {
	if v == nil {
		return 0, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.dlogs[string(v.Bytes())]
	return n, ok
}

// Max is the largest exponent in the table.
func (t *DLogTable) Max() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.counter
}

// Plaintexts returns g^min .. g^max, the candidate plaintexts of a selection count.
func (s *System) Plaintexts(min, max int) []*big.Int {
	if max < min || min < 0 {
		return nil
	}
	out := make([]*big.Int, 0, max-min+1)
	running := big.NewInt(1)
	for i := 0; i <= max; i++ {
		if i >= min {
			out = append(out, new(big.Int).Set(running))
		}
		running.Mul(running, s.G)
		running.Mod(running, s.P)
	}
	return out
}

type optionsKey struct{ min, max int }

// PlaintextOptionsCache memoises Plaintexts for repeated ballot verification.
// Safe for concurrent use; callers must not modify the returned slices.
type PlaintextOptionsCache struct {
	system *System
	mu     sync.Mutex
	cache  map[optionsKey][]*big.Int
}

func NewPlaintextOptionsCache(s *System) *PlaintextOptionsCache {
	return &PlaintextOptionsCache{
		system: s,
		cache:  map[optionsKey][]*big.Int{},
	}
}

func (p *PlaintextOptionsCache) GetOptions(min, max int) []*big.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	k := optionsKey{min, max}
	o, ok := p.cache[k]
	if !ok {
		o = p.system.Plaintexts(min, max)
		p.cache[k] = o
	}
	return o
}
