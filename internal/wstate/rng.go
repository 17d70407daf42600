package wstate

import (
	"math/rand/v2"

	"lukechampine.com/blake3"
)

// seededRNG wraps a math/rand/v2 generator deterministically derived from a
// persisted 64-bit seed (spec I7: "the persisted seed uniquely and
// deterministically seeds the RNG on reload"; §4.1: "the RNG is recreated
// from the persisted seed, not the RNG's internal state"). ChaCha8 requires
// a 32-byte key; blake3 expands the 64-bit seed into one deterministically.
type seededRNG struct {
	r *rand.Rand
}

func newSeededRNG(seed uint64) *seededRNG {
	var seedBytes [8]byte
	for i := range seedBytes {
		seedBytes[i] = byte(seed >> (8 * i))
	}
	key := blake3.Sum256(seedBytes[:])
	return &seededRNG{r: rand.New(rand.NewChaCha8(key))}
}

// Intn returns a pseudorandom int in [0, n).
func (s *seededRNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.r.Uint64N(uint64(n)))
}

// Uint64Between returns a pseudorandom uint64 in [lo, hi].
func (s *seededRNG) Uint64Between(lo, hi uint64) uint64 {
	if hi <= lo {
		return lo
	}
	return lo + s.r.Uint64N(hi-lo+1)
}

// chooseIndex picks a uniformly random index in [0, n), or -1 if n == 0.
func (s *seededRNG) chooseIndex(n int) int {
	if n == 0 {
		return -1
	}
	return s.Intn(n)
}
