package game

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"time"
)

// NewRNG returns a deterministic generator for seed. A zero seed draws one
// from the clock.
func NewRNG(seed int64) *rand.Rand {
	return seededRNG(resolveSeed(seed))
}

func resolveSeed(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed
}

// streamRNG derives the generator for one named consumer of seed. Streams
// of the same seed do not share state.
func streamRNG(seed int64, stream string) *rand.Rand {
	// #nosec G404
	return rand.New(rand.NewPCG(seedWord(seed, stream+":a"), seedWord(seed, stream+":b")))
}

func seededRNG(seed int64) *rand.Rand {
	// Non-cryptographic PRNG is intentional for deterministic simulation behavior.
	// #nosec G404
	return rand.New(rand.NewPCG(seedWord(seed, "a"), seedWord(seed, "b")))
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}

// uniform draws from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func pickString(rng *rand.Rand, pool []string) (string, bool) {
	if len(pool) == 0 {
		return "", false
	}
	return pool[rng.IntN(len(pool))], true
}
