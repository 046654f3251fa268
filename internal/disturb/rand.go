package disturb

import (
	"math/rand/v2"
	"sync"
)

// Rand is the subset of *rand.Rand used by the engine. A seeded
// rand.New(rand.NewPCG(a, b)) satisfies it; such sources are not safe for
// concurrent use, so share one only between Elements driven by a single
// Service loop.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// globalRand delegates to the goroutine-safe top-level math/rand/v2 functions.
type globalRand struct{}

func (globalRand) IntN(n int) int   { return rand.IntN(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

// sample returns n distinct indices drawn uniformly from [0, length) using a
// partial Fisher-Yates shuffle of the identity permutation.
func sample(r Rand, n, length int) []int {
	perm := make([]int, length)
	for i := range perm {
		perm[i] = i
	}

	for i := 0; i < n; i++ {
		j := i + r.IntN(length-i)
		perm[i], perm[j] = perm[j], perm[i]
	}

	return perm[:n]
}

// LockedRand serialises access to a Rand that is not goroutine-safe.
type LockedRand struct {
	mu sync.Mutex
	r  Rand
}

func NewLockedRand(r Rand) *LockedRand {
	return &LockedRand{r: r}
}

func (l *LockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *LockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}
