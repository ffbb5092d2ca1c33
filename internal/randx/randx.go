// Package randx provides a seedable random source safe for concurrent
// use, shared by every component that needs injected randomness.
package randx

import (
	"math/rand"
	"sync"
	"time"
)

// Rand guards one math/rand source with a single mutex so the same
// seeded stream can be handed to concurrently running consumers.
type Rand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a Rand seeded with seed; 0 seeds from the clock.
func New(seed int64) *Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Rand{r: rand.New(rand.NewSource(seed))}
}

func (r *Rand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Intn(n)
}

func (r *Rand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Float64()
}
