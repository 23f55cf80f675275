package util

import (
	"math/rand/v2"
	"sync"
	"time"
)

// LockedRand is a seedable random source safe for concurrent use.
type LockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewLockedRand returns a source seeded with seed.
func NewLockedRand(seed uint64) *LockedRand {
	return &LockedRand{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewTimeSeededRand returns a source seeded from the wall clock.
func NewTimeSeededRand() *LockedRand {
	return NewLockedRand(uint64(time.Now().UnixNano()))
}

func (r *LockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

// IntN returns a value in [0, n). It panics if n <= 0.
func (r *LockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.IntN(n)
}
