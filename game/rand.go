// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	mrand "math/rand"
	"sync"
	"time"
)

// Rand is a goroutine-safe source of randomness for shuffles and
// tie-breaks. Tests inject a seeded instance so tie-break distribution
// is observable; production uses NewRand.
type Rand struct {
	mu sync.Mutex
	r  *mrand.Rand
}

// NewRand returns a Rand seeded from the wall clock.
func NewRand() *Rand {
	return NewSeededRand(time.Now().UnixNano())
}

// NewSeededRand returns a Rand with a fixed seed.
func NewSeededRand(seed int64) *Rand {
	return &Rand{r: mrand.New(mrand.NewSource(seed))}
}

// Intn returns a uniform int in [0, n).
func (r *Rand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Intn(n)
}

// Shuffle pseudo-randomizes the order of n elements.
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.r.Shuffle(n, swap)
}
