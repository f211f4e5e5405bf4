package random

import (
	"math/rand"
	"sync"
)

// Source is a pseudo-random source that is safe for concurrent use.
// Every draw is serialized; Perm holds the lock for the whole permutation.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func New(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

func (s *Source) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Range returns a uniform draw from [min, max).
func (s *Source) Range(min, max float64) float64 {
	return min + (max-min)*s.Float64()
}

// Intn returns a uniform draw from [0, n). It panics if n <= 0.
func (s *Source) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Perm returns a uniformly random permutation of {0, ..., n-1}.
// Indices are drawn one at a time by removal from the remaining candidates.
func (s *Source) Perm(n int) []int {
	if n <= 0 {
		return []int{}
	}
	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int, 0, n)
	for count := n; count > 0; count-- {
		i := s.rng.Intn(count)
		out = append(out, remaining[i])
		remaining[i] = remaining[count-1]
		remaining = remaining[:count-1]
	}
	return out
}
