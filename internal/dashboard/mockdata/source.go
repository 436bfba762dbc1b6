package mockdata

import (
	"math/rand/v2"
	"sync"
)

// Source draws uniformly distributed integers in [0, n).
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// UnseededSource returns the process-wide, non-reproducible entropy source.
func UnseededSource() Source {
	return globalSource{}
}

// SeededSource is a reproducible Source safe for concurrent use.
type SeededSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSeededSource builds a deterministic Source from seed.
func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// IntN implements Source.
func (s *SeededSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(n)
}
