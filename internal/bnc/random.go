package bnc

import (
	"math/rand/v2"
	"sync"
)

// Source is the pseudorandom source for secrets and random openings. Construct
// one per process with NewEntropySource, or with NewSource for reproducible
// runs. It is safe for concurrent use.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSource(seed uint64) *Source {
	return &Source{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func NewEntropySource() *Source {
	return NewSource(rand.Uint64())
}

// Code returns a uniformly distributed valid code. It rejection-samples
// 0..9999 through Encode, so it takes about two draws on average and has no
// fixed upper bound.
func (s *Source) Code() Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if c, err := Encode(s.rng.IntN(rawCodeSpan)); err == nil {
			return c
		}
	}
}
