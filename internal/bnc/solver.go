package bnc

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

type arena struct {
	codes []Code
	set   *bitset.BitSet
}

// Solver owns one candidate pool across rounds. Each Observe filters from the
// current arena into the other one and swaps, so rounds do not allocate.
//
// A Solver is not safe for concurrent use.
type Solver struct {
	bufs  [2]arena
	cur   int
	pool  Pool
	guess Code
	err   error
}

// NewSolver starts from initial with opening as the first guess. initial is
// only read; the solver never writes into its storage.
func NewSolver(initial Pool, opening Code) *Solver {
	s := &Solver{pool: initial, guess: opening, cur: -1}
	for i := range s.bufs {
		s.bufs[i] = arena{
			codes: make([]Code, 0, PoolSize),
			set:   bitset.New(rawCodeSpan),
		}
	}
	return s
}

// Reset starts a new game on the same buffers.
func (s *Solver) Reset(initial Pool, opening Code) {
	s.pool, s.guess, s.cur, s.err = initial, opening, -1, nil
}

func (s *Solver) Guess() Code { return s.guess }

func (s *Solver) Candidates() int { return s.pool.Len() }

// Contains reports whether c is still a candidate.
func (s *Solver) Contains(c Code) bool { return s.pool.Contains(c) }

// Observe narrows the pool with the response to the current guess. After a
// ContradictionError the solver keeps failing with the same error.
func (s *Solver) Observe(r Response) error {
	if s.err != nil {
		return s.err
	}
	if err := r.Validate(); err != nil {
		return err
	}

	next := 0
	if s.cur == 0 {
		next = 1
	}
	p, err := s.pool.filterInto(s.bufs[next].codes, s.bufs[next].set, s.guess, r)
	if err != nil {
		s.err = err
		return err
	}
	s.bufs[next].codes = p.codes
	s.pool, s.cur = p, next
	return nil
}

// Next proposes the next guess from the current pool and makes it current.
// It fails after Observe has reported a contradiction, or with an
// InvariantError if the heuristic ever proposes a code outside the pool.
func (s *Solver) Next() (Code, bool, error) {
	if s.err != nil {
		return 0, false, s.err
	}
	g, certain := NextGuess(s.pool)
	if !s.Contains(g) {
		return 0, false, &InvariantError{Msg: fmt.Sprintf("next guess %s is not a candidate", g)}
	}
	s.guess = g
	return g, certain, nil
}
