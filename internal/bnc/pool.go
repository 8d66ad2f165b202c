package bnc

import (
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// Pool is the set of codes still consistent with every response seen so far.
// A Pool is never mutated after construction; Filter returns a new one.
type Pool struct {
	codes []Code
	set   *bitset.BitSet // indexed by Code.Int()
}

var (
	initialOnce sync.Once
	initialPool Pool
	initialErr  error
)

// BuildPool enumerates every valid code. A count other than PoolSize means
// Encode is broken and is reported as an InvariantError.
func BuildPool() (Pool, error) {
	codes := make([]Code, 0, PoolSize)
	set := bitset.New(rawCodeSpan)
	for raw := 0; raw < rawCodeSpan; raw++ {
		c, err := Encode(raw)
		if err != nil {
			continue
		}
		codes = append(codes, c)
		set.Set(uint(raw))
	}
	if len(codes) != PoolSize {
		return Pool{}, &InvariantError{Msg: fmt.Sprintf("built %d candidates, want %d", len(codes), PoolSize)}
	}
	return Pool{codes: codes, set: set}, nil
}

// InitialPool returns the full candidate pool, built once per process.
func InitialPool() (Pool, error) {
	initialOnce.Do(func() {
		initialPool, initialErr = BuildPool()
	})
	return initialPool, initialErr
}

func MustInitialPool() Pool {
	p, err := InitialPool()
	if err != nil {
		panic(err)
	}
	return p
}

// NewPool builds a pool from an explicit list of codes. Invalid and repeated
// codes are rejected.
func NewPool(codes ...Code) (Pool, error) {
	out := make([]Code, 0, len(codes))
	set := bitset.New(rawCodeSpan)
	for _, c := range codes {
		if !c.Valid() {
			return Pool{}, invalid(fmt.Sprintf("%#08x", uint32(c)), ErrMalformed)
		}
		if set.Test(uint(c.Int())) {
			return Pool{}, invalid(c.String(), ErrDuplicateDigit)
		}
		set.Set(uint(c.Int()))
		out = append(out, c)
	}
	return Pool{codes: out, set: set}, nil
}

func (p Pool) Len() int { return len(p.codes) }

func (p Pool) Contains(c Code) bool {
	if p.set == nil || !c.Valid() {
		return false
	}
	return p.set.Test(uint(c.Int()))
}

// Codes returns a copy of the pool members in insertion order.
func (p Pool) Codes() []Code {
	return append([]Code(nil), p.codes...)
}

func (p Pool) Each(fn func(Code) bool) {
	for _, c := range p.codes {
		if !fn(c) {
			return
		}
	}
}

// Filter keeps the candidates that would have answered guess with observed.
// An empty result is a ContradictionError.
func Filter(pool Pool, guess Code, observed Response) (Pool, error) {
	return pool.filterInto(make([]Code, 0, len(pool.codes)), bitset.New(rawCodeSpan), guess, observed)
}

// filterInto writes the surviving candidates into dst and set, reusing their
// storage. The receiver must not share storage with dst.
func (p Pool) filterInto(dst []Code, set *bitset.BitSet, guess Code, observed Response) (Pool, error) {
	dst = dst[:0]
	set.ClearAll()
	for _, c := range p.codes {
		if Score(guess, c) == observed {
			dst = append(dst, c)
			set.Set(uint(c.Int()))
		}
	}
	if len(dst) == 0 {
		return Pool{}, &ContradictionError{Guess: guess, Observed: observed}
	}
	return Pool{codes: dst, set: set}, nil
}
