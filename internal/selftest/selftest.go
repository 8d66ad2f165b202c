// Package selftest plays the computer guesser against every secret from every
// opening and collects statistics. It is the exhaustive check that the
// guessing heuristic always terminates.
package selftest

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tungcyang/bullscows/internal/bnc"
)

// DefaultMaxGuesses flags a game as runaway. The heuristic needs at most 9.
const DefaultMaxGuesses = 20

var ErrRunaway = errors.New("guesser did not converge")

type Step struct {
	Guess    bnc.Code     `json:"guess"`
	Response bnc.Response `json:"response"`
}

type Transcript struct {
	Secret  bnc.Code `json:"secret"`
	Opening bnc.Code `json:"opening"`
	Steps   []Step   `json:"steps"`
}

func (t Transcript) Guesses() int { return len(t.Steps) }

// Play runs one game. The returned transcript ends with the 4A0B step, so its
// length is the number of guesses used.
func Play(initial bnc.Pool, secret, opening bnc.Code, maxGuesses int) (Transcript, error) {
	return play(bnc.NewSolver(initial, opening), secret, opening, maxGuesses)
}

// play runs one game on a solver already reset to opening.
func play(s *bnc.Solver, secret, opening bnc.Code, maxGuesses int) (Transcript, error) {
	if maxGuesses <= 0 {
		maxGuesses = DefaultMaxGuesses
	}
	tr := Transcript{Secret: secret, Opening: opening}

	for len(tr.Steps) < maxGuesses {
		r := bnc.Score(secret, s.Guess())
		tr.Steps = append(tr.Steps, Step{Guess: s.Guess(), Response: r})
		if r.Solved() {
			return tr, nil
		}
		if err := s.Observe(r); err != nil {
			return tr, fmt.Errorf("secret %s opening %s: %w", secret, opening, err)
		}
		if _, _, err := s.Next(); err != nil {
			return tr, err
		}
	}
	return tr, fmt.Errorf("secret %s opening %s: %w after %d guesses", secret, opening, ErrRunaway, maxGuesses)
}

type Options struct {
	// Secrets and Openings default to the whole initial pool.
	Secrets  []bnc.Code
	Openings []bnc.Code

	MaxGuesses int
	Workers    int // defaults to GOMAXPROCS

	// Progress is called once per finished secret, possibly concurrently.
	Progress func(secret bnc.Code)
}

type Stats struct {
	Games        int        `json:"games"`
	MaxGuesses   int        `json:"maxGuesses"`
	TotalGuesses int        `json:"totalGuesses"`
	Histogram    []int      `json:"histogram"` // games by number of guesses
	Worst        Transcript `json:"worst"`
}

func (s Stats) Average() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.TotalGuesses) / float64(s.Games)
}

func (s *Stats) add(tr Transcript) {
	n := tr.Guesses()
	s.Games++
	s.TotalGuesses += n
	for len(s.Histogram) <= n {
		s.Histogram = append(s.Histogram, 0)
	}
	s.Histogram[n]++
	if n > s.MaxGuesses {
		s.MaxGuesses = n
		s.Worst = tr
	}
}

func (s *Stats) merge(o Stats) {
	s.Games += o.Games
	s.TotalGuesses += o.TotalGuesses
	for len(s.Histogram) < len(o.Histogram) {
		s.Histogram = append(s.Histogram, 0)
	}
	for i, n := range o.Histogram {
		s.Histogram[i] += n
	}
	if o.MaxGuesses > s.MaxGuesses {
		s.MaxGuesses = o.MaxGuesses
		s.Worst = o.Worst
	}
}

// Sweep plays every (secret, opening) pair. The first runaway or contradiction
// cancels the sweep and is returned.
func Sweep(ctx context.Context, initial bnc.Pool, opts Options) (Stats, error) {
	secrets := opts.Secrets
	if secrets == nil {
		secrets = initial.Codes()
	}
	openings := opts.Openings
	if openings == nil {
		openings = initial.Codes()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		mu    sync.Mutex
		total Stats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, secret := range secrets {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			var local Stats
			solver := bnc.NewSolver(initial, 0)
			for _, opening := range openings {
				if err := gctx.Err(); err != nil {
					return err
				}
				solver.Reset(initial, opening)
				tr, err := play(solver, secret, opening, opts.MaxGuesses)
				if err != nil {
					return err
				}
				local.add(tr)
			}

			mu.Lock()
			total.merge(local)
			mu.Unlock()

			if opts.Progress != nil {
				opts.Progress(secret)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return total, err
	}
	return total, ctx.Err()
}
