// Command bnc plays Bulls and Cows against the computer in a terminal, or runs
// the exhaustive self-test of the computer's guesser.
//
//	bnc play [-seed N] [-random-opening=false]
//	bnc selftest [-openings heuristic|all|N] [-secrets N] [-workers N] [-max N] [-json]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/tungcyang/bullscows/internal/bnc"
	"github.com/tungcyang/bullscows/internal/console"
	"github.com/tungcyang/bullscows/internal/game"
	"github.com/tungcyang/bullscows/internal/selftest"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "play":
		err = runPlay(ctx, os.Args[2:])
	case "selftest":
		err = runSelftest(ctx, os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "bnc: unknown command %q\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}

	switch {
	case err == nil:
	case errors.Is(err, bnc.ErrContradiction):
		// already explained to the player
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "bnc:", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: bnc play [flags] | bnc selftest [flags]")
}

func newSource(seed uint64) *bnc.Source {
	if seed == 0 {
		return bnc.NewEntropySource()
	}
	return bnc.NewSource(seed)
}

func runPlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	seed := fs.Uint64("seed", 0, "random seed (0 = from entropy)")
	randomOpening := fs.Bool("random-opening", true, "open with a random guess instead of the heuristic pick")
	_ = fs.Parse(args)

	initial, err := bnc.InitialPool()
	if err != nil {
		return err
	}
	sess := game.NewSession(uuid.NewString(), initial, newSource(*seed), game.Options{
		RandomOpening: *randomOpening,
		TurnBased:     true,
	})
	return console.Run(ctx, os.Stdin, os.Stdout, sess)
}

func runSelftest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("selftest", flag.ExitOnError)
	openingsFlag := fs.String("openings", "heuristic", `openings to try: "heuristic", "all", or a sample size`)
	secretsN := fs.Int("secrets", 0, "sample this many secrets (0 = all)")
	workers := fs.Int("workers", 0, "parallel workers (0 = GOMAXPROCS)")
	maxGuesses := fs.Int("max", selftest.DefaultMaxGuesses, "guesses before a game counts as runaway")
	seed := fs.Uint64("seed", 1, "seed for sampling (0 = from entropy)")
	asJSON := fs.Bool("json", false, "print statistics as JSON")
	_ = fs.Parse(args)

	initial, err := bnc.InitialPool()
	if err != nil {
		return err
	}
	rnd := newSource(*seed)

	var openings []bnc.Code
	switch *openingsFlag {
	case "all":
	case "heuristic":
		g, _ := bnc.NextGuess(initial)
		openings = []bnc.Code{g}
	default:
		n, err := strconv.Atoi(*openingsFlag)
		if err != nil || n <= 0 {
			return fmt.Errorf("bad -openings %q", *openingsFlag)
		}
		openings = sample(rnd, n)
	}

	var secrets []bnc.Code
	total := bnc.PoolSize
	if *secretsN > 0 {
		secrets = sample(rnd, *secretsN)
	}
	if secrets != nil {
		total = len(secrets)
	}

	var bar *progressbar.ProgressBar
	if term.IsTerminal(int(os.Stderr.Fd())) {
		bar = progressbar.Default(int64(total), "selftest")
	} else {
		bar = progressbar.DefaultSilent(int64(total))
	}

	start := time.Now()
	stats, err := selftest.Sweep(ctx, initial, selftest.Options{
		Secrets:    secrets,
		Openings:   openings,
		MaxGuesses: *maxGuesses,
		Workers:    *workers,
		Progress:   func(bnc.Code) { _ = bar.Add(1) },
	})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	printStats(os.Stdout, stats, time.Since(start))
	return nil
}

// sample draws n codes without repeats (or the whole pool if n is larger).
func sample(rnd *bnc.Source, n int) []bnc.Code {
	if n >= bnc.PoolSize {
		return nil
	}
	seen := make(map[bnc.Code]struct{}, n)
	out := make([]bnc.Code, 0, n)
	for len(out) < n {
		c := rnd.Code()
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func printStats(w io.Writer, s selftest.Stats, took time.Duration) {
	fmt.Fprintf(w, "games:   %d in %s\n", s.Games, took.Round(time.Millisecond))
	fmt.Fprintf(w, "average: %.4f guesses\n", s.Average())
	fmt.Fprintf(w, "longest: %d guesses\n", s.MaxGuesses)
	for n, c := range s.Histogram {
		if c > 0 {
			fmt.Fprintf(w, "  %2d: %d\n", n, c)
		}
	}
	if s.Games == 0 {
		return
	}
	fmt.Fprintf(w, "worst:   secret %s opening %s\n", s.Worst.Secret, s.Worst.Opening)
	for _, st := range s.Worst.Steps {
		fmt.Fprintf(w, "  %s %s\n", st.Guess, st.Response)
	}
}
