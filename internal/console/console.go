// Package console plays a session over a line-oriented terminal: the computer
// announces its guess, the player answers it and guesses back.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tungcyang/bullscows/internal/bnc"
	"github.com/tungcyang/bullscows/internal/game"
)

// Run drives sess until someone wins, the player's answers contradict each
// other, input ends or ctx is cancelled. The player may take the first guess.
func Run(ctx context.Context, in io.Reader, out io.Writer, sess *game.Session) error {
	p := &prompter{sc: bufio.NewScanner(in), out: out}

	fmt.Fprintln(out, "Think of a 4-digit number with no repeated digits. Answer my guesses as xAyB")
	fmt.Fprintln(out, "(A = right digit, right place; B = right digit, wrong place). Then guess mine.")

	humanFirst, err := p.opening(sess)
	if err != nil {
		return err
	}
	if done(out, sess) {
		return nil
	}

	for first := true; ; first = false {
		if err := ctx.Err(); err != nil {
			return err
		}

		st := sess.State()
		fmt.Fprintf(out, "\nRound %d\n", st.Round)
		if humanFirst && !first {
			if err := p.guess(sess); err != nil {
				return err
			}
			if done(out, sess) {
				return nil
			}
		}

		guess, certain := sess.ComputerGuess()
		if certain {
			fmt.Fprintf(out, "I'm sure your number is %s!\n", guess)
		} else {
			fmt.Fprintf(out, "My guess is %s (%d candidates left).\n", guess, st.Candidates)
		}

		err := p.ask("Your answer: ", func(line string) error {
			return sess.SubmitReply(line)
		})
		if err != nil {
			if errors.Is(err, bnc.ErrContradiction) {
				fmt.Fprintln(out, "Those answers contradict each other: no number fits them all.")
				reveal(out, sess.State())
			}
			return err
		}
		if done(out, sess) {
			return nil
		}

		if !humanFirst {
			if err := p.guess(sess); err != nil {
				return err
			}
			if done(out, sess) {
				return nil
			}
		}
	}
}

// opening offers the player the first guess. An empty or invalid line hands
// the first move to the computer.
func (p *prompter) opening(sess *game.Session) (bool, error) {
	fmt.Fprint(p.out, "Want to go first? Enter a guess, or press Enter to let me start: ")
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return false, err
		}
		return false, io.ErrUnexpectedEOF
	}
	line := strings.TrimSpace(p.sc.Text())
	if line == "" {
		return false, nil
	}

	res, err := sess.SubmitGuess(line)
	var ve *bnc.ValidationError
	if errors.As(err, &ve) {
		fmt.Fprintf(p.out, "Not a guess (%v). I'll start.\n", ve.Err)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	fmt.Fprintf(p.out, "%s -> %s\n", line, res)
	return true, nil
}

func (p *prompter) guess(sess *game.Session) error {
	return p.ask("Your guess: ", func(line string) error {
		res, err := sess.SubmitGuess(line)
		if err == nil {
			fmt.Fprintf(p.out, "%s -> %s\n", strings.TrimSpace(line), res)
		}
		return err
	})
}

// done announces the outcome once sess has finished.
func done(out io.Writer, sess *game.Session) bool {
	st := sess.State()
	if st.Phase == game.PhasePlaying {
		return false
	}
	announce(out, st)
	return true
}

type prompter struct {
	sc  *bufio.Scanner
	out io.Writer
}

// ask prompts until submit accepts a line. Validation errors re-prompt; any
// other error is returned.
func (p *prompter) ask(prompt string, submit func(line string) error) error {
	for {
		fmt.Fprint(p.out, prompt)
		if !p.sc.Scan() {
			if err := p.sc.Err(); err != nil {
				return err
			}
			return io.ErrUnexpectedEOF
		}

		err := submit(p.sc.Text())
		var ve *bnc.ValidationError
		if errors.As(err, &ve) {
			fmt.Fprintf(p.out, "Sorry, %v. Try again.\n", ve.Err)
			continue
		}
		return err
	}
}

func announce(out io.Writer, st game.StatePayload) {
	switch st.Winner {
	case game.WinnerComputer:
		fmt.Fprintf(out, "I got it in round %d.\n", st.Round)
	case game.WinnerHuman:
		fmt.Fprintf(out, "You got it in round %d. You win!\n", st.Round)
	case game.WinnerDraw:
		fmt.Fprintf(out, "We both got it in round %d. It's a draw.\n", st.Round)
	}
	reveal(out, st)
}

func reveal(out io.Writer, st game.StatePayload) {
	if st.Secret != "" {
		fmt.Fprintf(out, "My number was %s.\n", st.Secret)
	}
}
