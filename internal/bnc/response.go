package bnc

import (
	"fmt"
	"strings"
)

// Response is the feedback for one guess: Bulls are digits in the right
// position, Cows are shared digits in the wrong position.
//
// Its text (and JSON) form is "xAyB".
type Response struct {
	Bulls int
	Cows  int
}

// FourBulls is the game-over response, 4A0B.
var FourBulls = Response{Bulls: CodeLength}

func NewResponse(bulls, cows int) (Response, error) {
	r := Response{Bulls: bulls, Cows: cows}
	if err := r.Validate(); err != nil {
		return Response{}, err
	}
	return r, nil
}

func (r Response) Validate() error {
	if r.Bulls < 0 || r.Bulls > CodeLength || r.Cows < 0 || r.Cows > CodeLength || r.Bulls+r.Cows > CodeLength {
		return invalid(r.String(), ErrResponseRange)
	}
	return nil
}

func (r Response) Solved() bool { return r.Bulls == CodeLength }

func (r Response) String() string {
	return fmt.Sprintf("%dA%dB", r.Bulls, r.Cows)
}

// ParseResponse accepts "1A2B", or the short forms "2A" / "3B" when the other
// count is zero. Letters are case-insensitive.
func ParseResponse(s string) (Response, error) {
	s = strings.TrimSpace(s)

	var r Response
	switch len(s) {
	case 4:
		b, ok1 := countAt(s, 0)
		c, ok2 := countAt(s, 2)
		if !ok1 || !ok2 || !letterAt(s, 1, 'A') || !letterAt(s, 3, 'B') {
			return Response{}, invalid(s, ErrMalformed)
		}
		r = Response{Bulls: b, Cows: c}
	case 2:
		n, ok := countAt(s, 0)
		if !ok {
			return Response{}, invalid(s, ErrMalformed)
		}
		switch {
		case letterAt(s, 1, 'A'):
			r.Bulls = n
		case letterAt(s, 1, 'B'):
			r.Cows = n
		default:
			return Response{}, invalid(s, ErrMalformed)
		}
	default:
		return Response{}, invalid(s, ErrMalformed)
	}

	if r.Bulls > CodeLength || r.Cows > CodeLength || r.Bulls+r.Cows > CodeLength {
		return Response{}, invalid(s, ErrResponseRange)
	}
	return r, nil
}

func countAt(s string, i int) (int, bool) {
	if s[i] < '0' || s[i] > '9' {
		return 0, false
	}
	return int(s[i] - '0'), true
}

func letterAt(s string, i int, upper byte) bool {
	return s[i] == upper || s[i] == upper+('a'-'A')
}

func (r Response) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Response) UnmarshalText(text []byte) error {
	v, err := ParseResponse(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Score computes the response of b against a. It is symmetric.
func Score(a, b Code) Response {
	var r Response

	// bulls: byte lanes where a and b agree are zero in a^b
	x := a ^ b
	for i := 0; i < CodeLength; i++ {
		if x&laneMask == 0 {
			r.Bulls++
		}
		x >>= laneBits
	}

	// shared digits regardless of position
	var inA, inB [NumDigits]int
	for i := 0; i < CodeLength; i++ {
		inA[a.Digit(i)]++
		inB[b.Digit(i)]++
	}
	total := 0
	for d := 0; d < NumDigits; d++ {
		total += min(inA[d], inB[d])
	}

	r.Cows = total - r.Bulls
	return r
}
