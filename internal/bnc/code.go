package bnc

import (
	"strconv"
	"strings"
)

const (
	NumDigits   = 10
	CodeLength  = 4
	PoolSize    = 10 * 9 * 8 * 7 // ordered picks of 4 distinct digits out of 10
	laneBits    = 8
	laneMask    = 0xff
	rawCodeSpan = 10000 // 10^CodeLength
)

// Code is a 4-digit pattern with pairwise distinct digits, packed one digit per
// byte. The most significant byte holds the leftmost digit.
//
// The zero value is not a valid code (all lanes are 0) and is used as "unset".
type Code uint32

// Encode converts raw (0..9999) into a Code. Leading zeros count as digits, so
// 123 encodes as "0123".
func Encode(raw int) (Code, error) {
	if raw < 0 || raw >= rawCodeSpan {
		return 0, invalid(strconv.Itoa(raw), ErrOutOfRange)
	}

	var (
		c    Code
		used [NumDigits]bool
		n    = raw
	)
	// units first, into the lowest lane
	for i := 0; i < CodeLength; i++ {
		d := n % 10
		n /= 10
		if used[d] {
			return 0, invalid(strconv.Itoa(raw), ErrDuplicateDigit)
		}
		used[d] = true
		c |= Code(d) << (laneBits * i)
	}
	return c, nil
}

// ParseCode parses the 4-character decimal form, e.g. "0123".
func ParseCode(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if len(s) != CodeLength {
		return 0, invalid(s, ErrMalformed)
	}
	raw := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, invalid(s, ErrMalformed)
		}
		raw = raw*10 + int(s[i]-'0')
	}
	c, err := Encode(raw)
	if err != nil {
		return 0, invalid(s, ErrDuplicateDigit)
	}
	return c, nil
}

// Digit returns the digit at position i, 0 being the leftmost.
func (c Code) Digit(i int) int {
	return int(c>>(laneBits*(CodeLength-1-i))) & laneMask
}

func (c Code) Digits() [CodeLength]int {
	var d [CodeLength]int
	for i := range d {
		d[i] = c.Digit(i)
	}
	return d
}

// Int returns the decimal value the code was encoded from.
func (c Code) Int() int {
	n := 0
	for i := 0; i < CodeLength; i++ {
		n = n*10 + c.Digit(i)
	}
	return n
}

// Valid reports whether every lane is a digit and no digit repeats.
func (c Code) Valid() bool {
	var used [NumDigits]bool
	for i := 0; i < CodeLength; i++ {
		d := c.Digit(i)
		if d >= NumDigits || used[d] {
			return false
		}
		used[d] = true
	}
	return true
}

func (c Code) String() string {
	var b [CodeLength]byte
	for i := range b {
		b[i] = byte('0' + c.Digit(i))
	}
	return string(b[:])
}

func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Code) UnmarshalText(text []byte) error {
	v, err := ParseCode(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
