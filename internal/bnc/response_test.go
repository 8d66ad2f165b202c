package bnc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCode(t testing.TB, s string) Code {
	t.Helper()
	c, err := ParseCode(s)
	if err != nil {
		t.Fatalf("ParseCode(%q): %v", s, err)
	}
	return c
}

func TestScore_Examples(t *testing.T) {
	cases := []struct {
		a, b  string
		bulls int
		cows  int
	}{
		{"0123", "0123", 4, 0},
		{"0123", "0326", 2, 1}, // 0 and 2 in place, 3 misplaced
		{"1234", "5678", 0, 0},
		{"1234", "4321", 0, 4},
		{"1234", "1243", 2, 2},
		{"1234", "1567", 1, 0},
		{"1234", "5126", 0, 2},
		{"3209", "0138", 0, 2},
		{"0195", "0138", 2, 0},
	}
	for _, tc := range cases {
		t.Run(tc.a+"_"+tc.b, func(t *testing.T) {
			got := Score(mustCode(t, tc.a), mustCode(t, tc.b))
			if got.Bulls != tc.bulls || got.Cows != tc.cows {
				t.Fatalf("Score(%s,%s)=%s want %dA%dB", tc.a, tc.b, got, tc.bulls, tc.cows)
			}
		})
	}
}

func TestScore_Properties(t *testing.T) {
	codes := MustInitialPool().Codes()
	step := 7
	if testing.Short() {
		step = 31
	}
	for i := 0; i < len(codes); i++ {
		a := codes[i]
		if got := Score(a, a); got != FourBulls {
			t.Fatalf("Score(%s,%s)=%s want 4A0B", a, a, got)
		}
		for j := i % step; j < len(codes); j += step {
			b := codes[j]
			ab, ba := Score(a, b), Score(b, a)
			if ab != ba {
				t.Fatalf("Score not symmetric for %s,%s: %s vs %s", a, b, ab, ba)
			}
			if err := ab.Validate(); err != nil {
				t.Fatalf("Score(%s,%s)=%s out of range: %v", a, b, ab, err)
			}
			if ab.Solved() != (a == b) {
				t.Fatalf("Score(%s,%s)=%s solved mismatch", a, b, ab)
			}
		}
	}
}

func TestParseResponse(t *testing.T) {
	cases := []struct {
		in   string
		want Response
		err  error
	}{
		{in: "1A2B", want: Response{1, 2}},
		{in: "0a0b", want: Response{0, 0}},
		{in: "4A0B", want: Response{4, 0}},
		{in: "2A", want: Response{2, 0}},
		{in: "3B", want: Response{0, 3}},
		{in: "3b", want: Response{0, 3}},
		{in: " 0A4B \r\n", want: Response{0, 4}},
		{in: "3A2B", err: ErrResponseRange},
		{in: "5A", err: ErrResponseRange},
		{in: "0A5B", err: ErrResponseRange},
		{in: "1B2A", err: ErrMalformed},
		{in: "1A2C", err: ErrMalformed},
		{in: "2C", err: ErrMalformed},
		{in: "AB", err: ErrMalformed},
		{in: "1A2", err: ErrMalformed},
		{in: "1A2B3", err: ErrMalformed},
		{in: "", err: ErrMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseResponse(tc.in)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewResponse(t *testing.T) {
	r, err := NewResponse(1, 3)
	require.NoError(t, err)
	assert.Equal(t, "1A3B", r.String())

	for _, bad := range [][2]int{{-1, 0}, {0, -1}, {5, 0}, {2, 3}} {
		_, err := NewResponse(bad[0], bad[1])
		assert.ErrorIs(t, err, ErrResponseRange, "%v", bad)
	}
}

func TestResponse_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		R Response `json:"r"`
	}{Response{2, 1}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"r":"2A1B"}`, string(b))

	var back struct {
		R Response `json:"r"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"r":"3B"}`), &back))
	assert.Equal(t, Response{0, 3}, back.R)
}
