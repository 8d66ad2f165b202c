package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tungcyang/bullscows/internal/bnc"
)

func newEngineRouter() http.Handler {
	h := &EngineHandler{Initial: bnc.MustInitialPool(), Rand: bnc.NewSource(5)}
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestEngine_Score(t *testing.T) {
	r := newEngineRouter()

	cases := []struct {
		name     string
		body     string
		wantCode int
		want     ScoreResponse
		wantErr  string
	}{
		{name: "exact", body: `{"a":"0123","b":"0123"}`, wantCode: http.StatusOK, want: ScoreResponse{Bulls: 4, Text: "4A0B"}},
		{name: "mixed", body: `{"a":"0123","b":"0326"}`, wantCode: http.StatusOK, want: ScoreResponse{Bulls: 2, Cows: 1, Text: "2A1B"}},
		{name: "cows_only", body: `{"a":"3209","b":"0138"}`, wantCode: http.StatusOK, want: ScoreResponse{Cows: 2, Text: "0A2B"}},
		{name: "repeated_digit", body: `{"a":"0013","b":"0123"}`, wantCode: http.StatusBadRequest, wantErr: "bad_input"},
		{name: "too_short", body: `{"a":"012","b":"0123"}`, wantCode: http.StatusBadRequest, wantErr: "bad_input"},
		{name: "bad_json", body: `{`, wantCode: http.StatusBadRequest, wantErr: "bad_request"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, r, http.MethodPost, "/api/score", tc.body)
			require.Equal(t, tc.wantCode, rec.Code, rec.Body.String())

			if tc.wantErr != "" {
				var e ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
				assert.Equal(t, tc.wantErr, e.Code)
				return
			}
			var got ScoreResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEngine_Solve(t *testing.T) {
	r := newEngineRouter()

	cases := []struct {
		name     string
		body     string
		wantCode int
		want     SolveResponse
		wantErr  string
	}{
		{name: "empty_history", body: `{"history":[]}`, wantCode: http.StatusOK, want: SolveResponse{Candidates: 5040, NextGuess: "0123"}},
		{name: "no_hits", body: `{"history":[{"guess":"0123","response":"0A0B"}]}`, wantCode: http.StatusOK, want: SolveResponse{Candidates: 360, NextGuess: "4567"}},
		{name: "short_form", body: `{"history":[{"guess":"0123","response":"4B"}]}`, wantCode: http.StatusOK, want: SolveResponse{
			Candidates: 9, NextGuess: "1032",
			Remaining: []string{"1032", "1230", "1302", "2031", "2301", "2310", "3012", "3201", "3210"},
		}},
		{name: "solved", body: `{"history":[{"guess":"0123","response":"4A"}]}`, wantCode: http.StatusOK, want: SolveResponse{Candidates: 1, NextGuess: "0123", Certain: true, Remaining: []string{"0123"}}},
		{name: "check_consistent", body: `{"history":[{"guess":"0123","response":"0A0B"}],"check":"9876"}`, wantCode: http.StatusOK, want: SolveResponse{Candidates: 360, NextGuess: "4567", Consistent: ptr(true)}},
		{name: "check_eliminated", body: `{"history":[{"guess":"0123","response":"0A0B"}],"check":"0456"}`, wantCode: http.StatusOK, want: SolveResponse{Candidates: 360, NextGuess: "4567", Consistent: ptr(false)}},
		{name: "restricted_start", body: `{"from":["9876","0123","5678"],"history":[{"guess":"0123","response":"0A0B"}]}`, wantCode: http.StatusOK, want: SolveResponse{
			Candidates: 2, NextGuess: "5678", Remaining: []string{"9876", "5678"},
		}},
		{name: "restricted_repeat", body: `{"from":["0123","0123"]}`, wantCode: http.StatusBadRequest, wantErr: "bad_input"},
		{name: "check_bad_code", body: `{"history":[],"check":"1123"}`, wantCode: http.StatusBadRequest, wantErr: "bad_input"},
		{name: "contradiction", body: `{"history":[{"guess":"0123","response":"3A1B"}]}`, wantCode: http.StatusConflict, wantErr: "contradiction"},
		{name: "bad_guess", body: `{"history":[{"guess":"0000","response":"0A0B"}]}`, wantCode: http.StatusBadRequest, wantErr: "bad_input"},
		{name: "bad_response", body: `{"history":[{"guess":"0123","response":"2A3B"}]}`, wantCode: http.StatusBadRequest, wantErr: "bad_input"},
		{name: "too_long", body: `{"history":[` + strings.Repeat(`{"guess":"0123","response":"0A0B"},`, maxSolveSteps) + `{"guess":"0123","response":"0A0B"}]}`, wantCode: http.StatusBadRequest, wantErr: "bad_request"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, r, http.MethodPost, "/api/solve", tc.body)
			require.Equal(t, tc.wantCode, rec.Code, rec.Body.String())

			if tc.wantErr != "" {
				var e ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
				assert.Equal(t, tc.wantErr, e.Code)
				return
			}
			var got SolveResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEngine_Random(t *testing.T) {
	r := newEngineRouter()

	rec := serve(t, r, http.MethodGet, "/api/random", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	c, err := bnc.ParseCode(got["code"])
	require.NoError(t, err)
	assert.True(t, c.Valid())
}

func ptr[T any](v T) *T { return &v }
