package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tungcyang/bullscows/internal/auth"
)

type ctxKey string

const sessionIDKey ctxKey = "sessionID"

type TokenVerifier interface {
	VerifyFor(token, sessionID string) (*auth.Claims, error)
}

// TokenFromRequest reads a bearer token, falling back to the "token" query
// parameter (browsers cannot set headers on WebSocket upgrades).
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// SessionAuth requires a token issued for the session named by sessionID(r).
func SessionAuth(v TokenVerifier, sessionID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "missing session token")
				return
			}
			id := sessionID(r)
			claims, err := v.VerifyFor(token, id)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid session token")
				return
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(sessionIDKey)
	s, ok := v.(string)
	return s, ok
}

// RequestLogger logs one line per request with the chi request id.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.LogAttrs(r.Context(), slog.LevelDebug, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("took", time.Since(start)),
				slog.String("request_id", chimw.GetReqID(r.Context())),
			)
		})
	}
}

// NotFound answers unknown routes with the usual JSON error body.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found", "no route for "+r.URL.Path)
}
