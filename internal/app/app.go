package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/tungcyang/bullscows/internal/auth"
	"github.com/tungcyang/bullscows/internal/bnc"
	"github.com/tungcyang/bullscows/internal/config"
	"github.com/tungcyang/bullscows/internal/game"
	"github.com/tungcyang/bullscows/internal/httpapi"
)

type App struct {
	cfg config.Config
	log *slog.Logger

	sessions *game.SessionService
	srv      *http.Server
}

// NewLogger builds the process logger from the log config.
func NewLogger(cfg config.Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	// --- Engine ---
	initial, err := bnc.InitialPool()
	if err != nil {
		return nil, fmt.Errorf("candidate pool: %w", err)
	}
	var rnd *bnc.Source
	if cfg.Game.Seed != 0 {
		rnd = bnc.NewSource(cfg.Game.Seed)
		log.InfoContext(ctx, "random source seeded", "seed", cfg.Game.Seed)
	} else {
		rnd = bnc.NewEntropySource()
	}

	// --- Auth service ---
	tokens := auth.NewService([]byte(cfg.Auth.Secret), cfg.Auth.TokenTTL)

	// --- Game ---
	gameCfg := game.Config{
		SessionTTL:    cfg.Game.SessionTTL,
		SweepInterval: cfg.Game.SweepInterval,
		RandomOpening: cfg.Game.RandomOpening,
	}
	sessions := game.NewSessionService(gameCfg, game.NewInMemorySessionStore(), initial, rnd, log)
	gameSrv := game.NewServer(sessions, tokens, log)
	engine := &httpapi.EngineHandler{Initial: initial, Rand: rnd}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(httpapi.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.NotFound(httpapi.NotFound)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// request/response routes are bounded; the websocket is not
	r.Group(func(r chi.Router) {
		if cfg.HTTP.HandlerTimeout > 0 {
			r.Use(chimw.Timeout(cfg.HTTP.HandlerTimeout))
		}
		engine.RegisterRoutes(r)
		gameSrv.RegisterAPI(r)
	})
	gameSrv.RegisterWS(r)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	return &App{cfg: cfg, log: log, sessions: sessions, srv: srv}, nil
}

// Handler is the root router, for tests.
func (a *App) Handler() http.Handler { return a.srv.Handler }

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	a.log.Info("http server starting", "addr", a.cfg.HTTP.Addr)

	g.Go(func() error {
		err := a.srv.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		return a.sessions.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		a.log.Info("http server shutting down")
		_ = a.srv.Shutdown(shutdownCtx)
		return nil
	})

	return g.Wait()
}
