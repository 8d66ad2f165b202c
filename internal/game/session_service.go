package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tungcyang/bullscows/internal/bnc"
)

type Config struct {
	SessionTTL    time.Duration // idle sessions are evicted after this; 0 => never
	SweepInterval time.Duration
	RandomOpening bool
}

// SessionService creates sessions and evicts idle ones. All sessions share the
// one initial pool and random source.
type SessionService struct {
	cfg     Config
	log     *slog.Logger
	store   SessionStore
	initial bnc.Pool
	rnd     *bnc.Source
}

func NewSessionService(cfg Config, store SessionStore, initial bnc.Pool, rnd *bnc.Source, log *slog.Logger) *SessionService {
	if log == nil {
		log = slog.Default()
	}
	return &SessionService{
		cfg:     cfg,
		log:     log,
		store:   store,
		initial: initial,
		rnd:     rnd,
	}
}

func (s *SessionService) Create(ctx context.Context) (*Session, error) {
	return s.CreateWith(ctx, Options{RandomOpening: s.cfg.RandomOpening})
}

// CreateWith is Create with explicit session options.
func (s *SessionService) CreateWith(ctx context.Context, opts Options) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sess := NewSession(uuid.NewString(), s.initial, s.rnd, opts)
	s.store.Put(sess)
	s.log.InfoContext(ctx, "session created", "session", sess.ID(), "live", s.store.Len())
	return sess, nil
}

func (s *SessionService) Get(id string) (*Session, bool) {
	return s.store.Get(id)
}

// End removes a session at the player's request and drops its connection.
func (s *SessionService) End(ctx context.Context, id string) bool {
	if !s.store.Delete(id) {
		return false
	}
	s.log.InfoContext(ctx, "session ended", "session", id, "live", s.store.Len())
	return true
}

// Sweep evicts sessions idle for longer than the TTL.
func (s *SessionService) Sweep(now time.Time) int {
	if s.cfg.SessionTTL <= 0 {
		return 0
	}
	gone := s.store.Expire(now.Add(-s.cfg.SessionTTL))
	for _, id := range gone {
		s.log.Info("session expired", "session", id)
	}
	return len(gone)
}

// Run sweeps on every tick until ctx is done.
func (s *SessionService) Run(ctx context.Context) error {
	interval := s.cfg.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			s.Sweep(now)
		}
	}
}
