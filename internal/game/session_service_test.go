package game

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tungcyang/bullscows/internal/bnc"
)

func newTestService(cfg Config) *SessionService {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSessionService(cfg, NewInMemorySessionStore(), bnc.MustInitialPool(), bnc.NewSource(3), log)
}

func TestSessionService_CreateGet(t *testing.T) {
	svc := newTestService(Config{SessionTTL: time.Hour})

	sess, err := svc.Create(context.Background())
	require.NoError(t, err)

	_, err = uuid.Parse(sess.ID())
	require.NoError(t, err)

	got, ok := svc.Get(sess.ID())
	require.True(t, ok)
	assert.Same(t, sess, got)

	_, ok = svc.Get(uuid.NewString())
	assert.False(t, ok)
}

func TestSessionService_CreateCancelled(t *testing.T) {
	svc := newTestService(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Create(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSessionService_Sweep(t *testing.T) {
	cases := []struct {
		name    string
		ttl     time.Duration
		after   time.Duration
		evicted int
	}{
		{name: "idle past ttl", ttl: time.Hour, after: 2 * time.Hour, evicted: 2},
		{name: "still fresh", ttl: time.Hour, after: 30 * time.Minute, evicted: 0},
		{name: "ttl disabled", ttl: 0, after: 24 * time.Hour, evicted: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(Config{SessionTTL: tc.ttl})
			for i := 0; i < 2; i++ {
				_, err := svc.Create(context.Background())
				require.NoError(t, err)
			}

			n := svc.Sweep(time.Now().Add(tc.after))
			assert.Equal(t, tc.evicted, n)
			assert.Equal(t, 2-tc.evicted, svc.store.Len())
		})
	}
}

func TestSessionService_RunStopsOnCancel(t *testing.T) {
	svc := newTestService(Config{SessionTTL: time.Nanosecond, SweepInterval: time.Millisecond})
	_, err := svc.Create(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool { return svc.store.Len() == 0 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestInMemorySessionStore(t *testing.T) {
	st := NewInMemorySessionStore()
	s := newPinnedSession(t)

	st.Put(s)
	assert.Equal(t, 1, st.Len())

	got, ok := st.Get("s1")
	require.True(t, ok)
	assert.Same(t, s, got)

	assert.Empty(t, st.Expire(time.Now().Add(-time.Minute)))
	assert.True(t, st.Delete("s1"))
	_, ok = st.Get("s1")
	assert.False(t, ok)
	assert.False(t, st.Delete("s1"))
}

// sendClosed drains c and reports whether its send channel was closed.
func sendClosed(c *ClientConn) bool {
	for {
		select {
		case _, ok := <-c.send:
			if !ok {
				return true
			}
		default:
			return false
		}
	}
}

func TestInMemorySessionStore_EvictionClosesConnection(t *testing.T) {
	cases := []struct {
		name  string
		evict func(st *InMemorySessionStore)
	}{
		{name: "expire", evict: func(st *InMemorySessionStore) {
			assert.Equal(t, []string{"s1"}, st.Expire(time.Now().Add(time.Minute)))
		}},
		{name: "delete", evict: func(st *InMemorySessionStore) {
			assert.True(t, st.Delete("s1"))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := NewInMemorySessionStore()
			s := newPinnedSession(t)
			cc := newTestConn()
			s.Attach(cc)
			st.Put(s)

			tc.evict(st)
			assert.True(t, sendClosed(cc))
			assert.Zero(t, st.Len())

			// later broadcasts must not reach the closed connection
			_, err := s.SubmitGuess("9876")
			require.NoError(t, err)
		})
	}
}

func TestSessionService_End(t *testing.T) {
	svc := newTestService(Config{})
	sess, err := svc.Create(context.Background())
	require.NoError(t, err)
	cc := newTestConn()
	sess.Attach(cc)

	assert.True(t, svc.End(context.Background(), sess.ID()))
	assert.True(t, sendClosed(cc))
	_, ok := svc.Get(sess.ID())
	assert.False(t, ok)

	assert.False(t, svc.End(context.Background(), sess.ID()))
}
