package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bsm/redislock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_DisabledReturnsNoop(t *testing.T) {
	g := New(Config{Enabled: false}, zap.NewNop())
	assert.IsType(t, Noop{}, g)

	ctx := context.Background()
	held, release, err := g.Acquire(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, ctx, held)
	release()
	assert.NoError(t, g.Close())
}

func TestNew_EnabledReturnsRedis(t *testing.T) {
	g := New(Config{Enabled: true, Addr: "localhost:6379", TTLSeconds: 10}, zap.NewNop())
	r, ok := g.(*Redis)
	require.True(t, ok)
	assert.Equal(t, "10s", r.ttl.String())
	assert.NoError(t, r.Close())
}

// TestRedis_AcquireUnreachable tests that a dead Redis surfaces as an error instead of a silent pass.
func TestRedis_AcquireUnreachable(t *testing.T) {
	g := New(Config{Enabled: true, Addr: "127.0.0.1:1", DialTimeoutMillis: 100}, zap.NewNop())

	t.Cleanup(func() { _ = g.Close() })

	held, release, err := g.Acquire(context.Background(), "accounting-sync:batch")
	assert.Error(t, err)
	assert.Nil(t, held)
	assert.Nil(t, release)
	assert.NotErrorIs(t, err, ErrHeld)
}

type fakeLease struct {
	mu         sync.Mutex
	refreshErr error
	refreshes  int
	released   bool
}

func (f *fakeLease) Refresh(context.Context, time.Duration, *redislock.Options) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.refreshErr
}

func (f *fakeLease) Release(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = true
	return nil
}

func (f *fakeLease) snapshot() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes, f.released
}

func TestHold_RefreshKeepsContextAlive(t *testing.T) {
	l := &fakeLease{}
	held, release := hold(context.Background(), "k", l, 20*time.Millisecond, zap.NewNop())

	assert.Eventually(t, func() bool {
		n, _ := l.snapshot()
		return n >= 2
	}, time.Second, 5*time.Millisecond)
	assert.NoError(t, held.Err())

	release()
	release()
	_, released := l.snapshot()
	assert.True(t, released)
	assert.ErrorIs(t, held.Err(), context.Canceled)
	assert.NotErrorIs(t, context.Cause(held), ErrLeaseLost)
}

func TestHold_FailedRefreshCancelsContext(t *testing.T) {
	l := &fakeLease{refreshErr: errors.New("connection reset")}
	held, release := hold(context.Background(), "k", l, 20*time.Millisecond, zap.NewNop())
	defer release()

	select {
	case <-held.Done():
	case <-time.After(time.Second):
		t.Fatal("held context not cancelled after a failed refresh")
	}
	assert.ErrorIs(t, context.Cause(held), ErrLeaseLost)
	assert.Contains(t, context.Cause(held).Error(), "connection reset")
}
