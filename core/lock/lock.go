package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// ErrHeld is returned when another invocation already holds the run lock.
	ErrHeld = errors.New("another run holds the lock")

	// ErrLeaseLost is the cause of a held context cancelled by a failed refresh.
	ErrLeaseLost = errors.New("run lock lease lost")
)

// Guard serializes batch runs against the same target.
type Guard interface {
	// Acquire obtains key. The returned context is cancelled once the lease is
	// lost, and release frees the lock.
	Acquire(ctx context.Context, key string) (held context.Context, release func(), err error)

	// Close frees the guard's connection.
	Close() error
}

// lease is the part of a redislock lock the guard keeps alive.
type lease interface {
	Refresh(ctx context.Context, ttl time.Duration, opt *redislock.Options) error
	Release(ctx context.Context) error
}

// New returns the Redis guard when enabled, otherwise a guard that lets every run through.
func New(cfg Config, logger *zap.Logger) Guard {
	if !cfg.Enabled {
		logger.Warn("Run lock disabled: concurrent invocations are not coordinated")
		return Noop{}
	}

	dialTimeout := time.Duration(cfg.DialTimeoutMillis) * time.Millisecond
	if dialTimeout <= 0 {
		dialTimeout = 2 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
		MaxRetries:  1,
	})

	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &Redis{client: rdb, locker: redislock.New(rdb), ttl: ttl, logger: logger}
}

// Noop lets every run through.
type Noop struct{}

// Acquire always succeeds.
func (Noop) Acquire(ctx context.Context, _ string) (context.Context, func(), error) {
	return ctx, func() {}, nil
}

// Close is a no-op.
func (Noop) Close() error { return nil }

// Redis holds a redislock lease and keeps refreshing it until released.
type Redis struct {
	client *redis.Client
	locker *redislock.Client
	ttl    time.Duration
	logger *zap.Logger
}

// Acquire obtains the lock without retrying; a held lock yields ErrHeld.
func (r *Redis) Acquire(ctx context.Context, key string) (context.Context, func(), error) {
	l, err := r.locker.Obtain(ctx, key, r.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, nil, fmt.Errorf("%w: %s", ErrHeld, key)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	held, release := hold(ctx, key, l, r.ttl, r.logger)
	return held, release, nil
}

// Close closes the Redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// hold refreshes l every ttl/2. A failed refresh means the lease may expire
// under us, so the returned context is cancelled with ErrLeaseLost.
func hold(ctx context.Context, key string, l lease, ttl time.Duration, logger *zap.Logger) (context.Context, func()) {
	held, cancel := context.WithCancelCause(ctx)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := l.Refresh(context.Background(), ttl, nil); err != nil {
					logger.Error("Failed to refresh run lock", zap.String("key", key), zap.Error(err))
					cancel(fmt.Errorf("%w: %s: %w", ErrLeaseLost, key, err))
					return
				}
			}
		}
	}()

	var once sync.Once
	release := func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
			cancel(nil)
			if err := l.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				logger.Warn("Failed to release run lock", zap.String("key", key), zap.Error(err))
			}
		})
	}
	return held, release
}
