// Package runlock guards against overlapping batch runs. Two concurrent
// orchestrator runs could both fetch the same unprocessed window and
// create duplicate incidents, so at most one run may hold the lock.
package runlock

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const lockKey = "crisis-engine:process-reports:lock"

// Lock is a Redis-backed single-holder lock. A nil *Lock is a no-op
// lock for deployments without Redis, where the external scheduler is
// trusted to serialize runs.
type Lock struct {
	client *redis.Client
	ttl    time.Duration
	token  string
}

// New connects to Redis and returns a lock handle. An empty addr
// disables locking.
func New(addr, password string, ttl time.Duration) (*Lock, error) {
	if addr == "" {
		return nil, nil
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis run lock: %w", err)
	}

	return &Lock{client: client, ttl: ttl}, nil
}

// TryAcquire attempts to take the lock. It returns false when another
// run already holds it.
func (l *Lock) TryAcquire(ctx context.Context) (bool, error) {
	if l == nil {
		return true, nil
	}
	token := fmt.Sprintf("%d", time.Now().UnixNano())
	ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire run lock: %w", err)
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

// Release frees the lock if this holder still owns it. The TTL covers
// the case where the process dies without releasing.
func (l *Lock) Release(ctx context.Context) error {
	if l == nil {
		return nil
	}
	// Delete only our own token so an expired-and-reacquired lock is
	// not stolen from the new holder.
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		end
		return 0
	`)
	return script.Run(ctx, l.client, []string{lockKey}, l.token).Err()
}
