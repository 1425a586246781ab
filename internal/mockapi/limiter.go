package mockapi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	maxLoginAttempts = 5
	loginWindow      = 15 * time.Minute
)

// LoginLimiter throttles failed logins per client address and user name.
type LoginLimiter interface {
	// CheckLoginAttempt counts an attempt and reports whether it is allowed
	// along with the attempts left in the window.
	CheckLoginAttempt(ctx context.Context, ip, name string) (bool, int64, error)
	ResetLoginAttempts(ctx context.Context, ip, name string) error
}

func loginKey(ip, name string) string {
	return fmt.Sprintf("ratelimit:login:%s:%s", ip, name)
}

// RedisLimiter shares the attempt counters across mock instances.
type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (r *RedisLimiter) CheckLoginAttempt(ctx context.Context, ip, name string) (bool, int64, error) {
	key := loginKey(ip, name)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment login attempt: %w", err)
	}

	// Set expiration on first attempt
	if count == 1 {
		r.client.Expire(ctx, key, loginWindow)
	}

	remaining := maxLoginAttempts - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= maxLoginAttempts, remaining, nil
}

func (r *RedisLimiter) ResetLoginAttempts(ctx context.Context, ip, name string) error {
	return r.client.Del(ctx, loginKey(ip, name)).Err()
}

type attemptWindow struct {
	count   int64
	resetAt time.Time
}

// MemoryLimiter keeps attempt counters in process.
type MemoryLimiter struct {
	mu       sync.Mutex
	now      func() time.Time
	attempts map[string]*attemptWindow
}

func NewMemoryLimiter(now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{now: now, attempts: make(map[string]*attemptWindow)}
}

func (m *MemoryLimiter) CheckLoginAttempt(_ context.Context, ip, name string) (bool, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := loginKey(ip, name)
	now := m.now()
	w, ok := m.attempts[key]
	if !ok || !now.Before(w.resetAt) {
		w = &attemptWindow{resetAt: now.Add(loginWindow)}
		m.attempts[key] = w
	}
	w.count++

	remaining := maxLoginAttempts - w.count
	if remaining < 0 {
		remaining = 0
	}
	return w.count <= maxLoginAttempts, remaining, nil
}

func (m *MemoryLimiter) ResetLoginAttempts(_ context.Context, ip, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attempts, loginKey(ip, name))
	return nil
}
