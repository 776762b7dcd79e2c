package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TurnRateLimiter acota cuantos turnos de chat acepta el relay por
// usuario dentro de una ventana.
type TurnRateLimiter interface {
	Allow(userID string) bool
}

const redisTurnAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisTurnRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

func NewRedisTurnRateLimiter(client *redis.Client, window time.Duration, max int) TurnRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisTurnRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "chat:rl:",
	}
}

func (l *redisTurnRateLimiter) Allow(userID string) bool {
	if l == nil || l.client == nil {
		return true
	}
	key := strings.TrimSpace(userID)
	if key == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisTurnAllowScript, []string{l.prefix + key}, seconds).Int()
	if err != nil {
		// Redis caido no debe tumbar el chat.
		return true
	}
	return count <= l.max
}

// memoryTurnRateLimiter sirve para desarrollo y tests.
type memoryTurnRateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	counts  map[string]int
	resetAt map[string]time.Time
}

func NewMemoryTurnRateLimiter(window time.Duration, max int) TurnRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &memoryTurnRateLimiter{
		window:  window,
		max:     max,
		counts:  make(map[string]int),
		resetAt: make(map[string]time.Time),
	}
}

func (l *memoryTurnRateLimiter) Allow(userID string) bool {
	key := strings.TrimSpace(userID)
	if key == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if reset, ok := l.resetAt[key]; !ok || now.After(reset) {
		l.counts[key] = 0
		l.resetAt[key] = now.Add(l.window)
	}
	l.counts[key]++
	return l.counts[key] <= l.max
}
