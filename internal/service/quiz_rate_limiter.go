package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateAction separa los presupuestos: crear sesiones y pedir resultados.
type RateAction string

const (
	RateActionSubmit  RateAction = "submit"
	RateActionSession RateAction = "session"
)

// RateLimits define la ventana compartida y el maximo por accion.
// Una accion sin maximo (o con maximo <= 0) no se limita.
type RateLimits struct {
	Window time.Duration
	Max    map[RateAction]int
}

func (l RateLimits) max(action RateAction) int {
	return l.Max[action]
}

// Enabled indica si alguna accion tiene limite.
func (l RateLimits) Enabled() bool {
	for _, m := range l.Max {
		if m > 0 {
			return true
		}
	}
	return false
}

func (l RateLimits) normalized() RateLimits {
	if l.Window <= 0 {
		l.Window = time.Minute
	}
	return l
}

// RateDecision es la respuesta del limiter para un cliente y una accion.
type RateDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

var errEmptyRateKey = errors.New("rate limiter: empty client key")

// QuizRateLimiter aplica una ventana deslizante por accion y cliente.
// Ante un error el handler decide; el limiter no falla abierto por su cuenta.
type QuizRateLimiter interface {
	Allow(ctx context.Context, action RateAction, client string) (RateDecision, error)
}

func clientKey(client string) string {
	return strings.ToLower(strings.TrimSpace(client))
}

// Ventana deslizante sobre un ZSET con timestamps en ms. Devuelve
// {permitido, ocupados, ms_hasta_liberar}.
const redisSlidingWindowScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)
local used = redis.call("ZCARD", key)
if used >= max then
  local oldest = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
  local retry = window
  if oldest[2] then
    retry = tonumber(oldest[2]) + window - now
  end
  return {0, used, retry}
end
redis.call("ZADD", key, now, ARGV[4])
redis.call("PEXPIRE", key, window)
return {1, used + 1, 0}
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisQuizRateLimiter struct {
	client redisEvaler
	limits RateLimits
	prefix string
	now    func() time.Time
}

func NewRedisQuizRateLimiter(client *redis.Client, limits RateLimits) QuizRateLimiter {
	if client == nil {
		return nil
	}
	return &redisQuizRateLimiter{
		client: client,
		limits: limits.normalized(),
		prefix: "quiz:rl:",
		now:    time.Now,
	}
}

func (l *redisQuizRateLimiter) Allow(ctx context.Context, action RateAction, client string) (RateDecision, error) {
	max := l.limits.max(action)
	if max <= 0 {
		return RateDecision{Allowed: true}, nil
	}
	key := clientKey(client)
	if key == "" {
		return RateDecision{}, errEmptyRateKey
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	window := l.limits.Window.Milliseconds()
	redisKey := l.prefix + string(action) + ":" + key
	vals, err := l.client.Eval(ctx, redisSlidingWindowScript, []string{redisKey},
		l.now().UnixMilli(), window, max, uuid.NewString()).Slice()
	if err != nil {
		return RateDecision{}, err
	}
	if len(vals) != 3 {
		return RateDecision{}, errors.New("rate limiter: unexpected script reply")
	}
	allowed, _ := vals[0].(int64)
	used, _ := vals[1].(int64)
	retryMs, _ := vals[2].(int64)
	return RateDecision{
		Allowed:    allowed == 1,
		Remaining:  remaining(max, int(used)),
		RetryAfter: time.Duration(retryMs) * time.Millisecond,
	}, nil
}

type memoryQuizRateLimiter struct {
	mu        sync.Mutex
	limits    RateLimits
	now       func() time.Time
	hits      map[string][]time.Time
	lastSweep time.Time
}

// NewMemoryQuizRateLimiter se usa cuando no hay Redis. Los clientes sin
// envios dentro de la ventana se descartan del mapa.
func NewMemoryQuizRateLimiter(limits RateLimits) QuizRateLimiter {
	return &memoryQuizRateLimiter{
		limits: limits.normalized(),
		now:    func() time.Time { return time.Now().UTC() },
		hits:   make(map[string][]time.Time),
	}
}

func (l *memoryQuizRateLimiter) Allow(_ context.Context, action RateAction, client string) (RateDecision, error) {
	max := l.limits.max(action)
	if max <= 0 {
		return RateDecision{Allowed: true}, nil
	}
	key := clientKey(client)
	if key == "" {
		return RateDecision{}, errEmptyRateKey
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.limits.Window)
	if now.Sub(l.lastSweep) >= l.limits.Window {
		l.sweep(cutoff)
		l.lastSweep = now
	}

	k := string(action) + ":" + key
	kept := pruneBefore(l.hits[k], cutoff)
	if len(kept) >= max {
		l.hits[k] = kept
		return RateDecision{
			Allowed:    false,
			RetryAfter: kept[0].Add(l.limits.Window).Sub(now),
		}, nil
	}
	kept = append(kept, now)
	l.hits[k] = kept
	return RateDecision{Allowed: true, Remaining: remaining(max, len(kept))}, nil
}

// sweep requiere el lock tomado.
func (l *memoryQuizRateLimiter) sweep(cutoff time.Time) {
	for k, entries := range l.hits {
		if kept := pruneBefore(entries, cutoff); len(kept) == 0 {
			delete(l.hits, k)
		} else {
			l.hits[k] = kept
		}
	}
}

// pruneBefore conserva los timestamps posteriores a cutoff; vienen ordenados.
func pruneBefore(entries []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(entries) && !entries[i].After(cutoff) {
		i++
	}
	if i == len(entries) {
		return nil
	}
	return entries[i:]
}

func remaining(max, used int) int {
	if used >= max {
		return 0
	}
	return max - used
}
