package redis

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/jhoicas/custodia-api/pkg/config"
)

// Result resultado de consumir un token.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter consume un token del bucket identificado por key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// NewLimiter devuelve el token bucket en Redis si hay cliente; si no, uno local por proceso.
func NewLimiter(rdb *goredis.Client, cfg config.RateLimitConfig) Limiter {
	cfg = normalize(cfg)
	if rdb == nil {
		return NewLocalLimiter(cfg)
	}
	return NewTokenBucket(rdb, cfg)
}

func normalize(cfg config.RateLimitConfig) config.RateLimitConfig {
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
		cfg.TTL = minTTL
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rl"
	}
	return cfg
}

// El estado del bucket vive en un hash: tokens y último refill en ms.
var tokenBucketScript = goredis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])
if tokens == nil or last_refill == nil then
    tokens = capacity
    last_refill = now_ms
end

local elapsed = math.max(0, now_ms - last_refill)
local intervals = math.floor(elapsed / interval_ms)
if intervals > 0 then
    tokens = math.min(capacity, tokens + intervals * refill_tokens)
    last_refill = last_refill + intervals * interval_ms
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
else
    retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)
return { allowed, tokens, retry_after_ms }
`)

// TokenBucket limitador distribuido: el script Lua hace refill y consumo de forma atómica.
type TokenBucket struct {
	rdb *goredis.Client
	cfg config.RateLimitConfig
	now func() time.Time
}

// NewTokenBucket construye el limitador sobre Redis.
func NewTokenBucket(rdb *goredis.Client, cfg config.RateLimitConfig) *TokenBucket {
	return &TokenBucket{rdb: rdb, cfg: normalize(cfg), now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (b *TokenBucket) WithClock(now func() time.Time) *TokenBucket {
	b.now = now
	return b
}

// Allow consume un token de key.
func (b *TokenBucket) Allow(ctx context.Context, key string) (Result, error) {
	vals, err := tokenBucketScript.Run(ctx, b.rdb, []string{b.cfg.Prefix + ":" + key},
		b.now().UnixMilli(),
		b.cfg.Capacity,
		b.cfg.RefillTokens,
		b.cfg.RefillInterval.Milliseconds(),
		int64(b.cfg.TTL/time.Second),
	).Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(vals) != 3 {
		return Result{}, fmt.Errorf("rate limit script: respuesta inesperada %v", vals)
	}
	return Result{
		Allowed:    asInt64(vals[0]) == 1,
		Limit:      b.cfg.Capacity,
		Remaining:  asInt64(vals[1]),
		RetryAfter: time.Duration(asInt64(vals[2])) * time.Millisecond,
	}, nil
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}

// LocalLimiter limitador en memoria del proceso (una réplica), con rate.Limiter por key.
type LocalLimiter struct {
	cfg       config.RateLimitConfig
	mu        sync.Mutex
	buckets   map[string]*localBucket
	lastPrune time.Time
	now       func() time.Time
}

type localBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter construye el limitador local.
func NewLocalLimiter(cfg config.RateLimitConfig) *LocalLimiter {
	return &LocalLimiter{cfg: normalize(cfg), buckets: map[string]*localBucket{}, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (l *LocalLimiter) WithClock(now func() time.Time) *LocalLimiter {
	l.now = now
	return l
}

// Allow consume un token de key.
func (l *LocalLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(now)
	b, ok := l.buckets[key]
	if !ok {
		every := rate.Every(l.cfg.RefillInterval / time.Duration(l.cfg.RefillTokens))
		b = &localBucket{lim: rate.NewLimiter(every, l.cfg.Capacity)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	r := b.lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Result{Limit: l.cfg.Capacity, RetryAfter: delay}, nil
	}
	remaining := int64(b.lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Limit: l.cfg.Capacity, Remaining: remaining}, nil
}

// prune descarta buckets sin uso durante más de TTL; recorre el mapa como mucho una vez por TTL.
func (l *LocalLimiter) prune(now time.Time) {
	if now.Sub(l.lastPrune) < l.cfg.TTL {
		return
	}
	l.lastPrune = now
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.cfg.TTL {
			delete(l.buckets, k)
		}
	}
}
