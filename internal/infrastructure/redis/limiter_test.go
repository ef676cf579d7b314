package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/custodia-api/internal/infrastructure/redis"
	"github.com/jhoicas/custodia-api/pkg/config"
)

var limiterCfg = config.RateLimitConfig{
	Enabled:        true,
	Capacity:       3,
	RefillTokens:   1,
	RefillInterval: time.Second,
	TTL:            time.Minute,
	Prefix:         "test",
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestTokenBucket_AgotaYRecarga(t *testing.T) {
	_, rdb := newRedis(t)
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	lim := redis.NewTokenBucket(rdb, limiterCfg).WithClock(c.now)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := lim.Allow(ctx, "login:10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "petición %d", i)
		assert.EqualValues(t, 2-i, res.Remaining)
	}

	res, err := lim.Allow(ctx, "login:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Second, res.RetryAfter)

	other, err := lim.Allow(ctx, "login:10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "cada key tiene su bucket")

	c.t = c.t.Add(1500 * time.Millisecond)
	res, err = lim.Allow(ctx, "login:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.EqualValues(t, 0, res.Remaining)
}

func TestTokenBucket_ExpiraLaKey(t *testing.T) {
	mr, rdb := newRedis(t)
	lim := redis.NewTokenBucket(rdb, limiterCfg)

	_, err := lim.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:k"))
	assert.Equal(t, time.Minute, mr.TTL("test:k"))
}

func TestTokenBucket_ErrorDeRedis(t *testing.T) {
	mr, rdb := newRedis(t)
	lim := redis.NewTokenBucket(rdb, limiterCfg)
	mr.Close()

	_, err := lim.Allow(context.Background(), "k")
	assert.Error(t, err)
}

func TestLocalLimiter_AgotaYRecarga(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	lim := redis.NewLocalLimiter(limiterCfg).WithClock(c.now)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := lim.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
	res, err := lim.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))

	c.t = c.t.Add(time.Second)
	res, err = lim.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestNewLimiter_SinClienteUsaLocal(t *testing.T) {
	lim := redis.NewLimiter(nil, limiterCfg)
	_, ok := lim.(*redis.LocalLimiter)
	assert.True(t, ok)
}
