package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/saurav0523/liaplusAI-Backend/pkg/logger"
	pkgredis "github.com/saurav0523/liaplusAI-Backend/pkg/redis"
	"github.com/saurav0523/liaplusAI-Backend/pkg/response"
	"github.com/saurav0523/liaplusAI-Backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RateLimitConfig holds token bucket settings
type RateLimitConfig struct {
	// RequestsPerSecond is the refill rate per key
	RequestsPerSecond int
	// BurstSize is the bucket capacity
	BurstSize int
	// KeyPrefix namespaces Redis keys
	KeyPrefix string
	// CleanupInterval and EntryTTL bound memory of the local limiter
	CleanupInterval time.Duration
	EntryTTL        time.Duration
}

// DefaultRateLimitConfig returns defaults for the auth endpoints
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		KeyPrefix:         "ratelimit:",
		CleanupInterval:   time.Minute,
		EntryTTL:          time.Minute,
	}
}

// Decision is the outcome of one rate limit check
type Decision struct {
	Allowed   bool
	Remaining float64
}

// Limiter decides whether a key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// rateLimitEntry tracks bucket state for a key
type rateLimitEntry struct {
	tokens     float64
	lastUpdate time.Time
	mu         sync.Mutex
}

// LocalRateLimiter implements an in-memory token bucket per key
type LocalRateLimiter struct {
	config  RateLimitConfig
	entries sync.Map
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewLocalRateLimiter creates a limiter and starts its cleanup goroutine.
// Callers must Stop it.
func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	def := DefaultRateLimitConfig()
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}
	if config.EntryTTL <= 0 {
		config.EntryTTL = def.EntryTTL
	}

	rl := &LocalRateLimiter{
		config: config,
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow takes one token from the bucket for key
func (rl *LocalRateLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := rl.now()

	entry, _ := rl.entries.LoadOrStore(key, &rateLimitEntry{
		tokens:     float64(rl.config.BurstSize),
		lastUpdate: now,
	})
	e := entry.(*rateLimitEntry)

	e.mu.Lock()
	defer e.mu.Unlock()

	elapsed := now.Sub(e.lastUpdate).Seconds()
	if elapsed > 0 {
		e.tokens = math.Min(float64(rl.config.BurstSize), e.tokens+elapsed*float64(rl.config.RequestsPerSecond))
		e.lastUpdate = now
	}

	if e.tokens >= 1 {
		e.tokens--
		return Decision{Allowed: true, Remaining: e.tokens}, nil
	}
	return Decision{Allowed: false, Remaining: e.tokens}, nil
}

func (rl *LocalRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evict(rl.now().Add(-rl.config.EntryTTL))
		case <-rl.stop:
			return
		}
	}
}

func (rl *LocalRateLimiter) evict(cutoff time.Time) {
	rl.entries.Range(func(key, value interface{}) bool {
		e := value.(*rateLimitEntry)
		e.mu.Lock()
		if e.lastUpdate.Before(cutoff) {
			rl.entries.Delete(key)
		}
		e.mu.Unlock()
		return true
	})
}

// Stop stops the cleanup goroutine
func (rl *LocalRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

const tokenBucketScript = `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local data = redis.call("HMGET", key, "tokens", "last_update")
local tokens = tonumber(data[1]) or burst
local last_update = tonumber(data[2]) or now

local elapsed = math.max(0, now - last_update)
tokens = math.min(burst, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
end

redis.call("HSET", key, "tokens", tokens, "last_update", now)
redis.call("EXPIRE", key, math.ceil(burst / rate) + 1)
return {allowed, tostring(tokens)}
`

// RedisRateLimiter shares buckets across instances through a Lua script
type RedisRateLimiter struct {
	config  RateLimitConfig
	scripts *pkgredis.ScriptCache
	now     func() time.Time
}

// NewRedisRateLimiter creates a Redis-backed limiter
func NewRedisRateLimiter(config RateLimitConfig, scripts *pkgredis.ScriptCache) *RedisRateLimiter {
	return &RedisRateLimiter{config: config, scripts: scripts, now: time.Now}
}

// Allow runs the token bucket script for key
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := float64(rl.now().UnixNano()) / 1e9

	values, err := rl.scripts.Eval(ctx, "token_bucket", tokenBucketScript,
		[]string{rl.config.KeyPrefix + key},
		rl.config.RequestsPerSecond,
		rl.config.BurstSize,
		now,
	).Slice()
	if err != nil {
		return Decision{}, err
	}
	if len(values) < 2 {
		return Decision{}, fmt.Errorf("unexpected result length: %d", len(values))
	}

	return Decision{
		Allowed:   toFloat(values[0]) == 1,
		Remaining: toFloat(values[1]),
	}, nil
}

// toFloat handles the reply types Redis may return for a Lua number
func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}

// RateLimiter rejects requests over the limit with 429. Limiter errors fail
// open so a Redis outage never blocks logins.
func RateLimiter(limiter Limiter, config RateLimitConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := telemetry.StartSpan(c.Request.Context(), "middleware.rate_limiter")
		defer span.End()

		key := c.ClientIP()
		span.SetAttributes(attribute.String("client_ip", key))

		decision, err := limiter.Allow(ctx, key)
		if err != nil {
			log.WithContext(ctx).Warn("Rate limiter unavailable, allowing request",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			c.Next()
			return
		}
		span.SetAttributes(attribute.Bool("allowed", decision.Allowed))

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerSecond))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(math.Max(0, decision.Remaining))))

		if !decision.Allowed {
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(decision.Remaining, config.RequestsPerSecond)))
			response.Abort(c, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests, please try again later")
			return
		}

		c.Next()
	}
}

func retryAfterSeconds(remaining float64, rps int) int {
	if rps <= 0 {
		return 1
	}
	seconds := int(math.Ceil((1 - remaining) / float64(rps)))
	if seconds < 1 {
		return 1
	}
	return seconds
}
