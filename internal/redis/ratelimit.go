package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Rate limiting key patterns:
// - ratelimit:{ip}:requests - every API request, per client IP
// - ratelimit:{user_id}:writes - mutating requests, per authenticated user

type RateLimitConfig struct {
	RequestLimit  int
	RequestWindow time.Duration
	WriteLimit    int
	WriteWindow   time.Duration
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestLimit:  100, // 100 requests per 15 minutes
		RequestWindow: 15 * time.Minute,
		WriteLimit:    30, // 30 writes per minute
		WriteWindow:   time.Minute,
	}
}

type RateLimiter struct {
	client *goredis.Client
	config RateLimitConfig
}

type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
	Limit     int
}

func NewRateLimiter(client *goredis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
	}
}

// AllowRequest checks the per-IP request budget.
func (r *RateLimiter) AllowRequest(ctx context.Context, ip string) (*RateLimitResult, error) {
	return r.checkLimit(ctx, requestKey(ip), r.config.RequestLimit, r.config.RequestWindow)
}

// AllowWrite checks the per-user budget for mutating requests.
func (r *RateLimiter) AllowWrite(ctx context.Context, userID string) (*RateLimitResult, error) {
	return r.checkLimit(ctx, writeKey(userID), r.config.WriteLimit, r.config.WriteWindow)
}

func requestKey(ip string) string {
	return fmt.Sprintf("ratelimit:%s:requests", ip)
}

func writeKey(userID string) string {
	return fmt.Sprintf("ratelimit:%s:writes", userID)
}

var limitScript = goredis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])

	local current = redis.call('GET', key)
	if current == false then
		current = 0
	else
		current = tonumber(current)
	end

	local ttl = redis.call('TTL', key)
	if ttl < 0 then
		ttl = window
	end

	if current < limit then
		redis.call('INCR', key)
		if ttl == window then
			redis.call('EXPIRE', key, window)
		end
		return {1, limit - current - 1, ttl}
	else
		return {0, 0, ttl}
	end
`)

// checkLimit increments and checks a fixed window counter atomically.
func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error) {
	seconds := int(window.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	result, err := limitScript.Run(ctx, r.client, []string{key}, limit, seconds).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	resultSlice, ok := result.([]interface{})
	if !ok || len(resultSlice) < 3 {
		return nil, fmt.Errorf("unexpected rate limit result format")
	}
	allowed, _ := resultSlice[0].(int64)
	remaining, _ := resultSlice[1].(int64)
	resetIn, _ := resultSlice[2].(int64)

	return &RateLimitResult{
		Allowed:   allowed == 1,
		Remaining: int(remaining),
		ResetIn:   time.Duration(resetIn) * time.Second,
		Limit:     limit,
	}, nil
}

// Reset clears the request and write counters for one key owner (admin operation).
func (r *RateLimiter) Reset(ctx context.Context, owner string) error {
	return r.client.Del(ctx, requestKey(owner), writeKey(owner)).Err()
}
