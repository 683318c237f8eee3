package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"crewshift/internal/transport/http/api"
)

type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*rateLimiter)

// hitCounter counts requests per key within a fixed window.
type hitCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int, resetIn time.Duration, err error)
}

type rateBucket struct {
	count int
	reset time.Time
}

type memoryCounter struct {
	mu        sync.Mutex
	clients   map[string]*rateBucket
	nextSweep time.Time
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{clients: map[string]*rateBucket{}}
}

func (c *memoryCounter) Hit(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if now.After(c.nextSweep) {
		for k, b := range c.clients {
			if now.After(b.reset) {
				delete(c.clients, k)
			}
		}
		c.nextSweep = now.Add(window)
	}
	bucket, ok := c.clients[key]
	if !ok || now.After(bucket.reset) {
		bucket = &rateBucket{count: 0, reset: now.Add(window)}
		c.clients[key] = bucket
	}
	bucket.count++
	return bucket.count, bucket.reset.Sub(now), nil
}

// redisCounter shares windows across instances.
type redisCounter struct {
	client redis.Cmdable
	prefix string
}

func (c redisCounter) Hit(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	rk := c.prefix + key
	count, err := c.client.Incr(ctx, rk).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := c.client.PExpire(ctx, rk, window).Err(); err != nil {
			return 0, 0, err
		}
		return 1, window, nil
	}
	ttl, err := c.client.PTTL(ctx, rk).Result()
	if err != nil {
		return 0, 0, err
	}
	if ttl < 0 {
		// key lost its expiry; start a fresh window
		if err := c.client.PExpire(ctx, rk, window).Err(); err != nil {
			return 0, 0, err
		}
		ttl = window
	}
	return int(count), ttl, nil
}

type rateLimiter struct {
	name     string
	limit    int
	window   time.Duration
	keyFn    RateLimitKeyFunc
	counter  hitCounter
	fallback *memoryCounter
	redis    redis.Cmdable
}

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(rl *rateLimiter) {
		if fn != nil {
			rl.keyFn = fn
		}
	}
}

// WithRedis counts in redis. Redis errors fall back to in-process counting.
func WithRedis(client redis.Cmdable) RateLimitOption {
	return func(rl *rateLimiter) {
		if client != nil {
			rl.redis = client
		}
	}
}

func RateLimit(limit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	rl := newRateLimiter("global", limit, window, actorOrIPKey, opts...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.enforce(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SensitiveMutationRateLimit applies tighter limits to login attempts and
// to the shift workflow's mutations.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	authLimit := max(baseLimit/4, 1)
	mutationLimit := max(baseLimit/2, 1)
	authByIP := newRateLimiter("auth-ip", authLimit, window, clientIPKey, opts...)
	authByEmail := newRateLimiter("auth-email", authLimit, window, AuthEmailOrIPKey("email"), opts...)
	sensitiveByActor := newRateLimiter("mutation", mutationLimit, window, actorOrIPKey, opts...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch sensitiveRateScope(r) {
			case sensitiveScopeAuth:
				if !authByIP.enforce(w, r) {
					return
				}
				if !authByEmail.enforce(w, r) {
					return
				}
			case sensitiveScopeActor:
				if !sensitiveByActor.enforce(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func AuthEmailOrIPKey(field string) RateLimitKeyFunc {
	normalizedField := strings.TrimSpace(field)
	if normalizedField == "" {
		normalizedField = "email"
	}
	return func(r *http.Request) string {
		email := extractJSONField(r, normalizedField)
		if email == "" {
			return clientIPKey(r)
		}
		return "email:" + strings.ToLower(email)
	}
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.ID != "" {
		return "user:" + user.ID
	}
	return clientIPKey(r)
}

func clientIPKey(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		parts := strings.Split(fwd, ",")
		if value := strings.TrimSpace(parts[0]); value != "" {
			return value
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

func newRateLimiter(name string, limit int, window time.Duration, keyFn RateLimitKeyFunc, opts ...RateLimitOption) *rateLimiter {
	if keyFn == nil {
		keyFn = actorOrIPKey
	}
	rl := &rateLimiter{
		name:     name,
		limit:    limit,
		window:   window,
		keyFn:    keyFn,
		fallback: newMemoryCounter(),
	}
	for _, opt := range opts {
		opt(rl)
	}
	rl.counter = rl.fallback
	if rl.redis != nil {
		rl.counter = redisCounter{client: rl.redis, prefix: "ratelimit:" + name + ":"}
	}
	return rl
}

func (rl *rateLimiter) hit(ctx context.Context, key string) (int, time.Duration) {
	count, resetIn, err := rl.counter.Hit(ctx, key, rl.window)
	if err == nil {
		return count, resetIn
	}
	log.Warn().Err(err).Str("limiter", rl.name).Msg("rate limit counter unavailable, counting locally")
	count, resetIn, _ = rl.fallback.Hit(ctx, key, rl.window)
	return count, resetIn
}

func (rl *rateLimiter) enforce(w http.ResponseWriter, r *http.Request) bool {
	if rl.limit <= 0 {
		return true
	}

	key := rl.keyFn(r)
	if key == "" {
		key = clientIPKey(r)
	}
	count, resetDur := rl.hit(r.Context(), key)
	remaining := rl.limit - count
	resetIn := durationSeconds(resetDur)

	w.Header().Set("X-RateLimit-Limit", itoa(rl.limit))
	w.Header().Set("X-RateLimit-Remaining", itoa(max(remaining, 0)))
	w.Header().Set("X-RateLimit-Reset", itoa(resetIn))

	if count > rl.limit {
		w.Header().Set("Retry-After", itoa(max(resetIn, 1)))
		log.Warn().
			Str("key", key).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Int("limit", rl.limit).
			Int("windowSec", int(rl.window.Seconds())).
			Msg("rate limit exceeded")
		api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
		return false
	}
	return true
}

func durationSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	seconds := int(d.Seconds())
	if seconds <= 0 {
		return 1
	}
	return seconds
}

func extractJSONField(r *http.Request, field string) string {
	if r == nil || r.Body == nil {
		return ""
	}
	contentType := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Type")))
	if !strings.Contains(contentType, "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if len(raw) == 0 {
		return ""
	}
	payload := map[string]any{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	value, _ := payload[field].(string)
	return strings.TrimSpace(value)
}

type sensitiveScope string

const (
	sensitiveScopeNone  sensitiveScope = ""
	sensitiveScopeAuth  sensitiveScope = "auth"
	sensitiveScopeActor sensitiveScope = "actor"
)

func sensitiveRateScope(r *http.Request) sensitiveScope {
	if r == nil {
		return sensitiveScopeNone
	}
	method := strings.ToUpper(strings.TrimSpace(r.Method))
	if method != http.MethodPost && method != http.MethodPatch {
		return sensitiveScopeNone
	}

	path := normalizedAPIPath(r.URL.Path)
	switch path {
	case "/auth/login":
		return sensitiveScopeAuth
	case "/shifts", "/assignments", "/jobs", "/quotes":
		return sensitiveScopeActor
	}
	if method == http.MethodPatch && strings.HasPrefix(path, "/shifts/") {
		return sensitiveScopeActor
	}
	return sensitiveScopeNone
}

func normalizedAPIPath(path string) string {
	cleaned := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(path), "/api/v1"), "/")
	if cleaned == "" {
		return "/"
	}
	if !strings.HasPrefix(cleaned, "/") {
		return "/" + cleaned
	}
	return cleaned
}

func itoa(value int) string {
	return strconv.Itoa(value)
}
