// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/go-htmx/internal/config"
	"github.com/carterperez-dev/templates/go-htmx/internal/core"
)

type RateLimitConfig struct {
	Limit      redis_rate.Limit
	KeyFunc    func(*http.Request) string
	BypassFunc func(*http.Request) bool
	OnLimited  func(http.ResponseWriter, *http.Request, *redis_rate.Result)

	// FailOpen keeps serving from in-process buckets while Redis errors.
	// Without it a Redis failure is a 503.
	FailOpen bool
}

// RateLimiter counts requests per key in Redis when a client is given and
// in process-local token buckets otherwise.
type RateLimiter struct {
	remote *redis_rate.Limiter
	local  *bucketSet
	cfg    RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}
	if cfg.OnLimited == nil {
		cfg.OnLimited = writeLimited
	}

	rl := &RateLimiter{
		local: newBucketSet(cfg.Limit),
		cfg:   cfg,
	}
	if rdb != nil {
		rl.remote = redis_rate.NewLimiter(rdb)
	}
	return rl
}

// LimitFromConfig converts the rate_limit section. Burst defaults to the
// whole window's allowance.
func LimitFromConfig(cfg config.RateLimitConfig) redis_rate.Limit {
	limit := redis_rate.Limit{
		Rate:   cfg.Requests,
		Burst:  cfg.Burst,
		Period: cfg.Window,
	}
	if limit.Burst <= 0 {
		limit.Burst = limit.Rate
	}
	return limit
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return redis_rate.Limit{Rate: rate, Burst: burst, Period: time.Minute}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.cfg.BypassFunc != nil && rl.cfg.BypassFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		res, err := rl.allow(r.Context(), rl.cfg.KeyFunc(r))
		if err != nil {
			core.JSONError(w, core.NewAppError(
				http.StatusServiceUnavailable,
				"RATE_LIMIT_UNAVAILABLE",
				"rate limiter unavailable",
				err,
			))
			return
		}

		writeLimitHeaders(w.Header(), rl.cfg.Limit, res)
		if res.Allowed == 0 {
			rl.cfg.OnLimited(w, r, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (*redis_rate.Result, error) {
	if rl.remote == nil {
		return rl.local.take(key), nil
	}

	res, err := rl.remote.Allow(ctx, key, rl.cfg.Limit)
	if err == nil {
		return res, nil
	}
	if !rl.cfg.FailOpen {
		return nil, fmt.Errorf("redis rate limit: %w", err)
	}

	slog.WarnContext(ctx, "redis rate limiter unavailable, using local buckets",
		"error", err,
		"key", key,
	)
	return rl.local.take(key), nil
}

func writeLimitHeaders(h http.Header, limit redis_rate.Limit, res *redis_rate.Result) {
	reset := int(res.ResetAfter.Round(time.Second).Seconds())

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
	h.Set("RateLimit", fmt.Sprintf("%d;t=%d", res.Remaining, reset))
}

func writeLimited(w http.ResponseWriter, _ *http.Request, res *redis_rate.Result) {
	retry := max(int(res.RetryAfter.Round(time.Second).Seconds()), 1)
	w.Header().Set("Retry-After", strconv.Itoa(retry))

	core.JSON(w, http.StatusTooManyRequests, core.ErrorResponse{
		Error: core.ErrorBody{
			Code:    "RATE_LIMITED",
			Message: fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retry),
		},
	})
}

// KeyByIP buckets by client address, trusting the last X-Forwarded-For hop.
func KeyByIP(r *http.Request) string {
	return "ratelimit:ip:" + clientIP(r)
}

// KeyByIPAndEndpoint buckets per client and route shape, with numeric
// path segments collapsed.
func KeyByIPAndEndpoint(r *http.Request) string {
	return KeyByIP(r) + ":endpoint:" + r.Method + " " + routeShape(r.URL.Path)
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return strings.TrimSpace(hops[len(hops)-1])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func routeShape(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if _, err := strconv.ParseUint(seg, 10, 64); err == nil {
			segments[i] = "{id}"
		}
	}
	return "/" + strings.Join(segments, "/")
}
