// AngelaMos | 2026
// buckets.go

package middleware

import (
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"golang.org/x/time/rate"
)

const (
	bucketIdleTTL = 10 * time.Minute
	sweepEvery    = 5 * time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// bucketSet is the in-process stand-in for redis_rate. Idle buckets are
// swept inline on access, at most once per sweepEvery.
type bucketSet struct {
	mu        sync.Mutex
	limit     redis_rate.Limit
	every     rate.Limit
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

func newBucketSet(limit redis_rate.Limit) *bucketSet {
	every := rate.Inf
	if limit.Period > 0 && limit.Rate > 0 {
		every = rate.Limit(float64(limit.Rate) / limit.Period.Seconds())
	}

	return &bucketSet{
		limit:     limit,
		every:     every,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (s *bucketSet) take(key string) *redis_rate.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= sweepEvery {
		s.sweep(now)
	}

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(s.every, s.limit.Burst)}
		s.buckets[key] = b
	}
	b.lastSeen = now

	res := &redis_rate.Result{
		Limit:      s.limit,
		RetryAfter: -1,
		ResetAfter: s.refill(),
	}
	if b.limiter.AllowN(now, 1) {
		res.Allowed = 1
	} else {
		res.RetryAfter = s.refill()
	}
	res.Remaining = max(int(b.limiter.TokensAt(now)), 0)

	return res
}

func (s *bucketSet) refill() time.Duration {
	if s.every == rate.Inf || s.every == 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(s.every))
}

func (s *bucketSet) sweep(now time.Time) {
	for key, b := range s.buckets {
		if now.Sub(b.lastSeen) > bucketIdleTTL {
			delete(s.buckets, key)
		}
	}
	s.lastSweep = now
}

func (s *bucketSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}
