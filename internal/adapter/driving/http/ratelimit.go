package httphandler

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ericfisherdev/fundintake/internal/application"
)

// RateLimiter decides whether a request for key may proceed.
type RateLimiter interface {
	Allow(key string) bool
}

// minIdleTTL is the shortest time a bucket is kept after its last use.
const minIdleTTL = time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenBucketLimiter keeps one token bucket per key. Buckets idle long enough
// to have refilled completely are dropped, since a fresh bucket behaves the
// same.
type TokenBucketLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewPerMinuteLimiter allows perMinute requests per key on average with the
// given burst.
func NewPerMinuteLimiter(perMinute, burst int) *TokenBucketLimiter {
	r := rate.Limit(float64(perMinute) / 60)

	idle := minIdleTTL
	if r > 0 {
		if refill := time.Duration(float64(burst) / float64(r) * float64(time.Second)); refill > idle {
			idle = refill
		}
	}

	return &TokenBucketLimiter{
		buckets: make(map[string]*bucket),
		rate:    r,
		burst:   burst,
		idleTTL: idle,
		now:     time.Now,
	}
}

// Allow consumes one token for key.
func (l *TokenBucketLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	return b.limiter.AllowN(now, 1)
}

// sweep drops buckets unused for at least idleTTL. Callers hold l.mu.
func (l *TokenBucketLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.idleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// RateLimit rejects requests over the caller's budget with 429 and a
// form-shaped JSON error. Admin callers are not limited. The key is the
// resolved client address, which only honours forwarding headers sent by a
// trusted proxy.
func RateLimit(limiter RateLimiter, retryAfterSeconds int, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := application.CallerFrom(r.Context())
		if !caller.Admin && !limiter.Allow(caller.IP) {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
			writeJSON(w, http.StatusTooManyRequests, application.FormResult{
				Errors: []string{"Too many submissions. Please wait a moment and try again."},
			})
			return
		}
		next(w, r)
	}
}
