// Package ratelimit budgets write requests per route and client.
package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per (route, client) pair, so a board
// hammering the kanban endpoint still has budget left to score or apply.
// Buckets idle for longer than idleTTL are swept.
type Limiter struct {
	rps     rate.Limit
	burst   int
	idleTTL time.Duration

	mu        sync.Mutex
	buckets   map[bucketKey]*bucket
	lastSweep time.Time
}

type bucketKey struct {
	route  string
	client string
}

type bucket struct {
	tokens *rate.Limiter
	seen   time.Time
}

// New returns nil when rps or burst is not positive; a nil Limiter allows all.
func New(rps float64, burst int, idleTTL time.Duration) *Limiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &Limiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		buckets: make(map[bucketKey]*bucket),
	}
}

// Take spends one token of client on route at now. When the bucket is empty
// it returns false and the wait until the next token.
func (l *Limiter) Take(route, client string, now time.Time) (bool, time.Duration) {
	if l == nil || client == "" {
		return true, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lastSweep.IsZero() {
		l.lastSweep = now
	}
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweepLocked(now)
	}

	k := bucketKey{route: route, client: client}
	b, ok := l.buckets[k]
	if !ok {
		b = &bucket{tokens: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[k] = b
	}
	b.seen = now

	r := b.tokens.ReserveN(now, 1)
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return false, wait
	}
	return true, 0
}

func (l *Limiter) sweepLocked(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.seen) > l.idleTTL {
			delete(l.buckets, k)
		}
	}
	l.lastSweep = now
}

// Middleware answers 429 with Retry-After once the client has spent its
// budget on the matched route. onLimited gets the route and may be nil.
func Middleware(l *Limiter, onLimited func(route string)) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		ok, wait := l.Take(route, c.ClientIP(), time.Now())
		if ok {
			c.Next()
			return
		}
		if onLimited != nil {
			onLimited(route)
		}
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, slow down"})
	}
}
