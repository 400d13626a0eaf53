package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"finanzas-be/internal/logging"
)

const (
	sweepEvery = 5 * time.Minute
	clientTTL  = 10 * time.Minute
)

// RateLimiter keeps one token bucket per client IP. Buckets idle for
// clientTTL are swept in the background until Stop is called.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int

	now    func() time.Time
	done   chan struct{}
	once   sync.Once
	logger *logging.Logger
}

type client struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows rps requests per second per client with bursts of
// up to burst requests.
func NewRateLimiter(rps rate.Limit, burst int, logger *logging.Logger) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		limit:   rps,
		burst:   burst,
		now:     time.Now,
		done:    make(chan struct{}),
		logger:  logger.WithComponent(logging.ComponentRateLimit),
	}
	go rl.sweepLoop()
	return rl
}

func (rl *RateLimiter) bucketFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	if !ok {
		c = &client{bucket: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = rl.now()
	return c.bucket
}

// reserve takes a token for ip. A positive wait means the request must be
// rejected; the reservation has already been returned in that case.
func (rl *RateLimiter) reserve(ip string) (wait time.Duration, ok bool) {
	bucket := rl.bucketFor(ip)
	now := rl.now()

	r := bucket.ReserveN(now, 1)
	if !r.OK() {
		return 0, false
	}
	if wait = r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return wait, false
	}
	return 0, true
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-clientTTL)
	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// Clients reports how many IPs currently hold a bucket.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Stop ends the sweeper. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.done) })
}

// LimitMiddleware rejects requests over the client's budget with 429 and a
// Retry-After hint in whole seconds.
func (rl *RateLimiter) LimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		wait, ok := rl.reserve(ip)
		if !ok {
			rl.logger.WarnContext(c.Request.Context(), "rate limit exceeded",
				logging.FieldClientIP, ip,
				logging.FieldPath, c.FullPath())
			if wait > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
