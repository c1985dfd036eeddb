package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Cap on tracked client buckets so a scan cannot grow the map without bound.
const maxTrackedClients = 100000

// RateLimiter applies a token bucket per client IP.
type RateLimiter struct {
	perSecond float64
	burst     float64

	mu      sync.Mutex
	clients map[string]*tokenBucket
}

type tokenBucket struct {
	tokens   float64
	refilled time.Time // last refill instant
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing the given sustained requests per
// second with the given burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		perSecond: perSecond,
		burst:     float64(burst),
		clients:   make(map[string]*tokenBucket),
	}
}

// Handler enforces the limit, answering 429 with Retry-After once a client's
// bucket is empty. Only RemoteAddr identifies the client; forwarding headers
// are spoofable and therefore ignored.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remaining, wait, ok := rl.take(clientIP(r))

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Second).Unix(), 10))

		if !ok {
			w.Header().Set("Retry-After", strconv.FormatFloat(math.Ceil(wait), 'f', 0, 64))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// take consumes one token for ip. When the bucket is empty it returns the
// seconds until the next token instead.
func (rl *RateLimiter) take(ip string) (remaining int, wait float64, ok bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b := rl.clients[ip]
	if b == nil {
		if len(rl.clients) >= maxTrackedClients {
			return 0, 1 / rl.perSecond, false
		}
		b = &tokenBucket{tokens: rl.burst, refilled: now}
		rl.clients[ip] = b
	} else {
		b.tokens = math.Min(rl.burst, b.tokens+now.Sub(b.refilled).Seconds()*rl.perSecond)
		b.refilled = now
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return 0, (1 - b.tokens) / rl.perSecond, false
	}
	b.tokens--
	return int(b.tokens), 0, true
}

// StartCleanup periodically drops buckets idle longer than maxIdle. The
// returned function stops the cleanup goroutine.
func (rl *RateLimiter) StartCleanup(interval, maxIdle time.Duration) func() {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.evictIdle(maxIdle)
			}
		}
	}()
	return cancel
}

func (rl *RateLimiter) evictIdle(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := time.Now().Add(-maxIdle)
	for ip, b := range rl.clients {
		if b.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// Len reports how many client buckets are currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
