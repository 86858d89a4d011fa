package main

import (
	"net"
	"net/http"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const maxTrackedClients = 4096

// RateLimiter keeps a token bucket per client IP. The least recently seen
// clients are forgotten once maxTrackedClients is reached.
type RateLimiter struct {
	mu      sync.Mutex
	clients *lru.Cache[string, *rate.Limiter]
	limit   rate.Limit
	burst   int
}

// NewRateLimiter allows requests per window for each client, with bursts up
// to requests.
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	clients, err := lru.New[string, *rate.Limiter](maxTrackedClients)
	if err != nil {
		panic(err)
	}
	return &RateLimiter{
		clients: clients,
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
	}
}

func (rl *RateLimiter) allow(clientID string) bool {
	rl.mu.Lock()
	limiter, ok := rl.clients.Get(clientID)
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.clients.Add(clientID, limiter)
	}
	rl.mu.Unlock()
	return limiter.Allow()
}

// Limit rejects requests over the limit with 429.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP relies on middleware.RealIP having rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
