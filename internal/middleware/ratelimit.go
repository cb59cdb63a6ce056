package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"showdown-vote/internal/constants"
	"showdown-vote/internal/service"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per client IP. Idle buckets expire
// from the cache.
type RateLimiter struct {
	limit    int
	window   time.Duration
	limiters *cache.Cache
	mu       sync.Mutex
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		window:   window,
		limiters: cache.New(constants.RateLimiterTTL, constants.RateLimiterSweepTime),
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.limiters.Get(key); ok {
		lim := v.(*rate.Limiter)
		l.limiters.SetDefault(key, lim)
		return lim
	}

	lim := rate.NewLimiter(rate.Every(l.window/time.Duration(l.limit)), l.limit)
	l.limiters.SetDefault(key, lim)
	return lim
}

// Allow consumes a token for the key.
func (l *RateLimiter) Allow(key string) bool {
	return l.limiter(key).Allow()
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.Allow(ip) {
			zerolog.Ctx(r.Context()).Debug().Str("client_ip", ip).Msg("rate limited")
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window/time.Duration(l.limit)/time.Second)+1))
			WriteError(w, service.RateLimited())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
