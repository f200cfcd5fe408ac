// Package ratelimit limits requests per client with ulule/limiter.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"costmanager/internal/log"
)

// Limiter counts requests per client key in a fixed window.
type Limiter struct {
	limiter *limiter.Limiter
	logger  *log.Logger
	hits    int64
}

// Config holds rate limiter configuration.
type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
	}
}

func NewLimiter(cfg Config, logger *log.Logger) *Limiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = DefaultConfig().RequestsPerMinute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultConfig().CleanupInterval
	}
	if logger == nil {
		logger = log.Discard()
	}
	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "costmanager",
		CleanUpInterval: cfg.CleanupInterval,
	})
	rate := limiter.Rate{Period: time.Minute, Limit: int64(cfg.RequestsPerMinute)}
	return &Limiter{
		limiter: limiter.New(store, rate),
		logger:  logger.WithComponent(log.ComponentRateLimit),
	}
}

// Allow counts one request for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, limiter.Context, error) {
	lc, err := l.limiter.Get(ctx, key)
	if err != nil {
		return false, lc, err
	}
	if lc.Reached {
		atomic.AddInt64(&l.hits, 1)
	}
	return !lc.Reached, lc, nil
}

// Hits returns how many requests were rejected so far.
func (l *Limiter) Hits() int64 {
	return atomic.LoadInt64(&l.hits)
}

// Middleware limits the wrapped handler. Only methods for which limited
// returns true are counted; a nil limited counts every request.
func (l *Limiter) Middleware(extractIP func(*http.Request) string, limited func(*http.Request) bool, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limited != nil && !limited(r) {
				next.ServeHTTP(w, r)
				return
			}

			ip := extractIP(r)
			ok, lc, err := l.Allow(r.Context(), ip)
			if err != nil {
				// The limiter store is in-process; fail open.
				l.logger.ErrorContext(r.Context(), "Failed to get rate limit context", log.FieldClientIP, ip, log.FieldError, err.Error())
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lc.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lc.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(lc.Reset, 10))

			if !ok {
				l.logger.WarnContext(r.Context(), "Rate limit exceeded", log.FieldClientIP, ip, "limit", lc.Limit)
				retry := time.Until(time.Unix(lc.Reset, 0))
				if retry < time.Second {
					retry = time.Second
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())))
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WriteMethods limits only requests that change state.
func WriteMethods(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
