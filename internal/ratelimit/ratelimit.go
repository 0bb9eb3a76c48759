// Package ratelimit throttles capture submissions per client using token
// buckets with idle eviction.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Store holds one token bucket per client key. Idle buckets are evicted by
// the janitor so the map does not grow without bound.
type Store struct {
	mu           sync.Mutex
	entries      map[string]*storeEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type storeEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// StoreOption adjusts a Store beyond the rate and burst.
type StoreOption func(*Store)

// WithIdleTTL sets how long an unused bucket survives before eviction.
func WithIdleTTL(d time.Duration) StoreOption {
	return func(s *Store) { s.idleTTL = d }
}

// WithCleanupEvery sets the janitor sweep interval.
func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.cleanupEvery = d }
}

// NewStore creates a bucket store allowing rps requests per second with the
// given burst per client key.
func NewStore(rps float64, burst int, opts ...StoreOption) *Store {
	s := &Store{
		entries:      make(map[string]*storeEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RPS returns the configured sustained rate.
func (s *Store) RPS() float64 { return float64(s.rps) }

// Burst returns the configured burst size.
func (s *Store) Burst() int { return s.burst }

// Allow reports whether the client identified by key may proceed now.
func (s *Store) Allow(key string) bool {
	return s.limiter(key).Allow()
}

func (s *Store) limiter(key string) *rate.Limiter {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(s.rps, s.burst)
	s.entries[key] = &storeEntry{lim: lim, lastSeen: now}
	return lim
}

// Cleanup removes buckets not seen within the idle TTL.
func (s *Store) Cleanup() {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor starts a goroutine that evicts idle buckets periodically.
// Stop it by cancelling the context.
func (s *Store) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// KeyFunc derives the throttle key for a request.
type KeyFunc func(r *http.Request) string

// ClientKey returns a KeyFunc that identifies the client by IP. When
// trustForwardedFor is set, the first X-Forwarded-For entry wins; otherwise
// the RemoteAddr host is used.
func ClientKey(trustForwardedFor bool) KeyFunc {
	return func(r *http.Request) string {
		if trustForwardedFor {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

// Options configures the middleware.
type Options struct {
	Store             *Store
	Stats             StatsRecorder
	KeyFn             KeyFunc
	TrustForwardedFor bool
	RetryAfter        time.Duration
}

// Middleware wraps a handler with per-client throttling. Rejected requests
// receive 429 with a Retry-After header. Stats recording is best-effort.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RetryAfter == 0 {
		opts.RetryAfter = 1 * time.Second
	}
	if opts.KeyFn == nil {
		opts.KeyFn = ClientKey(opts.TrustForwardedFor)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)
			allowed := opts.Store.Allow(key)

			if opts.Stats != nil {
				_ = opts.Stats.Record(r.Context(), Event{
					Key:     key,
					Allowed: allowed,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      time.Now(),
				})
			}

			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(opts.RetryAfter.Seconds())))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
