// Package ratelimit limits API request rates per client and endpoint.
//
// The default limiter keeps token buckets in process. When a Counter is
// attached, limits are enforced with a fixed window shared by every
// instance that uses the same counter.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket represents a token bucket rate limiter.
// It allows a certain number of requests (tokens) per time window,
// with tokens refilling at a steady rate.
type TokenBucket struct {
	capacity   int
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

// newTokenBucket creates a full bucket.
func newTokenBucket(capacity int, refillRate float64, now time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: now,
	}
}

func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill)
	if elapsed <= 0 {
		return
	}
	tb.tokens = min(float64(tb.capacity), tb.tokens+elapsed.Seconds()*tb.refillRate)
	tb.lastRefill = now
}

// take consumes a token if one is available and reports the state afterwards.
func (tb *TokenBucket) take(now time.Time) (allowed bool, remaining int, resetTime time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(now)
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		allowed = true
	}

	remaining = int(tb.tokens)
	resetTime = now
	if missing := float64(tb.capacity) - tb.tokens; missing > 0 && tb.refillRate > 0 {
		resetTime = now.Add(time.Duration(missing / tb.refillRate * float64(time.Second)))
	}
	return allowed, remaining, resetTime
}

// nextToken is how long until one token is available.
func (tb *TokenBucket) nextToken() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if tb.tokens >= 1.0 || tb.refillRate <= 0 {
		return 0
	}
	return time.Duration((1.0 - tb.tokens) / tb.refillRate * float64(time.Second))
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Counter is a fixed-window counter shared between processes.
type Counter interface {
	// Hit increments key and returns the count in the current window and the
	// time left in it.
	Hit(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// sharedTimeout bounds a single Counter call.
const sharedTimeout = 250 * time.Millisecond

// Limiter manages rate limiting for multiple clients.
type Limiter struct {
	buckets    map[string]*TokenBucket // bucket key -> bucket
	lastAccess map[string]time.Time
	mu         sync.Mutex

	config  *Config
	shared  Counter
	onError func(error)
	now     func() time.Time

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithCounter enforces limits through a shared counter instead of local buckets.
// Requests are allowed when the counter fails; onError observes those failures.
func WithCounter(c Counter, onError func(error)) Option {
	return func(l *Limiter) {
		l.shared = c
		l.onError = onError
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config, opts ...Option) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    600,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}

	l := &Limiter{
		buckets:    make(map[string]*TokenBucket),
		lastAccess: make(map[string]time.Time),
		config:     config,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	if config.Enabled && config.CleanupInterval > 0 && l.shared == nil {
		l.cleanupTicker = time.NewTicker(config.CleanupInterval)
		l.cleanupStop = make(chan struct{})
		go l.cleanup()
	}
	return l
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
// Requests matching the same endpoint pattern share a budget, so
// /api/companies/a and /api/companies/b count together.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	route := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if route == nil {
		route = &EndpointConfig{
			Path:   "*",
			Method: method,
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
		}
	}
	if route.Limit <= 0 || route.Window <= 0 {
		return true, Info{Allowed: true}
	}

	key := clientID + ":" + route.Method + ":" + route.Path
	if l.shared != nil {
		return l.allowShared(key, route)
	}
	return l.allowLocal(key, route)
}

func (l *Limiter) allowLocal(key string, route *EndpointConfig) (bool, Info) {
	now := l.now()
	bucket := l.bucket(key, route, now)

	allowed, remaining, resetTime := bucket.take(now)
	info := Info{
		Allowed:   allowed,
		Limit:     route.Limit,
		Remaining: remaining,
		ResetTime: resetTime,
	}
	if !allowed {
		info.RetryAfter = bucket.nextToken()
	}
	return allowed, info
}

func (l *Limiter) allowShared(key string, route *EndpointConfig) (bool, Info) {
	ctx, cancel := context.WithTimeout(context.Background(), sharedTimeout)
	defer cancel()

	now := l.now()
	count, ttl, err := l.shared.Hit(ctx, "ratelimit:"+key, route.Window)
	if err != nil {
		if l.onError != nil {
			l.onError(err)
		}
		return true, Info{Allowed: true}
	}
	if ttl <= 0 {
		ttl = route.Window
	}

	allowed := count <= int64(route.Limit)
	info := Info{
		Allowed:   allowed,
		Limit:     route.Limit,
		Remaining: max(route.Limit-int(count), 0),
		ResetTime: now.Add(ttl),
	}
	if !allowed {
		info.RetryAfter = ttl
	}
	return allowed, info
}

// bucket gets or creates the token bucket for key.
func (l *Limiter) bucket(key string, route *EndpointConfig, now time.Time) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastAccess[key] = now
	if b, ok := l.buckets[key]; ok {
		return b
	}
	capacity := route.Burst
	if capacity <= 0 {
		capacity = route.Limit
	}
	b := newTokenBucket(capacity, float64(route.Limit)/route.Window.Seconds(), now)
	l.buckets[key] = b
	return b
}

// cleanup removes old unused buckets to prevent memory leaks.
func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupBuckets(l.now().Add(-time.Hour))
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupBuckets removes buckets not used since cutoff.
func (l *Limiter) cleanupBuckets(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, last := range l.lastAccess {
		if last.Before(cutoff) {
			delete(l.buckets, key)
			delete(l.lastAccess, key)
		}
	}
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
		}
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}
