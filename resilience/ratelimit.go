package resilience

import (
	"fmt"
	"sync"
	"time"
)

// RateLimitConfig configures a KeyedLimiter. Each key gets its own token
// bucket holding Burst tokens and refilling at PerMinute tokens a minute.
type RateLimitConfig struct {
	Enabled   bool    `yaml:"enabled" mapstructure:"enabled"`
	PerMinute float64 `yaml:"per_minute" mapstructure:"per_minute"`
	Burst     int     `yaml:"burst" mapstructure:"burst"`
	// MaxKeys bounds memory. When full, idle buckets are swept first and new
	// keys share one overflow bucket if that is not enough.
	MaxKeys int `yaml:"max_keys" mapstructure:"max_keys"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *RateLimitConfig) ApplyDefaults() {
	if c.PerMinute <= 0 {
		c.PerMinute = 10
	}
	if c.Burst <= 0 {
		c.Burst = 5
	}
	if c.MaxKeys <= 0 {
		c.MaxKeys = 10000
	}
}

// Validate checks the bucket parameters.
func (c *RateLimitConfig) Validate() error {
	if c.PerMinute < 0 {
		return fmt.Errorf("per_minute must be non-negative (got: %v)", c.PerMinute)
	}
	if c.Burst < 0 {
		return fmt.Errorf("burst must be non-negative (got: %d)", c.Burst)
	}
	return nil
}

type bucket struct {
	tokens float64
	last   time.Time
}

// KeyedLimiter is a set of token buckets, one per key. Safe for concurrent use.
type KeyedLimiter struct {
	rate  float64 // tokens per second
	burst float64
	max   int
	now   func() time.Time

	mu       sync.Mutex
	buckets  map[string]*bucket
	overflow bucket
}

// NewKeyedLimiter builds a limiter from cfg, after applying defaults.
func NewKeyedLimiter(cfg RateLimitConfig) *KeyedLimiter {
	cfg.ApplyDefaults()
	return &KeyedLimiter{
		rate:    cfg.PerMinute / 60,
		burst:   float64(cfg.Burst),
		max:     cfg.MaxKeys,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow takes one token from key's bucket. When the bucket is empty it
// returns false and how long until the next token.
func (l *KeyedLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b := l.bucketFor(key, now)
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens += elapsed * l.rate
		if b.tokens > l.burst {
			b.tokens = l.burst
		}
	}
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	wait := time.Duration((1 - b.tokens) / l.rate * float64(time.Second))
	return false, wait
}

// Len returns the number of tracked keys.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *KeyedLimiter) bucketFor(key string, now time.Time) *bucket {
	if b, ok := l.buckets[key]; ok {
		return b
	}
	if len(l.buckets) >= l.max {
		l.sweep(now)
	}
	if len(l.buckets) >= l.max {
		if l.overflow.last.IsZero() {
			l.overflow = bucket{tokens: l.burst, last: now}
		}
		return &l.overflow
	}
	b := &bucket{tokens: l.burst, last: now}
	l.buckets[key] = b
	return b
}

// sweep drops buckets that have refilled completely; they are
// indistinguishable from a fresh bucket.
func (l *KeyedLimiter) sweep(now time.Time) {
	full := time.Duration(l.burst / l.rate * float64(time.Second))
	for k, b := range l.buckets {
		if now.Sub(b.last) >= full {
			delete(l.buckets, k)
		}
	}
}
