// Package resilience holds the two fault-handling primitives forohub uses:
// Retry with exponential backoff, used to connect to the database at
// startup, and KeyedLimiter, a per-key token bucket that throttles login
// attempts per client address.
//
//	err := resilience.Retry(ctx, resilience.RetryConfig{MaxAttempts: 5}, func(ctx context.Context) error {
//	    return db.PingContext(ctx)
//	})
//
//	limiter := resilience.NewKeyedLimiter(resilience.RateLimitConfig{PerMinute: 10, Burst: 5})
//	if ok, wait := limiter.Allow(clientIP); !ok {
//	    // reject, retry after wait
//	}
package resilience
