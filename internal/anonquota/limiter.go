package anonquota

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/parley/server/internal/logger"
)

// meters unauthenticated traffic against a per-session credit allotment,
// the anonymous counterpart of the credit ledger. Shared-store failures
// deny the request (fail closed): anonymous traffic is the lower-trust tier
// and must not be able to ride out a store outage for free.
type Limiter struct {
	store     Store
	allotment int
	ttl       time.Duration
}

// creates a limiter with the default allotment and TTL
func NewLimiter(store Store) *Limiter {
	return &Limiter{
		store:     store,
		allotment: DefaultAllotment,
		ttl:       DefaultTTL,
	}
}

// creates a limiter with an explicit allotment and TTL
func NewLimiterWithConfig(store Store, allotment int, ttl time.Duration) *Limiter {
	return &Limiter{
		store:     store,
		allotment: allotment,
		ttl:       ttl,
	}
}

// consumes one credit from the session's quota, creating the record at the
// full allotment on first sight. Denies once the quota is exhausted or when
// the store cannot be reached.
func (l *Limiter) CheckAndConsume(ctx context.Context, sessionKey string) (*Result, error) {
	allowed, remaining, err := l.store.Consume(ctx, sessionKey, l.allotment, l.ttl)
	if err != nil {
		logger.ErrorErr(err, "anonymous quota store failure, denying request",
			"session_key", sessionKey,
		)

		return &Result{Allowed: false}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return &Result{Allowed: allowed, Remaining: remaining}, nil
}

// returns quota to a session as compensation when a provider call fails
// after the credit was already consumed
func (l *Limiter) Refund(ctx context.Context, sessionKey string, amount int) error {
	if amount <= 0 {
		return nil
	}

	if err := l.store.Refund(ctx, sessionKey, amount); err != nil {
		return fmt.Errorf("failed to refund anonymous quota: %w", err)
	}

	return nil
}

// reads the remaining quota for a session without consuming
func (l *Limiter) Remaining(ctx context.Context, sessionKey string) (int, error) {
	return l.store.Remaining(ctx, sessionKey)
}
