package anonquota

import (
	"context"
	"errors"
	"time"
)

const (
	// free message allotment for a fresh anonymous session
	DefaultAllotment = 10

	// how long an anonymous session's quota record lives
	DefaultTTL = 24 * time.Hour
)

var ErrStoreUnavailable = errors.New("anonymous quota store unavailable")

// outcome of a quota check
type Result struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
}

// atomic persistence primitives for anonymous session quotas. Anonymous
// traffic uses direct decrement/increment rather than two-phase reservation:
// quota loss on a crash is an accepted trade-off for the lower-trust tier.
type Store interface {
	// creates the record at the allotment on first sight, then decrements
	// while remaining > 0; returns the post-decrement remaining count
	Consume(ctx context.Context, sessionKey string, allotment int, ttl time.Duration) (allowed bool, remaining int, err error)

	// returns quota as compensation for a failed provider call
	Refund(ctx context.Context, sessionKey string, amount int) error

	// reads the remaining quota without consuming
	Remaining(ctx context.Context, sessionKey string) (int, error)
}
