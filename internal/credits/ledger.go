package credits

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"codeberg.org/parley/server/internal/logger"
)

// tracks provisional holds on user credit balances. Reserve is the only
// per-user serialization point in the system: the underlying store performs
// the balance check and the increment as one atomic update, so the sum of
// outstanding holds can never exceed the granted total no matter how many
// requests race.
type Ledger struct {
	store Store
}

// creates a new credit ledger on top of a store
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// places a hold of amount credits on the user's balance and returns the
// reservation handle. The budget carried by the handle is the portion left
// for optional tool invocations after the base model cost. Returns
// ErrInsufficientCredits when the available balance cannot cover the amount.
func (l *Ledger) Reserve(ctx context.Context, userID string, amount, baseCost int) (*Reservation, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	ok, err := l.store.Reserve(ctx, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("credit reservation failed: %w", err)
	}

	if !ok {
		return nil, ErrInsufficientCredits
	}

	budget := amount - baseCost
	if budget < 0 {
		budget = 0
	}

	return &Reservation{
		ID:     uuid.New().String(),
		UserID: userID,
		Amount: amount,
		Budget: budget,
	}, nil
}

// releases the hold and permanently debits the actual cost, which may differ
// from the original estimate (e.g. tool surcharge). The debit is capped so
// the balance never goes negative; a capped debit means an upstream cost
// estimate was wrong and is logged as a bug signal. Safe to race Release -
// whichever terminal transition lands first wins and the other is a no-op.
func (l *Ledger) Finalize(ctx context.Context, res *Reservation, actualCost int) error {
	if res == nil {
		return nil
	}

	if !res.state.CompareAndSwap(stateActive, stateFinalized) {
		// already released by a racing cleanup path, or finalized twice
		logger.Warn("finalize on terminated reservation ignored",
			"reservation_id", res.ID,
			"user_id", res.UserID,
		)

		return nil
	}

	if actualCost < 0 {
		actualCost = 0
	}

	capped, err := l.store.Finalize(ctx, res.UserID, res.Amount, actualCost)
	if err != nil {
		return fmt.Errorf("failed to finalize reservation %s: %w", res.ID, err)
	}

	if capped {
		logger.Warn("finalize debit capped at available balance",
			"reservation_id", res.ID,
			"user_id", res.UserID,
			"reserved", res.Amount,
			"actual_cost", actualCost,
		)
	}

	return nil
}

// returns the full held amount to the user's available balance with no
// permanent debit. Idempotent: releasing an already-terminated reservation
// is a no-op, which lets a timeout watchdog and the normal completion path
// share the same cleanup without mutual exclusion.
func (l *Ledger) Release(ctx context.Context, res *Reservation) error {
	if res == nil {
		return nil
	}

	if !res.state.CompareAndSwap(stateActive, stateReleased) {
		return nil
	}

	if err := l.store.Release(ctx, res.UserID, res.Amount); err != nil {
		// the hold is marked released in-process; a failed store update is
		// logged rather than retried so duplicate cleanup triggers stay safe
		logger.ErrorErr(err, "failed to release reservation",
			"reservation_id", res.ID,
			"user_id", res.UserID,
		)

		return fmt.Errorf("failed to release reservation %s: %w", res.ID, err)
	}

	return nil
}

// reads the user's current account state
func (l *Ledger) Account(ctx context.Context, userID string) (*Account, error) {
	return l.store.Account(ctx, userID)
}

// sets the user's granted credit total
func (l *Ledger) Grant(ctx context.Context, userID string, total int) error {
	return l.store.Grant(ctx, userID, total)
}
