package credits

import "context"

// atomic persistence primitives for credit accounts. The ledger builds the
// reservation lifecycle on top of these; each call is a single atomic update
// so concurrent requests for the same user cannot overspend.
type Store interface {
	// increments the user's reserved credits by amount if the available
	// balance covers it. Returns false when the balance is insufficient and
	// ErrAccountNotFound when no account exists.
	Reserve(ctx context.Context, userID string, amount int) (bool, error)

	// releases a hold of held credits and permanently debits the actual
	// cost. The debit is capped so the remaining balance never drops below
	// what other in-flight reservations still hold; returns true when the
	// cap was applied.
	Finalize(ctx context.Context, userID string, held, debit int) (bool, error)

	// releases a hold of held credits without any permanent debit
	Release(ctx context.Context, userID string, held int) error

	// reads the current account state
	Account(ctx context.Context, userID string) (*Account, error)

	// sets the user's granted credit total, creating the account if needed
	Grant(ctx context.Context, userID string, total int) error
}
