package credits

import (
	"sync/atomic"
	"time"
)

// reservation lifecycle states
const (
	stateActive int32 = iota
	stateFinalized
	stateReleased
)

// a user's credit account. Available credits are the portion not currently
// held by in-flight reservations.
type Account struct {
	UserID          string    `json:"user_id"`
	Credits         int       `json:"credits"`
	ReservedCredits int       `json:"reserved_credits"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// credits not currently held by reservations
func (a *Account) Available() int {
	return a.Credits - a.ReservedCredits
}

// a provisional hold on a user's balance for the duration of one request.
// Owned exclusively by the request that created it. Terminates exactly once,
// through Finalize or Release; Release is idempotent so a timeout-driven
// cleanup can safely race normal completion.
type Reservation struct {
	ID     string
	UserID string

	// credits held for the duration of the request
	Amount int

	// portion of the hold left for optional tool invocations
	// after the base model cost
	Budget int

	state atomic.Int32
}

// reports whether the reservation has not yet been finalized or released
func (r *Reservation) Active() bool {
	return r.state.Load() == stateActive
}
