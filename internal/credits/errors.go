package credits

import "errors"

var (
	// normal, expected outcome when a user's available balance cannot cover
	// a reservation - the HTTP layer maps it to 402, not 500
	ErrInsufficientCredits = errors.New("insufficient credits")

	ErrAccountNotFound = errors.New("credit account not found")

	ErrInvalidAmount = errors.New("reservation amount must be positive")
)
