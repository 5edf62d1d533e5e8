package orchestrator

import "errors"

var (
	// malformed payload, nothing reserved or consumed
	ErrValidation = errors.New("invalid turn request")

	// the chat exists but belongs to a different caller
	ErrUnauthorized = errors.New("chat does not belong to caller")

	// the requested model exists but is not available to this tier
	ErrModelNotAllowed = errors.New("model not available for this tier")

	// inbound message exceeds the token ceiling, nothing charged
	ErrInputTooLarge = errors.New("input exceeds the token ceiling")

	// anonymous quota exhausted or quota store unreachable (fail closed)
	ErrRateLimited = errors.New("anonymous message quota exhausted")
)
