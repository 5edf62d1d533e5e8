package provider

import "errors"

var (
	ErrModelNotFound = errors.New("model not found")

	// the provider throttled us; distinct from our own anonymous quota
	ErrRateLimited = errors.New("provider rate limited")

	ErrProviderUnavailable = errors.New("provider unavailable")
)
