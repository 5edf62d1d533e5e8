package conversations

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")

	// the persisted version moved between load and write; the caller may
	// reload and retry
	ErrVersionConflict = errors.New("conversation state version conflict")

	ErrConversationExists = errors.New("conversation already exists")

	ErrOptimizerNotConfigured = errors.New("context optimizer not configured")
)
