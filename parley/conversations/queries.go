package conversations

const (
	queryCreate = `
		INSERT INTO conversation_state
			(conversation_id, user_id, previous_response_id, turn_count, total_tokens, last_activity, version)
		VALUES ($1, $2, NULL, 0, 0, NOW(), 0)
		ON CONFLICT (conversation_id) DO NOTHING
	`

	queryGet = `
		SELECT conversation_id, user_id, previous_response_id, turn_count,
		       total_tokens, last_activity, relevance_score, version, created_at, updated_at
		FROM conversation_state
		WHERE conversation_id = $1
	`

	// version-guarded write - zero rows affected means a concurrent update
	// won the race and this one must not be applied
	queryUpdateIfVersion = `
		UPDATE conversation_state
		SET previous_response_id = $2,
		    turn_count = $3,
		    total_tokens = $4,
		    last_activity = $5,
		    relevance_score = $6,
		    version = $7 + 1,
		    updated_at = NOW()
		WHERE conversation_id = $1 AND version = $7
	`
)
