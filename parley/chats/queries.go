package chats

const (
	queryGetChatByID = `
		SELECT id, COALESCE(user_id, ''), COALESCE(session_key, ''), title, created_at, updated_at
		FROM chats
		WHERE id = $1
	`

	queryCreateChat = `
		INSERT INTO chats (id, user_id, session_key, title)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4)
		RETURNING id, COALESCE(user_id, ''), COALESCE(session_key, ''), title, created_at, updated_at
	`

	queryUpdateChatTitle = `
		UPDATE chats
		SET title = $2, updated_at = NOW()
		WHERE id = $1
	`

	queryGetMessageByID = `
		SELECT id, chat_id, parent_id, role, content, COALESCE(reasoning, ''), created_at
		FROM messages
		WHERE id = $1
	`

	// idempotent by message id - a retry that re-sends an already persisted
	// message is a no-op rather than a duplicate or an error
	querySaveMessage = `
		INSERT INTO messages (id, chat_id, parent_id, role, content)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`

	// walks the parent chain upward from the given message and returns the
	// thread oldest-first
	queryThreadUpToMessage = `
		WITH RECURSIVE thread AS (
			SELECT id, chat_id, parent_id, role, content, COALESCE(reasoning, '') AS reasoning, created_at, 0 AS depth
			FROM messages
			WHERE id = $1 AND chat_id = $2
			UNION ALL
			SELECT m.id, m.chat_id, m.parent_id, m.role, m.content, COALESCE(m.reasoning, ''), m.created_at, t.depth + 1
			FROM messages m
			JOIN thread t ON m.id = t.parent_id
		)
		SELECT id, chat_id, parent_id, role, content, reasoning, created_at
		FROM thread
		ORDER BY depth DESC
	`
)
