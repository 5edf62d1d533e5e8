package chats

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrChatNotFound    = errors.New("chat not found")
	ErrMessageNotFound = errors.New("message not found")
)

// creates a new chat repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// retrieves a chat by its ID
func (r *Repository) GetChatByID(ctx context.Context, chatID string) (*Chat, error) {
	var chat Chat

	err := r.db.QueryRow(ctx, queryGetChatByID, chatID).Scan(
		&chat.ID,
		&chat.UserID,
		&chat.SessionKey,
		&chat.Title,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrChatNotFound
	}

	if err != nil {
		return nil, err
	}

	return &chat, nil
}

// creates a new chat record
func (r *Repository) SaveChat(ctx context.Context, req *CreateChatRequest) (*Chat, error) {
	var chat Chat

	err := r.db.QueryRow(ctx, queryCreateChat, req.ID, req.UserID, req.SessionKey, req.Title).Scan(
		&chat.ID,
		&chat.UserID,
		&chat.SessionKey,
		&chat.Title,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &chat, nil
}

// updates a chat's title
func (r *Repository) UpdateChatTitle(ctx context.Context, chatID, title string) error {
	_, err := r.db.Exec(ctx, queryUpdateChatTitle, chatID, title)
	return err
}

// retrieves a message by its ID
func (r *Repository) GetMessageByID(ctx context.Context, messageID string) (*Message, error) {
	var msg Message

	err := r.db.QueryRow(ctx, queryGetMessageByID, messageID).Scan(
		&msg.ID,
		&msg.ChatID,
		&msg.ParentID,
		&msg.Role,
		&msg.Content,
		&msg.Reasoning,
		&msg.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMessageNotFound
	}

	if err != nil {
		return nil, err
	}

	return &msg, nil
}

// persists a message. Saving a message whose id already exists is a no-op,
// so a retried request never duplicates the user turn it already stored.
func (r *Repository) SaveMessage(ctx context.Context, req *SaveMessageRequest) error {
	_, err := r.db.Exec(ctx, querySaveMessage, req.ID, req.ChatID, req.ParentID, req.Role, req.Content)
	return err
}

// reconstructs the message thread ending at the given message, oldest first
func (r *Repository) GetThreadUpToMessage(ctx context.Context, chatID, messageID string) ([]Message, error) {
	rows, err := r.db.Query(ctx, queryThreadUpToMessage, messageID, chatID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var thread []Message

	for rows.Next() {
		var msg Message

		if err := rows.Scan(
			&msg.ID,
			&msg.ChatID,
			&msg.ParentID,
			&msg.Role,
			&msg.Content,
			&msg.Reasoning,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}

		thread = append(thread, msg)
	}

	return thread, rows.Err()
}
