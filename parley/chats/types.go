package chats

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// handles chat and message database operations
type Repository struct {
	db *pgxpool.Pool
}

// a conversation container owned by a user (or an anonymous session)
type Chat struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id,omitempty"`
	SessionKey string    `json:"-"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// a single turn stored in a chat. ParentID links a message to the turn it
// replies to so a thread can be reconstructed from any point.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	ParentID  *string   `json:"parent_id,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Reasoning string    `json:"-"` // partial traces, stripped before provider calls
	CreatedAt time.Time `json:"created_at"`
}

// contains data for creating a chat
type CreateChatRequest struct {
	ID         string
	UserID     string
	SessionKey string
	Title      string
}

// contains data for saving a message
type SaveMessageRequest struct {
	ID       string
	ChatID   string
	ParentID *string
	Role     string
	Content  string
}
