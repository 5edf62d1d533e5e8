package chat

// body of a turn request
type TurnRequest struct {
	ChatID          string  `json:"chat_id" binding:"required"`
	MessageID       string  `json:"message_id" binding:"required"`
	Content         string  `json:"content" binding:"required"`
	ParentMessageID *string `json:"parent_message_id,omitempty"`
	Model           string  `json:"model" binding:"required"`
	Tool            string  `json:"tool,omitempty"`
}
