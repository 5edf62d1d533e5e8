package titles

import (
	"context"
	"strings"
	"time"

	"codeberg.org/parley/server/internal/logger"
	"codeberg.org/parley/server/internal/provider"
)

const (
	titleModel     = "gpt-4o-mini"
	maxTitleLength = 80
	titleTimeout   = 15 * time.Second

	titlePrompt = "Write a short title (at most 6 words) for a chat that starts with the following message. Reply with the title only, no quotes or punctuation around it."
)

// persists a generated title for a chat
type TitleSaver interface {
	UpdateChatTitle(ctx context.Context, chatID, title string) error
}

// generates chat titles from the first user message. Runs after a successful
// first turn and never blocks or fails the turn itself.
type Service struct {
	client provider.Client
	saver  TitleSaver
}

// creates a new title generation service
func NewService(client provider.Client, saver TitleSaver) *Service {
	return &Service{client: client, saver: saver}
}

// titles the chat asynchronously; failures are logged, never surfaced
func (s *Service) GenerateAsync(chatID, firstMessage string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), titleTimeout)
		defer cancel()

		if err := s.generate(ctx, chatID, firstMessage); err != nil {
			logger.ErrorErr(err, "chat title generation failed", "chat_id", chatID)
		}
	}()
}

func (s *Service) generate(ctx context.Context, chatID, firstMessage string) error {
	resp, err := s.client.CreateResponse(ctx, provider.ResponseRequest{
		Model: titleModel,
		Input: []provider.InputMessage{
			{Role: "user", Content: titlePrompt + "\n\n" + firstMessage},
		},
		Store: false,
	})

	if err != nil {
		return err
	}

	title := strings.TrimSpace(resp.OutputText)
	if title == "" {
		return nil
	}

	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}

	return s.saver.UpdateChatTitle(ctx, chatID, title)
}
