package conversations

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// implements Store on Postgres
type PostgresStore struct {
	db *pgxpool.Pool
}

// creates a new Postgres-backed conversation state store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, state *ConversationState) error {
	tag, err := s.db.Exec(ctx, queryCreate, state.ConversationID, state.UserID)
	if err != nil {
		return fmt.Errorf("failed to create conversation state: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrConversationExists
	}

	return nil
}

func (s *PostgresStore) Get(ctx context.Context, conversationID string) (*ConversationState, error) {
	var state ConversationState

	err := s.db.QueryRow(ctx, queryGet, conversationID).Scan(
		&state.ConversationID,
		&state.UserID,
		&state.PreviousResponseID,
		&state.TurnCount,
		&state.TotalTokens,
		&state.LastActivity,
		&state.RelevanceScore,
		&state.Version,
		&state.CreatedAt,
		&state.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConversationNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load conversation state: %w", err)
	}

	return &state, nil
}

func (s *PostgresStore) UpdateIfVersion(ctx context.Context, state *ConversationState, expectedVersion int64) (bool, error) {
	tag, err := s.db.Exec(ctx, queryUpdateIfVersion,
		state.ConversationID,
		state.PreviousResponseID,
		state.TurnCount,
		state.TotalTokens,
		state.LastActivity,
		state.RelevanceScore,
		expectedVersion,
	)

	if err != nil {
		return false, fmt.Errorf("failed to update conversation state: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
