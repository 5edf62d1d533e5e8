package credits

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// implements Store on Postgres. All mutations are single conditional
// statements so the store stays correct across server instances.
type PostgresStore struct {
	db *pgxpool.Pool
}

// creates a new Postgres-backed credit store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Reserve(ctx context.Context, userID string, amount int) (bool, error) {
	var credits, reserved int

	err := s.db.QueryRow(ctx, queryReserve, userID, amount).Scan(&credits, &reserved)
	if errors.Is(err, pgx.ErrNoRows) {
		// either the account is missing or the balance is insufficient -
		// probe existence to tell the two apart
		var one int
		if probeErr := s.db.QueryRow(ctx, queryAccountExists, userID).Scan(&one); probeErr != nil {
			if errors.Is(probeErr, pgx.ErrNoRows) {
				return false, ErrAccountNotFound
			}

			return false, fmt.Errorf("failed to probe credit account: %w", probeErr)
		}

		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to reserve credits: %w", err)
	}

	return true, nil
}

func (s *PostgresStore) Finalize(ctx context.Context, userID string, held, debit int) (bool, error) {
	var prevCredits, prevReserved int

	err := s.db.QueryRow(ctx, queryFinalize, userID, held, debit).Scan(&prevCredits, &prevReserved)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrAccountNotFound
	}

	if err != nil {
		return false, fmt.Errorf("failed to finalize reservation: %w", err)
	}

	// the debit was capped when the actual cost exceeded what was available
	// once this reservation's own hold is released
	capped := debit > prevCredits-prevReserved+held

	return capped, nil
}

func (s *PostgresStore) Release(ctx context.Context, userID string, held int) error {
	if _, err := s.db.Exec(ctx, queryRelease, userID, held); err != nil {
		return fmt.Errorf("failed to release reservation: %w", err)
	}

	return nil
}

func (s *PostgresStore) Account(ctx context.Context, userID string) (*Account, error) {
	var account Account

	err := s.db.QueryRow(ctx, queryAccount, userID).Scan(
		&account.UserID,
		&account.Credits,
		&account.ReservedCredits,
		&account.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load credit account: %w", err)
	}

	return &account, nil
}

func (s *PostgresStore) Grant(ctx context.Context, userID string, total int) error {
	if _, err := s.db.Exec(ctx, queryGrant, userID, total); err != nil {
		return fmt.Errorf("failed to grant credits: %w", err)
	}

	return nil
}
