package reminder

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGClaimStore is the Postgres-backed ClaimStore. The reminder_sent primary
// key on (event_id, user_id, reminder_type) makes the insert the atomic
// winner-takes-all point: ON CONFLICT DO NOTHING reports zero rows to every
// racer but one, whether the race is an overlapping tick or another
// scheduler instance entirely.
type PGClaimStore struct {
	pool *pgxpool.Pool
}

// NewPGClaimStore creates a claim store on the given pool.
func NewPGClaimStore(pool *pgxpool.Pool) *PGClaimStore {
	return &PGClaimStore{pool: pool}
}

// TryClaim records the triple exactly once. Returns true only for the caller
// whose insert wrote a row; a false return is the normal "already handled"
// outcome, not an error.
func (s *PGClaimStore) TryClaim(ctx context.Context, eventID, userID int64, windowType string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO reminder_sent (event_id, user_id, reminder_type, sent_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT DO NOTHING`,
		eventID, userID, windowType,
	)
	if err != nil {
		return false, fmt.Errorf("claim reminder (%d, %d, %s): %w", eventID, userID, windowType, err)
	}
	return tag.RowsAffected() == 1, nil
}
