package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ersonp/kin-core/internal/domain/entities"
)

// FindAppliedIntent returns nil when the intent has not been applied.
func (r *Repository) FindAppliedIntent(ctx context.Context, intentID string) (*entities.AppliedIntent, error) {
	query := `
		SELECT intent_id, focal_id, person_id, relationship_id, created_person, applied_at
		FROM materialized_intents
		WHERE intent_id = ?
	`
	var applied entities.AppliedIntent
	err := r.db.QueryRowContext(ctx, query, intentID).Scan(
		&applied.IntentID,
		&applied.FocalID,
		&applied.PersonID,
		&applied.RelationID,
		&applied.Created,
		&applied.AppliedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning applied intent: %w", err)
	}
	return &applied, nil
}

// SaveAppliedIntent records an applied intent. The first record for an
// intent ID wins.
func (r *Repository) SaveAppliedIntent(ctx context.Context, applied *entities.AppliedIntent) error {
	if applied.AppliedAt.IsZero() {
		applied.AppliedAt = timeNow()
	}
	query := `
		INSERT INTO materialized_intents (intent_id, focal_id, person_id, relationship_id, created_person, applied_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(intent_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		applied.IntentID,
		applied.FocalID,
		applied.PersonID,
		applied.RelationID,
		applied.Created,
		applied.AppliedAt,
	)
	if err != nil {
		return fmt.Errorf("saving applied intent: %w", err)
	}
	return nil
}

// ForgetAppliedIntent removes the ledger row of an intent. Unknown IDs are ignored.
func (r *Repository) ForgetAppliedIntent(ctx context.Context, intentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM materialized_intents WHERE intent_id = ?`, intentID); err != nil {
		return fmt.Errorf("forgetting applied intent: %w", err)
	}
	return nil
}
