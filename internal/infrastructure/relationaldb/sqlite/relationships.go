package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ersonp/kin-core/internal/domain/entities"
)

const relationshipColumns = `id, person_id, related_id, type, notes, created_at, updated_at`

// CreateRelationship inserts rel unless the same fact is already stored, in
// which case the existing ID is returned with created=false. rel is updated
// in place with the stored ID and timestamps.
func (r *Repository) CreateRelationship(ctx context.Context, rel *entities.Relationship) (string, bool, error) {
	return insertRelationship(ctx, r.db, rel)
}

// insertRelationship is the idempotent insert shared by CreateRelationship
// and CreateMember.
func insertRelationship(ctx context.Context, q queryer, rel *entities.Relationship) (string, bool, error) {
	if rel.ID == "" {
		rel.ID = generateUUID()
	}
	now := timeNow()
	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = now
	}
	rel.UpdatedAt = rel.CreatedAt

	query := `
		INSERT INTO relationships (id, person_id, related_id, type, notes, pair_key, fact_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fact_key) DO NOTHING
	`
	result, err := q.ExecContext(ctx, query,
		rel.ID,
		rel.PersonID,
		rel.RelatedID,
		string(rel.Type),
		rel.Notes,
		rel.PairKey(),
		rel.FactKey(),
		rel.CreatedAt,
		rel.UpdatedAt,
	)
	if err != nil {
		return "", false, fmt.Errorf("inserting relationship: %w", err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		return rel.ID, true, nil
	}

	row := q.QueryRowContext(ctx,
		`SELECT `+relationshipColumns+` FROM relationships WHERE fact_key = ?`, rel.FactKey())
	existing, err := scanRelationship(row)
	if err != nil {
		return "", false, fmt.Errorf("loading existing relationship: %w", err)
	}
	*rel = *existing
	return rel.ID, false, nil
}

// UpdateRelationship rewrites type and notes of an existing edge.
func (r *Repository) UpdateRelationship(ctx context.Context, rel *entities.Relationship) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+relationshipColumns+` FROM relationships WHERE id = ?`, rel.ID)
	current, err := scanRelationship(row)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: relationship %s", entities.ErrNotFound, rel.ID)
	}
	if err != nil {
		return fmt.Errorf("loading relationship: %w", err)
	}

	current.Type = rel.Type
	current.Notes = rel.Notes
	current.UpdatedAt = timeNow()

	var holder string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM relationships WHERE fact_key = ? AND id <> ?`, current.FactKey(), current.ID).Scan(&holder)
	switch {
	case err == nil:
		return fmt.Errorf("%w: relationship %s already records this fact", entities.ErrConflict, holder)
	case err != sql.ErrNoRows:
		return fmt.Errorf("checking duplicate fact: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE relationships
		SET type = ?, notes = ?, fact_key = ?, updated_at = ?
		WHERE id = ?
	`, string(current.Type), current.Notes, current.FactKey(), current.UpdatedAt, current.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", entities.ErrConflict, err)
	}
	if err != nil {
		return fmt.Errorf("updating relationship: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing relationship update: %w", err)
	}
	*rel = *current
	return nil
}

// DeleteRelationship deletes a relationship by ID.
func (r *Repository) DeleteRelationship(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM relationships WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting relationship: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: relationship %s", entities.ErrNotFound, id)
	}

	// Intents that produced this edge may be applied again.
	if _, err := tx.ExecContext(ctx, `DELETE FROM materialized_intents WHERE relationship_id = ?`, id); err != nil {
		return fmt.Errorf("deleting applied intents: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing relationship delete: %w", err)
	}
	return nil
}

// FindRelationshipByID returns nil when no edge has the ID.
func (r *Repository) FindRelationshipByID(ctx context.Context, id string) (*entities.Relationship, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+relationshipColumns+` FROM relationships WHERE id = ?`, id)
	rel, err := scanRelationship(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning relationship: %w", err)
	}
	return rel, nil
}

// FindRelationshipsTouching finds all edges where the person is either endpoint.
func (r *Repository) FindRelationshipsTouching(ctx context.Context, personID string) ([]entities.Relationship, error) {
	query := `
		SELECT ` + relationshipColumns + `
		FROM relationships
		WHERE person_id = ? OR related_id = ?
		ORDER BY created_at ASC, id ASC
	`
	return r.queryRelationships(ctx, query, personID, personID)
}

// ListRelationships lists all edges with pagination.
func (r *Repository) ListRelationships(ctx context.Context, limit, offset int) ([]entities.Relationship, error) {
	query := `
		SELECT ` + relationshipColumns + `
		FROM relationships
		ORDER BY created_at ASC, id ASC
		LIMIT ? OFFSET ?
	`
	return r.queryRelationships(ctx, query, limit, offset)
}

// CountRelationships returns the total number of relationships.
func (r *Repository) CountRelationships(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM relationships`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting relationships: %w", err)
	}
	return count, nil
}

// queryRelationships is a helper to execute relationship queries.
func (r *Repository) queryRelationships(ctx context.Context, query string, args ...any) ([]entities.Relationship, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	relationships := make([]entities.Relationship, 0, 16)
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}
		relationships = append(relationships, *rel)
	}
	return relationships, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRelationship(s scanner) (*entities.Relationship, error) {
	var rel entities.Relationship
	var relType string
	if err := s.Scan(
		&rel.ID,
		&rel.PersonID,
		&rel.RelatedID,
		&relType,
		&rel.Notes,
		&rel.CreatedAt,
		&rel.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rel.Type = entities.RelationType(relType)
	return &rel, nil
}
