package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ersonp/kin-core/internal/domain/entities"
)

const memberColumns = `id, first_name, middle_name, last_name, nickname, birth_date, is_alive, created_at`

// CreateMember stores person and rels in a single transaction. Edges that
// duplicate an existing fact resolve to the stored edge.
func (r *Repository) CreateMember(ctx context.Context, person *entities.Person, rels []entities.Relationship) ([]entities.Relationship, error) {
	if person.ID == "" {
		person.ID = generateUUID()
	}
	if person.CreatedAt.IsZero() {
		person.CreatedAt = timeNow()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var birthDate sql.NullString
	if person.BirthDate != nil {
		birthDate = sql.NullString{String: person.BirthDate.Format(entities.BirthDateLayout), Valid: true}
	}

	query := `
		INSERT INTO members (id, first_name, middle_name, last_name, nickname, birth_date, is_alive, normalized_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		person.ID,
		person.FirstName,
		person.MiddleName,
		person.LastName,
		person.Nickname,
		birthDate,
		person.IsAlive,
		searchName(person),
		person.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: member %s already exists", entities.ErrConflict, person.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("inserting member: %w", err)
	}

	stored := make([]entities.Relationship, 0, len(rels))
	for i := range rels {
		rel := rels[i]
		if _, _, err := insertRelationship(ctx, tx, &rel); err != nil {
			return nil, err
		}
		stored = append(stored, rel)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing member: %w", err)
	}
	return stored, nil
}

// FindMemberByID returns nil when no member has the ID.
func (r *Repository) FindMemberByID(ctx context.Context, id string) (*entities.Person, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = ?`, id)
	person, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning member: %w", err)
	}
	return person, nil
}

// FindMembersByIDs finds multiple members by their IDs in a single query.
func (r *Repository) FindMembersByIDs(ctx context.Context, ids []string) ([]*entities.Person, error) {
	if len(ids) == 0 {
		return []*entities.Person{}, nil
	}
	marks, args := placeholders(ids)
	query := fmt.Sprintf(`SELECT %s FROM members WHERE id IN (%s)`, memberColumns, marks)
	return r.queryMembers(ctx, len(ids), query, args...)
}

// MembersExist reports which of ids are stored.
func (r *Repository) MembersExist(ctx context.Context, ids []string) (map[string]bool, error) {
	found := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	marks, args := placeholders(ids)
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT id FROM members WHERE id IN (%s)`, marks), args...)
	if err != nil {
		return nil, fmt.Errorf("querying members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning member id: %w", err)
		}
		found[id] = true
	}
	return found, rows.Err()
}

// ListMembers lists members ordered by name with pagination.
func (r *Repository) ListMembers(ctx context.Context, limit, offset int) ([]*entities.Person, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		ORDER BY last_name ASC, first_name ASC, id ASC
		LIMIT ? OFFSET ?
	`
	return r.queryMembers(ctx, limit, query, limit, offset)
}

// SearchMembers matches the query against first, middle, last and nick names.
func (r *Repository) SearchMembers(ctx context.Context, query string, limit int) ([]*entities.Person, error) {
	pattern := "%" + entities.NormalizeName(query) + "%"
	sqlQuery := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE normalized_name LIKE ?
		ORDER BY last_name ASC, first_name ASC, id ASC
		LIMIT ?
	`
	return r.queryMembers(ctx, limit, sqlQuery, pattern, limit)
}

// DeleteMember deletes a member together with every edge touching it.
func (r *Repository) DeleteMember(ctx context.Context, id string) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM relationships WHERE person_id = ? OR related_id = ? ORDER BY id`, id, id)
	if err != nil {
		return nil, fmt.Errorf("querying member relationships: %w", err)
	}
	var removed []string
	for rows.Next() {
		var relID string
		if err := rows.Scan(&relID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning relationship id: %w", err)
		}
		removed = append(removed, relID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating relationships: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("deleting member: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: member %s", entities.ErrNotFound, id)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM relationships WHERE person_id = ? OR related_id = ?`, id, id); err != nil {
		return nil, fmt.Errorf("deleting member relationships: %w", err)
	}

	// Every ledger edge joins focal_id and person_id, so these rows are the
	// ones whose edges were just removed.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM materialized_intents WHERE person_id = ? OR focal_id = ?`, id, id); err != nil {
		return nil, fmt.Errorf("deleting applied intents: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing member delete: %w", err)
	}
	return removed, nil
}

// CountMembers returns the total number of members.
func (r *Repository) CountMembers(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM members`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting members: %w", err)
	}
	return count, nil
}

func (r *Repository) queryMembers(ctx context.Context, capHint int, query string, args ...any) ([]*entities.Person, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying members: %w", err)
	}
	defer rows.Close()

	if capHint < 0 {
		capHint = 0
	}
	result := make([]*entities.Person, 0, capHint)
	for rows.Next() {
		person, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		result = append(result, person)
	}
	return result, rows.Err()
}

func scanMember(s scanner) (*entities.Person, error) {
	var p entities.Person
	var birthDate sql.NullString
	if err := s.Scan(
		&p.ID,
		&p.FirstName,
		&p.MiddleName,
		&p.LastName,
		&p.Nickname,
		&birthDate,
		&p.IsAlive,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	if birthDate.Valid && birthDate.String != "" {
		t, err := time.Parse(entities.BirthDateLayout, birthDate.String)
		if err != nil {
			return nil, fmt.Errorf("parsing birth date %q: %w", birthDate.String, err)
		}
		p.BirthDate = &t
	}
	return &p, nil
}

// searchName is the lowercase text SearchMembers matches against.
func searchName(p *entities.Person) string {
	parts := []string{p.FirstName, p.MiddleName, p.LastName, p.Nickname}
	return entities.NormalizeName(strings.Join(strings.Fields(strings.Join(parts, " ")), " "))
}
