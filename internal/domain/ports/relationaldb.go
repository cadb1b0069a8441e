// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/ersonp/kin-core/internal/domain/entities"
)

// EdgeStore persists relationship facts.
type EdgeStore interface {
	// CreateRelationship stores rel and returns its ID. Creation is
	// idempotent per fact: when an edge with the same FactKey already exists
	// its ID is returned and created is false.
	CreateRelationship(ctx context.Context, rel *entities.Relationship) (id string, created bool, err error)

	// UpdateRelationship rewrites the type and notes of an existing edge.
	// Endpoints are immutable. Returns an error wrapping entities.ErrNotFound
	// for unknown IDs and entities.ErrConflict when the new type would
	// duplicate another edge.
	UpdateRelationship(ctx context.Context, rel *entities.Relationship) error

	// DeleteRelationship deletes a relationship by ID.
	DeleteRelationship(ctx context.Context, id string) error

	// FindRelationshipByID returns nil when the ID is unknown.
	FindRelationshipByID(ctx context.Context, id string) (*entities.Relationship, error)

	// FindRelationshipsTouching returns every edge where personID is either
	// endpoint. No deduplication or labeling is applied.
	FindRelationshipsTouching(ctx context.Context, personID string) ([]entities.Relationship, error)

	// ListRelationships lists all edges with pagination.
	ListRelationships(ctx context.Context, limit, offset int) ([]entities.Relationship, error)

	// CountRelationships returns the total number of stored edges.
	CountRelationships(ctx context.Context) (int, error)
}

// MemberStore persists person records.
type MemberStore interface {
	// CreateMember stores person together with rels in one transaction and
	// returns the stored edges (existing IDs for facts already present).
	CreateMember(ctx context.Context, person *entities.Person, rels []entities.Relationship) ([]entities.Relationship, error)

	// FindMemberByID returns nil when the ID is unknown.
	FindMemberByID(ctx context.Context, id string) (*entities.Person, error)

	// FindMembersByIDs returns the members that exist among ids.
	FindMembersByIDs(ctx context.Context, ids []string) ([]*entities.Person, error)

	// MembersExist reports which of ids exist.
	MembersExist(ctx context.Context, ids []string) (map[string]bool, error)

	// ListMembers lists members ordered by name.
	ListMembers(ctx context.Context, limit, offset int) ([]*entities.Person, error)

	// SearchMembers matches first, last and nick names.
	SearchMembers(ctx context.Context, query string, limit int) ([]*entities.Person, error)

	// DeleteMember deletes a member and every edge touching it in one
	// transaction, returning the IDs of the removed edges.
	DeleteMember(ctx context.Context, id string) ([]string, error)

	// CountMembers returns the total number of members.
	CountMembers(ctx context.Context) (int, error)
}

// IntentLedger remembers applied batch intents so resubmissions are safe.
type IntentLedger interface {
	// FindAppliedIntent returns nil when the intent has not been applied.
	FindAppliedIntent(ctx context.Context, intentID string) (*entities.AppliedIntent, error)

	// SaveAppliedIntent records a successful intent.
	SaveAppliedIntent(ctx context.Context, applied *entities.AppliedIntent) error

	// ForgetAppliedIntent drops the record of an intent so it can be applied again.
	ForgetAppliedIntent(ctx context.Context, intentID string) error
}

// AuditLog records actions for later inspection.
type AuditLog interface {
	// LogAction logs an action to the audit log.
	LogAction(ctx context.Context, action string, subjectID string, details map[string]any) error

	// FindAuditLog finds audit log entries for a relationship or person.
	FindAuditLog(ctx context.Context, subjectID string) ([]entities.AuditEntry, error)
}

// RelationalDB is the full relational storage surface.
type RelationalDB interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	EdgeStore
	MemberStore
	IntentLedger
	AuditLog
}
