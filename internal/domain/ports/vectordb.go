package ports

import (
	"context"

	"github.com/ersonp/kin-core/internal/domain/entities"
)

// EdgeIndex stores relationship sentences for semantic search.
type EdgeIndex interface {
	// Upsert stores or replaces the document for a relationship.
	Upsert(ctx context.Context, doc entities.IndexedRelationship, embedding []float32) error

	// Delete removes the document for a relationship.
	Delete(ctx context.Context, relationshipID string) error

	// Search returns the documents closest to embedding.
	Search(ctx context.Context, embedding []float32, limit int) ([]entities.IndexedRelationship, error)
}
