package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ersonp/kin-core/internal/domain/entities"
	"github.com/ersonp/kin-core/internal/domain/ports"
)

// ErrIndexDisabled is returned by Search when no index is configured.
var ErrIndexDisabled = errors.New("kinship search index is disabled")

// KinshipIndex keeps a searchable sentence for every relationship. Indexing
// is best-effort: failures are logged and never surface to the caller that
// changed the edge. A nil *KinshipIndex is valid and does nothing.
type KinshipIndex struct {
	index    ports.EdgeIndex
	embedder ports.Embedder
	members  ports.MemberStore
	logger   *log.Logger
}

// NewKinshipIndex creates a KinshipIndex. It returns nil when index or
// embedder is nil, which disables indexing.
func NewKinshipIndex(index ports.EdgeIndex, embedder ports.Embedder, members ports.MemberStore, logger *log.Logger) *KinshipIndex {
	if index == nil || embedder == nil {
		return nil
	}
	return &KinshipIndex{
		index:    index,
		embedder: embedder,
		members:  members,
		logger:   componentLogger(logger, "index"),
	}
}

// Enabled reports whether indexing is active.
func (k *KinshipIndex) Enabled() bool {
	return k != nil
}

// Index embeds rel and stores it.
func (k *KinshipIndex) Index(ctx context.Context, rel entities.Relationship) {
	if k == nil {
		return
	}
	doc := entities.IndexedRelationship{
		RelationshipID: rel.ID,
		PersonID:       rel.PersonID,
		RelatedID:      rel.RelatedID,
		Type:           rel.Type,
		Sentence:       Sentence(rel, k.names(ctx, rel.PersonID, rel.RelatedID)),
	}

	embedding, err := k.embedder.Embed(ctx, doc.Sentence)
	if err != nil {
		k.logger.Warn("embedding relationship failed", "id", rel.ID, "err", err)
		return
	}
	if err := k.index.Upsert(ctx, doc, embedding); err != nil {
		k.logger.Warn("indexing relationship failed", "id", rel.ID, "err", err)
		return
	}
	k.logger.Debug("indexed relationship", "id", rel.ID, "sentence", doc.Sentence)
}

// Remove deletes the documents for the given relationships.
func (k *KinshipIndex) Remove(ctx context.Context, relationshipIDs ...string) {
	if k == nil {
		return
	}
	for _, id := range relationshipIDs {
		if err := k.index.Delete(ctx, id); err != nil {
			k.logger.Warn("removing relationship from index failed", "id", id, "err", err)
		}
	}
}

// Search returns the relationships whose sentences best match query.
func (k *KinshipIndex) Search(ctx context.Context, query string, limit int) ([]entities.IndexedRelationship, error) {
	if k == nil {
		return nil, ErrIndexDisabled
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", entities.ErrValidation)
	}
	if limit <= 0 {
		limit = 10
	}
	embedding, err := k.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	hits, err := k.index.Search(ctx, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	return hits, nil
}

func (k *KinshipIndex) names(ctx context.Context, ids ...string) map[string]string {
	names := make(map[string]string, len(ids))
	if k.members == nil {
		return names
	}
	people, err := k.members.FindMembersByIDs(ctx, ids)
	if err != nil {
		k.logger.Debug("looking up names failed", "err", err)
		return names
	}
	for _, p := range people {
		names[p.ID] = p.DisplayName()
	}
	return names
}

// Sentence renders rel as "<person> is the <label> of <related>", using
// names where known and IDs otherwise.
func Sentence(rel entities.Relationship, names map[string]string) string {
	nameOf := func(id string) string {
		if n, ok := names[id]; ok && n != "" {
			return n
		}
		return id
	}
	s := fmt.Sprintf("%s is the %s of %s", nameOf(rel.PersonID), rel.Type.Label(), nameOf(rel.RelatedID))
	if rel.Notes != "" {
		s += " (" + rel.Notes + ")"
	}
	return s
}
