package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/ersonp/kin-core/internal/domain/entities"
)

// EdgeIndex is a mock implementation of ports.EdgeIndex and
// ports.CollectionManager.
type EdgeIndex struct {
	mu sync.Mutex

	Docs map[string]entities.IndexedRelationship
	Err  error

	// Call tracking
	EnsureCollectionCallCount int
	DeleteCollectionCallCount int
	UpsertCallCount           int
	DeleteCallCount           int
	LastSearchLimit           int
}

// NewEdgeIndex creates an empty mock index.
func NewEdgeIndex() *EdgeIndex {
	return &EdgeIndex{Docs: make(map[string]entities.IndexedRelationship)}
}

// EnsureCollection records the call.
func (m *EdgeIndex) EnsureCollection(_ context.Context, _ uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EnsureCollectionCallCount++
	return m.Err
}

// DeleteCollection records the call and drops every document.
func (m *EdgeIndex) DeleteCollection(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCollectionCallCount++
	if m.Err != nil {
		return m.Err
	}
	m.Docs = make(map[string]entities.IndexedRelationship)
	return nil
}

// Upsert stores doc keyed by relationship ID.
func (m *EdgeIndex) Upsert(_ context.Context, doc entities.IndexedRelationship, _ []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCallCount++
	if m.Err != nil {
		return m.Err
	}
	m.Docs[doc.RelationshipID] = doc
	return nil
}

// Delete removes the document for a relationship.
func (m *EdgeIndex) Delete(_ context.Context, relationshipID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCallCount++
	if m.Err != nil {
		return m.Err
	}
	delete(m.Docs, relationshipID)
	return nil
}

// Search returns stored documents ordered by relationship ID.
func (m *EdgeIndex) Search(_ context.Context, _ []float32, limit int) ([]entities.IndexedRelationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastSearchLimit = limit
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]entities.IndexedRelationship, 0, len(m.Docs))
	for _, doc := range m.Docs {
		result = append(result, doc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RelationshipID < result[j].RelationshipID })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Doc returns the stored document for a relationship.
func (m *EdgeIndex) Doc(relationshipID string) (entities.IndexedRelationship, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.Docs[relationshipID]
	return doc, ok
}
