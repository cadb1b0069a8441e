package services

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kin-core/internal/domain/entities"
)

func edge(id, person, related string, t entities.RelationType) entities.Relationship {
	return entities.Relationship{ID: id, PersonID: person, RelatedID: related, Type: t}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name    string
		focal   string
		edges   []entities.Relationship
		wantIDs []string
	}{
		{
			name:    "empty input",
			focal:   "x",
			edges:   nil,
			wantIDs: []string{},
		},
		{
			name:  "duplicate spouse edges collapse to the focal-owned one",
			focal: "x",
			edges: []entities.Relationship{
				edge("e2", "y", "x", entities.RelationSpouse),
				edge("e9", "x", "y", entities.RelationSpouse),
			},
			wantIDs: []string{"e9"},
		},
		{
			name:  "lowest id wins among focal-owned edges",
			focal: "x",
			edges: []entities.Relationship{
				edge("e5", "x", "y", entities.RelationSpouse),
				edge("e3", "x", "y", entities.RelationPartner),
			},
			wantIDs: []string{"e3"},
		},
		{
			name:  "lowest id wins when no edge is focal-owned",
			focal: "x",
			edges: []entities.Relationship{
				edge("e7", "y", "x", entities.RelationParent),
				edge("e4", "y", "x", entities.RelationStepParent),
			},
			wantIDs: []string{"e4"},
		},
		{
			name:  "edges not touching the focal person are dropped",
			focal: "x",
			edges: []entities.Relationship{
				edge("e1", "x", "y", entities.RelationSibling),
				edge("e2", "y", "z", entities.RelationSibling),
			},
			wantIDs: []string{"e1"},
		},
		{
			name:  "one edge per related person sorted by related id",
			focal: "x",
			edges: []entities.Relationship{
				edge("e1", "c", "x", entities.RelationParent),
				edge("e2", "x", "a", entities.RelationParent),
				edge("e3", "b", "x", entities.RelationCousin),
				edge("e4", "x", "c", entities.RelationChild),
			},
			wantIDs: []string{"e2", "e3", "e4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(tt.focal, tt.edges)
			ids := make([]string, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func sampleEdges() []entities.Relationship {
	return []entities.Relationship{
		edge("e1", "f", "a", entities.RelationSpouse),
		edge("e2", "a", "f", entities.RelationSpouse),
		edge("e3", "b", "f", entities.RelationParent),
		edge("e4", "f", "b", entities.RelationChild),
		edge("e5", "c", "f", entities.RelationChild),
		edge("e6", "f", "d", entities.RelationCousin),
		edge("e7", "d", "f", entities.RelationCousin),
		edge("e8", "d", "f", entities.RelationFriend),
		edge("e9", "a", "b", entities.RelationSibling),
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	once := Canonicalize("f", sampleEdges())
	twice := Canonicalize("f", once)
	assert.Equal(t, once, twice)
}

func TestCanonicalize_OrderIndependent(t *testing.T) {
	want := Canonicalize("f", sampleEdges())

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := sampleEdges()
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Canonicalize("f", shuffled))
	}
}

func TestCanonicalize_Complete(t *testing.T) {
	edges := sampleEdges()
	got := Canonicalize("f", edges)

	related := make(map[string]bool)
	for _, e := range edges {
		if e.Touches("f") {
			related[e.OtherID("f")] = true
		}
	}

	seen := make(map[string]int)
	for _, e := range got {
		require.True(t, e.Touches("f"))
		seen[e.OtherID("f")]++
	}
	assert.Len(t, seen, len(related))
	for id := range related {
		assert.Equal(t, 1, seen[id], "related person %s", id)
	}
}
