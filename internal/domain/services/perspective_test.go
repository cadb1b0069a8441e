package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kin-core/internal/domain/entities"
)

func TestDisplayType(t *testing.T) {
	rel := edge("e1", "jerry", "haylee", entities.RelationParent)

	got, err := DisplayType(rel, "haylee")
	require.NoError(t, err)
	assert.Equal(t, entities.RelationParent, got)

	got, err = DisplayType(rel, "jerry")
	require.NoError(t, err)
	assert.Equal(t, entities.RelationChild, got)

	_, err = DisplayType(rel, "stranger")
	assert.ErrorIs(t, err, entities.ErrNotParticipant)
}

func TestDisplayType_ConsistentForEveryType(t *testing.T) {
	for _, typ := range entities.AllRelationTypes() {
		t.Run(string(typ), func(t *testing.T) {
			rel := edge("e", "a", "b", typ)

			fromB, err := DisplayType(rel, "b")
			require.NoError(t, err)
			fromA, err := DisplayType(rel, "a")
			require.NoError(t, err)

			assert.Equal(t, typ, fromB)
			assert.Equal(t, typ.Inverse(), fromA)
			if typ.IsSymmetric() {
				assert.Equal(t, fromA, fromB)
			}
		})
	}
}

func TestResolveView(t *testing.T) {
	edges := []entities.Relationship{
		edge("e1", "jerry", "haylee", entities.RelationParent),
		edge("e2", "haylee", "jerry", entities.RelationChild),
		edge("e3", "haylee", "sam", entities.RelationSibling),
		edge("e4", "amy", "haylee", entities.RelationChild),
	}

	views := ResolveView("haylee", edges)
	require.Len(t, views, 3)

	byOther := make(map[string]RelationView)
	for _, v := range views {
		byOther[v.OtherID] = v
	}

	assert.Equal(t, entities.RelationParent, byOther["jerry"].Type)
	assert.Equal(t, "parent", byOther["jerry"].Label)
	assert.Equal(t, entities.CategoryParents, byOther["jerry"].Category)
	assert.Equal(t, "e2", byOther["jerry"].Relationship.ID)

	assert.Equal(t, entities.RelationSibling, byOther["sam"].Type)
	assert.Equal(t, entities.CategorySiblings, byOther["sam"].Category)

	assert.Equal(t, entities.RelationChild, byOther["amy"].Type)
	assert.Equal(t, entities.CategoryChildren, byOther["amy"].Category)
}

func TestGroupByCategory(t *testing.T) {
	edges := []entities.Relationship{
		edge("e1", "f", "s2", entities.RelationSibling),
		edge("e2", "p1", "f", entities.RelationParent),
		edge("e3", "f", "s1", entities.RelationSibling),
		edge("e4", "f", "pt", entities.RelationPartner),
		edge("e5", "c1", "f", entities.RelationChild),
		edge("e6", "f", "fr", entities.RelationFriend),
	}
	names := map[string]string{
		"s1": "Zed Lee",
		"s2": "Ann Lee",
		"p1": "Jerry Lee",
	}

	groups := GroupByCategory(ResolveView("f", edges), names)

	cats := make([]entities.Category, 0, len(groups))
	for _, g := range groups {
		cats = append(cats, g.Category)
	}
	assert.Equal(t, []entities.Category{
		entities.CategoryParents,
		entities.CategorySiblings,
		entities.CategorySpouse,
		entities.CategoryChildren,
		entities.CategoryOthers,
	}, cats)

	siblings := groups[1].Members
	require.Len(t, siblings, 2)
	assert.Equal(t, "s2", siblings[0].OtherID, "Ann sorts before Zed")
	assert.Equal(t, "Ann Lee", siblings[0].OtherName)
	assert.Equal(t, "s1", siblings[1].OtherID)

	assert.Equal(t, "pt", groups[2].Members[0].OtherID)
	assert.Equal(t, entities.RelationPartner, groups[2].Members[0].Type)
}
