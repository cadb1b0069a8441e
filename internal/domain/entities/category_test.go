package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_Type(t *testing.T) {
	tests := []struct {
		category Category
		want     RelationType
	}{
		{CategoryParents, RelationParent},
		{CategorySiblings, RelationSibling},
		{CategorySpouse, RelationSpouse},
		{CategoryChildren, RelationChild},
		{CategoryUnclesAunts, RelationUncleAunt},
		{CategoryAdoptedChildren, RelationAdoptedChild},
		{CategoryInLaws, RelationInLaw},
		{CategoryOthers, RelationOther},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.category.Type())
		})
	}
}

func TestCategory_Reciprocal(t *testing.T) {
	assert.Equal(t, CategoryChildren, CategoryParents.Reciprocal())
	assert.Equal(t, CategoryParents, CategoryChildren.Reciprocal())
	assert.Equal(t, CategoryGrandchildren, CategoryGrandparents.Reciprocal())
	assert.Equal(t, CategoryNephewsNieces, CategoryUnclesAunts.Reciprocal())
	assert.Equal(t, CategoryStepParents, CategoryStepChildren.Reciprocal())
	assert.Equal(t, CategoryAdoptedParents, CategoryAdoptedChildren.Reciprocal())
	assert.Equal(t, CategorySpouse, CategorySpouse.Reciprocal())
	assert.Equal(t, CategoryOthers, CategoryOthers.Reciprocal())

	for _, c := range AllCategories() {
		assert.Equal(t, c, c.Reciprocal().Reciprocal(), "reciprocal of %s", c)
	}
}

func TestCategoryFor(t *testing.T) {
	for _, c := range AllCategories() {
		assert.Equal(t, c, CategoryFor(c.Type()))
	}
	assert.Equal(t, CategorySpouse, CategoryFor(RelationPartner))
	assert.Equal(t, CategoryOthers, CategoryFor(RelationFriend))
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("nephewsNieces")
	require.NoError(t, err)
	assert.Equal(t, CategoryNephewsNieces, c)

	_, err = ParseCategory("friends")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPerson_DisplayName(t *testing.T) {
	assert.Equal(t, "Amy Lee", (&Person{ID: "1", FirstName: "Amy", LastName: "Lee"}).DisplayName())
	assert.Equal(t, "Bo", (&Person{ID: "1", Nickname: "Bo"}).DisplayName())
	assert.Equal(t, "1", (&Person{ID: "1"}).DisplayName())
}
