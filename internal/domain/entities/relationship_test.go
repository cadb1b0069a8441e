package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationType_InverseInvolution(t *testing.T) {
	for _, rt := range AllRelationTypes() {
		t.Run(string(rt), func(t *testing.T) {
			assert.Equal(t, rt, rt.Inverse().Inverse())
			if rt.IsSymmetric() {
				assert.Equal(t, rt, rt.Inverse())
			} else {
				assert.NotEqual(t, rt, rt.Inverse())
				assert.False(t, rt.Inverse().IsSymmetric())
			}
		})
	}
}

func TestRelationType_Classification(t *testing.T) {
	symmetric := []RelationType{
		RelationSpouse, RelationSibling, RelationCousin, RelationHalfSibling,
		RelationInLaw, RelationPartner, RelationFriend, RelationOther,
	}
	for _, rt := range symmetric {
		assert.True(t, rt.IsSymmetric(), "%s should be symmetric", rt)
	}

	pairs := map[RelationType]RelationType{
		RelationParent:        RelationChild,
		RelationGrandparent:   RelationGrandchild,
		RelationUncleAunt:     RelationNephewNiece,
		RelationStepParent:    RelationStepChild,
		RelationAdoptedParent: RelationAdoptedChild,
	}
	for a, b := range pairs {
		assert.Equal(t, b, a.Inverse())
		assert.Equal(t, a, b.Inverse())
	}

	assert.Len(t, AllRelationTypes(), 18)
}

func TestRelationType_UnknownIsTotal(t *testing.T) {
	unknown := RelationType("NEMESIS")
	assert.False(t, unknown.IsValid())
	assert.Equal(t, unknown, unknown.Inverse())
}

func TestParseRelationType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RelationType
		wantErr bool
	}{
		{name: "upper", input: "PARENT", want: RelationParent},
		{name: "lower", input: "parent", want: RelationParent},
		{name: "hyphenated", input: "step-parent", want: RelationStepParent},
		{name: "spaced", input: "Half Sibling", want: RelationHalfSibling},
		{name: "padded", input: "  in_law ", want: RelationInLaw},
		{name: "unknown", input: "ally", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelationType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRelationship_FactKey(t *testing.T) {
	t.Run("directional pair written from either side", func(t *testing.T) {
		a := Relationship{PersonID: "a", RelatedID: "b", Type: RelationParent}
		b := Relationship{PersonID: "b", RelatedID: "a", Type: RelationChild}
		assert.Equal(t, a.FactKey(), b.FactKey())
	})

	t.Run("symmetric pair written from either side", func(t *testing.T) {
		a := Relationship{PersonID: "x", RelatedID: "y", Type: RelationSpouse}
		b := Relationship{PersonID: "y", RelatedID: "x", Type: RelationSpouse}
		assert.Equal(t, a.FactKey(), b.FactKey())
	})

	t.Run("opposite facts differ", func(t *testing.T) {
		a := Relationship{PersonID: "a", RelatedID: "b", Type: RelationParent}
		b := Relationship{PersonID: "b", RelatedID: "a", Type: RelationParent}
		assert.NotEqual(t, a.FactKey(), b.FactKey())
		assert.Equal(t, a.PairKey(), b.PairKey())
	})
}

func TestRelationship_Validate(t *testing.T) {
	for _, rt := range AllRelationTypes() {
		rel := Relationship{PersonID: "same", RelatedID: "same", Type: rt}
		err := rel.Validate()
		require.Error(t, err, "self relationship of type %s must fail", rt)
		assert.ErrorIs(t, err, ErrValidation)
	}

	bad := Relationship{PersonID: "a", RelatedID: "b", Type: "ENEMY"}
	assert.ErrorIs(t, bad.Validate(), ErrValidation)

	ok := Relationship{PersonID: "a", RelatedID: "b", Type: RelationCousin}
	assert.NoError(t, ok.Validate())
}

func TestRelationship_OtherID(t *testing.T) {
	rel := Relationship{PersonID: "a", RelatedID: "b"}
	assert.Equal(t, "b", rel.OtherID("a"))
	assert.Equal(t, "a", rel.OtherID("b"))
	assert.True(t, rel.Touches("a"))
	assert.False(t, rel.Touches("c"))
}
