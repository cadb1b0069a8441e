package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kin-core/internal/domain/entities"
	"github.com/ersonp/kin-core/internal/domain/mocks"
)

func newMemberTestService(t *testing.T) (*MemberService, *mocks.RelationalDB) {
	t.Helper()
	db := mocks.NewRelationalDB()
	return NewMemberService(db, nil, nil), db
}

func TestMemberService_Create_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   MemberInput
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing first name",
			input:   MemberInput{PersonAttributes: entities.PersonAttributes{LastName: "Lee"}},
			wantErr: entities.ErrValidation,
			wantMsg: "firstName is required",
		},
		{
			name:    "blank names are trimmed before validation",
			input:   MemberInput{PersonAttributes: entities.PersonAttributes{FirstName: "  ", LastName: "  "}},
			wantErr: entities.ErrValidation,
			wantMsg: "lastName is required",
		},
		{
			name:    "bad birth date",
			input:   MemberInput{PersonAttributes: entities.PersonAttributes{FirstName: "Amy", LastName: "Lee", BirthDate: "17/05/1990"}},
			wantErr: entities.ErrValidation,
			wantMsg: "birthDate",
		},
		{
			name: "unknown category",
			input: MemberInput{
				PersonAttributes: entities.PersonAttributes{FirstName: "Amy", LastName: "Lee"},
				Relationships:    RelationshipHints{"godparents": {"x"}},
			},
			wantErr: entities.ErrValidation,
			wantMsg: "invalid category",
		},
		{
			name: "unknown hinted member",
			input: MemberInput{
				PersonAttributes: entities.PersonAttributes{FirstName: "Amy", LastName: "Lee"},
				Relationships:    RelationshipHints{entities.CategoryParents: {"ghost"}},
			},
			wantErr: entities.ErrNotFound,
			wantMsg: "ghost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db := newMemberTestService(t)
			_, err := svc.Create(ctx, tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Empty(t, db.Members)
		})
	}
}

func TestMemberService_Create(t *testing.T) {
	ctx := context.Background()
	svc, db := newMemberTestService(t)
	db.AddMember("focal", "Jerry", "Lee")
	db.AddMember("sib", "Sam", "Lee")

	alive := false
	result, err := svc.Create(ctx, MemberInput{
		PersonAttributes: entities.PersonAttributes{
			FirstName: "Amy",
			LastName:  "Lee",
			BirthDate: "1990-05-17",
			IsAlive:   &alive,
		},
		Relationships: RelationshipHints{
			entities.CategoryParents:  {"focal"},
			entities.CategorySiblings: {"sib"},
		},
		Notes: "from the family bible",
	})
	require.NoError(t, err)

	person := result.Person
	assert.NotEmpty(t, person.ID)
	assert.False(t, person.IsAlive)
	require.NotNil(t, person.BirthDate)
	assert.Equal(t, "1990-05-17", person.BirthDate.Format(entities.BirthDateLayout))

	require.Len(t, result.Relationships, 2)
	// Hinted parent: the new member IS CHILD OF the focal member.
	assert.Equal(t, person.ID, result.Relationships[0].PersonID)
	assert.Equal(t, "focal", result.Relationships[0].RelatedID)
	assert.Equal(t, entities.RelationChild, result.Relationships[0].Type)
	assert.Equal(t, "from the family bible", result.Relationships[0].Notes)
	// Symmetric hint: stored from the hinted member's side.
	assert.Equal(t, "sib", result.Relationships[1].PersonID)
	assert.Equal(t, person.ID, result.Relationships[1].RelatedID)
	assert.Equal(t, entities.RelationSibling, result.Relationships[1].Type)

	views := ResolveView("focal", mustTouching(t, db, "focal"))
	require.Len(t, views, 1)
	assert.Equal(t, entities.CategoryChildren, views[0].Category)

	assert.Contains(t, db.Actions(), entities.AuditMemberCreated)
}

func TestMemberService_Delete(t *testing.T) {
	ctx := context.Background()
	db := mocks.NewRelationalDB()
	idx := mocks.NewEdgeIndex()
	svc := NewMemberService(db, NewKinshipIndex(idx, &mocks.Embedder{EmbeddingResult: []float32{1}}, db, nil), nil)
	db.AddMember("a", "Ann", "Lee")

	result, err := svc.Create(ctx, MemberInput{
		PersonAttributes: entities.PersonAttributes{FirstName: "Bo", LastName: "Lee"},
		Relationships:    RelationshipHints{entities.CategorySpouse: {"a"}},
	})
	require.NoError(t, err)
	require.Len(t, result.Relationships, 1)
	assert.Equal(t, 1, idx.UpsertCallCount)

	require.NoError(t, svc.Delete(ctx, result.Person.ID))
	assert.Empty(t, db.Relationships)
	assert.Equal(t, 1, idx.DeleteCallCount)

	_, err = svc.Get(ctx, result.Person.ID)
	assert.ErrorIs(t, err, entities.ErrNotFound)

	err = svc.Delete(ctx, result.Person.ID)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestMemberService_ListSearchNames(t *testing.T) {
	ctx := context.Background()
	svc, db := newMemberTestService(t)
	db.AddMember("1", "Jerry", "Lee")
	db.AddMember("2", "Ann", "Brown")

	list, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Brown", list[0].LastName)

	hits, err := svc.Search(ctx, "jer", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "1", hits[0].ID)

	names, err := svc.Names(ctx, []string{"1", "2", "9"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1": "Jerry Lee", "2": "Ann Brown"}, names)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func mustTouching(t *testing.T, db *mocks.RelationalDB, id string) []entities.Relationship {
	t.Helper()
	rels, err := db.FindRelationshipsTouching(context.Background(), id)
	require.NoError(t, err)
	return rels
}
