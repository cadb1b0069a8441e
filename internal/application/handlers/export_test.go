package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kin-core/internal/domain/mocks"
	"github.com/ersonp/kin-core/internal/domain/services"
)

func TestExportHandler_Handle(t *testing.T) {
	db := mocks.NewRelationalDB()
	db.AddMember("jerry", "Jerry", "Lee")
	db.AddMember("haylee", "Haylee", "Lee")
	rels := services.NewRelationshipService(db, nil, nil)
	_, err := NewRelationshipHandler(rels).HandleCreate(t.Context(), "jerry", "parent", "haylee", "")
	require.NoError(t, err)

	export, err := NewExportHandler(services.NewMemberService(db, nil, nil), rels).Handle(t.Context(), 100)
	require.NoError(t, err)
	assert.Len(t, export.Members, 2)
	require.Len(t, export.Relationships, 1)
	assert.Equal(t, "jerry", export.Relationships[0].PersonID)
}
