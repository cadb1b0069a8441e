package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kin-core/internal/application/handlers"
	"github.com/ersonp/kin-core/internal/domain/entities"
	"github.com/ersonp/kin-core/internal/domain/mocks"
	"github.com/ersonp/kin-core/internal/domain/services"
)

type testServer struct {
	srv   *Server
	db    *mocks.RelationalDB
	index *mocks.EdgeIndex
}

func newTestServer(t *testing.T, withIndex bool) *testServer {
	t.Helper()
	db := mocks.NewRelationalDB()
	db.AddMember("jerry", "Jerry", "Lee")
	db.AddMember("haylee", "Haylee", "Lee")
	db.AddMember("mira", "Mira", "Lee")

	var (
		kin   *services.KinshipIndex
		index *mocks.EdgeIndex
	)
	if withIndex {
		index = mocks.NewEdgeIndex()
		kin = services.NewKinshipIndex(index, &mocks.Embedder{EmbeddingResult: []float32{0.5}}, db, nil)
	}

	members := services.NewMemberService(db, kin, nil)
	rels := services.NewRelationshipService(db, kin, nil)
	srv := New(Handlers{
		Relationships: handlers.NewRelationshipHandler(rels),
		Members:       handlers.NewMemberHandler(members),
		Materialize:   handlers.NewMaterializeHandler(services.NewMaterializer(db, members, kin, 4, nil)),
		Search:        handlers.NewSearchHandler(kin),
	}, nil)

	return &testServer{srv: srv, db: db, index: index}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, false)
	rec := ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestCreateRelationship(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		msg    string
	}{
		{
			name:   "created",
			body:   `{"personId":"jerry","relatedId":"haylee","relationshipType":"PARENT","notes":"biological"}`,
			status: http.StatusCreated,
		},
		{
			name:   "missing field",
			body:   `{"personId":"jerry","relationshipType":"PARENT"}`,
			status: http.StatusBadRequest,
			msg:    "relatedId is required",
		},
		{
			name:   "self relationship",
			body:   `{"personId":"jerry","relatedId":"jerry","relationshipType":"SIBLING"}`,
			status: http.StatusBadRequest,
			msg:    "themselves",
		},
		{
			name:   "unknown type",
			body:   `{"personId":"jerry","relatedId":"haylee","relationshipType":"RIVAL"}`,
			status: http.StatusBadRequest,
			msg:    "invalid relationship type",
		},
		{
			name:   "unknown person",
			body:   `{"personId":"jerry","relatedId":"ghost","relationshipType":"PARENT"}`,
			status: http.StatusNotFound,
		},
		{
			name:   "malformed json",
			body:   `{"personId":`,
			status: http.StatusBadRequest,
			msg:    "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, false)
			rec := ts.do(t, http.MethodPost, "/relationships", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.msg != "" {
				assert.Contains(t, decode[errorResponse](t, rec).Message, tt.msg)
			}
			if tt.status == http.StatusCreated {
				rel := decode[entities.Relationship](t, rec)
				assert.NotEmpty(t, rel.ID)
				assert.Equal(t, entities.RelationParent, rel.Type)
				assert.Equal(t, "biological", rel.Notes)
			}
		})
	}
}

func TestRelationshipLifecycle(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodPost, "/relationships", `{"personId":"jerry","relatedId":"haylee","relationshipType":"PARENT"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rel := decode[entities.Relationship](t, rec)

	// Recording the same fact from the other side returns the stored edge.
	rec = ts.do(t, http.MethodPost, "/relationships", `{"personId":"haylee","relatedId":"jerry","relationshipType":"CHILD"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, rel.ID, decode[entities.Relationship](t, rec).ID)

	rec = ts.do(t, http.MethodGet, "/relationships?personId=haylee", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[relationshipsResponse](t, rec)
	require.Len(t, list.Relationships, 1)

	rec = ts.do(t, http.MethodGet, "/relationships/view?personId=haylee", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[services.PersonView](t, rec)
	require.Len(t, view.Views, 1)
	assert.Equal(t, entities.RelationParent, view.Views[0].Type)
	assert.Equal(t, entities.CategoryParents, view.Views[0].Category)

	rec = ts.do(t, http.MethodPut, "/relationships/"+rel.ID, `{"notes":"adoptive"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "adoptive", decode[entities.Relationship](t, rec).Notes)

	rec = ts.do(t, http.MethodPut, "/relationships/"+rel.ID, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPut, "/relationships/missing", `{"notes":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/relationships/"+rel.ID+"/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]entities.AuditEntry](t, rec), 2)

	rec = ts.do(t, http.MethodDelete, "/relationships/"+rel.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/relationships/"+rel.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/relationships?personId=haylee", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"relationships":[]`)

	rec = ts.do(t, http.MethodGet, "/relationships", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateConflict(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodPost, "/relationships", `{"personId":"jerry","relatedId":"haylee","relationshipType":"PARENT"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = ts.do(t, http.MethodPost, "/relationships", `{"personId":"jerry","relatedId":"haylee","relationshipType":"FRIEND"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	friend := decode[entities.Relationship](t, rec)

	rec = ts.do(t, http.MethodPut, "/relationships/"+friend.ID, `{"relationshipType":"PARENT"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMembers(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodPost, "/members", `{"firstName":"Ada","lastName":"Lee","birthDate":"2015-06-01","relationships":{"parents":["jerry"]}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[services.MemberResult](t, rec)
	require.Len(t, created.Relationships, 1)
	// Ada is the child of Jerry.
	assert.Equal(t, created.Person.ID, created.Relationships[0].PersonID)
	assert.Equal(t, "jerry", created.Relationships[0].RelatedID)
	assert.Equal(t, entities.RelationChild, created.Relationships[0].Type)

	rec = ts.do(t, http.MethodPost, "/members", `{"lastName":"Lee"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Message, "firstName is required")

	rec = ts.do(t, http.MethodGet, "/members/"+created.Person.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/members?q=ada", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]entities.Person](t, rec), 1)

	rec = ts.do(t, http.MethodGet, "/members?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]entities.Person](t, rec), 2)

	rec = ts.do(t, http.MethodGet, "/members?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/members/"+created.Person.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/members/"+created.Person.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMaterialize(t *testing.T) {
	ts := newTestServer(t, false)

	body := `{"intents":[
		{"category":"spouse","existingPersonId":"jerry"},
		{"category":"children","newPersonAttributes":{"firstName":"Haylee","lastName":"Lee"}},
		{"category":"parents","existingPersonId":"ghost"}
	]}`
	rec := ts.do(t, http.MethodPost, "/members/mira/relationships/batch", body)
	require.Equal(t, http.StatusMultiStatus, rec.Code, rec.Body.String())
	result := decode[entities.BatchResult](t, rec)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, entities.IntentError, result.Results[2].Status)

	ok := `{"intents":[{"category":"siblings","existingPersonId":"haylee"}]}`
	rec = ts.do(t, http.MethodPost, "/members/mira/relationships/batch", ok)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/members/ghost/relationships/batch", ok)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/members/mira/relationships/batch", `{"intents":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		ts := newTestServer(t, false)
		rec := ts.do(t, http.MethodGet, "/search?q=parents", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("enabled", func(t *testing.T) {
		ts := newTestServer(t, true)
		rec := ts.do(t, http.MethodPost, "/relationships", `{"personId":"jerry","relatedId":"haylee","relationshipType":"PARENT"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = ts.do(t, http.MethodGet, "/search?q=who+is+haylee's+parent&limit=3", "")
		require.Equal(t, http.StatusOK, rec.Code)
		result := decode[handlers.SearchResult](t, rec)
		require.Len(t, result.Hits, 1)
		assert.Equal(t, "Jerry Lee is the parent of Haylee Lee", result.Hits[0].Sentence)
		assert.Equal(t, 3, ts.index.LastSearchLimit)

		rec = ts.do(t, http.MethodGet, "/search?q=", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(entities.ErrNotParticipant))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("disk full")))
}

func TestInternalErrorHidesDetails(t *testing.T) {
	ts := newTestServer(t, false)
	ts.db.Err = errors.New("disk full")

	rec := ts.do(t, http.MethodGet, "/members", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode[errorResponse](t, rec).Message)
}
