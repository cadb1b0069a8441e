package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/kin-core/internal/domain/entities"
	"github.com/ersonp/kin-core/internal/domain/services"
)

// RelationshipHandler handles relationship operations.
type RelationshipHandler struct {
	service *services.RelationshipService
}

// NewRelationshipHandler creates a new RelationshipHandler.
func NewRelationshipHandler(service *services.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{
		service: service,
	}
}

// ListOptions configures relationship listing behavior.
type ListOptions struct {
	Raw  bool   // Stored edges as written, without dedup or labeling
	Type string // Filter by relationship type (empty = all)
}

// ListResult contains the result of listing relationships. Exactly one of
// Raw and View is set.
type ListResult struct {
	PersonID string                  `json:"personId"`
	Raw      []entities.Relationship `json:"relationships,omitempty"`
	View     *services.PersonView    `json:"view,omitempty"`
}

// Empty reports whether the listing holds no relationships.
func (r *ListResult) Empty() bool {
	if r.View != nil {
		return len(r.View.Views) == 0
	}
	return len(r.Raw) == 0
}

// HandleCreate records "personID IS relType OF relatedID".
func (h *RelationshipHandler) HandleCreate(
	ctx context.Context,
	personID string,
	relType string,
	relatedID string,
	notes string,
) (*entities.Relationship, error) {
	rt, err := entities.ParseRelationType(relType)
	if err != nil {
		return nil, err
	}

	return h.service.Create(ctx, services.CreateInput{
		PersonID:  personID,
		RelatedID: relatedID,
		Type:      rt,
		Notes:     notes,
	})
}

// HandleUpdate changes the type and/or notes of an edge. Nil leaves a field as is.
func (h *RelationshipHandler) HandleUpdate(ctx context.Context, id string, relType, notes *string) (*entities.Relationship, error) {
	var in services.UpdateInput
	if relType != nil {
		rt, err := entities.ParseRelationType(*relType)
		if err != nil {
			return nil, err
		}
		in.Type = &rt
	}
	in.Notes = notes

	return h.service.Update(ctx, id, in)
}

// HandleDelete removes a relationship by ID.
func (h *RelationshipHandler) HandleDelete(ctx context.Context, id string) error {
	return h.service.Delete(ctx, id)
}

// HandleList returns the relationships of a person, either raw or as the
// canonical labeled view.
func (h *RelationshipHandler) HandleList(ctx context.Context, personID string, opts ListOptions) (*ListResult, error) {
	var filter entities.RelationType
	if opts.Type != "" {
		rt, err := entities.ParseRelationType(opts.Type)
		if err != nil {
			return nil, err
		}
		filter = rt
	}

	result := &ListResult{PersonID: personID}

	if opts.Raw {
		rels, err := h.service.ListTouching(ctx, personID)
		if err != nil {
			return nil, fmt.Errorf("listing relationships: %w", err)
		}
		for i := range rels {
			if filter == "" || rels[i].Type == filter {
				result.Raw = append(result.Raw, rels[i])
			}
		}
		return result, nil
	}

	view, err := h.service.View(ctx, personID)
	if err != nil {
		return nil, err
	}
	if filter != "" {
		view = filterView(view, filter)
	}
	result.View = view
	return result, nil
}

// filterView keeps the relationships whose display type is t.
func filterView(view *services.PersonView, t entities.RelationType) *services.PersonView {
	out := &services.PersonView{Person: view.Person}
	names := make(map[string]string)
	for _, v := range view.Views {
		if v.Type == t {
			out.Views = append(out.Views, v)
			names[v.OtherID] = v.OtherName
		}
	}
	out.Groups = services.GroupByCategory(out.Views, names)
	return out
}

// HandleHistory returns the audit trail of a relationship.
func (h *RelationshipHandler) HandleHistory(ctx context.Context, id string) ([]entities.AuditEntry, error) {
	return h.service.History(ctx, id)
}

// HandleCount returns the total number of relationships.
func (h *RelationshipHandler) HandleCount(ctx context.Context) (int, error) {
	return h.service.Count(ctx)
}
