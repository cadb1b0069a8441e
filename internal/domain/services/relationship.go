package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ersonp/kin-core/internal/domain/entities"
	"github.com/ersonp/kin-core/internal/domain/ports"
)

// RelationshipService manages kinship edges between members.
type RelationshipService struct {
	edges   ports.EdgeStore
	members ports.MemberStore
	audit   ports.AuditLog
	index   *KinshipIndex
	logger  *log.Logger
}

// NewRelationshipService creates a new RelationshipService. index may be nil.
func NewRelationshipService(
	db ports.RelationalDB,
	index *KinshipIndex,
	logger *log.Logger,
) *RelationshipService {
	return &RelationshipService{
		edges:   db,
		members: db,
		audit:   db,
		index:   index,
		logger:  componentLogger(logger, "relationships"),
	}
}

// CreateInput holds the fields of a new edge.
type CreateInput struct {
	PersonID  string                `json:"personId"`
	RelatedID string                `json:"relatedId"`
	Type      entities.RelationType `json:"relationshipType"`
	Notes     string                `json:"notes,omitempty"`
}

// UpdateInput holds the mutable fields of an edge. Nil fields are left as they are.
type UpdateInput struct {
	Type  *entities.RelationType `json:"relationshipType,omitempty"`
	Notes *string                `json:"notes,omitempty"`
}

// Create stores a new edge reading "PersonID IS Type OF RelatedID". Both
// members must exist. Creating a fact that is already stored returns the
// existing edge.
func (s *RelationshipService) Create(ctx context.Context, in CreateInput) (*entities.Relationship, error) {
	rel := &entities.Relationship{
		PersonID:  strings.TrimSpace(in.PersonID),
		RelatedID: strings.TrimSpace(in.RelatedID),
		Type:      in.Type,
		Notes:     in.Notes,
	}
	if err := rel.Validate(); err != nil {
		return nil, err
	}

	if err := s.requireMembers(ctx, rel.PersonID, rel.RelatedID); err != nil {
		return nil, err
	}

	_, created, err := s.edges.CreateRelationship(ctx, rel)
	if err != nil {
		return nil, fmt.Errorf("creating relationship: %w", err)
	}
	if !created {
		s.logger.Debug("relationship already recorded", "id", rel.ID, "person", rel.PersonID, "related", rel.RelatedID)
		return rel, nil
	}

	s.logAudit(ctx, entities.AuditRelationshipCreated, rel.ID, map[string]any{
		"person_id":  rel.PersonID,
		"related_id": rel.RelatedID,
		"type":       string(rel.Type),
	})
	s.logger.Info("relationship created", "id", rel.ID, "person", rel.PersonID, "type", rel.Type, "related", rel.RelatedID)
	s.index.Index(ctx, *rel)
	return rel, nil
}

// Update changes the type and/or notes of an edge. Endpoints never change.
func (s *RelationshipService) Update(ctx context.Context, id string, in UpdateInput) (*entities.Relationship, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *current
	if in.Type != nil {
		if !in.Type.IsValid() {
			return nil, fmt.Errorf("%w: invalid relationship type %q", entities.ErrValidation, *in.Type)
		}
		next.Type = *in.Type
	}
	if in.Notes != nil {
		next.Notes = *in.Notes
	}

	if err := s.edges.UpdateRelationship(ctx, &next); err != nil {
		return nil, fmt.Errorf("updating relationship: %w", err)
	}

	s.logAudit(ctx, entities.AuditRelationshipUpdated, id, map[string]any{
		"old_type": string(current.Type),
		"new_type": string(next.Type),
	})
	s.logger.Info("relationship updated", "id", id, "type", next.Type)
	s.index.Index(ctx, next)
	return &next, nil
}

// Delete removes an edge.
func (s *RelationshipService) Delete(ctx context.Context, id string) error {
	rel, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.edges.DeleteRelationship(ctx, id); err != nil {
		return fmt.Errorf("deleting relationship: %w", err)
	}

	s.logAudit(ctx, entities.AuditRelationshipDeleted, id, map[string]any{
		"person_id":  rel.PersonID,
		"related_id": rel.RelatedID,
		"type":       string(rel.Type),
	})
	s.logger.Info("relationship deleted", "id", id)
	s.index.Remove(ctx, id)
	return nil
}

// Get returns an edge by ID.
func (s *RelationshipService) Get(ctx context.Context, id string) (*entities.Relationship, error) {
	rel, err := s.edges.FindRelationshipByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding relationship: %w", err)
	}
	if rel == nil {
		return nil, fmt.Errorf("%w: relationship %s", entities.ErrNotFound, id)
	}
	return rel, nil
}

// ListTouching returns every stored edge with personID as either endpoint,
// without deduplication or labeling.
func (s *RelationshipService) ListTouching(ctx context.Context, personID string) ([]entities.Relationship, error) {
	rels, err := s.edges.FindRelationshipsTouching(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}
	return rels, nil
}

// List returns all edges with pagination.
func (s *RelationshipService) List(ctx context.Context, limit, offset int) ([]entities.Relationship, error) {
	rels, err := s.edges.ListRelationships(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}
	return rels, nil
}

// Count returns the number of stored edges.
func (s *RelationshipService) Count(ctx context.Context) (int, error) {
	return s.edges.CountRelationships(ctx)
}

// PersonView is the canonical, labeled relationship list of one member.
type PersonView struct {
	Person *entities.Person `json:"person"`
	Views  []RelationView   `json:"relationships"`
	Groups []CategoryGroup  `json:"groups"`
}

// View returns the canonical relationships of personID, labeled from their
// side and grouped by category.
func (s *RelationshipService) View(ctx context.Context, personID string) (*PersonView, error) {
	person, err := s.members.FindMemberByID(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("finding member: %w", err)
	}
	if person == nil {
		return nil, fmt.Errorf("%w: member %s", entities.ErrNotFound, personID)
	}

	rels, err := s.ListTouching(ctx, personID)
	if err != nil {
		return nil, err
	}
	views := ResolveView(personID, rels)

	ids := make([]string, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.OtherID)
	}
	people, err := s.members.FindMembersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("finding related members: %w", err)
	}
	names := make(map[string]string, len(people))
	for _, p := range people {
		names[p.ID] = p.DisplayName()
	}
	for i := range views {
		views[i].OtherName = names[views[i].OtherID]
	}

	return &PersonView{
		Person: person,
		Views:  views,
		Groups: GroupByCategory(views, names),
	}, nil
}

// History returns the audit trail of an edge, newest first.
func (s *RelationshipService) History(ctx context.Context, id string) ([]entities.AuditEntry, error) {
	entries, err := s.audit.FindAuditLog(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding history: %w", err)
	}
	return entries, nil
}

func (s *RelationshipService) requireMembers(ctx context.Context, ids ...string) error {
	exists, err := s.members.MembersExist(ctx, ids)
	if err != nil {
		return fmt.Errorf("checking members exist: %w", err)
	}
	for _, id := range ids {
		if !exists[id] {
			return fmt.Errorf("%w: member %s", entities.ErrNotFound, id)
		}
	}
	return nil
}

// logAudit records an action; audit failures are logged, not returned.
func (s *RelationshipService) logAudit(ctx context.Context, action, subjectID string, details map[string]any) {
	if err := s.audit.LogAction(ctx, action, subjectID, details); err != nil {
		s.logger.Warn("audit log write failed", "action", action, "subject", subjectID, "err", err)
	}
}

// componentLogger returns a prefixed child of l, or a discarding logger.
func componentLogger(l *log.Logger, prefix string) *log.Logger {
	if l == nil {
		return log.New(io.Discard)
	}
	return l.WithPrefix(prefix)
}
