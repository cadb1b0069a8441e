package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator"

	"github.com/ersonp/kin-core/internal/domain/entities"
	"github.com/ersonp/kin-core/internal/domain/ports"
)

// RelationshipHints maps a category to the people who belong in it from the
// new member's side: {parents: [X]} makes X a parent of the new member.
type RelationshipHints map[entities.Category][]string

// MemberInput is a new member plus the relationships to write with it.
type MemberInput struct {
	entities.PersonAttributes
	Relationships RelationshipHints `json:"relationships,omitempty"`
	// Notes is copied onto every edge written for the member.
	Notes string `json:"notes,omitempty"`
}

// MemberResult is a created member and the edges stored with it.
type MemberResult struct {
	Person        *entities.Person        `json:"person"`
	Relationships []entities.Relationship `json:"relationships"`
}

// MemberService creates and removes family members.
type MemberService struct {
	store    ports.MemberStore
	audit    ports.AuditLog
	index    *KinshipIndex
	validate *validator.Validate
	logger   *log.Logger
}

// NewMemberService creates a new MemberService. index may be nil.
func NewMemberService(db ports.RelationalDB, index *KinshipIndex, logger *log.Logger) *MemberService {
	return &MemberService{
		store:    db,
		audit:    db,
		index:    index,
		validate: NewValidator(),
		logger:   componentLogger(logger, "members"),
	}
}

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidationError renders validator failures as an error wrapping
// entities.ErrValidation. Other errors are wrapped unchanged.
func ValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", entities.ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", entities.ErrValidation, strings.Join(msgs, "; "))
}

// Create validates in, then writes the member and its edges in one
// transaction. Every hinted person must exist.
func (s *MemberService) Create(ctx context.Context, in MemberInput) (*MemberResult, error) {
	person, err := s.buildPerson(in.PersonAttributes)
	if err != nil {
		return nil, err
	}

	hinted, err := s.checkHints(ctx, in.Relationships)
	if err != nil {
		return nil, err
	}

	person.ID = newID()
	rels := make([]entities.Relationship, 0, len(hinted))
	for _, h := range hinted {
		// The hint says what the hinted person is to the new member; the
		// edge is written from the hinted person's side.
		rel := OrientEdge(h.personID, person.ID, h.category.Reciprocal().Type())
		rel.Notes = in.Notes
		rels = append(rels, rel)
	}

	stored, err := s.store.CreateMember(ctx, person, rels)
	if err != nil {
		return nil, fmt.Errorf("creating member: %w", err)
	}

	if err := s.audit.LogAction(ctx, entities.AuditMemberCreated, person.ID, map[string]any{
		"name":          person.DisplayName(),
		"relationships": len(stored),
	}); err != nil {
		s.logger.Warn("audit log write failed", "member", person.ID, "err", err)
	}
	s.logger.Info("member created", "id", person.ID, "name", person.DisplayName(), "relationships", len(stored))
	for _, rel := range stored {
		s.index.Index(ctx, rel)
	}

	return &MemberResult{Person: person, Relationships: stored}, nil
}

type hint struct {
	category entities.Category
	personID string
}

// checkHints validates categories and that every hinted person exists. The
// returned hints are in category display order.
func (s *MemberService) checkHints(ctx context.Context, hints RelationshipHints) ([]hint, error) {
	if len(hints) == 0 {
		return nil, nil
	}

	for c := range hints {
		if !c.IsValid() {
			return nil, fmt.Errorf("%w: invalid category %q", entities.ErrValidation, c)
		}
	}

	var out []hint
	var ids []string
	for _, c := range entities.AllCategories() {
		for _, id := range hints[c] {
			id = strings.TrimSpace(id)
			if id == "" {
				return nil, fmt.Errorf("%w: empty person id in %s", entities.ErrValidation, c)
			}
			out = append(out, hint{category: c, personID: id})
			ids = append(ids, id)
		}
	}
	exists, err := s.store.MembersExist(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("checking members exist: %w", err)
	}
	for _, id := range ids {
		if !exists[id] {
			return nil, fmt.Errorf("%w: member %s", entities.ErrNotFound, id)
		}
	}
	return out, nil
}

func (s *MemberService) buildPerson(attrs entities.PersonAttributes) (*entities.Person, error) {
	attrs.FirstName = strings.TrimSpace(attrs.FirstName)
	attrs.MiddleName = strings.TrimSpace(attrs.MiddleName)
	attrs.LastName = strings.TrimSpace(attrs.LastName)
	attrs.Nickname = strings.TrimSpace(attrs.Nickname)

	if err := s.validate.Struct(attrs); err != nil {
		return nil, ValidationError(err)
	}

	person := &entities.Person{
		FirstName:  attrs.FirstName,
		MiddleName: attrs.MiddleName,
		LastName:   attrs.LastName,
		Nickname:   attrs.Nickname,
		IsAlive:    true,
		CreatedAt:  time.Now(),
	}
	if attrs.IsAlive != nil {
		person.IsAlive = *attrs.IsAlive
	}
	if attrs.BirthDate != "" {
		t, err := time.Parse(entities.BirthDateLayout, strings.TrimSpace(attrs.BirthDate))
		if err != nil {
			return nil, fmt.Errorf("%w: birthDate must be YYYY-MM-DD", entities.ErrValidation)
		}
		person.BirthDate = &t
	}
	return person, nil
}

// Get returns a member by ID.
func (s *MemberService) Get(ctx context.Context, id string) (*entities.Person, error) {
	person, err := s.store.FindMemberByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding member: %w", err)
	}
	if person == nil {
		return nil, fmt.Errorf("%w: member %s", entities.ErrNotFound, id)
	}
	return person, nil
}

// List returns members ordered by name.
func (s *MemberService) List(ctx context.Context, limit, offset int) ([]*entities.Person, error) {
	people, err := s.store.ListMembers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	return people, nil
}

// Search finds members by name.
func (s *MemberService) Search(ctx context.Context, query string, limit int) ([]*entities.Person, error) {
	people, err := s.store.SearchMembers(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching members: %w", err)
	}
	return people, nil
}

// Names returns display names for ids; unknown IDs are omitted.
func (s *MemberService) Names(ctx context.Context, ids []string) (map[string]string, error) {
	people, err := s.store.FindMembersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("finding members: %w", err)
	}
	names := make(map[string]string, len(people))
	for _, p := range people {
		names[p.ID] = p.DisplayName()
	}
	return names, nil
}

// Delete removes a member and every edge touching it.
func (s *MemberService) Delete(ctx context.Context, id string) error {
	removed, err := s.store.DeleteMember(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting member: %w", err)
	}
	sort.Strings(removed)
	if err := s.audit.LogAction(ctx, entities.AuditMemberDeleted, id, map[string]any{
		"relationships_removed": removed,
	}); err != nil {
		s.logger.Warn("audit log write failed", "member", id, "err", err)
	}
	s.logger.Info("member deleted", "id", id, "relationships_removed", len(removed))
	s.index.Remove(ctx, removed...)
	return nil
}

// Count returns the number of members.
func (s *MemberService) Count(ctx context.Context) (int, error) {
	return s.store.CountMembers(ctx)
}
