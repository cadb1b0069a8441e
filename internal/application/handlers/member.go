package handlers

import (
	"context"
	"strings"

	"github.com/ersonp/kin-core/internal/domain/entities"
	"github.com/ersonp/kin-core/internal/domain/services"
)

// MemberHandler handles family member operations.
type MemberHandler struct {
	service *services.MemberService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(service *services.MemberService) *MemberHandler {
	return &MemberHandler{
		service: service,
	}
}

// HandleAdd creates a member together with its hinted relationships.
func (h *MemberHandler) HandleAdd(ctx context.Context, in services.MemberInput) (*services.MemberResult, error) {
	return h.service.Create(ctx, in)
}

// HandleGet returns one member.
func (h *MemberHandler) HandleGet(ctx context.Context, id string) (*entities.Person, error) {
	return h.service.Get(ctx, id)
}

// HandleList lists members ordered by name, or searches by name when query
// is set.
func (h *MemberHandler) HandleList(ctx context.Context, query string, limit, offset int) ([]*entities.Person, error) {
	if q := strings.TrimSpace(query); q != "" {
		return h.service.Search(ctx, q, limit)
	}
	return h.service.List(ctx, limit, offset)
}

// HandleDelete removes a member and every relationship touching it.
func (h *MemberHandler) HandleDelete(ctx context.Context, id string) error {
	return h.service.Delete(ctx, id)
}

// HandleCount returns the number of members.
func (h *MemberHandler) HandleCount(ctx context.Context) (int, error) {
	return h.service.Count(ctx)
}

// ParseHints parses "category=id" pairs into relationship hints.
func ParseHints(pairs []string) (services.RelationshipHints, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	hints := make(services.RelationshipHints, len(pairs))
	for _, pair := range pairs {
		category, id, err := splitPair(pair)
		if err != nil {
			return nil, err
		}
		hints[category] = append(hints[category], id)
	}
	return hints, nil
}
