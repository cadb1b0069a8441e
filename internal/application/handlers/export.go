package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/kin-core/internal/domain/entities"
	"github.com/ersonp/kin-core/internal/domain/services"
)

// ExportHandler dumps a tree's members and stored edges.
type ExportHandler struct {
	members       *services.MemberService
	relationships *services.RelationshipService
}

// NewExportHandler creates a new export handler.
func NewExportHandler(members *services.MemberService, relationships *services.RelationshipService) *ExportHandler {
	return &ExportHandler{
		members:       members,
		relationships: relationships,
	}
}

// Export is the full content of a tree.
type Export struct {
	Members       []*entities.Person      `json:"members"`
	Relationships []entities.Relationship `json:"relationships"`
}

// Handle reads up to limit members and limit relationships.
func (h *ExportHandler) Handle(ctx context.Context, limit int) (*Export, error) {
	members, err := h.members.List(ctx, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("exporting members: %w", err)
	}
	rels, err := h.relationships.List(ctx, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("exporting relationships: %w", err)
	}
	return &Export{Members: members, Relationships: rels}, nil
}
