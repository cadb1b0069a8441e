package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/kin-core/internal/domain/entities"
	"github.com/ersonp/kin-core/internal/domain/services"
)

// SearchHandler handles kinship index queries.
type SearchHandler struct {
	index *services.KinshipIndex
}

// NewSearchHandler creates a new search handler. A nil index makes every
// search fail with services.ErrIndexDisabled.
func NewSearchHandler(index *services.KinshipIndex) *SearchHandler {
	return &SearchHandler{
		index: index,
	}
}

// SearchResult contains the result of a search.
type SearchResult struct {
	Query string                         `json:"query"`
	Hits  []entities.IndexedRelationship `json:"hits"`
}

// Handle searches relationship sentences matching the query.
func (h *SearchHandler) Handle(ctx context.Context, query string, limit int) (*SearchResult, error) {
	hits, err := h.index.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching relationships: %w", err)
	}

	return &SearchResult{
		Query: query,
		Hits:  hits,
	}, nil
}
