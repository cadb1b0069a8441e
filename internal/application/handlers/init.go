// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/kin-core/internal/domain/ports"
	"github.com/ersonp/kin-core/internal/infrastructure/config"
	embedder "github.com/ersonp/kin-core/internal/infrastructure/embedder/openai"
)

// InitHandler provisions a new family tree.
type InitHandler struct {
	db          ports.RelationalDB
	collections ports.CollectionManager
}

// NewInitHandler creates a new init handler. collections may be nil when
// the kinship index is disabled.
func NewInitHandler(db ports.RelationalDB, collections ports.CollectionManager) *InitHandler {
	return &InitHandler{
		db:          db,
		collections: collections,
	}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath  string
	Tree        string
	Collection  string
	Initialized bool
}

// Handle writes the default config if needed, creates the tree's schema
// and search collection, and registers the tree.
func (h *InitHandler) Handle(ctx context.Context, basePath, tree, description string) (*InitResult, error) {
	if strings.TrimSpace(tree) == "" {
		return nil, errors.New("tree name is required")
	}

	result := &InitResult{
		ConfigPath: config.ConfigFilePath(basePath),
		Tree:       tree,
		Collection: config.GenerateCollectionName(tree),
	}

	if !config.Exists(basePath) {
		if err := config.WriteDefault(basePath); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}
		result.Initialized = true
	}

	trees, err := config.LoadTrees(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading trees: %w", err)
	}
	if trees.Exists(tree) {
		return nil, fmt.Errorf("tree %q already exists", tree)
	}

	if err := h.db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if h.collections != nil {
		if err := h.collections.EnsureCollection(ctx, embedder.VectorSize); err != nil {
			return nil, fmt.Errorf("creating collection: %w", err)
		}
	}

	trees.Add(tree, config.TreeEntry{Collection: result.Collection, Description: description})
	if err := trees.Save(basePath); err != nil {
		return nil, fmt.Errorf("saving trees: %w", err)
	}

	return result, nil
}
