package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ersonp/kin-core/internal/domain/entities"
	"github.com/ersonp/kin-core/internal/domain/services"
	"github.com/ersonp/kin-core/internal/infrastructure/parsers"
)

// MaterializeHandler applies batches of relationship intents.
type MaterializeHandler struct {
	materializer *services.Materializer
}

// NewMaterializeHandler creates a new MaterializeHandler.
func NewMaterializeHandler(materializer *services.Materializer) *MaterializeHandler {
	return &MaterializeHandler{
		materializer: materializer,
	}
}

// MaterializeOptions collects intents from a file and from flags.
type MaterializeOptions struct {
	File     string   // Path to a JSON or CSV intents file
	Format   string   // "json", "csv", or "auto"
	Existing []string // "category=personId"
	New      []string // "category=First [Middle] Last"
}

// Handle gathers the intents described by opts and applies them against focalID.
func (h *MaterializeHandler) Handle(ctx context.Context, focalID string, opts MaterializeOptions) (*entities.BatchResult, error) {
	var intents []entities.Intent

	if opts.File != "" {
		raw, err := readIntentFile(opts.File, opts.Format)
		if err != nil {
			return nil, err
		}
		intents = append(intents, parsers.Intents(raw)...)
	}

	for _, pair := range opts.Existing {
		category, id, err := splitPair(pair)
		if err != nil {
			return nil, err
		}
		intents = append(intents, entities.Intent{Category: category, ExistingPersonID: id})
	}

	for _, pair := range opts.New {
		category, name, err := splitPair(pair)
		if err != nil {
			return nil, err
		}
		attrs, err := ParseName(name)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", pair, err)
		}
		intents = append(intents, entities.Intent{Category: category, NewPerson: attrs})
	}

	if len(intents) == 0 {
		return nil, fmt.Errorf("%w: no intents given", entities.ErrValidation)
	}

	return h.HandleBatch(ctx, entities.BatchRequest{FocalID: focalID, Intents: intents})
}

// HandleBatch applies a prepared batch.
func (h *MaterializeHandler) HandleBatch(ctx context.Context, req entities.BatchRequest) (*entities.BatchResult, error) {
	return h.materializer.Apply(ctx, req)
}

func readIntentFile(path, format string) ([]parsers.RawIntent, error) {
	var parser parsers.Parser
	if format == "" || format == "auto" {
		parser = parsers.ForFile(path)
	} else {
		parser = parsers.ForFormat(format)
	}
	if parser == nil {
		return nil, fmt.Errorf("unsupported format for file: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	raw, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}
	return raw, nil
}

// splitPair parses "category=value".
func splitPair(pair string) (entities.Category, string, error) {
	key, value, ok := strings.Cut(pair, "=")
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return "", "", fmt.Errorf("%w: expected category=value, got %q", entities.ErrValidation, pair)
	}
	category, err := entities.ParseCategory(strings.TrimSpace(key))
	if err != nil {
		return "", "", err
	}
	return category, value, nil
}

// ParseName splits "First [Middle...] Last" into person attributes.
func ParseName(name string) (*entities.PersonAttributes, error) {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: need at least a first and last name", entities.ErrValidation)
	}
	return &entities.PersonAttributes{
		FirstName:  parts[0],
		MiddleName: strings.Join(parts[1:len(parts)-1], " "),
		LastName:   parts[len(parts)-1],
	}, nil
}
