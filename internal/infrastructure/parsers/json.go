package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// JSONParser parses intents from JSON format. Both a bare array of intents
// and a batch object {"intents": [...]} are accepted.
type JSONParser struct{}

// Parse reads JSON from the reader and returns parsed intents.
func (p *JSONParser) Parse(r io.Reader) ([]RawIntent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading JSON: %w", err)
	}

	var intents []RawIntent
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var batch struct {
			Intents []RawIntent `json:"intents"`
		}
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		intents = batch.Intents
	} else if err := json.Unmarshal(trimmed, &intents); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	// Set line numbers (array index + 1, 1-indexed)
	for i := range intents {
		intents[i].LineNum = i + 1
	}

	return intents, nil
}
