package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ersonp/kin-core/internal/domain/entities"
)

// CSVParser parses intents from CSV format.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed intents.
// Columns: category (required), id, existing_person_id, first_name,
// middle_name, last_name, nickname, birth_date, is_alive, notes.
// A row with existing_person_id links an existing member; otherwise the
// name columns describe a new one.
func (p *CSVParser) Parse(r io.Reader) ([]RawIntent, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}

	if _, ok := colIndex["category"]; !ok {
		return nil, fmt.Errorf("missing required column: category")
	}
	_, hasExisting := colIndex["existing_person_id"]
	_, hasFirst := colIndex["first_name"]
	if !hasExisting && !hasFirst {
		return nil, fmt.Errorf("need an existing_person_id or first_name column")
	}

	return colIndex, nil
}

// readRecords reads all data rows and converts them to RawIntents.
func (p *CSVParser) readRecords(reader *csv.Reader, colIndex map[string]int) ([]RawIntent, error) {
	var intents []RawIntent
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		intent, err := p.parseRecord(record, colIndex, lineNum)
		if err != nil {
			return nil, err
		}
		intents = append(intents, intent)
	}

	return intents, nil
}

// parseRecord converts a CSV record to a RawIntent.
func (p *CSVParser) parseRecord(record []string, colIndex map[string]int, lineNum int) (RawIntent, error) {
	intent := RawIntent{
		Intent: entities.Intent{
			ID:               getColumn(record, colIndex, "id"),
			Category:         entities.Category(getColumn(record, colIndex, "category")),
			ExistingPersonID: getColumn(record, colIndex, "existing_person_id"),
			Notes:            getColumn(record, colIndex, "notes"),
		},
		LineNum: lineNum,
	}

	if intent.ExistingPersonID != "" {
		return intent, nil
	}

	attrs := &entities.PersonAttributes{
		FirstName:  getColumn(record, colIndex, "first_name"),
		MiddleName: getColumn(record, colIndex, "middle_name"),
		LastName:   getColumn(record, colIndex, "last_name"),
		Nickname:   getColumn(record, colIndex, "nickname"),
		BirthDate:  getColumn(record, colIndex, "birth_date"),
	}
	if alive := getColumn(record, colIndex, "is_alive"); alive != "" {
		v, err := strconv.ParseBool(alive)
		if err != nil {
			return RawIntent{}, fmt.Errorf("line %d: invalid is_alive value %q: %w", lineNum, alive, err)
		}
		attrs.IsAlive = &v
	}
	intent.NewPerson = attrs

	return intent, nil
}

// getColumn safely retrieves a column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}
