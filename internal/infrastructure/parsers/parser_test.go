package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kin-core/internal/domain/entities"
)

func TestJSONParser_Parse_ValidInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []RawIntent
	}{
		{
			name:  "existing member",
			input: `[{"category": "parents", "existingPersonId": "jerry"}]`,
			expected: []RawIntent{
				{Intent: entities.Intent{Category: entities.CategoryParents, ExistingPersonID: "jerry"}, LineNum: 1},
			},
		},
		{
			name:  "batch object",
			input: `{"intents": [{"id": "i-1", "category": "children", "newPersonAttributes": {"firstName": "Haylee", "lastName": "Lee"}}]}`,
			expected: []RawIntent{
				{Intent: entities.Intent{
					ID:        "i-1",
					Category:  entities.CategoryChildren,
					NewPerson: &entities.PersonAttributes{FirstName: "Haylee", LastName: "Lee"},
				}, LineNum: 1},
			},
		},
		{
			name:     "empty array",
			input:    "[]",
			expected: []RawIntent{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &JSONParser{}
			result, err := parser.Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestJSONParser_Parse_InvalidInput(t *testing.T) {
	parser := &JSONParser{}
	_, err := parser.Parse(strings.NewReader("not json"))
	require.Error(t, err)

	_, err = parser.Parse(strings.NewReader(`{"intents": 3}`))
	require.Error(t, err)
}

func TestCSVParser_Parse_ValidInput(t *testing.T) {
	input := `category,existing_person_id,first_name,last_name,birth_date,is_alive,notes
parents,jerry,,,,,
children,,Haylee,Lee,2010-04-02,true,eldest
spouse,,Mira,Lee,,false,`

	parser := &CSVParser{}
	result, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result, 3)

	assert.Equal(t, entities.CategoryParents, result[0].Category)
	assert.Equal(t, "jerry", result[0].ExistingPersonID)
	assert.Nil(t, result[0].NewPerson)
	assert.Equal(t, 2, result[0].LineNum)

	child := result[1]
	require.NotNil(t, child.NewPerson)
	assert.Equal(t, "Haylee", child.NewPerson.FirstName)
	assert.Equal(t, "2010-04-02", child.NewPerson.BirthDate)
	require.NotNil(t, child.NewPerson.IsAlive)
	assert.True(t, *child.NewPerson.IsAlive)
	assert.Equal(t, "eldest", child.Notes)
	assert.Equal(t, 3, child.LineNum)

	require.NotNil(t, result[2].NewPerson.IsAlive)
	assert.False(t, *result[2].NewPerson.IsAlive)
}

func TestCSVParser_Parse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{
			name:   "missing category column",
			input:  "first_name,last_name\nA,B",
			errMsg: "missing required column: category",
		},
		{
			name:   "no target columns",
			input:  "category,notes\nparents,x",
			errMsg: "existing_person_id or first_name",
		},
		{
			name:   "bad is_alive",
			input:  "category,first_name,is_alive\nchildren,A,maybe",
			errMsg: "line 2: invalid is_alive",
		},
		{
			name:   "empty input",
			input:  "",
			errMsg: "reading CSV header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&CSVParser{}).Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestForFile(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFile("intents.json"))
	assert.IsType(t, &CSVParser{}, ForFile("intents.CSV"))
	assert.Nil(t, ForFile("intents.txt"))
	assert.Nil(t, ForFormat("xml"))
}

func TestIntents(t *testing.T) {
	raw := []RawIntent{{Intent: entities.Intent{Category: entities.CategorySpouse}, LineNum: 4}}
	assert.Equal(t, []entities.Intent{{Category: entities.CategorySpouse}}, Intents(raw))
}
