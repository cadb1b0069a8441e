package entities

import (
	"strings"
	"time"
)

// Person is a member of a family tree. The engine refers to people by ID;
// the remaining fields are carried for display and search.
type Person struct {
	ID         string     `json:"id"`
	FirstName  string     `json:"firstName"`
	MiddleName string     `json:"middleName,omitempty"`
	LastName   string     `json:"lastName"`
	Nickname   string     `json:"nickname,omitempty"`
	BirthDate  *time.Time `json:"birthDate,omitempty"`
	IsAlive    bool       `json:"isAlive"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// DisplayName returns "First Last", falling back to the nickname and then
// the ID when no name is set.
func (p *Person) DisplayName() string {
	name := strings.TrimSpace(strings.Join([]string{p.FirstName, p.LastName}, " "))
	if name != "" {
		return name
	}
	if p.Nickname != "" {
		return p.Nickname
	}
	return p.ID
}

// NormalizeName converts a name to lowercase for case-insensitive matching.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// PersonAttributes is the input shape for creating a person.
type PersonAttributes struct {
	FirstName  string `json:"firstName" validate:"required,max=100"`
	MiddleName string `json:"middleName,omitempty" validate:"max=100"`
	LastName   string `json:"lastName" validate:"required,max=100"`
	Nickname   string `json:"nickname,omitempty" validate:"max=100"`
	// BirthDate is formatted as YYYY-MM-DD.
	BirthDate string `json:"birthDate,omitempty"`
	// IsAlive defaults to true when omitted.
	IsAlive *bool `json:"isAlive,omitempty"`
}

// BirthDateLayout is the accepted birth date format.
const BirthDateLayout = "2006-01-02"
