package models

import "strings"

// Teacher represents an instructor on the roster.
type Teacher struct {
	ID            string `json:"id" validate:"required"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Title         string `json:"title,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	MiddleName    string `json:"middle_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	PreferredName string `json:"preferred_name,omitempty"`
	Department1   string `json:"department1,omitempty"`
	Department2   string `json:"department2,omitempty"`
}

// DisplayName prefers the preferred name, then title + first/last, then the ID.
func (t Teacher) DisplayName() string {
	first := t.FirstName
	if t.PreferredName != "" {
		first = t.PreferredName
	}
	parts := make([]string, 0, 3)
	for _, part := range []string{t.Title, first, t.LastName} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, strings.TrimSpace(part))
		}
	}
	if len(parts) == 0 {
		return t.ID
	}
	return strings.Join(parts, " ")
}
