package models

import (
	"database/sql/driver"
	"time"
)

// Project is the saved state of one timetable workspace.
type Project struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Payload   ProjectPayload `db:"payload" json:"payload"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// ProjectPayload carries the grid declaration and the roster, stored as JSONB.
type ProjectPayload struct {
	Structure DayStructure   `json:"structure"`
	Teachers  []Teacher      `json:"teachers"`
	Subjects  []Subject      `json:"subjects"`
	Rooms     []Room         `json:"rooms"`
	Classes   []ClassRequest `json:"classes"`
}

// Value marshals the payload to JSON for persistence.
func (p ProjectPayload) Value() (driver.Value, error) {
	return marshalJSONColumn(p, "project payload")
}

// Scan unmarshals JSON payloads into the struct.
func (p *ProjectPayload) Scan(value interface{}) error {
	*p = ProjectPayload{}
	return scanJSONColumn(value, p, "project payload")
}

// ProjectFilter captures filtering options for listing projects.
type ProjectFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
