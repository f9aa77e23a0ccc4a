package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimetableRunStatus represents lifecycle phases for saved allocation runs.
type TimetableRunStatus string

const (
	TimetableRunStatusDraft     TimetableRunStatus = "DRAFT"
	TimetableRunStatusPublished TimetableRunStatus = "PUBLISHED"
	TimetableRunStatusArchived  TimetableRunStatus = "ARCHIVED"
)

// TimetableRun is a versioned, persisted allocation result for a project.
type TimetableRun struct {
	ID        string             `db:"id" json:"id"`
	ProjectID string             `db:"project_id" json:"project_id"`
	Version   int                `db:"version" json:"version"`
	Status    TimetableRunStatus `db:"status" json:"status"`
	Entries   TimetableEntries   `db:"entries" json:"entries"`
	Conflicts ConflictList       `db:"conflicts" json:"conflicts"`
	Meta      types.JSONText     `db:"meta" json:"meta"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt time.Time          `db:"updated_at" json:"updated_at"`
}
