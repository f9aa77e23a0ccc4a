package dto

import "github.com/noah-isme/sma-timetable-api/internal/models"

// AllocateRequest runs allocation over an inline grid and roster without persisting anything.
type AllocateRequest struct {
	Payload ProjectPayloadRequest `json:"payload"`
}

// GenerateTimetableRequest allocates the stored roster of a project.
type GenerateTimetableRequest struct {
	ProjectID string `json:"projectId" validate:"required"`
}

// DetectConflictsRequest checks an externally supplied timetable against a project.
type DetectConflictsRequest struct {
	ProjectID string                  `json:"projectId" validate:"required"`
	Entries   []models.TimetableEntry `json:"entries" validate:"required,dive"`
}

// SaveTimetableRequest persists a generated proposal as a versioned run.
type SaveTimetableRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
	Publish    bool   `json:"publish"`
}

// TimetableStats summarises one allocation pass.
type TimetableStats struct {
	Slots         int `json:"slots"`
	OccupiedSlots int `json:"occupiedSlots"`
	Classes       int `json:"classes"`
	Placements    int `json:"placements"`
	Unmet         int `json:"unmet"`
	Conflicts     int `json:"conflicts"`
}

// TimetableResponse is the result of an allocation pass.
type TimetableResponse struct {
	ProposalID string                  `json:"proposalId,omitempty"`
	ProjectID  string                  `json:"projectId,omitempty"`
	Entries    []models.TimetableEntry `json:"entries"`
	Conflicts  []models.Conflict       `json:"conflicts"`
	Shortfalls []models.Shortfall      `json:"shortfalls"`
	Stats      TimetableStats          `json:"stats"`
}

// ConflictReportResponse wraps a detection pass.
type ConflictReportResponse struct {
	ProjectID string            `json:"projectId"`
	Conflicts []models.Conflict `json:"conflicts"`
	Counts    map[string]int    `json:"counts"`
}

// TimetableRunSummary lists saved runs without their entries.
type TimetableRunSummary struct {
	ID        string                    `json:"id"`
	ProjectID string                    `json:"projectId"`
	Version   int                       `json:"version"`
	Status    models.TimetableRunStatus `json:"status"`
	Conflicts int                       `json:"conflicts"`
	CreatedAt string                    `json:"createdAt"`
}
