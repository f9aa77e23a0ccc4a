package dto

import (
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// ExportTimetableRequest asks for a rendered copy of a saved run.
type ExportTimetableRequest struct {
	Format models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportJobResponse reports the state of an export job.
type ExportJobResponse struct {
	ID           string              `json:"id"`
	RunID        string              `json:"runId"`
	Format       models.ExportFormat `json:"format"`
	Status       models.ExportStatus `json:"status"`
	Progress     int                 `json:"progress"`
	DownloadURL  string              `json:"downloadUrl,omitempty"`
	ExpiresAt    *time.Time          `json:"expiresAt,omitempty"`
	ErrorMessage string              `json:"errorMessage,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	FinishedAt   *time.Time          `json:"finishedAt,omitempty"`
}
