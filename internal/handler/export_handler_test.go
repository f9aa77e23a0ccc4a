package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type exportServiceMock struct {
	actor       string
	format      models.ExportFormat
	download    *service.ExportDownload
	downloadErr error
}

func (m *exportServiceMock) CreateJob(ctx context.Context, runID string, req dto.ExportTimetableRequest, actorID string) (*dto.ExportJobResponse, error) {
	m.actor = actorID
	m.format = req.Format
	return &dto.ExportJobResponse{ID: "job-1", RunID: runID, Format: req.Format, Status: models.ExportStatusQueued}, nil
}

func (m *exportServiceMock) Status(ctx context.Context, jobID string) (*dto.ExportJobResponse, error) {
	if jobID != "job-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return &dto.ExportJobResponse{ID: jobID, Status: models.ExportStatusFinished, Progress: 100}, nil
}

func (m *exportServiceMock) ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error) {
	return m.download, m.downloadErr
}

func TestExportHandlerCreate(t *testing.T) {
	mockSvc := &exportServiceMock{}
	handler := NewExportHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/timetables/run-1/export", []byte(`{"format":"pdf"}`))
	c.Params = gin.Params{{Key: "id", Value: "run-1"}}
	claims := &models.JWTClaims{Role: models.RoleOperator}
	claims.Subject = "operator-1"
	c.Set(middleware.ContextUserKey, claims)
	handler.Create(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "operator-1", mockSvc.actor)
	assert.Equal(t, models.ExportFormatPDF, mockSvc.format)
}

func TestExportHandlerStatus(t *testing.T) {
	handler := NewExportHandler(&exportServiceMock{})

	c, w := newGinContext(http.MethodGet, "/exports/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}
	handler.Status(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = newGinContext(http.MethodGet, "/exports/job-2", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-2"}}
	handler.Status(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportHandlerDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timetable.csv")
	require.NoError(t, os.WriteFile(path, []byte("Day,Period\n"), 0o600))
	file, err := os.Open(path)
	require.NoError(t, err)

	handler := NewExportHandler(&exportServiceMock{
		download: &service.ExportDownload{File: file, Filename: "timetable.csv", Format: models.ExportFormatCSV},
	})
	c, w := newGinContext(http.MethodGet, "/exports/download/token", nil)
	c.Params = gin.Params{{Key: "token", Value: "token"}}
	handler.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "timetable.csv")
	assert.Equal(t, "Day,Period\n", w.Body.String())
}

func TestExportHandlerDownloadForbidden(t *testing.T) {
	handler := NewExportHandler(&exportServiceMock{downloadErr: appErrors.Clone(appErrors.ErrForbidden, "invalid download token")})
	c, w := newGinContext(http.MethodGet, "/exports/download/bad", nil)
	c.Params = gin.Params{{Key: "token", Value: "bad"}}
	handler.Download(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}
