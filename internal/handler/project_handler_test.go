package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

type projectServiceMock struct {
	created    dto.CreateProjectRequest
	createErr  error
	getErr     error
	importKind service.RosterKind
	importBody string
	replace    bool
	listQuery  dto.ProjectQuery
	deletedID  string
}

func (m *projectServiceMock) List(ctx context.Context, query dto.ProjectQuery) ([]models.Project, *models.Pagination, error) {
	m.listQuery = query
	return []models.Project{{ID: "p1", Name: "Term 1"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (m *projectServiceMock) Get(ctx context.Context, id string) (*models.Project, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &models.Project{ID: id, Name: "Term 1"}, nil
}

func (m *projectServiceMock) Create(ctx context.Context, req dto.CreateProjectRequest) (*models.Project, error) {
	m.created = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &models.Project{ID: "p1", Name: req.Name}, nil
}

func (m *projectServiceMock) Update(ctx context.Context, id string, req dto.UpdateProjectRequest) (*models.Project, error) {
	return &models.Project{ID: id, Name: req.Name}, nil
}

func (m *projectServiceMock) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	return nil
}

func (m *projectServiceMock) ImportRoster(ctx context.Context, projectID string, kind service.RosterKind, r io.Reader, replace bool) (*dto.ImportResult, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.importKind = kind
	m.importBody = string(body)
	m.replace = replace
	return &dto.ImportResult{Kind: string(kind), Imported: 1, Replaced: replace}, nil
}

func (m *projectServiceMock) Template(kind service.RosterKind) ([]byte, error) {
	return service.RosterTemplate(kind)
}

func TestProjectHandlerCreate(t *testing.T) {
	mockSvc := &projectServiceMock{}
	handler := NewProjectHandler(mockSvc)

	payload := []byte(`{"name":"Term 1","payload":{"structure":{"uniform":true,"periodCount":4}}}`)
	c, w := newGinContext(http.MethodPost, "/projects", payload)
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Term 1", mockSvc.created.Name)
	assert.Equal(t, 4, mockSvc.created.Payload.Structure.PeriodCount)
}

func TestProjectHandlerCreateErrors(t *testing.T) {
	handler := NewProjectHandler(&projectServiceMock{})
	c, w := newGinContext(http.MethodPost, "/projects", []byte(`{"name":`))
	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeErrorCode(t, w))

	handler = NewProjectHandler(&projectServiceMock{createErr: appErrors.Clone(appErrors.ErrDuplicateIdentifier, "duplicate teacher id T1")})
	c, w = newGinContext(http.MethodPost, "/projects", []byte(`{"name":"Term 1"}`))
	handler.Create(c)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, appErrors.ErrDuplicateIdentifier.Code, decodeErrorCode(t, w))
}

func TestProjectHandlerGetListDelete(t *testing.T) {
	mockSvc := &projectServiceMock{}
	handler := NewProjectHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/projects?search=term&page=2", nil)
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "term", mockSvc.listQuery.Search)
	assert.Equal(t, 2, mockSvc.listQuery.Page)
	assert.Contains(t, w.Body.String(), `"pagination"`)

	c, w = newGinContext(http.MethodDelete, "/projects/p1", nil)
	c.Params = gin.Params{{Key: "id", Value: "p1"}}
	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "p1", mockSvc.deletedID)

	mockSvc.getErr = appErrors.Clone(appErrors.ErrNotFound, "project not found")
	c, w = newGinContext(http.MethodGet, "/projects/p9", nil)
	c.Params = gin.Params{{Key: "id", Value: "p9"}}
	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectHandlerImport(t *testing.T) {
	mockSvc := &projectServiceMock{}
	handler := NewProjectHandler(mockSvc)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "rooms.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("ID,Building,Capacity,Specialty\nR1,Main,30,\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	c, w := newGinContext(http.MethodPost, "/projects/p1/import/rooms?replace=true", body.Bytes())
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	c.Params = gin.Params{{Key: "id", Value: "p1"}, {Key: "kind", Value: "rooms"}}
	handler.Import(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.RosterRooms, mockSvc.importKind)
	assert.True(t, mockSvc.replace)
	assert.Contains(t, mockSvc.importBody, "R1,Main,30")
}

func TestProjectHandlerImportRejectsBadInput(t *testing.T) {
	handler := NewProjectHandler(&projectServiceMock{})

	c, w := newGinContext(http.MethodPost, "/projects/p1/import/students", nil)
	c.Params = gin.Params{{Key: "id", Value: "p1"}, {Key: "kind", Value: "students"}}
	handler.Import(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newGinContext(http.MethodPost, "/projects/p1/import/rooms", nil)
	c.Params = gin.Params{{Key: "id", Value: "p1"}, {Key: "kind", Value: "rooms"}}
	handler.Import(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectHandlerTemplate(t *testing.T) {
	handler := NewProjectHandler(&projectServiceMock{})

	c, w := newGinContext(http.MethodGet, "/templates/classes", nil)
	c.Params = gin.Params{{Key: "kind", Value: "classes"}}
	handler.Template(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "classes_template.csv")
	assert.Contains(t, w.Body.String(), "ID,TeacherID,SubjectID,RoomID,Occurrences,Mode,PinnedSlots")
}
