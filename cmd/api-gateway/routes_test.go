package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/handler"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
)

func newTestRouter(t *testing.T) (*gin.Engine, *service.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService(service.TokenConfig{Secret: "test-secret", Issuer: "test"}, nil)
	r := gin.New()
	registerRoutes(r.Group("/api/v1"), routeDeps{
		tokens:     tokens,
		projects:   handler.NewProjectHandler(service.NewProjectService(nil, nil, nil, nil, nil)),
		timetables: handler.NewTimetableHandler(service.NewTimetableService(nil, nil, nil, nil, nil, nil, nil, service.TimetableServiceConfig{})),
		metrics:    handler.NewMetricsHandler(service.NewMetricsService(), nil),
	})
	return r, tokens
}

func authorised(t *testing.T, tokens *service.TokenService, role models.UserRole, req *http.Request) *http.Request {
	t.Helper()
	issued, err := tokens.Issue("user-1", role, time.Minute)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+issued.Token)
	return req
}

func TestRoutesRequireToken(t *testing.T) {
	r, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutesEnforceRoles(t *testing.T) {
	r, tokens := newTestRouter(t)

	w := httptest.NewRecorder()
	req := authorised(t, tokens, models.RoleViewer, httptest.NewRequest(http.MethodPost, "/api/v1/projects", strings.NewReader(`{}`)))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = authorised(t, tokens, models.RoleViewer, httptest.NewRequest(http.MethodDelete, "/api/v1/projects/p1", nil))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = authorised(t, tokens, models.RoleViewer, httptest.NewRequest(http.MethodGet, "/api/v1/templates/rooms", nil))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ID,Building,Capacity,Specialty")
}

func TestRoutesPreviewAllocatesWithoutStorage(t *testing.T) {
	r, tokens := newTestRouter(t)

	body := `{"payload":{"structure":{"uniform":true,"days":["Mon"],"periods":["Period 1","Period 2"]},
		"teachers":[{"id":"T1"}],"subjects":[{"id":"MATH"}],
		"classes":[{"id":"C1","teacher_id":"T1","subject_id":"MATH","occurrences_needed":2,"mode":"RELAXED"}]}}`
	w := httptest.NewRecorder()
	req := authorised(t, tokens, models.RoleViewer, httptest.NewRequest(http.MethodPost, "/api/v1/timetables/preview", strings.NewReader(body)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"placements":2`)
}

func TestExportRoutesAbsentWhenDisabled(t *testing.T) {
	r, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/exports/download/abc", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
