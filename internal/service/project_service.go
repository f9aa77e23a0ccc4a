package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
)

type projectRepository interface {
	List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, int, error)
	FindByID(ctx context.Context, id string) (*models.Project, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id string) error
}

type projectRunLister interface {
	ListByProject(ctx context.Context, projectID string) ([]models.TimetableRun, error)
}

// ProjectService manages saved timetable projects and their rosters.
type ProjectService struct {
	repo      projectRepository
	runs      projectRunLister
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProjectService constructs a ProjectService. runs and cache may be nil.
func NewProjectService(repo projectRepository, runs projectRunLister, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ProjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{repo: repo, runs: runs, cache: cache, validator: validate, logger: logger}
}

// List returns projects plus pagination data.
func (s *ProjectService) List(ctx context.Context, query dto.ProjectQuery) ([]models.Project, *models.Pagination, error) {
	filter := models.ProjectFilter{
		Search:    strings.TrimSpace(query.Search),
		Page:      query.Page,
		PageSize:  query.PageSize,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	projects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return projects, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a project by id.
func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get project")
	}
	return project, nil
}

// Create validates the roster and stores a new project.
func (s *ProjectService) Create(ctx context.Context, req dto.CreateProjectRequest) (*models.Project, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid project payload")
	}
	name := strings.TrimSpace(req.Name)
	if err := s.ensureUniqueName(ctx, name, ""); err != nil {
		return nil, err
	}
	payload := req.Payload.ToModel()
	if _, err := buildEngineInputs(payload); err != nil {
		return nil, err
	}

	project := &models.Project{Name: name, Payload: payload}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, s.translateWriteError(err, "failed to create project")
	}
	s.logger.Sugar().Infow("project created", "id", project.ID, "name", project.Name, "classes", len(payload.Classes))
	return project, nil
}

// Update replaces the name and the whole payload of a project.
func (s *ProjectService) Update(ctx context.Context, id string, req dto.UpdateProjectRequest) (*models.Project, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid project payload")
	}
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name != project.Name {
		if err := s.ensureUniqueName(ctx, name, id); err != nil {
			return nil, err
		}
	}
	payload := req.Payload.ToModel()
	if _, err := buildEngineInputs(payload); err != nil {
		return nil, err
	}

	project.Name = name
	project.Payload = payload
	if err := s.repo.Update(ctx, project); err != nil {
		return nil, s.translateWriteError(err, "failed to update project")
	}
	return project, nil
}

// Delete removes a project together with its saved runs and their cache entries.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	var runKeys []string
	if s.runs != nil && s.cache.Enabled() {
		runs, err := s.runs.ListByProject(ctx, id)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list project timetables")
		}
		for _, run := range runs {
			runKeys = append(runKeys, runCacheKey(run.ID))
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete project")
	}
	if len(runKeys) > 0 {
		s.cache.Invalidate(ctx, runKeys...)
	}
	s.cache.InvalidatePattern(ctx, projectCachePattern(id))
	s.logger.Info("project deleted", zap.String("id", id), zap.Int("runs", len(runKeys)))
	return nil
}

// ImportRoster reads a roster CSV into the project. Rows are appended unless
// replace is set, then the whole project is re-validated before it is stored.
func (s *ProjectService) ImportRoster(ctx context.Context, projectID string, kind RosterKind, r io.Reader, replace bool) (*dto.ImportResult, error) {
	data, err := export.ReadCSV(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid csv upload")
	}
	project, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	payload := project.Payload
	imported := 0
	switch kind {
	case RosterTeachers:
		rows, err := parseTeacherRows(data)
		if err != nil {
			return nil, err
		}
		if err := validateRows(s.validator, RosterTeachers, rows); err != nil {
			return nil, err
		}
		payload.Teachers = mergeRows(payload.Teachers, rows, replace)
		imported = len(rows)
	case RosterSubjects:
		rows, err := parseSubjectRows(data)
		if err != nil {
			return nil, err
		}
		if err := validateRows(s.validator, RosterSubjects, rows); err != nil {
			return nil, err
		}
		payload.Subjects = mergeRows(payload.Subjects, rows, replace)
		imported = len(rows)
	case RosterRooms:
		rows, err := parseRoomRows(data)
		if err != nil {
			return nil, err
		}
		if err := validateRows(s.validator, RosterRooms, rows); err != nil {
			return nil, err
		}
		payload.Rooms = mergeRows(payload.Rooms, rows, replace)
		imported = len(rows)
	case RosterClasses:
		rows, err := parseClassRows(data)
		if err != nil {
			return nil, err
		}
		if err := validateRows(s.validator, RosterClasses, rows); err != nil {
			return nil, err
		}
		payload.Classes = mergeRows(payload.Classes, rows, replace)
		imported = len(rows)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown roster kind %q", kind))
	}

	if _, err := buildEngineInputs(payload); err != nil {
		return nil, err
	}
	project.Payload = payload
	if err := s.repo.Update(ctx, project); err != nil {
		return nil, s.translateWriteError(err, "failed to store imported roster")
	}
	s.logger.Info("roster imported",
		zap.String("project_id", projectID),
		zap.String("kind", string(kind)),
		zap.Int("rows", imported),
		zap.Bool("replace", replace),
	)
	return &dto.ImportResult{Kind: string(kind), Imported: imported, Replaced: replace}, nil
}

// Template renders the header-only CSV for a roster kind.
func (s *ProjectService) Template(kind RosterKind) ([]byte, error) {
	return RosterTemplate(kind)
}

func (s *ProjectService) ensureUniqueName(ctx context.Context, name, excludeID string) error {
	exists, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check project name")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("project %q already exists", name))
	}
	return nil
}

func (s *ProjectService) translateWriteError(err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrUniqueViolation):
		return appErrors.Clone(appErrors.ErrConflict, "project name already exists")
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "project not found")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
}

// validateRows applies the model validation tags to parsed CSV rows.
func validateRows[T any](validate *validator.Validate, kind RosterKind, rows []T) error {
	for i, row := range rows {
		if err := validate.Struct(row); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
				fmt.Sprintf("%s csv line %d: %v", kind, i+2, err))
		}
	}
	return nil
}

func mergeRows[T any](existing, rows []T, replace bool) []T {
	if replace {
		return rows
	}
	out := make([]T, 0, len(existing)+len(rows))
	out = append(out, existing...)
	return append(out, rows...)
}
