package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

const allocationAlgorithm = "first_fit_v1"

type timetableProjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Project, error)
}

type timetableRunRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, run *models.TimetableRun) error
	ListByProject(ctx context.Context, projectID string) ([]models.TimetableRun, error)
	FindByID(ctx context.Context, id string) (*models.TimetableRun, error)
	FindPublished(ctx context.Context, exec sqlx.ExtContext, projectID string) (*models.TimetableRun, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableRunStatus) error
	Delete(ctx context.Context, id string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// TimetableServiceConfig governs proposal lifetime and input limits.
type TimetableServiceConfig struct {
	ProposalTTL time.Duration
	MaxClasses  int
	CacheTTL    time.Duration
}

// TimetableService runs allocation passes and manages saved timetable runs.
type TimetableService struct {
	projects  timetableProjectReader
	runs      timetableRunRepository
	tx        txProvider
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	store     *proposalStore
	cfg       TimetableServiceConfig
}

// NewTimetableService wires timetable dependencies. cache and metrics may be nil.
func NewTimetableService(
	projects timetableProjectReader,
	runs timetableRunRepository,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableServiceConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.MaxClasses <= 0 {
		cfg.MaxClasses = 500
	}
	return &TimetableService{
		projects:  projects,
		runs:      runs,
		tx:        tx,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		store:     newProposalStore(cfg.ProposalTTL),
		cfg:       cfg,
	}
}

// allocation is the outcome of one allocate + detect pass.
type allocation struct {
	structure  models.DayStructure
	teachers   []models.Teacher
	classes    []models.ClassRequest
	timetable  *scheduler.Timetable
	report     models.ConflictReport
	shortfalls []models.Shortfall
}

func (a allocation) stats() dto.TimetableStats {
	placements := 0
	for _, class := range a.classes {
		placements += a.timetable.PlacedCount(class.ID)
	}
	unmet := 0
	for _, s := range a.shortfalls {
		unmet += s.Missing
	}
	return dto.TimetableStats{
		Slots:         len(a.timetable.Slots()),
		OccupiedSlots: a.timetable.OccupiedCount(),
		Classes:       len(a.classes),
		Placements:    placements,
		Unmet:         unmet,
		Conflicts:     len(a.report.Conflicts),
	}
}

func (a allocation) response(proposalID, projectID string) *dto.TimetableResponse {
	return &dto.TimetableResponse{
		ProposalID: proposalID,
		ProjectID:  projectID,
		Entries:    a.timetable.Entries(),
		Conflicts:  a.report.Conflicts,
		Shortfalls: a.shortfalls,
		Stats:      a.stats(),
	}
}

// Preview allocates an inline roster without storing anything.
func (s *TimetableService) Preview(ctx context.Context, req dto.AllocateRequest) (*dto.TimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid allocation payload")
	}
	result, err := s.allocate("preview", req.Payload.ToModel())
	if err != nil {
		return nil, err
	}
	return result.response("", ""), nil
}

// Generate allocates the stored roster of a project and keeps the result as a proposal.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.TimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}
	project, err := s.loadProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	result, err := s.allocate("generate", project.Payload)
	if err != nil {
		return nil, err
	}

	proposal := timetableProposal{
		ProposalID:  uuid.NewString(),
		ProjectID:   project.ID,
		Result:      result,
		RequestedAt: time.Now(),
	}
	s.store.Save(proposal)
	s.logger.Info("timetable proposal generated",
		zap.String("proposal_id", proposal.ProposalID),
		zap.String("project_id", project.ID),
		zap.Int("conflicts", len(result.report.Conflicts)),
		zap.Int("shortfalls", len(result.shortfalls)),
	)
	return result.response(proposal.ProposalID, project.ID), nil
}

// Detect checks an externally supplied timetable against the roster of a project.
func (s *TimetableService) Detect(ctx context.Context, req dto.DetectConflictsRequest) (*dto.ConflictReportResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict detection payload")
	}
	project, err := s.loadProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	inputs, err := buildEngineInputs(project.Payload)
	if err != nil {
		return nil, err
	}
	timetable, err := scheduler.TimetableFromEntries(inputs.grid, req.Entries)
	if err != nil {
		return nil, err
	}
	report := scheduler.DetectConflicts(inputs.grid, inputs.registry, timetable)
	s.metrics.ObserveConflicts(report)

	counts := make(map[string]int, 3)
	for kind, n := range report.CountByKind() {
		counts[string(kind)] = n
	}
	return &dto.ConflictReportResponse{ProjectID: project.ID, Conflicts: report.Conflicts, Counts: counts}, nil
}

// Save persists a proposal as the next versioned run of its project. Publishing
// requires a conflict-free proposal and archives the previously published run.
func (s *TimetableService) Save(ctx context.Context, req dto.SaveTimetableRequest) (*models.TimetableRun, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save timetable payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if req.Publish && proposal.Result.report.HasConflicts() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "proposal contains unresolved conflicts")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	meta, err := encodeRunMeta(proposal)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timetable metadata")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	run := &models.TimetableRun{
		ProjectID: proposal.ProjectID,
		Status:    models.TimetableRunStatusDraft,
		Entries:   models.TimetableEntries(proposal.Result.timetable.Entries()),
		Conflicts: models.ConflictList(proposal.Result.report.Conflicts),
		Meta:      meta,
	}
	if err = s.runs.CreateVersioned(ctx, tx, run); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable run")
		return nil, err
	}

	var archivedID string
	if req.Publish {
		previous, findErr := s.runs.FindPublished(ctx, tx, proposal.ProjectID)
		switch {
		case findErr == nil:
			if err = s.runs.UpdateStatus(ctx, tx, previous.ID, models.TimetableRunStatusArchived); err != nil {
				err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive published timetable")
				return nil, err
			}
			archivedID = previous.ID
		case !errors.Is(findErr, sql.ErrNoRows):
			err = appErrors.Wrap(findErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load published timetable")
			return nil, err
		}
		if err = s.runs.UpdateStatus(ctx, tx, run.ID, models.TimetableRunStatusPublished); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish timetable")
			return nil, err
		}
		run.Status = models.TimetableRunStatusPublished
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable transaction")
		return nil, err
	}

	s.store.Delete(req.ProposalID)
	keys := []string{projectRunsCacheKey(run.ProjectID)}
	if archivedID != "" {
		keys = append(keys, runCacheKey(archivedID))
	}
	s.cache.Invalidate(ctx, keys...)
	s.logger.Info("timetable run saved",
		zap.String("run_id", run.ID),
		zap.String("project_id", run.ProjectID),
		zap.Int("version", run.Version),
		zap.String("status", string(run.Status)),
	)
	return run, nil
}

// List returns the saved runs of a project, newest first.
func (s *TimetableService) List(ctx context.Context, projectID string) ([]dto.TimetableRunSummary, error) {
	if _, err := s.loadProject(ctx, projectID); err != nil {
		return nil, err
	}
	var cached []dto.TimetableRunSummary
	if s.cache.Get(ctx, projectRunsCacheKey(projectID), &cached) {
		return cached, nil
	}
	runs, err := s.runs.ListByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable runs")
	}
	out := make([]dto.TimetableRunSummary, 0, len(runs))
	for _, run := range runs {
		out = append(out, dto.TimetableRunSummary{
			ID:        run.ID,
			ProjectID: run.ProjectID,
			Version:   run.Version,
			Status:    run.Status,
			Conflicts: len(run.Conflicts),
			CreatedAt: run.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	s.cache.Set(ctx, projectRunsCacheKey(projectID), out, s.cfg.CacheTTL)
	return out, nil
}

// Get returns a saved run, served from cache when possible.
func (s *TimetableService) Get(ctx context.Context, runID string) (*models.TimetableRun, error) {
	if runID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetable id is required")
	}
	var cached models.TimetableRun
	if s.cache.Get(ctx, runCacheKey(runID), &cached) {
		return &cached, nil
	}
	run, err := s.runs.FindByID(ctx, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	s.cache.Set(ctx, runCacheKey(runID), run, s.cfg.CacheTTL)
	return run, nil
}

// Delete removes a draft run.
func (s *TimetableService) Delete(ctx context.Context, runID string) error {
	run, err := s.runs.FindByID(ctx, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if run.Status != models.TimetableRunStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft timetables can be deleted")
	}
	if err := s.runs.Delete(ctx, runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	s.cache.Invalidate(ctx, runCacheKey(runID), projectRunsCacheKey(run.ProjectID))
	return nil
}

func (s *TimetableService) loadProject(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}
	return project, nil
}

func (s *TimetableService) allocate(source string, payload models.ProjectPayload) (allocation, error) {
	if len(payload.Classes) > s.cfg.MaxClasses {
		return allocation{}, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("%d class requests exceed the limit of %d", len(payload.Classes), s.cfg.MaxClasses))
	}
	inputs, err := buildEngineInputs(payload)
	if err != nil {
		return allocation{}, err
	}

	start := time.Now()
	classes := inputs.registry.Classes()
	timetable := scheduler.Allocate(inputs.grid, classes)
	report := scheduler.DetectConflicts(inputs.grid, inputs.registry, timetable)
	shortfalls := scheduler.Shortfalls(timetable, classes)
	s.metrics.ObserveAllocation(source, time.Since(start), report, shortfalls)

	return allocation{
		structure:  inputs.grid.Structure(),
		teachers:   inputs.registry.Teachers(),
		classes:    classes,
		timetable:  timetable,
		report:     report,
		shortfalls: shortfalls,
	}, nil
}

func runCacheKey(id string) string {
	return "run:" + id
}

func projectRunsCacheKey(projectID string) string {
	return "project:" + projectID + ":runs"
}

// projectCachePattern matches every cached value scoped to a project.
func projectCachePattern(projectID string) string {
	return "project:" + projectID + ":*"
}

// runMeta is stored alongside a run so it can be rendered without its project.
type runMeta struct {
	Algorithm   string                `json:"algorithm"`
	GeneratedAt time.Time             `json:"generated_at"`
	Structure   models.DayStructure   `json:"structure"`
	Stats       dto.TimetableStats    `json:"stats"`
	Shortfalls  []models.Shortfall    `json:"shortfalls"`
	Teachers    []models.Teacher      `json:"teachers"`
	Classes     []models.ClassRequest `json:"classes"`
}

func encodeRunMeta(p timetableProposal) (types.JSONText, error) {
	meta := runMeta{
		Algorithm:   allocationAlgorithm,
		GeneratedAt: p.RequestedAt.UTC(),
		Structure:   p.Result.structure,
		Stats:       p.Result.stats(),
		Shortfalls:  p.Result.shortfalls,
		Teachers:    p.Result.teachers,
		Classes:     p.Result.classes,
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	return types.JSONText(data), nil
}

func decodeRunMeta(run *models.TimetableRun) (runMeta, error) {
	var meta runMeta
	if len(run.Meta) == 0 {
		return meta, nil
	}
	if err := json.Unmarshal(run.Meta, &meta); err != nil {
		return runMeta{}, fmt.Errorf("decode timetable meta: %w", err)
	}
	return meta, nil
}

type timetableProposal struct {
	ProposalID  string
	ProjectID   string
	Result      allocation
	RequestedAt time.Time
}

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]timetableProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]timetableProposal),
	}
}

// Save stores proposal and drops every expired one, so proposals that are
// never saved as runs do not accumulate.
func (s *proposalStore) Save(proposal timetableProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.items {
		if time.Since(existing.RequestedAt) > s.ttl {
			delete(s.items, id)
		}
	}
	s.items[proposal.ProposalID] = proposal
}

func (s *proposalStore) Get(id string) (timetableProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return timetableProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return timetableProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
