package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
	"github.com/noah-isme/sma-timetable-api/pkg/storage"
)

// ExportJobType is the queue job type used for timetable exports.
const ExportJobType = "timetable_export"

var exportHeaders = []string{"Day", "Period", "Classes", "Teachers", "Rooms"}

type exportRunReader interface {
	FindByID(ctx context.Context, id string) (*models.TimetableRun, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title, subtitle string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix       string
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ExportFormat
	ExpiresAt time.Time
}

type exportRecord struct {
	job       models.ExportJob
	relPath   string
	token     string
	expiresAt time.Time
}

// ExportService renders saved timetable runs into CSV or PDF files on a
// background queue and hands out signed download links. Job state lives in
// memory and does not survive a restart.
type ExportService struct {
	runs      exportRunReader
	storage   fileStorage
	signer    *storage.SignedURLSigner
	csv       csvRenderer
	pdf       pdfRenderer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig

	mu    sync.RWMutex
	queue jobDispatcher
	jobs  map[string]*exportRecord
	now   func() time.Time
}

// NewExportService constructs an ExportService. Call AttachQueue before CreateJob.
func NewExportService(runs exportRunReader, files fileStorage, signer *storage.SignedURLSigner, metrics *MetricsService, logger *zap.Logger, cfg ExportConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &ExportService{
		runs:      runs,
		storage:   files,
		signer:    signer,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		metrics:   metrics,
		validator: validator.New(),
		logger:    logger,
		cfg:       cfg,
		jobs:      make(map[string]*exportRecord),
		now:       time.Now,
	}
}

// AttachQueue sets the dispatcher jobs are pushed to.
func (s *ExportService) AttachQueue(queue jobDispatcher) {
	s.mu.Lock()
	s.queue = queue
	s.mu.Unlock()
}

// CreateJob checks the run exists, records a queued job and dispatches it.
func (s *ExportService) CreateJob(ctx context.Context, runID string, req dto.ExportTimetableRequest, actorID string) (*dto.ExportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	if _, err := s.runs.FindByID(ctx, runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	record := &exportRecord{job: models.ExportJob{
		ID:        uuid.NewString(),
		RunID:     runID,
		Format:    req.Format,
		Status:    models.ExportStatusQueued,
		CreatedBy: actorID,
		CreatedAt: s.now().UTC(),
	}}
	s.mu.Lock()
	s.jobs[record.job.ID] = record
	queue := s.queue
	s.mu.Unlock()

	if queue == nil {
		s.fail(record.job.ID, "export queue unavailable")
		return nil, appErrors.Clone(appErrors.ErrInternal, "export queue unavailable")
	}
	if err := queue.Enqueue(jobs.Job{ID: record.job.ID, Type: ExportJobType}); err != nil {
		s.fail(record.job.ID, "failed to enqueue job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return s.Status(ctx, record.job.ID)
}

// Status reports the current state of a job.
func (s *ExportService) Status(ctx context.Context, jobID string) (*dto.ExportJobResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.jobs[jobID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return record.response(), nil
}

// ResolveDownload validates a download token and opens the stored file.
func (s *ExportService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	claims, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	s.mu.RLock()
	record, ok := s.jobs[claims.JobID]
	var snapshot exportRecord
	if ok {
		snapshot = *record
	}
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	if snapshot.token != token || snapshot.relPath != claims.Path {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if snapshot.job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	file, err := s.storage.Open(claims.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ExportDownload{
		File:      file,
		Filename:  filepath.Base(claims.Path),
		Format:    snapshot.job.Format,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// Handle processes one queued export. It is the queue handler.
func (s *ExportService) Handle(ctx context.Context, job jobs.Job) error {
	record, ok := s.snapshot(job.ID)
	if !ok {
		s.logger.Warn("export job vanished", zap.String("job_id", job.ID))
		return nil
	}
	s.update(job.ID, func(r *exportRecord) {
		r.job.Status = models.ExportStatusProcessing
		r.job.Progress = 10
	})

	run, err := s.runs.FindByID(ctx, record.job.RunID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.fail(job.ID, "timetable no longer exists")
			return nil
		}
		return s.retry(job.ID, err)
	}
	s.update(job.ID, func(r *exportRecord) { r.job.Progress = 40 })

	payload, err := s.render(run, record.job.Format)
	if err != nil {
		s.fail(job.ID, err.Error())
		return nil
	}
	s.update(job.ID, func(r *exportRecord) { r.job.Progress = 70 })

	relPath, err := s.storage.Save(exportFilename(run, record.job.Format, s.now()), payload)
	if err != nil {
		return s.retry(job.ID, err)
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		_ = s.storage.Delete(relPath)
		return s.retry(job.ID, err)
	}

	url := fmt.Sprintf("%s/exports/download/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token)
	finished := s.now().UTC()
	s.update(job.ID, func(r *exportRecord) {
		r.job.Status = models.ExportStatusFinished
		r.job.Progress = 100
		r.job.ResultURL = &url
		r.job.ErrorMessage = nil
		r.job.FinishedAt = &finished
		r.relPath = relPath
		r.token = token
		r.expiresAt = expiresAt
	})
	s.metrics.ObserveExportJob(record.job.Format, models.ExportStatusFinished)
	s.logger.Info("export finished",
		zap.String("job_id", job.ID),
		zap.String("run_id", run.ID),
		zap.String("format", string(record.job.Format)),
		zap.String("path", relPath),
	)
	return nil
}

// HandleExhausted marks a job failed once the queue gives up retrying it.
func (s *ExportService) HandleExhausted(job jobs.Job, err error) {
	s.fail(job.ID, err.Error())
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ExportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}

// Cleanup drops jobs finished longer than the result TTL ago together with their files.
func (s *ExportService) Cleanup() int {
	cutoff := s.now().Add(-s.cfg.ResultTTL)
	var expired []exportRecord

	s.mu.Lock()
	for id, record := range s.jobs {
		if record.job.FinishedAt == nil || record.job.FinishedAt.After(cutoff) {
			continue
		}
		expired = append(expired, *record)
		delete(s.jobs, id)
	}
	s.mu.Unlock()

	for _, record := range expired {
		if record.relPath == "" {
			continue
		}
		if err := s.storage.Delete(record.relPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Sugar().Warnw("cleanup delete failed", "job_id", record.job.ID, "error", err)
		}
	}
	if _, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL); err != nil {
		s.logger.Sugar().Warnw("filesystem cleanup failed", "error", err)
	}
	return len(expired)
}

func (s *ExportService) render(run *models.TimetableRun, format models.ExportFormat) ([]byte, error) {
	meta, err := decodeRunMeta(run)
	if err != nil {
		return nil, err
	}
	dataset := buildExportDataset(run, meta)
	switch format {
	case models.ExportFormatCSV:
		return s.csv.Render(dataset)
	case models.ExportFormatPDF:
		title := fmt.Sprintf("Timetable v%d", run.Version)
		subtitle := fmt.Sprintf("Project %s - %s - %d conflicts", run.ProjectID, strings.ToLower(string(run.Status)), len(run.Conflicts))
		return s.pdf.Render(dataset, title, subtitle)
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

// buildExportDataset yields one row per slot with the teachers and rooms of its occupants.
func buildExportDataset(run *models.TimetableRun, meta runMeta) export.Dataset {
	classes := make(map[string]models.ClassRequest, len(meta.Classes))
	for _, c := range meta.Classes {
		classes[c.ID] = c
	}
	teachers := make(map[string]models.Teacher, len(meta.Teachers))
	for _, t := range meta.Teachers {
		teachers[t.ID] = t
	}

	rows := make([]map[string]string, 0, len(run.Entries))
	for _, entry := range run.Entries {
		var teacherNames, rooms []string
		for _, id := range entry.ClassIDs {
			class, ok := classes[id]
			if !ok {
				continue
			}
			name := class.TeacherID
			if t, ok := teachers[class.TeacherID]; ok {
				name = t.DisplayName()
			}
			teacherNames = appendUnique(teacherNames, name)
			if class.HasRoom() {
				rooms = appendUnique(rooms, class.RoomID)
			}
		}
		rows = append(rows, map[string]string{
			"Day":      entry.Day,
			"Period":   entry.Period,
			"Classes":  strings.Join(entry.ClassIDs, ", "),
			"Teachers": strings.Join(teacherNames, ", "),
			"Rooms":    strings.Join(rooms, ", "),
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

func appendUnique(values []string, v string) []string {
	if containsValue(values, v) {
		return values
	}
	return append(values, v)
}

func containsValue(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}

func exportFilename(run *models.TimetableRun, format models.ExportFormat, at time.Time) string {
	return fmt.Sprintf("timetable_%s_v%d_%s.%s", sanitizeFilename(run.ProjectID), run.Version, at.UTC().Format("20060102_150405"), format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) snapshot(jobID string) (exportRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.jobs[jobID]
	if !ok {
		return exportRecord{}, false
	}
	return *record, true
}

func (s *ExportService) update(jobID string, fn func(*exportRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.jobs[jobID]; ok {
		fn(record)
	}
}

// retry resets the job to queued and returns err so the queue schedules another attempt.
func (s *ExportService) retry(jobID string, err error) error {
	msg := err.Error()
	s.update(jobID, func(r *exportRecord) {
		r.job.Status = models.ExportStatusQueued
		r.job.Progress = 0
		r.job.ErrorMessage = &msg
	})
	return err
}

func (s *ExportService) fail(jobID, message string) {
	var format models.ExportFormat
	finished := s.now().UTC()
	s.update(jobID, func(r *exportRecord) {
		r.job.Status = models.ExportStatusFailed
		r.job.Progress = 100
		r.job.ErrorMessage = &message
		r.job.FinishedAt = &finished
		format = r.job.Format
	})
	if format != "" {
		s.metrics.ObserveExportJob(format, models.ExportStatusFailed)
	}
	s.logger.Warn("export failed", zap.String("job_id", jobID), zap.String("error", message))
}

func (r *exportRecord) response() *dto.ExportJobResponse {
	resp := &dto.ExportJobResponse{
		ID:         r.job.ID,
		RunID:      r.job.RunID,
		Format:     r.job.Format,
		Status:     r.job.Status,
		Progress:   r.job.Progress,
		CreatedAt:  r.job.CreatedAt,
		FinishedAt: r.job.FinishedAt,
	}
	if r.job.ResultURL != nil {
		resp.DownloadURL = *r.job.ResultURL
		expires := r.expiresAt
		resp.ExpiresAt = &expires
	}
	if r.job.ErrorMessage != nil {
		resp.ErrorMessage = *r.job.ErrorMessage
	}
	return resp
}
