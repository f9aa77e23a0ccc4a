package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const timetableRunColumns = "id, project_id, version, status, entries, conflicts, meta, created_at, updated_at"

// TimetableRunRepository persists versioned allocation runs per project.
type TimetableRunRepository struct {
	db *sqlx.DB
}

// NewTimetableRunRepository constructs repository.
func NewTimetableRunRepository(db *sqlx.DB) *TimetableRunRepository {
	return &TimetableRunRepository{db: db}
}

func (r *TimetableRunRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a run assigning the next version for its project.
func (r *TimetableRunRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, run *models.TimetableRun) error {
	if run == nil {
		return fmt.Errorf("timetable run payload is nil")
	}
	if run.ProjectID == "" {
		return fmt.Errorf("project_id is required")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = models.TimetableRunStatusDraft
	}
	if run.Entries == nil {
		run.Entries = models.TimetableEntries{}
	}
	if run.Conflicts == nil {
		run.Conflicts = models.ConflictList{}
	}
	if len(run.Meta) == 0 {
		run.Meta = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM timetable_runs WHERE project_id = $1`
	if err := sqlx.GetContext(ctx, target, &run.Version, nextVersionQuery, run.ProjectID); err != nil {
		return fmt.Errorf("compute next timetable run version: %w", err)
	}

	const insertQuery = `
INSERT INTO timetable_runs (id, project_id, version, status, entries, conflicts, meta, created_at, updated_at)
VALUES (:id, :project_id, :version, :status, :entries, :conflicts, :meta, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, run); err != nil {
		return fmt.Errorf("insert timetable run: %w", translatePQError(err))
	}
	return nil
}

// ListByProject returns all runs of a project, newest version first.
func (r *TimetableRunRepository) ListByProject(ctx context.Context, projectID string) ([]models.TimetableRun, error) {
	query := "SELECT " + timetableRunColumns + " FROM timetable_runs WHERE project_id = $1 ORDER BY version DESC"
	var runs []models.TimetableRun
	if err := r.db.SelectContext(ctx, &runs, query, projectID); err != nil {
		return nil, fmt.Errorf("list timetable runs: %w", err)
	}
	return runs, nil
}

// FindByID loads a run by its identifier.
func (r *TimetableRunRepository) FindByID(ctx context.Context, id string) (*models.TimetableRun, error) {
	query := "SELECT " + timetableRunColumns + " FROM timetable_runs WHERE id = $1"
	var run models.TimetableRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// FindPublished returns the published run of a project, if any.
func (r *TimetableRunRepository) FindPublished(ctx context.Context, exec sqlx.ExtContext, projectID string) (*models.TimetableRun, error) {
	query := "SELECT " + timetableRunColumns + " FROM timetable_runs WHERE project_id = $1 AND status = $2 ORDER BY version DESC LIMIT 1"
	var run models.TimetableRun
	if err := sqlx.GetContext(ctx, r.exec(exec), &run, query, projectID, models.TimetableRunStatusPublished); err != nil {
		return nil, err
	}
	return &run, nil
}

// UpdateStatus changes the lifecycle status of a run.
func (r *TimetableRunRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableRunStatus) error {
	const query = `UPDATE timetable_runs SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update timetable run status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable run status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a stored run.
func (r *TimetableRunRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM timetable_runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete timetable run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable run rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
