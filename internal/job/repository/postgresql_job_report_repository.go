// Package repository implements data persistence for job reports.
//
// Provides PostgreSQL and MySQL implementations with transaction support
// via database.GetTx(). PostgreSQL uses native UUID and JSONB/BYTEA types,
// MySQL uses BINARY(16), JSON, and BLOB types.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	jobDomain "github.com/allisson/jobcrypt/internal/job/domain"

	"github.com/allisson/jobcrypt/internal/database"
	apperrors "github.com/allisson/jobcrypt/internal/errors"
)

// PostgreSQLJobReportRepository implements job report persistence for PostgreSQL.
type PostgreSQLJobReportRepository struct {
	db *sql.DB
}

// NewPostgreSQLJobReportRepository creates a new PostgreSQL job report repository.
func NewPostgreSQLJobReportRepository(db *sql.DB) *PostgreSQLJobReportRepository {
	return &PostgreSQLJobReportRepository{db: db}
}

// Create inserts a new job report into the PostgreSQL database.
func (p *PostgreSQLJobReportRepository) Create(ctx context.Context, report *jobDomain.JobReport) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO job_reports
		(id, name, status, task_count, completed_task_count, date_created, date_modified, started_at, finished_at, metadata, seed)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		report.ID,
		report.Name,
		int(report.Status),
		report.TaskCount,
		report.CompletedTaskCount,
		report.CreatedAt,
		report.StartedAt,
		report.FinishedAt,
		report.Metadata,
		report.Seed,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create job report")
	}
	return nil
}

// Update modifies an existing job report in the PostgreSQL database.
func (p *PostgreSQLJobReportRepository) Update(ctx context.Context, report *jobDomain.JobReport) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE job_reports
		SET status = $1,
			task_count = $2,
			completed_task_count = $3,
			date_modified = now(),
			started_at = $4,
			finished_at = $5,
			metadata = $6,
			seed = $7
		WHERE id = $8`

	_, err := querier.ExecContext(
		ctx,
		query,
		int(report.Status),
		report.TaskCount,
		report.CompletedTaskCount,
		report.StartedAt,
		report.FinishedAt,
		report.Metadata,
		report.Seed,
		report.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update job report")
	}
	return nil
}

// Get retrieves a job report by id.
func (p *PostgreSQLJobReportRepository) Get(ctx context.Context, id uuid.UUID) (*jobDomain.JobReport, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, status, task_count, completed_task_count, date_created, started_at, finished_at, metadata, seed
		FROM job_reports WHERE id = $1`

	row := querier.QueryRowContext(ctx, query, id)
	report, err := scanJobReport(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, jobDomain.ErrJobNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get job report")
	}
	return report, nil
}

// GetActive retrieves every job report whose status is Queued, Running, or Paused.
func (p *PostgreSQLJobReportRepository) GetActive(ctx context.Context) ([]*jobDomain.JobReport, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, status, task_count, completed_task_count, date_created, started_at, finished_at, metadata, seed
		FROM job_reports
		WHERE status IN ($1, $2, $3)
		ORDER BY date_created ASC`

	rows, err := querier.QueryContext(ctx, query,
		int(jobDomain.JobStatusQueued), int(jobDomain.JobStatusRunning), int(jobDomain.JobStatusPaused))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active job reports")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanJobReportRows(rows)
}
