package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	jobDomain "github.com/allisson/jobcrypt/internal/job/domain"

	"github.com/allisson/jobcrypt/internal/database"
	apperrors "github.com/allisson/jobcrypt/internal/errors"
)

// MySQLJobReportRepository implements job report persistence for MySQL.
//
// MySQL has no native UUID type, so id is stored as BINARY(16) and
// marshaled/unmarshaled via uuid.MarshalBinary()/uuid.UnmarshalBinary().
type MySQLJobReportRepository struct {
	db *sql.DB
}

// NewMySQLJobReportRepository creates a new MySQL job report repository.
func NewMySQLJobReportRepository(db *sql.DB) *MySQLJobReportRepository {
	return &MySQLJobReportRepository{db: db}
}

// Create inserts a new job report into the MySQL database.
func (m *MySQLJobReportRepository) Create(ctx context.Context, report *jobDomain.JobReport) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := report.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal job report id")
	}

	query := `INSERT INTO job_reports
		(id, name, status, task_count, completed_task_count, date_created, date_modified, started_at, finished_at, metadata, seed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		report.Name,
		int(report.Status),
		report.TaskCount,
		report.CompletedTaskCount,
		report.CreatedAt,
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

// Update modifies an existing job report in the MySQL database.
func (m *MySQLJobReportRepository) Update(ctx context.Context, report *jobDomain.JobReport) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := report.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal job report id")
	}

	query := `UPDATE job_reports
		SET status = ?,
			task_count = ?,
			completed_task_count = ?,
			date_modified = now(),
			started_at = ?,
			finished_at = ?,
			metadata = ?,
			seed = ?
		WHERE id = ?`

	_, err = querier.ExecContext(
		ctx,
		query,
		int(report.Status),
		report.TaskCount,
		report.CompletedTaskCount,
		report.StartedAt,
		report.FinishedAt,
		report.Metadata,
		report.Seed,
		idBytes,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update job report")
	}
	return nil
}

// Get retrieves a job report by id.
func (m *MySQLJobReportRepository) Get(ctx context.Context, id uuid.UUID) (*jobDomain.JobReport, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal job report id")
	}

	query := `SELECT id, name, status, task_count, completed_task_count, date_created, started_at, finished_at, metadata, seed
		FROM job_reports WHERE id = ?`

	row := querier.QueryRowContext(ctx, query, idBytes)
	report, err := scanMySQLJobReport(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, jobDomain.ErrJobNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get job report")
	}
	return report, nil
}

// GetActive retrieves every job report whose status is Queued, Running, or Paused.
func (m *MySQLJobReportRepository) GetActive(ctx context.Context) ([]*jobDomain.JobReport, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, status, task_count, completed_task_count, date_created, started_at, finished_at, metadata, seed
		FROM job_reports
		WHERE status IN (?, ?, ?)
		ORDER BY date_created ASC`

	rows, err := querier.QueryContext(ctx, query,
		int(jobDomain.JobStatusQueued), int(jobDomain.JobStatusRunning), int(jobDomain.JobStatusPaused))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active job reports")
	}
	defer func() {
		_ = rows.Close()
	}()

	var reports []*jobDomain.JobReport
	for rows.Next() {
		report, err := scanMySQLJobReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

// scanMySQLJobReport reads one row with id as BINARY(16), unmarshaling it
// back into a uuid.UUID; every other column matches scanJobReport's order.
func scanMySQLJobReport(row rowScanner) (*jobDomain.JobReport, error) {
	var report jobDomain.JobReport
	var status int
	var idBytes []byte

	err := row.Scan(
		&idBytes,
		&report.Name,
		&status,
		&report.TaskCount,
		&report.CompletedTaskCount,
		&report.CreatedAt,
		&report.StartedAt,
		&report.FinishedAt,
		&report.Metadata,
		&report.Seed,
	)
	if err != nil {
		return nil, err
	}

	if err := report.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal job report id")
	}
	report.Status = jobDomain.JobStatus(status)
	return &report, nil
}
