package repository

import (
	"database/sql"

	jobDomain "github.com/allisson/jobcrypt/internal/job/domain"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows, letting
// scanJobReport serve Get (single row) and GetActive (row iteration).
type rowScanner interface {
	Scan(dest ...any) error
}

// scanJobReport reads one job_reports row in the column order every query
// in this package selects: id, name, status, task_count,
// completed_task_count, date_created, started_at, finished_at, metadata, seed.
func scanJobReport(row rowScanner) (*jobDomain.JobReport, error) {
	var report jobDomain.JobReport
	var status int

	err := row.Scan(
		&report.ID,
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
	report.Status = jobDomain.JobStatus(status)
	return &report, nil
}

func scanJobReportRows(rows *sql.Rows) ([]*jobDomain.JobReport, error) {
	var reports []*jobDomain.JobReport
	for rows.Next() {
		report, err := scanJobReport(rows)
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
