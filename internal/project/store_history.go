package project

import (
	"context"
	"fmt"
)

// RecordJob appends a terminal job outcome to the project's history.
func (s *Store) RecordJob(ctx context.Context, rec JobRecord) error {
	if rec.ProjectID == 0 {
		return fmt.Errorf("job record requires a project")
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO job_history (project_id, job_id, stage, status, error_message, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ProjectID, rec.JobID, rec.Stage, rec.Status, rec.ErrorMessage,
		formatTime(rec.StartedAt), formatTime(rec.FinishedAt))
	if err != nil {
		return fmt.Errorf("insert job record: %w", err)
	}
	return nil
}

// JobHistory returns a project's terminal job outcomes, oldest first.
func (s *Store) JobHistory(ctx context.Context, projectID int64) ([]JobRecord, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, project_id, job_id, stage, status, error_message, started_at, finished_at
		 FROM job_history WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("load job history: %w", err)
	}
	defer rows.Close()

	var records []JobRecord
	for rows.Next() {
		var (
			rec                 JobRecord
			startedAt, finished string
		)
		err := rows.Scan(&rec.ID, &rec.ProjectID, &rec.JobID, &rec.Stage, &rec.Status,
			&rec.ErrorMessage, &startedAt, &finished)
		if err != nil {
			return nil, fmt.Errorf("scan job record: %w", err)
		}
		rec.StartedAt = parseTime(startedAt)
		rec.FinishedAt = parseTime(finished)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LastJob returns the most recent terminal outcome for a stage, or
// ErrNotFound when the stage has never finished.
func (s *Store) LastJob(ctx context.Context, projectID int64, stage string) (*JobRecord, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, project_id, job_id, stage, status, error_message, started_at, finished_at
		 FROM job_history WHERE project_id = ? AND stage = ? ORDER BY id DESC LIMIT 1`, projectID, stage)
	if err != nil {
		return nil, fmt.Errorf("load last job: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	var (
		rec                 JobRecord
		startedAt, finished string
	)
	err = rows.Scan(&rec.ID, &rec.ProjectID, &rec.JobID, &rec.Stage, &rec.Status,
		&rec.ErrorMessage, &startedAt, &finished)
	if err != nil {
		return nil, fmt.Errorf("scan job record: %w", err)
	}
	rec.StartedAt = parseTime(startedAt)
	rec.FinishedAt = parseTime(finished)
	return &rec, nil
}
