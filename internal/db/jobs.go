package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mdnazib963/ShortsCraft/internal/models"
)

func (db *DB) CreateJob(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (id, project_id, type, status, confirm_partial)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	return db.QueryRowContext(
		ctx, query,
		job.ID, job.ProjectID, job.Type, job.Status, job.ConfirmPartial,
	).Scan(&job.CreatedAt)
}

func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	query := `
		SELECT
			id, project_id, type, status, confirm_partial, attempts,
			started_at, finished_at, error_message, created_at
		FROM jobs
		WHERE id = $1
	`

	job := &models.Job{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&job.ID, &job.ProjectID, &job.Type, &job.Status, &job.ConfirmPartial,
		&job.Attempts, &job.StartedAt, &job.FinishedAt, &job.ErrorMessage,
		&job.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return job, nil
}

// StartJob marks a job running and bumps its attempt counter.
func (db *DB) StartJob(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE jobs
		SET status = 'running', attempts = attempts + 1, started_at = NOW()
		WHERE id = $1
	`

	_, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to start job: %w", err)
	}
	return nil
}

func (db *DB) FinishJob(ctx context.Context, id uuid.UUID, status models.JobStatus, errorMessage *string) error {
	query := `
		UPDATE jobs
		SET status = $2, error_message = $3, finished_at = NOW()
		WHERE id = $1
	`

	_, err := db.ExecContext(ctx, query, id, status, errorMessage)
	if err != nil {
		return fmt.Errorf("failed to finish job: %w", err)
	}
	return nil
}
