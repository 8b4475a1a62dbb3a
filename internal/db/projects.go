package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mdnazib963/ShortsCraft/internal/models"
)

var ErrNotFound = fmt.Errorf("not found")

func (db *DB) CreateProject(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (id, topic, status, scene_count)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	return db.QueryRowContext(
		ctx, query,
		project.ID, project.Topic, project.Status, project.SceneCount,
	).Scan(&project.CreatedAt, &project.UpdatedAt)
}

func (db *DB) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `
		SELECT
			id, topic, title, status, scene_count, export_job_id,
			final_artifact_path, error_code, error_message,
			created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	project := &models.Project{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&project.ID, &project.Topic, &project.Title, &project.Status,
		&project.SceneCount, &project.ExportJobID, &project.FinalArtifactPath,
		&project.ErrorCode, &project.ErrorMessage,
		&project.CreatedAt, &project.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

func (db *DB) ListProjects(ctx context.Context, limit, offset int) ([]models.Project, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	query := `
		SELECT
			id, topic, title, status, scene_count, export_job_id,
			final_artifact_path, error_code, error_message,
			created_at, updated_at
		FROM projects
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		err := rows.Scan(
			&project.ID, &project.Topic, &project.Title, &project.Status,
			&project.SceneCount, &project.ExportJobID, &project.FinalArtifactPath,
			&project.ErrorCode, &project.ErrorMessage,
			&project.CreatedAt, &project.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	return projects, total, rows.Err()
}

func (db *DB) UpdateProjectStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) error {
	query := `
		UPDATE projects
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) SetProjectTitle(ctx context.Context, id uuid.UUID, title string) error {
	query := `
		UPDATE projects
		SET title = $2, updated_at = NOW()
		WHERE id = $1
	`

	_, err := db.ExecContext(ctx, query, id, title)
	if err != nil {
		return fmt.Errorf("failed to set project title: %w", err)
	}
	return nil
}

// MarkProjectFailed records a terminal failure with a machine-readable code.
func (db *DB) MarkProjectFailed(ctx context.Context, id uuid.UUID, code, message string) error {
	query := `
		UPDATE projects
		SET status = 'failed', error_code = $2, error_message = $3, updated_at = NOW()
		WHERE id = $1
	`

	_, err := db.ExecContext(ctx, query, id, code, message)
	if err != nil {
		return fmt.Errorf("failed to mark project failed: %w", err)
	}
	return nil
}

// CompleteProjectExport records the finished artifact and the job that
// produced it.
func (db *DB) CompleteProjectExport(ctx context.Context, id, jobID uuid.UUID, artifactPath string) error {
	query := `
		UPDATE projects
		SET status = 'completed', export_job_id = $2, final_artifact_path = $3,
		    error_code = NULL, error_message = NULL, updated_at = NOW()
		WHERE id = $1
	`

	_, err := db.ExecContext(ctx, query, id, jobID, artifactPath)
	if err != nil {
		return fmt.Errorf("failed to complete project export: %w", err)
	}
	return nil
}
