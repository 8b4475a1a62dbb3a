package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mdnazib963/ShortsCraft/internal/models"
)

func (db *DB) CreateScene(ctx context.Context, scene *models.Scene) error {
	query := `
		INSERT INTO scenes (project_id, scene_index, query, narration, overlay_text, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	return db.QueryRowContext(
		ctx, query,
		scene.ProjectID, scene.SceneIndex, scene.Query, scene.Narration,
		scene.OverlayText, scene.Status,
	).Scan(&scene.CreatedAt, &scene.UpdatedAt)
}

func (db *DB) GetScene(ctx context.Context, projectID uuid.UUID, sceneIndex int) (*models.Scene, error) {
	query := `
		SELECT
			project_id, scene_index, query, narration, overlay_text, status,
			clip_url, audio_path, audio_duration_ms, error_message,
			created_at, updated_at
		FROM scenes
		WHERE project_id = $1 AND scene_index = $2
	`

	scene := &models.Scene{}
	err := db.QueryRowContext(ctx, query, projectID, sceneIndex).Scan(
		&scene.ProjectID, &scene.SceneIndex, &scene.Query, &scene.Narration,
		&scene.OverlayText, &scene.Status, &scene.ClipURL, &scene.AudioPath,
		&scene.AudioDurationMs, &scene.ErrorMessage,
		&scene.CreatedAt, &scene.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scene: %w", err)
	}

	return scene, nil
}

func (db *DB) GetProjectScenes(ctx context.Context, projectID uuid.UUID) ([]models.Scene, error) {
	query := `
		SELECT
			project_id, scene_index, query, narration, overlay_text, status,
			clip_url, audio_path, audio_duration_ms, error_message,
			created_at, updated_at
		FROM scenes
		WHERE project_id = $1
		ORDER BY scene_index
	`

	rows, err := db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenes: %w", err)
	}
	defer rows.Close()

	var scenes []models.Scene
	for rows.Next() {
		var scene models.Scene
		err := rows.Scan(
			&scene.ProjectID, &scene.SceneIndex, &scene.Query, &scene.Narration,
			&scene.OverlayText, &scene.Status, &scene.ClipURL, &scene.AudioPath,
			&scene.AudioDurationMs, &scene.ErrorMessage,
			&scene.CreatedAt, &scene.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scene: %w", err)
		}
		scenes = append(scenes, scene)
	}

	return scenes, rows.Err()
}

// UpdateSceneResolution persists the outcome of a resolve/verify pass:
// status plus whatever clip URL (possibly none) the scene ended with.
func (db *DB) UpdateSceneResolution(ctx context.Context, projectID uuid.UUID, sceneIndex int, status models.SceneStatus, clipURL, errorMessage *string) error {
	query := `
		UPDATE scenes
		SET status = $3, clip_url = $4, error_message = $5, updated_at = NOW()
		WHERE project_id = $1 AND scene_index = $2
	`

	result, err := db.ExecContext(ctx, query, projectID, sceneIndex, status, clipURL, errorMessage)
	if err != nil {
		return fmt.Errorf("failed to update scene resolution: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) UpdateSceneAudio(ctx context.Context, projectID uuid.UUID, sceneIndex int, audioPath string, durationMs int) error {
	query := `
		UPDATE scenes
		SET audio_path = $3, audio_duration_ms = $4, updated_at = NOW()
		WHERE project_id = $1 AND scene_index = $2
	`

	result, err := db.ExecContext(ctx, query, projectID, sceneIndex, audioPath, durationMs)
	if err != nil {
		return fmt.Errorf("failed to update scene audio: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}
