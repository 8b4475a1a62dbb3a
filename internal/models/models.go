package models

import (
	"time"

	"github.com/google/uuid"
)

// Enums

type ProjectStatus string

const (
	ProjectStatusQueued        ProjectStatus = "queued"
	ProjectStatusStoryboarding ProjectStatus = "storyboarding"
	ProjectStatusGenerating    ProjectStatus = "generating"
	ProjectStatusReady         ProjectStatus = "ready"
	ProjectStatusExporting     ProjectStatus = "exporting"
	ProjectStatusCompleted     ProjectStatus = "completed"
	ProjectStatusFailed        ProjectStatus = "failed"
)

// SceneStatus tracks a scene through the resolve/verify loop.
// Ready means the scene's clip passed verification at generation time;
// Degraded means every bounded attempt failed and the scene carries no clip.
type SceneStatus string

const (
	SceneStatusUnresolved SceneStatus = "unresolved"
	SceneStatusResolving  SceneStatus = "resolving"
	SceneStatusVerifying  SceneStatus = "verifying"
	SceneStatusRetrying   SceneStatus = "retrying"
	SceneStatusReady      SceneStatus = "ready"
	SceneStatusDegraded   SceneStatus = "degraded"
)

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Models

type Project struct {
	ID                uuid.UUID     `json:"id"`
	Topic             string        `json:"topic"`
	Title             *string       `json:"title,omitempty"`
	Status            ProjectStatus `json:"status"`
	SceneCount        int           `json:"scene_count"`
	ExportJobID       *uuid.UUID    `json:"export_job_id,omitempty"`
	FinalArtifactPath *string       `json:"final_artifact_path,omitempty"`
	ErrorCode         *string       `json:"error_code,omitempty"`
	ErrorMessage      *string       `json:"error_message,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// Scene is one narrated segment of the final video. ClipURL is owned by the
// resolver/orchestrator; AudioPath is owned by the narration step. A scene is
// render-ready only when both are set, and "verified" is rechecked at export
// time rather than trusted from generation.
type Scene struct {
	ProjectID       uuid.UUID   `json:"project_id"`
	SceneIndex      int         `json:"scene_index"`
	Query           string      `json:"query"`
	Narration       string      `json:"narration"`
	OverlayText     string      `json:"overlay_text"`
	Status          SceneStatus `json:"status"`
	ClipURL         *string     `json:"clip_url,omitempty"`
	AudioPath       *string     `json:"audio_path,omitempty"`
	AudioDurationMs *int        `json:"audio_duration_ms,omitempty"`
	ErrorMessage    *string     `json:"error_message,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// RenderReady reports whether the scene has both a clip and narration audio.
func (s *Scene) RenderReady() bool {
	return s.ClipURL != nil && *s.ClipURL != "" && s.AudioPath != nil && *s.AudioPath != ""
}

type Job struct {
	ID             uuid.UUID  `json:"id"`
	ProjectID      uuid.UUID  `json:"project_id"`
	Type           string     `json:"type"`
	Status         JobStatus  `json:"status"`
	ConfirmPartial bool       `json:"confirm_partial"`
	Attempts       int        `json:"attempts"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// DTOs for API responses

type ProjectResponse struct {
	Project
	Scenes        []SceneResponse `json:"scenes,omitempty"`
	FinalVideoURL *string         `json:"final_video_url,omitempty"`
}

type SceneResponse struct {
	Scene
	AudioURL *string `json:"audio_url,omitempty"`
}

type ListProjectsResponse struct {
	Projects []Project `json:"projects"`
	Total    int       `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

type CreateProjectRequest struct {
	Topic      string `json:"topic"`
	SceneCount *int   `json:"scene_count,omitempty"` // Default: config SCENE_COUNT
}

type CreateProjectResponse struct {
	ProjectID uuid.UUID     `json:"project_id"`
	Status    ProjectStatus `json:"status"`
}

// ExportRequest triggers final assembly. ConfirmPartial must be set when some
// but not all scenes have valid clips; exporting a partial video is a user
// decision, never a default.
type ExportRequest struct {
	ConfirmPartial bool `json:"confirm_partial"`
}

type ExportResponse struct {
	JobID  uuid.UUID `json:"job_id"`
	Status JobStatus `json:"status"`
}

type VerifyClipResponse struct {
	URL   string `json:"url"`
	Valid bool   `json:"valid"`
}
