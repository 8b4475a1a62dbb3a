package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mdnazib963/ShortsCraft/internal/classify"
	"github.com/mdnazib963/ShortsCraft/internal/db"
	"github.com/mdnazib963/ShortsCraft/internal/models"
	"github.com/mdnazib963/ShortsCraft/internal/pipeline"
	"github.com/mdnazib963/ShortsCraft/internal/queue"
)

// ExportStore is the subset of the workspace manager the API needs to serve
// finished artifacts.
type ExportStore interface {
	ArtifactPath(jobID uuid.UUID) string
}

type Handler struct {
	db           *db.DB
	queue        *queue.Queue
	classifier   *classify.Classifier
	orchestrator *pipeline.Orchestrator
	exports      ExportStore
	mediaDir     string
	sceneCount   int
}

func NewHandler(database *db.DB, q *queue.Queue, classifier *classify.Classifier, orch *pipeline.Orchestrator, exports ExportStore, mediaDir string, defaultSceneCount int) *Handler {
	return &Handler{
		db:           database,
		queue:        q,
		classifier:   classifier,
		orchestrator: orch,
		exports:      exports,
		mediaDir:     mediaDir,
		sceneCount:   defaultSceneCount,
	}
}

// CreateProject handles POST /v1/projects
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Topic == "" {
		respondError(w, http.StatusBadRequest, "Topic is required")
		return
	}

	sceneCount := h.sceneCount
	if req.SceneCount != nil {
		sceneCount = *req.SceneCount
	}
	if sceneCount < 1 || sceneCount > 20 {
		respondError(w, http.StatusBadRequest, "scene_count must be between 1 and 20")
		return
	}

	project := &models.Project{
		ID:         uuid.New(),
		Topic:      req.Topic,
		Status:     models.ProjectStatusQueued,
		SceneCount: sceneCount,
	}

	if err := h.db.CreateProject(r.Context(), project); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create project")
		return
	}

	jobID := uuid.New()
	job := &models.Job{
		ID:        jobID,
		ProjectID: project.ID,
		Type:      "generate_project",
		Status:    models.JobStatusQueued,
	}

	if err := h.db.CreateJob(r.Context(), job); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	if err := h.queue.EnqueueGenerateProject(r.Context(), project.ID, jobID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	respondJSON(w, http.StatusCreated, models.CreateProjectResponse{
		ProjectID: project.ID,
		Status:    project.Status,
	})
}

// ListProjects handles GET /v1/projects
// Query params:
//   - limit:  max results per page (default 20, max 100)
//   - offset: number of results to skip (default 0)
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	projects, total, err := h.db.ListProjects(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list projects")
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}

	respondJSON(w, http.StatusOK, models.ListProjectsResponse{
		Projects: projects,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

// GetProject handles GET /v1/projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	project, err := h.db.GetProject(r.Context(), id)
	if err == db.ErrNotFound {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get project")
		return
	}

	scenes, err := h.db.GetProjectScenes(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get scenes")
		return
	}

	resp := models.ProjectResponse{Project: *project}
	for _, scene := range scenes {
		sr := models.SceneResponse{Scene: scene}
		if scene.AudioPath != nil {
			url := "/v1/media/" + filepath.Base(*scene.AudioPath)
			sr.AudioURL = &url
		}
		resp.Scenes = append(resp.Scenes, sr)
	}
	if project.ExportJobID != nil && project.FinalArtifactPath != nil {
		url := fmt.Sprintf("/v1/exports/%s/final.mp4", *project.ExportJobID)
		resp.FinalVideoURL = &url
	}

	respondJSON(w, http.StatusOK, resp)
}

// ExportProject handles POST /v1/projects/{id}/export.
//
// The request is gated on the scenes' current state: with zero render-ready
// scenes there is nothing to export (422); with some but not all ready, the
// caller must explicitly confirm a partial export (409). The worker re-checks
// clip health before assembling, so passing the gate here is necessary but
// not sufficient.
func (h *Handler) ExportProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req models.ExportRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	project, err := h.db.GetProject(r.Context(), id)
	if err == db.ErrNotFound {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get project")
		return
	}

	scenes, err := h.db.GetProjectScenes(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get scenes")
		return
	}
	if len(scenes) == 0 {
		respondError(w, http.StatusConflict, "Project has no scenes yet")
		return
	}

	ready := 0
	for i := range scenes {
		if scenes[i].RenderReady() {
			ready++
		}
	}
	if ready == 0 {
		respondError(w, http.StatusUnprocessableEntity, "No scenes have a usable clip; nothing to export")
		return
	}
	if ready < len(scenes) && !req.ConfirmPartial {
		respondError(w, http.StatusConflict,
			fmt.Sprintf("Only %d of %d scenes have a usable clip; set confirm_partial to export anyway", ready, len(scenes)))
		return
	}

	jobID := uuid.New()
	job := &models.Job{
		ID:             jobID,
		ProjectID:      project.ID,
		Type:           "export_project",
		Status:         models.JobStatusQueued,
		ConfirmPartial: req.ConfirmPartial,
	}

	if err := h.db.CreateJob(r.Context(), job); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	if err := h.queue.EnqueueExportProject(r.Context(), project.ID, jobID, req.ConfirmPartial); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	if err := h.db.UpdateProjectStatus(r.Context(), project.ID, models.ProjectStatusExporting); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update project")
		return
	}

	respondJSON(w, http.StatusAccepted, models.ExportResponse{
		JobID:  jobID,
		Status: models.JobStatusQueued,
	})
}

// RegenerateScene handles POST /v1/projects/{id}/scenes/{index}/regenerate.
// Regeneration runs inline: one resolve pass whose result replaces the
// scene's clip unconditionally.
func (h *Handler) RegenerateScene(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		respondError(w, http.StatusBadRequest, "Invalid scene index")
		return
	}

	scene, err := h.db.GetScene(r.Context(), id, index)
	if err == db.ErrNotFound {
		respondError(w, http.StatusNotFound, "Scene not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get scene")
		return
	}

	h.orchestrator.RegenerateScene(r.Context(), scene)

	if err := h.db.UpdateSceneResolution(r.Context(), id, index, scene.Status, scene.ClipURL, scene.ErrorMessage); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update scene")
		return
	}

	respondJSON(w, http.StatusOK, models.SceneResponse{Scene: *scene})
}

// GetJob handles GET /v1/jobs/{id}
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := h.db.GetJob(r.Context(), id)
	if err == db.ErrNotFound {
		respondError(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// GetExportArtifact handles GET /v1/exports/{jobID}/final.mp4
func (h *Handler) GetExportArtifact(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	path := h.exports.ArtifactPath(jobID)
	if _, err := os.Stat(path); err != nil {
		respondError(w, http.StatusNotFound, "Export artifact not found")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	http.ServeFile(w, r, path)
}

// GetMedia handles GET /v1/media/{filename}, serving staged narration audio.
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if filename == "" || filename != filepath.Base(filename) {
		respondError(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	path := filepath.Join(h.mediaDir, filename)
	if _, err := os.Stat(path); err != nil {
		respondError(w, http.StatusNotFound, "Media file not found")
		return
	}

	http.ServeFile(w, r, path)
}

// VerifyClip handles GET /v1/clips/verify?url=...
func (h *Handler) VerifyClip(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		respondError(w, http.StatusBadRequest, "url query parameter is required")
		return
	}

	respondJSON(w, http.StatusOK, models.VerifyClipResponse{
		URL:   rawURL,
		Valid: h.classifier.Classify(r.Context(), rawURL),
	})
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
