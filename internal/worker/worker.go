package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mdnazib963/ShortsCraft/internal/assembly"
	"github.com/mdnazib963/ShortsCraft/internal/db"
	"github.com/mdnazib963/ShortsCraft/internal/models"
	"github.com/mdnazib963/ShortsCraft/internal/pipeline"
	"github.com/mdnazib963/ShortsCraft/internal/queue"
	"github.com/mdnazib963/ShortsCraft/internal/services"
)

type Worker struct {
	db           *db.DB
	queue        *queue.Queue
	storyboard   services.StoryboardService
	tts          services.TTSService
	orchestrator *pipeline.Orchestrator
	engine       *assembly.Engine
	mediaDir     string

	// interSceneDelay spaces out the scrapes triggered by consecutive
	// scenes so the providers see a human-ish request rhythm.
	interSceneDelay time.Duration
}

func New(
	database *db.DB,
	q *queue.Queue,
	storyboardSvc services.StoryboardService,
	ttsSvc services.TTSService,
	orch *pipeline.Orchestrator,
	engine *assembly.Engine,
	mediaDir string,
	interSceneDelay time.Duration,
) *Worker {
	return &Worker{
		db:              database,
		queue:           q,
		storyboard:      storyboardSvc,
		tts:             ttsSvc,
		orchestrator:    orch,
		engine:          engine,
		mediaDir:        mediaDir,
		interSceneDelay: interSceneDelay,
	}
}

// Start begins processing jobs from all queues
func (w *Worker) Start(ctx context.Context, concurrency int) {
	log.Printf("Worker started with concurrency: %d", concurrency)

	for i := 0; i < concurrency; i++ {
		go w.processQueue(ctx, queue.QueueGenerateProject, w.handleGenerateProject)
		go w.processQueue(ctx, queue.QueueExportProject, w.handleExportProject)
	}

	<-ctx.Done()
	log.Println("Worker shutting down...")
}

func (w *Worker) processQueue(ctx context.Context, queueName string, handler func(context.Context, *queue.Job) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := w.queue.Dequeue(ctx, queueName, 5*time.Second)
			if err != nil {
				log.Printf("Error dequeuing from %s: %v", queueName, err)
				continue
			}

			if job == nil {
				continue // No job available, retry
			}

			log.Printf("Processing job %s (type: %s, project: %s)", job.ID, job.Type, job.ProjectID)

			if err := w.db.StartJob(ctx, job.ID); err != nil {
				log.Printf("Failed to start job: %v", err)
			}

			if err := handler(ctx, job); err != nil {
				log.Printf("Job %s failed: %v", job.ID, err)
				msg := err.Error()
				w.db.FinishJob(ctx, job.ID, models.JobStatusFailed, &msg)
			} else {
				log.Printf("Job %s completed successfully", job.ID)
				w.db.FinishJob(ctx, job.ID, models.JobStatusSucceeded, nil)
			}
		}
	}
}

// handleGenerateProject runs the full generation pass: storyboard the topic,
// create scene records, then work through the scenes one at a time. Per
// scene that means narration synthesis followed by clip resolution, with
// state persisted after every step so a crash loses at most one scene.
func (w *Worker) handleGenerateProject(ctx context.Context, job *queue.Job) error {
	project, err := w.db.GetProject(ctx, job.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}

	if err := w.db.UpdateProjectStatus(ctx, project.ID, models.ProjectStatusStoryboarding); err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}

	sb, err := w.storyboard.GenerateStoryboard(ctx, project.Topic, project.SceneCount)
	if err != nil {
		w.db.MarkProjectFailed(ctx, project.ID, "storyboard_failed", err.Error())
		return fmt.Errorf("failed to generate storyboard: %w", err)
	}

	if err := w.db.SetProjectTitle(ctx, project.ID, sb.Title); err != nil {
		return fmt.Errorf("failed to set project title: %w", err)
	}

	scenes := make([]models.Scene, 0, len(sb.Scenes))
	for _, planned := range sb.Scenes {
		scene := models.Scene{
			ProjectID:   project.ID,
			SceneIndex:  planned.SceneIndex,
			Query:       planned.Query,
			Narration:   planned.Narration,
			OverlayText: planned.OverlayText,
			Status:      models.SceneStatusUnresolved,
		}
		if err := w.db.CreateScene(ctx, &scene); err != nil {
			return fmt.Errorf("failed to create scene %d: %w", planned.SceneIndex, err)
		}
		scenes = append(scenes, scene)
	}

	if err := w.db.UpdateProjectStatus(ctx, project.ID, models.ProjectStatusGenerating); err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}

	for i := range scenes {
		scene := &scenes[i]

		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.interSceneDelay):
			}
		}

		if err := w.narrateScene(ctx, scene); err != nil {
			w.db.MarkProjectFailed(ctx, project.ID, "narration_failed", err.Error())
			return fmt.Errorf("scene %d narration failed: %w", scene.SceneIndex, err)
		}

		w.orchestrator.ResolveScene(ctx, scene)
		if err := w.db.UpdateSceneResolution(ctx, project.ID, scene.SceneIndex, scene.Status, scene.ClipURL, scene.ErrorMessage); err != nil {
			return fmt.Errorf("failed to persist scene %d: %w", scene.SceneIndex, err)
		}
		log.Printf("[Worker] project %s: scene %d/%d %s", project.ID, i+1, len(scenes), scene.Status)
	}

	return w.db.UpdateProjectStatus(ctx, project.ID, models.ProjectStatusReady)
}

// narrateScene synthesizes the scene's narration and stages the audio in
// the media directory.
func (w *Worker) narrateScene(ctx context.Context, scene *models.Scene) error {
	speech, err := w.tts.GenerateSpeech(ctx, scene.Narration)
	if err != nil {
		return fmt.Errorf("speech synthesis failed: %w", err)
	}

	audioPath := filepath.Join(w.mediaDir,
		fmt.Sprintf("%s_scene_%d.%s", scene.ProjectID, scene.SceneIndex, speech.Format))
	if err := os.WriteFile(audioPath, speech.AudioData, 0644); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}

	if err := w.db.UpdateSceneAudio(ctx, scene.ProjectID, scene.SceneIndex, audioPath, speech.DurationMs); err != nil {
		return fmt.Errorf("failed to persist audio path: %w", err)
	}

	scene.AudioPath = &audioPath
	scene.AudioDurationMs = &speech.DurationMs
	return nil
}

// handleExportProject re-verifies every clip, applies the export gate, and
// assembles whatever passed into the final artifact.
func (w *Worker) handleExportProject(ctx context.Context, job *queue.Job) error {
	project, err := w.db.GetProject(ctx, job.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}

	scenes, err := w.db.GetProjectScenes(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("failed to get scenes: %w", err)
	}

	plan := w.orchestrator.PrepareExport(ctx, scenes)
	for i := range plan.Scenes {
		scene := &plan.Scenes[i]
		if err := w.db.UpdateSceneResolution(ctx, project.ID, scene.SceneIndex, scene.Status, scene.ClipURL, scene.ErrorMessage); err != nil {
			return fmt.Errorf("failed to persist scene %d: %w", scene.SceneIndex, err)
		}
	}

	if err := plan.Gate(job.ConfirmPartial); err != nil {
		// A closed gate is not a broken project: hand it back for another
		// regenerate/export round.
		w.db.UpdateProjectStatus(ctx, project.ID, models.ProjectStatusReady)
		switch {
		case errors.Is(err, pipeline.ErrNoValidScenes):
			return fmt.Errorf("export refused: no scene has a usable clip")
		case errors.Is(err, pipeline.ErrConfirmationRequired):
			return fmt.Errorf("export refused: %d of %d scenes usable and partial export was not confirmed",
				plan.ValidCount, plan.TotalCount)
		default:
			return err
		}
	}

	var clips, audios []string
	for i := range plan.Scenes {
		scene := &plan.Scenes[i]
		if scene.ClipURL == nil {
			log.Printf("[Worker] project %s: dropping degraded scene %d from export", project.ID, scene.SceneIndex)
			continue
		}
		if scene.AudioPath == nil {
			w.db.UpdateProjectStatus(ctx, project.ID, models.ProjectStatusReady)
			return fmt.Errorf("scene %d has a clip but no narration audio", scene.SceneIndex)
		}
		clips = append(clips, *scene.ClipURL)
		audios = append(audios, *scene.AudioPath)
	}

	result, err := w.engine.Assemble(ctx, clips, audios)
	if err != nil {
		w.db.MarkProjectFailed(ctx, project.ID, "assembly_failed", err.Error())
		return fmt.Errorf("assembly failed: %w", err)
	}

	if err := w.db.CompleteProjectExport(ctx, project.ID, result.JobID, result.OutputPath); err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}

	log.Printf("[Worker] project %s exported: %s (%dms)", project.ID, result.OutputPath, result.DurationMs)
	return nil
}
