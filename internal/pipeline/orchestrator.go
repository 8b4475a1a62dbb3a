// Package pipeline drives scenes through resolve → verify → retry, and gates
// the export path. Failures here degrade a single scene; they never abort the
// project. Only final assembly is all-or-nothing, and that lives in the
// assembly package.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mdnazib963/ShortsCraft/internal/models"
)

// Export gate errors. The worker maps these onto job failure codes; the API
// surfaces them to the caller.
var (
	// ErrNoValidScenes refuses export outright: assembling zero scenes is
	// never meaningful.
	ErrNoValidScenes = errors.New("no scene has a valid clip; export refused")

	// ErrConfirmationRequired means some scenes are valid and some are not.
	// Shipping a partial video is a user decision, so the export must be
	// re-submitted with explicit confirmation.
	ErrConfirmationRequired = errors.New("some scenes have no valid clip; partial export requires confirmation")
)

// ClipResolver is the resolver boundary: always returns a usable URL.
type ClipResolver interface {
	ResolveSceneClip(ctx context.Context, query string) string
}

// ClipVerifier is the classifier boundary: shallow, repeatable, side-effect free.
type ClipVerifier interface {
	Classify(ctx context.Context, url string) bool
}

const (
	// maxResolveAttempts bounds the generation-time resolve+verify loop per
	// scene. After this many failed verifications the scene is left degraded
	// and generation moves on.
	maxResolveAttempts = 2

	defaultAttemptDelay = 2 * time.Second
)

type Orchestrator struct {
	resolver ClipResolver
	verifier ClipVerifier

	// attemptDelay throttles provider load between retry attempts.
	attemptDelay time.Duration

	// sleep is swappable so tests don't wait out real delays.
	sleep func(ctx context.Context, d time.Duration)
}

func New(resolver ClipResolver, verifier ClipVerifier) *Orchestrator {
	return &Orchestrator{
		resolver:     resolver,
		verifier:     verifier,
		attemptDelay: defaultAttemptDelay,
		sleep:        sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// ResolveScene runs the generation-time state machine for one scene:
// Resolving → Verifying, looping through Retrying at most maxResolveAttempts
// times, ending Ready or Degraded. The scene is mutated in place so callers
// can persist incremental state.
func (o *Orchestrator) ResolveScene(ctx context.Context, scene *models.Scene) {
	for attempt := 1; attempt <= maxResolveAttempts; attempt++ {
		if attempt > 1 {
			scene.Status = models.SceneStatusRetrying
			o.sleep(ctx, o.attemptDelay)
		}

		scene.Status = models.SceneStatusResolving
		clip := o.resolver.ResolveSceneClip(ctx, scene.Query)

		scene.Status = models.SceneStatusVerifying
		if o.verifier.Classify(ctx, clip) {
			scene.ClipURL = &clip
			scene.Status = models.SceneStatusReady
			return
		}

		log.Printf("[Pipeline] scene %d: clip failed verification (attempt %d/%d)", scene.SceneIndex, attempt, maxResolveAttempts)
	}

	scene.ClipURL = nil
	scene.Status = models.SceneStatusDegraded
	msg := fmt.Sprintf("no verifiable clip after %d attempts", maxResolveAttempts)
	scene.ErrorMessage = &msg
}

// RegenerateScene is the manual path: one resolve, accepted without the
// verification loop, always overwriting whatever clip the scene had.
func (o *Orchestrator) RegenerateScene(ctx context.Context, scene *models.Scene) {
	scene.Status = models.SceneStatusResolving
	clip := o.resolver.ResolveSceneClip(ctx, scene.Query)
	scene.ClipURL = &clip
	scene.ErrorMessage = nil
	scene.Status = models.SceneStatusReady
}

// ExportPlan is the outcome of export-time re-verification: which scenes
// contribute a clip, and the valid/total counts the gate decides on.
type ExportPlan struct {
	Scenes     []models.Scene // all scenes, clip refs updated in place
	ValidCount int
	TotalCount int
}

// PrepareExport re-verifies every scene's current clip — remote content can
// expire between generation and export — and runs one recovery resolve for
// each scene that fails. Scenes that cannot be recovered contribute no clip.
func (o *Orchestrator) PrepareExport(ctx context.Context, scenes []models.Scene) ExportPlan {
	plan := ExportPlan{TotalCount: len(scenes)}

	for i := range scenes {
		scene := &scenes[i]

		if scene.ClipURL != nil && o.verifier.Classify(ctx, *scene.ClipURL) {
			plan.ValidCount++
			continue
		}

		// One recovery attempt; prior state doesn't matter, the remote
		// check is the only truth.
		log.Printf("[Pipeline] scene %d: clip invalid at export time, attempting recovery", scene.SceneIndex)
		clip := o.resolver.ResolveSceneClip(ctx, scene.Query)
		if o.verifier.Classify(ctx, clip) {
			scene.ClipURL = &clip
			scene.Status = models.SceneStatusReady
			plan.ValidCount++
			continue
		}

		scene.ClipURL = nil
		scene.Status = models.SceneStatusDegraded
	}

	plan.Scenes = scenes
	return plan
}

// Gate applies the export policy to a prepared plan: refuse when nothing is
// valid, require explicit confirmation when partially valid, pass through
// when everything is valid.
func (p ExportPlan) Gate(confirmPartial bool) error {
	switch {
	case p.ValidCount == 0:
		return ErrNoValidScenes
	case p.ValidCount < p.TotalCount && !confirmPartial:
		return ErrConfirmationRequired
	default:
		return nil
	}
}
