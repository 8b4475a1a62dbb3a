package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mdnazib963/ShortsCraft/internal/models"
)

// scriptedResolver returns queued clips in order, repeating the last one.
type scriptedResolver struct {
	clips []string
	calls int
}

func (r *scriptedResolver) ResolveSceneClip(ctx context.Context, query string) string {
	r.calls++
	if len(r.clips) == 0 {
		return "https://cdn.example.com/default.mp4"
	}
	i := r.calls - 1
	if i >= len(r.clips) {
		i = len(r.clips) - 1
	}
	return r.clips[i]
}

// mapVerifier classifies URLs by lookup; absent means invalid.
type mapVerifier struct {
	valid map[string]bool
	calls int
}

func (v *mapVerifier) Classify(ctx context.Context, url string) bool {
	v.calls++
	return v.valid[url]
}

func newTestOrchestrator(r ClipResolver, v ClipVerifier) *Orchestrator {
	o := New(r, v)
	o.sleep = func(context.Context, time.Duration) {} // no real waiting in tests
	return o
}

func scene(idx int, clip string) models.Scene {
	s := models.Scene{SceneIndex: idx, Query: "some query", Status: models.SceneStatusReady}
	if clip != "" {
		s.ClipURL = &clip
	}
	return s
}

func TestResolveSceneFirstAttemptSuccess(t *testing.T) {
	res := &scriptedResolver{clips: []string{"https://cdn.example.com/a.mp4"}}
	ver := &mapVerifier{valid: map[string]bool{"https://cdn.example.com/a.mp4": true}}
	o := newTestOrchestrator(res, ver)

	s := models.Scene{SceneIndex: 0, Query: "q", Status: models.SceneStatusUnresolved}
	o.ResolveScene(context.Background(), &s)

	if s.Status != models.SceneStatusReady {
		t.Fatalf("status = %s, want ready", s.Status)
	}
	if s.ClipURL == nil || *s.ClipURL != "https://cdn.example.com/a.mp4" {
		t.Errorf("clip not recorded: %v", s.ClipURL)
	}
	if res.calls != 1 {
		t.Errorf("first-attempt success must not trigger a second resolve, got %d calls", res.calls)
	}
}

func TestResolveSceneRetriesThenDegrades(t *testing.T) {
	res := &scriptedResolver{clips: []string{"https://cdn.example.com/bad.mp4"}}
	ver := &mapVerifier{valid: map[string]bool{}} // nothing verifies
	o := newTestOrchestrator(res, ver)

	s := models.Scene{SceneIndex: 2, Query: "q", Status: models.SceneStatusUnresolved}
	o.ResolveScene(context.Background(), &s)

	if s.Status != models.SceneStatusDegraded {
		t.Fatalf("status = %s, want degraded", s.Status)
	}
	if s.ClipURL != nil {
		t.Error("degraded scene must carry no clip")
	}
	if res.calls != 2 {
		t.Errorf("expected exactly 2 resolve attempts, got %d", res.calls)
	}
	if s.ErrorMessage == nil {
		t.Error("degraded scene should record why")
	}
}

func TestResolveSceneRecoversOnSecondAttempt(t *testing.T) {
	res := &scriptedResolver{clips: []string{
		"https://cdn.example.com/bad.mp4",
		"https://cdn.example.com/good.mp4",
	}}
	ver := &mapVerifier{valid: map[string]bool{"https://cdn.example.com/good.mp4": true}}
	o := newTestOrchestrator(res, ver)

	s := models.Scene{SceneIndex: 1, Query: "q"}
	o.ResolveScene(context.Background(), &s)

	if s.Status != models.SceneStatusReady {
		t.Fatalf("status = %s, want ready", s.Status)
	}
	if *s.ClipURL != "https://cdn.example.com/good.mp4" {
		t.Errorf("clip = %q", *s.ClipURL)
	}
}

func TestRegenerateOverwritesWithoutVerification(t *testing.T) {
	res := &scriptedResolver{clips: []string{"https://cdn.example.com/new.mp4"}}
	ver := &mapVerifier{valid: map[string]bool{}} // would fail verification
	o := newTestOrchestrator(res, ver)

	s := scene(0, "https://cdn.example.com/old.mp4")
	o.RegenerateScene(context.Background(), &s)

	if *s.ClipURL != "https://cdn.example.com/new.mp4" {
		t.Errorf("regeneration must overwrite the clip, got %q", *s.ClipURL)
	}
	if ver.calls != 0 {
		t.Errorf("manual regeneration must skip the verification loop, got %d classify calls", ver.calls)
	}
}

func TestPrepareExportReverifiesEveryScene(t *testing.T) {
	ver := &mapVerifier{valid: map[string]bool{
		"https://cdn.example.com/0.mp4": true,
		"https://cdn.example.com/1.mp4": true,
	}}
	o := newTestOrchestrator(&scriptedResolver{}, ver)

	scenes := []models.Scene{scene(0, "https://cdn.example.com/0.mp4"), scene(1, "https://cdn.example.com/1.mp4")}
	plan := o.PrepareExport(context.Background(), scenes)

	if plan.ValidCount != 2 || plan.TotalCount != 2 {
		t.Fatalf("plan = %d/%d, want 2/2", plan.ValidCount, plan.TotalCount)
	}
	if ver.calls < 2 {
		t.Errorf("every scene must be re-checked at export time, got %d classify calls", ver.calls)
	}
}

func TestPrepareExportRecoversExpiredClip(t *testing.T) {
	// Scene 1's clip expired; recovery resolve yields a verifiable one.
	res := &scriptedResolver{clips: []string{"https://cdn.example.com/recovered.mp4"}}
	ver := &mapVerifier{valid: map[string]bool{
		"https://cdn.example.com/0.mp4":         true,
		"https://cdn.example.com/2.mp4":         true,
		"https://cdn.example.com/recovered.mp4": true,
	}}
	o := newTestOrchestrator(res, ver)

	scenes := []models.Scene{
		scene(0, "https://cdn.example.com/0.mp4"),
		scene(1, "https://cdn.example.com/expired.mp4"),
		scene(2, "https://cdn.example.com/2.mp4"),
	}
	plan := o.PrepareExport(context.Background(), scenes)

	if plan.ValidCount != 3 {
		t.Fatalf("valid = %d, want 3 after recovery", plan.ValidCount)
	}
	if *plan.Scenes[1].ClipURL != "https://cdn.example.com/recovered.mp4" {
		t.Errorf("scene 1 clip = %q", *plan.Scenes[1].ClipURL)
	}
	// All scenes valid: no confirmation needed.
	if err := plan.Gate(false); err != nil {
		t.Errorf("fully valid plan must pass the gate: %v", err)
	}
}

func TestPrepareExportFailedRecoveryContributesNoClip(t *testing.T) {
	res := &scriptedResolver{clips: []string{"https://cdn.example.com/still-bad.mp4"}}
	ver := &mapVerifier{valid: map[string]bool{"https://cdn.example.com/0.mp4": true}}
	o := newTestOrchestrator(res, ver)

	scenes := []models.Scene{
		scene(0, "https://cdn.example.com/0.mp4"),
		scene(1, "https://cdn.example.com/expired.mp4"),
	}
	plan := o.PrepareExport(context.Background(), scenes)

	if plan.ValidCount != 1 {
		t.Fatalf("valid = %d, want 1", plan.ValidCount)
	}
	if plan.Scenes[1].ClipURL != nil {
		t.Error("unrecoverable scene must contribute no clip")
	}
	if plan.Scenes[1].Status != models.SceneStatusDegraded {
		t.Errorf("status = %s, want degraded", plan.Scenes[1].Status)
	}
}

func TestExportGate(t *testing.T) {
	cases := []struct {
		name           string
		valid, total   int
		confirmPartial bool
		wantErr        error
	}{
		{"zero valid refuses", 0, 3, false, ErrNoValidScenes},
		{"zero valid refuses even confirmed", 0, 3, true, ErrNoValidScenes},
		{"partial needs confirmation", 2, 3, false, ErrConfirmationRequired},
		{"partial confirmed proceeds", 2, 3, true, nil},
		{"all valid proceeds unconfirmed", 3, 3, false, nil},
	}

	for _, tc := range cases {
		plan := ExportPlan{ValidCount: tc.valid, TotalCount: tc.total}
		err := plan.Gate(tc.confirmPartial)
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: Gate() = %v, want %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestPrepareExportSceneWithNoClipGoesThroughRecovery(t *testing.T) {
	// A degraded scene (nil clip) still gets its one recovery attempt.
	res := &scriptedResolver{clips: []string{"https://cdn.example.com/found.mp4"}}
	ver := &mapVerifier{valid: map[string]bool{"https://cdn.example.com/found.mp4": true}}
	o := newTestOrchestrator(res, ver)

	scenes := []models.Scene{{SceneIndex: 0, Query: "q", Status: models.SceneStatusDegraded}}
	plan := o.PrepareExport(context.Background(), scenes)

	if plan.ValidCount != 1 {
		t.Fatalf("valid = %d, want 1", plan.ValidCount)
	}
	if plan.Scenes[0].Status != models.SceneStatusReady {
		t.Errorf("recovered scene status = %s", plan.Scenes[0].Status)
	}
}
