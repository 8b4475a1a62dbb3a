package assembly

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// WorkspaceManager hands out one exclusively-owned directory per merge job.
// A workspace is scoped to a fresh UUID and never reused; everything the job
// produces (staged clips, narration files, per-scene encodes, the final
// artifact) lives under it. Retention is left to external lifecycle tooling.
type WorkspaceManager struct {
	root string
}

func NewWorkspaceManager(root string) (*WorkspaceManager, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace root: %w", err)
	}
	return &WorkspaceManager{root: root}, nil
}

// Workspace is one job's private working area.
type Workspace struct {
	JobID uuid.UUID
	Dir   string
}

// Allocate creates a fresh workspace for a new merge job.
func (m *WorkspaceManager) Allocate() (*Workspace, error) {
	jobID := uuid.New()
	dir := filepath.Join(m.root, jobID.String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace %s: %w", jobID, err)
	}
	return &Workspace{JobID: jobID, Dir: dir}, nil
}

// Lookup returns the directory of an existing job's workspace without
// creating anything; used to serve finished artifacts.
func (m *WorkspaceManager) Lookup(jobID uuid.UUID) string {
	return filepath.Join(m.root, jobID.String())
}

// ArtifactPath returns the stable final-artifact path for a job.
func (m *WorkspaceManager) ArtifactPath(jobID uuid.UUID) string {
	return filepath.Join(m.Lookup(jobID), FinalArtifactName)
}

// Path returns the absolute path for a named file inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// OutputPath is the stable, job-scoped location of the final artifact.
func (w *Workspace) OutputPath() string {
	return filepath.Join(w.Dir, FinalArtifactName)
}

// FinalArtifactName is the fixed final-artifact filename inside a job
// workspace; combined with the job ID it forms the stable artifact address.
const FinalArtifactName = "final.mp4"
