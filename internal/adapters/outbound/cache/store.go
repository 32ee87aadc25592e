package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/choidage/daker/internal/domain"
)

const snapshotVersion = 1

// Store is a file-based implementation of domain.DiagnosticStore. It keeps
// the diagnostic sets of a CLI session so later invocations can show or
// clear them.
type Store struct{}

// New creates a new file-based snapshot store.
func New() *Store {
	return &Store{}
}

type envelope struct {
	Version int `json:"version"`
	*domain.DiagnosticSnapshot
}

// Load reads the snapshot for a project. Returns (nil, nil) if none exists
// or it was written by an incompatible version.
func (s *Store) Load(projectPath string) (*domain.DiagnosticSnapshot, error) {
	data, err := os.ReadFile(snapshotPath(projectPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // no snapshot is not an error
		}
		return nil, err
	}

	env := envelope{DiagnosticSnapshot: &domain.DiagnosticSnapshot{}}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parsing diagnostics snapshot: %w", err)
	}
	if env.Version != snapshotVersion {
		return nil, nil
	}
	if env.Documents == nil {
		env.Documents = map[string][]domain.Diagnostic{}
	}
	return env.DiagnosticSnapshot, nil
}

// Save writes the snapshot atomically, creating directories as needed.
func (s *Store) Save(projectPath string, snap *domain.DiagnosticSnapshot) error {
	dir := snapshotDir(projectPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(envelope{Version: snapshotVersion, DiagnosticSnapshot: snap}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "diagnostics-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), snapshotPath(projectPath))
}

// Invalidate removes the snapshot for the given project path.
func (s *Store) Invalidate(projectPath string) error {
	if err := os.Remove(snapshotPath(projectPath)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func snapshotDir(projectPath string) string {
	return filepath.Join(projectPath, ".vibex", "cache")
}

func snapshotPath(projectPath string) string {
	return filepath.Join(snapshotDir(projectPath), "diagnostics.json")
}
