package history

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/choidage/daker/internal/domain"
)

const historyFile = ".vibex/history/runs.json"

// MaxEntries bounds the stored history; older runs are dropped first.
const MaxEntries = 500

// FileHistory implements domain.RunHistory using JSON file storage.
type FileHistory struct {
	max int
}

func New() *FileHistory {
	return &FileHistory{max: MaxEntries}
}

// WithLimit overrides MaxEntries.
func (h *FileHistory) WithLimit(n int) *FileHistory {
	h.max = n
	return h
}

func (h *FileHistory) Save(projectPath string, entry domain.RunEntry) error {
	entries, err := h.Load(projectPath)
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	if h.max > 0 && len(entries) > h.max {
		entries = entries[len(entries)-h.max:]
	}

	fp := filepath.Join(projectPath, historyFile)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	// Readers never see a partial array.
	tmp := fp + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, fp)
}

// LoadFile returns the runs recorded for filePath, oldest first.
func (h *FileHistory) LoadFile(projectPath, filePath string) ([]domain.RunEntry, error) {
	entries, err := h.Load(projectPath)
	if err != nil {
		return nil, err
	}
	want := filepath.Clean(filePath)
	var out []domain.RunEntry
	for _, e := range entries {
		if filepath.Clean(e.FilePath) == want {
			out = append(out, e)
		}
	}
	return out, nil
}

func (h *FileHistory) Load(projectPath string) ([]domain.RunEntry, error) {
	fp := filepath.Join(projectPath, historyFile)

	data, err := os.ReadFile(fp)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.RunEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}
