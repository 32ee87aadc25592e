package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/choidage/daker/internal/domain"
)

// skipDirs are never descended into, whatever the configuration says.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".vibex":       true,
}

// FileScanner implements domain.WorkspaceScanner by walking the filesystem.
type FileScanner struct{}

func New() *FileScanner {
	return &FileScanner{}
}

// Scan lists files under projectPath whose extension is in opts.Extensions.
// Paths are relative to the root, slash-separated and sorted.
func (s *FileScanner) Scan(projectPath string, opts domain.ScanOptions) (*domain.ScanResult, error) {
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, err
	}

	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = domain.DefaultExtensions
	}
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = true
	}

	// Merge extra excludes with built-in skip dirs.
	extraSkip := make(map[string]bool, len(opts.IgnoreDirs))
	for _, p := range opts.IgnoreDirs {
		extraSkip[strings.TrimSuffix(p, "/")] = true
	}

	result := &domain.ScanResult{
		RootPath: absPath,
		Files:    []string{},
	}

	err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != absPath && (skipDirs[d.Name()] || extraSkip[d.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !exts[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}

		relPath, _ := filepath.Rel(absPath, path)
		result.Files = append(result.Files, filepath.ToSlash(relPath))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(result.Files)
	return result, nil
}
