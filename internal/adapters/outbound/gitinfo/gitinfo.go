package gitinfo

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
)

// GitInfoAdapter implements domain.GitInfo using go-git.
type GitInfoAdapter struct{}

func New() *GitInfoAdapter {
	return &GitInfoAdapter{}
}

func open(projectPath string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(projectPath, &git.PlainOpenOptions{DetectDotGit: true})
}

func (g *GitInfoAdapter) IsGitRepo(projectPath string) bool {
	_, err := open(projectPath)
	return err == nil
}

func (g *GitInfoAdapter) CommitHash(projectPath string) (string, error) {
	repo, err := open(projectPath)
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}

	return head.Hash().String(), nil
}

// Author returns user.name from the repository config, falling back to the
// global config.
func (g *GitInfoAdapter) Author(projectPath string) (string, error) {
	repo, err := open(projectPath)
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}

	local, err := repo.Config()
	if err == nil && strings.TrimSpace(local.User.Name) != "" {
		return strings.TrimSpace(local.User.Name), nil
	}

	global, err := repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return "", fmt.Errorf("reading git config: %w", err)
	}
	if name := strings.TrimSpace(global.User.Name); name != "" {
		return name, nil
	}
	return "", fmt.Errorf("user.name not set")
}

// ChangedFiles lists modified, staged and untracked files relative to
// projectPath, sorted. Files outside projectPath are left out.
func (g *GitInfoAdapter) ChangedFiles(projectPath string) ([]string, error) {
	repo, err := open(projectPath)
	if err != nil {
		return nil, fmt.Errorf("opening git repo: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("getting status: %w", err)
	}

	root := wt.Filesystem.Root()
	base, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, err
	}

	var files []string
	for path, st := range status {
		if st.Staging == git.Unmodified && st.Worktree == git.Unmodified {
			continue
		}
		if st.Staging == git.Deleted || st.Worktree == git.Deleted {
			continue
		}
		rel, err := filepath.Rel(base, filepath.Join(root, filepath.FromSlash(path)))
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		files = append(files, filepath.ToSlash(rel))
	}
	sort.Strings(files)
	return files, nil
}
