package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/choidage/daker/internal/domain"
)

const (
	fileName    = ".vibex.yaml"
	envFileName = ".env"
)

// Environment keys that override file values.
const (
	EnvAPIURL   = "VIBEX_API_URL"
	EnvAuthor   = "VIBEX_AUTHOR"
	EnvPython   = "VIBEX_PYTHON"
	EnvLogLevel = "VIBEX_LOG_LEVEL"
)

// YAMLLoader implements domain.ConfigLoader by reading .vibex.yaml, then
// .env, then the process environment.
type YAMLLoader struct {
	git domain.GitInfo
}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// WithGit lets the loader fall back to the repository's user.name when no
// author is configured.
func (l *YAMLLoader) WithGit(g domain.GitInfo) *YAMLLoader {
	l.git = g
	return l
}

// Load reads configuration for projectPath. A missing file yields defaults.
func (l *YAMLLoader) Load(projectPath string) (domain.Config, error) {
	var cfg domain.Config

	data, err := os.ReadFile(filepath.Join(projectPath, fileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return domain.Config{}, fmt.Errorf("parsing %s: %w", fileName, err)
		}
		// Validate before merging; catches typos in user's raw input.
		if err := cfg.Validate(); err != nil {
			return domain.Config{}, fmt.Errorf("invalid %s: %w", fileName, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return domain.Config{}, err
	}

	env, err := readEnv(projectPath)
	if err != nil {
		return domain.Config{}, err
	}
	applyEnv(&cfg, env)
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid environment: %w", err)
	}

	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = projectPath
	} else if !filepath.IsAbs(cfg.ProjectRoot) {
		cfg.ProjectRoot = filepath.Join(projectPath, cfg.ProjectRoot)
	}
	if abs, err := filepath.Abs(cfg.ProjectRoot); err == nil {
		cfg.ProjectRoot = abs
	}

	if strings.TrimSpace(cfg.Author) == "" && l.git != nil && l.git.IsGitRepo(cfg.ProjectRoot) {
		if name, err := l.git.Author(cfg.ProjectRoot); err == nil {
			cfg.Author = name
		}
	}

	return cfg.WithDefaults(), nil
}

// readEnv merges .env values under the process environment. The process
// environment itself is never modified.
func readEnv(projectPath string) (map[string]string, error) {
	env, err := godotenv.Read(filepath.Join(projectPath, envFileName))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("parsing %s: %w", envFileName, err)
		}
		env = map[string]string{}
	}
	for _, key := range []string{EnvAPIURL, EnvAuthor, EnvPython, EnvLogLevel} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	return env, nil
}

func applyEnv(cfg *domain.Config, env map[string]string) {
	if v := env[EnvAPIURL]; v != "" {
		cfg.APIURL = v
	}
	if v := env[EnvAuthor]; v != "" {
		cfg.Author = v
	}
	if v := env[EnvPython]; v != "" {
		cfg.PythonPath = v
	}
	if v := env[EnvLogLevel]; v != "" {
		cfg.LogLevel = v
	}
}
