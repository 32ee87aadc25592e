package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultAPIURL      = "http://127.0.0.1:8000"
	DefaultPythonPath  = "python"
	DefaultBackendDir  = "vibe-x"
	DefaultAuthor      = "anonymous"
	DefaultOutputLimit = 1024 * 1024
)

// Config holds project-level configuration loaded from .vibex.yaml.
type Config struct {
	APIURL           string        `yaml:"api_url"            json:"api_url"`
	Author           string        `yaml:"author"             json:"author,omitempty"`
	PythonPath       string        `yaml:"python_path"        json:"python_path"`
	ProjectRoot      string        `yaml:"project_root"       json:"project_root,omitempty"`
	BackendDir       string        `yaml:"backend_dir"        json:"backend_dir"`
	AutoRunOnSave    *bool         `yaml:"auto_run_on_save"   json:"auto_run_on_save,omitempty"`
	Extensions       []string      `yaml:"extensions"         json:"extensions,omitempty"`
	IgnoreDirs       []string      `yaml:"ignore_dirs"        json:"ignore_dirs,omitempty"`
	Timeouts         TimeoutConfig `yaml:"timeouts"           json:"timeouts"`
	LocalOutputLimit int           `yaml:"local_output_limit" json:"local_output_limit"`
	ReconnectDelay   time.Duration `yaml:"reconnect_delay"    json:"reconnect_delay"`
	ScanRate         float64       `yaml:"scan_rate"          json:"scan_rate"`
	LogLevel         string        `yaml:"log_level"          json:"log_level"`
}

// TimeoutConfig bounds every transport boundary. These are the only
// cancellation mechanism in the gate chain.
type TimeoutConfig struct {
	Check  time.Duration `yaml:"check"  json:"check"`
	Status time.Duration `yaml:"status" json:"status"`
	Zone   time.Duration `yaml:"zone"   json:"zone"`
	Local  time.Duration `yaml:"local"  json:"local"`
}

// DefaultExtensions are the file types checked on save and by workspace scans.
var DefaultExtensions = []string{".py", ".ts", ".tsx", ".js", ".jsx"}

// DefaultIgnoreDirs are never descended into by the workspace scanner.
var DefaultIgnoreDirs = []string{
	"node_modules", ".git", "__pycache__", ".venv", "venv", "dist", "build", ".vibex",
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	on := true
	return Config{
		APIURL:        DefaultAPIURL,
		PythonPath:    DefaultPythonPath,
		BackendDir:    DefaultBackendDir,
		AutoRunOnSave: &on,
		Extensions:    append([]string(nil), DefaultExtensions...),
		IgnoreDirs:    append([]string(nil), DefaultIgnoreDirs...),
		Timeouts: TimeoutConfig{
			Check:  10 * time.Second,
			Status: 5 * time.Second,
			Zone:   5 * time.Second,
			Local:  30 * time.Second,
		},
		LocalOutputLimit: DefaultOutputLimit,
		ReconnectDelay:   3 * time.Second,
		ScanRate:         5,
		LogLevel:         "info",
	}
}

// WithDefaults fills every zero field from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.APIURL == "" {
		c.APIURL = d.APIURL
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	if c.PythonPath == "" {
		c.PythonPath = d.PythonPath
	}
	if c.BackendDir == "" {
		c.BackendDir = d.BackendDir
	}
	if c.AutoRunOnSave == nil {
		c.AutoRunOnSave = d.AutoRunOnSave
	}
	if len(c.Extensions) == 0 {
		c.Extensions = d.Extensions
	}
	if len(c.IgnoreDirs) == 0 {
		c.IgnoreDirs = d.IgnoreDirs
	}
	if c.Timeouts.Check == 0 {
		c.Timeouts.Check = d.Timeouts.Check
	}
	if c.Timeouts.Status == 0 {
		c.Timeouts.Status = d.Timeouts.Status
	}
	if c.Timeouts.Zone == 0 {
		c.Timeouts.Zone = d.Timeouts.Zone
	}
	if c.Timeouts.Local == 0 {
		c.Timeouts.Local = d.Timeouts.Local
	}
	if c.LocalOutputLimit == 0 {
		c.LocalOutputLimit = d.LocalOutputLimit
	}
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = d.ReconnectDelay
	}
	if c.ScanRate == 0 {
		c.ScanRate = d.ScanRate
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	return c
}

// RunOnSave reports whether saves trigger a gate run.
func (c Config) RunOnSave() bool {
	return c.AutoRunOnSave == nil || *c.AutoRunOnSave
}

// ResolvedAuthor returns the configured author or the anonymous default.
func (c Config) ResolvedAuthor() string {
	if a := strings.TrimSpace(c.Author); a != "" {
		return a
	}
	return DefaultAuthor
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}

// Validate checks the raw user input for obvious mistakes.
func (c Config) Validate() error {
	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil {
			return fmt.Errorf("api_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("api_url: unsupported scheme %q (want http or https)", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("api_url: missing host")
		}
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extensions: %q must start with a dot", ext)
		}
	}
	for name, d := range map[string]time.Duration{
		"check": c.Timeouts.Check, "status": c.Timeouts.Status,
		"zone": c.Timeouts.Zone, "local": c.Timeouts.Local,
	} {
		if d < 0 {
			return fmt.Errorf("timeouts.%s: must not be negative", name)
		}
	}
	if c.LocalOutputLimit < 0 {
		return fmt.Errorf("local_output_limit: must not be negative")
	}
	if c.ReconnectDelay < 0 {
		return fmt.Errorf("reconnect_delay: must not be negative")
	}
	if c.ScanRate < 0 {
		return fmt.Errorf("scan_rate: must not be negative")
	}
	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}
	return nil
}

// SupportsFile reports whether path has one of the configured extensions.
func (c Config) SupportsFile(path string) bool {
	exts := c.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	lower := strings.ToLower(path)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
