// Package localgate runs the backend's gates through a local interpreter
// subprocess. It is the fallback transport when the dashboard is unreachable.
package localgate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/choidage/daker/internal/domain"
	"github.com/choidage/daker/internal/logging"
)

var (
	ErrInterpreterNotFound = errors.New("python interpreter not found")
	ErrOutputTooLarge      = errors.New("gate output exceeds limit")
	ErrMalformedOutput     = errors.New("malformed gate output")
)

const stderrLimit = 64 * 1024

// Env is added to the inherited environment of every run.
var Env = []string{
	"VIBE_X_NO_WRAP_STDOUT=1",
	"PYTHONIOENCODING=utf-8",
}

type command struct {
	Name  string
	Args  []string
	Env   []string
	Dir   string
	Limit int
}

type commandResult struct {
	Stdout    []byte
	Stderr    string
	ExitCode  int
	Truncated bool
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, cmd command) (commandResult, error)
}

// execRunner executes commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, c command) (commandResult, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	stdout := &cappedBuffer{limit: c.Limit}
	stderr := &cappedBuffer{limit: stderrLimit}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	result := commandResult{
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.String(),
		Truncated: stdout.overflow,
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}
	return result, nil
}

// cappedBuffer keeps at most limit bytes and drops the rest, so a chatty
// child never blocks on a full pipe. The buffer is a named field so that
// io.Copy cannot bypass Write through an inherited ReadFrom.
type cappedBuffer struct {
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if b.limit > 0 {
		room := b.limit - b.buf.Len()
		if room < len(p) {
			b.overflow = true
			if room > 0 {
				b.buf.Write(p[:room])
			}
			return len(p), nil
		}
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) Bytes() []byte  { return b.buf.Bytes() }
func (b *cappedBuffer) String() string { return b.buf.String() }
func (b *cappedBuffer) Len() int       { return b.buf.Len() }

// Runner implements domain.GateRunner over a local interpreter.
type Runner struct {
	python      string
	projectRoot string
	backendDir  string
	timeout     time.Duration
	limit       int
	runner      commandRunner
	lookPath    func(string) (string, error)
	log         *logging.Logger
}

func New(cfg domain.Config, logger *logging.Logger) *Runner {
	cfg = cfg.WithDefaults()
	return &Runner{
		python:      cfg.PythonPath,
		projectRoot: cfg.ProjectRoot,
		backendDir:  cfg.BackendDir,
		timeout:     cfg.Timeouts.Local,
		limit:       cfg.LocalOutputLimit,
		runner:      execRunner{},
		lookPath:    exec.LookPath,
		log:         logger.With("local"),
	}
}

// RunGates runs every gate for req.FilePath in one interpreter invocation.
// Mode is ignored: the local path always runs the full fixed gate order.
func (r *Runner) RunGates(ctx context.Context, req domain.GateRequest) (*domain.RawRun, error) {
	python, err := r.interpreter()
	if err != nil {
		return nil, err
	}
	root, err := r.root()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	r.log.Debugf("exec %s file=%s root=%s", python, req.FilePath, root)
	res, err := r.runner.Run(ctx, command{
		Name:  python,
		Args:  []string{"-c", program, root, r.backendDir, req.FilePath},
		Env:   Env,
		Dir:   root,
		Limit: r.limit,
	})
	if res.Truncated {
		return nil, fmt.Errorf("%w (%d bytes)", ErrOutputTooLarge, r.limit)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("gate subprocess timed out after %s", r.timeout)
	}
	if err != nil {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("gate subprocess exited with code %d: %s", res.ExitCode, lastLine(msg))
	}

	gates, err := parseOutput(res.Stdout)
	if err != nil {
		return nil, err
	}
	return &domain.RawRun{FilePath: req.FilePath, Gates: gates}, nil
}

// parseOutput accepts exactly one non-empty line holding a JSON array.
func parseOutput(out []byte) ([]domain.RawGateResult, error) {
	s := strings.TrimSpace(string(out))
	if s == "" {
		return nil, fmt.Errorf("%w: empty output", ErrMalformedOutput)
	}
	if strings.ContainsAny(s, "\r\n") {
		return nil, fmt.Errorf("%w: expected one line, got %d", ErrMalformedOutput, strings.Count(s, "\n")+1)
	}
	if !strings.HasPrefix(s, "[") {
		return nil, fmt.Errorf("%w: expected JSON array", ErrMalformedOutput)
	}
	var gates []domain.RawGateResult
	if err := json.Unmarshal([]byte(s), &gates); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return gates, nil
}

// interpreter resolves the configured interpreter, then python3, then python.
func (r *Runner) interpreter() (string, error) {
	candidates := []string{r.python}
	for _, alt := range []string{"python3", "python"} {
		if alt != r.python {
			candidates = append(candidates, alt)
		}
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if p, err := r.lookPath(c); err == nil {
			if c != r.python {
				r.log.Infof("configured interpreter %q not found; using %s", r.python, p)
			}
			return p, nil
		}
	}
	return "", fmt.Errorf("%w (tried %s)", ErrInterpreterNotFound, strings.Join(candidates, ", "))
}

func (r *Runner) root() (string, error) {
	if r.projectRoot != "" {
		return filepath.Abs(r.projectRoot)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}
	return wd, nil
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
