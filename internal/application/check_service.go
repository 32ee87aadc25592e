package application

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/choidage/daker/internal/domain"
	"github.com/choidage/daker/internal/domain/diagnostics"
	"github.com/choidage/daker/internal/domain/status"
	"github.com/choidage/daker/internal/logging"
)

// CheckService drives one host's check flow:
// gate client -> diagnostic projection -> status aggregation -> history.
type CheckService struct {
	client  *GateClient
	engine  *diagnostics.Engine
	docs    domain.DocumentReader
	scanner domain.WorkspaceScanner
	git     domain.GitInfo
	history domain.RunHistory
	store   domain.DiagnosticStore
	cfg     domain.Config
	limiter *rate.Limiter
	log     *logging.Logger
	now     func() time.Time
}

// CheckDeps groups the optional collaborators of a CheckService. Nil
// entries disable the matching feature.
type CheckDeps struct {
	Scanner domain.WorkspaceScanner
	Git     domain.GitInfo
	History domain.RunHistory
	Store   domain.DiagnosticStore
}

func NewCheckService(
	client *GateClient,
	engine *diagnostics.Engine,
	docs domain.DocumentReader,
	cfg domain.Config,
	deps CheckDeps,
	logger *logging.Logger,
) *CheckService {
	cfg = cfg.WithDefaults()
	return &CheckService{
		client:  client,
		engine:  engine,
		docs:    docs,
		scanner: deps.Scanner,
		git:     deps.Git,
		history: deps.History,
		store:   deps.Store,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.ScanRate), 1),
		log:     logger.With("check"),
		now:     time.Now,
	}
}

// Engine exposes the diagnostic store owned by this service's session.
func (s *CheckService) Engine() *diagnostics.Engine { return s.engine }

// CheckFile runs the gates for one file and projects the results.
func (s *CheckService) CheckFile(ctx context.Context, path string, mode domain.GateMode) (*domain.FileReport, error) {
	if path == "" {
		return nil, domain.ErrNoFile
	}
	abs, err := s.Resolve(path)
	if err != nil {
		return nil, err
	}

	ticket := s.engine.Begin(abs)
	outcome, err := s.client.Run(ctx, domain.GateRequest{
		FilePath: abs,
		Author:   s.cfg.ResolvedAuthor(),
		Mode:     mode,
	})
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", abs, err)
	}

	lines, err := s.docs.LineCount(abs)
	if err != nil {
		s.log.Debugf("line count file=%s error=%v", abs, err)
	}

	n, applied := s.engine.Apply(ticket, lines, outcome.Results)
	report := &domain.FileReport{
		FilePath:    abs,
		Mode:        mode,
		Source:      string(outcome.Stage),
		Gates:       outcome.Results,
		Summary:     status.Aggregate(outcome.Results),
		Diagnostics: s.engine.Get(abs),
		IssueCount:  n,
		Stale:       !applied,
	}
	if !applied {
		report.IssueCount = len(report.Diagnostics)
		s.log.Infof("discarded stale result file=%s seq=%d", abs, ticket.Seq)
	}
	if outcome.RemoteErr != nil {
		report.RemoteError = outcome.RemoteErr.Error()
	}
	if outcome.LocalErr != nil {
		report.LocalError = outcome.LocalErr.Error()
	}

	s.record(report)
	return report, nil
}

// ScanOptions controls a workspace-wide check.
type ScanOptions struct {
	Mode        domain.GateMode
	ChangedOnly bool
}

// CheckWorkspace checks every supported file under root, one at a time.
func (s *CheckService) CheckWorkspace(ctx context.Context, root string, opts ScanOptions) (*domain.WorkspaceReport, error) {
	if s.scanner == nil {
		return nil, fmt.Errorf("workspace scan unavailable")
	}
	abs, err := s.Resolve(root)
	if err != nil {
		return nil, err
	}

	files, err := s.workspaceFiles(abs, opts.ChangedOnly)
	if err != nil {
		return nil, err
	}

	mode := opts.Mode
	if mode == "" {
		mode = domain.ModeGateCheck
	}

	report := &domain.WorkspaceReport{Root: abs, Files: []*domain.FileReport{}}
	for _, f := range files {
		if err := s.limiter.Wait(ctx); err != nil {
			return report, err
		}
		fr, err := s.CheckFile(ctx, filepath.Join(abs, f), mode)
		if err != nil {
			return report, err
		}
		report.Files = append(report.Files, fr)
		report.TotalIssues += fr.IssueCount
	}
	report.TotalFiles = len(report.Files)
	return report, nil
}

func (s *CheckService) workspaceFiles(root string, changedOnly bool) ([]string, error) {
	scan, err := s.scanner.Scan(root, domain.ScanOptions{
		Extensions: s.cfg.Extensions,
		IgnoreDirs: s.cfg.IgnoreDirs,
	})
	if err != nil {
		return nil, fmt.Errorf("scanning workspace: %w", err)
	}
	if !changedOnly {
		return scan.Files, nil
	}
	if s.git == nil || !s.git.IsGitRepo(root) {
		return nil, fmt.Errorf("%s is not a git repository", root)
	}
	changed, err := s.git.ChangedFiles(root)
	if err != nil {
		return nil, fmt.Errorf("listing changed files: %w", err)
	}
	want := make(map[string]bool, len(changed))
	for _, c := range changed {
		want[filepath.ToSlash(c)] = true
	}
	var out []string
	for _, f := range scan.Files {
		if want[filepath.ToSlash(f)] {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *CheckService) record(r *domain.FileReport) {
	if s.history == nil {
		return
	}
	root := s.projectRoot()
	entry := domain.RunEntry{
		Timestamp: s.now().UTC(),
		FilePath:  r.FilePath,
		Mode:      r.Mode,
		Source:    r.Source,
		Overall:   r.Summary.Overall,
		Passed:    r.Summary.Passed,
		Total:     r.Summary.Total,
		Issues:    r.IssueCount,
		Glyphs:    r.Summary.Glyphs,
	}
	if s.git != nil && s.git.IsGitRepo(root) {
		if hash, err := s.git.CommitHash(root); err == nil {
			entry.CommitHash = hash
		}
	}
	if err := s.history.Save(root, entry); err != nil {
		s.log.Warnf("saving history error=%v", err)
	}
}

// History returns the local run history, newest last. A non-empty file
// restricts it to runs of that file.
func (s *CheckService) History(file string) ([]domain.RunEntry, error) {
	if s.history == nil {
		return nil, nil
	}
	if file == "" {
		return s.history.Load(s.projectRoot())
	}
	abs, err := s.Resolve(file)
	if err != nil {
		return nil, err
	}
	return s.history.LoadFile(s.projectRoot(), abs)
}

// Resolve makes path absolute. Relative paths are taken from the project
// root, not from the process working directory.
func (s *CheckService) Resolve(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.projectRoot(), path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return abs, nil
}

// Restore loads the persisted diagnostic snapshot into the engine.
func (s *CheckService) Restore() error {
	if s.store == nil {
		return nil
	}
	snap, err := s.store.Load(s.projectRoot())
	if err != nil {
		return fmt.Errorf("loading diagnostics: %w", err)
	}
	s.engine.Restore(snap)
	return nil
}

// Persist writes the engine's current state to the snapshot store. An empty
// store removes the snapshot.
func (s *CheckService) Persist() error {
	if s.store == nil {
		return nil
	}
	root := s.projectRoot()
	snap := s.engine.Snapshot()
	if len(snap.Documents) == 0 {
		return s.store.Invalidate(root)
	}
	return s.store.Save(root, snap)
}

func (s *CheckService) projectRoot() string {
	if s.cfg.ProjectRoot != "" {
		return s.cfg.ProjectRoot
	}
	return "."
}
