package application_test

import (
	"context"
	"errors"
	"sync"

	"github.com/choidage/daker/internal/domain"
)

type fakeRunner struct {
	mu    sync.Mutex
	calls int
	reqs  []domain.GateRequest
	run   *domain.RawRun
	err   error
	block bool
	hook  func()
}

func (f *fakeRunner) RunGates(ctx context.Context, req domain.GateRequest) (*domain.RawRun, error) {
	f.mu.Lock()
	f.calls++
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.hook != nil {
		f.hook()
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.run, f.err
}

func (f *fakeRunner) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func intp(n int) *int { return &n }

func rawGates(statuses ...string) []domain.RawGateResult {
	out := make([]domain.RawGateResult, len(statuses))
	for i, s := range statuses {
		out[i] = domain.RawGateResult{Gate: intp(i + 1), Name: "Gate", Status: s, Message: s}
	}
	return out
}

type fakeDocs struct {
	lines int
	err   error
}

func (f fakeDocs) LineCount(string) (int, error) { return f.lines, f.err }

type fakeZones struct {
	resp      *domain.DeclareResponse
	err       error
	zones     []domain.WorkZone
	listErr   error
	released  []string
	gotAuthor string
	gotFiles  []string
	gotDesc   string
}

func (f *fakeZones) Declare(_ context.Context, author string, files []string, desc string) (*domain.DeclareResponse, error) {
	f.gotAuthor, f.gotFiles, f.gotDesc = author, files, desc
	return f.resp, f.err
}

func (f *fakeZones) Release(_ context.Context, author string) error {
	f.released = append(f.released, author)
	return f.err
}

func (f *fakeZones) List(context.Context) ([]domain.WorkZone, error) {
	return f.zones, f.listErr
}

type fakeMonitor struct {
	snap      *domain.DashboardSnapshot
	snapErr   error
	health    *domain.Health
	healthErr error
	alerts    []domain.Alert
	alertsErr error
	evaluated int
	acked     []string

	mu          sync.Mutex
	alertsCalls int
	evalCalls   int
	healthCalls int
}

func (f *fakeMonitor) Dashboard(context.Context) (*domain.DashboardSnapshot, error) {
	return f.snap, f.snapErr
}

func (f *fakeMonitor) Health(context.Context) (*domain.Health, error) {
	f.mu.Lock()
	f.healthCalls++
	f.mu.Unlock()
	return f.health, f.healthErr
}

func (f *fakeMonitor) Alerts(_ context.Context, activeOnly bool) ([]domain.Alert, error) {
	f.mu.Lock()
	f.alertsCalls++
	f.mu.Unlock()
	if f.alertsErr != nil {
		return nil, f.alertsErr
	}
	if !activeOnly {
		return f.alerts, nil
	}
	var out []domain.Alert
	for _, a := range f.alerts {
		if !a.Acknowledged {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeMonitor) EvaluateAlerts(context.Context) (int, error) {
	f.mu.Lock()
	f.evalCalls++
	f.mu.Unlock()
	return f.evaluated, nil
}

func (f *fakeMonitor) AcknowledgeAlert(_ context.Context, id string) (bool, error) {
	f.acked = append(f.acked, id)
	return true, nil
}

type memHistory struct {
	entries []domain.RunEntry
	err     error
}

func (m *memHistory) Save(_ string, e domain.RunEntry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memHistory) Load(string) ([]domain.RunEntry, error) { return m.entries, nil }

func (m *memHistory) LoadFile(_ string, file string) ([]domain.RunEntry, error) {
	var out []domain.RunEntry
	for _, e := range m.entries {
		if e.FilePath == file {
			out = append(out, e)
		}
	}
	return out, nil
}

type memStore struct {
	snap        *domain.DiagnosticSnapshot
	invalidated bool
}

func (m *memStore) Load(string) (*domain.DiagnosticSnapshot, error) { return m.snap, nil }

func (m *memStore) Save(_ string, s *domain.DiagnosticSnapshot) error {
	m.snap = s
	return nil
}

func (m *memStore) Invalidate(string) error {
	m.snap = nil
	m.invalidated = true
	return nil
}

type fakeScanner struct{ files []string }

func (f fakeScanner) Scan(root string, _ domain.ScanOptions) (*domain.ScanResult, error) {
	return &domain.ScanResult{RootPath: root, Files: f.files}, nil
}

type fakeGit struct {
	repo    bool
	changed []string
}

func (f fakeGit) IsGitRepo(string) bool                 { return f.repo }
func (f fakeGit) CommitHash(string) (string, error)     { return "abc1234", nil }
func (f fakeGit) Author(string) (string, error)         { return "dev", nil }
func (f fakeGit) ChangedFiles(string) ([]string, error) { return f.changed, nil }

var errRefused = errors.New("dial tcp 127.0.0.1:8000: connection refused")
