package cli_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/choidage/daker/internal/adapters/inbound/cli"
	"github.com/choidage/daker/internal/adapters/outbound/config"
)

// project is a temporary workspace wired to a fake dashboard.
type project struct {
	root string
	file string
}

func newProject(t *testing.T) project {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/gate-check", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[
			{"gate_number":1,"gate_name":"Syntax","status":"passed","message":"ok","details":[]},
			{"gate_number":2,"gate_name":"Rules","status":"failed","message":"1 issue","details":["L3: bad name"]}
		]}`))
	})
	mux.HandleFunc("/api/pipeline", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"overall_status":"warning","gates":[
			{"gate_number":1,"gate_name":"Syntax","status":"passed","message":"ok"},
			{"gate_number":4,"gate_name":"Review","status":"warning","message":"consider splitting","details":[]}
		]}`))
	})
	mux.HandleFunc("/api/work-zone/declare", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"declared"}`))
	})
	mux.HandleFunc("/api/work-zone/release", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	mux.HandleFunc("/api/work-zone/list", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"zones":[{"author":"bob","files":["a.py"],"description":"Working on a.py","declared_at":"2026-03-01T10:00:00"}]}`))
	})
	mux.HandleFunc("/api/dashboard", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"gates":[],"timestamp":"2026-03-01T10:00:00Z","total_files":3}`))
	})
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"overall":81,"gate_pass_rate":90,"architecture_consistency":70,"code_quality":80,"activity_index":60}`))
	})
	mux.HandleFunc("/api/alerts", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"alerts":[]}`))
	})
	mux.HandleFunc("/api/alerts/evaluate", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"new_alerts":2}`))
	})
	mux.HandleFunc("/api/alerts/acknowledge", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	t.Setenv(config.EnvAPIURL, srv.URL)
	t.Setenv(config.EnvAuthor, "alice")

	root := t.TempDir()
	file := filepath.Join(root, "app.py")
	require.NoError(t, os.WriteFile(file, []byte("import os\n\nBadName = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# readme\n"), 0o644))
	return project{root: root, file: file}
}

// run executes the root command with args against p and returns stdout.
func (p project) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(append(args, "--path", p.root))
	err := cmd.Execute()
	return out.String(), err
}
