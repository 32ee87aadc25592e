package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/choidage/daker/internal/adapters/outbound/cache"
	"github.com/choidage/daker/internal/adapters/outbound/config"
	"github.com/choidage/daker/internal/adapters/outbound/dashboard"
	"github.com/choidage/daker/internal/adapters/outbound/document"
	"github.com/choidage/daker/internal/adapters/outbound/gitinfo"
	"github.com/choidage/daker/internal/adapters/outbound/history"
	"github.com/choidage/daker/internal/adapters/outbound/localgate"
	"github.com/choidage/daker/internal/adapters/outbound/scanner"
	"github.com/choidage/daker/internal/application"
	"github.com/choidage/daker/internal/domain"
	"github.com/choidage/daker/internal/domain/diagnostics"
	"github.com/choidage/daker/internal/logging"
)

// app is one command invocation's wiring: configuration, logger, and the
// services built on the outbound adapters.
type app struct {
	root    string
	cfg     domain.Config
	log     *logging.Logger
	checks  *application.CheckService
	zones   *application.WorkZoneService
	monitor *application.MonitorService
}

// newApp loads configuration for the --path project and builds services.
// override, when set, adjusts the loaded configuration before use.
func newApp(cmd *cobra.Command, override func(*domain.Config)) (*app, error) {
	projectPath, _ := cmd.Flags().GetString("path")
	root, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("resolving project path: %w", err)
	}

	git := gitinfo.New()
	cfg, err := config.New().WithGit(git).Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if override != nil {
		override(&cfg)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	logger := logging.New(cmd.ErrOrStderr(), logging.ParseLevel(cfg.LogLevel))

	api := dashboard.New(cfg, logger)
	client := application.NewGateClient(api, localgate.New(cfg, logger), application.GateClientConfig{
		RemoteTimeout: cfg.Timeouts.Check,
		LocalTimeout:  cfg.Timeouts.Local,
	}, logger)

	checks := application.NewCheckService(client, diagnostics.NewEngine(), document.New(), cfg, application.CheckDeps{
		Scanner: scanner.New(),
		Git:     git,
		History: history.New(),
		Store:   cache.New(),
	}, logger)
	if err := checks.Restore(); err != nil {
		logger.Warnf("%v", err)
	}

	zones := application.NewWorkZoneService(api, cfg.Timeouts.Zone, logger)
	return &app{
		root:    root,
		cfg:     cfg,
		log:     logger,
		checks:  checks,
		zones:   zones,
		monitor: application.NewMonitorService(api, zones, cfg.Timeouts.Status, logger),
	}, nil
}

// persist saves the diagnostics snapshot; failures are logged only.
func (a *app) persist() {
	if err := a.checks.Persist(); err != nil {
		a.log.Warnf("saving diagnostics: %v", err)
	}
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
