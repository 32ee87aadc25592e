package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/choidage/daker/internal/adapters/outbound/tui"
	"github.com/choidage/daker/internal/domain"
)

func newCheckCmd() *cobra.Command {
	var (
		gateCheck  bool
		jsonOutput bool
		ciMode     bool
	)

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Run a quick gate check on one file",
		Long:  "Run the gates against a file with bypass enabled and show the resulting diagnostics. Falls back to the local backend when the dashboard is unreachable.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := fileArg(args)
			if err != nil {
				return err
			}
			mode := domain.ModeQuick
			if gateCheck {
				mode = domain.ModeGateCheck
			}
			a, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			return runFileCheck(cmd, a, file, mode, jsonOutput, ciMode)
		},
	}

	cmd.Flags().BoolVar(&gateCheck, "gate-check", false, "Use the lightweight gate-check endpoint")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&ciMode, "ci", false, "CI mode: exit 1 if any gate failed")

	return cmd
}

func newPipelineCmd() *cobra.Command {
	var (
		author     string
		jsonOutput bool
		ciMode     bool
	)

	cmd := &cobra.Command{
		Use:   "pipeline <file>",
		Short: "Run the full gate pipeline on one file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := fileArg(args)
			if err != nil {
				return err
			}
			a, err := newApp(cmd, func(cfg *domain.Config) {
				if author != "" {
					cfg.Author = author
				}
			})
			if err != nil {
				return err
			}
			return runFileCheck(cmd, a, file, domain.ModePipeline, jsonOutput, ciMode)
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "Author reported to the dashboard")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&ciMode, "ci", false, "CI mode: exit 1 if any gate failed")

	return cmd
}

// fileArg rejects an empty file before anything else runs.
func fileArg(args []string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", domain.ErrNoFile
	}
	return args[0], nil
}

func runFileCheck(cmd *cobra.Command, a *app, file string, mode domain.GateMode, jsonOutput, ciMode bool) error {
	report, err := a.checks.CheckFile(cmd.Context(), file, mode)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	a.persist()

	if jsonOutput {
		if err := renderJSON(cmd, report); err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderFileReport(report))
	}

	if ciMode && report.Summary.Overall == domain.StatusFailed {
		return fmt.Errorf("%s: %d of %d gates failed", file, report.Summary.Failed, report.Summary.Total)
	}
	return nil
}
