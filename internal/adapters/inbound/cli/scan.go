package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/choidage/daker/internal/adapters/outbound/tui"
	"github.com/choidage/daker/internal/application"
	"github.com/choidage/daker/internal/domain"
)

func newScanCmd() *cobra.Command {
	var (
		changed    bool
		mode       string
		jsonOutput bool
		ciMode     bool
	)

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Check every supported file in the workspace",
		Long:  "Run the gates against every file with a supported extension, skipping ignored directories, and total the issues.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parseMode(mode)
			if err != nil {
				return err
			}
			a, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			dir := a.root
			if len(args) == 1 {
				dir = args[0]
			}

			report, err := a.checks.CheckWorkspace(cmd.Context(), dir, application.ScanOptions{
				Mode:        m,
				ChangedOnly: changed,
			})
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			a.persist()

			if jsonOutput {
				if err := renderJSON(cmd, report); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderWorkspace(report))
			}

			if ciMode {
				for _, f := range report.Files {
					if f.Summary.Overall == domain.StatusFailed {
						return fmt.Errorf("%d issues across %d files", report.TotalIssues, report.TotalFiles)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&changed, "changed", false, "Only check files changed in the git working tree")
	cmd.Flags().StringVar(&mode, "mode", string(domain.ModeGateCheck), "Gate mode: gate-check, quick or pipeline")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&ciMode, "ci", false, "CI mode: exit 1 if any file failed a gate")

	return cmd
}

func parseMode(s string) (domain.GateMode, error) {
	switch m := domain.GateMode(s); m {
	case domain.ModeGateCheck, domain.ModeQuick, domain.ModePipeline:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want gate-check, quick or pipeline)", s)
	}
}
