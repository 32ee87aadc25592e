package cli

import "github.com/spf13/cobra"

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vibex",
		Short: "Quality gates for every save",
		Long: "vibex runs the project's quality gates against a file, turns the results into " +
			"positioned diagnostics, and keeps collaborators aware of each other's work zones.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("path", ".", "Project path")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newPipelineCmd())
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newDiagnosticsCmd())
	cmd.AddCommand(newZoneCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newHealthCmd())
	cmd.AddCommand(newAlertsCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newMCPCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
