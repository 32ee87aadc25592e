package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/choidage/daker/internal/adapters/outbound/tui"
	"github.com/choidage/daker/internal/domain"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history [file]",
		Short: "Show local run history, optionally for one file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			var file string
			if len(args) == 1 {
				file = args[0]
			}
			entries, err := a.checks.History(file)
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}
			if entries == nil {
				entries = []domain.RunEntry{}
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}
			if jsonOutput {
				return renderJSON(cmd, entries)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Show at most this many recent runs (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
