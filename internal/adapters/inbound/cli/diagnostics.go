package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/choidage/daker/internal/adapters/outbound/tui"
	"github.com/choidage/daker/internal/domain"
)

func newDiagnosticsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "diagnostics [file]",
		Short: "Show stored diagnostics",
		Long:  "Show the diagnostics projected by earlier runs, for one file or for every file that has any.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			engine := a.checks.Engine()

			docs := map[string][]domain.Diagnostic{}
			if len(args) == 1 {
				abs, err := a.checks.Resolve(args[0])
				if err != nil {
					return err
				}
				if d := engine.Get(abs); len(d) > 0 {
					docs[abs] = d
				}
			} else {
				for _, doc := range engine.Documents() {
					docs[doc] = engine.Get(doc)
				}
			}

			if jsonOutput {
				return renderJSON(cmd, docs)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderDiagnostics(docs))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.AddCommand(newDiagnosticsClearCmd())
	return cmd
}

func newDiagnosticsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [file]",
		Short: "Clear stored diagnostics for one file or all files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			engine := a.checks.Engine()
			if len(args) == 1 {
				abs, err := a.checks.Resolve(args[0])
				if err != nil {
					return err
				}
				engine.Clear(abs)
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared diagnostics for %s\n", abs)
			} else {
				engine.ClearAll()
				fmt.Fprintln(cmd.OutOrStdout(), "Cleared all diagnostics")
			}
			if err := a.checks.Persist(); err != nil {
				return fmt.Errorf("saving diagnostics: %w", err)
			}
			return nil
		},
	}
}
