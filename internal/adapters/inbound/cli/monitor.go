package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/choidage/daker/internal/adapters/outbound/tui"
	"github.com/choidage/daker/internal/domain"
)

func newStatusCmd() *cobra.Command {
	var (
		panel      bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the dashboard snapshot",
		Long:  "Show the dashboard's aggregate gate status. With --panel, also show health, active alerts and work zones, each fetched independently.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			snap := a.monitor.Snapshot(cmd.Context())

			var p *domain.Panel
			if panel {
				p = a.monitor.Refresh(cmd.Context())
			}

			if jsonOutput {
				return renderJSON(cmd, struct {
					Dashboard *domain.DashboardSnapshot `json:"dashboard"`
					Panel     *domain.Panel             `json:"panel,omitempty"`
				}{snap, p})
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderDashboard(snap))
			if p != nil {
				fmt.Fprintln(cmd.OutOrStdout())
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderPanel(p))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&panel, "panel", false, "Also show health, alerts and work zones")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newHealthCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show the project health breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			h, err := a.monitor.Health(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return renderJSON(cmd, h)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHealth(h))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newAlertsCmd() *cobra.Command {
	var (
		all        bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List monitoring alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			alerts, err := a.monitor.Alerts(cmd.Context(), !all)
			if err != nil {
				return err
			}
			if jsonOutput {
				return renderJSON(cmd, alerts)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderAlerts(alerts))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include acknowledged alerts")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.AddCommand(newAlertsEvaluateCmd())
	cmd.AddCommand(newAlertsAckCmd())
	return cmd
}

func newAlertsEvaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Ask the dashboard to evaluate its alert rules now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			n, err := a.monitor.Evaluate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d new alert(s)\n", n)
			return nil
		},
	}
}

func newAlertsAckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ack <alert-id|all>",
		Short: "Acknowledge an alert, or every alert with \"all\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			ok, err := a.monitor.Acknowledge(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("alert %s not acknowledged", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Acknowledged %s\n", args[0])
			return nil
		},
	}
}
