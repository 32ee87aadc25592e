package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/choidage/daker/internal/adapters/outbound/tui"
	"github.com/choidage/daker/internal/domain"
)

func newZoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zone",
		Short: "Work-zone commands",
		Long:  "Declare, release and list advisory work zones so collaborators know who is editing what.",
	}
	cmd.AddCommand(newZoneDeclareCmd())
	cmd.AddCommand(newZoneReleaseCmd())
	cmd.AddCommand(newZoneListCmd())
	return cmd
}

func newZoneDeclareCmd() *cobra.Command {
	var (
		user        string
		description string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "declare <file...>",
		Short: "Declare a work zone over one or more files",
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]string, 0, len(args))
			for _, f := range args {
				if strings.TrimSpace(f) != "" {
					files = append(files, f)
				}
			}
			if len(files) == 0 {
				return domain.ErrNoFile
			}

			a, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			if user == "" {
				user = a.cfg.ResolvedAuthor()
			}

			res := a.zones.DeclareFiles(cmd.Context(), files, user, description)
			if jsonOutput {
				if err := renderJSON(cmd, res); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderDeclare(res))
			}
			if !res.Success {
				return errors.New(res.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Author declaring the zone (defaults to the configured author)")
	cmd.Flags().StringVar(&description, "description", "", "What you are working on")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newZoneReleaseCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "release",
		Short: "Release your work zone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			if user == "" {
				user = a.cfg.ResolvedAuthor()
			}
			if err := a.zones.Release(cmd.Context(), user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Work Zone released for %s\n", user)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Author whose zone to release (defaults to the configured author)")
	return cmd
}

func newZoneListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active work zones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			zones, listErr := a.zones.List(cmd.Context())
			if zones == nil {
				zones = []domain.WorkZone{}
			}
			if jsonOutput {
				if err := renderJSON(cmd, zones); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderZones(zones))
			}
			return listErr
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
