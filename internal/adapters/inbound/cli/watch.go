package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/choidage/daker/internal/adapters/inbound/jobs"
	"github.com/choidage/daker/internal/adapters/inbound/watcher"
	"github.com/choidage/daker/internal/adapters/outbound/push"
	"github.com/choidage/daker/internal/adapters/outbound/tui"
	"github.com/choidage/daker/internal/domain"
)

func newWatchCmd() *cobra.Command {
	var (
		evaluateEvery string
		noPush        bool
	)

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Run gate checks on save and follow dashboard notifications",
		Long: "Watch the workspace and run a gate check whenever a supported file is saved. " +
			"Dashboard push notifications are shown as they arrive; --evaluate-every schedules alert evaluation.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			dir := a.root
			if len(args) == 1 {
				dir = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := &syncWriter{w: cmd.OutOrStdout()}

			w, err := watcher.New(dir, a.cfg, a.log)
			if err != nil {
				return err
			}

			if evaluateEvery != "" {
				_, err := jobs.ScheduleAlertEvaluation(ctx, a.monitor, evaluateEvery, a.cfg.Timeouts.Status, a.log, func(n int) {
					out.print(fmt.Sprintf("  %d new alert(s) raised\n", n))
				})
				if err != nil {
					return err
				}
			}

			var pc *push.Client
			if !noPush {
				if pc, err = push.New(a.cfg.APIURL, a.cfg.ReconnectDelay, a.log); err != nil {
					return err
				}
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return w.Run(gctx, func(ctx context.Context, path string) {
					report, err := a.checks.CheckFile(ctx, path, domain.ModeGateCheck)
					if err != nil {
						a.log.Errorf("check %s: %v", path, err)
						return
					}
					a.persist()
					out.print(tui.RenderFileReport(report))
				})
			})
			if pc != nil {
				g.Go(func() error {
					err := pc.Run(gctx, func(msg domain.PushMessage) {
						panel := a.monitor.OnPush(gctx, msg)
						if s := renderPush(msg, panel); s != "" {
							out.print(s)
						}
					})
					if gctx.Err() != nil {
						return nil
					}
					return err
				})
			}

			out.print(fmt.Sprintf("  watching %s (Ctrl+C to stop)\n", dir))
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&evaluateEvery, "evaluate-every", "", `Evaluate alert rules on a schedule, e.g. "@every 5m"`)
	cmd.Flags().BoolVar(&noPush, "no-push", false, "Do not subscribe to dashboard notifications")
	return cmd
}

// renderPush formats a push notification together with the state it
// caused to be re-fetched. Messages that triggered no re-fetch render "".
func renderPush(msg domain.PushMessage, panel *domain.Panel) string {
	if panel == nil {
		return ""
	}
	var b strings.Builder
	switch msg.Type {
	case domain.PushAlert:
		if errText, ok := panel.Errors["alerts"]; ok {
			fmt.Fprintf(&b, "  alerts unavailable: %s\n", errText)
			return b.String()
		}
		b.WriteString(tui.RenderAlerts(panel.Alerts))
	default:
		var run struct {
			FilePath      string `json:"file_path"`
			OverallStatus string `json:"overall_status"`
		}
		if err := json.Unmarshal(msg.Data, &run); err == nil && run.FilePath != "" {
			fmt.Fprintf(&b, "  %s %s: %s\n", msg.Type, run.FilePath, run.OverallStatus)
		}
		b.WriteString(tui.RenderPanel(panel))
	}
	return b.String()
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) print(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.w, text)
}
