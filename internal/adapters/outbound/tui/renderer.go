package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/choidage/daker/internal/domain"
	"github.com/choidage/daker/internal/domain/status"
)

// ── warm palette ──
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	info      = lipgloss.Color("#8B949E") // soft blue-gray
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	gateNameStyle = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderFileReport renders one file run: header, per-gate lines and the
// diagnostics that were projected from it.
func RenderFileReport(r *domain.FileReport) string {
	var b strings.Builder

	sum := r.Summary
	header := fmt.Sprintf("%s %s  %s",
		status.Icon(sum.Overall),
		titleStyle.Render(shortenPath(r.FilePath)),
		statusStyle(sum.Overall).Bold(true).Render(fmt.Sprintf("%d/%d passed", sum.Passed, sum.Total)),
	)
	sub := dimStyle.Render(fmt.Sprintf("%s · %s", r.Mode, r.Source))
	if sum.Glyphs != "" {
		sub += "  " + faintStyle.Render(sum.Glyphs)
	}
	b.WriteString(boxStyle.Render(header + "\n" + sub))
	b.WriteString("\n\n")

	for _, g := range r.Gates {
		renderGate(&b, g)
	}

	if r.RemoteError != "" {
		fmt.Fprintf(&b, "\n  %s %s\n", warnTagStyle.Render("remote"), dimStyle.Render(r.RemoteError))
	}
	if r.LocalError != "" {
		fmt.Fprintf(&b, "  %s %s\n", errorTagStyle.Render("local "), dimStyle.Render(r.LocalError))
	}
	if r.Stale {
		fmt.Fprintf(&b, "\n  %s\n", dimStyle.Render("A newer run for this file was already applied; diagnostics unchanged."))
	}

	if len(r.Diagnostics) > 0 {
		b.WriteString("\n  " + separatorLine + "\n\n")
		b.WriteString("  " + titleStyle.Render("Diagnostics") + "  " + dimStyle.Render(fmt.Sprintf("(%d)", len(r.Diagnostics))) + "\n\n")
		for _, d := range r.Diagnostics {
			renderDiagnostic(&b, d)
		}
	}

	b.WriteString("\n  " + RenderStatusBar(r.IssueCount) + "\n")
	return b.String()
}

func renderGate(b *strings.Builder, g domain.GateResult) {
	icon := statusStyle(g.Status).Render(status.Glyph(g.Status))
	name := gateNameStyle.Render(padRight(fmt.Sprintf("G%d %s", g.GateNumber, g.GateName), 28))
	if g.Status == domain.StatusSkipped {
		name = skipStyle.Render(padRight(fmt.Sprintf("G%d %s", g.GateNumber, g.GateName), 28))
	}
	fmt.Fprintf(b, "  %s %s %s\n", icon, name, dimStyle.Render(g.Message))
	if g.Status == domain.StatusPassed {
		return
	}
	for _, d := range g.Details {
		fmt.Fprintf(b, "      %s\n", faintStyle.Render(d))
	}
}

func renderDiagnostic(b *strings.Builder, d domain.Diagnostic) {
	fmt.Fprintf(b, "    %s %s %s\n",
		severityTag(d.Severity),
		fileStyle.Render(fmt.Sprintf("%s:%d", shortenPath(d.Document), d.Range.Start.Line+1)),
		d.Message,
	)
}

// RenderStatusBar is the compact one-line state shown after a run.
func RenderStatusBar(issues int) string {
	text := "vibex: " + status.BarText(issues)
	if issues == 0 {
		return passStyle.Render(text)
	}
	return warnStyle.Render(text)
}

// RenderWorkspace renders the totals of a workspace scan.
func RenderWorkspace(r *domain.WorkspaceReport) string {
	var b strings.Builder
	b.WriteString("\n  " + headerStyle.Render("vibex scan") + "  " + dimStyle.Render(r.Root) + "\n")
	b.WriteString("  " + separatorLine + "\n\n")

	if len(r.Files) == 0 {
		b.WriteString("  " + dimStyle.Render("No supported files found.") + "\n")
		return b.String()
	}

	for _, f := range r.Files {
		rel := f.FilePath
		if p, err := filepath.Rel(r.Root, f.FilePath); err == nil && !strings.HasPrefix(p, "..") {
			rel = filepath.ToSlash(p)
		}
		issues := dimStyle.Render("clean")
		if f.IssueCount > 0 {
			issues = warnStyle.Render(fmt.Sprintf("%d issues", f.IssueCount))
		}
		fmt.Fprintf(&b, "  %s %s %s  %s\n",
			statusStyle(f.Summary.Overall).Render(status.Glyph(f.Summary.Overall)),
			padRight(rel, 36),
			faintStyle.Render(f.Summary.Glyphs),
			issues,
		)
	}

	b.WriteString("\n  " + separatorLine + "\n")
	fmt.Fprintf(&b, "  %s  %s\n",
		titleStyle.Render(fmt.Sprintf("%d files", r.TotalFiles)),
		RenderStatusBar(r.TotalIssues),
	)
	return b.String()
}

// RenderHistory formats local run history, oldest first.
func RenderHistory(entries []domain.RunEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No run history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Run History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := e.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}

		line := fmt.Sprintf("  %s  %s  %s %s  %s  %s",
			dimStyle.Render(e.Timestamp.Format("2006-01-02 15:04")),
			faintStyle.Render(hash),
			statusStyle(e.Overall).Render(status.Glyph(e.Overall)),
			padRight(shortenPath(e.FilePath), 28),
			dimStyle.Render(fmt.Sprintf("%d/%d", e.Passed, e.Total)),
			faintStyle.Render(string(e.Mode)),
		)

		// Trend against the previous run of the same file.
		for j := i - 1; j >= 0; j-- {
			if entries[j].FilePath != e.FilePath {
				continue
			}
			if diff := e.Issues - entries[j].Issues; diff < 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↓%d", -diff))
			} else if diff > 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↑%d", diff))
			}
			break
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func severityTag(s domain.Severity) string {
	switch s {
	case domain.SeverityError:
		return errorTagStyle.Render("error")
	case domain.SeverityWarning:
		return warnTagStyle.Render("warn ")
	default:
		return infoTagStyle.Render("info ")
	}
}

func statusStyle(s domain.GateStatus) lipgloss.Style {
	switch s {
	case domain.StatusPassed:
		return passStyle
	case domain.StatusWarning:
		return warnStyle
	case domain.StatusFailed:
		return failStyle
	default:
		return skipStyle
	}
}

func scoreColor(score float64) lipgloss.Color {
	switch {
	case score >= 80:
		return success
	case score >= 60:
		return lipgloss.Color("#A3E635") // lime
	case score >= 40:
		return warning
	default:
		return danger
	}
}

func coloredBar(score float64, width int) string {
	filled := max(0, min(int(score)*width/100, width))
	empty := width - filled

	filledStr := lipgloss.NewStyle().Foreground(scoreColor(score)).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func shortenPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) > 3 {
		return strings.Join(parts[len(parts)-3:], "/")
	}
	return filepath.ToSlash(path)
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
