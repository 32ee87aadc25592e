package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/choidage/daker/internal/domain"
	"github.com/choidage/daker/internal/domain/status"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

// RenderDeclare renders the outcome of a work-zone declaration.
func RenderDeclare(r domain.DeclareResult) string {
	var b strings.Builder
	switch {
	case !r.Success:
		fmt.Fprintf(&b, "  %s %s\n", failStyle.Render("✗"), r.Message)
	case r.Offline:
		fmt.Fprintf(&b, "  %s %s\n", warnStyle.Render("⚠"), r.Message)
	default:
		fmt.Fprintf(&b, "  %s %s\n", passStyle.Render("✓"), r.Message)
	}
	for _, c := range r.Conflicts {
		fmt.Fprintf(&b, "    %s %s\n", warnStyle.Render("●"), c)
	}
	return b.String()
}

// RenderZones lists active work zones.
func RenderZones(zones []domain.WorkZone) string {
	var b strings.Builder
	renderSectionHeader(&b, "Work Zones", len(zones))
	if len(zones) == 0 {
		b.WriteString("    " + dimStyle.Render("No active work zones.") + "\n")
		return b.String()
	}
	for _, z := range zones {
		fmt.Fprintf(&b, "    %s %s  %s\n",
			passStyle.Render("●"),
			titleStyle.Render(z.Author),
			faintStyle.Render(z.DeclaredAt),
		)
		if z.Description != "" {
			fmt.Fprintf(&b, "      %s\n", dimStyle.Render(z.Description))
		}
		for _, f := range z.Files {
			fmt.Fprintf(&b, "      %s\n", fileStyle.Render(f))
		}
	}
	return b.String()
}

// RenderAlerts lists alerts, most severe first.
func RenderAlerts(alerts []domain.Alert) string {
	var b strings.Builder
	renderSectionHeader(&b, "Alerts", len(alerts))
	if len(alerts) == 0 {
		b.WriteString("    " + dimStyle.Render("No alerts.") + "\n")
		return b.String()
	}

	sorted := append([]domain.Alert(nil), alerts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return alertRank(sorted[i].Level) < alertRank(sorted[j].Level)
	})
	for _, a := range sorted {
		ack := ""
		if a.Acknowledged {
			ack = "  " + faintStyle.Render("(ack)")
		}
		fmt.Fprintf(&b, "    %s %s  %s%s\n",
			alertTag(a.Level),
			titleStyle.Render(a.Title),
			faintStyle.Render(a.ID),
			ack,
		)
		if a.Message != "" {
			fmt.Fprintf(&b, "          %s\n", dimStyle.Render(a.Message))
		}
	}
	return b.String()
}

// RenderHealth renders the project health breakdown.
func RenderHealth(h *domain.Health) string {
	var b strings.Builder
	if h == nil {
		b.WriteString("  " + dimStyle.Render("Health unavailable.") + "\n")
		return b.String()
	}

	overall := lipgloss.NewStyle().Bold(true).Foreground(scoreColor(h.Overall)).Render(fmt.Sprintf("%.0f / 100", h.Overall))
	b.WriteString(boxStyle.Render(headerStyle.Render("Project Health") + "  " + overall))
	b.WriteString("\n\n")

	for _, m := range []struct {
		name  string
		score float64
	}{
		{"Gate pass rate", h.GatePassRate},
		{"Architecture", h.ArchitectureConsistency},
		{"Code quality", h.CodeQuality},
		{"Activity", h.ActivityIndex},
	} {
		fmt.Fprintf(&b, "  %s %s  %s\n",
			gateNameStyle.Render(padRight(m.name, 20)),
			coloredBar(m.score, 20),
			dimStyle.Render(fmt.Sprintf("%.0f", m.score)),
		)
	}

	if len(h.TechDebt) > 0 {
		b.WriteString("\n")
		renderSectionHeader(&b, "Tech Debt", len(h.TechDebt))
		for _, d := range h.TechDebt {
			fmt.Fprintf(&b, "    %s %s %s\n",
				alertTag(d.Severity),
				fileStyle.Render(fmt.Sprintf("G%d", d.Gate)),
				fmt.Sprintf("%s ×%d", d.Issue, d.Count),
			)
			if d.Suggestion != "" {
				fmt.Fprintf(&b, "          %s\n", hintStyle.Render(d.Suggestion))
			}
		}
	}
	return b.String()
}

// RenderDashboard renders the aggregate dashboard snapshot.
func RenderDashboard(s *domain.DashboardSnapshot) string {
	var b strings.Builder
	sum := status.Aggregate(s.Gates)

	title := headerStyle.Render("vibex dashboard")
	meta := dimStyle.Render(fmt.Sprintf("%d files · %s", s.TotalFiles, s.Timestamp))
	if s.HealthScore > 0 {
		meta += "  " + lipgloss.NewStyle().Foreground(scoreColor(s.HealthScore)).Render(fmt.Sprintf("health %.0f", s.HealthScore))
	}
	b.WriteString(boxStyle.Render(title + "\n" + meta))
	b.WriteString("\n\n")

	if len(s.Gates) == 0 {
		b.WriteString("  " + dimStyle.Render("No gate results yet.") + "\n")
		return b.String()
	}
	for _, g := range s.Gates {
		renderGate(&b, g)
	}
	fmt.Fprintf(&b, "\n  %s %s\n", status.Icon(sum.Overall), faintStyle.Render(sum.Glyphs))
	return b.String()
}

// RenderPanel renders the side-panel view: health, alerts and zones, each
// independently. A section whose fetch failed shows its error instead.
func RenderPanel(p *domain.Panel) string {
	var b strings.Builder
	if err, ok := p.Errors["health"]; ok {
		renderUnavailable(&b, "Health", err)
	} else {
		b.WriteString(RenderHealth(p.Health))
	}
	b.WriteString("\n")
	if err, ok := p.Errors["alerts"]; ok {
		renderUnavailable(&b, "Alerts", err)
	} else {
		b.WriteString(RenderAlerts(p.Alerts))
	}
	b.WriteString("\n")
	if err, ok := p.Errors["zones"]; ok {
		renderUnavailable(&b, "Work Zones", err)
	} else {
		b.WriteString(RenderZones(p.Zones))
	}
	return b.String()
}

// RenderDiagnostics renders stored diagnostic sets keyed by document.
func RenderDiagnostics(docs map[string][]domain.Diagnostic) string {
	var b strings.Builder
	if len(docs) == 0 {
		b.WriteString("  " + dimStyle.Render("No stored diagnostics.") + "\n")
		return b.String()
	}
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		renderSectionHeader(&b, shortenPath(name), len(docs[name]))
		for _, d := range docs[name] {
			renderDiagnostic(&b, d)
		}
	}
	return b.String()
}

func renderSectionHeader(b *strings.Builder, title string, n int) {
	fmt.Fprintf(b, "  %s %s\n",
		sectionHeaderStyle.Render(title),
		dimStyle.Render(fmt.Sprintf("(%d)", n)),
	)
}

func renderUnavailable(b *strings.Builder, title, err string) {
	fmt.Fprintf(b, "  %s %s\n", sectionHeaderStyle.Render(title), failStyle.Render("unavailable"))
	fmt.Fprintf(b, "    %s\n", dimStyle.Render(err))
}

func alertRank(level string) int {
	switch strings.ToLower(level) {
	case "critical", "error":
		return 0
	case "warning", "medium", "high":
		return 1
	default:
		return 2
	}
}

func alertTag(level string) string {
	switch alertRank(level) {
	case 0:
		return errorTagStyle.Render("crit ")
	case 1:
		return warnTagStyle.Render("warn ")
	default:
		return infoTagStyle.Render("info ")
	}
}
