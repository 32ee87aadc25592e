// Package status computes the tallies and compact summaries shown in status
// bars and notifications. Everything here is pure.
package status

import (
	"fmt"
	"strings"

	"github.com/choidage/daker/internal/domain"
)

// Glyph returns the one-character marker for a gate status.
func Glyph(s domain.GateStatus) string {
	switch s {
	case domain.StatusPassed:
		return "✓"
	case domain.StatusWarning:
		return "⚠"
	case domain.StatusFailed:
		return "✗"
	default:
		return "-"
	}
}

// Icon returns the header marker for an overall status.
func Icon(overall domain.GateStatus) string {
	switch overall {
	case domain.StatusPassed:
		return "✅"
	case domain.StatusWarning:
		return "⚠️"
	case domain.StatusFailed:
		return "❌"
	default:
		return "➖"
	}
}

// Overall is failed if any gate failed, else warning if any warned, else
// passed. Skipped gates are ignored.
func Overall(gates []domain.GateResult) domain.GateStatus {
	return domain.OverallOf(gates)
}

// Glyphs builds "G1:✓ G2:✗ ..." in execution order.
func Glyphs(gates []domain.GateResult) string {
	parts := make([]string, 0, len(gates))
	for _, g := range gates {
		parts = append(parts, fmt.Sprintf("G%d:%s", g.GateNumber, Glyph(g.Status)))
	}
	return strings.Join(parts, " ")
}

// Aggregate tallies gates by status.
func Aggregate(gates []domain.GateResult) domain.Summary {
	s := domain.Summary{
		Total:   len(gates),
		Overall: Overall(gates),
		Glyphs:  Glyphs(gates),
	}
	for _, g := range gates {
		switch g.Status {
		case domain.StatusPassed:
			s.Passed++
		case domain.StatusFailed:
			s.Failed++
		case domain.StatusWarning:
			s.Warning++
		case domain.StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// BarText is the status-bar label for a run with the given diagnostic count.
func BarText(issues int) string {
	switch issues {
	case 0:
		return "All Passed"
	case 1:
		return "1 issue"
	default:
		return fmt.Sprintf("%d issues", issues)
	}
}
