package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// WorkZone is an advisory claim by one author over a set of files.
type WorkZone struct {
	Author      string   `json:"author"`
	Files       []string `json:"files"`
	Description string   `json:"description"`
	// DeclaredAt is kept as sent; the backend emits ISO timestamps without zone.
	DeclaredAt string `json:"declared_at"`
}

// ConflictList holds overlapping claims reported by a declaration. Entries
// arrive either as plain strings or as overlap objects; objects are rendered
// as "author: file, file".
type ConflictList []string

type overlap struct {
	Author      string   `json:"conflicting_author"`
	Files       []string `json:"overlapping_files"`
	Description string   `json:"their_description"`
}

func (c *ConflictList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(ConflictList, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var o overlap
		if err := json.Unmarshal(item, &o); err != nil {
			return fmt.Errorf("conflict entry: %w", err)
		}
		out = append(out, o.String())
	}
	*c = out
	return nil
}

func (o overlap) String() string {
	author := o.Author
	if author == "" {
		author = "unknown"
	}
	if len(o.Files) == 0 {
		return author
	}
	return author + ": " + strings.Join(o.Files, ", ")
}

// DeclareResult is the outcome of a work-zone declaration.
type DeclareResult struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Conflicts []string `json:"conflicts,omitempty"`
	Offline   bool     `json:"offline,omitempty"`
}

// Alert is a monitoring alert raised by the dashboard.
type Alert struct {
	ID           string  `json:"alert_id"`
	Level        string  `json:"level"`
	Title        string  `json:"title"`
	Message      string  `json:"message"`
	MetricName   string  `json:"metric_name,omitempty"`
	CurrentValue float64 `json:"current_value,omitempty"`
	Threshold    float64 `json:"threshold,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty"`
	Acknowledged bool    `json:"acknowledged"`
}

// TechDebtItem is one entry of the health breakdown's debt list.
type TechDebtItem struct {
	Gate       int    `json:"gate"`
	Issue      string `json:"issue"`
	Count      int    `json:"count"`
	Suggestion string `json:"suggestion"`
	Severity   string `json:"severity"`
}

// Health is the project health breakdown.
type Health struct {
	Overall                 float64        `json:"overall"`
	GatePassRate            float64        `json:"gate_pass_rate"`
	ArchitectureConsistency float64        `json:"architecture_consistency"`
	CodeQuality             float64        `json:"code_quality"`
	ActivityIndex           float64        `json:"activity_index"`
	TechDebt                []TechDebtItem `json:"tech_debt_items,omitempty"`
}

// DashboardSnapshot is the aggregate status returned by the dashboard.
type DashboardSnapshot struct {
	Gates       []GateResult `json:"gates"`
	Timestamp   string       `json:"timestamp"`
	TotalFiles  int          `json:"total_files"`
	HealthScore float64      `json:"health_score,omitempty"`
}

// Panel is the side-panel state assembled from independent fetches. Each
// field is filled independently; a failed fetch leaves its field empty and
// records the error.
type Panel struct {
	Health *Health           `json:"health"`
	Alerts []Alert           `json:"alerts"`
	Zones  []WorkZone        `json:"zones"`
	Errors map[string]string `json:"errors,omitempty"`
}

// PushMessage is one notification from the dashboard's push channel.
type PushMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

const (
	PushAlert           = "alert"
	PushDashboardUpdate = "dashboard_update"
	PushGateResult      = "gate_result"
	PushPipelineResult  = "pipeline_result"
)
