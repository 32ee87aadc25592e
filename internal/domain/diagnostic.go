package domain

// Severity of an editor diagnostic.
type Severity string

const (
	SeverityError       Severity = "error"
	SeverityWarning     Severity = "warning"
	SeverityInformation Severity = "information"
)

// Position is a 0-based line/character location in a document.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Diagnostic is a positioned issue marker derived from a gate result.
type Diagnostic struct {
	Document string   `json:"document"`
	Range    Range    `json:"range"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Source   string   `json:"source"`
	Gate     int      `json:"gate"`
}

// DiagnosticSnapshot is the persisted form of every document's diagnostic set.
type DiagnosticSnapshot struct {
	Documents map[string][]Diagnostic `json:"documents"`
	Sequence  map[string]uint64       `json:"sequence,omitempty"`
}
