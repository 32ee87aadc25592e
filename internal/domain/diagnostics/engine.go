// Package diagnostics projects gate results onto per-document diagnostic
// sets. Each run replaces the previous set for its document wholesale.
package diagnostics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/fatih/camelcase"

	"github.com/choidage/daker/internal/domain"
	"github.com/choidage/daker/internal/domain/lineref"
)

// DetailWidth is the column span given to a diagnostic placed on a line.
const DetailWidth = 200

// Ticket orders concurrent runs for the same document. Results carrying an
// older ticket than the last applied one are discarded.
type Ticket struct {
	Document string
	Seq      uint64
}

// Engine owns the diagnostic store. Create one per host session with
// NewEngine and release it with Close.
type Engine struct {
	mu      sync.Mutex
	docs    map[string][]domain.Diagnostic
	issued  map[string]uint64
	applied map[string]uint64
}

func NewEngine() *Engine {
	return &Engine{
		docs:    make(map[string][]domain.Diagnostic),
		issued:  make(map[string]uint64),
		applied: make(map[string]uint64),
	}
}

// Begin issues the next ticket for doc. Call it before starting a run.
func (e *Engine) Begin(doc string) Ticket {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.issued[doc]++
	return Ticket{Document: doc, Seq: e.issued[doc]}
}

// Apply projects results for the ticket's document. It reports false, and
// leaves the store untouched, when a newer ticket was already applied.
func (e *Engine) Apply(t Ticket, lineCount int, results []domain.GateResult) (int, bool) {
	diags := Build(t.Document, lineCount, results)

	e.mu.Lock()
	defer e.mu.Unlock()
	if t.Seq < e.applied[t.Document] {
		return 0, false
	}
	e.applied[t.Document] = t.Seq
	if t.Seq > e.issued[t.Document] {
		e.issued[t.Document] = t.Seq
	}
	e.docs[t.Document] = diags
	return len(diags), true
}

// Project replaces the diagnostic set for doc and returns how many
// diagnostics were written. An all-passed run clears the document.
func (e *Engine) Project(doc string, lineCount int, results []domain.GateResult) int {
	n, _ := e.Apply(e.Begin(doc), lineCount, results)
	return n
}

// Get returns a copy of the diagnostics stored for doc.
func (e *Engine) Get(doc string) []domain.Diagnostic {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Diagnostic(nil), e.docs[doc]...)
}

// Clear drops doc's diagnostics. Runs still in flight for doc are discarded
// when they complete.
func (e *Engine) Clear(doc string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.docs, doc)
	e.issued[doc]++
	e.applied[doc] = e.issued[doc]
}

// ClearAll drops every document's diagnostics.
func (e *Engine) ClearAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for doc := range e.docs {
		e.issued[doc]++
		e.applied[doc] = e.issued[doc]
	}
	e.docs = make(map[string][]domain.Diagnostic)
}

// Documents lists documents that currently hold a diagnostic set, sorted.
func (e *Engine) Documents() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.docs))
	for doc := range e.docs {
		out = append(out, doc)
	}
	sort.Strings(out)
	return out
}

// Snapshot copies the store for persistence.
func (e *Engine) Snapshot() *domain.DiagnosticSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := &domain.DiagnosticSnapshot{
		Documents: make(map[string][]domain.Diagnostic, len(e.docs)),
		Sequence:  make(map[string]uint64, len(e.applied)),
	}
	for doc, diags := range e.docs {
		snap.Documents[doc] = append([]domain.Diagnostic(nil), diags...)
	}
	for doc, seq := range e.applied {
		snap.Sequence[doc] = seq
	}
	return snap
}

// Restore replaces the store with a persisted snapshot.
func (e *Engine) Restore(snap *domain.DiagnosticSnapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs = make(map[string][]domain.Diagnostic)
	e.issued = make(map[string]uint64)
	e.applied = make(map[string]uint64)
	if snap == nil {
		return
	}
	for doc, diags := range snap.Documents {
		e.docs[doc] = append([]domain.Diagnostic(nil), diags...)
	}
	for doc, seq := range snap.Sequence {
		e.issued[doc] = seq
		e.applied[doc] = seq
	}
}

// Close tears the engine down at the end of a host session.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs = make(map[string][]domain.Diagnostic)
	e.issued = make(map[string]uint64)
	e.applied = make(map[string]uint64)
}

// Build derives the candidate diagnostic list for doc without touching any
// store. Passed gates contribute nothing.
func Build(doc string, lineCount int, results []domain.GateResult) []domain.Diagnostic {
	out := []domain.Diagnostic{}
	for _, r := range results {
		if r.Status == domain.StatusPassed {
			continue
		}
		sev := SeverityOf(r.Status)
		source := Source(r)
		if len(r.Details) == 0 {
			out = append(out, domain.Diagnostic{
				Document: doc,
				Severity: sev,
				Message:  Message(r.GateNumber, r.Message),
				Source:   source,
				Gate:     r.GateNumber,
			})
			continue
		}
		for _, d := range r.Details {
			line := lineref.Resolve(d, lineCount)
			out = append(out, domain.Diagnostic{
				Document: doc,
				Range: domain.Range{
					Start: domain.Position{Line: line},
					End:   domain.Position{Line: line, Character: DetailWidth},
				},
				Severity: sev,
				Message:  Message(r.GateNumber, d),
				Source:   source,
				Gate:     r.GateNumber,
			})
		}
	}
	return out
}

// SeverityOf maps a non-passed gate status to a diagnostic severity. Only
// failed gates are errors; warning and skipped gates, including the
// synthetic transport-failure gate, are warnings.
func SeverityOf(s domain.GateStatus) domain.Severity {
	if s == domain.StatusFailed {
		return domain.SeverityError
	}
	return domain.SeverityWarning
}

// Message tags text with its originating gate.
func Message(gate int, text string) string {
	return fmt.Sprintf("[GATE %d] %s", gate, text)
}

// Source returns the diagnostic source slug, e.g. "vibex/gate3/review-agent".
func Source(r domain.GateResult) string {
	slug := kebab(r.GateName)
	if slug == "" {
		return fmt.Sprintf("vibex/gate%d", r.GateNumber)
	}
	return fmt.Sprintf("vibex/gate%d/%s", r.GateNumber, slug)
}

func kebab(name string) string {
	var words []string
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, f := range fields {
		for _, w := range camelcase.Split(f) {
			words = append(words, strings.ToLower(w))
		}
	}
	return strings.Join(words, "-")
}
