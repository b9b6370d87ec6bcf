package lemma

import (
	"fmt"
	"sort"

	"github.com/benrogmans/Lemma/internal/lemmaerr"
	"github.com/benrogmans/Lemma/internal/parser"
	"github.com/benrogmans/Lemma/internal/validator"
)

// Workspace holds every document ingested so far. Documents are
// immutable once added; AddSource must not be called concurrently
// with Evaluate or Invert, but multiple Evaluate/Invert calls may run
// concurrently against the same workspace once ingest has finished.
type Workspace struct {
	reg *validator.Registry
}

// NewWorkspace returns an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{reg: validator.NewRegistry()}
}

// AddSource parses and validates a single document and, on success,
// adds it to the workspace. The returned sourceID uniquely identifies
// this ingest for logging and diagnostics even if the same document
// name is later replaced in a new workspace. The returned diagnostics
// are non-fatal (e.g. an unresolved default type); a non-nil error
// means the document was rejected outright and was not added.
func (w *Workspace) AddSource(code, sourceName string) (sourceID string, diagnostics []Diagnostic, err error) {
	if len(code) > validator.MaxSourceBytes {
		return "", nil, &lemmaerr.LimitExceeded{Limit: "source bytes", Allowed: validator.MaxSourceBytes, Actual: len(code)}
	}
	doc, err := parser.Parse(code, sourceName)
	if err != nil {
		return "", nil, err
	}
	added, diags, err := w.reg.AddDocument(doc)
	if err != nil {
		return "", nil, err
	}
	return added.ID, toDiagnostics(diags), nil
}

// ListDocuments returns every document name currently loaded, in the
// order they were added.
func (w *Workspace) ListDocuments() []string {
	return w.reg.DocumentNames()
}

// FactSummary describes one fact in a DocumentSummary.
type FactSummary struct {
	Path    string
	Type    string
	Default bool // whether the fact has a default expression (vs. required)
}

// RuleSummary describes one rule in a DocumentSummary.
type RuleSummary struct {
	Name         string
	Dependencies []string
}

// DocumentSummary is the result of DescribeDocument.
type DocumentSummary struct {
	ID    string
	Name  string
	Facts []FactSummary
	Rules []RuleSummary
}

// DescribeDocument returns a summary of a loaded document's facts and
// rules, suitable for driving an editor's autocomplete or a form UI.
func (w *Workspace) DescribeDocument(name string) (*DocumentSummary, error) {
	doc, ok := w.reg.Document(name)
	if !ok {
		return nil, fmt.Errorf("unknown document %q", name)
	}

	summary := &DocumentSummary{ID: doc.ID, Name: doc.Name}
	for _, factName := range doc.FactOrder {
		fs := doc.Facts[factName]
		summary.Facts = append(summary.Facts, FactSummary{
			Path:    factName,
			Type:    factTypeName(fs.Type),
			Default: fs.Default != nil,
		})
	}
	for _, ruleName := range doc.RuleOrder {
		rs := doc.Rules[ruleName]
		var deps []string
		for dep := range rs.FactDeps {
			deps = append(deps, dep)
		}
		for dep := range rs.RuleDeps {
			deps = append(deps, dep)
		}
		sort.Strings(deps)
		summary.Rules = append(summary.Rules, RuleSummary{Name: ruleName, Dependencies: deps})
	}
	return summary, nil
}

func factTypeName(ft validator.FactType) string {
	switch ft.Kind {
	case "money":
		if ft.Currency != "" {
			return fmt.Sprintf("money{%s}", ft.Currency)
		}
		return "money"
	case "unit":
		return fmt.Sprintf("unit{%s}", ft.Dimension)
	case "docref":
		return fmt.Sprintf("doc{%s}", ft.DocRef)
	default:
		return ft.Kind
	}
}
