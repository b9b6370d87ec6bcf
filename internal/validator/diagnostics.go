// Package validator turns a parsed *ast.Document into a validated
// document model: it builds the symbol table, resolves cross-document
// references, infers expression types on a best-effort basis, detects
// dependency cycles, and enforces resource limits.
package validator

import "github.com/benrogmans/Lemma/internal/lemmaerr"

type Severity int

const (
	Error Severity = iota
	Warning
	Hint
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Hint:
		return "hint"
	default:
		return "unknown"
	}
}

type DiagnosticCode int

const (
	ShadowedCrossDocName DiagnosticCode = iota
	UnresolvedDefaultType
	RedundantUnlessClause
)

func (c DiagnosticCode) String() string {
	switch c {
	case ShadowedCrossDocName:
		return "shadowed_cross_doc_name"
	case UnresolvedDefaultType:
		return "unresolved_default_type"
	case RedundantUnlessClause:
		return "redundant_unless_clause"
	default:
		return "unknown"
	}
}

// Diagnostic is a non-fatal observation surfaced alongside a successful
// validation, as opposed to a lemmaerr error which rejects the document.
type Diagnostic struct {
	Severity Severity
	Code     DiagnosticCode
	Message  string
	Span     lemmaerr.Span
}

func (d Diagnostic) String() string {
	return d.Severity.String() + " at " + d.Span.String() + ": " + d.Message
}
