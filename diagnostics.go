package lemma

import "github.com/benrogmans/Lemma/internal/validator"

// Severity is a diagnostic's severity level.
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

// Diagnostic is a non-fatal issue surfaced during AddSource, such as a
// fact whose default type could not be statically determined.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Source   string
	Line     int
	Column   int
}

func toDiagnostics(in []validator.Diagnostic) []Diagnostic {
	out := make([]Diagnostic, len(in))
	for i, d := range in {
		out[i] = Diagnostic{
			Severity: Severity(d.Severity),
			Code:     d.Code.String(),
			Message:  d.Message,
			Source:   d.Span.SourceName,
			Line:     d.Span.StartLine,
			Column:   d.Span.StartCol,
		}
	}
	return out
}
