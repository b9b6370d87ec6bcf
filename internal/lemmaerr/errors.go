// Package lemmaerr defines the typed error taxonomy returned by every
// stage of the pipeline: lexer, parser, validator, evaluator and inverter.
package lemmaerr

import "fmt"

// Span locates a diagnostic in source text.
type Span struct {
	SourceName string
	StartLine  int
	StartCol   int
	EndLine    int
	EndCol     int
}

func (s Span) String() string {
	if s.SourceName == "" {
		return fmt.Sprintf("%d:%d", s.StartLine, s.StartCol)
	}
	return fmt.Sprintf("%s:%d:%d", s.SourceName, s.StartLine, s.StartCol)
}

// SyntaxError is raised by the lexer or parser. Parsing never partially
// succeeds: on a SyntaxError the document is rejected outright.
type SyntaxError struct {
	Span     Span
	Expected string
	Message  string
}

func (e *SyntaxError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("syntax error at %s: expected %s: %s", e.Span, e.Expected, e.Message)
	}
	return fmt.Sprintf("syntax error at %s: %s", e.Span, e.Message)
}

// SemanticError covers duplicate names, unknown references, type
// mismatches, dependency cycles and dimension/currency mismatches.
type SemanticError struct {
	Span    Span
	Message string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("semantic error at %s: %s", e.Span, e.Message)
}

// LimitExceeded is raised when a configured resource limit is crossed
// during lexing, parsing or validation.
type LimitExceeded struct {
	Limit   string
	Allowed int
	Actual  int
}

func (e *LimitExceeded) Error() string {
	return fmt.Sprintf("limit exceeded: %s allows %d, got %d", e.Limit, e.Allowed, e.Actual)
}

// MissingFacts is attached to a RuleResult, never returned as a bare
// error from evaluation: it is non-fatal and siblings continue.
type MissingFacts struct {
	Facts []string
}

func (e *MissingFacts) Error() string {
	return fmt.Sprintf("missing facts: %v", e.Facts)
}

// RuntimeVeto models an operation that converts to a veto at the
// evaluator boundary: division by zero, an invalid unit conversion
// target, or a regex compile failure.
type RuntimeVeto struct {
	Kind   string
	Detail string
}

func (e *RuntimeVeto) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// AuthoredVeto is an explicit `veto` clause matched during evaluation.
type AuthoredVeto struct {
	Message string
}

func (e *AuthoredVeto) Error() string {
	return e.Message
}

// EvaluationTimeout is raised when the evaluation deadline is reached.
// The whole call fails; no partial results are returned.
type EvaluationTimeout struct {
	DeadlineMS int64
}

func (e *EvaluationTimeout) Error() string {
	return fmt.Sprintf("evaluation timeout after %dms", e.DeadlineMS)
}

// InversionError is raised when an inversion target is unreachable:
// a value the rule can never produce, or a veto message it never emits.
type InversionError struct {
	RuleName string
	Reason   string
}

func (e *InversionError) Error() string {
	return fmt.Sprintf("cannot invert rule %q: %s", e.RuleName, e.Reason)
}
