package evaluator

import (
	"fmt"
	"sort"

	"github.com/benrogmans/Lemma/internal/lemmaerr"
)

// vetoSignal is the internal control-flow error used to thread a veto
// up through expression evaluation. It is never returned to a caller
// outside this package; evalRule converts it to an Outcome. cause is
// the typed reason: a *lemmaerr.RuntimeVeto when an operation itself
// failed, or a forwarded veto message when one propagates up from a
// rule reference.
type vetoSignal struct{ cause error }

func (e *vetoSignal) Error() string { return e.cause.Error() }
func (e *vetoSignal) Unwrap() error { return e.cause }

// runtimeVeto builds a vetoSignal for an operation that failed at
// evaluation time: division by zero, an invalid unit conversion
// target, a regex compile failure, and similar.
func runtimeVeto(kind, detail string) *vetoSignal {
	return &vetoSignal{cause: &lemmaerr.RuntimeVeto{Kind: kind, Detail: detail}}
}

// forwardedVeto wraps a veto message already produced by a referenced
// rule; it is propagation, not a new failure, so it carries no
// RuntimeVeto/AuthoredVeto cause of its own.
func forwardedVeto(msg string) *vetoSignal {
	return &vetoSignal{cause: fmt.Errorf("%s", msg)}
}

// missingSignal threads a set of unresolved required facts up through
// expression evaluation, backed by a *lemmaerr.MissingFacts. Multiple
// missingSignals merge by set union as they propagate through a
// compound expression.
type missingSignal struct{ facts map[string]bool }

func (e *missingSignal) Error() string {
	return (&lemmaerr.MissingFacts{Facts: sortedKeys(e.facts)}).Error()
}

func isVeto(err error) bool {
	_, ok := err.(*vetoSignal)
	return ok
}

// mergeSignals combines the errors from two independently-evaluated
// operands. A veto on either side wins outright; otherwise missing-fact
// sets are unioned.
func mergeSignals(a, b error) error {
	if isVeto(a) {
		return a
	}
	if isVeto(b) {
		return b
	}
	am, aok := a.(*missingSignal)
	bm, bok := b.(*missingSignal)
	switch {
	case aok && bok:
		merged := make(map[string]bool, len(am.facts)+len(bm.facts))
		for k := range am.facts {
			merged[k] = true
		}
		for k := range bm.facts {
			merged[k] = true
		}
		return &missingSignal{facts: merged}
	case aok:
		return am
	case bok:
		return bm
	case a != nil:
		return a
	default:
		return b
	}
}

// outcomeFromSignal converts a propagated veto/missing signal (or any
// other runtime error reaching a rule boundary) into an Outcome.
func outcomeFromSignal(err error) Outcome {
	if v, ok := err.(*vetoSignal); ok {
		return vetoOutcome(v.Error())
	}
	if m, ok := err.(*missingSignal); ok {
		return missingOutcome(sortedKeys(m.facts))
	}
	return vetoOutcome(err.Error())
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func outcomeLabel(o Outcome) string {
	switch o.Kind {
	case OutcomeValue:
		return "value"
	case OutcomeVeto:
		return "veto"
	case OutcomeMissing:
		return "missing"
	default:
		return "unknown"
	}
}

func outcomeResultString(o Outcome) string {
	switch o.Kind {
	case OutcomeValue:
		return o.Value.String()
	case OutcomeVeto:
		return o.VetoMessage
	case OutcomeMissing:
		return joinStrings(o.MissingFacts)
	default:
		return ""
	}
}

func joinStrings(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
