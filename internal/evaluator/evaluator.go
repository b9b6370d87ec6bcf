// Package evaluator walks a planned rule order against a validated
// workspace, producing values, authored or runtime vetoes, and
// non-fatal missing-fact results, each with its own operation trace.
package evaluator

import (
	"fmt"
	"time"

	"github.com/benrogmans/Lemma/internal/planner"
	"github.com/benrogmans/Lemma/internal/validator"
	"github.com/benrogmans/Lemma/internal/values"
)

// Evaluate plans and runs the requested rules (every rule in docName
// when ruleNames is empty) against reg, applying overrides (keyed by
// "doc:name") in place of a fact's declared default. A zero timeout
// means no deadline. Every evaluation call gets its own memoisation
// and override state, so concurrent calls against the same *immutable*
// reg never interfere with one another.
func Evaluate(reg *validator.Registry, docName string, ruleNames []string, overrides map[string]values.Value, timeout time.Duration) (*Response, error) {
	doc, ok := reg.Document(docName)
	if !ok {
		return nil, fmt.Errorf("unknown document %q", docName)
	}

	plan, err := planner.Plan(reg, docName, ruleNames)
	if err != nil {
		return nil, err
	}

	requested := ruleNames
	if len(requested) == 0 {
		requested = doc.RuleOrder
	}
	wanted := make(map[string]bool, len(requested))
	for _, name := range requested {
		wanted[docName+":"+name] = true
	}

	c := newCall(reg, overrides, timeout)

	var results []RuleResult
	for _, ref := range plan {
		refDoc, ok := reg.Document(ref.Doc)
		if !ok {
			return nil, fmt.Errorf("unknown document %q", ref.Doc)
		}
		outcome, trace, err := c.evalRule(refDoc, ref.Name)
		if err != nil {
			// EvaluationTimeout: the whole call fails, no partial results.
			return nil, err
		}
		if wanted[ref.Doc+":"+ref.Name] {
			results = append(results, RuleResult{Doc: ref.Doc, Name: ref.Name, Outcome: outcome, Trace: trace})
		}
	}

	return &Response{Results: results}, nil
}
