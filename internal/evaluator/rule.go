package evaluator

import (
	"github.com/benrogmans/Lemma/internal/lemmaerr"
	"github.com/benrogmans/Lemma/internal/validator"
)

// evalRule evaluates one rule's unless-clauses in reverse source order
// ("last matching wins"), falling through to the base expression when
// none match. A clause's condition or result reading a vetoed rule
// propagates that veto onto the whole rule, even when the condition's
// own boolean value would not otherwise have mattered: once a Veto is
// read, there is no boolean (or any other value) left to extract from
// it. Missing facts propagate as a union of every fact reached along
// the way. The only error this returns is an EvaluationTimeout, which
// aborts the entire call; veto and missing outcomes are terminal
// results for this rule, not errors, and its caller keeps going.
func (c *call) evalRule(doc *validator.Document, name string) (Outcome, []Record, error) {
	id := doc.Name + ":" + name
	if entry, ok := c.ruleMemo[id]; ok {
		return entry.outcome, entry.trace, nil
	}
	if err := c.checkDeadline(); err != nil {
		return Outcome{}, nil, err
	}

	rs := doc.Rules[name]
	var trace []Record

	finish := func(o Outcome) (Outcome, []Record, error) {
		trace = append(trace, Record{Kind: FinalResult, RuleName: id, Outcome: outcomeLabel(o), Result: outcomeResultString(o)})
		c.ruleMemo[id] = ruleCacheEntry{outcome: o, trace: trace}
		return o, trace, nil
	}

	clauses := rs.Rule.UnlessClauses
	for i := len(clauses) - 1; i >= 0; i-- {
		uc := clauses[i]

		condVal, err := c.evalExpr(doc, uc.Condition, &trace)
		if err != nil {
			if to, ok := err.(*lemmaerr.EvaluationTimeout); ok {
				return Outcome{}, trace, to
			}
			o := outcomeFromSignal(err)
			trace = append(trace, Record{Kind: UnlessClauseMatched, Index: i, Outcome: "propagated " + outcomeLabel(o)})
			return finish(o)
		}
		if !condVal.Bool {
			trace = append(trace, Record{Kind: UnlessClauseSkipped, Index: i})
			continue
		}

		if uc.Veto != nil {
			msg := ""
			if uc.Veto.Message != nil {
				mv, merr := c.evalExpr(doc, uc.Veto.Message, &trace)
				if merr != nil {
					if to, ok := merr.(*lemmaerr.EvaluationTimeout); ok {
						return Outcome{}, trace, to
					}
					o := outcomeFromSignal(merr)
					trace = append(trace, Record{Kind: UnlessClauseMatched, Index: i, Outcome: "propagated " + outcomeLabel(o)})
					return finish(o)
				}
				msg = mv.Text
			}
			trace = append(trace, Record{Kind: UnlessClauseMatched, Index: i, Outcome: "veto: " + msg})
			av := &lemmaerr.AuthoredVeto{Message: msg}
			return finish(vetoOutcome(av.Error()))
		}

		resVal, rerr := c.evalExpr(doc, uc.Result, &trace)
		if rerr != nil {
			if to, ok := rerr.(*lemmaerr.EvaluationTimeout); ok {
				return Outcome{}, trace, to
			}
			o := outcomeFromSignal(rerr)
			trace = append(trace, Record{Kind: UnlessClauseMatched, Index: i, Outcome: "propagated " + outcomeLabel(o)})
			return finish(o)
		}
		trace = append(trace, Record{Kind: UnlessClauseMatched, Index: i, Result: resVal.String()})
		return finish(valueOutcome(resVal))
	}

	baseVal, err := c.evalExpr(doc, rs.Rule.Base, &trace)
	if err != nil {
		if to, ok := err.(*lemmaerr.EvaluationTimeout); ok {
			return Outcome{}, trace, to
		}
		return finish(outcomeFromSignal(err))
	}
	return finish(valueOutcome(baseVal))
}
