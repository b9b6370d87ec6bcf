package lemma

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/benrogmans/Lemma/internal/evaluator"
	"github.com/benrogmans/Lemma/internal/values"
)

var decimal100 = decimal.NewFromInt(100)

// OperationRecord is one entry in a rule's operation trace, serialised
// for audit logs or a debugging UI.
type OperationRecord struct {
	Kind     string   `json:"kind"`
	FactPath string   `json:"fact_path,omitempty"`
	RuleName string   `json:"rule_name,omitempty"`
	Op       string   `json:"op,omitempty"`
	Operands []string `json:"operands,omitempty"`
	Result   string   `json:"result,omitempty"`
	Outcome  string   `json:"outcome,omitempty"`
	Index    int      `json:"index,omitempty"`
}

// RuleResult is one rule's evaluated outcome, wire-shaped per the
// typed-value JSON convention: numbers as strings to preserve
// decimals, money/unit/duration as {amount, currency|unit}, dates as
// ISO-8601 strings.
type RuleResult struct {
	Name         string            `json:"name"`
	Value        interface{}       `json:"value,omitempty"`
	Veto         string            `json:"veto,omitempty"`
	MissingFacts []string          `json:"missing_facts,omitempty"`
	Operations   []OperationRecord `json:"operations"`
}

// Response is the result of an Evaluate call.
type Response struct {
	Results  []RuleResult `json:"results"`
	Warnings []string     `json:"warnings"`
}

func fromEvaluatorResponse(r *evaluator.Response) *Response {
	out := &Response{}
	for _, rr := range r.Results {
		item := RuleResult{Name: rr.Doc + ":" + rr.Name, Operations: toOperationRecords(rr.Trace)}
		switch rr.Outcome.Kind {
		case evaluator.OutcomeValue:
			item.Value = wireValue(rr.Outcome.Value)
		case evaluator.OutcomeVeto:
			item.Veto = rr.Outcome.VetoMessage
		case evaluator.OutcomeMissing:
			item.MissingFacts = rr.Outcome.MissingFacts
		}
		out.Results = append(out.Results, item)
	}
	return out
}

func toOperationRecords(trace []evaluator.Record) []OperationRecord {
	out := make([]OperationRecord, len(trace))
	for i, rec := range trace {
		out[i] = OperationRecord{
			Kind:     rec.Kind.String(),
			FactPath: rec.FactPath,
			RuleName: rec.RuleName,
			Op:       rec.Op,
			Operands: rec.Operands,
			Result:   rec.Result,
			Outcome:  rec.Outcome,
			Index:    rec.Index,
		}
	}
	return out
}

// wireValue renders a Value in the typed-value JSON shape used at the
// system boundary.
func wireValue(v values.Value) interface{} {
	switch v.Kind {
	case values.KindNumber:
		return v.Num.String()
	case values.KindPercentage:
		return v.Num.Mul(decimal100).String()
	case values.KindText:
		return v.Text
	case values.KindBoolean:
		return v.Bool
	case values.KindDate:
		return v.Date.Format(time.RFC3339)
	case values.KindMoney:
		return map[string]string{"amount": v.Num.String(), "currency": v.Currency}
	case values.KindUnit:
		return map[string]string{"amount": v.Num.String(), "unit": v.UnitName}
	case values.KindDuration:
		return map[string]string{"amount": v.Num.String(), "unit": v.UnitName}
	case values.KindRegex:
		return v.Text
	default:
		return nil
	}
}
