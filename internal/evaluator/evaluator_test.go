package evaluator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/benrogmans/Lemma/internal/parser"
	"github.com/benrogmans/Lemma/internal/validator"
	"github.com/benrogmans/Lemma/internal/values"
)

func registryWith(t *testing.T, src string) (*validator.Registry, string) {
	t.Helper()
	doc, err := parser.Parse(src, "t.lemma")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	r := validator.NewRegistry()
	added, _, err := r.AddDocument(doc)
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	return r, added.Name
}

func findResult(t *testing.T, resp *Response, name string) RuleResult {
	t.Helper()
	for _, r := range resp.Results {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no result for rule %q in %+v", name, resp.Results)
	return RuleResult{}
}

func TestEvaluateSimpleBaseRule(t *testing.T) {
	r, doc := registryWith(t, `
doc D
fact base = 100
rule total = base
`)
	resp, err := Evaluate(r, doc, []string{"total"}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	res := findResult(t, resp, "total")
	if res.Outcome.Kind != OutcomeValue || res.Outcome.Value.String() != "100" {
		t.Fatalf("got %+v", res.Outcome)
	}
}

func TestEvaluateUnlessReverseOrderLastMatchingWins(t *testing.T) {
	r, doc := registryWith(t, `
doc D
fact amount = 500
rule discount = 0
	unless amount > 100 then 0.1
	unless amount > 300 then 0.2
`)
	resp, err := Evaluate(r, doc, []string{"discount"}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	res := findResult(t, resp, "discount")
	// Both clauses match; the later-declared one (checked first, in
	// reverse) wins.
	if res.Outcome.Value.String() != "0.2" {
		t.Fatalf("expected the last-declared matching clause to win, got %+v", res.Outcome)
	}
}

func TestEvaluateVetoShortCircuitsResult(t *testing.T) {
	r, doc := registryWith(t, `
doc D
fact amount = 5000
rule charge = amount
	unless amount > 1000 then veto "exceeds limit"
`)
	resp, err := Evaluate(r, doc, []string{"charge"}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	res := findResult(t, resp, "charge")
	if res.Outcome.Kind != OutcomeVeto || res.Outcome.VetoMessage != "exceeds limit" {
		t.Fatalf("got %+v", res.Outcome)
	}
}

func TestEvaluateOverrideReplacesDefault(t *testing.T) {
	r, doc := registryWith(t, `
doc D
fact amount = 100
rule charge = amount
	unless amount > 1000 then veto "too large"
`)
	d, _ := decimal.NewFromString("5000")
	resp, err := Evaluate(r, doc, []string{"charge"}, map[string]values.Value{doc + ":amount": values.Number(d)}, 0)
	if err != nil {
		t.Fatal(err)
	}
	res := findResult(t, resp, "charge")
	if res.Outcome.Kind != OutcomeVeto {
		t.Fatalf("expected override to trigger the veto, got %+v", res.Outcome)
	}
}

func TestEvaluateMissingFactPropagates(t *testing.T) {
	r, doc := registryWith(t, `
doc D
fact required = [number]
rule r = required + 1
`)
	resp, err := Evaluate(r, doc, []string{"r"}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	res := findResult(t, resp, "r")
	if res.Outcome.Kind != OutcomeMissing {
		t.Fatalf("expected a missing-fact outcome, got %+v", res.Outcome)
	}
	if len(res.Outcome.MissingFacts) != 1 || res.Outcome.MissingFacts[0] != doc+":required" {
		t.Fatalf("got %+v", res.Outcome.MissingFacts)
	}
}

func TestEvaluateHaveSwallowsMissing(t *testing.T) {
	r, doc := registryWith(t, `
doc D
fact optional = [number]
rule r = have optional
`)
	resp, err := Evaluate(r, doc, []string{"r"}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	res := findResult(t, resp, "r")
	if res.Outcome.Kind != OutcomeValue || res.Outcome.Value.Bool != false {
		t.Fatalf("expected have to report false for a missing fact, got %+v", res.Outcome)
	}
}

func TestEvaluateAndShortCircuitsMissingOnRightOperand(t *testing.T) {
	r, doc := registryWith(t, `
doc D
fact optional = [number]
rule r = false and optional > 0
`)
	resp, err := Evaluate(r, doc, []string{"r"}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	res := findResult(t, resp, "r")
	if res.Outcome.Kind != OutcomeValue || res.Outcome.Value.Bool != false {
		t.Fatalf("expected short-circuit to produce false without reading optional, got %+v", res.Outcome)
	}
}

func TestEvaluateCompoundExpressionMergesMissingFacts(t *testing.T) {
	r, doc := registryWith(t, `
doc D
fact a = [number]
fact b = [number]
rule r = a + b
`)
	resp, err := Evaluate(r, doc, []string{"r"}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	res := findResult(t, resp, "r")
	if res.Outcome.Kind != OutcomeMissing {
		t.Fatalf("got %+v", res.Outcome)
	}
	if len(res.Outcome.MissingFacts) != 2 {
		t.Fatalf("expected both missing facts in the union, got %+v", res.Outcome.MissingFacts)
	}
}

func TestEvaluateDivisionByZeroBecomesRuntimeVeto(t *testing.T) {
	r, doc := registryWith(t, `
doc D
fact a = 10
fact b = 0
rule r = a / b
`)
	resp, err := Evaluate(r, doc, []string{"r"}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	res := findResult(t, resp, "r")
	if res.Outcome.Kind != OutcomeVeto {
		t.Fatalf("expected division by zero to become a veto, got %+v", res.Outcome)
	}
}

func TestEvaluateUnitConversionRoundTrip(t *testing.T) {
	r, doc := registryWith(t, `
doc D
fact weight = 1000 g
rule in_kg = weight in kg
`)
	resp, err := Evaluate(r, doc, []string{"in_kg"}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	res := findResult(t, resp, "in_kg")
	if res.Outcome.Value.String() != "1 kg" {
		t.Fatalf("got %+v", res.Outcome.Value)
	}
}

func TestEvaluateRuleReferenceResolvesAndMemoizes(t *testing.T) {
	r, doc := registryWith(t, `
doc D
fact a = 10
rule base = a * 2
rule doubled = base? + base?
`)
	resp, err := Evaluate(r, doc, []string{"doubled"}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	res := findResult(t, resp, "doubled")
	if res.Outcome.Value.String() != "40" {
		t.Fatalf("got %+v", res.Outcome.Value)
	}
}

func TestEvaluateTimeoutAbortsWithNoPartialResults(t *testing.T) {
	r, doc := registryWith(t, `
doc D
fact a = 1
rule r1 = a
rule r2 = a
`)
	resp, err := Evaluate(r, doc, []string{"r1", "r2"}, nil, 1*time.Nanosecond)
	if err == nil {
		t.Fatalf("expected a timeout error, got response %+v", resp)
	}
	if resp != nil {
		t.Fatalf("expected no partial results on timeout, got %+v", resp)
	}
}

func TestEvaluateTaxBracketsPickMostSpecificClause(t *testing.T) {
	r, doc := registryWith(t, `
doc D
fact income = 60000
rule tax = income * 0.1
	unless income > 40000 then income * 0.2
	unless income > 100000 then income * 0.3
`)
	resp, err := Evaluate(r, doc, []string{"tax"}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	res := findResult(t, resp, "tax")
	if res.Outcome.Value.String() != "12000" {
		t.Fatalf("expected the 40000 bracket (not the 100000 one) to apply, got %+v", res.Outcome.Value)
	}
}
