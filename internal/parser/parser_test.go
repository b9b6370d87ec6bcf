package parser

import (
	"testing"

	"github.com/benrogmans/Lemma/internal/ast"
	"github.com/benrogmans/Lemma/internal/lemmaerr"
)

func mustParse(t *testing.T, src string) *ast.Document {
	t.Helper()
	doc, err := Parse(src, "t.lemma")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return doc
}

func TestParseMinimalDocument(t *testing.T) {
	doc := mustParse(t, `
doc Pricing
fact base_price = 10
rule total = base_price
`)
	if doc.Name != "Pricing" {
		t.Errorf("got name %q", doc.Name)
	}
	if len(doc.Facts) != 1 || doc.Facts[0].Name != "base_price" {
		t.Fatalf("facts: %+v", doc.Facts)
	}
	if len(doc.Rules) != 1 || doc.Rules[0].Name != "total" {
		t.Fatalf("rules: %+v", doc.Rules)
	}
	if _, ok := doc.Rules[0].Base.(*ast.Identifier); !ok {
		t.Fatalf("expected base to be an Identifier, got %T", doc.Rules[0].Base)
	}
}

func TestParseFactWithTypeAnnotation(t *testing.T) {
	doc := mustParse(t, `
doc D
fact x = [number]
fact y = [multi text]
`)
	if doc.Facts[0].Declared == nil || doc.Facts[0].Declared.TypeName != "number" {
		t.Fatalf("fact x: %+v", doc.Facts[0])
	}
	if !doc.Facts[1].Declared.Multi || doc.Facts[1].Declared.TypeName != "text" {
		t.Fatalf("fact y: %+v", doc.Facts[1])
	}
}

func TestParseUnlessVeto(t *testing.T) {
	doc := mustParse(t, `
doc D
fact amount = 10
rule charge = amount
	unless amount > 1000 then veto "too large"
`)
	rule := doc.Rules[0]
	if len(rule.UnlessClauses) != 1 {
		t.Fatalf("unless clauses: %+v", rule.UnlessClauses)
	}
	clause := rule.UnlessClauses[0]
	if clause.Veto == nil {
		t.Fatal("expected a veto clause")
	}
	msg, ok := clause.Veto.Message.(*ast.TextLiteral)
	if !ok || msg.Value != "too large" {
		t.Fatalf("veto message: %+v", clause.Veto.Message)
	}
}

func TestParseUnlessResult(t *testing.T) {
	doc := mustParse(t, `
doc D
fact tier = "gold"
rule discount = 0
	unless tier == "gold" then 0.1
`)
	clause := doc.Rules[0].UnlessClauses[0]
	if clause.Result == nil || clause.Veto != nil {
		t.Fatalf("expected a result clause, got %+v", clause)
	}
	cmp, ok := clause.Condition.(*ast.ComparisonExpr)
	if !ok || cmp.Operator != "==" {
		t.Fatalf("condition: %+v", clause.Condition)
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	doc := mustParse(t, `
doc D
fact a = 1
rule r = 1 + 2 * 3 ^ 2
`)
	add, ok := doc.Rules[0].Base.(*ast.BinaryExpr)
	if !ok || add.Operator != "+" {
		t.Fatalf("top level: %+v", doc.Rules[0].Base)
	}
	mul, ok := add.Right.(*ast.BinaryExpr)
	if !ok || mul.Operator != "*" {
		t.Fatalf("right of +: %+v", add.Right)
	}
	pow, ok := mul.Right.(*ast.BinaryExpr)
	if !ok || pow.Operator != "^" {
		t.Fatalf("right of *: %+v", mul.Right)
	}
}

func TestParseLogicalAndNotPrecedence(t *testing.T) {
	doc := mustParse(t, `
doc D
fact a = true
rule r = not a and a or a
`)
	// or binds loosest: (not a and a) or a
	or, ok := doc.Rules[0].Base.(*ast.LogicalExpr)
	if !ok || or.Operator != "or" {
		t.Fatalf("top level: %+v", doc.Rules[0].Base)
	}
	and, ok := or.Left.(*ast.LogicalExpr)
	if !ok || and.Operator != "and" {
		t.Fatalf("left of or: %+v", or.Left)
	}
	if _, ok := and.Left.(*ast.UnaryExpr); !ok {
		t.Fatalf("left of and: %+v", and.Left)
	}
}

func TestParseRuleReference(t *testing.T) {
	doc := mustParse(t, `
doc D
fact a = 1
rule base = a
rule total = base?
`)
	ref, ok := doc.Rules[1].Base.(*ast.RuleReference)
	if !ok || ref.Path != "base" {
		t.Fatalf("got %+v", doc.Rules[1].Base)
	}
}

func TestParseHaveExpression(t *testing.T) {
	doc := mustParse(t, `
doc D
fact a = [number]
rule r = have a and not have a.b
`)
	and, ok := doc.Rules[0].Base.(*ast.LogicalExpr)
	if !ok {
		t.Fatalf("got %+v", doc.Rules[0].Base)
	}
	have, ok := and.Left.(*ast.HaveExpr)
	if !ok || have.FactPath != "a" || have.Negated {
		t.Fatalf("left: %+v", and.Left)
	}
	haveNot, ok := and.Right.(*ast.HaveExpr)
	if !ok || haveNot.FactPath != "a.b" || !haveNot.Negated {
		t.Fatalf("right: %+v", and.Right)
	}
}

func TestParseUnitConversion(t *testing.T) {
	doc := mustParse(t, `
doc D
fact a = 10 kg
rule r = a in lb
`)
	conv, ok := doc.Rules[0].Base.(*ast.UnitConversionExpr)
	if !ok || conv.TargetUnit != "lb" {
		t.Fatalf("got %+v", doc.Rules[0].Base)
	}
}

func TestParseMoneyLiteral(t *testing.T) {
	doc := mustParse(t, `
doc D
fact price = 10 USD
`)
	money, ok := doc.Facts[0].Default.(*ast.MoneyLiteral)
	if !ok || money.Currency != "USD" || money.Value != "10" {
		t.Fatalf("got %+v", doc.Facts[0].Default)
	}
}

func TestParseMissingDocKeywordIsSyntaxError(t *testing.T) {
	_, err := Parse("fact a = 1", "t.lemma")
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*lemmaerr.SyntaxError); !ok {
		t.Fatalf("expected *lemmaerr.SyntaxError, got %T", err)
	}
}

func TestParseUnclosedParenIsSyntaxError(t *testing.T) {
	_, err := Parse("doc D\nfact a = (1 + 2", "t.lemma")
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*lemmaerr.SyntaxError); !ok {
		t.Fatalf("expected *lemmaerr.SyntaxError, got %T", err)
	}
}

func TestParseExcessiveNestingIsLimitExceeded(t *testing.T) {
	src := "doc D\nfact a = "
	for i := 0; i < MaxNestingDepth+10; i++ {
		src += "("
	}
	src += "1"
	for i := 0; i < MaxNestingDepth+10; i++ {
		src += ")"
	}
	_, err := Parse(src, "t.lemma")
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*lemmaerr.LimitExceeded); !ok {
		t.Fatalf("expected *lemmaerr.LimitExceeded, got %T", err)
	}
}

func TestParseCommentaryBlock(t *testing.T) {
	doc := mustParse(t, `
doc D
"""This document computes pricing."""
fact a = 1
`)
	if doc.Commentary != "This document computes pricing." {
		t.Errorf("got %q", doc.Commentary)
	}
}
