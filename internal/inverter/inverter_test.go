package inverter

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/benrogmans/Lemma/internal/ast"
	"github.com/benrogmans/Lemma/internal/lemmaerr"
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

func num(n int64) values.Value {
	return values.Number(decimal.NewFromInt(n))
}

func TestInvertSolvesLinearEquation(t *testing.T) {
	r, doc := registryWith(t, `
doc D
fact price = [number]
fact quantity = [number]
rule total = price * quantity
`)
	given := map[string]values.Value{"quantity": num(4)}
	shape, err := Invert(r, doc, "total", Target{Kind: TargetValue, Op: Eq, Value: num(100)}, given)
	if err != nil {
		t.Fatal(err)
	}
	if len(shape.Relationships) != 1 {
		t.Fatalf("expected a single relationship, got %+v", shape.Relationships)
	}
	eq, ok := shape.Relationships[0].(Equation)
	if !ok {
		t.Fatalf("expected an Equation, got %T", shape.Relationships[0])
	}
	if eq.Lhs != "price" {
		t.Fatalf("expected to solve for price, got %q", eq.Lhs)
	}
	folded := hydrate(eq.Rhs, nil)
	v, ok := literalToValue(folded)
	if !ok {
		t.Fatalf("expected the solved rhs to fold to a literal, got %#v", folded)
	}
	if v.String() != "25" {
		t.Fatalf("expected price == 25, got %s", v.String())
	}
	if len(shape.FreeVariables) != 0 {
		t.Fatalf("expected no free variables once quantity is given and price is solved, got %+v", shape.FreeVariables)
	}
}

func TestInvertVetoTargetYieldsImplicitConstraint(t *testing.T) {
	r, doc := registryWith(t, `
doc D
fact amount = [number]
rule charge = amount
	unless amount > 1000 then veto "too large"
`)
	shape, err := Invert(r, doc, "charge", Target{Kind: TargetVeto}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(shape.Relationships) != 1 {
		t.Fatalf("expected one relationship, got %+v", shape.Relationships)
	}
	imp, ok := shape.Relationships[0].(Implicit)
	if !ok {
		t.Fatalf("expected an Implicit relationship, got %T", shape.Relationships[0])
	}
	if !imp.Outcome.IsVeto {
		t.Fatal("expected the surviving branch to be the veto branch")
	}
	lit, ok := imp.Outcome.VetoMessage.(*ast.TextLiteral)
	if !ok || lit.Value != "too large" {
		t.Fatalf("got veto message %#v", imp.Outcome.VetoMessage)
	}
	if len(shape.FreeVariables) != 1 || shape.FreeVariables[0] != "amount" {
		t.Fatalf("expected amount as the sole free variable, got %+v", shape.FreeVariables)
	}
}

func TestInvertVetoTargetFiltersByMessage(t *testing.T) {
	r, doc := registryWith(t, `
doc D
fact amount = [number]
rule charge = amount
	unless amount > 1000 then veto "too large"
`)
	_, err := Invert(r, doc, "charge", Target{Kind: TargetVeto, VetoMessage: "wrong message"}, nil)
	if err == nil {
		t.Fatal("expected no branch to match an unrelated veto message")
	}
	if _, ok := err.(*lemmaerr.InversionError); !ok {
		t.Fatalf("expected *lemmaerr.InversionError, got %T", err)
	}
}

func TestInvertAnyValueProducesPiecewiseWithSharedVariable(t *testing.T) {
	r, doc := registryWith(t, `
doc D
fact amount = [number]
rule discount = 0
	unless amount > 100 then 0.1
	unless amount > 300 then 0.2
`)
	shape, err := Invert(r, doc, "discount", Target{Kind: TargetAnyValue}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(shape.Relationships) != 1 {
		t.Fatalf("expected one relationship, got %+v", shape.Relationships)
	}
	pw, ok := shape.Relationships[0].(Piecewise)
	if !ok {
		t.Fatalf("expected a Piecewise relationship, got %T", shape.Relationships[0])
	}
	if len(pw.Branches) != 3 {
		t.Fatalf("expected base + 2 unless branches, got %d", len(pw.Branches))
	}
	if pw.Variable != "amount" {
		t.Fatalf("expected amount as the single shared guard variable, got %q", pw.Variable)
	}
}

func TestInvertUnknownRuleOrDocument(t *testing.T) {
	r, doc := registryWith(t, "doc D\nfact a = 1\nrule r = a\n")
	if _, err := Invert(r, "Nope", "r", Target{Kind: TargetAnyValue}, nil); err == nil {
		t.Fatal("expected an error for an unknown document")
	}
	if _, err := Invert(r, doc, "nope", Target{Kind: TargetAnyValue}, nil); err == nil {
		t.Fatal("expected an error for an unknown rule")
	}
}

func TestInvertNoBranchCanProduceTarget(t *testing.T) {
	r, doc := registryWith(t, "doc D\nfact a = [number]\nrule r = a\n")
	_, err := Invert(r, doc, "r", Target{Kind: TargetVeto}, nil)
	if err == nil {
		t.Fatal("expected an error: the rule never vetoes")
	}
	if _, ok := err.(*lemmaerr.InversionError); !ok {
		t.Fatalf("expected *lemmaerr.InversionError, got %T", err)
	}
}

func TestGetValidDomainConstrainsAgainstVeto(t *testing.T) {
	r, doc := registryWith(t, `
doc D
fact amount = [number]
rule charge = amount
	unless amount > 1000 then veto "too large"
`)
	dom, err := GetValidDomain(r, doc, "charge", "amount", nil)
	if err != nil {
		t.Fatal(err)
	}
	if dom.Kind != DomainConstrained {
		t.Fatalf("expected a constrained domain, got %+v", dom)
	}
	if len(dom.Constraints) != 1 {
		t.Fatalf("expected one constraint, got %+v", dom.Constraints)
	}
	cmp, ok := dom.Constraints[0].(*ast.ComparisonExpr)
	if !ok || cmp.Operator != "<=" {
		t.Fatalf("expected amount <= 1000, got %#v", dom.Constraints[0])
	}
}

func TestGetValidDomainUnconstrainedWhenRuleNeverVetoes(t *testing.T) {
	r, doc := registryWith(t, "doc D\nfact amount = [number]\nrule charge = amount\n")
	dom, err := GetValidDomain(r, doc, "charge", "amount", nil)
	if err != nil {
		t.Fatal(err)
	}
	if dom.Kind != DomainUnconstrained {
		t.Fatalf("expected an unconstrained domain, got %+v", dom)
	}
}

func TestHydrateSubstitutesAndFolds(t *testing.T) {
	node := &ast.BinaryExpr{Operator: "+", Left: &ast.Identifier{Path: "a"}, Right: &ast.NumberLiteral{Value: "3"}}
	folded := hydrate(node, map[string]values.Value{"a": num(2)})
	v, ok := literalToValue(folded)
	if !ok {
		t.Fatalf("expected a folded literal, got %#v", folded)
	}
	if v.String() != "5" {
		t.Fatalf("got %s", v.String())
	}
}

func TestHydrateLeavesUnknownFactsUnfolded(t *testing.T) {
	node := &ast.BinaryExpr{Operator: "+", Left: &ast.Identifier{Path: "a"}, Right: &ast.Identifier{Path: "b"}}
	folded := hydrate(node, map[string]values.Value{"a": num(2)})
	bin, ok := folded.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected a binary expr to remain, got %#v", folded)
	}
	if _, ok := bin.Left.(*ast.NumberLiteral); !ok {
		t.Fatalf("expected the left side to be substituted, got %#v", bin.Left)
	}
	if id, ok := bin.Right.(*ast.Identifier); !ok || id.Path != "b" {
		t.Fatalf("expected b to remain a free identifier, got %#v", bin.Right)
	}
}

func TestHydrateDoesNotFoldThroughDivisionByZero(t *testing.T) {
	node := &ast.BinaryExpr{Operator: "/", Left: &ast.NumberLiteral{Value: "1"}, Right: &ast.NumberLiteral{Value: "0"}}
	folded := hydrate(node, nil)
	if _, ok := folded.(*ast.BinaryExpr); !ok {
		t.Fatalf("expected division by zero to stay unfolded, got %#v", folded)
	}
}

func TestNegateComparisonFlipsOperator(t *testing.T) {
	cmp := &ast.ComparisonExpr{Operator: ">", Left: &ast.Identifier{Path: "a"}, Right: &ast.NumberLiteral{Value: "5"}}
	n, ok := negate(cmp).(*ast.ComparisonExpr)
	if !ok || n.Operator != "<=" {
		t.Fatalf("expected negate(>) to be <=, got %#v", negate(cmp))
	}
}

func TestNegateLogicalAppliesDeMorgan(t *testing.T) {
	expr := &ast.LogicalExpr{
		Operator: "and",
		Left:     &ast.ComparisonExpr{Operator: ">", Left: &ast.Identifier{Path: "a"}, Right: &ast.NumberLiteral{Value: "1"}},
		Right:    &ast.ComparisonExpr{Operator: "<", Left: &ast.Identifier{Path: "b"}, Right: &ast.NumberLiteral{Value: "2"}},
	}
	neg, ok := negate(expr).(*ast.LogicalExpr)
	if !ok || neg.Operator != "or" {
		t.Fatalf("expected negate(and) to be or, got %#v", negate(expr))
	}
	left, ok := neg.Left.(*ast.ComparisonExpr)
	if !ok || left.Operator != "<=" {
		t.Fatalf("expected left to negate to <=, got %#v", neg.Left)
	}
}

func TestSolveEquationLinearAddition(t *testing.T) {
	guard := &ast.ComparisonExpr{
		Operator: "==",
		Left:     &ast.BinaryExpr{Operator: "+", Left: &ast.Identifier{Path: "x"}, Right: &ast.NumberLiteral{Value: "5"}},
		Right:    &ast.NumberLiteral{Value: "10"},
	}
	eq, ok := solveEquation(guard)
	if !ok {
		t.Fatal("expected a solvable equation")
	}
	if eq.Lhs != "x" {
		t.Fatalf("got lhs %q", eq.Lhs)
	}
	v, ok := literalToValue(hydrate(eq.Rhs, nil))
	if !ok || v.String() != "5" {
		t.Fatalf("expected x == 5, got %#v", eq.Rhs)
	}
}

func TestSolveEquationRejectsMultipleUnknowns(t *testing.T) {
	guard := &ast.ComparisonExpr{
		Operator: "==",
		Left:     &ast.BinaryExpr{Operator: "+", Left: &ast.Identifier{Path: "a"}, Right: &ast.Identifier{Path: "b"}},
		Right:    &ast.NumberLiteral{Value: "10"},
	}
	if _, ok := solveEquation(guard); ok {
		t.Fatal("expected solveEquation to refuse a guard with two free facts")
	}
}

func TestSolveEquationRejectsNonEquality(t *testing.T) {
	guard := &ast.ComparisonExpr{Operator: ">", Left: &ast.Identifier{Path: "x"}, Right: &ast.NumberLiteral{Value: "5"}}
	if _, ok := solveEquation(guard); ok {
		t.Fatal("expected solveEquation to refuse a non-equality comparison")
	}
}

func TestCollectFactRefsTreatsRuleReferenceAsOpaque(t *testing.T) {
	node := &ast.BinaryExpr{Operator: "+", Left: &ast.RuleReference{Path: "base"}, Right: &ast.Identifier{Path: "a"}}
	refs := map[string]bool{}
	collectFactRefs(node, refs)
	if !refs["base"] || !refs["a"] {
		t.Fatalf("expected both base and a as refs, got %+v", refs)
	}
}
