package inverter

import (
	"fmt"
	"sort"

	"github.com/benrogmans/Lemma/internal/ast"
	"github.com/benrogmans/Lemma/internal/lemmaerr"
	"github.com/benrogmans/Lemma/internal/validator"
	"github.com/benrogmans/Lemma/internal/values"
)

type pieceBranch struct {
	condition ast.Node
	outcome   BranchOutcome
}

// expandBranches reconstructs the rule's piecewise form in reverse
// source order (most specific first, matching "last matching wins"),
// augmenting each branch's guard with the negation of every
// more-specific branch already processed so the guards never overlap.
func expandBranches(rule *ast.Rule) []pieceBranch {
	clauses := rule.UnlessClauses
	var out []pieceBranch
	var negations []ast.Node

	for i := len(clauses) - 1; i >= 0; i-- {
		uc := clauses[i]
		guard := uc.Condition
		for _, neg := range negations {
			guard = and(guard, neg)
		}
		outcome := BranchOutcome{}
		if uc.Veto != nil {
			outcome.IsVeto = true
			outcome.VetoMessage = uc.Veto.Message
		} else {
			outcome.Expr = uc.Result
		}
		out = append(out, pieceBranch{condition: guard, outcome: outcome})
		negations = append(negations, negate(uc.Condition))
	}

	var baseGuard ast.Node = &ast.BooleanLiteral{Value: true}
	for _, neg := range negations {
		baseGuard = and(baseGuard, neg)
	}
	out = append(out, pieceBranch{condition: baseGuard, outcome: BranchOutcome{Expr: rule.Base}})
	return out
}

func filterByTarget(branches []pieceBranch, target Target) []pieceBranch {
	var out []pieceBranch
	for _, br := range branches {
		switch target.Kind {
		case TargetValue, TargetAnyValue:
			if br.outcome.IsVeto {
				continue
			}
		case TargetVeto:
			if !br.outcome.IsVeto {
				continue
			}
			if target.VetoMessage != "" {
				if br.outcome.VetoMessage == nil {
					continue
				}
				if lit, ok := br.outcome.VetoMessage.(*ast.TextLiteral); ok && lit.Value != target.VetoMessage {
					continue
				}
			}
		case TargetAnyVeto:
			if !br.outcome.IsVeto {
				continue
			}
		}
		out = append(out, br)
	}
	return out
}

// imposeGuard conjoins a surviving branch's guard with the target
// value comparison; value-free targets (AnyValue, veto targets) need
// no extra guard since the branch was already filtered by outcome shape.
func imposeGuard(br pieceBranch, target Target) ast.Node {
	if target.Kind != TargetValue {
		return br.condition
	}
	cmp := &ast.ComparisonExpr{Operator: target.Op.symbol(), Left: br.outcome.Expr, Right: valueToLiteral(target.Value)}
	return and(br.condition, cmp)
}

// Invert computes the Shape of facts assignments that would make
// ruleName produce target, given that givenFacts are already fixed.
func Invert(reg *validator.Registry, docName, ruleName string, target Target, givenFacts map[string]values.Value) (*Shape, error) {
	doc, ok := reg.Document(docName)
	if !ok {
		return nil, fmt.Errorf("unknown document %q", docName)
	}
	rs, ok := doc.Rules[ruleName]
	if !ok {
		return nil, fmt.Errorf("unknown rule %q in document %q", ruleName, docName)
	}

	branches := expandBranches(rs.Rule)
	for i := range branches {
		branches[i].condition = hydrate(branches[i].condition, givenFacts)
		if branches[i].outcome.Expr != nil {
			branches[i].outcome.Expr = hydrate(branches[i].outcome.Expr, givenFacts)
		}
		if branches[i].outcome.VetoMessage != nil {
			branches[i].outcome.VetoMessage = hydrate(branches[i].outcome.VetoMessage, givenFacts)
		}
	}

	filtered := filterByTarget(branches, target)
	if len(filtered) == 0 {
		return nil, &lemmaerr.InversionError{RuleName: ruleName, Reason: "no branch of this rule can produce the requested target"}
	}

	guards := make([]ast.Node, len(filtered))
	for i, br := range filtered {
		guards[i] = imposeGuard(br, target)
	}

	shape := &Shape{}
	freeSet := map[string]bool{}

	if len(filtered) == 1 {
		guard := guards[0]
		if eq, ok := solveEquation(guard); ok {
			shape.Relationships = append(shape.Relationships, eq)
			collectFactRefs(eq.Rhs, freeSet)
		} else {
			shape.Relationships = append(shape.Relationships, Implicit{Expression: guard, Outcome: filtered[0].outcome})
			collectFactRefs(guard, freeSet)
		}
	} else {
		pw := Piecewise{}
		for i, br := range filtered {
			pw.Branches = append(pw.Branches, PiecewiseBranch{Condition: guards[i], Outcome: br.outcome})
			collectFactRefs(guards[i], freeSet)
		}
		if v, ok := singleSharedVariable(guards); ok {
			pw.Variable = v
		}
		shape.Relationships = append(shape.Relationships, pw)
	}

	for g := range givenFacts {
		delete(freeSet, g)
	}
	for name := range freeSet {
		shape.FreeVariables = append(shape.FreeVariables, name)
	}
	sort.Strings(shape.FreeVariables)
	return shape, nil
}

func singleSharedVariable(guards []ast.Node) (string, bool) {
	var common string
	first := true
	for _, g := range guards {
		refs := map[string]bool{}
		collectFactRefs(g, refs)
		if len(refs) != 1 {
			return "", false
		}
		var name string
		for n := range refs {
			name = n
		}
		if first {
			common = name
			first = false
		} else if name != common {
			return "", false
		}
	}
	if first {
		return "", false
	}
	return common, true
}
