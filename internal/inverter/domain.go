package inverter

import (
	"github.com/benrogmans/Lemma/internal/ast"
	"github.com/benrogmans/Lemma/internal/lemmaerr"
	"github.com/benrogmans/Lemma/internal/validator"
	"github.com/benrogmans/Lemma/internal/values"
)

// DomainKind distinguishes an unconstrained fact from one with
// explicit constraints on the values it may safely take.
type DomainKind int

const (
	DomainUnconstrained DomainKind = iota
	DomainConstrained
)

// Domain is the valid-domain result: fact may take any value
// satisfying every constraint (each a boolean expression over Fact).
// Constraints are already negated from the rule's veto guards, so
// satisfying all of them means the rule never vetoes.
type Domain struct {
	Kind        DomainKind
	Fact        string
	Constraints []ast.Node
}

// GetValidDomain inverts ruleName with AnyVeto and complements the
// resulting veto guards restricted to fact, yielding the set of values
// fact can safely take without the rule vetoing.
func GetValidDomain(reg *validator.Registry, docName, ruleName, fact string, givenFacts map[string]values.Value) (*Domain, error) {
	shape, err := Invert(reg, docName, ruleName, Target{Kind: TargetAnyVeto}, givenFacts)
	if err != nil {
		if _, ok := err.(*lemmaerr.InversionError); ok {
			return &Domain{Kind: DomainUnconstrained, Fact: fact}, nil
		}
		return nil, err
	}

	var constraints []ast.Node
	for _, rel := range shape.Relationships {
		switch r := rel.(type) {
		case Implicit:
			if nodeContainsFact(r.Expression, fact) {
				constraints = append(constraints, negate(r.Expression))
			}
		case Piecewise:
			for _, br := range r.Branches {
				if nodeContainsFact(br.Condition, fact) {
					constraints = append(constraints, negate(br.Condition))
				}
			}
		case Equation:
			if r.Lhs == fact {
				constraints = append(constraints, &ast.ComparisonExpr{
					Operator: "!=",
					Left:     &ast.Identifier{Path: fact},
					Right:    r.Rhs,
				})
			}
		}
	}

	if len(constraints) == 0 {
		return &Domain{Kind: DomainUnconstrained, Fact: fact}, nil
	}
	return &Domain{Kind: DomainConstrained, Fact: fact, Constraints: constraints}, nil
}
