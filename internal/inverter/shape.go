// Package inverter implements symbolic inversion: given a rule and a
// target outcome, it works backwards from the rule's piecewise
// structure to a Shape describing which assignments to its free facts
// would have produced that outcome.
package inverter

import (
	"github.com/benrogmans/Lemma/internal/ast"
	"github.com/benrogmans/Lemma/internal/values"
)

// TargetOp is the comparison an inverted value target must satisfy.
type TargetOp int

const (
	Eq TargetOp = iota
	Neq
	Lt
	Lte
	Gt
	Gte
)

func (op TargetOp) symbol() string {
	switch op {
	case Eq:
		return "=="
	case Neq:
		return "!="
	case Lt:
		return "<"
	case Lte:
		return "<="
	case Gt:
		return ">"
	default:
		return ">="
	}
}

// TargetKind distinguishes the four shapes a target can take.
type TargetKind int

const (
	TargetValue TargetKind = iota
	TargetAnyValue
	TargetVeto
	TargetAnyVeto
)

// Target is what the caller wants the rule to have produced.
type Target struct {
	Op          TargetOp
	Kind        TargetKind
	Value       values.Value
	VetoMessage string // only meaningful when Kind == TargetVeto
}

// BranchOutcome is one piecewise branch's result: either a veto with
// its message expression, or a value expression.
type BranchOutcome struct {
	IsVeto      bool
	VetoMessage ast.Node // nil for a bare veto
	Expr        ast.Node // nil when IsVeto and there's no result expression
}

// Relationship is implemented by Equation, Piecewise and Implicit.
type Relationship interface {
	isRelationship()
}

// Equation is lhs = rhs, solved for a single free fact.
type Equation struct {
	Lhs string
	Rhs ast.Node
}

func (Equation) isRelationship() {}

// PiecewiseBranch pairs a guard (already carrying the target
// constraint) with the branch's original outcome.
type PiecewiseBranch struct {
	Condition ast.Node
	Outcome   BranchOutcome
}

// Piecewise covers the case where more than one branch of the rule
// can produce the target outcome.
type Piecewise struct {
	Variable string
	Branches []PiecewiseBranch
}

func (Piecewise) isRelationship() {}

// Implicit is returned when the guard falls outside the algebraic
// class invert can solve: a declarative constraint, not an equation.
type Implicit struct {
	Expression ast.Node
	Outcome    BranchOutcome
}

func (Implicit) isRelationship() {}

// Shape is the inverter's result.
type Shape struct {
	Relationships []Relationship
	FreeVariables []string
}
