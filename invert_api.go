package lemma

import (
	"github.com/benrogmans/Lemma/internal/inverter"
	"github.com/benrogmans/Lemma/internal/values"
)

// Re-exported inverter types, so callers never need to import
// internal/inverter directly.
type (
	Target          = inverter.Target
	TargetOp        = inverter.TargetOp
	TargetKind      = inverter.TargetKind
	Shape           = inverter.Shape
	Relationship    = inverter.Relationship
	Equation        = inverter.Equation
	Piecewise       = inverter.Piecewise
	PiecewiseBranch = inverter.PiecewiseBranch
	Implicit        = inverter.Implicit
	BranchOutcome   = inverter.BranchOutcome
	Domain          = inverter.Domain
	DomainKind      = inverter.DomainKind
)

const (
	Eq  = inverter.Eq
	Neq = inverter.Neq
	Lt  = inverter.Lt
	Lte = inverter.Lte
	Gt  = inverter.Gt
	Gte = inverter.Gte
)

const (
	TargetValue    = inverter.TargetValue
	TargetAnyValue = inverter.TargetAnyValue
	TargetVeto     = inverter.TargetVeto
	TargetAnyVeto  = inverter.TargetAnyVeto
)

const (
	DomainUnconstrained = inverter.DomainUnconstrained
	DomainConstrained   = inverter.DomainConstrained
)

// Invert computes which assignments to ruleName's free facts, given
// givenFacts already fixed, would make it produce target.
func (w *Workspace) Invert(docName, ruleName string, target Target, givenFacts map[string]values.Value) (*Shape, error) {
	return inverter.Invert(w.reg, docName, ruleName, target, givenFacts)
}

// GetValidDomain returns the complement of every way ruleName can veto
// because of fact, i.e. the values fact may safely take.
func (w *Workspace) GetValidDomain(docName, ruleName, fact string, givenFacts map[string]values.Value) (*Domain, error) {
	return inverter.GetValidDomain(w.reg, docName, ruleName, fact, givenFacts)
}
