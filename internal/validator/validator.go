package validator

import (
	"github.com/google/uuid"

	"github.com/benrogmans/Lemma/internal/ast"
	"github.com/benrogmans/Lemma/internal/lemmaerr"
)

// Registry holds every validated document a workspace has ingested.
// Documents are immutable once added; adding a new one validates it
// against the existing set plus any cross-references it introduces.
type Registry struct {
	docs  map[string]*Document
	order []string
}

func NewRegistry() *Registry {
	return &Registry{docs: make(map[string]*Document)}
}

func (r *Registry) Document(name string) (*Document, bool) {
	d, ok := r.docs[name]
	return d, ok
}

func (r *Registry) DocumentNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// AddDocument validates a freshly parsed document and, on success, adds
// it to the registry. It returns any non-fatal diagnostics alongside
// the validated model.
func (r *Registry) AddDocument(src *ast.Document) (*Document, []Diagnostic, error) {
	if _, exists := r.docs[src.Name]; exists {
		return nil, nil, &lemmaerr.SemanticError{Message: "duplicate document name " + src.Name}
	}
	if len(r.docs) >= MaxDocumentCount {
		return nil, nil, &lemmaerr.LimitExceeded{Limit: "document count", Allowed: MaxDocumentCount, Actual: len(r.docs) + 1}
	}

	doc := &Document{
		ID:         uuid.New().String(),
		Name:       src.Name,
		SourceName: src.SourceName,
		Commentary: src.Commentary,
		Facts:      make(map[string]*FactSymbol),
		Rules:      make(map[string]*RuleSymbol),
	}

	var diags []Diagnostic

	// Phase 1: build skeleton symbol tables, rejecting duplicate and
	// colliding names before any reference resolution is attempted.
	for _, f := range src.Facts {
		if _, dup := doc.Facts[f.Name]; dup {
			return nil, nil, r.docErr(doc, f.Range, "duplicate fact name "+f.Name)
		}
		fs := &FactSymbol{Name: f.Name, Declared: f.Declared, Default: f.Default, Range: f.Range,
			FactDeps: make(map[string]bool), RuleDeps: make(map[string]bool)}
		if f.Declared != nil {
			ft, err := factTypeFromAnnotation(f.Declared)
			if err != nil {
				return nil, nil, r.docErr(doc, f.Range, err.Error())
			}
			fs.Type = ft
		} else {
			fs.Type = anyType()
		}
		doc.Facts[f.Name] = fs
		doc.FactOrder = append(doc.FactOrder, f.Name)
		if f.Default == nil {
			if shadowedIn := r.shadowedFactDoc(f.Name); shadowedIn != "" {
				diags = append(diags, Diagnostic{Severity: Warning, Code: ShadowedCrossDocName,
					Message: "fact " + f.Name + " shadows a default-free fact of the same name in document " + shadowedIn,
					Span:    spanOf(doc, f.Range)})
			}
		}
	}
	for _, rule := range src.Rules {
		if _, dup := doc.Facts[rule.Name]; dup {
			return nil, nil, r.docErr(doc, rule.Range, "rule "+rule.Name+" collides with a fact of the same name")
		}
		if _, dup := doc.Rules[rule.Name]; dup {
			return nil, nil, r.docErr(doc, rule.Range, "duplicate rule name "+rule.Name)
		}
		doc.Rules[rule.Name] = &RuleSymbol{Name: rule.Name, Rule: rule, Type: anyType(),
			FactDeps: make(map[string]bool), RuleDeps: make(map[string]bool), Range: rule.Range}
		doc.RuleOrder = append(doc.RuleOrder, rule.Name)
	}

	// Register the skeleton before resolving bodies so that
	// self-references and forward references within the same document
	// resolve correctly.
	r.docs[doc.Name] = doc

	// Phase 2: infer fact default types, iterating to a fixed point so
	// that facts may reference other facts regardless of source order.
	for i := 0; i < len(doc.Facts)+1; i++ {
		changed := false
		for _, name := range doc.FactOrder {
			fs := doc.Facts[name]
			if fs.Default == nil || fs.Type.Kind != "any" {
				continue
			}
			ft, err := r.checkExpr(doc, fs.Default, fs.FactDeps, fs.RuleDeps)
			if err != nil {
				if i == len(doc.Facts) {
					delete(r.docs, doc.Name)
					return nil, nil, err
				}
				continue
			}
			if ft.Kind != "any" {
				fs.Type = ft
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	for _, name := range doc.FactOrder {
		fs := doc.Facts[name]
		if fs.Default != nil && fs.Type.Kind == "any" {
			diags = append(diags, Diagnostic{Severity: Hint, Code: UnresolvedDefaultType,
				Message: "could not statically determine the type of fact " + name,
				Span:    spanOf(doc, fs.Range)})
		}
	}

	// Phase 3: check rule bodies.
	for _, name := range doc.RuleOrder {
		rs := doc.Rules[name]
		baseType, err := r.checkExpr(doc, rs.Rule.Base, rs.FactDeps, rs.RuleDeps)
		if err != nil {
			delete(r.docs, doc.Name)
			return nil, nil, err
		}
		rs.Type = baseType
		for _, uc := range rs.Rule.UnlessClauses {
			if _, err := r.checkExpr(doc, uc.Condition, rs.FactDeps, rs.RuleDeps); err != nil {
				delete(r.docs, doc.Name)
				return nil, nil, err
			}
			if lit, ok := uc.Condition.(*ast.BooleanLiteral); ok && !lit.Value {
				diags = append(diags, Diagnostic{Severity: Warning, Code: RedundantUnlessClause,
					Message: "unless clause in rule " + name + " can never match: its condition is always false",
					Span:    spanOf(doc, rs.Range)})
			}
			if uc.Result != nil {
				if _, err := r.checkExpr(doc, uc.Result, rs.FactDeps, rs.RuleDeps); err != nil {
					delete(r.docs, doc.Name)
					return nil, nil, err
				}
			}
		}
	}

	// Phase 4: cycle detection over the combined fact/rule dependency
	// graph, spanning every document currently in the registry (a new
	// document may introduce a cycle through documents added earlier).
	if cyclePath, found := r.findCycle(); found {
		delete(r.docs, doc.Name)
		return nil, nil, &lemmaerr.SemanticError{Message: "dependency cycle: " + cyclePath}
	}

	r.order = append(r.order, doc.Name)
	return doc, diags, nil
}

// shadowedFactDoc returns the name of an already-registered document
// declaring a default-free fact with the given name, or "" if none
// does. A default-free fact has no fallback value, so reusing its name
// across documents is more likely to be an unintended collision than a
// deliberate override.
func (r *Registry) shadowedFactDoc(name string) string {
	for _, docName := range r.order {
		if fs, ok := r.docs[docName].Facts[name]; ok && fs.Default == nil {
			return docName
		}
	}
	return ""
}

func (r *Registry) docErr(doc *Document, rng ast.Range, msg string) error {
	return &lemmaerr.SemanticError{Message: msg, Span: lemmaerr.Span{
		SourceName: doc.SourceName,
		StartLine:  rng.Start.Line, StartCol: rng.Start.Column,
		EndLine: rng.End.Line, EndCol: rng.End.Column,
	}}
}

func spanOf(doc *Document, rng ast.Range) lemmaerr.Span {
	return lemmaerr.Span{
		SourceName: doc.SourceName,
		StartLine:  rng.Start.Line, StartCol: rng.Start.Column,
		EndLine: rng.End.Line, EndCol: rng.End.Column,
	}
}
