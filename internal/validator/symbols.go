package validator

import (
	"strings"

	"github.com/benrogmans/Lemma/internal/ast"
	"github.com/benrogmans/Lemma/internal/lemmaerr"
	"github.com/benrogmans/Lemma/internal/units"
)

// FactType is the statically-resolved type of a fact or an expression.
// Kind is one of "number", "text", "boolean", "date", "percentage",
// "money", "unit", "duration", "regex", "docref", or "any" when static
// inference could not pin down a concrete type (the evaluator is the
// final authority at runtime in that case).
type FactType struct {
	Kind      string
	Multi     bool
	Currency  string          // set when Kind == "money"; "" means any currency
	Dimension units.Dimension // set when Kind == "unit"
	DocRef    string          // set when Kind == "docref"
}

func anyType() FactType { return FactType{Kind: "any"} }

// FactSymbol is one fact entry in a document's symbol table.
type FactSymbol struct {
	Name     string
	Declared *ast.TypeAnnotation
	Default  ast.Node
	Type     FactType
	FactDeps map[string]bool
	RuleDeps map[string]bool
	Range    ast.Range
}

// RuleSymbol is one rule entry, with its dependency sets populated
// during validation. Dependency keys are "doc:name" node ids.
type RuleSymbol struct {
	Name      string
	Rule      *ast.Rule
	Type      FactType
	FactDeps  map[string]bool
	RuleDeps  map[string]bool
	Range     ast.Range
}

// Document is the validated model for one source document.
type Document struct {
	ID         string
	Name       string
	SourceName string
	Commentary string
	Facts      map[string]*FactSymbol
	FactOrder  []string
	Rules      map[string]*RuleSymbol
	RuleOrder  []string
}

func nodeID(docName, name string) string { return docName + ":" + name }

// resolvePath walks a dotted path through cross-document qualification
// (a leading segment naming another document) and through
// document-reference facts (`<ref>.<field>`), returning the document
// and bare name the final segment resolves to.
func (r *Registry) resolvePath(path string, start *Document, lookup func(*Document, string) bool) (*Document, string, error) {
	parts := strings.Split(path, ".")
	current := start
	for i := 0; i < len(parts)-1; i++ {
		seg := parts[i]
		if i == 0 {
			if other, ok := r.docs[seg]; ok {
				current = other
				continue
			}
		}
		fs, ok := current.Facts[seg]
		if !ok || fs.Type.Kind != "docref" {
			return nil, "", &lemmaerr.SemanticError{Message: "unknown reference segment " + seg + " in path " + path}
		}
		next, ok := r.docs[fs.Type.DocRef]
		if !ok {
			return nil, "", &lemmaerr.SemanticError{Message: "document " + fs.Type.DocRef + " referenced by " + seg + " is not loaded"}
		}
		current = next
	}
	last := parts[len(parts)-1]
	if !lookup(current, last) {
		return nil, "", &lemmaerr.SemanticError{Message: "unresolved reference " + path}
	}
	return current, last, nil
}

func (r *Registry) ResolveFactPath(path string, doc *Document) (*Document, string, error) {
	return r.resolvePath(path, doc, func(d *Document, name string) bool {
		_, ok := d.Facts[name]
		return ok
	})
}

func (r *Registry) ResolveRulePath(path string, doc *Document) (*Document, string, error) {
	return r.resolvePath(path, doc, func(d *Document, name string) bool {
		_, ok := d.Rules[name]
		return ok
	})
}

// factTypeFromAnnotation maps a bare type annotation to a FactType.
func factTypeFromAnnotation(ann *ast.TypeAnnotation) (FactType, error) {
	if ann.DocRef != "" {
		return FactType{Kind: "docref", DocRef: ann.DocRef}, nil
	}
	name := strings.ToLower(ann.TypeName)
	switch name {
	case "number":
		return FactType{Kind: "number", Multi: ann.Multi}, nil
	case "text":
		return FactType{Kind: "text", Multi: ann.Multi}, nil
	case "boolean":
		return FactType{Kind: "boolean", Multi: ann.Multi}, nil
	case "date":
		return FactType{Kind: "date", Multi: ann.Multi}, nil
	case "percentage":
		return FactType{Kind: "percentage", Multi: ann.Multi}, nil
	case "money":
		return FactType{Kind: "money", Multi: ann.Multi}, nil
	case "regex":
		return FactType{Kind: "regex", Multi: ann.Multi}, nil
	case "duration":
		return FactType{Kind: "duration", Multi: ann.Multi}, nil
	default:
		if dim, ok := units.DimensionOf(name); ok {
			return FactType{Kind: "unit", Dimension: dim, Multi: ann.Multi}, nil
		}
		return FactType{}, &lemmaerr.SemanticError{Message: "unknown type annotation " + ann.TypeName}
	}
}
