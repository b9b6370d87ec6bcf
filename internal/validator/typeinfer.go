package validator

import (
	"strings"

	"github.com/benrogmans/Lemma/internal/ast"
	"github.com/benrogmans/Lemma/internal/lemmaerr"
	"github.com/benrogmans/Lemma/internal/units"
)

// checkExpr walks an expression, resolving every fact/rule reference
// against the registry, collecting dependency node ids, and returning
// the expression's statically-inferred type. Type mismatches between
// concrete (non-"any") operand types are reported as SemanticErrors;
// when either operand is "any" the check is deferred to the evaluator,
// matching the policy that evaluation of a well-formed workspace never
// panics.
func (r *Registry) checkExpr(doc *Document, node ast.Node, factDeps, ruleDeps map[string]bool) (FactType, error) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		return FactType{Kind: "number"}, nil
	case *ast.PercentageLiteral:
		return FactType{Kind: "percentage"}, nil
	case *ast.TextLiteral:
		return FactType{Kind: "text"}, nil
	case *ast.BooleanLiteral:
		return FactType{Kind: "boolean"}, nil
	case *ast.DateLiteral:
		return FactType{Kind: "date"}, nil
	case *ast.RegexLiteral:
		return FactType{Kind: "regex"}, nil
	case *ast.MoneyLiteral:
		return FactType{Kind: "money", Currency: strings.ToUpper(n.Currency)}, nil
	case *ast.UnitLiteral:
		dim, _ := units.DimensionOf(n.UnitName)
		return FactType{Kind: "unit", Dimension: dim}, nil
	case *ast.DurationLiteral:
		return FactType{Kind: "duration"}, nil

	case *ast.Identifier:
		targetDoc, name, err := r.ResolveFactPath(n.Path, doc)
		if err != nil {
			return FactType{}, r.spanError(doc, n.Range, err)
		}
		factDeps[nodeID(targetDoc.Name, name)] = true
		return targetDoc.Facts[name].Type, nil

	case *ast.RuleReference:
		targetDoc, name, err := r.ResolveRulePath(n.Path, doc)
		if err != nil {
			return FactType{}, r.spanError(doc, n.Range, err)
		}
		ruleDeps[nodeID(targetDoc.Name, name)] = true
		return targetDoc.Rules[name].Type, nil

	case *ast.HaveExpr:
		targetDoc, name, err := r.ResolveFactPath(n.FactPath, doc)
		if err != nil {
			return FactType{}, r.spanError(doc, n.Range, err)
		}
		factDeps[nodeID(targetDoc.Name, name)] = true
		return FactType{Kind: "boolean"}, nil

	case *ast.UnaryExpr:
		operand, err := r.checkExpr(doc, n.Operand, factDeps, ruleDeps)
		if err != nil {
			return FactType{}, err
		}
		switch n.Operator {
		case "not":
			return FactType{Kind: "boolean"}, nil
		case "-":
			return operand, nil
		default: // prefix math: sqrt, sin, cos, tan, log, exp, abs, floor, ceil, round
			if operand.Kind != "any" && operand.Kind != "number" && operand.Kind != "percentage" {
				return FactType{}, r.spanError(doc, n.Range, &lemmaerr.SemanticError{
					Message: n.Operator + " requires a number, got " + operand.Kind,
				})
			}
			return FactType{Kind: "number"}, nil
		}

	case *ast.BinaryExpr:
		left, err := r.checkExpr(doc, n.Left, factDeps, ruleDeps)
		if err != nil {
			return FactType{}, err
		}
		right, err := r.checkExpr(doc, n.Right, factDeps, ruleDeps)
		if err != nil {
			return FactType{}, err
		}
		result, err := binaryResultType(n.Operator, left, right)
		if err != nil {
			return FactType{}, r.spanError(doc, n.Range, err)
		}
		return result, nil

	case *ast.ComparisonExpr:
		left, err := r.checkExpr(doc, n.Left, factDeps, ruleDeps)
		if err != nil {
			return FactType{}, err
		}
		right, err := r.checkExpr(doc, n.Right, factDeps, ruleDeps)
		if err != nil {
			return FactType{}, err
		}
		if err := checkComparable(left, right); err != nil {
			return FactType{}, r.spanError(doc, n.Range, err)
		}
		return FactType{Kind: "boolean"}, nil

	case *ast.LogicalExpr:
		if _, err := r.checkExpr(doc, n.Left, factDeps, ruleDeps); err != nil {
			return FactType{}, err
		}
		if _, err := r.checkExpr(doc, n.Right, factDeps, ruleDeps); err != nil {
			return FactType{}, err
		}
		return FactType{Kind: "boolean"}, nil

	case *ast.UnitConversionExpr:
		inner, err := r.checkExpr(doc, n.Value, factDeps, ruleDeps)
		if err != nil {
			return FactType{}, err
		}
		switch inner.Kind {
		case "any":
			return anyType(), nil
		case "unit":
			dim, ok := units.DimensionOf(n.TargetUnit)
			if !ok {
				return FactType{}, r.spanError(doc, n.Range, &lemmaerr.SemanticError{Message: "unknown unit " + n.TargetUnit})
			}
			if dim != inner.Dimension {
				return FactType{}, r.spanError(doc, n.Range, &lemmaerr.SemanticError{
					Message: "cannot convert " + string(inner.Dimension) + " to " + string(dim),
				})
			}
			return FactType{Kind: "unit", Dimension: dim}, nil
		case "duration":
			if !units.IsDurationUnit(n.TargetUnit) {
				return FactType{}, r.spanError(doc, n.Range, &lemmaerr.SemanticError{Message: "unknown duration unit " + n.TargetUnit})
			}
			return FactType{Kind: "duration"}, nil
		default:
			return FactType{}, r.spanError(doc, n.Range, &lemmaerr.SemanticError{Message: "cannot apply 'in' conversion to " + inner.Kind})
		}

	default:
		return anyType(), nil
	}
}

func (r *Registry) spanError(doc *Document, rng ast.Range, err error) error {
	se, ok := err.(*lemmaerr.SemanticError)
	if !ok {
		return err
	}
	se.Span = lemmaerr.Span{
		SourceName: doc.SourceName,
		StartLine:  rng.Start.Line, StartCol: rng.Start.Column,
		EndLine: rng.End.Line, EndCol: rng.End.Column,
	}
	return se
}

// binaryResultType mirrors the runtime dispatch table in package values,
// statically, for the cases where both operand types are already known.
func binaryResultType(op string, left, right FactType) (FactType, error) {
	if left.Kind == "any" || right.Kind == "any" {
		return anyType(), nil
	}
	switch {
	case left.Kind == "number" && right.Kind == "number":
		return FactType{Kind: "number"}, nil
	case left.Kind == "percentage" && right.Kind == "percentage":
		return FactType{Kind: "percentage"}, nil
	case left.Kind == "money" && right.Kind == "money":
		if left.Currency != "" && right.Currency != "" && left.Currency != right.Currency {
			return FactType{}, &lemmaerr.SemanticError{Message: "currency mismatch: " + left.Currency + " vs " + right.Currency}
		}
		if op != "+" && op != "-" {
			return FactType{}, &lemmaerr.SemanticError{Message: "unsupported operator " + op + " between Money values"}
		}
		ccy := left.Currency
		if ccy == "" {
			ccy = right.Currency
		}
		return FactType{Kind: "money", Currency: ccy}, nil
	case left.Kind == "money" && right.Kind == "percentage", left.Kind == "percentage" && right.Kind == "money":
		money := left
		if left.Kind == "percentage" {
			money = right
		}
		if op != "+" && op != "-" && op != "*" {
			return FactType{}, &lemmaerr.SemanticError{Message: "unsupported operator " + op + " between Money and Percentage"}
		}
		return money, nil
	case left.Kind == "number" && right.Kind == "percentage", left.Kind == "percentage" && right.Kind == "number":
		if op != "+" && op != "-" && op != "*" {
			return FactType{}, &lemmaerr.SemanticError{Message: "unsupported operator " + op + " between Number and Percentage"}
		}
		return FactType{Kind: "number"}, nil
	case left.Kind == "money" && right.Kind == "number", left.Kind == "number" && right.Kind == "money":
		if op != "*" && op != "/" {
			return FactType{}, &lemmaerr.SemanticError{Message: "unsupported operator " + op + " between Money and Number"}
		}
		money := left
		if left.Kind == "number" {
			money = right
		}
		return money, nil
	case left.Kind == "unit" && right.Kind == "unit":
		if left.Dimension != right.Dimension {
			return FactType{}, &lemmaerr.SemanticError{Message: "dimension mismatch: " + string(left.Dimension) + " vs " + string(right.Dimension)}
		}
		if op != "+" && op != "-" {
			return FactType{}, &lemmaerr.SemanticError{Message: "unsupported operator " + op + " between Unit values"}
		}
		return left, nil
	case left.Kind == "unit" && right.Kind == "number", left.Kind == "number" && right.Kind == "unit":
		if op != "*" && op != "/" {
			return FactType{}, &lemmaerr.SemanticError{Message: "unsupported operator " + op + " between Unit and Number"}
		}
		u := left
		if left.Kind == "number" {
			u = right
		}
		return u, nil
	case left.Kind == "date" && right.Kind == "duration":
		if op != "+" && op != "-" {
			return FactType{}, &lemmaerr.SemanticError{Message: "unsupported operator " + op + " between Date and Duration"}
		}
		return FactType{Kind: "date"}, nil
	case left.Kind == "date" && right.Kind == "date":
		if op != "-" {
			return FactType{}, &lemmaerr.SemanticError{Message: "unsupported operator " + op + " between Date values"}
		}
		return FactType{Kind: "duration"}, nil
	case left.Kind == "duration" && right.Kind == "duration":
		if op != "+" && op != "-" {
			return FactType{}, &lemmaerr.SemanticError{Message: "unsupported operator " + op + " between Duration values"}
		}
		return FactType{Kind: "duration"}, nil
	default:
		return FactType{}, &lemmaerr.SemanticError{Message: "unsupported operation " + op + " between " + left.Kind + " and " + right.Kind}
	}
}

func checkComparable(left, right FactType) error {
	if left.Kind == "any" || right.Kind == "any" {
		return nil
	}
	if left.Kind != right.Kind {
		return &lemmaerr.SemanticError{Message: "cannot compare " + left.Kind + " and " + right.Kind}
	}
	if left.Kind == "money" && left.Currency != "" && right.Currency != "" && left.Currency != right.Currency {
		return &lemmaerr.SemanticError{Message: "currency mismatch: " + left.Currency + " vs " + right.Currency}
	}
	if left.Kind == "unit" && left.Dimension != right.Dimension {
		return &lemmaerr.SemanticError{Message: "dimension mismatch: " + string(left.Dimension) + " vs " + string(right.Dimension)}
	}
	return nil
}
