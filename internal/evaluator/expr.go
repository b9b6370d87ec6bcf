package evaluator

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/benrogmans/Lemma/internal/ast"
	"github.com/benrogmans/Lemma/internal/lemmaerr"
	"github.com/benrogmans/Lemma/internal/units"
	"github.com/benrogmans/Lemma/internal/validator"
	"github.com/benrogmans/Lemma/internal/values"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseDate(text string) (time.Time, error) {
	var firstErr error
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		} else if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// evalExpr evaluates one expression node against the given document's
// scope, returning either a concrete value, a *vetoSignal, a
// *missingSignal, or a *lemmaerr.EvaluationTimeout (which aborts the
// whole call rather than just the current rule).
func (c *call) evalExpr(doc *validator.Document, node ast.Node, trace *[]Record) (values.Value, error) {
	if err := c.checkDeadline(); err != nil {
		return values.Value{}, err
	}

	switch n := node.(type) {
	case *ast.NumberLiteral:
		d, err := decimal.NewFromString(n.Value)
		if err != nil {
			return values.Value{}, err
		}
		return values.Number(d), nil

	case *ast.PercentageLiteral:
		d, err := decimal.NewFromString(n.Value)
		if err != nil {
			return values.Value{}, err
		}
		return values.Percentage(d.Div(decimal.NewFromInt(100))), nil

	case *ast.TextLiteral:
		return values.Text(n.Value), nil

	case *ast.BooleanLiteral:
		return values.Boolean(n.Value), nil

	case *ast.DateLiteral:
		t, err := parseDate(n.Text)
		if err != nil {
			return values.Value{}, err
		}
		return values.Date(t), nil

	case *ast.RegexLiteral:
		re, err := regexp.Compile(n.Pattern)
		if err != nil {
			return values.Value{}, runtimeVeto("regex compile failed", err.Error())
		}
		return values.Regex(n.Pattern, re), nil

	case *ast.MoneyLiteral:
		d, err := decimal.NewFromString(n.Value)
		if err != nil {
			return values.Value{}, err
		}
		return values.Money(d, strings.ToUpper(n.Currency)), nil

	case *ast.UnitLiteral:
		d, err := decimal.NewFromString(n.Value)
		if err != nil {
			return values.Value{}, err
		}
		dim, _ := units.DimensionOf(n.UnitName)
		return values.Unit(d, dim, n.UnitName), nil

	case *ast.DurationLiteral:
		d, err := decimal.NewFromString(n.Value)
		if err != nil {
			return values.Value{}, err
		}
		return values.Duration(d, n.UnitName), nil

	case *ast.Identifier:
		return c.resolveFact(doc, n.Path, trace)

	case *ast.HaveExpr:
		_, err := c.resolveFact(doc, n.FactPath, trace)
		present := true
		if err != nil {
			if to, ok := err.(*lemmaerr.EvaluationTimeout); ok {
				return values.Value{}, to
			}
			present = false
		}
		if n.Negated {
			present = !present
		}
		return values.Boolean(present), nil

	case *ast.RuleReference:
		return c.evalRuleReference(doc, n, trace)

	case *ast.UnaryExpr:
		operand, err := c.evalExpr(doc, n.Operand, trace)
		if err != nil {
			return values.Value{}, err
		}
		result, uerr := values.UnaryOp(n.Operator, operand)
		if uerr != nil {
			return values.Value{}, runtimeVeto(n.Operator, uerr.Error())
		}
		*trace = append(*trace, Record{Kind: OperationExecuted, Op: n.Operator, Operands: []string{operand.String()}, Result: result.String()})
		return result, nil

	case *ast.BinaryExpr:
		lv, rv, err := c.evalOperands(doc, n.Left, n.Right, trace)
		if err != nil {
			return values.Value{}, err
		}
		result, berr := values.BinaryOp(n.Operator, lv, rv)
		if berr != nil {
			return values.Value{}, runtimeVeto(n.Operator, berr.Error())
		}
		*trace = append(*trace, Record{Kind: OperationExecuted, Op: n.Operator, Operands: []string{lv.String(), rv.String()}, Result: result.String()})
		return result, nil

	case *ast.ComparisonExpr:
		lv, rv, err := c.evalOperands(doc, n.Left, n.Right, trace)
		if err != nil {
			return values.Value{}, err
		}
		result, cerr := evalComparison(n.Operator, lv, rv)
		if cerr != nil {
			return values.Value{}, runtimeVeto(n.Operator, cerr.Error())
		}
		*trace = append(*trace, Record{Kind: OperationExecuted, Op: n.Operator, Operands: []string{lv.String(), rv.String()}, Result: result.String()})
		return result, nil

	case *ast.LogicalExpr:
		return c.evalLogical(doc, n, trace)

	case *ast.UnitConversionExpr:
		inner, err := c.evalExpr(doc, n.Value, trace)
		if err != nil {
			return values.Value{}, err
		}
		result, cerr := values.ConvertUnit(inner, n.TargetUnit)
		if cerr != nil {
			return values.Value{}, runtimeVeto("in", cerr.Error())
		}
		*trace = append(*trace, Record{Kind: OperationExecuted, Op: "in", Operands: []string{inner.String()}, Result: result.String()})
		return result, nil

	default:
		return values.Value{}, fmt.Errorf("cannot evaluate node of type %T", node)
	}
}

// evalOperands evaluates both sides of a non-short-circuiting binary
// node, merging any veto/missing signals from either side so that
// missing facts reachable from both operands are reported together.
func (c *call) evalOperands(doc *validator.Document, leftNode, rightNode ast.Node, trace *[]Record) (values.Value, values.Value, error) {
	lv, lerr := c.evalExpr(doc, leftNode, trace)
	if to, ok := lerr.(*lemmaerr.EvaluationTimeout); ok {
		return values.Value{}, values.Value{}, to
	}
	rv, rerr := c.evalExpr(doc, rightNode, trace)
	if to, ok := rerr.(*lemmaerr.EvaluationTimeout); ok {
		return values.Value{}, values.Value{}, to
	}
	if lerr == nil && rerr == nil {
		return lv, rv, nil
	}
	return values.Value{}, values.Value{}, mergeSignals(lerr, rerr)
}

// evalLogical implements short-circuit "and"/"or": the right operand
// is never evaluated once the outcome is already determined, so a veto
// or missing fact reachable only through the right side never surfaces.
func (c *call) evalLogical(doc *validator.Document, n *ast.LogicalExpr, trace *[]Record) (values.Value, error) {
	left, err := c.evalExpr(doc, n.Left, trace)
	if err != nil {
		return values.Value{}, err
	}
	switch n.Operator {
	case "and":
		if !left.Bool {
			return values.Boolean(false), nil
		}
	case "or":
		if left.Bool {
			return values.Boolean(true), nil
		}
	default:
		return values.Value{}, fmt.Errorf("unsupported logical operator %q", n.Operator)
	}
	right, err := c.evalExpr(doc, n.Right, trace)
	if err != nil {
		return values.Value{}, err
	}
	if n.Operator == "and" {
		return values.Boolean(left.Bool && right.Bool), nil
	}
	return values.Boolean(left.Bool || right.Bool), nil
}

func (c *call) evalRuleReference(doc *validator.Document, n *ast.RuleReference, trace *[]Record) (values.Value, error) {
	targetDoc, name, err := c.reg.ResolveRulePath(n.Path, doc)
	if err != nil {
		return values.Value{}, err
	}
	outcome, _, everr := c.evalRule(targetDoc, name)
	if everr != nil {
		return values.Value{}, everr
	}
	id := targetDoc.Name + ":" + name
	switch outcome.Kind {
	case OutcomeValue:
		*trace = append(*trace, Record{Kind: RuleResolved, RuleName: id, Result: outcome.Value.String()})
		return outcome.Value, nil
	case OutcomeVeto:
		*trace = append(*trace, Record{Kind: RuleResolved, RuleName: id, Outcome: "veto: " + outcome.VetoMessage})
		return values.Value{}, forwardedVeto(outcome.VetoMessage)
	default: // OutcomeMissing
		*trace = append(*trace, Record{Kind: RuleResolved, RuleName: id, Outcome: "missing"})
		facts := make(map[string]bool, len(outcome.MissingFacts))
		for _, f := range outcome.MissingFacts {
			facts[f] = true
		}
		return values.Value{}, &missingSignal{facts: facts}
	}
}

func evalComparison(op string, left, right values.Value) (values.Value, error) {
	switch op {
	case "==", "is":
		eq, err := values.Equal(left, right)
		if err != nil {
			return values.Value{}, err
		}
		return values.Boolean(eq), nil
	case "!=", "is not":
		eq, err := values.Equal(left, right)
		if err != nil {
			return values.Value{}, err
		}
		return values.Boolean(!eq), nil
	case "<", "<=", ">", ">=":
		cmp, err := values.Compare(left, right)
		if err != nil {
			return values.Value{}, err
		}
		switch op {
		case "<":
			return values.Boolean(cmp < 0), nil
		case "<=":
			return values.Boolean(cmp <= 0), nil
		case ">":
			return values.Boolean(cmp > 0), nil
		default:
			return values.Boolean(cmp >= 0), nil
		}
	default:
		return values.Value{}, fmt.Errorf("unsupported comparison operator %q", op)
	}
}
