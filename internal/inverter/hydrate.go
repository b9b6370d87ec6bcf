package inverter

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/benrogmans/Lemma/internal/ast"
	"github.com/benrogmans/Lemma/internal/values"
)

// valueToLiteral builds the literal AST node that, when evaluated,
// reproduces v. Used both to hydrate given facts into an expression
// and to materialise a target value for guard imposition.
func valueToLiteral(v values.Value) ast.Node {
	switch v.Kind {
	case values.KindNumber:
		return &ast.NumberLiteral{Value: v.Num.String()}
	case values.KindText:
		return &ast.TextLiteral{Value: v.Text}
	case values.KindBoolean:
		return &ast.BooleanLiteral{Value: v.Bool}
	case values.KindDate:
		return &ast.DateLiteral{Text: v.Date.Format("2006-01-02T15:04:05Z07:00")}
	case values.KindPercentage:
		return &ast.PercentageLiteral{Value: v.Num.Mul(decimal.NewFromInt(100)).String()}
	case values.KindMoney:
		return &ast.MoneyLiteral{Value: v.Num.String(), Currency: v.Currency}
	case values.KindUnit:
		return &ast.UnitLiteral{Value: v.Num.String(), UnitName: v.UnitName}
	case values.KindDuration:
		return &ast.DurationLiteral{Value: v.Num.String(), UnitName: v.UnitName}
	case values.KindRegex:
		return &ast.RegexLiteral{Pattern: v.Text}
	default:
		return &ast.TextLiteral{Value: ""}
	}
}

// literalToValue evaluates a literal node in isolation, with no scope
// to resolve. Returns false for any non-literal node.
func literalToValue(node ast.Node) (values.Value, bool) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		d, err := decimal.NewFromString(n.Value)
		if err != nil {
			return values.Value{}, false
		}
		return values.Number(d), true
	case *ast.PercentageLiteral:
		d, err := decimal.NewFromString(n.Value)
		if err != nil {
			return values.Value{}, false
		}
		return values.Percentage(d.Div(decimal.NewFromInt(100))), true
	case *ast.TextLiteral:
		return values.Text(n.Value), true
	case *ast.BooleanLiteral:
		return values.Boolean(n.Value), true
	case *ast.MoneyLiteral:
		d, err := decimal.NewFromString(n.Value)
		if err != nil {
			return values.Value{}, false
		}
		return values.Money(d, strings.ToUpper(n.Currency)), true
	default:
		return values.Value{}, false
	}
}

// isLiteral reports whether node is already a folded constant leaf.
func isLiteral(node ast.Node) bool {
	switch node.(type) {
	case *ast.NumberLiteral, *ast.PercentageLiteral, *ast.TextLiteral, *ast.BooleanLiteral,
		*ast.DateLiteral, *ast.RegexLiteral, *ast.MoneyLiteral, *ast.UnitLiteral, *ast.DurationLiteral:
		return true
	default:
		return false
	}
}

// hydrate substitutes given facts everywhere they are read, then
// constant-folds any subexpression left with no remaining fact or
// rule references.
func hydrate(node ast.Node, given map[string]values.Value) ast.Node {
	return constantFold(substitute(node, given))
}

func substitute(node ast.Node, given map[string]values.Value) ast.Node {
	switch n := node.(type) {
	case *ast.Identifier:
		if v, ok := given[n.Path]; ok {
			return valueToLiteral(v)
		}
		return n
	case *ast.HaveExpr:
		if _, ok := given[n.FactPath]; ok {
			return &ast.BooleanLiteral{Value: !n.Negated}
		}
		return n
	case *ast.UnaryExpr:
		return &ast.UnaryExpr{Operator: n.Operator, Operand: substitute(n.Operand, given), Range: n.Range}
	case *ast.BinaryExpr:
		return &ast.BinaryExpr{Operator: n.Operator, Left: substitute(n.Left, given), Right: substitute(n.Right, given), Range: n.Range}
	case *ast.ComparisonExpr:
		return &ast.ComparisonExpr{Operator: n.Operator, Left: substitute(n.Left, given), Right: substitute(n.Right, given), Range: n.Range}
	case *ast.LogicalExpr:
		return &ast.LogicalExpr{Operator: n.Operator, Left: substitute(n.Left, given), Right: substitute(n.Right, given), Range: n.Range}
	case *ast.UnitConversionExpr:
		return &ast.UnitConversionExpr{Value: substitute(n.Value, given), TargetUnit: n.TargetUnit, Range: n.Range}
	default:
		return n
	}
}

// constantFold folds any subtree whose leaves are all already literals.
// Folds that would error (division by zero, dimension/currency
// mismatch) are left unfolded rather than propagated, per the
// hydration policy of only folding "safe" sub-expressions.
func constantFold(node ast.Node) ast.Node {
	switch n := node.(type) {
	case *ast.UnaryExpr:
		operand := constantFold(n.Operand)
		if !isLiteral(operand) {
			return &ast.UnaryExpr{Operator: n.Operator, Operand: operand, Range: n.Range}
		}
		v, ok := literalToValue(operand)
		if !ok {
			return &ast.UnaryExpr{Operator: n.Operator, Operand: operand, Range: n.Range}
		}
		result, err := values.UnaryOp(n.Operator, v)
		if err != nil {
			return &ast.UnaryExpr{Operator: n.Operator, Operand: operand, Range: n.Range}
		}
		return valueToLiteral(result)

	case *ast.BinaryExpr:
		left := constantFold(n.Left)
		right := constantFold(n.Right)
		if !isLiteral(left) || !isLiteral(right) {
			return &ast.BinaryExpr{Operator: n.Operator, Left: left, Right: right, Range: n.Range}
		}
		lv, lok := literalToValue(left)
		rv, rok := literalToValue(right)
		if !lok || !rok {
			return &ast.BinaryExpr{Operator: n.Operator, Left: left, Right: right, Range: n.Range}
		}
		result, err := values.BinaryOp(n.Operator, lv, rv)
		if err != nil {
			return &ast.BinaryExpr{Operator: n.Operator, Left: left, Right: right, Range: n.Range}
		}
		return valueToLiteral(result)

	case *ast.ComparisonExpr:
		left := constantFold(n.Left)
		right := constantFold(n.Right)
		if !isLiteral(left) || !isLiteral(right) {
			return &ast.ComparisonExpr{Operator: n.Operator, Left: left, Right: right, Range: n.Range}
		}
		lv, lok := literalToValue(left)
		rv, rok := literalToValue(right)
		if !lok || !rok {
			return &ast.ComparisonExpr{Operator: n.Operator, Left: left, Right: right, Range: n.Range}
		}
		result, err := evalConstComparison(n.Operator, lv, rv)
		if err != nil {
			return &ast.ComparisonExpr{Operator: n.Operator, Left: left, Right: right, Range: n.Range}
		}
		return valueToLiteral(result)

	case *ast.LogicalExpr:
		left := constantFold(n.Left)
		right := constantFold(n.Right)
		if lb, ok := left.(*ast.BooleanLiteral); ok {
			if n.Operator == "and" && !lb.Value {
				return &ast.BooleanLiteral{Value: false}
			}
			if n.Operator == "or" && lb.Value {
				return &ast.BooleanLiteral{Value: true}
			}
			if rb, ok := right.(*ast.BooleanLiteral); ok {
				if n.Operator == "and" {
					return &ast.BooleanLiteral{Value: lb.Value && rb.Value}
				}
				return &ast.BooleanLiteral{Value: lb.Value || rb.Value}
			}
		}
		return &ast.LogicalExpr{Operator: n.Operator, Left: left, Right: right, Range: n.Range}

	case *ast.UnitConversionExpr:
		inner := constantFold(n.Value)
		if !isLiteral(inner) {
			return &ast.UnitConversionExpr{Value: inner, TargetUnit: n.TargetUnit, Range: n.Range}
		}
		v, ok := literalToValue(inner)
		if !ok {
			return &ast.UnitConversionExpr{Value: inner, TargetUnit: n.TargetUnit, Range: n.Range}
		}
		result, err := values.ConvertUnit(v, n.TargetUnit)
		if err != nil {
			return &ast.UnitConversionExpr{Value: inner, TargetUnit: n.TargetUnit, Range: n.Range}
		}
		return valueToLiteral(result)

	default:
		return n
	}
}

func evalConstComparison(op string, left, right values.Value) (values.Value, error) {
	switch op {
	case "==", "is":
		eq, err := values.Equal(left, right)
		return values.Boolean(eq), err
	case "!=", "is not":
		eq, err := values.Equal(left, right)
		return values.Boolean(!eq), err
	default:
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
	}
}

// negate applies De Morgan pushdown so later guard conjunctions stay
// in a flattened and/or/not form rather than nesting "not" around
// compound expressions.
func negate(node ast.Node) ast.Node {
	switch n := node.(type) {
	case *ast.LogicalExpr:
		if n.Operator == "and" {
			return &ast.LogicalExpr{Operator: "or", Left: negate(n.Left), Right: negate(n.Right)}
		}
		return &ast.LogicalExpr{Operator: "and", Left: negate(n.Left), Right: negate(n.Right)}
	case *ast.UnaryExpr:
		if n.Operator == "not" {
			return n.Operand
		}
		return &ast.UnaryExpr{Operator: "not", Operand: n}
	case *ast.ComparisonExpr:
		return &ast.ComparisonExpr{Operator: negateComparisonOp(n.Operator), Left: n.Left, Right: n.Right}
	default:
		return &ast.UnaryExpr{Operator: "not", Operand: n}
	}
}

func negateComparisonOp(op string) string {
	switch op {
	case "==":
		return "!="
	case "is":
		return "is not"
	case "!=":
		return "=="
	case "is not":
		return "is"
	case "<":
		return ">="
	case "<=":
		return ">"
	case ">":
		return "<="
	case ">=":
		return "<"
	default:
		return op
	}
}

func and(a, b ast.Node) ast.Node {
	if lit, ok := a.(*ast.BooleanLiteral); ok && lit.Value {
		return b
	}
	if lit, ok := b.(*ast.BooleanLiteral); ok && lit.Value {
		return a
	}
	return &ast.LogicalExpr{Operator: "and", Left: a, Right: b}
}

// collectFactRefs returns the deduplicated, sorted fact paths read by
// node. RuleReference targets are treated as opaque: nested rules are
// not expanded, so a reference to another rule surfaces as a free
// variable named by that rule's own path rather than being inlined.
func collectFactRefs(node ast.Node, out map[string]bool) {
	switch n := node.(type) {
	case *ast.Identifier:
		out[n.Path] = true
	case *ast.HaveExpr:
		out[n.FactPath] = true
	case *ast.RuleReference:
		out[n.Path] = true
	case *ast.UnaryExpr:
		collectFactRefs(n.Operand, out)
	case *ast.BinaryExpr:
		collectFactRefs(n.Left, out)
		collectFactRefs(n.Right, out)
	case *ast.ComparisonExpr:
		collectFactRefs(n.Left, out)
		collectFactRefs(n.Right, out)
	case *ast.LogicalExpr:
		collectFactRefs(n.Left, out)
		collectFactRefs(n.Right, out)
	case *ast.UnitConversionExpr:
		collectFactRefs(n.Value, out)
	case *ast.VetoExpr:
		if n.Message != nil {
			collectFactRefs(n.Message, out)
		}
	}
}

func nodeContainsFact(node ast.Node, path string) bool {
	refs := map[string]bool{}
	collectFactRefs(node, refs)
	return refs[path]
}
