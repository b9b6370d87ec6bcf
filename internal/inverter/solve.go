package inverter

import "github.com/benrogmans/Lemma/internal/ast"

// solveEquation attempts to isolate the single unknown fact on one
// side of an Eq comparison by unwinding +, -, *, /, ^ (known exponent),
// log and exp from the outside in. Returns ok=false when the guard
// isn't a single equation in exactly one unknown, or uses an operator
// this algebra can't unwind.
func solveEquation(guard ast.Node) (*Equation, bool) {
	cmp, ok := guard.(*ast.ComparisonExpr)
	if !ok || (cmp.Operator != "==" && cmp.Operator != "is") {
		return nil, false
	}

	facts := map[string]bool{}
	collectFactRefs(cmp.Left, facts)
	collectFactRefs(cmp.Right, facts)
	if len(facts) != 1 {
		return nil, false
	}
	var target string
	for f := range facts {
		target = f
	}

	leftHas := nodeContainsFact(cmp.Left, target)
	rightHas := nodeContainsFact(cmp.Right, target)
	var unknown, rhs ast.Node
	switch {
	case leftHas && !rightHas:
		unknown, rhs = cmp.Left, cmp.Right
	case rightHas && !leftHas:
		unknown, rhs = cmp.Right, cmp.Left
	default:
		return nil, false
	}

	for {
		if id, ok := unknown.(*ast.Identifier); ok && id.Path == target {
			return &Equation{Lhs: target, Rhs: rhs}, true
		}

		switch n := unknown.(type) {
		case *ast.UnaryExpr:
			switch n.Operator {
			case "-":
				unknown = n.Operand
				rhs = &ast.UnaryExpr{Operator: "-", Operand: rhs}
			case "log":
				unknown = n.Operand
				rhs = &ast.UnaryExpr{Operator: "exp", Operand: rhs}
			case "exp":
				unknown = n.Operand
				rhs = &ast.UnaryExpr{Operator: "log", Operand: rhs}
			default:
				return nil, false
			}

		case *ast.BinaryExpr:
			lHas := nodeContainsFact(n.Left, target)
			rHas := nodeContainsFact(n.Right, target)
			if lHas == rHas {
				return nil, false // both sides (x+x) or neither: not a simple unwind
			}
			var known ast.Node
			if lHas {
				known = n.Right
				unknown = n.Left
			} else {
				known = n.Left
				unknown = n.Right
			}
			switch n.Operator {
			case "+":
				rhs = &ast.BinaryExpr{Operator: "-", Left: rhs, Right: known}
			case "-":
				if lHas {
					rhs = &ast.BinaryExpr{Operator: "+", Left: rhs, Right: known}
				} else {
					rhs = &ast.BinaryExpr{Operator: "-", Left: known, Right: rhs}
				}
			case "*":
				rhs = &ast.BinaryExpr{Operator: "/", Left: rhs, Right: known}
			case "/":
				if lHas {
					rhs = &ast.BinaryExpr{Operator: "*", Left: rhs, Right: known}
				} else {
					rhs = &ast.BinaryExpr{Operator: "/", Left: known, Right: rhs}
				}
			case "^":
				if !lHas {
					return nil, false // only a known exponent with an unknown base is invertible
				}
				rhs = &ast.BinaryExpr{Operator: "^", Left: rhs,
					Right: &ast.BinaryExpr{Operator: "/", Left: &ast.NumberLiteral{Value: "1"}, Right: known}}
			default:
				return nil, false
			}

		default:
			return nil, false
		}
	}
}
