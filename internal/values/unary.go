package values

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// UnaryOp applies a prefix operator: numeric negation or one of the
// prefix math functions (sqrt, sin, cos, tan, log, exp, abs, floor,
// ceil, round), or boolean negation.
func UnaryOp(op string, operand Value) (Value, error) {
	if op == "not" {
		if operand.Kind != KindBoolean {
			return Value{}, fmt.Errorf("'not' requires a boolean, got %s", operand.TypeName())
		}
		return Boolean(!operand.Bool), nil
	}

	if operand.Kind != KindNumber && operand.Kind != KindPercentage && operand.Kind != KindMoney && operand.Kind != KindUnit {
		return Value{}, fmt.Errorf("%q requires a numeric value, got %s", op, operand.TypeName())
	}

	if op == "-" {
		result := operand
		result.Num = operand.Num.Neg()
		return result, nil
	}

	f, _ := operand.Num.Float64()
	var r float64
	switch op {
	case "sqrt":
		if f < 0 {
			return Value{}, fmt.Errorf("sqrt of negative number")
		}
		r = math.Sqrt(f)
	case "sin":
		r = math.Sin(f)
	case "cos":
		r = math.Cos(f)
	case "tan":
		r = math.Tan(f)
	case "log":
		if f <= 0 {
			return Value{}, fmt.Errorf("log of non-positive number")
		}
		r = math.Log(f)
	case "exp":
		r = math.Exp(f)
	case "abs":
		r = math.Abs(f)
	case "floor":
		r = math.Floor(f)
	case "ceil":
		r = math.Ceil(f)
	case "round":
		r = math.Round(f)
	default:
		return Value{}, fmt.Errorf("unsupported unary operator %q", op)
	}
	return Number(decimal.NewFromFloat(r)), nil
}
