package values

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/benrogmans/Lemma/internal/units"
)

// DivisionPrecision bounds the scale of an inexact division to 12
// significant digits.
const DivisionPrecision = 12

func init() {
	decimal.DivisionPrecision = DivisionPrecision
}

// BinaryOp applies a type-directed arithmetic operator, dispatching
// on the operand kinds.
func BinaryOp(op string, left, right Value) (Value, error) {
	switch {
	case left.Kind == KindNumber && right.Kind == KindNumber:
		return numberOp(op, left, right)
	case left.Kind == KindMoney && right.Kind == KindMoney:
		return moneyMoneyOp(op, left, right)
	case left.Kind == KindMoney && right.Kind == KindPercentage:
		return moneyPercentageOp(op, left, right)
	case left.Kind == KindNumber && right.Kind == KindPercentage:
		return numberPercentageOp(op, left, right)
	case left.Kind == KindMoney && right.Kind == KindNumber:
		return moneyNumberOp(op, left, right)
	case left.Kind == KindNumber && right.Kind == KindMoney:
		return moneyNumberOp(op, right, left)
	case left.Kind == KindUnit && right.Kind == KindUnit:
		return unitUnitOp(op, left, right)
	case left.Kind == KindUnit && right.Kind == KindNumber:
		return unitNumberOp(op, left, right)
	case left.Kind == KindNumber && right.Kind == KindUnit:
		return unitNumberOp(op, right, left)
	case left.Kind == KindDate && right.Kind == KindDuration:
		return dateDurationOp(op, left, right)
	case left.Kind == KindDate && right.Kind == KindDate:
		return dateDateOp(op, left, right)
	case left.Kind == KindDuration && right.Kind == KindDuration:
		return durationDurationOp(op, left, right)
	case left.Kind == KindPercentage && right.Kind == KindPercentage:
		return numberOp(op, Number(left.Num), Number(right.Num))
	default:
		return Value{}, fmt.Errorf("unsupported operation %q between %s and %s", op, left.TypeName(), right.TypeName())
	}
}

func divide(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, fmt.Errorf("division by zero")
	}
	return a.DivRound(b, DivisionPrecision), nil
}

func numberOp(op string, left, right Value) (Value, error) {
	switch op {
	case "+":
		return Number(left.Num.Add(right.Num)), nil
	case "-":
		return Number(left.Num.Sub(right.Num)), nil
	case "*":
		return Number(left.Num.Mul(right.Num)), nil
	case "/":
		d, err := divide(left.Num, right.Num)
		if err != nil {
			return Value{}, err
		}
		return Number(d), nil
	case "%":
		if right.Num.IsZero() {
			return Value{}, fmt.Errorf("division by zero")
		}
		return Number(left.Num.Mod(right.Num)), nil
	case "^":
		return Number(power(left.Num, right.Num)), nil
	default:
		return Value{}, fmt.Errorf("unsupported number operator %q", op)
	}
}

func power(base, exp decimal.Decimal) decimal.Decimal {
	f, _ := exp.Float64()
	b, _ := base.Float64()
	if f == float64(int64(f)) {
		result := decimal.NewFromInt(1)
		n := int64(f)
		neg := n < 0
		if neg {
			n = -n
		}
		for i := int64(0); i < n; i++ {
			result = result.Mul(base)
		}
		if neg {
			result, _ = divide(decimal.NewFromInt(1), result)
		}
		return result
	}
	return decimal.NewFromFloat(math.Pow(b, f))
}

func moneyMoneyOp(op string, left, right Value) (Value, error) {
	if left.Currency != right.Currency {
		return Value{}, fmt.Errorf("currency mismatch: %s vs %s", left.Currency, right.Currency)
	}
	switch op {
	case "+":
		return Money(left.Num.Add(right.Num), left.Currency), nil
	case "-":
		return Money(left.Num.Sub(right.Num), left.Currency), nil
	default:
		return Value{}, fmt.Errorf("unsupported money operator %q", op)
	}
}

// moneyPercentageOp implements `M − p%` = `M * (1 − p)`, `M + p%` =
// `M * (1 + p)`, `M * p%` = `M * p`.
func moneyPercentageOp(op string, left, right Value) (Value, error) {
	one := decimal.NewFromInt(1)
	switch op {
	case "+":
		return Money(left.Num.Mul(one.Add(right.Num)), left.Currency), nil
	case "-":
		return Money(left.Num.Mul(one.Sub(right.Num)), left.Currency), nil
	case "*":
		return Money(left.Num.Mul(right.Num), left.Currency), nil
	default:
		return Value{}, fmt.Errorf("unsupported money/percentage operator %q", op)
	}
}

func numberPercentageOp(op string, left, right Value) (Value, error) {
	one := decimal.NewFromInt(1)
	switch op {
	case "+":
		return Number(left.Num.Mul(one.Add(right.Num))), nil
	case "-":
		return Number(left.Num.Mul(one.Sub(right.Num))), nil
	case "*":
		return Number(left.Num.Mul(right.Num)), nil
	default:
		return Value{}, fmt.Errorf("unsupported number/percentage operator %q", op)
	}
}

func moneyNumberOp(op string, money, number Value) (Value, error) {
	switch op {
	case "*":
		return Money(money.Num.Mul(number.Num), money.Currency), nil
	case "/":
		d, err := divide(money.Num, number.Num)
		if err != nil {
			return Value{}, err
		}
		return Money(d, money.Currency), nil
	default:
		return Value{}, fmt.Errorf("unsupported money/number operator %q", op)
	}
}

// unitUnitOp coerces the right operand into the left operand's unit
// before applying the operator; both must share a dimension.
func unitUnitOp(op string, left, right Value) (Value, error) {
	if left.Dimension != right.Dimension {
		return Value{}, fmt.Errorf("dimension mismatch: %s vs %s", left.Dimension, right.Dimension)
	}
	rf, _ := right.Num.Float64()
	converted, err := units.Convert(rf, right.UnitName, left.UnitName)
	if err != nil {
		return Value{}, err
	}
	coerced := decimal.NewFromFloat(converted)
	switch op {
	case "+":
		return Unit(left.Num.Add(coerced), left.Dimension, left.UnitName), nil
	case "-":
		return Unit(left.Num.Sub(coerced), left.Dimension, left.UnitName), nil
	default:
		return Value{}, fmt.Errorf("unsupported unit operator %q", op)
	}
}

func unitNumberOp(op string, u, number Value) (Value, error) {
	switch op {
	case "*":
		return Unit(u.Num.Mul(number.Num), u.Dimension, u.UnitName), nil
	case "/":
		d, err := divide(u.Num, number.Num)
		if err != nil {
			return Value{}, err
		}
		return Unit(d, u.Dimension, u.UnitName), nil
	default:
		return Value{}, fmt.Errorf("unsupported unit/number operator %q", op)
	}
}

// dateDurationOp implements `Date + Unit{duration}` and `Date -
// Unit{duration}`, calendar-correct for months/years.
func dateDurationOp(op string, date, dur Value) (Value, error) {
	amount, _ := dur.Num.Float64()
	sign := 1
	if op == "-" {
		sign = -1
	} else if op != "+" {
		return Value{}, fmt.Errorf("unsupported date/duration operator %q", op)
	}

	switch units.CalendarUnitOf(dur.UnitName) {
	case units.CalendarMonths:
		return Date(date.Date.AddDate(0, sign*int(amount), 0)), nil
	case units.CalendarYears:
		return Date(date.Date.AddDate(sign*int(amount), 0, 0)), nil
	default:
		seconds, ok := units.DurationToSeconds(amount, dur.UnitName)
		if !ok {
			return Value{}, fmt.Errorf("unknown duration unit %q", dur.UnitName)
		}
		return Date(date.Date.Add(time.Duration(sign) * time.Duration(seconds*float64(time.Second)))), nil
	}
}

// dateDateOp implements `Date - Date` → `Unit{duration}` in days.
func dateDateOp(op string, left, right Value) (Value, error) {
	if op != "-" {
		return Value{}, fmt.Errorf("unsupported date/date operator %q", op)
	}
	diff := left.Date.Sub(right.Date)
	days := diff.Hours() / 24
	return Duration(decimal.NewFromFloat(days), "day"), nil
}

func durationDurationOp(op string, left, right Value) (Value, error) {
	leftSeconds, _ := units.DurationToSeconds(numFloat(left.Num), left.UnitName)
	rightSeconds, ok := units.DurationToSeconds(numFloat(right.Num), right.UnitName)
	if !ok {
		return Value{}, fmt.Errorf("unknown duration unit %q", right.UnitName)
	}
	switch op {
	case "+":
		total, _ := units.SecondsToDuration(leftSeconds+rightSeconds, left.UnitName)
		return Duration(decimal.NewFromFloat(total), left.UnitName), nil
	case "-":
		total, _ := units.SecondsToDuration(leftSeconds-rightSeconds, left.UnitName)
		return Duration(decimal.NewFromFloat(total), left.UnitName), nil
	default:
		return Value{}, fmt.Errorf("unsupported duration operator %q", op)
	}
}

func numFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func durationSecondsOf(v Value) (float64, bool) {
	return units.DurationToSeconds(numFloat(v.Num), v.UnitName)
}

func convertTo(value float64, from, to string) (float64, error) {
	return units.Convert(value, from, to)
}

func decimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
