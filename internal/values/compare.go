package values

import "fmt"

// Equal implements typed equality: Money of one currency equal by
// amount, and comparing two different currencies is an error; Dates
// equal by instant; Percentages equal by numeric fraction.
func Equal(left, right Value) (bool, error) {
	if left.Kind != right.Kind {
		return false, nil
	}
	switch left.Kind {
	case KindNumber, KindPercentage:
		return left.Num.Equal(right.Num), nil
	case KindText:
		return left.Text == right.Text, nil
	case KindBoolean:
		return left.Bool == right.Bool, nil
	case KindDate:
		return left.Date.Equal(right.Date), nil
	case KindMoney:
		if left.Currency != right.Currency {
			return false, fmt.Errorf("currency mismatch: %s vs %s", left.Currency, right.Currency)
		}
		return left.Num.Equal(right.Num), nil
	case KindUnit:
		if left.Dimension != right.Dimension {
			return false, fmt.Errorf("dimension mismatch: %s vs %s", left.Dimension, right.Dimension)
		}
		return left.Num.Equal(right.Num), nil
	case KindDuration:
		ls, _ := durationSecondsOf(left)
		rs, ok := durationSecondsOf(right)
		if !ok {
			return false, fmt.Errorf("unknown duration unit %q", right.UnitName)
		}
		return ls == rs, nil
	case KindRegex:
		return left.Text == right.Text, nil
	default:
		return false, fmt.Errorf("cannot compare %s", left.TypeName())
	}
}

// Compare implements ordering comparisons (<, <=, >, >=). Comparisons
// across dimensions or currencies are errors.
func Compare(left, right Value) (int, error) {
	switch {
	case left.Kind == KindNumber && right.Kind == KindNumber,
		left.Kind == KindPercentage && right.Kind == KindPercentage:
		return left.Num.Cmp(right.Num), nil
	case left.Kind == KindMoney && right.Kind == KindMoney:
		if left.Currency != right.Currency {
			return 0, fmt.Errorf("currency mismatch: %s vs %s", left.Currency, right.Currency)
		}
		return left.Num.Cmp(right.Num), nil
	case left.Kind == KindUnit && right.Kind == KindUnit:
		if left.Dimension != right.Dimension {
			return 0, fmt.Errorf("dimension mismatch: %s vs %s", left.Dimension, right.Dimension)
		}
		rf, _ := right.Num.Float64()
		converted, err := convertTo(rf, right.UnitName, left.UnitName)
		if err != nil {
			return 0, err
		}
		return left.Num.Cmp(decimalFromFloat(converted)), nil
	case left.Kind == KindDuration && right.Kind == KindDuration:
		ls, _ := durationSecondsOf(left)
		rs, ok := durationSecondsOf(right)
		if !ok {
			return 0, fmt.Errorf("unknown duration unit %q", right.UnitName)
		}
		switch {
		case ls < rs:
			return -1, nil
		case ls > rs:
			return 1, nil
		default:
			return 0, nil
		}
	case left.Kind == KindDate && right.Kind == KindDate:
		switch {
		case left.Date.Before(right.Date):
			return -1, nil
		case left.Date.After(right.Date):
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, fmt.Errorf("cannot compare %s and %s", left.TypeName(), right.TypeName())
	}
}
