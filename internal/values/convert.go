package values

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/benrogmans/Lemma/internal/units"
)

// ConvertUnit implements the postfix `in <unit>` operator.
// Money cannot be converted between currencies; temperature
// conversions use the affine formulas registered in package units.
func ConvertUnit(v Value, targetUnit string) (Value, error) {
	switch v.Kind {
	case KindUnit:
		targetDim, ok := units.DimensionOf(targetUnit)
		if !ok {
			return Value{}, fmt.Errorf("unknown unit %q", targetUnit)
		}
		if targetDim != v.Dimension {
			return Value{}, fmt.Errorf("cannot convert %s to %s: different dimensions", v.Dimension, targetDim)
		}
		converted, err := units.Convert(numFloat(v.Num), v.UnitName, targetUnit)
		if err != nil {
			return Value{}, err
		}
		return Unit(decimal.NewFromFloat(converted), v.Dimension, targetUnit), nil
	case KindDuration:
		if !units.IsDurationUnit(targetUnit) {
			return Value{}, fmt.Errorf("unknown duration unit %q", targetUnit)
		}
		seconds, _ := units.DurationToSeconds(numFloat(v.Num), v.UnitName)
		converted, _ := units.SecondsToDuration(seconds, targetUnit)
		return Duration(decimal.NewFromFloat(converted), targetUnit), nil
	case KindMoney:
		return Value{}, fmt.Errorf("cannot convert currency %s to %s: currency conversion is out of scope", v.Currency, targetUnit)
	default:
		return Value{}, fmt.Errorf("cannot apply unit conversion to %s", v.TypeName())
	}
}
