// Package values implements the Value tagged variant and its
// type-directed arithmetic, one struct per kind collapsed into a
// single tagged value so dispatch can switch on a pair of Kinds.
package values

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/benrogmans/Lemma/internal/units"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNumber Kind = iota
	KindText
	KindBoolean
	KindDate
	KindPercentage
	KindMoney
	KindUnit
	KindRegex
	KindDuration
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	case KindPercentage:
		return "percentage"
	case KindMoney:
		return "money"
	case KindUnit:
		return "unit"
	case KindRegex:
		return "regex"
	case KindDuration:
		return "duration"
	default:
		return "unknown"
	}
}

// Value is the tagged variant every expression evaluates to.
//
// Only the fields relevant to Kind are meaningful; unused fields are
// left at their zero value.
type Value struct {
	Kind      Kind
	Num       decimal.Decimal // Number, Percentage, Money, Unit, Duration magnitude
	Text      string          // Text contents
	Bool      bool            // Boolean
	Date      time.Time       // Date instant
	Currency  string          // Money ISO 4217 code
	Dimension units.Dimension // Unit dimension
	UnitName  string          // Unit or Duration canonical unit name
	Pattern   *regexp.Regexp  // Regex
}

func Number(d decimal.Decimal) Value    { return Value{Kind: KindNumber, Num: d} }
func Text(s string) Value               { return Value{Kind: KindText, Text: s} }
func Boolean(b bool) Value              { return Value{Kind: KindBoolean, Bool: b} }
func Date(t time.Time) Value            { return Value{Kind: KindDate, Date: t} }
func Percentage(d decimal.Decimal) Value { return Value{Kind: KindPercentage, Num: d} }
func Money(d decimal.Decimal, ccy string) Value {
	return Value{Kind: KindMoney, Num: d, Currency: ccy}
}
func Unit(d decimal.Decimal, dim units.Dimension, unitName string) Value {
	return Value{Kind: KindUnit, Num: d, Dimension: dim, UnitName: unitName}
}
func Duration(d decimal.Decimal, unitName string) Value {
	return Value{Kind: KindDuration, Num: d, UnitName: unitName}
}
func Regex(pattern string, re *regexp.Regexp) Value {
	return Value{Kind: KindRegex, Text: pattern, Pattern: re}
}

// TypeName renders the dimension/currency-qualified type name used in
// diagnostics, e.g. "Money{USD}", "Unit{mass}".
func (v Value) TypeName() string {
	switch v.Kind {
	case KindMoney:
		return fmt.Sprintf("Money{%s}", v.Currency)
	case KindUnit:
		return fmt.Sprintf("Unit{%s}", v.Dimension)
	default:
		return v.Kind.String()
	}
}

// String renders a human-readable representation, used by the
// operation trace and by CLI-style consumers outside this module.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return trimDecimal(v.Num)
	case KindText:
		return v.Text
	case KindBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindDate:
		return v.Date.Format(time.RFC3339)
	case KindPercentage:
		return trimDecimal(v.Num.Mul(decimal.NewFromInt(100))) + "%"
	case KindMoney:
		return addThousandsSeparators(trimDecimal(v.Num)) + " " + v.Currency
	case KindUnit:
		return trimDecimal(v.Num) + " " + v.UnitName
	case KindRegex:
		return "/" + v.Text + "/"
	case KindDuration:
		return trimDecimal(v.Num) + " " + v.UnitName
	default:
		return "<invalid>"
	}
}

// trimDecimal renders d without insignificant trailing zeros.
func trimDecimal(d decimal.Decimal) string {
	s := d.String()
	if !containsDot(s) {
		return s
	}
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	return s[:i]
}

func containsDot(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return true
		}
	}
	return false
}
