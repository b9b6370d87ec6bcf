package values

import (
	"testing"

	"github.com/shopspring/decimal"
)

func num(s string) Value {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return Number(d)
}

func TestValueString(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{num("10.5000"), "10.5"},
		{num("10.0"), "10"},
		{Text("hi"), "hi"},
		{Boolean(true), "true"},
		{Boolean(false), "false"},
		{Percentage(decimal.NewFromFloat(0.15)), "15%"},
		{Money(decimal.NewFromInt(1000), "USD"), "1,000 USD"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestBinaryOpNumberArithmetic(t *testing.T) {
	r, err := BinaryOp("+", num("2"), num("3"))
	if err != nil {
		t.Fatal(err)
	}
	if r.String() != "5" {
		t.Errorf("got %s", r.String())
	}

	r, err = BinaryOp("*", num("4"), num("2.5"))
	if err != nil {
		t.Fatal(err)
	}
	if r.String() != "10" {
		t.Errorf("got %s", r.String())
	}
}

func TestBinaryOpDivisionByZero(t *testing.T) {
	_, err := BinaryOp("/", num("1"), num("0"))
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestBinaryOpMoneyCurrencyMismatch(t *testing.T) {
	usd := Money(decimal.NewFromInt(10), "USD")
	eur := Money(decimal.NewFromInt(10), "EUR")
	_, err := BinaryOp("+", usd, eur)
	if err == nil {
		t.Fatal("expected a currency mismatch error")
	}
}

func TestBinaryOpMoneyPercentage(t *testing.T) {
	price := Money(decimal.NewFromInt(100), "USD")
	discount := Percentage(decimal.NewFromFloat(0.1))
	r, err := BinaryOp("-", price, discount)
	if err != nil {
		t.Fatal(err)
	}
	if r.String() != "90 USD" {
		t.Errorf("got %s", r.String())
	}
}

func TestBinaryOpUnsupportedCombination(t *testing.T) {
	_, err := BinaryOp("+", Text("a"), num("1"))
	if err == nil {
		t.Fatal("expected an error for text + number")
	}
}

func TestUnaryOpNegationAndMath(t *testing.T) {
	r, err := UnaryOp("-", num("5"))
	if err != nil {
		t.Fatal(err)
	}
	if r.String() != "-5" {
		t.Errorf("got %s", r.String())
	}

	r, err = UnaryOp("sqrt", num("9"))
	if err != nil {
		t.Fatal(err)
	}
	if r.String() != "3" {
		t.Errorf("sqrt(9) = %s", r.String())
	}

	_, err = UnaryOp("sqrt", num("-4"))
	if err == nil {
		t.Fatal("expected an error for sqrt of negative")
	}

	_, err = UnaryOp("log", num("0"))
	if err == nil {
		t.Fatal("expected an error for log of non-positive")
	}
}

func TestUnaryOpNotRequiresBoolean(t *testing.T) {
	r, err := UnaryOp("not", Boolean(true))
	if err != nil {
		t.Fatal(err)
	}
	if r.Bool {
		t.Error("expected false")
	}
	if _, err := UnaryOp("not", num("1")); err == nil {
		t.Fatal("expected an error")
	}
}

func TestEqualTypedSemantics(t *testing.T) {
	eq, err := Equal(num("1"), num("1.0"))
	if err != nil || !eq {
		t.Fatalf("expected 1 == 1.0, got %v %v", eq, err)
	}

	eq, err = Equal(num("1"), Text("1"))
	if err != nil {
		t.Fatal(err)
	}
	if eq {
		t.Error("different kinds should never be equal")
	}

	_, err = Equal(Money(decimal.NewFromInt(1), "USD"), Money(decimal.NewFromInt(1), "EUR"))
	if err == nil {
		t.Fatal("expected a currency mismatch error")
	}
}

func TestCompareOrdering(t *testing.T) {
	c, err := Compare(num("1"), num("2"))
	if err != nil || c >= 0 {
		t.Fatalf("expected 1 < 2, got %d %v", c, err)
	}

	_, err = Compare(Money(decimal.NewFromInt(1), "USD"), Money(decimal.NewFromInt(1), "EUR"))
	if err == nil {
		t.Fatal("expected a currency mismatch error")
	}

	_, err = Compare(Text("a"), Text("b"))
	if err == nil {
		t.Fatal("expected text to be incomparable")
	}
}
