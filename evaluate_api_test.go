package lemma

import (
	"testing"
	"time"

	"github.com/benrogmans/Lemma/internal/validator"
)

func TestEvaluateShippingScenario(t *testing.T) {
	ws := NewWorkspace()
	if _, _, err := ws.AddSource(`
doc Shipping
fact weight = [number]
fact distance = [number]
rule cost = weight * 2 + distance * 0.5
	unless weight > 50 then veto "too heavy to ship"
`, "shipping.lemma"); err != nil {
		t.Fatal(err)
	}
	overrides, err := ws.ParseFacts("Shipping", []string{"weight=10", "distance=100"})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := ws.Evaluate("Shipping", []string{"cost"}, overrides, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("got %+v", resp.Results)
	}
	res := resp.Results[0]
	if res.Value != "70" {
		t.Fatalf("expected cost 70, got %+v", res.Value)
	}
}

func TestEvaluatePricingWithPercentage(t *testing.T) {
	ws := NewWorkspace()
	if _, _, err := ws.AddSource(`
doc Pricing
fact price = 100 USD
fact discount_rate = 20%
rule final_price = price - discount_rate
`, "pricing.lemma"); err != nil {
		t.Fatal(err)
	}
	resp, err := ws.Evaluate("Pricing", []string{"final_price"}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	res := resp.Results[0]
	m, ok := res.Value.(map[string]string)
	if !ok || m["amount"] != "80" || m["currency"] != "USD" {
		t.Fatalf("got %+v", res.Value)
	}
}

func TestEvaluateVetoWithOverride(t *testing.T) {
	ws := NewWorkspace()
	if _, _, err := ws.AddSource(`
doc Orders
fact amount = 50
rule charge = amount
	unless amount > 1000 then veto "exceeds limit"
`, "orders.lemma"); err != nil {
		t.Fatal(err)
	}
	overrides, err := ws.ParseFacts("Orders", []string{"amount=5000"})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := ws.Evaluate("Orders", []string{"charge"}, overrides, 0)
	if err != nil {
		t.Fatal(err)
	}
	res := resp.Results[0]
	if res.Veto != "exceeds limit" {
		t.Fatalf("expected the override to trigger the veto, got %+v", res)
	}
}

func TestEvaluateUnitConversionRoundTrip(t *testing.T) {
	ws := NewWorkspace()
	if _, _, err := ws.AddSource(`
doc Physics
fact mass = 1000 g
rule in_kg = mass in kg
`, "physics.lemma"); err != nil {
		t.Fatal(err)
	}
	resp, err := ws.Evaluate("Physics", []string{"in_kg"}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	m, ok := resp.Results[0].Value.(map[string]string)
	if !ok || m["amount"] != "1" || m["unit"] != "kg" {
		t.Fatalf("got %+v", resp.Results[0].Value)
	}
}

func TestEvaluateUnknownDocument(t *testing.T) {
	ws := NewWorkspace()
	if _, err := ws.Evaluate("Nope", nil, nil, 0); err == nil {
		t.Fatal("expected an error for an unknown document")
	}
}

func TestEvaluateMissingFactsAndTimeout(t *testing.T) {
	ws := NewWorkspace()
	if _, _, err := ws.AddSource("doc D\nfact a = [number]\nrule r = a\n", "d.lemma"); err != nil {
		t.Fatal(err)
	}
	resp, err := ws.Evaluate("D", []string{"r"}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results[0].MissingFacts) != 1 {
		t.Fatalf("got %+v", resp.Results[0])
	}

	_, err = ws.Evaluate("D", []string{"r"}, nil, 1*time.Nanosecond)
	if err == nil {
		t.Fatal("expected the near-zero timeout to abort evaluation")
	}
}

func TestParseFactsAllKinds(t *testing.T) {
	ws := NewWorkspace()
	if _, _, err := ws.AddSource(`
doc D
fact n = [number]
fact s = [text]
fact b = [boolean]
fact pct = [percentage]
fact price = [money]
fact weight = [kg]
`, "d.lemma"); err != nil {
		t.Fatal(err)
	}
	overrides, err := ws.ParseFacts("D", []string{
		"n=42", "s=hello", "b=true", "pct=15%", "price=100USD", "weight=5kg",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(overrides) != 6 {
		t.Fatalf("got %+v", overrides)
	}
}

func TestParseFactsInvalidSyntax(t *testing.T) {
	ws := NewWorkspace()
	if _, _, err := ws.AddSource("doc D\nfact n = [number]\n", "d.lemma"); err != nil {
		t.Fatal(err)
	}
	if _, err := ws.ParseFacts("D", []string{"no-equals-sign"}); err == nil {
		t.Fatal("expected an error for a malformed override")
	}
}

func TestParseTypedValuePercentageAndBoolean(t *testing.T) {
	v, err := parseTypedValue("15%", validator.FactType{Kind: "percentage"})
	if err != nil || v.Num.String() != "0.15" {
		t.Fatalf("got %+v %v", v, err)
	}

	v, err = parseTypedValue("false", validator.FactType{Kind: "boolean"})
	if err != nil || v.Bool != false {
		t.Fatalf("got %+v %v", v, err)
	}

	if _, err := parseTypedValue("nope", validator.FactType{Kind: "boolean"}); err == nil {
		t.Fatal("expected an error for an invalid boolean")
	}
}

func TestSplitNumberSuffix(t *testing.T) {
	cases := []struct {
		in, num, suffix string
	}{
		{"10 kg", "10", "kg"},
		{"10kg", "10", "kg"},
		{"100USD", "100", "USD"},
		{"42", "42", ""},
	}
	for _, c := range cases {
		n, s := splitNumberSuffix(c.in)
		if n != c.num || s != c.suffix {
			t.Errorf("splitNumberSuffix(%q) = (%q, %q), want (%q, %q)", c.in, n, s, c.num, c.suffix)
		}
	}
}
