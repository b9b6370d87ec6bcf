package lemma

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/benrogmans/Lemma/internal/evaluator"
	"github.com/benrogmans/Lemma/internal/units"
	"github.com/benrogmans/Lemma/internal/validator"
	"github.com/benrogmans/Lemma/internal/values"
)

// FactOverride is one parsed `name=value` override, ready to pass to
// Evaluate.
type FactOverride struct {
	Path  string
	Value values.Value
}

// Evaluate runs the requested rules (every rule in docName when
// ruleNames is empty) against the workspace, applying overrideFacts in
// place of a fact's default expression. A zero timeout means no
// evaluation deadline.
func (w *Workspace) Evaluate(docName string, ruleNames []string, overrideFacts []FactOverride, timeout time.Duration) (*Response, error) {
	doc, ok := w.reg.Document(docName)
	if !ok {
		return nil, fmt.Errorf("unknown document %q", docName)
	}

	overrides := make(map[string]values.Value, len(overrideFacts))
	for _, o := range overrideFacts {
		targetDoc, name, err := w.reg.ResolveFactPath(o.Path, doc)
		if err != nil {
			return nil, err
		}
		overrides[targetDoc.Name+":"+name] = o.Value
	}

	resp, err := evaluator.Evaluate(w.reg, docName, ruleNames, overrides, timeout)
	if err != nil {
		return nil, err
	}
	return fromEvaluatorResponse(resp), nil
}

// ParseFacts parses CLI-style "name=value" strings into FactOverrides,
// using docName's declared fact types to interpret each value.
func (w *Workspace) ParseFacts(docName string, kv []string) ([]FactOverride, error) {
	doc, ok := w.reg.Document(docName)
	if !ok {
		return nil, fmt.Errorf("unknown document %q", docName)
	}

	out := make([]FactOverride, 0, len(kv))
	for _, entry := range kv {
		idx := strings.IndexByte(entry, '=')
		if idx < 0 {
			return nil, fmt.Errorf("invalid fact override %q: expected name=value", entry)
		}
		path, raw := entry[:idx], entry[idx+1:]
		targetDoc, name, err := w.reg.ResolveFactPath(path, doc)
		if err != nil {
			return nil, err
		}
		fs := targetDoc.Facts[name]
		v, err := parseTypedValue(raw, fs.Type)
		if err != nil {
			return nil, fmt.Errorf("fact %s: %w", path, err)
		}
		out = append(out, FactOverride{Path: path, Value: v})
	}
	return out, nil
}

var valueDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseDateString(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range valueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// splitNumberSuffix splits "10 kg" or "10kg" into its numeral and
// trailing unit/currency letters.
func splitNumberSuffix(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := len(s)
	for i > 0 && isSuffixByte(s[i-1]) {
		i--
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i:])
}

func isSuffixByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == ' '
}

// parseTypedValue interprets raw according to ft's statically-inferred
// kind. When ft.Kind is "any" (inference never pinned down a type),
// callers should construct a Value directly instead.
func parseTypedValue(raw string, ft validator.FactType) (values.Value, error) {
	switch ft.Kind {
	case "number":
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return values.Value{}, err
		}
		return values.Number(d), nil

	case "text":
		return values.Text(raw), nil

	case "boolean":
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true":
			return values.Boolean(true), nil
		case "false":
			return values.Boolean(false), nil
		default:
			return values.Value{}, fmt.Errorf("invalid boolean %q", raw)
		}

	case "date":
		t, err := parseDateString(strings.TrimSpace(raw))
		if err != nil {
			return values.Value{}, err
		}
		return values.Date(t), nil

	case "percentage":
		trimmed := strings.TrimSuffix(strings.TrimSpace(raw), "%")
		d, err := decimal.NewFromString(trimmed)
		if err != nil {
			return values.Value{}, err
		}
		return values.Percentage(d.Div(decimal.NewFromInt(100))), nil

	case "money":
		numPart, suffix := splitNumberSuffix(raw)
		d, err := decimal.NewFromString(numPart)
		if err != nil {
			return values.Value{}, err
		}
		ccy := strings.ToUpper(suffix)
		if ccy == "" {
			ccy = ft.Currency
		}
		return values.Money(d, ccy), nil

	case "unit":
		numPart, suffix := splitNumberSuffix(raw)
		d, err := decimal.NewFromString(numPart)
		if err != nil {
			return values.Value{}, err
		}
		if suffix == "" {
			return values.Value{}, fmt.Errorf("unit value %q is missing a unit name", raw)
		}
		dim, ok := units.DimensionOf(suffix)
		if !ok {
			return values.Value{}, fmt.Errorf("unknown unit %q", suffix)
		}
		return values.Unit(d, dim, suffix), nil

	case "duration":
		numPart, suffix := splitNumberSuffix(raw)
		d, err := decimal.NewFromString(numPart)
		if err != nil {
			return values.Value{}, err
		}
		if suffix == "" {
			return values.Value{}, fmt.Errorf("duration value %q is missing a time unit", raw)
		}
		return values.Duration(d, suffix), nil

	default:
		return values.Value{}, fmt.Errorf("cannot parse a value for inferred type %q", ft.Kind)
	}
}
