package validator

import (
	"testing"

	"github.com/benrogmans/Lemma/internal/lemmaerr"
	"github.com/benrogmans/Lemma/internal/parser"
)

func mustAdd(t *testing.T, r *Registry, src string) *Document {
	t.Helper()
	doc, err := parser.Parse(src, "t.lemma")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	added, _, err := r.AddDocument(doc)
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	return added
}

func TestAddDocumentBasic(t *testing.T) {
	r := NewRegistry()
	doc := mustAdd(t, r, `
doc Pricing
fact base = 10
rule total = base
`)
	if doc.Name != "Pricing" {
		t.Errorf("got %q", doc.Name)
	}
	if doc.ID == "" {
		t.Error("expected a non-empty document ID")
	}
	fs := doc.Facts["base"]
	if fs.Type.Kind != "number" {
		t.Errorf("inferred fact type: got %q, want number", fs.Type.Kind)
	}
}

func TestAddDocumentAssignsDistinctIDs(t *testing.T) {
	r := NewRegistry()
	d1 := mustAdd(t, r, "doc A\nfact x = 1\n")
	d2 := mustAdd(t, r, "doc B\nfact x = 1\n")
	if d1.ID == d2.ID {
		t.Error("expected distinct document IDs")
	}
}

func TestAddDocumentDuplicateNameRejected(t *testing.T) {
	r := NewRegistry()
	mustAdd(t, r, "doc A\nfact x = 1\n")
	doc, err := parser.Parse("doc A\nfact y = 2\n", "t2.lemma")
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = r.AddDocument(doc)
	if err == nil {
		t.Fatal("expected a duplicate-name error")
	}
	if _, ok := err.(*lemmaerr.SemanticError); !ok {
		t.Fatalf("expected *lemmaerr.SemanticError, got %T", err)
	}
}

func TestAddDocumentDuplicateFactNameRejected(t *testing.T) {
	r := NewRegistry()
	doc, err := parser.Parse("doc A\nfact x = 1\nfact x = 2\n", "t.lemma")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.AddDocument(doc); err == nil {
		t.Fatal("expected a duplicate fact name error")
	}
}

func TestAddDocumentRuleShadowingFactRejected(t *testing.T) {
	r := NewRegistry()
	doc, err := parser.Parse("doc A\nfact x = 1\nrule x = 2\n", "t.lemma")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.AddDocument(doc); err == nil {
		t.Fatal("expected a name-collision error")
	}
}

func TestAddDocumentDependencyCycleRejected(t *testing.T) {
	r := NewRegistry()
	doc, err := parser.Parse(`
doc A
rule a = b?
rule b = a?
`, "t.lemma")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.AddDocument(doc); err == nil {
		t.Fatal("expected a dependency cycle error")
	}
}

func TestAddDocumentUnresolvedDefaultTypeIsHintNotError(t *testing.T) {
	r := NewRegistry()
	doc, err := parser.Parse(`
doc A
fact x = y
fact y = x
`, "t.lemma")
	if err != nil {
		t.Fatal(err)
	}
	_, diags, err := r.AddDocument(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, d := range diags {
		if d.Code == UnresolvedDefaultType {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an UnresolvedDefaultType hint, got %+v", diags)
	}
}

func TestCrossDocumentFactReference(t *testing.T) {
	r := NewRegistry()
	mustAdd(t, r, "doc Base\nfact rate = 0.1\n")
	doc := mustAdd(t, r, `
doc Derived
rule scaled = Base.rate
`)
	rs := doc.Rules["scaled"]
	if len(rs.FactDeps) != 1 {
		t.Errorf("expected one cross-document fact dependency, got %+v", rs.FactDeps)
	}
	if _, ok := rs.FactDeps["Base:rate"]; !ok {
		t.Errorf("expected dependency on Base:rate, got %+v", rs.FactDeps)
	}
}

func TestResolveFactPathUnknown(t *testing.T) {
	r := NewRegistry()
	doc := mustAdd(t, r, "doc A\nfact x = 1\n")
	if _, _, err := r.ResolveFactPath("nonexistent", doc); err == nil {
		t.Fatal("expected an error for an unknown fact path")
	}
}

func TestFactTypeFromAnnotationUnitDimension(t *testing.T) {
	r := NewRegistry()
	doc := mustAdd(t, r, "doc A\nfact weight = [kg]\n")
	fs := doc.Facts["weight"]
	if fs.Type.Kind != "unit" || fs.Type.Dimension != "mass" {
		t.Errorf("got %+v", fs.Type)
	}
}

func TestDocumentCountLimitExceeded(t *testing.T) {
	r := NewRegistry()
	// Fill the registry to the limit directly rather than parsing
	// MaxDocumentCount real documents.
	for i := 0; i < MaxDocumentCount; i++ {
		name := fakeDocName(i)
		r.docs[name] = &Document{Name: name, Facts: map[string]*FactSymbol{}, Rules: map[string]*RuleSymbol{}}
		r.order = append(r.order, name)
	}
	doc, err := parser.Parse("doc Overflow\nfact x = 1\n", "t.lemma")
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = r.AddDocument(doc)
	if err == nil {
		t.Fatal("expected a document count limit error")
	}
	if _, ok := err.(*lemmaerr.LimitExceeded); !ok {
		t.Fatalf("expected *lemmaerr.LimitExceeded, got %T", err)
	}
}

func TestAddDocumentShadowedCrossDocNameWarning(t *testing.T) {
	r := NewRegistry()
	mustAdd(t, r, "doc Base\nfact rate = [number]\n")
	_, diags, err := func() (*Document, []Diagnostic, error) {
		doc, perr := parser.Parse("doc Other\nfact rate = [number]\n", "t2.lemma")
		if perr != nil {
			t.Fatal(perr)
		}
		return r.AddDocument(doc)
	}()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, d := range diags {
		if d.Code == ShadowedCrossDocName {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a ShadowedCrossDocName warning, got %+v", diags)
	}
}

func TestAddDocumentShadowedCrossDocNameNotRaisedWithDefault(t *testing.T) {
	r := NewRegistry()
	mustAdd(t, r, "doc Base\nfact rate = [number]\n")
	doc, err := parser.Parse("doc Other\nfact rate = 0.1\n", "t2.lemma")
	if err != nil {
		t.Fatal(err)
	}
	_, diags, err := r.AddDocument(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, d := range diags {
		if d.Code == ShadowedCrossDocName {
			t.Errorf("did not expect a shadow warning when the reusing fact has a default, got %+v", diags)
		}
	}
}

func TestAddDocumentRedundantUnlessClauseWarning(t *testing.T) {
	r := NewRegistry()
	doc, err := parser.Parse(`
doc A
fact x = 1
rule total = x
	unless false then veto "never"
`, "t.lemma")
	if err != nil {
		t.Fatal(err)
	}
	_, diags, err := r.AddDocument(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, d := range diags {
		if d.Code == RedundantUnlessClause {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a RedundantUnlessClause warning, got %+v", diags)
	}
}

func fakeDocName(i int) string {
	b := make([]byte, 0, 8)
	for {
		b = append([]byte{byte('a' + i%26)}, b...)
		i /= 26
		if i == 0 {
			break
		}
		i--
	}
	return "doc_" + string(b)
}
