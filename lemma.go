// Package lemma provides a clean, idiomatic Go API for evaluating
// Lemma business-rules documents.
//
// Lemma is a declarative DSL for named facts (typed inputs) and rules
// (expressions that may be overridden by reverse-order unless clauses,
// including an explicit veto). A workspace ingests one or more
// documents, validates them together, and can then evaluate any subset
// of their rules against supplied or default facts, or symbolically
// invert a rule to find which facts would have produced a given
// outcome.
//
// Basic usage:
//
//	ws := lemma.NewWorkspace()
//	if _, _, err := ws.AddSource(source, "pricing.lemma"); err != nil {
//	    log.Fatal(err)
//	}
//	resp, err := ws.Evaluate("pricing", nil, nil, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(resp.Results[0].Value)
package lemma
