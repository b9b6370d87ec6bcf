// Package planner computes the transitive dependency closure of a
// requested rule set and orders it topologically so the evaluator can
// walk it leaves-first.
package planner

import (
	"fmt"

	"github.com/benrogmans/Lemma/internal/validator"
)

// RuleRef names one rule by its owning document.
type RuleRef struct {
	Doc  string
	Name string
}

// Plan returns the rules that must be evaluated to produce the
// requested rules, in dependency order (a rule's dependencies always
// precede it). If ruleNames is empty, every rule in docName is
// requested.
func Plan(reg *validator.Registry, docName string, ruleNames []string) ([]RuleRef, error) {
	doc, ok := reg.Document(docName)
	if !ok {
		return nil, fmt.Errorf("unknown document %q", docName)
	}

	requested := ruleNames
	if len(requested) == 0 {
		requested = doc.RuleOrder
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[string]int)
	var order []RuleRef

	var visitRule func(docName, name string) error
	var pullFactRuleDeps func(docName, factName string) error

	visitRule = func(docName, name string) error {
		id := docName + ":" + name
		switch state[id] {
		case visited:
			return nil
		case visiting:
			return fmt.Errorf("dependency cycle at rule %s", id)
		}
		state[id] = visiting

		d, ok := reg.Document(docName)
		if !ok {
			return fmt.Errorf("unknown document %q", docName)
		}
		rs, ok := d.Rules[name]
		if !ok {
			return fmt.Errorf("unknown rule %q in document %q", name, docName)
		}

		for dep := range rs.RuleDeps {
			depDoc, depName := splitID(dep)
			if err := visitRule(depDoc, depName); err != nil {
				return err
			}
		}
		for dep := range rs.FactDeps {
			depDoc, depName := splitID(dep)
			if err := pullFactRuleDeps(depDoc, depName); err != nil {
				return err
			}
		}

		state[id] = visited
		order = append(order, RuleRef{Doc: docName, Name: name})
		return nil
	}

	// A fact's default expression may itself reference rules; those
	// must be ordered ahead of any rule that reads the fact.
	pullFactRuleDeps = func(docName, factName string) error {
		d, ok := reg.Document(docName)
		if !ok {
			return nil
		}
		fs, ok := d.Facts[factName]
		if !ok {
			return nil
		}
		for dep := range fs.RuleDeps {
			depDoc, depName := splitID(dep)
			if err := visitRule(depDoc, depName); err != nil {
				return err
			}
		}
		for dep := range fs.FactDeps {
			depDoc, depName := splitID(dep)
			if err := pullFactRuleDeps(depDoc, depName); err != nil {
				return err
			}
		}
		return nil
	}

	for _, name := range requested {
		if err := visitRule(docName, name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func splitID(id string) (doc, name string) {
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == ':' {
			return id[:i], id[i+1:]
		}
	}
	return "", id
}
