package validator

import "strings"

// findCycle runs a depth-first search over the combined fact/rule
// dependency graph spanning every document in the registry, reporting
// the first cycle found as a "->"-joined path of node ids.
func (r *Registry) findCycle() (string, bool) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var path []string

	var edgesOf func(id string) []string
	edgesOf = func(id string) []string {
		docName, name, ok := splitNodeID(id)
		if !ok {
			return nil
		}
		doc, ok := r.docs[docName]
		if !ok {
			return nil
		}
		var out []string
		if fs, ok := doc.Facts[name]; ok {
			for dep := range fs.FactDeps {
				out = append(out, dep)
			}
			for dep := range fs.RuleDeps {
				out = append(out, dep)
			}
		}
		if rs, ok := doc.Rules[name]; ok {
			for dep := range rs.FactDeps {
				out = append(out, dep)
			}
			for dep := range rs.RuleDeps {
				out = append(out, dep)
			}
		}
		return out
	}

	var visit func(id string) (string, bool)
	visit = func(id string) (string, bool) {
		switch color[id] {
		case black:
			return "", false
		case gray:
			path = append(path, id)
			return strings.Join(path, " -> "), true
		}
		color[id] = gray
		path = append(path, id)
		for _, next := range edgesOf(id) {
			if cyc, found := visit(next); found {
				return cyc, true
			}
		}
		path = path[:len(path)-1]
		color[id] = black
		return "", false
	}

	for _, docName := range r.allDocNames() {
		doc := r.docs[docName]
		for _, name := range doc.FactOrder {
			id := nodeID(docName, name)
			if color[id] == white {
				path = nil
				if cyc, found := visit(id); found {
					return cyc, true
				}
			}
		}
		for _, name := range doc.RuleOrder {
			id := nodeID(docName, name)
			if color[id] == white {
				path = nil
				if cyc, found := visit(id); found {
					return cyc, true
				}
			}
		}
	}
	return "", false
}

func (r *Registry) allDocNames() []string {
	names := make([]string, 0, len(r.docs))
	for name := range r.docs {
		names = append(names, name)
	}
	return names
}

// splitNodeID splits a "doc:name" node id. Document names may
// themselves contain "/" but never ":", so the first colon is
// unambiguous.
func splitNodeID(id string) (doc, name string, ok bool) {
	idx := strings.IndexByte(id, ':')
	if idx < 0 {
		return "", "", false
	}
	return id[:idx], id[idx+1:], true
}
