package evaluator

import (
	"time"

	"github.com/benrogmans/Lemma/internal/lemmaerr"
	"github.com/benrogmans/Lemma/internal/validator"
	"github.com/benrogmans/Lemma/internal/values"
)

type factCacheEntry struct {
	val values.Value
	err error
}

type ruleCacheEntry struct {
	outcome Outcome
	trace   []Record
}

// call holds the per-evaluation-call state: the override facts supplied
// by the caller, memoised fact/rule results (scoped to this call only,
// so concurrent calls against the same workspace never share state),
// and an optional deadline.
type call struct {
	reg         *validator.Registry
	overrides   map[string]values.Value
	factMemo    map[string]factCacheEntry
	ruleMemo    map[string]ruleCacheEntry
	deadline    time.Time
	hasDeadline bool
	timeoutMS   int64
}

func newCall(reg *validator.Registry, overrides map[string]values.Value, timeout time.Duration) *call {
	c := &call{
		reg:       reg,
		overrides: overrides,
		factMemo:  make(map[string]factCacheEntry),
		ruleMemo:  make(map[string]ruleCacheEntry),
	}
	if timeout > 0 {
		c.deadline = time.Now().Add(timeout)
		c.hasDeadline = true
		c.timeoutMS = timeout.Milliseconds()
	}
	return c
}

func (c *call) checkDeadline() error {
	if !c.hasDeadline {
		return nil
	}
	if time.Now().After(c.deadline) {
		return &lemmaerr.EvaluationTimeout{DeadlineMS: c.timeoutMS}
	}
	return nil
}

// resolveFact resolves a dotted fact path against doc, honoring call
// overrides first and falling back to the fact's default expression.
// A required fact with neither an override nor a default yields a
// missingSignal; evaluating a default that reads a vetoed rule yields
// a vetoSignal.
func (c *call) resolveFact(doc *validator.Document, path string, trace *[]Record) (values.Value, error) {
	targetDoc, name, err := c.reg.ResolveFactPath(path, doc)
	if err != nil {
		return values.Value{}, err
	}
	id := targetDoc.Name + ":" + name
	if entry, ok := c.factMemo[id]; ok {
		return entry.val, entry.err
	}

	if v, ok := c.overrides[id]; ok {
		*trace = append(*trace, Record{Kind: FactUsed, FactPath: id, Result: v.String()})
		c.factMemo[id] = factCacheEntry{val: v}
		return v, nil
	}

	fs := targetDoc.Facts[name]
	if fs.Default == nil {
		ferr := &missingSignal{facts: map[string]bool{id: true}}
		c.factMemo[id] = factCacheEntry{err: ferr}
		return values.Value{}, ferr
	}

	val, derr := c.evalExpr(targetDoc, fs.Default, trace)
	if derr != nil {
		c.factMemo[id] = factCacheEntry{err: derr}
		return values.Value{}, derr
	}
	*trace = append(*trace, Record{Kind: FactUsed, FactPath: id, Result: val.String()})
	c.factMemo[id] = factCacheEntry{val: val}
	return val, nil
}
