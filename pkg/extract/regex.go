package extract

import (
	"github.com/goliatone/go-sqltpl/pkg/infer"
	"github.com/goliatone/go-sqltpl/pkg/model"
)

// RegexStrategy extracts variables with layered regular expressions. It
// understands output expressions and control-flow conditions but nothing
// about nesting or scope, which is exactly why it never fails: it is the
// floor the fancier strategies fall back onto.
type RegexStrategy struct {
	inferrer *infer.Registry
	method   model.ExtractionMethod
}

// NewRegexStrategy builds the strategy. The method tag distinguishes the
// mid-tier regex pass from the last-resort fallback pass in diagnostics.
func NewRegexStrategy(inferrer *infer.Registry, method model.ExtractionMethod) *RegexStrategy {
	return &RegexStrategy{inferrer: inferrer, method: method}
}

func (s *RegexStrategy) Method() model.ExtractionMethod { return s.method }

// Extract never returns an error. Output expressions are scanned first so a
// variable referenced both piped and in a condition keeps its filters; the
// shared collector merges duplicates either way.
func (s *RegexStrategy) Extract(source string) ([]model.Variable, error) {
	c := newCollector(s.inferrer, s.method)

	scanOutputs(source, func(name string, filterNames []string) {
		c.add(name, filterNames...)
	})
	scanControlFlow(source, func(name string) {
		c.add(name)
	})

	return c.result(), nil
}
