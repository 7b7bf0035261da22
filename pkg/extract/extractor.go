// Package extract discovers template variables through an ordered chain of
// strategies: precise AST traversal first, compile-validated regex scanning
// second, pure regex scanning as the floor. The chain as a whole never
// fails; individual strategies fail loudly so the next tier can take over.
package extract

import (
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-sqltpl/pkg/infer"
	"github.com/goliatone/go-sqltpl/pkg/model"
	"github.com/goliatone/go-sqltpl/pkg/render/template"
)

// Strategy is one extraction tier. Returning an error signals "try the next
// strategy"; it never reaches the caller of the chain.
type Strategy interface {
	Method() model.ExtractionMethod
	Extract(source string) ([]model.Variable, error)
}

// Chain iterates strategies in order and returns the first success.
type Chain struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewChain assembles the standard three-tier chain. The validation tier
// degrades per-variable instead of erroring, so the final regex tier is a
// safety net for custom or reordered chains rather than a path the standard
// chain reaches.
func NewChain(inferrer *infer.Registry, renderer template.Renderer, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{
		logger: logger,
		strategies: []Strategy{
			NewASTStrategy(inferrer),
			NewValidationStrategy(inferrer, renderer, logger),
			NewRegexStrategy(inferrer, model.MethodFallback),
		},
	}
}

// NewCustomChain builds a chain from explicit strategies, in order. Useful
// for tests and for callers that want to reorder or drop tiers.
func NewCustomChain(logger *zap.Logger, strategies ...Strategy) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{strategies: strategies, logger: logger}
}

// Extract runs the chain. Strategy failures are logged as warnings and
// swallowed; the final regex tier cannot fail, so the result is always
// usable (possibly empty).
func (c *Chain) Extract(source string) []model.Variable {
	for _, strategy := range c.strategies {
		vars, err := strategy.Extract(source)
		if err != nil {
			c.logger.Warn("extraction strategy failed, falling back",
				zap.String("method", string(strategy.Method())),
				zap.Error(err))
			continue
		}
		return vars
	}
	return []model.Variable{}
}

// Analysis summarises a template: its variables plus coarse structure flags
// and any compile diagnostics.
type Analysis struct {
	Variables       []model.Variable `json:"variables"`
	HasConditionals bool             `json:"hasConditionals"`
	HasLoops        bool             `json:"hasLoops"`
	SyntaxErrors    []string         `json:"syntaxErrors,omitempty"`
}

// Analyze extracts variables and adds the structure flags the interactive
// tooling surfaces alongside them.
func (c *Chain) Analyze(source string, renderer template.Renderer) Analysis {
	analysis := Analysis{
		Variables:       c.Extract(source),
		HasConditionals: strings.Contains(source, "{% if") || strings.Contains(source, "{% elif"),
		HasLoops:        strings.Contains(source, "{% for"),
	}
	if renderer != nil {
		if err := renderer.Validate(source); err != nil {
			analysis.SyntaxErrors = append(analysis.SyntaxErrors, err.Error())
		}
	}
	return analysis
}
