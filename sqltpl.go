// Package sqltpl extracts, infers, validates, and renders the variables of
// Jinja2-flavoured SQL templates, and converts SQLAlchemy-style `:name`
// placeholders alongside them.
package sqltpl

import (
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-sqltpl/pkg/extract"
	"github.com/goliatone/go-sqltpl/pkg/filters"
	"github.com/goliatone/go-sqltpl/pkg/infer"
	"github.com/goliatone/go-sqltpl/pkg/model"
	"github.com/goliatone/go-sqltpl/pkg/placeholder"
	"github.com/goliatone/go-sqltpl/pkg/render"
	"github.com/goliatone/go-sqltpl/pkg/render/template"
	"github.com/goliatone/go-sqltpl/pkg/render/template/gonja"
)

// Variable re-exports the extraction result type for convenience.
type Variable = model.Variable

// Analysis re-exports the template analysis summary.
type Analysis = extract.Analysis

// Detection re-exports the placeholder dialect report.
type Detection = placeholder.Detection

// Conversion re-exports the placeholder conversion result.
type Conversion = placeholder.Conversion

// Engine bundles the extraction chain, the template renderer, and the
// placeholder tooling behind one construction point.
type Engine struct {
	logger   *zap.Logger
	inferrer *infer.Registry
	filters  *filters.Registry
	renderer template.Renderer
	chain    *extract.Chain
	render   *render.Engine
}

// Option customises an Engine during construction.
type Option func(*Engine) error

// WithLogger installs a structured logger. The default is a no-op logger so
// library consumers stay quiet unless they opt in.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithRenderer swaps the template execution backend.
func WithRenderer(renderer template.Renderer) Option {
	return func(e *Engine) error {
		e.renderer = renderer
		return nil
	}
}

// WithInferenceRegistry replaces the type-inference rule registry.
func WithInferenceRegistry(registry *infer.Registry) Option {
	return func(e *Engine) error {
		e.inferrer = registry
		return nil
	}
}

// WithFilterRegistry replaces the filter registry wired into the renderer.
// Must precede WithRenderer-less construction; a custom renderer ignores it.
func WithFilterRegistry(registry *filters.Registry) Option {
	return func(e *Engine) error {
		e.filters = registry
		return nil
	}
}

// WithInferenceRules appends custom inference rules on top of the builtins.
func WithInferenceRules(rules ...infer.Rule) Option {
	return func(e *Engine) error {
		return e.inferrer.Register(rules...)
	}
}

// New constructs an Engine. Without options it uses built-in inference rules,
// the built-in SQL filter set, and the gonja execution backend.
func New(options ...Option) (*Engine, error) {
	e := &Engine{
		logger:   zap.NewNop(),
		inferrer: infer.NewRegistry(),
		filters:  filters.NewRegistry(),
	}

	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}

	if e.renderer == nil {
		renderer, err := gonja.New(e.filters)
		if err != nil {
			return nil, err
		}
		e.renderer = renderer
	}

	e.chain = extract.NewChain(e.inferrer, e.renderer, e.logger)
	e.render = render.NewEngine(e.renderer, e.logger)
	return e, nil
}

// ExtractVariables discovers the template's variables with inferred types,
// defaults, and filter chains. It never fails; a template with no variables
// yields an empty slice.
func (e *Engine) ExtractVariables(source string) []Variable {
	return e.chain.Extract(source)
}

// Analyze extracts variables and adds structure flags and compile
// diagnostics.
func (e *Engine) Analyze(source string) Analysis {
	return e.chain.Analyze(source, e.renderer)
}

// RenderTemplate renders the template against a flat context. Dotted keys
// such as "user.id" are expanded into nested objects before execution.
func (e *Engine) RenderTemplate(source string, context map[string]any) (string, error) {
	return e.render.Render(source, context)
}

// ValidateTemplate dry-compiles the template and runs the placeholder
// hygiene checks. Compile failures and unbalanced delimiters are errors;
// dialect ambiguities stay warnings.
func (e *Engine) ValidateTemplate(source string) model.ValidationResult {
	result := placeholder.Validate(source)
	if err := e.renderer.Validate(source); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
	}
	return result
}

// DetectPlaceholderTypes reports which placeholder dialects the statement
// uses and the variables each contributes.
func (e *Engine) DetectPlaceholderTypes(sql string) Detection {
	return placeholder.Detect(sql)
}

// ConvertMixedPlaceholders substitutes `:name` placeholders with typed SQL
// literals from the context, leaving unbound ones intact.
func (e *Engine) ConvertMixedPlaceholders(sql string, context map[string]any) Conversion {
	return placeholder.Convert(sql, context)
}

// defaultEngine backs the package-level convenience functions. Construction
// with no options cannot fail unless the built-in tables are broken, which
// is a programming error.
var defaultEngine = sync.OnceValue(func() *Engine {
	e, err := New()
	if err != nil {
		panic("sqltpl: default engine: " + err.Error())
	}
	return e
})

// ExtractVariables runs extraction on a shared default engine.
func ExtractVariables(source string) []Variable {
	return defaultEngine().ExtractVariables(source)
}

// RenderTemplate renders on a shared default engine.
func RenderTemplate(source string, context map[string]any) (string, error) {
	return defaultEngine().RenderTemplate(source, context)
}

// DetectPlaceholderTypes runs detection on a shared default engine.
func DetectPlaceholderTypes(sql string) Detection {
	return defaultEngine().DetectPlaceholderTypes(sql)
}

// ConvertMixedPlaceholders runs conversion on a shared default engine.
func ConvertMixedPlaceholders(sql string, context map[string]any) Conversion {
	return defaultEngine().ConvertMixedPlaceholders(sql, context)
}
