package extract

import (
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-sqltpl/pkg/infer"
	"github.com/goliatone/go-sqltpl/pkg/model"
	"github.com/goliatone/go-sqltpl/pkg/render"
	"github.com/goliatone/go-sqltpl/pkg/render/template"
)

// ValidationStrategy dry-compiles the template for diagnostics, extracts
// with the regex matchers, then enriches each variable by test-rendering it
// in isolation against a type-appropriate synthetic value. It never fails:
// compile errors are logged, not propagated, because a syntax error must not
// block variable discovery.
type ValidationStrategy struct {
	regex    *RegexStrategy
	renderer template.Renderer
	logger   *zap.Logger
}

func NewValidationStrategy(inferrer *infer.Registry, renderer template.Renderer, logger *zap.Logger) *ValidationStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValidationStrategy{
		regex:    NewRegexStrategy(inferrer, model.MethodRegex),
		renderer: renderer,
		logger:   logger,
	}
}

func (s *ValidationStrategy) Method() model.ExtractionMethod { return model.MethodRegex }

func (s *ValidationStrategy) Extract(source string) ([]model.Variable, error) {
	if err := s.renderer.Validate(source); err != nil {
		s.logger.Warn("template failed to compile; extracting anyway", zap.Error(err))
	}

	vars, _ := s.regex.Extract(source)
	for i := range vars {
		s.enrich(&vars[i])
	}
	return vars, nil
}

// enrich renders `{{ name|filters }}` against the variable's default value
// and records whether the substitution is safe.
func (s *ValidationStrategy) enrich(v *model.Variable) {
	var sb strings.Builder
	sb.WriteString("{{ ")
	sb.WriteString(v.Name)
	for _, filterName := range v.Filters {
		sb.WriteString("|")
		sb.WriteString(filterName)
	}
	sb.WriteString(" }}")

	probe := sb.String()
	nested := render.BuildNestedContext(map[string]any{v.Name: v.DefaultValue})

	if _, err := s.renderer.RenderString(probe, nested); err != nil {
		v.Valid = false
		v.ValidationError = err.Error()
		return
	}
	v.Valid = true
	v.ValidationError = ""
}
