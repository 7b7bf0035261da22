// Package render turns a template plus a flat value map into SQL text. It
// builds the nested context, delegates execution to an engine adapter and
// degrades gracefully when a template references a filter nobody registered.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-sqltpl/pkg/render/template"
)

// Engine orchestrates one render call: nested-context build, engine
// execution, unknown-filter recovery.
type Engine struct {
	renderer template.Renderer
	logger   *zap.Logger
}

// NewEngine wires a renderer and a logger. A nil logger is replaced with a
// no-op one.
func NewEngine(renderer template.Renderer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{renderer: renderer, logger: logger}
}

// Render executes the template against the flat context. Unknown-filter
// failures are logged and recovered with a best-effort literal; every other
// failure returns a wrapped *Error.
func (e *Engine) Render(source string, flat map[string]any) (string, error) {
	nested := BuildNestedContext(flat)

	out, err := e.renderer.RenderString(source, nested)
	if err == nil {
		return out, nil
	}

	if isUnknownFilterError(err) {
		e.logger.Warn("unknown filter during render, recovering literal",
			zap.String("engine", e.renderer.Name()),
			zap.Error(err))
		if literal, ok := recoverLiteral(source, flat); ok {
			return literal, nil
		}
	}

	return "", &Error{Stage: "execute", Err: err}
}

var firstExpression = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)

var numberLiteral = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// recoverLiteral sniffs the first `{{ ... }}` expression for something
// usable: a quoted string yields its content, a bare number its text, a key
// present in the context its stringified value, and anything else the raw
// expression text. Known limitation: only the first expression is
// considered, and the recovered literal becomes the entire result.
func recoverLiteral(source string, flat map[string]any) (string, bool) {
	match := firstExpression.FindStringSubmatch(source)
	if match == nil {
		return "", false
	}

	expr := strings.TrimSpace(strings.SplitN(match[1], "|", 2)[0])
	if len(expr) >= 2 {
		if (expr[0] == '\'' && expr[len(expr)-1] == '\'') ||
			(expr[0] == '"' && expr[len(expr)-1] == '"') {
			return expr[1 : len(expr)-1], true
		}
	}
	if numberLiteral.MatchString(expr) {
		return expr, true
	}
	if value, ok := flat[expr]; ok {
		return fmt.Sprint(value), true
	}
	return expr, true
}
