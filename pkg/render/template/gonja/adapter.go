// Package gonja adapts the gonja/v2 engine to the template.Renderer seam.
// It is the default engine: its builtin filter set is the closest match to
// Jinja2 and its parser reports precise syntax diagnostics for dry compiles.
package gonja

import (
	"fmt"
	"io"
	"strings"

	"github.com/nikolalohinski/gonja/v2/builtins"
	"github.com/nikolalohinski/gonja/v2/config"
	"github.com/nikolalohinski/gonja/v2/exec"
	"github.com/nikolalohinski/gonja/v2/loaders"

	"github.com/goliatone/go-sqltpl/pkg/filters"
	"github.com/goliatone/go-sqltpl/pkg/render/template"
)

// templateName is the synthetic name under which ad hoc template strings are
// compiled.
const templateName = "template"

// Adapter renders template strings through gonja/v2 with the SQL filter
// library layered over the builtins. Custom filters shadow same-named
// builtins so the degenerate-input contract (NaN/0/NULL) always applies.
type Adapter struct {
	cfg *config.Config
	env *exec.Environment
}

var _ template.Renderer = (*Adapter)(nil)

// New wires the filter registry into a fresh gonja environment.
func New(reg *filters.Registry) (*Adapter, error) {
	if reg == nil {
		return nil, fmt.Errorf("gonja: filter registry required")
	}

	filterMap := make(map[string]exec.FilterFunction)
	reg.Each(func(name string, fn filters.Func) {
		filterMap[name] = wrapFilter(fn)
	})

	env := &exec.Environment{
		Filters:           builtins.Filters.Update(exec.NewFilterSet(filterMap)),
		Tests:             builtins.Tests,
		ControlStructures: builtins.ControlStructures,
		Methods:           builtins.Methods,
		Context:           builtins.GlobalFunctions,
	}

	// AutoEscape must stay off: SQL output would otherwise have its quotes
	// HTML-escaped. StrictUndefined stays off so partial preview contexts
	// render holes as empty strings instead of failing.
	cfg := &config.Config{
		BlockStartString:    "{%",
		BlockEndString:      "%}",
		VariableStartString: "{{",
		VariableEndString:   "}}",
		CommentStartString:  "{#",
		CommentEndString:    "#}",
		AutoEscape:          false,
		StrictUndefined:     false,
		TrimBlocks:          false,
		LeftStripBlocks:     false,
	}

	return &Adapter{cfg: cfg, env: env}, nil
}

// Name identifies the engine for CLI selection and diagnostics.
func (a *Adapter) Name() string { return "gonja" }

// RenderString compiles and executes the template source.
func (a *Adapter) RenderString(source string, data map[string]any) (string, error) {
	compiled, err := a.compile(source)
	if err != nil {
		return "", err
	}
	out, err := compiled.ExecuteToString(exec.NewContext(data))
	if err != nil {
		return "", fmt.Errorf("gonja: execute template: %w", err)
	}
	return out, nil
}

// Validate dry-compiles the source for syntax diagnostics.
func (a *Adapter) Validate(source string) error {
	_, err := a.compile(source)
	return err
}

func (a *Adapter) compile(source string) (*exec.Template, error) {
	loader := memoryLoader{templates: map[string]string{templateName: source}}
	compiled, err := exec.NewTemplate(templateName, a.cfg, loader, a.env)
	if err != nil {
		return nil, fmt.Errorf("gonja: compile template: %w", err)
	}
	return compiled, nil
}

// wrapFilter converts an engine-neutral filter into gonja's signature.
func wrapFilter(fn filters.Func) exec.FilterFunction {
	return func(_ *exec.Evaluator, in *exec.Value, params *exec.VarArgs) *exec.Value {
		var args []any
		if params != nil {
			for _, arg := range params.Args {
				args = append(args, arg.Interface())
			}
		}
		result, err := fn(in.Interface(), args...)
		if err != nil {
			return exec.AsValue(err)
		}
		return exec.AsValue(result)
	}
}

// memoryLoader satisfies gonja's loader contract for a fixed in-memory
// template set.
type memoryLoader struct {
	templates map[string]string
}

var _ loaders.Loader = memoryLoader{}

func (l memoryLoader) Read(path string) (io.Reader, error) {
	source, ok := l.templates[path]
	if !ok {
		return nil, fmt.Errorf("gonja: template %q not found", path)
	}
	return strings.NewReader(source), nil
}

func (l memoryLoader) Resolve(name string) (string, error) {
	if _, ok := l.templates[name]; !ok {
		return "", fmt.Errorf("gonja: template %q not found", name)
	}
	return name, nil
}

func (l memoryLoader) Inherit(string) (loaders.Loader, error) {
	return l, nil
}
