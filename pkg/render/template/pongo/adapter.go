// Package pongo adapts the pongo2/v6 engine to the template.Renderer seam.
// It exists as an alternate backend: pongo2 keeps its filter registry
// process-wide, so the SQL filter library is registered globally and shadows
// same-named builtins.
package pongo

import (
	"bytes"
	"fmt"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-sqltpl/pkg/filters"
	"github.com/goliatone/go-sqltpl/pkg/render/template"
)

// Adapter renders template strings through a dedicated pongo2 template set.
type Adapter struct {
	set *pongo2.TemplateSet
}

var _ template.Renderer = (*Adapter)(nil)

// New registers the filter registry with pongo2 and builds a template set.
// Registration is additive and idempotent: existing filters (builtin or from
// an earlier adapter) are replaced so the SQL semantics win.
func New(reg *filters.Registry) (*Adapter, error) {
	if reg == nil {
		return nil, fmt.Errorf("pongo: filter registry required")
	}

	var regErr error
	reg.Each(func(name string, fn filters.Func) {
		if regErr != nil {
			return
		}
		wrapped := wrapFilter(fn)
		if pongo2.FilterExists(name) {
			regErr = pongo2.ReplaceFilter(name, wrapped)
			return
		}
		regErr = pongo2.RegisterFilter(name, wrapped)
	})
	if regErr != nil {
		return nil, fmt.Errorf("pongo: register filters: %w", regErr)
	}

	// pongo2 refuses a set without loaders even though only FromString is
	// used here; an empty local loader satisfies the contract.
	loader, err := pongo2.NewLocalFileSystemLoader("")
	if err != nil {
		return nil, fmt.Errorf("pongo: create loader: %w", err)
	}

	return &Adapter{set: pongo2.NewSet("sqltpl", loader)}, nil
}

// Name identifies the engine for CLI selection and diagnostics.
func (a *Adapter) Name() string { return "pongo2" }

// RenderString compiles and executes the template source.
func (a *Adapter) RenderString(source string, data map[string]any) (string, error) {
	tmpl, err := a.set.FromString(source)
	if err != nil {
		return "", fmt.Errorf("pongo: parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(pongo2.Context(data), &buf); err != nil {
		return "", fmt.Errorf("pongo: execute template: %w", err)
	}
	return buf.String(), nil
}

// Validate dry-compiles the source for syntax diagnostics.
func (a *Adapter) Validate(source string) error {
	if _, err := a.set.FromString(source); err != nil {
		return fmt.Errorf("pongo: parse template: %w", err)
	}
	return nil
}

// wrapFilter converts an engine-neutral filter into pongo2's single-parameter
// signature. Filters taking several arguments only receive the first when
// rendered through this backend; the gonja backend has no such limit.
func wrapFilter(fn filters.Func) pongo2.FilterFunction {
	return func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var args []any
		if param != nil && !param.IsNil() {
			args = append(args, param.Interface())
		}
		result, err := fn(in.Interface(), args...)
		if err != nil {
			return nil, &pongo2.Error{Sender: "sqltpl_filter", OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}
}
