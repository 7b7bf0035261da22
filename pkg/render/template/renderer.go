// Package template defines the seam between the rendering pipeline and the
// underlying Jinja2-compatible engines, so the extraction and rendering
// logic stays engine-agnostic.
package template

// Renderer is the engine contract. RenderString executes template source
// against an already-nested context; Validate performs a dry compile purely
// for diagnostics.
type Renderer interface {
	Name() string
	RenderString(template string, data map[string]any) (string, error)
	Validate(template string) error
}
