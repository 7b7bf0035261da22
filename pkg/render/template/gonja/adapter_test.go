package gonja

import (
	"testing"

	"github.com/goliatone/go-sqltpl/pkg/filters"
)

func newAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := New(filters.NewRegistry())
	if err != nil {
		t.Fatalf("adapter construction failed: %v", err)
	}
	return a
}

func TestRenderStringSimple(t *testing.T) {
	out, err := newAdapter(t).RenderString("SELECT {{ col }}", map[string]any{"col": "id"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if out != "SELECT id" {
		t.Fatalf("render mismatch: %q", out)
	}
}

func TestRenderStringNestedLookup(t *testing.T) {
	data := map[string]any{"user": map[string]any{"id": 42}}
	out, err := newAdapter(t).RenderString("{{ user.id }}", data)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if out != "42" {
		t.Fatalf("render mismatch: %q", out)
	}
}

func TestRenderStringCustomFilter(t *testing.T) {
	out, err := newAdapter(t).RenderString("{{ name|sql_quote }}", map[string]any{"name": "it's"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if out != "'it''s'" {
		t.Fatalf("render mismatch: %q", out)
	}
}

func TestRenderStringQuotesNotEscaped(t *testing.T) {
	// AutoEscape is off; single quotes must survive for SQL output.
	out, err := newAdapter(t).RenderString("'{{ v }}'", map[string]any{"v": "a'b"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if out != "'a'b'" {
		t.Fatalf("render mismatch: %q", out)
	}
}

func TestValidate(t *testing.T) {
	a := newAdapter(t)
	if err := a.Validate("{{ ok }}"); err != nil {
		t.Fatalf("expected valid template, got %v", err)
	}
	if err := a.Validate("{% if x %}unclosed"); err == nil {
		t.Fatalf("expected syntax error")
	}
}
