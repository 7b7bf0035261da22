package render

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildNestedContext(t *testing.T) {
	flat := map[string]any{
		"user.id":      42,
		"user.name":    "ada",
		"order.ref.id": "A-1",
		"status":       "active",
	}

	want := map[string]any{
		"user": map[string]any{
			"id":   42,
			"name": "ada",
		},
		"order": map[string]any{
			"ref": map[string]any{
				"id": "A-1",
			},
		},
		"status": "active",
	}

	if diff := cmp.Diff(want, BuildNestedContext(flat)); diff != "" {
		t.Fatalf("context mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildNestedContextDottedWinsCollision(t *testing.T) {
	flat := map[string]any{
		"user":    "plain",
		"user.id": 7,
	}
	nested := BuildNestedContext(flat)
	child, ok := nested["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected dotted expansion to win, got %#v", nested["user"])
	}
	if child["id"] != 7 {
		t.Fatalf("expected id 7, got %#v", child["id"])
	}
}

func TestFlattenRoundTrip(t *testing.T) {
	flat := map[string]any{
		"user.id":   42,
		"user.name": "ada",
		"status":    "active",
	}
	if diff := cmp.Diff(flat, Flatten(BuildNestedContext(flat))); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

// fakeRenderer scripts the adapter behavior so recovery paths are tested
// without a real engine.
type fakeRenderer struct {
	out string
	err error
}

func (f *fakeRenderer) Name() string { return "fake" }
func (f *fakeRenderer) RenderString(string, map[string]any) (string, error) {
	return f.out, f.err
}
func (f *fakeRenderer) Validate(string) error { return nil }

func TestRenderPassesThrough(t *testing.T) {
	e := NewEngine(&fakeRenderer{out: "SELECT 1"}, nil)
	got, err := e.Render("SELECT 1", nil)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if got != "SELECT 1" {
		t.Fatalf("output mismatch: got %q", got)
	}
}

func TestRenderRecoversUnknownFilter(t *testing.T) {
	unknown := errors.New("filter 'custom_thing' not found")

	cases := []struct {
		name   string
		source string
		flat   map[string]any
		want   string
	}{
		{"quoted string", `{{ 'active'|custom_thing }}`, nil, "active"},
		{"number", `{{ -12.5|custom_thing }}`, nil, "-12.5"},
		{"context value", `{{ user_id|custom_thing }}`, map[string]any{"user_id": 42}, "42"},
		{"raw expression", `{{ mystery|custom_thing }}`, nil, "mystery"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEngine(&fakeRenderer{err: unknown}, nil)
			got, err := e.Render(tc.source, tc.flat)
			if err != nil {
				t.Fatalf("expected recovery, got error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("recovered literal mismatch: got %q want %q", got, tc.want)
			}
		})
	}
}

func TestRenderWrapsFatalErrors(t *testing.T) {
	boom := errors.New("syntax error at line 1")
	e := NewEngine(&fakeRenderer{err: boom}, nil)

	_, err := e.Render("{{ broken", nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if rerr.Stage != "execute" {
		t.Fatalf("stage mismatch: got %q", rerr.Stage)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped cause")
	}
}

func TestRenderUnknownFilterWithoutExpressionFails(t *testing.T) {
	unknown := errors.New("filter 'x' does not exist")
	e := NewEngine(&fakeRenderer{err: unknown}, nil)
	if _, err := e.Render("no expressions here", nil); err == nil {
		t.Fatalf("expected error when nothing is recoverable")
	}
}
