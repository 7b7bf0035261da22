package extract

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sqltpl/pkg/infer"
	"github.com/goliatone/go-sqltpl/pkg/model"
)

func testChain(t *testing.T) *Chain {
	t.Helper()
	return NewCustomChain(nil,
		NewASTStrategy(infer.NewRegistry()),
		NewRegexStrategy(infer.NewRegistry(), model.MethodFallback),
	)
}

func names(vars []model.Variable) []string {
	out := make([]string, 0, len(vars))
	for _, v := range vars {
		out = append(out, v.Name)
	}
	return out
}

func byName(t *testing.T, vars []model.Variable, name string) model.Variable {
	t.Helper()
	for _, v := range vars {
		if v.Name == name {
			return v
		}
	}
	t.Fatalf("variable %q not found in %v", name, names(vars))
	return model.Variable{}
}

func TestExtractSimpleOutputs(t *testing.T) {
	vars := testChain(t).Extract("SELECT * FROM users WHERE id = {{ user_id }} AND status = '{{ status }}'")

	want := []string{"user_id", "status"}
	if diff := cmp.Diff(want, names(vars)); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	userID := byName(t, vars, "user_id")
	if userID.Type != model.TypeInteger {
		t.Fatalf("user_id type mismatch: got %q", userID.Type)
	}
	if !userID.Required {
		t.Fatalf("expected user_id to be required")
	}
	if userID.ExtractionMethod != model.MethodAST {
		t.Fatalf("expected ast method, got %q", userID.ExtractionMethod)
	}
}

func TestExtractCarriesSuggestions(t *testing.T) {
	vars := testChain(t).Extract("SELECT * FROM orders LIMIT {{ limit }}")

	limit := byName(t, vars, "limit")
	if limit.SubType != infer.SubTypePaginationLimit {
		t.Fatalf("limit subtype mismatch: got %q", limit.SubType)
	}
	if len(limit.Suggestions) == 0 {
		t.Fatalf("expected suggestions for limit")
	}
	if limit.Suggestions[0] != 10 {
		t.Fatalf("first suggestion mismatch: got %#v", limit.Suggestions[0])
	}
}

func TestExtractDottedNameStaysWhole(t *testing.T) {
	vars := testChain(t).Extract("{{ user.id }}")
	if len(vars) != 1 {
		t.Fatalf("expected 1 variable, got %v", names(vars))
	}
	if vars[0].Name != "user.id" {
		t.Fatalf("expected dotted name, got %q", vars[0].Name)
	}
	if vars[0].Type != model.TypeInteger {
		t.Fatalf("expected integer from final segment, got %q", vars[0].Type)
	}
}

func TestExtractFilterChainAttachesToSubject(t *testing.T) {
	vars := testChain(t).Extract("{{ min_amount|float|round(2) }}")
	if len(vars) != 1 {
		t.Fatalf("expected 1 variable, got %v", names(vars))
	}
	v := vars[0]
	if v.Name != "min_amount" {
		t.Fatalf("name mismatch: got %q", v.Name)
	}
	want := []string{"float", "round"}
	if diff := cmp.Diff(want, v.Filters); diff != "" {
		t.Fatalf("filters mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractBareFilterNameIsAVariable(t *testing.T) {
	// `float` used alone is a variable that happens to share a filter's name.
	vars := testChain(t).Extract("{{ float }}")
	if len(vars) != 1 || vars[0].Name != "float" {
		t.Fatalf("expected variable float, got %v", names(vars))
	}
	if len(vars[0].Filters) != 0 {
		t.Fatalf("expected no filters, got %v", vars[0].Filters)
	}
}

func TestExtractLoopVariablesScopedOut(t *testing.T) {
	src := "{% for item in items %}{{ item.name }} {{ loop.index }} {{ owner }}{% endfor %}"
	vars := testChain(t).Extract(src)

	want := []string{"items", "owner"}
	if diff := cmp.Diff(want, names(vars)); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractSetBindingsExcluded(t *testing.T) {
	src := "{% set alias = real_name %}{{ alias }} {{ real_name }}"
	vars := testChain(t).Extract(src)

	want := []string{"real_name"}
	if diff := cmp.Diff(want, names(vars)); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractConditionVariables(t *testing.T) {
	src := "{% if user.role == 'admin' and region in allowed_regions %}x{% endif %}"
	vars := testChain(t).Extract(src)

	want := []string{"user.role", "region", "allowed_regions"}
	if diff := cmp.Diff(want, names(vars)); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractFilterArgumentVariables(t *testing.T) {
	vars := testChain(t).Extract("{{ name|default(fallback_name) }}")

	want := []string{"name", "fallback_name"}
	if diff := cmp.Diff(want, names(vars)); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if got := byName(t, vars, "name").Filters; len(got) != 1 || got[0] != "default" {
		t.Fatalf("filters mismatch: got %v", got)
	}
}

func TestExtractDuplicatesMerged(t *testing.T) {
	src := "{% if status %}{{ status|upper }}{% endif %} {{ status }}"
	vars := testChain(t).Extract(src)
	if len(vars) != 1 {
		t.Fatalf("expected deduplication, got %v", names(vars))
	}
	if got := vars[0].Filters; len(got) != 1 || got[0] != "upper" {
		t.Fatalf("filters mismatch: got %v", got)
	}
}

func TestExtractFallsBackOnBadSyntax(t *testing.T) {
	// Unterminated if defeats the parser; regex still finds the variables.
	src := "{% if is_active %}SELECT {{ user_id }}"
	vars := testChain(t).Extract(src)

	if len(vars) == 0 {
		t.Fatalf("expected fallback extraction to find variables")
	}
	for _, v := range vars {
		if v.ExtractionMethod != model.MethodFallback {
			t.Fatalf("expected fallback method, got %q for %q", v.ExtractionMethod, v.Name)
		}
	}
	byName(t, vars, "user_id")
	byName(t, vars, "is_active")
}

func TestExtractNeverFails(t *testing.T) {
	for _, src := range []string{
		"",
		"plain text",
		"{{",
		"{% if %}",
		"{{ }}",
		"{% for %}{% endfor %}",
	} {
		vars := testChain(t).Extract(src)
		if vars == nil {
			t.Fatalf("expected non-nil result for %q", src)
		}
	}
}

func TestRegexStrategyIgnoresComplexExpressions(t *testing.T) {
	s := NewRegexStrategy(infer.NewRegistry(), model.MethodRegex)
	vars, err := s.Extract("{{ a + b }} {{ items[0] }} {{ name }}")
	if err != nil {
		t.Fatalf("regex extract failed: %v", err)
	}
	want := []string{"name"}
	if diff := cmp.Diff(want, names(vars)); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

type failingStrategy struct{}

func (failingStrategy) Method() model.ExtractionMethod { return model.MethodAST }
func (failingStrategy) Extract(string) ([]model.Variable, error) {
	return nil, errors.New("boom")
}

func TestChainSkipsFailingStrategies(t *testing.T) {
	chain := NewCustomChain(nil, failingStrategy{}, NewRegexStrategy(infer.NewRegistry(), model.MethodFallback))
	vars := chain.Extract("{{ user_id }}")
	if len(vars) != 1 || vars[0].ExtractionMethod != model.MethodFallback {
		t.Fatalf("expected fallback result, got %+v", vars)
	}
}

func TestAnalyzeFlags(t *testing.T) {
	chain := testChain(t)

	a := chain.Analyze("{% if x %}{{ y }}{% endif %}", nil)
	if !a.HasConditionals || a.HasLoops {
		t.Fatalf("flags mismatch: %+v", a)
	}

	a = chain.Analyze("{% for i in xs %}{{ i }}{% endfor %}", nil)
	if a.HasConditionals || !a.HasLoops {
		t.Fatalf("flags mismatch: %+v", a)
	}
}
