package jinja

import "testing"

func parseOne(t *testing.T, src string) Node {
	t.Helper()
	root, err := Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	if len(root.Nodes) != 1 {
		t.Fatalf("parse %q: expected 1 node, got %d", src, len(root.Nodes))
	}
	return root.Nodes[0]
}

func outputExpr(t *testing.T, src string) Node {
	t.Helper()
	out, ok := parseOne(t, src).(*Output)
	if !ok {
		t.Fatalf("parse %q: expected *Output, got %T", src, parseOne(t, src))
	}
	return out.Expr
}

func TestParsePlainText(t *testing.T) {
	root, err := Parse("SELECT 1")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	text, ok := root.Nodes[0].(*Text)
	if !ok || text.Value != "SELECT 1" {
		t.Fatalf("expected text node, got %#v", root.Nodes[0])
	}
}

func TestParseSymbolOutput(t *testing.T) {
	sym, ok := outputExpr(t, "{{ user_id }}").(*Symbol)
	if !ok {
		t.Fatalf("expected symbol")
	}
	if sym.Name != "user_id" {
		t.Fatalf("name mismatch: got %q", sym.Name)
	}
}

func TestParseDottedLookup(t *testing.T) {
	lookup, ok := outputExpr(t, "{{ user.profile.id }}").(*Lookup)
	if !ok {
		t.Fatalf("expected lookup")
	}
	if lookup.Attr != "id" {
		t.Fatalf("outer attr mismatch: got %q", lookup.Attr)
	}
	inner, ok := lookup.Target.(*Lookup)
	if !ok || inner.Attr != "profile" {
		t.Fatalf("inner lookup mismatch: got %#v", lookup.Target)
	}
	if sym, ok := inner.Target.(*Symbol); !ok || sym.Name != "user" {
		t.Fatalf("base symbol mismatch: got %#v", inner.Target)
	}
}

func TestParseFilterChain(t *testing.T) {
	outer, ok := outputExpr(t, "{{ name|trim|upper }}").(*Filter)
	if !ok {
		t.Fatalf("expected filter")
	}
	if outer.Name != "upper" {
		t.Fatalf("outer filter mismatch: got %q", outer.Name)
	}
	inner, ok := outer.Expr.(*Filter)
	if !ok || inner.Name != "trim" {
		t.Fatalf("inner filter mismatch: got %#v", outer.Expr)
	}
}

func TestParseFilterWithArgs(t *testing.T) {
	filter, ok := outputExpr(t, `{{ amount|default(0, true) }}`).(*Filter)
	if !ok {
		t.Fatalf("expected filter")
	}
	if filter.Name != "default" {
		t.Fatalf("filter name mismatch: got %q", filter.Name)
	}
	if len(filter.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(filter.Args))
	}
}

func TestParseIndexAccess(t *testing.T) {
	idx, ok := outputExpr(t, `{{ row["name"] }}`).(*Index)
	if !ok {
		t.Fatalf("expected index")
	}
	key, ok := idx.Key.(*Literal)
	if !ok || key.Value != "name" {
		t.Fatalf("key mismatch: got %#v", idx.Key)
	}
}

func TestParseIfElifElse(t *testing.T) {
	src := "{% if a %}1{% elif b %}2{% else %}3{% endif %}"
	cond, ok := parseOne(t, src).(*If)
	if !ok {
		t.Fatalf("expected if node")
	}
	if len(cond.Body) != 1 {
		t.Fatalf("body mismatch: got %d nodes", len(cond.Body))
	}
	// elif chains nest as a single If inside Else.
	if len(cond.Else) != 1 {
		t.Fatalf("else mismatch: got %d nodes", len(cond.Else))
	}
	nested, ok := cond.Else[0].(*If)
	if !ok {
		t.Fatalf("expected nested if for elif, got %#v", cond.Else[0])
	}
	if len(nested.Else) != 1 {
		t.Fatalf("nested else mismatch: got %d nodes", len(nested.Else))
	}
}

func TestParseForLoop(t *testing.T) {
	src := "{% for item in items %}{{ item.name }}{% endfor %}"
	loop, ok := parseOne(t, src).(*For)
	if !ok {
		t.Fatalf("expected for node")
	}
	if len(loop.Vars) != 1 || loop.Vars[0] != "item" {
		t.Fatalf("loop vars mismatch: got %v", loop.Vars)
	}
	if sym, ok := loop.Iter.(*Symbol); !ok || sym.Name != "items" {
		t.Fatalf("iter mismatch: got %#v", loop.Iter)
	}
}

func TestParseForWithUnpackAndCondition(t *testing.T) {
	src := "{% for k, v in pairs if v %}x{% endfor %}"
	loop, ok := parseOne(t, src).(*For)
	if !ok {
		t.Fatalf("expected for node")
	}
	if len(loop.Vars) != 2 || loop.Vars[0] != "k" || loop.Vars[1] != "v" {
		t.Fatalf("loop vars mismatch: got %v", loop.Vars)
	}
	if loop.Cond == nil {
		t.Fatalf("expected inline condition")
	}
}

func TestParseSet(t *testing.T) {
	src := "{% set total = price %}"
	set, ok := parseOne(t, src).(*Set)
	if !ok {
		t.Fatalf("expected set node")
	}
	if set.Name != "total" {
		t.Fatalf("name mismatch: got %q", set.Name)
	}
}

func TestParseComparison(t *testing.T) {
	bin, ok := outputExpr(t, "{{ a >= b }}").(*Binary)
	if !ok {
		t.Fatalf("expected binary")
	}
	if bin.Op != ">=" {
		t.Fatalf("op mismatch: got %q", bin.Op)
	}
}

func TestParseWhitespaceControlKeepsUnaryMinus(t *testing.T) {
	unary, ok := outputExpr(t, "{{- -x -}}").(*Unary)
	if !ok {
		t.Fatalf("expected unary, got %#v", outputExpr(t, "{{- -x -}}"))
	}
	if unary.Op != "-" {
		t.Fatalf("op mismatch: got %q", unary.Op)
	}
}

func TestParseCommentsSkipped(t *testing.T) {
	root, err := Parse("a{# note #}b")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	for _, node := range root.Nodes {
		if text, ok := node.(*Text); ok && text.Value == " note " {
			t.Fatalf("comment leaked into output")
		}
	}
}

func TestParseUnknownTagPreserved(t *testing.T) {
	src := "{% include 'header.sql' %}"
	unknown, ok := parseOne(t, src).(*Unknown)
	if !ok {
		t.Fatalf("expected unknown node, got %#v", parseOne(t, src))
	}
	if unknown.Tag != "include" {
		t.Fatalf("tag mismatch: got %q", unknown.Tag)
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		"{% if a %}unterminated",
		"{% endif %}",
		"{% else %}",
		"{% for in items %}{% endfor %}",
		"{{ a + }}",
	} {
		if _, err := Parse(src); err == nil {
			t.Fatalf("expected error for %q", src)
		}
	}
}

func TestParseDeepNestingBounded(t *testing.T) {
	src := "{{ "
	for i := 0; i < 200; i++ {
		src += "("
	}
	src += "x"
	for i := 0; i < 200; i++ {
		src += ")"
	}
	src += " }}"
	if _, err := Parse(src); err == nil {
		t.Fatalf("expected depth limit error")
	}
}
