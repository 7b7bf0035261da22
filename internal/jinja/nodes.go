// Package jinja parses Jinja2-style template source into a closed tree of
// typed nodes for variable extraction. It is a structural parser only:
// execution semantics (truthiness, filter behaviour, loops) stay with the
// rendering engine.
package jinja

// Node is the closed union of template constructs. Consumers type-switch on
// the concrete types; anything unrecognised can still be walked generically
// through Children.
type Node interface {
	Children() []Node
}

// Template is the parse result root.
type Template struct {
	Nodes []Node
}

func (t *Template) Children() []Node { return t.Nodes }

// Text is literal template output between tags.
type Text struct {
	Value string
}

func (t *Text) Children() []Node { return nil }

// Output is a `{{ expression }}` block.
type Output struct {
	Expr Node
}

func (o *Output) Children() []Node { return []Node{o.Expr} }

// Literal is a constant: string, number, boolean or nil.
type Literal struct {
	Value any
	Raw   string
}

func (l *Literal) Children() []Node { return nil }

// Symbol is a bare variable reference.
type Symbol struct {
	Name string
}

func (s *Symbol) Children() []Node { return nil }

// Lookup is dotted attribute access, e.g. `user.id`.
type Lookup struct {
	Target Node
	Attr   string
}

func (l *Lookup) Children() []Node { return []Node{l.Target} }

// Index is subscript access, e.g. `user["id"]` or `items[0]`.
type Index struct {
	Target Node
	Key    Node
}

func (i *Index) Children() []Node { return []Node{i.Target, i.Key} }

// Filter applies a named filter to an expression, e.g. `name|upper` or
// `value|default(42)`.
type Filter struct {
	Expr Node
	Name string
	Args []Node
}

func (f *Filter) Children() []Node {
	out := []Node{f.Expr}
	return append(out, f.Args...)
}

// FunCall is a call expression. Keyword arguments appear in Args as Pair
// nodes.
type FunCall struct {
	Fn   Node
	Args []Node
}

func (f *FunCall) Children() []Node {
	out := []Node{f.Fn}
	return append(out, f.Args...)
}

// Unary is a prefix operation: `not x`, `-x`.
type Unary struct {
	Op      string
	Operand Node
}

func (u *Unary) Children() []Node { return []Node{u.Operand} }

// Binary is an infix operation, including comparisons, `and`/`or`, `in` and
// `is` tests.
type Binary struct {
	Op    string
	Left  Node
	Right Node
}

func (b *Binary) Children() []Node { return []Node{b.Left, b.Right} }

// Group is a parenthesised expression.
type Group struct {
	Expr Node
}

func (g *Group) Children() []Node { return []Node{g.Expr} }

// Array is a list literal or a tuple.
type Array struct {
	Items []Node
}

func (a *Array) Children() []Node { return a.Items }

// Dict is a mapping literal.
type Dict struct {
	Pairs []Node
}

func (d *Dict) Children() []Node { return d.Pairs }

// Pair is a key/value entry inside a Dict, or a keyword argument inside a
// call.
type Pair struct {
	Key   Node
	Value Node
}

func (p *Pair) Children() []Node { return []Node{p.Key, p.Value} }

// If is a conditional block. Chained `elif` branches nest as a single If in
// Else.
type If struct {
	Cond Node
	Body []Node
	Else []Node
}

func (i *If) Children() []Node {
	out := []Node{i.Cond}
	out = append(out, i.Body...)
	return append(out, i.Else...)
}

// For is a loop block. Vars are the names bound for the body's scope.
type For struct {
	Vars []string
	Iter Node
	Cond Node // optional inline `if` condition
	Body []Node
	Else []Node
}

func (f *For) Children() []Node {
	out := []Node{f.Iter}
	if f.Cond != nil {
		out = append(out, f.Cond)
	}
	out = append(out, f.Body...)
	return append(out, f.Else...)
}

// Set is a `{% set name = expression %}` assignment.
type Set struct {
	Name string
	Expr Node
}

func (s *Set) Children() []Node { return []Node{s.Expr} }

// Unknown preserves a tag the parser does not model (macro, include, block,
// ...). The raw tag content is kept so callers can degrade gracefully
// instead of dropping the construct.
type Unknown struct {
	Tag   string
	Raw   string
	Nodes []Node
}

func (u *Unknown) Children() []Node { return u.Nodes }
