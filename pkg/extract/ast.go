package extract

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-sqltpl/internal/jinja"
	"github.com/goliatone/go-sqltpl/pkg/infer"
	"github.com/goliatone/go-sqltpl/pkg/model"
)

// maxWalkDepth bounds tree traversal independently of the parser's own
// expression-depth limit.
const maxWalkDepth = 500

// ASTStrategy parses the template and walks the node tree. It is the most
// precise tier: dotted names stay whole, filter chains attach to their
// subject, loop-bound names are scoped out, and variables hiding inside
// filter arguments are still found.
type ASTStrategy struct {
	inferrer *infer.Registry
}

func NewASTStrategy(inferrer *infer.Registry) *ASTStrategy {
	return &ASTStrategy{inferrer: inferrer}
}

func (s *ASTStrategy) Method() model.ExtractionMethod { return model.MethodAST }

// Extract parses and walks the template. An unparseable template, or a walk
// that finds nothing in a template that plainly contains constructs, returns
// an error so the chain can try the next strategy.
func (s *ASTStrategy) Extract(source string) ([]model.Variable, error) {
	root, err := jinja.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("ast: %w", err)
	}

	w := &walker{c: newCollector(s.inferrer, model.MethodAST)}
	for _, node := range root.Nodes {
		if err := w.walk(node); err != nil {
			return nil, err
		}
	}

	vars := w.c.result()
	if len(vars) == 0 && hasTemplateConstructs(source) {
		return nil, fmt.Errorf("ast: no variables discovered in non-trivial template")
	}
	return vars, nil
}

func hasTemplateConstructs(source string) bool {
	return strings.Contains(source, "{{") || strings.Contains(source, "{%")
}

type walker struct {
	c        *collector
	bound    []map[string]struct{}
	assigned map[string]struct{}
	depth    int
}

func (w *walker) isBound(name string) bool {
	root := strings.SplitN(name, ".", 2)[0]
	if _, ok := w.assigned[root]; ok {
		return true
	}
	for _, scope := range w.bound {
		if _, ok := scope[root]; ok {
			return true
		}
	}
	return false
}

func (w *walker) register(name string, filterNames ...string) {
	if name == "" || w.isBound(name) {
		return
	}
	w.c.add(name, filterNames...)
}

func (w *walker) walk(node jinja.Node) error {
	if node == nil {
		return nil
	}
	w.depth++
	defer func() { w.depth-- }()
	if w.depth > maxWalkDepth {
		return fmt.Errorf("ast: node nesting exceeds %d levels", maxWalkDepth)
	}

	switch n := node.(type) {
	case *jinja.Text, *jinja.Literal:
		return nil

	case *jinja.Symbol:
		w.register(n.Name)
		return nil

	case *jinja.Lookup:
		if name, ok := dottedName(n); ok {
			w.register(name)
			return nil
		}
		return w.walk(n.Target)

	case *jinja.Index:
		// `user["name"]` registers the base variable like the original
		// implementation did; the key may itself reference variables.
		if err := w.walk(n.Target); err != nil {
			return err
		}
		return w.walk(n.Key)

	case *jinja.Filter:
		// Flatten the chain so `name|float|round(2)` attaches both filters
		// to its subject in application order.
		var filterNames []string
		var argLists [][]jinja.Node
		subject := jinja.Node(n)
		for {
			f, ok := subject.(*jinja.Filter)
			if !ok {
				break
			}
			filterNames = append([]string{f.Name}, filterNames...)
			argLists = append([][]jinja.Node{f.Args}, argLists...)
			subject = f.Expr
		}
		if name, ok := dottedName(subject); ok {
			w.register(name, filterNames...)
		} else if err := w.walk(subject); err != nil {
			return err
		}
		for _, args := range argLists {
			if err := w.walkAll(args); err != nil {
				return err
			}
		}
		return nil

	case *jinja.FunCall:
		// A bare symbol in call position is a function name, not a
		// variable; method calls still need their receiver walked.
		if _, isSymbol := n.Fn.(*jinja.Symbol); !isSymbol {
			if err := w.walk(n.Fn); err != nil {
				return err
			}
		}
		return w.walkAll(n.Args)

	case *jinja.If:
		if err := w.walk(n.Cond); err != nil {
			return err
		}
		if err := w.walkAll(n.Body); err != nil {
			return err
		}
		return w.walkAll(n.Else)

	case *jinja.For:
		if err := w.walk(n.Iter); err != nil {
			return err
		}
		scope := make(map[string]struct{}, len(n.Vars)+1)
		for _, name := range n.Vars {
			scope[name] = struct{}{}
		}
		scope["loop"] = struct{}{}
		w.bound = append(w.bound, scope)
		defer func() { w.bound = w.bound[:len(w.bound)-1] }()

		if n.Cond != nil {
			if err := w.walk(n.Cond); err != nil {
				return err
			}
		}
		if err := w.walkAll(n.Body); err != nil {
			return err
		}
		return w.walkAll(n.Else)

	case *jinja.Set:
		if err := w.walk(n.Expr); err != nil {
			return err
		}
		// Names assigned by {% set %} are template-local from here on.
		if w.assigned == nil {
			w.assigned = make(map[string]struct{})
		}
		w.assigned[n.Name] = struct{}{}
		return nil

	default:
		// Output, Group, Unary, Binary, Array, Dict, Pair, Unknown and any
		// node kind added later all degrade to a generic child walk.
		return w.walkAll(node.Children())
	}
}

func (w *walker) walkAll(nodes []jinja.Node) error {
	for _, node := range nodes {
		if err := w.walk(node); err != nil {
			return err
		}
	}
	return nil
}

// dottedName flattens a Symbol/Lookup chain into its dotted form. Chains
// interrupted by anything else (subscripts, calls) do not qualify.
func dottedName(node jinja.Node) (string, bool) {
	switch n := node.(type) {
	case *jinja.Symbol:
		return n.Name, true
	case *jinja.Lookup:
		base, ok := dottedName(n.Target)
		if !ok {
			return "", false
		}
		return base + "." + n.Attr, true
	}
	return "", false
}
