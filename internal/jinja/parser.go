package jinja

import (
	"fmt"
	"strconv"
	"strings"
)

// maxExprDepth bounds expression nesting so adversarial templates cannot
// blow the stack; the extractor falls back to regex scanning when parsing
// fails.
const maxExprDepth = 100

// Parse turns template source into a node tree. Any structural problem
// (unclosed tag, mismatched block, bad expression) is returned as an error;
// callers treat that as the signal to try a cheaper extraction strategy.
func Parse(src string) (*Template, error) {
	p := &templateParser{src: src}
	nodes, stop, err := p.parseNodes(nil)
	if err != nil {
		return nil, err
	}
	if stop != "" {
		return nil, fmt.Errorf("jinja: unexpected {%% %s %%}", firstWord(stop))
	}
	return &Template{Nodes: nodes}, nil
}

type templateParser struct {
	src string
	pos int
}

// parseNodes consumes nodes until the source ends or a block tag named in
// stops is reached. It returns the accumulated nodes and, when stopped, the
// full content of the stopping tag (e.g. "elif x > 1").
func (p *templateParser) parseNodes(stops []string) ([]Node, string, error) {
	var nodes []Node

	for p.pos < len(p.src) {
		rest := p.src[p.pos:]

		idxVar := strings.Index(rest, "{{")
		idxBlock := strings.Index(rest, "{%")
		idxComment := strings.Index(rest, "{#")

		next := -1
		for _, idx := range []int{idxVar, idxBlock, idxComment} {
			if idx >= 0 && (next < 0 || idx < next) {
				next = idx
			}
		}
		if next < 0 {
			nodes = append(nodes, &Text{Value: rest})
			p.pos = len(p.src)
			break
		}
		if next > 0 {
			nodes = append(nodes, &Text{Value: rest[:next]})
			p.pos += next
			continue
		}

		switch {
		case idxVar == 0:
			node, err := p.parseOutput()
			if err != nil {
				return nil, "", err
			}
			nodes = append(nodes, node)

		case idxComment == 0:
			end := strings.Index(rest, "#}")
			if end < 0 {
				return nil, "", fmt.Errorf("jinja: unclosed comment")
			}
			p.pos += end + 2

		default: // block tag
			content, err := p.readBlockTag()
			if err != nil {
				return nil, "", err
			}
			tag := firstWord(content)
			for _, stop := range stops {
				if tag == stop {
					return nodes, content, nil
				}
			}

			node, err := p.parseBlock(tag, content)
			if err != nil {
				return nil, "", err
			}
			if node != nil {
				nodes = append(nodes, node)
			}
		}
	}

	return nodes, "", nil
}

func (p *templateParser) parseOutput() (Node, error) {
	rest := p.src[p.pos:]
	end := strings.Index(rest, "}}")
	if end < 0 {
		return nil, fmt.Errorf("jinja: unclosed variable block")
	}
	inner := trimWhitespaceControl(rest[2:end])
	p.pos += end + 2

	expr, err := parseExpression(inner)
	if err != nil {
		return nil, err
	}
	return &Output{Expr: expr}, nil
}

// readBlockTag consumes `{% ... %}` and returns the trimmed inner content
// with whitespace-control dashes stripped.
func (p *templateParser) readBlockTag() (string, error) {
	rest := p.src[p.pos:]
	end := strings.Index(rest, "%}")
	if end < 0 {
		return "", fmt.Errorf("jinja: unclosed block tag")
	}
	content := trimWhitespaceControl(rest[2:end])
	p.pos += end + 2
	return content, nil
}

// trimWhitespaceControl drops the `-` markers from `{{- ... -}}` style
// delimiters. Only dashes adjacent to the delimiter are stripped, so a
// leading unary minus in the expression survives.
func trimWhitespaceControl(s string) string {
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimSuffix(s, "-")
	return strings.TrimSpace(s)
}

func (p *templateParser) parseBlock(tag, content string) (Node, error) {
	switch tag {
	case "if":
		return p.parseIf(strings.TrimSpace(content[len(tag):]))
	case "for":
		return p.parseFor(strings.TrimSpace(content[len(tag):]))
	case "set":
		return p.parseSet(strings.TrimSpace(content[len(tag):]))
	case "raw":
		return p.parseRaw()
	case "elif", "else", "endif", "endfor":
		return nil, fmt.Errorf("jinja: unexpected {%% %s %%}", tag)
	default:
		// Macros, includes, blocks and anything the grammar grows later are
		// preserved as Unknown so walkers still see the construct.
		return &Unknown{Tag: tag, Raw: content}, nil
	}
}

func (p *templateParser) parseIf(condSrc string) (Node, error) {
	cond, err := parseExpression(condSrc)
	if err != nil {
		return nil, err
	}

	body, stop, err := p.parseNodes([]string{"elif", "else", "endif"})
	if err != nil {
		return nil, err
	}

	node := &If{Cond: cond, Body: body}
	switch firstWord(stop) {
	case "endif":
		return node, nil
	case "elif":
		chained, err := p.parseIf(strings.TrimSpace(stop[len("elif"):]))
		if err != nil {
			return nil, err
		}
		node.Else = []Node{chained}
		return node, nil
	case "else":
		elseBody, stop2, err := p.parseNodes([]string{"endif"})
		if err != nil {
			return nil, err
		}
		if firstWord(stop2) != "endif" {
			return nil, fmt.Errorf("jinja: missing {%% endif %%}")
		}
		node.Else = elseBody
		return node, nil
	default:
		return nil, fmt.Errorf("jinja: missing {%% endif %%}")
	}
}

func (p *templateParser) parseFor(src string) (Node, error) {
	inIdx := strings.Index(src, " in ")
	if inIdx < 0 {
		return nil, fmt.Errorf("jinja: malformed for tag %q", src)
	}

	var vars []string
	for _, raw := range strings.Split(src[:inIdx], ",") {
		name := strings.TrimSpace(raw)
		if !isIdentifier(name) {
			return nil, fmt.Errorf("jinja: bad loop variable %q", name)
		}
		vars = append(vars, name)
	}

	iterSrc := strings.TrimSpace(src[inIdx+4:])
	var cond Node
	if condIdx := strings.Index(iterSrc, " if "); condIdx >= 0 {
		parsed, err := parseExpression(strings.TrimSpace(iterSrc[condIdx+4:]))
		if err != nil {
			return nil, err
		}
		cond = parsed
		iterSrc = strings.TrimSpace(iterSrc[:condIdx])
	}

	iter, err := parseExpression(iterSrc)
	if err != nil {
		return nil, err
	}

	body, stop, err := p.parseNodes([]string{"else", "endfor"})
	if err != nil {
		return nil, err
	}

	node := &For{Vars: vars, Iter: iter, Cond: cond, Body: body}
	switch firstWord(stop) {
	case "endfor":
		return node, nil
	case "else":
		elseBody, stop2, err := p.parseNodes([]string{"endfor"})
		if err != nil {
			return nil, err
		}
		if firstWord(stop2) != "endfor" {
			return nil, fmt.Errorf("jinja: missing {%% endfor %%}")
		}
		node.Else = elseBody
		return node, nil
	default:
		return nil, fmt.Errorf("jinja: missing {%% endfor %%}")
	}
}

func (p *templateParser) parseSet(src string) (Node, error) {
	eq := strings.Index(src, "=")
	if eq < 0 {
		return &Unknown{Tag: "set", Raw: src}, nil
	}
	name := strings.TrimSpace(src[:eq])
	if !isIdentifier(name) {
		return &Unknown{Tag: "set", Raw: src}, nil
	}
	expr, err := parseExpression(strings.TrimSpace(src[eq+1:]))
	if err != nil {
		return nil, err
	}
	return &Set{Name: name, Expr: expr}, nil
}

func (p *templateParser) parseRaw() (Node, error) {
	rest := p.src[p.pos:]
	end := strings.Index(rest, "{%")
	for end >= 0 {
		tagEnd := strings.Index(rest[end:], "%}")
		if tagEnd < 0 {
			break
		}
		content := strings.Trim(strings.TrimSpace(rest[end+2:end+tagEnd]), "- ")
		if content == "endraw" {
			node := &Text{Value: rest[:end]}
			p.pos += end + tagEnd + 2
			return node, nil
		}
		next := strings.Index(rest[end+2:], "{%")
		if next < 0 {
			end = -1
			break
		}
		end += 2 + next
	}
	return nil, fmt.Errorf("jinja: missing {%% endraw %%}")
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}

// --------------------------------
// Expression parsing
// --------------------------------

type exprParser struct {
	tokens []token
	pos    int
	depth  int
}

func parseExpression(src string) (Node, error) {
	tokens, err := tokenizeExpr(src)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("jinja: empty expression")
	}
	p := &exprParser{tokens: tokens}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("jinja: unexpected token %q", p.tokens[p.pos].raw)
	}
	return node, nil
}

func (p *exprParser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *exprParser) acceptOp(raw string) bool {
	if tok, ok := p.peek(); ok && tok.kind == tokenOp && tok.raw == raw {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) acceptIdent(raw string) bool {
	if tok, ok := p.peek(); ok && tok.kind == tokenIdent && tok.raw == raw {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) expectOp(raw string) error {
	if !p.acceptOp(raw) {
		return fmt.Errorf("jinja: expected %q", raw)
	}
	return nil
}

func (p *exprParser) enter() error {
	p.depth++
	if p.depth > maxExprDepth {
		return fmt.Errorf("jinja: expression nesting exceeds %d levels", maxExprDepth)
	}
	return nil
}

func (p *exprParser) parseOr() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.acceptIdent("or") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: "or", Left: left, Right: right}
	}
	return left, nil
}

func (p *exprParser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.acceptIdent("and") {
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: "and", Left: left, Right: right}
	}
	return left, nil
}

func (p *exprParser) parseNot() (Node, error) {
	if p.acceptIdent("not") {
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: "not", Operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *exprParser) parseComparison() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	for {
		op := p.comparisonOp()
		if op == "" {
			return left, nil
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
}

func (p *exprParser) comparisonOp() string {
	tok, ok := p.peek()
	if !ok {
		return ""
	}
	if tok.kind == tokenOp {
		switch tok.raw {
		case "==", "!=", "<", "<=", ">", ">=":
			p.pos++
			return tok.raw
		}
		return ""
	}
	if tok.kind != tokenIdent {
		return ""
	}
	switch tok.raw {
	case "in":
		p.pos++
		return "in"
	case "is":
		p.pos++
		if p.acceptIdent("not") {
			return "is not"
		}
		return "is"
	case "not":
		// "not in" is the only comparison starting with "not"; a bare "not"
		// here belongs to the caller.
		if p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].kind == tokenIdent && p.tokens[p.pos+1].raw == "in" {
			p.pos += 2
			return "not in"
		}
	}
	return ""
}

func (p *exprParser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokenOp || (tok.raw != "+" && tok.raw != "-" && tok.raw != "~") {
			return left, nil
		}
		p.pos++
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: tok.raw, Left: left, Right: right}
	}
}

func (p *exprParser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokenOp || (tok.raw != "*" && tok.raw != "/" && tok.raw != "//" && tok.raw != "%") {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: tok.raw, Left: left, Right: right}
	}
}

func (p *exprParser) parseUnary() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	if tok, ok := p.peek(); ok && tok.kind == tokenOp && (tok.raw == "-" || tok.raw == "+") {
		p.pos++
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: tok.raw, Operand: operand}, nil
	}
	return p.parsePower()
}

func (p *exprParser) parsePower() (Node, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.acceptOp("**") {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Binary{Op: "**", Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *exprParser) parsePostfix() (Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokenOp {
			return node, nil
		}
		switch tok.raw {
		case ".":
			p.pos++
			attr, ok := p.peek()
			if !ok || attr.kind != tokenIdent {
				return nil, fmt.Errorf("jinja: expected attribute name after '.'")
			}
			p.pos++
			node = &Lookup{Target: node, Attr: attr.raw}

		case "[":
			p.pos++
			key, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp("]"); err != nil {
				return nil, err
			}
			node = &Index{Target: node, Key: key}

		case "(":
			p.pos++
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			node = &FunCall{Fn: node, Args: args}

		case "|":
			p.pos++
			name, ok := p.peek()
			if !ok || name.kind != tokenIdent {
				return nil, fmt.Errorf("jinja: expected filter name after '|'")
			}
			p.pos++
			filter := &Filter{Expr: node, Name: name.raw}
			if p.acceptOp("(") {
				args, err := p.parseCallArgs()
				if err != nil {
					return nil, err
				}
				filter.Args = args
			}
			node = filter

		default:
			return node, nil
		}
	}
}

// parseCallArgs parses a comma-separated argument list after the opening
// parenthesis has been consumed. Keyword arguments become Pair nodes.
func (p *exprParser) parseCallArgs() ([]Node, error) {
	var args []Node
	if p.acceptOp(")") {
		return args, nil
	}

	for {
		if tok, ok := p.peek(); ok && tok.kind == tokenIdent &&
			p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].kind == tokenOp && p.tokens[p.pos+1].raw == "=" {
			p.pos += 2
			value, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, &Pair{Key: &Literal{Value: tok.raw, Raw: tok.raw}, Value: value})
		} else {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}

		if p.acceptOp(",") {
			continue
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return args, nil
	}
}

func (p *exprParser) parsePrimary() (Node, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("jinja: unexpected end of expression")
	}

	switch tok.kind {
	case tokenNumber:
		p.pos++
		if strings.Contains(tok.raw, ".") {
			value, err := strconv.ParseFloat(tok.raw, 64)
			if err != nil {
				return nil, fmt.Errorf("jinja: bad number %q", tok.raw)
			}
			return &Literal{Value: value, Raw: tok.raw}, nil
		}
		value, err := strconv.ParseInt(tok.raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("jinja: bad number %q", tok.raw)
		}
		return &Literal{Value: value, Raw: tok.raw}, nil

	case tokenString:
		p.pos++
		return &Literal{Value: tok.raw, Raw: tok.raw}, nil

	case tokenIdent:
		p.pos++
		switch tok.raw {
		case "true", "True":
			return &Literal{Value: true, Raw: tok.raw}, nil
		case "false", "False":
			return &Literal{Value: false, Raw: tok.raw}, nil
		case "none", "null", "None":
			return &Literal{Value: nil, Raw: tok.raw}, nil
		}
		return &Symbol{Name: tok.raw}, nil

	case tokenOp:
		switch tok.raw {
		case "(":
			p.pos++
			expr, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if p.acceptOp(",") {
				items := []Node{expr}
				for {
					if p.acceptOp(")") {
						return &Array{Items: items}, nil
					}
					item, err := p.parseOr()
					if err != nil {
						return nil, err
					}
					items = append(items, item)
					if !p.acceptOp(",") {
						if err := p.expectOp(")"); err != nil {
							return nil, err
						}
						return &Array{Items: items}, nil
					}
				}
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return &Group{Expr: expr}, nil

		case "[":
			p.pos++
			var items []Node
			for !p.acceptOp("]") {
				item, err := p.parseOr()
				if err != nil {
					return nil, err
				}
				items = append(items, item)
				if !p.acceptOp(",") {
					if err := p.expectOp("]"); err != nil {
						return nil, err
					}
					break
				}
			}
			return &Array{Items: items}, nil

		case "{":
			p.pos++
			var pairs []Node
			for !p.acceptOp("}") {
				key, err := p.parseOr()
				if err != nil {
					return nil, err
				}
				if err := p.expectOp(":"); err != nil {
					return nil, err
				}
				value, err := p.parseOr()
				if err != nil {
					return nil, err
				}
				pairs = append(pairs, &Pair{Key: key, Value: value})
				if !p.acceptOp(",") {
					if err := p.expectOp("}"); err != nil {
						return nil, err
					}
					break
				}
			}
			return &Dict{Pairs: pairs}, nil
		}
	}

	return nil, fmt.Errorf("jinja: unexpected token %q", tok.raw)
}
