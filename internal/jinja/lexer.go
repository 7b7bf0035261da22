package jinja

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokenIdent tokenKind = iota
	tokenNumber
	tokenString
	tokenOp
)

type token struct {
	kind tokenKind
	raw  string
}

// operators ordered longest-first so multi-character operators win.
var operators = []string{
	"**", "//", "==", "!=", "<=", ">=",
	"|", ".", ",", "(", ")", "[", "]", "{", "}", ":",
	"<", ">", "+", "-", "*", "/", "%", "~", "=",
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

// tokenizeExpr splits an expression's source into tokens. Strings keep their
// unquoted content; everything else keeps its raw text.
func tokenizeExpr(input string) ([]token, error) {
	var tokens []token
	i := 0

	for i < len(input) {
		ch := input[i]

		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			i++
			continue
		}

		if isIdentStart(ch) {
			start := i
			for i < len(input) && isIdentPart(input[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokenIdent, raw: input[start:i]})
			continue
		}

		if isDigit(ch) {
			start := i
			for i < len(input) && isDigit(input[i]) {
				i++
			}
			if i < len(input) && input[i] == '.' && i+1 < len(input) && isDigit(input[i+1]) {
				i++
				for i < len(input) && isDigit(input[i]) {
					i++
				}
			}
			tokens = append(tokens, token{kind: tokenNumber, raw: input[start:i]})
			continue
		}

		if ch == '\'' || ch == '"' {
			quote := ch
			i++
			var sb strings.Builder
			closed := false
			for i < len(input) {
				c := input[i]
				if c == '\\' && i+1 < len(input) {
					sb.WriteByte(input[i+1])
					i += 2
					continue
				}
				if c == quote {
					closed = true
					i++
					break
				}
				sb.WriteByte(c)
				i++
			}
			if !closed {
				return nil, fmt.Errorf("jinja: unterminated string literal")
			}
			tokens = append(tokens, token{kind: tokenString, raw: sb.String()})
			continue
		}

		matched := false
		for _, op := range operators {
			if strings.HasPrefix(input[i:], op) {
				tokens = append(tokens, token{kind: tokenOp, raw: op})
				i += len(op)
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("jinja: unexpected character %q in expression", ch)
		}
	}

	return tokens, nil
}
