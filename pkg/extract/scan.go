package extract

import (
	"regexp"
	"strings"
)

var (
	outputPattern  = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)
	controlPattern = regexp.MustCompile(`\{%-?\s*(if|elif|for)\s+([^%]+?)\s*-?%\}`)

	dottedIdent  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*$`)
	identToken   = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*`)
	leadingIdent = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)`)
)

// stopWords are control-flow keywords and literals that look like
// identifiers inside `{% if %}` / `{% for %}` conditions but never name a
// variable.
var stopWords = map[string]struct{}{
	"if": {}, "elif": {}, "else": {}, "endif": {},
	"for": {}, "endfor": {}, "in": {},
	"and": {}, "or": {}, "not": {}, "is": {}, "defined": {},
	"true": {}, "false": {}, "none": {}, "null": {},
}

// scanOutputs yields (name, filters) for every `{{ ... }}` expression whose
// pre-pipe segment is a plain dotted identifier. Filter segments reduce to
// their leading identifier, dropping any call arguments.
func scanOutputs(source string, visit func(name string, filterNames []string)) {
	for _, match := range outputPattern.FindAllStringSubmatch(source, -1) {
		segments := strings.Split(match[1], "|")
		name := strings.TrimSpace(segments[0])
		if !dottedIdent.MatchString(name) {
			continue
		}

		var filterNames []string
		for _, segment := range segments[1:] {
			if m := leadingIdent.FindStringSubmatch(segment); m != nil {
				filterNames = append(filterNames, m[1])
			}
		}
		visit(name, filterNames)
	}
}

// scanControlFlow yields bare identifiers referenced in `{% if %}`,
// `{% elif %}` and `{% for %}` conditions, excluding stop words and function
// calls.
func scanControlFlow(source string, visit func(name string)) {
	for _, match := range controlPattern.FindAllStringSubmatch(source, -1) {
		condition := match[2]
		for _, loc := range identToken.FindAllStringIndex(condition, -1) {
			name := condition[loc[0]:loc[1]]
			if _, stop := stopWords[strings.ToLower(name)]; stop {
				continue
			}
			if isCallToken(condition, loc[1]) {
				continue
			}
			visit(name)
		}
	}
}

// isCallToken reports whether the first non-space character after an
// identifier is an opening parenthesis, marking a function call.
func isCallToken(condition string, end int) bool {
	for i := end; i < len(condition); i++ {
		switch condition[i] {
		case ' ', '\t':
			continue
		case '(':
			return true
		default:
			return false
		}
	}
	return false
}

// ScanNames returns the unique Jinja2 variable names in document order,
// using the same matchers as the regex extraction strategy. The placeholder
// detector shares this so both dialect scans agree on what counts as a
// variable.
func ScanNames(source string) []string {
	seen := make(map[string]struct{})
	var names []string
	record := func(name string) {
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	scanOutputs(source, func(name string, _ []string) { record(name) })
	scanControlFlow(source, record)
	return names
}
