// Package placeholder reconciles the two substitution syntaxes that coexist
// in SQL lifted out of application code: Jinja2 blocks (`{{ var }}`,
// `{% if %}`) and SQLAlchemy-style colon parameters (`:name`).
package placeholder

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-sqltpl/pkg/extract"
	"github.com/goliatone/go-sqltpl/pkg/filters"
	"github.com/goliatone/go-sqltpl/pkg/model"
)

// sqlaPattern matches `:name` parameters. The guard group rejects a colon
// preceded by a word character or another colon, and the identifier must
// start with a letter or underscore, so `'12:34'` (time literal) and
// `::integer` (Postgres cast) never register as placeholders.
var sqlaPattern = regexp.MustCompile(`(^|[^:\w])(:([A-Za-z_]\w*))\b`)

// laxColon is used only by Validate to flag suspicious colon parameters
// that the strict pattern rejects.
var laxColon = regexp.MustCompile(`(^|[^:\w])(:(\w+))`)

var identifierOnly = regexp.MustCompile(`^[A-Za-z_]\w*$`)

// Detection reports which dialects a statement uses and the variables each
// contributes.
type Detection struct {
	HasJinja2      bool     `json:"hasJinja2"`
	HasSQLAlchemy  bool     `json:"hasSQLAlchemy"`
	Jinja2Vars     []string `json:"jinja2Vars,omitempty"`
	SQLAlchemyVars []string `json:"sqlalchemyVars,omitempty"`
}

// Detect scans for both dialects. Jinja2 variables come from the same
// matchers as the regex extraction strategy so the two reports agree.
func Detect(sql string) Detection {
	d := Detection{
		Jinja2Vars:     extract.ScanNames(sql),
		SQLAlchemyVars: scanColonParams(sql),
	}
	d.HasJinja2 = len(d.Jinja2Vars) > 0 ||
		strings.Contains(sql, "{{") || strings.Contains(sql, "{%")
	d.HasSQLAlchemy = len(d.SQLAlchemyVars) > 0
	return d
}

func scanColonParams(sql string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, match := range sqlaPattern.FindAllStringSubmatch(sql, -1) {
		name := match[3]
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Conversion is the outcome of substituting colon parameters with literals.
type Conversion struct {
	ConvertedSQL     string            `json:"convertedSQL"`
	UsedPlaceholders []string          `json:"usedPlaceholders,omitempty"`
	PlaceholderMap   map[string]string `json:"placeholderMap,omitempty"`
}

// Convert replaces every `:name` whose value is present in the context with
// a correctly typed SQL literal. Placeholders without a supplied value are
// left untouched.
func Convert(sql string, context map[string]any) Conversion {
	conv := Conversion{PlaceholderMap: make(map[string]string)}
	seen := make(map[string]struct{})

	conv.ConvertedSQL = sqlaPattern.ReplaceAllStringFunc(sql, func(match string) string {
		groups := sqlaPattern.FindStringSubmatch(match)
		prefix, name := groups[1], groups[3]

		value, ok := context[name]
		if !ok {
			return match
		}

		literal := filters.SQLQuote(value)
		conv.PlaceholderMap[name] = literal
		if _, dup := seen[name]; !dup {
			seen[name] = struct{}{}
			conv.UsedPlaceholders = append(conv.UsedPlaceholders, name)
		}
		return prefix + literal
	})

	return conv
}

// Validate checks structural health without executing anything: unbalanced
// Jinja2 delimiters are errors; dubious placeholder names and variables
// claimed by both dialects are warnings, since ambiguity is suspicious but
// not necessarily wrong.
func Validate(sql string) model.ValidationResult {
	result := model.ValidationResult{Valid: true}

	pairs := [][2]string{{"{{", "}}"}, {"{%", "%}"}}
	for _, pair := range pairs {
		open, close := strings.Count(sql, pair[0]), strings.Count(sql, pair[1])
		if open != close {
			result.Valid = false
			result.Errors = append(result.Errors,
				"unbalanced "+pair[0]+"/"+pair[1]+" delimiters")
		}
	}

	strict := make(map[string]struct{})
	for _, name := range scanColonParams(sql) {
		strict[name] = struct{}{}
	}
	for _, match := range laxColon.FindAllStringSubmatch(sql, -1) {
		name := match[3]
		if _, ok := strict[name]; ok {
			continue
		}
		if !identifierOnly.MatchString(name) {
			result.Warnings = append(result.Warnings,
				"placeholder :"+name+" is not a valid identifier")
		}
	}

	jinja := make(map[string]struct{})
	for _, name := range extract.ScanNames(sql) {
		jinja[name] = struct{}{}
	}
	for _, name := range scanColonParams(sql) {
		if _, both := jinja[name]; both {
			result.Warnings = append(result.Warnings,
				"variable "+name+" appears as both {{ "+name+" }} and :"+name)
		}
	}

	return result
}
