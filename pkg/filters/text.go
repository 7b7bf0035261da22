package filters

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var stripPolicy = bluemonday.StrictPolicy()

func filterUpper(in any, _ ...any) (any, error) {
	return strings.ToUpper(toString(in)), nil
}

func filterLower(in any, _ ...any) (any, error) {
	return strings.ToLower(toString(in)), nil
}

func filterTitle(in any, _ ...any) (any, error) {
	return cases.Title(language.Und).String(toString(in)), nil
}

func filterCapitalize(in any, _ ...any) (any, error) {
	s := toString(in)
	if s == "" {
		return "", nil
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes), nil
}

func filterTrim(in any, args ...any) (any, error) {
	s := toString(in)
	if len(args) > 0 {
		return strings.Trim(s, toString(args[0])), nil
	}
	return strings.TrimSpace(s), nil
}

func filterStripTags(in any, _ ...any) (any, error) {
	return strings.TrimSpace(stripPolicy.Sanitize(toString(in))), nil
}

// filterTruncate shortens to length (default 255), backing up to the last
// word boundary unless killwords is true, then appends the end marker.
func filterTruncate(in any, args ...any) (any, error) {
	s := toString(in)
	length := 255
	killwords := false
	end := "..."

	if len(args) > 0 {
		if f, ok := toFloat(args[0]); ok {
			length = int(f)
		}
	}
	if len(args) > 1 {
		killwords = truthy(args[1])
	}
	if len(args) > 2 {
		end = toString(args[2])
	}

	runes := []rune(s)
	if len(runes) <= length {
		return s, nil
	}

	cut := string(runes[:length])
	if !killwords {
		if idx := strings.LastIndexFunc(cut, unicode.IsSpace); idx > 0 {
			cut = cut[:idx]
		}
	}
	return strings.TrimRightFunc(cut, unicode.IsSpace) + end, nil
}

// filterWordwrap greedily wraps words at the given width (default 79).
func filterWordwrap(in any, args ...any) (any, error) {
	s := toString(in)
	width := 79
	if len(args) > 0 {
		if f, ok := toFloat(args[0]); ok && f > 0 {
			width = int(f)
		}
	}

	words := strings.Fields(s)
	if len(words) == 0 {
		return s, nil
	}

	var (
		sb      strings.Builder
		lineLen int
	)
	for i, word := range words {
		if i == 0 {
			sb.WriteString(word)
			lineLen = len(word)
			continue
		}
		if lineLen+1+len(word) > width {
			sb.WriteByte('\n')
			sb.WriteString(word)
			lineLen = len(word)
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(word)
		lineLen += 1 + len(word)
	}
	return sb.String(), nil
}

func filterURLEncode(in any, _ ...any) (any, error) {
	if m, ok := in.(map[string]any); ok {
		values := url.Values{}
		for key, value := range m {
			values.Set(key, toString(value))
		}
		return values.Encode(), nil
	}
	return url.QueryEscape(toString(in)), nil
}
