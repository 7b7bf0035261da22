package filters

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"
)

// filterLength counts runes for strings and elements for slices and maps.
// nil yields "0" per the degenerate-input contract.
func filterLength(in any, _ ...any) (any, error) {
	if isNil(in) {
		return "0", nil
	}
	if s, ok := in.(string); ok {
		return utf8.RuneCountInString(s), nil
	}
	rv := reflect.ValueOf(in)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), nil
	}
	return "0", nil
}

func filterJoin(in any, args ...any) (any, error) {
	items, ok := toSlice(in)
	if !ok {
		return toString(in), nil
	}
	sep := ""
	if len(args) > 0 {
		sep = toString(args[0])
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = toString(item)
	}
	return strings.Join(parts, sep), nil
}

func filterFirst(in any, _ ...any) (any, error) {
	if s, ok := in.(string); ok {
		if s == "" {
			return "", nil
		}
		return string([]rune(s)[0]), nil
	}
	items, ok := toSlice(in)
	if !ok || len(items) == 0 {
		return "", nil
	}
	return items[0], nil
}

func filterLast(in any, _ ...any) (any, error) {
	if s, ok := in.(string); ok {
		if s == "" {
			return "", nil
		}
		runes := []rune(s)
		return string(runes[len(runes)-1]), nil
	}
	items, ok := toSlice(in)
	if !ok || len(items) == 0 {
		return "", nil
	}
	return items[len(items)-1], nil
}

// filterUnique drops duplicates while keeping first-seen order.
func filterUnique(in any, _ ...any) (any, error) {
	items, ok := toSlice(in)
	if !ok {
		return in, nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]any, 0, len(items))
	for _, item := range items {
		key := fmt.Sprintf("%T:%v", item, item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out, nil
}

func filterReverse(in any, _ ...any) (any, error) {
	if s, ok := in.(string); ok {
		runes := []rune(s)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return string(runes), nil
	}
	items, ok := toSlice(in)
	if !ok {
		return in, nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return out, nil
}

// filterSlice takes a [start, end) range over a list or string. Negative
// indices count from the end.
func filterSlice(in any, args ...any) (any, error) {
	start, end := 0, -1
	if len(args) > 0 {
		if f, ok := toFloat(args[0]); ok {
			start = int(f)
		}
	}
	if len(args) > 1 {
		if f, ok := toFloat(args[1]); ok {
			end = int(f)
		}
	}

	if s, ok := in.(string); ok {
		runes := []rune(s)
		lo, hi := clampRange(start, end, len(runes))
		return string(runes[lo:hi]), nil
	}
	items, ok := toSlice(in)
	if !ok {
		return in, nil
	}
	lo, hi := clampRange(start, end, len(items))
	return items[lo:hi], nil
}

func clampRange(start, end, length int) (int, int) {
	if start < 0 {
		start += length
	}
	if end < 0 {
		end += length + 1
	}
	if start < 0 {
		start = 0
	}
	if end > length {
		end = length
	}
	if start > end {
		return 0, 0
	}
	return start, end
}

func filterSum(in any, args ...any) (any, error) {
	items, ok := toSlice(in)
	if !ok {
		return "NaN", nil
	}
	attr := ""
	if len(args) > 0 {
		attr = toString(args[0])
	}
	total := 0.0
	allIntegral := true
	for _, item := range items {
		value, ok := attributeOf(item, attr)
		if !ok {
			continue
		}
		f, ok := toFloat(value)
		if !ok {
			return "NaN", nil
		}
		if !isIntegral(value) {
			allIntegral = false
		}
		total += f
	}
	if allIntegral {
		return int64(total), nil
	}
	return total, nil
}

func filterMin(in any, args ...any) (any, error) {
	return extremum(in, args, func(candidate, best float64) bool { return candidate < best })
}

func filterMax(in any, args ...any) (any, error) {
	return extremum(in, args, func(candidate, best float64) bool { return candidate > best })
}

func extremum(in any, args []any, better func(candidate, best float64) bool) (any, error) {
	items, ok := toSlice(in)
	if !ok || len(items) == 0 {
		return "NaN", nil
	}
	attr := ""
	if len(args) > 0 {
		attr = toString(args[0])
	}

	var (
		bestItem  any
		bestValue float64
		found     bool
	)
	for _, item := range items {
		value, ok := attributeOf(item, attr)
		if !ok {
			continue
		}
		f, ok := toFloat(value)
		if !ok {
			return "NaN", nil
		}
		if !found || better(f, bestValue) {
			bestItem, bestValue, found = item, f, true
		}
	}
	if !found {
		return "NaN", nil
	}
	return bestItem, nil
}
