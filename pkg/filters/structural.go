package filters

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
)

// filterDefault substitutes a fallback when the input is nil, or — with a
// truthy third argument — whenever the input is falsy.
func filterDefault(in any, args ...any) (any, error) {
	if len(args) == 0 {
		return in, nil
	}
	fallback := args[0]
	falsyMode := len(args) > 1 && truthy(args[1])

	if isNil(in) {
		return fallback, nil
	}
	if falsyMode && !truthy(in) {
		return fallback, nil
	}
	return in, nil
}

// filterDictSort turns a map into key-sorted [key, value] pairs; pass
// "value" to sort by values instead.
func filterDictSort(in any, args ...any) (any, error) {
	m, ok := in.(map[string]any)
	if !ok {
		return in, nil
	}
	byValue := len(args) > 0 && toString(args[0]) == "value"

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	if byValue {
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(m[keys[i]]) < fmt.Sprint(m[keys[j]])
		})
	} else {
		sort.Strings(keys)
	}

	out := make([]any, len(keys))
	for i, key := range keys {
		out[i] = []any{key, m[key]}
	}
	return out, nil
}

func filterToJSON(in any, _ ...any) (any, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("tojson: %w", err)
	}
	return string(raw), nil
}

func filterEqualTo(in any, args ...any) (any, error) {
	if len(args) == 0 {
		return false, nil
	}
	other := args[0]
	if lf, lok := toFloat(in); lok {
		if rf, rok := toFloat(other); rok {
			return lf == rf, nil
		}
	}
	return toString(in) == toString(other), nil
}

func filterFileSizeFormat(in any, args ...any) (any, error) {
	f, ok := toFloat(in)
	if !ok || f < 0 {
		return "NaN", nil
	}
	binary := len(args) > 0 && truthy(args[0])
	if binary {
		return humanize.IBytes(uint64(f)), nil
	}
	return humanize.Bytes(uint64(f)), nil
}
