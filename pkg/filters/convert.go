package filters

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// isNil reports nil including typed nils hiding inside an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch value := v.(type) {
	case int:
		return float64(value), true
	case int8:
		return float64(value), true
	case int16:
		return float64(value), true
	case int32:
		return float64(value), true
	case int64:
		return float64(value), true
	case uint:
		return float64(value), true
	case uint8:
		return float64(value), true
	case uint16:
		return float64(value), true
	case uint32:
		return float64(value), true
	case uint64:
		return float64(value), true
	case float32:
		return float64(value), true
	case float64:
		return value, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func isIntegral(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func toString(v any) string {
	if isNil(v) {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// toSlice normalises any slice or array into []any.
func toSlice(v any) ([]any, bool) {
	if isNil(v) {
		return nil, false
	}
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// truthy applies Jinja-style truthiness.
func truthy(v any) bool {
	if isNil(v) {
		return false
	}
	switch value := v.(type) {
	case bool:
		return value
	case string:
		return value != ""
	}
	if f, ok := toFloat(v); ok {
		return f != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	}
	return true
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"15:04:05",
}

// toTime coerces time.Time values, common string layouts and Unix epochs.
func toTime(v any) (time.Time, bool) {
	switch value := v.(type) {
	case time.Time:
		return value, true
	case *time.Time:
		if value == nil {
			return time.Time{}, false
		}
		return *value, true
	case string:
		trimmed := strings.TrimSpace(value)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
	if f, ok := toFloat(v); ok {
		return time.Unix(int64(f), 0).UTC(), true
	}
	return time.Time{}, false
}

// attributeOf resolves an attribute for the sum/min/max family. Only maps
// are supported; anything else yields no value.
func attributeOf(item any, attr string) (any, bool) {
	if attr == "" {
		return item, true
	}
	m, ok := item.(map[string]any)
	if !ok {
		return nil, false
	}
	value, ok := m[attr]
	return value, ok
}
