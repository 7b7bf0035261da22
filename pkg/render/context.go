package render

import "strings"

// BuildNestedContext expands a flat map with dotted keys into nested maps so
// `user.id` in a template resolves against {"user": {"id": ...}}. Plain keys
// are assigned at the root; when a plain key collides with the root of a
// dotted expansion, the dotted expansion wins.
func BuildNestedContext(flat map[string]any) map[string]any {
	out := make(map[string]any, len(flat))

	for key, value := range flat {
		if !strings.Contains(key, ".") {
			out[key] = value
		}
	}

	for key, value := range flat {
		if !strings.Contains(key, ".") {
			continue
		}
		segments := strings.Split(key, ".")
		current := out
		for _, segment := range segments[:len(segments)-1] {
			child, ok := current[segment].(map[string]any)
			if !ok {
				child = make(map[string]any)
				current[segment] = child
			}
			current = child
		}
		current[segments[len(segments)-1]] = value
	}

	return out
}

// Flatten is the inverse of BuildNestedContext: nested maps collapse back to
// dotted keys. Round-tripping a collision-free flat map through
// BuildNestedContext and Flatten reproduces the original, except for flat
// values that are themselves non-empty map[string]any; those get expanded
// into dotted keys like any other nested map.
func Flatten(nested map[string]any) map[string]any {
	out := make(map[string]any, len(nested))
	flattenInto(out, "", nested)
	return out
}

func flattenInto(out map[string]any, prefix string, nested map[string]any) {
	for key, value := range nested {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if child, ok := value.(map[string]any); ok && len(child) > 0 {
			flattenInto(out, path, child)
			continue
		}
		out[path] = value
	}
}
