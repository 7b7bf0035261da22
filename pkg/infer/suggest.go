package infer

import (
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-sqltpl/pkg/model"
)

// suggestionsFor builds preview values for a classification. Sub-types take
// priority over the type-level generics so pagination limits suggest page
// sizes rather than arbitrary integers.
func suggestionsFor(t model.VarType, subType string) []any {
	switch subType {
	case SubTypePaginationLimit:
		return []any{10, 25, 50, 100}
	case SubTypePaginationOffset:
		return []any{0, 10, 50, 100}
	case SubTypePaginationPage:
		return []any{1, 2, 5, 10}
	case SubTypeIdentifier:
		return []any{1, 42, 100, 1000}
	case SubTypeStatus:
		return []any{"active", "inactive", "pending", "archived"}
	case SubTypeSecret:
		return []any{"redacted_token"}
	}

	switch t {
	case model.TypeString:
		return []any{"demo_value", "example_value", "test_value"}
	case model.TypeInteger:
		return []any{1, 10, 42, 100}
	case model.TypeNumber:
		return []any{0.5, 1.0, 3.14, 99.99}
	case model.TypeBoolean:
		return []any{true, false}
	case model.TypeDate:
		return []any{"2024-01-01", "2024-06-15", "2024-12-31"}
	case model.TypeTime:
		return []any{"00:00:00", "09:30:00", "23:59:59"}
	case model.TypeDateTime:
		return []any{"2024-01-01 00:00:00", "2024-06-15 12:30:00"}
	case model.TypeJSON:
		return []any{"{}", `{"key": "value"}`}
	case model.TypeUUID:
		return []any{uuid.NewString(), uuid.NewString()}
	case model.TypeEmail:
		return []any{"user@example.com", "admin@example.com"}
	case model.TypeURL:
		return []any{"https://example.com", "https://api.example.com/v1"}
	case model.TypeNull:
		return []any{nil}
	}
	return nil
}

// Default returns a rendering-preview value consistent with the inferred
// type.
func Default(t model.VarType, subType string) any {
	switch subType {
	case SubTypePaginationLimit:
		return 10
	case SubTypePaginationOffset:
		return 0
	case SubTypePaginationPage:
		return 1
	case SubTypeIdentifier:
		return 42
	case SubTypeStatus:
		return "active"
	}

	switch t {
	case model.TypeInteger:
		return 42
	case model.TypeNumber:
		return 3.14
	case model.TypeBoolean:
		return true
	case model.TypeDate:
		return "2024-01-01"
	case model.TypeTime:
		return "12:00:00"
	case model.TypeDateTime:
		return "2024-01-01 12:00:00"
	case model.TypeJSON:
		return "{}"
	case model.TypeUUID:
		return uuid.NewString()
	case model.TypeEmail:
		return "user@example.com"
	case model.TypeURL:
		return "https://example.com"
	case model.TypeNull:
		return nil
	}
	return "demo_value"
}

// Required reports whether a variable looks mandatory. Identifier-like names
// are the reliable signal; everything else defaults to optional.
func Required(name string, inf model.Inference) bool {
	if inf.SubType == SubTypeIdentifier {
		return true
	}
	lowered := strings.ToLower(name)
	if idx := strings.LastIndex(lowered, "."); idx >= 0 && idx < len(lowered)-1 {
		lowered = lowered[idx+1:]
	}
	return lowered == "id" || strings.HasSuffix(lowered, "_id")
}
