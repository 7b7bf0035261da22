package infer

import (
	"regexp"

	"github.com/goliatone/go-sqltpl/pkg/model"
)

// Sub-type identifiers used by the built-in rules. They key suggestion
// tables and let callers special-case pagination and identifier variables.
const (
	SubTypeIdentifier       = "identifier"
	SubTypePaginationLimit  = "pagination.limit"
	SubTypePaginationOffset = "pagination.offset"
	SubTypePaginationPage   = "pagination.page"
	SubTypeStatus           = "status"
	SubTypeSecret           = "secret"
)

// builtinRules returns the fixed heuristic table. Boolean-looking prefixes
// and the `_id`/`_count`/`_date`/`_at` suffix families dominate real-world
// SQL naming and carry the highest confidence so they always beat the
// generic string fallback.
func builtinRules() []Rule {
	return []Rule{
		// Boolean prefixes and common flag words.
		{Regex: regexp.MustCompile(`^(is|has|can|should|will)_`), Type: model.TypeBoolean, Confidence: 0.95},
		{Regex: regexp.MustCompile(`^(enabled|disabled|active|inactive|deleted|archived|visible|verified|confirmed)$`), Type: model.TypeBoolean, Confidence: 0.85},

		// Identifiers.
		{Regex: regexp.MustCompile(`(^|_)id$`), Type: model.TypeInteger, SubType: SubTypeIdentifier, Confidence: 0.95},
		{Pattern: "uuid", Type: model.TypeUUID, Confidence: 0.95, Format: "uuid"},
		{Pattern: "guid", Type: model.TypeUUID, Confidence: 0.9, Format: "uuid"},

		// Pagination before the generic count family so limit/offset pick up
		// their sub-types.
		{Regex: regexp.MustCompile(`(^|_)limit$`), Type: model.TypeInteger, SubType: SubTypePaginationLimit, Confidence: 0.92},
		{Regex: regexp.MustCompile(`(^|_)offset$`), Type: model.TypeInteger, SubType: SubTypePaginationOffset, Confidence: 0.92},
		{Regex: regexp.MustCompile(`(^|_)page$`), Type: model.TypeInteger, SubType: SubTypePaginationPage, Confidence: 0.88},

		// Counts and other integral quantities.
		{Regex: regexp.MustCompile(`(^|_)(count|total|quantity|qty|num|size|age|year)$`), Type: model.TypeInteger, Confidence: 0.9},

		// Fractional quantities.
		{Regex: regexp.MustCompile(`(^|_)(amount|price|cost|rate|ratio|percent|percentage|score|balance|weight|height|latitude|longitude)$`), Type: model.TypeNumber, Confidence: 0.85},

		// Temporal suffix families. `_at` means a full timestamp by
		// convention (created_at, updated_at, deleted_at).
		{Regex: regexp.MustCompile(`_at$`), Type: model.TypeDateTime, Confidence: 0.92, Format: "2006-01-02 15:04:05"},
		{Pattern: "timestamp", Type: model.TypeDateTime, Confidence: 0.9, Format: "2006-01-02 15:04:05"},
		{Pattern: "datetime", Type: model.TypeDateTime, Confidence: 0.9, Format: "2006-01-02 15:04:05"},
		{Regex: regexp.MustCompile(`(^|_)date($|_)`), Type: model.TypeDate, Confidence: 0.85, Format: "2006-01-02"},
		{Regex: regexp.MustCompile(`(^|_)(birthday|dob)$`), Type: model.TypeDate, Confidence: 0.85, Format: "2006-01-02"},
		{Regex: regexp.MustCompile(`(^|_)time$`), Type: model.TypeTime, Confidence: 0.8, Format: "15:04:05"},

		// Contact and web.
		{Pattern: "email", Type: model.TypeEmail, Confidence: 0.95, Format: "email"},
		{Regex: regexp.MustCompile(`(^|_)(url|uri|link|website|href)$`), Type: model.TypeURL, Confidence: 0.9, Format: "url"},

		// Structured payloads.
		{Regex: regexp.MustCompile(`(^|_)(json|payload|metadata|meta|config|settings|attributes|attrs)$`), Type: model.TypeJSON, Confidence: 0.7},

		// Strings that deserve better than the fallback confidence.
		{Regex: regexp.MustCompile(`(^|_)status$`), Type: model.TypeString, SubType: SubTypeStatus, Confidence: 0.82},
		{Regex: regexp.MustCompile(`(^|_)(name|title|description|label|comment|note|text|slug|code|username)$`), Type: model.TypeString, Confidence: 0.8},
		{Regex: regexp.MustCompile(`(^|_)(token|secret|password|hash)$`), Type: model.TypeString, SubType: SubTypeSecret, Confidence: 0.8},
	}
}
