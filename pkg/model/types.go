package model

// VarType is the semantic type inferred for a template variable. The set is
// closed; callers switch on it to pick prompts, default values and SQL
// literal formatting.
type VarType string

const (
	TypeString   VarType = "string"
	TypeNumber   VarType = "number"
	TypeInteger  VarType = "integer"
	TypeBoolean  VarType = "boolean"
	TypeDate     VarType = "date"
	TypeTime     VarType = "time"
	TypeDateTime VarType = "datetime"
	TypeJSON     VarType = "json"
	TypeUUID     VarType = "uuid"
	TypeEmail    VarType = "email"
	TypeURL      VarType = "url"
	TypeNull     VarType = "null"
)

// KnownTypes lists every valid VarType. Used when validating rule files.
func KnownTypes() []VarType {
	return []VarType{
		TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeDate, TypeTime,
		TypeDateTime, TypeJSON, TypeUUID, TypeEmail, TypeURL, TypeNull,
	}
}

// ExtractionMethod records which strategy discovered a variable. Diagnostics
// only; consumers must not branch on it.
type ExtractionMethod string

const (
	MethodAST      ExtractionMethod = "ast"
	MethodRegex    ExtractionMethod = "regex"
	MethodFallback ExtractionMethod = "fallback"
)

// Variable is one discovered template placeholder. Names are dotted
// identifiers and unique within a single extraction result; `user.id` and
// `user` are distinct entries.
type Variable struct {
	Name             string           `json:"name" yaml:"name"`
	Type             VarType          `json:"type" yaml:"type"`
	SubType          string           `json:"subType,omitempty" yaml:"subType,omitempty"`
	DefaultValue     any              `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Filters          []string         `json:"filters,omitempty" yaml:"filters,omitempty"`
	Required         bool             `json:"required" yaml:"required"`
	ExtractionMethod ExtractionMethod `json:"extractionMethod,omitempty" yaml:"extractionMethod,omitempty"`

	// Suggestions are candidate values from inference, used by interactive
	// prompting and previews.
	Suggestions []any `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`

	// Valid and ValidationError are populated only by the compile-validation
	// strategy, which test-renders each variable in isolation. Variables
	// produced by other strategies leave them at their zero values.
	Valid           bool   `json:"valid" yaml:"valid"`
	ValidationError string `json:"validationError,omitempty" yaml:"validationError,omitempty"`
}

// AddFilter appends filter names to the variable, keeping the list free of
// duplicates while preserving first-seen order.
func (v *Variable) AddFilter(names ...string) {
	for _, name := range names {
		if name == "" {
			continue
		}
		exists := false
		for _, have := range v.Filters {
			if have == name {
				exists = true
				break
			}
		}
		if !exists {
			v.Filters = append(v.Filters, name)
		}
	}
}

// Inference is the outcome of running a variable name through the inference
// registry.
type Inference struct {
	Type        VarType
	SubType     string
	Confidence  float64
	Format      string
	Suggestions []any
}

// ValidationResult carries collected diagnostics from a dry compile plus any
// placeholder-dialect checks. Warnings never flip Valid to false.
type ValidationResult struct {
	Valid    bool     `json:"valid" yaml:"valid"`
	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}
