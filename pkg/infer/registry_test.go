package infer

import (
	"strings"
	"testing"

	"github.com/goliatone/go-sqltpl/pkg/model"
)

func TestInferBuiltinPatterns(t *testing.T) {
	reg := NewRegistry()

	cases := []struct {
		name    string
		want    model.VarType
		subType string
	}{
		{"user_id", model.TypeInteger, SubTypeIdentifier},
		{"id", model.TypeInteger, SubTypeIdentifier},
		{"is_active", model.TypeBoolean, ""},
		{"has_children", model.TypeBoolean, ""},
		{"created_at", model.TypeDateTime, ""},
		{"updated_at", model.TypeDateTime, ""},
		{"birth_date", model.TypeDate, ""},
		{"email", model.TypeEmail, ""},
		{"user_email", model.TypeEmail, ""},
		{"limit", model.TypeInteger, SubTypePaginationLimit},
		{"offset", model.TypeInteger, SubTypePaginationOffset},
		{"total_count", model.TypeInteger, ""},
		{"unit_price", model.TypeNumber, ""},
		{"session_uuid", model.TypeUUID, ""},
		{"status", model.TypeString, SubTypeStatus},
		{"avatar_url", model.TypeURL, ""},
	}

	for _, tc := range cases {
		inf := reg.Infer(tc.name)
		if inf.Type != tc.want {
			t.Fatalf("%s: type mismatch: got %q want %q", tc.name, inf.Type, tc.want)
		}
		if tc.subType != "" && inf.SubType != tc.subType {
			t.Fatalf("%s: subType mismatch: got %q want %q", tc.name, inf.SubType, tc.subType)
		}
	}
}

func TestInferUnknownNameDefaultsToString(t *testing.T) {
	inf := NewRegistry().Infer("frobnicator")
	if inf.Type != model.TypeString {
		t.Fatalf("expected string, got %q", inf.Type)
	}
	if inf.Confidence >= 0.5 {
		t.Fatalf("expected low confidence for unknown name, got %v", inf.Confidence)
	}
}

func TestInferIdentifierConfidence(t *testing.T) {
	inf := NewRegistry().Infer("user_id")
	if inf.Confidence < 0.9 {
		t.Fatalf("expected confidence >= 0.9 for user_id, got %v", inf.Confidence)
	}
}

func TestInferUsesFinalDottedSegment(t *testing.T) {
	inf := NewRegistry().Infer("user.created_at")
	if inf.Type != model.TypeDateTime {
		t.Fatalf("expected datetime for user.created_at, got %q", inf.Type)
	}
}

func TestRegisterCustomRuleOverridesWhenMoreConfident(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(Rule{
		Pattern:    "tenant",
		Type:       model.TypeUUID,
		Confidence: 0.99,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if inf := reg.Infer("tenant"); inf.Type != model.TypeUUID {
		t.Fatalf("expected custom rule to win, got %q", inf.Type)
	}

	reg.ResetCustom()
	if inf := reg.Infer("tenant"); inf.Type == model.TypeUUID {
		t.Fatalf("expected reset to drop custom rule")
	}
}

func TestRegisterRejectsInvalidRule(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(Rule{Pattern: "x", Type: "nonsense", Confidence: 0.5}); err == nil {
		t.Fatalf("expected unknown type to be rejected")
	}
	if err := reg.Register(Rule{Pattern: "x", Type: model.TypeString, Confidence: 1.5}); err == nil {
		t.Fatalf("expected out-of-range confidence to be rejected")
	}
}

func TestLoadRules(t *testing.T) {
	doc := `
rules:
  - pattern: account
    type: uuid
    confidence: 0.9
  - regex: "_code$"
    type: string
    subType: code
    confidence: 0.8
`
	rules, err := LoadRules(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}

	reg := NewRegistry()
	if err := reg.Register(rules...); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if inf := reg.Infer("account"); inf.Type != model.TypeUUID {
		t.Fatalf("expected uuid for account, got %q", inf.Type)
	}
	if inf := reg.Infer("promo_code"); inf.SubType != "code" {
		t.Fatalf("expected subType code, got %q", inf.SubType)
	}
}

func TestLoadRulesRejectsBadDocuments(t *testing.T) {
	for _, doc := range []string{
		"rules:\n  - pattern: x\n    type: bogus\n    confidence: 0.5\n",
		"rules:\n  - pattern: x\n    type: string\n    confidence: 0\n",
		"rules:\n  - type: string\n    confidence: 0.5\n",
	} {
		if _, err := LoadRules(strings.NewReader(doc)); err == nil {
			t.Fatalf("expected rejection for document:\n%s", doc)
		}
	}
}

func TestDefaultValues(t *testing.T) {
	cases := []struct {
		t       model.VarType
		subType string
		want    any
	}{
		{model.TypeInteger, "", 42},
		{model.TypeNumber, "", 3.14},
		{model.TypeBoolean, "", true},
		{model.TypeString, "", "demo_value"},
		{model.TypeDate, "", "2024-01-01"},
		{model.TypeDateTime, "", "2024-01-01 12:00:00"},
	}
	for _, tc := range cases {
		got := Default(tc.t, tc.subType)
		if got != tc.want {
			t.Fatalf("Default(%s): got %#v want %#v", tc.t, got, tc.want)
		}
	}
}

func TestSuggestionsForPagination(t *testing.T) {
	inf := NewRegistry().Infer("limit")
	if len(inf.Suggestions) == 0 {
		t.Fatalf("expected suggestions for limit")
	}
	if inf.Suggestions[0] != 10 {
		t.Fatalf("expected first suggestion 10, got %v", inf.Suggestions[0])
	}
}

func TestRequired(t *testing.T) {
	reg := NewRegistry()
	if !Required("user_id", reg.Infer("user_id")) {
		t.Fatalf("expected user_id to be required")
	}
	if Required("comment", reg.Infer("comment")) {
		t.Fatalf("expected comment to be optional")
	}
}
