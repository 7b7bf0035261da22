package infer

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/goliatone/go-sqltpl/pkg/model"
)

// Rule is a registered inference heuristic. A rule matches when either its
// Regex tests true against the lower-cased variable name, or (with no Regex)
// the lower-cased name contains Pattern as a substring.
type Rule struct {
	Pattern    string
	Regex      *regexp.Regexp
	Type       model.VarType
	SubType    string
	Confidence float64
	Format     string
}

func (r Rule) matches(lowered string) bool {
	if r.Regex != nil {
		return r.Regex.MatchString(lowered)
	}
	return r.Pattern != "" && strings.Contains(lowered, r.Pattern)
}

type rankedRule struct {
	Rule
	order int
}

// Registry evaluates inference rules against variable names. Built-in rules
// are installed at construction; callers may append custom rules, which rank
// after built-ins on confidence ties. There is no per-rule removal, only
// ResetCustom.
type Registry struct {
	mu      sync.RWMutex
	builtin []rankedRule
	custom  []rankedRule
}

// NewRegistry constructs a registry with the built-in rules installed.
func NewRegistry() *Registry {
	r := &Registry{}
	for _, rule := range builtinRules() {
		r.builtin = append(r.builtin, rankedRule{Rule: rule, order: len(r.builtin)})
	}
	return r
}

// Register appends custom rules. The whole batch is validated up front so a
// bad rule never leaves the registry half-updated.
func (r *Registry) Register(rules ...Rule) error {
	for _, rule := range rules {
		if rule.Confidence <= 0 || rule.Confidence > 1 {
			return fmt.Errorf("infer: confidence %v outside (0, 1]", rule.Confidence)
		}
		if rule.Regex == nil && strings.TrimSpace(rule.Pattern) == "" {
			return fmt.Errorf("infer: rule needs a pattern or a regex")
		}
		if !knownType(rule.Type) {
			return fmt.Errorf("infer: unknown type %q", rule.Type)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rule := range rules {
		rule.Pattern = strings.ToLower(strings.TrimSpace(rule.Pattern))
		r.custom = append(r.custom, rankedRule{Rule: rule, order: len(r.builtin) + len(r.custom)})
	}
	return nil
}

func knownType(t model.VarType) bool {
	for _, known := range model.KnownTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// ResetCustom removes every custom rule, restoring the built-in set.
func (r *Registry) ResetCustom() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom = nil
}

// Infer classifies a variable name. Every matching rule is collected and the
// highest-confidence match wins; ties break on registration order with
// built-ins ahead of customs. Names that match nothing fall back to string
// with low confidence, so Infer never fails.
func (r *Registry) Infer(name string) model.Inference {
	lowered := strings.ToLower(strings.TrimSpace(name))
	// Dotted names are classified by their final segment: `user.id` should
	// infer like `id`, not like `user`.
	if idx := strings.LastIndex(lowered, "."); idx >= 0 && idx < len(lowered)-1 {
		lowered = lowered[idx+1:]
	}

	best, ok := r.bestMatch(lowered)
	inf := model.Inference{Type: model.TypeString, Confidence: 0.3}
	if ok {
		inf = model.Inference{
			Type:       best.Type,
			SubType:    best.SubType,
			Confidence: best.Confidence,
			Format:     best.Format,
		}
	}
	inf.Suggestions = suggestionsFor(inf.Type, inf.SubType)
	return inf
}

func (r *Registry) bestMatch(lowered string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best  rankedRule
		found bool
	)
	consider := func(candidate rankedRule) {
		if !candidate.matches(lowered) {
			return
		}
		if !found ||
			candidate.Confidence > best.Confidence ||
			(candidate.Confidence == best.Confidence && candidate.order < best.order) {
			best = candidate
			found = true
		}
	}
	for _, candidate := range r.builtin {
		consider(candidate)
	}
	for _, candidate := range r.custom {
		consider(candidate)
	}
	return best.Rule, found
}
