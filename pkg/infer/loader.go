package infer

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sqltpl/pkg/model"
)

type ruleFile struct {
	Rules []ruleSpec `yaml:"rules" json:"rules"`
}

type ruleSpec struct {
	Pattern    string  `yaml:"pattern" json:"pattern"`
	Regex      string  `yaml:"regex" json:"regex"`
	Type       string  `yaml:"type" json:"type"`
	SubType    string  `yaml:"subType" json:"subType"`
	Confidence float64 `yaml:"confidence" json:"confidence"`
	Format     string  `yaml:"format" json:"format"`
}

// LoadRules parses custom inference rules from a YAML (or JSON) document.
//
//	rules:
//	  - pattern: tenant
//	    type: uuid
//	    confidence: 0.9
//	  - regex: "_code$"
//	    type: string
//	    confidence: 0.85
func LoadRules(r io.Reader) ([]Rule, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("infer: read rules: %w", err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("infer: parse rules: %w", err)
	}

	rules := make([]Rule, 0, len(file.Rules))
	for i, spec := range file.Rules {
		rule, err := spec.compile()
		if err != nil {
			return nil, fmt.Errorf("infer: rule %d: %w", i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// LoadRulesFile reads rules from a file on disk.
func LoadRulesFile(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("infer: open rules file: %w", err)
	}
	defer f.Close()
	return LoadRules(f)
}

func (s ruleSpec) compile() (Rule, error) {
	rule := Rule{
		Pattern:    strings.ToLower(strings.TrimSpace(s.Pattern)),
		SubType:    strings.TrimSpace(s.SubType),
		Confidence: s.Confidence,
		Format:     strings.TrimSpace(s.Format),
	}

	if s.Regex != "" {
		re, err := regexp.Compile(s.Regex)
		if err != nil {
			return Rule{}, fmt.Errorf("invalid regex %q: %w", s.Regex, err)
		}
		rule.Regex = re
	}
	if rule.Regex == nil && rule.Pattern == "" {
		return Rule{}, fmt.Errorf("rule needs a pattern or a regex")
	}
	if rule.Confidence <= 0 || rule.Confidence > 1 {
		return Rule{}, fmt.Errorf("confidence %v outside (0, 1]", s.Confidence)
	}

	t := model.VarType(strings.ToLower(strings.TrimSpace(s.Type)))
	for _, known := range model.KnownTypes() {
		if t == known {
			rule.Type = t
			return rule, nil
		}
	}
	return Rule{}, fmt.Errorf("unknown type %q", s.Type)
}
