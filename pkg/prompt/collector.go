package prompt

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-sqltpl/pkg/model"
)

// Collector walks a list of extracted variables and asks for a value for
// each, choosing the prompt style from the inferred type.
type Collector struct {
	driver Driver
}

// NewCollector builds a collector. A nil driver gets the survey-backed one.
func NewCollector(driver Driver) *Collector {
	if driver == nil {
		driver = NewSurveyDriver()
	}
	return &Collector{driver: driver}
}

// Collect prompts for every variable in order and returns a flat context
// keyed by variable name, dotted names included. Booleans confirm,
// sub-typed variables with curated suggestions select, everything else takes
// validated free-form input parsed into the inferred type; an empty answer
// falls back to the default.
func (c *Collector) Collect(ctx context.Context, vars []model.Variable) (map[string]any, error) {
	if len(vars) == 0 {
		return map[string]any{}, nil
	}
	if err := c.driver.Info(ctx, fmt.Sprintf("collecting values for %d template variable(s)", len(vars))); err != nil {
		return nil, err
	}

	values := make(map[string]any, len(vars))
	for _, v := range vars {
		value, err := c.ask(ctx, v)
		if err != nil {
			return nil, err
		}
		values[v.Name] = value
	}
	return values, nil
}

func (c *Collector) ask(ctx context.Context, v model.Variable) (any, error) {
	if v.Type == model.TypeBoolean {
		def, _ := v.DefaultValue.(bool)
		return c.driver.Confirm(ctx, ConfirmConfig{
			Message: v.Name + "?",
			Default: def,
		})
	}

	// A sub-type marks a curated suggestion list (pagination sizes, status
	// values, identifier samples); type-level generics stay free-form.
	if v.SubType != "" && len(v.Suggestions) > 0 {
		return c.selectSuggestion(ctx, v)
	}

	cfg := InputConfig{
		Message: fmt.Sprintf("%s (%s):", v.Name, v.Type),
		Help:    helpFor(v),
	}
	if v.DefaultValue != nil {
		cfg.Default = fmt.Sprint(v.DefaultValue)
	}
	if v.Required {
		cfg.Validator = func(answer string) error {
			if strings.TrimSpace(answer) == "" {
				return fmt.Errorf("%s is required", v.Name)
			}
			return nil
		}
	}

	answer, err := c.driver.Input(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(answer) == "" {
		return v.DefaultValue, nil
	}
	return parseTyped(answer, v.Type), nil
}

// selectSuggestion offers the inferred candidates as a single-select list and
// returns the chosen value with its original type intact. An out-of-range
// index from the driver falls back to the default value.
func (c *Collector) selectSuggestion(ctx context.Context, v model.Variable) (any, error) {
	options := make([]string, len(v.Suggestions))
	defaultIndex := 0
	for i, s := range v.Suggestions {
		options[i] = fmt.Sprint(s)
		if v.DefaultValue != nil && options[i] == fmt.Sprint(v.DefaultValue) {
			defaultIndex = i
		}
	}

	idx, err := c.driver.Select(ctx, SelectConfig{
		Message:      fmt.Sprintf("%s (%s):", v.Name, v.Type),
		Options:      options,
		DefaultIndex: defaultIndex,
		Help:         helpFor(v),
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(v.Suggestions) {
		return v.DefaultValue, nil
	}
	return v.Suggestions[idx], nil
}

func helpFor(v model.Variable) string {
	if v.SubType != "" {
		return "inferred as " + string(v.Type) + "/" + v.SubType
	}
	return "inferred as " + string(v.Type)
}

// parseTyped coerces the raw answer into the inferred type; anything that
// does not parse stays a string so rendering can still proceed.
func parseTyped(answer string, t model.VarType) any {
	switch t {
	case model.TypeInteger:
		if n, err := strconv.ParseInt(answer, 10, 64); err == nil {
			return n
		}
	case model.TypeNumber:
		if f, err := strconv.ParseFloat(answer, 64); err == nil {
			return f
		}
	case model.TypeBoolean:
		if b, err := strconv.ParseBool(answer); err == nil {
			return b
		}
	}
	return answer
}
