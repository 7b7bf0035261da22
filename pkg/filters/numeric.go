package filters

import (
	"math"
	"strconv"
	"strings"
)

// filterInt coerces to an integer. nil yields "0", anything unparseable
// yields "NaN"; both are strings so a preview render shows the problem
// instead of failing.
func filterInt(in any, _ ...any) (any, error) {
	if isNil(in) {
		return "0", nil
	}
	if b, ok := in.(bool); ok {
		if b {
			return int64(1), nil
		}
		return int64(0), nil
	}
	if s, ok := in.(string); ok {
		trimmed := strings.TrimSpace(s)
		if parsed, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return parsed, nil
		}
	}
	if f, ok := toFloat(in); ok {
		return int64(f), nil
	}
	return "NaN", nil
}

// filterFloat coerces to a float. nil and unparseable inputs both yield
// "NaN" (nil is unknown, not zero, for fractional values).
func filterFloat(in any, _ ...any) (any, error) {
	if b, ok := in.(bool); ok {
		if b {
			return float64(1), nil
		}
		return float64(0), nil
	}
	if f, ok := toFloat(in); ok {
		return f, nil
	}
	return "NaN", nil
}

func filterString(in any, _ ...any) (any, error) {
	return toString(in), nil
}

func filterBool(in any, _ ...any) (any, error) {
	if s, ok := in.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0", "":
			return false, nil
		}
	}
	return truthy(in), nil
}

func filterAbs(in any, _ ...any) (any, error) {
	f, ok := toFloat(in)
	if !ok {
		return "NaN", nil
	}
	if isIntegral(in) {
		return int64(math.Abs(f)), nil
	}
	return math.Abs(f), nil
}

// filterRound rounds to an optional precision (default 0 digits).
func filterRound(in any, args ...any) (any, error) {
	f, ok := toFloat(in)
	if !ok {
		return "NaN", nil
	}
	precision := 0.0
	if len(args) > 0 {
		if p, ok := toFloat(args[0]); ok {
			precision = p
		}
	}
	scale := math.Pow(10, precision)
	rounded := math.Round(f*scale) / scale
	if precision == 0 {
		return int64(rounded), nil
	}
	return rounded, nil
}
