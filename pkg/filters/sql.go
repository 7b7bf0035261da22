package filters

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SQLQuote renders any value as a SQL literal: strings are single-quoted
// with embedded quotes doubled, numbers stay bare, booleans become
// TRUE/FALSE, nil becomes NULL, times format as 'YYYY-MM-DD HH:MM:SS' and
// slices render as a comma-joined list of recursively quoted elements.
// Shared by the sql_quote/sql_in filters and the placeholder converter.
func SQLQuote(v any) string {
	if isNil(v) {
		return "NULL"
	}

	switch value := v.(type) {
	case bool:
		if value {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return "'" + value.Format("2006-01-02 15:04:05") + "'"
	case uuid.UUID:
		return "'" + value.String() + "'"
	case string:
		return "'" + strings.ReplaceAll(value, "'", "''") + "'"
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	}

	if isIntegral(v) {
		return fmt.Sprint(v)
	}
	if items, ok := toSlice(v); ok {
		quoted := make([]string, len(items))
		for i, item := range items {
			quoted[i] = SQLQuote(item)
		}
		return strings.Join(quoted, ", ")
	}
	return "'" + strings.ReplaceAll(fmt.Sprint(v), "'", "''") + "'"
}

func filterSQLQuote(in any, _ ...any) (any, error) {
	return SQLQuote(in), nil
}

// filterSQLIdentifier double-quotes an identifier, escaping embedded double
// quotes by doubling.
func filterSQLIdentifier(in any, _ ...any) (any, error) {
	return `"` + strings.ReplaceAll(toString(in), `"`, `""`) + `"`, nil
}

func filterSQLDate(in any, _ ...any) (any, error) {
	t, ok := toTime(in)
	if !ok {
		return nil, fmt.Errorf("sql_date: cannot interpret %v as a date", in)
	}
	return "'" + t.Format("2006-01-02") + "'", nil
}

func filterSQLDateTime(in any, _ ...any) (any, error) {
	t, ok := toTime(in)
	if !ok {
		return nil, fmt.Errorf("sql_datetime: cannot interpret %v as a datetime", in)
	}
	return "'" + t.Format("2006-01-02 15:04:05") + "'", nil
}

// filterSQLIn renders a list as individually quoted literals joined by
// commas, ready to drop inside an IN (...) clause.
func filterSQLIn(in any, _ ...any) (any, error) {
	items, ok := toSlice(in)
	if !ok {
		return SQLQuote(in), nil
	}
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = SQLQuote(item)
	}
	return strings.Join(quoted, ", "), nil
}
