package dashboard

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NormalizeValue converts a scanned column value into its wire form: ids as
// strings, timestamps as RFC 3339 in UTC, reals with three fractional digits.
// NULL stays nil. Callers must not convert fields themselves.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case uuid.UUID:
		return val.String()
	case [16]byte:
		return uuid.UUID(val).String()
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.UTC().Format(time.RFC3339Nano)
	case float64:
		return FormatDecimal(val)
	case float32:
		return FormatDecimal(float64(val))
	case *float64:
		if val == nil {
			return nil
		}
		return FormatDecimal(*val)
	case fmt.Stringer:
		return val.String()
	default:
		return val
	}
}

// NormalizeRow zips column names with normalised values.
func NormalizeRow(columns []string, values []any) Row {
	row := make(Row, len(columns))
	for i, col := range columns {
		row[col] = NormalizeValue(values[i])
	}
	return row
}

// FormatDecimal renders f with exactly three fractional digits.
func FormatDecimal(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}
