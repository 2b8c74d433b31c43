package sqltext

import (
	"strconv"
	"strings"
	"time"

	"github.com/bara-directory/seeder/internal/entity"
)

// Quote renders s as a string literal, doubling embedded single quotes.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// NullableString renders NULL for nil or empty values.
func NullableString(s *string) string {
	if s == nil || *s == "" {
		return "NULL"
	}
	return Quote(*s)
}

// NullableInt renders NULL for nil.
func NullableInt(v *int) string {
	if v == nil {
		return "NULL"
	}
	return strconv.Itoa(*v)
}

// Float renders f without trailing zeros.
func Float(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Bool renders a boolean literal.
func Bool(b bool) string {
	return strconv.FormatBool(b)
}

// Timestamp renders t as a quoted RFC3339 literal, or NOW() when zero.
func Timestamp(t entity.Timestamp) string {
	if t.IsZero() {
		return "NOW()"
	}
	return Quote(t.UTC().Format(time.RFC3339))
}

// Array renders values as a text array constructor.
func Array(values []string) string {
	if len(values) == 0 {
		return "ARRAY[]::text[]"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = Quote(v)
	}
	return "ARRAY[" + strings.Join(quoted, ", ") + "]"
}

// comment flattens s so it cannot terminate a "--" comment line.
func comment(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
