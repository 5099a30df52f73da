package utils

import (
	"strings"
	"unicode"
)

// SnakeToCamel converts a_field_name to aFieldName.
func SnakeToCamel(s string) string {
	parts := strings.Split(s, "_")
	if len(parts) == 1 {
		return s
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// CamelToSnake converts aFieldName to a_field_name.
func CamelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CamelizeKeys rewrites map keys from snake_case to camelCase, recursing
// into nested maps and slices. Values are not touched.
func CamelizeKeys(v interface{}) interface{} {
	return mapKeys(v, SnakeToCamel)
}

// SnakifyKeys rewrites map keys from camelCase to snake_case, recursing
// into nested maps and slices.
func SnakifyKeys(v interface{}) interface{} {
	return mapKeys(v, CamelToSnake)
}

func mapKeys(v interface{}, f func(string) string) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[f(k)] = mapKeys(val, f)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = mapKeys(val, f)
		}
		return out
	default:
		return v
	}
}
