package api

import (
	"strings"
	"unicode"
)

// The backend speaks snake_case, the application camelCase. The two
// transforms below walk decoded JSON values and rename every map key;
// values are never touched. Records stay opaque key-value mappings, so
// the transform is generic rather than schema-driven.

func camelizeKeys(v any) any {
	return transformKeys(v, toCamel)
}

func decamelizeKeys(v any) any {
	return transformKeys(v, toSnake)
}

func transformKeys(v any, rename func(string) string) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[rename(k)] = transformKeys(item, rename)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = transformKeys(item, rename)
		}
		return out
	default:
		return v
	}
}

// toCamel turns "camera_count" into "cameraCount". Keys without
// underscores pass through unchanged.
func toCamel(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.Grow(len(s))
	first := true
	for _, part := range parts {
		if part == "" {
			continue
		}
		if first {
			b.WriteString(part)
			first = false
			continue
		}
		r := []rune(part)
		b.WriteRune(unicode.ToUpper(r[0]))
		b.WriteString(string(r[1:]))
	}
	return b.String()
}

// toSnake turns "cameraCount" into "camera_count". An underscore is
// inserted only before an upper-case rune that follows a lower-case rune
// or digit, so acronym runs like "tmdbID" become "tmdb_id" rather than
// "tmdb_i_d".
func toSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
