// Package strings provides string manipulation utilities.
package strings

import (
	"path/filepath"
	"strings"
	"unicode"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "})
//	// Returns: []string{"foo", "bar"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// SplitList splits a comma separated setting (broker lists, extension lists)
// and applies DedupeAndTrim. An empty input yields nil.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return DedupeAndTrim(strings.Split(s, ","))
}

// SafeFilename reduces an uploaded filename to its base name made of letters,
// digits, '.', '-' and '_'. Anything else becomes '_'. Leading dots are dropped
// so the result never names a hidden file.
//
// Example:
//
//	SafeFilename("../../my pan card.PDF")
//	// Returns: "my_pan_card.PDF"
func SafeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" || out == "_" {
		return "upload"
	}
	return out
}

// Extension returns the lowercased extension without the dot, or "" if the name
// has none.
func Extension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == "." {
		return ""
	}
	return strings.ToLower(ext[1:])
}
