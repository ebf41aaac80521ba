package codegen

import (
	"go/token"
	"strings"
	"unicode"
)

// initialisms are rendered fully upper-case in exported names.
var initialisms = map[string]bool{
	"ID": true, "URL": true, "UI": true, "XP": true, "HP": true, "MP": true,
	"API": true, "JSON": true, "CSV": true, "UUID": true, "SQL": true,
}

// splitWords breaks a name on separators and on lower-to-upper case changes.
func splitWords(s string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		if r == '_' || r == '-' || r == ' ' {
			flush()
			continue
		}
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
			flush()
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// toPascalCase converts a sheet name to an exported Go identifier.
func toPascalCase(s string) string {
	var result strings.Builder
	for _, part := range splitWords(s) {
		upper := strings.ToUpper(part)
		if initialisms[upper] {
			result.WriteString(upper)
			continue
		}
		r := []rune(part)
		result.WriteRune(unicode.ToUpper(r[0]))
		result.WriteString(string(r[1:]))
	}
	return result.String()
}

// toCamelCase converts a sheet name to an unexported Go identifier.
// Keywords get a trailing underscore.
func toCamelCase(s string) string {
	p := toPascalCase(s)
	if p == "" {
		return p
	}
	i := 0
	for i < len(p) && unicode.IsUpper(rune(p[i])) {
		i++
	}
	switch {
	case i == len(p):
		p = strings.ToLower(p)
	case i <= 1:
		p = strings.ToLower(p[:1]) + p[1:]
	default:
		// "HPMax" -> "hpMax"
		p = strings.ToLower(p[:i-1]) + p[i-1:]
	}
	if token.IsKeyword(p) {
		p += "_"
	}
	return p
}

// toSnakeCase converts an identifier to a file-name stem.
func toSnakeCase(s string) string {
	runes := []rune(toPascalCase(s))
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// avoid returns name, or name+"Key" when it is one of taken.
func avoid(name string, taken ...string) string {
	for _, t := range taken {
		if name == t {
			return avoid(name+"Key", taken...)
		}
	}
	return name
}
