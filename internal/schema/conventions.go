package schema

import (
	"regexp"
	"strings"
)

// === Key Markers ===

// keyMarkers maps the reserved type tokens that designate a table's key
// column to the role they confer. Exactly one column per row table carries
// one of these.
var keyMarkers = map[string]Role{
	"id":       Key,
	"stringId": Key,
	"groupId":  GroupKey,
}

// keyRole returns the role a type token confers, or Plain.
func keyRole(token string) Role {
	if role, ok := keyMarkers[token]; ok {
		return role
	}
	return Plain
}

// === Localization Rules ===

// localizationRule declares a type-token convention that routes a column
// into the localization mapping instead of the binary store.
type localizationRule struct {
	token     string // exact type token, e.g. "name"
	separator string // token+separator+accessor declares a derived accessor
}

// localizationRules is the full set of localization conventions.
var localizationRules = []localizationRule{
	{token: "name", separator: "_"},
}

// bareKeyHeader is the header cell that makes the localization key the bare
// record key instead of "<header>_<key>".
const bareKeyHeader = ";"

// matchLocalization reports whether a type token declares a localized
// column and, if so, the accessor it derives ("" for mapping-only).
func matchLocalization(token string) (accessor string, ok bool) {
	for _, rule := range localizationRules {
		if token == rule.token {
			return "", true
		}
		if rest, found := strings.CutPrefix(token, rule.token+rule.separator); found && rest != "" {
			return rest, true
		}
	}
	return "", false
}

// localizationPrefix returns the key prefix for a localized column header.
func localizationPrefix(header string) string {
	if header == bareKeyHeader {
		return ""
	}
	return header
}

// === Identifiers ===

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdentifier reports whether s can name a generated field or parameter.
func IsIdentifier(s string) bool {
	return identPattern.MatchString(s)
}
