package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// SetSeparator splits the elements of a StringSet cell.
const SetSeparator = ";"

// Coerce parses cell as a value of type t. Numeric and boolean cells are
// trimmed first; string cells are taken verbatim. The result is an int32,
// int64, float64, bool, string or []string.
func Coerce(t FieldType, cell string) (any, error) {
	switch t {
	case Int32:
		v, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parse %q as int: %w", cell, err)
		}
		return int32(v), nil
	case Int64:
		v, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q as long: %w", cell, err)
		}
		return v, nil
	case Double:
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q as double: %w", cell, err)
		}
		return v, nil
	case Bool:
		v, err := strconv.ParseBool(strings.TrimSpace(cell))
		if err != nil {
			return nil, fmt.Errorf("parse %q as bool: %w", cell, err)
		}
		return v, nil
	case String:
		return cell, nil
	case StringSet:
		return SplitSet(cell), nil
	default:
		return nil, fmt.Errorf("cannot coerce %q: type is unresolved", cell)
	}
}

// SplitSet splits a StringSet cell. An empty cell is an empty set.
func SplitSet(cell string) []string {
	if cell == "" {
		return []string{}
	}
	return strings.Split(cell, SetSeparator)
}
