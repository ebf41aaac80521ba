// Package localize collects localization strings from row tables and
// override files and writes them as one strings file.
package localize

import (
	"bytes"
	"io"
	"sort"
	"strconv"
	"strings"

	"csvpack/internal/domain"
	"csvpack/internal/schema"
	"csvpack/pkg/l10n"
)

// Store is the run-wide localization mapping.
type Store struct {
	entries map[string]string
	origin  map[string]string // key -> override file that added it
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]string), origin: make(map[string]string)}
}

// Set records a row-derived entry. Group-key tables repeat keys, so a later
// row replaces an earlier one.
func (s *Store) Set(key, value string) {
	s.entries[key] = value
}

// Add records an override entry from path. A key that is already present
// is a ConstraintError.
func (s *Store) Add(path, key, value string) error {
	if _, dup := s.entries[key]; dup {
		if prev := s.origin[key]; prev != "" {
			return domain.ErrConstraint(path, "duplicate localization key %q (already defined in %s)", key, prev)
		}
		return domain.ErrConstraint(path, "duplicate localization key %q (already defined by a table)", key)
	}
	s.entries[key] = value
	s.origin[key] = path
	return nil
}

// Lookup returns the value stored under key.
func (s *Store) Lookup(key string) (string, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// Keys returns every key, sorted.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entry is one parsed override line.
type Entry struct {
	Line  int
	Key   string
	Value string
}

// ParseOverrides parses an override file. Each non-blank line is either a
// `"key" = "value";` entry or bare text keyed "<file>_<n>", where n counts
// entries from 1. Once a file has used the key/value form, bare text is a
// FormatError.
func ParseOverrides(path string, data []byte) ([]Entry, error) {
	prefix := schema.TableName(path) + "_"
	var (
		entries []Entry
		keyed   bool
	)
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.ReplaceAll(line, "\r", "")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if key, value, ok := l10n.ParseEntry(strings.TrimSpace(line)); ok {
			keyed = true
			entries = append(entries, Entry{Line: i + 1, Key: key, Value: value})
			continue
		}
		if keyed {
			return nil, domain.ErrFormat(path, i+1, "bare line after key/value entries")
		}
		entries = append(entries, Entry{Line: i + 1, Key: prefix + strconv.Itoa(len(entries)+1), Value: line})
	}
	return entries, nil
}

// Merge parses an override file and adds every entry.
func (s *Store) Merge(path string, data []byte) error {
	entries, err := ParseOverrides(path, data)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := s.Add(path, e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

// WriteTo writes the strings file, one `"key" = "value";` line per entry
// in key order.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, k := range s.Keys() {
		n, err := io.WriteString(w, l10n.FormatEntry(k, s.entries[k])+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Bytes returns the strings file content.
func (s *Store) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = s.WriteTo(&buf)
	return buf.Bytes()
}

// Table copies the entries into a runtime table.
func (s *Store) Table() *l10n.Table {
	t := l10n.NewTable()
	for k, v := range s.entries {
		t.Set(k, v)
	}
	return t
}
