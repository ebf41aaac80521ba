// Package l10n is the runtime string table behind generated localized
// accessors. It reads the `"key" = "value";` strings file written by the
// csvpack compiler.
package l10n

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Table maps localization keys to display strings. It is safe for
// concurrent use.
type Table struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{entries: make(map[string]string)}
}

// Parse reads a strings file. Blank lines are ignored; any other line that
// is not a `"key" = "value";` entry is an error.
func Parse(r io.Reader) (*Table, error) {
	t := NewTable()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		key, value, ok := ParseEntry(text)
		if !ok {
			return nil, fmt.Errorf("l10n: line %d: malformed entry", line)
		}
		t.entries[key] = value
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("l10n: %w", err)
	}
	return t, nil
}

// Set stores value under key.
func (t *Table) Set(key, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[key] = value
}

// Lookup returns the string stored under key.
func (t *Table) Lookup(key string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.entries[key]
	return v, ok
}

// String returns the string stored under key, or key itself when missing.
func (t *Table) String(key string) string {
	if v, ok := t.Lookup(key); ok {
		return v
	}
	return key
}

// Len returns the number of entries.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Keys returns every key in sorted order.
func (t *Table) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var defaultTable atomic.Pointer[Table]

// SetDefault installs t as the table used by String.
func SetDefault(t *Table) {
	defaultTable.Store(t)
}

// String looks key up in the default table. Without a default table, or
// when the key is missing, it returns key.
func String(key string) string {
	t := defaultTable.Load()
	if t == nil {
		return key
	}
	return t.String(key)
}

// ParseEntry parses one `"key" = "value";` line.
func ParseEntry(line string) (key, value string, ok bool) {
	key, rest, ok := quoted(line)
	if !ok {
		return "", "", false
	}
	rest = strings.TrimLeft(rest, " \t")
	if !strings.HasPrefix(rest, "=") {
		return "", "", false
	}
	value, rest, ok = quoted(strings.TrimLeft(rest[1:], " \t"))
	if !ok || strings.TrimSpace(rest) != ";" {
		return "", "", false
	}
	return key, value, true
}

// FormatEntry renders key and value as one strings-file line, without the
// trailing newline.
func FormatEntry(key, value string) string {
	return `"` + Escape(key) + `" = "` + Escape(value) + `";`
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

// Escape quotes s for use between double quotes in a strings file.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape reverses Escape. Unknown escapes keep the escaped character.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// quoted reads a double-quoted, escaped string at the start of s and returns
// its unescaped content and the remainder after the closing quote.
func quoted(s string) (content, rest string, ok bool) {
	if !strings.HasPrefix(s, `"`) {
		return "", "", false
	}
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return Unescape(s[1:i]), s[i+1:], true
		}
	}
	return "", "", false
}
