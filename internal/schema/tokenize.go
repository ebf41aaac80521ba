package schema

import "strings"

// SplitLines splits text on \r\n, \r or \n and drops blank lines.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// SplitCells splits a line on tab or comma. There is no quoting: a
// delimiter inside a cell always starts a new cell.
func SplitCells(line string) []string {
	cells := make([]string, 0, strings.Count(line, ",")+strings.Count(line, "\t")+1)
	start := 0
	for i := 0; i < len(line); i++ {
		if line[i] == '\t' || line[i] == ',' {
			cells = append(cells, line[start:i])
			start = i + 1
		}
	}
	return append(cells, line[start:])
}

// StripHeader removes every byte outside printable ASCII (space to '~')
// from a header cell. Spreadsheet exports tend to leave a BOM or stray
// control bytes on the first rows.
func StripHeader(cell string) string {
	var b strings.Builder
	b.Grow(len(cell))
	for i := 0; i < len(cell); i++ {
		c := cell[i]
		if c >= 0x20 && c <= 0x7e {
			b.WriteByte(c)
		}
	}
	return strings.TrimSpace(b.String())
}
