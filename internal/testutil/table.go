package testutil

import "strings"

// Table is a bordered text table read back from console output.
type Table struct {
	Header []string
	Rows   [][]string
}

// ParseTables extracts every bordered table in out. Cells are trimmed. A
// table may start mid-line, after a prompt whose answer was not echoed.
func ParseTables(out string) []Table {
	var (
		tables []Table
		cur    *Table
	)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if cur == nil {
			if i := strings.Index(line, "+-"); i > 0 {
				line = line[i:]
			}
		}
		switch {
		case strings.HasPrefix(line, "+"):
			if cur == nil {
				tables = append(tables, Table{})
				cur = &tables[len(tables)-1]
			}
		case strings.HasPrefix(line, "|") && cur != nil:
			parts := strings.Split(strings.Trim(line, "|"), "|")
			cells := make([]string, len(parts))
			for i, p := range parts {
				cells[i] = strings.TrimSpace(p)
			}
			if cur.Header == nil {
				cur.Header = cells
			} else {
				cur.Rows = append(cur.Rows, cells)
			}
		default:
			cur = nil
		}
	}
	return tables
}
