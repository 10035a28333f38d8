// Package tabular turns delimited text uploads into an in-memory table.  It
// only enforces what a generic CSV reader needs to succeed; column names and
// cell contents are never interpreted.
package tabular

// Table is a parsed upload.  Columns holds the header row and every entry in
// Rows has exactly len(Columns) cells.  Index is nil unless the file carries
// an unnamed leading index column, in which case it holds one label per row.
type Table struct {
	Columns []string
	Index   []string
	Rows    [][]string
}

// Len returns the number of data rows, excluding the header.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
