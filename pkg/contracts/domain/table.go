package domain

// TablePayload is the wire form of a table: declared column order plus
// rows of plain JSON scalars (numbers, strings, date strings, null)
type TablePayload struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// RowCount returns the number of rows in the payload
func (t TablePayload) RowCount() int { return len(t.Rows) }
