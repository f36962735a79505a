package pivot

import "marketdash/internal/dataset"

// ValueCounts tabulates how often each distinct non-null value of a
// column occurs. The result has the source column plus a "count" column,
// sorted ascending by value. An absent column yields an empty result.
func ValueCounts(t *dataset.Table, column string) *dataset.Table {
	if !t.HasColumn(column) {
		return dataset.Empty()
	}

	counts := make(map[string]float64)
	for _, row := range t.Rows {
		v := row[column]
		if v.IsNull() {
			continue
		}
		counts[v.Display()]++
	}

	values := t.DistinctSorted(column)
	rows := make([]dataset.Row, 0, len(values))
	for _, v := range values {
		rows = append(rows, dataset.Row{
			column:  v,
			"count": dataset.Number(counts[v.Display()]),
		})
	}
	return &dataset.Table{Columns: []string{column, "count"}, Rows: rows}
}
