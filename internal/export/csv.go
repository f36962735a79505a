package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"marketdash/pkg/contracts/domain"
)

// Options configures CSV writing behavior
type Options struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteTable streams a table payload to w as CSV: one header row in the
// declared column order, then one record per row. Cells absent from a
// row are written empty.
func WriteTable(w io.Writer, table domain.TablePayload, options Options) error {
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if len(table.Columns) > 0 {
		if err := writer.Write(table.Columns); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	record := make([]string, len(table.Columns))
	for i, row := range table.Rows {
		for j, col := range table.Columns {
			record[j] = formatCell(row[col])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
