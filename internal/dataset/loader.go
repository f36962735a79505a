package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"
)

// Loader reads Excel workbooks into Tables and memoizes the result by
// cleaned path for the process lifetime. Input files are read-only, so
// there is no invalidation. On read failure the loader caches and returns
// an empty Table alongside the error; callers surface the message and
// keep rendering.
type Loader struct {
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]*loadResult
}

type loadResult struct {
	table *Table
	err   error
}

// NewLoader creates a workbook loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger.With(slog.String("component", "dataset_loader")),
		cache:  make(map[string]*loadResult),
	}
}

// Load returns the Table for a workbook path. The first call reads the
// file; repeated calls return the memoized result without touching disk.
// The returned Table is never nil.
func (l *Loader) Load(ctx context.Context, path string) (*Table, error) {
	key := filepath.Clean(path)

	l.mu.Lock()
	if res, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return res.table, res.err
	}
	l.mu.Unlock()

	table, err := l.read(ctx, key)
	if err != nil {
		l.logger.ErrorContext(ctx, "workbook load failed",
			slog.String("path", key),
			slog.String("error", err.Error()))
		table = Empty()
	} else {
		l.logger.InfoContext(ctx, "workbook loaded",
			slog.String("path", key),
			slog.Int("rows", table.Len()),
			slog.Int("columns", len(table.Columns)))
	}

	l.mu.Lock()
	// Another request may have raced the read; first result wins so every
	// caller sees the same Table.
	if res, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return res.table, res.err
	}
	l.cache[key] = &loadResult{table: table, err: err}
	l.mu.Unlock()

	return table, err
}

// read parses the first sheet of a workbook: row zero is the header and
// fixes the declared column order, remaining rows become typed records.
func (l *Loader) read(ctx context.Context, path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return Empty(), nil
	}

	columns := headerColumns(rows[0])
	records := make([]Row, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(raw) {
				row[col] = ParseCell(raw[i])
			} else {
				// Short rows are padded with nulls.
				row[col] = Null()
			}
		}
		records = append(records, row)
	}

	return &Table{Columns: columns, Rows: records}, nil
}

// headerColumns derives column names from the header row. Blank cells get
// positional names and duplicates get a numeric suffix so the uniform
// column invariant holds.
func headerColumns(header []string) []string {
	columns := make([]string, 0, len(header))
	seen := make(map[string]bool)
	for i, raw := range header {
		name := raw
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		base := name
		for n := 2; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		seen[name] = true
		columns = append(columns, name)
	}
	return columns
}
